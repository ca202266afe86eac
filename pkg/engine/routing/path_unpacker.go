package routing

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
)

/*
Path unpacking expands the up-down meeting-point path of the last run back
into original arcs. A shortcut whose weight equals the weight of one of
its lower triangles descends into that triangle; otherwise the weight came
from an input arc of the same endpoint pair. Bottom-up customization keeps
these identities intact, which is why queries never run on perfect
weights.
*/

type pathStep struct {
	inputArc da.Index
	from, to da.Index // original node ids
}

// ArcPath returns the input arc ids of the shortest path found by the
// last run, in travel order. It panics before Run and returns an empty
// slice when the target is unreachable or coincides with the source.
func (q *Query) ArcPath() []da.Index {
	steps := q.unpackedSteps()
	arcs := make([]da.Index, 0, len(steps))
	for _, s := range steps {
		arcs = append(arcs, s.inputArc)
	}
	return arcs
}

// NodePath returns the original node ids of the shortest path, source
// first. A query whose source and target coincide yields that single
// node; an unreachable target yields an empty slice.
func (q *Query) NodePath() []da.Index {
	util.AssertPanic(q.state == stateRun, "NodePath before Run")
	if q.shortest == pkg.INF_WEIGHT {
		return []da.Index{}
	}
	steps := q.unpackedSteps()
	if len(steps) == 0 {
		return []da.Index{q.h.NodeOrder(q.meet)}
	}
	nodes := make([]da.Index, 0, len(steps)+1)
	nodes = append(nodes, steps[0].from)
	for _, s := range steps {
		nodes = append(nodes, s.to)
	}
	return nodes
}

func (q *Query) unpackedSteps() []pathStep {
	util.AssertPanic(q.state == stateRun, "path retrieval before Run")
	if q.shortest == pkg.INF_WEIGHT {
		return nil
	}

	// climb from the meeting point back to the source; the arcs come out
	// target-to-source, so unpack them reversed
	upChain := make([]da.Index, 0)
	for r := q.meet; q.fparent[r] != da.Index(pkg.INVALID_INDEX); r = q.h.ArcTail(q.fparent[r]) {
		upChain = append(upChain, q.fparent[r])
	}

	steps := make([]pathStep, 0)
	for i := len(upChain) - 1; i >= 0; i-- {
		steps = q.unpackUpArc(upChain[i], steps)
	}
	for r := q.meet; q.bparent[r] != da.Index(pkg.INVALID_INDEX); r = q.h.ArcTail(q.bparent[r]) {
		steps = q.unpackDownArc(q.bparent[r], steps)
	}
	return steps
}

// unpackUpArc expands arc traversed in ascending direction (tail to head).
func (q *Query) unpackUpArc(arc da.Index, steps []pathStep) []pathStep {
	w := q.m.Upward(arc)

	var legTail, legHead da.Index
	viaTriangle := false
	q.h.ForLowerTrianglesOf(arc, func(lt, lh da.Index) bool {
		if pkg.AddWeights(q.m.Downward(lt), q.m.Upward(lh)) == w {
			legTail, legHead = lt, lh
			viaTriangle = true
			return false
		}
		return true
	})
	if viaTriangle {
		steps = q.unpackDownArc(legTail, steps)
		return q.unpackUpArc(legHead, steps)
	}

	for _, in := range q.h.ForwardInputArcsOf(arc) {
		if pkg.ClampWeight(q.m.Weights()[in]) == w {
			return append(steps, pathStep{
				inputArc: in,
				from:     q.h.NodeOrder(q.h.ArcTail(arc)),
				to:       q.h.NodeOrder(q.h.ArcHead(arc)),
			})
		}
	}
	util.AssertPanic(false, "upward shortcut weight matches no triangle and no input arc")
	return steps
}

// unpackDownArc expands arc traversed in descending direction (head to tail).
func (q *Query) unpackDownArc(arc da.Index, steps []pathStep) []pathStep {
	w := q.m.Downward(arc)

	var legTail, legHead da.Index
	viaTriangle := false
	q.h.ForLowerTrianglesOf(arc, func(lt, lh da.Index) bool {
		if pkg.AddWeights(q.m.Upward(lt), q.m.Downward(lh)) == w {
			legTail, legHead = lt, lh
			viaTriangle = true
			return false
		}
		return true
	})
	if viaTriangle {
		steps = q.unpackDownArc(legHead, steps)
		return q.unpackUpArc(legTail, steps)
	}

	for _, in := range q.h.BackwardInputArcsOf(arc) {
		if pkg.ClampWeight(q.m.Weights()[in]) == w {
			return append(steps, pathStep{
				inputArc: in,
				from:     q.h.NodeOrder(q.h.ArcHead(arc)),
				to:       q.h.NodeOrder(q.h.ArcTail(arc)),
			})
		}
	}
	util.AssertPanic(false, "downward shortcut weight matches no triangle and no input arc")
	return steps
}
