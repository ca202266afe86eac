package routing

import (
	"fmt"
	"sort"

	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/util"
)

type queryState int

const (
	stateConfiguring queryState = iota
	stateRun
)

/*
Query answers point-to-point shortest path questions on one customized
metric with the elimination tree search: instead of a priority queue, both
directions sweep the tree ancestors of their endpoints in rank order,
which visits exactly the nodes any up-down path can pass through.

A Query is not safe for concurrent use; run one Query per goroutine and
share the metric, which stays read-only.
*/
type Query struct {
	m *metrics.Metric
	h *hierarchy.Hierarchy

	state queryState

	fdist, bdist     []uint32
	fparent, bparent []da.Index
	ftouched         []da.Index // ranks with non-INF fdist
	btouched         []da.Index
	fseeds, bseeds   []da.Index

	inForward, inBackward []bool // scratch flags for closure building

	shortest uint32
	meet     da.Index

	pinnedTargets *pinnedSet
	pinnedSources *pinnedSet
}

func NewQuery(m *metrics.Metric) *Query {
	n := m.Hierarchy().NodeCount()
	q := &Query{
		m:          m,
		h:          m.Hierarchy(),
		fdist:      make([]uint32, n),
		bdist:      make([]uint32, n),
		fparent:    make([]da.Index, n),
		bparent:    make([]da.Index, n),
		inForward:  make([]bool, n),
		inBackward: make([]bool, n),
		shortest:   pkg.INF_WEIGHT,
		meet:       da.Index(pkg.INVALID_INDEX),
	}
	for i := 0; i < n; i++ {
		q.fdist[i] = pkg.INF_WEIGHT
		q.bdist[i] = pkg.INF_WEIGHT
	}
	return q
}

// Reset prepares the query for a new source/target configuration. Passing
// a different metric of the same hierarchy switches the weights without
// reallocating; pinned sets survive the reset.
func (q *Query) Reset(m *metrics.Metric) error {
	if m.Hierarchy() != q.h {
		return util.WrapErrorf(util.ErrForeignMetric, util.ErrBadParamInput,
			"metric belongs to a different hierarchy")
	}
	q.m = m
	q.ResetSource()
	q.ResetTarget()
	return nil
}

// ResetSource clears the forward side only, keeping targets (or pinned
// targets) configured for the next run.
func (q *Query) ResetSource() {
	for _, r := range q.ftouched {
		q.fdist[r] = pkg.INF_WEIGHT
	}
	q.ftouched = q.ftouched[:0]
	q.fseeds = q.fseeds[:0]
	q.shortest = pkg.INF_WEIGHT
	q.meet = da.Index(pkg.INVALID_INDEX)
	q.state = stateConfiguring
}

func (q *Query) ResetTarget() {
	for _, r := range q.btouched {
		q.bdist[r] = pkg.INF_WEIGHT
	}
	q.btouched = q.btouched[:0]
	q.bseeds = q.bseeds[:0]
	q.shortest = pkg.INF_WEIGHT
	q.meet = da.Index(pkg.INVALID_INDEX)
	q.state = stateConfiguring
}

// AddSource seeds the forward search at node with an initial distance.
// Misuse is a programming error and panics: the node must exist and the
// query must not have run since the last reset.
func (q *Query) AddSource(node da.Index, dist uint32) {
	util.AssertPanic(q.state == stateConfiguring, "AddSource after Run; Reset the query first")
	util.AssertPanic(int(node) < q.h.NodeCount(), fmt.Sprintf("source node %d out of range", node))

	r := q.h.NodeRank(node)
	if q.fdist[r] == pkg.INF_WEIGHT {
		q.ftouched = append(q.ftouched, r)
		q.fseeds = append(q.fseeds, r)
	}
	if dist < q.fdist[r] {
		q.fdist[r] = dist
		q.fparent[r] = da.Index(pkg.INVALID_INDEX)
	}
}

func (q *Query) AddTarget(node da.Index, dist uint32) {
	util.AssertPanic(q.state == stateConfiguring, "AddTarget after Run; Reset the query first")
	util.AssertPanic(int(node) < q.h.NodeCount(), fmt.Sprintf("target node %d out of range", node))

	r := q.h.NodeRank(node)
	if q.bdist[r] == pkg.INF_WEIGHT {
		q.btouched = append(q.btouched, r)
		q.bseeds = append(q.bseeds, r)
	}
	if dist < q.bdist[r] {
		q.bdist[r] = dist
		q.bparent[r] = da.Index(pkg.INVALID_INDEX)
	}
}

// Run executes both sweeps and records the best meeting node.
func (q *Query) Run() error {
	if len(q.fseeds) == 0 || len(q.bseeds) == 0 {
		return util.WrapErrorf(util.ErrQueryNotReady, util.ErrQueryNotReady,
			"%d sources, %d targets", len(q.fseeds), len(q.bseeds))
	}

	forward := q.ancestorClosure(q.fseeds, q.inForward)
	backward := q.ancestorClosure(q.bseeds, q.inBackward)

	for _, x := range forward {
		d := q.fdist[x]
		if d == pkg.INF_WEIGHT {
			continue
		}
		q.h.ForUpArcsOf(x, func(arc, y da.Index) {
			if nd := pkg.AddWeights(d, q.m.Upward(arc)); nd < q.fdist[y] {
				if q.fdist[y] == pkg.INF_WEIGHT {
					q.ftouched = append(q.ftouched, y)
				}
				q.fdist[y] = nd
				q.fparent[y] = arc
			}
		})
	}

	for _, x := range backward {
		d := q.bdist[x]
		if d == pkg.INF_WEIGHT {
			continue
		}
		q.h.ForUpArcsOf(x, func(arc, y da.Index) {
			if nd := pkg.AddWeights(d, q.m.Downward(arc)); nd < q.bdist[y] {
				if q.bdist[y] == pkg.INF_WEIGHT {
					q.btouched = append(q.btouched, y)
				}
				q.bdist[y] = nd
				q.bparent[y] = arc
			}
		})
	}

	q.shortest = pkg.INF_WEIGHT
	q.meet = da.Index(pkg.INVALID_INDEX)
	for _, r := range forward {
		q.inForward[r] = false // reset scratch while scanning for the meet
		if q.fdist[r] == pkg.INF_WEIGHT || q.bdist[r] == pkg.INF_WEIGHT {
			continue
		}
		if total := pkg.AddWeights(q.fdist[r], q.bdist[r]); total < q.shortest {
			q.shortest = total
			q.meet = r
		}
	}
	for _, r := range backward {
		q.inBackward[r] = false
	}

	q.state = stateRun
	return nil
}

// Distance returns the shortest distance of the last run. Calling it
// before Run is a sequencing bug and panics; ok is false when target is
// unreachable from source.
func (q *Query) Distance() (uint32, bool) {
	util.AssertPanic(q.state == stateRun, "Distance before Run")
	return q.shortest, q.shortest < pkg.INF_WEIGHT
}

// ancestorClosure collects the union of elimination tree paths from the
// seeds to the root, ascending by rank. seen is caller-owned scratch and
// left set; Run clears it during the meet scan.
func (q *Query) ancestorClosure(seeds []da.Index, seen []bool) []da.Index {
	closure := make([]da.Index, 0, 64)
	for _, s := range seeds {
		for r := s; r != da.Index(pkg.INVALID_INDEX) && !seen[r]; r = q.h.TreeParent(r) {
			seen[r] = true
			closure = append(closure, r)
		}
	}
	sort.Slice(closure, func(a, b int) bool { return closure[a] < closure[b] })
	return closure
}
