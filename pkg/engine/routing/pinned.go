package routing

import (
	"sort"

	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
)

/*
Pinned batch queries answer one-to-many and many-to-one questions without
a backward search per target: the target set is fixed once, its tree
ancestor closure precomputed, and every run finishes with a single
descending sweep over that closure. Repointing the source side between
runs is then just ResetSource plus AddSource.
*/

type pinnedSet struct {
	nodes     []da.Index // as pinned, original order kept for the results
	closure   []da.Index // ancestor closure, ascending by rank
	inClosure []bool
}

func (q *Query) buildPinnedSet(nodes []da.Index) (*pinnedSet, error) {
	for _, node := range nodes {
		if int(node) >= q.h.NodeCount() {
			return nil, util.WrapErrorf(util.ErrBadParamInput, util.ErrBadParamInput,
				"pinned node %d out of range for %d nodes", node, q.h.NodeCount())
		}
	}

	ps := &pinnedSet{
		nodes:     append([]da.Index(nil), nodes...),
		inClosure: make([]bool, q.h.NodeCount()),
	}
	for _, node := range nodes {
		for r := q.h.NodeRank(node); r != da.Index(pkg.INVALID_INDEX) && !ps.inClosure[r]; r = q.h.TreeParent(r) {
			ps.inClosure[r] = true
			ps.closure = append(ps.closure, r)
		}
	}
	sort.Slice(ps.closure, func(a, b int) bool { return ps.closure[a] < ps.closure[b] })
	return ps, nil
}

// PinTargets fixes the target set for RunToPinnedTargets. The pinning
// survives ResetSource and Reset, so one Query can serve many sources
// against the same targets.
func (q *Query) PinTargets(targets []da.Index) error {
	ps, err := q.buildPinnedSet(targets)
	if err != nil {
		return err
	}
	q.pinnedTargets = ps
	return nil
}

func (q *Query) PinSources(sources []da.Index) error {
	ps, err := q.buildPinnedSet(sources)
	if err != nil {
		return err
	}
	q.pinnedSources = ps
	return nil
}

// RunToPinnedTargets runs the forward sweep from the added sources and
// then one descending sweep over the pinned closure, leaving the distance
// to every pinned target in place for DistancesToTargets.
func (q *Query) RunToPinnedTargets() error {
	if q.pinnedTargets == nil {
		return util.WrapErrorf(util.ErrNothingPinned, util.ErrNothingPinned, "no pinned targets")
	}
	if len(q.fseeds) == 0 {
		return util.WrapErrorf(util.ErrQueryNotReady, util.ErrQueryNotReady, "no sources added")
	}

	forward := q.ancestorClosure(q.fseeds, q.inForward)
	for _, x := range forward {
		q.inForward[x] = false // clear scratch even when x stays unreached
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

	// descending sweep: pull each closure node's distance down through its
	// incoming arcs, so every down path toward a pinned target is covered
	closure := q.pinnedTargets.closure
	for i := len(closure) - 1; i >= 0; i-- {
		y := closure[i]
		d := q.fdist[y]
		if d == pkg.INF_WEIGHT {
			continue
		}
		q.h.ForDownArcsOf(y, func(arc, x da.Index) {
			if !q.pinnedTargets.inClosure[x] {
				return
			}
			if nd := pkg.AddWeights(d, q.m.Downward(arc)); nd < q.fdist[x] {
				if q.fdist[x] == pkg.INF_WEIGHT {
					q.ftouched = append(q.ftouched, x)
				}
				q.fdist[x] = nd
			}
		})
	}

	q.state = stateRun
	return nil
}

// RunToPinnedSources is the mirror image: a backward sweep from the added
// targets followed by a descending sweep over the pinned source closure,
// producing the distance from every pinned source to the targets.
func (q *Query) RunToPinnedSources() error {
	if q.pinnedSources == nil {
		return util.WrapErrorf(util.ErrNothingPinned, util.ErrNothingPinned, "no pinned sources")
	}
	if len(q.bseeds) == 0 {
		return util.WrapErrorf(util.ErrQueryNotReady, util.ErrQueryNotReady, "no targets added")
	}

	backward := q.ancestorClosure(q.bseeds, q.inBackward)
	for _, x := range backward {
		q.inBackward[x] = false // clear scratch even when x stays unreached
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

	closure := q.pinnedSources.closure
	for i := len(closure) - 1; i >= 0; i-- {
		y := closure[i]
		d := q.bdist[y]
		if d == pkg.INF_WEIGHT {
			continue
		}
		q.h.ForDownArcsOf(y, func(arc, x da.Index) {
			if !q.pinnedSources.inClosure[x] {
				return
			}
			if nd := pkg.AddWeights(d, q.m.Upward(arc)); nd < q.bdist[x] {
				if q.bdist[x] == pkg.INF_WEIGHT {
					q.btouched = append(q.btouched, x)
				}
				q.bdist[x] = nd
			}
		})
	}

	q.state = stateRun
	return nil
}

// DistancesToTargets returns one entry per pinned target, in pinning
// order; unreachable targets hold INF_WEIGHT.
func (q *Query) DistancesToTargets() []uint32 {
	return q.DistancesToTargetsInto(nil)
}

// DistancesToTargetsInto reuses buf when it has the capacity, for callers
// running many sources against the same pinned targets.
func (q *Query) DistancesToTargetsInto(buf []uint32) []uint32 {
	util.AssertPanic(q.state == stateRun, "DistancesToTargets before RunToPinnedTargets")
	util.AssertPanic(q.pinnedTargets != nil, "no pinned targets")

	buf = buf[:0]
	for _, node := range q.pinnedTargets.nodes {
		buf = append(buf, q.fdist[q.h.NodeRank(node)])
	}
	return buf
}

func (q *Query) DistancesFromSources() []uint32 {
	return q.DistancesFromSourcesInto(nil)
}

func (q *Query) DistancesFromSourcesInto(buf []uint32) []uint32 {
	util.AssertPanic(q.state == stateRun, "DistancesFromSources before RunToPinnedSources")
	util.AssertPanic(q.pinnedSources != nil, "no pinned sources")

	buf = buf[:0]
	for _, node := range q.pinnedSources.nodes {
		buf = append(buf, q.bdist[q.h.NodeRank(node)])
	}
	return buf
}
