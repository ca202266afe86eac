package customizer

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/util"
)

// PartialUpdater recustomizes only the shortcuts affected by a handful of
// input weight changes, which is much cheaper than a full sweep when a few
// roads close or congest. One updater is bound to a hierarchy and may be
// reused across metrics built from it and across rounds of changes.
type PartialUpdater struct {
	h       *hierarchy.Hierarchy
	queue   *da.MinHeap[da.Index, da.Index]
	queued  []bool // per cch arc, on the queue right now
	changed []da.Index
}

func NewPartialUpdater(h *hierarchy.Hierarchy) *PartialUpdater {
	return &PartialUpdater{
		h:      h,
		queue:  da.NewFourAryHeap[da.Index, da.Index](),
		queued: make([]bool, h.CCHArcCount()),
	}
}

// Reset forgets all marked changes without touching any metric.
func (u *PartialUpdater) Reset() {
	u.changed = u.changed[:0]
}

// MarkChanged records that the weight of inputArc differs from the value
// the metric was last customized with.
func (u *PartialUpdater) MarkChanged(inputArc da.Index) {
	u.changed = append(u.changed, inputArc)
}

// Apply writes the new weights into m, then recustomizes the affected
// shortcuts. The updater is reset afterwards either way.
func (u *PartialUpdater) Apply(m *metrics.Metric, changes map[da.Index]uint32) error {
	for inputArc, weight := range changes {
		if int(inputArc) >= u.h.InputArcCount() {
			return util.WrapErrorf(util.ErrBadParamInput, util.ErrBadParamInput,
				"input arc %d out of range for %d arcs", inputArc, u.h.InputArcCount())
		}
		m.SetWeight(inputArc, weight)
		u.MarkChanged(inputArc)
	}
	return u.Recustomize(m)
}

/*
Recustomize reprocesses the dirty part of m bottom-up.

Every shortcut that an arc depends on has a strictly smaller arc id, so
draining a min-heap of dirty arc ids processes each arc after all of its
dirty inputs. An arc whose recomputation leaves both directions unchanged
stops the propagation; otherwise every arc that uses it as a triangle leg
is enqueued in turn.
*/
func (u *PartialUpdater) Recustomize(m *metrics.Metric) error {
	if m.Hierarchy() != u.h {
		return util.WrapErrorf(util.ErrForeignMetric, util.ErrBadParamInput,
			"metric belongs to a different hierarchy")
	}

	for _, inputArc := range u.changed {
		if arc := u.h.CCHArcOfInput(inputArc); arc != da.Index(pkg.INVALID_INDEX) {
			u.enqueue(arc)
		}
	}
	u.changed = u.changed[:0]

	for !u.queue.IsEmpty() {
		node, err := u.queue.ExtractMin()
		if err != nil {
			return err
		}
		arc := node.GetItem()
		u.queued[arc] = false

		oldUp, oldDown := m.Upward(arc), m.Downward(arc)
		up, down := SeedArc(u.h, m.Weights(), arc)
		m.SetUpward(arc, up)
		m.SetDownward(arc, down)
		relaxLowerTriangles(m, arc)

		if m.Upward(arc) == oldUp && m.Downward(arc) == oldDown {
			continue
		}
		u.enqueueDependents(arc)
	}

	return nil
}

func (u *PartialUpdater) enqueue(arc da.Index) {
	if u.queued[arc] {
		return
	}
	u.queued[arc] = true
	u.queue.Insert(da.NewPriorityQueueNode(arc, arc))
}

// enqueueDependents marks every arc that has {b,c} as a lower triangle
// leg: the apex of such a triangle is b, so the third corner is one of
// b's other up-neighbors.
func (u *PartialUpdater) enqueueDependents(arc da.Index) {
	b, c := u.h.ArcTail(arc), u.h.ArcHead(arc)
	u.h.ForUpArcsOf(b, func(_, z da.Index) {
		if z == c {
			return
		}
		lo, hi := z, c
		if lo > hi {
			lo, hi = hi, lo
		}
		if dep, ok := u.h.FindArc(lo, hi); ok {
			u.enqueue(dep)
		}
	})
}
