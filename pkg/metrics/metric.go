package metrics

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/util"
)

// Metric couples one hierarchy with one set of input arc weights plus the
// customized upward/downward shortcut weights derived from them. The
// hierarchy itself stays untouched, so many metrics (travel time, distance,
// a live-traffic snapshot) can share a single build.
type Metric struct {
	h       *hierarchy.Hierarchy
	weights []uint32 // input arc weights, owned copy
	up      []uint32 // per cch arc, ascending direction
	down    []uint32 // per cch arc, descending direction
}

// NewMetric allocates an uncustomized metric for h. weights must carry one
// entry per input arc; values at or above INF_WEIGHT mean unusable.
func NewMetric(h *hierarchy.Hierarchy, weights []uint32) (*Metric, error) {
	if len(weights) != h.InputArcCount() {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"%d weights for %d input arcs", len(weights), h.InputArcCount())
	}

	m := &Metric{
		h:       h,
		weights: append([]uint32(nil), weights...),
		up:      make([]uint32, h.CCHArcCount()),
		down:    make([]uint32, h.CCHArcCount()),
	}
	for a := range m.up {
		m.up[a] = pkg.INF_WEIGHT
		m.down[a] = pkg.INF_WEIGHT
	}
	return m, nil
}

func (m *Metric) Hierarchy() *hierarchy.Hierarchy {
	return m.h
}

// Weights returns the metric's own copy of the input arc weights.
func (m *Metric) Weights() []uint32 {
	return m.weights
}

func (m *Metric) Upward(arc da.Index) uint32 {
	return m.up[arc]
}

func (m *Metric) Downward(arc da.Index) uint32 {
	return m.down[arc]
}

// SetWeight changes one input arc weight without recustomizing; pair it
// with a PartialUpdater to propagate the change.
func (m *Metric) SetWeight(inputArc da.Index, weight uint32) {
	m.weights[inputArc] = pkg.ClampWeight(weight)
}

// SetUpward and SetDownward are customization hooks; queries read stale
// values until the owning customizer finishes.
func (m *Metric) SetUpward(arc da.Index, weight uint32) {
	m.up[arc] = weight
}

func (m *Metric) SetDownward(arc da.Index, weight uint32) {
	m.down[arc] = weight
}
