package customizer

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/metrics"
)

// PerfectMetric holds the outcome of perfect customization: shortcut
// weights equal to the true shortest-path distance between the arc's
// endpoints, plus flags marking the arcs an exact query still needs.
// Queries keep using the regular metric because path unpacking relies on
// the triangle identities that perfect weights break.
type PerfectMetric struct {
	up, down         []uint32
	keepUp, keepDown []bool
}

func (pm *PerfectMetric) Upward(arc da.Index) uint32 {
	return pm.up[arc]
}

func (pm *PerfectMetric) Downward(arc da.Index) uint32 {
	return pm.down[arc]
}

// KeepUpward reports whether the ascending direction of arc is not
// dominated by a path over some lower triangle apex.
func (pm *PerfectMetric) KeepUpward(arc da.Index) bool {
	return pm.keepUp[arc]
}

func (pm *PerfectMetric) KeepDownward(arc da.Index) bool {
	return pm.keepDown[arc]
}

// PerfectCustomize runs the top-down pass over an already customized
// metric. Arcs are visited by descending id, pushing each arc's final
// weight onto its lower triangle legs: going over the higher-ranked
// endpoint can shorten the leg between the two lower ones.
func PerfectCustomize(m *metrics.Metric) *PerfectMetric {
	h := m.Hierarchy()
	arcCount := h.CCHArcCount()

	pm := &PerfectMetric{
		up:       make([]uint32, arcCount),
		down:     make([]uint32, arcCount),
		keepUp:   make([]bool, arcCount),
		keepDown: make([]bool, arcCount),
	}
	for a := 0; a < arcCount; a++ {
		pm.up[a] = m.Upward(da.Index(a))
		pm.down[a] = m.Downward(da.Index(a))
	}

	for a := arcCount - 1; a >= 0; a-- {
		arc := da.Index(a)
		h.ForLowerTrianglesOf(arc, func(legTail, legHead da.Index) bool {
			// apex x, arc {b,c}: legTail = {x,b}, legHead = {x,c}
			if via := pkg.AddWeights(pm.up[legTail], pm.up[arc]); via < pm.up[legHead] {
				pm.up[legHead] = via
			}
			if via := pkg.AddWeights(pm.down[legTail], pm.down[arc]); via < pm.down[legHead] {
				pm.down[legHead] = via
			}
			if via := pkg.AddWeights(pm.up[legHead], pm.down[arc]); via < pm.up[legTail] {
				pm.up[legTail] = via
			}
			if via := pkg.AddWeights(pm.up[arc], pm.down[legHead]); via < pm.down[legTail] {
				pm.down[legTail] = via
			}
			return true
		})
	}

	for a := 0; a < arcCount; a++ {
		arc := da.Index(a)
		keepUp := pm.up[a] < pkg.INF_WEIGHT
		keepDown := pm.down[a] < pkg.INF_WEIGHT
		h.ForLowerTrianglesOf(arc, func(legTail, legHead da.Index) bool {
			if pkg.AddWeights(pm.down[legTail], pm.up[legHead]) <= pm.up[a] {
				keepUp = false
			}
			if pkg.AddWeights(pm.up[legTail], pm.down[legHead]) <= pm.down[a] {
				keepDown = false
			}
			return keepUp || keepDown
		})
		pm.keepUp[a] = keepUp
		pm.keepDown[a] = keepDown
	}

	return pm
}
