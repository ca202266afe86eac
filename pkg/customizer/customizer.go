package customizer

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/util"
)

/*
Customize derives the upward and downward shortcut weights of m from its
input arc weights.

Arc ids ascend by tail rank, and every lower triangle of an arc has both
legs at a strictly lower tail rank, so a single ascending sweep sees each
leg in its final state before using it. After the sweep every shortcut
carries the weight of the shortest path through the nodes eliminated below
it, which is exactly what the elimination tree query relies on.
*/
func Customize(m *metrics.Metric) error {
	h := m.Hierarchy()
	if len(m.Weights()) != h.InputArcCount() {
		return util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"%d weights for %d input arcs", len(m.Weights()), h.InputArcCount())
	}

	arcCount := h.CCHArcCount()
	for a := da.Index(0); int(a) < arcCount; a++ {
		up, down := SeedArc(h, m.Weights(), a)
		m.SetUpward(a, up)
		m.SetDownward(a, down)
	}

	for a := da.Index(0); int(a) < arcCount; a++ {
		relaxLowerTriangles(m, a)
	}

	return nil
}

// relaxLowerTriangles folds every lower triangle of arc {b,c} into its two
// shortcut weights. Both triangle legs have a lower tail rank, so they must
// already hold their final weights.
func relaxLowerTriangles(m *metrics.Metric, a da.Index) {
	up, down := m.Upward(a), m.Downward(a)
	m.Hierarchy().ForLowerTrianglesOf(a, func(legTail, legHead da.Index) bool {
		// apex x, arc {b,c}: legTail = {x,b}, legHead = {x,c}
		if via := pkg.AddWeights(m.Downward(legTail), m.Upward(legHead)); via < up {
			up = via
		}
		if via := pkg.AddWeights(m.Upward(legTail), m.Downward(legHead)); via < down {
			down = via
		}
		return true
	})
	m.SetUpward(a, up)
	m.SetDownward(a, down)
}

// SeedArc computes the respected input weights of one cch arc: the minimum
// forward input weight for the ascending direction and the minimum backward
// input weight for the descending one.
func SeedArc(h *hierarchy.Hierarchy, weights []uint32, arc da.Index) (up, down uint32) {
	up, down = pkg.INF_WEIGHT, pkg.INF_WEIGHT
	for _, in := range h.ForwardInputArcsOf(arc) {
		if w := pkg.ClampWeight(weights[in]); w < up {
			up = w
		}
	}
	for _, in := range h.BackwardInputArcsOf(arc) {
		if w := pkg.ClampWeight(weights[in]); w < down {
			down = w
		}
	}
	return up, down
}
