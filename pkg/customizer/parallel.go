package customizer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/util"
)

// ParallelCustomize produces the same shortcut weights as Customize using
// threadCount workers (GOMAXPROCS when threadCount <= 0).
//
// Work is scheduled over the elimination tree: a node's out-arcs only
// depend on arcs whose tail lies strictly below it in the tree, so a node
// becomes runnable once all of its tree children finished. Each worker
// writes only the arcs of the node it owns, which keeps the sweep free of
// locks on the weight arrays.
func ParallelCustomize(m *metrics.Metric, threadCount int) error {
	h := m.Hierarchy()
	if len(m.Weights()) != h.InputArcCount() {
		return util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"%d weights for %d input arcs", len(m.Weights()), h.InputArcCount())
	}
	if threadCount <= 0 {
		threadCount = runtime.GOMAXPROCS(0)
	}

	n := h.NodeCount()
	arcCount := h.CCHArcCount()
	if n == 0 {
		return nil
	}

	var g errgroup.Group
	chunk := (arcCount + threadCount - 1) / threadCount
	for lo := 0; lo < arcCount; lo += chunk {
		hi := util.MinInt(lo+chunk, arcCount)
		lo := lo
		g.Go(func() error {
			for a := lo; a < hi; a++ {
				up, down := SeedArc(h, m.Weights(), da.Index(a))
				m.SetUpward(da.Index(a), up)
				m.SetDownward(da.Index(a), down)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pending := make([]int32, n)
	for r := 0; r < n; r++ {
		if p := h.TreeParent(da.Index(r)); p != da.Index(pkg.INVALID_INDEX) {
			pending[p]++
		}
	}

	ready := make(chan da.Index, n)
	for r := 0; r < n; r++ {
		if pending[r] == 0 {
			ready <- da.Index(r)
		}
	}

	var processed int32
	var wg sync.WaitGroup
	for t := 0; t < threadCount; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range ready {
				h.ForUpArcsOf(node, func(arc, _ da.Index) {
					relaxLowerTriangles(m, arc)
				})
				if p := h.TreeParent(node); p != da.Index(pkg.INVALID_INDEX) &&
					atomic.AddInt32(&pending[p], -1) == 0 {
					ready <- p
				}
				if atomic.AddInt32(&processed, 1) == int32(n) {
					close(ready)
				}
			}
		}()
	}
	wg.Wait()

	return nil
}
