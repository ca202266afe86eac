package routing_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adiatma-s/cchkit/pkg"
	"github.com/adiatma-s/cchkit/pkg/customizer"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/engine/routing"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/orderer"
	"github.com/adiatma-s/cchkit/pkg/util"
)

type fixture struct {
	tail, head []da.Index
	weights    []uint32
	graph      *da.Graph
	h          *hierarchy.Hierarchy
	m          *metrics.Metric
}

func newFixture(t *testing.T, n int, tail, head []da.Index, weights []uint32) *fixture {
	t.Helper()
	graph, err := da.NewGraph(n, tail, head)
	require.NoError(t, err)

	order := orderer.ComputeOrderDegree(n, tail, head)
	h, err := hierarchy.Build(order, tail, head, false)
	require.NoError(t, err)

	m, err := metrics.NewMetric(h, weights)
	require.NoError(t, err)
	require.NoError(t, customizer.Customize(m))

	return &fixture{tail: tail, head: head, weights: weights, graph: graph, h: h, m: m}
}

func (f *fixture) distance(t *testing.T, q *routing.Query, s, target da.Index) (uint32, bool) {
	t.Helper()
	require.NoError(t, q.Reset(f.m))
	q.AddSource(s, 0)
	q.AddTarget(target, 0)
	require.NoError(t, q.Run())
	return q.Distance()
}

func randomFixture(t *testing.T, seed int64, n, arcCount int) *fixture {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	tail := make([]da.Index, 0, arcCount)
	head := make([]da.Index, 0, arcCount)
	weights := make([]uint32, 0, arcCount)
	for i := 0; i < arcCount; i++ {
		u := da.Index(rng.Intn(n))
		v := da.Index(rng.Intn(n))
		if u == v {
			v = (v + 1) % da.Index(n)
		}
		tail = append(tail, u)
		head = append(head, v)
		weights = append(weights, uint32(1+rng.Intn(100)))
	}
	return newFixture(t, n, tail, head, weights)
}

func TestTriangleDistanceAndUpdates(t *testing.T) {
	// 0->1 (5), 1->2 (7), 0->2 (20): the detour 0->1->2 wins at first
	f := newFixture(t, 3,
		[]da.Index{0, 1, 0}, []da.Index{1, 2, 2}, []uint32{5, 7, 20})
	q := routing.NewQuery(f.m)
	updater := customizer.NewPartialUpdater(f.h)

	dist, ok := f.distance(t, q, 0, 2)
	require.True(t, ok)
	require.Equal(t, uint32(12), dist)

	// closing the detour entrance makes the direct arc the best option
	require.NoError(t, updater.Apply(f.m, map[da.Index]uint32{0: 30}))
	dist, ok = f.distance(t, q, 0, 2)
	require.True(t, ok)
	require.Equal(t, uint32(20), dist)

	// speeding up the second leg alone does not help: 30+1 > 20
	require.NoError(t, updater.Apply(f.m, map[da.Index]uint32{1: 1}))
	dist, ok = f.distance(t, q, 0, 2)
	require.True(t, ok)
	require.Equal(t, uint32(20), dist)

	// reopening the entrance flips the answer back to the detour
	require.NoError(t, updater.Apply(f.m, map[da.Index]uint32{0: 2}))
	dist, ok = f.distance(t, q, 0, 2)
	require.True(t, ok)
	require.Equal(t, uint32(3), dist)
}

func TestChainPathUnpacking(t *testing.T) {
	f := newFixture(t, 4,
		[]da.Index{0, 1, 2}, []da.Index{1, 2, 3}, []uint32{10, 5, 7})
	q := routing.NewQuery(f.m)

	dist, ok := f.distance(t, q, 0, 3)
	require.True(t, ok)
	require.Equal(t, uint32(22), dist)
	require.Equal(t, []da.Index{0, 1, 2, 3}, q.NodePath())
	require.Equal(t, []da.Index{0, 1, 2}, q.ArcPath())
}

func TestSourceEqualsTarget(t *testing.T) {
	f := newFixture(t, 3,
		[]da.Index{0, 1}, []da.Index{1, 2}, []uint32{4, 6})
	q := routing.NewQuery(f.m)

	dist, ok := f.distance(t, q, 1, 1)
	require.True(t, ok)
	require.Equal(t, uint32(0), dist)
	require.Equal(t, []da.Index{1}, q.NodePath())
	require.Empty(t, q.ArcPath())
}

func TestUnreachableTarget(t *testing.T) {
	// two components: {0,1} and {2,3}
	f := newFixture(t, 4,
		[]da.Index{0, 2}, []da.Index{1, 3}, []uint32{4, 6})
	q := routing.NewQuery(f.m)

	dist, ok := f.distance(t, q, 0, 3)
	require.False(t, ok)
	require.Equal(t, pkg.INF_WEIGHT, dist)
	require.Empty(t, q.NodePath())
	require.Empty(t, q.ArcPath())
}

func TestRandomGraphsMatchDijkstra(t *testing.T) {
	for _, seed := range []int64{5, 6, 7} {
		const n = 40
		f := randomFixture(t, seed, n, 160)
		q := routing.NewQuery(f.m)
		dj := routing.NewDijkstra(f.graph, f.weights)

		for s := 0; s < n; s++ {
			want := dj.ShortestDistances(da.Index(s))
			for target := 0; target < n; target++ {
				dist, ok := f.distance(t, q, da.Index(s), da.Index(target))
				require.Equal(t, want[target], dist,
					"seed %d: wrong distance %d->%d", seed, s, target)
				require.Equal(t, want[target] < pkg.INF_WEIGHT, ok)
			}
		}
	}
}

func TestUnpackedPathsAreConsistent(t *testing.T) {
	const n = 30
	f := randomFixture(t, 9, n, 120)
	q := routing.NewQuery(f.m)

	for s := 0; s < n; s++ {
		for target := 0; target < n; target++ {
			dist, ok := f.distance(t, q, da.Index(s), da.Index(target))
			if !ok {
				continue
			}

			arcs := q.ArcPath()
			nodes := q.NodePath()
			require.Len(t, nodes, len(arcs)+1)
			require.Equal(t, da.Index(s), nodes[0])
			require.Equal(t, da.Index(target), nodes[len(nodes)-1])

			var total uint32
			for i, arc := range arcs {
				require.Equal(t, nodes[i], f.tail[arc], "arc %d does not start at node %d", arc, nodes[i])
				require.Equal(t, nodes[i+1], f.head[arc], "arc %d does not end at node %d", arc, nodes[i+1])
				total = pkg.AddWeights(total, f.weights[arc])
			}
			require.Equal(t, dist, total, "path weight differs from reported distance")
		}
	}
}

func TestQueryResetIsIdempotent(t *testing.T) {
	f := randomFixture(t, 13, 25, 100)
	reused := routing.NewQuery(f.m)
	dj := routing.NewDijkstra(f.graph, f.weights)

	pairs := [][2]da.Index{{0, 24}, {24, 0}, {3, 17}, {17, 3}, {0, 24}}
	for _, p := range pairs {
		want := dj.ShortestDistances(p[0])[p[1]]

		gotReused, _ := f.distance(t, reused, p[0], p[1])
		fresh := routing.NewQuery(f.m)
		gotFresh, _ := f.distance(t, fresh, p[0], p[1])

		require.Equal(t, want, gotReused)
		require.Equal(t, want, gotFresh)
	}
}

func TestMultipleSourcesAndTargets(t *testing.T) {
	f := randomFixture(t, 17, 25, 100)
	q := routing.NewQuery(f.m)
	dj := routing.NewDijkstra(f.graph, f.weights)

	require.NoError(t, q.Reset(f.m))
	q.AddSource(2, 10)
	q.AddSource(5, 0)
	q.AddTarget(20, 3)
	q.AddTarget(21, 0)
	require.NoError(t, q.Run())

	from2 := dj.ShortestDistances(2)
	from5 := dj.ShortestDistances(5)
	want := pkg.INF_WEIGHT
	for _, cand := range []uint32{
		pkg.AddWeights(pkg.AddWeights(10, from2[20]), 3),
		pkg.AddWeights(10, from2[21]),
		pkg.AddWeights(pkg.AddWeights(0, from5[20]), 3),
		from5[21],
	} {
		if cand < want {
			want = cand
		}
	}

	dist, _ := q.Distance()
	require.Equal(t, want, dist)
}

func TestPinnedTargetsMatchDijkstra(t *testing.T) {
	const n = 35
	f := randomFixture(t, 19, n, 140)
	q := routing.NewQuery(f.m)
	dj := routing.NewDijkstra(f.graph, f.weights)

	targets := []da.Index{0, 7, 7, 19, 34}
	require.NoError(t, q.PinTargets(targets))

	var buf []uint32
	for s := 0; s < n; s++ {
		q.ResetSource()
		q.AddSource(da.Index(s), 0)
		require.NoError(t, q.RunToPinnedTargets())
		buf = q.DistancesToTargetsInto(buf)

		want := dj.ShortestDistances(da.Index(s))
		require.Len(t, buf, len(targets))
		for i, target := range targets {
			require.Equal(t, want[target], buf[i],
				"distance %d->%d wrong in pinned batch", s, target)
		}
	}
}

func TestPinnedSourcesMatchDijkstra(t *testing.T) {
	const n = 35
	f := randomFixture(t, 29, n, 140)
	q := routing.NewQuery(f.m)
	dj := routing.NewDijkstra(f.graph, f.weights)

	sources := []da.Index{1, 12, 30}
	require.NoError(t, q.PinSources(sources))
	perSource := make([][]uint32, len(sources))
	for i, s := range sources {
		perSource[i] = dj.ShortestDistances(s)
	}

	for target := 0; target < n; target++ {
		q.ResetTarget()
		q.AddTarget(da.Index(target), 0)
		require.NoError(t, q.RunToPinnedSources())

		got := q.DistancesFromSources()
		require.Len(t, got, len(sources))
		for i := range sources {
			require.Equal(t, perSource[i][target], got[i],
				"distance %d->%d wrong in pinned batch", sources[i], target)
		}
	}
}

func TestPinnedRunsRepeatOnOneWayCycles(t *testing.T) {
	// one-way cycle 0->2->1->0: the forward sweep from node 0 leaves rank 1
	// unreached, yet rank 1 sits on the elimination tree path of every
	// node. Rerunning the same query must rebuild the full ancestor
	// closure, not stop at leftovers of the previous run.
	f := newFixture(t, 3,
		[]da.Index{1, 0, 2}, []da.Index{0, 2, 1}, []uint32{4, 5, 6})
	q := routing.NewQuery(f.m)
	require.NoError(t, q.PinTargets([]da.Index{1}))

	for round := 0; round < 3; round++ {
		q.ResetSource()
		q.AddSource(0, 0)
		require.NoError(t, q.RunToPinnedTargets())
		got := q.DistancesToTargets()
		require.Equal(t, []uint32{11}, got, "round %d: distance 0->1 must stay 0->2->1", round)
	}

	// mirrored orientation for the many-to-one side
	g := newFixture(t, 3,
		[]da.Index{0, 2, 1}, []da.Index{1, 0, 2}, []uint32{4, 5, 6})
	p := routing.NewQuery(g.m)
	require.NoError(t, p.PinSources([]da.Index{1}))

	for round := 0; round < 3; round++ {
		p.ResetTarget()
		p.AddTarget(0, 0)
		require.NoError(t, p.RunToPinnedSources())
		got := p.DistancesFromSources()
		require.Equal(t, []uint32{11}, got, "round %d: distance 1->0 must stay 1->2->0", round)
	}
}

func TestPinnedRunRequiresPins(t *testing.T) {
	f := newFixture(t, 3, []da.Index{0, 1}, []da.Index{1, 2}, []uint32{1, 1})
	q := routing.NewQuery(f.m)

	q.AddSource(0, 0)
	require.ErrorIs(t, q.RunToPinnedTargets(), util.ErrNothingPinned)

	require.NoError(t, q.PinTargets([]da.Index{2}))
	q.ResetSource()
	require.ErrorIs(t, q.RunToPinnedTargets(), util.ErrQueryNotReady)

	require.ErrorIs(t, q.PinTargets([]da.Index{9}), util.ErrBadParamInput)
}

func TestRunWithoutEndpoints(t *testing.T) {
	f := newFixture(t, 3, []da.Index{0, 1}, []da.Index{1, 2}, []uint32{1, 1})
	q := routing.NewQuery(f.m)

	require.ErrorIs(t, q.Run(), util.ErrQueryNotReady)
	q.AddSource(0, 0)
	require.ErrorIs(t, q.Run(), util.ErrQueryNotReady)
}

func TestSequencingViolationsPanic(t *testing.T) {
	f := newFixture(t, 3, []da.Index{0, 1}, []da.Index{1, 2}, []uint32{1, 1})
	q := routing.NewQuery(f.m)

	require.Panics(t, func() { q.Distance() }, "Distance before Run must panic")
	require.Panics(t, func() { q.NodePath() }, "NodePath before Run must panic")
	require.Panics(t, func() { q.AddSource(9, 0) }, "out of range source must panic")

	q.AddSource(0, 0)
	q.AddTarget(2, 0)
	require.NoError(t, q.Run())
	require.Panics(t, func() { q.AddSource(1, 0) }, "AddSource after Run must panic")
	require.Panics(t, func() { q.AddTarget(1, 0) }, "AddTarget after Run must panic")
}

func TestResetSwitchesMetric(t *testing.T) {
	tail := []da.Index{0, 1}
	head := []da.Index{1, 2}
	f := newFixture(t, 3, tail, head, []uint32{4, 6})

	faster, err := metrics.NewMetric(f.h, []uint32{1, 1})
	require.NoError(t, err)
	require.NoError(t, customizer.Customize(faster))

	q := routing.NewQuery(f.m)
	dist, _ := f.distance(t, q, 0, 2)
	require.Equal(t, uint32(10), dist)

	require.NoError(t, q.Reset(faster))
	q.AddSource(0, 0)
	q.AddTarget(2, 0)
	require.NoError(t, q.Run())
	dist, _ = q.Distance()
	require.Equal(t, uint32(2), dist)

	foreignH, err := hierarchy.Build([]da.Index{0, 1, 2}, tail, head, false)
	require.NoError(t, err)
	foreign, err := metrics.NewMetric(foreignH, []uint32{1, 1})
	require.NoError(t, err)
	require.ErrorIs(t, q.Reset(foreign), util.ErrForeignMetric)
}
