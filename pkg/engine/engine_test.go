package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/engine"
	"github.com/adiatma-s/cchkit/pkg/engine/routing"
	"github.com/adiatma-s/cchkit/pkg/util"
)

// 5x5 grid with coordinates on the unit lattice and random arc weights.
func gridFixture(t *testing.T) (*da.Graph, []float64, []float64, []uint32) {
	t.Helper()
	const w, h = 5, 5
	var (
		tail, head []da.Index
		lat, lon   []float64
	)
	at := func(x, y int) da.Index { return da.Index(y*w + x) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lat = append(lat, float64(y))
			lon = append(lon, float64(x))
			if x+1 < w {
				tail = append(tail, at(x, y), at(x+1, y))
				head = append(head, at(x+1, y), at(x, y))
			}
			if y+1 < h {
				tail = append(tail, at(x, y), at(x, y+1))
				head = append(head, at(x, y+1), at(x, y))
			}
		}
	}

	graph, err := da.NewGraph(w*h, tail, head)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(31))
	weights := make([]uint32, graph.NumberOfArcs())
	for i := range weights {
		weights[i] = uint32(1 + rng.Intn(20))
	}
	return graph, lat, lon, weights
}

func TestEngineShortestPathMatchesDijkstra(t *testing.T) {
	graph, lat, lon, weights := gridFixture(t)

	e, err := engine.NewEngine(graph, lat, lon, weights, util.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	dj := routing.NewDijkstra(graph, weights)
	n := graph.NumberOfVertices()
	for s := 0; s < n; s++ {
		want := dj.ShortestDistances(da.Index(s))
		for target := 0; target < n; target++ {
			dist, path, found, err := e.ShortestPath(da.Index(s), da.Index(target))
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, want[target], dist, "wrong distance %d->%d", s, target)
			require.Equal(t, da.Index(s), path[0])
			require.Equal(t, da.Index(target), path[len(path)-1])
		}
	}

	// second lookup is served from the route cache and must not diverge
	distFirst, _, _, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	distCached, _, _, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	require.Equal(t, distFirst, distCached)
}

func TestEngineReturnedPathIsCallerOwned(t *testing.T) {
	graph, lat, lon, weights := gridFixture(t)

	e, err := engine.NewEngine(graph, lat, lon, weights, util.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	_, first, _, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	want := append([]da.Index(nil), first...)

	// scribbling over the returned slice must not leak into later lookups
	for i := range first {
		first[i] = 999
	}
	_, second, _, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	require.Equal(t, want, second)

	for i := range second {
		second[i] = 777
	}
	_, third, _, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	require.Equal(t, want, third)
}

func TestEngineUpdateWeights(t *testing.T) {
	graph, lat, lon, weights := gridFixture(t)

	e, err := engine.NewEngine(graph, lat, lon, weights, util.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	before, _, found, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	require.True(t, found)

	changes := make(map[da.Index]uint32)
	for a := 0; a < graph.NumberOfArcs(); a++ {
		if graph.GetTail(da.Index(a)) == 0 {
			changes[da.Index(a)] = weights[a] + 100
		}
	}
	require.NoError(t, e.UpdateWeights(changes))

	after, _, found, err := e.ShortestPath(0, 24)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, before+100, after, "every path out of node 0 got 100 slower")

	updated := make([]uint32, len(weights))
	copy(updated, weights)
	for a, w := range changes {
		updated[a] = w
	}
	dj := routing.NewDijkstra(graph, updated)
	require.Equal(t, dj.ShortestDistances(0)[24], after)
}

func TestEngineHierarchyReload(t *testing.T) {
	graph, lat, lon, weights := gridFixture(t)

	built, err := engine.NewEngine(graph, lat, lon, weights, util.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	file := t.TempDir() + "/grid.cch.bz2"
	require.NoError(t, built.Hierarchy().WriteToFile(file))

	loaded, err := engine.NewEngineFromFile(graph, file, weights, util.DefaultParams(), zap.NewNop())
	require.NoError(t, err)

	for _, pair := range [][2]da.Index{{0, 24}, {4, 20}, {12, 3}} {
		wantDist, _, wantFound, err := built.ShortestPath(pair[0], pair[1])
		require.NoError(t, err)
		gotDist, _, gotFound, err := loaded.ShortestPath(pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, wantFound, gotFound)
		require.Equal(t, wantDist, gotDist)
	}
}
