package engine

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/adiatma-s/cchkit/pkg/customizer"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/engine/routing"
	"github.com/adiatma-s/cchkit/pkg/hierarchy"
	"github.com/adiatma-s/cchkit/pkg/metrics"
	"github.com/adiatma-s/cchkit/pkg/orderer"
	"github.com/adiatma-s/cchkit/pkg/util"
)

type pathCacheKey struct {
	source, target da.Index
}

type cachedRoute struct {
	distance uint32
	nodePath []da.Index
}

// Engine bundles the whole pipeline behind one handle: elimination order,
// hierarchy build, customization, a pool of reusable queries and an LRU of
// recently unpacked routes. It is safe for concurrent ShortestPath calls;
// weight updates take the writer side of the lock.
type Engine struct {
	graph  *da.Graph
	h      *hierarchy.Hierarchy
	metric *metrics.Metric
	logger *zap.Logger

	updater    *customizer.PartialUpdater
	queryPool  sync.Pool
	routeCache *lru.Cache[pathCacheKey, cachedRoute]
	mu         sync.RWMutex
}

const routeCacheSize = 1 << 16

// NewEngine runs ordering, hierarchy construction and parallel
// customization for the given graph and weights. lat/lon drive the
// inertial flow bisections of the ordering.
func NewEngine(graph *da.Graph, lat, lon []float64, weights []uint32,
	params util.Params, logger *zap.Logger) (*Engine, error) {

	nd := orderer.NewNestedDissectionOrderer(params, logger)
	order, err := nd.ComputeOrder(graph.NumberOfVertices(), graphTails(graph), graphHeads(graph), lat, lon)
	if err != nil {
		return nil, err
	}

	h, err := hierarchy.Build(order, graphTails(graph), graphHeads(graph), false,
		hierarchy.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return newEngineWithHierarchy(graph, h, weights, params, logger)
}

// NewEngineFromFile skips ordering and construction by loading a
// hierarchy persisted with WriteToFile.
func NewEngineFromFile(graph *da.Graph, hierarchyFilePath string, weights []uint32,
	params util.Params, logger *zap.Logger) (*Engine, error) {

	logger.Sugar().Infof("reading hierarchy from %s", hierarchyFilePath)
	h, err := hierarchy.ReadFromFile(hierarchyFilePath)
	if err != nil {
		return nil, err
	}
	return newEngineWithHierarchy(graph, h, weights, params, logger)
}

func newEngineWithHierarchy(graph *da.Graph, h *hierarchy.Hierarchy, weights []uint32,
	params util.Params, logger *zap.Logger) (*Engine, error) {

	m, err := metrics.NewMetric(h, weights)
	if err != nil {
		return nil, err
	}
	if err := customizer.ParallelCustomize(m, params.CustomizerWorkers); err != nil {
		return nil, err
	}

	routeCache, err := lru.New[pathCacheKey, cachedRoute](routeCacheSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		graph:      graph,
		h:          h,
		metric:     m,
		logger:     logger,
		updater:    customizer.NewPartialUpdater(h),
		routeCache: routeCache,
	}
	e.queryPool.New = func() any {
		return routing.NewQuery(e.metric)
	}
	return e, nil
}

func (e *Engine) Hierarchy() *hierarchy.Hierarchy {
	return e.h
}

func (e *Engine) Metric() *metrics.Metric {
	return e.metric
}

// ShortestPath returns the distance and node path between two original
// node ids; found is false when the target is unreachable.
func (e *Engine) ShortestPath(source, target da.Index) (uint32, []da.Index, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	key := pathCacheKey{source: source, target: target}
	if route, ok := e.routeCache.Get(key); ok {
		return route.distance, append([]da.Index(nil), route.nodePath...), true, nil
	}

	q := e.queryPool.Get().(*routing.Query)
	defer e.queryPool.Put(q)
	if err := q.Reset(e.metric); err != nil {
		return 0, nil, false, err
	}

	q.AddSource(source, 0)
	q.AddTarget(target, 0)
	if err := q.Run(); err != nil {
		return 0, nil, false, err
	}

	dist, found := q.Distance()
	if !found {
		return 0, nil, false, nil
	}
	// the cache keeps its own copy so callers may mutate the returned path
	path := q.NodePath()
	e.routeCache.Add(key, cachedRoute{distance: dist, nodePath: append([]da.Index(nil), path...)})
	return dist, path, true, nil
}

// UpdateWeights applies a batch of input arc weight changes and
// recustomizes only the affected shortcuts. The route cache is dropped
// because any cached path may cross a changed arc.
func (e *Engine) UpdateWeights(changes map[da.Index]uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.updater.Apply(e.metric, changes); err != nil {
		return err
	}
	e.routeCache.Purge()
	return nil
}

func graphTails(g *da.Graph) []da.Index {
	tails := make([]da.Index, g.NumberOfArcs())
	for a := range tails {
		tails[a] = g.GetTail(da.Index(a))
	}
	return tails
}

func graphHeads(g *da.Graph) []da.Index {
	heads := make([]da.Index, g.NumberOfArcs())
	for a := range heads {
		heads[a] = g.GetHead(da.Index(a))
	}
	return heads
}
