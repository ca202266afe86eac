package orderer

import (
	"math"
	"sort"

	"github.com/adiatma-s/cchkit/pkg/concurrent"
	"github.com/adiatma-s/cchkit/pkg/util"
	"github.com/golang/geo/r2"
)

type minCutJob struct {
	line r2.Point
}

func newMinCutJob(line r2.Point) minCutJob {
	return minCutJob{line: line}
}

func (mj minCutJob) getLine() r2.Point {
	return mj.line
}

// inertialFlow bisects one (sub)graph: project the nodes onto a handful of
// straight lines, fix the extremes of each projection as flow sources and
// sinks, and keep the balanced minimum cut found by Dinic.
type inertialFlow struct {
	numVertices int
	edges       [][2]int32 // undirected, deduplicated, local ids
	lat, lon    []float64
	params      util.Params
}

func newInertialFlow(numVertices int, edges [][2]int32, lat, lon []float64, params util.Params) *inertialFlow {
	return &inertialFlow{
		numVertices: numVertices,
		edges:       edges,
		lat:         lat,
		lon:         lon,
		params:      params,
	}
}

func (inf *inertialFlow) computeBestCut() *MinCut {
	var (
		best              *MinCut
		bestNumberOfEdges = math.MaxInt
	)

	slopeCount := inf.params.InertialFlowSlopes
	diagonals := []r2.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}}

	wpInertialFlow := concurrent.NewWorkerPool[minCutJob, *MinCut](
		inf.params.FlowWorkers, slopeCount+len(diagonals))

	for i := 0; i < slopeCount; i++ {
		slope := -1 + float64(i)*(2.0/float64(slopeCount))
		wpInertialFlow.AddJob(newMinCutJob(r2.Point{X: slope, Y: 1 - math.Abs(slope)}))
	}
	for _, line := range diagonals {
		wpInertialFlow.AddJob(newMinCutJob(line))
	}

	wpInertialFlow.Close()
	wpInertialFlow.Start(func(job minCutJob) *MinCut {
		return inf.computeMinCutAlongLine(job.getLine())
	})
	wpInertialFlow.Wait()

	balanceDelta := func(numSinkSide int) int {
		return util.Abs(inf.numVertices/2 - numSinkSide)
	}

	for minCut := range wpInertialFlow.CollectResults() {
		if best == nil ||
			minCut.GetCutSize() < bestNumberOfEdges ||
			(minCut.GetCutSize() == bestNumberOfEdges &&
				balanceDelta(minCut.GetNumNodesInSinkSide()) < balanceDelta(best.GetNumNodesInSinkSide())) {
			best = minCut
			bestNumberOfEdges = minCut.GetCutSize()
		}
	}

	return best
}

func (inf *inertialFlow) computeMinCutAlongLine(line r2.Point) *MinCut {
	sources, sinks := inf.sortVerticesByLineProjection(line)

	// each job builds its own residual network, so the worker pool needs no
	// shared mutable state
	fg := newFlowGraph(inf.numVertices + 2)
	for _, e := range inf.edges {
		fg.addUndirectedEdge(int(e[0]), int(e[1]))
	}

	artificialSource := inf.numVertices
	artificialSink := inf.numVertices + 1
	for _, s := range sources {
		fg.addInfEdge(artificialSource, s)
	}
	for _, t := range sinks {
		fg.addInfEdge(t, artificialSink)
	}

	dn := newDinicMaxFlow(fg)
	return dn.ComputeMaxflowMinCut(artificialSource, artificialSink)
}

func (inf *inertialFlow) sortVerticesByLineProjection(line r2.Point) ([]int, []int) {
	type item struct {
		idx        int
		projection float64
	}
	n := inf.numVertices

	items := make([]item, n)
	for i := 0; i < n; i++ {
		p := r2.Point{X: inf.lon[i], Y: inf.lat[i]}
		items[i] = item{idx: i, projection: p.Dot(line)}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].projection != items[j].projection {
			return items[i].projection < items[j].projection
		}
		return items[i].idx < items[j].idx
	})

	endpointsLength := int(float64(n) * inf.params.SourceSinkFraction)
	if endpointsLength < 1 {
		endpointsLength = 1
	}
	if 2*endpointsLength > n {
		endpointsLength = n / 2
	}

	sourceNodes := make([]int, 0, endpointsLength)
	sinkNodes := make([]int, 0, endpointsLength)
	for i := 0; i < endpointsLength; i++ {
		sourceNodes = append(sourceNodes, items[i].idx)
		sinkNodes = append(sinkNodes, items[n-1-i].idx)
	}
	return sourceNodes, sinkNodes
}
