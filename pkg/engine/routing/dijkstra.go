package routing

import (
	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
)

// Dijkstra answers one-to-all queries straight on the input arcs. It does
// no preprocessing, so it serves as the exactness reference for the
// hierarchy-based engines and as a fallback for tiny graphs.
type Dijkstra struct {
	graph   *da.Graph
	weights []uint32
}

func NewDijkstra(graph *da.Graph, weights []uint32) *Dijkstra {
	return &Dijkstra{graph: graph, weights: weights}
}

// ShortestDistances returns the distance from source to every node,
// INF_WEIGHT where unreachable. Arcs with weight at or above INF_WEIGHT
// are treated as absent.
func (d *Dijkstra) ShortestDistances(source da.Index) []uint32 {
	n := d.graph.NumberOfVertices()
	dist := make([]uint32, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = pkg.INF_WEIGHT
	}
	dist[source] = 0

	pq := da.NewFourAryHeap[uint32, da.Index]()
	pq.Insert(da.NewPriorityQueueNode(uint32(0), source))

	for !pq.IsEmpty() {
		node, _ := pq.ExtractMin()
		u := node.GetItem()
		if settled[u] {
			continue
		}
		settled[u] = true

		d.graph.ForOutArcsOf(u, func(arc, head da.Index) {
			w := pkg.ClampWeight(d.weights[arc])
			if w == pkg.INF_WEIGHT {
				return
			}
			if nd := pkg.AddWeights(dist[u], w); nd < dist[head] {
				dist[head] = nd
				// lazy deletion: stale entries are skipped via settled
				pq.Insert(da.NewPriorityQueueNode(nd, head))
			}
		})
	}
	return dist
}
