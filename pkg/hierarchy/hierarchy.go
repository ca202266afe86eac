package hierarchy

import (
	"sort"

	"github.com/adiatma-s/cchkit/pkg"
	da "github.com/adiatma-s/cchkit/pkg/datastructure"
	"github.com/adiatma-s/cchkit/pkg/util"
	"go.uber.org/zap"
)

/*
Hierarchy is the metric-independent index of a customizable contraction
hierarchy. Building it simulates eliminating the nodes in the given order:
removing a node inserts a shortcut between every pair of its remaining
neighbors, so the surviving graph stays chordal and every original
shortest path maps onto an up-down path in the result.

Everything is stored as flat arrays addressed by stable integer ids
(rank-space node ids and CCH arc ids); nothing is mutated after Build
returns, so one Hierarchy is safely shared by any number of metrics and
queries.
*/
type Hierarchy struct {
	nodeCount     int
	inputArcCount int

	order []da.Index // rank -> input node id
	rank  []da.Index // input node id -> rank

	// chordal upward graph in rank space; arc ids ascend by (tail, head)
	firstOut []da.Index // len nodeCount+1
	arcTail  []da.Index // lower-ranked endpoint
	arcHead  []da.Index // higher-ranked endpoint

	// downward graph: the transpose, grouped by the higher endpoint
	firstIn   []da.Index // len nodeCount+1
	inTailArc []da.Index // cch arc ids grouped by head, tails ascending

	// lower triangle table: for arc {b,c} every apex a<b adjacent to both,
	// stored as the two leg arcs {a,b} and {a,c}
	triFirst    []da.Index // len cchArcCount+1
	triApexTail []da.Index // leg {a,b}
	triApexHead []da.Index // leg {a,c}

	// input arc mapping: which original arcs a cch arc represents, split by
	// traversal direction (ascending = original tail has the lower rank)
	fwdInputFirst []da.Index
	fwdInputArc   []da.Index
	bwdInputFirst []da.Index
	bwdInputArc   []da.Index

	inputToCCHArc []da.Index // input arc id -> cch arc id, INVALID if dropped

	treeParent []da.Index // elimination tree parent per rank, INVALID at roots
}

type buildConfig struct {
	forbidden []bool
	logger    *zap.Logger
}

type BuildOption func(*buildConfig)

// WithForbiddenArcs supplies the mask of arcs whose weight is always the
// unreachable sentinel; they are stripped before elimination when
// filterAlwaysInfArcs is set.
func WithForbiddenArcs(mask []bool) BuildOption {
	return func(cfg *buildConfig) {
		cfg.forbidden = mask
	}
}

func WithLogger(logger *zap.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// Build constructs the hierarchy for (order, tail, head). It fails when
// order is not a permutation of 0..nodeCount-1 or the arc arrays disagree;
// for a fixed valid input the result is fully deterministic.
func Build(order, tail, head []da.Index, filterAlwaysInfArcs bool, opts ...BuildOption) (*Hierarchy, error) {
	cfg := buildConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(order)
	if len(tail) != len(head) {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"tail has %d arcs, head has %d", len(tail), len(head))
	}
	if cfg.forbidden != nil && len(cfg.forbidden) != len(tail) {
		return nil, util.WrapErrorf(util.ErrLengthMismatch, util.ErrBadParamInput,
			"forbidden mask has %d entries for %d arcs", len(cfg.forbidden), len(tail))
	}

	h := &Hierarchy{
		nodeCount:     n,
		inputArcCount: len(tail),
		order:         append([]da.Index(nil), order...),
		rank:          make([]da.Index, n),
	}

	seen := make([]bool, n)
	for r, v := range order {
		if int(v) >= n || seen[v] {
			return nil, util.WrapErrorf(util.ErrNotPermutation, util.ErrBadParamInput,
				"order position %d holds node %d", r, v)
		}
		seen[v] = true
		h.rank[v] = da.Index(r)
	}
	for i := range tail {
		if int(tail[i]) >= n || int(head[i]) >= n {
			return nil, util.WrapErrorf(util.ErrBadParamInput, util.ErrBadParamInput,
				"arc %d endpoints (%d,%d) out of range for %d nodes", i, tail[i], head[i], n)
		}
	}

	type inputLists struct {
		fwd, bwd []da.Index
	}

	adjacency := make([]map[da.Index]struct{}, n)
	for x := range adjacency {
		adjacency[x] = make(map[da.Index]struct{})
	}
	inputs := make(map[uint64]*inputLists)

	pairKey := func(lo, hi da.Index) uint64 {
		return uint64(lo)<<32 | uint64(hi)
	}

	for i := range tail {
		if filterAlwaysInfArcs && cfg.forbidden != nil && cfg.forbidden[i] {
			continue
		}
		t, hd := h.rank[tail[i]], h.rank[head[i]]
		if t == hd {
			// self loops never shorten a path with non-negative weights
			continue
		}
		lo, hi := t, hd
		if lo > hi {
			lo, hi = hi, lo
		}
		adjacency[lo][hi] = struct{}{}

		key := pairKey(lo, hi)
		il := inputs[key]
		if il == nil {
			il = &inputLists{}
			inputs[key] = il
		}
		if t < hd {
			il.fwd = append(il.fwd, da.Index(i))
		} else {
			il.bwd = append(il.bwd, da.Index(i))
		}
	}

	// elimination sweep: contracting rank r turns its remaining neighbors
	// into a clique. adjacency[r] is final once r is reached because every
	// inserted pair joins two higher ranks.
	neighborList := make([][]da.Index, n)
	for r := 0; r < n; r++ {
		nbrs := make([]da.Index, 0, len(adjacency[r]))
		for v := range adjacency[r] {
			nbrs = append(nbrs, v)
		}
		sort.Slice(nbrs, func(a, b int) bool { return nbrs[a] < nbrs[b] })
		neighborList[r] = nbrs

		for i := 0; i < len(nbrs); i++ {
			for j := i + 1; j < len(nbrs); j++ {
				a, b := nbrs[i], nbrs[j]
				if _, exists := adjacency[a][b]; !exists {
					adjacency[a][b] = struct{}{}
				}
			}
		}
	}

	// freeze arc ids: CSR over tails, heads ascending inside each segment
	cchArcCount := 0
	for x := 0; x < n; x++ {
		cchArcCount += len(neighborList[x])
	}

	h.firstOut = make([]da.Index, n+1)
	h.arcTail = make([]da.Index, 0, cchArcCount)
	h.arcHead = make([]da.Index, 0, cchArcCount)
	arcIndex := make(map[uint64]da.Index, cchArcCount)
	for x := 0; x < n; x++ {
		h.firstOut[x] = da.Index(len(h.arcHead))
		for _, y := range neighborList[x] {
			arcIndex[pairKey(da.Index(x), y)] = da.Index(len(h.arcHead))
			h.arcTail = append(h.arcTail, da.Index(x))
			h.arcHead = append(h.arcHead, y)
		}
	}
	h.firstOut[n] = da.Index(cchArcCount)

	// transpose; filling in arc id order keeps tails ascending per head
	h.firstIn = make([]da.Index, n+1)
	for _, y := range h.arcHead {
		h.firstIn[y+1]++
	}
	for x := 1; x <= n; x++ {
		h.firstIn[x] += h.firstIn[x-1]
	}
	h.inTailArc = make([]da.Index, cchArcCount)
	fillIn := append([]da.Index(nil), h.firstIn[:n]...)
	for a := 0; a < cchArcCount; a++ {
		y := h.arcHead[a]
		h.inTailArc[fillIn[y]] = da.Index(a)
		fillIn[y]++
	}

	// lower triangle table, arena-style CSR over arc ids
	triCount := make([]da.Index, cchArcCount+1)
	for a := 0; a < n; a++ {
		nbrs := neighborList[a]
		for i := 0; i < len(nbrs); i++ {
			for j := i + 1; j < len(nbrs); j++ {
				triCount[arcIndex[pairKey(nbrs[i], nbrs[j])]+1]++
			}
		}
	}
	h.triFirst = make([]da.Index, cchArcCount+1)
	for a := 1; a <= cchArcCount; a++ {
		h.triFirst[a] = h.triFirst[a-1] + triCount[a]
	}
	totalTriangles := int(h.triFirst[cchArcCount])
	h.triApexTail = make([]da.Index, totalTriangles)
	h.triApexHead = make([]da.Index, totalTriangles)
	fillTri := append([]da.Index(nil), h.triFirst[:cchArcCount]...)
	for a := 0; a < n; a++ {
		nbrs := neighborList[a]
		for i := 0; i < len(nbrs); i++ {
			for j := i + 1; j < len(nbrs); j++ {
				arc := arcIndex[pairKey(nbrs[i], nbrs[j])]
				h.triApexTail[fillTri[arc]] = arcIndex[pairKey(da.Index(a), nbrs[i])]
				h.triApexHead[fillTri[arc]] = arcIndex[pairKey(da.Index(a), nbrs[j])]
				fillTri[arc]++
			}
		}
	}

	// input arc mapping
	h.fwdInputFirst = make([]da.Index, cchArcCount+1)
	h.bwdInputFirst = make([]da.Index, cchArcCount+1)
	h.inputToCCHArc = make([]da.Index, len(tail))
	for i := range h.inputToCCHArc {
		h.inputToCCHArc[i] = da.Index(pkg.INVALID_INDEX)
	}
	for a := 0; a < cchArcCount; a++ {
		key := pairKey(h.arcTail[a], h.arcHead[a])
		if il := inputs[key]; il != nil {
			h.fwdInputFirst[a+1] = da.Index(len(il.fwd))
			h.bwdInputFirst[a+1] = da.Index(len(il.bwd))
		}
	}
	for a := 1; a <= cchArcCount; a++ {
		h.fwdInputFirst[a] += h.fwdInputFirst[a-1]
		h.bwdInputFirst[a] += h.bwdInputFirst[a-1]
	}
	h.fwdInputArc = make([]da.Index, h.fwdInputFirst[cchArcCount])
	h.bwdInputArc = make([]da.Index, h.bwdInputFirst[cchArcCount])
	for a := 0; a < cchArcCount; a++ {
		key := pairKey(h.arcTail[a], h.arcHead[a])
		il := inputs[key]
		if il == nil {
			continue
		}
		copy(h.fwdInputArc[h.fwdInputFirst[a]:], il.fwd)
		copy(h.bwdInputArc[h.bwdInputFirst[a]:], il.bwd)
		for _, in := range il.fwd {
			h.inputToCCHArc[in] = da.Index(a)
		}
		for _, in := range il.bwd {
			h.inputToCCHArc[in] = da.Index(a)
		}
	}

	// elimination tree: parent of a node is its lowest-ranked up-neighbor
	h.treeParent = make([]da.Index, n)
	for r := 0; r < n; r++ {
		if h.firstOut[r] < h.firstOut[r+1] {
			h.treeParent[r] = h.arcHead[h.firstOut[r]]
		} else {
			h.treeParent[r] = da.Index(pkg.INVALID_INDEX)
		}
	}

	cfg.logger.Sugar().Infof("built hierarchy: %d nodes, %d input arcs, %d cch arcs, %d triangles",
		n, len(tail), cchArcCount, totalTriangles)

	return h, nil
}

func (h *Hierarchy) NodeCount() int {
	return h.nodeCount
}

func (h *Hierarchy) InputArcCount() int {
	return h.inputArcCount
}

func (h *Hierarchy) CCHArcCount() int {
	return len(h.arcHead)
}

func (h *Hierarchy) TriangleCount() int {
	return len(h.triApexTail)
}

// NodeOrder maps an elimination rank back to the input node id.
func (h *Hierarchy) NodeOrder(rank da.Index) da.Index {
	return h.order[rank]
}

// NodeRank maps an input node id to its elimination rank.
func (h *Hierarchy) NodeRank(node da.Index) da.Index {
	return h.rank[node]
}

func (h *Hierarchy) ArcTail(arc da.Index) da.Index {
	return h.arcTail[arc]
}

func (h *Hierarchy) ArcHead(arc da.Index) da.Index {
	return h.arcHead[arc]
}

// ForUpArcsOf visits the arcs leaving rank x toward higher ranks.
func (h *Hierarchy) ForUpArcsOf(x da.Index, visit func(arc, head da.Index)) {
	for a := h.firstOut[x]; a < h.firstOut[x+1]; a++ {
		visit(a, h.arcHead[a])
	}
}

// ForDownArcsOf visits the arcs entering rank y from lower ranks.
func (h *Hierarchy) ForDownArcsOf(y da.Index, visit func(arc, tail da.Index)) {
	for i := h.firstIn[y]; i < h.firstIn[y+1]; i++ {
		arc := h.inTailArc[i]
		visit(arc, h.arcTail[arc])
	}
}

// ForLowerTrianglesOf visits the triangle legs of arc {b,c}: for each apex
// a the leg arcs {a,b} and {a,c}. Returning false stops the enumeration.
func (h *Hierarchy) ForLowerTrianglesOf(arc da.Index, visit func(apexTailArc, apexHeadArc da.Index) bool) {
	for t := h.triFirst[arc]; t < h.triFirst[arc+1]; t++ {
		if !visit(h.triApexTail[t], h.triApexHead[t]) {
			return
		}
	}
}

// ForwardInputArcsOf returns the original arcs the cch arc represents in
// ascending traversal direction. The slice aliases internal storage.
func (h *Hierarchy) ForwardInputArcsOf(arc da.Index) []da.Index {
	return h.fwdInputArc[h.fwdInputFirst[arc]:h.fwdInputFirst[arc+1]]
}

func (h *Hierarchy) BackwardInputArcsOf(arc da.Index) []da.Index {
	return h.bwdInputArc[h.bwdInputFirst[arc]:h.bwdInputFirst[arc+1]]
}

// CCHArcOfInput returns the cch arc covering an input arc, or INVALID_INDEX
// when the input arc was filtered out or is a self loop.
func (h *Hierarchy) CCHArcOfInput(inputArc da.Index) da.Index {
	return h.inputToCCHArc[inputArc]
}

// FindArc locates the cch arc {x,y} with x < y, if present.
func (h *Hierarchy) FindArc(x, y da.Index) (da.Index, bool) {
	lo, hi := int(h.firstOut[x]), int(h.firstOut[x+1])
	pos := lo + sort.Search(hi-lo, func(i int) bool { return h.arcHead[lo+i] >= y })
	if pos < hi && h.arcHead[pos] == y {
		return da.Index(pos), true
	}
	return da.Index(pkg.INVALID_INDEX), false
}

// TreeParent returns the elimination tree parent of a rank, INVALID_INDEX
// at roots. Ancestors of a rank are exactly its possible search-space nodes.
func (h *Hierarchy) TreeParent(rank da.Index) da.Index {
	return h.treeParent[rank]
}
