package orderer

// MinCut is the outcome of one max-flow bisection: flags mark the nodes on
// the source side of the cut.
type MinCut struct {
	flags       []bool
	numSinkSide int
	cutSize     int
}

func NewMinCut(numberOfVertices int) *MinCut {
	return &MinCut{
		flags: make([]bool, numberOfVertices),
	}
}

func (mc *MinCut) SetFlag(u int, flag bool) {
	mc.flags[u] = flag
}

func (mc *MinCut) GetFlag(u int) bool {
	return mc.flags[u]
}

func (mc *MinCut) GetNumNodesInSinkSide() int {
	return mc.numSinkSide
}

func (mc *MinCut) incrementNumNodesInSinkSide() {
	mc.numSinkSide++
}

func (mc *MinCut) GetCutSize() int {
	return mc.cutSize
}

func (mc *MinCut) setCutSize(maxflow int) {
	mc.cutSize = maxflow
}
