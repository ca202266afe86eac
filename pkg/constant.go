package pkg

const (
	// INF_WEIGHT is the reserved "unreachable" weight sentinel. It matches
	// the largest signed 32-bit value so that saturating additions of two
	// weights never wrap a uint32.
	INF_WEIGHT uint32 = (1 << 31) - 1

	// INVALID_INDEX marks "no node", "no arc" and "no parent" slots in the
	// flat index arrays.
	INVALID_INDEX uint32 = ^uint32(0)
)

const (
	DEBUG = false
)

// AddWeights sums two weights, saturating at INF_WEIGHT instead of wrapping.
func AddWeights(a, b uint32) uint32 {
	if a >= INF_WEIGHT || b >= INF_WEIGHT {
		return INF_WEIGHT
	}
	s := a + b
	if s >= INF_WEIGHT {
		return INF_WEIGHT
	}
	return s
}

// ClampWeight maps any weight at or above the sentinel onto the sentinel.
func ClampWeight(w uint32) uint32 {
	if w >= INF_WEIGHT {
		return INF_WEIGHT
	}
	return w
}
