package matrixprofile

// orderRange is a half-open [start, stop) range of indices into a diagonal
// order permutation.
type orderRange struct {
	start int
	stop  int
}

// diagonalLength returns the number of distances on diagonal k of the
// distance matrix of a time-series of length n with window size m.
func diagonalLength(n, m, k int) int {
	return n - m + 2 - k
}

// maxOrderIndex walks orders from start, accumulating the number of distances
// on each diagonal, until the accumulated count exceeds the given fraction of
// the distances on all diagonals in orders. It returns the exclusive stop
// index at which the walk ended and the number of distances accumulated.
//
// When percentage >= 1, or the walk runs off the end of orders, the stop index
// is len(orders).
func maxOrderIndex(n, m int, orders []int, start int, percentage float64) (stop, distances int) {
	if start >= len(orders) {
		return len(orders), 0
	}

	total := 0
	for _, k := range orders {
		total += diagonalLength(n, m, k)
	}

	for i := start; i < len(orders); i++ {
		distances += diagonalLength(n, m, orders[i])
		if float64(distances)/float64(total) > percentage {
			return i + 1, distances
		}
	}

	return len(orders), distances
}

// splitOrderRanges determines the diagonals that make up the given fraction
// of the work starting at start, and splits them into nWorkers contiguous
// ranges that hold roughly the same number of distances. A range ends at the
// first diagonal that pushes its count past its share, so ranges may differ
// by up to one diagonal's length. Ranges that receive no diagonals are empty
// and positioned at the stop index, so the returned ranges always cover
// [start, stop) exactly once and in order.
func splitOrderRanges(nWorkers, n, m int, orders []int, start int, percentage float64) []orderRange {
	stop, distances := maxOrderIndex(n, m, orders, start, percentage)

	ranges := make([]orderRange, nWorkers)
	for i := range ranges {
		ranges[i] = orderRange{start: stop, stop: stop}
	}

	share := float64(distances) / float64(nWorkers)
	rangeIdx := 0
	rangeStart := start
	count := 0
	for i := start; i < stop && rangeIdx < nWorkers-1; i++ {
		count += diagonalLength(n, m, orders[i])
		if float64(count) > share {
			ranges[rangeIdx] = orderRange{start: rangeStart, stop: i + 1}
			rangeStart = i + 1
			rangeIdx++
			count = 0
		}
	}
	// The final range takes whatever remains.
	ranges[rangeIdx] = orderRange{start: rangeStart, stop: stop}

	return ranges
}
