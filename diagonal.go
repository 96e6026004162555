package matrixprofile

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// selfJoin holds the read-only inputs of a diagonal-wise self-join. It is
// shared by every worker of a round and is never written after construction.
type selfJoin struct {
	timeSeries []float64 // non-finite values replaced by zero
	m          int
	means      []float64
	sigmas     []float64
	exclZone   int
	orders     []int // diagonal offsets in visitation order
}

// profileLen returns the number of subsequences in the time-series.
func (s *selfJoin) profileLen() int {
	return len(s.timeSeries) - s.m + 1
}

// walkDiagonals computes every distance on the diagonals orders[r.start:r.stop]
// and lowers table to them. Diagonal k pairs subsequence i with subsequence
// i+k-1; the dot product is computed directly at i=0 and updated in O(1) along
// the rest of the diagonal. table holds squared distances.
func (s *selfJoin) walkDiagonals(r orderRange, table *Profile) {
	n := len(s.timeSeries)
	m := s.m
	t := s.timeSeries
	p := table.Distances
	idx := table.Indices

	for orderIdx := r.start; orderIdx < r.stop; orderIdx++ {
		k := s.orders[orderIdx]
		var qt float64
		for i := 0; i < diagonalLength(n, m, k); i++ {
			j := i + k - 1
			if i == 0 {
				qt = floats.Dot(t[:m], t[j:j+m])
			} else {
				qt = qt - t[i-1]*t[j-1] + t[i+m-1]*t[j+m-1]
			}

			dSquared := squaredDistance(m, qt, s.means[i], s.sigmas[i], s.means[j], s.sigmas[j])

			if i < j-s.exclZone && dSquared < p[i] {
				p[i] = dSquared
				idx[i] = j
			}
			if i < j-s.exclZone && dSquared < p[j] {
				p[j] = dSquared
				idx[j] = i
			}
		}
	}
}

// parallelRound walks the diagonals of every range concurrently, one worker
// per range, and reduces the per-worker tables into a single profile of
// Euclidean distances.
//
// Each worker owns its table for the duration of the round. Two workers may
// touch the same row or column through different diagonals, so the tables are
// only combined after every worker has finished.
func (s *selfJoin) parallelRound(ranges []orderRange) *Profile {
	l := s.profileLen()
	tables := make([]*Profile, len(ranges))

	var wg sync.WaitGroup
	for w, r := range ranges {
		tables[w] = newProfile(l)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.walkDiagonals(r, tables[w])
		}()
	}
	wg.Wait()

	result := tables[0]
	for _, table := range tables[1:] {
		result.mergeMin(table)
	}

	for i, d := range result.Distances {
		result.Distances[i] = math.Sqrt(d)
	}
	return result
}
