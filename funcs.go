package matrixprofile

import (
	"errors"
	"math"
	"slices"
)

var (
	ErrKMustBePositive = errors.New("k must be a positive integer")
)

// Match pairs a subsequence with its nearest neighbor in a matrix profile.
type Match struct {
	Index    int
	Neighbor int
	Distance float64
}

// TopKMotifs returns up to k subsequences with the smallest matrix profile
// distances, closest first. Ties are broken by the lower index. Subsequences
// without a finite match are never returned.
func (p *Profile) TopKMotifs(k int) ([]Match, error) {
	return p.topK(k, func(a, b Match) int {
		if a.Distance < b.Distance {
			return -1
		} else if a.Distance > b.Distance {
			return 1
		}

		return a.Index - b.Index
	})
}

// TopKDiscords returns up to k subsequences with the largest finite matrix
// profile distances, most anomalous first. Ties are broken by the lower index.
func (p *Profile) TopKDiscords(k int) ([]Match, error) {
	return p.topK(k, func(a, b Match) int {
		if a.Distance > b.Distance {
			return -1
		} else if a.Distance < b.Distance {
			return 1
		}

		return a.Index - b.Index
	})
}

func (p *Profile) topK(k int, cmp func(a, b Match) int) ([]Match, error) {
	// Guard statements
	if k < 1 {
		return nil, ErrKMustBePositive
	}

	matches := make([]Match, 0, len(p.Distances))
	for i, dist := range p.Distances {
		if p.Indices[i] < 0 || math.IsInf(dist, 0) || math.IsNaN(dist) {
			continue
		}
		matches = append(matches, Match{Index: i, Neighbor: p.Indices[i], Distance: dist})
	}
	slices.SortFunc(matches, cmp)

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}
