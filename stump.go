package matrixprofile

import (
	"context"
	"fmt"
	"math"
)

// A JoinEngine computes exact matrix profiles. Join returns, for every
// subsequence of seriesA, the nearest subsequence of seriesB. When
// ignoreTrivial is true the join is treated as a self-join and matches inside
// the exclusion zone are skipped.
type JoinEngine interface {
	Join(ctx context.Context, seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) (*Profile, error)
}

// JoinFunc adapts an ordinary function to the JoinEngine interface.
type JoinFunc func(ctx context.Context, seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) (*Profile, error)

// Join calls f.
func (f JoinFunc) Join(ctx context.Context, seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) (*Profile, error) {
	return f(ctx, seriesA, m, seriesB, ignoreTrivial)
}

// LocalJoin is the in-process JoinEngine backed by Stump.
var LocalJoin JoinEngine = JoinFunc(stump)

// Stump computes the exact matrix profile of seriesA joined with seriesB.
// Passing a nil seriesB computes the self-join of seriesA, in which case
// ignoreTrivial should be true.
//
// The distance matrix is walked row by row: the first row and first column
// are seeded with FFT sliding dot products and every other dot product is
// derived from its upper-left neighbor in O(1).
func Stump(seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) (*Profile, error) {
	return stump(context.Background(), seriesA, m, seriesB, ignoreTrivial)
}

func stump(ctx context.Context, seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) (*Profile, error) {
	if seriesB == nil {
		seriesB = seriesA
	}
	if err := validateSeries(seriesA); err != nil {
		return nil, err
	}
	if err := validateSeries(seriesB); err != nil {
		return nil, err
	}
	if err := validateWindowSize(m, min(len(seriesA), len(seriesB))); err != nil {
		return nil, err
	}

	meansA, sigmasA := slidingMeanStddev(seriesA, m)
	meansB, sigmasB := slidingMeanStddev(seriesB, m)
	a := sanitize(seriesA)
	b := sanitize(seriesB)
	lA := len(meansA)
	lB := len(meansB)
	exclZone := exclusionZone(m)

	qt := slidingDotProduct(a[:m], b)
	firstColumn := slidingDotProduct(b[:m], a)

	profile := newProfile(lA)
	for i := 0; i < lA; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("join interrupted at row %d: %w", i, err)
		}

		if i > 0 {
			for j := lB - 1; j > 0; j-- {
				qt[j] = qt[j-1] - a[i-1]*b[j-1] + a[i+m-1]*b[j+m-1]
			}
			qt[0] = firstColumn[i]
		}

		best := math.Inf(1)
		bestIdx := -1
		for j := 0; j < lB; j++ {
			if ignoreTrivial && abs(i-j) <= exclZone {
				continue
			}
			dSquared := squaredDistance(m, qt[j], meansA[i], sigmasA[i], meansB[j], sigmasB[j])
			if dSquared < best {
				best = dSquared
				bestIdx = j
			}
		}

		profile.Distances[i] = math.Sqrt(best)
		profile.Indices[i] = bestIdx
	}

	return profile, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
