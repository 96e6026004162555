package matrixprofile

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// preScrimp computes an approximate matrix profile by sampling every stride-th
// subsequence in random order. Each sample is compared with the whole
// time-series, which also seeds every column it touches, and the best match
// found for the sample is then extended up to stride-1 steps forwards and
// backwards along its diagonal.
//
// Citation: Algorithm 2 of the SCRIMP++ paper. Seeding every column from the
// sample's distance profile follows the authors' C++ code rather than the
// paper.
func (s *selfJoin) preScrimp(stride int, rng *rand.Rand) *Profile {
	l := s.profileLen()
	m := s.m
	t := s.timeSeries
	profile := newProfile(l)
	p := profile.Distances
	idx := profile.Indices

	samples := make([]int, 0, l/stride+1)
	for i := 0; i < l; i += stride {
		samples = append(samples, i)
	}
	rng.Shuffle(len(samples), func(a, b int) {
		samples[a], samples[b] = samples[b], samples[a]
	})

	for _, i := range samples {
		dSquared := massSquared(t[i:i+m], t, s.means, s.sigmas, s.means[i], s.sigmas[i])

		zoneStart := max(0, i-s.exclZone)
		zoneStop := min(l, i+s.exclZone+1)
		for j := zoneStart; j < zoneStop; j++ {
			dSquared[j] = math.Inf(1)
		}

		best := floats.MinIdx(dSquared)
		p[i] = dSquared[best]
		idx[i] = best
		if math.IsInf(p[i], 1) {
			idx[i] = -1
		}

		// The distance profile of sample i is also a column of the distance
		// matrix, so every other subsequence can learn from it.
		for j, d := range dSquared {
			if d < p[j] {
				p[j] = d
				idx[j] = i
			}
		}

		if idx[i] < 0 {
			continue
		}
		s.extendMatch(profile, i, idx[i], stride)
	}

	for i, d := range p {
		p[i] = math.Sqrt(d)
	}
	return profile
}

// extendMatch walks the diagonal through the matched pair (i, j) up to
// stride-1 steps in each direction, lowering profile with every distance it
// computes. The starting dot product is recovered from the known squared
// distance of the pair, and every other pair on the diagonal keeps the same
// lag, so it lies outside the exclusion zone as well.
func (s *selfJoin) extendMatch(profile *Profile, i, j, stride int) {
	l := s.profileLen()
	m := s.m
	t := s.timeSeries
	mu := s.means
	sigma := s.sigmas
	p := profile.Distances
	idx := profile.Indices

	qtSeed := dotProductFromSquaredDistance(m, p[i], mu[i], sigma[i], mu[j], sigma[j])

	qt := qtSeed
	for k := 1; k < min(stride, l-max(i, j)); k++ {
		qt = qt - t[i+k-1]*t[j+k-1] + t[i+k+m-1]*t[j+k+m-1]
		dSquared := squaredDistance(m, qt, mu[i+k], sigma[i+k], mu[j+k], sigma[j+k])
		if dSquared < p[i+k] {
			p[i+k] = dSquared
			idx[i+k] = j + k
		}
		if dSquared < p[j+k] {
			p[j+k] = dSquared
			idx[j+k] = i + k
		}
	}

	qt = qtSeed
	for k := 1; k < min(stride, i+1, j+1); k++ {
		qt = qt - t[i-k+m]*t[j-k+m] + t[i-k]*t[j-k]
		dSquared := squaredDistance(m, qt, mu[i-k], sigma[i-k], mu[j-k], sigma[j-k])
		if dSquared < p[i-k] {
			p[i-k] = dSquared
			idx[i-k] = j - k
		}
		if dSquared < p[j-k] {
			p[j-k] = dSquared
			idx[j-k] = i - k
		}
	}
}
