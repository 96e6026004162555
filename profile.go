// MIT License
//
// Copyright (c) 2025 David L Kinney <david@pinkhop.com> <david@kinney.io>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

// Package matrixprofile computes the matrix profile of a time-series: for
// every subsequence of length m, the z-normalized Euclidean distance to its
// nearest non-trivial match, plus the index of that match. The matrix profile
// is the building block for motif discovery, discord detection and
// similarity search.
//
// The package provides the anytime SCRIMP/SCRIMP++ engine (NewScrimp), an
// exact join engine (Stump) used for self-joins and AB-joins, the MPdist
// measure between two time-series (MPdist) and the MASS distance profile
// (MASS) that the other algorithms are built on.
//
// Citations:
//
// Yan Zhu, Chin-Chia Michael Yeh, Zachary Zimmerman, Kaveh Kamgar and Eamonn
// Keogh (2018), Matrix Profile XI: SCRIMP++: Time Series Motif Discovery at
// Interactive Speeds, ICDM 2018, DOI: 10.1109/ICDM.2018.00099
//
// Shaghayegh Gharghabi, Shima Imani, Anthony Bagnall, Amirali Darvishzadeh and
// Eamonn Keogh (2018), Matrix Profile XII: MPdist: A Novel Time Series
// Distance Measure to Allow Data Mining in More Challenging Scenarios, ICDM
// 2018, DOI: 10.1109/ICDM.2018.00119
package matrixprofile

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// minWindowSize is the smallest window for which a z-normalized distance is
// meaningful.
const minWindowSize = 3

var (
	ErrInvalidWindowSize = errors.New("invalid window size")
	ErrInvalidShape      = errors.New("time-series must be a non-empty one-dimensional sequence")
)

// Profile is a matrix profile: Distances[i] is the z-normalized Euclidean
// distance from subsequence i to its nearest neighbor and Indices[i] is the
// starting index of that neighbor, or -1 when no finite match was found.
type Profile struct {
	Distances []float64 `json:"distances"`
	Indices   []int     `json:"indices"`
}

// newProfile returns a profile of length l with every distance set to +Inf
// and every index set to -1.
func newProfile(l int) *Profile {
	p := &Profile{
		Distances: make([]float64, l),
		Indices:   make([]int, l),
	}
	for i := range p.Distances {
		p.Distances[i] = math.Inf(1)
		p.Indices[i] = -1
	}
	return p
}

// Len returns the number of subsequences covered by the profile.
func (p *Profile) Len() int {
	return len(p.Distances)
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() Profile {
	return Profile{
		Distances: slices.Clone(p.Distances),
		Indices:   slices.Clone(p.Indices),
	}
}

// mergeMin lowers p to other element-wise: wherever other has a strictly
// smaller distance, its distance and index replace those of p. Both profiles
// must have the same length.
func (p *Profile) mergeMin(other *Profile) {
	for i, d := range other.Distances {
		if p.Distances[i] > d {
			p.Distances[i] = d
			p.Indices[i] = other.Indices[i]
		}
	}
}

// exclusionZone returns the half width of the zone around a subsequence in
// which matches are considered trivial.
func exclusionZone(m int) int {
	return int(math.Ceil(float64(m) / 4.0))
}

// validateWindowSize checks that m is usable with a time-series of length n.
func validateWindowSize(m, n int) error {
	if m < minWindowSize {
		return fmt.Errorf("%w: m=%d must be at least %d", ErrInvalidWindowSize, m, minWindowSize)
	}
	if m > n {
		return fmt.Errorf("%w: m=%d exceeds time-series length %d", ErrInvalidWindowSize, m, n)
	}
	return nil
}

// validateSeries checks that the time-series holds at least one value.
func validateSeries(timeSeries []float64) error {
	if len(timeSeries) == 0 {
		return ErrInvalidShape
	}
	return nil
}

// SeriesFromMatrix extracts a time-series from a matrix holding a single row
// or a single column. Any other shape is rejected with ErrInvalidShape.
func SeriesFromMatrix(m mat.Matrix) ([]float64, error) {
	r, c := m.Dims()
	switch {
	case r == 0 || c == 0:
		return nil, ErrInvalidShape
	case r == 1:
		return mat.Row(nil, 0, m), nil
	case c == 1:
		return mat.Col(nil, 0, m), nil
	default:
		return nil, fmt.Errorf("%w: got %dx%d matrix", ErrInvalidShape, r, c)
	}
}
