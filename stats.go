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

package matrixprofile

import "math"

// stddevThreshold is the standard deviation below which a subsequence is
// treated as constant. Constant subsequences cannot be z-normalized, so every
// distance involving one is +Inf.
const stddevThreshold = 1e-7

// denomThreshold bounds the denominator of the Pearson correlation away from
// zero.
const denomThreshold = 1e-14

// sanitize returns a copy of data in which every non-finite value is replaced
// by zero. Missing values must not poison dot products; the subsequences that
// contain them are marked separately by slidingMeanStddev.
func sanitize(data []float64) []float64 {
	clean := make([]float64, len(data))
	for i, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean[i] = v
		}
	}
	return clean
}

// slidingMeanStddev computes the mean and standard deviation of every sliding
// window in data of size windowSize. Windows that contain a non-finite value
// get a mean of +Inf and a standard deviation of 0 so that every distance to
// them is reported as +Inf.
func slidingMeanStddev(data []float64, windowSize int) (means, sigmas []float64) {
	n := len(data)
	if windowSize <= 0 || windowSize > n {
		return nil, nil
	}

	means = make([]float64, n-windowSize+1)
	sigmas = make([]float64, n-windowSize+1)
	windowSizeF64 := float64(windowSize)

	var sum, sumOfSquares float64
	nonFinite := 0
	add := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite++
			return
		}
		sum += v
		sumOfSquares += v * v
	}
	remove := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite--
			return
		}
		sum -= v
		sumOfSquares -= v * v
	}
	record := func(i int) {
		if nonFinite > 0 {
			means[i] = math.Inf(1)
			sigmas[i] = 0
			return
		}
		means[i] = sum / windowSizeF64
		variance := sumOfSquares/windowSizeF64 - means[i]*means[i]
		if variance < 0 { // handle floating point imprecision, prevent sqrt of negative value
			variance = 0
		}
		sigmas[i] = math.Sqrt(variance)
	}

	for i := 0; i < windowSize; i++ {
		add(data[i])
	}
	record(0)

	for i := 1; i <= n-windowSize; i++ {
		remove(data[i-1])
		add(data[i+windowSize-1])
		record(i)
	}

	return means, sigmas
}

// squaredDistance converts the dot product qt of two subsequences of length m
// into their squared z-normalized Euclidean distance, given the mean and
// standard deviation of each subsequence. It returns +Inf when either
// subsequence contains missing values or is constant.
func squaredDistance(m int, qt, muI, sigmaI, muJ, sigmaJ float64) float64 {
	if math.IsInf(muI, 0) || math.IsInf(muJ, 0) {
		return math.Inf(1)
	}
	if !(sigmaI >= stddevThreshold) || !(sigmaJ >= stddevThreshold) {
		return math.Inf(1)
	}

	mF64 := float64(m)
	denom := max(mF64*sigmaI*sigmaJ, denomThreshold)
	rho := min((qt-mF64*muI*muJ)/denom, 1.0)

	return math.Abs(2 * mF64 * (1.0 - rho))
}

// dotProductFromSquaredDistance inverts squaredDistance: it recovers the dot
// product of two subsequences from their squared distance and statistics.
func dotProductFromSquaredDistance(m int, dSquared, muI, sigmaI, muJ, sigmaJ float64) float64 {
	mF64 := float64(m)
	return (mF64-dSquared/2.0)*(sigmaI*sigmaJ) + (mF64 * muI * muJ)
}
