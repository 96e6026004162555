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

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

const floatTolerance = 1e-6

var (
	ErrEmptyQuery                = errors.New("empty or nil query")
	ErrEmptyTimeSeries           = errors.New("empty or nil time-series")
	ErrQueryHasZeroVariance      = errors.New("query has zero variance (all values are the same)")
	ErrQueryLongerThanTimeSeries = errors.New("query length exceeds time-series length")

	errEmptyFFTConvolutionInputs = errors.New("empty or nil inputs for FFT convolution")
)

// MASS computes the distance profile of the query: the z-normalized Euclidean
// distance between the query and every subsequence of the same length in the
// time-series, using version 2 of Mueen's Algorithm for Similarity Search.
// The algorithm operates in O(n log n) time with a space complexity of O(n).
//
// The time-series and query must not be empty or nil. The query cannot have
// zero variance or be longer than the time-series. Subsequences of the
// time-series that are constant or contain non-finite values are reported at
// +Inf.
//
// Citation: Abdullah Mueen, Sheng Zhong, Yan Zhu, Michael Yeh, Kaveh Kamgar,
// Krishnamurthy Viswanathan, Chetan Kumar Gupta and Eamonn Keogh (2022), The
// Fastest Similarity Search Algorithm for Time Series Subsequences under
// Euclidean Distance, URL:
// http://www.cs.unm.edu/~mueen/FastestSimilaritySearch.html
func MASS(timeSeries, query []float64) (distances []float64, err error) {
	n := len(timeSeries)
	m := len(query)

	// Guard statements
	if m <= 0 {
		return nil, ErrEmptyQuery
	} else if n <= 0 {
		return nil, ErrEmptyTimeSeries
	} else if m > n {
		return nil, ErrQueryLongerThanTimeSeries
	}

	queryMean, querySigma := stat.PopMeanStdDev(query, nil)
	if querySigma < floatTolerance { // values very close to 0 are treated like 0
		return nil, ErrQueryHasZeroVariance
	}

	means, sigmas := slidingMeanStddev(timeSeries, m)
	distances = massSquared(sanitize(query), sanitize(timeSeries), means, sigmas, queryMean, querySigma)
	for i, d := range distances {
		distances[i] = math.Sqrt(d)
	}

	return distances, nil
}

// massSquared returns the squared z-normalized Euclidean distance between the
// query and every subsequence of timeSeries. Both inputs must already be free
// of non-finite values; means and sigmas are the sliding statistics of the
// original time-series for windows of len(query).
func massSquared(query, timeSeries, means, sigmas []float64, queryMean, querySigma float64) []float64 {
	m := len(query)
	dotProducts := slidingDotProduct(query, timeSeries)

	distances := make([]float64, len(dotProducts))
	for i, qt := range dotProducts {
		distances[i] = squaredDistance(m, qt, queryMean, querySigma, means[i], sigmas[i])
	}
	return distances
}

// slidingDotProduct returns the dot product of query with every subsequence of
// timeSeries of length len(query).
func slidingDotProduct(query, timeSeries []float64) []float64 {
	n := len(timeSeries)
	m := len(query)

	// Reverse the query so that convolution yields dot products
	reversedQuery := make([]float64, m)
	for i := 0; i < m; i++ {
		reversedQuery[i] = query[m-1-i]
	}

	// Neither input can be empty here, so there is no error to check.
	convolution, _ := fftConvolutionLinear(timeSeries, reversedQuery)

	// In the reference MATLAB implementation (which uses 1-based arrays) the
	// dot products are z(m:n).
	return convolution[m-1 : n]
}

// fftConvolutionLinear performs linear convolution of 'signal' (len n)
// with 'kernel' (effective len m), using FFT zero-padding. Returns an error
// when signal or kernel are empty or nil.
func fftConvolutionLinear(signal, kernel []float64) ([]float64, error) {
	n := len(signal)
	m := len(kernel)
	if n == 0 || m == 0 {
		return nil, errEmptyFFTConvolutionInputs
	}

	convLen := nextPow2(n + m - 1)

	fft := fourier.NewCmplxFFT(convLen)

	a := make([]complex128, convLen)
	b := make([]complex128, convLen)

	for i := 0; i < n; i++ {
		a[i] = complex(signal[i], 0)
	}
	for i := 0; i < m; i++ {
		b[i] = complex(kernel[i], 0)
	}

	A := fft.Coefficients(nil, a)
	B := fft.Coefficients(nil, b)

	for i := 0; i < convLen; i++ {
		A[i] *= B[i]
	}

	c := fft.Sequence(nil, A)

	out := make([]float64, n+m-1)
	scale := float64(convLen) // gonum FFT is unnormalized
	for i := 0; i < len(out); i++ {
		out[i] = real(c[i]) / scale
	}
	return out, nil
}

// nextPow2 returns the smallest power of two >= x
func nextPow2(x int) int {
	p := 1
	for p < x {
		p <<= 1
	}
	return p
}
