package matrixprofile

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync/atomic"
	"testing"
)

// naiveMPdist computes MPdist from brute-force AB-join and BA-join profiles.
func naiveMPdist(seriesA, seriesB []float64, m int, percentage float64) float64 {
	pABBA := append(
		naiveProfile(seriesA, m, seriesB, -1).Distances,
		naiveProfile(seriesB, m, seriesA, -1).Distances...,
	)
	slices.Sort(pABBA)
	k := int(math.Ceil(percentage * float64(len(seriesA)+len(seriesB))))
	return selectOrderStatistic(pABBA, min(k, len(pABBA)-1))
}

func TestMPdist_MatchesNaiveComputation(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	type TestCase struct {
		Name       string
		NA         int
		NB         int
		M          int
		Percentage float64
	}

	testCases := []TestCase{
		{Name: "default percentage", NA: 120, NB: 90, M: 10, Percentage: DefaultMPdistPercentage},
		{Name: "larger percentage", NA: 80, NB: 80, M: 6, Percentage: 0.3},
		{Name: "zero percentage takes the minimum", NA: 60, NB: 100, M: 8, Percentage: 0},
		{Name: "full percentage takes the maximum", NA: 40, NB: 45, M: 5, Percentage: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel() // this test is stateless and can be run in parallel with other tests

			// GIVEN (set up)
			seriesA := generateSyntheticData(tc.NA, 10)
			seriesB := generateSyntheticData(tc.NB, 20)
			expected := naiveMPdist(seriesA, seriesB, tc.M, tc.Percentage)

			// WHEN (operation under test)
			actual, err := MPdist(seriesA, seriesB, tc.M, WithMPdistPercentage(tc.Percentage))

			// THEN (assertions)
			if err != nil {
				t.Fatalf("MPdist failed: %v", err)
			}
			if !almostEqual(actual, expected, 1e-6) {
				t.Errorf("expected %.12f, got %.12f", expected, actual)
			}
		})
	}
}

func TestMPdist_IdenticalSeries(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	timeSeries := generateSyntheticData(100)

	actual, err := MPdist(timeSeries, timeSeries, 8)
	if err != nil {
		t.Fatalf("MPdist failed: %v", err)
	}
	if !almostEqual(actual, 0, floatToleranceForMASSTest) {
		t.Errorf("expected a distance of 0 between identical series, got %.12e", actual)
	}
}

func TestMPdist_IsSymmetric(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	seriesA := generateSyntheticData(90, 5)
	seriesB := generateSyntheticData(70, 6)

	ab, err := MPdist(seriesA, seriesB, 7)
	if err != nil {
		t.Fatalf("MPdist(A, B) failed: %v", err)
	}
	ba, err := MPdist(seriesB, seriesA, 7)
	if err != nil {
		t.Fatalf("MPdist(B, A) failed: %v", err)
	}
	if !almostEqual(ab, ba, 1e-9) {
		t.Errorf("expected MPdist to be symmetric, got %.12f and %.12f", ab, ba)
	}
}

func TestMPdist_WithK(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	seriesA := generateSyntheticData(50, 7)
	seriesB := generateSyntheticData(40, 8)
	const m = 5

	pABBA := append(
		naiveProfile(seriesA, m, seriesB, -1).Distances,
		naiveProfile(seriesB, m, seriesA, -1).Distances...,
	)
	slices.Sort(pABBA)

	t.Run("explicit k", func(t *testing.T) {
		actual, err := MPdist(seriesA, seriesB, m, WithK(3))
		if err != nil {
			t.Fatalf("MPdist failed: %v", err)
		}
		if !almostEqual(actual, pABBA[3], 1e-6) {
			t.Errorf("expected %.12f, got %.12f", pABBA[3], actual)
		}
	})

	t.Run("k past the end is clamped", func(t *testing.T) {
		actual, err := MPdist(seriesA, seriesB, m, WithK(10_000))
		if err != nil {
			t.Fatalf("MPdist failed: %v", err)
		}
		last := pABBA[len(pABBA)-1]
		if !almostEqual(actual, last, 1e-6) {
			t.Errorf("expected %.12f, got %.12f", last, actual)
		}
	})

	t.Run("negative k", func(t *testing.T) {
		_, err := MPdist(seriesA, seriesB, m, WithK(-1))
		if !errors.Is(err, ErrInvalidK) {
			t.Errorf("expected ErrInvalidK, got %v", err)
		}
	})
}

func TestMPdist_WithSelector(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	seriesA := generateSyntheticData(60, 9)
	seriesB := generateSyntheticData(55, 10)
	const m = 6
	expectedLen := (len(seriesA) - m + 1) + (len(seriesB) - m + 1)

	var receivedLen int
	var receivedSorted bool
	actual, err := MPdist(seriesA, seriesB, m,
		WithK(0),
		WithSelector(func(sorted []float64) float64 {
			receivedLen = len(sorted)
			receivedSorted = slices.IsSorted(sorted)
			return -7
		}),
	)

	if err != nil {
		t.Fatalf("MPdist failed: %v", err)
	}
	if actual != -7 {
		t.Errorf("expected the selector's value to be returned, got %f", actual)
	}
	if receivedLen != expectedLen {
		t.Errorf("expected the selector to receive %d values, got %d", expectedLen, receivedLen)
	}
	if !receivedSorted {
		t.Errorf("expected the selector to receive sorted values")
	}
}

func TestMPdistWith_CustomEngine(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	seriesA := generateSyntheticData(40, 11)
	seriesB := generateSyntheticData(30, 12)
	const m = 4

	t.Run("both joins are delegated", func(t *testing.T) {
		var calls atomic.Int32
		engine := JoinFunc(func(ctx context.Context, a []float64, m int, b []float64, ignoreTrivial bool) (*Profile, error) {
			calls.Add(1)
			if ignoreTrivial {
				t.Errorf("expected MPdist joins not to skip trivial matches")
			}
			return stump(ctx, a, m, b, ignoreTrivial)
		})

		actual, err := MPdistWith(context.Background(), engine, seriesA, seriesB, m)
		if err != nil {
			t.Fatalf("MPdistWith failed: %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 joins, got %d", calls.Load())
		}
		expected := naiveMPdist(seriesA, seriesB, m, DefaultMPdistPercentage)
		if !almostEqual(actual, expected, 1e-6) {
			t.Errorf("expected %.12f, got %.12f", expected, actual)
		}
	})

	t.Run("engine errors are returned", func(t *testing.T) {
		errBoom := errors.New("boom")
		engine := JoinFunc(func(ctx context.Context, a []float64, m int, b []float64, ignoreTrivial bool) (*Profile, error) {
			return nil, errBoom
		})

		_, err := MPdistWith(context.Background(), engine, seriesA, seriesB, m)
		if !errors.Is(err, errBoom) {
			t.Errorf("expected the engine error, got %v", err)
		}
	})

	t.Run("short profiles are rejected", func(t *testing.T) {
		engine := JoinFunc(func(ctx context.Context, a []float64, m int, b []float64, ignoreTrivial bool) (*Profile, error) {
			return newProfile(1), nil
		})

		_, err := MPdistWith(context.Background(), engine, seriesA, seriesB, m)
		if err == nil {
			t.Errorf("expected an error for a profile of the wrong length")
		}
	})
}

func TestMPdist_ErrorCases(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	tests := []struct {
		name        string
		seriesA     []float64
		seriesB     []float64
		m           int
		expectedErr error
	}{
		{name: "empty series A", seriesA: nil, seriesB: []float64{1, 2, 3}, m: 3, expectedErr: ErrInvalidShape},
		{name: "empty series B", seriesA: []float64{1, 2, 3}, seriesB: nil, m: 3, expectedErr: ErrInvalidShape},
		{name: "window too small", seriesA: []float64{1, 2, 3, 4}, seriesB: []float64{1, 2, 3, 4}, m: 2, expectedErr: ErrInvalidWindowSize},
		{name: "window longer than B", seriesA: []float64{1, 2, 3, 4, 5}, seriesB: []float64{1, 2, 3}, m: 4, expectedErr: ErrInvalidWindowSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MPdist(tt.seriesA, tt.seriesB, tt.m)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestOrderStatisticIndex(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	type TestCase struct {
		Name       string
		Percentage float64
		NA         int
		NB         int
		Length     int
		Expected   int
	}

	testCases := []TestCase{
		{Name: "default", Percentage: 0.05, NA: 100, NB: 100, Length: 182, Expected: 10},
		{Name: "rounds up", Percentage: 0.05, NA: 101, NB: 100, Length: 183, Expected: 11},
		{Name: "clamped to the last index", Percentage: 0.5, NA: 10, NB: 10, Length: 6, Expected: 5},
		{Name: "above one", Percentage: 3, NA: 10, NB: 10, Length: 30, Expected: 20},
		{Name: "negative", Percentage: -0.5, NA: 10, NB: 10, Length: 30, Expected: 0},
		{Name: "NaN", Percentage: math.NaN(), NA: 10, NB: 10, Length: 30, Expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			actual := orderStatisticIndex(tc.Percentage, tc.NA, tc.NB, tc.Length)
			if actual != tc.Expected {
				t.Errorf("expected %d, got %d", tc.Expected, actual)
			}
		})
	}
}

func TestSelectOrderStatistic(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	inf := math.Inf(1)

	type TestCase struct {
		Name     string
		Sorted   []float64
		K        int
		Expected float64
	}

	testCases := []TestCase{
		{Name: "finite value", Sorted: []float64{0.1, 0.2, 0.3, 0.4}, K: 2, Expected: 0.3},
		{Name: "falls back to the largest finite value before k", Sorted: []float64{0.1, 0.2, 0.4, inf, inf}, K: 3, Expected: 0.4},
		{Name: "k at the first infinity", Sorted: []float64{0.1, 0.2, inf, inf}, K: 2, Expected: 0.2},
		{Name: "no finite value", Sorted: []float64{inf, inf, inf}, K: 2, Expected: inf},
		{Name: "k of zero", Sorted: []float64{0.5, 0.6}, K: 0, Expected: 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			actual := selectOrderStatistic(tc.Sorted, tc.K)
			if actual != tc.Expected {
				t.Errorf("expected %f, got %f", tc.Expected, actual)
			}
		})
	}
}
