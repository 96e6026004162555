package matrixprofile

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestProfile_TopKMotifs(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	inf := math.Inf(1)

	type TestCase struct {
		Name          string
		InputProfile  Profile
		InputK        int
		ExpectedMatch []Match
		ExpectedErr   error
	}

	testCases := []TestCase{
		{
			Name: "closest first",
			InputProfile: Profile{
				Distances: []float64{0.9, 0.1, 0.5, 0.3},
				Indices:   []int{3, 2, 1, 0},
			},
			InputK: 2,
			ExpectedMatch: []Match{
				{Index: 1, Neighbor: 2, Distance: 0.1},
				{Index: 3, Neighbor: 0, Distance: 0.3},
			},
		},
		{
			Name: "ties return earliest index first",
			InputProfile: Profile{
				Distances: []float64{0.4, 0.2, 0.2, 0.7},
				Indices:   []int{2, 3, 0, 1},
			},
			InputK: 3,
			ExpectedMatch: []Match{
				{Index: 1, Neighbor: 3, Distance: 0.2},
				{Index: 2, Neighbor: 0, Distance: 0.2},
				{Index: 0, Neighbor: 2, Distance: 0.4},
			},
		},
		{
			Name: "unmatched subsequences are skipped and k is capped",
			InputProfile: Profile{
				Distances: []float64{inf, 0.6, math.NaN(), 0.2},
				Indices:   []int{-1, 3, 0, 1},
			},
			InputK: 10,
			ExpectedMatch: []Match{
				{Index: 3, Neighbor: 1, Distance: 0.2},
				{Index: 1, Neighbor: 3, Distance: 0.6},
			},
		},
		{
			Name:         "error when k is not positive",
			InputProfile: Profile{Distances: []float64{0.1}, Indices: []int{0}},
			InputK:       0,
			ExpectedErr:  ErrKMustBePositive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			// GIVEN (set up)

			// WHEN (operation under test)
			actual, actualErr := tc.InputProfile.TopKMotifs(tc.InputK)

			// THEN (assertions)
			if tc.ExpectedErr != nil {
				if !errors.Is(actualErr, tc.ExpectedErr) {
					t.Errorf("expected error %v, got %v", tc.ExpectedErr, actualErr)
				}
				return
			}
			if actualErr != nil {
				t.Fatalf("TopKMotifs failed: %v", actualErr)
			}
			if !slices.Equal(actual, tc.ExpectedMatch) {
				t.Errorf("expected %+v, got %+v", tc.ExpectedMatch, actual)
			}
		})
	}
}

func TestProfile_TopKDiscords(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	// GIVEN (set up)
	profile := Profile{
		Distances: []float64{0.9, math.Inf(1), 2.5, 0.3, 2.5},
		Indices:   []int{3, -1, 4, 0, 2},
	}

	// WHEN (operation under test)
	actual, err := profile.TopKDiscords(2)

	// THEN (assertions)
	if err != nil {
		t.Fatalf("TopKDiscords failed: %v", err)
	}
	expected := []Match{
		{Index: 2, Neighbor: 4, Distance: 2.5},
		{Index: 4, Neighbor: 2, Distance: 2.5},
	}
	if !slices.Equal(actual, expected) {
		t.Errorf("expected %+v, got %+v", expected, actual)
	}
}

func TestProfile_TopKMotifsFromScrimp(t *testing.T) {
	t.Parallel() // this test is stateless and can be run in parallel with other tests

	// A planted pattern appears twice in otherwise random data.
	const m = 20
	timeSeries := generateSyntheticData(400, 99)
	pattern := generateSineWave(m, 1, 5, 0)
	copy(timeSeries[60:], pattern)
	copy(timeSeries[300:], pattern)

	s, err := NewScrimp(timeSeries, m, WithPercentage(0.25), WithPreScrimp(0), WithSeed(3, 4))
	if err != nil {
		t.Fatalf("NewScrimp failed: %v", err)
	}
	profile := s.Run()

	motifs, err := profile.TopKMotifs(1)
	if err != nil {
		t.Fatalf("TopKMotifs failed: %v", err)
	}
	if len(motifs) != 1 {
		t.Fatalf("expected one motif, got %d", len(motifs))
	}
	got := []int{motifs[0].Index, motifs[0].Neighbor}
	slices.Sort(got)
	if got[0] != 60 || got[1] != 300 {
		t.Errorf("expected the planted motif pair (60, 300), got %v", got)
	}
	if !almostEqual(motifs[0].Distance, 0, floatToleranceForMASSTest) {
		t.Errorf("expected a zero distance for the planted motif, got %.12e", motifs[0].Distance)
	}
}
