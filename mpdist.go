package matrixprofile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidK = errors.New("k must not be negative")

type mpdistOptions struct {
	percentage float64
	k          int
	hasK       bool
	selector   func(sorted []float64) float64
}

// MPdistOption configures an MPdist computation.
type MPdistOption func(*mpdistOptions)

// WithMPdistPercentage sets the fraction of len(seriesA)+len(seriesB) used as
// the order statistic of the sorted join profiles. It is clamped to [0, 1] and
// ignored when WithK or WithSelector is given. The default is 0.05.
func WithMPdistPercentage(percentage float64) MPdistOption {
	return func(o *mpdistOptions) {
		o.percentage = percentage
	}
}

// WithK selects the k-th smallest value (zero-based) of the sorted join
// profiles. k is clamped to the last element. It is ignored when WithSelector
// is given.
func WithK(k int) MPdistOption {
	return func(o *mpdistOptions) {
		o.k = k
		o.hasK = true
	}
}

// WithSelector replaces the order statistic rule: selector receives the
// sorted concatenation of the AB-join and BA-join profiles and returns the
// reported distance.
func WithSelector(selector func(sorted []float64) float64) MPdistOption {
	return func(o *mpdistOptions) {
		o.selector = selector
	}
}

// MPdist computes the matrix profile distance between two time-series using
// the in-process join engine.
//
// MPdist considers two time-series similar if they share many subsequences,
// regardless of the order in which those subsequences occur. It concatenates
// and sorts the profiles of an AB-join and a BA-join and reports one of their
// smallest values. MPdist is a measure, not a metric: it does not obey the
// triangle inequality.
func MPdist(seriesA, seriesB []float64, m int, opts ...MPdistOption) (float64, error) {
	return MPdistWith(context.Background(), LocalJoin, seriesA, seriesB, m, opts...)
}

// MPdistWith computes the matrix profile distance between two time-series,
// delegating both joins to engine. The joins run concurrently.
func MPdistWith(
	ctx context.Context,
	engine JoinEngine,
	seriesA,
	seriesB []float64,
	m int,
	opts ...MPdistOption,
) (float64, error) {
	// Guard statements
	if err := validateSeries(seriesA); err != nil {
		return 0, err
	}
	if err := validateSeries(seriesB); err != nil {
		return 0, err
	}
	if err := validateWindowSize(m, min(len(seriesA), len(seriesB))); err != nil {
		return 0, err
	}

	o := mpdistOptions{percentage: DefaultMPdistPercentage}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasK && o.k < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidK, o.k)
	}

	pABBA, err := joinProfilesABBA(ctx, engine, seriesA, seriesB, m)
	if err != nil {
		return 0, err
	}
	slices.Sort(pABBA)

	if o.selector != nil {
		return o.selector(pABBA), nil
	}

	var k int
	if o.hasK {
		k = min(o.k, len(pABBA)-1)
	} else {
		k = orderStatisticIndex(o.percentage, len(seriesA), len(seriesB), len(pABBA))
	}

	return selectOrderStatistic(pABBA, k), nil
}

// joinProfilesABBA returns the unsorted concatenation of the AB-join and
// BA-join matrix profile distances.
func joinProfilesABBA(ctx context.Context, engine JoinEngine, seriesA, seriesB []float64, m int) ([]float64, error) {
	lA := len(seriesA) - m + 1
	lB := len(seriesB) - m + 1
	pABBA := make([]float64, lA+lB)

	join := func(ctx context.Context, query, target, out []float64, name string) error {
		profile, err := engine.Join(ctx, query, m, target, false)
		if err != nil {
			return fmt.Errorf("%s-join: %w", name, err)
		}
		if profile.Len() != len(out) {
			return fmt.Errorf("%s-join returned %d distances, expected %d", name, profile.Len(), len(out))
		}
		copy(out, profile.Distances)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return join(gctx, seriesA, seriesB, pABBA[:lA], "AB")
	})
	g.Go(func() error {
		return join(gctx, seriesB, seriesA, pABBA[lA:], "BA")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pABBA, nil
}

// orderStatisticIndex converts a percentage of the combined time-series
// lengths into an index into a sorted profile of the given length.
func orderStatisticIndex(percentage float64, nA, nB, length int) int {
	if math.IsNaN(percentage) {
		percentage = 0
	}
	percentage = max(min(percentage, 1.0), 0.0)
	k := int(math.Ceil(percentage * float64(nA+nB)))
	return min(k, length-1)
}

// selectOrderStatistic returns sorted[k]. When that value is not finite it
// falls back to the largest finite value before index k, or to sorted[0] when
// there is none.
func selectOrderStatistic(sorted []float64, k int) float64 {
	d := sorted[k]
	if !math.IsNaN(d) && !math.IsInf(d, 0) {
		return d
	}

	finite := 0
	for _, v := range sorted[:k] {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite++
		}
	}
	return sorted[max(0, finite-1)]
}
