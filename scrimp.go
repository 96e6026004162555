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
	"fmt"
	"iter"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

var ErrInvalidPercentage = errors.New("percentage must be greater than 0")

// Scrimp is an anytime matrix profile computation for a self-join. Each call
// to Advance computes another slice of the diagonals of the distance matrix,
// visited in random order, and returns the improved profile. The profile only
// ever improves between rounds, and once every diagonal has been visited it is
// exact.
//
// A Scrimp cannot be restarted; create a new one to compute the profile again
// with a fresh diagonal order. A Scrimp is not safe for concurrent use.
type Scrimp struct {
	join       *selfJoin
	percentage float64
	workers    int
	logger     *slog.Logger

	maxRounds int
	round     int
	start     int // index into join.orders of the next unvisited diagonal
	profile   *Profile
}

// NewScrimp prepares a SCRIMP computation of the matrix profile of timeSeries
// with window size m. Non-finite values in timeSeries are treated as missing:
// every subsequence that contains one is reported at +Inf.
//
// When PreSCRIMP is enabled with WithPreScrimp, it runs here, before the first
// round, so the first snapshot is already a good approximation.
func NewScrimp(timeSeries []float64, m int, opts ...ScrimpOption) (*Scrimp, error) {
	if err := validateSeries(timeSeries); err != nil {
		return nil, err
	}
	if err := validateWindowSize(m, len(timeSeries)); err != nil {
		return nil, err
	}

	o := defaultScrimpOptions()
	for _, opt := range opts {
		opt(&o)
	}

	percentage := min(o.percentage, 1.0)
	if !(percentage > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidPercentage, o.percentage)
	}

	n := len(timeSeries)
	means, sigmas := slidingMeanStddev(timeSeries, m)
	join := &selfJoin{
		timeSeries: sanitize(timeSeries),
		m:          m,
		means:      means,
		sigmas:     sigmas,
		exclZone:   exclusionZone(m),
	}

	var rng *rand.Rand
	if o.seeded {
		rng = rand.New(rand.NewPCG(o.seed[0], o.seed[1]))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Scrimp{
		join:       join,
		percentage: percentage,
		workers:    o.workers,
		logger:     o.logger.With("m", m, "n", n),
		maxRounds:  int(math.Ceil(1.0 / percentage)),
		profile:    newProfile(join.profileLen()),
	}

	if o.preScrimp {
		stride := o.stride
		if stride <= 0 {
			stride = join.exclZone
		}
		began := time.Now()
		s.profile.mergeMin(join.preScrimp(stride, rng))
		s.logger.Info("prescrimp complete", "stride", stride, "elapsed", time.Since(began))
	}

	// Diagonals closer than the exclusion zone can never hold a match.
	first := join.exclZone + 1
	join.orders = rng.Perm(max(n-m+2-first, 0))
	for i := range join.orders {
		join.orders[i] += first
	}

	return s, nil
}

// Advance runs one round and returns a copy of the improved matrix profile.
// The second return value is false, and the profile is empty, once every round
// has run.
func (s *Scrimp) Advance() (Profile, bool) {
	if s.Done() {
		return Profile{}, false
	}

	began := time.Now()
	n := len(s.join.timeSeries)
	ranges := splitOrderRanges(s.workers, n, s.join.m, s.join.orders, s.start, s.percentage)

	s.profile.mergeMin(s.join.parallelRound(ranges))

	for _, r := range ranges {
		s.start = max(s.start, r.stop)
	}
	s.round++

	s.logger.Debug("scrimp round complete",
		"round", s.round,
		"diagonals_done", s.start,
		"diagonals_total", len(s.join.orders),
		"workers", s.workers,
		"elapsed", time.Since(began),
	)

	return s.profile.Clone(), true
}

// All returns an iterator over the snapshots produced by successive calls to
// Advance. Breaking out of the loop leaves the engine usable; the remaining
// rounds can be run later.
func (s *Scrimp) All() iter.Seq[Profile] {
	return func(yield func(Profile) bool) {
		for {
			p, ok := s.Advance()
			if !ok || !yield(p) {
				return
			}
		}
	}
}

// Run advances until every round has run and returns the final profile.
func (s *Scrimp) Run() Profile {
	for !s.Done() {
		s.Advance()
	}
	return s.Snapshot()
}

// Snapshot returns a copy of the current matrix profile.
func (s *Scrimp) Snapshot() Profile {
	return s.profile.Clone()
}

// Done reports whether the engine has run its last round. The first round
// always runs, even if there are no diagonals to visit.
func (s *Scrimp) Done() bool {
	if s.round >= s.maxRounds {
		return true
	}
	return s.round > 0 && s.start >= len(s.join.orders)
}

// Round returns the number of rounds run so far.
func (s *Scrimp) Round() int {
	return s.round
}

// Rounds returns the maximum number of rounds the engine will run.
func (s *Scrimp) Rounds() int {
	return s.maxRounds
}

// SetWorkers changes the number of goroutines used from the next round on.
// Values below 1 are treated as 1.
func (s *Scrimp) SetWorkers(workers int) {
	s.workers = max(workers, 1)
}
