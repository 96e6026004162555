package matrixprofile

import (
	"log/slog"
	"runtime"
)

const (
	// DefaultScrimpPercentage is the fraction of all distances computed in
	// each SCRIMP round.
	DefaultScrimpPercentage = 0.01

	// DefaultMPdistPercentage is the fraction of the concatenated join
	// profiles used to pick the MPdist value.
	DefaultMPdistPercentage = 0.05
)

type scrimpOptions struct {
	percentage float64
	preScrimp  bool
	stride     int // <= 0 means the exclusion zone width
	workers    int
	seeded     bool
	seed       [2]uint64
	logger     *slog.Logger
}

func defaultScrimpOptions() scrimpOptions {
	return scrimpOptions{
		percentage: DefaultScrimpPercentage,
		workers:    runtime.GOMAXPROCS(0),
		logger:     slog.New(slog.DiscardHandler),
	}
}

// ScrimpOption configures a Scrimp engine.
type ScrimpOption func(*scrimpOptions)

// WithPercentage sets the approximate fraction of all pairwise distances
// computed per round. Values above 1 are treated as 1. The engine runs at most
// ceil(1/percentage) rounds.
func WithPercentage(percentage float64) ScrimpOption {
	return func(o *scrimpOptions) {
		o.percentage = percentage
	}
}

// WithPreScrimp enables the PreSCRIMP pass (making the engine SCRIMP++) with
// the given sampling stride. A stride <= 0 selects the default, which is the
// exclusion zone width ceil(m/4).
func WithPreScrimp(stride int) ScrimpOption {
	return func(o *scrimpOptions) {
		o.preScrimp = true
		o.stride = stride
	}
}

// WithWorkers sets the number of goroutines that walk diagonals in each
// round. Values below 1 are treated as 1.
func WithWorkers(workers int) ScrimpOption {
	return func(o *scrimpOptions) {
		o.workers = max(workers, 1)
	}
}

// WithSeed makes the diagonal order and PreSCRIMP sampling reproducible by
// seeding the PCG generator that draws them.
func WithSeed(seed0, seed1 uint64) ScrimpOption {
	return func(o *scrimpOptions) {
		o.seeded = true
		o.seed = [2]uint64{seed0, seed1}
	}
}

// WithLogger sets the structured logger used to report progress. If nil is
// passed, logging is disabled.
func WithLogger(logger *slog.Logger) ScrimpOption {
	return func(o *scrimpOptions) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		o.logger = logger
	}
}
