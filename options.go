package gosom

import (
	"math/rand"

	"github.com/hupe1980/gosom/distance"
	"github.com/hupe1980/gosom/lattice"
	"github.com/hupe1980/gosom/topology"
)

type options struct {
	topology    topology.Topology
	periodic    bool
	metric      distance.Metric
	initializer lattice.Initializer
	rng         *rand.Rand
	logger      *Logger
	metrics     MetricsCollector
}

// Option configures map construction.
type Option func(*options)

// WithTopology sets the lattice topology. Default: hexagonal.
func WithTopology(t topology.Topology) Option {
	return func(o *options) {
		o.topology = t
	}
}

// WithPeriodic enables periodic (toroidal) boundary conditions. Only
// supported on hexagonal grids; construction fails otherwise.
func WithPeriodic(periodic bool) Option {
	return func(o *options) {
		o.periodic = periodic
	}
}

// WithMetric sets the vector distance metric used for BMU search and node
// difference computation. Default: euclidean.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithInitializer overrides the node weight initializer. By default node
// weights are sampled uniformly within the per-feature data bounds; pass
// lattice.SeedVectorInit to seed from two externally computed vectors
// (e.g. principal components).
func WithInitializer(init lattice.Initializer) Option {
	return func(o *options) {
		o.initializer = init
	}
}

// WithRand sets the pseudo-random source used for weight initialization and
// online sample ordering. Supplying a seeded source makes runs reproducible;
// the source is owned by the map and must not be shared.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsCollector sets the metrics collector. Default: no metrics.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}
