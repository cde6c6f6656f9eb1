package gosom

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordTrain is called after each training run.
	// epochs is the number of epochs actually executed (early stopping may
	// cut it short), duration is the total time taken, err is nil on success.
	RecordTrain(algorithm Algorithm, epochs int, duration time.Duration, err error)

	// RecordEpoch is called after each completed training epoch.
	RecordEpoch(epoch int, duration time.Duration)

	// RecordProject is called after each BMU query operation.
	// n is the number of query vectors.
	RecordProject(n int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(Algorithm, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordEpoch(int, time.Duration)                   {}
func (NoopMetricsCollector) RecordProject(int, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount      atomic.Int64
	TrainErrors     atomic.Int64
	TrainTotalNanos atomic.Int64
	EpochCount      atomic.Int64
	EpochTotalNanos atomic.Int64
	ProjectCount    atomic.Int64
	ProjectItems    atomic.Int64
	ProjectErrors   atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(_ Algorithm, _ int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
	}
}

// RecordEpoch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEpoch(_ int, duration time.Duration) {
	b.EpochCount.Add(1)
	b.EpochTotalNanos.Add(duration.Nanoseconds())
}

// RecordProject implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProject(n int, duration time.Duration, err error) {
	b.ProjectCount.Add(1)
	b.ProjectItems.Add(int64(n))
	if err != nil {
		b.ProjectErrors.Add(1)
	}
}
