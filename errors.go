package gosom

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gosom/lattice"
)

var (
	// ErrMissingTrainingData is returned when training is requested on a
	// map that has no dataset attached.
	ErrMissingTrainingData = errors.New("no training dataset attached")

	// ErrEmptyDataset is returned when a map is constructed from an empty
	// dataset.
	ErrEmptyDataset = errors.New("dataset must contain at least one sample")

	// ErrOnlineEarlyStop is returned when early stopping is combined with
	// the online algorithm; convergence scoring is defined for batch
	// training only.
	ErrOnlineEarlyStop = errors.New("early stopping requires the batch algorithm")

	// ErrInvalidEpochs is returned for a negative epoch count.
	ErrInvalidEpochs = errors.New("epochs must be positive")

	// ErrInvalidLearningRate is returned for a non-positive start learning rate.
	ErrInvalidLearningRate = errors.New("learning rate must be positive")

	// ErrInvalidPatience is returned for a non-positive early-stop patience.
	ErrInvalidPatience = errors.New("early-stop patience must be positive")

	// ErrInvalidTolerance is returned for a non-positive early-stop tolerance.
	ErrInvalidTolerance = errors.New("early-stop tolerance must be positive")

	// ErrInvalidBatchSize is returned for a negative batch size.
	ErrInvalidBatchSize = errors.New("batch size must be positive or zero for auto")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
type ErrDimensionMismatch = lattice.ErrDimensionMismatch

// ErrUnknownAlgorithm indicates an unrecognized training algorithm name.
type ErrUnknownAlgorithm struct {
	Name string
}

func (e *ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown training algorithm: %q", e.Name)
}

// ErrUnknownConvergence indicates an unrecognized early-stop method name.
type ErrUnknownConvergence struct {
	Name string
}

func (e *ErrUnknownConvergence) Error() string {
	return fmt.Sprintf("unknown convergence method: %q", e.Name)
}
