package gosom

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/gosom/neighborhood"
)

// Algorithm selects the training variant.
type Algorithm string

const (
	// Online draws one sample per epoch and nudges every node toward it,
	// scaled by learning rate and the Gaussian of the lattice distance to
	// the BMU.
	Online Algorithm = "online"
	// Batch replaces node weights once per epoch with the kernel-weighted
	// mean of all samples (Kinouchi batch update); it needs no learning
	// rate.
	Batch Algorithm = "batch"
)

// ParseAlgorithm validates a training algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(name); a {
	case Online, Batch:
		return a, nil
	default:
		return "", &ErrUnknownAlgorithm{Name: name}
	}
}

// ConvergenceMethod selects the early-stop score.
type ConvergenceMethod string

const (
	// ConvergenceNone disables early stopping; training runs all epochs.
	ConvergenceNone ConvergenceMethod = "none"
	// MapDiff scores an epoch by the mean distance between the new and old
	// weight matrices under the configured metric.
	MapDiff ConvergenceMethod = "mapdiff"
	// BMUDiff scores an epoch by the mean per-sample BMU distance of the
	// last processed chunk.
	BMUDiff ConvergenceMethod = "bmudiff"
)

// ParseConvergence validates a convergence method name.
func ParseConvergence(name string) (ConvergenceMethod, error) {
	switch c := ConvergenceMethod(name); c {
	case ConvergenceNone, MapDiff, BMUDiff:
		return c, nil
	default:
		return "", &ErrUnknownConvergence{Name: name}
	}
}

// TrainOptions configures a single training run.
type TrainOptions struct {
	// Algorithm selects online or batch training. Default: batch.
	Algorithm Algorithm

	// Epochs is the number of training epochs. Zero selects the automatic
	// default of 10x the sample count.
	Epochs int

	// LearningRate is the initial learning rate for online training.
	// Default: 0.01. Ignored by batch training.
	LearningRate float64

	// Kernel is the neighborhood kernel for batch training.
	// Default: gaussian. Ignored by online training, which always uses the
	// Gaussian of the lattice distance.
	Kernel neighborhood.Kernel

	// Convergence selects the early-stop score; ConvergenceNone disables
	// early stopping. Batch only.
	Convergence ConvergenceMethod

	// Patience is the number of consecutive stalled epochs (improvement
	// below Tolerance) after which training stops. Default: 3.
	Patience int

	// Tolerance is the minimum per-epoch score improvement that counts as
	// progress. Default: 1e-4.
	Tolerance float64

	// BatchSize is the chunk size for batch training. Zero selects an
	// automatic split across the available parallelism.
	BatchSize int
}

func defaultTrainOptions() *TrainOptions {
	return &TrainOptions{
		Algorithm:    Batch,
		LearningRate: 0.01,
		Kernel:       neighborhood.Gaussian,
		Convergence:  ConvergenceNone,
		Patience:     3,
		Tolerance:    1e-4,
	}
}

func (s *SOM) validateTrainOptions(o *TrainOptions) error {
	if _, err := ParseAlgorithm(string(o.Algorithm)); err != nil {
		return err
	}
	if _, err := ParseConvergence(string(o.Convergence)); err != nil {
		return err
	}
	if _, err := neighborhood.Parse(string(o.Kernel)); err != nil {
		return err
	}
	if o.Epochs < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidEpochs, o.Epochs)
	}
	if o.Algorithm == Online && o.LearningRate <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidLearningRate, o.LearningRate)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, o.BatchSize)
	}
	if o.Convergence != ConvergenceNone {
		if o.Algorithm == Online {
			return ErrOnlineEarlyStop
		}
		if o.Patience <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPatience, o.Patience)
		}
		if o.Tolerance <= 0 {
			return fmt.Errorf("%w: %g", ErrInvalidTolerance, o.Tolerance)
		}
	}
	return nil
}

// Train runs one training session over the attached dataset. Configuration
// errors surface before any weight mutation; the only cancellation point is
// the epoch boundary, where ctx is checked.
func (s *SOM) Train(ctx context.Context, optFns ...func(*TrainOptions)) error {
	start := time.Now()

	o := defaultTrainOptions()
	for _, fn := range optFns {
		fn(o)
	}

	if err := s.validateTrainOptions(o); err != nil {
		return err
	}
	if s.data == nil {
		return ErrMissingTrainingData
	}

	n, _ := s.data.Dims()
	if o.Epochs == 0 {
		o.Epochs = 10 * n
	}

	sched := newSchedule(s.plane.Width, s.plane.Height, o.Epochs, o.LearningRate)
	s.convergence = s.convergence[:0]

	logger := s.logger.WithAlgorithm(o.Algorithm)
	logger.Info("training started", "epochs", o.Epochs, "samples", n)

	var (
		epochs int
		err    error
	)
	switch o.Algorithm {
	case Online:
		epochs, err = s.trainOnline(ctx, o, sched)
	case Batch:
		epochs, err = s.trainBatch(ctx, o, sched)
	}

	s.metrics.RecordTrain(o.Algorithm, epochs, time.Since(start), err)
	if err != nil {
		logger.Error("training aborted", "epoch", epochs, "error", err)
		return err
	}

	logger.Info("training finished", "epochs", epochs, "duration", time.Since(start))
	return nil
}

// schedule holds the per-epoch decay of sigma and learning rate. Both decay
// monotonically: sigma(t) = sigma0*exp(-t/tau) with tau = epochs/ln(sigma0),
// and lr(t) = lr0*exp(-t/epochs).
type schedule struct {
	epochs int
	sigma0 float64
	tau    float64
	lr0    float64
}

func newSchedule(width, height, epochs int, lr0 float64) schedule {
	sigma0 := float64(max(width, height)) / 2

	// For sigma0 <= 1 the tau formula degenerates (ln <= 0); keep sigma
	// effectively constant over the run instead.
	tau := float64(epochs)
	if sigma0 > 1 {
		tau = float64(epochs) / math.Log(sigma0)
	}

	return schedule{
		epochs: epochs,
		sigma0: sigma0,
		tau:    tau,
		lr0:    lr0,
	}
}

func (s schedule) sigma(epoch int) float64 {
	return s.sigma0 * math.Exp(-float64(epoch)/s.tau)
}

func (s schedule) learningRate(epoch int) float64 {
	return s.lr0 * math.Exp(-float64(epoch)/float64(s.epochs))
}

// earlyStopper tracks the convergence score trace and fires once the
// improvement stays below tolerance for patience consecutive epochs.
type earlyStopper struct {
	tolerance float64
	patience  int

	prev    float64
	hasPrev bool
	stalled int
}

// observe records an epoch score and reports whether training should stop.
func (e *earlyStopper) observe(score float64) bool {
	if e.hasPrev && e.prev-score < e.tolerance {
		e.stalled++
	} else {
		e.stalled = 0
	}
	e.prev = score
	e.hasPrev = true
	return e.stalled >= e.patience
}
