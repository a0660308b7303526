package nn

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrNoExamples is returned when training is requested on an empty set.
var ErrNoExamples = errors.New("no training examples")

// TrainOptions controls a training run.
type TrainOptions struct {
	// Progress, when set, is called after every epoch.
	Progress     func(epoch, total int, loss float64)
	Epochs       int
	BatchSize    int
	LearningRate float64
	// TokenDropout replaces input tokens with <unk> at this rate so the
	// unknown embedding is trained.
	TokenDropout float64
	ClipNorm     float64
	Seed         int64
}

// TrainReport summarises a finished run.
type TrainReport struct {
	Epochs    int
	Examples  int
	FinalLoss float64
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.Epochs <= 0 {
		o.Epochs = 30
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 16
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.01
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	return o
}

// trainLoop runs mini-batch training. step computes the loss of example i,
// accumulating its gradient, and returns it.
func trainLoop(ctx context.Context, n int, params, grads []*Tensor, opts TrainOptions, rng *rand.Rand,
	step func(i int) float64,
) (TrainReport, error) {
	if n == 0 {
		return TrainReport{}, ErrNoExamples
	}

	adam := NewAdam(params, opts.LearningRate)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	report := TrainReport{Examples: n}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("training interrupted at epoch %d: %w", epoch, err)
		}

		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		total := 0.0
		for start := 0; start < n; start += opts.BatchSize {
			end := min(start+opts.BatchSize, n)
			zeroAll(grads)
			for _, idx := range order[start:end] {
				total += step(idx)
			}
			scaleAll(grads, 1/float64(end-start))
			clipGradients(grads, opts.ClipNorm)
			adam.Step(params, grads)
		}

		report.Epochs = epoch
		report.FinalLoss = total / float64(n)
		if opts.Progress != nil {
			opts.Progress(epoch, opts.Epochs, report.FinalLoss)
		}
	}
	return report, nil
}

// dropTokens replaces non-padding ids with unk at the given rate.
func dropTokens(ids []int, rate float64, unk, pad int, rng *rand.Rand) []int {
	if rate <= 0 {
		return ids
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		if id != pad && rng.Float64() < rate {
			out[i] = unk
			continue
		}
		out[i] = id
	}
	return out
}
