// Package learning keeps the category model improving from real use: it
// logs every shown prediction, records corrections and retrains the model
// in the background.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-talk/internal/category"
	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/lifecycle"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/modelstore"
	"github.com/Veraticus/spice-talk/internal/service"
)

// Codec persists category classifiers.
var Codec = modelstore.Codec[category.Classifier]{
	Snapshot: (*category.Classifier).Snapshot,
	Restore:  category.Restore,
}

// Learner owns the sample log and the category model's retraining.
type Learner struct {
	samples    service.SampleStore
	categories service.CategoryStore
	store      *modelstore.Store
	holder     *lifecycle.Holder[category.Classifier]
	now        func() time.Time
	progress   func(epoch, total int, loss float64)
	model      config.ModelSettings
	settings   config.LearningSettings
	background sync.WaitGroup
}

// Result describes one retrain request.
type Result struct {
	Classifier *category.Classifier
	// Skipped is set when there was too little data to train on.
	Skipped     bool
	Incremental bool
	Samples     int
}

// NewLearner creates a learner and the holder for its category model.
// categories may be nil, in which case corrections are not checked against
// the user's category list.
func NewLearner(
	samples service.SampleStore,
	categories service.CategoryStore,
	store *modelstore.Store,
	settings config.Settings,
) *Learner {
	l := &Learner{
		samples:    samples,
		categories: categories,
		store:      store,
		model:      settings.Category,
		settings:   settings.Learning,
		now:        time.Now,
	}
	l.holder = lifecycle.New(category.ModelName, l.Bootstrap())
	return l
}

// Holder returns the published category model.
func (l *Learner) Holder() *lifecycle.Holder[category.Classifier] {
	return l.holder
}

// SetProgress reports training epochs of subsequent retrains to fn.
func (l *Learner) SetProgress(fn func(epoch, total int, loss float64)) {
	l.progress = fn
}

// Bootstrap loads the persisted category model or, failing that, trains one
// from the sample log. It fails with common.ErrInsufficientSamples until
// enough samples are confirmed or corrected.
func (l *Learner) Bootstrap() lifecycle.BootstrapFunc[category.Classifier] {
	return modelstore.LoadOrTrain(l.store, category.ModelName, Codec, func(ctx context.Context) (*category.Classifier, error) {
		count, err := l.samples.CountLabeledSamples(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count samples: %w", err)
		}
		if count < l.settings.MinRetrainSamples {
			return nil, fmt.Errorf("%w: have %d, need %d", common.ErrInsufficientSamples, count, l.settings.MinRetrainSamples)
		}
		samples, err := l.samples.GetSamples(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}
		return category.Train(ctx, samples, category.TrainOptions{Settings: l.model})
	})
}

// LogPrediction appends a sample for a prediction shown to the user and
// returns its id.
func (l *Learner) LogPrediction(ctx context.Context, text string, amount *int64, io model.Direction, predicted model.Prediction) (string, error) {
	sample := &model.TrainingSample{
		ID:                  uuid.NewString(),
		Text:                text,
		Amount:              amount,
		IO:                  io,
		PredictedCategoryID: predicted.CategoryID,
		Confidence:          predicted.Confidence,
		CreatedAt:           l.now(),
	}
	if err := l.samples.SaveSample(ctx, sample); err != nil {
		return "", fmt.Errorf("failed to log prediction: %w", err)
	}

	slog.Debug("Logged prediction",
		"sample_id", sample.ID,
		"category_id", predicted.CategoryID,
		"confidence", predicted.Confidence)
	return sample.ID, nil
}

// LogCorrection records that the user chose categoryID for the sample.
// The choice is stored once, whether it confirms the prediction or not,
// and only then does the sample count as training data. A real
// correction also starts a background incremental retrain; it reports
// whether the choice differed from the prediction.
func (l *Learner) LogCorrection(ctx context.Context, sampleID string, categoryID int64) (bool, error) {
	sample, err := l.samples.GetSample(ctx, sampleID)
	if err != nil {
		return false, fmt.Errorf("failed to find sample %s: %w", sampleID, err)
	}
	if sample.IsResolved() {
		return false, fmt.Errorf("sample %s: %w", sampleID, common.ErrAlreadyCorrected)
	}

	confirmed := categoryID == sample.PredictedCategoryID
	if !confirmed && l.categories != nil {
		if _, err := l.categories.GetCategoryByID(ctx, categoryID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return false, fmt.Errorf("%w: %d", common.ErrUnknownCategory, categoryID)
			}
			return false, fmt.Errorf("failed to check category %d: %w", categoryID, err)
		}
	}

	if err := l.samples.SetChosenCategory(ctx, sampleID, categoryID, l.now()); err != nil {
		return false, fmt.Errorf("failed to record correction: %w", err)
	}

	if confirmed {
		slog.Debug("Prediction confirmed", "sample_id", sampleID, "category_id", categoryID)
		return false, nil
	}

	slog.Info("Recorded correction",
		"sample_id", sampleID,
		"predicted", sample.PredictedCategoryID,
		"chosen", categoryID)

	l.RetrainInBackground(ctx, true)
	return true, nil
}

// RetrainInBackground starts a retrain that outlives ctx's cancellation.
func (l *Learner) RetrainInBackground(ctx context.Context, incremental bool) {
	bg := context.WithoutCancel(ctx)
	l.background.Add(1)
	go func() {
		defer l.background.Done()
		if _, err := l.Retrain(bg, incremental); err != nil {
			slog.Warn("Background retrain failed", "error", err)
		}
	}()
}

// Wait blocks until background retrains started so far have finished.
func (l *Learner) Wait() {
	l.background.Wait()
}

// Retrain trains the category model on the confirmed and corrected samples
// and publishes it. Too few of them is a no-op that leaves the current
// model in place.
// An incremental retrain continues from the current weights when the
// vocabulary and category set allow it. Concurrent calls share one run.
func (l *Learner) Retrain(ctx context.Context, incremental bool) (Result, error) {
	count, err := l.samples.CountLabeledSamples(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count samples: %w", err)
	}
	if count < l.settings.MinRetrainSamples {
		common.LogDebug("Skipping retrain", common.Fields{"samples": count, "min": l.settings.MinRetrainSamples})
		return Result{Skipped: true, Samples: count, Classifier: l.holder.Current()}, nil
	}

	next, err := l.holder.Retrain(ctx, func(ctx context.Context, current *category.Classifier) (*category.Classifier, error) {
		samples, err := l.samples.GetSamples(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}

		opts := category.TrainOptions{Settings: l.model, Progress: l.progress}
		if incremental {
			opts.Warm = current
			opts.WarmEpochs = l.settings.IncrementalEpochs
		}
		c, err := category.Train(ctx, samples, opts)
		if err != nil {
			return nil, err
		}
		if err := modelstore.Persist(ctx, l.store, category.ModelName, Codec, c); err != nil {
			return nil, err
		}
		return c, nil
	})
	if errors.Is(err, common.ErrInsufficientSamples) {
		slog.Info("Skipping retrain", "reason", err)
		return Result{Skipped: true, Samples: count, Classifier: l.holder.Current()}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("retrain failed: %w", err)
	}

	slog.Info("Category model retrained", "samples", count, "incremental", incremental, "generation", l.holder.Generation())
	return Result{Classifier: next, Samples: count, Incremental: incremental}, nil
}
