package category

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// ModelName is the persistence key of the category model.
const ModelName = "category"

// Classifier predicts category ids from note text. It is trained only on
// the user's own samples.
type Classifier struct {
	net *nn.BagClassifier
	ids []int64
}

// Score is a raw model probability for one category id.
type Score struct {
	CategoryID  int64
	Probability float64
}

// TrainOptions controls a category training run.
type TrainOptions struct {
	// Warm, when compatible with the new data, is copied and trained further
	// instead of starting from random weights.
	Warm     *Classifier
	Progress func(epoch, total int, loss float64)
	Settings config.ModelSettings
	// WarmEpochs replaces Settings.Epochs for a warm start.
	WarmEpochs int
}

// Train fits a classifier on samples. Each resolved sample teaches the
// category the user chose; unresolved ones are skipped. At least two
// distinct categories are required.
func Train(ctx context.Context, samples []model.TrainingSample, opts TrainOptions) (*Classifier, error) {
	ms := opts.Settings
	features := make([][]string, 0, len(samples))
	labelIDs := make([]int64, 0, len(samples))
	for _, s := range samples {
		label, ok := s.Label()
		if !ok {
			continue
		}
		f := textproc.Features(textproc.Tokenize(s.Text))
		if len(f) == 0 {
			continue
		}
		features = append(features, f)
		labelIDs = append(labelIDs, label)
	}

	ids := slices.Clone(labelIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: need samples from at least 2 categories, have %d", common.ErrInsufficientSamples, len(ids))
	}

	labels := make([]string, len(ids))
	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		labels[i] = strconv.FormatInt(id, 10)
		index[id] = i
	}
	examples := make([]nn.BagExample, len(features))
	for i := range features {
		examples[i] = nn.BagExample{Features: features[i], Label: index[labelIDs[i]]}
	}

	vocab := textproc.BuildVocabulary(features, ms.VocabSize)
	epochs := ms.Epochs
	var net *nn.BagClassifier
	if opts.Warm != nil && opts.Warm.net.Compatible(vocab, labels) {
		net = opts.Warm.net.Clone()
		if opts.WarmEpochs > 0 {
			epochs = opts.WarmEpochs
		}
		slog.Debug("Warm-starting category classifier", "labels", len(labels))
	} else {
		net = nn.NewBagClassifier(vocab, labels, nn.BagConfig{
			SeqLen:    ms.SeqLen,
			EmbedDim:  ms.EmbedDim,
			HiddenDim: ms.HiddenDim,
			Dropout:   ms.Dropout,
		}, ms.Seed)
	}

	report, err := net.Train(ctx, examples, nn.TrainOptions{
		Epochs:       epochs,
		BatchSize:    ms.BatchSize,
		LearningRate: ms.LearningRate,
		Seed:         ms.Seed,
		Progress:     opts.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to train category classifier: %w", err)
	}

	slog.Info("Trained category classifier",
		"samples", report.Examples,
		"categories", len(ids),
		"vocabulary", vocab.Size(),
		"epochs", report.Epochs,
		"loss", report.FinalLoss)

	return &Classifier{net: net, ids: ids}, nil
}

// Predict returns the probability of every known category id, highest
// first.
func (c *Classifier) Predict(text string) []Score {
	probs := c.net.Predict(textproc.Features(textproc.Tokenize(text)))
	scores := make([]Score, len(probs))
	for i, p := range probs {
		scores[i] = Score{CategoryID: c.ids[i], Probability: p}
	}
	slices.SortStableFunc(scores, func(a, b Score) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		default:
			return 0
		}
	})
	return scores
}

// CategoryIDs returns the ids the classifier can predict.
func (c *Classifier) CategoryIDs() []int64 {
	return slices.Clone(c.ids)
}

// Snapshot returns the classifier's persistable state.
func (c *Classifier) Snapshot() (*nn.Snapshot, error) {
	return c.net.Snapshot()
}

// Restore rebuilds a classifier from a snapshot.
func Restore(s *nn.Snapshot) (*Classifier, error) {
	net, err := nn.RestoreBagClassifier(s)
	if err != nil {
		return nil, err
	}
	labels := net.Labels()
	ids := make([]int64, len(labels))
	for i, l := range labels {
		id, err := strconv.ParseInt(l, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: category label %q", nn.ErrStateMismatch, l)
		}
		ids[i] = id
	}
	return &Classifier{net: net, ids: ids}, nil
}
