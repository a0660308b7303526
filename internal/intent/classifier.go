// Package intent decides what the user wants to do with an utterance:
// record a transaction, view stats, edit or delete.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// ModelName is the persistence key of the intent model.
const ModelName = "intent"

// Classifier wraps a trained bag-of-embeddings model over model.Actions.
type Classifier struct {
	net *nn.BagClassifier
}

func labels() []string {
	out := make([]string, len(model.Actions))
	for i, a := range model.Actions {
		out[i] = string(a)
	}
	return out
}

// Train builds a vocabulary from samples and fits a fresh classifier.
func Train(ctx context.Context, samples []Sample, ms config.ModelSettings, progress func(epoch, total int, loss float64)) (*Classifier, error) {
	features := make([][]string, len(samples))
	for i, s := range samples {
		features[i] = textproc.Features(textproc.Tokenize(s.Text))
	}
	vocab := textproc.BuildVocabulary(features, ms.VocabSize)

	index := make(map[model.Action]int, len(model.Actions))
	for i, a := range model.Actions {
		index[a] = i
	}
	examples := make([]nn.BagExample, len(samples))
	for i, s := range samples {
		label, ok := index[s.Action]
		if !ok {
			return nil, fmt.Errorf("sample %d: unknown action %q", i, s.Action)
		}
		examples[i] = nn.BagExample{Features: features[i], Label: label}
	}

	net := nn.NewBagClassifier(vocab, labels(), nn.BagConfig{
		SeqLen:    ms.SeqLen,
		EmbedDim:  ms.EmbedDim,
		HiddenDim: ms.HiddenDim,
		Dropout:   ms.Dropout,
	}, ms.Seed)

	report, err := net.Train(ctx, examples, nn.TrainOptions{
		Epochs:       ms.Epochs,
		BatchSize:    ms.BatchSize,
		LearningRate: ms.LearningRate,
		TokenDropout: 0.05,
		Seed:         ms.Seed,
		Progress:     progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to train intent classifier: %w", err)
	}

	slog.Info("Trained intent classifier",
		"samples", report.Examples,
		"vocabulary", vocab.Size(),
		"epochs", report.Epochs,
		"loss", report.FinalLoss)

	return &Classifier{net: net}, nil
}

// Bootstrap trains on synthetic phrases only.
func Bootstrap(ctx context.Context, ms config.ModelSettings, progress func(epoch, total int, loss float64)) (*Classifier, error) {
	return Train(ctx, GenerateSamples(ms.Seed, ms.Samples), ms, progress)
}

// Predict returns the most likely action and its probability.
func (c *Classifier) Predict(text string) (model.Action, float64) {
	probs := c.net.Predict(textproc.Features(textproc.Tokenize(text)))
	best := nn.Argmax(probs)
	return model.Actions[best], probs[best]
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
	if !slices.Equal(net.Labels(), labels()) {
		return nil, fmt.Errorf("%w: intent labels %v", nn.ErrStateMismatch, net.Labels())
	}
	return &Classifier{net: net}, nil
}

// Decide applies the caller's trust policy: a prediction at or above
// threshold stands, anything less becomes CREATE_TRANSACTION.
func Decide(action model.Action, confidence, threshold float64) model.Action {
	if confidence >= threshold {
		return action
	}
	return model.ActionCreateTransaction
}
