package amount

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

// ModelName is the persistence key of the amount tagger.
const ModelName = "amount"

// Extractor tags amount spans with a BiRNN and converts the best span.
type Extractor struct {
	tagger *nn.SequenceTagger
}

func labels() []string {
	out := make([]string, len(model.BIOLabels))
	for i, l := range model.BIOLabels {
		out[i] = string(l)
	}
	return out
}

// Train fits a fresh tagger on samples.
func Train(ctx context.Context, samples []TaggedSample, ms config.ModelSettings, progress func(epoch, total int, loss float64)) (*Extractor, error) {
	index := make(map[model.BIOLabel]int, len(model.BIOLabels))
	for i, l := range model.BIOLabels {
		index[l] = i
	}

	features := make([][]string, len(samples))
	examples := make([]nn.TagExample, len(samples))
	for i, s := range samples {
		features[i] = textproc.Features(s.Tokens)
		ids := make([]int, len(s.Labels))
		for j, l := range s.Labels {
			ids[j] = index[l]
		}
		examples[i] = nn.TagExample{Features: features[i], Labels: ids}
	}
	vocab := textproc.BuildVocabulary(features, ms.VocabSize)

	tagger := nn.NewSequenceTagger(vocab, labels(), nn.TaggerConfig{
		SeqLen:    ms.SeqLen,
		EmbedDim:  ms.EmbedDim,
		HiddenDim: ms.HiddenDim,
	}, ms.Seed)

	report, err := tagger.Train(ctx, examples, nn.TrainOptions{
		Epochs:       ms.Epochs,
		BatchSize:    ms.BatchSize,
		LearningRate: ms.LearningRate,
		TokenDropout: 0.05,
		Seed:         ms.Seed,
		Progress:     progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to train amount tagger: %w", err)
	}

	slog.Info("Trained amount tagger",
		"samples", report.Examples,
		"vocabulary", vocab.Size(),
		"epochs", report.Epochs,
		"loss", report.FinalLoss)

	return &Extractor{tagger: tagger}, nil
}

// Bootstrap trains on synthetic samples across every amount style.
func Bootstrap(ctx context.Context, ms config.ModelSettings, progress func(epoch, total int, loss float64)) (*Extractor, error) {
	return Train(ctx, GenerateSamples(ms.Seed, ms.Samples), ms, progress)
}

// Extract locates and converts the amount in text. When the tagger finds no
// span, or its span does not convert, the deterministic fallback answers.
func (e *Extractor) Extract(text string) model.AmountResult {
	s := newStream(text)
	tokens := s.tokens
	if len(tokens) == 0 {
		return noAmount(tokens)
	}

	probs := e.tagger.Predict(textproc.Features(tokens))
	start, end, conf := bestSpan(probs)
	if end > start {
		if from, c, ok := convertSpan(s, widenStart(s, start), end); ok {
			value := c.value
			start, end = from, max(end, c.end)
			return model.AmountResult{
				Amount:     &value,
				Source:     model.AmountSourceModel,
				Tokens:     tokens,
				Labels:     spanLabels(len(tokens), start, end),
				SpanStart:  start,
				SpanEnd:    end,
				Confidence: conf,
			}
		}
		slog.Debug("Tagged span did not convert, using fallback", "span", tokens[start:end])
	}
	return fallbackStream(s)
}

// widenStart moves a span start that landed inside a money expression back
// to the expression's first number: "4 tr [8]" becomes "[4 tr 8]" and
// "1,[5] triệu" becomes "[1,5 triệu]". Numbers in separate words are
// separate expressions.
func widenStart(s stream, start int) int {
	tokens := s.tokens
	for start > 0 {
		cur, prev := tokens[start], tokens[start-1]
		switch {
		case IsUnit(cur) && textproc.IsNumeric(prev):
			start--
		case textproc.IsNumeric(cur) && textproc.IsNumeric(prev) && s.glued(start):
			start--
		case textproc.IsNumeric(cur) && start >= 2 && isFractionUnit(prev) && textproc.IsNumeric(tokens[start-2]):
			start -= 2
		default:
			return start
		}
	}
	return start
}

// convertSpan converts the span's first number that carries a unit, else
// its first number, and returns where that expression starts. A unit the
// tagger left just outside the span is still read, so "45" tagged alone in
// "45 k" is 45000, not 45.
func convertSpan(s stream, start, end int) (int, conversion, bool) {
	first, best := -1, conversion{}
	for i := start; i < end; i++ {
		if !textproc.IsNumeric(s.tokens[i]) {
			continue
		}
		c, ok := convert(s, i)
		if !ok {
			continue
		}
		if c.hasUnit {
			return i, c, true
		}
		if first < 0 {
			first, best = i, c
		}
	}
	return first, best, first >= 0
}

// bestSpan picks the B-AMT I-AMT* run with the highest mean label
// probability. Earlier spans win ties.
func bestSpan(probs [][]float64) (start, end int, confidence float64) {
	begin := slices.Index(model.BIOLabels, model.LabelBegin)
	inside := slices.Index(model.BIOLabels, model.LabelInside)

	for i := 0; i < len(probs); i++ {
		if nn.Argmax(probs[i]) != begin {
			continue
		}
		sum := probs[i][begin]
		j := i + 1
		for j < len(probs) && nn.Argmax(probs[j]) == inside {
			sum += probs[j][inside]
			j++
		}
		if mean := sum / float64(j-i); mean > confidence {
			start, end, confidence = i, j, mean
		}
		i = j - 1
	}
	return start, end, confidence
}

// Snapshot returns the tagger's persistable state.
func (e *Extractor) Snapshot() (*nn.Snapshot, error) {
	return e.tagger.Snapshot()
}

// Restore rebuilds an extractor from a snapshot.
func Restore(s *nn.Snapshot) (*Extractor, error) {
	tagger, err := nn.RestoreSequenceTagger(s)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(tagger.Labels(), labels()) {
		return nil, fmt.Errorf("%w: amount labels %v", nn.ErrStateMismatch, tagger.Labels())
	}
	return &Extractor{tagger: tagger}, nil
}
