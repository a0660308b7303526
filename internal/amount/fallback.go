package amount

import (
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// Fallback confidences. Both stay below any tagged-span confidence, which
// is an average of argmax probabilities over three labels and so above 1/3.
const (
	FallbackUnitConfidence = 0.2
	FallbackBareConfidence = 0.1
)

// ParseFallback reads an amount straight from the token stream without the
// tagger. The first number followed by a unit wins; failing that, the first
// number that converts at all.
func ParseFallback(text string) model.AmountResult {
	return fallbackStream(newStream(text))
}

func fallbackStream(s stream) model.AmountResult {
	var (
		best   conversion
		start  = -1
		tokens = s.tokens
	)
	for i, t := range tokens {
		if !textproc.IsNumeric(t) {
			continue
		}
		c, ok := convert(s, i)
		if !ok {
			continue
		}
		if c.hasUnit {
			best, start = c, i
			break
		}
		if start < 0 {
			best, start = c, i
		}
	}

	if start < 0 {
		return noAmount(tokens)
	}

	confidence := FallbackBareConfidence
	if best.hasUnit {
		confidence = FallbackUnitConfidence
	}
	value := best.value
	return model.AmountResult{
		Amount:     &value,
		Source:     model.AmountSourceFallback,
		Tokens:     tokens,
		Labels:     spanLabels(len(tokens), start, best.end),
		SpanStart:  start,
		SpanEnd:    best.end,
		Confidence: confidence,
	}
}

func noAmount(tokens []string) model.AmountResult {
	return model.AmountResult{
		Source: model.AmountSourceNone,
		Tokens: tokens,
		Labels: spanLabels(len(tokens), 0, 0),
	}
}

// spanLabels tags [start, end) as B-AMT, I-AMT... and everything else O.
func spanLabels(n, start, end int) []model.BIOLabel {
	labels := make([]model.BIOLabel, n)
	for i := range labels {
		switch {
		case i == start && end > start:
			labels[i] = model.LabelBegin
		case i > start && i < end:
			labels[i] = model.LabelInside
		default:
			labels[i] = model.LabelOutside
		}
	}
	return labels
}
