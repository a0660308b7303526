package model

// BIOLabel tags a token as outside, beginning or inside an amount span.
type BIOLabel string

// Amount span labels.
const (
	LabelOutside BIOLabel = "O"
	LabelBegin   BIOLabel = "B-AMT"
	LabelInside  BIOLabel = "I-AMT"
)

// BIOLabels lists the tagger labels in output order.
var BIOLabels = []BIOLabel{LabelOutside, LabelBegin, LabelInside}

// AmountSource records which path produced an amount.
type AmountSource string

// Amount sources.
const (
	AmountSourceNone     AmountSource = "none"
	AmountSourceModel    AmountSource = "model"
	AmountSourceFallback AmountSource = "fallback"
)

// AmountResult is the outcome of amount extraction. Labels always has one
// entry per token.
type AmountResult struct {
	Amount     *int64
	Source     AmountSource
	Tokens     []string
	Labels     []BIOLabel
	SpanStart  int
	SpanEnd    int
	Confidence float64
}

// HasSpan reports whether a token span was located.
func (r AmountResult) HasSpan() bool {
	return r.SpanEnd > r.SpanStart
}
