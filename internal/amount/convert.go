// Package amount finds the money expression in an utterance and converts
// Vietnamese shorthand ("45k", "4tr8", "1 triệu 2", "750.000đ") into an
// integer amount in dong.
package amount

import (
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	half     = decimal.NewFromFloat(0.5)
	maxValue = decimal.NewFromInt(math.MaxInt64)
)

// units maps unit tokens to their multiplier.
var units = map[string]decimal.Decimal{
	"k":     thousand,
	"nghìn": thousand,
	"nghin": thousand,
	"ngàn":  thousand,
	"ngan":  thousand,
	"tr":    million,
	"triệu": million,
	"trieu": million,
	"củ":    million,
	"tỷ":    billion,
	"tỉ":    billion,
	"ty":    billion,
	"đ":     decimal.NewFromInt(1),
	"d":     decimal.NewFromInt(1),
	"dong":  decimal.NewFromInt(1),
	"đồng":  decimal.NewFromInt(1),
	"vnd":   decimal.NewFromInt(1),
	"vnđ":   decimal.NewFromInt(1),
}

var halves = map[string]struct{}{"rưỡi": {}, "ruoi": {}}

// IsUnit reports whether token is a recognised money unit.
func IsUnit(token string) bool {
	_, ok := units[token]
	return ok
}

// stream is a tokenized utterance with the joints between its tokens.
type stream struct {
	tokens []string
	joints []textproc.Joint
}

func newStream(text string) stream {
	return stream{tokens: textproc.Tokenize(text), joints: textproc.TokenJoints(text)}
}

// glued reports whether tokens[i] follows a "." or "," inside the same word.
func (s stream) glued(i int) bool {
	if i <= 0 || i >= len(s.joints) {
		return false
	}
	return s.joints[i] == textproc.JointDot || s.joints[i] == textproc.JointComma
}

// decimalAt reads tokens[i] as the decimal part of the number before it,
// as in "1,5 triệu" or "1,5tr". It needs one or two digits glued to that
// number and a unit right after.
func (s stream) decimalAt(i int) (decimal.Decimal, bool) {
	if i+1 >= len(s.tokens) || !s.glued(i) || !textproc.IsNumeric(s.tokens[i]) || len(s.tokens[i]) > 2 {
		return decimal.Zero, false
	}
	if !IsUnit(s.tokens[i+1]) {
		return decimal.Zero, false
	}
	return fraction(s.tokens[i]), true
}

// conversion is the outcome of reading one money expression.
type conversion struct {
	value   int64
	end     int
	hasUnit bool
}

// convert reads a money expression starting at the numeric token
// s.tokens[start]. end is one past the last token consumed.
func convert(s stream, start int) (conversion, bool) {
	tokens := s.tokens
	if start >= len(tokens) || !textproc.IsNumeric(tokens[start]) {
		return conversion{}, false
	}

	base, err := decimal.NewFromString(tokens[start])
	if err != nil {
		return conversion{}, false
	}
	j := start + 1

	// "750.000" and "1,200,000" tokenise into three-digit groups
	for j < len(tokens) && s.glued(j) && textproc.IsNumeric(tokens[j]) && len(tokens[j]) == 3 {
		group, _ := decimal.NewFromString(tokens[j])
		base = base.Mul(thousand).Add(group)
		j++
	}

	fractional := false
	if f, ok := s.decimalAt(j); ok {
		base = base.Add(f)
		fractional = true
		j++
	}

	value := base
	hasUnit := false
	if j < len(tokens) {
		if scale, ok := units[tokens[j]]; ok {
			hasUnit = true
			j++
			value = base.Mul(scale)

			switch {
			case !fractional && isFractionUnit(tokens[j-1]) && j < len(tokens) && textproc.IsNumeric(tokens[j]):
				value = base.Add(fraction(tokens[j])).Mul(scale)
				j++
			case !fractional && j < len(tokens) && isHalf(tokens[j]) && scale.GreaterThanOrEqual(thousand):
				value = base.Add(half).Mul(scale)
				j++
			}
		}
	}

	rounded := value.Round(0)
	if !rounded.IsPositive() || rounded.GreaterThan(maxValue) {
		return conversion{}, false
	}
	return conversion{value: rounded.IntPart(), end: j, hasUnit: hasUnit}, true
}

// fraction reads digits as a decimal fraction: "8" → 0.8, "873" → 0.873.
func fraction(digits string) decimal.Decimal {
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-int32(utf8.RuneCountInString(digits)))
}

// isFractionUnit reports whether a number after token is a decimal fraction.
func isFractionUnit(token string) bool {
	scale, ok := units[token]
	return ok && scale.GreaterThanOrEqual(million)
}

func isHalf(token string) bool {
	_, ok := halves[token]
	return ok
}

// SpanToValue converts the text of an amount span into dong. The first
// number with a unit is the base, else the first number; words before it
// are ignored. It reports false when the span holds no usable number.
func SpanToValue(span string) (int64, bool) {
	s := newStream(span)
	_, c, ok := convertSpan(s, 0, len(s.tokens))
	return c.value, ok
}
