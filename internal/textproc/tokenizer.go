// Package textproc turns free-form Vietnamese utterances into the token and
// feature sequences shared by every model in the pipeline.
package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NumberFeature replaces all-digit tokens in model features.
const NumberFeature = "<num>"

type charClass int

const (
	classOther charClass = iota
	classLetter
	classDigit
)

func classify(r rune) charClass {
	switch {
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r), unicode.Is(unicode.Mn, r):
		return classLetter
	default:
		return classOther
	}
}

// Tokenize splits text into lower-cased word and number tokens. Any character
// that is neither a letter nor a digit is a boundary. Input is NFC-normalised
// first so composed and decomposed diacritics tokenize identically. Tokens mixing digits and
// letters are re-split, so "4tr8" yields ["4", "tr", "8"].
func Tokenize(text string) []string {
	var tokens []string
	scan(text, func(token string, _ Joint) {
		tokens = append(tokens, token)
	})
	return tokens
}

// Joint is what separated a token from the one before it.
type Joint uint8

const (
	// JointSpace separates tokens of different words. The first token has it too.
	JointSpace Joint = iota
	// JointNone separates the parts of a mixed token such as "4tr8".
	JointNone
	// JointDot is a single "." inside a word, as in "750.000".
	JointDot
	// JointComma is a single "," inside a word, as in "1,5tr".
	JointComma
	// JointOther is any other punctuation inside a word.
	JointOther
)

// TokenJoints returns, for each token of Tokenize(text), how it was joined
// to the previous one.
func TokenJoints(text string) []Joint {
	var joints []Joint
	scan(text, func(_ string, j Joint) {
		joints = append(joints, j)
	})
	return joints
}

func scan(text string, emit func(token string, j Joint)) {
	var (
		run     strings.Builder
		between strings.Builder
		started bool
	)

	flush := func() {
		if run.Len() == 0 {
			return
		}
		j := jointOf(between.String(), started)
		for _, part := range SplitMixed(strings.ToLower(run.String())) {
			emit(part, j)
			j = JointNone
		}
		started = true
		run.Reset()
		between.Reset()
	}

	for _, r := range norm.NFC.String(text) {
		if classify(r) == classOther {
			flush()
			between.WriteRune(r)
			continue
		}
		run.WriteRune(r)
	}
	flush()
}

func jointOf(between string, started bool) Joint {
	switch {
	case !started || strings.IndexFunc(between, unicode.IsSpace) >= 0:
		return JointSpace
	case between == ".":
		return JointDot
	case between == ",":
		return JointComma
	default:
		return JointOther
	}
}

// SplitMixed splits a token into alternating numeric and alphabetic parts.
func SplitMixed(token string) []string {
	var (
		parts []string
		start int
		prev  = classOther
	)

	for i, r := range token {
		c := classify(r)
		if c == classOther {
			if i > start {
				parts = append(parts, token[start:i])
			}
			start = i + len(string(r))
			prev = classOther
			continue
		}
		if prev != classOther && c != prev {
			parts = append(parts, token[start:i])
			start = i
		}
		prev = c
	}
	if start < len(token) {
		parts = append(parts, token[start:])
	}

	return parts
}

// IsNumeric reports whether the token consists only of digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Features maps tokens to model input features. Numbers collapse to a single
// feature so the models learn positions and units rather than digit strings.
func Features(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if IsNumeric(t) {
			out[i] = NumberFeature
			continue
		}
		out[i] = t
	}
	return out
}

// Word is a whitespace-separated chunk of the original text with its tokens.
type Word struct {
	Text   string
	Tokens []string
}

// SplitWords returns the whitespace-separated words of text with their tokens.
func SplitWords(text string) []Word {
	fields := strings.Fields(text)
	words := make([]Word, 0, len(fields))
	for _, f := range fields {
		words = append(words, Word{Text: f, Tokens: Tokenize(f)})
	}
	return words
}
