package engine

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

// noteText rebuilds the note from the user's own words, leaving out the
// tokens skip selects. Words kept whole keep their original casing; a word
// that loses some of its tokens keeps the remaining tokens.
func noteText(words []textproc.Word, tokens []string, skip func(i int) bool) string {
	total := 0
	for _, w := range words {
		total += len(w.Tokens)
	}
	if total != len(tokens) {
		// Tokens did not come from these words; fall back to the tokens.
		var kept []string
		for i, t := range tokens {
			if !skip(i) {
				kept = append(kept, t)
			}
		}
		return strings.Join(kept, " ")
	}

	var (
		parts []string
		i     int
	)
	for _, w := range words {
		var kept []string
		for j, t := range w.Tokens {
			if !skip(i + j) {
				kept = append(kept, t)
			}
		}
		switch {
		case len(kept) == 0:
		case len(kept) == len(w.Tokens):
			parts = append(parts, strings.TrimFunc(w.Text, isPunct))
		default:
			parts = append(parts, strings.Join(kept, " "))
		}
		i += len(w.Tokens)
	}
	return strings.Join(parts, " ")
}

func isPunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}

// relativeDays are day words matched on folded tokens.
var relativeDays = []struct {
	words  []string
	offset int
}{
	{[]string{"hom", "nay"}, 0},
	{[]string{"hom", "qua"}, -1},
	{[]string{"hom", "kia"}, -2},
}

// dayRef is a relative day found in an utterance.
type dayRef struct {
	start, end int
	offset     int
}

func (d dayRef) covers(i int) bool {
	return i >= d.start && i < d.end
}

// date returns the start of the referenced day in now's location.
func (d dayRef) date(now time.Time) time.Time {
	y, m, day := now.Date()
	return time.Date(y, m, day+d.offset, 0, 0, 0, 0, now.Location())
}

// findRelativeDay returns the first relative day in tokens. Without one the
// draft is dated today.
func findRelativeDay(tokens []string) dayRef {
	folded := textproc.FoldTokens(tokens)
	for i := range folded {
		for _, rd := range relativeDays {
			end := i + len(rd.words)
			if end > len(folded) {
				continue
			}
			if slices.Equal(folded[i:end], rd.words) {
				return dayRef{start: i, end: end, offset: rd.offset}
			}
		}
	}
	return dayRef{}
}
