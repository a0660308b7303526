package textproc

import (
	"errors"
	"fmt"
	"sort"
)

// Reserved vocabulary slots.
const (
	PadIndex = 0
	UnkIndex = 1
	PadToken = "<pad>"
	UnkToken = "<unk>"
)

// ErrInvalidVocabulary is returned when a persisted vocabulary is malformed.
var ErrInvalidVocabulary = errors.New("invalid vocabulary")

// Vocabulary maps tokens to embedding rows. It is immutable once built;
// retraining builds a new one because weights are indexed by position.
type Vocabulary struct {
	index  map[string]int
	tokens []string
}

// BuildVocabulary counts tokens across all lists and assigns indices by
// descending frequency after the PAD and UNK slots. maxSize includes the
// reserved slots; a non-positive maxSize keeps every token. Ties are broken
// lexicographically.
func BuildVocabulary(lists [][]string, maxSize int) *Vocabulary {
	counts := make(map[string]int)
	for _, list := range lists {
		for _, t := range list {
			if t == "" || t == PadToken || t == UnkToken {
				continue
			}
			counts[t]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for t := range counts {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if maxSize > 0 {
		room := max(maxSize-2, 0)
		if len(ranked) > room {
			ranked = ranked[:room]
		}
	}

	tokens := make([]string, 0, len(ranked)+2)
	tokens = append(tokens, PadToken, UnkToken)
	tokens = append(tokens, ranked...)

	return newVocabulary(tokens)
}

// VocabularyFromTokens rebuilds a vocabulary from its ordered token list.
func VocabularyFromTokens(tokens []string) (*Vocabulary, error) {
	if len(tokens) < 2 || tokens[PadIndex] != PadToken || tokens[UnkIndex] != UnkToken {
		return nil, fmt.Errorf("%w: reserved slots missing", ErrInvalidVocabulary)
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("%w: duplicate token %q", ErrInvalidVocabulary, t)
		}
		seen[t] = struct{}{}
	}

	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return newVocabulary(cp), nil
}

func newVocabulary(tokens []string) *Vocabulary {
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		index[t] = i
	}
	return &Vocabulary{tokens: tokens, index: index}
}

// Lookup returns the index of token, or UnkIndex when it is unknown.
func (v *Vocabulary) Lookup(token string) int {
	if i, ok := v.index[token]; ok {
		return i
	}
	return UnkIndex
}

// Encode maps tokens to indices, truncated or PAD-padded to maxLen. A
// non-positive maxLen encodes every token without padding.
func (v *Vocabulary) Encode(tokens []string, maxLen int) []int {
	n := len(tokens)
	if maxLen > 0 {
		n = maxLen
	}

	ids := make([]int, n)
	for i := 0; i < n && i < len(tokens); i++ {
		ids[i] = v.Lookup(tokens[i])
	}
	return ids
}

// Size returns the number of entries, including the reserved slots.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Tokens returns a copy of the ordered token list.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// Equal reports whether both vocabularies assign identical indices.
func (v *Vocabulary) Equal(other *Vocabulary) bool {
	if other == nil || len(v.tokens) != len(other.tokens) {
		return false
	}
	for i := range v.tokens {
		if v.tokens[i] != other.tokens[i] {
			return false
		}
	}
	return true
}
