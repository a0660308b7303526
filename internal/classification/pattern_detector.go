// Package classification detects the money-flow direction of an utterance
// from prioritised Vietnamese keyword patterns.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// Pattern is one direction cue.
type Pattern struct {
	Name      string
	Direction model.Direction
	// Regex matches the lower-cased token text with diacritics.
	Regex string
	// Folded, when set, matches text typed without diacritics. Leave it
	// empty for words whose folded form is ambiguous ("bán" and "bạn").
	Folded     string
	Priority   int     // Higher priority patterns are checked first
	Confidence float64 // Confidence when the pattern matches (0.0-1.0)
}

// CompiledPattern holds compiled regexes with their pattern.
type CompiledPattern struct {
	regex  *regexp.Regexp
	folded *regexp.Regexp
	Pattern
}

// DirectionDetector finds the first matching pattern in priority order.
type DirectionDetector struct {
	patterns []CompiledPattern
	mu       sync.RWMutex
}

// Match is a detected direction.
type Match struct {
	PatternName string
	Direction   model.Direction
	Confidence  float64
}

// wordRegex anchors expr on letter boundaries. RE2's \b only knows ASCII
// letters, which would split "lương" at "ư". expr must compile on its own.
func wordRegex(expr string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(expr); err != nil {
		return nil, err
	}
	return regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + expr + `)(?:[^\p{L}\p{N}]|$)`)
}

func compile(patterns []Pattern) ([]CompiledPattern, error) {
	compiled := make([]CompiledPattern, 0, len(patterns))
	for _, p := range patterns {
		regex, err := wordRegex(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		cp := CompiledPattern{Pattern: p, regex: regex}
		if p.Folded != "" {
			if cp.folded, err = wordRegex(p.Folded); err != nil {
				return nil, fmt.Errorf("failed to compile folded pattern %s: %w", p.Name, err)
			}
		}
		compiled = append(compiled, cp)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})
	return compiled, nil
}

// NewDirectionDetector creates a detector with the given patterns.
func NewDirectionDetector(patterns []Pattern) (*DirectionDetector, error) {
	compiled, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	return &DirectionDetector{patterns: compiled}, nil
}

// Classify returns the first pattern matching text, or nil when none does.
// Accented matches take precedence over folded ones.
func (d *DirectionDetector) Classify(text string) *Match {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tokens := textproc.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	searchText := strings.Join(tokens, " ")
	for _, p := range d.patterns {
		if p.regex.MatchString(searchText) {
			return &Match{PatternName: p.Name, Direction: p.Direction, Confidence: p.Confidence}
		}
	}

	folded := strings.Join(textproc.FoldTokens(tokens), " ")
	for _, p := range d.patterns {
		if p.folded != nil && p.folded.MatchString(folded) {
			// unaccented input is weaker evidence
			return &Match{PatternName: p.Name, Direction: p.Direction, Confidence: p.Confidence * 0.9}
		}
	}
	return nil
}

// Detect returns the direction of text. Unknown text reports OUT with
// known set to false, since most utterances record spending.
func (d *DirectionDetector) Detect(text string) (direction model.Direction, confidence float64, known bool) {
	if m := d.Classify(text); m != nil {
		return m.Direction, m.Confidence, true
	}
	return model.DirectionOut, 0, false
}

// UpdatePatterns replaces the detector's patterns.
func (d *DirectionDetector) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compile(patterns)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.patterns = compiled
	d.mu.Unlock()

	return nil
}

// PatternCount returns the number of loaded patterns.
func (d *DirectionDetector) PatternCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.patterns)
}
