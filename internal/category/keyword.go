package category

import (
	"context"
	"strings"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

const ngramSize = 3

// KeywordRanker scores categories by lexical evidence: the category name in
// the text, curated theme keywords, token and character n-gram overlap.
type KeywordRanker struct {
	themes []foldedTheme
	cal    config.Calibration
}

// NewKeywordRanker creates a ranker with the built-in themes.
func NewKeywordRanker(cal config.Calibration) *KeywordRanker {
	return &KeywordRanker{themes: foldThemes(defaultThemes), cal: cal}
}

// Tier implements Ranker.
func (k *KeywordRanker) Tier() Tier {
	return TierKeyword
}

// Signals are the components of a keyword score, each in [0,1].
type Signals struct {
	ExactName    bool
	KeywordHit   float64
	TokenOverlap float64
	Jaccard      float64
	NgramOverlap float64
	Direction    float64
}

// hasEvidence reports whether the text says anything about the category.
// Direction or shared letter n-grams alone do not count.
func (s Signals) hasEvidence() bool {
	return s.ExactName || s.KeywordHit > 0 || s.TokenOverlap > 0
}

// Score combines signals with the calibrated weights.
func (k *KeywordRanker) Score(s Signals) float64 {
	w := k.cal.Weights
	score := w.Keyword*s.KeywordHit +
		w.TokenOverlap*s.TokenOverlap +
		w.Jaccard*s.Jaccard +
		w.Ngram*s.NgramOverlap +
		w.Direction*s.Direction
	if s.ExactName {
		score = max(score, k.cal.ExactNameScore)
	}
	return min(score, 1)
}

// Signals computes the evidence that text belongs to category c.
func (k *KeywordRanker) Signals(q Query, c model.Category) Signals {
	textTokens := textproc.FoldTokens(textproc.Tokenize(q.Text))
	return k.signals(textTokens, q, c)
}

func (k *KeywordRanker) signals(textTokens []string, q Query, c model.Category) Signals {
	nameTokens := textproc.FoldTokens(textproc.Tokenize(c.Name))
	text := strings.Join(textTokens, " ")
	name := strings.Join(nameTokens, " ")

	var s Signals
	s.ExactName = containsPhrase(text, name)

	for _, th := range k.themes {
		if !k.belongs(name, th) {
			continue
		}
		for _, kw := range th.keywords {
			if containsPhrase(text, kw) {
				s.KeywordHit = 1
				break
			}
		}
		if s.KeywordHit > 0 {
			break
		}
	}

	textSet := toSet(textTokens)
	nameSet := toSet(nameTokens)
	shared := 0
	for t := range nameSet {
		if _, ok := textSet[t]; ok {
			shared++
		}
	}
	if len(nameSet) > 0 {
		s.TokenOverlap = float64(shared) / float64(len(nameSet))
	}
	if union := len(textSet) + len(nameSet) - shared; union > 0 {
		s.Jaccard = float64(shared) / float64(union)
	}

	nameGrams := textproc.CharNgrams(nameTokens, ngramSize)
	textGrams := textproc.CharNgrams(textTokens, ngramSize)
	if len(nameGrams) > 0 {
		common := 0
		for g := range nameGrams {
			if _, ok := textGrams[g]; ok {
				common++
			}
		}
		s.NgramOverlap = float64(common) / float64(len(nameGrams))
	}

	if q.DirectionKnown && c.Type.Direction() == q.Direction {
		s.Direction = 1
	}
	return s
}

func (k *KeywordRanker) belongs(foldedName string, th foldedTheme) bool {
	for _, cue := range th.cues {
		if containsPhrase(foldedName, cue) {
			return true
		}
	}
	return false
}

// Rank implements Ranker. Only categories with lexical evidence are
// candidates.
func (k *KeywordRanker) Rank(_ context.Context, q Query) (model.Ranking, error) {
	textTokens := textproc.FoldTokens(textproc.Tokenize(q.Text))
	if len(textTokens) == 0 {
		return nil, nil
	}

	var ranking model.Ranking
	for _, c := range q.Categories {
		s := k.signals(textTokens, q, c)
		if !s.hasEvidence() {
			continue
		}
		ranking = append(ranking, model.NewPrediction(c, k.Score(s)))
	}
	ranking.Sort()
	return ranking, nil
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
