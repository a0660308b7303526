package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
)

func TestKeywordRanker_LunchMatchesFood(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())

	ranking, err := k.Rank(context.Background(), Query{
		Text:           "ăn trưa",
		Direction:      model.DirectionOut,
		DirectionKnown: true,
		Categories:     testCategories,
	})
	require.NoError(t, err)
	require.NotEmpty(t, ranking)

	top := ranking.Top()
	assert.Equal(t, "Ăn uống", top.CategoryName)
	// keyword 1, token overlap 1/2, jaccard 1/3, trigram 2/6, direction 1
	assert.InDelta(t, 0.30+0.20+0.05+0.1/3+0.05, top.Confidence, 1e-9)
	assert.GreaterOrEqual(t, top.Confidence, 0.6)
}

func TestKeywordRanker_FoldedInputScoresTheSame(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())
	q := Query{Direction: model.DirectionOut, DirectionKnown: true, Categories: testCategories}

	q.Text = "ăn trưa"
	accented, err := k.Rank(context.Background(), q)
	require.NoError(t, err)
	q.Text = "an trua"
	plain, err := k.Rank(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, accented, plain)
}

func TestKeywordRanker_ExactName(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())

	ranking, err := k.Rank(context.Background(), Query{
		Text:           "nhận lương 15tr",
		Direction:      model.DirectionIn,
		DirectionKnown: true,
		Categories:     testCategories,
	})
	require.NoError(t, err)

	top := ranking.Top()
	require.NotNil(t, top)
	assert.Equal(t, int64(5), top.CategoryID)
	assert.InDelta(t, 0.95, top.Confidence, 1e-9)

	bonus := findPrediction(ranking, 6)
	require.NotNil(t, bonus, "income keyword should make Thưởng a candidate")
	assert.Less(t, bonus.Confidence, top.Confidence)
}

func TestKeywordRanker_RequiresLexicalEvidence(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "punctuation only", text: "!!! ..."},
		{name: "unrelated words", text: "abc xyz"},
		{name: "number only", text: "45000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranking, err := k.Rank(context.Background(), Query{
				Text:           tt.text,
				Direction:      model.DirectionOut,
				DirectionKnown: true,
				Categories:     testCategories,
			})
			require.NoError(t, err)
			assert.Empty(t, ranking)
		})
	}
}

func TestKeywordRanker_Score(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())

	tests := []struct {
		name    string
		signals Signals
		want    float64
	}{
		{name: "nothing", signals: Signals{}, want: 0},
		{name: "keyword only", signals: Signals{KeywordHit: 1}, want: 0.30},
		{name: "overlap only", signals: Signals{TokenOverlap: 1}, want: 0.40},
		{name: "everything", signals: Signals{KeywordHit: 1, TokenOverlap: 1, Jaccard: 1, NgramOverlap: 1, Direction: 1}, want: 1},
		{name: "exact name floor", signals: Signals{ExactName: true}, want: 0.95},
		{name: "exact name keeps higher score", signals: Signals{ExactName: true, KeywordHit: 1, TokenOverlap: 1, Jaccard: 1, NgramOverlap: 1, Direction: 1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, k.Score(tt.signals), 1e-9)
		})
	}
}

func TestKeywordRanker_Signals(t *testing.T) {
	k := NewKeywordRanker(config.DefaultCalibration())
	food := testCategories[0]

	s := k.Signals(Query{Text: "ăn trưa"}, food)
	assert.False(t, s.ExactName)
	assert.InDelta(t, 1.0, s.KeywordHit, 1e-9)
	assert.InDelta(t, 0.5, s.TokenOverlap, 1e-9)
	assert.InDelta(t, 1.0/3, s.Jaccard, 1e-9)
	assert.InDelta(t, 2.0/6, s.NgramOverlap, 1e-9)
	assert.Zero(t, s.Direction, "direction unknown")

	s = k.Signals(Query{Text: "tiền ăn uống hôm nay"}, food)
	assert.True(t, s.ExactName)

	s = k.Signals(Query{Text: "ăn trưa", Direction: model.DirectionIn, DirectionKnown: true}, food)
	assert.Zero(t, s.Direction, "income direction does not support an expense category")
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, containsPhrase("an trua", "an"))
	assert.True(t, containsPhrase("tien an uong", "an uong"))
	assert.False(t, containsPhrase("banh mi", "an"))
	assert.False(t, containsPhrase("an trua", ""))
}
