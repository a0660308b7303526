package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
)

func TestPriorRanker_LaplaceSmoothing(t *testing.T) {
	history := &fakeHistory{freqs: map[model.Direction][]model.CategoryFrequency{
		model.DirectionOut: {
			{CategoryID: 1, Count: 6},
			{CategoryID: 2, Count: 2},
			{CategoryID: 99, Count: 50}, // no longer offered
		},
	}}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	p := NewPriorRanker(history, 90)
	p.now = func() time.Time { return now }

	ranking, err := p.Rank(context.Background(), Query{
		Text:           "abc",
		Direction:      model.DirectionOut,
		DirectionKnown: true,
		Categories:     testCategories,
	})
	require.NoError(t, err)

	// 8 history hits over 4 expense categories
	require.Len(t, ranking, 4)
	assert.Equal(t, int64(1), ranking[0].CategoryID)
	assert.InDelta(t, 7.0/12, ranking[0].Confidence, 1e-9)
	assert.Equal(t, int64(2), ranking[1].CategoryID)
	assert.InDelta(t, 3.0/12, ranking[1].Confidence, 1e-9)
	assert.InDelta(t, 1.0/12, findPrediction(ranking, 3).Confidence, 1e-9)
	assert.Nil(t, findPrediction(ranking, 5), "income categories are excluded")

	assert.Equal(t, now.AddDate(0, 0, -90), history.since)
	assert.Equal(t, model.DirectionOut, history.direction)
}

func TestPriorRanker_EmptyHistoryIsUniform(t *testing.T) {
	p := NewPriorRanker(&fakeHistory{}, 90)

	ranking, err := p.Rank(context.Background(), Query{
		Direction:      model.DirectionIn,
		DirectionKnown: true,
		Categories:     testCategories,
	})
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	for _, pred := range ranking {
		assert.InDelta(t, 0.5, pred.Confidence, 1e-9)
	}
}

func TestPriorRanker_UnknownDirectionMeansSpending(t *testing.T) {
	history := &fakeHistory{}
	p := NewPriorRanker(history, 30)

	ranking, err := p.Rank(context.Background(), Query{Direction: model.DirectionIn, Categories: testCategories})
	require.NoError(t, err)
	assert.Len(t, ranking, 4)
	assert.Equal(t, model.DirectionOut, history.direction)
}

func TestPriorRanker_NoCandidates(t *testing.T) {
	history := &fakeHistory{}
	p := NewPriorRanker(history, 30)

	ranking, err := p.Rank(context.Background(), Query{
		Direction:      model.DirectionIn,
		DirectionKnown: true,
		Categories:     testCategories[:4],
	})
	require.NoError(t, err)
	assert.Empty(t, ranking)
	assert.Zero(t, history.calls)
}

func TestPriorRanker_StoreError(t *testing.T) {
	p := NewPriorRanker(&fakeHistory{err: errors.New("database is locked")}, 30)

	_, err := p.Rank(context.Background(), Query{Categories: testCategories})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}
