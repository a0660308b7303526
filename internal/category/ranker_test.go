package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/model"
)

func TestChain_FirstNonEmptyTierWins(t *testing.T) {
	empty := &staticRanker{tier: TierModel}
	keyword := &staticRanker{tier: TierKeyword, ranking: model.Ranking{
		{CategoryID: 1, CategoryName: "Ăn uống", Confidence: 0.63},
	}}
	prior := &staticRanker{tier: TierPrior, ranking: model.Ranking{
		{CategoryID: 2, CategoryName: "Di chuyển", Confidence: 0.2},
	}}

	ranking, tier, err := NewChain(empty, keyword, prior).Rank(context.Background(), Query{Text: "ăn trưa"})
	require.NoError(t, err)
	assert.Equal(t, TierKeyword, tier)
	require.Len(t, ranking, 1)
	assert.Equal(t, int64(1), ranking[0].CategoryID)
	assert.Equal(t, 1, empty.calls)
	assert.Zero(t, prior.calls, "later tiers are not consulted")
}

func TestChain_FailingTierIsSkipped(t *testing.T) {
	broken := &staticRanker{tier: TierModel, err: errors.New("boom")}
	prior := &staticRanker{tier: TierPrior, ranking: model.Ranking{
		{CategoryID: 2, CategoryName: "Di chuyển", Confidence: 0.2},
	}}

	ranking, tier, err := NewChain(broken, prior).Rank(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, TierPrior, tier)
	assert.Len(t, ranking, 1)
}

func TestChain_Dedupes(t *testing.T) {
	r := &staticRanker{tier: TierKeyword, ranking: model.Ranking{
		{CategoryID: 1, CategoryName: "Ăn uống", Confidence: 0.3},
		{CategoryID: 1, CategoryName: "Ăn uống", Confidence: 0.7},
	}}

	ranking, _, err := NewChain(r).Rank(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.InDelta(t, 0.7, ranking[0].Confidence, 1e-9)
}

func TestChain_NothingRanks(t *testing.T) {
	ranking, tier, err := NewChain(&staticRanker{tier: TierModel}, &staticRanker{tier: TierKeyword}).
		Rank(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, TierNone, tier)
	assert.Empty(t, ranking)
}

func TestChain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &staticRanker{tier: TierModel}
	_, tier, err := NewChain(r).Rank(ctx, Query{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TierNone, tier)
	assert.Zero(t, r.calls)
}

func TestChain_KeywordFallsThroughToPrior(t *testing.T) {
	history := &fakeHistory{}
	chain := NewChain(
		NewModelRanker(func() *Classifier { return nil }, 0.1),
		NewKeywordRanker(config.DefaultCalibration()),
		NewPriorRanker(history, 90),
	)

	ranking, tier, err := chain.Rank(context.Background(), Query{Text: "mua đồ", Categories: testCategories})
	require.NoError(t, err)
	// "mua" is a shopping keyword
	assert.Equal(t, TierKeyword, tier)
	assert.Equal(t, int64(3), ranking.Top().CategoryID)

	ranking, tier, err = chain.Rank(context.Background(), Query{Text: "abc", Categories: testCategories})
	require.NoError(t, err)
	assert.Equal(t, TierPrior, tier)
	assert.Len(t, ranking, 4, "unknown direction ranks expense categories")
	assert.Equal(t, 1, history.calls)
}
