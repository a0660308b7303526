package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/model"
)

func TestDecide(t *testing.T) {
	ranking := func(top float64) model.Ranking {
		return model.Ranking{
			{CategoryID: 2, CategoryName: "Di chuyển", Confidence: 0.1},
			{CategoryID: 1, CategoryName: "Ăn uống", Confidence: top},
			{CategoryID: 3, CategoryName: "Mua sắm", Confidence: 0.05},
			{CategoryID: 4, CategoryName: "Hóa đơn", Confidence: 0.02},
		}
	}

	tests := []struct {
		name    string
		tier    Tier
		want    model.DecisionState
		ranking model.Ranking
	}{
		{name: "model at threshold acts", ranking: ranking(0.6), tier: TierModel, want: model.DecisionAutoAct},
		{name: "keyword at threshold acts", ranking: ranking(0.6), tier: TierKeyword, want: model.DecisionAutoAct},
		{name: "model just below asks with good guesses", ranking: ranking(0.599), tier: TierModel, want: model.DecisionAskWithGoodGuesses},
		{name: "keyword below asks with weak guesses", ranking: ranking(0.599), tier: TierKeyword, want: model.DecisionAskWithWeakGuesses},
		{name: "prior asks with weak guesses", ranking: ranking(0.3), tier: TierPrior, want: model.DecisionAskWithWeakGuesses},
		{name: "empty ranking", ranking: nil, tier: TierNone, want: model.DecisionAskWithWeakGuesses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.ranking, tt.tier, 0.6, 3)
			assert.Equal(t, tt.want, d.State)
			if len(tt.ranking) == 0 {
				assert.Nil(t, d.Primary)
				assert.NotNil(t, d.Alternatives)
				assert.Empty(t, d.Alternatives)
				return
			}
			require.NotNil(t, d.Primary)
			assert.Equal(t, int64(1), d.Primary.CategoryID)
		})
	}
}

func TestDecide_Alternatives(t *testing.T) {
	r := model.Ranking{
		{CategoryID: 3, CategoryName: "Mua sắm", Confidence: 0.2},
		{CategoryID: 1, CategoryName: "Ăn uống", Confidence: 0.5},
		{CategoryID: 4, CategoryName: "Hóa đơn", Confidence: 0.1},
		{CategoryID: 2, CategoryName: "Di chuyển", Confidence: 0.3},
	}

	d := Decide(r, TierModel, 0.6, 3)
	require.Len(t, d.Alternatives, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{
		d.Alternatives[0].CategoryID,
		d.Alternatives[1].CategoryID,
		d.Alternatives[2].CategoryID,
	})

	d = Decide(r, TierModel, 0.6, 10)
	assert.Len(t, d.Alternatives, 4)
}
