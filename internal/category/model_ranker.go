package category

import (
	"context"

	"github.com/Veraticus/spice-talk/internal/model"
)

// ModelRanker ranks with the current learned classifier. current returns
// nil until a classifier has been trained or loaded, in which case the tier
// yields nothing.
type ModelRanker struct {
	current  func() *Classifier
	minScore float64
}

// NewModelRanker creates the learned tier. Probabilities below minScore are
// not usable candidates.
func NewModelRanker(current func() *Classifier, minScore float64) *ModelRanker {
	return &ModelRanker{current: current, minScore: minScore}
}

// Tier implements Ranker.
func (m *ModelRanker) Tier() Tier {
	return TierModel
}

// Rank implements Ranker. Categories the model predicts but the caller did
// not offer are dropped, as are those against a known direction.
func (m *ModelRanker) Rank(_ context.Context, q Query) (model.Ranking, error) {
	c := m.current()
	if c == nil {
		return nil, nil
	}

	offered := make(map[int64]model.Category, len(q.Categories))
	for _, cat := range q.Categories {
		offered[cat.ID] = cat
	}

	var ranking model.Ranking
	for _, s := range c.Predict(q.Text) {
		cat, ok := offered[s.CategoryID]
		if !ok || s.Probability < m.minScore {
			continue
		}
		if q.DirectionKnown && cat.Type.Direction() != q.Direction {
			continue
		}
		ranking = append(ranking, model.NewPrediction(cat, s.Probability))
	}
	ranking.Sort()
	return ranking, nil
}
