package category

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/service"
)

// PriorRanker ranks categories by how often they were used recently in the
// matching direction. Counts are Laplace-smoothed so unused categories still
// rank and an empty history gives a uniform ranking.
type PriorRanker struct {
	history service.HistoryStore
	now     func() time.Time
	window  time.Duration
}

// NewPriorRanker creates the prior tier over a trailing window of days.
func NewPriorRanker(history service.HistoryStore, windowDays int) *PriorRanker {
	return &PriorRanker{
		history: history,
		window:  time.Duration(windowDays) * 24 * time.Hour,
		now:     time.Now,
	}
}

// Tier implements Ranker.
func (p *PriorRanker) Tier() Tier {
	return TierPrior
}

// Rank implements Ranker. An unknown direction is treated as spending.
func (p *PriorRanker) Rank(ctx context.Context, q Query) (model.Ranking, error) {
	direction := model.DirectionOut
	if q.DirectionKnown {
		direction = q.Direction
	}

	candidates := model.FilterByDirection(q.Categories, direction)
	if len(candidates) == 0 {
		return nil, nil
	}

	freqs, err := p.history.CategoryFrequencies(ctx, p.now().Add(-p.window), direction)
	if err != nil {
		return nil, fmt.Errorf("failed to load category frequencies: %w", err)
	}

	counts := make(map[int64]int, len(freqs))
	for _, f := range freqs {
		counts[f.CategoryID] = f.Count
	}
	total := 0
	for _, c := range candidates {
		total += counts[c.ID]
	}

	ranking := make(model.Ranking, 0, len(candidates))
	denom := float64(total + len(candidates))
	for _, c := range candidates {
		ranking = append(ranking, model.NewPrediction(c, float64(counts[c.ID]+1)/denom))
	}
	ranking.Sort()
	return ranking, nil
}
