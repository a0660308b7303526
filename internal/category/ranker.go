// Package category ranks the user's categories for an utterance and decides
// whether the top guess is good enough to act on.
//
// Ranking runs a fixed chain of tiers: the learned model, then keyword
// heuristics, then historical priors. The first tier that yields any
// candidate wins.
package category

import (
	"context"
	"log/slog"

	"github.com/Veraticus/spice-talk/internal/model"
)

// Tier names the ranker that produced a ranking.
type Tier string

// Ranking tiers in chain order.
const (
	TierModel   Tier = "model"
	TierKeyword Tier = "keyword"
	TierPrior   Tier = "prior"
	TierNone    Tier = "none"
)

// Query is what every ranker sees.
type Query struct {
	Amount *int64
	Text   string
	// Direction is only trusted by rankers when DirectionKnown is set.
	Direction      model.Direction
	Categories     []model.Category
	DirectionKnown bool
}

// Ranker scores categories for a query. An empty ranking means the tier has
// nothing to offer and the chain moves on.
type Ranker interface {
	Tier() Tier
	Rank(ctx context.Context, q Query) (model.Ranking, error)
}

// Chain tries rankers in order.
type Chain struct {
	rankers []Ranker
}

// NewChain creates a chain over rankers in the given order.
func NewChain(rankers ...Ranker) *Chain {
	return &Chain{rankers: rankers}
}

// Rank returns the first non-empty, deduplicated ranking and the tier that
// produced it. A failing tier is logged and skipped; only cancellation of
// ctx is returned as an error.
func (c *Chain) Rank(ctx context.Context, q Query) (model.Ranking, Tier, error) {
	for _, r := range c.rankers {
		if err := ctx.Err(); err != nil {
			return nil, TierNone, err
		}

		ranking, err := r.Rank(ctx, q)
		if err != nil {
			slog.Warn("Category tier failed, trying next", "tier", r.Tier(), "error", err)
			continue
		}

		ranking = ranking.Dedupe()
		if len(ranking) > 0 {
			slog.Debug("Category tier produced candidates", "tier", r.Tier(), "count", len(ranking))
			return ranking, r.Tier(), nil
		}
	}
	return nil, TierNone, nil
}
