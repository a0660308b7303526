package category

import "github.com/Veraticus/spice-talk/internal/model"

// Decision is what the pipeline does with a ranking.
type Decision struct {
	Primary      *model.Prediction
	State        model.DecisionState
	Alternatives model.Ranking
}

// Decide maps a ranking to one of three states. A top score at or above
// minAuto acts without asking. Below it, a guess from the learned model is
// a good guess; anything from the heuristic or prior tiers, or nothing at
// all, is a weak one. Alternatives are the best maxAlternatives candidates.
func Decide(ranking model.Ranking, tier Tier, minAuto float64, maxAlternatives int) Decision {
	top := ranking.Top()
	if top == nil {
		return Decision{State: model.DecisionAskWithWeakGuesses, Alternatives: model.Ranking{}}
	}

	d := Decision{Primary: top, Alternatives: ranking.TopN(maxAlternatives)}
	switch {
	case top.Confidence >= minAuto:
		d.State = model.DecisionAutoAct
	case tier == TierModel:
		d.State = model.DecisionAskWithGoodGuesses
	default:
		d.State = model.DecisionAskWithWeakGuesses
	}
	return d
}
