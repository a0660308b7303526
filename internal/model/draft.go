package model

import "time"

// DecisionState is how confident the pipeline is in its category choice.
type DecisionState string

// Decision states.
const (
	DecisionAutoAct            DecisionState = "AUTO_ACT"
	DecisionAskWithGoodGuesses DecisionState = "ASK_GOOD_GUESSES"
	DecisionAskWithWeakGuesses DecisionState = "ASK_WEAK_GUESSES"
)

// Draft is a parsed transaction built from one utterance. It is consumed
// immediately by the caller and never stored by the core.
type Draft struct {
	Date             time.Time
	Amount           *int64
	Primary          *Prediction
	ID               string
	Action           Action
	Note             string
	CategoryName     string
	IO               Direction
	Message          string
	Decision         DecisionState
	Tier             string
	Alternatives     Ranking
	CategoryID       int64
	ActionConfidence float64
	AmountConfidence float64
}

// NeedsAmount reports whether the caller must ask the user for an amount.
func (d *Draft) NeedsAmount() bool {
	return d.Action == ActionCreateTransaction && d.Amount == nil
}

// AutoCreate reports whether the draft can be saved without confirmation.
func (d *Draft) AutoCreate() bool {
	return d.Action == ActionCreateTransaction && d.Amount != nil && d.Decision == DecisionAutoAct
}
