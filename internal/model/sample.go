package model

import "time"

// TrainingSample records one shown category prediction and, once the user
// decides, the category they chose. A confirmation stores the predicted
// category as the choice. Samples are append-only.
type TrainingSample struct {
	CreatedAt           time.Time
	CorrectedAt         *time.Time
	Amount              *int64
	ChosenCategoryID    *int64
	ID                  string
	Text                string
	IO                  Direction
	PredictedCategoryID int64
	Confidence          float64
}

// IsResolved reports whether the user confirmed or corrected the prediction.
func (s *TrainingSample) IsResolved() bool {
	return s.ChosenCategoryID != nil
}

// IsCorrected reports whether the user picked a different category.
func (s *TrainingSample) IsCorrected() bool {
	return s.ChosenCategoryID != nil && *s.ChosenCategoryID != s.PredictedCategoryID
}

// Label is the category the sample teaches. Unresolved samples teach
// nothing.
func (s *TrainingSample) Label() (int64, bool) {
	if s.ChosenCategoryID == nil {
		return 0, false
	}
	return *s.ChosenCategoryID, true
}
