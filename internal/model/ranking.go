package model

import (
	"fmt"
	"sort"
)

// Prediction is one scored category candidate.
type Prediction struct {
	CategoryName string  `json:"category"`
	CategoryID   int64   `json:"category_id"`
	Confidence   float64 `json:"confidence"`
}

// Validate ensures the Prediction has valid data.
func (p *Prediction) Validate() error {
	if p.CategoryName == "" {
		return fmt.Errorf("category name is required")
	}

	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", p.Confidence)
	}

	return nil
}

// Ranking is a list of predictions ordered by confidence, highest first.
type Ranking []Prediction

// Len implements sort.Interface.
func (r Ranking) Len() int {
	return len(r)
}

// Less implements sort.Interface - higher scores come first.
func (r Ranking) Less(i, j int) bool {
	if r[i].Confidence != r[j].Confidence {
		return r[i].Confidence > r[j].Confidence
	}
	// If scores are equal, sort by category ID for consistency
	return r[i].CategoryID < r[j].CategoryID
}

// Swap implements sort.Interface.
func (r Ranking) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

// Sort sorts the ranking by confidence in descending order.
func (r Ranking) Sort() {
	sort.Sort(r)
}

// Top returns the highest-scoring prediction, or nil if empty.
func (r Ranking) Top() *Prediction {
	if len(r) == 0 {
		return nil
	}
	r.Sort()
	top := r[0]
	return &top
}

// TopN returns the N highest-scoring predictions.
func (r Ranking) TopN(n int) Ranking {
	if n <= 0 {
		return Ranking{}
	}

	r.Sort()

	if n > len(r) {
		n = len(r)
	}

	result := make(Ranking, n)
	copy(result, r[:n])
	return result
}

// AboveThreshold returns all predictions with scores at or above the threshold.
func (r Ranking) AboveThreshold(threshold float64) Ranking {
	r.Sort()

	var result Ranking
	for _, p := range r {
		if p.Confidence >= threshold {
			result = append(result, p)
		}
	}
	return result
}

// Dedupe collapses predictions for the same category, keeping the maximum
// score, and returns a new sorted ranking.
func (r Ranking) Dedupe() Ranking {
	best := make(map[int64]int, len(r))
	result := make(Ranking, 0, len(r))

	for _, p := range r {
		if i, ok := best[p.CategoryID]; ok {
			if p.Confidence > result[i].Confidence {
				result[i] = p
			}
			continue
		}
		best[p.CategoryID] = len(result)
		result = append(result, p)
	}

	result.Sort()
	return result
}

// Without returns the ranking minus the given category.
func (r Ranking) Without(categoryID int64) Ranking {
	result := make(Ranking, 0, len(r))
	for _, p := range r {
		if p.CategoryID != categoryID {
			result = append(result, p)
		}
	}
	return result
}

// Validate ensures all predictions are valid and no category repeats.
func (r Ranking) Validate() error {
	seen := make(map[int64]bool)

	for i, p := range r {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid prediction at index %d: %w", i, err)
		}

		if seen[p.CategoryID] {
			return fmt.Errorf("duplicate category %d in ranking", p.CategoryID)
		}
		seen[p.CategoryID] = true
	}

	return nil
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NewPrediction builds a prediction for a category with a clamped score.
func NewPrediction(c Category, score float64) Prediction {
	return Prediction{
		CategoryID:   c.ID,
		CategoryName: c.Name,
		Confidence:   clamp01(score),
	}
}
