package category

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/service"
)

var testCategories = []model.Category{
	{ID: 1, Name: "Ăn uống", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: 2, Name: "Di chuyển", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: 3, Name: "Mua sắm", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: 4, Name: "Hóa đơn", Type: model.CategoryTypeExpense, IsActive: true},
	{ID: 5, Name: "Lương", Type: model.CategoryTypeIncome, IsActive: true},
	{ID: 6, Name: "Thưởng", Type: model.CategoryTypeIncome, IsActive: true},
}

// fakeHistory serves fixed frequencies and remembers what it was asked.
type fakeHistory struct {
	err       error
	freqs     map[model.Direction][]model.CategoryFrequency
	since     time.Time
	direction model.Direction
	calls     int
}

func (f *fakeHistory) SaveTransaction(context.Context, *model.Transaction) error {
	return errors.New("not implemented")
}

func (f *fakeHistory) GetTransactions(context.Context, service.TransactionFilter) ([]model.Transaction, error) {
	return nil, nil
}

func (f *fakeHistory) CategoryFrequencies(_ context.Context, since time.Time, direction model.Direction) ([]model.CategoryFrequency, error) {
	f.calls++
	f.since = since
	f.direction = direction
	if f.err != nil {
		return nil, f.err
	}
	return f.freqs[direction], nil
}

// staticRanker returns a fixed ranking for chain tests.
type staticRanker struct {
	err     error
	tier    Tier
	ranking model.Ranking
	calls   int
}

func (s *staticRanker) Tier() Tier {
	return s.tier
}

func (s *staticRanker) Rank(context.Context, Query) (model.Ranking, error) {
	s.calls++
	return s.ranking, s.err
}

func findPrediction(r model.Ranking, id int64) *model.Prediction {
	for i := range r {
		if r[i].CategoryID == id {
			return &r[i]
		}
	}
	return nil
}
