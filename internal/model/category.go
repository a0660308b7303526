// Package model defines the core domain models used throughout the application.
package model

import "time"

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Direction reports the money flow a category of this type records.
func (t CategoryType) Direction() Direction {
	if t == CategoryTypeIncome {
		return DirectionIn
	}
	return DirectionOut
}

// Category is one of the user's own categories. The core ranks against
// categories but never creates or mutates them.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	Icon      string
	Color     string
	ID        int64
	IsActive  bool
}

// Direction is whether money comes in (income) or goes out (expense).
type Direction string

const (
	// DirectionIn is money coming in.
	DirectionIn Direction = "IN"
	// DirectionOut is money going out.
	DirectionOut Direction = "OUT"
)

// CategoryType maps a direction back to the category type that records it.
func (d Direction) CategoryType() CategoryType {
	if d == DirectionIn {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// FilterByDirection returns the categories whose type matches the direction.
func FilterByDirection(categories []Category, d Direction) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Type.Direction() == d {
			out = append(out, c)
		}
	}
	return out
}
