package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-talk/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidSample      = errors.New("invalid training sample")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDirection(d model.Direction) error {
	switch d {
	case model.DirectionIn, model.DirectionOut:
		return nil
	default:
		return fmt.Errorf("unknown direction %q", d)
	}
}

func validateCategoryType(t model.CategoryType) error {
	switch t {
	case model.CategoryTypeIncome, model.CategoryTypeExpense:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, t)
	}
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidTransaction, txn.Amount)
	}
	if txn.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidTransaction)
	}
	if err := validateDirection(txn.Direction); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return nil
}

// validateSample validates a training sample before it is logged.
func validateSample(sample *model.TrainingSample) error {
	if sample == nil {
		return fmt.Errorf("%w: sample", ErrNilParameter)
	}
	if sample.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidSample)
	}
	if strings.TrimSpace(sample.Text) == "" {
		return fmt.Errorf("%w: missing text", ErrInvalidSample)
	}
	if sample.PredictedCategoryID <= 0 {
		return fmt.Errorf("%w: missing predicted category", ErrInvalidSample)
	}
	if sample.Confidence < 0 || sample.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidSample)
	}
	if err := validateDirection(sample.IO); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSample, err)
	}
	return nil
}
