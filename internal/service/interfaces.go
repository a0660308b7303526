// Package service defines the boundaries between the text-understanding core
// and the stores it reads from and writes to.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-talk/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Direction model.Direction
	Limit     int
	Offset    int
}

// CategoryStore provides the user's categories. The core only reads them;
// CreateCategory exists for the CLI that owns the store.
type CategoryStore interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon, color string) (*model.Category, error)
}

// HistoryStore holds recorded transactions. The core reads it to compute
// category priors.
type HistoryStore interface {
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	CategoryFrequencies(ctx context.Context, since time.Time, direction model.Direction) ([]model.CategoryFrequency, error)
}

// KVStore stores opaque blobs by key. Get returns common.ErrNotFound for a
// missing key. Set replaces the whole value atomically.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// SampleStore is the append-only online-learning log.
type SampleStore interface {
	SaveSample(ctx context.Context, sample *model.TrainingSample) error
	GetSample(ctx context.Context, id string) (*model.TrainingSample, error)
	// SetChosenCategory records a confirmation or correction once; a second
	// call returns common.ErrAlreadyCorrected.
	SetChosenCategory(ctx context.Context, id string, categoryID int64, at time.Time) error
	GetSamples(ctx context.Context) ([]model.TrainingSample, error)
	CountSamples(ctx context.Context) (int, error)
	CountLabeledSamples(ctx context.Context) (int, error)
}

// Storage is everything the SQLite implementation provides.
type Storage interface {
	CategoryStore
	HistoryStore
	KVStore
	SampleStore

	Migrate(ctx context.Context) error
	Close() error
}
