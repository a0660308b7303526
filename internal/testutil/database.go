// Package testutil provides test utilities: an isolated, migrated SQLite
// database seeded with exactly the categories a test asks for.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/storage"
	"github.com/Veraticus/spice-talk/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories categories.Categories
}

// newStorage opens and migrates an in-memory database, then deactivates the
// seeded default categories so the test controls the category set.
func newStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seeded, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("failed to list seeded categories: %v", err)
	}
	for _, c := range seeded {
		if err := store.DeleteCategory(ctx, c.ID); err != nil {
			t.Fatalf("failed to clear seeded category %q: %v", c.Name, err)
		}
	}
	return store
}

// SetupTestDB creates a new in-memory test database holding exactly the
// given categories.
func SetupTestDB(t *testing.T, cats ...categories.CategoryName) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategories(cats...)
	})
}

// SetupTestDBWithBuilder creates a test database using a category builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithCategory("Quà tặng")
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	store := newStorage(t)
	cats, err := builder.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategory returns the category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) model.Category {
	db.t.Helper()
	return db.Categories.MustFind(db.t, name)
}

// SaveHistory records transactions in the history store or fails the test.
func (db *TestDB) SaveHistory(txns ...model.Transaction) {
	db.t.Helper()
	ctx := context.Background()
	for i := range txns {
		if err := db.Storage.SaveTransaction(ctx, &txns[i]); err != nil {
			db.t.Fatalf("failed to save transaction %s: %v", txns[i].ID, err)
		}
	}
}
