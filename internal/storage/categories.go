package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/model"
)

const categoryColumns = `id, name, type, icon, color, created_at, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat     model.Category
		catType string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &cat.Icon, &cat.Color, &cat.CreatedAt, &cat.IsActive); err != nil {
		return model.Category{}, err
	}
	cat.Type = model.CategoryType(catType)
	return cat, nil
}

// GetCategories returns all active categories.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *SQLiteStorage) getCategory(ctx context.Context, q queryable, where string, arg any) (*model.Category, error) {
	cat, err := scanCategory(q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %v: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", classify(err))
	}
	return &cat, nil
}

// GetCategoryByID returns an active category by id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategory(ctx, s.db, "id = ? AND is_active = 1", id)
}

// GetCategoryByName returns an active category by its exact name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategory(ctx, s.db, "name = ? AND is_active = 1", strings.TrimSpace(name))
}

// CreateCategory creates a new category. Creating a name that already
// exists reactivates it with the new type, icon and color.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType, icon, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateCategoryType(categoryType); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.getCategory(ctx, tx, "name = ?", name)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE categories SET is_active = 1, type = ?, icon = ?, color = ? WHERE id = ?`,
			string(categoryType), icon, color, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reactivate category: %w", classify(err))
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit category: %w", classify(err))
		}
		if !existing.IsActive {
			slog.Info("reactivated existing category", "name", name)
		}
		existing.Type, existing.Icon, existing.Color, existing.IsActive = categoryType, icon, color, true
		return existing, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO categories (name, type, icon, color, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, 1)`,
		name, string(categoryType), icon, color, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", classify(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit category: %w", classify(err))
	}

	slog.Info("created new category", "name", name, "id", id, "type", categoryType)
	return &model.Category{
		ID:        id,
		Name:      name,
		Type:      categoryType,
		Icon:      icon,
		Color:     color,
		CreatedAt: now,
		IsActive:  true,
	}, nil
}

// DeleteCategory soft-deletes a category. History keeps pointing at it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}
