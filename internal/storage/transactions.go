package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/model"
	"github.com/Veraticus/spice-talk/internal/service"
)

// SaveTransaction records a transaction in the history. A transaction with
// the same content hash as an existing one is a duplicate.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, hash, date, note, amount, direction, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Hash, txn.Date.UTC(), txn.Note, txn.Amount, string(txn.Direction), txn.CategoryID)
	if err != nil {
		err = classify(err)
		if errors.Is(err, common.ErrDuplicateEntry) {
			return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Debug("saved transaction", "id", txn.ID, "amount", txn.Amount, "category_id", txn.CategoryID)
	return nil
}

// GetTransactions returns history transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		where []string
		args  []any
	)
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, string(filter.Direction))
	}

	query := `SELECT id, hash, date, note, amount, direction, category_id FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var (
			txn       model.Transaction
			direction string
		)
		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Note, &txn.Amount, &direction, &txn.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Direction = model.Direction(direction)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// CategoryFrequencies counts history transactions per category since the
// given time in one direction. Dates are stored in UTC so the text
// comparison SQLite does on them is chronological.
func (s *SQLiteStorage) CategoryFrequencies(ctx context.Context, since time.Time, direction model.Direction) ([]model.CategoryFrequency, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*)
		FROM transactions
		WHERE date >= ? AND direction = ?
		GROUP BY category_id
		ORDER BY COUNT(*) DESC, category_id`,
		since.UTC(), string(direction))
	if err != nil {
		return nil, fmt.Errorf("failed to count category usage: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var freqs []model.CategoryFrequency
	for rows.Next() {
		var f model.CategoryFrequency
		if err := rows.Scan(&f.CategoryID, &f.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category frequency: %w", err)
		}
		freqs = append(freqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category frequencies: %w", err)
	}
	return freqs, nil
}
