package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/model"
)

const sampleColumns = `id, text, amount, io, predicted_category_id, confidence, chosen_category_id, created_at, corrected_at`

func scanSample(row rowScanner) (model.TrainingSample, error) {
	var (
		sample      model.TrainingSample
		amount      sql.NullInt64
		chosen      sql.NullInt64
		correctedAt sql.NullTime
		io          string
	)
	if err := row.Scan(&sample.ID, &sample.Text, &amount, &io, &sample.PredictedCategoryID,
		&sample.Confidence, &chosen, &sample.CreatedAt, &correctedAt); err != nil {
		return model.TrainingSample{}, err
	}
	sample.IO = model.Direction(io)
	if amount.Valid {
		sample.Amount = &amount.Int64
	}
	if chosen.Valid {
		sample.ChosenCategoryID = &chosen.Int64
	}
	if correctedAt.Valid {
		sample.CorrectedAt = &correctedAt.Time
	}
	return sample, nil
}

// SaveSample appends a training sample. Samples are never updated except
// for the one-time user decision.
func (s *SQLiteStorage) SaveSample(ctx context.Context, sample *model.TrainingSample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSample(sample); err != nil {
		return err
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now()
	}

	var amount, chosen sql.NullInt64
	if sample.Amount != nil {
		amount = sql.NullInt64{Int64: *sample.Amount, Valid: true}
	}
	if sample.ChosenCategoryID != nil {
		chosen = sql.NullInt64{Int64: *sample.ChosenCategoryID, Valid: true}
	}
	var correctedAt sql.NullTime
	if sample.CorrectedAt != nil {
		correctedAt = sql.NullTime{Time: sample.CorrectedAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_samples (`+sampleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.ID, sample.Text, amount, string(sample.IO), sample.PredictedCategoryID,
		sample.Confidence, chosen, sample.CreatedAt.UTC(), correctedAt)
	if err != nil {
		return fmt.Errorf("failed to save training sample: %w", classify(err))
	}
	return nil
}

// GetSample returns one sample by id.
func (s *SQLiteStorage) GetSample(ctx context.Context, id string) (*model.TrainingSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	sample, err := scanSample(s.db.QueryRowContext(ctx,
		`SELECT `+sampleColumns+` FROM training_samples WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sample %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query training sample: %w", classify(err))
	}
	return &sample, nil
}

// SetChosenCategory records the category the user confirmed or chose. It
// succeeds once per sample; later calls return common.ErrAlreadyCorrected.
func (s *SQLiteStorage) SetChosenCategory(ctx context.Context, id string, categoryID int64, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE training_samples
		SET chosen_category_id = ?, corrected_at = ?
		WHERE id = ? AND chosen_category_id IS NULL`,
		categoryID, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record correction: %w", classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check corrected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: either the sample is missing or already corrected.
	if _, err := s.GetSample(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("sample %s: %w", id, common.ErrAlreadyCorrected)
}

// GetSamples returns the whole sample log, oldest first.
func (s *SQLiteStorage) GetSamples(ctx context.Context) ([]model.TrainingSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sampleColumns+` FROM training_samples ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training samples: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var samples []model.TrainingSample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training samples: %w", err)
	}
	return samples, nil
}

// CountSamples returns the number of logged samples.
func (s *SQLiteStorage) CountSamples(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_samples`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count training samples: %w", classify(err))
	}
	return count, nil
}

// CountLabeledSamples returns the number of samples the user confirmed or
// corrected.
func (s *SQLiteStorage) CountLabeledSamples(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_samples WHERE chosen_category_id IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count labeled samples: %w", classify(err))
	}
	return count, nil
}
