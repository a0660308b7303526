package modelstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/lifecycle"
	"github.com/Veraticus/spice-talk/internal/nn"
)

// Codec converts a model to and from its snapshot.
type Codec[T any] struct {
	Snapshot func(*T) (*nn.Snapshot, error)
	Restore  func(*nn.Snapshot) (*T, error)
}

// LoadOrTrain returns a bootstrap that restores the named model from s and
// falls back to train when there is no usable record. A freshly trained
// model is saved; failing to save it is logged, not fatal.
func LoadOrTrain[T any](s *Store, name string, codec Codec[T], train func(ctx context.Context) (*T, error)) lifecycle.BootstrapFunc[T] {
	return func(ctx context.Context) (*T, error) {
		rec, err := s.Load(ctx, name)
		switch {
		case err == nil:
			m, restoreErr := codec.Restore(rec.Snapshot)
			if restoreErr == nil {
				slog.Info("Restored model", "model", name, "trained_at", rec.TrainedAt)
				return m, nil
			}
			err = restoreErr
			fallthrough
		case errors.Is(err, nn.ErrStateMismatch):
			slog.Warn("Discarding persisted model state", "model", name, "error", err)
			if delErr := s.Delete(ctx, name); delErr != nil {
				slog.Warn("Failed to discard model state", "model", name, "error", delErr)
			}
		case errors.Is(err, common.ErrNotFound):
			slog.Debug("No persisted model state", "model", name)
		default:
			slog.Warn("Failed to load model state, training instead", "model", name, "error", err)
		}

		m, err := train(ctx)
		if err != nil {
			return nil, err
		}
		if err := Persist(ctx, s, name, codec, m); err != nil {
			slog.Warn("Failed to persist trained model", "model", name, "error", err)
		}
		return m, nil
	}
}

// Persist snapshots m and saves it under name.
func Persist[T any](ctx context.Context, s *Store, name string, codec Codec[T], m *T) error {
	snap, err := codec.Snapshot(m)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", name, err)
	}
	return s.Save(ctx, name, snap)
}
