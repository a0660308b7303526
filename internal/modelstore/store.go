// Package modelstore persists trained model snapshots as JSON records in a
// key-value store, one key per model.
package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/service"
)

// RecordVersion is the layout of the stored envelope.
const RecordVersion = 1

const keyPrefix = "model/"

// Record is the persisted form of one model.
type Record struct {
	TrainedAt time.Time    `json:"trained_at"`
	Snapshot  *nn.Snapshot `json:"snapshot"`
	Name      string       `json:"name"`
	Version   int          `json:"version"`
}

// Info summarises a stored record without its weights.
type Info struct {
	TrainedAt    time.Time
	Name         string
	Architecture string
	Labels       int
	Vocabulary   int
	Bytes        int
}

// Store saves and loads model records.
type Store struct {
	kv    service.KVStore
	now   func() time.Time
	retry common.RetryOptions
}

// New creates a store over kv.
func New(kv service.KVStore) *Store {
	return &Store{
		kv:  kv,
		now: time.Now,
		retry: common.RetryOptions{
			MaxAttempts:  5,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     time.Second,
		},
	}
}

func key(name string) string {
	return keyPrefix + name
}

// Save writes snap as the current state of the named model. A busy database
// is retried.
func (s *Store) Save(ctx context.Context, name string, snap *nn.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("no snapshot to save for %s", name)
	}

	data, err := json.Marshal(Record{
		Name:      name,
		Version:   RecordVersion,
		TrainedAt: s.now().UTC(),
		Snapshot:  snap,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", name, err)
	}

	err = common.WithRetry(ctx, func() error {
		return s.kv.Set(ctx, key(name), data)
	}, s.retry)
	if err != nil {
		return fmt.Errorf("failed to save %s state: %w", name, err)
	}

	slog.Debug("Saved model state", "model", name, "bytes", len(data))
	return nil
}

// Load reads the named model's record. A missing record is
// common.ErrNotFound; an unreadable one is nn.ErrStateMismatch.
func (s *Store) Load(ctx context.Context, name string) (*Record, error) {
	data, err := s.kv.Get(ctx, key(name))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s state: %w", name, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s record is not valid JSON: %w", nn.ErrStateMismatch, name, err)
	}
	switch {
	case rec.Version != RecordVersion:
		return nil, fmt.Errorf("%w: %s record version %d, want %d", nn.ErrStateMismatch, name, rec.Version, RecordVersion)
	case rec.Name != name:
		return nil, fmt.Errorf("%w: record under %s is named %q", nn.ErrStateMismatch, name, rec.Name)
	case rec.Snapshot == nil:
		return nil, fmt.Errorf("%w: %s record has no snapshot", nn.ErrStateMismatch, name)
	}
	return &rec, nil
}

// Delete discards the named model's record.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.kv.Delete(ctx, key(name)); err != nil {
		return fmt.Errorf("failed to delete %s state: %w", name, err)
	}
	return nil
}

// List describes every stored model. Unreadable records are reported with
// only their name.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list model states: %w", err)
	}

	var infos []Info
	for _, k := range keys {
		name, ok := strings.CutPrefix(k, keyPrefix)
		if !ok {
			continue
		}
		data, err := s.kv.Get(ctx, k)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s state: %w", name, err)
		}

		info := Info{Name: name, Bytes: len(data)}
		var rec Record
		if json.Unmarshal(data, &rec) == nil && rec.Snapshot != nil {
			info.TrainedAt = rec.TrainedAt
			info.Architecture = rec.Snapshot.Architecture
			info.Labels = len(rec.Snapshot.Labels)
			info.Vocabulary = len(rec.Snapshot.Vocabulary)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
