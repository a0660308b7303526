package modelstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/nn"
	"github.com/Veraticus/spice-talk/internal/storage"
	"github.com/Veraticus/spice-talk/internal/textproc"
)

// memKV is an in-memory KVStore whose Set can be made to fail.
type memKV struct {
	data    map[string][]byte
	setErrs []error
	mu      sync.Mutex
	sets    int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if len(m.setErrs) > 0 {
		err := m.setErrs[0]
		m.setErrs = m.setErrs[1:]
		return err
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Keys(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func testNet(seed int64) *nn.BagClassifier {
	vocab := textproc.BuildVocabulary([][]string{{"ăn", "trưa", "lương"}}, 0)
	return nn.NewBagClassifier(vocab, []string{"CREATE_TRANSACTION", "VIEW_STATS"},
		nn.BagConfig{SeqLen: 4, EmbedDim: 3, HiddenDim: 4}, seed)
}

var testCodec = Codec[nn.BagClassifier]{
	Snapshot: (*nn.BagClassifier).Snapshot,
	Restore:  nn.RestoreBagClassifier,
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV())
	trainedAt := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return trainedAt }

	net := testNet(1)
	snap, err := net.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "intent", snap))

	rec, err := s.Load(ctx, "intent")
	require.NoError(t, err)
	assert.Equal(t, "intent", rec.Name)
	assert.Equal(t, RecordVersion, rec.Version)
	assert.True(t, trainedAt.Equal(rec.TrainedAt))

	restored, err := nn.RestoreBagClassifier(rec.Snapshot)
	require.NoError(t, err)
	features := []string{"ăn", "trưa"}
	assert.Equal(t, net.Predict(features), restored.Predict(features))
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		want  error
		name  string
		value string
	}{
		{name: "missing", want: common.ErrNotFound},
		{name: "garbage", value: "{not json", want: nn.ErrStateMismatch},
		{name: "wrong version", value: `{"name":"intent","version":99,"snapshot":{}}`, want: nn.ErrStateMismatch},
		{name: "wrong name", value: `{"name":"amount","version":1,"snapshot":{}}`, want: nn.ErrStateMismatch},
		{name: "no snapshot", value: `{"name":"intent","version":1}`, want: nn.ErrStateMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			if tt.value != "" {
				kv.data[key("intent")] = []byte(tt.value)
			}
			_, err := New(kv).Load(ctx, "intent")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStore_SaveRetriesBusyStore(t *testing.T) {
	kv := newMemKV()
	kv.setErrs = []error{common.ErrStoreBusy, common.ErrStoreBusy}
	s := New(kv)
	s.retry.InitialDelay = time.Millisecond

	snap, err := testNet(1).Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "intent", snap))
	assert.Equal(t, 3, kv.sets)

	kv.setErrs = []error{errors.New("disk full")}
	err = s.Save(context.Background(), "intent", snap)
	require.Error(t, err)
	assert.Equal(t, 4, kv.sets, "other errors are not retried")

	require.Error(t, s.Save(context.Background(), "intent", nil))
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv)

	snap, err := testNet(1).Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "category", snap))
	require.NoError(t, s.Save(ctx, "intent", snap))
	kv.data["unrelated"] = []byte("x")
	kv.data[key("amount")] = []byte("corrupt")

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "amount", infos[0].Name)
	assert.Empty(t, infos[0].Architecture)
	assert.Equal(t, "category", infos[1].Name)
	assert.Equal(t, nn.ArchBagClassifier, infos[1].Architecture)
	assert.Equal(t, 2, infos[1].Labels)
	assert.Positive(t, infos[1].Bytes)

	require.NoError(t, s.Delete(ctx, "intent"))
	_, err = s.Load(ctx, "intent")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	s := New(db)
	snap, err := testNet(3).Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "intent", snap))

	rec, err := s.Load(ctx, "intent")
	require.NoError(t, err)
	assert.Equal(t, snap.Tensors, rec.Snapshot.Tensors)
}

func TestLoadOrTrain(t *testing.T) {
	ctx := context.Background()

	t.Run("trains and persists when nothing is stored", func(t *testing.T) {
		s := New(newMemKV())
		var trained atomic.Int32
		boot := LoadOrTrain(s, "intent", testCodec, func(context.Context) (*nn.BagClassifier, error) {
			trained.Add(1)
			return testNet(5), nil
		})

		m, err := boot(ctx)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, int32(1), trained.Load())

		_, err = s.Load(ctx, "intent")
		require.NoError(t, err)
	})

	t.Run("restores without training", func(t *testing.T) {
		s := New(newMemKV())
		want := testNet(7)
		require.NoError(t, Persist(ctx, s, "intent", testCodec, want))

		boot := LoadOrTrain(s, "intent", testCodec, func(context.Context) (*nn.BagClassifier, error) {
			t.Fatal("should not train")
			return nil, nil
		})
		m, err := boot(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Predict([]string{"lương"}), m.Predict([]string{"lương"}))
	})

	t.Run("discards a mismatched record", func(t *testing.T) {
		kv := newMemKV()
		s := New(kv)
		other := nn.NewBagClassifier(textproc.BuildVocabulary([][]string{{"x"}}, 0), []string{"a", "b", "c"},
			nn.BagConfig{SeqLen: 2, EmbedDim: 2, HiddenDim: 2}, 1)
		tagger := nn.NewSequenceTagger(other.Vocabulary(), []string{"O", "B-AMT", "I-AMT"},
			nn.TaggerConfig{SeqLen: 2, EmbedDim: 2, HiddenDim: 2}, 1)
		snap, err := tagger.Snapshot()
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, "intent", snap))

		boot := LoadOrTrain(s, "intent", testCodec, func(context.Context) (*nn.BagClassifier, error) {
			return testNet(9), nil
		})
		m, err := boot(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"CREATE_TRANSACTION", "VIEW_STATS"}, m.Labels())

		rec, err := s.Load(ctx, "intent")
		require.NoError(t, err)
		assert.Equal(t, nn.ArchBagClassifier, rec.Snapshot.Architecture, "replaced by the retrained model")
	})

	t.Run("training failure", func(t *testing.T) {
		s := New(newMemKV())
		boot := LoadOrTrain(s, "intent", testCodec, func(context.Context) (*nn.BagClassifier, error) {
			return nil, errors.New("no data")
		})
		_, err := boot(ctx)
		require.Error(t, err)
		keys, _ := s.kv.Keys(ctx)
		assert.Empty(t, keys)
	})
}
