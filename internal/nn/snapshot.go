package nn

import (
	"errors"
	"fmt"
	"math"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

// ErrStateMismatch is returned when a persisted snapshot does not fit the
// architecture it is loaded into.
var ErrStateMismatch = errors.New("model state mismatch")

// Architecture names recorded in snapshots.
const (
	ArchBagClassifier  = "bag-classifier"
	ArchSequenceTagger = "birnn-tagger"
)

// SnapshotVersion is the current snapshot layout.
const SnapshotVersion = 1

// TensorRecord is the serialisable form of a Tensor.
type TensorRecord struct {
	Name   string    `json:"name"`
	DType  string    `json:"dtype"`
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

// Snapshot captures everything needed to rebuild a model exactly: weights,
// vocabulary, label set and dimensions.
type Snapshot struct {
	Architecture string         `json:"architecture"`
	Labels       []string       `json:"labels"`
	Vocabulary   []string       `json:"vocabulary"`
	Tensors      []TensorRecord `json:"tensors"`
	Version      int            `json:"version"`
	SeqLen       int            `json:"seq_len"`
	EmbedDim     int            `json:"embed_dim"`
	HiddenDim    int            `json:"hidden_dim"`
	Dropout      float64        `json:"dropout,omitempty"`
}

func records(params []*Tensor) ([]TensorRecord, error) {
	out := make([]TensorRecord, len(params))
	for i, p := range params {
		for _, v := range p.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("tensor %s holds a non-finite value", p.Name)
			}
		}
		values := make([]float64, len(p.Data))
		copy(values, p.Data)
		shape := make([]int, len(p.Shape))
		copy(shape, p.Shape)
		out[i] = TensorRecord{Name: p.Name, DType: "float64", Shape: shape, Values: values}
	}
	return out, nil
}

// restore copies snapshot tensors into params after checking names and
// shapes match one for one.
func (s *Snapshot) restore(arch string, params []*Tensor) error {
	if s.Architecture != arch {
		return fmt.Errorf("%w: architecture %q, want %q", ErrStateMismatch, s.Architecture, arch)
	}
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: snapshot version %d, want %d", ErrStateMismatch, s.Version, SnapshotVersion)
	}
	if len(s.Tensors) != len(params) {
		return fmt.Errorf("%w: %d tensors, want %d", ErrStateMismatch, len(s.Tensors), len(params))
	}
	for i, p := range params {
		rec := s.Tensors[i]
		if rec.Name != p.Name {
			return fmt.Errorf("%w: tensor %d is %q, want %q", ErrStateMismatch, i, rec.Name, p.Name)
		}
		if !sameShape(rec.Shape, p.Shape) {
			return fmt.Errorf("%w: tensor %s has shape %v, want %v", ErrStateMismatch, p.Name, rec.Shape, p.Shape)
		}
		if len(rec.Values) != p.Size() {
			return fmt.Errorf("%w: tensor %s has %d values, want %d", ErrStateMismatch, p.Name, len(rec.Values), p.Size())
		}
		copy(p.Data, rec.Values)
	}
	return nil
}

func (s *Snapshot) header() (*textproc.Vocabulary, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty snapshot", ErrStateMismatch)
	}
	vocab, err := textproc.VocabularyFromTokens(s.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
	}
	if len(s.Labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrStateMismatch)
	}
	if s.EmbedDim <= 0 || s.HiddenDim <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrStateMismatch, s.EmbedDim, s.HiddenDim)
	}
	return vocab, nil
}

// Snapshot captures the classifier's full state.
func (m *BagClassifier) Snapshot() (*Snapshot, error) {
	recs, err := records(m.params)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Architecture: ArchBagClassifier,
		Version:      SnapshotVersion,
		Labels:       m.Labels(),
		Vocabulary:   m.vocab.Tokens(),
		Tensors:      recs,
		SeqLen:       m.cfg.SeqLen,
		EmbedDim:     m.cfg.EmbedDim,
		HiddenDim:    m.cfg.HiddenDim,
		Dropout:      m.cfg.Dropout,
	}, nil
}

// RestoreBagClassifier rebuilds a classifier from a snapshot. Any
// disagreement between metadata and tensors yields ErrStateMismatch.
func RestoreBagClassifier(s *Snapshot) (*BagClassifier, error) {
	vocab, err := s.header()
	if err != nil {
		return nil, err
	}
	m := newBagClassifier(vocab, s.Labels, BagConfig{
		SeqLen:    s.SeqLen,
		EmbedDim:  s.EmbedDim,
		HiddenDim: s.HiddenDim,
		Dropout:   s.Dropout,
	})
	if err := s.restore(ArchBagClassifier, m.params); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot captures the tagger's full state.
func (m *SequenceTagger) Snapshot() (*Snapshot, error) {
	recs, err := records(m.params)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Architecture: ArchSequenceTagger,
		Version:      SnapshotVersion,
		Labels:       m.Labels(),
		Vocabulary:   m.vocab.Tokens(),
		Tensors:      recs,
		SeqLen:       m.cfg.SeqLen,
		EmbedDim:     m.cfg.EmbedDim,
		HiddenDim:    m.cfg.HiddenDim,
	}, nil
}

// RestoreSequenceTagger rebuilds a tagger from a snapshot.
func RestoreSequenceTagger(s *Snapshot) (*SequenceTagger, error) {
	vocab, err := s.header()
	if err != nil {
		return nil, err
	}
	m := newSequenceTagger(vocab, s.Labels, TaggerConfig{
		SeqLen:    s.SeqLen,
		EmbedDim:  s.EmbedDim,
		HiddenDim: s.HiddenDim,
	})
	if err := s.restore(ArchSequenceTagger, m.params); err != nil {
		return nil, err
	}
	return m, nil
}
