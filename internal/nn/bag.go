package nn

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

// BagConfig sizes a BagClassifier.
type BagConfig struct {
	SeqLen    int
	EmbedDim  int
	HiddenDim int
	Dropout   float64
}

// BagExample is one labelled input for a BagClassifier.
type BagExample struct {
	Features []string
	Label    int
}

// BagClassifier embeds tokens, mean-pools the non-padding positions and
// feeds the result through a ReLU hidden layer into a softmax over labels.
// A trained classifier is read-only; Train mutates the receiver and should
// only be called on a model no reader can see yet.
type BagClassifier struct {
	vocab  *textproc.Vocabulary
	labels []string
	params []*Tensor
	cfg    BagConfig
}

const (
	bagEmbedding = iota
	bagHiddenWeight
	bagHiddenBias
	bagOutputWeight
	bagOutputBias
)

func newBagClassifier(vocab *textproc.Vocabulary, labels []string, cfg BagConfig) *BagClassifier {
	l := make([]string, len(labels))
	copy(l, labels)
	return &BagClassifier{
		vocab:  vocab,
		labels: l,
		cfg:    cfg,
		params: []*Tensor{
			NewTensor("embedding", vocab.Size(), cfg.EmbedDim),
			NewTensor("hidden.weight", cfg.EmbedDim, cfg.HiddenDim),
			NewTensor("hidden.bias", cfg.HiddenDim),
			NewTensor("output.weight", cfg.HiddenDim, len(labels)),
			NewTensor("output.bias", len(labels)),
		},
	}
}

// NewBagClassifier creates a randomly initialised classifier.
func NewBagClassifier(vocab *textproc.Vocabulary, labels []string, cfg BagConfig, seed int64) *BagClassifier {
	m := newBagClassifier(vocab, labels, cfg)
	rng := newRand(seed)
	uniform(m.params[bagEmbedding], rng, 0.1)
	clear(m.params[bagEmbedding].Row(textproc.PadIndex))
	xavier(m.params[bagHiddenWeight], rng)
	xavier(m.params[bagOutputWeight], rng)
	return m
}

// Labels returns the ordered label set.
func (m *BagClassifier) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Vocabulary returns the vocabulary the classifier was built with.
func (m *BagClassifier) Vocabulary() *textproc.Vocabulary {
	return m.vocab
}

// Config returns the classifier's dimensions.
func (m *BagClassifier) Config() BagConfig {
	return m.cfg
}

// Compatible reports whether the classifier uses exactly this vocabulary and
// label order, so it can be trained further on data encoded the same way.
func (m *BagClassifier) Compatible(vocab *textproc.Vocabulary, labels []string) bool {
	return m.vocab.Equal(vocab) && slices.Equal(m.labels, labels)
}

// Clone returns an independent deep copy.
func (m *BagClassifier) Clone() *BagClassifier {
	return &BagClassifier{vocab: m.vocab, labels: m.Labels(), cfg: m.cfg, params: cloneAll(m.params)}
}

// Predict returns the label distribution for features.
func (m *BagClassifier) Predict(features []string) []float64 {
	ids := m.vocab.Encode(features, m.cfg.SeqLen)
	var st bagState
	m.forward(&st, ids, nil)
	return st.probs
}

type bagState struct {
	ids    []int
	pooled []float64
	z      []float64
	hidden []float64
	mask   []float64
	probs  []float64
	count  int
}

// forward runs the network. A non-nil rng enables dropout.
func (m *BagClassifier) forward(st *bagState, ids []int, rng *rand.Rand) {
	emb := m.params[bagEmbedding]
	st.ids = ids
	st.pooled = make([]float64, m.cfg.EmbedDim)
	st.count = 0
	for _, id := range ids {
		if id == textproc.PadIndex {
			continue
		}
		for j, v := range emb.Row(id) {
			st.pooled[j] += v
		}
		st.count++
	}
	if st.count > 0 {
		for j := range st.pooled {
			st.pooled[j] /= float64(st.count)
		}
	}

	st.z = make([]float64, m.cfg.HiddenDim)
	affine(st.z, st.pooled, m.params[bagHiddenWeight], m.params[bagHiddenBias])
	st.hidden = make([]float64, m.cfg.HiddenDim)
	st.mask = nil
	if rng != nil && m.cfg.Dropout > 0 {
		st.mask = make([]float64, m.cfg.HiddenDim)
	}
	keep := 1 - m.cfg.Dropout
	for j, z := range st.z {
		if z <= 0 {
			continue
		}
		st.hidden[j] = z
		if st.mask != nil {
			if rng.Float64() < keep {
				st.mask[j] = 1 / keep
			}
			st.hidden[j] *= st.mask[j]
		}
	}

	logits := make([]float64, len(m.labels))
	affine(logits, st.hidden, m.params[bagOutputWeight], m.params[bagOutputBias])
	st.probs = make([]float64, len(logits))
	softmaxInto(st.probs, logits)
}

func (m *BagClassifier) backward(st *bagState, label int, grads []*Tensor) {
	dLogits := make([]float64, len(st.probs))
	copy(dLogits, st.probs)
	dLogits[label]--

	dHidden := make([]float64, m.cfg.HiddenDim)
	affineBackward(st.hidden, dLogits, m.params[bagOutputWeight], grads[bagOutputWeight], grads[bagOutputBias], dHidden)

	for j := range dHidden {
		switch {
		case st.z[j] <= 0:
			dHidden[j] = 0
		case st.mask != nil:
			dHidden[j] *= st.mask[j]
		}
	}

	dPooled := make([]float64, m.cfg.EmbedDim)
	affineBackward(st.pooled, dHidden, m.params[bagHiddenWeight], grads[bagHiddenWeight], grads[bagHiddenBias], dPooled)

	if st.count == 0 {
		return
	}
	inv := 1 / float64(st.count)
	dEmb := grads[bagEmbedding]
	for _, id := range st.ids {
		if id == textproc.PadIndex {
			continue
		}
		row := dEmb.Row(id)
		for j, g := range dPooled {
			row[j] += g * inv
		}
	}
}

// Train fits the classifier to examples with mini-batch Adam.
func (m *BagClassifier) Train(ctx context.Context, examples []BagExample, opts TrainOptions) (TrainReport, error) {
	opts = opts.withDefaults()
	for i, ex := range examples {
		if ex.Label < 0 || ex.Label >= len(m.labels) {
			return TrainReport{}, fmt.Errorf("example %d: label %d out of range [0,%d)", i, ex.Label, len(m.labels))
		}
	}

	encoded := make([][]int, len(examples))
	for i, ex := range examples {
		encoded[i] = m.vocab.Encode(ex.Features, m.cfg.SeqLen)
	}

	rng := newRand(opts.Seed)
	grads := zerosLike(m.params)
	var st bagState
	report, err := trainLoop(ctx, len(examples), m.params, grads, opts, rng, func(i int) float64 {
		ids := dropTokens(encoded[i], opts.TokenDropout, textproc.UnkIndex, textproc.PadIndex, rng)
		m.forward(&st, ids, rng)
		loss := crossEntropy(st.probs, examples[i].Label)
		m.backward(&st, examples[i].Label, grads)
		return loss
	})
	clear(m.params[bagEmbedding].Row(textproc.PadIndex))
	return report, err
}
