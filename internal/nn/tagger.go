package nn

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/Veraticus/spice-talk/internal/textproc"
)

// TaggerConfig sizes a SequenceTagger.
type TaggerConfig struct {
	SeqLen    int
	EmbedDim  int
	HiddenDim int
}

// TagExample is a token sequence with one label index per token.
type TagExample struct {
	Features []string
	Labels   []int
}

// SequenceTagger is a bidirectional Elman RNN that emits a label
// distribution for every token. Both directions read the embedded sequence
// and their hidden states are concatenated before the output projection.
type SequenceTagger struct {
	vocab  *textproc.Vocabulary
	labels []string
	params []*Tensor
	cfg    TaggerConfig
}

const (
	tagEmbedding = iota
	tagForwardInput
	tagForwardRecurrent
	tagForwardBias
	tagBackwardInput
	tagBackwardRecurrent
	tagBackwardBias
	tagOutputWeight
	tagOutputBias
)

func newSequenceTagger(vocab *textproc.Vocabulary, labels []string, cfg TaggerConfig) *SequenceTagger {
	h := cfg.HiddenDim
	return &SequenceTagger{
		vocab:  vocab,
		labels: slices.Clone(labels),
		cfg:    cfg,
		params: []*Tensor{
			NewTensor("embedding", vocab.Size(), cfg.EmbedDim),
			NewTensor("forward.input", cfg.EmbedDim, h),
			NewTensor("forward.recurrent", h, h),
			NewTensor("forward.bias", h),
			NewTensor("backward.input", cfg.EmbedDim, h),
			NewTensor("backward.recurrent", h, h),
			NewTensor("backward.bias", h),
			NewTensor("output.weight", 2*h, len(labels)),
			NewTensor("output.bias", len(labels)),
		},
	}
}

// NewSequenceTagger creates a randomly initialised tagger.
func NewSequenceTagger(vocab *textproc.Vocabulary, labels []string, cfg TaggerConfig, seed int64) *SequenceTagger {
	m := newSequenceTagger(vocab, labels, cfg)
	rng := newRand(seed)
	uniform(m.params[tagEmbedding], rng, 0.1)
	clear(m.params[tagEmbedding].Row(textproc.PadIndex))
	for _, i := range []int{tagForwardInput, tagForwardRecurrent, tagBackwardInput, tagBackwardRecurrent, tagOutputWeight} {
		xavier(m.params[i], rng)
	}
	return m
}

// Labels returns the ordered label set.
func (m *SequenceTagger) Labels() []string {
	return slices.Clone(m.labels)
}

// Vocabulary returns the vocabulary the tagger was built with.
func (m *SequenceTagger) Vocabulary() *textproc.Vocabulary {
	return m.vocab
}

// Config returns the tagger's dimensions.
func (m *SequenceTagger) Config() TaggerConfig {
	return m.cfg
}

// Compatible reports whether the tagger uses exactly this vocabulary and
// label order.
func (m *SequenceTagger) Compatible(vocab *textproc.Vocabulary, labels []string) bool {
	return m.vocab.Equal(vocab) && slices.Equal(m.labels, labels)
}

// Clone returns an independent deep copy.
func (m *SequenceTagger) Clone() *SequenceTagger {
	return &SequenceTagger{vocab: m.vocab, labels: m.Labels(), cfg: m.cfg, params: cloneAll(m.params)}
}

// Predict returns one label distribution per token. Sequences longer than
// the configured cap are truncated, so the result may be shorter than
// features.
func (m *SequenceTagger) Predict(features []string) [][]float64 {
	ids := m.encode(features)
	if len(ids) == 0 {
		return nil
	}
	var st tagState
	m.forward(&st, ids)
	return st.probs
}

func (m *SequenceTagger) encode(features []string) []int {
	ids := m.vocab.Encode(features, 0)
	if m.cfg.SeqLen > 0 && len(ids) > m.cfg.SeqLen {
		ids = ids[:m.cfg.SeqLen]
	}
	return ids
}

type tagState struct {
	ids   []int
	fwd   [][]float64
	bwd   [][]float64
	probs [][]float64
}

func (m *SequenceTagger) forward(st *tagState, ids []int) {
	n := len(ids)
	h := m.cfg.HiddenDim
	emb := m.params[tagEmbedding]
	st.ids = ids
	st.fwd = make([][]float64, n)
	st.bwd = make([][]float64, n)
	st.probs = make([][]float64, n)

	for t := 0; t < n; t++ {
		z := make([]float64, h)
		affine(z, emb.Row(ids[t]), m.params[tagForwardInput], m.params[tagForwardBias])
		if t > 0 {
			addMatVec(z, st.fwd[t-1], m.params[tagForwardRecurrent])
		}
		tanhInPlace(z)
		st.fwd[t] = z
	}
	for t := n - 1; t >= 0; t-- {
		z := make([]float64, h)
		affine(z, emb.Row(ids[t]), m.params[tagBackwardInput], m.params[tagBackwardBias])
		if t < n-1 {
			addMatVec(z, st.bwd[t+1], m.params[tagBackwardRecurrent])
		}
		tanhInPlace(z)
		st.bwd[t] = z
	}

	logits := make([]float64, len(m.labels))
	for t := 0; t < n; t++ {
		affine(logits, concat(st.fwd[t], st.bwd[t]), m.params[tagOutputWeight], m.params[tagOutputBias])
		st.probs[t] = make([]float64, len(logits))
		softmaxInto(st.probs[t], logits)
	}
}

// backward accumulates gradients of the mean per-token cross-entropy.
func (m *SequenceTagger) backward(st *tagState, labels []int, grads []*Tensor) {
	n := len(st.ids)
	h := m.cfg.HiddenDim
	emb := m.params[tagEmbedding]
	scale := 1 / float64(n)

	dFwd := make([][]float64, n)
	dBwd := make([][]float64, n)
	dLogits := make([]float64, len(m.labels))
	for t := 0; t < n; t++ {
		for k, p := range st.probs[t] {
			dLogits[k] = p * scale
		}
		dLogits[labels[t]] -= scale
		dOut := make([]float64, 2*h)
		affineBackward(concat(st.fwd[t], st.bwd[t]), dLogits, m.params[tagOutputWeight],
			grads[tagOutputWeight], grads[tagOutputBias], dOut)
		dFwd[t] = dOut[:h]
		dBwd[t] = dOut[h:]
	}

	dEmb := grads[tagEmbedding]
	zeros := make([]float64, h)

	carry := make([]float64, h)
	for t := n - 1; t >= 0; t-- {
		dz := make([]float64, h)
		for j := range dz {
			dz[j] = (dFwd[t][j] + carry[j]) * (1 - st.fwd[t][j]*st.fwd[t][j])
		}
		affineBackward(emb.Row(st.ids[t]), dz, m.params[tagForwardInput], grads[tagForwardInput],
			grads[tagForwardBias], dEmb.Row(st.ids[t]))
		prev := zeros
		if t > 0 {
			prev = st.fwd[t-1]
		}
		carry = make([]float64, h)
		affineBackward(prev, dz, m.params[tagForwardRecurrent], grads[tagForwardRecurrent], nil, carry)
	}

	carry = make([]float64, h)
	for t := 0; t < n; t++ {
		dz := make([]float64, h)
		for j := range dz {
			dz[j] = (dBwd[t][j] + carry[j]) * (1 - st.bwd[t][j]*st.bwd[t][j])
		}
		affineBackward(emb.Row(st.ids[t]), dz, m.params[tagBackwardInput], grads[tagBackwardInput],
			grads[tagBackwardBias], dEmb.Row(st.ids[t]))
		next := zeros
		if t < n-1 {
			next = st.bwd[t+1]
		}
		carry = make([]float64, h)
		affineBackward(next, dz, m.params[tagBackwardRecurrent], grads[tagBackwardRecurrent], nil, carry)
	}
}

// Train fits the tagger with full backpropagation through time.
// Gradients are clipped to a global norm of 5 unless opts says otherwise.
func (m *SequenceTagger) Train(ctx context.Context, examples []TagExample, opts TrainOptions) (TrainReport, error) {
	opts = opts.withDefaults()
	if opts.ClipNorm == 0 {
		opts.ClipNorm = 5
	}

	encoded := make([][]int, 0, len(examples))
	labels := make([][]int, 0, len(examples))
	for i, ex := range examples {
		if len(ex.Features) != len(ex.Labels) {
			return TrainReport{}, fmt.Errorf("example %d: %d tokens but %d labels", i, len(ex.Features), len(ex.Labels))
		}
		for _, l := range ex.Labels {
			if l < 0 || l >= len(m.labels) {
				return TrainReport{}, fmt.Errorf("example %d: label %d out of range [0,%d)", i, l, len(m.labels))
			}
		}
		ids := m.encode(ex.Features)
		if len(ids) == 0 {
			continue
		}
		encoded = append(encoded, ids)
		labels = append(labels, ex.Labels[:len(ids)])
	}

	rng := newRand(opts.Seed)
	grads := zerosLike(m.params)
	var st tagState
	report, err := trainLoop(ctx, len(encoded), m.params, grads, opts, rng, func(i int) float64 {
		ids := dropTokens(encoded[i], opts.TokenDropout, textproc.UnkIndex, textproc.PadIndex, rng)
		m.forward(&st, ids)
		loss := 0.0
		for t, p := range st.probs {
			loss += crossEntropy(p, labels[i][t])
		}
		m.backward(&st, labels[i], grads)
		return loss / float64(len(ids))
	})
	clear(m.params[tagEmbedding].Row(textproc.PadIndex))
	return report, err
}

func tanhInPlace(v []float64) {
	for i, x := range v {
		v[i] = math.Tanh(x)
	}
}

func concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
