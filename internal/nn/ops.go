package nn

import "math"

// Softmax returns the normalised exponentials of logits.
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	softmaxInto(out, logits)
	return out
}

func softmaxInto(dst, logits []float64) {
	maxV := math.Inf(-1)
	for _, v := range logits {
		if v > maxV {
			maxV = v
		}
	}
	sum := 0.0
	for i, v := range logits {
		e := math.Exp(v - maxV)
		dst[i] = e
		sum += e
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// Argmax returns the index of the largest value, the first on ties.
func Argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// affine computes out = x·W (+ b) for W shaped [len(x), len(out)].
func affine(out, x []float64, w, b *Tensor) {
	cols := len(out)
	if b != nil {
		copy(out, b.Data)
	} else {
		clear(out)
	}
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		row := w.Data[i*cols : (i+1)*cols]
		for j, wij := range row {
			out[j] += xi * wij
		}
	}
}

// addMatVec adds x·W to out.
func addMatVec(out, x []float64, w *Tensor) {
	cols := len(out)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		row := w.Data[i*cols : (i+1)*cols]
		for j, wij := range row {
			out[j] += xi * wij
		}
	}
}

// affineBackward accumulates dW += xᵀg, db += g and dx += gWᵀ. db and dx
// may be nil.
func affineBackward(x, g []float64, w, dw, db *Tensor, dx []float64) {
	cols := len(g)
	if db != nil {
		for j, gj := range g {
			db.Data[j] += gj
		}
	}
	for i, xi := range x {
		wRow := w.Data[i*cols : (i+1)*cols]
		dwRow := dw.Data[i*cols : (i+1)*cols]
		acc := 0.0
		for j, gj := range g {
			dwRow[j] += xi * gj
			acc += wRow[j] * gj
		}
		if dx != nil {
			dx[i] += acc
		}
	}
}

// clipGradients rescales grads so their global L2 norm is at most maxNorm.
func clipGradients(grads []*Tensor, maxNorm float64) {
	if maxNorm <= 0 {
		return
	}
	sum := 0.0
	for _, g := range grads {
		for _, v := range g.Data {
			sum += v * v
		}
	}
	norm := math.Sqrt(sum)
	if norm <= maxNorm || norm == 0 {
		return
	}
	scale := maxNorm / norm
	for _, g := range grads {
		for i := range g.Data {
			g.Data[i] *= scale
		}
	}
}

func scaleAll(grads []*Tensor, s float64) {
	for _, g := range grads {
		for i := range g.Data {
			g.Data[i] *= s
		}
	}
}

func zeroAll(grads []*Tensor) {
	for _, g := range grads {
		g.Zero()
	}
}

// crossEntropy returns -log p[label] with a floor to avoid infinities.
func crossEntropy(probs []float64, label int) float64 {
	return -math.Log(math.Max(probs[label], 1e-12))
}
