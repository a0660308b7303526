package nn

import "math"

// Adam implements the Adam optimiser over an ordered parameter list.
type Adam struct {
	m, v         []*Tensor
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	step         int
}

// NewAdam creates an optimiser for params.
func NewAdam(params []*Tensor, learningRate float64) *Adam {
	return &Adam{
		m:            zerosLike(params),
		v:            zerosLike(params),
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Step applies one update of grads to params.
func (a *Adam) Step(params, grads []*Tensor) {
	a.step++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.step))

	for k, p := range params {
		g := grads[k].Data
		m := a.m[k].Data
		v := a.v[k].Data
		for i := range p.Data {
			if g[i] == 0 && m[i] == 0 {
				continue
			}
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g[i]
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g[i]*g[i]
			p.Data[i] -= a.LearningRate * (m[i] / bc1) / (math.Sqrt(v[i]/bc2) + a.Epsilon)
		}
	}
}
