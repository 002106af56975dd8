package nn

import "math"

const (
	beta1   = 0.9
	beta2   = 0.999
	epsilon = 1e-8
)

// adamState holds per-layer gradients and moments. Only weight rows touched
// by the current batch are updated (lazy Adam); weight decay is decoupled
// and applied to those rows alone.
type adamState struct {
	gW, gB   []float64
	mW, vW   []float64
	mB, vB   []float64
	touched  []bool
	rows     []int
	rowWidth int
}

func newAdamState(d *Dense) *adamState {
	return &adamState{
		gW: make([]float64, len(d.W)), gB: make([]float64, len(d.B)),
		mW: make([]float64, len(d.W)), vW: make([]float64, len(d.W)),
		mB: make([]float64, len(d.B)), vB: make([]float64, len(d.B)),
		touched: make([]bool, d.In), rowWidth: d.Out,
	}
}

func (s *adamState) touch(row int) {
	if !s.touched[row] {
		s.touched[row] = true
		s.rows = append(s.rows, row)
	}
}

// step applies one AdamW update scaled by 1/batch and clears the gradients.
func (s *adamState) step(d *Dense, lr, wd float64, t int, batch int) {
	inv := 1 / float64(batch)
	c1 := 1 - math.Pow(beta1, float64(t))
	c2 := 1 - math.Pow(beta2, float64(t))
	update := func(w, g, m, v []float64, decay bool) {
		for k := range w {
			gk := g[k] * inv
			m[k] = beta1*m[k] + (1-beta1)*gk
			v[k] = beta2*v[k] + (1-beta2)*gk*gk
			u := (m[k] / c1) / (math.Sqrt(v[k]/c2) + epsilon)
			if decay {
				u += wd * w[k]
			}
			w[k] -= lr * u
			g[k] = 0
		}
	}
	for _, r := range s.rows {
		lo, hi := r*s.rowWidth, (r+1)*s.rowWidth
		update(d.W[lo:hi], s.gW[lo:hi], s.mW[lo:hi], s.vW[lo:hi], true)
		s.touched[r] = false
	}
	s.rows = s.rows[:0]
	update(d.B, s.gB, s.mB, s.vB, false)
}
