package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/wdm0006/imputekit/pkg/featurize"
)

// Dense is a fully connected layer. W is stored input-major: W[i*Out+j]
// connects input i to unit j, so a sparse input touches whole rows.
type Dense struct {
	In   int       `json:"in"`
	Out  int       `json:"out"`
	ReLU bool      `json:"relu"`
	W    []float64 `json:"w"`
	B    []float64 `json:"b"`

	opt *adamState
}

func newDense(in, out int, relu bool, rng *rand.Rand) *Dense {
	d := &Dense{In: in, Out: out, ReLU: relu, W: make([]float64, in*out), B: make([]float64, out)}
	// He-uniform for ReLU units, Glorot-uniform otherwise
	limit := math.Sqrt(6 / float64(in+out))
	if relu {
		limit = math.Sqrt(6 / float64(in))
	}
	for i := range d.W {
		d.W[i] = (rng.Float64()*2 - 1) * limit
	}
	return d
}

// forward returns the activated output for x.
func (d *Dense) forward(x featurize.Vector) []float64 {
	out := make([]float64, d.Out)
	copy(out, d.B)
	for k, i := range x.Idx {
		if x.Val[k] == 0 {
			continue
		}
		floats.AddScaled(out, x.Val[k], d.W[i*d.Out:(i+1)*d.Out])
	}
	if d.ReLU {
		for j, v := range out {
			if v < 0 {
				out[j] = 0
			}
		}
	}
	return out
}

// backward accumulates gradients for one example. dy is the gradient of the
// loss w.r.t. the activated output y and is modified in place. When wantDX is
// set it returns the gradient w.r.t. the dense input (len In).
func (d *Dense) backward(x featurize.Vector, y, dy []float64, wantDX bool) []float64 {
	if d.ReLU {
		for j := range dy {
			if y[j] <= 0 {
				dy[j] = 0
			}
		}
	}
	st := d.opt
	floats.Add(st.gB, dy)
	var dx []float64
	if wantDX {
		dx = make([]float64, d.In)
	}
	for k, i := range x.Idx {
		row := d.W[i*d.Out : (i+1)*d.Out]
		if wantDX {
			dx[i] = floats.Dot(row, dy)
		}
		if x.Val[k] == 0 {
			continue
		}
		floats.AddScaled(st.gW[i*d.Out:(i+1)*d.Out], x.Val[k], dy)
		st.touch(i)
	}
	return dx
}

func (d *Dense) params() int { return len(d.W) + len(d.B) }
