// Package nn implements the small multilayer perceptron imputers train: one
// optional tower per input column feeding a shared head.
package nn

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/wdm0006/imputekit/pkg/featurize"
)

// Task selects the output layer and loss.
type Task string

const (
	Classification Task = "classification"
	Regression     Task = "regression"
)

// Group is one input column. Inputs with no tower feed the head directly.
type Group struct {
	Width int      `json:"width"`
	Tower []*Dense `json:"tower,omitempty"`
}

func (g Group) outWidth() int {
	if len(g.Tower) == 0 {
		return g.Width
	}
	return g.Tower[len(g.Tower)-1].Out
}

type MLP struct {
	Task    Task     `json:"task"`
	Groups  []Group  `json:"groups"`
	Head    []*Dense `json:"head"`
	Outputs int      `json:"outputs"`
}

// Architecture describes an MLP before its weights exist.
type Architecture struct {
	Task Task
	// Inputs are the input widths, one per column.
	Inputs []int
	// Towers are the hidden sizes of each input's tower; nil for none.
	Towers [][]int
	// Hidden are the head's hidden layer sizes.
	Hidden []int
	// Outputs is the class count, or 1 for regression.
	Outputs int
}

func New(a Architecture, seed int64) (*MLP, error) {
	if len(a.Inputs) == 0 {
		return nil, errors.New("nn: no inputs")
	}
	if a.Task == Classification && a.Outputs < 2 {
		return nil, errors.Errorf("nn: classification needs at least 2 classes, got %d", a.Outputs)
	}
	if a.Task == Regression {
		a.Outputs = 1
	}
	rng := rand.New(rand.NewSource(seed))
	m := &MLP{Task: a.Task, Outputs: a.Outputs}
	width := 0
	for i, in := range a.Inputs {
		if in <= 0 {
			return nil, errors.Errorf("nn: input %d has width %d", i, in)
		}
		g := Group{Width: in}
		prev := in
		if i < len(a.Towers) {
			for _, h := range a.Towers[i] {
				if h <= 0 {
					return nil, errors.Errorf("nn: tower %d has a layer of size %d", i, h)
				}
				g.Tower = append(g.Tower, newDense(prev, h, true, rng))
				prev = h
			}
		}
		m.Groups = append(m.Groups, g)
		width += g.outWidth()
	}
	prev := width
	for _, h := range a.Hidden {
		if h <= 0 {
			return nil, errors.Errorf("nn: head layer of size %d", h)
		}
		m.Head = append(m.Head, newDense(prev, h, true, rng))
		prev = h
	}
	m.Head = append(m.Head, newDense(prev, m.Outputs, false, rng))
	return m, nil
}

func (m *MLP) layers() []*Dense {
	var out []*Dense
	for _, g := range m.Groups {
		out = append(out, g.Tower...)
	}
	return append(out, m.Head...)
}

// Params counts trainable parameters.
func (m *MLP) Params() int {
	n := 0
	for _, d := range m.layers() {
		n += d.params()
	}
	return n
}

// trace keeps the activations of one forward pass for backprop.
type trace struct {
	inputs []featurize.Vector
	towers [][][]float64 // per group, per layer outputs
	headIn featurize.Vector
	offset []int // head input offset per group
	head   [][]float64
}

func (m *MLP) forward(xs []featurize.Vector) (*trace, error) {
	if len(xs) != len(m.Groups) {
		return nil, errors.Errorf("nn: got %d inputs, want %d", len(xs), len(m.Groups))
	}
	tr := &trace{inputs: xs, towers: make([][][]float64, len(xs)), offset: make([]int, len(xs))}
	off := 0
	for gi, g := range m.Groups {
		tr.offset[gi] = off
		x := xs[gi]
		if len(g.Tower) == 0 {
			for k, i := range x.Idx {
				tr.headIn.Idx = append(tr.headIn.Idx, off+i)
				tr.headIn.Val = append(tr.headIn.Val, x.Val[k])
			}
			off += g.Width
			continue
		}
		cur := x
		for _, d := range g.Tower {
			y := d.forward(cur)
			tr.towers[gi] = append(tr.towers[gi], y)
			cur = featurize.Dense(y)
		}
		for k, v := range cur.Val {
			tr.headIn.Idx = append(tr.headIn.Idx, off+k)
			tr.headIn.Val = append(tr.headIn.Val, v)
		}
		off += g.outWidth()
	}
	cur := tr.headIn
	for _, d := range m.Head {
		y := d.forward(cur)
		tr.head = append(tr.head, y)
		cur = featurize.Dense(y)
	}
	return tr, nil
}

// Predict returns class probabilities, or the single regression output.
func (m *MLP) Predict(xs []featurize.Vector) ([]float64, error) {
	tr, err := m.forward(xs)
	if err != nil {
		return nil, err
	}
	out := tr.head[len(tr.head)-1]
	if m.Task == Classification {
		return softmax(out), nil
	}
	return append([]float64(nil), out...), nil
}

func softmax(z []float64) []float64 {
	lse := floats.LogSumExp(z)
	p := make([]float64, len(z))
	for i, v := range z {
		p[i] = math.Exp(v - lse)
	}
	return p
}

// loss returns the example loss and the gradient w.r.t. the raw output.
func (m *MLP) loss(out []float64, s Sample) (float64, []float64) {
	if m.Task == Classification {
		p := softmax(out)
		l := -math.Log(math.Max(p[s.Class], 1e-15))
		p[s.Class] -= 1
		return l, p
	}
	d := out[0] - s.Target
	return 0.5 * d * d, []float64{d}
}

func (m *MLP) backward(tr *trace, grad []float64) {
	dy := grad
	for li := len(m.Head) - 1; li >= 0; li-- {
		in := tr.headIn
		if li > 0 {
			in = featurize.Dense(tr.head[li-1])
		}
		dy = m.Head[li].backward(in, tr.head[li], dy, li > 0 || m.hasTowers())
	}
	for gi, g := range m.Groups {
		if len(g.Tower) == 0 {
			continue
		}
		off := tr.offset[gi]
		w := g.outWidth()
		gdy := append([]float64(nil), dy[off:off+w]...)
		for li := len(g.Tower) - 1; li >= 0; li-- {
			in := tr.inputs[gi]
			if li > 0 {
				in = featurize.Dense(tr.towers[gi][li-1])
			}
			gdy = g.Tower[li].backward(in, tr.towers[gi][li], gdy, li > 0)
		}
	}
}

func (m *MLP) hasTowers() bool {
	for _, g := range m.Groups {
		if len(g.Tower) > 0 {
			return true
		}
	}
	return false
}
