package frame

import "context"

// Transform is a mutation or validation applied to a Frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
}

func NewPipeline(steps ...Transform) *Pipeline { return &Pipeline{steps: steps} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Steps returns the step names in order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.Name()
	}
	return out
}

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	var err error
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
