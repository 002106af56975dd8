/*
Package hpo runs grid hyper-parameter searches: every combination of the
candidate values is trained once, in order, and the best score wins.
*/
package hpo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

/*
Params is one combination of hyper-parameters, keyed by axis name
*/
type Params map[string]any

/*
Float returns the named parameter as float64, or dflt when absent
*/
func (p Params) Float(name string, dflt float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return dflt
}

/*
Int returns the named parameter as int, or dflt when absent
*/
func (p Params) Int(name string, dflt int) int {
	switch v := p[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return dflt
}

func (p Params) Ints(name string, dflt []int) []int {
	if v, ok := p[name].([]int); ok {
		return v
	}
	return dflt
}

func (p Params) String(name string, dflt string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return dflt
}

// Key renders p deterministically, e.g. "latent_dim=10 learning_rate=0.001".
func (p Params) Key() string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, " ")
}

/*
Axis is one searched hyper-parameter and its candidate values
*/
type Axis struct {
	Name   string
	Values []any
}

/*
Grid is an ordered set of axes; combinations vary the last axis fastest
*/
type Grid struct {
	Axes []Axis
}

// Add appends an axis. Empty candidate lists are skipped.
func (g *Grid) Add(name string, values ...any) *Grid {
	if len(values) > 0 {
		g.Axes = append(g.Axes, Axis{Name: name, Values: values})
	}
	return g
}

// Size is the number of combinations, 1 for an empty grid.
func (g *Grid) Size() int {
	n := 1
	for _, a := range g.Axes {
		n *= len(a.Values)
	}
	return n
}

// Combinations enumerates the Cartesian product of the axes.
func (g *Grid) Combinations() []Params {
	out := make([]Params, 0, g.Size())
	idx := make([]int, len(g.Axes))
	for {
		p := make(Params, len(g.Axes))
		for i, a := range g.Axes {
			p[a.Name] = a.Values[idx[i]]
		}
		out = append(out, p)
		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(g.Axes[k].Values) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return out
		}
	}
}

/*
Report is the outcome of one trial
*/
type Report struct {
	ID       string             `json:"id"`
	Index    int                `json:"index"`
	Params   Params             `json:"params"`
	Score    float64            `json:"score"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Duration time.Duration      `json:"duration"`
}

/*
Result collects every trial; Best indexes the first maximal score
*/
type Result struct {
	Trials []Report `json:"trials"`
	Best   int      `json:"best"`
}

func (r *Result) BestReport() Report { return r.Trials[r.Best] }

/*
Outcome is what a trial function reports back: a score to maximise and any
metrics worth keeping
*/
type Outcome struct {
	Score   float64
	Metrics map[string]float64
}

type TrialFunc func(ctx context.Context, index int, p Params) (Outcome, error)

type Options struct {
	// OnTrial is called after every finished trial.
	OnTrial func(Report)
}

// Search trains every combination of g sequentially. A failing trial aborts
// the search.
func Search(ctx context.Context, g *Grid, fn TrialFunc, opt Options) (*Result, error) {
	res := &Result{}
	for i, p := range g.Combinations() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := fn(ctx, i, p)
		if err != nil {
			return nil, errors.Wrapf(err, "trial %d (%s)", i, p.Key())
		}
		rep := Report{ID: uuid.NewString(), Index: i, Params: p, Score: out.Score, Metrics: out.Metrics, Duration: time.Since(start)}
		res.Trials = append(res.Trials, rep)
		if rep.Score > res.Trials[res.Best].Score {
			res.Best = i
		}
		if opt.OnTrial != nil {
			opt.OnTrial(rep)
		}
	}
	return res, nil
}
