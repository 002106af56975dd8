// Package featurize turns frame cells into sparse numeric vectors. Each
// featurizer owns one input column; fitted state round-trips through State so
// a trained model can be reloaded.
package featurize

import (
	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Modality string

const (
	Text    Modality = "text"
	Numeric Modality = "numeric"
	Image   Modality = "image"
)

// Valid reports whether m names a known modality.
func (m Modality) Valid() bool { return m == Text || m == Numeric || m == Image }

// Vector is a sparse feature vector; Idx and Val run in parallel.
type Vector struct {
	Idx []int
	Val []float64
}

// Dense wraps a dense slice as a Vector over every index.
func Dense(vals []float64) Vector {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	return Vector{Idx: idx, Val: vals}
}

func (v Vector) Len() int { return len(v.Idx) }

// ToDense expands v to width entries.
func (v Vector) ToDense(width int) []float64 {
	out := make([]float64, width)
	for k, i := range v.Idx {
		out[i] += v.Val[k]
	}
	return out
}

type Featurizer interface {
	Column() string
	Modality() Modality
	// Width is the dimension of vectors returned by Encode.
	Width() int
	// Fit learns column statistics from the training frame.
	Fit(f *fr.Frame) error
	Encode(f *fr.Frame, row int) (Vector, error)
	State() State
}

// State is the persisted form of any featurizer.
type State struct {
	Column   string   `json:"column"`
	Modality Modality `json:"modality"`
	Buckets  int      `json:"buckets,omitempty"`
	Tokens   Tokens   `json:"tokens,omitempty"`
	Mean     float64  `json:"mean,omitempty"`
	Std      float64  `json:"std,omitempty"`
	Size     int      `json:"size,omitempty"`
}

// FromState rebuilds a fitted featurizer.
func FromState(s State) (Featurizer, error) {
	switch s.Modality {
	case Text:
		return NewText(s.Column, s.Buckets, s.Tokens), nil
	case Numeric:
		return &NumericFeaturizer{column: s.Column, mean: s.Mean, std: s.Std}, nil
	case Image:
		return NewImage(s.Column, s.Size), nil
	default:
		return nil, errors.Errorf("unknown modality %q for column %s", s.Modality, s.Column)
	}
}
