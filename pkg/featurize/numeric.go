package featurize

import (
	"gonum.org/v1/gonum/stat"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// NumericFeaturizer standardises a numeric column; nulls encode as the mean.
type NumericFeaturizer struct {
	column string
	mean   float64
	std    float64
}

func NewNumeric(column string) *NumericFeaturizer {
	return &NumericFeaturizer{column: column, std: 1}
}

func (n *NumericFeaturizer) Column() string     { return n.column }
func (n *NumericFeaturizer) Modality() Modality { return Numeric }
func (n *NumericFeaturizer) Width() int         { return 1 }

func (n *NumericFeaturizer) Fit(f *fr.Frame) error {
	vals := make([]float64, 0, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		if v, ok := f.Float(i, n.column); ok {
			vals = append(vals, v)
		}
	}
	n.mean, n.std = 0, 1
	if len(vals) == 0 {
		return nil
	}
	n.mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		if sd := stat.StdDev(vals, nil); sd > 1e-12 {
			n.std = sd
		}
	}
	return nil
}

func (n *NumericFeaturizer) Encode(f *fr.Frame, row int) (Vector, error) {
	v, ok := f.Float(row, n.column)
	if !ok {
		return Vector{Idx: []int{0}, Val: []float64{0}}, nil
	}
	return Vector{Idx: []int{0}, Val: []float64{(v - n.mean) / n.std}}, nil
}

func (n *NumericFeaturizer) State() State {
	return State{Column: n.column, Modality: Numeric, Mean: n.mean, Std: n.std}
}

// Scaler standardises a regression target and maps predictions back.
type Scaler struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

func FitScaler(vals []float64) Scaler {
	s := Scaler{Std: 1}
	if len(vals) == 0 {
		return s
	}
	s.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		if sd := stat.StdDev(vals, nil); sd > 1e-12 {
			s.Std = sd
		}
	}
	return s
}

func (s Scaler) Scale(v float64) float64   { return (v - s.Mean) / s.Std }
func (s Scaler) Unscale(v float64) float64 { return v*s.Std + s.Mean }
