// Package gota bridges imputekit frames to github.com/go-gota/gota data frames.
package gota

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// ToDataFrame copies f into a gota DataFrame. Nulls become NaN in numeric
// series and NA elsewhere.
func ToDataFrame(f *fr.Frame) dataframe.DataFrame {
	cols := make([]series.Series, 0, f.Cols())
	for _, cs := range f.Schema().Columns {
		switch cs.Type {
		case fr.KindFloat, fr.KindInt:
			vals := make([]float64, f.Rows())
			for i := range vals {
				v, ok := f.Float(i, cs.Name)
				if !ok {
					v = math.NaN()
				}
				vals[i] = v
			}
			cols = append(cols, series.New(vals, series.Float, cs.Name))
		case fr.KindBool:
			vals := make([]any, f.Rows())
			for i := range vals {
				vals[i] = f.Value(i, cs.Name)
			}
			cols = append(cols, series.New(vals, series.Bool, cs.Name))
		default:
			vals := make([]any, f.Rows())
			for i := range vals {
				if s, ok := f.String(i, cs.Name); ok {
					vals[i] = s
				}
			}
			cols = append(cols, series.New(vals, series.String, cs.Name))
		}
	}
	return dataframe.New(cols...)
}

// Describe returns gota's summary table (mean, median, std, min, quartiles,
// max) for f.
func Describe(f *fr.Frame) dataframe.DataFrame {
	return ToDataFrame(f).Describe()
}
