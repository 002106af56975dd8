package imputer

import (
	"context"
	"strconv"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/nn"
)

// PredictOptions control the columns Predict adds.
type PredictOptions struct {
	// Suffix is appended to the output column name; DefaultSuffix when empty.
	Suffix string
	// ProbaThreshold nulls classifications whose probability falls below it.
	ProbaThreshold float64
}

// ProbaColumn names the probability column written next to the prediction.
func ProbaColumn(output, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return output + suffix + "_proba"
}

type prediction struct {
	label string
	value float64
	proba float64
	// known is false for the knn backend, which reports no probability.
	known bool
}

// predictRows runs the model over every row of f. f must hold the input columns.
func (a *Artifact) predictRows(ctx context.Context, f *fr.Frame) ([]prediction, error) {
	xs, err := encode(ctx, a.featurizers, f, errs.ErrConfiguration)
	if err != nil {
		return nil, err
	}
	out := make([]prediction, len(xs))
	if a.Neighbors != nil {
		rows := make([][]float64, len(xs))
		for i, x := range xs {
			rows[i] = flatten(a.featurizers, x)
		}
		labels, err := a.Neighbors.predict(rows)
		if err != nil {
			return nil, err
		}
		for i, l := range labels {
			out[i] = prediction{label: l}
		}
		return out, nil
	}
	if a.Network == nil {
		return nil, errs.Newf(errs.ErrConfiguration, "artifact %s has no model", a.ID)
	}
	for i, x := range xs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		y, err := a.Network.Predict(x)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrConfiguration, err, "row %d", i)
		}
		if a.Task == nn.Regression {
			out[i] = prediction{value: a.Scaler.Unscale(y[0]), known: true}
			continue
		}
		best := 0
		for c := range y {
			if y[c] > y[best] {
				best = c
			}
		}
		out[i] = prediction{label: a.Labels.Decode(best), proba: y[best], known: true}
	}
	return out, nil
}

func (a *Artifact) prepare(ctx context.Context, data *fr.Frame) (*fr.Frame, error) {
	var missing []string
	for _, c := range a.Config.InputColumns {
		if !data.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errs.Newf(errs.ErrConfiguration, "columns %v not in data", missing)
	}
	in, err := data.Select(a.Config.InputColumns...)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrConfiguration, err, "select inputs")
	}
	mods := make([]featurize.Modality, len(a.Features))
	for i, st := range a.Features {
		mods[i] = st.Modality
	}
	return clean(ctx, in, a.Config.InputColumns, mods, false)
}

// Predict returns a copy of data with the imputed column <output><suffix>
// and, for classification, its probability column. data need not hold the
// output column.
func (a *Artifact) Predict(ctx context.Context, data *fr.Frame, opt PredictOptions) (*fr.Frame, error) {
	if opt.Suffix == "" {
		opt.Suffix = DefaultSuffix
	}
	name := a.Config.OutputColumn + opt.Suffix
	proba := ProbaColumn(a.Config.OutputColumn, opt.Suffix)
	if data.Has(name) || (a.Task == nn.Classification && data.Has(proba)) {
		return nil, errs.Newf(errs.ErrConfiguration, "column %s already exists", name)
	}
	in, err := a.prepare(ctx, data)
	if err != nil {
		return nil, err
	}
	preds, err := a.predictRows(ctx, in)
	if err != nil {
		return nil, err
	}
	out := data.Clone()
	n := out.Rows()
	if a.Task == nn.Regression {
		col := fr.NewFloatColumn(name, 0)
		for _, p := range preds {
			col.Append(p.value)
		}
		return out, out.AddColumn(col, true)
	}

	pc := fr.NewFloatColumn(proba, 0)
	keep := make([]bool, n)
	for i, p := range preds {
		keep[i] = !p.known || p.proba >= opt.ProbaThreshold
		if p.known {
			pc.Append(p.proba)
		} else {
			pc.AppendNull()
		}
	}
	col, err := labelColumn(name, a.OutputKind, preds, keep)
	if err != nil {
		return nil, err
	}
	if err := out.AddColumn(col, true); err != nil {
		return nil, err
	}
	return out, out.AddColumn(pc, true)
}

// labelColumn writes predicted labels back in the output column's kind.
func labelColumn(name string, kind fr.Kind, preds []prediction, keep []bool) (fr.Column, error) {
	if kind != fr.KindBool && kind != fr.KindInt {
		kind = fr.KindString
	}
	tmp := fr.NewFrame(fr.Schema{Columns: []fr.ColumnSchema{{Name: name, Type: kind, Nullable: true}}})
	for i, p := range preds {
		tmp.AppendNullRow()
		if !keep[i] {
			continue
		}
		if err := tmp.SetCell(i, name, parseLabel(p.label, kind)); err != nil {
			return nil, errs.Wrapf(errs.ErrConfiguration, err, "row %d", i)
		}
	}
	c, _ := tmp.ColumnByName(name)
	return c, nil
}

func parseLabel(s string, kind fr.Kind) any {
	switch kind {
	case fr.KindBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case fr.KindInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	default:
		return s
	}
	return nil
}

// Fill is a frame transform that replaces nulls of the output column with
// the artifact's predictions and leaves observed values alone.
type Fill struct {
	Artifact       *Artifact
	ProbaThreshold float64
}

func (t *Fill) Name() string { return "impute_model" }

func (t *Fill) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col := t.Artifact.Config.OutputColumn
	if !f.Has(col) {
		return nil, errs.Newf(errs.ErrConfiguration, "column %s not in data", col)
	}
	var nulls []int
	for i := 0; i < f.Rows(); i++ {
		if f.Value(i, col) == nil {
			nulls = append(nulls, i)
		}
	}
	out := f.Clone()
	if len(nulls) == 0 {
		return out, nil
	}
	pred, err := t.Artifact.Predict(ctx, f.Take(nulls), PredictOptions{ProbaThreshold: t.ProbaThreshold})
	if err != nil {
		return nil, err
	}
	name := col + DefaultSuffix
	for k, row := range nulls {
		v := pred.Value(k, name)
		if v == nil {
			continue
		}
		if err := out.SetCell(row, col, v); err != nil {
			return nil, errs.Wrapf(errs.ErrConfiguration, err, "fill row %d", row)
		}
	}
	return out, nil
}
