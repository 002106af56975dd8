// Package golearn converts between imputekit frames and
// github.com/sjwhitworth/golearn/base instances.
package golearn

import (
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// ToDenseInstances converts a Frame into golearn DenseInstances. Numeric
// columns become float attributes, everything else categorical. When class is
// non-empty that column is marked as the class attribute.
func ToDenseInstances(f *fr.Frame, class string) (*base.DenseInstances, error) {
	attrs := make([]base.Attribute, len(f.Schema().Columns))
	classIdx := -1
	for i, cs := range f.Schema().Columns {
		if cs.Type.Numeric() {
			attrs[i] = base.NewFloatAttribute(cs.Name)
		} else {
			ca := base.NewCategoricalAttribute()
			ca.SetName(cs.Name)
			attrs[i] = ca
		}
		if cs.Name == class {
			classIdx = i
		}
	}
	if class != "" && classIdx < 0 {
		return nil, errors.Errorf("class column %q not in frame", class)
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}
	for r := 0; r < f.Rows(); r++ {
		for c, cs := range f.Schema().Columns {
			if cs.Type.Numeric() {
				// golearn has no nulls; missing numbers read as zero
				v, _ := f.Float(r, cs.Name)
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
				continue
			}
			s, _ := f.String(r, cs.Name)
			inst.Set(specs[c], r, attrs[c].GetSysValFromString(s))
		}
	}
	if classIdx >= 0 {
		if err := inst.AddClassAttribute(attrs[classIdx]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts golearn DenseInstances into a Frame.
func FromDenseInstances(inst *base.DenseInstances) (*fr.Frame, error) {
	attrs := inst.AllAttributes()
	schema := fr.Schema{Columns: make([]fr.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := fr.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			k = fr.KindFloat
		}
		schema.Columns[i] = fr.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := fr.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == fr.KindFloat {
				_ = f.SetCell(r, cs.Name, base.UnpackBytesToFloat(raw))
				continue
			}
			_ = f.SetCell(r, cs.Name, attrs[c].GetStringFromSysVal(raw))
		}
	}
	return f, nil
}
