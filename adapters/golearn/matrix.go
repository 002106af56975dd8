package golearn

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"
)

// Matrix describes a dense feature matrix with one class label per row, built
// against a fixed attribute set so that training and query instances stay
// compatible.
type Matrix struct {
	features []base.Attribute
	class    *base.CategoricalAttribute
}

// NewMatrix declares width float features f0..f{width-1} plus a categorical
// class attribute whose values are registered in the given order.
func NewMatrix(width int, classes []string) *Matrix {
	m := &Matrix{features: make([]base.Attribute, width)}
	for i := range m.features {
		m.features[i] = base.NewFloatAttribute(fmt.Sprintf("f%d", i))
	}
	m.class = base.NewCategoricalAttribute()
	m.class.SetName("class")
	for _, c := range classes {
		m.class.GetSysValFromString(c)
	}
	return m
}

// Instances packs rows and labels into DenseInstances. labels may be nil for
// query rows; the first registered class is then used as a placeholder.
func (m *Matrix) Instances(rows [][]float64, labels []string) (*base.DenseInstances, error) {
	if labels != nil && len(labels) != len(rows) {
		return nil, errors.Errorf("%d rows but %d labels", len(rows), len(labels))
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(m.features))
	for i, a := range m.features {
		specs[i] = inst.AddAttribute(a)
	}
	cspec := inst.AddAttribute(m.class)
	if err := inst.AddClassAttribute(m.class); err != nil {
		return nil, err
	}
	if err := inst.Extend(len(rows)); err != nil {
		return nil, err
	}
	placeholder := ""
	if vals := m.class.GetValues(); len(vals) > 0 {
		placeholder = vals[0]
	}
	for r, row := range rows {
		if len(row) != len(m.features) {
			return nil, errors.Errorf("row %d has %d features, want %d", r, len(row), len(m.features))
		}
		for c, v := range row {
			inst.Set(specs[c], r, base.PackFloatToBytes(v))
		}
		label := placeholder
		if labels != nil {
			label = labels[r]
		}
		inst.Set(cspec, r, m.class.GetSysValFromString(label))
	}
	return inst, nil
}

// ClassGrid wraps a label sequence as a single-attribute class grid, the shape
// golearn's evaluation helpers compare.
func ClassGrid(labels []string) (*base.DenseInstances, error) {
	return NewMatrix(0, nil).Instances(make([][]float64, len(labels)), labels)
}

// Labels reads the class value of every row.
func Labels(grid base.FixedDataGrid) []string {
	_, rows := grid.Size()
	out := make([]string, rows)
	for i := range out {
		out[i] = base.GetClass(grid, i)
	}
	return out
}
