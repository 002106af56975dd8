package featurize

import (
	"sort"

	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// LabelEncoder maps the distinct values of a classification target to
// contiguous class indices in sorted order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	index   map[string]int
}

// FitLabels collects the non-null values of column.
func FitLabels(f *fr.Frame, column string) *LabelEncoder {
	seen := map[string]struct{}{}
	for i := 0; i < f.Rows(); i++ {
		if s, ok := f.String(i, column); ok {
			seen[s] = struct{}{}
		}
	}
	classes := make([]string, 0, len(seen))
	for s := range seen {
		classes = append(classes, s)
	}
	sort.Strings(classes)
	return NewLabelEncoder(classes)
}

func NewLabelEncoder(classes []string) *LabelEncoder {
	e := &LabelEncoder{Classes: classes}
	e.reindex()
	return e
}

func (e *LabelEncoder) reindex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

func (e *LabelEncoder) Len() int { return len(e.Classes) }

func (e *LabelEncoder) Encode(label string) (int, error) {
	if e.index == nil {
		e.reindex()
	}
	i, ok := e.index[label]
	if !ok {
		return 0, errors.Errorf("unknown label %q", label)
	}
	return i, nil
}

func (e *LabelEncoder) Decode(i int) string { return e.Classes[i] }
