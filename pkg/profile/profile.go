package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sum_sq"`
}

// Mean is 0 for an empty column.
func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Std is the sample standard deviation; 0 with fewer than two values.
func (s *NumStats) Std() float64 {
	if s.Count < 2 {
		return 0
	}
	n := float64(s.Count)
	v := (s.SumSq - s.Sum*s.Sum/n) / (n - 1)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

func (s *NumStats) add(v float64) {
	s.Count++
	s.Min = math.Min(s.Min, v)
	s.Max = math.Max(s.Max, v)
	s.Sum += v
	s.SumSq += v * v
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int
	Nulls int
	TopK  int
	Freqs map[string]int
}

// Distinct returns the number of distinct values seen.
func (s *StringStats) Distinct() int { return len(s.Freqs) }

type ColumnProfile struct {
	Name string
	Kind fr.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Collector accumulates per-column statistics over one or more frames that
// share a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema fr.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case fr.KindFloat, fr.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case fr.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{TopK: topK, Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Of profiles a single frame. Frequencies are always tracked.
func Of(f *fr.Frame) *Collector {
	c := NewCollector(f.Schema(), 0)
	c.trackAll()
	c.ConsumeFrame(f)
	return c
}

func (c *Collector) trackAll() { c.topK = -1 }

func (c *Collector) ConsumeFrame(f *fr.Frame) {
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(cs.Name)
		for i := 0; i < col.Len(); i++ {
			switch {
			case cp.Num != nil:
				v, ok := f.Float(i, cs.Name)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.add(v)
			case cp.Bool != nil:
				v, ok := col.(*fr.BoolColumn).Get(i)
				if !ok {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			default:
				v := col.Value(i)
				if v == nil {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK != 0 {
					cp.Str.Freqs[cellText(v)]++
				}
			}
		}
	}
}

func cellText(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// Column returns the profile of name.
func (c *Collector) Column(name string) (ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return c.cols[i], true
}

// Top returns up to k values of a string column, most frequent first, ties by value.
func (cp ColumnProfile) Top(k int) []string {
	if cp.Str == nil {
		return nil
	}
	keys := make([]string, 0, len(cp.Str.Freqs))
	for v := range cp.Str.Freqs {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool {
		fi, fj := cp.Str.Freqs[keys[i]], cp.Str.Freqs[keys[j]]
		if fi != fj {
			return fi > fj
		}
		return keys[i] < keys[j]
	})
	if k > 0 && k < len(keys) {
		keys = keys[:k]
	}
	return keys
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g std=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean(), cp.Num.Std())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d\n", cp.Str.Count, cp.Str.Nulls, cp.Str.Distinct())
			for _, v := range cp.Top(c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", v, cp.Str.Freqs[v])
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Mean *float64   `json:"mean,omitempty"`
	Std  *float64   `json:"std,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Str  *JSONStr   `json:"str,omitempty"`
}

type JSONStr struct {
	Count int            `json:"count"`
	Nulls int            `json:"nulls"`
	Top   map[string]int `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String()}
		switch {
		case cp.Num != nil:
			mean, std := cp.Num.Mean(), cp.Num.Std()
			jc.Num, jc.Mean, jc.Std = cp.Num, &mean, &std
		case cp.Bool != nil:
			jc.Bool = cp.Bool
		default:
			js := &JSONStr{Count: cp.Str.Count, Nulls: cp.Str.Nulls}
			if top := cp.Top(c.topK); len(top) > 0 {
				js.Top = make(map[string]int, len(top))
				for _, v := range top {
					js.Top[v] = cp.Str.Freqs[v]
				}
			}
			jc.Str = js
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
