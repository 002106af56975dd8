package featurize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Tokens string

const (
	Chars Tokens = "chars"
	Words Tokens = "words"
)

const maxCharGram = 3

// TextFeaturizer hashes tokens of a text column into a fixed number of
// buckets and L2-normalises the counts.
type TextFeaturizer struct {
	column  string
	buckets int
	tokens  Tokens
}

func NewText(column string, buckets int, tokens Tokens) *TextFeaturizer {
	if buckets <= 0 {
		buckets = 1 << 12
	}
	if tokens == "" {
		tokens = Chars
	}
	return &TextFeaturizer{column: column, buckets: buckets, tokens: tokens}
}

func (t *TextFeaturizer) Column() string        { return t.column }
func (t *TextFeaturizer) Modality() Modality    { return Text }
func (t *TextFeaturizer) Width() int            { return t.buckets }
func (t *TextFeaturizer) Fit(_ *fr.Frame) error { return nil }

func (t *TextFeaturizer) State() State {
	return State{Column: t.column, Modality: Text, Buckets: t.buckets, Tokens: t.tokens}
}

func (t *TextFeaturizer) Encode(f *fr.Frame, row int) (Vector, error) {
	s, ok := f.String(row, t.column)
	if !ok {
		return Vector{}, nil
	}
	counts := map[int]float64{}
	for _, tok := range Tokenize(s, t.tokens) {
		counts[int(xxhash.Sum64String(tok)%uint64(t.buckets))]++
	}
	return normalized(counts), nil
}

// Tokenize lower-cases s and splits it into words, or into character n-grams
// of length 1..3 for Chars.
func Tokenize(s string, tokens Tokens) []string {
	s = strings.ToLower(s)
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if tokens == Words {
		return words
	}
	var out []string
	for _, w := range words {
		rs := []rune(w)
		for n := 1; n <= maxCharGram; n++ {
			for i := 0; i+n <= len(rs); i++ {
				out = append(out, string(rs[i:i+n]))
			}
		}
	}
	return out
}

func normalized(counts map[int]float64) Vector {
	v := Vector{Idx: make([]int, 0, len(counts)), Val: make([]float64, 0, len(counts))}
	for i := range counts {
		v.Idx = append(v.Idx, i)
	}
	sort.Ints(v.Idx)
	for _, i := range v.Idx {
		v.Val = append(v.Val, counts[i])
	}
	if n := floats.Norm(v.Val, 2); n > 0 {
		floats.Scale(1/n, v.Val)
	}
	return v
}
