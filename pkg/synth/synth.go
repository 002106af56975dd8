// Package synth generates the small datasets the tutorial and tests train on.
package synth

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

var (
	finishes = []string{"matte", "glossy", "satin", "brushed"}
	products = []string{"mug", "bowl", "vase", "lamp", "frame", "tray", "clock", "shelf"}
	fillers  = []string{"handmade", "ceramic", "steel", "oak", "modern", "classic", "large", "small", "set", "of", "two", "with", "lid", "for", "home", "office"}
)

func pick(rng *rand.Rand, xs []string) string { return xs[rng.Intn(len(xs))] }

func words(rng *rand.Rand, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = pick(rng, fillers)
	}
	return out
}

// Finish returns n product rows (title, text, finish). The finish shows up
// as a word in the description and, sometimes, in the title.
func Finish(n int, seed int64) *fr.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := fr.NewFrame(fr.Schema{Columns: []fr.ColumnSchema{
		{Name: "title", Type: fr.KindString, Nullable: true},
		{Name: "text", Type: fr.KindString, Nullable: true},
		{Name: "finish", Type: fr.KindString, Nullable: true},
	}})
	for i := 0; i < n; i++ {
		fin := finishes[rng.Intn(len(finishes))]
		title := []string{pick(rng, fillers), pick(rng, products)}
		if rng.Intn(2) == 0 {
			title = append([]string{fin}, title...)
		}
		text := words(rng, 6)
		text[rng.Intn(len(text))] = fin + " finish"
		f.AppendNullRow()
		_ = f.SetCell(i, "title", strings.Join(title, " "))
		_ = f.SetCell(i, "text", strings.Join(text, " "))
		_ = f.SetCell(i, "finish", fin)
	}
	return f
}

// Strings returns rows whose feature column is numWords random vocabulary
// tokens with the row's label token planted at a random position.
func Strings(featureCol, labelCol string, n, numLabels, numWords, vocab int, seed int64) *fr.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := fr.NewFrame(fr.Schema{Columns: []fr.ColumnSchema{
		{Name: featureCol, Type: fr.KindString, Nullable: true},
		{Name: labelCol, Type: fr.KindString, Nullable: true},
	}})
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("label%d", rng.Intn(numLabels))
		toks := make([]string, numWords)
		for k := range toks {
			toks[k] = fmt.Sprintf("w%d", rng.Intn(vocab))
		}
		toks[rng.Intn(len(toks))] = label
		f.AppendNullRow()
		_ = f.SetCell(i, featureCol, strings.Join(toks, " "))
		_ = f.SetCell(i, labelCol, label)
	}
	return f
}

// Numeric returns n rows of x ~ U(-pi, pi) with targets "*2" = 2x + e and
// "**2" = x^2 + e, e ~ N(0, 0.1).
func Numeric(n int, seed int64) *fr.Frame {
	rng := rand.New(rand.NewSource(seed))
	f := fr.NewFrame(fr.Schema{Columns: []fr.ColumnSchema{
		{Name: "x", Type: fr.KindFloat, Nullable: true},
		{Name: "*2", Type: fr.KindFloat, Nullable: true},
		{Name: "**2", Type: fr.KindFloat, Nullable: true},
	}})
	for i := 0; i < n; i++ {
		x := (rng.Float64()*2 - 1) * math.Pi
		f.AppendNullRow()
		_ = f.SetCell(i, "x", x)
		_ = f.SetCell(i, "*2", 2*x+rng.NormFloat64()*0.1)
		_ = f.SetCell(i, "**2", x*x+rng.NormFloat64()*0.1)
	}
	return f
}

// Colors maps the synthetic image labels to their fill colour.
var Colors = map[string]color.NRGBA{
	"red":   {R: 155, A: 255},
	"green": {G: 155, A: 255},
	"blue":  {B: 155, A: 255},
}

var colorOrder = []string{"red", "green", "blue"}

// WriteImage writes a 50x50 PNG filled with the named colour.
func WriteImage(path, name string) error {
	c, ok := Colors[name]
	if !ok {
		return errors.Errorf("synth: unknown colour %q", name)
	}
	return imaging.Save(imaging.New(50, 50, c), path)
}

// Images writes one PNG per colour under dir and returns n rows
// (image_files, label) with labels drawn uniformly.
func Images(dir string, n int, seed int64) (*fr.Frame, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := map[string]string{}
	for _, c := range colorOrder {
		p := filepath.Join(dir, c+".png")
		if err := WriteImage(p, c); err != nil {
			return nil, err
		}
		paths[c] = p
	}
	rng := rand.New(rand.NewSource(seed))
	f := fr.NewFrame(fr.Schema{Columns: []fr.ColumnSchema{
		{Name: "image_files", Type: fr.KindString, Nullable: true},
		{Name: "label", Type: fr.KindString, Nullable: true},
	}})
	for i := 0; i < n; i++ {
		c := colorOrder[rng.Intn(len(colorOrder))]
		f.AppendNullRow()
		_ = f.SetCell(i, "image_files", paths[c])
		_ = f.SetCell(i, "label", c)
	}
	return f, nil
}
