// Package split partitions a Frame into disjoint subsets by ratio.
package split

import (
	"math"
	"math/rand"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// tolerance absorbs float noise in ratio sums such as 0.7+0.2+0.1.
const tolerance = 1e-9

// Validate checks that ratios are positive and sum to at most 1.
func Validate(ratios []float64) error {
	if len(ratios) == 0 {
		return errs.Newf(errs.ErrInvalidRatio, "no ratios given")
	}
	var sum float64
	for i, r := range ratios {
		if !(r > 0) || math.IsInf(r, 0) {
			return errs.Newf(errs.ErrInvalidRatio, "ratio %d is %v, must be positive", i, r)
		}
		sum += r
	}
	if sum > 1+tolerance {
		return errs.Newf(errs.ErrInvalidRatio, "ratios sum to %v, must not exceed 1", sum)
	}
	return nil
}

// Sizes returns the subset sizes for n rows. Each subset gets floor(r*n);
// when the ratios sum to 1 the leftover rows go one at a time to the subsets
// in order, so the sizes cover n exactly.
func Sizes(n int, ratios []float64) ([]int, error) {
	if err := Validate(ratios); err != nil {
		return nil, err
	}
	sizes := make([]int, len(ratios))
	var sum float64
	total := 0
	for i, r := range ratios {
		sizes[i] = int(math.Floor(r*float64(n) + tolerance))
		total += sizes[i]
		sum += r
	}
	if math.Abs(sum-1) <= tolerance {
		for i := 0; total < n; i = (i + 1) % len(sizes) {
			sizes[i]++
			total++
		}
	}
	return sizes, nil
}

// Random shuffles rows with seed and partitions them by ratios. Within each
// subset rows keep their shuffled order.
func Random(f *fr.Frame, ratios []float64, seed int64) ([]*fr.Frame, error) {
	idx := rand.New(rand.NewSource(seed)).Perm(f.Rows())
	return partition(f, idx, ratios)
}

// Ordered partitions rows by ratios without shuffling.
func Ordered(f *fr.Frame, ratios []float64) ([]*fr.Frame, error) {
	idx := make([]int, f.Rows())
	for i := range idx {
		idx[i] = i
	}
	return partition(f, idx, ratios)
}

// TrainTest is Random with a single training fraction. A fraction of 1 puts
// every row, shuffled, in train and returns an empty test frame.
func TrainTest(f *fr.Frame, trainRatio float64, seed int64) (train, test *fr.Frame, err error) {
	if math.Abs(trainRatio-1) <= tolerance {
		parts, err := Random(f, []float64{1}, seed)
		if err != nil {
			return nil, nil, err
		}
		return parts[0], f.Take(nil), nil
	}
	parts, err := Random(f, []float64{trainRatio, 1 - trainRatio}, seed)
	if err != nil {
		return nil, nil, err
	}
	return parts[0], parts[1], nil
}

func partition(f *fr.Frame, idx []int, ratios []float64) ([]*fr.Frame, error) {
	sizes, err := Sizes(len(idx), ratios)
	if err != nil {
		return nil, err
	}
	out := make([]*fr.Frame, len(sizes))
	start := 0
	for i, n := range sizes {
		out[i] = f.Take(idx[start : start+n])
		start += n
	}
	return out, nil
}
