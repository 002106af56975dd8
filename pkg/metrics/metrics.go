// Package metrics scores imputations: classification through golearn's
// confusion matrix, regression through squared and absolute error.
package metrics

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/evaluation"
	"gonum.org/v1/gonum/floats"

	adapter "github.com/wdm0006/imputekit/adapters/golearn"
)

// Classification summarises predicted against true labels.
type Classification struct {
	Accuracy   float64                   `json:"accuracy"`
	WeightedF1 float64                   `json:"weighted_f1"`
	PerClassF1 map[string]float64        `json:"per_class_f1"`
	Support    map[string]int            `json:"support"`
	Confusion  map[string]map[string]int `json:"confusion"`
}

// Regression summarises predicted against true values.
type Regression struct {
	MSE  float64 `json:"mse"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

func Classify(truth, pred []string) (Classification, error) {
	if len(truth) != len(pred) {
		return Classification{}, errors.Errorf("metrics: %d labels vs %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return Classification{}, errors.New("metrics: no labels")
	}
	ref, err := adapter.ClassGrid(truth)
	if err != nil {
		return Classification{}, err
	}
	gen, err := adapter.ClassGrid(pred)
	if err != nil {
		return Classification{}, err
	}
	cm, err := evaluation.GetConfusionMatrix(ref, gen)
	if err != nil {
		return Classification{}, err
	}
	out := Classification{
		Accuracy:   evaluation.GetAccuracy(cm),
		PerClassF1: map[string]float64{},
		Support:    map[string]int{},
		Confusion:  cm,
	}
	predicted := map[string]int{}
	for _, row := range cm {
		for p, n := range row {
			predicted[p] += n
		}
	}
	classes := make([]string, 0, len(cm))
	for c := range cm {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	total := 0
	for _, c := range classes {
		support := 0
		for _, n := range cm[c] {
			support += n
		}
		tp := cm[c][c]
		// precision or recall of zero makes F1 zero, never NaN
		f1 := 0.0
		if tp > 0 {
			p := float64(tp) / float64(predicted[c])
			r := float64(tp) / float64(support)
			f1 = 2 * p * r / (p + r)
		}
		out.PerClassF1[c] = f1
		out.Support[c] = support
		out.WeightedF1 += f1 * float64(support)
		total += support
	}
	out.WeightedF1 /= float64(total)
	return out, nil
}

func Regress(truth, pred []float64) (Regression, error) {
	if len(truth) != len(pred) {
		return Regression{}, errors.Errorf("metrics: %d values vs %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return Regression{}, errors.New("metrics: no values")
	}
	diff := make([]float64, len(truth))
	floats.SubTo(diff, pred, truth)
	n := float64(len(diff))
	mse := floats.Dot(diff, diff) / n
	return Regression{
		MSE:  mse,
		MAE:  floats.Norm(diff, 1) / n,
		RMSE: math.Sqrt(mse),
	}, nil
}
