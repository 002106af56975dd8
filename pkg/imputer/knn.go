package imputer

import (
	"sync"

	"github.com/sjwhitworth/golearn/knn"

	"github.com/wdm0006/imputekit/adapters/golearn"
	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	"github.com/wdm0006/imputekit/pkg/nn"
)

// knnModel is the nearest-neighbour backend. It keeps the dense training
// vectors and rebuilds the golearn classifier on first use.
type knnModel struct {
	K       int         `json:"k"`
	Width   int         `json:"width"`
	Classes []string    `json:"classes"`
	Rows    [][]float64 `json:"rows"`
	Labels  []string    `json:"labels"`

	once   sync.Once
	matrix *golearn.Matrix
	cls    *knn.KNNClassifier
	err    error
}

func width(fz []featurize.Featurizer) int {
	w := 0
	for _, z := range fz {
		w += z.Width()
	}
	return w
}

// flatten concatenates the dense form of one vector per featurizer.
func flatten(fz []featurize.Featurizer, xs []featurize.Vector) []float64 {
	out := make([]float64, 0, width(fz))
	for i, z := range fz {
		out = append(out, xs[i].ToDense(z.Width())...)
	}
	return out
}

func newKNNModel(fz []featurize.Featurizer, samples []nn.Sample, labels *featurize.LabelEncoder, k int) *knnModel {
	m := &knnModel{K: k, Width: width(fz), Classes: labels.Classes}
	for _, s := range samples {
		m.Rows = append(m.Rows, flatten(fz, s.X))
		m.Labels = append(m.Labels, labels.Decode(s.Class))
	}
	if m.K > len(m.Rows) {
		m.K = len(m.Rows)
	}
	return m
}

func (m *knnModel) classifier() (*knn.KNNClassifier, error) {
	m.once.Do(func() {
		m.matrix = golearn.NewMatrix(m.Width, m.Classes)
		train, err := m.matrix.Instances(m.Rows, m.Labels)
		if err != nil {
			m.err = err
			return
		}
		m.cls = knn.NewKnnClassifier("euclidean", "linear", m.K)
		m.err = m.cls.Fit(train)
	})
	if m.err != nil {
		return nil, errs.Wrapf(errs.ErrTraining, m.err, "knn backend")
	}
	return m.cls, nil
}

// predict labels each query row with the majority class of its neighbours.
func (m *knnModel) predict(rows [][]float64) ([]string, error) {
	cls, err := m.classifier()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	query, err := m.matrix.Instances(rows, nil)
	if err != nil {
		return nil, err
	}
	out, err := cls.Predict(query)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrTraining, err, "knn predict")
	}
	return golearn.Labels(out), nil
}
