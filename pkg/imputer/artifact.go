package imputer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/metrics"
	"github.com/wdm0006/imputekit/pkg/nn"
)

const (
	artifactFile = "artifact.json"
	metricsFile  = "metrics.json"
	lockFile     = ".imputekit.lock"
)

// Metrics are the held-out scores of a fit. Score is what HPO maximises:
// accuracy for classification, negative MSE for regression.
type Metrics struct {
	Task       nn.Task                   `json:"task"`
	TrainRows  int                       `json:"train_rows"`
	EvalRows   int                       `json:"eval_rows"`
	Score      float64                   `json:"score"`
	Accuracy   float64                   `json:"accuracy,omitempty"`
	WeightedF1 float64                   `json:"weighted_f1,omitempty"`
	PerClassF1 map[string]float64        `json:"per_class_f1,omitempty"`
	Confusion  map[string]map[string]int `json:"confusion,omitempty"`
	MSE        float64                   `json:"mse,omitempty"`
	MAE        float64                   `json:"mae,omitempty"`
	RMSE       float64                   `json:"rmse,omitempty"`
	BestEpoch  int                       `json:"best_epoch,omitempty"`
}

func classificationMetrics(c metrics.Classification) Metrics {
	return Metrics{
		Task: nn.Classification, Score: c.Accuracy, Accuracy: c.Accuracy,
		WeightedF1: c.WeightedF1, PerClassF1: c.PerClassF1, Confusion: c.Confusion,
	}
}

func regressionMetrics(r metrics.Regression) Metrics {
	return Metrics{Task: nn.Regression, Score: -r.MSE, MSE: r.MSE, MAE: r.MAE, RMSE: r.RMSE}
}

// Values flattens the scalar metrics for reports.
func (m Metrics) Values() map[string]float64 {
	if m.Task == nn.Regression {
		return map[string]float64{"mse": m.MSE, "mae": m.MAE, "rmse": m.RMSE}
	}
	return map[string]float64{"accuracy": m.Accuracy, "weighted_f1": m.WeightedF1}
}

// Artifact is a trained imputer. Callers treat the files it writes as opaque.
type Artifact struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	Config     Config                  `json:"config"`
	Params     Params                  `json:"params"`
	Task       nn.Task                 `json:"task"`
	OutputKind fr.Kind                 `json:"output_kind"`
	Features   []featurize.State       `json:"features"`
	Labels     *featurize.LabelEncoder `json:"labels,omitempty"`
	Scaler     *featurize.Scaler       `json:"scaler,omitempty"`
	Network    *nn.MLP                 `json:"network,omitempty"`
	Neighbors  *knnModel               `json:"neighbors,omitempty"`
	History    nn.History              `json:"history"`
	Metrics    Metrics                 `json:"-"`

	path        string
	featurizers []featurize.Featurizer
}

// Path is the directory the artifact was saved to or loaded from.
func (a *Artifact) Path() string { return a.path }

func (a *Artifact) build() error {
	a.featurizers = make([]featurize.Featurizer, len(a.Features))
	for i, st := range a.Features {
		f, err := featurize.FromState(st)
		if err != nil {
			return err
		}
		a.featurizers[i] = f
	}
	return nil
}

// lockDir takes the advisory writer lock of dir, creating dir if needed.
func lockDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output path %s", dir)
	}
	fl := flock.New(filepath.Join(dir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", dir)
	}
	if !ok {
		return nil, errs.Newf(errs.ErrConfiguration, "output path %s is in use by another writer", dir)
	}
	return fl, nil
}

// save writes artifact.json and metrics.json into dir. The caller holds the lock.
func (a *Artifact) save(dir string) error {
	if err := writeJSON(filepath.Join(dir, artifactFile), a); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, metricsFile), a.Metrics); err != nil {
		return err
	}
	a.path = dir
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(os.Rename(tmp, path), "write %s", path)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errs.FromOS(err, path)
	}
	return errors.Wrapf(json.Unmarshal(b, v), "decode %s", path)
}

// Load reads the artifact persisted under path.
func Load(path string) (*Artifact, error) {
	a := &Artifact{}
	if err := readJSON(filepath.Join(path, artifactFile), a); err != nil {
		return nil, err
	}
	m, err := LoadMetrics(path)
	if err != nil {
		return nil, err
	}
	a.Metrics = m
	a.path = path
	if err := a.build(); err != nil {
		return nil, errs.Wrapf(errs.ErrConfiguration, err, "artifact %s", path)
	}
	return a, nil
}

// LoadMetrics reads metrics.json from path.
func LoadMetrics(path string) (Metrics, error) {
	var m Metrics
	err := readJSON(filepath.Join(path, metricsFile), &m)
	return m, err
}

// LoadMetrics re-reads the metrics file of a saved artifact.
func (a *Artifact) LoadMetrics() (Metrics, error) {
	if a.path == "" {
		return Metrics{}, errs.Newf(errs.ErrFileNotFound, "artifact %s was never saved", a.ID)
	}
	return LoadMetrics(a.path)
}

// Imputer returns an imputer with the artifact's configuration, for refitting.
func (a *Artifact) Imputer() (*Imputer, error) {
	return New(a.Config)
}
