// Package imputer trains models that fill one column of a frame from others
// and applies them to new data.
package imputer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/logger"
	"github.com/wdm0006/imputekit/pkg/metrics"
	"github.com/wdm0006/imputekit/pkg/nn"
	"github.com/wdm0006/imputekit/pkg/split"
	"github.com/wdm0006/imputekit/pkg/transform/impute"
	"github.com/wdm0006/imputekit/pkg/transform/standardize"
)

// Imputer holds a validated configuration. It is safe to Fit repeatedly;
// each fit produces a new Artifact.
type Imputer struct {
	cfg Config
}

// New validates cfg and fills defaults. Invalid settings return
// errs.ErrConfiguration.
func New(cfg Config) (*Imputer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.InputColumns = append([]string(nil), cfg.InputColumns...)
	cfg.LayerDim = append([]int(nil), cfg.LayerDim...)
	return &Imputer{cfg: cfg}, nil
}

func (im *Imputer) Config() Config { return im.cfg }

// Fit trains on train and saves the artifact under the configured output path.
func (im *Imputer) Fit(ctx context.Context, train *fr.Frame, p Params) (*Artifact, error) {
	fl, err := lockDir(im.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()
	a, err := fit(ctx, im.cfg, train, p)
	if err != nil {
		return nil, err
	}
	if err := a.save(im.cfg.OutputPath); err != nil {
		return nil, err
	}
	return a, nil
}

// InferModality decides how an input column is featurized: numeric kinds are
// numeric, strings that name existing image files are images, the rest text.
func InferModality(f *fr.Frame, column string) featurize.Modality {
	cs, ok := f.Schema().Lookup(column)
	if !ok {
		return featurize.Text
	}
	switch cs.Type {
	case fr.KindFloat, fr.KindInt, fr.KindBool:
		return featurize.Numeric
	case fr.KindString:
		sampled := 0
		for i := 0; i < f.Rows() && sampled < 10; i++ {
			s, ok := f.String(i, column)
			if !ok || s == "" {
				continue
			}
			if !featurize.IsImagePath(s) {
				return featurize.Text
			}
			sampled++
		}
		if sampled > 0 {
			return featurize.Image
		}
	}
	return featurize.Text
}

// InferTask treats float outputs as regression and everything else as
// classification.
func InferTask(k fr.Kind) nn.Task {
	if k == fr.KindFloat {
		return nn.Regression
	}
	return nn.Classification
}

func modalities(cfg Config, f *fr.Frame) []featurize.Modality {
	out := make([]featurize.Modality, len(cfg.InputColumns))
	for i, col := range cfg.InputColumns {
		if m, ok := cfg.ColumnTypes[col]; ok {
			out[i] = m
			continue
		}
		out[i] = InferModality(f, col)
	}
	return out
}

// clean trims string inputs and, when fill is set, mean-imputes numeric ones.
func clean(ctx context.Context, f *fr.Frame, cols []string, mods []featurize.Modality, fill bool) (*fr.Frame, error) {
	p := fr.NewPipeline()
	for i, col := range cols {
		cs, _ := f.Schema().Lookup(col)
		switch {
		case cs.Type == fr.KindString:
			p.Add(&standardize.Trim{Column: col})
		case fill && mods[i] == featurize.Numeric:
			p.Add(&impute.Mean{Column: col})
		}
	}
	return p.Run(ctx, f)
}

func newFeaturizer(cfg Config, col string, m featurize.Modality) featurize.Featurizer {
	switch m {
	case featurize.Numeric:
		return featurize.NewNumeric(col)
	case featurize.Image:
		return featurize.NewImage(col, cfg.ImageSize)
	default:
		return featurize.NewText(col, cfg.NumHashBuckets, cfg.Tokens)
	}
}

func tower(cfg Config, m featurize.Modality) []int {
	switch m {
	case featurize.Numeric:
		t := make([]int, *cfg.HiddenLayers)
		for i := range t {
			t[i] = cfg.LatentDim
		}
		return t
	case featurize.Image:
		return cfg.LayerDim
	}
	return nil
}

// encode featurizes every row of f, one vector per input column. Missing
// files stay ErrFileNotFound; other failures are reported as kind.
func encode(ctx context.Context, fz []featurize.Featurizer, f *fr.Frame, kind error) ([][]featurize.Vector, error) {
	out := make([][]featurize.Vector, f.Rows())
	for r := range out {
		if r%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		xs := make([]featurize.Vector, len(fz))
		for i, z := range fz {
			v, err := z.Encode(f, r)
			if errors.Is(err, errs.ErrFileNotFound) {
				return nil, errs.Wrapf(errs.ErrFileNotFound, err, "row %d column %s", r, z.Column())
			}
			if err != nil {
				return nil, errs.Wrapf(kind, err, "row %d column %s", r, z.Column())
			}
			xs[i] = v
		}
		out[r] = xs
	}
	return out, nil
}

// fit trains an artifact without saving it.
func fit(ctx context.Context, cfg Config, train *fr.Frame, p Params) (*Artifact, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("output", cfg.OutputColumn)

	cols := append(append([]string(nil), cfg.InputColumns...), cfg.OutputColumn)
	var missing []string
	for _, c := range cols {
		if !train.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errs.Newf(errs.ErrTraining, "columns %v not in training data", missing)
	}
	data, err := train.Select(cols...)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrTraining, err, "select columns")
	}
	mods := modalities(cfg, data)
	if data, err = clean(ctx, data, cfg.InputColumns, mods, true); err != nil {
		return nil, err
	}
	var labelled []int
	for i := 0; i < data.Rows(); i++ {
		if data.Value(i, cfg.OutputColumn) != nil {
			labelled = append(labelled, i)
		}
	}
	if len(labelled) == 0 {
		return nil, errs.Newf(errs.ErrTraining, "no rows with a value in %s", cfg.OutputColumn)
	}
	data = data.Take(labelled)

	outCS, _ := data.Schema().Lookup(cfg.OutputColumn)
	a := &Artifact{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Config:     cfg,
		Params:     p,
		Task:       InferTask(outCS.Type),
		OutputKind: outCS.Type,
	}
	if a.Task == nn.Classification {
		a.Labels = featurize.FitLabels(data, cfg.OutputColumn)
		if a.Labels.Len() < 2 {
			return nil, errs.Newf(errs.ErrTraining, "%s has a single class %v", cfg.OutputColumn, a.Labels.Classes)
		}
	} else if p.Backend == KNN {
		return nil, errs.Newf(errs.ErrConfiguration, "the knn backend only imputes categorical columns")
	}

	trainF, evalF := data, (*fr.Frame)(nil)
	if ts := *p.TestSplit; ts > 0 && data.Rows() > 1 {
		parts, err := split.Random(data, []float64{1 - ts, ts}, p.Seed)
		if err != nil {
			return nil, err
		}
		if parts[1].Rows() > 0 && parts[0].Rows() > 0 {
			trainF, evalF = parts[0], parts[1]
		}
	}

	for i, col := range cfg.InputColumns {
		z := newFeaturizer(cfg, col, mods[i])
		if err := z.Fit(trainF); err != nil {
			return nil, errs.Wrapf(errs.ErrTraining, err, "featurize %s", col)
		}
		a.featurizers = append(a.featurizers, z)
		a.Features = append(a.Features, z.State())
	}
	trainX, err := encode(ctx, a.featurizers, trainF, errs.ErrTraining)
	if err != nil {
		return nil, err
	}
	trainS, err := a.samples(trainF, trainX)
	if err != nil {
		return nil, err
	}
	var evalS []nn.Sample
	if evalF != nil {
		evalX, err := encode(ctx, a.featurizers, evalF, errs.ErrTraining)
		if err != nil {
			return nil, err
		}
		if evalS, err = a.samples(evalF, evalX); err != nil {
			return nil, err
		}
	} else {
		evalF = trainF
	}

	log.Info("training imputer", "backend", p.Backend, "task", a.Task, "train_rows", trainF.Rows(), "eval_rows", len(evalS), "modalities", mods)
	switch p.Backend {
	case KNN:
		a.Neighbors = newKNNModel(a.featurizers, trainS, a.Labels, p.KNeighbors)
	default:
		if err := a.trainNetwork(ctx, cfg, mods, p, trainS, evalS, log); err != nil {
			return nil, err
		}
	}

	if a.Metrics, err = a.evaluate(ctx, evalF); err != nil {
		return nil, err
	}
	a.Metrics.TrainRows, a.Metrics.EvalRows, a.Metrics.BestEpoch = trainF.Rows(), len(evalS), a.History.BestEpoch
	log.Info("imputer trained", "score", a.Metrics.Score, "values", a.Metrics.Values())
	return a, nil
}

func (a *Artifact) samples(f *fr.Frame, xs [][]featurize.Vector) ([]nn.Sample, error) {
	out := make([]nn.Sample, f.Rows())
	col := a.Config.OutputColumn
	var targets []float64
	if a.Task == nn.Regression && a.Scaler == nil {
		for r := range out {
			v, _ := f.Float(r, col)
			targets = append(targets, v)
		}
		s := featurize.FitScaler(targets)
		a.Scaler = &s
	}
	for r := range out {
		out[r].X = xs[r]
		if a.Task == nn.Regression {
			v, _ := f.Float(r, col)
			out[r].Target = a.Scaler.Scale(v)
			continue
		}
		s, _ := f.String(r, col)
		c, err := a.Labels.Encode(s)
		if err != nil {
			// unseen in the training split; only possible for evaluation rows
			c = -1
		}
		out[r].Class = c
	}
	if a.Task == nn.Classification {
		kept := out[:0]
		for _, s := range out {
			if s.Class >= 0 {
				kept = append(kept, s)
			}
		}
		out = kept
	}
	return out, nil
}

func (a *Artifact) trainNetwork(ctx context.Context, cfg Config, mods []featurize.Modality, p Params, train, eval []nn.Sample, log logger.Logger) error {
	arch := nn.Architecture{Task: a.Task, Hidden: p.FinalFCHiddenUnits}
	for i, z := range a.featurizers {
		arch.Inputs = append(arch.Inputs, z.Width())
		arch.Towers = append(arch.Towers, tower(cfg, mods[i]))
	}
	if a.Task == nn.Classification {
		arch.Outputs = a.Labels.Len()
	}
	net, err := nn.New(arch, p.Seed)
	if err != nil {
		return errs.Wrapf(errs.ErrTraining, err, "build network")
	}
	h, err := net.Train(ctx, train, eval, nn.TrainConfig{
		LearningRate: p.LearningRate,
		WeightDecay:  p.WeightDecay,
		Epochs:       p.NumEpochs,
		BatchSize:    p.BatchSize,
		Patience:     *p.Patience,
		Seed:         p.Seed,
	}, func(st nn.EpochStats) {
		log.Debug("epoch", "epoch", st.Epoch, "train_loss", st.TrainLoss, "val_loss", st.ValLoss)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return errs.Wrapf(errs.ErrTraining, err, "train network")
	}
	a.Network, a.History = net, h
	return nil
}

// evaluate scores the artifact against the labelled rows of f.
func (a *Artifact) evaluate(ctx context.Context, f *fr.Frame) (Metrics, error) {
	preds, err := a.predictRows(ctx, f)
	if err != nil {
		return Metrics{}, err
	}
	col := a.Config.OutputColumn
	if a.Task == nn.Regression {
		truth := make([]float64, f.Rows())
		got := make([]float64, f.Rows())
		for r := range truth {
			truth[r], _ = f.Float(r, col)
			got[r] = preds[r].value
		}
		m, err := metrics.Regress(truth, got)
		if err != nil {
			return Metrics{}, errs.Wrapf(errs.ErrTraining, err, "evaluate")
		}
		return regressionMetrics(m), nil
	}
	truth := make([]string, f.Rows())
	got := make([]string, f.Rows())
	for r := range truth {
		truth[r], _ = f.String(r, col)
		got[r] = preds[r].label
	}
	c, err := metrics.Classify(truth, got)
	if err != nil {
		return Metrics{}, errs.Wrapf(errs.ErrTraining, err, "evaluate")
	}
	return classificationMetrics(c), nil
}
