package imputer

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/hpo"
	"github.com/wdm0006/imputekit/pkg/io/csvio"
	"github.com/wdm0006/imputekit/pkg/logger"
)

const (
	trialsDir   = "trials"
	resultsFile = "hpo_results.csv"
)

// Axis names of the searched settings, in grid order.
const (
	AxisLearningRate       = "learning_rate"
	AxisFinalFCHiddenUnits = "final_fc_hidden_units"
	AxisNumHashBuckets     = "num_hash_buckets"
	AxisTokens             = "tokens"
	AxisLatentDim          = "latent_dim"
	AxisHiddenLayers       = "hidden_layers"
	AxisLayerDim           = "layer_dim"
)

// Grid builds the search grid from the non-empty candidate lists.
func (c Candidates) Grid() *hpo.Grid {
	g := &hpo.Grid{}
	g.Add(AxisLearningRate, anys(c.LearningRate)...)
	g.Add(AxisFinalFCHiddenUnits, anys(c.FinalFCHiddenUnits)...)
	g.Add(AxisNumHashBuckets, anys(c.NumHashBuckets)...)
	tokens := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		tokens[i] = string(t)
	}
	g.Add(AxisTokens, anys(tokens)...)
	g.Add(AxisLatentDim, anys(c.LatentDim)...)
	g.Add(AxisHiddenLayers, anys(c.HiddenLayers)...)
	g.Add(AxisLayerDim, anys(c.LayerDim)...)
	return g
}

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// trial applies one combination on top of the imputer's config and base params.
func (im *Imputer) trial(c Candidates, epochs int, hp hpo.Params) (Config, Params) {
	cfg := im.cfg
	cfg.NumHashBuckets = hp.Int(AxisNumHashBuckets, cfg.NumHashBuckets)
	cfg.Tokens = featurize.Tokens(hp.String(AxisTokens, string(cfg.Tokens)))
	cfg.LatentDim = hp.Int(AxisLatentDim, cfg.LatentDim)
	cfg.HiddenLayers = Ptr(hp.Int(AxisHiddenLayers, *cfg.HiddenLayers))
	cfg.LayerDim = hp.Ints(AxisLayerDim, cfg.LayerDim)

	p := c.Base
	if epochs > 0 {
		p.NumEpochs = epochs
	}
	p.LearningRate = hp.Float(AxisLearningRate, p.LearningRate)
	p.FinalFCHiddenUnits = hp.Ints(AxisFinalFCHiddenUnits, p.FinalFCHiddenUnits)
	return cfg, p
}

// sample keeps at most n rows of f, chosen with seed and kept in input order.
func sample(f *fr.Frame, n int, seed int64) *fr.Frame {
	if n <= 0 || f.Rows() <= n {
		return f
	}
	idx := rand.New(rand.NewSource(seed)).Perm(f.Rows())[:n]
	sort.Ints(idx)
	return f.Take(idx)
}

// FitHPO trains one artifact per candidate combination, keeps the one with
// the best validation score in the output path and writes a results table
// next to it. epochs overrides the base params when positive.
func (im *Imputer) FitHPO(ctx context.Context, train *fr.Frame, epochs int, c Candidates) (*Artifact, *hpo.Result, error) {
	fl, err := lockDir(im.cfg.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = fl.Unlock() }()

	log := logger.FromContext(ctx).With("output", im.cfg.OutputColumn)
	data := sample(train, c.HPOMaxTrainSamples, c.Base.Seed)
	g := c.Grid()
	log.Info("starting search", "trials", g.Size(), "rows", data.Rows())

	dirs := make([]string, 0, g.Size())
	res, err := hpo.Search(ctx, g, func(ctx context.Context, i int, hp hpo.Params) (hpo.Outcome, error) {
		cfg, p := im.trial(c, epochs, hp)
		if err := cfg.validate(); err != nil {
			return hpo.Outcome{}, err
		}
		a, err := fit(ctx, cfg, data, p)
		if err != nil {
			return hpo.Outcome{}, err
		}
		dir := filepath.Join(im.cfg.OutputPath, trialsDir, fmt.Sprintf("%03d", i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return hpo.Outcome{}, errors.Wrapf(err, "create %s", dir)
		}
		if err := a.save(dir); err != nil {
			return hpo.Outcome{}, err
		}
		dirs = append(dirs, dir)
		return hpo.Outcome{Score: a.Metrics.Score, Metrics: a.Metrics.Values()}, nil
	}, hpo.Options{OnTrial: func(r hpo.Report) {
		log.Info("trial finished", "trial", r.Index, "params", r.Params.Key(), "score", r.Score, "duration", r.Duration)
		if c.OnTrial != nil {
			c.OnTrial(r)
		}
	}})
	if err != nil {
		return nil, nil, err
	}

	best := dirs[res.Best]
	for _, name := range []string{artifactFile, metricsFile} {
		if err := copy.Copy(filepath.Join(best, name), filepath.Join(im.cfg.OutputPath, name)); err != nil {
			return nil, nil, errors.Wrapf(err, "promote trial %d", res.Best)
		}
	}
	if err := writeResults(filepath.Join(im.cfg.OutputPath, resultsFile), g, res); err != nil {
		return nil, nil, err
	}
	a, err := Load(im.cfg.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	log.Info("search finished", "best", res.Best, "params", res.BestReport().Params.Key(), "score", res.BestReport().Score)
	return a, res, nil
}

// ResultsFrame tabulates a search: one row per trial with its id, the
// searched values, the score and every metric.
func ResultsFrame(g *hpo.Grid, res *hpo.Result) (*fr.Frame, error) {
	order := []string{"trial", "id"}
	for _, a := range g.Axes {
		order = append(order, a.Name)
	}
	order = append(order, "score")
	var metricNames []string
	if len(res.Trials) > 0 {
		for k := range res.Trials[0].Metrics {
			metricNames = append(metricNames, k)
		}
		sort.Strings(metricNames)
	}
	order = append(order, metricNames...)

	recs := make([]map[string]any, len(res.Trials))
	for i, t := range res.Trials {
		rec := map[string]any{"trial": int64(t.Index), "id": t.ID, "score": t.Score}
		for _, a := range g.Axes {
			rec[a.Name] = fmt.Sprint(t.Params[a.Name])
		}
		for _, k := range metricNames {
			rec[k] = t.Metrics[k]
		}
		recs[i] = rec
	}
	return fr.FromRecords(recs, order...)
}

func writeResults(path string, g *hpo.Grid, res *hpo.Result) error {
	f, err := ResultsFrame(g, res)
	if err != nil {
		return errs.Wrapf(errs.ErrTraining, err, "tabulate search")
	}
	return errors.Wrapf(csvio.WriteAll(path, f, csvio.WriterOptions{}), "write %s", path)
}
