package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/featurize"
	"github.com/wdm0006/imputekit/pkg/io/csvio"
	"github.com/wdm0006/imputekit/pkg/io/jsonlio"
	"github.com/wdm0006/imputekit/pkg/synth"
)

func write(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const yamlConfig = `
input:
  path: data.csv
imputer:
  input_columns: [title, text]
  output_column: finish
  output_path: model
  num_hash_buckets: 128
  tokens: words
fit:
  num_epochs: 2
  learning_rate: "0.01"
hpo:
  epochs: 1
  latent_dim: [4, 8]
  layer_dim: [[8], [16]]
split:
  ratios: [0.8, 0.2]
  seed: 3
`

const tomlConfig = `
[input]
path = "data.csv"

[imputer]
input_columns = ["title", "text"]
output_column = "finish"
output_path = "model"
num_hash_buckets = 128
tokens = "words"

[fit]
num_epochs = 2
learning_rate = 0.01

[hpo]
epochs = 1
latent_dim = [4, 8]
layer_dim = [[8], [16]]

[split]
ratios = [0.8, 0.2]
seed = 3
`

const jsonConfig = `{
  "input": {"path": "data.csv"},
  "imputer": {"input_columns": ["title", "text"], "output_column": "finish", "output_path": "model", "num_hash_buckets": 128, "tokens": "words"},
  "fit": {"num_epochs": 2, "learning_rate": 0.01},
  "hpo": {"epochs": 1, "latent_dim": [4, 8], "layer_dim": [[8], [16]]},
  "split": {"ratios": [0.8, 0.2], "seed": 3}
}`

func TestLoadConfigFormats(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"c.yaml": yamlConfig, "c.toml": tomlConfig, "c.json": jsonConfig} {
		t.Run(name, func(t *testing.T) {
			cfg, err := loadConfig(write(t, filepath.Join(dir, name), body))
			require.NoError(t, err)
			assert.Equal(t, "data.csv", cfg.Input.Path)
			assert.Equal(t, []string{"title", "text"}, cfg.Imputer.InputColumns)
			assert.Equal(t, featurize.Words, cfg.Imputer.Tokens)
			assert.Equal(t, 128, cfg.Imputer.NumHashBuckets)
			assert.Equal(t, 2, cfg.Fit.NumEpochs)
			assert.Equal(t, 0.01, cfg.Fit.LearningRate)
			assert.Equal(t, 16, cfg.Fit.BatchSize, "defaults survive")
			assert.Equal(t, 1, cfg.HPO.Epochs)
			assert.Equal(t, []int{4, 8}, cfg.HPO.Candidates.LatentDim)
			assert.Equal(t, [][]int{{8}, {16}}, cfg.HPO.Candidates.LayerDim)
			assert.Equal(t, []float64{0.8, 0.2}, cfg.Split.Ratios)
			assert.Equal(t, int64(3), cfg.Split.Seed)
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, errs.ErrFileNotFound), "%v", err)

	_, err = loadConfig(write(t, filepath.Join(dir, "c.ini"), "x=1"))
	assert.True(t, errors.Is(err, errs.ErrConfiguration), "%v", err)

	_, err = loadConfig(write(t, filepath.Join(dir, "typo.yaml"), "imputer:\n  input_colums: [a]\n"))
	assert.True(t, errors.Is(err, errs.ErrConfiguration), "%v", err)
}

func TestBuildPipeline(t *testing.T) {
	steps := []map[string]any{
		{"trim": map[string]any{"column": "title"}},
		{"lower": map[string]any{"column": "title"}},
		{"impute_constant": map[string]any{"column": "finish", "value": "unknown"}},
		{"cap_range": map[string]any{"column": "x", "min": 0, "max": "10"}},
		{"no_such_step": map[string]any{}},
	}
	p, err := buildPipeline(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, []string{"trim", "lower", "impute_constant", "cap_range"}, p.Steps())

	_, err = buildPipeline(context.Background(), []map[string]any{{"trim": map[string]any{}, "lower": map[string]any{}}})
	assert.True(t, errors.Is(err, errs.ErrConfiguration), "%v", err)

	_, err = buildPipeline(context.Background(), []map[string]any{{"impute_model": map[string]any{"artifact": t.TempDir()}}})
	assert.True(t, errors.Is(err, errs.ErrFileNotFound), "%v", err)
}

func TestDataSpecFormat(t *testing.T) {
	assert.Equal(t, "csv", DataSpec{Path: "a.csv.gz"}.format())
	assert.Equal(t, "jsonl", DataSpec{Path: "a.jsonl"}.format())
	assert.Equal(t, "parquet", DataSpec{Path: "a.parquet"}.format())
	assert.Equal(t, "jsonl", DataSpec{Path: "a.txt", Type: "JSONL"}.format())
	assert.Error(t, DataSpec{Path: "a", Type: "xlsx"}.check())
	assert.Error(t, DataSpec{}.check())
}

// project writes a 60 row dataset and a config pointing at it.
func project(t *testing.T) (dir, config string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, csvio.WriteAll(filepath.Join(dir, "data.csv"), synth.Finish(60, 5), csvio.WriterOptions{}))
	body := fmt.Sprintf(`
input:
  path: %[1]s/data.csv
output:
  path: %[1]s/out.csv
steps:
  - trim: {column: text}
imputer:
  input_columns: [title, text]
  output_column: finish
  output_path: %[1]s/model
  num_hash_buckets: 128
fit:
  num_epochs: 2
  final_fc_hidden_units: [8]
  seed: 1
hpo:
  epochs: 1
  learning_rate: [0.01, 0.001]
  base:
    final_fc_hidden_units: [8]
split:
  ratios: [0.5, 0.5]
  seed: 2
  outputs:
    - path: %[1]s/a.jsonl
    - path: %[1]s/b.parquet
`, dir)
	return dir, write(t, filepath.Join(dir, "imputekit.yaml"), body)
}

func TestFitAndPredictCommands(t *testing.T) {
	dir, config := project(t)

	out, err := run(t, "fit", "--config", config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"score"`)

	_, err = run(t, "predict", "-c", config, "--log-level", "error")
	require.NoError(t, err)
	pred, err := csvio.Load(filepath.Join(dir, "out.csv"), csvio.ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, 60, pred.Rows())
	assert.True(t, pred.Has("finish", "finish_imputed", "finish_imputed_proba"))

	streamed := filepath.Join(dir, "streamed.yaml")
	b, err := os.ReadFile(config)
	require.NoError(t, err)
	write(t, streamed, string(bytes.Replace(b, []byte("out.csv"), []byte("out.jsonl"), 1)))
	_, err = run(t, "predict", "-c", streamed, "--chunk-size", "16", "--log-level", "error")
	require.NoError(t, err)
	got, err := jsonlio.Load(filepath.Join(dir, "out.jsonl"), jsonlio.ReaderOptions{SampleRows: 100})
	require.NoError(t, err)
	assert.Equal(t, 60, got.Rows())
	assert.True(t, got.Has("finish_imputed"))
}

func TestHPOCommand(t *testing.T) {
	dir, config := project(t)
	out, err := run(t, "hpo", "-c", config, "-q", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"learning_rate"`)
	_, err = os.Stat(filepath.Join(dir, "model", "hpo_results.csv"))
	assert.NoError(t, err)
}

func TestSplitCommand(t *testing.T) {
	dir, config := project(t)
	_, err := run(t, "split", "-c", config, "--log-level", "error")
	require.NoError(t, err)
	a, err := jsonlio.Load(filepath.Join(dir, "a.jsonl"), jsonlio.ReaderOptions{SampleRows: 100})
	require.NoError(t, err)
	assert.Equal(t, 30, a.Rows())
	_, err = os.Stat(filepath.Join(dir, "b.parquet"))
	assert.NoError(t, err)
}

func TestDescribeAndVersion(t *testing.T) {
	_, config := project(t)
	out, err := run(t, "describe", "-c", config, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile Summary")
	assert.Contains(t, out, "finish")

	out, err = run(t, "describe", "-c", config, "--json", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"columns"`)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "imputekit "+version+"\n", out)
}

func TestExitCodes(t *testing.T) {
	_, err := run(t, "fit", "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
	assert.Equal(t, 1, exitCode(errs.Newf(errs.ErrTraining, "diverged")))
	assert.Equal(t, 2, exitCode(errs.Newf(errs.ErrConfiguration, "bad")))
}
