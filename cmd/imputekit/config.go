package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/imputer"
)

// DataSpec locates a dataset. Type is csv, jsonl or parquet and defaults to
// the path's extension.
type DataSpec struct {
	Path      string `mapstructure:"path"`
	Type      string `mapstructure:"type"`
	HasHeader *bool  `mapstructure:"has_header"`
	Delimiter string `mapstructure:"delimiter"`
}

type HPOConfig struct {
	// Epochs overrides candidates.base.num_epochs when positive.
	Epochs     int                `mapstructure:"epochs"`
	Candidates imputer.Candidates `mapstructure:",squash"`
}

type SplitConfig struct {
	Ratios  []float64  `mapstructure:"ratios"`
	Seed    int64      `mapstructure:"seed"`
	Ordered bool       `mapstructure:"ordered"`
	Outputs []DataSpec `mapstructure:"outputs"`
}

type PredictConfig struct {
	Artifact       string  `mapstructure:"artifact"`
	Suffix         string  `mapstructure:"suffix"`
	ProbaThreshold float64 `mapstructure:"proba_threshold"`
}

type Config struct {
	Input   DataSpec         `mapstructure:"input"`
	Output  DataSpec         `mapstructure:"output"`
	Steps   []map[string]any `mapstructure:"steps"`
	Imputer imputer.Config   `mapstructure:"imputer"`
	Fit     imputer.Params   `mapstructure:"fit"`
	HPO     HPOConfig        `mapstructure:"hpo"`
	Split   SplitConfig      `mapstructure:"split"`
	Predict PredictConfig    `mapstructure:"predict"`
}

// loadConfig reads a YAML, TOML or JSON file, chosen by extension, and decodes
// it into Config. Scalars are converted loosely so "0.1" and 0.1 both work.
func loadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.FromOS(err, path)
	}
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &raw)
	case ".toml":
		err = toml.Unmarshal(b, &raw)
	case ".json":
		err = json.Unmarshal(b, &raw)
	default:
		return nil, errs.Newf(errs.ErrConfiguration, "config %s: unknown format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, errs.Wrapf(errs.ErrConfiguration, err, "parse %s", path)
	}
	cfg := &Config{Fit: imputer.DefaultParams()}
	if err := decode(raw, cfg); err != nil {
		return nil, errs.Wrapf(errs.ErrConfiguration, err, "decode %s", path)
	}
	return cfg, nil
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "build decoder")
	}
	return dec.Decode(in)
}
