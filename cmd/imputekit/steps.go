package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/imputer"
	"github.com/wdm0006/imputekit/pkg/logger"
	imp "github.com/wdm0006/imputekit/pkg/transform/impute"
	outl "github.com/wdm0006/imputekit/pkg/transform/outliers"
	std "github.com/wdm0006/imputekit/pkg/transform/standardize"
	val "github.com/wdm0006/imputekit/pkg/transform/validate"
)

type columnStep struct {
	Column string `mapstructure:"column"`
}

type boundStep struct {
	Column string   `mapstructure:"column"`
	Min    *float64 `mapstructure:"min"`
	Max    *float64 `mapstructure:"max"`
}

// buildPipeline turns the config's steps, each a single-key map, into a
// pipeline. Unknown step names are logged and skipped.
func buildPipeline(ctx context.Context, steps []map[string]any) (*fr.Pipeline, error) {
	log := logger.FromContext(ctx)
	p := fr.NewPipeline()
	for i, step := range steps {
		if len(step) != 1 {
			return nil, errs.Newf(errs.ErrConfiguration, "step %d must have exactly one key, has %d", i, len(step))
		}
		for name, body := range step {
			t, err := newStep(name, body)
			if err != nil {
				return nil, errs.Wrapf(errs.ErrConfiguration, err, "step %d (%s)", i, name)
			}
			if t == nil {
				log.Warn("unknown step ignored", "step", name)
				continue
			}
			p.Add(t)
		}
	}
	return p, nil
}

func newStep(name string, body any) (fr.Transform, error) {
	switch name {
	case "impute_constant":
		var s struct {
			Column string `mapstructure:"column"`
			Value  any    `mapstructure:"value"`
		}
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		return &imp.Constant{Column: s.Column, Value: s.Value}, nil
	case "impute_mean", "impute_median", "impute_mode", "trim", "lower":
		var s columnStep
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		switch name {
		case "impute_mean":
			return &imp.Mean{Column: s.Column}, nil
		case "impute_median":
			return &imp.Median{Column: s.Column}, nil
		case "impute_mode":
			return &imp.Mode{Column: s.Column}, nil
		case "trim":
			return &std.Trim{Column: s.Column}, nil
		default:
			return &std.Lower{Column: s.Column}, nil
		}
	case "regex_replace":
		var s struct {
			Column  string `mapstructure:"column"`
			Pattern string `mapstructure:"pattern"`
			Replace string `mapstructure:"replace"`
		}
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		return &std.RegexReplace{Column: s.Column, Pattern: s.Pattern, Replace: s.Replace}, nil
	case "map_values":
		var s struct {
			Column string            `mapstructure:"column"`
			Map    map[string]string `mapstructure:"map"`
		}
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		return &std.MapValues{Column: s.Column, Map: s.Map}, nil
	case "validate_in":
		var s struct {
			Column string   `mapstructure:"column"`
			Values []string `mapstructure:"values"`
		}
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		return val.NewInSet(s.Column, s.Values), nil
	case "validate_range", "cap_range":
		var s boundStep
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		if name == "cap_range" {
			return &outl.Cap{Column: s.Column, Min: s.Min, Max: s.Max}, nil
		}
		return &val.Range{Column: s.Column, Min: s.Min, Max: s.Max}, nil
	case "impute_model":
		var s struct {
			Artifact       string  `mapstructure:"artifact"`
			ProbaThreshold float64 `mapstructure:"proba_threshold"`
		}
		if err := decode(body, &s); err != nil {
			return nil, err
		}
		a, err := imputer.Load(s.Artifact)
		if err != nil {
			return nil, errors.Wrap(err, "load artifact")
		}
		return &imputer.Fill{Artifact: a, ProbaThreshold: s.ProbaThreshold}, nil
	}
	return nil, nil
}
