package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wdm0006/imputekit/adapters/gota"
	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/hpo"
	"github.com/wdm0006/imputekit/pkg/imputer"
	"github.com/wdm0006/imputekit/pkg/logger"
	"github.com/wdm0006/imputekit/pkg/profile"
	"github.com/wdm0006/imputekit/pkg/split"
)

// cleaned reads the config's input and runs its cleaning steps.
func cleaned(ctx context.Context, cfg *Config) (*fr.Frame, error) {
	f, err := readFrame(cfg.Input)
	if err != nil {
		return nil, err
	}
	p, err := buildPipeline(ctx, cfg.Steps)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("cleaning input", "rows", f.Rows(), "steps", p.Steps())
	return p.Run(ctx, f)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fit",
		Short: "Train an imputer on the input dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.configFor()
			if err != nil {
				return err
			}
			im, err := imputer.New(cfg.Imputer)
			if err != nil {
				return err
			}
			data, err := cleaned(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a, err := im.Fit(cmd.Context(), data, cfg.Fit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.Metrics)
		},
	}
}

func newHPOCmd(o *rootOptions) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "hpo",
		Short: "Search hyperparameters and keep the best imputer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.configFor()
			if err != nil {
				return err
			}
			im, err := imputer.New(cfg.Imputer)
			if err != nil {
				return err
			}
			data, err := cleaned(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c := cfg.HPO.Candidates
			if !quiet {
				bar := progressbar.NewOptions(c.Grid().Size(),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("trials"),
					progressbar.OptionShowCount(),
				)
				defer func() { _ = bar.Finish() }()
				c.OnTrial = func(hpo.Report) { _ = bar.Add(1) }
			}
			_, res, err := im.FitHPO(cmd.Context(), data, cfg.HPO.Epochs, c)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.BestReport())
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

// predictStep adds prediction columns to every chunk it sees.
type predictStep struct {
	artifact *imputer.Artifact
	opt      imputer.PredictOptions
}

func (t *predictStep) Name() string { return "predict" }

func (t *predictStep) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	return t.artifact.Predict(ctx, f, t.opt)
}

func newPredictCmd(o *rootOptions) *cobra.Command {
	var (
		artifact string
		chunk    int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Add imputed columns to the input dataset and write the output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.configFor()
			if err != nil {
				return err
			}
			path := firstNonEmpty(artifact, cfg.Predict.Artifact, cfg.Imputer.OutputPath)
			if path == "" {
				return usageError{errors.New("no artifact: set --artifact, predict.artifact or imputer.output_path")}
			}
			a, err := imputer.Load(path)
			if err != nil {
				return err
			}
			p, err := buildPipeline(cmd.Context(), cfg.Steps)
			if err != nil {
				return err
			}
			p.Add(&predictStep{artifact: a, opt: imputer.PredictOptions{Suffix: cfg.Predict.Suffix, ProbaThreshold: cfg.Predict.ProbaThreshold}})
			log := logger.FromContext(cmd.Context()).With("artifact", a.ID)

			if chunk > 0 {
				src, err := openSource(cfg.Input, chunk)
				if err != nil {
					return err
				}
				defer func() { _ = src.Close() }()
				sink, err := openSink(cfg.Output)
				if err != nil {
					return err
				}
				n, err := fr.RunStream(cmd.Context(), p, src, sink)
				if err != nil {
					return err
				}
				log.Info("predicted", "rows", n, "output", cfg.Output.Path)
				return nil
			}
			data, err := readFrame(cfg.Input)
			if err != nil {
				return err
			}
			out, err := p.Run(cmd.Context(), data)
			if err != nil {
				return err
			}
			if err := writeFrame(cfg.Output, out); err != nil {
				return err
			}
			log.Info("predicted", "rows", out.Rows(), "output", cfg.Output.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&artifact, "artifact", "", "artifact directory; defaults to predict.artifact or imputer.output_path")
	cmd.Flags().IntVar(&chunk, "chunk-size", 0, "stream with this many rows per chunk; 0 reads the whole input")
	return cmd
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func newSplitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split",
		Short: "Split the input dataset by ratios into the configured outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.configFor()
			if err != nil {
				return err
			}
			s := cfg.Split
			if len(s.Outputs) != len(s.Ratios) {
				return errs.Newf(errs.ErrConfiguration, "split has %d ratios but %d outputs", len(s.Ratios), len(s.Outputs))
			}
			data, err := cleaned(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			var parts []*fr.Frame
			if s.Ordered {
				parts, err = split.Ordered(data, s.Ratios)
			} else {
				parts, err = split.Random(data, s.Ratios, s.Seed)
			}
			if err != nil {
				return err
			}
			log := logger.FromContext(cmd.Context())
			for i, part := range parts {
				if err := writeFrame(s.Outputs[i], part); err != nil {
					return err
				}
				log.Info("wrote split", "path", s.Outputs[i].Path, "rows", part.Rows())
			}
			return nil
		},
	}
}

func newDescribeCmd(o *rootOptions) *cobra.Command {
	var (
		asJSON bool
		table  bool
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Profile the input dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.configFor()
			if err != nil {
				return err
			}
			data, err := cleaned(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			prof := profile.Of(data)
			if asJSON {
				return printJSON(w, prof.ReportJSON())
			}
			fmt.Fprint(w, prof.ReportText())
			if table {
				fmt.Fprintln(w, gota.Describe(data).String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	cmd.Flags().BoolVar(&table, "table", false, "also print summary statistics as a table")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "imputekit", version)
		},
	}
}
