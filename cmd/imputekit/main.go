// Command imputekit trains column imputers on tabular datasets and applies
// them, driven by a YAML, TOML or JSON config file.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/wdm0006/imputekit/pkg/errs"
	"github.com/wdm0006/imputekit/pkg/logger"
)

var version = "0.1.0-dev"

type rootOptions struct {
	config   string
	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "imputekit",
		Short:         "Train and apply column imputers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			l := logger.Setup(opts.logLevel, opts.logJSON)
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), l))
		},
	}
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "path to a YAML, TOML or JSON config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		newFitCmd(opts),
		newHPOCmd(opts),
		newPredictCmd(opts),
		newSplitCmd(opts),
		newDescribeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// configFor loads the --config file, which every data command needs.
func (o *rootOptions) configFor() (*Config, error) {
	if o.config == "" {
		return nil, usageError{errors.New("no config provided; try --config <file>")}
	}
	return loadConfig(o.config)
}

type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func exitCode(err error) int {
	var u usageError
	if errors.As(err, &u) || errors.Is(err, errs.ErrConfiguration) {
		return 2
	}
	return 1
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Default().Error("imputekit failed", "err", err)
		os.Exit(exitCode(err))
	}
}
