package main

import (
	"fmt"
	"os"

	"github.com/annuitet/loan-calculator/internal/calculation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by all subcommands.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "laan",
		Short:         "Annuity loan repayment plans with grace periods, fees, tax deduction and refinancing",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log calculation details to stderr")

	root.AddCommand(
		newCalculateCmd(a),
		newScheduleCmd(a),
		newExampleCmd(a),
		newFormatsCmd(),
		newServeCmd(a),
	)
	return root
}

// newLogger returns a development logger on stderr. Without --verbose only
// warnings and errors are shown.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func (a *app) newEngine() *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngine()
	engine.SetLogger(a.logger.Named("engine").Sugar())
	return engine
}
