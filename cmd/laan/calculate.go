package main

import (
	"fmt"

	"github.com/annuitet/loan-calculator/internal/config"
	"github.com/annuitet/loan-calculator/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCalculateCmd(a *app) *cobra.Command {
	var (
		configFile string
		format     string
		outputDir  string
		rows       bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate and compare the loan scenarios of a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(configFile)
			if err != nil {
				return err
			}
			a.logger.Debug("configuration loaded", zap.String("file", configFile), zap.Int("scenarios", len(cfg.Scenarios)))

			engine := a.newEngine()
			engine.Debug = rows
			results, err := engine.RunScenarios(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("calculation failed: %w", err)
			}

			if outputDir == "" {
				return output.Render(cmd.OutOrStdout(), results, format)
			}
			paths, err := output.GenerateReport(results, format, outputDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "configuration file (YAML)")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "report format (see 'laan formats')")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "write the report to a timestamped file in this directory")
	cmd.Flags().BoolVar(&rows, "log-rows", false, "log every installment row (with --verbose)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
