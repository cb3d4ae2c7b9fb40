package main

import (
	"fmt"
	"strings"

	"github.com/annuitet/loan-calculator/internal/config"
	"github.com/annuitet/loan-calculator/internal/output"
	"github.com/spf13/cobra"
)

func newExampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example configuration comparing a refinanced F5 loan with an F10 loan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "example_config.yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			cfg := config.NewInputParser().CreateExampleConfiguration()
			if err := output.SaveConfiguration(cfg, filename); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", filename)
			return nil
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the available report formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Formats: %s\n", strings.Join(output.AvailableFormatterNames(), ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "Aliases: %s\n", strings.Join(output.AvailableFormatAliases(), ", "))
		},
	}
}
