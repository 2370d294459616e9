package main

import (
	"fmt"

	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/iwvelando/company-valuation/pkg/output"
	"github.com/iwvelando/company-valuation/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "project <base-revenue>",
		Short: "Project five years of revenue and the discounted value",
		Example: `  valuation project 100000
  valuation project '$1,250,000' --output-format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			// CLI override takes precedence over config
			format := conf.Output.Format
			if outputFormat != "" {
				format = outputFormat
			}
			if format == "" {
				format = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			calculator, err := projection.NewCalculator(logger, conf.Projection)
			if err != nil {
				return err
			}
			result, err := calculator.ProjectInput(args[0])
			if err != nil {
				logger.Error("failed to compute projection",
					zap.String("op", "main.project"),
					zap.Error(err),
				)
				return fmt.Errorf("failed to compute projection: %w", err)
			}

			switch format {
			case constants.OutputFormatPretty:
				output.PrettyFormat(cmd.OutOrStdout(), result)
			case constants.OutputFormatCSV:
				output.CsvFormat(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv")
	return cmd
}
