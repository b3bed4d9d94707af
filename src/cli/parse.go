package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/triggerNode/BuxTax/src/calculator"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/parsers"
	"github.com/triggerNode/BuxTax/src/processors"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	var (
		mappingPath    string
		categoriesPath string
		exportPath     string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file.csv>",
		Short: "Parse a payout CSV and print its summary",
		Long: `Parse reads a payout summary or transaction log CSV, reports rows it had to
skip and prints totals with the fee breakdown. The normalized records can be
written back out with --export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := root.loadRates()
			if err != nil {
				return err
			}

			var extra []parsers.CategoryConfig
			if categoriesPath != "" {
				if extra, err = parsers.LoadCategoryMappings(categoriesPath); err != nil {
					return err
				}
			}

			var mapping *models.ColumnMapping
			if mappingPath != "" {
				data, err := os.ReadFile(mappingPath)
				if err != nil {
					return fmt.Errorf("error reading mapping file '%s': %w", mappingPath, err)
				}
				mapping = &models.ColumnMapping{}
				if err := json.Unmarshal(data, mapping); err != nil {
					return fmt.Errorf("error parsing mapping file '%s': %w", mappingPath, err)
				}
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			result := parsers.NewCSVParser(r, parsers.NewCategorizer(extra...)).Parse(file, mapping)
			var mappingProblems []string
			if len(result.Headers) > 0 {
				mappingProblems = parsers.ValidateMapping(result.Mapping, result.Headers)
			}

			pulse, err := processors.NewPulseProcessor(r).Summarize(result.Data, processors.WindowAll, time.Now())
			if err != nil {
				return err
			}

			if exportPath != "" {
				if err := writeExport(exportPath, result.Data); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]interface{}{"result": result, "pulse": pulse, "mapping_problems": mappingProblems})
			}

			if len(mappingProblems) > 0 {
				fmt.Fprintln(out, "Mapping problems:")
				for _, msg := range mappingProblems {
					fmt.Fprintf(out, "  %s\n", msg)
				}
			}
			fmt.Fprintf(out, "Format:     %s\n", result.Format)
			fmt.Fprintf(out, "Rows:       %d total, %d valid\n", result.Summary.TotalRows, result.Summary.ValidRows)
			if result.Summary.DateRange.Start != "" {
				fmt.Fprintf(out, "Date range: %s to %s\n", result.Summary.DateRange.Start, result.Summary.DateRange.End)
			}
			fmt.Fprintf(out, "Gross:      %s\n", calculator.FormatUnits(pulse.TotalGross))
			fmt.Fprintf(out, "Net:        %s\n", calculator.FormatUnits(pulse.TotalNet))
			fmt.Fprintf(out, "USD:        %s\n", calculator.FormatUSD(pulse.TotalUSD))
			fmt.Fprintf(out, "Take rate:  %s\n", calculator.FormatPercent(pulse.EffectiveTakeRate))
			for _, fee := range pulse.FeeBreakdown {
				fmt.Fprintf(out, "  %-18s %s (%s)\n", fee.Label, calculator.FormatUnits(fee.TotalUnits), calculator.FormatPercent(fee.Percentage))
			}
			fmt.Fprintln(out, result.Message())
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingPath, "mapping", "", "JSON file with the column mapping (detected when omitted)")
	cmd.Flags().StringVar(&categoriesPath, "categories", "", "YAML file with extra transaction category keywords")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the normalized records to this CSV file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parse result as JSON")
	return cmd
}

func writeExport(path string, records []models.PayoutRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file '%s': %w", path, err)
	}
	if err := parsers.ExportCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
