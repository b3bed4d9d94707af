package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/triggerNode/BuxTax/src/calculator"
	"github.com/triggerNode/BuxTax/src/models"
)

func newCalcCmd(root *rootOptions) *cobra.Command {
	var (
		flags       costFlags
		gross       float64
		asJSON      bool
		multipliers models.SensitivityMultipliers
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Estimate the USD payout for a gross Robux amount",
		Example: `  buxtax calc --gross 10000 --ad-spend 1000
  buxtax calc --gross 5000 --category ugcCreator --json
  buxtax calc --gross 10000 --what-if-gross 1.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := models.ParseUserCategory(flags.category)
			if err != nil {
				return err
			}
			r, err := root.loadRates()
			if err != nil {
				return err
			}
			calc := calculator.NewProfitCalculator(r)
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("what-if-gross") || cmd.Flags().Changed("what-if-ad-spend") || cmd.Flags().Changed("what-if-other-costs") {
				res, err := calc.Sensitivity(gross, category, flags.costs, multipliers)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(out, res)
				}
				printResult(out, "Base", res.Base)
				printResult(out, "Adjusted", res.Adjusted)
				fmt.Fprintf(out, "Payout change:    %s\n", calculator.FormatPercent(res.PayoutChangePercent))
				fmt.Fprintf(out, "Take rate change: %s\n", calculator.FormatPercent(res.TakeRateChangePercent))
				return nil
			}

			res, err := calc.CalculateProfit(gross, category, flags.costs)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, res)
			}
			printResult(out, "Result", res)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&gross, "gross", 0, "gross earnings in Robux")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().Float64Var(&multipliers.Gross, "what-if-gross", 1, "scale gross earnings (0.5 to 2)")
	cmd.Flags().Float64Var(&multipliers.AdSpend, "what-if-ad-spend", 1, "scale ad spend (0.5 to 2)")
	cmd.Flags().Float64Var(&multipliers.OtherCosts, "what-if-other-costs", 1, "scale other costs (0.5 to 2)")
	_ = cmd.MarkFlagRequired("gross")
	return cmd
}

func newGoalCmd(root *rootOptions) *cobra.Command {
	var (
		flags  costFlags
		target float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "goal",
		Short:   "Find the gross Robux needed to reach a USD payout",
		Example: "  buxtax goal --target 100 --ad-spend 500",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := models.ParseUserCategory(flags.category)
			if err != nil {
				return err
			}
			r, err := root.loadRates()
			if err != nil {
				return err
			}
			calc := calculator.NewProfitCalculator(r)

			required, err := calc.CalculateRequiredGross(target, category, flags.costs)
			if err != nil {
				return err
			}
			check, err := calc.CalculateProfit(required, category, flags.costs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]interface{}{"required_gross": required, "check": check})
			}
			fmt.Fprintf(out, "Required gross: %s\n", calculator.FormatUnits(required))
			fmt.Fprintf(out, "Pays out:       %s\n", calculator.FormatUSD(check.USDPayout))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&target, "target", 0, "USD payout to reach")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func printResult(w io.Writer, title string, res models.CalculationResult) {
	fmt.Fprintln(w, title)
	rows := []struct {
		label, value string
	}{
		{"Gross:", calculator.FormatUnits(res.GrossAmount)},
		{"Marketplace fee:", calculator.FormatUnits(res.Breakdown.MarketplaceFee)},
		{"Total costs:", calculator.FormatUnits(res.TotalCosts)},
		{"Net:", calculator.FormatUnits(res.NetAmount)},
		{"USD payout:", calculator.FormatUSD(res.USDPayout)},
		{"Take rate:", calculator.FormatPercent(res.EffectiveTakeRatePercent)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-17s%s\n", row.label, row.value)
	}
}
