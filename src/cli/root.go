// Package cli holds the buxtax command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/triggerNode/BuxTax/src/config"
	"github.com/triggerNode/BuxTax/src/models"
	"github.com/triggerNode/BuxTax/src/rates"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "buxtax"

type rootOptions struct {
	ratesPath string
}

// NewRootCmd builds the buxtax command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Roblox creator payout calculator",
		Long: `BuxTax estimates what a Roblox creator actually takes home after the
marketplace fee and business costs, converted to USD at the DevEx rate.

It can run the calculator from the command line, parse payout CSV exports,
or serve the HTTP API.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ratesPath, "rates", "", "JSON file overriding the built-in rate constants")

	cmd.AddCommand(
		newServeCmd(opts),
		newCalcCmd(opts),
		newGoalCmd(opts),
		newParseCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// applyTo lets command-line flags take precedence over the environment.
func (o *rootOptions) applyTo(cfg *config.AppConfig) {
	if o.ratesPath != "" {
		cfg.RatesPath = o.ratesPath
	}
}

func (o *rootOptions) loadRates() (rates.RateConstants, error) {
	return rates.Load(o.ratesPath)
}

// costFlags are shared by calc and goal.
type costFlags struct {
	category string
	costs    models.CostInputs
}

func (c *costFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.category, "category", string(models.PrimaryCreator), "creator category (gameDev or ugcCreator)")
	cmd.Flags().Float64Var(&c.costs.AdSpend, "ad-spend", 0, "ad spend in Robux")
	cmd.Flags().Float64Var(&c.costs.GroupSplits, "group-splits", 0, "group split payouts in Robux")
	cmd.Flags().Float64Var(&c.costs.AffiliatePayouts, "affiliate-payouts", 0, "affiliate payouts in Robux")
	cmd.Flags().Float64Var(&c.costs.Refunds, "refunds", 0, "refunds in Robux")
	cmd.Flags().Float64Var(&c.costs.OtherCosts, "other-costs", 0, "other costs in Robux")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
