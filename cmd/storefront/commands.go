// AngelaMos | 2026
// commands.go

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/storefront"
)

func period(annual bool) pricing.BillingPeriod {
	return pricing.PeriodFromAnnual(annual)
}

func newTiersCommand(a *app) *cobra.Command {
	var (
		role   string
		annual bool
	)

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "List the plans available to a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf := a.storefront(cmd)
			sf.SetPeriod(period(annual))

			tiers, err := sf.Catalog().Tiers(cmd.Context(), role)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTiers(tiers, sf))
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "", "talent, manager, producer or agent")
	cmd.Flags().BoolVar(&annual, "annual", false, "show annual prices")
	return cmd
}

func renderTiers(tiers []pricing.TierResponse, sf *storefront.Storefront) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Plan", "Price", "Savings", "Features"})

	for _, t := range tiers {
		d := sf.Display(t)

		savings := ""
		if d.PercentSavings != nil && *d.PercentSavings > 0 {
			savings = strconv.Itoa(*d.PercentSavings) + "%"
		}

		tw.AppendRow(table.Row{t.ID, t.Name, d.String(), savings, strings.Join(t.Features, ", ")})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

func newPromoCommand(a *app) *cobra.Command {
	var (
		tierID string
		annual bool
	)

	cmd := &cobra.Command{
		Use:   "promo CODE",
		Short: "Check a promo code against a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf := a.storefront(cmd)
			sf.SetPeriod(period(annual))
			sf.SelectTier(pricing.TierResponse{ID: tierID})

			app, err := sf.ApplyPromo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s takes %s off %s (%s)\n",
				app.Code, pricing.FormatUSD(app.DiscountAmount), app.TierID, app.Period)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tierID, "tier", "t", "", "plan id")
	cmd.Flags().BoolVar(&annual, "annual", false, "annual billing")
	return cmd
}

func newSelectCommand(a *app) *cobra.Command {
	var (
		role   string
		code   string
		annual bool
	)

	cmd := &cobra.Command{
		Use:   "select TIER_ID",
		Short: "Pick a plan, activating it or opening checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sf := a.storefront(cmd)

			tiers, err := sf.Catalog().Tiers(ctx, role)
			if err != nil {
				return err
			}

			tier, ok := findTier(tiers, args[0])
			if !ok {
				return fmt.Errorf("no active plan %q for role %q", args[0], role)
			}

			sf.SelectTier(tier)
			sf.SetPeriod(period(annual))

			if code != "" {
				if _, err := sf.ApplyPromo(ctx, code); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", tier.Name, sf.Display(tier))

			out, err := sf.Checkout(ctx)
			if err != nil {
				return err
			}

			switch o := out.(type) {
			case storefront.DirectActivation:
				fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", o.TierID)
			case storefront.PaymentRequired:
				fmt.Fprintf(cmd.OutOrStdout(), "payment of %s required for %s\n",
					pricing.FormatUSD(o.FinalPrice), o.TierID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "", "talent, manager, producer or agent")
	cmd.Flags().StringVarP(&code, "promo", "p", "", "promo code to apply")
	cmd.Flags().BoolVar(&annual, "annual", false, "annual billing")
	return cmd
}

func findTier(tiers []pricing.TierResponse, id string) (pricing.TierResponse, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return pricing.TierResponse{}, false
}
