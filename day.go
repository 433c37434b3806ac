package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"electricity-dashboard/internal/dashboard"
)

var dayCmd = &cobra.Command{
	Use:   "day DATE [DATE...]",
	Short: "Print the detail of one or more days from a running API",
	Long: `Queries GET /api/day/{date} for every argument and prints the totals,
the peak consumption hour, the cheapest hour and the hourly series. A date
repeated on the command line is served from the client cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDay,
}

func init() {
	addAPIURLFlag(dayCmd)
	rootCmd.AddCommand(dayCmd)
}

func runDay(cmd *cobra.Command, args []string) error {
	client, err := dashboard.NewClient(apiURL)
	if err != nil {
		return err
	}
	view, err := dashboard.NewDetailController(client, dashboard.DefaultDetailCacheSize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for i, date := range args {
		if i > 0 {
			fmt.Fprintln(out)
		}
		<-view.Open(cmd.Context(), date)
		snap := view.Snapshot()
		if snap.Status != dashboard.StatusReady {
			failed++
			fmt.Fprintf(out, "%s: %v\n", date, snap.Err)
			continue
		}
		if err := printDayDetail(out, snap.Detail); err != nil {
			return err
		}
	}
	view.Close()
	if failed > 0 {
		return fmt.Errorf("%d of %d days could not be loaded", failed, len(args))
	}
	return nil
}

func printDayDetail(out io.Writer, detail *dashboard.DayDetail) error {
	fmt.Fprintf(out, "%s\n", detail.Date)
	fmt.Fprintf(out, "  total consumption: %s MWh\n", dashboard.FormatNumber(decimal.NewNullDecimal(detail.TotalConsumption), 2))
	fmt.Fprintf(out, "  total production:  %s MWh\n", dashboard.FormatNumber(decimal.NewNullDecimal(detail.TotalProduction), 2))
	fmt.Fprintf(out, "  average price:     %s €/MWh\n", dashboard.FormatNumber(detail.AvgPrice, 2))
	fmt.Fprintf(out, "  negative streak:   %d h\n", detail.LongestNegativeStreak)
	if peak := detail.PeakConsumptionHour; peak != nil {
		diff, relation := peak.ConsumptionProductionDiff, "over"
		if diff.IsNegative() {
			diff, relation = diff.Neg(), "under"
		}
		fmt.Fprintf(out, "  peak consumption:  %s (%s MWh %s production)\n",
			dashboard.FormatHour(peak.StartTime),
			dashboard.FormatNumber(decimal.NewNullDecimal(diff), 2), relation)
	}
	if cheapest := detail.CheapestHour; cheapest != nil {
		fmt.Fprintf(out, "  cheapest hour:     %s (%s €/MWh)\n",
			dashboard.FormatHour(cheapest.StartTime),
			dashboard.FormatNumber(decimal.NewNullDecimal(cheapest.Price), 2))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Hour\tProduction\tConsumption\tPrice\t")
	for _, hour := range detail.HourlyData {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			dashboard.FormatHour(hour.StartTime),
			dashboard.FormatNumber(hour.ProductionAmount, 2),
			dashboard.FormatNumber(hour.ConsumptionAmount, 2),
			dashboard.FormatNumber(hour.HourlyPrice, 2),
		)
	}
	return tw.Flush()
}
