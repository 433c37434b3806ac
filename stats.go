package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"electricity-dashboard/internal/dashboard"
)

const defaultAPIURL = "http://localhost:3010"

var (
	statsPage    int
	statsLimit   int
	statsOrderBy string
	statsOrder   string
	statsFilters dashboard.Filters
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print one page of daily stats from a running API",
	Long: `Queries GET /api/daily-stats and prints the page as a table. Numeric
filters accept thousands separators; unparseable values are ignored.`,
	RunE: runStats,
}

func init() {
	addAPIURLFlag(statsCmd)
	flags := statsCmd.Flags()
	flags.IntVar(&statsPage, "page", 1, "page number")
	flags.IntVar(&statsLimit, "limit", 10, "rows per page")
	flags.StringVar(&statsOrderBy, "order-by", "date", "sort column")
	flags.StringVar(&statsOrder, "order", "desc", "sort direction (asc or desc)")
	flags.StringVar(&statsFilters.Search, "search", "", "exact day, YYYY-MM-DD")
	flags.StringVar(&statsFilters.MinProduction, "min-production", "", "minimum total production")
	flags.StringVar(&statsFilters.MaxProduction, "max-production", "", "maximum total production")
	flags.StringVar(&statsFilters.MinConsumption, "min-consumption", "", "minimum total consumption")
	flags.StringVar(&statsFilters.MaxConsumption, "max-consumption", "", "maximum total consumption")
	flags.StringVar(&statsFilters.MinPrice, "min-price", "", "minimum average price")
	flags.StringVar(&statsFilters.MaxPrice, "max-price", "", "maximum average price")
	flags.StringVar(&statsFilters.MinNegativeStreak, "min-streak", "", "minimum longest negative price streak")
	flags.StringVar(&statsFilters.MaxNegativeStreak, "max-streak", "", "maximum longest negative price streak")
	rootCmd.AddCommand(statsCmd)
}

var apiURL string

func addAPIURLFlag(cmd *cobra.Command) {
	fallback := os.Getenv("ELECTRICITY_API_URL")
	if fallback == "" {
		fallback = defaultAPIURL
	}
	cmd.Flags().StringVar(&apiURL, "api-url", fallback, "base URL of the electricity API")
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := dashboard.NewClient(apiURL)
	if err != nil {
		return err
	}
	values := dashboard.QueryValues(statsPage, statsLimit, statsOrderBy, statsOrder, statsFilters.Apply())
	resp, err := client.DailyStats(cmd.Context(), values)
	if err != nil {
		return err
	}
	return printDailyStats(cmd.OutOrStdout(), resp)
}

func printDailyStats(out io.Writer, resp *dashboard.DailyStatsResponse) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tProduction (MWh)\tConsumption (MWh)\tAvg price (€/MWh)\tNeg. streak (h)\t")
	for _, row := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n",
			row.Date,
			dashboard.FormatNumber(decimal.NewNullDecimal(row.TotalProduction), 2),
			dashboard.FormatNumber(decimal.NewNullDecimal(row.TotalConsumption), 2),
			dashboard.FormatNumber(row.AvgPrice, 2),
			row.LongestNegativeStreak,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pages := dashboard.TableSnapshot{Limit: resp.Limit, TotalCount: resp.TotalCount}.TotalPages()
	_, err := fmt.Fprintf(out, "page %d of %d, %d matching days, sorted by %s %s\n",
		resp.Page, pages, resp.TotalCount, resp.OrderBy, resp.Order)
	return err
}
