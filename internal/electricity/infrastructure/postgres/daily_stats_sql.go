package postgres

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

// sortColumnSQL is the allow-list mapping sort columns onto output columns.
// Sort identifiers never come from request input directly.
var sortColumnSQL = map[electricity.SortColumn]string{
	electricity.SortByDate:                  "date",
	electricity.SortByTotalProduction:       "total_production",
	electricity.SortByTotalConsumption:      "total_consumption",
	electricity.SortByAvgPrice:              "avg_price",
	electricity.SortByLongestNegativeStreak: "longest_negative_streak",
}

type sqlArgs struct {
	values []any
}

func (a *sqlArgs) bind(value any) string {
	a.values = append(a.values, value)
	return fmt.Sprintf("$%d", len(a.values))
}

// dailyStatsBaseSQL builds the filtered aggregate relation.
//
// Negative-price runs are found by ranking a day's negative rows by start
// time and subtracting rank hours from start_time: rows in one unbroken run
// share the resulting key, so counting per (date, key) gives run lengths.
// Range filters apply to the joined output, after aggregation.
func dailyStatsBaseSQL(table string, query electricity.DailyStatsQuery, args *sqlArgs) string {
	searchFilter := ""
	if query.Search != nil {
		searchFilter = " AND date = " + args.bind(query.Search.Format(electricity.DayLayout))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
WITH negative_runs AS (
	SELECT
		date,
		start_time - INTERVAL '1 hour' * ROW_NUMBER() OVER (PARTITION BY date ORDER BY start_time) AS run_key
	FROM %[1]s
	WHERE hourly_price < 0%[2]s
),
run_lengths AS (
	SELECT date, COUNT(*) AS run_hours
	FROM negative_runs
	GROUP BY date, run_key
),
longest_runs AS (
	SELECT date, MAX(run_hours) AS longest
	FROM run_lengths
	GROUP BY date
),
daily AS (
	SELECT
		date,
		COALESCE(SUM(production_amount), 0) AS total_production,
		COALESCE(SUM(consumption_amount), 0) AS total_consumption,
		AVG(hourly_price) AS avg_price
	FROM %[1]s
	WHERE 1=1%[2]s
	GROUP BY date
),
joined AS (
	SELECT
		d.date,
		d.total_production,
		d.total_consumption,
		d.avg_price,
		COALESCE(l.longest, 0) AS longest_negative_streak
	FROM daily d
	LEFT JOIN longest_runs l ON l.date = d.date
)
SELECT date, total_production, total_consumption, avg_price, longest_negative_streak
FROM joined
WHERE 1=1`, table, searchFilter)

	writeDecimalRange(&b, args, "total_production", query.Production)
	writeDecimalRange(&b, args, "total_consumption", query.Consumption)
	writeDecimalRange(&b, args, "avg_price", query.Price)
	if query.NegativeStreak.Min != nil {
		b.WriteString(" AND longest_negative_streak >= " + args.bind(*query.NegativeStreak.Min))
	}
	if query.NegativeStreak.Max != nil {
		b.WriteString(" AND longest_negative_streak <= " + args.bind(*query.NegativeStreak.Max))
	}
	return b.String()
}

func writeDecimalRange(b *strings.Builder, args *sqlArgs, column string, r electricity.DecimalRange) {
	if r.Min != nil {
		b.WriteString(" AND " + column + " >= " + args.bind(decimalArg(*r.Min)))
	}
	if r.Max != nil {
		b.WriteString(" AND " + column + " <= " + args.bind(decimalArg(*r.Max)))
	}
}

func decimalArg(value decimal.Decimal) string {
	return value.String()
}

// buildDailyStatsSQL returns the sorted, paginated page query.
func buildDailyStatsSQL(table string, query electricity.DailyStatsQuery) (string, []any) {
	args := &sqlArgs{}
	base := dailyStatsBaseSQL(table, query, args)

	column, ok := sortColumnSQL[query.OrderBy]
	if !ok {
		column = sortColumnSQL[electricity.SortByDate]
	}
	direction := "DESC"
	if query.Order == electricity.SortAsc {
		direction = "ASC"
	}

	limit := args.bind(query.Limit)
	offset := args.bind(query.Offset())
	sql := base + fmt.Sprintf("\nORDER BY %s %s NULLS LAST, date ASC\nLIMIT %s OFFSET %s", column, direction, limit, offset)
	return sql, args.values
}

// buildDailyStatsCountSQL counts all aggregate rows matching the filters.
func buildDailyStatsCountSQL(table string, query electricity.DailyStatsQuery) (string, []any) {
	args := &sqlArgs{}
	base := dailyStatsBaseSQL(table, query, args)
	return "SELECT COUNT(*) FROM (" + base + "\n) AS matched", args.values
}
