package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

func TestBuildDailyStatsSQL_Defaults(t *testing.T) {
	query := electricity.DailyStatsQuery{Page: 3, Limit: 10, OrderBy: electricity.SortByDate, Order: electricity.SortDesc}
	sql, args := buildDailyStatsSQL(defaultReadingsTable, query)

	assert.Contains(t, sql, "FROM electricity_readings")
	assert.Contains(t, sql, "ORDER BY date DESC NULLS LAST, date ASC")
	assert.Contains(t, sql, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 20}, args)
	assert.NotContains(t, sql, "AND date = $")
}

func TestBuildDailyStatsSQL_FiltersAndSearch(t *testing.T) {
	day := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	minProduction := decimal.RequireFromString("1000.5")
	maxPrice := decimal.RequireFromString("-2")
	minStreak := 2
	query := electricity.DailyStatsQuery{
		Page:           1,
		Limit:          5,
		Search:         &day,
		Production:     electricity.DecimalRange{Min: &minProduction},
		Price:          electricity.DecimalRange{Max: &maxPrice},
		NegativeStreak: electricity.IntRange{Min: &minStreak},
		OrderBy:        electricity.SortByTotalProduction,
		Order:          electricity.SortAsc,
	}
	sql, args := buildDailyStatsSQL(defaultReadingsTable, query)

	// The search day is bound once and used before aggregation in both CTEs.
	assert.Equal(t, 2, strings.Count(sql, "AND date = $1"))
	assert.Contains(t, sql, "AND total_production >= $2")
	assert.Contains(t, sql, "AND avg_price <= $3")
	assert.Contains(t, sql, "AND longest_negative_streak >= $4")
	assert.Contains(t, sql, "ORDER BY total_production ASC NULLS LAST")
	assert.Contains(t, sql, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{"2024-05-04", "1000.5", "-2", 2, 5, 0}, args)

	// Streak filters reference the joined output, never the raw table.
	joined := strings.Index(sql, "FROM joined")
	require.Positive(t, joined)
	assert.Greater(t, strings.Index(sql, "longest_negative_streak >="), joined)
}

func TestBuildDailyStatsSQL_UnknownSortColumnFallsBackToDate(t *testing.T) {
	query := electricity.DailyStatsQuery{Page: 1, Limit: 10, OrderBy: electricity.SortColumn("date; DROP TABLE electricity_readings"), Order: electricity.SortAsc}
	sql, _ := buildDailyStatsSQL(defaultReadingsTable, query)
	assert.Contains(t, sql, "ORDER BY date ASC NULLS LAST")
	assert.NotContains(t, sql, "DROP TABLE")
}

func TestBuildDailyStatsSQL_EverySortColumnIsMapped(t *testing.T) {
	for _, column := range electricity.SortColumns {
		_, ok := sortColumnSQL[column]
		assert.True(t, ok, "column %s", column)
	}
}

func TestBuildDailyStatsCountSQL(t *testing.T) {
	maxStreak := 4
	query := electricity.DailyStatsQuery{Page: 2, Limit: 10, NegativeStreak: electricity.IntRange{Max: &maxStreak}}
	sql, args := buildDailyStatsCountSQL(defaultReadingsTable, query)

	assert.True(t, strings.HasPrefix(sql, "SELECT COUNT(*) FROM ("))
	assert.Contains(t, sql, "AND longest_negative_streak <= $1")
	assert.NotContains(t, sql, "LIMIT")
	assert.Equal(t, []any{4}, args)
}

func TestBuildInsertSQL(t *testing.T) {
	day := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	readings := []electricity.Reading{
		{Date: day, StartTime: day, HourlyPrice: decimal.NewNullDecimal(decimal.RequireFromString("-1.25"))},
		{Date: day, StartTime: day.Add(time.Hour)},
	}
	sql, args := buildInsertSQL(defaultReadingsTable, readings)

	assert.Contains(t, sql, "($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10)")
	assert.True(t, strings.HasSuffix(sql, "ON CONFLICT (date, start_time) DO NOTHING"))
	require.Len(t, args, 10)
	assert.Equal(t, "2024-05-04", args[0])
	assert.Nil(t, args[2])
	assert.Equal(t, "-1.25", args[4])
	assert.Nil(t, args[9])
}
