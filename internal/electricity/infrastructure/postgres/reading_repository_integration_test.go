package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electricity-dashboard/internal/electricity/domain/electricity"
	"electricity-dashboard/internal/electricity/infrastructure/memory"
	"electricity-dashboard/internal/electricity/infrastructure/synthetic"
)

var integrationStart = time.Date(1999, time.March, 1, 0, 0, 0, 0, time.UTC)

func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = Migrate(ctx, db)
	require.NoError(t, err, "apply migrations")

	cleanup := func() {
		_, _ = db.ExecContext(ctx, "DELETE FROM electricity_readings WHERE date >= $1 AND date < $2",
			integrationStart.Format(electricity.DayLayout), integrationStart.AddDate(0, 2, 0).Format(electricity.DayLayout))
	}
	cleanup()
	t.Cleanup(cleanup)
	return db
}

func priced(day time.Time, hour int, production, consumption, price string) electricity.Reading {
	return electricity.Reading{
		Date:              day,
		StartTime:         day.Add(time.Duration(hour) * time.Hour),
		ProductionAmount:  decimal.NewNullDecimal(decimal.RequireFromString(production)),
		ConsumptionAmount: decimal.NewNullDecimal(decimal.RequireFromString(consumption)),
		HourlyPrice:       decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

func TestReadingRepository_StreakAndDetail_Postgres(t *testing.T) {
	db := openIntegrationDB(t)
	repo := NewReadingRepository(db)
	ctx := context.Background()

	day := integrationStart
	readings := []electricity.Reading{
		priced(day, 0, "1", "2", "-1"),
		priced(day, 1, "1", "2", "-2"),
		priced(day, 2, "1", "2", "3"),
		priced(day, 3, "1", "2", "-4"),
		priced(day, 4, "1", "2", "-5"),
		priced(day, 5, "4", "10", "-6"),
	}
	inserted, err := repo.SaveReadings(ctx, readings)
	require.NoError(t, err)
	assert.Equal(t, 6, inserted)

	inserted, err = repo.SaveReadings(ctx, readings[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	page, err := repo.DailyStats(ctx, electricity.DailyStatsQuery{
		Page: 1, Limit: 10, Search: &day, OrderBy: electricity.SortByDate, Order: electricity.SortDesc,
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, 3, page.Rows[0].LongestNegativeStreak)
	assert.True(t, page.Rows[0].TotalProduction.Equal(decimal.NewFromInt(9)))

	detail, err := repo.DayDetail(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, day.Add(5*time.Hour), detail.PeakConsumptionHour.StartTime)
	assert.True(t, detail.PeakConsumptionHour.ConsumptionProductionDiff.Equal(decimal.NewFromInt(6)))
	assert.True(t, detail.CheapestHour.Price.Equal(decimal.NewFromInt(-6)))
	assert.Len(t, detail.HourlyData, 6)
	assert.Equal(t, 3, detail.LongestNegativeStreak)

	_, err = repo.DayDetail(ctx, day.AddDate(0, 0, 40))
	assert.True(t, errors.Is(err, electricity.ErrDayNotFound))
}

func TestReadingRepository_MatchesMemoryRepository_Postgres(t *testing.T) {
	db := openIntegrationDB(t)
	repo := NewReadingRepository(db)
	ctx := context.Background()

	readings, err := synthetic.Generate(synthetic.Options{Start: integrationStart, Days: 21, Seed: 5, MissingRatio: 0.1, NullRatio: 0.02})
	require.NoError(t, err)
	_, err = repo.SaveReadings(ctx, readings)
	require.NoError(t, err)
	reference := memory.NewReadingRepository(readings...)

	var foreign int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM electricity_readings WHERE date < $1 OR date >= $2",
		integrationStart.Format(electricity.DayLayout), integrationStart.AddDate(0, 2, 0).Format(electricity.DayLayout)).Scan(&foreign))
	if foreign > 0 {
		t.Skip("readings table holds rows outside the test window")
	}

	from := integrationStart
	minStreak := 1
	queries := []electricity.DailyStatsQuery{
		{Page: 1, Limit: 50, OrderBy: electricity.SortByTotalProduction, Order: electricity.SortAsc},
		{Page: 2, Limit: 5, OrderBy: electricity.SortByLongestNegativeStreak, Order: electricity.SortDesc},
		{Page: 1, Limit: 50, NegativeStreak: electricity.IntRange{Min: &minStreak}, OrderBy: electricity.SortByAvgPrice, Order: electricity.SortAsc},
		{Page: 1, Limit: 50, Search: &from, OrderBy: electricity.SortByDate, Order: electricity.SortDesc},
	}
	for _, q := range queries {
		got, err := repo.DailyStats(ctx, q)
		require.NoError(t, err)
		want, err := reference.DailyStats(ctx, q)
		require.NoError(t, err)

		assert.Equal(t, want.TotalCount, got.TotalCount)
		require.Len(t, got.Rows, len(want.Rows))
		for i, row := range want.Rows {
			assert.Equal(t, row.Date, got.Rows[i].Date)
			assert.True(t, row.TotalProduction.Equal(got.Rows[i].TotalProduction))
			assert.True(t, row.TotalConsumption.Equal(got.Rows[i].TotalConsumption))
			assert.Equal(t, row.LongestNegativeStreak, got.Rows[i].LongestNegativeStreak)
		}
	}
}
