package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

const defaultReadingsTable = "electricity_readings"

var errNilDB = errors.New("reading repository: nil db")

// ReadingRepository is the Postgres implementation of the reading queries.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// NewReadingRepository constructs a repository with the default table name.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// DailyStats runs the page and count queries concurrently.
func (r *ReadingRepository) DailyStats(ctx context.Context, query electricity.DailyStatsQuery) (electricity.DailyStatsPage, error) {
	if r == nil || r.db == nil {
		return electricity.DailyStatsPage{}, errNilDB
	}

	page := electricity.DailyStatsPage{Rows: []electricity.DailyAggregate{}}
	pageSQL, pageArgs := buildDailyStatsSQL(r.table, query)
	countSQL, countArgs := buildDailyStatsCountSQL(r.table, query)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.queryDailyRows(gctx, pageSQL, pageArgs)
		if err != nil {
			return fmt.Errorf("daily stats page: %w", err)
		}
		page.Rows = rows
		return nil
	})
	g.Go(func() error {
		if err := r.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&page.TotalCount); err != nil {
			return fmt.Errorf("daily stats count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return electricity.DailyStatsPage{}, err
	}
	return page, nil
}

func (r *ReadingRepository) queryDailyRows(ctx context.Context, query string, args []any) ([]electricity.DailyAggregate, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]electricity.DailyAggregate, 0)
	for rows.Next() {
		var row electricity.DailyAggregate
		var streak int64
		if err := rows.Scan(
			&row.Date,
			&row.TotalProduction,
			&row.TotalConsumption,
			&row.AvgPrice,
			&streak,
		); err != nil {
			return nil, err
		}
		row.Date = row.Date.UTC()
		row.LongestNegativeStreak = int(streak)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DayDetail loads totals, the derived hours and the hourly series for one day.
// The four queries run concurrently; absence of rows is decided on COUNT(*),
// never on null aggregates.
func (r *ReadingRepository) DayDetail(ctx context.Context, day time.Time) (*electricity.DayDetail, error) {
	if r == nil || r.db == nil {
		return nil, errNilDB
	}
	key := day.Format(electricity.DayLayout)
	detail := &electricity.DayDetail{Date: day}
	var count int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`
SELECT
	COUNT(*),
	COALESCE(SUM(production_amount), 0),
	COALESCE(SUM(consumption_amount), 0),
	AVG(hourly_price)
FROM %s
WHERE date = $1`, r.table)
		if err := r.db.QueryRowContext(gctx, query, key).Scan(
			&count,
			&detail.TotalProduction,
			&detail.TotalConsumption,
			&detail.AvgPrice,
		); err != nil {
			return fmt.Errorf("day totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		query := fmt.Sprintf(`
SELECT start_time, consumption_amount - production_amount AS diff
FROM %s
WHERE date = $1
	AND consumption_amount IS NOT NULL
	AND production_amount IS NOT NULL
ORDER BY diff DESC, start_time ASC
LIMIT 1`, r.table)
		var peak electricity.PeakConsumptionHour
		err := r.db.QueryRowContext(gctx, query, key).Scan(&peak.StartTime, &peak.ConsumptionProductionDiff)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("peak consumption hour: %w", err)
		}
		peak.StartTime = peak.StartTime.UTC()
		detail.PeakConsumptionHour = &peak
		return nil
	})
	g.Go(func() error {
		query := fmt.Sprintf(`
SELECT start_time, hourly_price
FROM %s
WHERE date = $1
	AND hourly_price IS NOT NULL
ORDER BY hourly_price ASC, start_time ASC
LIMIT 1`, r.table)
		var cheapest electricity.CheapestHour
		err := r.db.QueryRowContext(gctx, query, key).Scan(&cheapest.StartTime, &cheapest.Price)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cheapest hour: %w", err)
		}
		cheapest.StartTime = cheapest.StartTime.UTC()
		detail.CheapestHour = &cheapest
		return nil
	})
	g.Go(func() error {
		hourly, err := r.hourlySeries(gctx, key, day)
		if err != nil {
			return fmt.Errorf("hourly series: %w", err)
		}
		detail.HourlyData = hourly
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, electricity.ErrDayNotFound
	}
	detail.LongestNegativeStreak = electricity.LongestNegativeStreak(detail.HourlyData)
	return detail, nil
}

func (r *ReadingRepository) hourlySeries(ctx context.Context, key string, day time.Time) ([]electricity.Reading, error) {
	query := fmt.Sprintf(`
SELECT start_time, production_amount, consumption_amount, hourly_price
FROM %s
WHERE date = $1
ORDER BY start_time ASC`, r.table)
	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]electricity.Reading, 0, 24)
	for rows.Next() {
		reading := electricity.Reading{Date: day}
		if err := rows.Scan(
			&reading.StartTime,
			&reading.ProductionAmount,
			&reading.ConsumptionAmount,
			&reading.HourlyPrice,
		); err != nil {
			return nil, err
		}
		reading.StartTime = reading.StartTime.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveReadings inserts readings in one transaction using multi-row inserts.
// Conflicting (date, start_time) rows are skipped.
func (r *ReadingRepository) SaveReadings(ctx context.Context, readings []electricity.Reading) (int, error) {
	if r == nil || r.db == nil {
		return 0, errNilDB
	}
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for start := 0; start < len(readings); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(readings) {
			end = len(readings)
		}
		query, args := buildInsertSQL(r.table, readings[start:end])
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert readings: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(affected)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Five parameters per row keeps a batch well under the 65535 parameter limit.
const insertBatchSize = 500

func buildInsertSQL(table string, readings []electricity.Reading) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(readings)*5)
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (date, start_time, production_amount, consumption_amount, hourly_price) VALUES ")
	for i, reading := range readings {
		if i > 0 {
			b.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args,
			reading.Day(),
			reading.StartTime.UTC(),
			nullDecimalArg(reading.ProductionAmount),
			nullDecimalArg(reading.ConsumptionAmount),
			nullDecimalArg(reading.HourlyPrice),
		)
	}
	b.WriteString(" ON CONFLICT (date, start_time) DO NOTHING")
	return b.String(), args
}

func nullDecimalArg(value decimal.NullDecimal) any {
	if !value.Valid {
		return nil
	}
	return value.Decimal.String()
}
