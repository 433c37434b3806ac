package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"electricity-dashboard/internal/electricity/domain/electricity"
	"electricity-dashboard/internal/observability/metrics"
)

const (
	defaultQueryTimeout = 5 * time.Second

	opDailyStats  = "daily_stats"
	opDayDetail   = "day_detail"
	opExportStats = "export_daily_stats"
)

// StatsService runs the dashboard read use cases against a repository with a
// per-call deadline.
type StatsService struct {
	repo    electricity.ReadingRepository
	timeout time.Duration
	logger  logrus.FieldLogger
}

// Option configures the service.
type Option func(*StatsService)

// WithQueryTimeout bounds every repository call. Non-positive values keep the default.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *StatsService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *StatsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStatsService constructs the service.
func NewStatsService(repo electricity.ReadingRepository, opts ...Option) (*StatsService, error) {
	if repo == nil {
		return nil, electricity.ErrNilRepository
	}
	s := &StatsService{
		repo:    repo,
		timeout: defaultQueryTimeout,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DailyStats returns one page of per-day aggregates plus the total match count.
func (s *StatsService) DailyStats(ctx context.Context, query electricity.DailyStatsQuery) (electricity.DailyStatsPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	page, err := s.repo.DailyStats(ctx, query)
	s.observe(opDailyStats, err, time.Since(start))
	if err != nil {
		s.logger.WithError(err).WithField("operation", opDailyStats).Error("query failed")
		return electricity.DailyStatsPage{}, &electricity.DataAccessError{Op: opDailyStats, Err: err}
	}
	if page.Rows == nil {
		page.Rows = []electricity.DailyAggregate{}
	}
	return page, nil
}

// DayDetail returns the detail view for a day. A day without readings yields
// electricity.ErrDayNotFound unwrapped.
func (s *StatsService) DayDetail(ctx context.Context, day time.Time) (*electricity.DayDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	detail, err := s.repo.DayDetail(ctx, day)
	s.observe(opDayDetail, err, time.Since(start))
	if errors.Is(err, electricity.ErrDayNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"operation": opDayDetail,
			"day":       day.Format(electricity.DayLayout),
		}).Error("query failed")
		return nil, &electricity.DataAccessError{Op: opDayDetail, Err: err}
	}
	return detail, nil
}

// ExportDailyStats returns every aggregate matching the query filters, in the
// query's order, capped at maxRows. Pagination fields of query are ignored.
func (s *StatsService) ExportDailyStats(ctx context.Context, query electricity.DailyStatsQuery, maxRows int) ([]electricity.DailyAggregate, error) {
	if maxRows <= 0 {
		return []electricity.DailyAggregate{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query.Page = 1
	query.Limit = maxRows
	start := time.Now()
	page, err := s.repo.DailyStats(ctx, query)
	s.observe(opExportStats, err, time.Since(start))
	if err != nil {
		s.logger.WithError(err).WithField("operation", opExportStats).Error("query failed")
		return nil, &electricity.DataAccessError{Op: opExportStats, Err: err}
	}
	if page.TotalCount > int64(maxRows) {
		s.logger.WithFields(logrus.Fields{
			"matched":  page.TotalCount,
			"exported": maxRows,
		}).Warn("export truncated")
	}
	if page.Rows == nil {
		return []electricity.DailyAggregate{}, nil
	}
	return page.Rows, nil
}

func (s *StatsService) observe(operation string, err error, duration time.Duration) {
	metrics.ObserveQuery(operation, resultOf(err), duration)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, electricity.ErrDayNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultTimeout
	default:
		return metrics.ResultError
	}
}
