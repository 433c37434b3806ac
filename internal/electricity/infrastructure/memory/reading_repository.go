package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

// ReadingRepository is an in-memory repository for demo/testing.
// It implements both the read repository and the writer.
type ReadingRepository struct {
	mu   sync.RWMutex
	data map[readingKey]electricity.Reading
}

type readingKey struct {
	day   string
	start time.Time
}

// NewReadingRepository constructs a repository, optionally preloaded.
func NewReadingRepository(readings ...electricity.Reading) *ReadingRepository {
	repo := &ReadingRepository{data: make(map[readingKey]electricity.Reading)}
	_, _ = repo.SaveReadings(context.Background(), readings)
	return repo
}

// SaveReadings stores readings, skipping (date, start time) pairs already present.
func (r *ReadingRepository) SaveReadings(ctx context.Context, readings []electricity.Reading) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, reading := range readings {
		key := readingKey{day: reading.Day(), start: reading.StartTime.UTC()}
		if _, ok := r.data[key]; ok {
			continue
		}
		r.data[key] = reading
		inserted++
	}
	return inserted, nil
}

// DailyStats aggregates, filters, sorts and pages the stored readings.
func (r *ReadingRepository) DailyStats(ctx context.Context, query electricity.DailyStatsQuery) (electricity.DailyStatsPage, error) {
	if err := ctx.Err(); err != nil {
		return electricity.DailyStatsPage{}, err
	}

	readings := r.snapshot(func(reading electricity.Reading) bool {
		return query.Search == nil || reading.Day() == query.Search.Format(electricity.DayLayout)
	})

	all := electricity.AggregateDaily(readings)
	matched := make([]electricity.DailyAggregate, 0, len(all))
	for _, agg := range all {
		if query.Matches(agg) {
			matched = append(matched, agg)
		}
	}
	electricity.SortAggregates(matched, query.OrderBy, query.Order)

	page := electricity.DailyStatsPage{
		Rows:       []electricity.DailyAggregate{},
		TotalCount: int64(len(matched)),
	}
	offset := query.Offset()
	if offset < 0 || offset >= len(matched) || query.Limit <= 0 {
		return page, nil
	}
	end := len(matched)
	if query.Limit < end-offset {
		end = offset + query.Limit
	}
	page.Rows = append(page.Rows, matched[offset:end]...)
	return page, nil
}

// DayDetail derives the single-day view from the stored readings.
func (r *ReadingRepository) DayDetail(ctx context.Context, day time.Time) (*electricity.DayDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := day.Format(electricity.DayLayout)
	readings := r.snapshot(func(reading electricity.Reading) bool {
		return reading.Day() == key
	})
	return electricity.BuildDayDetail(day, readings)
}

// Len returns the number of stored readings.
func (r *ReadingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func (r *ReadingRepository) snapshot(keep func(electricity.Reading) bool) []electricity.Reading {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]electricity.Reading, 0, len(r.data))
	for _, reading := range r.data {
		if keep(reading) {
			result = append(result, reading)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}
