package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"electricity-dashboard/internal/electricity/domain/electricity"
	"electricity-dashboard/internal/observability/metrics"
)

const (
	keyPrefix  = "electricity:day:"
	defaultTTL = 10 * time.Minute
)

// DetailCache wraps a ReadingRepository and caches DayDetail results.
// DailyStats is passed through untouched. Cache failures degrade to the
// underlying repository and are only logged.
type DetailCache struct {
	next   electricity.ReadingRepository
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger logrus.FieldLogger
}

// NewDetailCache constructs the decorator. A non-positive ttl uses the default.
func NewDetailCache(next electricity.ReadingRepository, store Store, ttl time.Duration, logger logrus.FieldLogger) (*DetailCache, error) {
	if next == nil {
		return nil, electricity.ErrNilRepository
	}
	if store == nil {
		return nil, errors.New("rediscache: nil store")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DetailCache{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.WithField("component", "day-detail-cache"),
	}, nil
}

// DailyStats delegates to the wrapped repository.
func (c *DetailCache) DailyStats(ctx context.Context, query electricity.DailyStatsQuery) (electricity.DailyStatsPage, error) {
	return c.next.DailyStats(ctx, query)
}

// DayDetail serves from cache when possible. Concurrent misses for one day
// share a single repository call. Missing days are not cached.
func (c *DetailCache) DayDetail(ctx context.Context, day time.Time) (*electricity.DayDetail, error) {
	key := detailKey(day)
	if detail, ok := c.get(ctx, key); ok {
		return detail, nil
	}
	value, err, _ := c.group.Do(key, func() (any, error) {
		if detail, ok := c.get(ctx, key); ok {
			return detail, nil
		}
		detail, err := c.next.DayDetail(ctx, day)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, detail)
		return detail, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*electricity.DayDetail), nil
}

func (c *DetailCache) get(ctx context.Context, key string) (*electricity.DayDetail, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			metrics.IncCacheLookup(metrics.CacheMiss)
			return nil, false
		}
		metrics.IncCacheLookup(metrics.CacheError)
		c.logger.WithError(err).WithField("key", key).Warn("cache get failed")
		return nil, false
	}
	var detail electricity.DayDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		metrics.IncCacheLookup(metrics.CacheError)
		c.logger.WithError(err).WithField("key", key).Warn("cache unmarshal failed")
		return nil, false
	}
	metrics.IncCacheLookup(metrics.CacheHit)
	return &detail, true
}

func (c *DetailCache) set(ctx context.Context, key string, detail *electricity.DayDetail) {
	data, err := json.Marshal(detail)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

func detailKey(day time.Time) string {
	return keyPrefix + day.Format(electricity.DayLayout)
}
