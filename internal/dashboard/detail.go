package dashboard

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	StatusClosed  Status = "closed"
	StatusOpening Status = "opening"
)

// DefaultDetailCacheSize caps how many days the detail view remembers.
const DefaultDetailCacheSize = 64

// DetailFetcher loads the detail of one day.
type DetailFetcher interface {
	DayDetail(ctx context.Context, date string) (*DayDetail, error)
}

// DetailSnapshot is a consistent copy of the detail view state.
type DetailSnapshot struct {
	Status     Status
	Date       string
	Detail     *DayDetail
	Err        error
	FromCache  bool
	Generation uint64
}

// DetailController drives the day detail view. Successful results are kept
// in an LRU cache keyed by date; failures are never cached. Closing the view
// or opening another day discards any fetch still in flight.
type DetailController struct {
	fetcher DetailFetcher
	cache   *lru.Cache[string, *DayDetail]

	mu         sync.Mutex
	status     Status
	date       string
	detail     *DayDetail
	err        error
	fromCache  bool
	generation uint64
	cancel     context.CancelFunc
}

// NewDetailController builds a controller caching up to size days. A size
// below 1 uses DefaultDetailCacheSize.
func NewDetailController(fetcher DetailFetcher, size int) (*DetailController, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("dashboard: detail fetcher is required")
	}
	if size < 1 {
		size = DefaultDetailCacheSize
	}
	cache, err := lru.New[string, *DayDetail](size)
	if err != nil {
		return nil, fmt.Errorf("dashboard: detail cache: %w", err)
	}
	return &DetailController{
		fetcher: fetcher,
		cache:   cache,
		status:  StatusClosed,
	}, nil
}

// Open shows the detail for date. A cached day is ready immediately and the
// returned channel is already closed; otherwise it closes when the fetch
// finishes.
func (d *DetailController) Open(ctx context.Context, date string) <-chan struct{} {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.generation++
	gen := d.generation
	d.date = date
	d.detail = nil
	d.err = nil
	d.fromCache = false
	d.status = StatusOpening

	if cached, ok := d.cache.Get(date); ok {
		d.detail = cached
		d.fromCache = true
		d.status = StatusReady
		d.mu.Unlock()
		return closedChan()
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.status = StatusLoading
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		detail, err := d.fetcher.DayDetail(fetchCtx, date)
		d.finish(gen, date, detail, err)
	}()
	return done
}

func (d *DetailController) finish(gen uint64, date string, detail *DayDetail, err error) {
	if err == nil && detail == nil {
		err = fmt.Errorf("dashboard: empty detail for %s", date)
	}
	if err == nil {
		d.cache.Add(date, detail)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return
	}
	d.cancel = nil
	if err != nil {
		d.status = StatusError
		d.err = err
		return
	}
	d.status = StatusReady
	d.detail = detail
}

// Close hides the view and drops any fetch in flight.
func (d *DetailController) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.generation++
	d.status = StatusClosed
	d.date = ""
	d.detail = nil
	d.err = nil
	d.fromCache = false
}

// Snapshot returns the current state.
func (d *DetailController) Snapshot() DetailSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DetailSnapshot{
		Status:     d.status,
		Date:       d.date,
		Detail:     d.detail,
		Err:        d.err,
		FromCache:  d.fromCache,
		Generation: d.generation,
	}
}

// Cached reports how many days are held in the cache.
func (d *DetailController) Cached() int {
	return d.cache.Len()
}
