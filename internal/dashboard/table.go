package dashboard

import (
	"context"
	"net/url"
	"sync"
)

// Status is the lifecycle state of a view.
type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// StatsFetcher loads one page of daily stats.
type StatsFetcher interface {
	DailyStats(ctx context.Context, values url.Values) (*DailyStatsResponse, error)
}

// TableSnapshot is a consistent copy of the table state.
type TableSnapshot struct {
	Status     Status
	Rows       []DailyStat
	TotalCount int64
	Page       int
	Limit      int
	OrderBy    string
	Order      string
	Pending    Filters
	Applied    AppliedFilters
	Err        error
	Generation uint64
}

// TotalPages derives the page count from the total match count. An empty
// result still has one page.
func (s TableSnapshot) TotalPages() int {
	if s.Limit <= 0 || s.TotalCount <= 0 {
		return 1
	}
	return int((s.TotalCount + int64(s.Limit) - 1) / int64(s.Limit))
}

// TableController drives the daily stats table. Editing filters never
// fetches; Apply, SetPage and Sort each start a fetch with the applied
// filters. A new fetch cancels the one in flight, and only the result of
// the latest fetch is ever stored.
type TableController struct {
	fetcher StatsFetcher

	mu         sync.Mutex
	pending    Filters
	applied    AppliedFilters
	page       int
	limit      int
	orderBy    string
	order      string
	status     Status
	rows       []DailyStat
	totalCount int64
	err        error
	generation uint64
	cancel     context.CancelFunc
	onChange   func(TableSnapshot)
}

// NewTableController builds a controller showing limit rows per page,
// sorted by date descending.
func NewTableController(fetcher StatsFetcher, limit int) *TableController {
	if limit <= 0 {
		limit = 10
	}
	return &TableController{
		fetcher: fetcher,
		page:    1,
		limit:   limit,
		orderBy: "date",
		order:   "desc",
		status:  StatusPending,
		rows:    []DailyStat{},
	}
}

// OnChange registers a callback run after every state change. It is called
// without the controller lock held.
func (t *TableController) OnChange(fn func(TableSnapshot)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// SetPending replaces the edited filter inputs. No request is made.
func (t *TableController) SetPending(filters Filters) {
	t.mu.Lock()
	t.pending = filters
	t.mu.Unlock()
}

// Apply commits the pending filters, resets to page 1 and fetches.
func (t *TableController) Apply(ctx context.Context) <-chan struct{} {
	t.mu.Lock()
	t.applied = t.pending.Apply()
	t.page = 1
	return t.startLocked(ctx)
}

// SetPage moves to page (at least 1) and fetches with the applied filters.
func (t *TableController) SetPage(ctx context.Context, page int) <-chan struct{} {
	if page < 1 {
		page = 1
	}
	t.mu.Lock()
	t.page = page
	return t.startLocked(ctx)
}

// NextPage advances one page unless the last known page is shown.
func (t *TableController) NextPage(ctx context.Context) <-chan struct{} {
	snap := t.Snapshot()
	if snap.Page >= snap.TotalPages() {
		return closedChan()
	}
	return t.SetPage(ctx, snap.Page+1)
}

// PrevPage goes back one page unless the first page is shown.
func (t *TableController) PrevPage(ctx context.Context) <-chan struct{} {
	snap := t.Snapshot()
	if snap.Page <= 1 {
		return closedChan()
	}
	return t.SetPage(ctx, snap.Page-1)
}

// Sort orders by column, flips the direction and returns to page 1.
func (t *TableController) Sort(ctx context.Context, column string) <-chan struct{} {
	t.mu.Lock()
	t.orderBy = column
	if t.order == "asc" {
		t.order = "desc"
	} else {
		t.order = "asc"
	}
	t.page = 1
	return t.startLocked(ctx)
}

// Refresh refetches the current page.
func (t *TableController) Refresh(ctx context.Context) <-chan struct{} {
	t.mu.Lock()
	return t.startLocked(ctx)
}

// Snapshot returns the current state.
func (t *TableController) Snapshot() TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *TableController) snapshotLocked() TableSnapshot {
	rows := make([]DailyStat, len(t.rows))
	copy(rows, t.rows)
	return TableSnapshot{
		Status:     t.status,
		Rows:       rows,
		TotalCount: t.totalCount,
		Page:       t.page,
		Limit:      t.limit,
		OrderBy:    t.orderBy,
		Order:      t.order,
		Pending:    t.pending,
		Applied:    t.applied,
		Err:        t.err,
		Generation: t.generation,
	}
}

// startLocked must be called with t.mu held; it releases the lock.
func (t *TableController) startLocked(parent context.Context) <-chan struct{} {
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.generation++
	gen := t.generation
	t.status = StatusLoading
	t.err = nil
	values := QueryValues(t.page, t.limit, t.orderBy, t.order, t.applied)
	snap, notify := t.snapshotLocked(), t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(snap)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		resp, err := t.fetcher.DailyStats(ctx, values)
		t.finish(gen, resp, err)
	}()
	return done
}

func (t *TableController) finish(gen uint64, resp *DailyStatsResponse, err error) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.status = StatusError
		t.err = err
		t.rows = []DailyStat{}
		t.totalCount = 0
	} else {
		t.status = StatusReady
		t.rows = resp.Data
		if t.rows == nil {
			t.rows = []DailyStat{}
		}
		t.totalCount = resp.TotalCount
	}
	t.cancel = nil
	snap, notify := t.snapshotLocked(), t.onChange
	t.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
