package dashboard

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	gate  map[string]chan struct{}
	fail  map[string]error
}

func newDetailFetcher() *detailFetcher {
	return &detailFetcher{calls: map[string]int{}, gate: map[string]chan struct{}{}, fail: map[string]error{}}
}

func (f *detailFetcher) DayDetail(ctx context.Context, date string) (*DayDetail, error) {
	f.mu.Lock()
	f.calls[date]++
	gate, err := f.gate[date], f.fail[date]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &DayDetail{Date: date}, nil
}

func (f *detailFetcher) count(date string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[date]
}

func TestDetailController_CachesByDate(t *testing.T) {
	fetcher := newDetailFetcher()
	detail, err := NewDetailController(fetcher, 0)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, StatusClosed, detail.Snapshot().Status)

	wait(t, detail.Open(ctx, "2024-01-10"))
	snap := detail.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.False(t, snap.FromCache)
	require.NotNil(t, snap.Detail)
	assert.Equal(t, "2024-01-10", snap.Detail.Date)

	detail.Close()
	assert.Equal(t, StatusClosed, detail.Snapshot().Status)
	assert.Nil(t, detail.Snapshot().Detail)

	wait(t, detail.Open(ctx, "2024-01-10"))
	snap = detail.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.True(t, snap.FromCache)
	assert.Equal(t, 1, fetcher.count("2024-01-10"))
}

func TestDetailController_ErrorsAreNotCached(t *testing.T) {
	fetcher := newDetailFetcher()
	fetcher.fail["2024-02-30"] = &APIError{Status: http.StatusNotFound, Message: "No data found for this date."}
	detail, err := NewDetailController(fetcher, 4)
	require.NoError(t, err)
	ctx := context.Background()

	wait(t, detail.Open(ctx, "2024-02-30"))
	snap := detail.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.True(t, IsNotFound(snap.Err))
	assert.Nil(t, snap.Detail)

	wait(t, detail.Open(ctx, "2024-02-30"))
	assert.Equal(t, 2, fetcher.count("2024-02-30"))
	assert.Zero(t, detail.Cached())
}

func TestDetailController_EvictsLeastRecentlyUsed(t *testing.T) {
	fetcher := newDetailFetcher()
	detail, err := NewDetailController(fetcher, 2)
	require.NoError(t, err)
	ctx := context.Background()

	wait(t, detail.Open(ctx, "2024-01-01"))
	wait(t, detail.Open(ctx, "2024-01-02"))
	wait(t, detail.Open(ctx, "2024-01-01"))
	wait(t, detail.Open(ctx, "2024-01-03"))
	assert.Equal(t, 2, detail.Cached())

	wait(t, detail.Open(ctx, "2024-01-01"))
	assert.Equal(t, 1, fetcher.count("2024-01-01"))
	wait(t, detail.Open(ctx, "2024-01-02"))
	assert.Equal(t, 2, fetcher.count("2024-01-02"))
}

func TestDetailController_CloseDropsInFlightResult(t *testing.T) {
	fetcher := newDetailFetcher()
	gate := make(chan struct{})
	fetcher.gate["2024-01-10"] = gate
	detail, err := NewDetailController(fetcher, 0)
	require.NoError(t, err)

	done := detail.Open(context.Background(), "2024-01-10")
	assert.Equal(t, StatusLoading, detail.Snapshot().Status)
	detail.Close()
	close(gate)
	wait(t, done)

	snap := detail.Snapshot()
	assert.Equal(t, StatusClosed, snap.Status)
	assert.Nil(t, snap.Detail)
	assert.Equal(t, 1, detail.Cached())
}

func TestDetailController_LatestOpenWins(t *testing.T) {
	fetcher := newDetailFetcher()
	gate := make(chan struct{})
	fetcher.gate["2024-01-10"] = gate
	detail, err := NewDetailController(fetcher, 0)
	require.NoError(t, err)
	ctx := context.Background()

	slow := detail.Open(ctx, "2024-01-10")
	wait(t, detail.Open(ctx, "2024-01-11"))
	close(gate)
	wait(t, slow)

	snap := detail.Snapshot()
	assert.Equal(t, "2024-01-11", snap.Date)
	require.NotNil(t, snap.Detail)
	assert.Equal(t, "2024-01-11", snap.Detail.Date)
}

func TestNewDetailController_RequiresFetcher(t *testing.T) {
	_, err := NewDetailController(nil, 1)
	assert.Error(t, err)
}
