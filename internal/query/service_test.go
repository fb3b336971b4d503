package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	rediscache "github.com/scout-dashboard/suqi/internal/cache/redis"
	"github.com/scout-dashboard/suqi/internal/storage/models"
	"github.com/scout-dashboard/suqi/pkg/circuitbreaker"
	"github.com/scout-dashboard/suqi/pkg/retry"
)

type failingCache struct {
	mu    sync.Mutex
	calls int
}

func (c *failingCache) GetQuery(context.Context, string, interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return false, errors.New("connection refused")
}

func (c *failingCache) SetQuery(context.Context, string, interface{}, time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return errors.New("connection refused")
}

type flakyHistory struct {
	mu       sync.Mutex
	failures int
	attempts int
	records  []models.QueryRecord
}

func (h *flakyHistory) InsertQueryRecord(_ context.Context, r *models.QueryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts++
	if h.failures > 0 {
		h.failures--
		return errors.New("database is locked")
	}
	h.records = append(h.records, *r)
	return nil
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Logger: zap.NewNop()}
}

func TestProcessQuery_NoBackends(t *testing.T) {
	svc := NewService(newTestEngine(t))

	resp, err := svc.ProcessQuery(context.Background(), QueryRequest{Question: "what is the total revenue"})
	require.NoError(t, err)

	_, err = uuid.Parse(resp.ID)
	assert.NoError(t, err)
	assert.Equal(t, "what is the total revenue", resp.Question)
	assert.Equal(t, MethodSemantic, resp.Method)
	assert.False(t, resp.Cached)
	assert.GreaterOrEqual(t, resp.ExecutionTimeMS, int64(0))
}

func TestProcessQuery_CachesPlans(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := rediscache.NewClientFromOptions(&goredis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	svc := NewService(newTestEngine(t), WithCache(cache, time.Minute))
	ctx := context.Background()

	first, err := svc.ProcessQuery(ctx, QueryRequest{Question: "top 5 stores in Cebu"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, mr.Keys(), 1)

	second, err := svc.ProcessQuery(ctx, QueryRequest{Question: "top 5 stores in Cebu"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.RAGQueryResult, second.RAGQueryResult)
}

func TestProcessQuery_CacheFailureIsIgnored(t *testing.T) {
	cache := &failingCache{}
	breaker := circuitbreaker.New("test-cache", circuitbreaker.Config{FailureThreshold: 2, Cooldown: time.Hour})
	svc := NewService(newTestEngine(t), WithCache(cache, 0), WithBreaker(breaker))
	ctx := context.Background()

	resp, err := svc.ProcessQuery(ctx, QueryRequest{Question: "xyzzy plugh"})
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, resp.Method)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	calls := cache.calls
	_, err = svc.ProcessQuery(ctx, QueryRequest{Question: "xyzzy plugh"})
	require.NoError(t, err)
	assert.Equal(t, calls, cache.calls, "open breaker skips the cache")
}

func TestProcessQuery_RecordsHistoryWithRetry(t *testing.T) {
	history := &flakyHistory{failures: 2}
	svc := NewService(newTestEngine(t), WithHistory(history), WithRetry(fastRetry()))

	resp, err := svc.ProcessQuery(context.Background(), QueryRequest{Question: "which area makes the most money", UserID: "u-7"})
	require.NoError(t, err)

	require.Len(t, history.records, 1)
	assert.Equal(t, 3, history.attempts)

	rec := history.records[0]
	assert.Equal(t, resp.ID, rec.ID)
	assert.Equal(t, "u-7", rec.UserID)
	assert.Equal(t, "rag", rec.Method)
	assert.Equal(t, resp.SQL, rec.SQL)
	assert.Equal(t, "rag_regional_share", rec.TemplateID)
}

func TestProcessQuery_HistoryFailureDoesNotFailQuery(t *testing.T) {
	history := &flakyHistory{failures: 10}
	svc := NewService(newTestEngine(t), WithHistory(history), WithRetry(fastRetry()))

	resp, err := svc.ProcessQuery(context.Background(), QueryRequest{Question: "executive summary"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SQL)
	assert.Empty(t, history.records)
}

func TestProcessQuery_CanceledContext(t *testing.T) {
	svc := NewService(newTestEngine(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessQuery(ctx, QueryRequest{Question: "total revenue"})
	assert.ErrorIs(t, err, context.Canceled)
}
