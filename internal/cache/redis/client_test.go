package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plan struct {
	SQL        string  `json:"sql"`
	Confidence float64 `json:"confidence"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewClientFromOptions(&goredis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSetGetQuery(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	var got plan
	hit, err := client.GetQuery(ctx, "abc", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := plan{SQL: "SELECT 1", Confidence: 0.9}
	require.NoError(t, client.SetQuery(ctx, "abc", want, time.Minute))
	assert.True(t, mr.Exists("query:abc"))

	hit, err = client.GetQuery(ctx, "abc", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	hit, err = client.GetQuery(ctx, "abc", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetQuery_CorruptPayload(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("query:bad", "{not json"))

	var got plan
	hit, err := client.GetQuery(context.Background(), "bad", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestGetQuery_ServerDown(t *testing.T) {
	client, mr := newTestClient(t)
	mr.Close()

	var got plan
	_, err := client.GetQuery(context.Background(), "abc", &got)
	assert.Error(t, err)
}

func TestInvalidateQueries(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetQuery(ctx, "a", plan{}, 0))
	require.NoError(t, client.SetQuery(ctx, "b", plan{}, 0))
	require.NoError(t, mr.Set("other", "keep"))

	deleted, err := client.InvalidateQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.True(t, mr.Exists("other"))
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClientFromOptions(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	assert.Error(t, err)
}
