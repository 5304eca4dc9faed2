package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	c := NewRedis(nil, "x:", time.Minute)
	_, isNoop := c.(Noop)
	require.True(t, isNoop)

	require.NoError(t, c.Set(context.Background(), "k", []byte("v")))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_EmptyAddr(t *testing.T) {
	assert.Nil(t, Open("", "", 0))
}

func TestRedis_RoundTrip(t *testing.T) {
	// This test requires REDIS_ADDR to point at a reachable server
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rc := Open(addr, os.Getenv("REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = rc.Close() })

	ctx := context.Background()
	c := NewRedis(rc, "test:"+uuid.NewString()[:8]+":", time.Minute)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "present", []byte(`{"type":"FeatureCollection"}`)))
	got, ok, err := c.Get(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"type":"FeatureCollection"}`, string(got))
}
