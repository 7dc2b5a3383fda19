package router

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server: REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisStorage(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	s, err := NewRedisStorage(context.Background(), url, "test:ratelimit:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Reset()
		_ = s.Close()
	})

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("k", []byte("v"), time.Minute))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete("k"))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("a", []byte("1"), time.Minute))
	require.NoError(t, s.Reset())
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisStorageRejectsBadURL(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "http://not-redis", "x:")
	assert.Error(t, err)
}
