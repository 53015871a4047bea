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

func TestMemory_SetGetAndCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	value := []byte("payload")
	require.NoError(t, m.Set(ctx, "k", value, time.Minute, "books"))
	value[0] = 'X'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))

	got[0] = 'Y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "payload", string(again))
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Second))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestMemory_InvalidateTagsIsTargeted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "list", []byte("l"), 0, "books", "shared"))
	require.NoError(t, m.Set(ctx, "detail", []byte("d"), 0, "book", "shared"))
	require.NoError(t, m.Set(ctx, "other", []byte("o"), 0, "unrelated"))

	require.NoError(t, m.InvalidateTags(ctx, "books"))
	_, ok, _ := m.Get(ctx, "list")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "detail")
	assert.True(t, ok)

	require.NoError(t, m.InvalidateTags(ctx, "shared"))
	_, ok, _ = m.Get(ctx, "detail")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "other")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_ResetReplacesTags(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("1"), 0, "a"))
	require.NoError(t, m.Set(ctx, "k", []byte("2"), 0, "b"))

	require.NoError(t, m.InvalidateTags(ctx, "a"))
	got, ok, _ := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "2", string(got))
}

func TestRedis_RoundTrip(t *testing.T) {
	redisURL := os.Getenv("BOOKDASH_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("BOOKDASH_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, redisURL, "bookdash-test-"+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.Set(ctx, "list", []byte("l"), time.Minute, "books", "shared"))
	require.NoError(t, r.Set(ctx, "detail", []byte("d"), time.Minute, "book", "shared"))

	got, ok, err := r.Get(ctx, "list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "l", string(got))

	require.NoError(t, r.InvalidateTags(ctx, "books"))
	_, ok, err = r.Get(ctx, "list")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = r.Get(ctx, "detail")
	assert.True(t, ok)

	require.NoError(t, r.InvalidateTags(ctx, "shared"))
	_, ok, _ = r.Get(ctx, "detail")
	assert.False(t, ok)
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", "")
	assert.Error(t, err)
}
