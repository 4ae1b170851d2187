package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "a", []byte("payload"), 0))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "a", []byte("abc"), 0))

	got, _ := m.Get(ctx, "a")
	got[0] = 'X'

	again, _ := m.Get(ctx, "a")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, "short", []byte("x"), time.Minute))
	require.NoError(t, m.Put(ctx, "forever", []byte("y"), 0))

	_, err := m.Get(ctx, "short")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, "a", []byte("x"), time.Minute))
	require.NoError(t, m.Put(ctx, "b", []byte("y"), time.Hour))
	require.NoError(t, m.Put(ctx, "c", []byte("z"), 0))

	now = now.Add(30 * time.Minute)
	removed, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "a", []byte("x"), 0))
	require.NoError(t, m.Delete(ctx, "a"))
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "a", []byte("old"), 0))
	require.NoError(t, m.Put(ctx, "a", []byte("new"), 0))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}
