package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseStore_AcquireIsExclusive(t *testing.T) {
	_, client := newTestClient(t)
	a := NewLeaseStore(client)
	b := NewLeaseStore(client)
	ctx := context.Background()

	ok, err := a.Acquire(ctx, "reconcile:inv-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "reconcile:inv-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held lease should not be granted twice")

	ok, err = b.Acquire(ctx, "reconcile:inv-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different key is independent")
}

func TestLeaseStore_ReleaseFreesLease(t *testing.T) {
	_, client := newTestClient(t)
	a := NewLeaseStore(client)
	b := NewLeaseStore(client)
	ctx := context.Background()

	ok, err := a.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.Release(ctx, "k"))

	ok, err = b.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeaseStore_ReleaseKeepsForeignLease(t *testing.T) {
	s, client := newTestClient(t)
	a := NewLeaseStore(client)
	b := NewLeaseStore(client)
	ctx := context.Background()

	ok, err := a.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// a's lease expires and b takes over before a finishes.
	s.FastForward(2 * time.Minute)
	ok, err = b.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.Release(ctx, "k"))
	assert.True(t, s.Exists("lease:k"), "a must not release b's lease")
}

func TestLeaseStore_Expires(t *testing.T) {
	s, client := newTestClient(t)
	store := NewLeaseStore(client)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(31 * time.Second)

	ok, err = store.Acquire(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
