package storage

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settlement"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore("")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore(t *testing.T) {
	store := newTestStore(t)
	key := settlement.StateKey()

	_, err := store.Load(key)
	check.True(t, errors.Is(err, settlement.ErrNotFound))

	assert.NoError(t, store.Create(key, 42, settlement.TagState))
	err = store.Create(key, 42, settlement.TagState)
	check.True(t, errors.Is(err, settlement.ErrAlreadyInitialized))

	value := []byte{1, 2, 3}
	assert.NoError(t, store.Store(key, value))
	got, err := store.Load(key)
	assert.NoError(t, err)
	check.Equal(t, value, got)

	assert.NoError(t, store.Delete(key))
	_, err = store.Load(key)
	check.True(t, errors.Is(err, settlement.ErrNotFound))

	// Deleted keys can be allocated again
	check.NoError(t, store.Create(key, 42, settlement.TagState))
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	assert.NoError(t, err)

	var id core.AuctionID
	id[0] = 7
	key := settlement.AuctionKey(id)
	value := []byte("auction record")

	assert.NoError(t, store.Create(key, uint64(len(value)), settlement.TagAuction))
	assert.NoError(t, store.Store(key, value))
	assert.NoError(t, store.Close())

	// Records survive a reopen
	store, err = NewBadgerStore(dir)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.Load(key)
	assert.NoError(t, err)
	check.Equal(t, value, got)
}
