package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *BoltDB {
	t.Helper()
	db, err := NewBolt(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreAndGet(t *testing.T) {
	db := openTemp(t)

	missing, err := db.GetCachedBody("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.StoreBody(&CachedBody{Key: "t=Metropolis", Body: []byte(`{"Title":"Metropolis"}`), ContentType: "application/json"}))

	got, err := db.GetCachedBody("t=Metropolis")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"Title":"Metropolis"}`, string(got.Body))
	assert.Equal(t, "application/json", got.ContentType)
	assert.False(t, got.StoredAt.IsZero())

	assert.Error(t, db.StoreBody(&CachedBody{}))
}

func TestDeleteOlderThan(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	db.now = func() time.Time { return base }
	require.NoError(t, db.StoreBody(&CachedBody{Key: "old", Body: []byte("1")}))
	db.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, db.StoreBody(&CachedBody{Key: "new", Body: []byte("2")}))

	removed, err := db.DeleteOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	old, _ := db.GetCachedBody("old")
	assert.Nil(t, old)
	fresh, _ := db.GetCachedBody("new")
	assert.NotNil(t, fresh)
}
