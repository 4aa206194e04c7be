package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/config"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/database"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createProfile(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Profile{ID: id, ExpiresAt: time.Now().Add(time.Hour)}).Error)
}

type userRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestProfileStore_SetGetRemove(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	s := NewProfileStore(db, "p1", nil, nil)

	var got userRecord
	assert.False(t, s.Get(KeyUser, &got), "absent key")

	require.NoError(t, s.Set(KeyUser, userRecord{ID: "user-1", Name: "Ada"}))
	require.True(t, s.Get(KeyUser, &got))
	assert.Equal(t, "Ada", got.Name)

	// overwrite goes through the upsert path
	require.NoError(t, s.Set(KeyUser, userRecord{ID: "user-1", Name: "Grace"}))
	require.True(t, s.Get(KeyUser, &got))
	assert.Equal(t, "Grace", got.Name)

	var count int64
	require.NoError(t, db.Model(&models.KVEntry{}).Where("profile_id = ?", "p1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, s.Remove(KeyUser))
	assert.False(t, s.Get(KeyUser, &got))
	require.NoError(t, s.Remove(KeyUser), "removing an absent key is fine")
}

func TestProfileStore_ProfilesAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	createProfile(t, db, "p2")
	a := NewProfileStore(db, "p1", nil, nil)
	b := NewProfileStore(db, "p2", nil, nil)

	require.NoError(t, a.Set(KeyCourseProgress, map[string]int{"polygon-basics": 40}))

	var progress map[string]int
	assert.False(t, b.Get(KeyCourseProgress, &progress))
	require.True(t, a.Get(KeyCourseProgress, &progress))
	assert.Equal(t, 40, progress["polygon-basics"])
}

func TestProfileStore_MalformedIsAbsent(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	s := NewProfileStore(db, "p1", nil, nil)

	require.NoError(t, db.Create(&models.KVEntry{ProfileID: "p1", Key: KeyUser, Value: "{not json"}).Error)

	var got userRecord
	assert.False(t, s.Get(KeyUser, &got))
}

func TestProfileStore_Encrypted(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	c, err := util.NewCipher("passphrase")
	require.NoError(t, err)
	s := NewProfileStore(db, "p1", c, nil)

	require.NoError(t, s.Set(KeyUser, userRecord{ID: "user-1", Name: "Ada"}))

	var entry models.KVEntry
	require.NoError(t, db.Where("profile_id = ?", "p1").Take(&entry).Error)
	assert.NotContains(t, entry.Value, "Ada")

	var got userRecord
	require.True(t, s.Get(KeyUser, &got))
	assert.Equal(t, "Ada", got.Name)

	// a store opened with another key cannot read the value and fails soft
	other, err := util.NewCipher("different")
	require.NoError(t, err)
	assert.False(t, NewProfileStore(db, "p1", other, nil).Get(KeyUser, &got))
}

func TestProfileStore_KeysSnapshotRestore(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	s := NewProfileStore(db, "p1", nil, nil)

	require.NoError(t, s.Set("courseProgress_polygon-basics", 20))
	require.NoError(t, s.Set("courseProgress_defi-on-polygon", 40))
	require.NoError(t, s.Set(KeyCourseProgress, map[string]int{}))
	require.NoError(t, s.Set("courseProgressXbad", 1))

	assert.Equal(t, []string{"courseProgress_defi-on-polygon", "courseProgress_polygon-basics"},
		s.Keys(LegacyCourseKeyPrefix), "underscore must not act as a LIKE wildcard")

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap, 4)

	require.NoError(t, s.Restore(map[string]json.RawMessage{
		KeyUser: json.RawMessage(`{"id":"user-9","name":"Restored"}`),
	}))
	assert.Empty(t, s.Keys(LegacyCourseKeyPrefix))

	var got userRecord
	require.True(t, s.Get(KeyUser, &got))
	assert.Equal(t, "Restored", got.Name)

	err = s.Restore(map[string]json.RawMessage{"x": json.RawMessage(`{`)})
	assert.True(t, errors.Is(err, ErrMalformedData))
	assert.True(t, s.Get(KeyUser, &got), "failed restore leaves data untouched")
}

func TestProfileStore_ClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	createProfile(t, db, "p1")
	s := NewProfileStore(db, "p1", nil, nil)
	require.NoError(t, database.Close(db))

	var got userRecord
	assert.False(t, s.Get(KeyUser, &got))
	err := s.Set(KeyUser, userRecord{ID: "user-1"})
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(s.Remove(KeyUser), ErrStorageUnavailable))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	var n int
	assert.False(t, s.Get("n", &n))
	require.NoError(t, s.Set("n", 7))
	require.True(t, s.Get("n", &n))
	assert.Equal(t, 7, n)

	s.SetRaw("n", []byte("nope"))
	assert.False(t, s.Get("n", &n))

	require.NoError(t, s.Remove("n"))
	assert.Empty(t, s.Keys(""))
}

// brokenStore fails every write the way an unreachable database does.
type brokenStore struct{ *MemoryStore }

func (b *brokenStore) Set(key string, value any) error { return ErrStorageUnavailable }
func (b *brokenStore) Remove(key string) error          { return ErrStorageUnavailable }

func TestFallback_KeepsWritesInMemory(t *testing.T) {
	primary := &brokenStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, primary.MemoryStore.Set("n", 1))
	f := NewFallback(primary, nil)

	var n int
	require.True(t, f.Get("n", &n))
	assert.Equal(t, 1, n)

	err := f.Set("n", 2)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	require.True(t, f.Get("n", &n))
	assert.Equal(t, 2, n)
	assert.True(t, f.Degraded())

	assert.Error(t, f.Remove("n"))
	assert.False(t, f.Get("n", &n))
}

func TestFallback_HealthyPrimary(t *testing.T) {
	primary := NewMemoryStore()
	f := NewFallback(primary, nil)

	require.NoError(t, f.Set("n", 3))
	var n int
	require.True(t, primary.Get("n", &n))
	assert.Equal(t, 3, n)
	assert.False(t, f.Degraded())
}
