package ledger

import (
	"errors"
	"testing"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Course{
		{ID: "polygon-basics", Title: "Polygon Basics", TokenReward: 1000, ModuleCount: 5},
		{ID: "ethereum-fundamentals", Title: "Ethereum Fundamentals", TokenReward: 1500, ModuleCount: 5},
		{ID: "odd-course", Title: "Odd", TokenReward: 999, ModuleCount: 3},
	}, []catalog.Game{
		{ID: "token-toss", Title: "Token Toss", MaxTokenReward: 500},
	}, []catalog.Mission{
		{ID: "basics", Type: catalog.MissionLearning, CourseID: "polygon-basics", XP: 50},
		{ID: "toss", Type: catalog.MissionGame, GameID: "token-toss", XP: 75},
		{ID: "race", Type: catalog.MissionGame, XP: 90},
	})
	require.NoError(t, err)
	return c
}

func TestAdvance_FiveModules(t *testing.T) {
	cat := testCatalog(t)
	l := New(cat, store.NewMemoryStore(), nil)
	course, err := cat.Course("polygon-basics")
	require.NoError(t, err)

	var percents, earnings []int
	for i := 0; i < 5; i++ {
		p, err := l.Advance(course.ID, course.ModuleCount)
		require.NoError(t, err)
		percents = append(percents, p)
		earnings = append(earnings, ComputeEarnings(course, p))
	}

	assert.Equal(t, []int{20, 40, 60, 80, 100}, percents)
	assert.Equal(t, []int{200, 400, 600, 800, 1000}, earnings)
}

func TestAdvance_CeilingIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(testCatalog(t), st, nil)

	for i := 0; i < 10; i++ {
		p, err := l.Advance("odd-course", 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, p, 100)
	}
	assert.Equal(t, 100, l.GetProgress("odd-course"))

	p, err := l.Advance("odd-course", 3)
	require.NoError(t, err)
	assert.Equal(t, 100, p)
}

func TestAdvance_ThreeModulesSequence(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)

	var got []int
	for i := 0; i < 4; i++ {
		p, err := l.Advance("odd-course", 3)
		require.NoError(t, err)
		got = append(got, p)
	}
	assert.Equal(t, []int{33, 66, 99, 100}, got)
}

func TestAdvance_InvalidModuleCount(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)
	_, err := l.Advance("polygon-basics", 0)
	assert.True(t, errors.Is(err, ErrInvalidModuleCount))
	assert.Equal(t, 0, l.GetProgress("polygon-basics"))
}

func TestAdvance_HugeModuleCountStillMoves(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)
	p, err := l.Advance("polygon-basics", 250)
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestProgress_Persisted(t *testing.T) {
	st := store.NewMemoryStore()
	cat := testCatalog(t)
	l := New(cat, st, nil)

	assert.Equal(t, 0, l.GetProgress("polygon-basics"))
	_, err := l.Advance("polygon-basics", 5)
	require.NoError(t, err)

	var saved map[string]int
	require.True(t, st.Get(store.KeyCourseProgress, &saved))
	assert.Equal(t, 20, saved["polygon-basics"])

	assert.Equal(t, 20, New(cat, st, nil).GetProgress("polygon-basics"))
}

func TestReset(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)
	_, err := l.Advance("polygon-basics", 5)
	require.NoError(t, err)

	l.Reset("polygon-basics")
	assert.Equal(t, 0, l.GetProgress("polygon-basics"))

	l.Reset("never-started")
	assert.Equal(t, 0, l.GetProgress("never-started"))
}

func TestResetAll(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(testCatalog(t), st, nil)
	l.Complete("polygon-basics")
	_, err := l.Advance("ethereum-fundamentals", 5)
	require.NoError(t, err)

	l.ResetAll()

	var saved map[string]int
	require.True(t, st.Get(store.KeyCourseProgress, &saved))
	assert.Equal(t, map[string]int{
		"polygon-basics":        0,
		"ethereum-fundamentals": 0,
		"odd-course":            0,
	}, saved)
}

func TestComplete(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)
	_, err := l.Advance("odd-course", 3)
	require.NoError(t, err)

	assert.Equal(t, 100, l.Complete("odd-course"))
	assert.Equal(t, 100, l.GetProgress("odd-course"))
}

func TestInit(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(store.KeyCourseProgress, map[string]int{"polygon-basics": 40}))
	l := New(testCatalog(t), st, nil)

	l.Init()

	var saved map[string]int
	require.True(t, st.Get(store.KeyCourseProgress, &saved))
	assert.Len(t, saved, 3)
	assert.Equal(t, 40, saved["polygon-basics"], "init keeps recorded progress")
}

func TestNew_MalformedAggregate(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetRaw(store.KeyCourseProgress, []byte("[1,2"))
	l := New(testCatalog(t), st, nil)
	assert.Empty(t, l.Snapshot())
}

func TestNew_ClampsStoredValues(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(store.KeyCourseProgress, map[string]int{"polygon-basics": 250, "odd-course": -5}))
	l := New(testCatalog(t), st, nil)
	assert.Equal(t, 100, l.GetProgress("polygon-basics"))
	assert.Equal(t, 0, l.GetProgress("odd-course"))
}

func TestNew_FoldsLegacyKeys(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(store.KeyCourseProgress, map[string]int{"polygon-basics": 20, "odd-course": 66}))
	require.NoError(t, st.Set("courseProgress_polygon-basics", 60))
	require.NoError(t, st.Set("courseProgress_odd-course", 33))

	l := New(testCatalog(t), st, nil)
	assert.Equal(t, 60, l.GetProgress("polygon-basics"), "larger legacy value wins")
	assert.Equal(t, 66, l.GetProgress("odd-course"))
	assert.Empty(t, st.Keys(store.LegacyCourseKeyPrefix))

	var saved map[string]int
	require.True(t, st.Get(store.KeyCourseProgress, &saved))
	assert.Equal(t, 60, saved["polygon-basics"])
}

func TestSnapshotIsCopy(t *testing.T) {
	l := New(testCatalog(t), store.NewMemoryStore(), nil)
	snap := l.Snapshot()
	snap["polygon-basics"] = 100
	assert.Equal(t, 0, l.GetProgress("polygon-basics"))
}

func TestModulesCompleted(t *testing.T) {
	five := catalog.Course{ModuleCount: 5}
	three := catalog.Course{ModuleCount: 3}

	assert.Equal(t, 0, ModulesCompleted(five, 0))
	assert.Equal(t, 2, ModulesCompleted(five, 40))
	assert.Equal(t, 5, ModulesCompleted(five, 100))
	assert.Equal(t, 3, ModulesCompleted(three, 99))
	assert.Equal(t, 3, ModulesCompleted(three, 100))
	assert.Equal(t, 0, ModulesCompleted(catalog.Course{}, 50))
}

type failingStore struct{ *store.MemoryStore }

func (failingStore) Set(string, any) error { return store.ErrStorageUnavailable }

func TestStorageUnavailableKeepsMemoryState(t *testing.T) {
	l := New(testCatalog(t), failingStore{store.NewMemoryStore()}, nil)
	p, err := l.Advance("polygon-basics", 5)
	require.NoError(t, err)
	assert.Equal(t, 20, p)
	assert.Equal(t, 20, l.GetProgress("polygon-basics"))
}
