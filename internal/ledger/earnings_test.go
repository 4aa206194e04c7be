package ledger

import (
	"testing"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEarnings_Bounds(t *testing.T) {
	for _, c := range catalog.Default().Courses() {
		for p := -10; p <= 110; p++ {
			e := ComputeEarnings(c, p)
			assert.GreaterOrEqual(t, e, 0)
			assert.LessOrEqual(t, e, c.TokenReward)
		}
		assert.Equal(t, c.TokenReward, ComputeEarnings(c, 100))
		assert.Equal(t, 0, ComputeEarnings(c, 0))
	}
}

func TestComputeEarnings_Floors(t *testing.T) {
	c := catalog.Course{TokenReward: 999}
	assert.Equal(t, 329, ComputeEarnings(c, 33))
	assert.Equal(t, 989, ComputeEarnings(c, 99))
}

func TestTotalEarnings(t *testing.T) {
	cat := testCatalog(t)
	total := TotalEarnings(cat, map[string]int{
		"polygon-basics":        100,
		"ethereum-fundamentals": 40,
		"not-in-catalog":        100,
	})
	assert.Equal(t, 1000+600, total)
	assert.Equal(t, 0, TotalEarnings(cat, nil))
}

func TestEarningsReport(t *testing.T) {
	cat := testCatalog(t)
	l := New(cat, store.NewMemoryStore(), nil)
	l.Complete("polygon-basics")
	_, err := l.Advance("ethereum-fundamentals", 5)
	require.NoError(t, err)

	r := l.Earnings(5000)
	require.Len(t, r.Courses, 3)
	assert.Equal(t, 1000, r.Courses[0].Earned)
	assert.Equal(t, 300, r.Courses[1].Earned)
	assert.Equal(t, 1300, r.Total)
	assert.Equal(t, 26, r.GoalPercent)

	require.Len(t, r.Games, 1)
	assert.True(t, r.Games[0].Placeholder)
	assert.Equal(t, 0, r.Games[0].Earned)
	assert.Equal(t, 500, r.Games[0].MaxReward)

	assert.Equal(t, 100, l.Earnings(1000).GoalPercent, "goal percent is capped")
	assert.Equal(t, 0, l.Earnings(0).GoalPercent)
}
