package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babylon-engine/internal/models"
)

func trackerWith(t *testing.T, seed int64, actors ...models.Actor) *StateTracker {
	t.Helper()
	return NewStateTracker(actors, rand.New(rand.NewSource(seed)), DefaultTuning())
}

func TestNewStateTracker_SanitizesInitialState(t *testing.T) {
	tr := trackerWith(t, 1,
		models.Actor{ID: "a", InitialMood: 5.0, InitialLuck: "weird"},
		models.Actor{ID: "b", InitialMood: -0.5, InitialLuck: models.LuckHigh},
	)

	sa, ok := tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, sa.Mood)
	assert.Equal(t, models.LuckMedium, sa.Luck)

	sb, ok := tr.Get("b")
	require.True(t, ok)
	assert.Equal(t, -0.5, sb.Mood)
	assert.Equal(t, models.LuckHigh, sb.Luck)
}

func TestApplyDailyDrift_KeepsStateInBounds(t *testing.T) {
	actors := poolOf(20)
	for i := range actors {
		actors[i].InitialLuck = models.LuckMedium
	}
	tr := trackerWith(t, 2, actors...)

	for day := 0; day < 1000; day++ {
		changes := tr.ApplyDailyDrift()
		for _, ch := range changes {
			assert.Equal(t, "drift", ch.Reason)
			assert.GreaterOrEqual(t, ch.Mood, -1.0)
			assert.LessOrEqual(t, ch.Mood, 1.0)
			assert.True(t, models.IsValidLuck(ch.LuckTo))
		}
	}
	for _, a := range actors {
		s, ok := tr.Get(a.ID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, s.Mood, -1.0)
		assert.LessOrEqual(t, s.Mood, 1.0)
		assert.True(t, models.IsValidLuck(s.Luck))
	}
}

func TestApplyEventDelta_PolarityBias(t *testing.T) {
	positive := true
	negative := false

	improvedPos, improvedNeg := 0, 0
	const rounds = 2000
	for i := 0; i < rounds; i++ {
		tr := trackerWith(t, int64(i), models.Actor{ID: "a", InitialMood: 0, InitialLuck: models.LuckMedium})

		ch, ok := tr.ApplyEventDelta("a", &positive)
		require.True(t, ok)
		if ch.MoodDelta > 0 {
			improvedPos++
		}

		tr = trackerWith(t, int64(i), models.Actor{ID: "a", InitialMood: 0, InitialLuck: models.LuckMedium})
		ch, ok = tr.ApplyEventDelta("a", &negative)
		require.True(t, ok)
		if ch.MoodDelta > 0 {
			improvedNeg++
		}
	}

	// 70/30: позитивные события улучшают заметно чаще негативных
	assert.Greater(t, improvedPos, rounds/2)
	assert.Less(t, improvedNeg, rounds/2)
}

func TestApplyEventDelta_UnknownActor(t *testing.T) {
	tr := trackerWith(t, 1, models.Actor{ID: "a", InitialLuck: models.LuckMedium})
	_, ok := tr.ApplyEventDelta("ghost", nil)
	assert.False(t, ok)
}

func TestClampMood(t *testing.T) {
	assert.Equal(t, 1.0, clampMood(1.3))
	assert.Equal(t, -1.0, clampMood(-2))
	assert.Equal(t, 0.25, clampMood(0.25))
}

func TestShiftLuck_Bounds(t *testing.T) {
	assert.Equal(t, models.LuckLow, shiftLuck(models.LuckLow, false))
	assert.Equal(t, models.LuckMedium, shiftLuck(models.LuckLow, true))
	assert.Equal(t, models.LuckHigh, shiftLuck(models.LuckMedium, true))
	assert.Equal(t, models.LuckLow, shiftLuck(models.LuckMedium, false))
	assert.Equal(t, models.LuckHigh, shiftLuck(models.LuckHigh, true))
	assert.Equal(t, models.LuckMedium, shiftLuck(models.LuckHigh, false))
}
