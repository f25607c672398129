package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseForDay_Boundaries(t *testing.T) {
	cases := []struct {
		day  int
		name string
	}{
		{1, "early"},
		{10, "early"},
		{11, "middle"},
		{20, "middle"},
		{21, "late"},
		{25, "late"},
		{26, "climax"},
		{29, "climax"},
		{30, "resolution"},
		{35, "resolution"}, // дни за пределами таблицы прижимаются к последней фазе
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, PhaseForDay(tc.day, canonicalSeasonDays).Name, "день %d", tc.day)
	}
}

func TestPhaseForDay_ScalesShortSeason(t *testing.T) {
	// Сезон короче канонических 30 дней проецируется на таблицу фаз
	// пропорционально, последний день всегда попадает в развязку.
	cases := []struct {
		day, total int
		name       string
	}{
		{1, 15, "early"},
		{5, 15, "early"},
		{6, 15, "middle"},
		{10, 15, "middle"},
		{12, 15, "late"},
		{13, 15, "climax"},
		{14, 15, "climax"},
		{15, 15, "resolution"},
		{1, 3, "early"},
		{2, 3, "middle"},
		{3, 3, "resolution"},
		{1, 1, "resolution"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, PhaseForDay(tc.day, tc.total).Name, "день %d из %d", tc.day, tc.total)
	}
}

func TestPhases_RevealChanceMonotonic(t *testing.T) {
	prev := -1.0
	for _, p := range phases {
		assert.GreaterOrEqual(t, p.phase.RevealChance, prev,
			"вероятность раскрытия не должна падать от фазы к фазе")
		prev = p.phase.RevealChance
	}
	assert.Equal(t, 0.40, PhaseForDay(15, canonicalSeasonDays).RevealChance)
	assert.Equal(t, 1.0, PhaseForDay(30, canonicalSeasonDays).RevealChance)
	assert.Equal(t, 1.0, PhaseForDay(15, 15).RevealChance)
}

func TestTuning_FirstResolutionDay(t *testing.T) {
	cases := []struct {
		days, want int
	}{
		{30, 28},
		{15, 13},
		{3, 1},
		{1, 1},
	}
	for _, tc := range cases {
		tu := DefaultTuning()
		tu.Days = tc.days
		assert.Equal(t, tc.want, tu.FirstResolutionDay(), "сезон из %d дней", tc.days)
	}
}
