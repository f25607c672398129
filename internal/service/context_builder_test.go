package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
)

func testSetup() *models.GameSetup {
	return &models.GameSetup{
		Actors: []models.Actor{
			{ID: "actor-1", Name: "Vera Stone", Role: models.RoleMain, Tier: models.TierS, Personality: "ruthless dealmaker"},
			{ID: "actor-2", Name: "Max Reyes", Role: models.RoleSupporting, Tier: models.TierB},
		},
		Organizations: []models.Organization{
			{ID: "org-1", Name: "The Herald", Type: "media"},
		},
		Scenarios: []models.Scenario{
			{ID: "scenario-1", Title: "The Merger", Description: "Two empires collide", MainActors: []string{"actor-1"}},
		},
		Questions: []models.Question{
			{ID: "question-1", Text: "Will the merger close?", ScenarioID: "scenario-1", Outcome: true},
			{ID: "question-2", Text: "Will Vera resign?", ScenarioID: "scenario-1", Outcome: false},
		},
	}
}

func TestHistoryContext(t *testing.T) {
	b := NewContextBuilder(zap.NewNop(), "gpt-4o")

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", b.HistoryContext(nil))
	})

	t.Run("caps at two seasons", func(t *testing.T) {
		histories := []models.GameHistory{
			{Summary: "season one"},
			{Summary: "season two"},
			{Summary: "season three"},
		}
		got := b.HistoryContext(histories)
		assert.Contains(t, got, "season one")
		assert.Contains(t, got, "season two")
		assert.NotContains(t, got, "season three")
	})

	t.Run("includes outcomes", func(t *testing.T) {
		histories := []models.GameHistory{{
			Summary: "a turbulent season",
			KeyOutcomes: []models.KeyOutcome{
				{QuestionText: "Did the deal close?", Outcome: true, Explanation: "signed on day 28"},
			},
		}}
		got := b.HistoryContext(histories)
		assert.Contains(t, got, "resolved YES")
		assert.Contains(t, got, "signed on day 28")
	})
}

func TestSetupContext(t *testing.T) {
	b := NewContextBuilder(zap.NewNop(), "gpt-4o")
	got := b.SetupContext(testSetup())

	assert.Contains(t, got, "Vera Stone")
	assert.NotContains(t, got, "Max Reyes", "в сетап-контекст попадают только главные акторы")
	assert.Contains(t, got, "The Herald")
	assert.Contains(t, got, "The Merger")
	// Фиксированные исходы передаются коллаборатору открытым текстом
	assert.Contains(t, got, "[question-1] (resolves YES)")
	assert.Contains(t, got, "[question-2] (resolves NO)")
}

func TestDayContext_TruncatesOldDays(t *testing.T) {
	b := NewContextBuilder(zap.NewNop(), "gpt-4o")
	// Маленький бюджет, чтобы не собирать гигантский таймлайн
	b.tokenBudget = 400

	setup := testSetup()
	var days []models.DayTimeline
	for i := 1; i <= 30; i++ {
		days = append(days, models.DayTimeline{
			Day:     i,
			Summary: fmt.Sprintf("day %d filler: %s", i, strings.Repeat("drama ", 10)),
		})
	}

	got := b.DayContext(nil, setup, days)

	require.Contains(t, got, "Day 30:", "свежие дни сохраняются всегда")
	assert.NotContains(t, got, "Day 1:", "старые дни отброшены ради бюджета")
	assert.Contains(t, got, "(recent days)")
	assert.LessOrEqual(t, b.CountTokens(got), 400+b.CountTokens("Day 30: "+days[29].Summary),
		"после усечения контекст около бюджета")

	t.Run("short timeline untouched", func(t *testing.T) {
		short := b.DayContext(nil, setup, days[:2])
		assert.Contains(t, short, "Day 1:")
		assert.Contains(t, short, "Day 2:")
		assert.NotContains(t, short, "(recent days)")
	})
}

func TestCountTokens_FallsBackForUnknownModel(t *testing.T) {
	b := NewContextBuilder(zap.NewNop(), "totally-made-up-model")
	n := b.CountTokens("hello world, this is a token count check")
	assert.Greater(t, n, 0)
}
