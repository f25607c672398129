package engine

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babylon-engine/internal/models"
)

func TestBuildHistory_CapsAndOrdering(t *testing.T) {
	game := &models.GeneratedGame{ID: uuid.New()}
	game.Resolution = &models.GameResolution{
		Narrative: "The season closes.",
		Results: []models.QuestionResult{
			{QuestionID: "question-1", Text: "A?", Outcome: true, Explanation: "confirmed"},
		},
	}

	// 15 событий с раскрытой подсказкой и столько же скрытых
	var days []models.DayTimeline
	for d := 1; d <= 15; d++ {
		days = append(days, models.DayTimeline{
			Day: d,
			Events: []models.WorldEvent{
				{ID: fmt.Sprintf("open-%d", d), PointsToward: boolPtr(true)},
				{ID: fmt.Sprintf("hidden-%d", d)},
			},
			FeedPosts: []models.FeedPost{
				{ID: fmt.Sprintf("post-%d", d), Author: "a", Content: "x", Sentiment: float64(d) / 15},
			},
		})
	}
	game.Timeline = days

	h := BuildHistory(game)

	assert.Equal(t, game.ID, h.GameID)
	assert.Equal(t, "The season closes.", h.Summary)
	require.Len(t, h.KeyOutcomes, 1)
	assert.Equal(t, "A?", h.KeyOutcomes[0].QuestionText)

	// Хайлайты: только раскрытые события, хронологически, не больше 10
	require.Len(t, h.Highlights, maxHistoryHighlights)
	assert.Equal(t, "open-1", h.Highlights[0].ID)
	for _, ev := range h.Highlights {
		assert.NotNil(t, ev.PointsToward)
	}

	// Топ моментов: 5 постов с максимальным |sentiment|
	require.Len(t, h.TopMoments, maxHistoryTopMoments)
	assert.Equal(t, "post-15", h.TopMoments[0].ID)
	assert.Equal(t, "post-11", h.TopMoments[4].ID)
}

func TestBuildHistory_UnresolvedGame(t *testing.T) {
	game := &models.GeneratedGame{ID: uuid.New()}

	h := BuildHistory(game)
	assert.Empty(t, h.Summary)
	assert.Empty(t, h.KeyOutcomes)
	assert.Empty(t, h.Highlights)
	assert.Empty(t, h.TopMoments)
}
