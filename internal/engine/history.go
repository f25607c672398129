package engine

import (
	"sort"
	"time"

	"babylon-engine/internal/models"
)

const (
	maxHistoryHighlights = 10
	maxHistoryTopMoments = 5
)

// BuildHistory сворачивает завершенную игру в сводку для межигровой
// преемственности. Сводка намеренно мала: следующая генерация получает
// итоги вопросов и горстку ярких моментов, а не весь таймлайн.
func BuildHistory(game *models.GeneratedGame) models.GameHistory {
	h := models.GameHistory{
		GameID:    game.ID,
		CreatedAt: time.Now().UTC(),
	}

	if game.Resolution != nil {
		h.Summary = game.Resolution.Narrative
		for _, res := range game.Resolution.Results {
			h.KeyOutcomes = append(h.KeyOutcomes, models.KeyOutcome{
				QuestionText: res.Text,
				Outcome:      res.Outcome,
				Explanation:  res.Explanation,
			})
		}
	}

	// Хайлайты - события с раскрытой подсказкой, в хронологическом порядке
	for _, day := range game.Timeline {
		for _, ev := range day.Events {
			if ev.PointsToward == nil {
				continue
			}
			h.Highlights = append(h.Highlights, ev)
			if len(h.Highlights) == maxHistoryHighlights {
				break
			}
		}
		if len(h.Highlights) == maxHistoryHighlights {
			break
		}
	}

	// Топ постов по модулю сентимента
	var posts []models.FeedPost
	for _, day := range game.Timeline {
		posts = append(posts, day.FeedPosts...)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return abs(posts[i].Sentiment) > abs(posts[j].Sentiment)
	})
	if len(posts) > maxHistoryTopMoments {
		posts = posts[:maxHistoryTopMoments]
	}
	h.TopMoments = posts

	return h
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
