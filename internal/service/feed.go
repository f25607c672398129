package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"babylon-engine/internal/models"
	"babylon-engine/internal/schemas"
)

// FeedGenerator - фид-коллаборатор: по событиям дня и составу каста
// возвращает посты социальной ленты.
type FeedGenerator interface {
	GeneratePosts(ctx context.Context, day int, events []models.WorldEvent, actors []models.Actor, revealOutcomes bool) ([]models.FeedPost, error)
}

// aiFeedGenerator реализует FeedGenerator поверх генеративного коллаборатора.
type aiFeedGenerator struct {
	ai AIClient
}

// NewAIFeedGenerator создает FeedGenerator на базе AI клиента.
func NewAIFeedGenerator(ai AIClient) FeedGenerator {
	return &aiFeedGenerator{ai: ai}
}

const feedSystemPrompt = `You write short social feed posts reacting to world events in a prediction-market game.
Respond with JSON: {"posts": [{"author": "<actor id>", "content": "...", "type": "post|reply", "sentiment": -1..1, "clueStrength": 0..1, "replyTo": "<post id, optional>"}]}.
Authors must be actor ids from the roster. Posts react to today's events only.`

// GeneratePosts запрашивает у коллаборатора посты ленты за один день.
func (g *aiFeedGenerator) GeneratePosts(ctx context.Context, day int, events []models.WorldEvent, actors []models.Actor, revealOutcomes bool) ([]models.FeedPost, error) {
	var input strings.Builder
	fmt.Fprintf(&input, "Day %d.\n", day)
	if revealOutcomes {
		input.WriteString("Late season: posts may hint openly at where questions are heading.\n")
	} else {
		input.WriteString("Early season: posts must stay speculative, no open hints.\n")
	}

	input.WriteString("Today's public events:\n")
	for _, e := range events {
		if e.Visibility != "public" {
			continue
		}
		fmt.Fprintf(&input, "  - [%s] %s (participants: %s)\n", e.Type, e.Description, strings.Join(e.Participants, ", "))
	}

	input.WriteString("Roster:\n")
	for _, a := range actors {
		fmt.Fprintf(&input, "  - %s = %s (%s)\n", a.ID, a.Name, a.Role)
	}

	raw, _, err := g.ai.GenerateJSON(ctx, "feed", feedSystemPrompt, input.String(), GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации постов ленты (день %d): %w", day, err)
	}

	posts, err := schemas.ParseFeedPosts(raw)
	if err != nil {
		return nil, fmt.Errorf("невалидный ответ фид-коллаборатора (день %d): %w", day, err)
	}

	// Проставляем временные метки и отбрасываем посты от неизвестных авторов
	known := make(map[string]bool, len(actors))
	for _, a := range actors {
		known[a.ID] = true
	}
	out := posts[:0]
	for _, p := range posts {
		if !known[p.Author] {
			log.Printf("[Feed] Пост от неизвестного автора '%s' отброшен (день %d)", p.Author, day)
			continue
		}
		if p.Timestamp.IsZero() {
			p.Timestamp = time.Now().UTC()
		}
		out = append(out, p)
	}

	log.Printf("[Feed] День %d: получено %d постов ленты", day, len(out))
	return out, nil
}
