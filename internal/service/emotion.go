package service

import (
	"fmt"
	"strings"

	"babylon-engine/internal/models"
)

// Эмоциональный коллаборатор: чистые функции, переводящие числовое
// состояние актора в текст для промптов. Никакого состояния не хранят.

// MoodDescription возвращает текстовое описание настроения в [-1, 1].
func MoodDescription(mood float64) string {
	switch {
	case mood <= -0.7:
		return "devastated"
	case mood <= -0.4:
		return "frustrated"
	case mood <= -0.1:
		return "uneasy"
	case mood < 0.1:
		return "neutral"
	case mood < 0.4:
		return "upbeat"
	case mood < 0.7:
		return "confident"
	default:
		return "triumphant"
	}
}

// LuckDescription возвращает текстовое описание уровня удачи.
func LuckDescription(luck models.Luck) string {
	switch luck {
	case models.LuckLow:
		return "things keep going wrong for them"
	case models.LuckHigh:
		return "things keep breaking their way"
	default:
		return "fortune is treating them evenly"
	}
}

// ActorStateContext собирает готовый для промпта фрагмент контекста:
// кто актор, в каком он состоянии и с кем связан.
func ActorStateContext(actor models.Actor, state models.ActorState, connections []models.ActorConnection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, tier %s): %s, mood is %s (%.2f), %s.",
		actor.Name, actor.Role, actor.Tier, actor.Personality,
		MoodDescription(state.Mood), state.Mood, LuckDescription(state.Luck))

	var rels []string
	for _, c := range connections {
		if c.Involves(actor.ID) {
			rels = append(rels, fmt.Sprintf("%s of %s", c.Relation, c.Other(actor.ID)))
		}
	}
	if len(rels) > 0 {
		fmt.Fprintf(&b, " Relationships: %s.", strings.Join(rels, ", "))
	}
	return b.String()
}
