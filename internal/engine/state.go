package engine

import (
	"math/rand"

	"babylon-engine/internal/models"
)

// StateTracker хранит изменяемое состояние акторов по ходу игры.
// Мутируется только оркестратором таймлайна, один раз в день,
// никогда конкурентно.
type StateTracker struct {
	states map[string]models.ActorState
	order  []string // порядок обхода для детерминированности при заданном сиде
	rng    *rand.Rand
	tuning Tuning
}

// NewStateTracker инициализирует состояния из начальных значений акторов.
func NewStateTracker(actors []models.Actor, rng *rand.Rand, tuning Tuning) *StateTracker {
	t := &StateTracker{
		states: make(map[string]models.ActorState, len(actors)),
		rng:    rng,
		tuning: tuning,
	}
	for _, a := range actors {
		luck := a.InitialLuck
		if !models.IsValidLuck(luck) {
			luck = models.LuckMedium
		}
		t.states[a.ID] = models.ActorState{
			Mood: clampMood(a.InitialMood),
			Luck: luck,
		}
		t.order = append(t.order, a.ID)
	}
	return t
}

// Get возвращает текущее состояние актора.
func (t *StateTracker) Get(actorID string) (models.ActorState, bool) {
	s, ok := t.states[actorID]
	return s, ok
}

// ApplyDailyDrift применяет фоновый дрейф ко ВСЕМ акторам (не только
// участникам событий): 60% шанс сдвига настроения (±0.1, в 5% случаев
// крупный скачок ±0.2, направление равновероятно), 15% шанс сдвига удачи
// на один шаг в любую сторону с прижатием к границам.
func (t *StateTracker) ApplyDailyDrift() []models.StateChange {
	var changes []models.StateChange
	for _, id := range t.order {
		s := t.states[id]
		change := models.StateChange{ActorID: id, LuckFrom: s.Luck, LuckTo: s.Luck, Reason: "drift"}
		changed := false

		if t.rng.Float64() < t.tuning.DriftMoodChance {
			step := t.tuning.DriftMoodStep
			if t.rng.Float64() < t.tuning.DriftLargeSwingChance {
				step = t.tuning.DriftMoodLargeStep
			}
			if t.rng.Float64() < 0.5 {
				step = -step
			}
			newMood := clampMood(s.Mood + step)
			change.MoodDelta = newMood - s.Mood
			s.Mood = newMood
			changed = true
		}

		if t.rng.Float64() < t.tuning.DriftLuckChance {
			up := t.rng.Float64() < 0.5
			newLuck := shiftLuck(s.Luck, up)
			if newLuck != s.Luck {
				change.LuckTo = newLuck
				s.Luck = newLuck
				changed = true
			}
		}

		if changed {
			change.Mood = s.Mood
			t.states[id] = s
			changes = append(changes, change)
		}
	}
	return changes
}

// ApplyEventDelta применяет событийный сдвиг к одному участнику поверх
// дневного дрейфа. positive задает полярность события: true смещает в
// сторону улучшения с вероятностью EventPolarityBias (70/30), false -
// в сторону ухудшения, nil - 50/50.
func (t *StateTracker) ApplyEventDelta(actorID string, positive *bool) (models.StateChange, bool) {
	s, ok := t.states[actorID]
	if !ok {
		return models.StateChange{}, false
	}

	improveChance := 0.5
	if positive != nil {
		if *positive {
			improveChance = t.tuning.EventPolarityBias
		} else {
			improveChance = 1 - t.tuning.EventPolarityBias
		}
	}
	improve := t.rng.Float64() < improveChance

	change := models.StateChange{ActorID: actorID, LuckFrom: s.Luck, LuckTo: s.Luck, Reason: "event"}

	step := t.tuning.EventMoodStep
	if !improve {
		step = -step
	}
	newMood := clampMood(s.Mood + step)
	change.MoodDelta = newMood - s.Mood
	s.Mood = newMood

	if t.rng.Float64() < t.tuning.EventLuckChance {
		newLuck := shiftLuck(s.Luck, improve)
		if newLuck != s.Luck {
			change.LuckTo = newLuck
			s.Luck = newLuck
		}
	}

	change.Mood = s.Mood
	t.states[actorID] = s
	return change, true
}

// clampMood прижимает настроение к [-1, 1].
func clampMood(mood float64) float64 {
	if mood < -1 {
		return -1
	}
	if mood > 1 {
		return 1
	}
	return mood
}

// shiftLuck сдвигает удачу на один шаг с прижатием к границам шкалы.
func shiftLuck(luck models.Luck, up bool) models.Luck {
	switch luck {
	case models.LuckLow:
		if up {
			return models.LuckMedium
		}
		return models.LuckLow
	case models.LuckHigh:
		if up {
			return models.LuckHigh
		}
		return models.LuckMedium
	default:
		if up {
			return models.LuckHigh
		}
		return models.LuckLow
	}
}
