package engine

import (
	"log"
	"math/rand"
	"sort"

	"babylon-engine/internal/models"
)

// weightedSampler - выборка без возвращения по кумулятивным весам
// (бинарный поиск по префиксным суммам вместо размножения кандидатов).
type weightedSampler struct {
	items   []models.Actor
	weights []float64
	rng     *rand.Rand
}

func newWeightedSampler(items []models.Actor, weightOf func(models.Actor) float64, rng *rand.Rand) *weightedSampler {
	s := &weightedSampler{rng: rng}
	for _, it := range items {
		w := weightOf(it)
		if w <= 0 {
			continue
		}
		s.items = append(s.items, it)
		s.weights = append(s.weights, w)
	}
	return s
}

// take извлекает одного кандидата пропорционально весу и удаляет его из пула.
func (s *weightedSampler) take() (models.Actor, bool) {
	if len(s.items) == 0 {
		return models.Actor{}, false
	}

	prefix := make([]float64, len(s.weights))
	sum := 0.0
	for i, w := range s.weights {
		sum += w
		prefix[i] = sum
	}

	r := s.rng.Float64() * sum
	idx := sort.SearchFloat64s(prefix, r)
	if idx >= len(s.items) {
		idx = len(s.items) - 1
	}

	picked := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.weights = append(s.weights[:idx], s.weights[idx+1:]...)
	return picked, true
}

// selectActors отбирает каст из репозитория: 3 главных, 15 второстепенных,
// ~50 статистов. Каждая роль берет из своего взвешенного пула, исключая
// уже занятые ID. Каждому отобранному актору назначается роль, свежая
// начальная удача (30/40/30) и настроение (равномерно в [-1, 1]).
//
// Если в репозитории меньше уникальных акторов, чем требуется, роль
// получает меньше целевого количества - с предупреждением в логе,
// без ошибки (см. DESIGN.md, Open Questions).
func (e *Engine) selectActors() []models.Actor {
	taken := make(map[string]bool)
	var selected []models.Actor

	plan := []struct {
		role  models.Role
		count int
	}{
		{models.RoleMain, e.tuning.MainCount},
		{models.RoleSupporting, e.tuning.SupportingCount},
		{models.RoleExtra, e.tuning.ExtraCount},
	}

	for _, p := range plan {
		weights := e.tuning.TierWeights[p.role]

		var pool []models.Actor
		for _, a := range e.actors {
			if !taken[a.ID] {
				pool = append(pool, a)
			}
		}

		sampler := newWeightedSampler(pool, func(a models.Actor) float64 {
			return weights[a.Tier]
		}, e.rng)

		picked := 0
		for picked < p.count {
			a, ok := sampler.take()
			if !ok {
				break
			}
			if taken[a.ID] {
				// Дубликаты ID в репозитории пропускаем
				continue
			}
			taken[a.ID] = true

			a.Role = p.role
			a.InitialLuck = e.rollInitialLuck()
			a.InitialMood = e.rng.Float64()*2 - 1
			selected = append(selected, a)
			picked++
		}

		if picked < p.count {
			log.Printf("[Engine] В репозитории не хватило акторов для роли '%s': отобрано %d из %d", p.role, picked, p.count)
		}
	}

	log.Printf("[Engine] Каст отобран: %d акторов", len(selected))
	return selected
}

// rollInitialLuck бросает начальную удачу по весам low/medium/high.
func (e *Engine) rollInitialLuck() models.Luck {
	w := e.tuning.InitialLuckWeights
	total := w[0] + w[1] + w[2]
	r := e.rng.Float64() * total
	switch {
	case r < w[0]:
		return models.LuckLow
	case r < w[0]+w[1]:
		return models.LuckMedium
	default:
		return models.LuckHigh
	}
}
