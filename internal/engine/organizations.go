package engine

import (
	"log"
	"sort"

	"babylon-engine/internal/models"
)

// Веса аффилиаций по роли актора.
const (
	orgWeightMain       = 3
	orgWeightSupporting = 2
	orgWeightExtra      = 1
)

// extractOrganizations обходит аффилиации отобранных акторов и возвращает
// задействованные организации по убыванию накопленного веса. Результат
// служит только контекстом для генерации - акторов и связи он не меняет.
func (e *Engine) extractOrganizations(actors []models.Actor) []models.Organization {
	weights := make(map[string]int)
	for _, a := range actors {
		w := orgWeightExtra
		switch a.Role {
		case models.RoleMain:
			w = orgWeightMain
		case models.RoleSupporting:
			w = orgWeightSupporting
		}
		for _, orgID := range a.Affiliations {
			weights[orgID] += w
		}
	}

	byID := make(map[string]models.Organization, len(e.orgs))
	for _, o := range e.orgs {
		byID[o.ID] = o
	}

	var out []models.Organization
	for orgID := range weights {
		if org, ok := byID[orgID]; ok {
			out = append(out, org)
		} else {
			log.Printf("[Engine] Аффилиация с неизвестной организацией '%s' пропущена", orgID)
		}
	}

	// По убыванию веса; при равенстве - по ID для стабильного порядка
	sort.Slice(out, func(i, j int) bool {
		wi, wj := weights[out[i].ID], weights[out[j].ID]
		if wi != wj {
			return wi > wj
		}
		return out[i].ID < out[j].ID
	})

	log.Printf("[Engine] Извлечено организаций: %d", len(out))
	return out
}
