package engine

import (
	"fmt"
	"log"

	"babylon-engine/internal/models"
)

// Метки связей. Положительные связи определяют состав групповых чатов.
var (
	mainPairRelations       = []string{"rival", "ally"}
	mainSupportRelations    = []string{"advisor", "source", "critic", "ally", "friend"}
	supportSupportRelations = []string{"ally", "friend", "rival", "source"}
	positiveRelations       = map[string]bool{"ally": true, "friend": true, "advisor": true, "source": true}
)

// buildConnections строит граф связей каста: все пары главных акторов,
// по 3-5 связей от каждого главного к различным второстепенным и 2-3 связи
// между второстепенными. Пары дедуплицируются в обоих направлениях; после
// этой фазы граф заморожен.
func (e *Engine) buildConnections(actors []models.Actor) []models.ActorConnection {
	var mains, supporting []models.Actor
	for _, a := range actors {
		switch a.Role {
		case models.RoleMain:
			mains = append(mains, a)
		case models.RoleSupporting:
			supporting = append(supporting, a)
		}
	}

	var connections []models.ActorConnection
	seen := make(map[string]bool)

	addEdge := func(a, b string, relation, context string) bool {
		if a == b || seen[a+"|"+b] || seen[b+"|"+a] {
			return false
		}
		seen[a+"|"+b] = true
		connections = append(connections, models.ActorConnection{
			ActorA:   a,
			ActorB:   b,
			Relation: relation,
			Context:  context,
		})
		return true
	}

	// Все пары главных: соперник или союзник, 50/50
	for i := 0; i < len(mains); i++ {
		for j := i + 1; j < len(mains); j++ {
			relation := mainPairRelations[e.rng.Intn(len(mainPairRelations))]
			addEdge(mains[i].ID, mains[j].ID, relation,
				fmt.Sprintf("%s and %s are long-time %ss in the public eye", mains[i].Name, mains[j].Name, relation))
		}
	}

	// От каждого главного - 3-5 связей к различным второстепенным
	for _, m := range mains {
		if len(supporting) == 0 {
			break
		}
		target := 3 + e.rng.Intn(3) // 3..5
		perm := e.rng.Perm(len(supporting))
		added := 0
		for _, idx := range perm {
			if added >= target {
				break
			}
			s := supporting[idx]
			relation := mainSupportRelations[e.rng.Intn(len(mainSupportRelations))]
			if addEdge(m.ID, s.ID, relation,
				fmt.Sprintf("%s acts as %s to %s", s.Name, relation, m.Name)) {
				added++
			}
		}
	}

	// 2-3 связи между второстепенными
	if len(supporting) >= 2 {
		target := 2 + e.rng.Intn(2) // 2..3
		added := 0
		// Ограничиваем число попыток, чтобы не зациклиться на малом пуле
		for attempt := 0; attempt < target*10 && added < target; attempt++ {
			i := e.rng.Intn(len(supporting))
			j := e.rng.Intn(len(supporting))
			if i == j {
				continue
			}
			relation := supportSupportRelations[e.rng.Intn(len(supportSupportRelations))]
			if addEdge(supporting[i].ID, supporting[j].ID, relation,
				fmt.Sprintf("%s and %s know each other through industry circles", supporting[i].Name, supporting[j].Name)) {
				added++
			}
		}
	}

	log.Printf("[Engine] Граф связей построен: %d ребер", len(connections))
	return connections
}

// positivePeers возвращает ID акторов, положительно связанных с данным
// (ally/friend/advisor/source), не более limit.
func positivePeers(actorID string, connections []models.ActorConnection, limit int) []string {
	var peers []string
	for _, c := range connections {
		if !c.Involves(actorID) || !positiveRelations[c.Relation] {
			continue
		}
		peers = append(peers, c.Other(actorID))
		if len(peers) >= limit {
			break
		}
	}
	return peers
}
