package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"babylon-engine/internal/models"
	"babylon-engine/internal/schemas"
	"babylon-engine/internal/service"
)

// generateScenarios выполняет один генерационный запрос сценариев.
// Ответ валидируется жестко: сценарий без title/description/mainActors -
// фатальная ошибка всего прогона, без тихих дефолтов и частичного принятия.
func (e *Engine) generateScenarios(ctx context.Context, setup *models.GameSetup) ([]models.Scenario, error) {
	var input strings.Builder
	input.WriteString(e.ctxb.HistoryContext(e.histories))
	if e.theme != "" {
		fmt.Fprintf(&input, "Season theme: %s\n", e.theme)
	}
	input.WriteString("Main cast:\n")
	for _, a := range setup.ActorsByRole(models.RoleMain) {
		fmt.Fprintf(&input, "  - %s = %s: %s\n", a.ID, a.Name, a.Personality)
	}
	input.WriteString("Organizations (by relevance):\n")
	for _, o := range setup.Organizations {
		fmt.Fprintf(&input, "  - %s = %s (%s)\n", o.ID, o.Name, o.Type)
	}

	raw, _, err := e.ai.GenerateJSON(ctx, "scenarios", scenarioSystemPrompt, input.String(), service.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации сценариев: %w", err)
	}

	drafts, err := schemas.ParseScenarios(raw)
	if err != nil {
		// Валидационная ошибка фатальна для всего прогона
		return nil, fmt.Errorf("невалидный ответ сценариев: %w", err)
	}

	knownActor := make(map[string]bool)
	for _, a := range setup.Actors {
		knownActor[a.ID] = true
	}
	knownOrg := make(map[string]bool)
	for _, o := range setup.Organizations {
		knownOrg[o.ID] = true
	}

	scenarios := make([]models.Scenario, 0, len(drafts))
	for i, d := range drafts {
		// Сценарий ссылается только на отобранных акторов и организации:
		// неизвестные ID отбрасываются
		var mains []string
		for _, id := range d.MainActors {
			if knownActor[id] {
				mains = append(mains, id)
			} else {
				log.Printf("[Engine] Сценарий %q ссылается на неизвестного актора '%s', ссылка отброшена", d.Title, id)
			}
		}
		if len(mains) == 0 {
			return nil, fmt.Errorf("сценарий %q не ссылается ни на одного отобранного актора", d.Title)
		}
		var orgs []string
		for _, id := range d.Organizations {
			if knownOrg[id] {
				orgs = append(orgs, id)
			}
		}

		scenarios = append(scenarios, models.Scenario{
			ID:            fmt.Sprintf("scenario-%d", i+1),
			Title:         d.Title,
			Description:   d.Description,
			Theme:         d.Theme,
			MainActors:    mains,
			Organizations: orgs,
		})
	}

	log.Printf("[Engine] Сценарии приняты: %d", len(scenarios))
	return scenarios, nil
}

// generateQuestions выполняет запрос вопросов по принятым сценариям,
// нормализует обе допустимые формы ответа, назначает каждому вопросу
// случайный фиксированный исход (ровно один раз, навсегда), затем
// запрашивает ранжирование и оставляет первые 3 по возрастанию ранга.
func (e *Engine) generateQuestions(ctx context.Context, setup *models.GameSetup) ([]models.Question, error) {
	var input strings.Builder
	input.WriteString("Scenarios:\n")
	for _, s := range setup.Scenarios {
		fmt.Fprintf(&input, "  - %s = %q: %s\n", s.ID, s.Title, s.Description)
	}

	raw, _, err := e.ai.GenerateJSON(ctx, "questions", questionSystemPrompt, input.String(), service.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации вопросов: %w", err)
	}

	drafts, err := schemas.ParseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("невалидный ответ вопросов: %w", err)
	}

	knownScenario := make(map[string]bool, len(setup.Scenarios))
	for _, s := range setup.Scenarios {
		knownScenario[s.ID] = true
	}

	questions := make([]models.Question, 0, len(drafts))
	for i, d := range drafts {
		scenarioID := d.ScenarioID
		if !knownScenario[scenarioID] {
			// Вопрос без валидной привязки цепляется к первому сценарию
			scenarioID = setup.Scenarios[0].ID
		}
		questions = append(questions, models.Question{
			ID:         fmt.Sprintf("question-%d", i+1),
			Text:       d.Text,
			ScenarioID: scenarioID,
			Rank:       i + 1, // ранг по умолчанию - порядок прихода
			// Исход фиксируется здесь и больше никогда не меняется
			Outcome: e.rng.Float64() < 0.5,
		})
	}

	ranked, err := e.rankQuestions(ctx, questions)
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// rankQuestions запрашивает ранжирование и усекает список до QuestionTarget.
// Вопросы, не упомянутые в ответе, сохраняют прежний ранг.
func (e *Engine) rankQuestions(ctx context.Context, questions []models.Question) ([]models.Question, error) {
	var input strings.Builder
	input.WriteString("Questions:\n")
	for _, q := range questions {
		fmt.Fprintf(&input, "  - %s: %s\n", q.ID, q.Text)
	}

	raw, _, err := e.ai.GenerateJSON(ctx, "ranking", rankingSystemPrompt, input.String(), service.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("ошибка ранжирования вопросов: %w", err)
	}

	ranks, err := schemas.ParseRankings(raw)
	if err != nil {
		return nil, fmt.Errorf("невалидный ответ ранжирования: %w", err)
	}

	for i := range questions {
		if r, ok := ranks[questions[i].ID]; ok {
			questions[i].Rank = r
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Rank < questions[j].Rank
	})

	if len(questions) > e.tuning.QuestionTarget {
		questions = questions[:e.tuning.QuestionTarget]
	}

	log.Printf("[Engine] После ранжирования осталось вопросов: %d", len(questions))
	return questions, nil
}
