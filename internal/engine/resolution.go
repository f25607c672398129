package engine

import (
	"fmt"
	"strings"

	"babylon-engine/internal/models"
)

const maxEvidencePerQuestion = 3

// buildResolution собирает итоговую резолюцию по завершенному таймлайну.
// Исход каждого вопроса был зафиксирован при генерации и не меняется:
// резолюция только подбирает доказательства задним числом.
func (e *Engine) buildResolution(r *gameRun) models.GameResolution {
	results := make([]models.QuestionResult, 0, len(r.game.Setup.Questions))
	for _, q := range r.game.Setup.Questions {
		evidence := collectEvidence(q, r.game.Timeline)
		results = append(results, models.QuestionResult{
			QuestionID:  q.ID,
			Text:        q.Text,
			Outcome:     q.Outcome,
			EvidenceIDs: evidence,
			Explanation: explainResult(q, evidence),
		})
	}

	return models.GameResolution{
		Results:   results,
		Narrative: resolutionNarrative(r.game.Setup, results),
	}
}

// collectEvidence отбирает до трех событий таймлайна, указывающих на
// зафиксированный исход вопроса. Событие считается доказательством, если
// оно привязано к вопросу и его раскрытая подсказка совпадает с исходом.
func collectEvidence(q models.Question, timeline []models.DayTimeline) []string {
	var ids []string
	for _, day := range timeline {
		for _, ev := range day.Events {
			if ev.RelatedQuestion != q.ID || ev.PointsToward == nil {
				continue
			}
			if *ev.PointsToward != q.Outcome {
				continue
			}
			ids = append(ids, ev.ID)
			if len(ids) == maxEvidencePerQuestion {
				return ids
			}
		}
	}
	return ids
}

// explainResult формирует текст объяснения. Ноль доказательств - валидный
// случай: исход остается в силе, объяснение честно это отражает.
func explainResult(q models.Question, evidence []string) string {
	answer := yesNoWord(q.Outcome)
	if len(evidence) == 0 {
		return fmt.Sprintf("The answer to %q is %s. The outcome stayed behind closed doors until the very end, with no public event tipping the hand.", q.Text, answer)
	}
	return fmt.Sprintf("The answer to %q is %s, confirmed by %d event(s) over the season: %s.", q.Text, answer, len(evidence), strings.Join(evidence, ", "))
}

// resolutionNarrative строит связный итог сезона по всем вопросам.
func resolutionNarrative(setup models.GameSetup, results []models.QuestionResult) string {
	var b strings.Builder
	b.WriteString("The season closes with every question settled.")
	for _, res := range results {
		fmt.Fprintf(&b, " %q resolved %s.", res.Text, yesNoWord(res.Outcome))
	}
	return b.String()
}
