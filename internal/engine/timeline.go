package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"babylon-engine/internal/models"
	"babylon-engine/internal/schemas"
	"babylon-engine/internal/service"
)

// gameRun - состояние одного прогона генерации.
type gameRun struct {
	game     *models.GeneratedGame
	tracker  *StateTracker
	resolved map[string]bool // вопросы, уже получившие окончательное событие
}

// runDay генерирует один день таймлайна. Дни обрабатываются строго по
// возрастанию: контекст дня N требует завершенных дней 1..N-1. За день
// выполняется ровно один батчевый запрос событий и ровно один батчевый
// запрос сообщений всех активных чатов - раунд-трипы к коллаборатору и
// есть фактическое ограничение производительности.
func (e *Engine) runDay(ctx context.Context, r *gameRun, day int) error {
	ph := PhaseForDay(day, e.tuning.Days)
	dayContext := e.ctxb.DayContext(e.histories, &r.game.Setup, r.game.Timeline) + e.actorStatesContext(r)

	events, err := e.generateDayEvents(ctx, r, day, ph, dayContext)
	if err != nil {
		return err
	}

	// Последние три дня сезона: впрыскиваем окончательные события-подтверждения
	if day >= e.tuning.FirstResolutionDay() {
		events = append(events, e.injectResolutionEvents(r, day)...)
	}

	// Лента делегируется фид-коллаборатору
	posts, err := e.feed.GeneratePosts(ctx, day, events, r.game.Setup.Actors, ph.RevealChance >= 0.8)
	if err != nil {
		return fmt.Errorf("день %d: %w", day, err)
	}

	groupMessages, err := e.generateGroupMessages(ctx, r, day, ph, dayContext, events)
	if err != nil {
		return err
	}

	// Фоновый дрейф применяется ко всем акторам
	changes := r.tracker.ApplyDailyDrift()

	// Событийные сдвиги - только к участникам событий дня
	for _, ev := range events {
		polarity := eventPolarity(ev)
		for _, actorID := range ev.Participants {
			if ch, ok := r.tracker.ApplyEventDelta(actorID, polarity); ok {
				changes = append(changes, ch)
			}
		}
	}

	r.game.Timeline = append(r.game.Timeline, models.DayTimeline{
		Day:           day,
		Summary:       summarizeDay(day, ph, events),
		Events:        events,
		GroupMessages: groupMessages,
		FeedPosts:     posts,
		StateChanges:  changes,
	})

	log.Printf("[Engine] День %d (%s): %d событий, %d постов, %d активных чатов",
		day, ph.Name, len(events), len(posts), len(groupMessages))
	return nil
}

// generateDayEvents выполняет ОДИН батчевый запрос на все события дня.
// Ошибки этого запроса не ретраятся движком и прерывают прогон.
func (e *Engine) generateDayEvents(ctx context.Context, r *gameRun, day int, ph Phase, dayContext string) ([]models.WorldEvent, error) {
	count := ph.MinEvents
	if ph.MaxEvents > ph.MinEvents {
		count += e.rng.Intn(ph.MaxEvents - ph.MinEvents + 1)
	}

	var input strings.Builder
	input.WriteString(dayContext)
	fmt.Fprintf(&input, "\nGenerate exactly %d events for day %d (%s phase).\n", count, day, ph.Name)

	raw, _, err := e.ai.GenerateJSON(ctx, "events", eventSystemPrompt, input.String(), service.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("день %d: ошибка генерации событий: %w", day, err)
	}

	drafts, err := schemas.ParseDayEvents(raw)
	if err != nil {
		return nil, fmt.Errorf("день %d: невалидный ответ событий: %w", day, err)
	}

	knownActor := make(map[string]bool, len(r.game.Setup.Actors))
	for _, a := range r.game.Setup.Actors {
		knownActor[a.ID] = true
	}
	knownQuestion := make(map[string]bool, len(r.game.Setup.Questions))
	for _, q := range r.game.Setup.Questions {
		knownQuestion[q.ID] = true
	}

	var events []models.WorldEvent
	for i, d := range drafts {
		// Участники строго из отобранного каста
		var participants []string
		for _, id := range d.Participants {
			if knownActor[id] {
				participants = append(participants, id)
			} else {
				log.Printf("[Engine] День %d: событие %d ссылается на неизвестного актора '%s', ссылка отброшена", day, i, id)
			}
		}
		if len(participants) == 0 {
			log.Printf("[Engine] День %d: событие %d осталось без участников и отброшено", day, i)
			continue
		}

		evType := models.EventType(d.Type)
		if !models.IsValidEventType(evType) {
			evType = models.EventMeeting
		}

		related := d.RelatedQuestion
		if related != "" && !knownQuestion[related] {
			related = ""
		}

		// Подсказка раскрывается с вероятностью фазы, иначе скрывается
		hint := d.Hint()
		if related == "" || e.rng.Float64() >= ph.RevealChance {
			hint = nil
		}

		visibility := d.Visibility
		if visibility != "private" {
			visibility = "public"
		}

		events = append(events, models.WorldEvent{
			ID:              fmt.Sprintf("evt-%d-%d", day, i+1),
			Type:            evType,
			Participants:    participants,
			Description:     d.Description,
			RelatedQuestion: related,
			PointsToward:    hint,
			Visibility:      visibility,
		})
	}

	return events, nil
}

// injectResolutionEvents добавляет окончательные события-подтверждения.
// Каждый оставшийся вопрос получает ровно одно такое событие в последние
// три дня сезона: по одному в первые два, все оставшиеся - в последний
// день, чтобы к финалу не осталось неподтвержденных исходов.
func (e *Engine) injectResolutionEvents(r *gameRun, day int) []models.WorldEvent {
	var remaining []models.Question
	for _, q := range r.game.Setup.Questions {
		if !r.resolved[q.ID] {
			remaining = append(remaining, q)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	take := 1
	if day >= e.tuning.Days {
		take = len(remaining)
	}

	var events []models.WorldEvent
	for i := 0; i < take && i < len(remaining); i++ {
		q := remaining[i]
		outcome := q.Outcome
		participants := e.scenarioMains(r, q.ScenarioID)

		events = append(events, models.WorldEvent{
			ID:              fmt.Sprintf("evt-%d-resolution-%s", day, q.ID),
			Type:            models.EventRevelation,
			Participants:    participants,
			Description:     fmt.Sprintf("The question %q is settled: events of the past weeks leave no doubt the answer is %s.", q.Text, yesNoWord(outcome)),
			RelatedQuestion: q.ID,
			PointsToward:    &outcome,
			Visibility:      "public",
		})
		r.resolved[q.ID] = true
		log.Printf("[Engine] День %d: впрыснуто окончательное событие для вопроса %s (%s)", day, q.ID, yesNoWord(outcome))
	}
	return events
}

// actorStatesContext собирает блок текущих состояний акторов для промптов
// дня. Настроение и удача задают тон событий и сообщений, поэтому блок
// входит и в событийный, и в чатовый батч.
func (e *Engine) actorStatesContext(r *gameRun) string {
	if r.tracker == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nCurrent actor states:\n")
	for _, a := range r.game.Setup.Actors {
		state, ok := r.tracker.Get(a.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  - %s\n", service.ActorStateContext(a, state, r.game.Setup.Connections))
	}
	return b.String()
}

// scenarioMains возвращает главных акторов сценария вопроса, либо первых
// главных акторов каста, если сценарий не нашелся.
func (e *Engine) scenarioMains(r *gameRun, scenarioID string) []string {
	for _, s := range r.game.Setup.Scenarios {
		if s.ID == scenarioID {
			return s.MainActors
		}
	}
	mains := r.game.Setup.ActorsByRole(models.RoleMain)
	ids := make([]string, 0, len(mains))
	for _, m := range mains {
		ids = append(ids, m.ID)
	}
	return ids
}

// generateGroupMessages выполняет ОДИН батчевый запрос сообщений всех
// активных чатов дня. Форма ответа валидируется против запрошенного набора
// групп; несовпадение ретраится до ChatRetryAttempts раз с фиксированной
// паузой и становится фатальным только после исчерпания попыток.
func (e *Engine) generateGroupMessages(ctx context.Context, r *gameRun, day int, ph Phase, dayContext string, events []models.WorldEvent) (map[string][]models.ChatMessage, error) {
	var active []models.GroupChat
	for _, chat := range r.game.Setup.GroupChats {
		if e.rng.Float64() < ph.ChatChance {
			active = append(active, chat)
		}
	}
	if len(active) == 0 {
		return map[string][]models.ChatMessage{}, nil
	}

	var input strings.Builder
	input.WriteString(dayContext)
	fmt.Fprintf(&input, "\nToday's events:\n")
	for _, ev := range events {
		fmt.Fprintf(&input, "  - [%s] %s\n", ev.Type, ev.Description)
	}
	fmt.Fprintf(&input, "Write messages for day %d in these groups:\n", day)
	for _, chat := range active {
		fmt.Fprintf(&input, "  - %s = %q, members: %s\n", chat.ID, chat.Name, strings.Join(chat.Members, ", "))
	}

	members := make(map[string]map[string]bool, len(active))
	for _, chat := range active {
		set := make(map[string]bool, len(chat.Members))
		for _, m := range chat.Members {
			set[m] = true
		}
		members[chat.ID] = set
	}

	baseTime := r.game.CreatedAt.Add(time.Duration(day-1) * 24 * time.Hour)

	var result map[string][]models.ChatMessage
	err := retryWithValidator(ctx, e.tuning.ChatRetryAttempts, e.tuning.ChatRetryPause, e.sleep,
		fmt.Sprintf("батч сообщений дня %d", day),
		func() error {
			raw, _, err := e.ai.GenerateJSON(ctx, "chats", chatSystemPrompt, input.String(), service.GenerationParams{})
			if err != nil {
				return err
			}
			groups, err := schemas.ParseGroupMessages(raw)
			if err != nil {
				return err
			}
			if len(groups) != len(active) {
				return fmt.Errorf("%w: получено групп %d, запрошено %d", ErrChatBatchMismatch, len(groups), len(active))
			}

			out := make(map[string][]models.ChatMessage, len(groups))
			for _, g := range groups {
				memberSet, ok := members[g.GroupID]
				if !ok {
					return fmt.Errorf("%w: группа '%s' не запрашивалась", ErrChatBatchMismatch, g.GroupID)
				}
				var msgs []models.ChatMessage
				for i, m := range g.Messages {
					if !memberSet[m.Sender] {
						log.Printf("[Engine] День %d: сообщение от не-участника '%s' в '%s' отброшено", day, m.Sender, g.GroupID)
						continue
					}
					msgs = append(msgs, models.ChatMessage{
						Sender:       m.Sender,
						Text:         m.Text,
						Timestamp:    baseTime.Add(time.Duration(i) * time.Minute),
						ClueStrength: m.ClueStrength,
					})
				}
				if len(msgs) == 0 {
					return fmt.Errorf("%w: группа '%s' осталась без сообщений", ErrChatBatchMismatch, g.GroupID)
				}
				out[g.GroupID] = msgs
			}
			result = out
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("день %d: %w", day, err)
	}
	return result, nil
}

// eventPolarity определяет полярность события для смещения состояния:
// сделки и анонсы - позитив, скандалы и конфликты - негатив, иначе
// берется раскрытая подсказка pointsToward, если она есть.
func eventPolarity(ev models.WorldEvent) *bool {
	switch ev.Type {
	case models.EventDeal, models.EventAnnouncement:
		v := true
		return &v
	case models.EventScandal, models.EventConflict:
		v := false
		return &v
	}
	return ev.PointsToward
}

// summarizeDay собирает краткую сводку дня для контекста следующих дней.
func summarizeDay(day int, ph Phase, events []models.WorldEvent) string {
	heads := make([]string, 0, 3)
	for _, ev := range events {
		heads = append(heads, ev.Description)
		if len(heads) == 3 {
			break
		}
	}
	return fmt.Sprintf("%d events (%s phase): %s", len(events), ph.Name, strings.Join(heads, " | "))
}

func yesNoWord(outcome bool) string {
	if outcome {
		return "YES"
	}
	return "NO"
}
