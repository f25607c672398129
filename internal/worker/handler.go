package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"babylon-engine/internal/config"
	"babylon-engine/internal/engine"
	"babylon-engine/internal/messaging"
	"babylon-engine/internal/models"
	"babylon-engine/internal/repository"
	"babylon-engine/internal/service"
)

// recentHistoryLimit - сколько сводок прошлых игр передается движку.
const recentHistoryLimit = 2

// GenerationHandler обрабатывает задачи генерации игр: собирает движок
// под конкретную задачу, сохраняет результат и уведомляет инициатора.
type GenerationHandler struct {
	cfg         *config.Config
	aiClient    service.AIClient
	ctxb        *service.ContextBuilder
	actorRepo   repository.ActorRepository
	gameRepo    repository.GameRepository
	historyRepo repository.HistoryRepository
	notifier    service.Notifier
}

// NewGenerationHandler создает обработчик задач генерации.
func NewGenerationHandler(
	cfg *config.Config,
	aiClient service.AIClient,
	ctxb *service.ContextBuilder,
	actorRepo repository.ActorRepository,
	gameRepo repository.GameRepository,
	historyRepo repository.HistoryRepository,
	notifier service.Notifier,
) *GenerationHandler {
	return &GenerationHandler{
		cfg:         cfg,
		aiClient:    aiClient,
		ctxb:        ctxb,
		actorRepo:   actorRepo,
		gameRepo:    gameRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
	}
}

// Handle обрабатывает одну задачу генерации целиком. Возвращенная ошибка
// означает, что сообщение должно уйти в DLQ.
func (h *GenerationHandler) Handle(ctx context.Context, task messaging.GameGenerationTaskPayload) (err error) {
	tasksReceived.Inc()
	started := time.Now()
	log.Printf("[TaskID: %s] Обработка задачи генерации: RequesterID=%s, Seed=%d, Days=%d",
		task.TaskID, task.RequesterID, task.Seed, task.Days)

	defer func() {
		taskDuration.Observe(time.Since(started).Seconds())
		status := "success"
		if err != nil {
			status = "failed"
		}
		log.Printf("[TaskID: %s] Завершение задачи. Статус: %s. Время: %v.",
			task.TaskID, status, time.Since(started).Round(time.Millisecond))
	}()

	game, genErr := h.generate(ctx, task)
	if genErr != nil {
		tasksFailed.WithLabelValues(failureReason(genErr)).Inc()
		h.notify(ctx, task, messaging.NotificationPayload{
			TaskID:       task.TaskID,
			RequesterID:  task.RequesterID,
			Status:       messaging.NotificationStatusError,
			ErrorDetails: genErr.Error(),
		})
		return genErr
	}

	if err := h.gameRepo.SaveGame(ctx, game); err != nil {
		tasksFailed.WithLabelValues("save_error").Inc()
		h.notify(ctx, task, messaging.NotificationPayload{
			TaskID:       task.TaskID,
			RequesterID:  task.RequesterID,
			Status:       messaging.NotificationStatusError,
			ErrorDetails: err.Error(),
		})
		return fmt.Errorf("сохранение игры: %w", err)
	}

	// Сводка для следующих игр. Ошибка не фатальна: игра уже сохранена,
	// следующая генерация просто не увидит эту историю.
	history := engine.BuildHistory(game)
	if err := h.historyRepo.Push(ctx, history); err != nil {
		log.Printf("[TaskID: %s][WARN] Не удалось сохранить сводку игры: %v", task.TaskID, err)
	}

	tasksSucceeded.Inc()
	timelineDays.Add(float64(len(game.Timeline)))

	h.notify(ctx, task, messaging.NotificationPayload{
		TaskID:      task.TaskID,
		RequesterID: task.RequesterID,
		Status:      messaging.NotificationStatusSuccess,
		GameID:      game.ID.String(),
	})
	return nil
}

// generate собирает движок под задачу и выполняет прогон.
func (h *GenerationHandler) generate(ctx context.Context, task messaging.GameGenerationTaskPayload) (*models.GeneratedGame, error) {
	actors, err := h.actorRepo.ListActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("загрузка пула акторов: %w", err)
	}
	orgs, err := h.actorRepo.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("загрузка организаций: %w", err)
	}
	histories, err := h.historyRepo.Recent(ctx, recentHistoryLimit)
	if err != nil {
		log.Printf("[TaskID: %s][WARN] Не удалось загрузить сводки прошлых игр, генерация без преемственности: %v", task.TaskID, err)
		histories = nil
	}

	seed := task.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tuning := engine.DefaultTuning()
	if task.Days > 0 {
		tuning.Days = task.Days
	}

	eng, err := engine.New(h.aiClient, service.NewAIFeedGenerator(h.aiClient), h.ctxb, engine.Options{
		Actors:        actors,
		Organizations: orgs,
		Histories:     histories,
		Theme:         task.Theme,
		Seed:          seed,
		Tuning:        tuning,
	})
	if err != nil {
		return nil, fmt.Errorf("сборка движка: %w", err)
	}

	return eng.GenerateGame(ctx)
}

// notify отправляет уведомление о результате; ошибка отправки только логируется.
func (h *GenerationHandler) notify(ctx context.Context, task messaging.GameGenerationTaskPayload, payload messaging.NotificationPayload) {
	if err := h.notifier.Notify(ctx, payload); err != nil {
		log.Printf("[TaskID: %s][WARN] Не удалось отправить уведомление: %v", task.TaskID, err)
	}
}

// failureReason грубо классифицирует ошибку генерации для метрик.
func failureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrAIGenerationFailed):
		return "ai_error"
	case errors.Is(err, service.ErrAIInvalidJSON):
		return "ai_invalid_json"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "generation_error"
	}
}
