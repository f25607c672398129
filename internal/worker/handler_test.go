package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babylon-engine/internal/config"
	"babylon-engine/internal/messaging"
	"babylon-engine/internal/mocks"
	"babylon-engine/internal/models"
	"babylon-engine/internal/service"
)

func handlerActorPool() []models.Actor {
	var actors []models.Actor
	tiers := []models.Tier{models.TierS, models.TierA, models.TierB, models.TierC, models.TierD}
	for i := 1; i <= 10; i++ {
		actors = append(actors, models.Actor{
			ID:          fmt.Sprintf("actor-%d", i),
			Name:        fmt.Sprintf("Actor %d", i),
			Tier:        tiers[i%len(tiers)],
			Personality: "ambitious",
		})
	}
	return actors
}

// scriptResponse отдает валидный ответ коллаборатора по виду запроса, чтобы
// прогон движка внутри обработчика доходил до конца.
func scriptResponse(kind, userInput string) json.RawMessage {
	switch kind {
	case "scenarios":
		return json.RawMessage(`{"scenarios": [
			{"title": "The Takeover", "description": "A hostile bid unfolds.",
			 "mainActors": ["actor-1", "actor-2", "actor-3"]}
		]}`)
	case "questions":
		return json.RawMessage(`{"questions": [
			{"text": "Will the bid succeed?", "scenarioId": "scenario-1"},
			{"text": "Will the board resist?", "scenarioId": "scenario-1"}
		]}`)
	case "ranking":
		return json.RawMessage(`{"rankings": [
			{"questionId": "question-1", "rank": 1},
			{"questionId": "question-2", "rank": 2}
		]}`)
	case "group_name":
		return json.RawMessage(`{"name": "War Room"}`)
	case "events":
		return json.RawMessage(`{"events": [
			{"type": "meeting", "description": "Lawyers meet behind closed doors.",
			 "participants": ["actor-1"], "visibility": "public"}
		]}`)
	case "chats":
		return chatBatchFor(userInput)
	case "feed":
		return json.RawMessage(`{"posts": [
			{"id": "p1", "author": "actor-1", "content": "something is brewing", "sentiment": 0.3}
		]}`)
	default:
		return nil
	}
}

// chatBatchFor строит батч по группам, запрошенным в тексте запроса.
func chatBatchFor(userInput string) json.RawMessage {
	type msg struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	}
	type group struct {
		GroupID  string `json:"groupId"`
		Messages []msg  `json:"messages"`
	}
	var groups []group
	for _, line := range strings.Split(userInput, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") || !strings.Contains(line, ", members: ") {
			continue
		}
		rest := strings.TrimPrefix(line, "- ")
		id, tail, ok := strings.Cut(rest, " = ")
		if !ok {
			continue
		}
		_, memberPart, ok := strings.Cut(tail, ", members: ")
		if !ok {
			continue
		}
		members := strings.Split(memberPart, ", ")
		groups = append(groups, group{
			GroupID:  id,
			Messages: []msg{{Sender: members[0], Text: "any news?"}},
		})
	}
	raw, _ := json.Marshal(map[string]any{"groups": groups})
	return raw
}

func scriptedAIClient(t *testing.T) *mocks.MockAIClient {
	aiClient := mocks.NewMockAIClient(t)
	aiClient.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(
			func(_ context.Context, kind, _, userInput string, _ service.GenerationParams) json.RawMessage {
				return scriptResponse(kind, userInput)
			},
			service.UsageInfo{}, nil)
	return aiClient
}

func testTask() messaging.GameGenerationTaskPayload {
	return messaging.GameGenerationTaskPayload{
		TaskID:      "task-1",
		RequesterID: "admin-panel",
		Seed:        42,
		Days:        3, // короткий таймлайн, чтобы тест не гонял 30 дней
	}
}

func newTestHandler(t *testing.T, aiClient service.AIClient,
	actorRepo *mocks.MockActorRepository, gameRepo *mocks.MockGameRepository,
	historyRepo *mocks.MockHistoryRepository, notifier *mocks.MockNotifier,
) *GenerationHandler {
	ctxb := service.NewContextBuilder(zap.NewNop(), "gpt-4o")
	return NewGenerationHandler(&config.Config{}, aiClient, ctxb, actorRepo, gameRepo, historyRepo, notifier)
}

func TestHandle_Success(t *testing.T) {
	actorRepo := mocks.NewMockActorRepository(t)
	gameRepo := mocks.NewMockGameRepository(t)
	historyRepo := mocks.NewMockHistoryRepository(t)
	notifier := mocks.NewMockNotifier(t)

	actorRepo.On("ListActors", mock.Anything).Return(handlerActorPool(), nil)
	actorRepo.On("ListOrganizations", mock.Anything).Return([]models.Organization{}, nil)
	historyRepo.On("Recent", mock.Anything, 2).Return(nil, nil)

	var saved *models.GeneratedGame
	gameRepo.On("SaveGame", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.GeneratedGame)
	}).Return(nil)
	historyRepo.On("Push", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(t, scriptedAIClient(t), actorRepo, gameRepo, historyRepo, notifier)
	err := h.Handle(context.Background(), testTask())
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Len(t, saved.Timeline, 3)
	require.NotNil(t, saved.Resolution)
	assert.Len(t, saved.Resolution.Results, 2)

	gameRepo.AssertNumberOfCalls(t, "SaveGame", 1)
	historyRepo.AssertNumberOfCalls(t, "Push", 1)

	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(p messaging.NotificationPayload) bool {
		return p.Status == messaging.NotificationStatusSuccess &&
			p.TaskID == "task-1" &&
			p.RequesterID == "admin-panel" &&
			p.GameID == saved.ID.String()
	}))
}

func TestHandle_GenerationFailure(t *testing.T) {
	aiClient := mocks.NewMockAIClient(t)
	aiClient.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.UsageInfo{}, service.ErrAIGenerationFailed)

	actorRepo := mocks.NewMockActorRepository(t)
	gameRepo := mocks.NewMockGameRepository(t)
	historyRepo := mocks.NewMockHistoryRepository(t)
	notifier := mocks.NewMockNotifier(t)

	actorRepo.On("ListActors", mock.Anything).Return(handlerActorPool(), nil)
	actorRepo.On("ListOrganizations", mock.Anything).Return([]models.Organization{}, nil)
	historyRepo.On("Recent", mock.Anything, 2).Return(nil, nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(t, aiClient, actorRepo, gameRepo, historyRepo, notifier)
	err := h.Handle(context.Background(), testTask())
	require.Error(t, err, "ошибка генерации должна уходить в DLQ")
	assert.ErrorIs(t, err, service.ErrAIGenerationFailed)

	gameRepo.AssertNotCalled(t, "SaveGame", mock.Anything, mock.Anything)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(p messaging.NotificationPayload) bool {
		return p.Status == messaging.NotificationStatusError && p.ErrorDetails != ""
	}))
}

func TestHandle_SaveFailure(t *testing.T) {
	actorRepo := mocks.NewMockActorRepository(t)
	gameRepo := mocks.NewMockGameRepository(t)
	historyRepo := mocks.NewMockHistoryRepository(t)
	notifier := mocks.NewMockNotifier(t)

	actorRepo.On("ListActors", mock.Anything).Return(handlerActorPool(), nil)
	actorRepo.On("ListOrganizations", mock.Anything).Return([]models.Organization{}, nil)
	historyRepo.On("Recent", mock.Anything, 2).Return(nil, nil)
	gameRepo.On("SaveGame", mock.Anything, mock.Anything).Return(errors.New("db down"))
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(t, scriptedAIClient(t), actorRepo, gameRepo, historyRepo, notifier)
	err := h.Handle(context.Background(), testTask())
	require.Error(t, err)

	historyRepo.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(p messaging.NotificationPayload) bool {
		return p.Status == messaging.NotificationStatusError
	}))
}

func TestHandle_HistoryPushFailureIsNotFatal(t *testing.T) {
	actorRepo := mocks.NewMockActorRepository(t)
	gameRepo := mocks.NewMockGameRepository(t)
	historyRepo := mocks.NewMockHistoryRepository(t)
	notifier := mocks.NewMockNotifier(t)

	actorRepo.On("ListActors", mock.Anything).Return(handlerActorPool(), nil)
	actorRepo.On("ListOrganizations", mock.Anything).Return([]models.Organization{}, nil)
	historyRepo.On("Recent", mock.Anything, 2).Return(nil, nil)
	gameRepo.On("SaveGame", mock.Anything, mock.Anything).Return(nil)
	historyRepo.On("Push", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	h := newTestHandler(t, scriptedAIClient(t), actorRepo, gameRepo, historyRepo, notifier)
	err := h.Handle(context.Background(), testTask())
	assert.NoError(t, err, "игра сохранена, ошибка сводки только логируется")

	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(p messaging.NotificationPayload) bool {
		return p.Status == messaging.NotificationStatusSuccess
	}))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "ai_error", failureReason(fmt.Errorf("wrap: %w", service.ErrAIGenerationFailed)))
	assert.Equal(t, "ai_invalid_json", failureReason(service.ErrAIInvalidJSON))
	assert.Equal(t, "cancelled", failureReason(context.Canceled))
	assert.Equal(t, "generation_error", failureReason(errors.New("anything else")))
}
