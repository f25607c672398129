package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"babylon-engine/internal/models"
	"babylon-engine/internal/service"
)

// Engine генерирует одну игру-сезон от отбора акторов до резолюции.
// Экземпляр одноразовый: один Engine - один прогон GenerateGame.
type Engine struct {
	actors    []models.Actor
	orgs      []models.Organization
	ai        service.AIClient
	feed      service.FeedGenerator
	ctxb      *service.ContextBuilder
	histories []models.GameHistory
	rng       *rand.Rand
	tuning    Tuning
	sleep     func(time.Duration)
	theme     string
}

// Options - зависимости и параметры одного прогона генерации.
type Options struct {
	// Actors - полный пул доступных акторов (репозиторий)
	Actors []models.Actor
	// Organizations - каталог организаций для разрешения аффилиаций
	Organizations []models.Organization
	// Histories - сводки предыдущих игр, от новейшей к старейшей
	Histories []models.GameHistory
	// Theme - тематическая подсказка для сценариев, опциональна
	Theme string
	// Seed - зерно детерминированной генерации
	Seed int64
	// Tuning - параметры генерации; нулевое значение заменяется DefaultTuning
	Tuning Tuning
	// Sleep - пауза между ретраями, подменяется в тестах
	Sleep func(time.Duration)
}

// New создает движок генерации. AI клиент и фид-генератор обязательны.
func New(ai service.AIClient, feed service.FeedGenerator, ctxb *service.ContextBuilder, opts Options) (*Engine, error) {
	if ai == nil {
		return nil, errors.New("engine: AI клиент не задан")
	}
	if feed == nil {
		return nil, errors.New("engine: фид-генератор не задан")
	}
	if ctxb == nil {
		return nil, errors.New("engine: построитель контекста не задан")
	}
	if len(opts.Actors) == 0 {
		return nil, errors.New("engine: пул акторов пуст")
	}

	tuning := opts.Tuning
	if tuning.Days == 0 {
		tuning = DefaultTuning()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Engine{
		actors:    opts.Actors,
		orgs:      opts.Organizations,
		ai:        ai,
		feed:      feed,
		ctxb:      ctxb,
		histories: opts.Histories,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		tuning:    tuning,
		sleep:     sleep,
		theme:     opts.Theme,
	}, nil
}

// GenerateGame выполняет полный конвейер генерации: подготовка сетапа,
// таймлайн день за днем, резолюция. Любая фатальная ошибка прерывает
// прогон целиком, частичная игра не возвращается.
func (e *Engine) GenerateGame(ctx context.Context) (*models.GeneratedGame, error) {
	started := time.Now()
	game := &models.GeneratedGame{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	// Отбор каста и детерминированные производные структуры
	game.Setup.Actors = e.selectActors()
	game.Setup.Organizations = e.extractOrganizations(game.Setup.Actors)
	game.Setup.Connections = e.buildConnections(game.Setup.Actors)

	// Сценарии и вопросы от коллаборатора; исходы фиксируются здесь
	scenarios, err := e.generateScenarios(ctx, &game.Setup)
	if err != nil {
		return nil, fmt.Errorf("подготовка: %w", err)
	}
	game.Setup.Scenarios = scenarios

	questions, err := e.generateQuestions(ctx, &game.Setup)
	if err != nil {
		return nil, fmt.Errorf("подготовка: %w", err)
	}
	game.Setup.Questions = questions

	chats, err := e.buildGroupChats(ctx, &game.Setup)
	if err != nil {
		return nil, fmt.Errorf("подготовка: %w", err)
	}
	game.Setup.GroupChats = chats

	log.Printf("[Engine] Сетап готов: %d акторов, %d организаций, %d связей, %d сценариев, %d вопросов, %d чатов",
		len(game.Setup.Actors), len(game.Setup.Organizations), len(game.Setup.Connections),
		len(game.Setup.Scenarios), len(game.Setup.Questions), len(game.Setup.GroupChats))

	r := &gameRun{
		game:     game,
		tracker:  NewStateTracker(game.Setup.Actors, e.rng, e.tuning),
		resolved: make(map[string]bool, len(game.Setup.Questions)),
	}

	// Дни генерируются строго последовательно
	for day := 1; day <= e.tuning.Days; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.runDay(ctx, r, day); err != nil {
			return nil, err
		}
	}

	resolution := e.buildResolution(r)
	game.Resolution = &resolution

	log.Printf("[Engine] Игра %s сгенерирована за %v: %d дней, %d вопросов разрешено",
		game.ID, time.Since(started).Round(time.Millisecond), len(game.Timeline), len(resolution.Results))
	return game, nil
}
