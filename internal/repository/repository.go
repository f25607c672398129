package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"babylon-engine/internal/models"
)

// ErrNotFound - запрошенная сущность отсутствует в хранилище.
var ErrNotFound = errors.New("сущность не найдена")

// ActorRepository - пул акторов и каталог организаций для отбора каста.
type ActorRepository interface {
	// ListActors возвращает весь пул акторов.
	ListActors(ctx context.Context) ([]models.Actor, error)
	// ListOrganizations возвращает каталог организаций.
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	// GetActor возвращает актора по ID.
	GetActor(ctx context.Context, id string) (*models.Actor, error)
}

// GameRepository - хранилище сгенерированных игр.
type GameRepository interface {
	// SaveGame сохраняет полную игру. Повторное сохранение того же ID
	// перезаписывает запись.
	SaveGame(ctx context.Context, game *models.GeneratedGame) error
	// GetGame возвращает игру по ID.
	GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error)
}

// HistoryRepository - кольцо сводок последних игр для преемственности.
type HistoryRepository interface {
	// Push добавляет сводку, вытесняя самые старые сверх лимита.
	Push(ctx context.Context, history models.GameHistory) error
	// Recent возвращает до limit последних сводок, новейшая первой.
	Recent(ctx context.Context, limit int) ([]models.GameHistory, error)
}
