package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
)

const (
	saveGameQuery = `
        INSERT INTO generated_games (id, setup, timeline, resolution, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            setup = EXCLUDED.setup,
            timeline = EXCLUDED.timeline,
            resolution = EXCLUDED.resolution
    `
	getGameQuery = `
        SELECT setup, timeline, resolution, created_at
        FROM generated_games
        WHERE id = $1
    `
)

type pgGameRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgGameRepository создает хранилище игр поверх PostgreSQL.
// Структура игры хранится как JSONB: игра пишется один раз целиком
// и читается целиком, реляционная декомпозиция тут не нужна.
func NewPgGameRepository(db *pgxpool.Pool, logger *zap.Logger) GameRepository {
	return &pgGameRepository{
		db:     db,
		logger: logger.Named("GameRepo"),
	}
}

func (r *pgGameRepository) SaveGame(ctx context.Context, game *models.GeneratedGame) error {
	setup, err := json.Marshal(game.Setup)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сетапа игры '%s': %w", game.ID, err)
	}
	timeline, err := json.Marshal(game.Timeline)
	if err != nil {
		return fmt.Errorf("ошибка сериализации таймлайна игры '%s': %w", game.ID, err)
	}
	var resolution []byte
	if game.Resolution != nil {
		resolution, err = json.Marshal(game.Resolution)
		if err != nil {
			return fmt.Errorf("ошибка сериализации резолюции игры '%s': %w", game.ID, err)
		}
	}

	if _, err := r.db.Exec(ctx, saveGameQuery, game.ID, setup, timeline, resolution, game.CreatedAt); err != nil {
		r.logger.Error("Ошибка сохранения игры", zap.String("game_id", game.ID.String()), zap.Error(err))
		return fmt.Errorf("ошибка сохранения игры '%s': %w", game.ID, err)
	}

	r.logger.Info("Игра сохранена", zap.String("game_id", game.ID.String()), zap.Int("days", len(game.Timeline)))
	return nil
}

func (r *pgGameRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	var (
		setup      []byte
		timeline   []byte
		resolution []byte
		game       models.GeneratedGame
	)
	err := r.db.QueryRow(ctx, getGameQuery, id).Scan(&setup, &timeline, &resolution, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка загрузки игры", zap.String("game_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("ошибка загрузки игры '%s': %w", id, err)
	}

	game.ID = id
	if err := json.Unmarshal(setup, &game.Setup); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сетапа игры '%s': %w", id, err)
	}
	if err := json.Unmarshal(timeline, &game.Timeline); err != nil {
		return nil, fmt.Errorf("ошибка десериализации таймлайна игры '%s': %w", id, err)
	}
	if len(resolution) > 0 {
		game.Resolution = &models.GameResolution{}
		if err := json.Unmarshal(resolution, game.Resolution); err != nil {
			return nil, fmt.Errorf("ошибка десериализации резолюции игры '%s': %w", id, err)
		}
	}
	return &game, nil
}
