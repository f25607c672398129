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
	archiveHistoryQuery = `
        INSERT INTO game_histories (game_id, history, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (game_id) DO UPDATE SET history = EXCLUDED.history
    `
	getArchivedHistoryQuery = `
        SELECT history
        FROM game_histories
        WHERE game_id = $1
    `
)

// HistoryArchive - долговременный архив игровых сводок. Кольцо в Redis
// держит только последние сводки, архив хранит все.
type HistoryArchive interface {
	// Archive сохраняет сводку навсегда.
	Archive(ctx context.Context, history models.GameHistory) error
	// GetArchived возвращает сводку игры по ID.
	GetArchived(ctx context.Context, gameID uuid.UUID) (*models.GameHistory, error)
}

type pgHistoryArchive struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPgHistoryArchive создает архив сводок поверх PostgreSQL.
func NewPgHistoryArchive(db *pgxpool.Pool, logger *zap.Logger) HistoryArchive {
	return &pgHistoryArchive{
		db:     db,
		logger: logger.Named("HistoryArchive"),
	}
}

func (r *pgHistoryArchive) Archive(ctx context.Context, history models.GameHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сводки игры '%s': %w", history.GameID, err)
	}
	if _, err := r.db.Exec(ctx, archiveHistoryQuery, history.GameID, data, history.CreatedAt); err != nil {
		r.logger.Error("Ошибка архивации сводки", zap.String("game_id", history.GameID.String()), zap.Error(err))
		return fmt.Errorf("ошибка архивации сводки игры '%s': %w", history.GameID, err)
	}
	return nil
}

func (r *pgHistoryArchive) GetArchived(ctx context.Context, gameID uuid.UUID) (*models.GameHistory, error) {
	var data []byte
	err := r.db.QueryRow(ctx, getArchivedHistoryQuery, gameID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения сводки игры '%s': %w", gameID, err)
	}
	var h models.GameHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сводки игры '%s': %w", gameID, err)
	}
	return &h, nil
}

// archivingHistoryRepository совмещает кольцо последних сводок с архивом:
// чтения идут из кольца, запись дублируется в архив. Ошибка архива не
// фатальна, кольцо остается источником преемственности.
type archivingHistoryRepository struct {
	ring    HistoryRepository
	archive HistoryArchive
	logger  *zap.Logger
}

// NewArchivingHistoryRepository оборачивает кольцо сводок архивацией в PostgreSQL.
func NewArchivingHistoryRepository(ring HistoryRepository, archive HistoryArchive, logger *zap.Logger) HistoryRepository {
	return &archivingHistoryRepository{
		ring:    ring,
		archive: archive,
		logger:  logger.Named("HistoryRepo"),
	}
}

func (r *archivingHistoryRepository) Push(ctx context.Context, history models.GameHistory) error {
	if err := r.archive.Archive(ctx, history); err != nil {
		r.logger.Warn("Сводка не попала в архив", zap.String("game_id", history.GameID.String()), zap.Error(err))
	}
	return r.ring.Push(ctx, history)
}

func (r *archivingHistoryRepository) Recent(ctx context.Context, limit int) ([]models.GameHistory, error) {
	return r.ring.Recent(ctx, limit)
}
