package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
)

// Compile-time check to ensure redisHistoryRepository implements HistoryRepository
var _ HistoryRepository = (*redisHistoryRepository)(nil)

const (
	historyListKey = "game_histories"
	// Движку нужны максимум две последних сводки, храним с запасом.
	historyListCap = 10
)

type redisHistoryRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisHistoryRepository создает кольцо игровых сводок поверх Redis.
// Сводки лежат в одном списке: LPUSH новых, LTRIM до лимита, LRANGE на чтение.
func NewRedisHistoryRepository(client *redis.Client, logger *zap.Logger) HistoryRepository {
	return &redisHistoryRepository{
		client: client,
		logger: logger.Named("HistoryRepo"),
	}
}

func (r *redisHistoryRepository) Push(ctx context.Context, history models.GameHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сводки игры '%s': %w", history.GameID, err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, historyListKey, data)
	pipe.LTrim(ctx, historyListKey, 0, historyListCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Ошибка записи сводки в Redis", zap.String("game_id", history.GameID.String()), zap.Error(err))
		return fmt.Errorf("ошибка записи сводки игры '%s': %w", history.GameID, err)
	}

	r.logger.Info("Сводка игры сохранена", zap.String("game_id", history.GameID.String()))
	return nil
}

func (r *redisHistoryRepository) Recent(ctx context.Context, limit int) ([]models.GameHistory, error) {
	if limit <= 0 {
		return nil, nil
	}

	raw, err := r.client.LRange(ctx, historyListKey, 0, int64(limit-1)).Result()
	if err != nil {
		r.logger.Error("Ошибка чтения сводок из Redis", zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения сводок игр: %w", err)
	}

	histories := make([]models.GameHistory, 0, len(raw))
	for i, item := range raw {
		var h models.GameHistory
		if err := json.Unmarshal([]byte(item), &h); err != nil {
			// Битая запись не должна валить генерацию, пропускаем
			r.logger.Warn("Битая сводка в Redis пропущена", zap.Int("index", i), zap.Error(err))
			continue
		}
		histories = append(histories, h)
	}
	return histories, nil
}
