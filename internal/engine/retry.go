package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrChatBatchMismatch - форма батча групповых сообщений не совпала с
// запрошенным набором групп.
var ErrChatBatchMismatch = errors.New("форма батча сообщений не совпала с запросом")

// retryWithValidator выполняет op до attempts раз с фиксированной паузой
// между попытками. op сам валидирует результат и возвращает ошибку при
// несовпадении формы. Применяется единственно к батчу групповых сообщений:
// остальные вызовы коллаборатора намеренно не ретраятся на уровне движка,
// транспортные повторы живут в AI клиенте.
func retryWithValidator(ctx context.Context, attempts int, pause time.Duration, sleep func(time.Duration), label string, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := ctx.Err(); err != nil {
				return err
			}
			sleep(pause)
			log.Printf("[Engine] Повторная попытка %d/%d: %s (предыдущая ошибка: %v)", attempt, attempts, label, lastErr)
		}
		if err := op(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("'%s' не удалось после %d попыток: %w", label, attempts, lastErr)
}
