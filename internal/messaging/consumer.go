package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// TaskHandler обрабатывает одну задачу генерации. Возвращаемая ошибка
// определяет судьбу сообщения: nil - ack, иначе - nack без requeue
// (сообщение уходит в DLQ через политику очереди).
type TaskHandler interface {
	Handle(ctx context.Context, task GameGenerationTaskPayload) error
}

// TaskConsumer читает задачи генерации из очереди RabbitMQ.
// Задачи тяжелые (минуты работы с коллаборатором), поэтому prefetch 1:
// воркер не берет следующую задачу, пока не закончил текущую.
type TaskConsumer struct {
	conn    *amqp.Connection
	handler TaskHandler
	logger  *zap.Logger
	done    chan struct{}
	channel *amqp.Channel
}

// NewTaskConsumer создает потребителя задач генерации.
func NewTaskConsumer(conn *amqp.Connection, handler TaskHandler, logger *zap.Logger) *TaskConsumer {
	if logger == nil {
		panic("Logger is nil for TaskConsumer")
	}
	return &TaskConsumer{
		conn:    conn,
		handler: handler,
		logger:  logger.Named("TaskConsumer"),
		done:    make(chan struct{}),
	}
}

// Start объявляет топологию и начинает потребление. Возвращается сразу,
// обработка идет в горутине до отмены контекста.
func (c *TaskConsumer) Start(ctx context.Context) error {
	var err error
	c.channel, err = c.conn.Channel()
	if err != nil {
		c.logger.Error("Failed to open channel for task consumer", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareTaskTopology(c.channel); err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to declare task topology", zap.Error(err))
		return fmt.Errorf("failed to declare topology: %w", err)
	}

	// Одна задача за раз
	if err := c.channel.Qos(1, 0, false); err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to set QoS", zap.Error(err))
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		TaskQueueName, // queue
		"",            // consumer
		false,         // auto-ack выключен: подтверждаем после обработки
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to register task consumer", zap.Error(err), zap.String("queue", TaskQueueName))
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Task consumer started, waiting for generation tasks...", zap.String("queue", TaskQueueName))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Panic recovered in task consumer goroutine", zap.Any("panic", r))
			}
			c.logger.Info("Task consumer goroutine stopping...")
			close(c.done)
		}()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("Task consumer channel closed, exiting goroutine.")
					return
				}
				c.handleDelivery(ctx, msg)
			case <-ctx.Done():
				c.logger.Info("Context cancelled, stopping task consumer goroutine.")
				return
			}
		}
	}()

	return nil
}

// handleDelivery разбирает и обрабатывает одно сообщение очереди.
func (c *TaskConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	var task GameGenerationTaskPayload
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		c.logger.Error("Failed to unmarshal task message, sending to DLQ",
			zap.Error(err), zap.String("messageBody", string(msg.Body)))
		_ = msg.Nack(false, false)
		return
	}

	log := c.logger.With(zap.String("task_id", task.TaskID))
	log.Info("Received generation task", zap.String("requester_id", task.RequesterID))

	if err := c.handler.Handle(ctx, task); err != nil {
		log.Error("Task processing failed, sending to DLQ", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to ack processed task", zap.Error(err))
		return
	}
	log.Info("Task processed and acked")
}

// Stop останавливает потребителя и дожидается завершения горутины.
func (c *TaskConsumer) Stop() error {
	c.logger.Info("Stopping task consumer...")
	if c.channel != nil {
		if err := c.channel.Cancel("", false); err != nil {
			c.logger.Error("Error cancelling task consumer channel", zap.Error(err))
		}
	}

	select {
	case <-c.done:
		c.logger.Info("Task consumer goroutine finished.")
	case <-time.After(5 * time.Second):
		c.logger.Warn("Timeout waiting for task consumer goroutine to stop.")
	}

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("Error closing task consumer channel during stop", zap.Error(err))
		}
	}
	c.logger.Info("Task consumer stopped.")
	return nil
}

// DeclareTaskTopology объявляет очередь задач с привязанным dead-letter
// обменником. Идемпотентна, вызывается и воркером, и публикующей стороной.
func DeclareTaskTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		DeadLetterExchange, // name
		"direct",           // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}

	dlq, err := ch.QueueDeclare(
		DeadLetterQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlq.Name, DeadLetterRoutingKey, DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}

	if _, err := ch.QueueDeclare(
		TaskQueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		amqp.Table{
			"x-dead-letter-exchange":    DeadLetterExchange,
			"x-dead-letter-routing-key": DeadLetterRoutingKey,
		},
	); err != nil {
		return fmt.Errorf("declare task queue: %w", err)
	}

	return nil
}
