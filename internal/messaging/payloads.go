package messaging

// GameGenerationTaskPayload - структура сообщения для задачи генерации игры.
type GameGenerationTaskPayload struct {
	TaskID      string `json:"taskId"`                // Уникальный ID задачи
	RequesterID string `json:"requesterId"`           // ID инициатора (сервис или пользователь)
	Seed        int64  `json:"seed,omitempty"`        // Сид ГПСЧ для воспроизводимости; 0 = случайный
	Theme       string `json:"theme,omitempty"`       // Опциональная тема сезона
	Days        int    `json:"days,omitempty"`        // Длина таймлайна; 0 = стандартные 30 дней
}

// NotificationStatus определяет статус уведомления о завершении задачи.
type NotificationStatus string

const (
	NotificationStatusSuccess NotificationStatus = "success"
	NotificationStatusError   NotificationStatus = "error"
)

// NotificationPayload - структура сообщения-уведомления о результате генерации.
type NotificationPayload struct {
	TaskID       string             `json:"task_id"`
	RequesterID  string             `json:"requester_id"`
	Status       NotificationStatus `json:"status"`
	GameID       string             `json:"game_id,omitempty"`       // ID сохраненной игры (при успехе)
	ErrorDetails string             `json:"error_details,omitempty"` // Детали ошибки (при ошибке)
}

// Имена очередей и обменников RabbitMQ, общие для воркера и его клиентов.
const (
	TaskQueueName            = "game_generation_tasks"
	InternalUpdatesQueueName = "game_internal_updates"
	DeadLetterExchange       = "game_generation_tasks_dlx"
	DeadLetterQueue          = "game_generation_tasks_dlq"
	DeadLetterRoutingKey     = "dlq"
)
