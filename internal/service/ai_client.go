package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"babylon-engine/internal/config"
)

// Константы цен (OpenRouter, за 1М токенов в USD)
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

// GenerationParams - параметры генерации для одного запроса.
// Используем указатели, чтобы отличить 0/0.0 от отсутствия.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
}

// ErrAIGenerationFailed - ошибка при генерации текста AI
var ErrAIGenerationFailed = errors.New("ошибка генерации текста AI")

// ErrAIInvalidJSON - AI вернул ответ, из которого не удалось извлечь валидный JSON
var ErrAIInvalidJSON = errors.New("AI вернул невалидный JSON")

// Метрики AI клиента живут в локальном реестре пакета, а не в глобальном
// prometheus.DefaultRegistry. Процесс, отдающий /metrics, объединяет этот
// реестр со своим через prometheus.Gatherers.
var metricsRegistry = prometheus.NewRegistry()

// MetricsGatherer возвращает реестр метрик AI клиента для promhttp.
func MetricsGatherer() prometheus.Gatherer {
	return metricsRegistry
}

var (
	aiRequestsTotal = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_generator_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status", "kind"}, // Labels: model used, success/error, request kind
	)
	aiRequestDuration = promauto.With(metricsRegistry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_generator_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "kind"},
	)
	aiPromptTokens = promauto.With(metricsRegistry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_generator_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250, 500, ..., 5000
		},
		[]string{"model", "kind"},
	)
	aiCompletionTokens = promauto.With(metricsRegistry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "game_generator_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20), // 100, 200, ..., 2000
		},
		[]string{"model", "kind"},
	)
	aiEstimatedCostUSD = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_generator_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model", "kind"},
	)
)

// UsageInfo содержит информацию об использовании токенов и стоимости.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// AIClient - интерфейс взаимодействия с генеративным коллаборатором.
// Каждый вызов - одна точка приостановки: движок отправляет запрос и ждет ответа.
type AIClient interface {
	// GenerateJSON отправляет системный промт и ввод, возвращает извлеченный
	// из ответа JSON. kind - метка вида запроса для метрик и логов
	// (scenarios, questions, ranking, events, chats, feed, group_name).
	GenerateJSON(ctx context.Context, kind string, systemPrompt string, userInput string, params GenerationParams) (json.RawMessage, UsageInfo, error)
}

// calculateCost рассчитывает оценочную стоимость запроса на основе токенов.
func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// --- OpenAI Client Implementation ---

// openAIClient реализует AIClient с использованием go-openai.
// Транспортные ошибки и невалидный JSON ретраятся здесь, на уровне клиента,
// ограниченным числом попыток с фиксированной базовой задержкой. Валидация
// СТРУКТУРЫ ответа - ответственность вызывающей стороны (internal/schemas).
type openAIClient struct {
	client      *openaigo.Client
	model       string
	maxAttempts int
	retryDelay  time.Duration
}

// NewAIClient создает AIClient согласно конфигурации (openai или ollama).
func NewAIClient(cfg *config.Config) (AIClient, error) {
	switch cfg.AIBackend {
	case "", "openai":
		if cfg.AIAPIKey == "" {
			return nil, fmt.Errorf("AI_API_KEY не задан")
		}
		clientConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		clientConfig.BaseURL = cfg.AIBaseURL
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		return &openAIClient{
			client:      openaigo.NewClientWithConfig(clientConfig),
			model:       cfg.AIModel,
			maxAttempts: cfg.AIMaxAttempts,
			retryDelay:  cfg.AIBaseRetryDelay,
		}, nil
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("неизвестный AI бэкенд: %s", cfg.AIBackend)
	}
}

// GenerateJSON генерирует текст и извлекает из него JSON-фрагмент.
func (c *openAIClient) GenerateJSON(ctx context.Context, kind string, systemPrompt string, userInput string, params GenerationParams) (json.RawMessage, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		log.Printf("Ошибка: Системный промт пуст после подготовки. kind: %s", kind)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: системный промт пуст", ErrAIGenerationFailed)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, usageInfo, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			}
			log.Printf("[AIClient] Повторная попытка %d/%d (kind: %s)", attempt, c.maxAttempts, kind)
		}

		raw, usage, err := c.doRequest(ctx, kind, systemPrompt, userInput, params)
		if err != nil {
			lastErr = err
			continue
		}
		return raw, usage, nil
	}

	return nil, usageInfo, fmt.Errorf("AI запрос '%s' не удался после %d попыток: %w", kind, c.maxAttempts, lastErr)
}

// doRequest выполняет один запрос к AI API без ретраев.
func (c *openAIClient) doRequest(ctx context.Context, kind string, systemPrompt string, userInput string, params GenerationParams) (json.RawMessage, UsageInfo, error) {
	usageInfo := UsageInfo{}

	messages := []openaigo.ChatCompletionMessage{
		{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}
	// Добавляем ввод пользователя, если он есть
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	startTime := time.Now()
	log.Printf("Отправка запроса к AI: Model=%s, SystemPrompt=%d bytes, UserInput=%d bytes, kind: %s",
		c.model, len(systemPrompt), len(userInput), kind)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openaigo.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: float32Val(params.Temperature),
			MaxTokens:   intVal(params.MaxTokens),
		},
	)

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("Ошибка от AI API за %v (kind: %s): %v", duration, kind, err)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Printf("AI API вернул пустой ответ за %v (kind: %s)", duration, kind)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: получен пустой ответ", ErrAIGenerationFailed)
	}

	generatedText := resp.Choices[0].Message.Content
	log.Printf("Ответ от AI API получен за %v. Длина ответа: %d символов. (kind: %s)", duration, len(generatedText), kind)

	extracted := ExtractJSONContent(generatedText)
	if extracted == "" {
		log.Printf("Не удалось извлечь JSON из ответа AI (kind: %s, длина %d)", kind, len(generatedText))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_invalid_json", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w (kind: %s)", ErrAIInvalidJSON, kind)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success", "kind": kind}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "kind": kind}).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		log.Printf("AI Usage (kind: %s): PromptTokens=%d, CompletionTokens=%d, TotalTokens=%d",
			kind, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
		aiPromptTokens.With(prometheus.Labels{"model": c.model, "kind": kind}).Observe(float64(resp.Usage.PromptTokens))
		aiCompletionTokens.With(prometheus.Labels{"model": c.model, "kind": kind}).Observe(float64(resp.Usage.CompletionTokens))

		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
		usageInfo.EstimatedCostUSD = calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		if usageInfo.EstimatedCostUSD > 0 {
			aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model, "kind": kind}).Add(usageInfo.EstimatedCostUSD)
			log.Printf("AI Usage Cost (estimated, kind: %s): $%.6f", kind, usageInfo.EstimatedCostUSD)
		}
	}

	return json.RawMessage(extracted), usageInfo, nil
}

// --- Вспомогательные функции конвертации указателей ---

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		// Дефолт API при нулевом значении
		return 1.0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
