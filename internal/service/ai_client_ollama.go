package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"

	"babylon-engine/internal/config"
)

// --- Ollama Client Implementation ---

// ollamaClient реализует AIClient поверх локального Ollama.
// Используется для разработки без доступа к платному API.
type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration // Храним таймаут для контекста запроса
}

// newOllamaClient создает новый клиент для взаимодействия с Ollama.
func newOllamaClient(cfg *config.Config) (AIClient, error) {
	ollamaBaseURL := strings.TrimSuffix(cfg.OllamaHost, "/v1")
	ollamaBaseURL = strings.TrimSuffix(ollamaBaseURL, "/")

	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("невалидный адрес Ollama '%s': %w", ollamaBaseURL, err)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)
	return &ollamaClient{
		client:  client,
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
	}, nil
}

// GenerateJSON генерирует текст через нативный Ollama API и извлекает JSON.
func (c *ollamaClient) GenerateJSON(ctx context.Context, kind string, systemPrompt string, userInput string, params GenerationParams) (json.RawMessage, UsageInfo, error) {
	usageInfo := UsageInfo{EstimatedCostUSD: 0} // Ollama API не возвращает стоимость

	if strings.TrimSpace(systemPrompt) == "" {
		log.Printf("Ошибка: Системный промт пуст. Невозможно отправить запрос к Ollama. kind: %s", kind)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: системный промт пуст", ErrAIGenerationFailed)
	}

	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false), // Не стримим
		Options: map[string]interface{}{
			"temperature": params.Temperature,
			"num_predict": intVal(params.MaxTokens), // нативный API использует num_predict
		},
	}

	// Контекст с таймаутом, специфичным для этого запроса
	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	log.Printf("Отправка запроса к Ollama: Model=%s, SystemPrompt=%d bytes, UserInput=%d bytes, kind: %s",
		c.model, len(systemPrompt), len(userInput), kind)

	var responseText strings.Builder
	err := c.client.Chat(requestCtx, req, func(resp api.ChatResponse) error {
		responseText.WriteString(resp.Message.Content)
		if resp.Done {
			usageInfo.PromptTokens = resp.PromptEvalCount
			usageInfo.CompletionTokens = resp.EvalCount
			usageInfo.TotalTokens = resp.PromptEvalCount + resp.EvalCount
		}
		return nil
	})

	duration := time.Since(startTime)

	if err != nil {
		log.Printf("Ошибка от Ollama API за %v (kind: %s): %v", duration, kind, err)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}

	generated := responseText.String()
	if strings.TrimSpace(generated) == "" {
		log.Printf("Ollama вернул пустой ответ за %v (kind: %s)", duration, kind)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w: получен пустой ответ", ErrAIGenerationFailed)
	}

	extracted := ExtractJSONContent(generated)
	if extracted == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_invalid_json", "kind": kind}).Inc()
		return nil, usageInfo, fmt.Errorf("%w (kind: %s)", ErrAIInvalidJSON, kind)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success", "kind": kind}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model, "kind": kind}).Observe(duration.Seconds())
	log.Printf("Ответ от Ollama получен за %v. Длина ответа: %d символов. (kind: %s)", duration, len(generated), kind)

	return json.RawMessage(extracted), usageInfo, nil
}
