package service

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
)

// Бюджет токенов на контекстную часть промпта. Сводки прошлых дней
// усекаются начиная с самых старых, пока контекст не влезет в бюджет.
const defaultContextTokenBudget = 4000

// Кодировка для оценки токенов, когда модель не известна токенизатору.
const fallbackEncoding = "cl100k_base"

// ContextBuilder собирает контекстные строки для генерационных запросов:
// сводки прошлых игр, текущий сетап и сводки прошедших дней этой игры.
type ContextBuilder struct {
	logger      *zap.Logger
	model       string
	tokenBudget int
}

// NewContextBuilder создает новый ContextBuilder.
func NewContextBuilder(logger *zap.Logger, model string) *ContextBuilder {
	if logger == nil {
		log.Fatal().Msg("Logger is nil for ContextBuilder")
	}
	return &ContextBuilder{
		logger:      logger.Named("ContextBuilder"),
		model:       model,
		tokenBudget: defaultContextTokenBudget,
	}
}

// CountTokens оценивает число токенов в тексте для настроенной модели.
func (b *ContextBuilder) CountTokens(text string) int {
	tke, err := tiktoken.EncodingForModel(b.model)
	if err != nil {
		// Для моделей вне списка OpenAI берем универсальную кодировку
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			b.logger.Warn("Не удалось получить токенизатор, оцениваем по символам", zap.Error(err))
			return len(text) / 4
		}
	}
	return len(tke.Encode(text, nil, nil))
}

// HistoryContext сворачивает сводки прошлых игр (не более двух последних)
// в контекстный фрагмент для генерации.
func (b *ContextBuilder) HistoryContext(histories []models.GameHistory) string {
	if len(histories) == 0 {
		return ""
	}
	// Для краткости ограничиваемся двумя последними играми
	if len(histories) > 2 {
		histories = histories[:2]
	}

	var sb strings.Builder
	sb.WriteString("Previous seasons:\n")
	for i, h := range histories {
		fmt.Fprintf(&sb, "Season -%d: %s\n", i+1, h.Summary)
		for _, o := range h.KeyOutcomes {
			fmt.Fprintf(&sb, "  - %q resolved %s: %s\n", o.QuestionText, yesNo(o.Outcome), o.Explanation)
		}
	}
	return sb.String()
}

// SetupContext описывает текущий сетап: сценарии, вопросы, главных акторов
// и организации.
func (b *ContextBuilder) SetupContext(setup *models.GameSetup) string {
	var sb strings.Builder

	sb.WriteString("Cast (main):\n")
	for _, a := range setup.ActorsByRole(models.RoleMain) {
		fmt.Fprintf(&sb, "  - %s [%s]: %s\n", a.Name, a.ID, a.Personality)
	}

	if len(setup.Organizations) > 0 {
		sb.WriteString("Organizations:\n")
		for _, o := range setup.Organizations {
			fmt.Fprintf(&sb, "  - %s (%s) [%s]\n", o.Name, o.Type, o.ID)
		}
	}

	for _, s := range setup.Scenarios {
		fmt.Fprintf(&sb, "Scenario %q: %s\n", s.Title, s.Description)
	}
	for _, q := range setup.Questions {
		// Фиксированный исход намеренно включается в контекст: коллаборатор
		// производит свидетельства в его пользу, но сам исход не меняет.
		fmt.Fprintf(&sb, "Question [%s] (resolves %s): %s\n", q.ID, yesNo(q.Outcome), q.Text)
	}
	return sb.String()
}

// DayContext собирает полный контекст для генерации одного дня: истории
// прошлых игр, сетап и сводки уже сгенерированных дней. Если контекст
// превышает бюджет токенов, самые старые дневные сводки отбрасываются.
func (b *ContextBuilder) DayContext(histories []models.GameHistory, setup *models.GameSetup, days []models.DayTimeline) string {
	head := b.HistoryContext(histories) + b.SetupContext(setup)

	summaries := make([]string, 0, len(days))
	for _, d := range days {
		summaries = append(summaries, fmt.Sprintf("Day %d: %s", d.Day, d.Summary))
	}

	context := head
	if len(summaries) > 0 {
		context = head + "Season so far:\n" + strings.Join(summaries, "\n") + "\n"
	}

	// Усекаем старые дни, пока не уложимся в бюджет
	dropped := 0
	for b.CountTokens(context) > b.tokenBudget && dropped < len(summaries) {
		dropped++
		context = head + "Season so far (recent days):\n" + strings.Join(summaries[dropped:], "\n") + "\n"
	}
	if dropped > 0 {
		b.logger.Debug("Контекст дня усечен по бюджету токенов",
			zap.Int("dropped_days", dropped),
			zap.Int("budget", b.tokenBudget))
	}

	return context
}

func yesNo(outcome bool) string {
	if outcome {
		return "YES"
	}
	return "NO"
}
