package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"babylon-engine/internal/models"
	"babylon-engine/internal/service"
)

// fakeCollaborator - скриптованный AI клиент для прогона всего движка.
// Отвечает валидным JSON на каждый вид запроса; первые badChatBatches
// батчей сообщений возвращает пустыми для проверки ретраев.
type fakeCollaborator struct {
	calls          map[string]int
	badChatBatches int
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{calls: make(map[string]int)}
}

func (f *fakeCollaborator) GenerateJSON(ctx context.Context, kind, systemPrompt, userInput string, params service.GenerationParams) (json.RawMessage, service.UsageInfo, error) {
	f.calls[kind]++
	switch kind {
	case "scenarios":
		return json.RawMessage(`{"scenarios": [
			{"title": "The Merger", "description": "Two empires circle each other.", "theme": "business",
			 "mainActors": ["actor-1", "actor-2"], "organizations": ["org-1", "bogus-org"]},
			{"title": "The Leak", "description": "Documents start surfacing.", "mainActors": ["actor-2"]}
		]}`), service.UsageInfo{}, nil
	case "questions":
		return json.RawMessage(`{"questions": [
			{"text": "Will the merger close?", "scenarioId": "scenario-1"},
			{"text": "Will the leaker be named?", "scenarioId": "scenario-2"},
			{"text": "Will the CEO resign?", "scenarioId": "scenario-1"},
			{"text": "Will the stock double?", "scenarioId": "bogus"}
		]}`), service.UsageInfo{}, nil
	case "ranking":
		return json.RawMessage(`{"rankings": [
			{"questionId": "question-1", "rank": 1},
			{"questionId": "question-2", "rank": 2},
			{"questionId": "question-3", "rank": 3},
			{"questionId": "question-4", "rank": 4}
		]}`), service.UsageInfo{}, nil
	case "group_name":
		name := fmt.Sprintf(`{"name": "Inner Circle %d"}`, f.calls["group_name"])
		return json.RawMessage(name), service.UsageInfo{}, nil
	case "events":
		return json.RawMessage(`{"events": [
			{"type": "deal", "description": "A quiet deal moves forward.",
			 "participants": ["actor-1", "nobody"], "relatedQuestion": "question-1",
			 "pointsToward": "YES", "visibility": "public"},
			{"type": "scandal", "description": "A scandal erupts at a gala.",
			 "participants": ["actor-2"], "visibility": "private"}
		]}`), service.UsageInfo{}, nil
	case "chats":
		if f.badChatBatches > 0 {
			f.badChatBatches--
			return json.RawMessage(`{"groups": []}`), service.UsageInfo{}, nil
		}
		return f.chatResponse(userInput)
	default:
		return nil, service.UsageInfo{}, fmt.Errorf("unexpected kind %q", kind)
	}
}

// chatResponse строит валидный батч по запрошенным группам из текста запроса.
func (f *fakeCollaborator) chatResponse(userInput string) (json.RawMessage, service.UsageInfo, error) {
	type msg struct {
		Sender       string  `json:"sender"`
		Text         string  `json:"text"`
		ClueStrength float64 `json:"clueStrength"`
	}
	type group struct {
		GroupID  string `json:"groupId"`
		Messages []msg  `json:"messages"`
	}
	var groups []group

	for _, line := range strings.Split(userInput, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") || !strings.Contains(line, ", members: ") {
			continue
		}
		rest := strings.TrimPrefix(line, "- ")
		id, tail, ok := strings.Cut(rest, " = ")
		if !ok {
			continue
		}
		_, memberPart, ok := strings.Cut(tail, ", members: ")
		if !ok {
			continue
		}
		members := strings.Split(memberPart, ", ")
		groups = append(groups, group{
			GroupID: id,
			Messages: []msg{
				{Sender: members[0], Text: "did you see that?", ClueStrength: 0.4},
				{Sender: "outsider", Text: "should be dropped", ClueStrength: 0.1},
			},
		})
	}

	raw, err := json.Marshal(map[string]any{"groups": groups})
	if err != nil {
		return nil, service.UsageInfo{}, err
	}
	return raw, service.UsageInfo{}, nil
}

// stubFeed возвращает по одному посту в день.
type stubFeed struct{}

func (stubFeed) GeneratePosts(ctx context.Context, day int, events []models.WorldEvent, actors []models.Actor, revealOutcomes bool) ([]models.FeedPost, error) {
	return []models.FeedPost{{
		ID:        fmt.Sprintf("post-%d", day),
		Author:    "actor-1",
		Content:   "hot take of the day",
		Sentiment: float64(day%3) - 1,
	}}, nil
}

func testPool() ([]models.Actor, []models.Organization) {
	tiers := []models.Tier{models.TierS, models.TierA, models.TierB, models.TierC, models.TierD}
	actors := make([]models.Actor, 0, 10)
	for i := 1; i <= 10; i++ {
		a := models.Actor{
			ID:          fmt.Sprintf("actor-%d", i),
			Name:        fmt.Sprintf("Actor %d", i),
			Tier:        tiers[(i-1)%len(tiers)],
			Personality: "sharp and ambitious",
		}
		if i <= 2 {
			a.Affiliations = []string{"org-1"}
		}
		actors = append(actors, a)
	}
	orgs := []models.Organization{
		{ID: "org-1", Name: "Helix Media", Type: "media"},
		{ID: "org-2", Name: "Northwind", Type: "company"},
	}
	return actors, orgs
}

func testTuning() Tuning {
	t := DefaultTuning()
	t.MainCount = 2
	t.SupportingCount = 3
	t.ExtraCount = 5
	return t
}

func newTestEngine(t *testing.T, fake *fakeCollaborator, seed int64, sleep func(time.Duration)) *Engine {
	t.Helper()
	actors, orgs := testPool()
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	eng, err := New(fake, stubFeed{}, service.NewContextBuilder(zap.NewNop(), "gpt-4"), Options{
		Actors:        actors,
		Organizations: orgs,
		Seed:          seed,
		Tuning:        testTuning(),
		Sleep:         sleep,
	})
	require.NoError(t, err)
	return eng
}

func TestGenerateGame_FullSeason(t *testing.T) {
	fake := newFakeCollaborator()
	eng := newTestEngine(t, fake, 42, nil)

	game, err := eng.GenerateGame(context.Background())
	require.NoError(t, err)
	require.NotNil(t, game)

	// Каст: пул целиком, роли по плану
	assert.Len(t, game.Setup.Actors, 10)
	assert.Len(t, game.Setup.ActorsByRole(models.RoleMain), 2)
	assert.Len(t, game.Setup.ActorsByRole(models.RoleSupporting), 3)
	assert.Len(t, game.Setup.ActorsByRole(models.RoleExtra), 5)
	for _, a := range game.Setup.Actors {
		assert.True(t, models.IsValidLuck(a.InitialLuck), "актор %s без валидной удачи", a.ID)
		assert.GreaterOrEqual(t, a.InitialMood, -1.0)
		assert.LessOrEqual(t, a.InitialMood, 1.0)
	}

	// Сценарии приняты, неизвестная организация отброшена
	require.Len(t, game.Setup.Scenarios, 2)
	assert.Equal(t, []string{"org-1"}, game.Setup.Scenarios[0].Organizations)

	// Вопросы усечены до QuestionTarget по возрастанию ранга
	require.Len(t, game.Setup.Questions, 3)
	assert.Equal(t, "question-1", game.Setup.Questions[0].ID)

	// Ровно 30 дней, нумерация без пропусков
	require.Len(t, game.Timeline, 30)
	known := make(map[string]bool)
	for _, a := range game.Setup.Actors {
		known[a.ID] = true
	}
	chatMembers := make(map[string]map[string]bool)
	for _, c := range game.Setup.GroupChats {
		set := make(map[string]bool)
		for _, m := range c.Members {
			set[m] = true
		}
		chatMembers[c.ID] = set
	}

	for i, day := range game.Timeline {
		assert.Equal(t, i+1, day.Day)
		assert.NotEmpty(t, day.Events, "день %d без событий", day.Day)
		for _, ev := range day.Events {
			for _, p := range ev.Participants {
				assert.True(t, known[p], "день %d: событие %s ссылается на чужого актора %s", day.Day, ev.ID, p)
			}
		}
		for chatID, msgs := range day.GroupMessages {
			members, ok := chatMembers[chatID]
			require.True(t, ok, "день %d: сообщения в несуществующем чате %s", day.Day, chatID)
			require.NotEmpty(t, msgs)
			for _, m := range msgs {
				assert.True(t, members[m.Sender], "день %d: отправитель %s не состоит в чате %s", day.Day, m.Sender, chatID)
			}
		}
	}

	// Все вопросы разрешены с доказательствами, исходы не пересмотрены
	require.NotNil(t, game.Resolution)
	require.Len(t, game.Resolution.Results, len(game.Setup.Questions))
	for i, res := range game.Resolution.Results {
		q := game.Setup.Questions[i]
		assert.Equal(t, q.ID, res.QuestionID)
		assert.Equal(t, q.Outcome, res.Outcome)
		assert.NotEmpty(t, res.EvidenceIDs, "вопрос %s без доказательств", q.ID)
		assert.NotEmpty(t, res.Explanation)
	}
	assert.NotEmpty(t, game.Resolution.Narrative)

	// Финальные дни дают каждому вопросу окончательное событие
	definitive := make(map[string]bool)
	for _, day := range game.Timeline {
		if day.Day < testTuning().FirstResolutionDay() {
			continue
		}
		for _, ev := range day.Events {
			if ev.RelatedQuestion != "" && ev.PointsToward != nil && ev.Type == models.EventRevelation {
				definitive[ev.RelatedQuestion] = true
			}
		}
	}
	for _, q := range game.Setup.Questions {
		assert.True(t, definitive[q.ID], "вопрос %s не получил окончательного события", q.ID)
	}
}

func TestGenerateGame_DeterministicForSeed(t *testing.T) {
	run := func() *models.GeneratedGame {
		eng := newTestEngine(t, newFakeCollaborator(), 7, nil)
		game, err := eng.GenerateGame(context.Background())
		require.NoError(t, err)
		return game
	}

	first := run()
	second := run()

	require.Len(t, second.Setup.Actors, len(first.Setup.Actors))
	for i := range first.Setup.Actors {
		assert.Equal(t, first.Setup.Actors[i].ID, second.Setup.Actors[i].ID)
		assert.Equal(t, first.Setup.Actors[i].Role, second.Setup.Actors[i].Role)
		assert.Equal(t, first.Setup.Actors[i].InitialLuck, second.Setup.Actors[i].InitialLuck)
	}
	require.Len(t, second.Setup.Questions, len(first.Setup.Questions))
	for i := range first.Setup.Questions {
		assert.Equal(t, first.Setup.Questions[i].Outcome, second.Setup.Questions[i].Outcome)
	}
	assert.Equal(t, len(first.Setup.Connections), len(second.Setup.Connections))
}

func chatTestRun() *gameRun {
	r := &gameRun{game: &models.GeneratedGame{CreatedAt: time.Now()}}
	r.game.Setup.GroupChats = []models.GroupChat{{
		ID:      "inner-circle",
		Name:    "Inner Circle",
		AdminID: "actor-1",
		Members: []string{"actor-1", "actor-2"},
	}}
	return r
}

func TestGenerateGroupMessages_RetriesThenSucceeds(t *testing.T) {
	fake := newFakeCollaborator()
	fake.badChatBatches = 4 // первые четыре батча невалидны, пятый проходит

	var sleeps int
	eng := newTestEngine(t, fake, 1, func(time.Duration) { sleeps++ })

	ph := Phase{Name: "test", ChatChance: 1.0}
	msgs, err := eng.generateGroupMessages(context.Background(), chatTestRun(), 5, ph, "context", nil)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotEmpty(t, msgs["inner-circle"])
	// Отправитель вне списка участников отброшен
	for _, m := range msgs["inner-circle"] {
		assert.NotEqual(t, "outsider", m.Sender)
	}
	assert.Equal(t, 5, fake.calls["chats"])
	assert.Equal(t, 4, sleeps, "каждый неудачный батч должен стоить одну паузу")
}

func TestGenerateGroupMessages_FailsAfterAllAttempts(t *testing.T) {
	fake := newFakeCollaborator()
	fake.badChatBatches = 1000 // невалидны всегда

	eng := newTestEngine(t, fake, 1, nil)

	ph := Phase{Name: "test", ChatChance: 1.0}
	_, err := eng.generateGroupMessages(context.Background(), chatTestRun(), 5, ph, "context", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChatBatchMismatch)
	assert.Equal(t, 5, fake.calls["chats"], "ровно пять попыток, не больше")
}

func TestNew_Validation(t *testing.T) {
	actors, orgs := testPool()
	ctxb := service.NewContextBuilder(zap.NewNop(), "gpt-4")

	_, err := New(nil, stubFeed{}, ctxb, Options{Actors: actors, Organizations: orgs})
	assert.Error(t, err)

	_, err = New(newFakeCollaborator(), nil, ctxb, Options{Actors: actors, Organizations: orgs})
	assert.Error(t, err)

	_, err = New(newFakeCollaborator(), stubFeed{}, ctxb, Options{})
	assert.Error(t, err)
}
