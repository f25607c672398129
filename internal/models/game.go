package models

import (
	"time"

	"github.com/google/uuid"
)

// Scenario - сюжетная линия игры. Ссылается только на отобранных акторов
// и извлеченные организации.
type Scenario struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Theme         string   `json:"theme,omitempty"`
	MainActors    []string `json:"mainActors"`
	Organizations []string `json:"organizations,omitempty"`
}

// Question - бинарный вопрос рынка предсказаний. Исход фиксируется
// ровно один раз при создании и больше никогда не пересматривается:
// дальнейшая генерация производит только свидетельства в его пользу.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	ScenarioID string `json:"scenarioId"`
	Rank       int    `json:"rank"`
	Outcome    bool   `json:"outcome"`
}

// GroupChat - приватная группа, производная от графа связей.
// Участники - строго подмножество отобранных акторов, админ входит в список.
type GroupChat struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	AdminID string   `json:"adminId"`
	Members []string `json:"members"`
	Theme   string   `json:"theme,omitempty"`
}

// EventType - тип мирового события.
type EventType string

const (
	EventMeeting      EventType = "meeting"
	EventAnnouncement EventType = "announcement"
	EventScandal      EventType = "scandal"
	EventDeal         EventType = "deal"
	EventConflict     EventType = "conflict"
	EventRevelation   EventType = "revelation"
)

// IsValidEventType проверяет тип события из ответа коллаборатора.
func IsValidEventType(t EventType) bool {
	switch t {
	case EventMeeting, EventAnnouncement, EventScandal, EventDeal, EventConflict, EventRevelation:
		return true
	default:
		return false
	}
}

// WorldEvent - событие одного игрового дня. PointsToward - подсказка о том,
// какой исход событие поддерживает; nil означает, что подсказка скрыта.
type WorldEvent struct {
	ID              string    `json:"id"`
	Type            EventType `json:"type"`
	Participants    []string  `json:"participants"`
	Description     string    `json:"description"`
	RelatedQuestion string    `json:"relatedQuestion,omitempty"`
	PointsToward    *bool     `json:"pointsToward,omitempty"`
	Visibility      string    `json:"visibility"` // public / private
}

// ChatMessage - сообщение в групповом чате.
// ClueStrength - насколько сильно сообщение сигнализирует об истинном исходе.
type ChatMessage struct {
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	ClueStrength float64   `json:"clueStrength"`
}

// FeedPost - публикация в ленте, возвращаемая фид-коллаборатором.
type FeedPost struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type,omitempty"`
	Sentiment    float64   `json:"sentiment"`
	ClueStrength float64   `json:"clueStrength"`
	ReplyTo      string    `json:"replyTo,omitempty"`
}

// StateChange - запись об изменении настроения/удачи актора за день.
type StateChange struct {
	ActorID   string  `json:"actorId"`
	MoodDelta float64 `json:"moodDelta"`
	Mood      float64 `json:"mood"` // итоговое значение после применения
	LuckFrom  Luck    `json:"luckFrom"`
	LuckTo    Luck    `json:"luckTo"`
	Reason    string  `json:"reason"` // drift / event
}

// DayTimeline - один день игры. День нумеруется с 1, строго возрастает,
// без пропусков.
type DayTimeline struct {
	Day           int                      `json:"day"`
	Summary       string                   `json:"summary"`
	Events        []WorldEvent             `json:"events"`
	GroupMessages map[string][]ChatMessage `json:"groupMessages"` // ключ - ID чата
	FeedPosts     []FeedPost               `json:"feedPosts"`
	StateChanges  []StateChange            `json:"stateChanges"`
}

// GameSetup - неизменяемая после подготовки часть игры.
type GameSetup struct {
	Actors        []Actor           `json:"actors"`
	Organizations []Organization    `json:"organizations"`
	Connections   []ActorConnection `json:"connections"`
	Scenarios     []Scenario        `json:"scenarios"`
	Questions     []Question        `json:"questions"`
	GroupChats    []GroupChat       `json:"groupChats"`
}

// QuestionResult - финальное подтверждение исхода вопроса с опорой
// на конкретные события таймлайна.
type QuestionResult struct {
	QuestionID  string   `json:"questionId"`
	Text        string   `json:"text"`
	Outcome     bool     `json:"outcome"`
	Explanation string   `json:"explanation"`
	EvidenceIDs []string `json:"evidenceIds,omitempty"`
}

// GameResolution - итоговое разрешение всех вопросов игры.
type GameResolution struct {
	Results   []QuestionResult `json:"results"`
	Narrative string           `json:"narrative"`
}

// GeneratedGame - агрегат игры. Создается один раз за прогон, дополняется
// только по ходу генерации и запечатывается на разрешении.
type GeneratedGame struct {
	ID         uuid.UUID       `json:"id"`
	Setup      GameSetup       `json:"setup"`
	Timeline   []DayTimeline   `json:"timeline"`
	Resolution *GameResolution `json:"resolution,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ActorByID возвращает актора сетапа по ID.
func (s *GameSetup) ActorByID(id string) (*Actor, bool) {
	for i := range s.Actors {
		if s.Actors[i].ID == id {
			return &s.Actors[i], true
		}
	}
	return nil, false
}

// ActorsByRole возвращает акторов с заданной ролью, сохраняя порядок отбора.
func (s *GameSetup) ActorsByRole(role Role) []Actor {
	var out []Actor
	for _, a := range s.Actors {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out
}
