package models

// Tier определяет ранг актора (S - высший, D - низший).
// От ранга зависит вес при отборе и заметность в повествовании.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Role определяет роль актора в текущей игре. Назначается один раз при отборе.
type Role string

const (
	RoleMain       Role = "main"
	RoleSupporting Role = "supporting"
	RoleExtra      Role = "extra"
)

// Luck - дискретное состояние удачи актора.
type Luck string

const (
	LuckLow    Luck = "low"
	LuckMedium Luck = "medium"
	LuckHigh   Luck = "high"
)

// IsValidLuck проверяет, является ли значение допустимым уровнем удачи.
func IsValidLuck(l Luck) bool {
	switch l {
	case LuckLow, LuckMedium, LuckHigh:
		return true
	default:
		return false
	}
}

// Actor - участник каста. Идентичность неизменна после отбора.
type Actor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Tier         Tier     `json:"tier"`
	Role         Role     `json:"role,omitempty"` // назначается селектором
	Domains      []string `json:"domains,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"` // ID организаций
	Personality  string   `json:"personality,omitempty"`
	InitialMood  float64  `json:"initialMood"`
	InitialLuck  Luck     `json:"initialLuck"`
}

// Organization - организация, связанная с акторами через Affiliations.
// Отбирается по весу аффилиаций, а не независимой выборкой.
type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // media / company / government
	Description string `json:"description,omitempty"`
}

// ActorConnection - ненаправленное ребро между двумя акторами.
// Дубликаты пар (в обоих направлениях) не допускаются.
type ActorConnection struct {
	ActorA   string `json:"actorA"`
	ActorB   string `json:"actorB"`
	Relation string `json:"relation"` // ally / rival / advisor / source / critic / friend
	Context  string `json:"context,omitempty"`
}

// Involves сообщает, входит ли актор в ребро.
func (c ActorConnection) Involves(actorID string) bool {
	return c.ActorA == actorID || c.ActorB == actorID
}

// Other возвращает второго актора ребра относительно заданного.
func (c ActorConnection) Other(actorID string) string {
	if c.ActorA == actorID {
		return c.ActorB
	}
	return c.ActorA
}

// ActorState - изменяемое эмоциональное состояние актора в ходе игры.
// Настроение всегда в [-1, 1], удача всегда одно из трех значений.
type ActorState struct {
	Mood float64 `json:"mood"`
	Luck Luck    `json:"luck"`
}
