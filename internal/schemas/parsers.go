package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"babylon-engine/internal/models"
)

// Sentinel errors for collaborator response validation. Callers decide
// whether a failure is fatal or retryable; parsers only report shape problems.
var (
	ErrNoScenarios  = errors.New("scenario response contains no scenarios")
	ErrNoQuestions  = errors.New("question response contains no questions")
	ErrNoEvents     = errors.New("event response contains no events")
	ErrEmptyName    = errors.New("group name response contains no name")
	ErrInvalidShape = errors.New("response shape not recognized")
)

// ScenarioDraft is one scenario as returned by the collaborator, before ids
// are assigned by the engine.
type ScenarioDraft struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Theme         string   `json:"theme"`
	MainActors    []string `json:"mainActors"`
	Organizations []string `json:"organizations"`
}

// ParseScenarios parses and validates a scenario generation response of the
// shape {"scenarios": [...]}. Every scenario must carry a non-empty title,
// description and mainActors list; any violation is an error. No silent
// defaults, no partial acceptance.
func ParseScenarios(data []byte) ([]ScenarioDraft, error) {
	var aux struct {
		Scenarios []ScenarioDraft `json:"scenarios"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to parse scenario response: %w", err)
	}
	if len(aux.Scenarios) == 0 {
		return nil, ErrNoScenarios
	}
	for i, s := range aux.Scenarios {
		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf("scenario %d is missing a title", i)
		}
		if strings.TrimSpace(s.Description) == "" {
			return nil, fmt.Errorf("scenario %d (%q) is missing a description", i, s.Title)
		}
		if len(s.MainActors) == 0 {
			return nil, fmt.Errorf("scenario %d (%q) is missing mainActors", i, s.Title)
		}
	}
	return aux.Scenarios, nil
}

// QuestionDraft is one question as returned by the collaborator.
type QuestionDraft struct {
	Text       string `json:"text"`
	ScenarioID string `json:"scenarioId"`
}

// ParseQuestions normalizes the two accepted question response shapes into a
// single flat list: either a flat {"questions": [...]} object or an array of
// per-scenario {"questions": [...]} objects. An empty result is an error.
func ParseQuestions(data []byte) ([]QuestionDraft, error) {
	type questionsObject struct {
		ScenarioID string          `json:"scenarioId"`
		Questions  []QuestionDraft `json:"questions"`
	}

	trimmed := strings.TrimSpace(string(data))

	var flat []QuestionDraft
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var obj questionsObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse question response: %w", err)
		}
		flat = obj.Questions
	case strings.HasPrefix(trimmed, "["):
		var objs []questionsObject
		if err := json.Unmarshal(data, &objs); err != nil {
			return nil, fmt.Errorf("failed to parse per-scenario question response: %w", err)
		}
		for _, obj := range objs {
			for _, q := range obj.Questions {
				// Per-scenario shape may carry the scenario id on the wrapper
				if q.ScenarioID == "" {
					q.ScenarioID = obj.ScenarioID
				}
				flat = append(flat, q)
			}
		}
	default:
		return nil, ErrInvalidShape
	}

	out := flat[:0]
	for _, q := range flat {
		if strings.TrimSpace(q.Text) != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoQuestions
	}
	return out, nil
}

// ParseRankings parses a ranking response {"rankings": [{"questionId", "rank"}]}
// into a questionId -> rank map. Entries without a positive rank are skipped;
// the caller keeps prior ranks for questions absent from the map.
func ParseRankings(data []byte) (map[string]int, error) {
	var aux struct {
		Rankings []struct {
			QuestionID string `json:"questionId"`
			Rank       int    `json:"rank"`
		} `json:"rankings"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}
	ranks := make(map[string]int, len(aux.Rankings))
	for _, r := range aux.Rankings {
		if r.QuestionID != "" && r.Rank > 0 {
			ranks[r.QuestionID] = r.Rank
		}
	}
	return ranks, nil
}

// EventDraft is one world event as returned by the collaborator.
// PointsToward is the literal "YES"/"NO" or absent.
type EventDraft struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Participants    []string `json:"participants"`
	RelatedQuestion string   `json:"relatedQuestion"`
	PointsToward    string   `json:"pointsToward"`
	Visibility      string   `json:"visibility"`
}

// Hint converts the literal pointsToward value into the engine representation
// (nil means withheld or unrecognized).
func (e EventDraft) Hint() *bool {
	switch strings.ToUpper(strings.TrimSpace(e.PointsToward)) {
	case "YES":
		v := true
		return &v
	case "NO":
		v := false
		return &v
	default:
		return nil
	}
}

// ParseDayEvents parses a batched day event response {"events": [...]}.
// Events without a description or participants are rejected outright: the
// event batch call site is not retried, a bad batch aborts the run.
func ParseDayEvents(data []byte) ([]EventDraft, error) {
	var aux struct {
		Events []EventDraft `json:"events"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to parse day event response: %w", err)
	}
	if len(aux.Events) == 0 {
		return nil, ErrNoEvents
	}
	for i, e := range aux.Events {
		if strings.TrimSpace(e.Description) == "" {
			return nil, fmt.Errorf("event %d is missing a description", i)
		}
		if len(e.Participants) == 0 {
			return nil, fmt.Errorf("event %d (%q) has no participants", i, e.Description)
		}
	}
	return aux.Events, nil
}

// GroupMessagesDraft is the per-group slice of a batched chat response.
type GroupMessagesDraft struct {
	GroupID  string `json:"groupId"`
	Messages []struct {
		Sender       string  `json:"sender"`
		Text         string  `json:"text"`
		ClueStrength float64 `json:"clueStrength"`
	} `json:"messages"`
}

// ParseGroupMessages parses a batched group chat response
// {"groups": [{"groupId", "messages": [...]}]}. Count and emptiness
// validation against the requested group set is the caller's job (that call
// site is wrapped in a bounded retry).
func ParseGroupMessages(data []byte) ([]GroupMessagesDraft, error) {
	var aux struct {
		Groups []GroupMessagesDraft `json:"groups"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to parse group message response: %w", err)
	}
	return aux.Groups, nil
}

// ParseFeedPosts parses a feed collaborator response {"posts": [...]}.
func ParseFeedPosts(data []byte) ([]models.FeedPost, error) {
	var aux struct {
		Posts []models.FeedPost `json:"posts"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}
	out := aux.Posts[:0]
	for _, p := range aux.Posts {
		if strings.TrimSpace(p.Content) != "" && p.Author != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// ParseGroupName parses a group chat naming response {"name": "..."}.
func ParseGroupName(data []byte) (string, error) {
	var aux struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return "", fmt.Errorf("failed to parse group name response: %w", err)
	}
	name := strings.TrimSpace(aux.Name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
