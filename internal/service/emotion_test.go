package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"babylon-engine/internal/models"
)

func TestMoodDescription(t *testing.T) {
	tests := []struct {
		mood float64
		want string
	}{
		{-1.0, "devastated"},
		{-0.7, "devastated"},
		{-0.5, "frustrated"},
		{-0.2, "uneasy"},
		{0.0, "neutral"},
		{0.2, "upbeat"},
		{0.5, "confident"},
		{0.7, "triumphant"},
		{1.0, "triumphant"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MoodDescription(tt.mood), "mood %.2f", tt.mood)
	}
}

func TestLuckDescription(t *testing.T) {
	assert.Equal(t, "things keep going wrong for them", LuckDescription(models.LuckLow))
	assert.Equal(t, "things keep breaking their way", LuckDescription(models.LuckHigh))
	assert.Equal(t, "fortune is treating them evenly", LuckDescription(models.LuckMedium))
}

func TestActorStateContext(t *testing.T) {
	actor := models.Actor{
		ID:          "actor-1",
		Name:        "Vera Stone",
		Tier:        models.TierA,
		Role:        models.RoleMain,
		Personality: "ruthless dealmaker",
	}
	state := models.ActorState{Mood: 0.5, Luck: models.LuckHigh}
	conns := []models.ActorConnection{
		{ActorA: "actor-1", ActorB: "actor-2", Relation: "rival"},
		{ActorA: "actor-3", ActorB: "actor-4", Relation: "friend"},
	}

	got := ActorStateContext(actor, state, conns)
	assert.Contains(t, got, "Vera Stone")
	assert.Contains(t, got, "confident")
	assert.Contains(t, got, "breaking their way")
	assert.Contains(t, got, "rival of actor-2")
	assert.NotContains(t, got, "actor-3", "чужие связи не попадают в контекст актора")
}
