package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"babylon-engine/internal/models"
)

// MockGameRepository is a mock type for the GameRepository type
type MockGameRepository struct {
	mock.Mock
}

// SaveGame provides a mock function with given fields: ctx, game
func (_m *MockGameRepository) SaveGame(ctx context.Context, game *models.GeneratedGame) error {
	ret := _m.Called(ctx, game)
	return ret.Error(0)
}

// GetGame provides a mock function with given fields: ctx, id
func (_m *MockGameRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.GeneratedGame
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GeneratedGame)
	}
	return r0, ret.Error(1)
}

// NewMockGameRepository creates a new instance of MockGameRepository.
func NewMockGameRepository(t interface {
	mock.TestingT
	Helper()
}) *MockGameRepository {
	m := &MockGameRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockHistoryRepository is a mock type for the HistoryRepository type
type MockHistoryRepository struct {
	mock.Mock
}

// Push provides a mock function with given fields: ctx, history
func (_m *MockHistoryRepository) Push(ctx context.Context, history models.GameHistory) error {
	ret := _m.Called(ctx, history)
	return ret.Error(0)
}

// Recent provides a mock function with given fields: ctx, limit
func (_m *MockHistoryRepository) Recent(ctx context.Context, limit int) ([]models.GameHistory, error) {
	ret := _m.Called(ctx, limit)

	var r0 []models.GameHistory
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GameHistory)
	}
	return r0, ret.Error(1)
}

// NewMockHistoryRepository creates a new instance of MockHistoryRepository.
func NewMockHistoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockHistoryRepository {
	m := &MockHistoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

// MockActorRepository is a mock type for the ActorRepository type
type MockActorRepository struct {
	mock.Mock
}

// ListActors provides a mock function with given fields: ctx
func (_m *MockActorRepository) ListActors(ctx context.Context) ([]models.Actor, error) {
	ret := _m.Called(ctx)

	var r0 []models.Actor
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Actor)
	}
	return r0, ret.Error(1)
}

// ListOrganizations provides a mock function with given fields: ctx
func (_m *MockActorRepository) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	ret := _m.Called(ctx)

	var r0 []models.Organization
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Organization)
	}
	return r0, ret.Error(1)
}

// GetActor provides a mock function with given fields: ctx, id
func (_m *MockActorRepository) GetActor(ctx context.Context, id string) (*models.Actor, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Actor
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Actor)
	}
	return r0, ret.Error(1)
}

// NewMockActorRepository creates a new instance of MockActorRepository.
func NewMockActorRepository(t interface {
	mock.TestingT
	Helper()
}) *MockActorRepository {
	m := &MockActorRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
