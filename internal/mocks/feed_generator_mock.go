package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"babylon-engine/internal/models"
)

// MockFeedGenerator is a mock type for the FeedGenerator type
type MockFeedGenerator struct {
	mock.Mock
}

// GeneratePosts provides a mock function with given fields: ctx, day, events, actors, revealOutcomes
func (_m *MockFeedGenerator) GeneratePosts(ctx context.Context, day int, events []models.WorldEvent, actors []models.Actor, revealOutcomes bool) ([]models.FeedPost, error) {
	ret := _m.Called(ctx, day, events, actors, revealOutcomes)

	var r0 []models.FeedPost
	if rf, ok := ret.Get(0).(func(context.Context, int, []models.WorldEvent, []models.Actor, bool) []models.FeedPost); ok {
		r0 = rf(ctx, day, events, actors, revealOutcomes)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.FeedPost)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int, []models.WorldEvent, []models.Actor, bool) error); ok {
		r1 = rf(ctx, day, events, actors, revealOutcomes)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockFeedGenerator creates a new instance of MockFeedGenerator.
// The first argument is typically a *testing.T value.
func NewMockFeedGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockFeedGenerator {
	m := &MockFeedGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
