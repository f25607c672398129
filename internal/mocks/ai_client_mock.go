package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"babylon-engine/internal/service"
)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

// GenerateJSON provides a mock function with given fields: ctx, kind, systemPrompt, userInput, params
func (_m *MockAIClient) GenerateJSON(ctx context.Context, kind string, systemPrompt string, userInput string, params service.GenerationParams) (json.RawMessage, service.UsageInfo, error) {
	ret := _m.Called(ctx, kind, systemPrompt, userInput, params)

	var r0 json.RawMessage
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, service.GenerationParams) json.RawMessage); ok {
		r0 = rf(ctx, kind, systemPrompt, userInput, params)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(json.RawMessage)
		}
	}

	var r1 service.UsageInfo
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string, service.GenerationParams) service.UsageInfo); ok {
		r1 = rf(ctx, kind, systemPrompt, userInput, params)
	} else {
		if ret.Get(1) != nil {
			r1 = ret.Get(1).(service.UsageInfo)
		}
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, string, string, string, service.GenerationParams) error); ok {
		r2 = rf(ctx, kind, systemPrompt, userInput, params)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
