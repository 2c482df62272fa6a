package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRunCache struct {
	mock.Mock
}

func (m *MockRunCache) Put(ctx context.Context, result *RunResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockRunCache) Get(ctx context.Context, runID string) (*RunResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RunResult), args.Error(1)
}

type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) SaveRun(ctx context.Context, result *RunResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockRunStore) LoadRun(ctx context.Context, runID string) (*RunResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RunResult), args.Error(1)
}
