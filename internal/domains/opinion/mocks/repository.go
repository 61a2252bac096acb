// Package mocks holds testify mocks for the opinion domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"what-to-watch/internal/domains/opinion/model"
)

// MockRepository implements repository.RepositoryInterface
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a mock and asserts its expectations on cleanup.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*model.Opinion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockRepository) GetByText(ctx context.Context, text string) (*model.Opinion, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]model.Opinion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Opinion), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, opinion *model.Opinion) (*model.Opinion, error) {
	args := m.Called(ctx, opinion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, patch model.OpinionPatch) (*model.Opinion, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) RandomOne(ctx context.Context) (*model.Opinion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}
