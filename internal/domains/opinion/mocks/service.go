package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/domains/opinion/service"
)

// MockService implements service.ServiceInterface
type MockService struct {
	mock.Mock
}

func NewMockService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockService {
	m := &MockService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockService) Create(ctx context.Context, req *model.CreateOpinionRequest, channel service.Channel) (*model.Opinion, error) {
	args := m.Called(ctx, req, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, id int64) (*model.Opinion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockService) GetByText(ctx context.Context, text string) (*model.Opinion, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context) ([]model.Opinion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Opinion), args.Error(1)
}

func (m *MockService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id int64, req *model.UpdateOpinionRequest) (*model.Opinion, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) Random(ctx context.Context) (*model.Opinion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Opinion), args.Error(1)
}

// MockBulkImportService implements service.BulkImportServiceInterface
type MockBulkImportService struct {
	mock.Mock
}

func (m *MockBulkImportService) Import(ctx context.Context, r io.Reader) (*model.BulkImportResult, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BulkImportResult), args.Error(1)
}
