package mocks

import (
	"context"
	"sync"
	"time"

	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/infrastructure"
	"trenddrop/trend-service/internal/app/trend/repository"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

// Upsert возвращает настроенный результат; через .Run тест может вызвать merge
func (m *MockProductRepository) Upsert(ctx context.Context, candidate *entity.Product, merge repository.MergeFunc) (repository.UpsertResult, error) {
	args := m.Called(ctx, candidate, merge)
	return args.Get(0).(repository.UpsertResult), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetWithDetails(ctx context.Context, id uint) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Summary(ctx context.Context, since time.Time) (*entity.DashboardSummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardSummary), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCacheRepository мок для CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCacheRepository) SetCategories(ctx context.Context, categories []string) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

func (m *MockCacheRepository) GetSummary(ctx context.Context) (*entity.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardSummary), args.Error(1)
}

func (m *MockCacheRepository) SetSummary(ctx context.Context, summary *entity.DashboardSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockCacheRepository) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для MessagePublisher (Kafka), запоминает отправленные сообщения
type MockMessagePublisher struct {
	mock.Mock
	mu       sync.Mutex
	Messages []infrastructure.Message
}

func (m *MockMessagePublisher) PublishMessages(ctx context.Context, messages ...infrastructure.Message) error {
	m.mu.Lock()
	m.Messages = append(m.Messages, messages...)
	m.mu.Unlock()

	args := m.Called(ctx, messages)
	return args.Error(0)
}

func (m *MockMessagePublisher) Sent() []infrastructure.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]infrastructure.Message(nil), m.Messages...)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
