package handler

import (
	"context"

	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCatalogService мок для CatalogServiceInterface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, query *entity.ProductListQuery) (*entity.ProductListResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductListResponse), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uint) (*entity.ProductDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetailResponse), args.Error(1)
}

func (m *MockCatalogService) GetCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogService) GetDashboardSummary(ctx context.Context) (*entity.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardSummary), args.Error(1)
}

func (m *MockCatalogService) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockScraperService мок для ScraperServiceInterface
type MockScraperService struct {
	mock.Mock
}

func (m *MockScraperService) Start(ctx context.Context, count int, force bool) (service.StartResult, error) {
	args := m.Called(ctx, count, force)
	return args.Get(0).(service.StartResult), args.Error(1)
}

func (m *MockScraperService) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockScraperService) Running() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockScraperService) Status() entity.Status {
	args := m.Called()
	return args.Get(0).(entity.Status)
}

func (m *MockScraperService) Wait() {
	m.Called()
}

// MockScheduler мок для SchedulerInterface
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Activate() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) Deactivate() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockScheduler) Active() bool {
	args := m.Called()
	return args.Bool(0)
}

type testDeps struct {
	catalog   *MockCatalogService
	scraper   *MockScraperService
	scheduler *MockScheduler
}

// newTestRouter собирает роутер без health, авторизации и лимита
func newTestRouter() (*gin.Engine, testDeps) {
	deps := testDeps{
		catalog:   new(MockCatalogService),
		scraper:   new(MockScraperService),
		scheduler: new(MockScheduler),
	}

	router := SetupRoutes(Router{
		Products: NewProductHandler(deps.catalog),
		Scraper:  NewScraperHandler(deps.scraper, deps.scheduler, deps.catalog),
	})
	return router, deps
}
