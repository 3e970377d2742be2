package service

import (
	"context"

	"trenddrop/trend-service/internal/app/trend/entity"
)

// ProgressFunc получает номер шага, общее число шагов и количество новых товаров
type ProgressFunc func(currentStep, totalSteps, totalFound int)

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, query *entity.ProductListQuery) (*entity.ProductListResponse, error)
	GetProduct(ctx context.Context, id uint) (*entity.ProductDetailResponse, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetDashboardSummary(ctx context.Context) (*entity.DashboardSummary, error)
	CountProducts(ctx context.Context) (int64, error)
}

// IngestionRunner выполняет один проход сбора до target товаров в каталоге
type IngestionRunner interface {
	Run(ctx context.Context, target int, progress ProgressFunc) (int, error)
}

type ScraperServiceInterface interface {
	Start(ctx context.Context, count int, force bool) (StartResult, error)
	Stop() error
	Running() bool
	Status() entity.Status
	Wait()
}

type SchedulerInterface interface {
	Activate() (bool, error)
	Deactivate() bool
	Active() bool
}
