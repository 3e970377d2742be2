package repository

import (
	"context"
	"errors"
	"time"

	"trenddrop/trend-service/internal/app/trend/entity"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateKey    = errors.New("duplicate key")
)

// UpsertOutcome - результат сверки кандидата с каталогом
type UpsertOutcome int

const (
	OutcomeUnchanged UpsertOutcome = iota // совпадение без значимых изменений
	OutcomeInserted                       // новый товар
	OutcomeUpdated                        // совпадение с дрейфом метрик
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

type UpsertResult struct {
	Outcome   UpsertOutcome
	ProductID uint
}

// MergeFunc получает заблокированную запись с её трендами и видео
// и возвращает изменения; nil или пустой патч означает "не трогать"
type MergeFunc func(existing *entity.Product) *entity.ProductPatch

type ProductRepository interface {
	Upsert(ctx context.Context, candidate *entity.Product, merge MergeFunc) (UpsertResult, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error)
	GetWithDetails(ctx context.Context, id uint) (*entity.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Summary(ctx context.Context, since time.Time) (*entity.DashboardSummary, error)
	Delete(ctx context.Context, id uint) error
}

// CacheRepository хранит агрегаты каталога в Redis
// Get* возвращают nil без ошибки при промахе
type CacheRepository interface {
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
	GetSummary(ctx context.Context) (*entity.DashboardSummary, error)
	SetSummary(ctx context.Context, summary *entity.DashboardSummary) error
	Invalidate(ctx context.Context) error
}
