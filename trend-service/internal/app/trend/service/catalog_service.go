package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"trenddrop/pkg/logger"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/repository"
)

const newProductsWindow = 24 * time.Hour

// CatalogService - чтение каталога: список, карточка товара и агрегаты
// Категории и сводка кешируются в Redis (cache-aside)
type CatalogService struct {
	products repository.ProductRepository
	cache    repository.CacheRepository
	now      func() time.Time
}

func NewCatalogService(products repository.ProductRepository, cache repository.CacheRepository) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    cache,
		now:      time.Now,
	}
}

// ListProducts возвращает страницу товаров; pages = ceil(total/limit)
func (s *CatalogService) ListProducts(ctx context.Context, query *entity.ProductListQuery) (*entity.ProductListResponse, error) {
	filter := entity.ProductFilter{
		Category:      query.Category,
		MinTrendScore: query.TrendScore,
		Region:        query.Region,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
		Offset:        (query.Page - 1) * query.Limit,
		Limit:         query.Limit,
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]entity.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, entity.ToProductResponse(&products[i]))
	}

	return &entity.ProductListResponse{
		Items: items,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
		Pages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*entity.ProductDetailResponse, error) {
	product, err := s.products.GetWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	resp := &entity.ProductDetailResponse{
		ProductResponse: entity.ToProductResponse(product),
		Description:     product.Description,
		WholesalerLinks: entity.WholesalerLinks{
			Aliexpress:     product.AliexpressURL,
			CJDropshipping: product.CJDropshippingURL,
		},
		Trends:  make([]entity.TrendResponse, 0, len(product.Trends)),
		Regions: make([]entity.RegionResponse, 0, len(product.Regions)),
		Videos:  make([]entity.VideoResponse, 0, len(product.Videos)),
	}

	for _, t := range product.Trends {
		resp.Trends = append(resp.Trends, entity.TrendResponse{
			Date:            entity.FormatTime(t.Date),
			EngagementValue: t.EngagementValue,
			SalesValue:      t.SalesValue,
			SearchValue:     t.SearchValue,
		})
	}
	for _, r := range product.Regions {
		resp.Regions = append(resp.Regions, entity.RegionResponse{
			Country:    r.Country,
			Percentage: r.Percentage,
		})
	}
	for _, v := range product.Videos {
		resp.Videos = append(resp.Videos, entity.VideoResponse{
			Title:        v.Title,
			Platform:     v.Platform,
			Views:        v.Views,
			UploadDate:   entity.FormatTime(v.UploadDate),
			ThumbnailURL: v.ThumbnailURL,
			VideoURL:     v.VideoURL,
		})
	}

	return resp, nil
}

func (s *CatalogService) GetCategories(ctx context.Context) ([]string, error) {
	cached, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories from cache")
	} else if cached != nil {
		return cached, nil
	}

	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}

	if err := s.cache.SetCategories(ctx, categories); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

func (s *CatalogService) GetDashboardSummary(ctx context.Context) (*entity.DashboardSummary, error) {
	cached, err := s.cache.GetSummary(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read dashboard summary from cache")
	} else if cached != nil {
		// Окно "за 24 часа" скользит, поэтому счётчик не берём из кэша
		newProducts, err := s.products.CountSince(ctx, s.now().Add(-newProductsWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to get dashboard summary: %w", err)
		}
		cached.NewProducts24h = newProducts
		return cached, nil
	}

	summary, err := s.products.Summary(ctx, s.now().Add(-newProductsWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard summary: %w", err)
	}
	summary.AvgTrendScore = math.Round(summary.AvgTrendScore*10) / 10

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache dashboard summary")
	}

	return summary, nil
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
