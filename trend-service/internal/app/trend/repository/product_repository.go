package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const serviceName = "trend-service"

// TrendingScoreThreshold - с этого значения товар считается "в тренде"
const TrendingScoreThreshold = 80

// sortColumns - разрешённые поля сортировки; всё остальное сортируется по trend_score
var sortColumns = map[string]string{
	"trend_score":     "trend_score",
	"created_at":      "created_at",
	"name":            "name",
	"category":        "category",
	"engagement_rate": "engagement_rate",
	"sales_velocity":  "sales_velocity",
	"search_volume":   "search_volume",
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Upsert сверяет кандидата с каталогом по (name, category) в одной транзакции.
// Существующая строка блокируется SELECT ... FOR UPDATE; вставка идёт через
// ON CONFLICT DO NOTHING, и если конкурент успел раньше, его строка перечитывается
// и сверяется как совпадение.
func (r *productRepository) Upsert(ctx context.Context, candidate *entity.Product, merge MergeFunc) (UpsertResult, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpsert, "products")
	defer timer.ObserveDuration()

	var result UpsertResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockByNaturalKey(tx, candidate.Name, candidate.Category)
		if err != nil {
			return err
		}

		if existing == nil {
			inserted, err := insertProduct(tx, candidate)
			if err != nil {
				return err
			}
			if inserted {
				result = UpsertResult{Outcome: OutcomeInserted, ProductID: candidate.ID}
				return nil
			}

			existing, err = lockByNaturalKey(tx, candidate.Name, candidate.Category)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("product %q/%q vanished after conflict", candidate.Name, candidate.Category)
			}
		}

		result.ProductID = existing.ID

		patch := merge(existing)
		if patch.Empty() {
			result.Outcome = OutcomeUnchanged
			return nil
		}

		if err := applyPatch(tx, existing.ID, patch); err != nil {
			return err
		}
		result.Outcome = OutcomeUpdated
		return nil
	})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpsert)
		return UpsertResult{}, err
	}

	return result, nil
}

// lockByNaturalKey возвращает заблокированный товар вместе с трендами и видео или nil
func lockByNaturalKey(tx *gorm.DB, name, category string) (*entity.Product, error) {
	var product entity.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ? AND category = ?", name, category).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	if err := tx.Where("product_id = ?", product.ID).Find(&product.Trends).Error; err != nil {
		return nil, fmt.Errorf("failed to load trends: %w", err)
	}
	if err := tx.Where("product_id = ?", product.ID).Find(&product.Videos).Error; err != nil {
		return nil, fmt.Errorf("failed to load videos: %w", err)
	}

	return &product, nil
}

// insertProduct вставляет товар и дочерние строки; false - строку уже вставил конкурент
func insertProduct(tx *gorm.DB, candidate *entity.Product) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "category"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(candidate)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert product: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	for i := range candidate.Trends {
		candidate.Trends[i].ProductID = candidate.ID
	}
	for i := range candidate.Regions {
		candidate.Regions[i].ProductID = candidate.ID
	}
	for i := range candidate.Videos {
		candidate.Videos[i].ProductID = candidate.ID
	}

	if len(candidate.Trends) > 0 {
		if err := tx.Create(&candidate.Trends).Error; err != nil {
			return false, fmt.Errorf("failed to insert trends: %w", translateError(err))
		}
	}
	if len(candidate.Regions) > 0 {
		if err := tx.Create(&candidate.Regions).Error; err != nil {
			return false, fmt.Errorf("failed to insert regions: %w", translateError(err))
		}
	}
	if len(candidate.Videos) > 0 {
		if err := tx.Create(&candidate.Videos).Error; err != nil {
			return false, fmt.Errorf("failed to insert videos: %w", translateError(err))
		}
	}

	return true, nil
}

// applyPatch обновляет поля товара и добавляет только новые тренды и видео.
// Регионы при обновлении не сверяются.
func applyPatch(tx *gorm.DB, productID uint, patch *entity.ProductPatch) error {
	if len(patch.Fields) > 0 {
		res := tx.Model(&entity.Product{}).Where("id = ?", productID).Updates(patch.Fields)
		if res.Error != nil {
			return fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
	}

	if len(patch.Trends) > 0 {
		for i := range patch.Trends {
			patch.Trends[i].ProductID = productID
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&patch.Trends).Error; err != nil {
			return fmt.Errorf("failed to insert trends: %w", err)
		}
	}

	if len(patch.Videos) > 0 {
		for i := range patch.Videos {
			patch.Videos[i].ProductID = productID
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&patch.Videos).Error; err != nil {
			return fmt.Errorf("failed to insert videos: %w", err)
		}
	}

	return nil
}

// List возвращает страницу товаров и общее количество по фильтру
func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Model(&entity.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinTrendScore > 0 {
		query = query.Where("trend_score >= ?", filter.MinTrendScore)
	}
	if filter.Region != "" {
		// EXISTS вместо JOIN, чтобы товар с несколькими подходящими регионами не дублировался
		query = query.Where(
			"EXISTS (SELECT 1 FROM regions WHERE regions.product_id = products.id AND regions.country ILIKE ?)",
			"%"+escapeLike(filter.Region)+"%",
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []entity.Product
	err := query.
		Order(OrderClause(filter.SortBy, filter.SortOrder)).
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// OrderClause строит ORDER BY только из разрешённых колонок
func OrderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "trend_score"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return column + " " + direction
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetWithDetails возвращает товар с трендами (по дате), регионами (по доле) и видео (по просмотрам)
func (r *productRepository) GetWithDetails(ctx context.Context, id uint) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Trends", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("Regions", func(db *gorm.DB) *gorm.DB { return db.Order("percentage DESC") }).
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order("views DESC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *productRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// CountSince считает товары, добавленные не раньше since
func (r *productRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count new products: %w", err)
	}
	return count, nil
}

// Summary считает агрегаты для дашборда; since - граница "новых" товаров
func (r *productRepository) Summary(ctx context.Context, since time.Time) (*entity.DashboardSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &entity.DashboardSummary{}

	if err := db.Model(&entity.Product{}).Count(&summary.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if err := db.Model(&entity.Product{}).
		Where("trend_score >= ?", TrendingScoreThreshold).
		Count(&summary.TrendingProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count trending products: %w", err)
	}

	var avg float64
	if err := db.Model(&entity.Product{}).
		Select("COALESCE(AVG(trend_score), 0)").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to get average trend score: %w", err)
	}
	summary.AvgTrendScore = avg

	var top struct {
		Category string
		Total    int64
	}
	res := db.Model(&entity.Product{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Order("total DESC, category ASC").
		Limit(1).
		Scan(&top)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get most popular category: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		summary.MostPopularCategory = &top.Category
	}

	newProducts, err := r.CountSince(ctx, since)
	if err != nil {
		return nil, err
	}
	summary.NewProducts24h = newProducts

	return summary, nil
}

// Delete удаляет товар; тренды, регионы и видео удаляются через CASCADE
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// translateError превращает нарушение уникальности Postgres в ErrDuplicateKey
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}
