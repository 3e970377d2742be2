package entity

import "time"

// Product представляет трендовый товар в каталоге
// Пара (name, category) - натуральный ключ, защищённый уникальным индексом
type Product struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name_category"`
	Category          string    `json:"category" gorm:"type:varchar(100);not null;uniqueIndex:idx_products_name_category;index:idx_products_category"`
	Subcategory       string    `json:"subcategory" gorm:"type:varchar(100)"`
	PriceRangeLow     float64   `json:"price_range_low" gorm:"type:decimal(10,2)"`
	PriceRangeHigh    float64   `json:"price_range_high" gorm:"type:decimal(10,2)"`
	TrendScore        int       `json:"trend_score" gorm:"not null;default:0;index"` // 0-100
	EngagementRate    int       `json:"engagement_rate" gorm:"not null;default:0"`
	SalesVelocity     int       `json:"sales_velocity" gorm:"not null;default:0"`
	SearchVolume      int       `json:"search_volume" gorm:"not null;default:0"`
	GeographicSpread  int       `json:"geographic_spread" gorm:"not null;default:0"`
	ImageURL          string    `json:"image_url" gorm:"type:varchar(500)"`
	Description       string    `json:"description" gorm:"type:text"`
	SourcePlatform    string    `json:"source_platform" gorm:"type:varchar(50)"`
	AliexpressURL     string    `json:"aliexpress_url" gorm:"type:varchar(500)"`
	CJDropshippingURL string    `json:"cjdropshipping_url" gorm:"column:cjdropshipping_url;type:varchar(500)"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	Trends            []Trend   `json:"trends,omitempty" gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Regions           []Region  `json:"regions,omitempty" gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Videos            []Video   `json:"videos,omitempty" gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Product) TableName() string {
	return "products"
}

// Trend - дневной снимок метрик товара, не более одного на дату
type Trend struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ProductID       uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_trends_product_date"`
	Date            time.Time `json:"date" gorm:"not null;uniqueIndex:idx_trends_product_date"` // Начало суток UTC
	EngagementValue int       `json:"engagement_value"`
	SalesValue      int       `json:"sales_value"`
	SearchValue     int       `json:"search_value"`
}

func (Trend) TableName() string {
	return "trends"
}

// Region - доля интереса к товару в одной стране
type Region struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ProductID  uint   `json:"product_id" gorm:"not null;index"`
	Country    string `json:"country" gorm:"type:varchar(100);not null"`
	Percentage int    `json:"percentage" gorm:"not null"`
}

func (Region) TableName() string {
	return "regions"
}

// Video - рекламное видео о товаре, сопоставляется по video_url
type Video struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProductID    uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_videos_product_url"`
	Title        string    `json:"title" gorm:"type:varchar(255)"`
	Platform     string    `json:"platform" gorm:"type:varchar(50)"`
	Views        int       `json:"views"`
	UploadDate   time.Time `json:"upload_date"`
	ThumbnailURL string    `json:"thumbnail_url" gorm:"type:varchar(500)"`
	VideoURL     string    `json:"video_url" gorm:"type:varchar(500);not null;uniqueIndex:idx_videos_product_url"`
}

func (Video) TableName() string {
	return "videos"
}

// TruncateDay приводит время к началу суток UTC (ключ даты для Trend)
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ProductPatch - изменения существующего товара, найденные при сверке
// Fields содержит колонки для UPDATE, Trends и Videos - только новые строки
type ProductPatch struct {
	Fields map[string]interface{}
	Trends []Trend
	Videos []Video
}

// Empty сообщает, что патч ничего не меняет
func (p *ProductPatch) Empty() bool {
	return p == nil || (len(p.Fields) == 0 && len(p.Trends) == 0 && len(p.Videos) == 0)
}

// ProductFilter - параметры выборки списка товаров
type ProductFilter struct {
	Category      string
	MinTrendScore int
	Region        string
	SortBy        string
	SortOrder     string
	Offset        int
	Limit         int
}

// DashboardSummary - агрегаты для главной страницы
type DashboardSummary struct {
	TotalProducts       int64   `json:"total_products"`
	TrendingProducts    int64   `json:"trending_products"`
	AvgTrendScore       float64 `json:"avg_trend_score"`
	MostPopularCategory *string `json:"most_popular_category"`
	NewProducts24h      int64   `json:"new_products_24h"`
}
