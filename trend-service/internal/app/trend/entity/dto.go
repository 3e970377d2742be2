package entity

import "time"

// ProductListQuery - параметры GET /api/products
type ProductListQuery struct {
	Page       int    `form:"page,default=1" validate:"gte=1"`
	Limit      int    `form:"limit,default=10" validate:"gte=1,lte=100"`
	Category   string `form:"category"`
	TrendScore int    `form:"trend_score" validate:"gte=0"`
	Region     string `form:"region"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
}

type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type ProductResponse struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Subcategory      string     `json:"subcategory"`
	PriceRange       PriceRange `json:"price_range"`
	TrendScore       int        `json:"trend_score"`
	EngagementRate   int        `json:"engagement_rate"`
	SalesVelocity    int        `json:"sales_velocity"`
	SearchVolume     int        `json:"search_volume"`
	GeographicSpread int        `json:"geographic_spread"`
	ImageURL         string     `json:"image_url"`
	SourcePlatform   string     `json:"source_platform"`
	CreatedAt        string     `json:"created_at"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Pages int               `json:"pages"`
}

type WholesalerLinks struct {
	Aliexpress     string `json:"aliexpress"`
	CJDropshipping string `json:"cjdropshipping"`
}

type TrendResponse struct {
	Date            string `json:"date"`
	EngagementValue int    `json:"engagement_value"`
	SalesValue      int    `json:"sales_value"`
	SearchValue     int    `json:"search_value"`
}

type RegionResponse struct {
	Country    string `json:"country"`
	Percentage int    `json:"percentage"`
}

type VideoResponse struct {
	Title        string `json:"title"`
	Platform     string `json:"platform"`
	Views        int    `json:"views"`
	UploadDate   string `json:"upload_date"`
	ThumbnailURL string `json:"thumbnail_url"`
	VideoURL     string `json:"video_url"`
}

type ProductDetailResponse struct {
	ProductResponse
	Description     string           `json:"description"`
	WholesalerLinks WholesalerLinks  `json:"wholesaler_links"`
	Trends          []TrendResponse  `json:"trends"`
	Regions         []RegionResponse `json:"regions"`
	Videos          []VideoResponse  `json:"videos"`
}

// StartScraperRequest - параметры запуска прохода (query или JSON)
type StartScraperRequest struct {
	Count *int `json:"count" form:"count" validate:"omitempty,gte=1"`
	Force bool `json:"force" form:"force"`
}

type StartScraperResponse struct {
	Status     string `json:"status"` // success, queued, error
	Message    string `json:"message"`
	Running    bool   `json:"running"`
	Progress   int    `json:"progress"`
	TotalFound int    `json:"total_found"`
}

type StatusResponse struct {
	Status
	TotalProducts int64 `json:"total_products"`
}

type ScheduleResponse struct {
	Status  string     `json:"status"` // success, info
	Message string     `json:"message"`
	Active  bool       `json:"active"`
	NextRun *time.Time `json:"next_run"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FormatTime возвращает время в ISO 8601 или пустую строку для нулевого значения
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		Subcategory:      p.Subcategory,
		PriceRange:       PriceRange{Low: p.PriceRangeLow, High: p.PriceRangeHigh},
		TrendScore:       p.TrendScore,
		EngagementRate:   p.EngagementRate,
		SalesVelocity:    p.SalesVelocity,
		SearchVolume:     p.SearchVolume,
		GeographicSpread: p.GeographicSpread,
		ImageURL:         p.ImageURL,
		SourcePlatform:   p.SourcePlatform,
		CreatedAt:        FormatTime(p.CreatedAt),
	}
}
