package entity

import "time"

const (
	EventProductDiscovered   = "PRODUCT_DISCOVERED"
	EventProductTrendUpdated = "PRODUCT_TREND_UPDATED"
)

// ProductEvent публикуется в Kafka при добавлении или обновлении товара
type ProductEvent struct {
	EventType  string    `json:"event_type"`
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	TrendScore int       `json:"trend_score"`
	PassID     string    `json:"pass_id"`
	Timestamp  time.Time `json:"timestamp"`
}
