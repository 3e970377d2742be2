package service

import (
	"math"

	"trenddrop/trend-service/internal/app/trend/entity"
)

const (
	metricDriftThreshold = 0.05 // относительное изменение метрики
	priceDriftThreshold  = 0.5  // абсолютное изменение границы цены
)

// BuildPatch сравнивает найденный товар с кандидатом.
// Метрика обновляется при |old-new|/max(1,old) > 5%, границы цены - обе сразу,
// если любая сдвинулась больше чем на 0.5. Без изменений полей возвращается nil,
// и тогда новые тренды и видео тоже не добавляются.
func BuildPatch(existing, candidate *entity.Product) *entity.ProductPatch {
	fields := make(map[string]interface{})

	driftMetrics := []struct {
		column   string
		prev, next int
	}{
		{"trend_score", existing.TrendScore, candidate.TrendScore},
		{"engagement_rate", existing.EngagementRate, candidate.EngagementRate},
		{"sales_velocity", existing.SalesVelocity, candidate.SalesVelocity},
		{"search_volume", existing.SearchVolume, candidate.SearchVolume},
		{"geographic_spread", existing.GeographicSpread, candidate.GeographicSpread},
	}
	for _, m := range driftMetrics {
		if relativeDrift(m.prev, m.next) > metricDriftThreshold {
			fields[m.column] = m.next
		}
	}

	if math.Abs(existing.PriceRangeLow-candidate.PriceRangeLow) > priceDriftThreshold ||
		math.Abs(existing.PriceRangeHigh-candidate.PriceRangeHigh) > priceDriftThreshold {
		fields["price_range_low"] = candidate.PriceRangeLow
		fields["price_range_high"] = candidate.PriceRangeHigh
	}

	if len(fields) == 0 {
		return nil
	}

	patch := &entity.ProductPatch{Fields: fields}

	knownDates := make(map[int64]struct{}, len(existing.Trends))
	for _, t := range existing.Trends {
		knownDates[entity.TruncateDay(t.Date).Unix()] = struct{}{}
	}
	for _, t := range candidate.Trends {
		day := entity.TruncateDay(t.Date)
		if _, ok := knownDates[day.Unix()]; ok {
			continue
		}
		knownDates[day.Unix()] = struct{}{}
		t.ID = 0
		t.Date = day
		patch.Trends = append(patch.Trends, t)
	}

	knownURLs := make(map[string]struct{}, len(existing.Videos))
	for _, v := range existing.Videos {
		knownURLs[v.VideoURL] = struct{}{}
	}
	for _, v := range candidate.Videos {
		if _, ok := knownURLs[v.VideoURL]; ok {
			continue
		}
		knownURLs[v.VideoURL] = struct{}{}
		v.ID = 0
		patch.Videos = append(patch.Videos, v)
	}

	return patch
}

func relativeDrift(prev, next int) float64 {
	return math.Abs(float64(prev-next)) / math.Max(1, float64(prev))
}
