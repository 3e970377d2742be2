package service

import (
	"testing"
	"time"

	"trenddrop/trend-service/internal/app/trend/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseProduct() *entity.Product {
	day := entity.TruncateDay(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	return &entity.Product{
		Name:             "Mini Projector",
		Category:         "Electronics",
		PriceRangeLow:    20.00,
		PriceRangeHigh:   40.00,
		TrendScore:       50,
		EngagementRate:   40,
		SalesVelocity:    30,
		SearchVolume:     20,
		GeographicSpread: 10,
		Trends: []entity.Trend{
			{Date: day.AddDate(0, 0, -2), EngagementValue: 10},
			{Date: day.AddDate(0, 0, -1), EngagementValue: 12},
		},
		Videos: []entity.Video{
			{VideoURL: "https://www.youtube.com/watch?v=aaaaaaaaaaa", Views: 100},
		},
	}
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Trends = append([]entity.Trend(nil), p.Trends...)
	c.Videos = append([]entity.Video(nil), p.Videos...)
	return &c
}

// ===================== BuildPatch Tests =====================

func TestBuildPatch_IdenticalCandidate_NoChanges(t *testing.T) {
	existing := baseProduct()
	candidate := copyProduct(existing)

	patch := BuildPatch(existing, candidate)

	assert.Nil(t, patch)
	assert.True(t, patch.Empty())
}

func TestBuildPatch_SmallDrift_Ignored(t *testing.T) {
	existing := baseProduct()
	candidate := copyProduct(existing)
	candidate.TrendScore = 52           // 4%
	candidate.PriceRangeLow = 20.40     // 0.4
	candidate.Videos[0].VideoURL = "x" // новые видео без дрейфа полей не добавляются

	assert.Nil(t, BuildPatch(existing, candidate))
}

func TestBuildPatch_TrendScoreDrift_Updated(t *testing.T) {
	existing := baseProduct()
	candidate := copyProduct(existing)
	candidate.TrendScore = 60

	patch := BuildPatch(existing, candidate)

	require.NotNil(t, patch)
	assert.Equal(t, map[string]interface{}{"trend_score": 60}, patch.Fields)
}

func TestBuildPatch_ZeroBaseline_UsesOneAsDenominator(t *testing.T) {
	existing := baseProduct()
	existing.GeographicSpread = 0
	candidate := copyProduct(existing)
	candidate.GeographicSpread = 1

	patch := BuildPatch(existing, candidate)

	require.NotNil(t, patch)
	assert.Equal(t, 1, patch.Fields["geographic_spread"])
}

func TestBuildPatch_PriceDrift_UpdatesBothBounds(t *testing.T) {
	existing := baseProduct()
	candidate := copyProduct(existing)
	candidate.PriceRangeHigh = 40.60

	patch := BuildPatch(existing, candidate)

	require.NotNil(t, patch)
	assert.Equal(t, 20.00, patch.Fields["price_range_low"])
	assert.Equal(t, 40.60, patch.Fields["price_range_high"])
	assert.Len(t, patch.Fields, 2)
}

func TestBuildPatch_Dirty_AddsOnlyNewTrendsAndVideos(t *testing.T) {
	existing := baseProduct()
	candidate := copyProduct(existing)
	candidate.SalesVelocity = 90

	today := existing.Trends[1].Date.AddDate(0, 0, 1)
	candidate.Trends = append(candidate.Trends, entity.Trend{Date: today.Add(5 * time.Hour), EngagementValue: 30})
	candidate.Videos = append(candidate.Videos, entity.Video{VideoURL: "https://www.tiktok.com/bbbbbbbbbbb"})

	patch := BuildPatch(existing, candidate)

	require.NotNil(t, patch)
	assert.Equal(t, 90, patch.Fields["sales_velocity"])

	require.Len(t, patch.Trends, 1)
	assert.Equal(t, today, patch.Trends[0].Date)

	require.Len(t, patch.Videos, 1)
	assert.Equal(t, "https://www.tiktok.com/bbbbbbbbbbb", patch.Videos[0].VideoURL)
}

func TestRelativeDrift(t *testing.T) {
	tests := []struct {
		prev, next int
		want       float64
	}{
		{50, 60, 0.2},
		{50, 50, 0},
		{0, 3, 3},
		{100, 95, 0.05},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, relativeDrift(tt.prev, tt.next), 1e-9)
	}
}
