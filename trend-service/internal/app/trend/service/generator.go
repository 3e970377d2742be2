package service

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"trenddrop/trend-service/internal/app/trend/entity"
)

var categories = []string{
	"Electronics", "Home & Kitchen", "Fashion", "Beauty", "Toys & Games",
	"Sports & Outdoors", "Health & Wellness", "Pet Supplies", "Baby", "Jewelry",
}

var subcategories = map[string][]string{
	"Electronics":       {"Smartphone Accessories", "Smart Home", "Wearables", "Audio", "Gadgets"},
	"Home & Kitchen":    {"Kitchen Gadgets", "Home Decor", "Organization", "Bedding", "Bath"},
	"Fashion":           {"Accessories", "Clothing", "Footwear", "Bags", "Watches"},
	"Beauty":            {"Skincare", "Makeup", "Hair Care", "Fragrance", "Tools"},
	"Toys & Games":      {"Educational", "Puzzles", "Action Figures", "Board Games", "Outdoor"},
	"Sports & Outdoors": {"Fitness", "Camping", "Water Sports", "Team Sports", "Cycling"},
	"Health & Wellness": {"Supplements", "Personal Care", "Fitness Trackers", "Massage", "Aromatherapy"},
	"Pet Supplies":      {"Dog Accessories", "Cat Toys", "Pet Grooming", "Food & Treats", "Beds & Furniture"},
	"Baby":              {"Feeding", "Diapering", "Toys", "Clothing", "Travel Gear"},
	"Jewelry":           {"Necklaces", "Earrings", "Bracelets", "Rings", "Sets"},
}

var baseNames = map[string][]string{
	"Electronics":       {"Magnetic Phone Mount", "Smart LED Strip", "Foldable Wireless Charger", "Mini Projector", "Bluetooth Earbuds"},
	"Home & Kitchen":    {"Milk Frother", "Vegetable Chopper", "Silicone Baking Mats", "Digital Kitchen Scale", "Sous Vide Cooker"},
	"Fashion":           {"Minimalist Watch", "Crossbody Phone Bag", "Stackable Rings", "Cloud Slippers", "Bamboo Socks"},
	"Beauty":            {"Jade Face Roller", "Vitamin C Serum", "Hair Growth Oil", "Eyebrow Stamp", "Makeup Eraser Cloth"},
	"Toys & Games":      {"Magnetic Building Blocks", "Water Drawing Mat", "LED Drone", "Wooden Puzzle Set", "Slime Kit"},
	"Sports & Outdoors": {"Resistance Bands Set", "Foldable Water Bottle", "Yoga Wheel", "Jump Rope", "Hiking Socks"},
	"Health & Wellness": {"Sleep Mask", "Digital Body Scale", "Posture Corrector", "Acupressure Mat", "Essential Oil Diffuser"},
	"Pet Supplies":      {"Pet Hair Remover", "Slow Feeder Bowl", "Automatic Toy", "Grooming Glove", "Pet Water Fountain"},
	"Baby":              {"Silicone Teether", "Sound Machine", "Diaper Caddy", "Baby Food Maker", "Swaddle Blanket"},
	"Jewelry":           {"Layered Necklace", "Huggie Earrings", "Minimalist Bracelet", "Birthstone Ring", "Anklet"},
}

// editions расширяют пространство имён: 10 категорий * 5 товаров * (1 + len(editions))
var editions = []string{
	"Pro", "Mini", "Max", "Lite", "Plus", "Ultra", "XL", "Deluxe", "Classic", "Eco",
	"Smart", "Travel", "Premium", "Compact", "Kids", "2.0", "3.0", "Gen 2", "Gen 3", "Limited Edition",
}

var countries = []string{
	"United States", "United Kingdom", "Canada", "Australia", "Germany",
	"France", "Italy", "Spain", "Japan", "South Korea", "Brazil", "Mexico",
	"India", "Russia", "South Africa", "Netherlands", "Sweden", "Norway",
}

var platforms = []string{"TikTok", "Instagram", "YouTube", "Facebook", "Pinterest"}

var videoURLPrefixes = map[string]string{
	"TikTok":    "https://www.tiktok.com/",
	"Instagram": "https://www.instagram.com/p/",
	"YouTube":   "https://www.youtube.com/watch?v=",
	"Facebook":  "https://www.facebook.com/watch/?v=",
	"Pinterest": "https://www.pinterest.com/pin/",
}

var (
	videoAdjectives = []string{"Amazing", "Unbelievable", "Must-Have", "Trending", "Viral", "Best"}
	videoVerbs      = []string{"Unboxing", "Review", "Try-On", "Haul", "Test", "Demo"}
)

const (
	trendHistoryDays = 7
	videoIDAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator синтезирует кандидатов из фиксированных таблиц.
// Не потокобезопасен: *rand.Rand используется без блокировок.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd, now: time.Now}
}

// NextCombination выбирает пару (категория, платформа)
func (g *Generator) NextCombination() (string, string) {
	return categories[g.rnd.Intn(len(categories))], platforms[g.rnd.Intn(len(platforms))]
}

// Generate создаёт товар с 7 дневными трендами, 3-6 регионами (ровно 100%) и 0-3 видео
func (g *Generator) Generate(category, platform string) *entity.Product {
	name := g.productName(category)
	subcategory := g.pick(subcategories[category])

	priceLow := roundCents(g.uniform(5, 60))
	priceHigh := roundCents(priceLow * g.uniform(1.2, 2.5))

	product := &entity.Product{
		Name:             name,
		Category:         category,
		Subcategory:      subcategory,
		PriceRangeLow:    priceLow,
		PriceRangeHigh:   priceHigh,
		TrendScore:       g.between(40, 100),
		EngagementRate:   g.between(1, 100),
		SalesVelocity:    g.between(1, 100),
		SearchVolume:     g.between(1, 100),
		GeographicSpread: g.between(1, 100),
		ImageURL:         fmt.Sprintf("https://picsum.photos/id/%d/500/500", g.between(1, 1000)),
		SourcePlatform:   platform,
	}

	query := url.QueryEscape(name)
	product.AliexpressURL = "https://www.aliexpress.com/wholesale?SearchText=" + query
	product.CJDropshippingURL = "https://cjdropshipping.com/search?q=" + query
	product.Description = fmt.Sprintf(
		"Trending %s in the %s category. This %s product has been gaining popularity with a trend score of %d.",
		name, category, subcategory, product.TrendScore,
	)

	product.Trends = g.trends(product)
	product.Regions = g.regions()
	product.Videos = g.videos(name)

	return product
}

func (g *Generator) productName(category string) string {
	base := g.pick(baseNames[category])
	// 0 - базовое имя без издания
	if i := g.rnd.Intn(len(editions) + 1); i > 0 {
		return base + " " + editions[i-1]
	}
	return base
}

// trends строит историю за прошлые 7 дней с ростом к текущим метрикам
func (g *Generator) trends(p *entity.Product) []entity.Trend {
	today := entity.TruncateDay(g.now())
	out := make([]entity.Trend, 0, trendHistoryDays)

	for daysAgo := trendHistoryDays; daysAgo >= 1; daysAgo-- {
		dayFactor := float64(trendHistoryDays-daysAgo) / trendHistoryDays
		out = append(out, entity.Trend{
			Date:            today.AddDate(0, 0, -daysAgo),
			EngagementValue: g.rising(p.EngagementRate, dayFactor),
			SalesValue:      g.rising(p.SalesVelocity, dayFactor),
			SearchValue:     g.rising(p.SearchVolume, dayFactor),
		})
	}
	return out
}

func (g *Generator) rising(current int, dayFactor float64) int {
	base := int(float64(current) * 0.7)
	v := int(float64(base) + float64(current-base)*dayFactor*g.uniform(0.8, 1.2))
	if v < 1 {
		return 1
	}
	return v
}

// regions: основной рынок 30-60%, остальные не меньше 5%, последний получает остаток
func (g *Generator) regions() []entity.Region {
	n := g.between(3, 6)
	selected := g.rnd.Perm(len(countries))[:n]

	out := make([]entity.Region, 0, n)
	remaining := 100
	for i := 0; i < n-1; i++ {
		var pct int
		if i == 0 {
			pct = g.between(30, 60)
		} else {
			pct = g.between(5, remaining-(n-i-1)*5)
		}
		out = append(out, entity.Region{Country: countries[selected[i]], Percentage: pct})
		remaining -= pct
	}
	out = append(out, entity.Region{Country: countries[selected[n-1]], Percentage: remaining})

	return out
}

// videos: первое видео свежее и с большим числом просмотров
func (g *Generator) videos(name string) []entity.Video {
	n := g.rnd.Intn(4)
	out := make([]entity.Video, 0, n)

	for i := 0; i < n; i++ {
		platform := g.pick(platforms)

		views, daysAgo := g.between(1000, 100000), g.between(14, 60)
		if i == 0 {
			views, daysAgo = g.between(10000, 1000000), g.between(1, 14)
		}

		out = append(out, entity.Video{
			Title:        fmt.Sprintf("%s %s %s", g.pick(videoAdjectives), name, g.pick(videoVerbs)),
			Platform:     platform,
			Views:        views,
			UploadDate:   g.now().UTC().AddDate(0, 0, -daysAgo),
			ThumbnailURL: fmt.Sprintf("https://picsum.photos/id/%d/320/180", g.between(1, 1000)),
			VideoURL:     videoURLPrefixes[platform] + g.videoID(),
		})
	}
	return out
}

func (g *Generator) videoID() string {
	var b strings.Builder
	for i := 0; i < 11; i++ {
		b.WriteByte(videoIDAlphabet[g.rnd.Intn(len(videoIDAlphabet))])
	}
	return b.String()
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.Intn(len(values))]
}

// between возвращает целое из [min, max] включительно
func (g *Generator) between(min, max int) int {
	return min + g.rnd.Intn(max-min+1)
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rnd.Float64()*(max-min)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
