package handler

import (
	"net/http"

	"trenddrop/pkg/logger"
	"trenddrop/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router объединяет обработчики и middleware сервиса
type Router struct {
	Products    *ProductHandler
	Scraper     *ScraperHandler
	Health      *HealthCheckHandler // nil - health маршруты не регистрируются (тесты)
	Auth        *AuthMiddleware
	RateLimiter *RateLimiter
}

// SetupRoutes настраивает маршруты Trend Service; API смонтирован под /api
func SetupRoutes(r Router) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("trend-service"))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"X-Request-ID"},
		MaxAge:          300,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to TrendDrop API",
			"service": "trend-service",
		})
	})

	if r.Health != nil {
		router.GET("/health", r.Health.HealthCheck)
		router.GET("/health/readiness", r.Health.Readiness)
		router.GET("/health/liveness", r.Health.Liveness)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	products := api.Group("/products")
	{
		products.GET("", r.Products.ListProducts)
		products.GET("/", r.Products.ListProducts)
		products.GET("/categories", r.Products.GetCategories)
		products.GET("/dashboard-summary", r.Products.GetDashboardSummary)
		products.GET("/:id", r.Products.GetProduct)
	}

	scraper := api.Group("/scraper")
	{
		scraper.GET("/status", r.Scraper.Status)

		// Управляющие маршруты: лимит по IP и роль admin при заданном JWT_SECRET
		control := scraper.Group("")
		if r.RateLimiter != nil {
			control.Use(r.RateLimiter.Middleware())
		}
		if r.Auth != nil {
			control.Use(r.Auth.Authenticate(), r.Auth.RequireRole(AdminRole))
		}
		control.POST("/start", r.Scraper.Start)
		control.POST("/stop", r.Scraper.Stop)
		control.POST("/schedule", r.Scraper.Schedule)
	}

	return router
}
