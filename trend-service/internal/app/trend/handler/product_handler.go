package handler

import (
	"errors"
	"net/http"
	"strconv"

	"trenddrop/pkg/logger"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProductHandler обрабатывает запросы к каталогу
type ProductHandler struct {
	catalog   service.CatalogServiceInterface
	validator *validator.Validate
}

func NewProductHandler(catalog service.CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		validator: validator.New(),
	}
}

// ListProducts обрабатывает GET /api/products
// page >= 1, 1 <= limit <= 100; неизвестный sort_by заменяется на trend_score
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query entity.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if err := h.validator.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	resp, err := h.catalog.ListProducts(c.Request.Context(), &query)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProduct обрабатывает GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		logger.Error().Err(err).Uint64("product_id", id).Msg("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *ProductHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.catalog.GetDashboardSummary(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get dashboard summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dashboard summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return "Invalid value for " + fe.Field() + ": must satisfy " + fe.Tag() + "=" + fe.Param()
	}
	return "Validation failed"
}
