package handler

import (
	"errors"
	"net/http"
	"strconv"

	"trenddrop/pkg/logger"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ScraperHandler управляет проходами сбора и планировщиком
type ScraperHandler struct {
	scraper   service.ScraperServiceInterface
	scheduler service.SchedulerInterface
	catalog   service.CatalogServiceInterface
	validator *validator.Validate
}

func NewScraperHandler(
	scraper service.ScraperServiceInterface,
	scheduler service.SchedulerInterface,
	catalog service.CatalogServiceInterface,
) *ScraperHandler {
	return &ScraperHandler{
		scraper:   scraper,
		scheduler: scheduler,
		catalog:   catalog,
		validator: validator.New(),
	}
}

// Start обрабатывает POST /api/scraper/start?count=&force=
// Параметры принимаются из query или JSON тела
func (h *ScraperHandler) Start(c *gin.Context) {
	var req entity.StartScraperRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if c.Request.ContentLength > 0 && c.ContentType() == binding.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	count := 0
	if req.Count != nil {
		count = *req.Count
	}

	result, err := h.scraper.Start(c.Request.Context(), count, req.Force)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, entity.StartScraperResponse{
				Status:     "error",
				Message:    "Scraper is already running",
				Running:    true,
				Progress:   result.State.Progress,
				TotalFound: result.State.TotalFound,
			})
			return
		}
		logger.Error().Err(err).Msg("Failed to start scraper")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scraper"})
		return
	}

	status := http.StatusOK
	if result.Status == service.StartStatusQueued {
		status = http.StatusAccepted
	}

	c.JSON(status, entity.StartScraperResponse{
		Status:     result.Status,
		Message:    result.Message,
		Running:    result.State.Running,
		Progress:   result.State.Progress,
		TotalFound: result.State.TotalFound,
	})
}

// Status обрабатывает GET /api/scraper/status
func (h *ScraperHandler) Status(c *gin.Context) {
	total, err := h.catalog.CountProducts(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to count products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get scraper status"})
		return
	}

	c.JSON(http.StatusOK, entity.StatusResponse{
		Status:        h.scraper.Status(),
		TotalProducts: total,
	})
}

// Stop - остановка прохода не реализована
func (h *ScraperHandler) Stop(c *gin.Context) {
	err := h.scraper.Stop()
	c.JSON(http.StatusNotImplemented, entity.ErrorResponse{
		Status:  "error",
		Message: "Stopping scraper jobs not implemented yet",
	})
	logger.Info().AnErr("reason", err).Msg("Stop requested")
}

// Schedule обрабатывает POST /api/scraper/schedule?active=<bool>
func (h *ScraperHandler) Schedule(c *gin.Context) {
	active := true
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value for active"})
			return
		}
		active = v
	}

	resp := entity.ScheduleResponse{Status: "success"}

	if active {
		changed, err := h.scheduler.Activate()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to activate scheduler")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate scheduler"})
			return
		}
		if changed {
			resp.Message = "Scheduler activated, scraper will run on schedule"
		} else {
			resp.Status = "info"
			resp.Message = "Scheduler is already active"
		}
	} else {
		h.scheduler.Deactivate()
		resp.Message = "Scheduler deactivated"
	}

	resp.Active = h.scheduler.Active()
	resp.NextRun = h.scraper.Status().NextRun

	c.JSON(http.StatusOK, resp)
}
