package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registry-api/internal/middleware"
	"github.com/noah-isme/course-registry-api/internal/service"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
	"github.com/noah-isme/course-registry-api/pkg/response"
)

// StatisticsHandler exposes registry-wide counters.
type StatisticsHandler struct {
	statistics *service.StatisticsService
}

// NewStatisticsHandler constructs the statistics handler.
func NewStatisticsHandler(statistics *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

// Get godoc
// @Summary Registry statistics
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics [get]
func (h *StatisticsHandler) Get(c *gin.Context) {
	if h.statistics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.statistics.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// System godoc
// @Summary Process instrumentation snapshot
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics/system [get]
func (h *StatisticsHandler) System(c *gin.Context) {
	if h.statistics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.statistics.System(), nil)
}
