package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/service"
)

// BaselinesHandler serves cached per-metric rolling statistics
type BaselinesHandler struct {
	baselines service.BaselineService
}

// NewBaselinesHandler creates a new baselines handler
func NewBaselinesHandler(baselines service.BaselineService) *BaselinesHandler {
	return &BaselinesHandler{baselines: baselines}
}

// GetBaselines returns the user's baselines, recomputing first when stale
// GET /api/v1/baselines
func (h *BaselinesHandler) GetBaselines(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recomputed := h.baselines.UpdateIfNeeded(c.Request.Context(), userID.(string))

	baselines, err := h.baselines.Baselines(c.Request.Context(), userID.(string))
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to fetch baselines",
			logger.Err(err),
			logger.String("user_id", userID.(string)),
		)
		baselines = []models.MetricBaseline{}
	}
	if baselines == nil {
		baselines = []models.MetricBaseline{}
	}

	c.JSON(http.StatusOK, gin.H{
		"baselines":  baselines,
		"recomputed": recomputed,
	})
}
