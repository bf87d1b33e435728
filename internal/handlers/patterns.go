package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/service"
)

// PatternsHandler serves cached metric correlations
type PatternsHandler struct {
	patterns service.PatternService
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(patterns service.PatternService) *PatternsHandler {
	return &PatternsHandler{patterns: patterns}
}

// GetPatterns returns the user's active patterns, recomputing first when stale
// GET /api/v1/patterns
func (h *PatternsHandler) GetPatterns(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recomputed := h.patterns.UpdateIfNeeded(c.Request.Context(), userID.(string))

	patterns, err := h.patterns.ActivePatterns(c.Request.Context(), userID.(string))
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to fetch patterns",
			logger.Err(err),
			logger.String("user_id", userID.(string)),
		)
		patterns = []models.DetectedPattern{}
	}
	if patterns == nil {
		patterns = []models.DetectedPattern{}
	}

	c.JSON(http.StatusOK, models.PatternsResponse{
		Patterns:   patterns,
		Recomputed: recomputed,
	})
}
