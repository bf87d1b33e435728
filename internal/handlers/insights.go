package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/service"
)

const defaultMultiInsightLimit = 3

// InsightsHandler handles insight-related HTTP requests
type InsightsHandler struct {
	rules     service.InsightRuleService
	contexts  service.InsightContextService
	proactive service.ProactiveInsightService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(
	rules service.InsightRuleService,
	contexts service.InsightContextService,
	proactive service.ProactiveInsightService,
) *InsightsHandler {
	return &InsightsHandler{
		rules:     rules,
		contexts:  contexts,
		proactive: proactive,
	}
}

// GetDailyInsight returns the single best insight for the home screen
// GET /api/v1/insights/daily
func (h *InsightsHandler) GetDailyInsight(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	rctx := h.contexts.BuildInsightContext(c.Request.Context(), userID.(string))
	insight := h.rules.GenerateDailyInsight(rctx)

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}

// GetDailyInsights returns the top-N insights, unique by metric
// GET /api/v1/insights/daily/all?limit=3
func (h *InsightsHandler) GetDailyInsights(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit := defaultMultiInsightLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	rctx := h.contexts.BuildInsightContext(c.Request.Context(), userID.(string))
	insights := h.rules.GenerateMultipleInsights(rctx, limit)

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// GetProactiveInsights returns the user's unread proactive insights
// GET /api/v1/insights/proactive
func (h *InsightsHandler) GetProactiveInsights(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	insights, err := h.proactive.UnreadInsights(c.Request.Context(), userID.(string))
	if err != nil {
		// The feed must always render; an empty list beats an error page
		logger.Ctx(c.Request.Context()).Error("failed to list proactive insights",
			logger.Err(err),
			logger.String("user_id", userID.(string)),
		)
		insights = []models.ProactiveInsight{}
	}
	if insights == nil {
		insights = []models.ProactiveInsight{}
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// MarkProactiveInsightRead dismisses one proactive insight
// POST /api/v1/insights/proactive/:id/read
func (h *InsightsHandler) MarkProactiveInsightRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	insightID := c.Param("id")
	if insightID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insight id is required"})
		return
	}

	if err := h.proactive.MarkInsightRead(c.Request.Context(), userID.(string), insightID); err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to mark insight read",
			logger.Err(err),
			logger.String("user_id", userID.(string)),
			logger.String("insight_id", insightID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark insight read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
