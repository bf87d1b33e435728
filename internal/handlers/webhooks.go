package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/service"
)

// WebhooksHandler receives ingestion notifications from the wearable
// pipeline and triggers proactive insight generation
type WebhooksHandler struct {
	proactive service.ProactiveInsightService
}

// NewWebhooksHandler creates a new webhooks handler
func NewWebhooksHandler(proactive service.ProactiveInsightService) *WebhooksHandler {
	return &WebhooksHandler{proactive: proactive}
}

type healthDataWebhook struct {
	UserID   string                    `json:"user_id" binding:"required"`
	DataType string                    `json:"data_type" binding:"required"`
	Payload  *models.HealthDataPayload `json:"payload" binding:"required"`
}

// IngestHealthData handles a new-data notification. The response carries the
// stored insight, or null when none was warranted; the pipeline treats both
// as success so delivery is never retried over analytics outcomes.
// POST /api/v1/webhooks/health-data
func (h *WebhooksHandler) IngestHealthData(c *gin.Context) {
	var req healthDataWebhook
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, data_type, and payload are required"})
		return
	}

	insight := h.proactive.ProcessNewHealthData(c.Request.Context(), req.UserID, req.DataType, req.Payload)

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}
