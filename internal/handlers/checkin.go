package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/service"
)

// CheckInHandler handles check-in prompt requests
type CheckInHandler struct {
	checkins service.CheckInService
	contexts service.InsightContextService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkins service.CheckInService, contexts service.InsightContextService) *CheckInHandler {
	return &CheckInHandler{
		checkins: checkins,
		contexts: contexts,
	}
}

// GetCheckInContext returns the most relevant check-in prompt for right now.
// The client passes its last check-in time since the chat layer owns that
// history.
// GET /api/v1/checkin/context?last_check_in=2026-08-30T09:00:00Z
func (h *CheckInHandler) GetCheckInContext(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var lastCheckIn *time.Time
	if raw := c.Query("last_check_in"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_check_in format, expected RFC3339"})
			return
		}
		lastCheckIn = &parsed
	}

	input := h.contexts.BuildCheckInInput(c.Request.Context(), userID.(string), lastCheckIn)
	checkIn := h.checkins.GenerateCheckInContext(input)

	c.JSON(http.StatusOK, checkIn)
}

// AcknowledgeCheckIn returns a short reply for a submitted check-in answer
// POST /api/v1/checkin/acknowledge
func (h *CheckInHandler) AcknowledgeCheckIn(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		ContextType string `json:"context_type" binding:"required"`
		Answer      string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "context_type and answer are required"})
		return
	}

	reply := h.checkins.AcknowledgementReply(req.ContextType, req.Answer)

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
