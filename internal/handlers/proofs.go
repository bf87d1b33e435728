package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/service"
)

// ProofsHandler verifies metric threshold claims for the rewards ledger
type ProofsHandler struct {
	proofs service.ProofService
}

// NewProofsHandler creates a new proofs handler
func NewProofsHandler(proofs service.ProofService) *ProofsHandler {
	return &ProofsHandler{proofs: proofs}
}

var validRequirementTypes = map[models.RequirementType]bool{
	models.RequirementStepsAvg:    true,
	models.RequirementSleepAvg:    true,
	models.RequirementRecoveryAvg: true,
	models.RequirementHRVAvg:      true,
	models.RequirementRHRAvg:      true,
}

// VerifyProof checks a threshold claim over a trailing window
// POST /api/v1/proofs/verify
func (h *ProofsHandler) VerifyProof(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.VerifyProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requirement_type, threshold, and days (1-90) are required"})
		return
	}
	if !validRequirementTypes[req.RequirementType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown requirement_type"})
		return
	}

	result, err := h.proofs.GenerateProof(c.Request.Context(), userID.(string), req.RequirementType, req.Threshold, req.Days)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("proof generation failed",
			logger.Err(err),
			logger.String("user_id", userID.(string)),
			logger.String("requirement_type", string(req.RequirementType)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "proof generation failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
