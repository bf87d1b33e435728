package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/repository"
)

type proofService struct {
	healthRepo repository.HealthDailyRepository
}

// NewProofService creates a new threshold-claim verifier
func NewProofService(healthRepo repository.HealthDailyRepository) ProofService {
	return &proofService{healthRepo: healthRepo}
}

// requirementMetric maps a requirement type to the raw metric it averages
func requirementMetric(reqType models.RequirementType) (models.MetricType, error) {
	switch reqType {
	case models.RequirementStepsAvg:
		return models.MetricSteps, nil
	case models.RequirementSleepAvg:
		return models.MetricSleepHours, nil
	case models.RequirementRecoveryAvg:
		return models.MetricRecovery, nil
	case models.RequirementHRVAvg:
		return models.MetricHRV, nil
	case models.RequirementRHRAvg:
		return models.MetricRHR, nil
	}
	return "", fmt.Errorf("unknown requirement type: %s", reqType)
}

// windowAverage returns the 1-dp rounded mean of non-null values in the
// trailing window, or nil when no values exist (insufficient data)
func (s *proofService) windowAverage(ctx context.Context, userID string, metric models.MetricType, days int) *float64 {
	now := time.Now()
	startDate := now.AddDate(0, 0, -days)

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, startDate, now)
	if err != nil {
		logger.Ctx(ctx).Warn("proof window fetch failed, treating as no data",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return nil
	}

	avg := averageMetricValue(rows, metric)
	if avg == nil {
		return nil
	}

	rounded := math.Round(*avg*10) / 10
	return &rounded
}

// meetsThreshold applies the metric-specific comparator: lower is better
// for resting heart rate, higher is better for everything else
func meetsThreshold(reqType models.RequirementType, actual, threshold float64) bool {
	if reqType == models.RequirementRHRAvg {
		return actual <= threshold
	}
	return actual >= threshold
}

func (s *proofService) CheckEligibility(ctx context.Context, userID string, reqType models.RequirementType, threshold float64, days int) (*models.Eligibility, error) {
	metric, err := requirementMetric(reqType)
	if err != nil {
		return nil, err
	}

	actual := s.windowAverage(ctx, userID, metric, days)
	if actual == nil {
		return &models.Eligibility{Eligible: false}, nil
	}

	return &models.Eligibility{
		Eligible:    meetsThreshold(reqType, *actual, threshold),
		ActualValue: actual,
	}, nil
}

func (s *proofService) GenerateProof(ctx context.Context, userID string, reqType models.RequirementType, threshold float64, days int) (*models.ProofResult, error) {
	metric, err := requirementMetric(reqType)
	if err != nil {
		return nil, err
	}

	actual := s.windowAverage(ctx, userID, metric, days)
	if actual == nil {
		// Distinct from a failed threshold: the user simply has no data yet
		return &models.ProofResult{
			Eligible: false,
			Message:  fmt.Sprintf("Not enough %s data in the last %d days to verify this claim", metricLabel(metric), days),
		}, nil
	}

	if !meetsThreshold(reqType, *actual, threshold) {
		comparator := "below"
		if reqType == models.RequirementRHRAvg {
			comparator = "above"
		}
		return &models.ProofResult{
			Eligible:    false,
			ActualValue: actual,
			Message: fmt.Sprintf("Your %d-day %s average of %.1f is %s the required %.1f",
				days, metricLabel(metric), *actual, comparator, threshold),
		}, nil
	}

	// Opaque traceable token, not a cryptographic commitment: the ledger
	// logs awards against it
	hash := fmt.Sprintf("vp_%s_%.1f_%d_%s", reqType, *actual, time.Now().Unix(), uuid.NewString()[:8])

	return &models.ProofResult{
		Eligible:    true,
		ProofHash:   &hash,
		ActualValue: actual,
		Message: fmt.Sprintf("Verified: %d-day %s average of %.1f meets the requirement",
			days, metricLabel(metric), *actual),
	}, nil
}
