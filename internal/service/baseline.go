package service

import (
	"context"
	"math"
	"time"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/repository"
)

const (
	// BaselineLookbackDays is how far back raw rows are fetched
	BaselineLookbackDays = 30

	// RecomputeCooldown is how long cached baselines and patterns stay fresh
	RecomputeCooldown = 24 * time.Hour
)

// baselineWindows are the trailing windows stats are computed over, in days
var baselineWindows = []int{7, 14, 30}

type baselineService struct {
	healthRepo   repository.HealthDailyRepository
	baselineRepo repository.BaselineRepository
}

// NewBaselineService creates a new baseline service
func NewBaselineService(healthRepo repository.HealthDailyRepository, baselineRepo repository.BaselineRepository) BaselineService {
	return &baselineService{
		healthRepo:   healthRepo,
		baselineRepo: baselineRepo,
	}
}

func (s *baselineService) ComputeBaselines(ctx context.Context, userID string) []models.MetricBaseline {
	log := logger.Ctx(ctx)

	now := time.Now()
	startDate := now.AddDate(0, 0, -BaselineLookbackDays)

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, startDate, now)
	if err != nil {
		// Collaborator outage degrades to "no data"; callers keep whatever
		// cached baselines they already have
		log.Warn("baseline fetch failed, treating as no data",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return []models.MetricBaseline{}
	}

	if len(rows) == 0 {
		return []models.MetricBaseline{}
	}

	baselines := make([]models.MetricBaseline, 0, len(models.AllMetricTypes))
	for _, metric := range models.AllMetricTypes {
		baselines = append(baselines, computeMetricBaseline(userID, metric, rows, now))
	}

	return baselines
}

func (s *baselineService) ShouldRecompute(ctx context.Context, userID string) bool {
	computedAt, err := s.baselineRepo.GetMostRecentComputedAt(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Warn("baseline staleness check failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return true
	}

	if computedAt == nil {
		return true
	}

	// Coarse check: only the most recently computed metric-type row is
	// inspected. Downstream code assumes "some recent computation exists".
	return time.Since(*computedAt) > RecomputeCooldown
}

func (s *baselineService) UpdateIfNeeded(ctx context.Context, userID string) bool {
	if !s.ShouldRecompute(ctx, userID) {
		return false
	}

	baselines := s.ComputeBaselines(ctx, userID)
	if len(baselines) == 0 {
		return false
	}

	if err := s.baselineRepo.UpsertAll(ctx, baselines); err != nil {
		logger.Ctx(ctx).Warn("baseline upsert failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return false
	}

	return true
}

func (s *baselineService) Baselines(ctx context.Context, userID string) ([]models.MetricBaseline, error) {
	return s.baselineRepo.GetByUserID(ctx, userID)
}

// computeMetricBaseline builds the stats row for one metric over every window
func computeMetricBaseline(userID string, metric models.MetricType, rows []models.DailyMetricRecord, now time.Time) models.MetricBaseline {
	type sample struct {
		date  time.Time
		value float64
	}

	samples := make([]sample, 0, len(rows))
	for i := range rows {
		if v := rows[i].MetricValue(metric); v != nil {
			samples = append(samples, sample{date: rows[i].Date, value: *v})
		}
	}

	baseline := models.MetricBaseline{
		UserID:     userID,
		MetricType: metric,
		ComputedAt: now,
	}

	for _, windowDays := range baselineWindows {
		// Windows are relative to now, not to the most recent row: stale
		// data legitimately yields empty windows
		cutoff := now.AddDate(0, 0, -windowDays)

		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			if !s.date.Before(cutoff) {
				values = append(values, s.value)
			}
		}

		stats := computeWindowStats(values)
		switch windowDays {
		case 7:
			baseline.Avg7d, baseline.Stddev7d, baseline.Min7d, baseline.Max7d = stats.Avg, stats.Stddev, stats.Min, stats.Max
			baseline.SampleCount7d = stats.Count
		case 14:
			baseline.Avg14d, baseline.Stddev14d, baseline.Min14d, baseline.Max14d = stats.Avg, stats.Stddev, stats.Min, stats.Max
		case 30:
			baseline.Avg30d, baseline.Stddev30d, baseline.Min30d, baseline.Max30d = stats.Avg, stats.Stddev, stats.Min, stats.Max
			baseline.SampleCount30d = stats.Count
		}
	}

	return baseline
}

// computeWindowStats returns mean, population stddev, min, max, and the honest
// sample count. Zero samples yield all-nil stats, never padded values.
func computeWindowStats(values []float64) models.WindowStats {
	n := len(values)
	if n == 0 {
		return models.WindowStats{Count: 0}
	}

	var sum float64
	minV := values[0]
	maxV := values[0]
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	// Population stddev, not Bessel-corrected
	stddev := math.Sqrt(sumSq / float64(n))

	avg := round2(mean)
	sd := round2(stddev)
	lo := round2(minV)
	hi := round2(maxV)

	return models.WindowStats{
		Avg:    &avg,
		Stddev: &sd,
		Min:    &lo,
		Max:    &hi,
		Count:  n,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
