package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/repository"
)

const (
	// MinRowsForCorrelation is the data-availability floor: fewer distinct
	// days with any data than this and detection is not attempted at all
	MinRowsForCorrelation = 7

	// MinPairedSamples is the per-pair floor after null alignment
	MinPairedSamples = 7

	// CorrelationThreshold is the practical-significance floor on |r|
	CorrelationThreshold = 0.4

	// ConfidenceSampleCap caps the sample-size contribution to confidence
	ConfidenceSampleCap = 30
)

// metricPair is one entry of the fixed correlation catalog
type metricPair struct {
	a       models.MetricType
	b       models.MetricType
	lagDays int
}

// correlationCatalog lists the metric pairs tested on every run. Lag 1
// pairs relate a day's value of A to the following day's value of B.
var correlationCatalog = []metricPair{
	{models.MetricSteps, models.MetricSleepHours, 0},
	{models.MetricSteps, models.MetricRecovery, 1},
	{models.MetricSteps, models.MetricRHR, 1},
	{models.MetricSleepHours, models.MetricRecovery, 1},
	{models.MetricSleepHours, models.MetricHRV, 1},
	{models.MetricHRV, models.MetricRecovery, 0},
	{models.MetricRHR, models.MetricRecovery, 0},
}

// correlationMetrics are the metric types a catalog pair can reference
var correlationMetrics = []models.MetricType{
	models.MetricSteps,
	models.MetricSleepHours,
	models.MetricHRV,
	models.MetricRHR,
	models.MetricRecovery,
}

type patternService struct {
	healthRepo  repository.HealthDailyRepository
	patternRepo repository.PatternRepository
}

// NewPatternService creates a new correlation pattern service
func NewPatternService(healthRepo repository.HealthDailyRepository, patternRepo repository.PatternRepository) PatternService {
	return &patternService{
		healthRepo:  healthRepo,
		patternRepo: patternRepo,
	}
}

func (s *patternService) DetectPatterns(ctx context.Context, userID string) []models.DetectedPattern {
	log := logger.Ctx(ctx)

	now := time.Now()
	startDate := now.AddDate(0, 0, -BaselineLookbackDays)

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, startDate, now)
	if err != nil {
		log.Warn("pattern fetch failed, treating as no data",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return []models.DetectedPattern{}
	}

	series := buildDaySeries(rows)
	if len(series.dates) < MinRowsForCorrelation {
		return []models.DetectedPattern{}
	}

	lastObserved := series.dates[len(series.dates)-1]

	patterns := make([]models.DetectedPattern, 0, len(correlationCatalog))
	for _, pair := range correlationCatalog {
		xs, ys := alignPair(series, pair)

		r := pearson(xs, ys)
		if r == nil {
			continue
		}
		if math.Abs(*r) < CorrelationThreshold {
			continue
		}

		n := len(xs)
		correlation := round3(*r)
		confidence := round3(0.6*math.Min(float64(n)/ConfidenceSampleCap, 1) + 0.4*math.Abs(*r))

		direction := models.DirectionPositive
		if *r < 0 {
			direction = models.DirectionNegative
		}

		metricB := pair.b
		patterns = append(patterns, models.DetectedPattern{
			UserID:       userID,
			PatternType:  models.PatternTypeCorrelation,
			MetricA:      pair.a,
			MetricB:      &metricB,
			Description:  describeCorrelation(pair, *r, direction),
			Correlation:  &correlation,
			Confidence:   confidence,
			TimeLagDays:  pair.lagDays,
			Direction:    &direction,
			IsActive:     true,
			LastObserved: lastObserved,
			SampleSize:   n,
			UpdatedAt:    now,
		})
	}

	return patterns
}

func (s *patternService) SavePatterns(ctx context.Context, userID string, patterns []models.DetectedPattern) bool {
	log := logger.Ctx(ctx)

	// Flag everything inactive first; the upsert re-activates what this run
	// detected, so patterns that fell below the bar stay deactivated
	if err := s.patternRepo.DeactivateAll(ctx, userID); err != nil {
		log.Warn("pattern deactivation failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return false
	}

	if err := s.patternRepo.BulkUpsert(ctx, patterns); err != nil {
		log.Warn("pattern upsert failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return false
	}

	return true
}

func (s *patternService) ShouldRecompute(ctx context.Context, userID string) bool {
	updatedAt, err := s.patternRepo.GetMostRecentUpdatedAt(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Warn("pattern staleness check failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return true
	}

	if updatedAt == nil {
		return true
	}

	// Same coarse single-timestamp check as baselines
	return time.Since(*updatedAt) > RecomputeCooldown
}

func (s *patternService) UpdateIfNeeded(ctx context.Context, userID string) bool {
	if !s.ShouldRecompute(ctx, userID) {
		return false
	}

	patterns := s.DetectPatterns(ctx, userID)
	return s.SavePatterns(ctx, userID, patterns)
}

func (s *patternService) ActivePatterns(ctx context.Context, userID string) ([]models.DetectedPattern, error) {
	return s.patternRepo.GetActiveByUserID(ctx, userID)
}

// daySeries is the per-calendar-day metric view built from the raw rows.
// The sleep and daily summaries land as separate health_daily rows, so a
// cross-type pair only aligns after merging them onto the same day.
type daySeries struct {
	values map[time.Time]map[models.MetricType]float64
	dates  []time.Time // ascending
}

func buildDaySeries(rows []models.DailyMetricRecord) daySeries {
	values := make(map[time.Time]map[models.MetricType]float64)
	for i := range rows {
		day := truncateToDay(rows[i].Date)
		merged, ok := values[day]
		if !ok {
			merged = make(map[models.MetricType]float64)
			values[day] = merged
		}
		for _, metric := range correlationMetrics {
			if v := rows[i].MetricValue(metric); v != nil {
				merged[metric] = *v
			}
		}
	}

	dates := make([]time.Time, 0, len(values))
	for day := range values {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return daySeries{values: values, dates: dates}
}

func (s daySeries) value(day time.Time, metric models.MetricType) (float64, bool) {
	v, ok := s.values[day][metric]
	return v, ok
}

// alignPair pairs each day's metric A with metric B lagDays later by
// calendar date, skipping days where either side is missing. Date
// arithmetic keeps gaps in the data from shifting the lag.
func alignPair(series daySeries, pair metricPair) (xs, ys []float64) {
	for _, day := range series.dates {
		va, ok := series.value(day, pair.a)
		if !ok {
			continue
		}
		vb, ok := series.value(day.AddDate(0, 0, pair.lagDays), pair.b)
		if !ok {
			continue
		}
		xs = append(xs, va)
		ys = append(ys, vb)
	}
	return xs, ys
}

// pearson computes the Pearson correlation coefficient, or nil when fewer
// than MinPairedSamples remain or one series has no variance
func pearson(xs, ys []float64) *float64 {
	n := len(xs)
	if n < MinPairedSamples || n != len(ys) {
		return nil
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	fn := float64(n)
	denom := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if denom == 0 {
		return nil
	}

	r := (fn*sumXY - sumX*sumY) / denom
	return &r
}

// describeCorrelation builds the deterministic human-readable description
func describeCorrelation(pair metricPair, r float64, direction models.Direction) string {
	strength := "weak"
	switch {
	case math.Abs(r) >= 0.7:
		strength = "strong"
	case math.Abs(r) >= 0.5:
		strength = "moderate"
	}

	relation := "higher"
	if direction == models.DirectionNegative {
		relation = "lower"
	}

	return fmt.Sprintf("Higher %s tends to go with %s %s %s (%s correlation)",
		metricLabel(pair.a), relation, lagPhrase(pair.lagDays), metricLabel(pair.b), strength)
}

func lagPhrase(lagDays int) string {
	switch lagDays {
	case 0:
		return "same-day"
	case 1:
		return "next-day"
	default:
		return fmt.Sprintf("%d-days-later", lagDays)
	}
}

func metricLabel(metric models.MetricType) string {
	switch metric {
	case models.MetricSteps:
		return "steps"
	case models.MetricSleepHours:
		return "sleep"
	case models.MetricHRV:
		return "HRV"
	case models.MetricRHR:
		return "resting heart rate"
	case models.MetricRecovery:
		return "recovery"
	case models.MetricWeight:
		return "weight"
	}
	return string(metric)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
