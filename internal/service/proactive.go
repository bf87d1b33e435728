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
	// MaxDailyInsights caps how many distinct metric types may gain a NEW
	// stored insight per user per metric date. Updates to an existing row
	// never count against the cap.
	MaxDailyInsights = 3

	// Deadbands: changes inside these bands report "same"/"at"
	yesterdayDeadbandPct = 2
	baselineDeadbandPct  = 5

	// Notability floors on the dual comparison
	notableYesterdayPct = 15
	notableBaselinePct  = 20

	// BaselineComparisonDays is the clean-baseline window length,
	// excluding yesterday and today
	BaselineComparisonDays = 7
)

// proactiveMetrics are the metrics examined in an incoming payload, in
// tie-break order
var proactiveMetrics = []models.MetricType{
	models.MetricSteps,
	models.MetricSleepHours,
	models.MetricHRV,
	models.MetricRHR,
	models.MetricRecovery,
}

type proactiveInsightService struct {
	healthRepo  repository.HealthDailyRepository
	insightRepo repository.ProactiveInsightRepository
	messages    MessageGenerator
}

// NewProactiveInsightService creates a new proactive insight service
func NewProactiveInsightService(
	healthRepo repository.HealthDailyRepository,
	insightRepo repository.ProactiveInsightRepository,
	messages MessageGenerator,
) ProactiveInsightService {
	return &proactiveInsightService{
		healthRepo:  healthRepo,
		insightRepo: insightRepo,
		messages:    messages,
	}
}

func (s *proactiveInsightService) ProcessNewHealthData(ctx context.Context, userID, dataType string, payload *models.HealthDataPayload) *models.ProactiveInsight {
	if payload == nil {
		return nil
	}
	if dataType != "sleep" && dataType != "daily" {
		return nil
	}

	log := logger.Ctx(ctx)

	// The metric's own date comes from the payload, never from delivery time
	metricDate := truncateToDay(time.Now())
	if payload.Timestamp != nil {
		metricDate = truncateToDay(*payload.Timestamp)
	}
	yesterday := metricDate.AddDate(0, 0, -1)
	baselineStart := metricDate.AddDate(0, 0, -BaselineComparisonDays)

	yesterdayRows, err := s.healthRepo.GetByUserIDAndDate(ctx, userID, yesterday, dataType)
	if err != nil {
		log.Warn("yesterday fetch failed, comparing without it",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		yesterdayRows = nil
	}

	// Baseline window stops before yesterday so neither yesterday nor today
	// leaks into the average
	baselineRows, err := s.healthRepo.GetByUserIDAndDateRangeBefore(ctx, userID, baselineStart, yesterday)
	if err != nil {
		log.Warn("baseline fetch failed, comparing without it",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		baselineRows = nil
	}

	best := selectMostNotable(payload, yesterdayRows, baselineRows)
	if best == nil {
		return nil
	}

	message, err := s.messages.GenerateInsightMessage(ctx, "", best.comparison)
	if err != nil || message == "" {
		// No insight is ever stored without a message
		log.Warn("insight message generation failed",
			logger.Err(err),
			logger.String("user_id", userID),
			logger.String("metric", string(best.comparison.Metric)),
		)
		return nil
	}

	existing, err := s.insightRepo.GetByUserMetricDate(ctx, userID, best.comparison.Metric, metricDate)
	if err != nil {
		log.Warn("insight lookup failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return nil
	}

	if existing == nil {
		// Only first insertions count against the daily cap
		count, err := s.insightRepo.CountDistinctMetricsForDate(ctx, userID, metricDate)
		if err != nil {
			log.Warn("insight count failed",
				logger.Err(err),
				logger.String("user_id", userID),
			)
			return nil
		}
		if count >= MaxDailyInsights {
			log.Debug("daily insight cap reached",
				logger.String("user_id", userID),
				logger.Int("count", count),
			)
			return nil
		}
	}

	today := best.comparison.TodayValue
	insight := &models.ProactiveInsight{
		UserID:         userID,
		Message:        message,
		InsightType:    best.insightType,
		Priority:       best.priority,
		MetricType:     best.comparison.Metric,
		MetricDate:     metricDate,
		TodayValue:     &today,
		YesterdayValue: best.comparison.YesterdayValue,
		BaselineValue:  best.comparison.BaselineValue,
		Read:           false,
	}

	// Conflict-merging upsert: a concurrent duplicate delivery that also saw
	// "no existing row" collapses into an update at the database
	stored, err := s.insightRepo.Upsert(ctx, insight)
	if err != nil {
		log.Warn("insight upsert failed",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return nil
	}

	return stored
}

func (s *proactiveInsightService) UnreadInsights(ctx context.Context, userID string) ([]models.ProactiveInsight, error) {
	return s.insightRepo.GetUnreadByUserID(ctx, userID)
}

func (s *proactiveInsightService) MarkInsightRead(ctx context.Context, userID, insightID string) error {
	return s.insightRepo.MarkRead(ctx, userID, insightID)
}

// notableMetric is one payload metric that cleared the notability gate
type notableMetric struct {
	comparison  models.MetricComparison
	insightType models.InsightType
	priority    models.InsightPriority
}

// selectMostNotable builds the dual comparison for every metric present in
// the payload and returns the highest-ranked notable one, or nil
func selectMostNotable(payload *models.HealthDataPayload, yesterdayRows, baselineRows []models.DailyMetricRecord) *notableMetric {
	var best *notableMetric

	for _, metric := range proactiveMetrics {
		todayPtr := payload.MetricValue(metric)
		if todayPtr == nil {
			continue
		}

		cmp := buildComparison(metric, *todayPtr, yesterdayRows, baselineRows)
		if !isNotable(metric, cmp) {
			continue
		}

		insightType, priority := classifyChange(metric, cmp)
		candidate := &notableMetric{comparison: cmp, insightType: insightType, priority: priority}

		if best == nil || typeRank(candidate.insightType) > typeRank(best.insightType) {
			best = candidate
		}
	}

	return best
}

// buildComparison computes the dual comparison: today vs yesterday with a
// ±2% deadband, today vs the 7-day baseline average with a ±5% deadband
func buildComparison(metric models.MetricType, today float64, yesterdayRows, baselineRows []models.DailyMetricRecord) models.MetricComparison {
	cmp := models.MetricComparison{
		Metric:             metric,
		TodayValue:         today,
		DirectionYesterday: models.ChangeSame,
		DirectionBaseline:  models.ChangeAt,
	}

	if y := firstMetricValue(yesterdayRows, metric); y != nil && *y != 0 {
		cmp.YesterdayValue = y
		pct := math.Round((today - *y) / *y * 100)
		cmp.PercentChangeYesterday = &pct
		switch {
		case pct > yesterdayDeadbandPct:
			cmp.DirectionYesterday = models.ChangeUp
		case pct < -yesterdayDeadbandPct:
			cmp.DirectionYesterday = models.ChangeDown
		}
	}

	if b := averageMetricValue(baselineRows, metric); b != nil && *b != 0 {
		cmp.BaselineValue = b
		pct := math.Round((today - *b) / *b * 100)
		cmp.PercentChangeBaseline = &pct
		switch {
		case pct > baselineDeadbandPct:
			cmp.DirectionBaseline = models.ChangeAbove
		case pct < -baselineDeadbandPct:
			cmp.DirectionBaseline = models.ChangeBelow
		}
	}

	return cmp
}

func isNotable(metric models.MetricType, cmp models.MetricComparison) bool {
	if cmp.PercentChangeYesterday != nil && math.Abs(*cmp.PercentChangeYesterday) >= notableYesterdayPct {
		return true
	}
	if cmp.PercentChangeBaseline != nil && math.Abs(*cmp.PercentChangeBaseline) >= notableBaselinePct {
		return true
	}
	return isMilestone(metric, cmp.TodayValue)
}

func isMilestone(metric models.MetricType, today float64) bool {
	switch metric {
	case models.MetricSteps:
		return today >= 10000
	case models.MetricSleepHours:
		return today >= 8
	}
	return false
}

// classifyChange assigns the insight type and display priority
func classifyChange(metric models.MetricType, cmp models.MetricComparison) (models.InsightType, models.InsightPriority) {
	if isConcern(metric, cmp) {
		return models.InsightTypeConcern, models.PriorityHigh
	}
	if isMilestone(metric, cmp.TodayValue) {
		return models.InsightTypeMilestone, models.PriorityLow
	}
	if isClearlyPositive(metric, cmp) {
		return models.InsightTypeNotableChange, models.PriorityLow
	}
	return models.InsightTypeNotableChange, models.PriorityMedium
}

// isConcern flags physiologically worrying day-over-day moves
func isConcern(metric models.MetricType, cmp models.MetricComparison) bool {
	if cmp.PercentChangeYesterday == nil {
		return false
	}
	pct := *cmp.PercentChangeYesterday
	switch metric {
	case models.MetricRHR:
		return pct >= 10
	case models.MetricHRV:
		return pct <= -20
	case models.MetricRecovery:
		return pct <= -25
	}
	return false
}

// isClearlyPositive reports whether both comparisons moved in the metric's
// good direction, which downgrades a notable change to low priority
func isClearlyPositive(metric models.MetricType, cmp models.MetricComparison) bool {
	var goodDay, goodBase models.ChangeDirection
	switch metric {
	case models.MetricRHR:
		goodDay, goodBase = models.ChangeDown, models.ChangeBelow
	default:
		goodDay, goodBase = models.ChangeUp, models.ChangeAbove
	}
	return cmp.DirectionYesterday == goodDay && cmp.DirectionBaseline == goodBase
}

func typeRank(t models.InsightType) int {
	switch t {
	case models.InsightTypeConcern:
		return 3
	case models.InsightTypeNotableChange:
		return 2
	case models.InsightTypeMilestone:
		return 1
	}
	return 0
}

func firstMetricValue(rows []models.DailyMetricRecord, metric models.MetricType) *float64 {
	for i := range rows {
		if v := rows[i].MetricValue(metric); v != nil {
			return v
		}
	}
	return nil
}

func averageMetricValue(rows []models.DailyMetricRecord, metric models.MetricType) *float64 {
	var sum float64
	var n int
	for i := range rows {
		if v := rows[i].MetricValue(metric); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
