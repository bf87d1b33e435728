package service

import (
	"context"
	"time"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/internal/repository"
)

const (
	// contextLookbackDays covers today, the two trend weeks, and enough
	// history to estimate time on platform
	contextLookbackDays = 90
	trendWindowDays     = 7
)

// InsightContextService assembles the rule-engine input for a user
type InsightContextService interface {
	// BuildInsightContext gathers today's metrics, weekly trends, streak,
	// and tenure. Fetch failures degrade to an empty context; the rule
	// engine's fallback covers the rest.
	BuildInsightContext(ctx context.Context, userID string) *models.InsightContext
	// BuildCheckInInput mirrors BuildInsightContext for the check-in engine
	BuildCheckInInput(ctx context.Context, userID string, lastCheckIn *time.Time) *models.CheckInInput
}

type insightContextService struct {
	healthRepo repository.HealthDailyRepository
	streaks    StreakService
	now        func() time.Time
}

// NewInsightContextService creates the context assembler used by the
// insight and check-in handlers
func NewInsightContextService(healthRepo repository.HealthDailyRepository, streaks StreakService) InsightContextService {
	return &insightContextService{
		healthRepo: healthRepo,
		streaks:    streaks,
		now:        time.Now,
	}
}

func (s *insightContextService) BuildInsightContext(ctx context.Context, userID string) *models.InsightContext {
	now := s.now()
	today := truncateToDay(now)
	start := today.AddDate(0, 0, -(contextLookbackDays - 1))

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, start, today)
	if err != nil {
		logger.Ctx(ctx).Warn("insight context fetch failed, using empty context",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		rows = nil
	}

	return &models.InsightContext{
		Metrics:        buildTodayMetrics(rows, today),
		Trends:         buildTrends(rows, today),
		StreakDays:     s.streaks.CurrentStreak(ctx, userID),
		DaysOnPlatform: daysOnPlatform(rows, today),
	}
}

func (s *insightContextService) BuildCheckInInput(ctx context.Context, userID string, lastCheckIn *time.Time) *models.CheckInInput {
	now := s.now()
	today := truncateToDay(now)
	start := today.AddDate(0, 0, -(contextLookbackDays - 1))

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, start, today)
	if err != nil {
		logger.Ctx(ctx).Warn("check-in context fetch failed, using empty context",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		rows = nil
	}

	return &models.CheckInInput{
		Metrics:     buildTodayMetrics(rows, today),
		StreakDays:  s.streaks.CurrentStreak(ctx, userID),
		LastCheckIn: lastCheckIn,
		Now:         now,
	}
}

// buildTodayMetrics merges today's rows (the sleep and daily summaries land
// as separate rows) into one view, deriving the qualitative fields.
func buildTodayMetrics(rows []models.DailyMetricRecord, today time.Time) models.TodayMetrics {
	var m models.TodayMetrics
	for i := range rows {
		r := &rows[i]
		if !sameDay(r.Date, today) {
			continue
		}
		if v := r.MetricValue(models.MetricSteps); v != nil {
			m.Steps = v
		}
		if v := r.MetricValue(models.MetricSleepHours); v != nil {
			m.SleepHours = v
		}
		if v := r.MetricValue(models.MetricHRV); v != nil {
			m.HRV = v
		}
		if v := r.MetricValue(models.MetricRHR); v != nil {
			m.RHR = v
		}
		if v := r.MetricValue(models.MetricRecovery); v != nil {
			m.Recovery = v
		}
	}

	if m.SleepHours != nil {
		m.SleepQuality = strPtr(sleepQuality(*m.SleepHours))
	}
	if m.Recovery != nil {
		m.StressLevel = strPtr(stressLevel(*m.Recovery))
	}

	return m
}

func sleepQuality(hours float64) string {
	switch {
	case hours >= 8:
		return "excellent"
	case hours >= 6.5:
		return "good"
	default:
		return "poor"
	}
}

func stressLevel(recovery float64) string {
	switch {
	case recovery <= 30:
		return "high"
	case recovery >= 90:
		return "rest"
	default:
		return "moderate"
	}
}

// buildTrends compares this week's per-metric averages against the prior
// week's. A delta is nil when either week has no samples for the metric.
func buildTrends(rows []models.DailyMetricRecord, today time.Time) models.MetricTrends {
	currentStart := today.AddDate(0, 0, -(trendWindowDays - 1))
	priorStart := currentStart.AddDate(0, 0, -trendWindowDays)

	weekDelta := func(metric models.MetricType) *float64 {
		cur := windowAvg(rows, metric, currentStart, today)
		prev := windowAvg(rows, metric, priorStart, currentStart.AddDate(0, 0, -1))
		if cur == nil || prev == nil {
			return nil
		}
		delta := round2(*cur - *prev)
		return &delta
	}

	return models.MetricTrends{
		RHRDelta:        weekDelta(models.MetricRHR),
		SleepHoursDelta: weekDelta(models.MetricSleepHours),
		StepsDelta:      weekDelta(models.MetricSteps),
		HRVDelta:        weekDelta(models.MetricHRV),
	}
}

// windowAvg averages the metric over start <= date <= end, skipping nulls
func windowAvg(rows []models.DailyMetricRecord, metric models.MetricType, start, end time.Time) *float64 {
	var sum float64
	var count int
	for i := range rows {
		r := &rows[i]
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		if v := r.MetricValue(metric); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// daysOnPlatform counts calendar days since the earliest row in the
// lookback window, inclusive. Zero when the user has no data at all.
func daysOnPlatform(rows []models.DailyMetricRecord, today time.Time) int {
	var earliest *time.Time
	for i := range rows {
		d := truncateToDay(rows[i].Date)
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
	}
	if earliest == nil {
		return 0
	}
	return int(today.Sub(*earliest).Hours()/24) + 1
}

func sameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}
