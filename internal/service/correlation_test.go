package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
)

func TestPearsonPerfectPositive(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2 * x
	}

	r := pearson(xs, ys)
	if r == nil {
		t.Fatal("Expected a coefficient, got nil")
	}
	if math.Abs(*r-1) > 1e-9 {
		t.Errorf("Expected r=1, got %f", *r)
	}
}

func TestPearsonPerfectNegative(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6, 7}
	ys := []float64{14, 12, 10, 8, 6, 4, 2}

	r := pearson(xs, ys)
	if r == nil {
		t.Fatal("Expected a coefficient, got nil")
	}
	if math.Abs(*r+1) > 1e-9 {
		t.Errorf("Expected r=-1, got %f", *r)
	}
}

func TestPearsonSymmetry(t *testing.T) {
	xs := []float64{3, 7, 1, 9, 4, 6, 8, 2}
	ys := []float64{5, 6, 2, 8, 5, 7, 9, 3}

	r1 := pearson(xs, ys)
	r2 := pearson(ys, xs)
	if r1 == nil || r2 == nil {
		t.Fatal("Expected coefficients for both orderings")
	}
	if math.Abs(*r1-*r2) > 1e-12 {
		t.Errorf("Expected symmetric result, got %f vs %f", *r1, *r2)
	}
}

func TestPearsonTooFewSamples(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}

	if r := pearson(xs, ys); r != nil {
		t.Errorf("Expected nil for 5 paired samples, got %f", *r)
	}
}

func TestPearsonZeroVariance(t *testing.T) {
	xs := []float64{5, 5, 5, 5, 5, 5, 5}
	ys := []float64{1, 2, 3, 4, 5, 6, 7}

	if r := pearson(xs, ys); r != nil {
		t.Errorf("Expected nil for a constant series, got %f", *r)
	}
}

func TestAlignPairMergesSplitRows(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.DailyMetricRecord{
		{Date: base, DataType: "daily", Steps: floatPtr(1000)},
		{Date: base, DataType: "sleep", SleepMinutes: floatPtr(420)},
		{Date: base.AddDate(0, 0, 1), DataType: "daily", Steps: floatPtr(2000)}, // no sleep row, skipped
		{Date: base.AddDate(0, 0, 2), DataType: "daily", Steps: floatPtr(3000)},
		{Date: base.AddDate(0, 0, 2), DataType: "sleep", SleepMinutes: floatPtr(480)},
	}

	xs, ys := alignPair(buildDaySeries(rows), metricPair{a: models.MetricSteps, b: models.MetricSleepHours, lagDays: 0})

	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("Expected 2 aligned samples, got %d/%d", len(xs), len(ys))
	}
	if xs[0] != 1000 || ys[0] != 7 {
		t.Errorf("Expected first pair (1000, 7), got (%f, %f)", xs[0], ys[0])
	}
	if xs[1] != 3000 || ys[1] != 8 {
		t.Errorf("Expected second pair (3000, 8), got (%f, %f)", xs[1], ys[1])
	}
}

func TestAlignPairWithLag(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.DailyMetricRecord{
		{Date: base, DataType: "daily", Steps: floatPtr(1000), RecoveryScore: floatPtr(50)},
		{Date: base.AddDate(0, 0, 1), DataType: "daily", Steps: floatPtr(2000), RecoveryScore: floatPtr(60)},
		{Date: base.AddDate(0, 0, 2), DataType: "daily", Steps: floatPtr(3000), RecoveryScore: floatPtr(70)},
	}

	xs, ys := alignPair(buildDaySeries(rows), metricPair{a: models.MetricSteps, b: models.MetricRecovery, lagDays: 1})

	// Each day's steps pair with the following day's recovery
	if len(xs) != 2 {
		t.Fatalf("Expected 2 aligned samples, got %d", len(xs))
	}
	if xs[0] != 1000 || ys[0] != 60 {
		t.Errorf("Expected first pair (1000, 60), got (%f, %f)", xs[0], ys[0])
	}
	if xs[1] != 2000 || ys[1] != 70 {
		t.Errorf("Expected second pair (2000, 70), got (%f, %f)", xs[1], ys[1])
	}
}

func TestAlignPairLagRespectsGaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Days 0, 1, then 3, 4: day 1 has no next calendar day to pair with,
	// even though day 3 is the next row
	rows := []models.DailyMetricRecord{
		{Date: base, DataType: "daily", Steps: floatPtr(1000), RecoveryScore: floatPtr(50)},
		{Date: base.AddDate(0, 0, 1), DataType: "daily", Steps: floatPtr(2000), RecoveryScore: floatPtr(60)},
		{Date: base.AddDate(0, 0, 3), DataType: "daily", Steps: floatPtr(3000), RecoveryScore: floatPtr(70)},
		{Date: base.AddDate(0, 0, 4), DataType: "daily", Steps: floatPtr(4000), RecoveryScore: floatPtr(80)},
	}

	xs, ys := alignPair(buildDaySeries(rows), metricPair{a: models.MetricSteps, b: models.MetricRecovery, lagDays: 1})

	if len(xs) != 2 {
		t.Fatalf("Expected 2 aligned samples across the gap, got %d", len(xs))
	}
	if xs[0] != 1000 || ys[0] != 60 {
		t.Errorf("Expected first pair (1000, 60), got (%f, %f)", xs[0], ys[0])
	}
	if xs[1] != 3000 || ys[1] != 80 {
		t.Errorf("Expected second pair (3000, 80), got (%f, %f)", xs[1], ys[1])
	}
}

func TestDetectPatternsEndToEnd(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{}
	// Ten days where more steps perfectly track less sleep
	for i := 0; i < 10; i++ {
		daysAgo := 10 - i
		steps := float64(1000 * (i + 1))
		sleepMinutes := float64(600 - 30*i)
		repo.rows = append(repo.rows, healthRow(userID, daysAgo, "daily", func(r *models.DailyMetricRecord) {
			r.Steps = floatPtr(steps)
			r.SleepMinutes = floatPtr(sleepMinutes)
		}))
	}

	svc := NewPatternService(repo, newMockPatternRepository())
	patterns := svc.DetectPatterns(context.Background(), userID)

	if len(patterns) != 1 {
		t.Fatalf("Expected exactly 1 pattern, got %d", len(patterns))
	}

	p := patterns[0]
	if p.MetricA != models.MetricSteps || p.MetricB == nil || *p.MetricB != models.MetricSleepHours {
		t.Errorf("Expected steps/sleep_hours pair, got %s/%v", p.MetricA, p.MetricB)
	}
	if p.TimeLagDays != 0 {
		t.Errorf("Expected lag 0, got %d", p.TimeLagDays)
	}
	if p.Correlation == nil || *p.Correlation != -1 {
		t.Errorf("Expected correlation -1, got %v", p.Correlation)
	}
	if p.Direction == nil || *p.Direction != models.DirectionNegative {
		t.Errorf("Expected negative direction, got %v", p.Direction)
	}
	// confidence = 0.6*min(10/30, 1) + 0.4*1 = 0.6
	if p.Confidence != 0.6 {
		t.Errorf("Expected confidence 0.6, got %f", p.Confidence)
	}
	if p.SampleSize != 10 {
		t.Errorf("Expected sample size 10, got %d", p.SampleSize)
	}
	if !p.IsActive {
		t.Error("Expected detected pattern to be active")
	}
}

func TestDetectPatternsSplitRows(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{}
	// Same inverse steps/sleep relationship, but delivered the way the
	// ingestion pipeline actually stores it: one "daily" row and one
	// "sleep" row per calendar day
	for i := 0; i < 10; i++ {
		daysAgo := 10 - i
		steps := float64(1000 * (i + 1))
		sleepMinutes := float64(600 - 30*i)
		repo.rows = append(repo.rows,
			healthRow(userID, daysAgo, "daily", func(r *models.DailyMetricRecord) {
				r.Steps = floatPtr(steps)
			}),
			healthRow(userID, daysAgo, "sleep", func(r *models.DailyMetricRecord) {
				r.SleepMinutes = floatPtr(sleepMinutes)
			}),
		)
	}

	svc := NewPatternService(repo, newMockPatternRepository())
	patterns := svc.DetectPatterns(context.Background(), userID)

	if len(patterns) != 1 {
		t.Fatalf("Expected exactly 1 pattern from split rows, got %d", len(patterns))
	}

	p := patterns[0]
	if p.MetricA != models.MetricSteps || p.MetricB == nil || *p.MetricB != models.MetricSleepHours {
		t.Errorf("Expected steps/sleep_hours pair, got %s/%v", p.MetricA, p.MetricB)
	}
	if p.TimeLagDays != 0 {
		t.Errorf("Expected lag 0, got %d", p.TimeLagDays)
	}
	if p.Correlation == nil || *p.Correlation != -1 {
		t.Errorf("Expected correlation -1, got %v", p.Correlation)
	}
	if p.SampleSize != 10 {
		t.Errorf("Expected sample size 10, got %d", p.SampleSize)
	}
}

func TestDetectPatternsTooFewRows(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{}
	for i := 1; i <= 5; i++ {
		repo.rows = append(repo.rows, healthRow(userID, i, "daily", func(r *models.DailyMetricRecord) {
			r.Steps = floatPtr(5000)
		}))
	}

	svc := NewPatternService(repo, newMockPatternRepository())
	patterns := svc.DetectPatterns(context.Background(), userID)

	if len(patterns) != 0 {
		t.Errorf("Expected no patterns under the row floor, got %d", len(patterns))
	}
}

func TestSavePatternsDeactivatesBeforeUpsert(t *testing.T) {
	const userID = "user-1"
	patternRepo := newMockPatternRepository()

	// Pre-existing pattern that this run no longer detects
	metricB := models.MetricRecovery
	stale := models.DetectedPattern{
		UserID:      userID,
		PatternType: models.PatternTypeCorrelation,
		MetricA:     models.MetricHRV,
		MetricB:     &metricB,
		IsActive:    true,
	}
	patternRepo.patterns[patternKey(stale)] = stale

	metricSleep := models.MetricSleepHours
	detected := []models.DetectedPattern{
		{
			UserID:      userID,
			PatternType: models.PatternTypeCorrelation,
			MetricA:     models.MetricSteps,
			MetricB:     &metricSleep,
			IsActive:    true,
		},
	}

	svc := NewPatternService(&mockHealthDailyRepository{}, patternRepo)
	if !svc.SavePatterns(context.Background(), userID, detected) {
		t.Fatal("Expected save to succeed")
	}

	active, err := patternRepo.GetActiveByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("Expected 1 active pattern, got %d", len(active))
	}
	if active[0].MetricA != models.MetricSteps {
		t.Errorf("Expected the re-detected pattern to stay active, got %s", active[0].MetricA)
	}
	if patternRepo.deactivateCalls != 1 {
		t.Errorf("Expected 1 deactivate call, got %d", patternRepo.deactivateCalls)
	}
}

func TestDescribeCorrelation(t *testing.T) {
	pair := metricPair{a: models.MetricSteps, b: models.MetricSleepHours, lagDays: 0}
	desc := describeCorrelation(pair, -0.8, models.DirectionNegative)

	want := "Higher steps tends to go with lower same-day sleep (strong correlation)"
	if desc != want {
		t.Errorf("Expected %q, got %q", want, desc)
	}
}
