package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
)

func TestComputeWindowStats(t *testing.T) {
	stats := computeWindowStats([]float64{10, 12, 14, 16, 18})

	if stats.Count != 5 {
		t.Errorf("Expected count=5, got %d", stats.Count)
	}
	if stats.Avg == nil || *stats.Avg != 14 {
		t.Errorf("Expected avg=14, got %v", stats.Avg)
	}
	// Population stddev of [10,12,14,16,18] is sqrt(8) = 2.828..., rounded
	// to 2.83
	if stats.Stddev == nil || *stats.Stddev != 2.83 {
		t.Errorf("Expected stddev=2.83, got %v", stats.Stddev)
	}
	if stats.Min == nil || *stats.Min != 10 {
		t.Errorf("Expected min=10, got %v", stats.Min)
	}
	if stats.Max == nil || *stats.Max != 18 {
		t.Errorf("Expected max=18, got %v", stats.Max)
	}
}

func TestComputeWindowStatsEmpty(t *testing.T) {
	stats := computeWindowStats(nil)

	if stats.Count != 0 {
		t.Errorf("Expected count=0, got %d", stats.Count)
	}
	if stats.Avg != nil || stats.Stddev != nil || stats.Min != nil || stats.Max != nil {
		t.Errorf("Expected all-nil stats for empty window, got %+v", stats)
	}
}

func TestComputeWindowStatsSingleValue(t *testing.T) {
	stats := computeWindowStats([]float64{7.5})

	if stats.Count != 1 {
		t.Errorf("Expected count=1, got %d", stats.Count)
	}
	if stats.Stddev == nil || *stats.Stddev != 0 {
		t.Errorf("Expected stddev=0 for single sample, got %v", stats.Stddev)
	}
}

func TestComputeBaselinesHonestCounts(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{}
	// Three rows with steps inside the 7-day window, nothing else
	for _, daysAgo := range []int{1, 2, 3} {
		repo.rows = append(repo.rows, healthRow(userID, daysAgo, "daily", func(r *models.DailyMetricRecord) {
			r.Steps = floatPtr(8000)
		}))
	}

	svc := NewBaselineService(repo, newMockBaselineRepository())
	baselines := svc.ComputeBaselines(context.Background(), userID)

	if len(baselines) != len(models.AllMetricTypes) {
		t.Fatalf("Expected %d baselines, got %d", len(models.AllMetricTypes), len(baselines))
	}

	for _, b := range baselines {
		switch b.MetricType {
		case models.MetricSteps:
			if b.SampleCount7d != 3 {
				t.Errorf("Expected steps SampleCount7d=3, got %d", b.SampleCount7d)
			}
			if b.Avg7d == nil || *b.Avg7d != 8000 {
				t.Errorf("Expected steps Avg7d=8000, got %v", b.Avg7d)
			}
		default:
			// No data for the other metrics: null stats, zero counts
			if b.SampleCount7d != 0 || b.SampleCount30d != 0 {
				t.Errorf("Expected zero counts for %s, got 7d=%d 30d=%d", b.MetricType, b.SampleCount7d, b.SampleCount30d)
			}
			if b.Avg7d != nil || b.Avg30d != nil {
				t.Errorf("Expected nil averages for %s", b.MetricType)
			}
		}
	}
}

func TestComputeBaselinesSleepMinutesConvertToHours(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{
		rows: []models.DailyMetricRecord{
			healthRow(userID, 1, "sleep", func(r *models.DailyMetricRecord) {
				r.SleepMinutes = floatPtr(480)
			}),
			healthRow(userID, 2, "sleep", func(r *models.DailyMetricRecord) {
				r.SleepMinutes = floatPtr(420)
			}),
		},
	}

	svc := NewBaselineService(repo, newMockBaselineRepository())
	baselines := svc.ComputeBaselines(context.Background(), userID)

	for _, b := range baselines {
		if b.MetricType != models.MetricSleepHours {
			continue
		}
		if b.Avg7d == nil || *b.Avg7d != 7.5 {
			t.Errorf("Expected sleep Avg7d=7.5 hours, got %v", b.Avg7d)
		}
		return
	}
	t.Fatal("No sleep_hours baseline produced")
}

func TestComputeBaselinesStaleDataYieldsEmptyShortWindows(t *testing.T) {
	const userID = "user-1"
	repo := &mockHealthDailyRepository{}
	// Data exists only 20-25 days ago: the 7d window must come back empty
	for daysAgo := 20; daysAgo <= 25; daysAgo++ {
		repo.rows = append(repo.rows, healthRow(userID, daysAgo, "daily", func(r *models.DailyMetricRecord) {
			r.RestingHR = floatPtr(60)
		}))
	}

	svc := NewBaselineService(repo, newMockBaselineRepository())
	baselines := svc.ComputeBaselines(context.Background(), userID)

	for _, b := range baselines {
		if b.MetricType != models.MetricRHR {
			continue
		}
		if b.Avg7d != nil || b.SampleCount7d != 0 {
			t.Errorf("Expected empty 7d window for stale data, got avg=%v count=%d", b.Avg7d, b.SampleCount7d)
		}
		if b.Avg30d == nil || *b.Avg30d != 60 {
			t.Errorf("Expected Avg30d=60, got %v", b.Avg30d)
		}
		if b.SampleCount30d != 6 {
			t.Errorf("Expected SampleCount30d=6, got %d", b.SampleCount30d)
		}
		return
	}
	t.Fatal("No rhr baseline produced")
}

func TestComputeBaselinesFetchErrorDegradesToEmpty(t *testing.T) {
	repo := &mockHealthDailyRepository{fetchErr: errors.New("supabase down")}

	svc := NewBaselineService(repo, newMockBaselineRepository())
	baselines := svc.ComputeBaselines(context.Background(), "user-1")

	if len(baselines) != 0 {
		t.Errorf("Expected no baselines on fetch error, got %d", len(baselines))
	}
}

func TestShouldRecompute(t *testing.T) {
	healthRepo := &mockHealthDailyRepository{}

	t.Run("no baseline yet", func(t *testing.T) {
		baselineRepo := newMockBaselineRepository()
		svc := NewBaselineService(healthRepo, baselineRepo)
		if !svc.ShouldRecompute(context.Background(), "user-1") {
			t.Error("Expected recompute when no baseline exists")
		}
	})

	t.Run("fresh baseline", func(t *testing.T) {
		baselineRepo := newMockBaselineRepository()
		recent := time.Now().Add(-1 * time.Hour)
		baselineRepo.mostRecent = &recent
		svc := NewBaselineService(healthRepo, baselineRepo)
		if svc.ShouldRecompute(context.Background(), "user-1") {
			t.Error("Expected no recompute within the cooldown")
		}
	})

	t.Run("stale baseline", func(t *testing.T) {
		baselineRepo := newMockBaselineRepository()
		stale := time.Now().Add(-25 * time.Hour)
		baselineRepo.mostRecent = &stale
		svc := NewBaselineService(healthRepo, baselineRepo)
		if !svc.ShouldRecompute(context.Background(), "user-1") {
			t.Error("Expected recompute past the cooldown")
		}
	})

	t.Run("staleness check error", func(t *testing.T) {
		baselineRepo := newMockBaselineRepository()
		baselineRepo.mostRecentErr = errors.New("timeout")
		svc := NewBaselineService(healthRepo, baselineRepo)
		if !svc.ShouldRecompute(context.Background(), "user-1") {
			t.Error("Expected recompute when the staleness check fails")
		}
	})
}

func TestUpdateIfNeeded(t *testing.T) {
	const userID = "user-1"

	t.Run("recomputes and persists when stale", func(t *testing.T) {
		healthRepo := &mockHealthDailyRepository{
			rows: []models.DailyMetricRecord{
				healthRow(userID, 1, "daily", func(r *models.DailyMetricRecord) {
					r.Steps = floatPtr(9000)
				}),
			},
		}
		baselineRepo := newMockBaselineRepository()

		svc := NewBaselineService(healthRepo, baselineRepo)
		if !svc.UpdateIfNeeded(context.Background(), userID) {
			t.Fatal("Expected a recompute to run")
		}
		if baselineRepo.upsertCalls != 1 {
			t.Errorf("Expected 1 upsert call, got %d", baselineRepo.upsertCalls)
		}
		if len(baselineRepo.baselines) != len(models.AllMetricTypes) {
			t.Errorf("Expected %d persisted rows, got %d", len(models.AllMetricTypes), len(baselineRepo.baselines))
		}
	})

	t.Run("skips when fresh", func(t *testing.T) {
		healthRepo := &mockHealthDailyRepository{}
		baselineRepo := newMockBaselineRepository()
		recent := time.Now().Add(-1 * time.Hour)
		baselineRepo.mostRecent = &recent

		svc := NewBaselineService(healthRepo, baselineRepo)
		if svc.UpdateIfNeeded(context.Background(), userID) {
			t.Error("Expected no recompute within the cooldown")
		}
		if baselineRepo.upsertCalls != 0 {
			t.Errorf("Expected no upsert calls, got %d", baselineRepo.upsertCalls)
		}
	})

	t.Run("no data means nothing persisted", func(t *testing.T) {
		healthRepo := &mockHealthDailyRepository{}
		baselineRepo := newMockBaselineRepository()

		svc := NewBaselineService(healthRepo, baselineRepo)
		if svc.UpdateIfNeeded(context.Background(), userID) {
			t.Error("Expected no recompute with zero rows")
		}
		if baselineRepo.upsertCalls != 0 {
			t.Errorf("Expected no upsert calls, got %d", baselineRepo.upsertCalls)
		}
	})
}
