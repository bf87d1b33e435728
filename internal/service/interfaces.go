package service

import (
	"context"

	"github.com/vitalhq/vital/backend/internal/models"
)

// BaselineService computes and caches rolling per-metric statistics
type BaselineService interface {
	// ComputeBaselines recomputes stats for every metric type from the last
	// 30 days of raw rows. Never fails on sparse data; returns an empty
	// slice when the fetch errors or yields zero rows.
	ComputeBaselines(ctx context.Context, userID string) []models.MetricBaseline
	// ShouldRecompute reports whether no baseline exists or the most recent
	// one is older than the recompute cooldown
	ShouldRecompute(ctx context.Context, userID string) bool
	// UpdateIfNeeded recomputes and persists baselines when stale.
	// Returns true when a recompute was performed.
	UpdateIfNeeded(ctx context.Context, userID string) bool
	// Baselines returns the cached rows for the user
	Baselines(ctx context.Context, userID string) ([]models.MetricBaseline, error)
}

// PatternService detects and caches pairwise metric correlations
type PatternService interface {
	// DetectPatterns computes Pearson correlations for the fixed pair
	// catalog, keeping only significant results
	DetectPatterns(ctx context.Context, userID string) []models.DetectedPattern
	// SavePatterns deactivates the user's previous patterns and upserts the
	// given set. Returns false on persistence failure.
	SavePatterns(ctx context.Context, userID string, patterns []models.DetectedPattern) bool
	ShouldRecompute(ctx context.Context, userID string) bool
	// UpdateIfNeeded runs detect + save when stale; returns true when it did
	UpdateIfNeeded(ctx context.Context, userID string) bool
	// ActivePatterns returns the user's currently-active cached patterns
	ActivePatterns(ctx context.Context, userID string) ([]models.DetectedPattern, error)
}

// InsightRuleService selects daily insights from the priority-ordered rule table
type InsightRuleService interface {
	// GenerateDailyInsight returns the single highest-priority matching
	// insight. A catch-all fallback guarantees a non-nil result.
	GenerateDailyInsight(rctx *models.InsightContext) *models.DailyInsight
	// GenerateMultipleInsights returns up to limit matches, deduplicated by metric
	GenerateMultipleInsights(rctx *models.InsightContext, limit int) []models.DailyInsight
}

// CheckInService selects the most relevant check-in prompt
type CheckInService interface {
	GenerateCheckInContext(input *models.CheckInInput) *models.CheckInContext
	// AcknowledgementReply returns a cosmetic reply for a submitted check-in
	// answer; phrasing varies randomly, content does not
	AcknowledgementReply(contextType, answer string) string
}

// ProactiveInsightService turns newly-ingested daily data into deduplicated,
// rate-limited notifications
type ProactiveInsightService interface {
	// ProcessNewHealthData compares the payload against yesterday and the
	// 7-day baseline and stores at most one insight. Returns nil whenever no
	// insight is warranted, the daily cap is reached, or a collaborator
	// fails; it never returns an error to the ingestion path.
	ProcessNewHealthData(ctx context.Context, userID, dataType string, payload *models.HealthDataPayload) *models.ProactiveInsight
	// UnreadInsights lists the user's stored insights not yet dismissed
	UnreadInsights(ctx context.Context, userID string) ([]models.ProactiveInsight, error)
	// MarkInsightRead dismisses one insight, scoped to the owning user
	MarkInsightRead(ctx context.Context, userID, insightID string) error
}

// MessageGenerator phrases proactive-insight notifications. Implementations
// wrap an LLM; a nil/error result means "no insight produced", never a crash.
type MessageGenerator interface {
	GenerateInsightMessage(ctx context.Context, userName string, comparison models.MetricComparison) (string, error)
}

// ProofService verifies threshold claims over raw metric windows
type ProofService interface {
	CheckEligibility(ctx context.Context, userID string, reqType models.RequirementType, threshold float64, days int) (*models.Eligibility, error)
	GenerateProof(ctx context.Context, userID string, reqType models.RequirementType, threshold float64, days int) (*models.ProofResult, error)
}

// StreakService derives the user's current consecutive-day data streak
type StreakService interface {
	CurrentStreak(ctx context.Context, userID string) int
}
