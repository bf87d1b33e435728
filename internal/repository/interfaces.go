package repository

import (
	"context"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
)

// HealthDailyRepository reads the raw per-day wearable rows. The rows are
// written by the ingestion pipeline; this core only ever queries them.
type HealthDailyRepository interface {
	// GetByUserIDAndDateRange returns rows with start <= date <= end, ascending by date
	GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.DailyMetricRecord, error)
	// GetByUserIDAndDateRangeBefore returns rows with start <= date < endBefore, ascending by date
	GetByUserIDAndDateRangeBefore(ctx context.Context, userID string, startDate, endBefore time.Time) ([]models.DailyMetricRecord, error)
	// GetByUserIDAndDate returns the rows for one calendar day, optionally scoped by data type
	GetByUserIDAndDate(ctx context.Context, userID string, date time.Time, dataType string) ([]models.DailyMetricRecord, error)
}

// BaselineRepository persists derived rolling statistics keyed by (user, metric type)
type BaselineRepository interface {
	UpsertAll(ctx context.Context, baselines []models.MetricBaseline) error
	GetByUserID(ctx context.Context, userID string) ([]models.MetricBaseline, error)
	// GetMostRecentComputedAt returns the newest computed_at across all of the
	// user's metric-type rows, or nil when no baseline exists yet
	GetMostRecentComputedAt(ctx context.Context, userID string) (*time.Time, error)
}

// PatternRepository persists detected correlations keyed by
// (user, pattern type, metric pair, time lag)
type PatternRepository interface {
	BulkUpsert(ctx context.Context, patterns []models.DetectedPattern) error
	GetActiveByUserID(ctx context.Context, userID string) ([]models.DetectedPattern, error)
	GetMostRecentUpdatedAt(ctx context.Context, userID string) (*time.Time, error)
	// DeactivateAll flags every pattern for the user inactive; a following
	// BulkUpsert re-activates the ones detected in the current run
	DeactivateAll(ctx context.Context, userID string) error
}

// ProactiveInsightRepository persists deduplicated daily notifications.
// The table carries a unique constraint on (user_id, metric_type,
// metric_date); Upsert merges on that key so concurrent duplicate
// deliveries collapse into one row.
type ProactiveInsightRepository interface {
	GetByUserMetricDate(ctx context.Context, userID string, metric models.MetricType, date time.Time) (*models.ProactiveInsight, error)
	// CountDistinctMetricsForDate counts how many distinct metric types
	// already have a stored insight for the given metric date
	CountDistinctMetricsForDate(ctx context.Context, userID string, date time.Time) (int, error)
	Upsert(ctx context.Context, insight *models.ProactiveInsight) (*models.ProactiveInsight, error)
	GetUnreadByUserID(ctx context.Context, userID string) ([]models.ProactiveInsight, error)
	MarkRead(ctx context.Context, userID, insightID string) error
}
