package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/pkg/supabase"
)

type patternRepository struct {
	client *supabase.Client
}

// NewPatternRepository creates a new detected pattern repository
func NewPatternRepository(client *supabase.Client) PatternRepository {
	return &patternRepository{client: client}
}

// metricBNone is the stored placeholder for patterns without a second
// metric. metric_b is part of the upsert conflict key and Postgres treats
// NULLs as distinct in unique constraints, so a NULL there would duplicate
// the row on every recompute instead of merging.
const metricBNone = ""

func (r *patternRepository) BulkUpsert(ctx context.Context, patterns []models.DetectedPattern) error {
	if len(patterns) == 0 {
		return nil
	}

	data := make([]map[string]interface{}, len(patterns))
	for i, p := range patterns {
		item := map[string]interface{}{
			"user_id":       p.UserID,
			"pattern_type":  p.PatternType,
			"metric_a":      p.MetricA,
			"metric_b":      metricBNone,
			"description":   p.Description,
			"correlation":   p.Correlation,
			"confidence":    p.Confidence,
			"time_lag_days": p.TimeLagDays,
			"direction":     p.Direction,
			"is_active":     p.IsActive,
			"last_observed": p.LastObserved.Format(dateLayout),
			"sample_size":   p.SampleSize,
			"updated_at":    p.UpdatedAt,
		}
		if p.MetricB != nil {
			item["metric_b"] = *p.MetricB
		}
		data[i] = item
	}

	_, err := r.client.Upsert(ctx, "detected_patterns", data, "user_id,pattern_type,metric_a,metric_b,time_lag_days")
	if err != nil {
		return fmt.Errorf("failed to upsert patterns: %w", err)
	}

	return nil
}

func (r *patternRepository) GetActiveByUserID(ctx context.Context, userID string) ([]models.DetectedPattern, error) {
	query := map[string]string{
		"user_id":   fmt.Sprintf("eq.%s", userID),
		"is_active": "eq.true",
		"select":    "*",
		"order":     "confidence.desc",
	}

	body, err := r.client.Query(ctx, "detected_patterns", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get patterns: %w", err)
	}

	var patterns []models.DetectedPattern
	if err := json.Unmarshal(body, &patterns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// Placeholder back to absent
	for i := range patterns {
		if patterns[i].MetricB != nil && *patterns[i].MetricB == metricBNone {
			patterns[i].MetricB = nil
		}
	}

	return patterns, nil
}

func (r *patternRepository) GetMostRecentUpdatedAt(ctx context.Context, userID string) (*time.Time, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "updated_at",
		"order":   "updated_at.desc",
		"limit":   "1",
	}

	body, err := r.client.Query(ctx, "detected_patterns", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern timestamp: %w", err)
	}

	var rows []struct {
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return &rows[0].UpdatedAt, nil
}

func (r *patternRepository) DeactivateAll(ctx context.Context, userID string) error {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	data := map[string]interface{}{
		"is_active": false,
	}

	if _, err := r.client.UpdateWhere(ctx, "detected_patterns", query, data); err != nil {
		return fmt.Errorf("failed to deactivate patterns: %w", err)
	}

	return nil
}
