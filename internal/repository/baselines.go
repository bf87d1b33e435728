package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/pkg/supabase"
)

type baselineRepository struct {
	client *supabase.Client
}

// NewBaselineRepository creates a new metric baseline repository
func NewBaselineRepository(client *supabase.Client) BaselineRepository {
	return &baselineRepository{client: client}
}

func (r *baselineRepository) UpsertAll(ctx context.Context, baselines []models.MetricBaseline) error {
	if len(baselines) == 0 {
		return nil
	}

	// PostgREST requires all objects in a bulk write to carry the same keys,
	// so null stats are written explicitly rather than omitted
	data := make([]map[string]interface{}, len(baselines))
	for i, b := range baselines {
		data[i] = map[string]interface{}{
			"user_id":          b.UserID,
			"metric_type":      b.MetricType,
			"avg_7d":           b.Avg7d,
			"stddev_7d":        b.Stddev7d,
			"min_7d":           b.Min7d,
			"max_7d":           b.Max7d,
			"avg_14d":          b.Avg14d,
			"stddev_14d":       b.Stddev14d,
			"min_14d":          b.Min14d,
			"max_14d":          b.Max14d,
			"avg_30d":          b.Avg30d,
			"stddev_30d":       b.Stddev30d,
			"min_30d":          b.Min30d,
			"max_30d":          b.Max30d,
			"sample_count_7d":  b.SampleCount7d,
			"sample_count_30d": b.SampleCount30d,
			"computed_at":      b.ComputedAt,
		}
	}

	_, err := r.client.Upsert(ctx, "metric_baselines", data, "user_id,metric_type")
	if err != nil {
		return fmt.Errorf("failed to upsert baselines: %w", err)
	}

	return nil
}

func (r *baselineRepository) GetByUserID(ctx context.Context, userID string) ([]models.MetricBaseline, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "metric_type.asc",
	}

	body, err := r.client.Query(ctx, "metric_baselines", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get baselines: %w", err)
	}

	var baselines []models.MetricBaseline
	if err := json.Unmarshal(body, &baselines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return baselines, nil
}

func (r *baselineRepository) GetMostRecentComputedAt(ctx context.Context, userID string) (*time.Time, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "computed_at",
		"order":   "computed_at.desc",
		"limit":   "1",
	}

	body, err := r.client.Query(ctx, "metric_baselines", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline timestamp: %w", err)
	}

	var rows []struct {
		ComputedAt time.Time `json:"computed_at"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return &rows[0].ComputedAt, nil
}
