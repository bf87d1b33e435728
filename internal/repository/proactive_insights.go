package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/pkg/supabase"
)

type proactiveInsightRepository struct {
	client *supabase.Client
}

// NewProactiveInsightRepository creates a new proactive insight repository
func NewProactiveInsightRepository(client *supabase.Client) ProactiveInsightRepository {
	return &proactiveInsightRepository{client: client}
}

func (r *proactiveInsightRepository) GetByUserMetricDate(ctx context.Context, userID string, metric models.MetricType, date time.Time) (*models.ProactiveInsight, error) {
	query := map[string]string{
		"user_id":     fmt.Sprintf("eq.%s", userID),
		"metric_type": fmt.Sprintf("eq.%s", metric),
		"metric_date": fmt.Sprintf("eq.%s", date.Format(dateLayout)),
		"select":      "*",
		"limit":       "1",
	}

	body, err := r.client.Query(ctx, "proactive_insights", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get proactive insight: %w", err)
	}

	var insights []models.ProactiveInsight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(insights) == 0 {
		return nil, nil
	}

	return &insights[0], nil
}

func (r *proactiveInsightRepository) CountDistinctMetricsForDate(ctx context.Context, userID string, date time.Time) (int, error) {
	query := map[string]string{
		"user_id":     fmt.Sprintf("eq.%s", userID),
		"metric_date": fmt.Sprintf("eq.%s", date.Format(dateLayout)),
		"select":      "metric_type",
	}

	body, err := r.client.Query(ctx, "proactive_insights", query)
	if err != nil {
		return 0, fmt.Errorf("failed to count insights: %w", err)
	}

	var rows []struct {
		MetricType models.MetricType `json:"metric_type"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	distinct := make(map[models.MetricType]bool)
	for _, row := range rows {
		distinct[row.MetricType] = true
	}

	return len(distinct), nil
}

func (r *proactiveInsightRepository) Upsert(ctx context.Context, insight *models.ProactiveInsight) (*models.ProactiveInsight, error) {
	data := map[string]interface{}{
		"user_id":         insight.UserID,
		"message":         insight.Message,
		"insight_type":    insight.InsightType,
		"priority":        insight.Priority,
		"metric_type":     insight.MetricType,
		"metric_date":     insight.MetricDate.Format(dateLayout),
		"today_value":     insight.TodayValue,
		"yesterday_value": insight.YesterdayValue,
		"baseline_value":  insight.BaselineValue,
		"read":            insight.Read,
		"updated_at":      time.Now(),
	}

	body, err := r.client.Upsert(ctx, "proactive_insights", data, "user_id,metric_type,metric_date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert proactive insight: %w", err)
	}

	var insights []models.ProactiveInsight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(insights) == 0 {
		return nil, fmt.Errorf("no proactive insight returned")
	}

	return &insights[0], nil
}

func (r *proactiveInsightRepository) GetUnreadByUserID(ctx context.Context, userID string) ([]models.ProactiveInsight, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"read":    "eq.false",
		"select":  "*",
		"order":   "metric_date.desc,priority.desc",
	}

	body, err := r.client.Query(ctx, "proactive_insights", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread insights: %w", err)
	}

	var insights []models.ProactiveInsight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return insights, nil
}

func (r *proactiveInsightRepository) MarkRead(ctx context.Context, userID, insightID string) error {
	query := map[string]string{
		"id":      fmt.Sprintf("eq.%s", insightID),
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	data := map[string]interface{}{
		"read":       true,
		"updated_at": time.Now(),
	}

	if _, err := r.client.UpdateWhere(ctx, "proactive_insights", query, data); err != nil {
		return fmt.Errorf("failed to mark insight read: %w", err)
	}

	return nil
}
