package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
	"github.com/vitalhq/vital/backend/pkg/supabase"
)

const dateLayout = "2006-01-02"

type healthDailyRepository struct {
	client *supabase.Client
}

// NewHealthDailyRepository creates a new raw health data repository
func NewHealthDailyRepository(client *supabase.Client) HealthDailyRepository {
	return &healthDailyRepository{client: client}
}

func (r *healthDailyRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.DailyMetricRecord, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lte.%s)", startDate.Format(dateLayout), endDate.Format(dateLayout)),
		"select":  "*",
		"order":   "date.asc",
	}

	body, err := r.client.Query(ctx, "health_daily", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get health rows: %w", err)
	}

	var rows []models.DailyMetricRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return rows, nil
}

func (r *healthDailyRepository) GetByUserIDAndDateRangeBefore(ctx context.Context, userID string, startDate, endBefore time.Time) ([]models.DailyMetricRecord, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", startDate.Format(dateLayout), endBefore.Format(dateLayout)),
		"select":  "*",
		"order":   "date.asc",
	}

	body, err := r.client.Query(ctx, "health_daily", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get health rows: %w", err)
	}

	var rows []models.DailyMetricRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return rows, nil
}

func (r *healthDailyRepository) GetByUserIDAndDate(ctx context.Context, userID string, date time.Time, dataType string) ([]models.DailyMetricRecord, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"date":    fmt.Sprintf("eq.%s", date.Format(dateLayout)),
		"select":  "*",
	}
	if dataType != "" {
		query["data_type"] = fmt.Sprintf("eq.%s", dataType)
	}

	body, err := r.client.Query(ctx, "health_daily", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get health rows: %w", err)
	}

	var rows []models.DailyMetricRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return rows, nil
}
