package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
)

// mockHealthDailyRepository is an in-memory HealthDailyRepository for testing
type mockHealthDailyRepository struct {
	rows     []models.DailyMetricRecord
	fetchErr error
}

func (m *mockHealthDailyRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.DailyMetricRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var result []models.DailyMetricRecord
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		d := truncateToDay(r.Date)
		if d.Before(truncateToDay(startDate)) || d.After(truncateToDay(endDate)) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockHealthDailyRepository) GetByUserIDAndDateRangeBefore(ctx context.Context, userID string, startDate, endBefore time.Time) ([]models.DailyMetricRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var result []models.DailyMetricRecord
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		d := truncateToDay(r.Date)
		if d.Before(truncateToDay(startDate)) || !d.Before(truncateToDay(endBefore)) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockHealthDailyRepository) GetByUserIDAndDate(ctx context.Context, userID string, date time.Time, dataType string) ([]models.DailyMetricRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var result []models.DailyMetricRecord
	for _, r := range m.rows {
		if r.UserID != userID {
			continue
		}
		if !truncateToDay(r.Date).Equal(truncateToDay(date)) {
			continue
		}
		if dataType != "" && r.DataType != dataType {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// mockBaselineRepository is an in-memory BaselineRepository for testing
type mockBaselineRepository struct {
	baselines      map[string]models.MetricBaseline // metric_type -> row
	upsertCalls    int
	upsertErr      error
	mostRecent     *time.Time
	mostRecentErr  error
	getByUserIDErr error
}

func newMockBaselineRepository() *mockBaselineRepository {
	return &mockBaselineRepository{baselines: make(map[string]models.MetricBaseline)}
}

func (m *mockBaselineRepository) UpsertAll(ctx context.Context, baselines []models.MetricBaseline) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, b := range baselines {
		m.baselines[string(b.MetricType)] = b
	}
	return nil
}

func (m *mockBaselineRepository) GetByUserID(ctx context.Context, userID string) ([]models.MetricBaseline, error) {
	if m.getByUserIDErr != nil {
		return nil, m.getByUserIDErr
	}
	var result []models.MetricBaseline
	for _, b := range m.baselines {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockBaselineRepository) GetMostRecentComputedAt(ctx context.Context, userID string) (*time.Time, error) {
	if m.mostRecentErr != nil {
		return nil, m.mostRecentErr
	}
	return m.mostRecent, nil
}

// mockPatternRepository is an in-memory PatternRepository for testing
type mockPatternRepository struct {
	patterns        map[string]models.DetectedPattern // composite key -> row
	deactivateCalls int
	deactivateErr   error
	upsertCalls     int
	upsertErr       error
	mostRecent      *time.Time
	mostRecentErr   error
}

func newMockPatternRepository() *mockPatternRepository {
	return &mockPatternRepository{patterns: make(map[string]models.DetectedPattern)}
}

func patternKey(p models.DetectedPattern) string {
	metricB := ""
	if p.MetricB != nil {
		metricB = string(*p.MetricB)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d", p.UserID, p.PatternType, p.MetricA, metricB, p.TimeLagDays)
}

func (m *mockPatternRepository) BulkUpsert(ctx context.Context, patterns []models.DetectedPattern) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, p := range patterns {
		m.patterns[patternKey(p)] = p
	}
	return nil
}

func (m *mockPatternRepository) GetActiveByUserID(ctx context.Context, userID string) ([]models.DetectedPattern, error) {
	var result []models.DetectedPattern
	for _, p := range m.patterns {
		if p.UserID == userID && p.IsActive {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPatternRepository) GetMostRecentUpdatedAt(ctx context.Context, userID string) (*time.Time, error) {
	if m.mostRecentErr != nil {
		return nil, m.mostRecentErr
	}
	return m.mostRecent, nil
}

func (m *mockPatternRepository) DeactivateAll(ctx context.Context, userID string) error {
	m.deactivateCalls++
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	for k, p := range m.patterns {
		if p.UserID == userID {
			p.IsActive = false
			m.patterns[k] = p
		}
	}
	return nil
}

// mockProactiveInsightRepository is an in-memory ProactiveInsightRepository
// whose Upsert merges on (user, metric, date) like the real table does
type mockProactiveInsightRepository struct {
	insights    map[string]*models.ProactiveInsight
	upsertCalls int
	upsertErr   error
	countErr    error
	getErr      error
	nextID      int
}

func newMockProactiveInsightRepository() *mockProactiveInsightRepository {
	return &mockProactiveInsightRepository{insights: make(map[string]*models.ProactiveInsight)}
}

func insightKey(userID string, metric models.MetricType, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", userID, metric, truncateToDay(date).Format("2006-01-02"))
}

func (m *mockProactiveInsightRepository) GetByUserMetricDate(ctx context.Context, userID string, metric models.MetricType, date time.Time) (*models.ProactiveInsight, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if ins, ok := m.insights[insightKey(userID, metric, date)]; ok {
		copied := *ins
		return &copied, nil
	}
	return nil, nil
}

func (m *mockProactiveInsightRepository) CountDistinctMetricsForDate(ctx context.Context, userID string, date time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	metrics := make(map[models.MetricType]bool)
	for _, ins := range m.insights {
		if ins.UserID == userID && truncateToDay(ins.MetricDate).Equal(truncateToDay(date)) {
			metrics[ins.MetricType] = true
		}
	}
	return len(metrics), nil
}

func (m *mockProactiveInsightRepository) Upsert(ctx context.Context, insight *models.ProactiveInsight) (*models.ProactiveInsight, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	key := insightKey(insight.UserID, insight.MetricType, insight.MetricDate)
	stored := *insight
	if existing, ok := m.insights[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		m.nextID++
		stored.ID = fmt.Sprintf("insight-%d", m.nextID)
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = time.Now()
	m.insights[key] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockProactiveInsightRepository) GetUnreadByUserID(ctx context.Context, userID string) ([]models.ProactiveInsight, error) {
	var result []models.ProactiveInsight
	for _, ins := range m.insights {
		if ins.UserID == userID && !ins.Read {
			result = append(result, *ins)
		}
	}
	return result, nil
}

func (m *mockProactiveInsightRepository) MarkRead(ctx context.Context, userID, insightID string) error {
	for _, ins := range m.insights {
		if ins.UserID == userID && ins.ID == insightID {
			ins.Read = true
			return nil
		}
	}
	return nil
}

// mockMessageGenerator returns a canned message or error
type mockMessageGenerator struct {
	message string
	err     error
	calls   int
}

func (m *mockMessageGenerator) GenerateInsightMessage(ctx context.Context, userName string, comparison models.MetricComparison) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.message, nil
}

// healthRow builds a test row offset days back from today
func healthRow(userID string, daysAgo int, dataType string, mutate func(*models.DailyMetricRecord)) models.DailyMetricRecord {
	row := models.DailyMetricRecord{
		UserID:   userID,
		Date:     truncateToDay(time.Now()).AddDate(0, 0, -daysAgo),
		DataType: dataType,
	}
	if mutate != nil {
		mutate(&row)
	}
	return row
}

func floatPtr(v float64) *float64 { return &v }
