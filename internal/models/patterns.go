package models

import "time"

// PatternType classifies a detected pattern
type PatternType string

const (
	PatternTypeCorrelation PatternType = "correlation"
)

// Direction indicates the sign of a detected relationship
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// DetectedPattern represents a statistically significant relationship
// between two metrics, persisted per (user, pattern type, metric pair, lag).
type DetectedPattern struct {
	ID           string      `json:"id,omitempty"`
	UserID       string      `json:"user_id"`
	PatternType  PatternType `json:"pattern_type"`
	MetricA      MetricType  `json:"metric_a"`
	MetricB      *MetricType `json:"metric_b,omitempty"`
	Description  string      `json:"description"`
	Correlation  *float64    `json:"correlation,omitempty"`
	Confidence   float64     `json:"confidence"`
	TimeLagDays  int         `json:"time_lag_days"`
	Direction    *Direction  `json:"direction,omitempty"`
	IsActive     bool        `json:"is_active"`
	LastObserved time.Time   `json:"last_observed"`
	SampleSize   int         `json:"sample_size"`
	CreatedAt    time.Time   `json:"created_at,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
}

// PatternsResponse is the API payload for active patterns
type PatternsResponse struct {
	Patterns   []DetectedPattern `json:"patterns"`
	Recomputed bool              `json:"recomputed"`
	ComputedAt *time.Time        `json:"computed_at,omitempty"`
}
