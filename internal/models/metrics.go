package models

import "time"

// MetricType identifies one of the tracked health metrics
type MetricType string

const (
	MetricSteps      MetricType = "steps"
	MetricSleepHours MetricType = "sleep_hours"
	MetricHRV        MetricType = "hrv"
	MetricRHR        MetricType = "rhr"
	MetricRecovery   MetricType = "recovery"
	MetricWeight     MetricType = "weight"
)

// AllMetricTypes lists every metric baselines are computed for, in a fixed order
var AllMetricTypes = []MetricType{
	MetricSteps,
	MetricSleepHours,
	MetricHRV,
	MetricRHR,
	MetricRecovery,
	MetricWeight,
}

// DailyMetricRecord represents one row of raw wearable data per (user, calendar date).
// Rows are written by the ingestion pipeline and are read-only to the analytics core.
// Sleep duration is stored in minutes; everything else is in its natural unit.
type DailyMetricRecord struct {
	ID            string     `json:"id,omitempty"`
	UserID        string     `json:"user_id"`
	Date          time.Time  `json:"date"`
	DataType      string     `json:"data_type"` // "sleep" or "daily"
	Steps         *float64   `json:"steps,omitempty"`
	SleepMinutes  *float64   `json:"sleep_minutes,omitempty"`
	HRVAvg        *float64   `json:"hrv_avg,omitempty"`
	RestingHR     *float64   `json:"resting_hr,omitempty"`
	RecoveryScore *float64   `json:"recovery_score,omitempty"`
	WeightKg      *float64   `json:"weight_kg,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// MetricValue extracts the scalar for the given metric type, converting
// sleep minutes to hours. Returns nil when the row has no value for it.
func (r *DailyMetricRecord) MetricValue(metric MetricType) *float64 {
	switch metric {
	case MetricSteps:
		return r.Steps
	case MetricSleepHours:
		if r.SleepMinutes == nil {
			return nil
		}
		hours := *r.SleepMinutes / 60
		return &hours
	case MetricHRV:
		return r.HRVAvg
	case MetricRHR:
		return r.RestingHR
	case MetricRecovery:
		return r.RecoveryScore
	case MetricWeight:
		return r.WeightKg
	}
	return nil
}

// MetricBaseline holds rolling statistics for one (user, metric type).
// Stats are null when the corresponding window had zero samples; counts
// always report the number of rows actually used.
type MetricBaseline struct {
	ID         string     `json:"id,omitempty"`
	UserID     string     `json:"user_id"`
	MetricType MetricType `json:"metric_type"`

	Avg7d    *float64 `json:"avg_7d,omitempty"`
	Stddev7d *float64 `json:"stddev_7d,omitempty"`
	Min7d    *float64 `json:"min_7d,omitempty"`
	Max7d    *float64 `json:"max_7d,omitempty"`

	Avg14d    *float64 `json:"avg_14d,omitempty"`
	Stddev14d *float64 `json:"stddev_14d,omitempty"`
	Min14d    *float64 `json:"min_14d,omitempty"`
	Max14d    *float64 `json:"max_14d,omitempty"`

	Avg30d    *float64 `json:"avg_30d,omitempty"`
	Stddev30d *float64 `json:"stddev_30d,omitempty"`
	Min30d    *float64 `json:"min_30d,omitempty"`
	Max30d    *float64 `json:"max_30d,omitempty"`

	SampleCount7d  int `json:"sample_count_7d"`
	SampleCount30d int `json:"sample_count_30d"`

	ComputedAt time.Time `json:"computed_at"`
}

// WindowStats is the per-window result produced by the baseline computer
// before it is flattened into a MetricBaseline row.
type WindowStats struct {
	Avg    *float64
	Stddev *float64
	Min    *float64
	Max    *float64
	Count  int
}

// HealthDataPayload is the raw daily summary delivered by the wearable
// ingestion webhook. The embedded timestamp is the metric's own date,
// not the delivery time.
type HealthDataPayload struct {
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Steps         *float64   `json:"steps,omitempty"`
	SleepMinutes  *float64   `json:"sleep_minutes,omitempty"`
	HRVAvg        *float64   `json:"hrv_avg,omitempty"`
	RestingHR     *float64   `json:"resting_hr,omitempty"`
	RecoveryScore *float64   `json:"recovery_score,omitempty"`
}

// MetricValue mirrors DailyMetricRecord.MetricValue for webhook payloads.
// Weight never arrives through the daily summary path.
func (p *HealthDataPayload) MetricValue(metric MetricType) *float64 {
	switch metric {
	case MetricSteps:
		return p.Steps
	case MetricSleepHours:
		if p.SleepMinutes == nil {
			return nil
		}
		hours := *p.SleepMinutes / 60
		return &hours
	case MetricHRV:
		return p.HRVAvg
	case MetricRHR:
		return p.RestingHR
	case MetricRecovery:
		return p.RecoveryScore
	}
	return nil
}
