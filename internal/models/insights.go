package models

import "time"

// Sentiment is the tone of a daily insight
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentConcern  Sentiment = "concern"
)

// DailyInsight is the rule engine's output for the home screen. It is a
// value object selected per request and never persisted.
type DailyInsight struct {
	ID               string      `json:"id"`
	Text             string      `json:"text"`
	Sentiment        Sentiment   `json:"sentiment"`
	Metric           *MetricType `json:"metric,omitempty"`
	LearnMoreContext *string     `json:"learn_more_context,omitempty"`
}

// TodayMetrics carries the current day's values as shown to the rule engines.
// Any field may be nil when the wearable has not reported it yet.
type TodayMetrics struct {
	Steps        *float64 `json:"steps,omitempty"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *string  `json:"sleep_quality,omitempty"` // "excellent", "good", "poor"
	HRV          *float64 `json:"hrv,omitempty"`
	RHR          *float64 `json:"rhr,omitempty"`
	Recovery     *float64 `json:"recovery,omitempty"`
	StressLevel  *string  `json:"stress_level,omitempty"` // "high", "moderate", "rest"
}

// MetricTrends holds this week's deltas against the prior week's averages.
// Positive means the metric went up.
type MetricTrends struct {
	RHRDelta        *float64 `json:"rhr_delta,omitempty"`
	SleepHoursDelta *float64 `json:"sleep_hours_delta,omitempty"`
	StepsDelta      *float64 `json:"steps_delta,omitempty"`
	HRVDelta        *float64 `json:"hrv_delta,omitempty"`
}

// InsightContext is everything a daily-insight rule may look at
type InsightContext struct {
	Metrics        TodayMetrics `json:"metrics"`
	Trends         MetricTrends `json:"trends"`
	StreakDays     int          `json:"streak_days"`
	DaysOnPlatform int          `json:"days_on_platform"`
}

// InsightType classifies a proactive insight
type InsightType string

const (
	InsightTypeConcern       InsightType = "concern"
	InsightTypeMilestone     InsightType = "milestone"
	InsightTypeNotableChange InsightType = "notable_change"
	InsightTypePattern       InsightType = "pattern"
)

// InsightPriority orders proactive insights for display
type InsightPriority string

const (
	PriorityLow    InsightPriority = "low"
	PriorityMedium InsightPriority = "medium"
	PriorityHigh   InsightPriority = "high"
)

// ProactiveInsight is a stored, deduplicated notification about a notable
// change in a user's daily data. At most one row exists per
// (user, metric type, metric date); refreshed data updates it in place.
type ProactiveInsight struct {
	ID             string          `json:"id,omitempty"`
	UserID         string          `json:"user_id"`
	Message        string          `json:"message"`
	InsightType    InsightType     `json:"insight_type"`
	Priority       InsightPriority `json:"priority"`
	MetricType     MetricType      `json:"metric_type"`
	MetricDate     time.Time       `json:"metric_date"`
	TodayValue     *float64        `json:"today_value,omitempty"`
	YesterdayValue *float64        `json:"yesterday_value,omitempty"`
	BaselineValue  *float64        `json:"baseline_value,omitempty"`
	Read           bool            `json:"read"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

// ChangeDirection describes a dual-comparison delta after deadbanding
type ChangeDirection string

const (
	ChangeUp    ChangeDirection = "up"
	ChangeDown  ChangeDirection = "down"
	ChangeSame  ChangeDirection = "same"
	ChangeAbove ChangeDirection = "above"
	ChangeBelow ChangeDirection = "below"
	ChangeAt    ChangeDirection = "at"
)

// MetricComparison is the structured dual comparison handed to the
// message generator: today vs yesterday and today vs the 7-day baseline.
type MetricComparison struct {
	Metric                 MetricType      `json:"metric"`
	TodayValue             float64         `json:"today_value"`
	YesterdayValue         *float64        `json:"yesterday_value,omitempty"`
	BaselineValue          *float64        `json:"baseline_value,omitempty"`
	PercentChangeYesterday *float64        `json:"percent_change_yesterday,omitempty"`
	DirectionYesterday     ChangeDirection `json:"direction_yesterday"`
	PercentChangeBaseline  *float64        `json:"percent_change_baseline,omitempty"`
	DirectionBaseline      ChangeDirection `json:"direction_baseline"`
}
