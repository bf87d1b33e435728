package models

import "time"

// CheckInOption is one multiple-choice reply a user can tap
type CheckInOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Emoji string `json:"emoji,omitempty"`
}

// CheckInContext is the selected check-in prompt. Ephemeral; the chat
// layer renders it and records the user's reply elsewhere.
type CheckInContext struct {
	Question    string          `json:"question"`
	Options     []CheckInOption `json:"options"`
	ContextType string          `json:"context_type"`
}

// CheckInInput is everything a check-in rule may look at
type CheckInInput struct {
	Metrics     TodayMetrics `json:"metrics"`
	StreakDays  int          `json:"streak_days"`
	LastCheckIn *time.Time   `json:"last_check_in,omitempty"`
	Now         time.Time    `json:"now"`
}
