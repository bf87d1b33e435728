package service

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/vitalhq/vital/backend/internal/models"
)

// checkInRule is one row of the check-in rule table, same shape and
// evaluation semantics as the daily insight rules
type checkInRule struct {
	id        string
	priority  int
	condition func(in *models.CheckInInput) (bool, error)
	generate  func(in *models.CheckInInput) models.CheckInContext
}

type checkInService struct {
	rules []checkInRule
}

// NewCheckInService creates the check-in selection engine
func NewCheckInService() CheckInService {
	rules := defaultCheckInRules()
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].priority < rules[j].priority })
	return &checkInService{rules: rules}
}

func (s *checkInService) GenerateCheckInContext(input *models.CheckInInput) *models.CheckInContext {
	for i := range s.rules {
		rule := &s.rules[i]
		if !checkInMatches(rule, input) {
			continue
		}
		if out, ok := checkInGenerate(rule, input); ok {
			return &out
		}
	}
	fallback := fallbackCheckIn()
	return &fallback
}

// acknowledgements vary the reply wording only; the substance of what was
// acknowledged is fixed per context type
var acknowledgements = map[string][]string{
	"positive": {
		"Love to hear it!",
		"That's what we like to see.",
		"Great — noted.",
	},
	"neutral": {
		"Got it, thanks for checking in.",
		"Noted — see you tomorrow.",
		"Thanks for the update.",
	},
	"concern": {
		"Thanks for being honest — rest counts as progress too.",
		"Noted. Be kind to yourself today.",
		"Got it. We'll keep an eye on this together.",
	},
}

func (s *checkInService) AcknowledgementReply(contextType, answer string) string {
	tone := "neutral"
	switch answer {
	case "great", "energized", "rested":
		tone = "positive"
	case "exhausted", "stressed", "sore", "rough":
		tone = "concern"
	}

	replies := acknowledgements[tone]
	return replies[rand.Intn(len(replies))]
}

func checkInMatches(rule *checkInRule, in *models.CheckInInput) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()

	ok, err := rule.condition(in)
	if err != nil {
		return false
	}
	return ok
}

func checkInGenerate(rule *checkInRule, in *models.CheckInInput) (out models.CheckInContext, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return rule.generate(in), true
}

func fallbackCheckIn() models.CheckInContext {
	return models.CheckInContext{
		Question:    "How are you feeling right now?",
		ContextType: "general",
		Options: []models.CheckInOption{
			{Label: "Great", Value: "great", Emoji: "😄"},
			{Label: "Okay", Value: "okay", Emoji: "🙂"},
			{Label: "Rough", Value: "rough", Emoji: "😮‍💨"},
		},
	}
}

func defaultCheckInRules() []checkInRule {
	return []checkInRule{
		{
			id:       "streak_milestone",
			priority: 1,
			condition: func(in *models.CheckInInput) (bool, error) {
				return in.StreakDays == 7 || in.StreakDays == 14 || in.StreakDays == 30, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    fmt.Sprintf("%d days in a row — how does the streak feel?", in.StreakDays),
					ContextType: "streak_milestone",
					Options: []models.CheckInOption{
						{Label: "Proud of it", Value: "great", Emoji: "🔥"},
						{Label: "Just routine now", Value: "okay"},
						{Label: "Hanging on", Value: "rough", Emoji: "😅"},
					},
				}
			},
		},
		{
			id:       "recovery_high",
			priority: 10,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *in.Metrics.Recovery >= 90, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    fmt.Sprintf("Recovery is at %.0f%% — feeling as good as the numbers say?", *in.Metrics.Recovery),
					ContextType: "recovery_high",
					Options: []models.CheckInOption{
						{Label: "Energized", Value: "energized", Emoji: "⚡"},
						{Label: "Pretty normal", Value: "okay"},
						{Label: "Not really", Value: "rough"},
					},
				}
			},
		},
		{
			id:       "recovery_moderate",
			priority: 11,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *in.Metrics.Recovery >= 50 && *in.Metrics.Recovery < 90, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Middle-of-the-road recovery today. What's the plan?",
					ContextType: "recovery_moderate",
					Options: []models.CheckInOption{
						{Label: "Training anyway", Value: "training", Emoji: "🏋️"},
						{Label: "Something light", Value: "light"},
						{Label: "Taking it off", Value: "rest"},
					},
				}
			},
		},
		{
			id:       "recovery_low",
			priority: 12,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *in.Metrics.Recovery < 50, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Your recovery is low today — how's your body actually feeling?",
					ContextType: "recovery_low",
					Options: []models.CheckInOption{
						{Label: "Exhausted", Value: "exhausted", Emoji: "🥱"},
						{Label: "A bit sore", Value: "sore"},
						{Label: "Fine, honestly", Value: "okay"},
					},
				}
			},
		},
		{
			id:       "sleep_short",
			priority: 20,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.SleepHours == nil {
					return false, errInapplicable
				}
				return *in.Metrics.SleepHours < 6, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    fmt.Sprintf("Short night — %.1f hours. What got in the way of sleep?", *in.Metrics.SleepHours),
					ContextType: "sleep_short",
					Options: []models.CheckInOption{
						{Label: "Stress or worry", Value: "stressed", Emoji: "😰"},
						{Label: "Late night, my choice", Value: "late"},
						{Label: "Couldn't stay asleep", Value: "restless"},
					},
				}
			},
		},
		{
			id:       "sleep_great",
			priority: 21,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.SleepHours == nil {
					return false, errInapplicable
				}
				excellent := in.Metrics.SleepQuality != nil && *in.Metrics.SleepQuality == "excellent"
				return *in.Metrics.SleepHours >= 7.5 && excellent, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "That was a great night of sleep. Feeling the difference this morning?",
					ContextType: "sleep_great",
					Options: []models.CheckInOption{
						{Label: "Very rested", Value: "rested", Emoji: "😌"},
						{Label: "A little", Value: "okay"},
						{Label: "Not really", Value: "rough"},
					},
				}
			},
		},
		{
			id:       "stress_high",
			priority: 30,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.Metrics.StressLevel == nil {
					return false, errInapplicable
				}
				return *in.Metrics.StressLevel == "high", nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Your stress markers are elevated. What's weighing on you today?",
					ContextType: "stress_high",
					Options: []models.CheckInOption{
						{Label: "Work", Value: "stressed", Emoji: "💼"},
						{Label: "Life stuff", Value: "stressed"},
						{Label: "Nothing I can name", Value: "okay"},
					},
				}
			},
		},
		{
			id:       "returning",
			priority: 40,
			condition: func(in *models.CheckInInput) (bool, error) {
				if in.LastCheckIn == nil {
					return false, errInapplicable
				}
				return in.Now.Sub(*in.LastCheckIn) >= 3*24*time.Hour, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Good to see you again — it's been a few days. How have you been?",
					ContextType: "returning",
					Options: []models.CheckInOption{
						{Label: "Doing well", Value: "great", Emoji: "👋"},
						{Label: "Busy week", Value: "okay"},
						{Label: "It's been rough", Value: "rough"},
					},
				}
			},
		},
		{
			id:       "morning",
			priority: 50,
			condition: func(in *models.CheckInInput) (bool, error) {
				return in.Now.Hour() < 12, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Morning! How did you wake up feeling?",
					ContextType: "morning",
					Options: []models.CheckInOption{
						{Label: "Rested", Value: "rested", Emoji: "☀️"},
						{Label: "Okay", Value: "okay"},
						{Label: "Groggy", Value: "rough"},
					},
				}
			},
		},
		{
			id:       "evening",
			priority: 51,
			condition: func(in *models.CheckInInput) (bool, error) {
				return in.Now.Hour() >= 17, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return models.CheckInContext{
					Question:    "Winding down — how did today go?",
					ContextType: "evening",
					Options: []models.CheckInOption{
						{Label: "Good day", Value: "great", Emoji: "🌙"},
						{Label: "Average", Value: "okay"},
						{Label: "Tough one", Value: "rough"},
					},
				}
			},
		},
		{
			id:       "universal",
			priority: 999,
			condition: func(in *models.CheckInInput) (bool, error) {
				return true, nil
			},
			generate: func(in *models.CheckInInput) models.CheckInContext {
				return fallbackCheckIn()
			},
		},
	}
}
