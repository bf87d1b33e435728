package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vitalhq/vital/backend/internal/models"
)

// errInapplicable marks a rule that cannot be evaluated against the current
// context (missing data). The rule is skipped, not treated as a failure.
var errInapplicable = errors.New("rule inapplicable")

// insightRule is one row of the priority-ordered rule table. Lower priority
// wins. Condition may return an error (or panic) to mean "inapplicable";
// evaluation then moves on to the next rule.
type insightRule struct {
	id        string
	priority  int
	metric    *models.MetricType
	condition func(ctx *models.InsightContext) (bool, error)
	generate  func(ctx *models.InsightContext) models.DailyInsight
}

type insightRuleService struct {
	rules []insightRule
}

// NewInsightRuleService creates the daily insight engine with the standard
// rule catalog, sorted once by ascending priority
func NewInsightRuleService() InsightRuleService {
	return newInsightRuleEngine(defaultInsightRules())
}

func newInsightRuleEngine(rules []insightRule) *insightRuleService {
	sorted := make([]insightRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].priority < sorted[j].priority })
	return &insightRuleService{rules: sorted}
}

func (s *insightRuleService) GenerateDailyInsight(rctx *models.InsightContext) *models.DailyInsight {
	for i := range s.rules {
		rule := &s.rules[i]
		if !ruleMatches(rule, rctx) {
			continue
		}
		if insight, ok := ruleGenerate(rule, rctx); ok {
			return &insight
		}
	}
	// Unreachable as long as the catch-all rule is present
	return &models.DailyInsight{ID: "fallback", Text: "Keep checking in — insights appear as your data builds up.", Sentiment: models.SentimentNeutral}
}

func (s *insightRuleService) GenerateMultipleInsights(rctx *models.InsightContext, limit int) []models.DailyInsight {
	if limit <= 0 {
		return nil
	}

	insights := make([]models.DailyInsight, 0, limit)
	seenMetrics := make(map[models.MetricType]bool)
	seenRules := make(map[string]bool)

	for i := range s.rules {
		if len(insights) >= limit {
			break
		}
		rule := &s.rules[i]

		// Dedup by metric where the rule targets one, by rule id otherwise
		if rule.metric != nil && seenMetrics[*rule.metric] {
			continue
		}
		if rule.metric == nil && seenRules[rule.id] {
			continue
		}

		if !ruleMatches(rule, rctx) {
			continue
		}
		insight, ok := ruleGenerate(rule, rctx)
		if !ok {
			continue
		}

		insights = append(insights, insight)
		if rule.metric != nil {
			seenMetrics[*rule.metric] = true
		} else {
			seenRules[rule.id] = true
		}
	}

	return insights
}

// ruleMatches evaluates a condition, absorbing errors and panics as no-match
func ruleMatches(rule *insightRule, rctx *models.InsightContext) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()

	ok, err := rule.condition(rctx)
	if err != nil {
		return false
	}
	return ok
}

// ruleGenerate builds the rule's output, absorbing panics so a faulty
// generator skips the rule instead of crashing the engine
func ruleGenerate(rule *insightRule, rctx *models.InsightContext) (insight models.DailyInsight, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return rule.generate(rctx), true
}

func metricPtr(m models.MetricType) *models.MetricType { return &m }

func strPtr(s string) *string { return &s }

// defaultInsightRules is the standard catalog: streak milestones, then
// week-over-week trend deltas, then today's absolute thresholds, then
// generic fallbacks
func defaultInsightRules() []insightRule {
	return []insightRule{
		{
			id:       "streak_30",
			priority: 1,
			condition: func(c *models.InsightContext) (bool, error) {
				return c.StreakDays == 30, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "streak_30",
					Text:      "30 days in a row. A month of showing up for yourself — that's a real habit now.",
					Sentiment: models.SentimentPositive,
				}
			},
		},
		{
			id:       "streak_14",
			priority: 2,
			condition: func(c *models.InsightContext) (bool, error) {
				return c.StreakDays == 14, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "streak_14",
					Text:      "Two full weeks of check-ins. Consistency like this is where the trends start to mean something.",
					Sentiment: models.SentimentPositive,
				}
			},
		},
		{
			id:       "streak_7",
			priority: 3,
			condition: func(c *models.InsightContext) (bool, error) {
				return c.StreakDays == 7, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "streak_7",
					Text:      "Seven days straight! One week of data is enough to start seeing your patterns.",
					Sentiment: models.SentimentPositive,
				}
			},
		},
		{
			id:       "rhr_drop",
			priority: 10,
			metric:   metricPtr(models.MetricRHR),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Trends.RHRDelta == nil {
					return false, errInapplicable
				}
				return *c.Trends.RHRDelta <= -3, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:               "rhr_drop",
					Text:             fmt.Sprintf("Your resting heart rate is down %.0f bpm from last week — your body is adapting well.", -*c.Trends.RHRDelta),
					Sentiment:        models.SentimentPositive,
					Metric:           metricPtr(models.MetricRHR),
					LearnMoreContext: strPtr("why a falling resting heart rate is a good sign"),
				}
			},
		},
		{
			id:       "rhr_rise",
			priority: 11,
			metric:   metricPtr(models.MetricRHR),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Trends.RHRDelta == nil {
					return false, errInapplicable
				}
				return *c.Trends.RHRDelta >= 5, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:               "rhr_rise",
					Text:             fmt.Sprintf("Your resting heart rate is up %.0f bpm vs last week. Stress, poor sleep, or an oncoming illness can all do this — worth taking it easy.", *c.Trends.RHRDelta),
					Sentiment:        models.SentimentConcern,
					Metric:           metricPtr(models.MetricRHR),
					LearnMoreContext: strPtr("what a rising resting heart rate can mean"),
				}
			},
		},
		{
			id:       "sleep_trend_up",
			priority: 12,
			metric:   metricPtr(models.MetricSleepHours),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Trends.SleepHoursDelta == nil {
					return false, errInapplicable
				}
				return *c.Trends.SleepHoursDelta >= 0.5, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "sleep_trend_up",
					Text:      fmt.Sprintf("You're averaging %.1f more hours of sleep than last week. Keep protecting that bedtime.", *c.Trends.SleepHoursDelta),
					Sentiment: models.SentimentPositive,
					Metric:    metricPtr(models.MetricSleepHours),
				}
			},
		},
		{
			id:       "steps_trend_up",
			priority: 13,
			metric:   metricPtr(models.MetricSteps),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Trends.StepsDelta == nil {
					return false, errInapplicable
				}
				return *c.Trends.StepsDelta >= 2000, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "steps_trend_up",
					Text:      fmt.Sprintf("You're walking about %.0f more steps a day than last week. That adds up fast.", *c.Trends.StepsDelta),
					Sentiment: models.SentimentPositive,
					Metric:    metricPtr(models.MetricSteps),
				}
			},
		},
		{
			id:       "hrv_trend_up",
			priority: 14,
			metric:   metricPtr(models.MetricHRV),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Trends.HRVDelta == nil {
					return false, errInapplicable
				}
				return *c.Trends.HRVDelta >= 5, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:               "hrv_trend_up",
					Text:             fmt.Sprintf("Your HRV is up %.0f ms over last week — a sign your recovery capacity is improving.", *c.Trends.HRVDelta),
					Sentiment:        models.SentimentPositive,
					Metric:           metricPtr(models.MetricHRV),
					LearnMoreContext: strPtr("what heart rate variability says about recovery"),
				}
			},
		},
		{
			id:       "recovery_peak",
			priority: 20,
			metric:   metricPtr(models.MetricRecovery),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *c.Metrics.Recovery >= 90, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "recovery_peak",
					Text:      fmt.Sprintf("Recovery at %.0f%% — your body is primed. If you've been saving a hard workout, today is the day.", *c.Metrics.Recovery),
					Sentiment: models.SentimentPositive,
					Metric:    metricPtr(models.MetricRecovery),
				}
			},
		},
		{
			id:       "recovery_solid",
			priority: 21,
			metric:   metricPtr(models.MetricRecovery),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *c.Metrics.Recovery >= 70 && *c.Metrics.Recovery < 90, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "recovery_solid",
					Text:      fmt.Sprintf("Solid %.0f%% recovery today. A normal training day should feel good.", *c.Metrics.Recovery),
					Sentiment: models.SentimentNeutral,
					Metric:    metricPtr(models.MetricRecovery),
				}
			},
		},
		{
			id:       "recovery_low",
			priority: 22,
			metric:   metricPtr(models.MetricRecovery),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.Recovery == nil {
					return false, errInapplicable
				}
				return *c.Metrics.Recovery <= 30, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:               "recovery_low",
					Text:             fmt.Sprintf("Recovery is at %.0f%% — your body is asking for rest. A walk or stretching beats a hard session today.", *c.Metrics.Recovery),
					Sentiment:        models.SentimentConcern,
					Metric:           metricPtr(models.MetricRecovery),
					LearnMoreContext: strPtr("how to spend a low-recovery day"),
				}
			},
		},
		{
			id:       "sleep_short",
			priority: 23,
			metric:   metricPtr(models.MetricSleepHours),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.SleepHours == nil {
					return false, errInapplicable
				}
				return *c.Metrics.SleepHours < 6, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "sleep_short",
					Text:      fmt.Sprintf("Only %.1f hours of sleep last night. Go easy on yourself today and aim for an earlier night.", *c.Metrics.SleepHours),
					Sentiment: models.SentimentConcern,
					Metric:    metricPtr(models.MetricSleepHours),
				}
			},
		},
		{
			id:       "sleep_great",
			priority: 24,
			metric:   metricPtr(models.MetricSleepHours),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.SleepHours == nil {
					return false, errInapplicable
				}
				excellent := c.Metrics.SleepQuality != nil && *c.Metrics.SleepQuality == "excellent"
				return *c.Metrics.SleepHours >= 7.5 && excellent, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "sleep_great",
					Text:      fmt.Sprintf("%.1f hours of excellent sleep — whatever you did last night, do it again.", *c.Metrics.SleepHours),
					Sentiment: models.SentimentPositive,
					Metric:    metricPtr(models.MetricSleepHours),
				}
			},
		},
		{
			id:       "stress_high",
			priority: 25,
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.StressLevel == nil {
					return false, errInapplicable
				}
				return *c.Metrics.StressLevel == "high", nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:               "stress_high",
					Text:             "Your stress markers are running high today. Even five minutes of slow breathing can move the needle.",
					Sentiment:        models.SentimentConcern,
					LearnMoreContext: strPtr("quick ways to bring stress down"),
				}
			},
		},
		{
			id:       "stress_rest",
			priority: 25,
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.StressLevel == nil {
					return false, errInapplicable
				}
				return *c.Metrics.StressLevel == "rest", nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "stress_rest",
					Text:      "Your body is nicely settled today — low stress across the board.",
					Sentiment: models.SentimentPositive,
				}
			},
		},
		{
			id:       "steps_goal",
			priority: 25,
			metric:   metricPtr(models.MetricSteps),
			condition: func(c *models.InsightContext) (bool, error) {
				if c.Metrics.Steps == nil {
					return false, errInapplicable
				}
				return *c.Metrics.Steps >= 10000, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "steps_goal",
					Text:      fmt.Sprintf("%.0f steps — you cleared the 10k mark today. Nice work.", *c.Metrics.Steps),
					Sentiment: models.SentimentPositive,
					Metric:    metricPtr(models.MetricSteps),
				}
			},
		},
		{
			id:       "has_data",
			priority: 100,
			condition: func(c *models.InsightContext) (bool, error) {
				m := c.Metrics
				return m.Steps != nil || m.SleepHours != nil || m.HRV != nil || m.RHR != nil || m.Recovery != nil, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "has_data",
					Text:      "Nothing unusual in today's numbers — steady is good. Keep the streak going.",
					Sentiment: models.SentimentNeutral,
				}
			},
		},
		{
			id:       "no_data",
			priority: 999,
			condition: func(c *models.InsightContext) (bool, error) {
				return true, nil
			},
			generate: func(c *models.InsightContext) models.DailyInsight {
				return models.DailyInsight{
					ID:        "no_data",
					Text:      "No wearable data yet today. Sync your device to see what your body is telling you.",
					Sentiment: models.SentimentNeutral,
				}
			},
		},
	}
}
