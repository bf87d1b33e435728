package service

import (
	"context"
	"time"

	"github.com/vitalhq/vital/backend/internal/logger"
	"github.com/vitalhq/vital/backend/internal/repository"
)

// streakLookbackDays bounds the streak walk; anything longer than this
// reports as the maximum
const streakLookbackDays = 90

type streakService struct {
	healthRepo repository.HealthDailyRepository
}

// NewStreakService creates a new streak service
func NewStreakService(healthRepo repository.HealthDailyRepository) StreakService {
	return &streakService{healthRepo: healthRepo}
}

// CurrentStreak counts consecutive calendar days with any wearable data,
// ending today or yesterday. A missed sync today does not break the streak
// until a full day has passed.
func (s *streakService) CurrentStreak(ctx context.Context, userID string) int {
	now := time.Now()
	startDate := now.AddDate(0, 0, -streakLookbackDays)

	rows, err := s.healthRepo.GetByUserIDAndDateRange(ctx, userID, startDate, now)
	if err != nil {
		logger.Ctx(ctx).Warn("streak fetch failed, reporting zero",
			logger.Err(err),
			logger.String("user_id", userID),
		)
		return 0
	}

	dates := make(map[string]bool, len(rows))
	for i := range rows {
		dates[rows[i].Date.Format("2006-01-02")] = true
	}

	day := truncateToDay(now)
	if !dates[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for dates[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}
