package services

import (
	"time"

	"github.com/atomizehq/atomize/internal/models"
)

// StreakCompletionReader lists a habit's completion dates newest-first.
type StreakCompletionReader interface {
	DatesByHabit(habitID uint) ([]string, error)
}

// StreakHabitWriter persists the recomputed streak; best_streak ratchets
// inside the store.
type StreakHabitWriter interface {
	UpdateStreak(habitID uint, streakCount int) error
}

// StreakService keeps each habit's streak_count current. It runs after
// every completion mutation so stats reads never have to walk completion
// history.
type StreakService struct {
	completions StreakCompletionReader
	habits      StreakHabitWriter
}

func NewStreakService(completions StreakCompletionReader, habits StreakHabitWriter) *StreakService {
	return &StreakService{completions: completions, habits: habits}
}

func (service *StreakService) Recalculate(habitID uint) error {
	dates, err := service.completions.DatesByHabit(habitID)
	if err != nil {
		return err
	}
	return service.habits.UpdateStreak(habitID, CurrentStreak(dates))
}

// CurrentStreak counts the consecutive-day run ending at the most recent
// completion. Dates arrive newest-first as YYYY-MM-DD strings; malformed
// or duplicate entries break the run rather than corrupting the count.
func CurrentStreak(datesNewestFirst []string) int {
	if len(datesNewestFirst) == 0 {
		return 0
	}

	previous, err := time.Parse(models.DateLayout, datesNewestFirst[0])
	if err != nil {
		return 0
	}

	streak := 1
	for _, raw := range datesNewestFirst[1:] {
		day, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			break
		}
		if !day.Equal(previous.AddDate(0, 0, -1)) {
			break
		}
		streak++
		previous = day
	}
	return streak
}
