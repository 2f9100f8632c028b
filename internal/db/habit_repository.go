package db

import (
	"github.com/atomizehq/atomize/internal/models"
	"gorm.io/gorm"
)

var habitUpdatableFields = []string{
	"habit_name",
	"description",
	"frequency_type",
	"frequency_value",
	"target_count",
	"unit",
	"reminder_enabled",
	"reminder_time",
	"reminder_days",
	"difficulty_level",
	"category",
	"color",
	"icon",
	"is_public",
	"is_active",
	"end_date",
}

var habitJSONColumns = []string{"reminder_days"}

type HabitRepository struct {
	database *gorm.DB
}

func NewHabitRepository(database *gorm.DB) *HabitRepository {
	return &HabitRepository{database: database}
}

func (repo *HabitRepository) ListByUser(userID uint, activeOnly bool) ([]models.Habit, error) {
	query := repo.database.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	habits := make([]models.Habit, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&habits).Error; err != nil {
		return nil, err
	}
	if err := repo.fillIdentityNames(habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// ListByIdentity keeps returning habits that reference a soft-deleted
// identity; the reference is left dangling on identity removal.
func (repo *HabitRepository) ListByIdentity(identityID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.
		Where("identity_id = ?", identityID).
		Order("created_at DESC, id DESC").
		Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) FindByID(habitID uint) (models.Habit, bool, error) {
	var habit models.Habit
	result := repo.database.Limit(1).Find(&habit, "id = ?", habitID)
	if result.Error != nil {
		return models.Habit{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Habit{}, false, nil
	}
	single := []models.Habit{habit}
	if err := repo.fillIdentityNames(single); err != nil {
		return models.Habit{}, false, err
	}
	return single[0], true, nil
}

func (repo *HabitRepository) FindByIDWithStats(habitID uint) (models.Habit, bool, error) {
	habit, found, err := repo.FindByID(habitID)
	if err != nil || !found {
		return habit, found, err
	}

	var total int64
	if err := repo.database.Model(&models.Completion{}).
		Where("habit_id = ?", habitID).
		Count(&total).Error; err != nil {
		return models.Habit{}, false, err
	}
	habit.TotalCompletions = total

	var latest models.Completion
	result := repo.database.
		Where("habit_id = ?", habitID).
		Order("completion_date DESC").
		Limit(1).
		Find(&latest)
	if result.Error != nil {
		return models.Habit{}, false, result.Error
	}
	if result.RowsAffected > 0 {
		habit.LastCompletionDate = &latest.CompletionDate
	}
	return habit, true, nil
}

func (repo *HabitRepository) Create(habit *models.Habit) error {
	return repo.database.Create(habit).Error
}

func (repo *HabitRepository) UpdateAllowed(habitID uint, payload map[string]any) error {
	updates, err := filterAllowedUpdates(payload, habitUpdatableFields, habitJSONColumns)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.database.Model(&models.Habit{}).Where("id = ?", habitID).Updates(updates).Error
}

func (repo *HabitRepository) SoftDelete(habitID uint) (bool, error) {
	result := repo.database.Delete(&models.Habit{}, habitID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStreak persists the recomputed running streak. best_streak only
// ever ratchets upward.
func (repo *HabitRepository) UpdateStreak(habitID uint, streakCount int) error {
	return repo.database.Model(&models.Habit{}).
		Where("id = ?", habitID).
		Updates(map[string]any{
			"streak_count": streakCount,
			"best_streak":  gorm.Expr("MAX(best_streak, ?)", streakCount),
		}).Error
}

func (repo *HabitRepository) CountActiveByUser(userID uint) (int64, error) {
	var total int64
	if err := repo.database.Model(&models.Habit{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MaxActiveStreak is the profile streak: the largest stored streak among
// the user's active habits, not a recomputation from completion history.
func (repo *HabitRepository) MaxActiveStreak(userID uint) (int, error) {
	var row struct {
		MaxStreak *int `gorm:"column:max_streak"`
	}
	if err := repo.database.Model(&models.Habit{}).
		Select("MAX(streak_count) AS max_streak").
		Where("user_id = ? AND is_active = ?", userID, true).
		Scan(&row).Error; err != nil {
		return 0, err
	}
	if row.MaxStreak == nil {
		return 0, nil
	}
	return *row.MaxStreak, nil
}

type habitIdentityName struct {
	ID           uint   `gorm:"column:id"`
	IdentityName string `gorm:"column:identity_name"`
}

func (repo *HabitRepository) fillIdentityNames(habits []models.Habit) error {
	identityIDs := make([]uint, 0, len(habits))
	for _, habit := range habits {
		if habit.IdentityID != nil {
			identityIDs = append(identityIDs, *habit.IdentityID)
		}
	}
	if len(identityIDs) == 0 {
		return nil
	}

	names := make([]habitIdentityName, 0, len(identityIDs))
	if err := repo.database.Model(&models.Identity{}).
		Select("id, identity_name").
		Where("id IN ?", identityIDs).
		Scan(&names).Error; err != nil {
		return err
	}

	byID := make(map[uint]string, len(names))
	for _, name := range names {
		byID[name.ID] = name.IdentityName
	}
	for index := range habits {
		if habits[index].IdentityID != nil {
			habits[index].IdentityName = byID[*habits[index].IdentityID]
		}
	}
	return nil
}
