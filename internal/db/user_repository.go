package db

import (
	"strings"
	"time"

	"github.com/atomizehq/atomize/internal/models"
	"gorm.io/gorm"
)

var userUpdatableFields = []string{
	"username",
	"full_name",
	"avatar_url",
	"phone_number",
	"timezone",
	"locale",
}

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) Ping() error {
	var one int
	return repo.database.Raw(`SELECT 1`).Scan(&one).Error
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) FindByID(userID uint) (models.User, bool, error) {
	var user models.User
	result := repo.database.Limit(1).Find(&user, "id = ?", userID)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	return user, result.RowsAffected > 0, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, bool, error) {
	var user models.User
	result := repo.database.Limit(1).Find(&user, "lower(trim(email)) = ?", normalizeEmail(email))
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	return user, result.RowsAffected > 0, nil
}

// ExistsByNormalizedEmail includes soft-deleted rows: the unique index on
// users.email spans them, so a deleted account still holds its email.
func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Unscoped().Model(&models.User{}).
		Where("lower(trim(email)) = ?", normalizeEmail(email)).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ExistsByUsername includes soft-deleted rows for the same reason.
func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	var matched int64
	if err := repo.database.Unscoped().Model(&models.User{}).
		Where("username = ?", username).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// Search matches usernames, emails and display names for squad invites.
func (repo *UserRepository) Search(term string, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 20
	}
	users := make([]models.User, 0)
	pattern := "%" + strings.TrimSpace(term) + "%"
	if err := repo.database.
		Where("username LIKE ? OR email LIKE ? OR full_name LIKE ?", pattern, pattern, pattern).
		Order("username ASC, id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) UpdateAllowed(userID uint, payload map[string]any) error {
	updates, err := filterAllowedUpdates(payload, userUpdatableFields, nil)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (repo *UserRepository) TouchLastLogin(userID uint, at time.Time) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", at).Error
}

// SoftDelete stamps deleted_at. Deleting an already-deleted user affects no
// rows and reports found = false; the caller maps that to not-found.
func (repo *UserRepository) SoftDelete(userID uint) (bool, error) {
	result := repo.database.Delete(&models.User{}, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *UserRepository) Stats(userID uint) (models.UserStats, error) {
	var stats models.UserStats
	if err := repo.database.Model(&models.Identity{}).
		Where("user_id = ?", userID).Count(&stats.TotalIdentities).Error; err != nil {
		return models.UserStats{}, err
	}
	if err := repo.database.Model(&models.Habit{}).
		Where("user_id = ?", userID).Count(&stats.TotalHabits).Error; err != nil {
		return models.UserStats{}, err
	}
	if err := repo.database.Model(&models.Completion{}).
		Where("user_id = ?", userID).Count(&stats.TotalCompletions).Error; err != nil {
		return models.UserStats{}, err
	}
	if err := repo.database.Model(&models.SquadMember{}).
		Where("user_id = ? AND is_active = ?", userID, true).Count(&stats.TotalSquads).Error; err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
