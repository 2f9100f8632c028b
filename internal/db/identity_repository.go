package db

import (
	"github.com/atomizehq/atomize/internal/models"
	"gorm.io/gorm"
)

var identityUpdatableFields = []string{
	"identity_name",
	"description",
	"vision_statement",
	"core_values",
	"is_primary",
	"color_theme",
	"icon",
	"display_order",
	"is_active",
}

var identityJSONColumns = []string{"core_values"}

type IdentityRepository struct {
	database *gorm.DB
}

func NewIdentityRepository(database *gorm.DB) *IdentityRepository {
	return &IdentityRepository{database: database}
}

func (repo *IdentityRepository) ListByUser(userID uint) ([]models.Identity, error) {
	identities := make([]models.Identity, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("display_order ASC, created_at ASC").
		Find(&identities).Error; err != nil {
		return nil, err
	}
	if err := repo.fillHabitCounts(identities); err != nil {
		return nil, err
	}
	return identities, nil
}

func (repo *IdentityRepository) FindByID(identityID uint) (models.Identity, bool, error) {
	var identity models.Identity
	result := repo.database.Limit(1).Find(&identity, "id = ?", identityID)
	if result.Error != nil {
		return models.Identity{}, false, result.Error
	}
	return identity, result.RowsAffected > 0, nil
}

func (repo *IdentityRepository) FindByIDWithStats(identityID uint) (models.Identity, bool, error) {
	identity, found, err := repo.FindByID(identityID)
	if err != nil || !found {
		return identity, found, err
	}
	single := []models.Identity{identity}
	if err := repo.fillHabitCounts(single); err != nil {
		return models.Identity{}, false, err
	}
	return single[0], true, nil
}

// Create inserts the identity. When it arrives flagged primary, every
// sibling loses the flag inside the same transaction so at most one
// identity per user ever carries it.
func (repo *IdentityRepository) Create(identity *models.Identity) error {
	if !identity.IsPrimary {
		return repo.database.Create(identity).Error
	}
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Identity{}).
			Where("user_id = ?", identity.UserID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Create(identity).Error
	})
}

func (repo *IdentityRepository) UpdateAllowed(identityID uint, userID uint, payload map[string]any) error {
	updates, err := filterAllowedUpdates(payload, identityUpdatableFields, identityJSONColumns)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	makePrimary, _ := updates["is_primary"].(bool)
	if !makePrimary {
		return repo.database.Model(&models.Identity{}).
			Where("id = ?", identityID).Updates(updates).Error
	}

	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Identity{}).
			Where("user_id = ? AND id <> ?", userID, identityID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Identity{}).
			Where("id = ?", identityID).Updates(updates).Error
	})
}

func (repo *IdentityRepository) SoftDelete(identityID uint) (bool, error) {
	result := repo.database.Delete(&models.Identity{}, identityID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type identityHabitCount struct {
	IdentityID uint  `gorm:"column:identity_id"`
	Total      int64 `gorm:"column:total"`
}

func (repo *IdentityRepository) fillHabitCounts(identities []models.Identity) error {
	if len(identities) == 0 {
		return nil
	}

	identityIDs := make([]uint, 0, len(identities))
	for _, identity := range identities {
		identityIDs = append(identityIDs, identity.ID)
	}

	counts := make([]identityHabitCount, 0, len(identityIDs))
	if err := repo.database.Model(&models.Habit{}).
		Select("identity_id, COUNT(*) AS total").
		Where("identity_id IN ?", identityIDs).
		Group("identity_id").
		Scan(&counts).Error; err != nil {
		return err
	}

	totals := make(map[uint]int64, len(counts))
	for _, count := range counts {
		totals[count.IdentityID] = count.Total
	}
	for index := range identities {
		identities[index].HabitsCount = totals[identities[index].ID]
	}
	return nil
}
