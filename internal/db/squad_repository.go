package db

import (
	"strings"
	"time"

	"github.com/atomizehq/atomize/internal/models"
	"gorm.io/gorm"
)

var squadUpdatableFields = []string{
	"squad_name",
	"description",
	"squad_type",
	"avatar_url",
	"cover_image_url",
	"max_members",
	"is_active",
	"settings",
}

var squadJSONColumns = []string{"settings"}

type SquadRepository struct {
	database *gorm.DB
}

func NewSquadRepository(database *gorm.DB) *SquadRepository {
	return &SquadRepository{database: database}
}

// ListByUser returns the squads the user actively belongs to, decorated
// with the membership's role and join time, newest membership first.
func (repo *SquadRepository) ListByUser(userID uint) ([]models.Squad, error) {
	memberships := make([]models.SquadMember, 0)
	if err := repo.database.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("joined_at DESC, id DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []models.Squad{}, nil
	}

	squadIDs := make([]uint, 0, len(memberships))
	for _, membership := range memberships {
		squadIDs = append(squadIDs, membership.SquadID)
	}

	squads := make([]models.Squad, 0, len(squadIDs))
	if err := repo.database.Where("id IN ?", squadIDs).Find(&squads).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Squad, len(squads))
	for _, squad := range squads {
		byID[squad.ID] = squad
	}

	decorated := make([]models.Squad, 0, len(memberships))
	for _, membership := range memberships {
		squad, exists := byID[membership.SquadID]
		if !exists {
			continue
		}
		joinedAt := membership.JoinedAt
		squad.Role = membership.Role
		squad.JoinedAt = &joinedAt
		decorated = append(decorated, squad)
	}
	return decorated, nil
}

func (repo *SquadRepository) FindByID(squadID uint) (models.Squad, bool, error) {
	var squad models.Squad
	result := repo.database.Limit(1).Find(&squad, "id = ?", squadID)
	if result.Error != nil {
		return models.Squad{}, false, result.Error
	}
	return squad, result.RowsAffected > 0, nil
}

func (repo *SquadRepository) FindByInviteCode(inviteCode string) (models.Squad, bool, error) {
	var squad models.Squad
	result := repo.database.Limit(1).
		Find(&squad, "invite_code = ? AND is_active = ?", inviteCode, true)
	if result.Error != nil {
		return models.Squad{}, false, result.Error
	}
	return squad, result.RowsAffected > 0, nil
}

func (repo *SquadRepository) ExistsByInviteCode(inviteCode string) (bool, error) {
	var matched int64
	if err := repo.database.Unscoped().Model(&models.Squad{}).
		Where("invite_code = ?", inviteCode).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// Create inserts the squad together with its owner membership and starts
// the denormalized counter at one, all in a single transaction.
func (repo *SquadRepository) Create(squad *models.Squad) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		squad.CurrentMemberCount = 1
		if err := tx.Create(squad).Error; err != nil {
			return err
		}
		ownerMembership := models.SquadMember{
			SquadID:  squad.ID,
			UserID:   squad.OwnerID,
			Role:     models.RoleOwner,
			IsActive: true,
			JoinedAt: time.Now().UTC(),
		}
		return tx.Create(&ownerMembership).Error
	})
}

func (repo *SquadRepository) UpdateAllowed(squadID uint, payload map[string]any) error {
	updates, err := filterAllowedUpdates(payload, squadUpdatableFields, squadJSONColumns)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.database.Model(&models.Squad{}).Where("id = ?", squadID).Updates(updates).Error
}

func (repo *SquadRepository) SoftDelete(squadID uint) (bool, error) {
	result := repo.database.Delete(&models.Squad{}, squadID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *SquadRepository) SearchPublic(term string, limit int) ([]models.Squad, error) {
	if limit <= 0 || limit > 100 {
		limit = models.DefaultSquadSearchCap
	}
	pattern := "%" + strings.TrimSpace(term) + "%"
	squads := make([]models.Squad, 0)
	if err := repo.database.
		Where("squad_type = ? AND is_active = ?", models.SquadTypePublic, true).
		Where("squad_name LIKE ? OR description LIKE ?", pattern, pattern).
		Order("current_member_count DESC, id ASC").
		Limit(limit).
		Find(&squads).Error; err != nil {
		return nil, err
	}
	return squads, nil
}

// FindMembership returns the membership row regardless of its active flag;
// callers decide how inactive rows are treated.
func (repo *SquadRepository) FindMembership(squadID uint, userID uint) (models.SquadMember, bool, error) {
	var membership models.SquadMember
	result := repo.database.Limit(1).
		Find(&membership, "squad_id = ? AND user_id = ?", squadID, userID)
	if result.Error != nil {
		return models.SquadMember{}, false, result.Error
	}
	return membership, result.RowsAffected > 0, nil
}

func (repo *SquadRepository) CreateMembership(membership *models.SquadMember) error {
	return repo.database.Create(membership).Error
}

// ReactivateMembership flips an inactive row back on in place and refreshes
// its join bookkeeping; the (squad_id, user_id) row is never duplicated.
func (repo *SquadRepository) ReactivateMembership(squadID uint, userID uint, invitedBy *uint) error {
	updates := map[string]any{
		"is_active": true,
		"role":      models.RoleMember,
		"joined_at": time.Now().UTC(),
	}
	if invitedBy != nil {
		updates["invited_by"] = *invitedBy
	}
	return repo.database.Model(&models.SquadMember{}).
		Where("squad_id = ? AND user_id = ?", squadID, userID).
		Updates(updates).Error
}

func (repo *SquadRepository) DeactivateMembership(squadID uint, userID uint) (bool, error) {
	result := repo.database.Model(&models.SquadMember{}).
		Where("squad_id = ? AND user_id = ? AND is_active = ?", squadID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateMemberRole skips the is_active filter; role changes on inactive
// members are accepted.
func (repo *SquadRepository) UpdateMemberRole(squadID uint, userID uint, role string) (bool, error) {
	result := repo.database.Model(&models.SquadMember{}).
		Where("squad_id = ? AND user_id = ?", squadID, userID).
		Update("role", role)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdmitIfBelowCapacity bumps current_member_count with a conditional update
// so two racing admissions cannot overshoot max_members: the losing writer
// matches zero rows and the admission is rejected as full.
func (repo *SquadRepository) AdmitIfBelowCapacity(squadID uint) (bool, error) {
	result := repo.database.Model(&models.Squad{}).
		Where("id = ? AND current_member_count < max_members", squadID).
		Update("current_member_count", gorm.Expr("current_member_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *SquadRepository) ReleaseMemberSlot(squadID uint) error {
	return repo.database.Model(&models.Squad{}).
		Where("id = ? AND current_member_count > 0", squadID).
		Update("current_member_count", gorm.Expr("current_member_count - 1")).Error
}

func (repo *SquadRepository) Members(squadID uint) ([]models.SquadMemberProfile, error) {
	memberships := make([]models.SquadMember, 0)
	if err := repo.database.
		Where("squad_id = ? AND is_active = ?", squadID, true).
		Order("role ASC, joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []models.SquadMemberProfile{}, nil
	}

	userIDs := make([]uint, 0, len(memberships))
	for _, membership := range memberships {
		userIDs = append(userIDs, membership.UserID)
	}

	users := make([]models.User, 0, len(userIDs))
	if err := repo.database.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	profiles := make([]models.SquadMemberProfile, 0, len(memberships))
	for _, membership := range memberships {
		user, exists := usersByID[membership.UserID]
		if !exists {
			continue
		}
		profiles = append(profiles, models.SquadMemberProfile{
			UserID:            user.ID,
			Username:          user.Username,
			FullName:          user.FullName,
			AvatarURL:         user.AvatarURL,
			Role:              membership.Role,
			JoinedAt:          membership.JoinedAt,
			ContributionScore: membership.ContributionScore,
		})
	}
	return profiles, nil
}

func (repo *SquadRepository) Stats(squadID uint) (models.SquadStats, error) {
	squad, found, err := repo.FindByID(squadID)
	if err != nil {
		return models.SquadStats{}, err
	}
	stats := models.SquadStats{}
	if found {
		stats.CurrentMemberCount = squad.CurrentMemberCount
	}

	memberIDs := make([]uint, 0)
	if err := repo.database.Model(&models.SquadMember{}).
		Where("squad_id = ? AND is_active = ?", squadID, true).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return models.SquadStats{}, err
	}
	if len(memberIDs) == 0 {
		return stats, nil
	}

	if err := repo.database.Model(&models.Completion{}).
		Where("user_id IN ?", memberIDs).
		Distinct("user_id").
		Count(&stats.ActiveMembers).Error; err != nil {
		return models.SquadStats{}, err
	}
	if err := repo.database.Model(&models.Completion{}).
		Where("user_id IN ?", memberIDs).
		Count(&stats.TotalCompletions).Error; err != nil {
		return models.SquadStats{}, err
	}
	return stats, nil
}
