package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SquadTypePublic     = "public"
	SquadTypePrivate    = "private"
	SquadTypeInviteOnly = "invite_only"
)

const (
	RoleOwner     = "owner"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

const (
	DefaultMaxMembers     = 50
	InviteCodeLength      = 8
	DefaultSquadSearchCap = 20
)

// Squad is an accountability group. CurrentMemberCount is a denormalized
// counter kept in step by the membership engine; admission bumps it with a
// conditional update so it can never pass MaxMembers.
type Squad struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	SquadName          string         `gorm:"not null" json:"squad_name"`
	Description        string         `json:"description"`
	SquadType          string         `gorm:"not null;default:private" json:"squad_type"`
	AvatarURL          string         `json:"avatar_url"`
	CoverImageURL      string         `json:"cover_image_url"`
	OwnerID            uint           `gorm:"not null;index" json:"owner_id"`
	InviteCode         string         `gorm:"uniqueIndex;not null" json:"invite_code"`
	MaxMembers         int            `gorm:"not null;default:50" json:"max_members"`
	CurrentMemberCount int            `gorm:"not null;default:0" json:"current_member_count"`
	IsActive           bool           `gorm:"not null;default:true" json:"is_active"`
	Settings           map[string]any `gorm:"serializer:json" json:"settings"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Decorations for "my squads" listings, never persisted.
	Role     string     `gorm:"-" json:"role,omitempty"`
	JoinedAt *time.Time `gorm:"-" json:"joined_at,omitempty"`
}

// SquadMember relates a user to a squad. Removal flips IsActive instead of
// deleting the row; rejoining reactivates it in place so the
// (squad_id, user_id) pair stays unique for the squad's lifetime.
type SquadMember struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SquadID           uint      `gorm:"not null;uniqueIndex:uidx_squad_user" json:"squad_id"`
	UserID            uint      `gorm:"not null;uniqueIndex:uidx_squad_user" json:"user_id"`
	Role              string    `gorm:"not null;default:member" json:"role"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	InvitedBy         *uint     `json:"invited_by"`
	JoinedAt          time.Time `gorm:"not null" json:"joined_at"`
	ContributionScore int       `gorm:"not null;default:0" json:"contribution_score"`
}

// SquadMemberProfile is the member listing shape: public user fields plus
// the membership's role and bookkeeping.
type SquadMemberProfile struct {
	UserID            uint      `json:"id"`
	Username          *string   `json:"username"`
	FullName          string    `json:"full_name"`
	AvatarURL         string    `json:"avatar_url"`
	Role              string    `json:"role"`
	JoinedAt          time.Time `json:"joined_at"`
	ContributionScore int       `json:"contribution_score"`
}

// SquadStats summarizes a squad for its stats endpoint.
type SquadStats struct {
	CurrentMemberCount int   `json:"current_member_count"`
	ActiveMembers      int64 `json:"active_members"`
	TotalCompletions   int64 `json:"total_completions"`
}

func ValidSquadType(squadType string) bool {
	switch squadType {
	case SquadTypePublic, SquadTypePrivate, SquadTypeInviteOnly:
		return true
	}
	return false
}

// AssignableRole reports whether a role may be granted through the role
// update path. Owner is excluded: ownership is fixed at squad creation.
func AssignableRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}
