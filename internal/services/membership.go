package services

import (
	"errors"
	"time"

	"github.com/atomizehq/atomize/internal/models"
)

var (
	ErrSquadNotFound    = errors.New("squad not found")
	ErrSquadFull        = errors.New("squad is full")
	ErrAlreadyMember    = errors.New("already a member of this squad")
	ErrNotMember        = errors.New("not a member of this squad")
	ErrInviteOnly       = errors.New("this squad is invite-only")
	ErrOwnerCannotLeave = errors.New("owner cannot leave squad")
	ErrCannotRemoveOwner = errors.New("cannot remove squad owner")
	ErrInvalidRole      = errors.New("invalid role")
)

// MembershipStore is the slice of the squad repository the engine mutates
// membership state through.
type MembershipStore interface {
	FindByID(squadID uint) (models.Squad, bool, error)
	FindByInviteCode(inviteCode string) (models.Squad, bool, error)
	FindMembership(squadID uint, userID uint) (models.SquadMember, bool, error)
	CreateMembership(membership *models.SquadMember) error
	ReactivateMembership(squadID uint, userID uint, invitedBy *uint) error
	DeactivateMembership(squadID uint, userID uint) (bool, error)
	UpdateMemberRole(squadID uint, userID uint, role string) (bool, error)
	AdmitIfBelowCapacity(squadID uint) (bool, error)
	ReleaseMemberSlot(squadID uint) error
}

// MembershipEngine owns the (squad, user) state machine: not-member,
// active-member, inactive-member. Every admission goes through the
// conditional counter update so the member count can never pass
// max_members, even under racing joins.
type MembershipEngine struct {
	squads MembershipStore
}

func NewMembershipEngine(squads MembershipStore) *MembershipEngine {
	return &MembershipEngine{squads: squads}
}

// Join admits userID as a plain member. Preconditions run in a fixed
// order: existence, capacity, duplicate membership, squad type.
func (engine *MembershipEngine) Join(squadID uint, userID uint) error {
	squad, found, err := engine.squads.FindByID(squadID)
	if err != nil {
		return err
	}
	if !found || !squad.IsActive {
		return ErrSquadNotFound
	}
	if squad.SquadType == models.SquadTypeInviteOnly {
		return engine.admit(squad, userID, nil, true)
	}
	return engine.admit(squad, userID, nil, false)
}

// Invite admits targetUserID on behalf of actorID. Authorization (actor is
// owner or admin) is the caller's job; the admission itself ignores the
// invite-only restriction and records who invited.
func (engine *MembershipEngine) Invite(squadID uint, actorID uint, targetUserID uint) error {
	squad, found, err := engine.squads.FindByID(squadID)
	if err != nil {
		return err
	}
	if !found || !squad.IsActive {
		return ErrSquadNotFound
	}
	invitedBy := actorID
	return engine.admit(squad, targetUserID, &invitedBy, false)
}

// JoinByCode resolves the squad by invite code and admits. Holding the
// code bypasses the invite-only restriction.
func (engine *MembershipEngine) JoinByCode(inviteCode string, userID uint) (models.Squad, error) {
	squad, found, err := engine.squads.FindByInviteCode(inviteCode)
	if err != nil {
		return models.Squad{}, err
	}
	if !found {
		return models.Squad{}, ErrSquadNotFound
	}
	if err := engine.admit(squad, userID, nil, false); err != nil {
		return models.Squad{}, err
	}
	return squad, nil
}

func (engine *MembershipEngine) admit(squad models.Squad, userID uint, invitedBy *uint, rejectInviteOnly bool) error {
	if squad.CurrentMemberCount >= squad.MaxMembers {
		return ErrSquadFull
	}

	membership, hasMembership, err := engine.squads.FindMembership(squad.ID, userID)
	if err != nil {
		return err
	}
	if hasMembership && membership.IsActive {
		return ErrAlreadyMember
	}
	if rejectInviteOnly {
		return ErrInviteOnly
	}

	admitted, err := engine.squads.AdmitIfBelowCapacity(squad.ID)
	if err != nil {
		return err
	}
	if !admitted {
		return ErrSquadFull
	}

	if hasMembership {
		if err := engine.squads.ReactivateMembership(squad.ID, userID, invitedBy); err != nil {
			engine.releaseSlot(squad.ID)
			return err
		}
		return nil
	}

	newMembership := models.SquadMember{
		SquadID:   squad.ID,
		UserID:    userID,
		Role:      models.RoleMember,
		IsActive:  true,
		InvitedBy: invitedBy,
		JoinedAt:  time.Now().UTC(),
	}
	if err := engine.squads.CreateMembership(&newMembership); err != nil {
		engine.releaseSlot(squad.ID)
		return err
	}
	return nil
}

// Leave moves an active member to inactive. The owner can never leave:
// the squad would lose its single owner.
func (engine *MembershipEngine) Leave(squadID uint, userID uint) error {
	squad, found, err := engine.squads.FindByID(squadID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSquadNotFound
	}
	if squad.OwnerID == userID {
		return ErrOwnerCannotLeave
	}
	return engine.deactivate(squadID, userID)
}

// RemoveMember is Leave performed by an owner/admin actor on the target
// (authorization is the caller's job). The owner cannot be removed.
func (engine *MembershipEngine) RemoveMember(squadID uint, targetUserID uint) error {
	squad, found, err := engine.squads.FindByID(squadID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSquadNotFound
	}
	if squad.OwnerID == targetUserID {
		return ErrCannotRemoveOwner
	}
	return engine.deactivate(squadID, targetUserID)
}

func (engine *MembershipEngine) deactivate(squadID uint, userID uint) error {
	deactivated, err := engine.squads.DeactivateMembership(squadID, userID)
	if err != nil {
		return err
	}
	if !deactivated {
		return ErrNotMember
	}
	return engine.squads.ReleaseMemberSlot(squadID)
}

// UpdateRole grants admin, moderator or member. Targeting the owner's row
// is impossible because owner is not an assignable role and the owner's
// row already holds it; whether the target membership is active is
// deliberately not checked.
func (engine *MembershipEngine) UpdateRole(squadID uint, targetUserID uint, newRole string) error {
	if !models.AssignableRole(newRole) {
		return ErrInvalidRole
	}
	squad, found, err := engine.squads.FindByID(squadID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSquadNotFound
	}
	if squad.OwnerID == targetUserID {
		return ErrCannotRemoveOwner
	}
	updated, err := engine.squads.UpdateMemberRole(squadID, targetUserID, newRole)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotMember
	}
	return nil
}

func (engine *MembershipEngine) releaseSlot(squadID uint) {
	// Compensation for a failed insert after the slot was taken; the next
	// read self-corrects if this also fails.
	_ = engine.squads.ReleaseMemberSlot(squadID)
}
