package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/atomizehq/atomize/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListSquads(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	squads, err := handler.repos.Squads.ListByUser(user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Squads retrieved successfully", squads)
}

func (handler *Handler) SearchSquads(c *fiber.Ctx) error {
	term := c.Query("q")
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return respondValidation(c, FieldError{Field: "limit", Message: "Invalid limit"})
		}
		limit = parsed
	}

	squads, err := handler.repos.Squads.SearchPublic(term, limit)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Squads retrieved successfully", squads)
}

type createSquadRequest struct {
	SquadName     string         `json:"squad_name"`
	Description   string         `json:"description"`
	SquadType     string         `json:"squad_type"`
	MaxMembers    int            `json:"max_members"`
	AvatarURL     string         `json:"avatar_url"`
	CoverImageURL string         `json:"cover_image_url"`
	Settings      map[string]any `json:"settings"`
}

func (handler *Handler) CreateSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request createSquadRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(request.SquadName) == "" {
		return respondValidation(c, FieldError{Field: "squad_name", Message: "Squad name is required"})
	}
	if request.SquadType != "" && !models.ValidSquadType(request.SquadType) {
		return respondValidation(c, FieldError{Field: "squad_type", Message: "Invalid squad type"})
	}

	squad := models.Squad{
		SquadName:     strings.TrimSpace(request.SquadName),
		Description:   request.Description,
		OwnerID:       user.ID,
		SquadType:     request.SquadType,
		MaxMembers:    request.MaxMembers,
		AvatarURL:     request.AvatarURL,
		CoverImageURL: request.CoverImageURL,
		Settings:      request.Settings,
	}
	if err := handler.squads.CreateSquad(&squad); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusCreated, "Squad created successfully", squad)
}

func (handler *Handler) GetSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	isMember := squad.OwnerID == user.ID || services.IsActiveMember(membership, hasMembership)
	if !isMember && squad.SquadType != models.SquadTypePublic {
		return respondForbidden(c, "Access denied")
	}
	return respondSuccess(c, fiber.StatusOK, "Squad retrieved successfully", squad)
}

func (handler *Handler) UpdateSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.SquadAccess(squad, found, membership, hasMembership, user.ID).Allowed() {
		return respondForbidden(c, "Only owners and admins can update squad")
	}

	payload, err := parseUpdatePayload(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := handler.repos.Squads.UpdateAllowed(squadID, payload); err != nil {
		return respondInternalError(c)
	}

	updated, _, err := handler.repos.Squads.FindByID(squadID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Squad updated successfully", updated)
}

func (handler *Handler) DeleteSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}
	if squad.OwnerID != user.ID {
		return respondForbidden(c, "Only the owner can delete the squad")
	}

	deleted, err := handler.repos.Squads.SoftDelete(squadID)
	if err != nil {
		return respondInternalError(c)
	}
	if !deleted {
		return respondNotFound(c, "Squad")
	}
	return respondSuccess(c, fiber.StatusOK, "Squad deleted successfully", nil)
}

func (handler *Handler) ListSquadMembers(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	isMember := squad.OwnerID == user.ID || services.IsActiveMember(membership, hasMembership)
	if !isMember && squad.SquadType != models.SquadTypePublic {
		return respondForbidden(c, "Access denied")
	}

	members, err := handler.repos.Squads.Members(squadID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Members retrieved successfully", members)
}

func (handler *Handler) JoinSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	if err := handler.membership.Join(squadID, user.ID); err != nil {
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "Joined squad successfully", nil)
}

type joinByCodeRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (handler *Handler) JoinSquadByCode(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request joinByCodeRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(request.InviteCode) == "" {
		return respondValidation(c, FieldError{Field: "inviteCode", Message: "Invite code is required"})
	}

	squad, err := handler.membership.JoinByCode(strings.TrimSpace(request.InviteCode), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrSquadNotFound) {
			return respondError(c, fiber.StatusNotFound, "Squad with this invite code not found")
		}
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "Joined squad successfully", squad)
}

func (handler *Handler) LeaveSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	if err := handler.membership.Leave(squadID, user.ID); err != nil {
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Left squad successfully", nil)
}

type inviteRequest struct {
	UserID uint `json:"userId"`
}

func (handler *Handler) InviteToSquad(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	var request inviteRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.UserID == 0 {
		return respondValidation(c, FieldError{Field: "userId", Message: "User ID is required"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.SquadAccess(squad, found, membership, hasMembership, user.ID).Allowed() {
		return respondForbidden(c, "Only owners and admins can invite members")
	}

	_, targetFound, err := handler.repos.Users.FindByID(request.UserID)
	if err != nil {
		return respondInternalError(c)
	}
	if !targetFound {
		return respondNotFound(c, "User")
	}

	if err := handler.membership.Invite(squadID, user.ID, request.UserID); err != nil {
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "User invited successfully", nil)
}

func (handler *Handler) RemoveSquadMember(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}
	targetUserID, err := parseIDParam(c, "userId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "userId", Message: "Invalid user id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.SquadAccess(squad, found, membership, hasMembership, user.ID).Allowed() {
		return respondForbidden(c, "Only owners and admins can remove members")
	}

	if err := handler.membership.RemoveMember(squadID, targetUserID); err != nil {
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Member removed successfully", nil)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (handler *Handler) UpdateSquadMemberRole(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}
	targetUserID, err := parseIDParam(c, "userId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "userId", Message: "Invalid user id"})
	}

	var request updateRoleRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(request.Role) == "" {
		return respondValidation(c, FieldError{Field: "role", Message: "Role is required"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}
	if squad.OwnerID != user.ID {
		return respondForbidden(c, "Only the owner can change member roles")
	}

	if err := handler.membership.UpdateRole(squadID, targetUserID, request.Role); err != nil {
		return respondMembershipError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Role updated successfully", nil)
}

func (handler *Handler) GetSquadStats(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	squadID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid squad id"})
	}

	squad, found, lookupErr := handler.repos.Squads.FindByID(squadID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Squad")
	}

	membership, hasMembership, err := handler.repos.Squads.FindMembership(squadID, user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	if squad.OwnerID != user.ID && !services.IsActiveMember(membership, hasMembership) {
		return respondForbidden(c, "Access denied")
	}

	stats, err := handler.repos.Squads.Stats(squadID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Stats retrieved successfully", stats)
}

// respondMembershipError maps the membership engine's sentinel errors onto
// HTTP responses; unknown errors become a 500.
func respondMembershipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSquadNotFound):
		return respondNotFound(c, "Squad")
	case errors.Is(err, services.ErrSquadFull):
		return respondError(c, fiber.StatusBadRequest, "Squad is full")
	case errors.Is(err, services.ErrAlreadyMember):
		return respondError(c, fiber.StatusConflict, "Already a member of this squad")
	case errors.Is(err, services.ErrInviteOnly):
		return respondForbidden(c, "This squad is invite-only")
	case errors.Is(err, services.ErrOwnerCannotLeave):
		return respondError(c, fiber.StatusBadRequest, "Owner cannot leave the squad")
	case errors.Is(err, services.ErrNotMember):
		return respondError(c, fiber.StatusBadRequest, "Not a member of this squad")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		return respondError(c, fiber.StatusBadRequest, "Cannot remove squad owner")
	case errors.Is(err, services.ErrInvalidRole):
		return respondValidation(c, FieldError{Field: "role", Message: "Invalid role"})
	default:
		return respondInternalError(c)
	}
}
