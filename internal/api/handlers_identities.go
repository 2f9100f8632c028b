package api

import (
	"strings"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/atomizehq/atomize/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListIdentities(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	identities, err := handler.repos.Identities.ListByUser(user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Identities retrieved successfully", identities)
}

func (handler *Handler) GetIdentity(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	identityID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid identity id"})
	}

	identity, found, lookupErr := handler.repos.Identities.FindByIDWithStats(identityID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Identity")
	}
	if !services.IdentityAccess(identity, found, user.ID).Allowed() {
		return respondForbidden(c, "Access denied")
	}
	return respondSuccess(c, fiber.StatusOK, "Identity retrieved successfully", identity)
}

type createIdentityRequest struct {
	IdentityName    string   `json:"identity_name"`
	Description     string   `json:"description"`
	VisionStatement string   `json:"vision_statement"`
	CoreValues      []string `json:"core_values"`
	IsPrimary       bool     `json:"is_primary"`
	ColorTheme      string   `json:"color_theme"`
	Icon            string   `json:"icon"`
	DisplayOrder    int      `json:"display_order"`
}

func (handler *Handler) CreateIdentity(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request createIdentityRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(request.IdentityName) == "" {
		return respondValidation(c, FieldError{Field: "identity_name", Message: "Identity name is required"})
	}

	identity := models.Identity{
		UserID:          user.ID,
		IdentityName:    strings.TrimSpace(request.IdentityName),
		Description:     request.Description,
		VisionStatement: request.VisionStatement,
		CoreValues:      request.CoreValues,
		IsPrimary:       request.IsPrimary,
		ColorTheme:      request.ColorTheme,
		Icon:            request.Icon,
		DisplayOrder:    request.DisplayOrder,
		IsActive:        true,
	}
	if err := handler.repos.Identities.Create(&identity); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusCreated, "Identity created successfully", identity)
}

func (handler *Handler) UpdateIdentity(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	identityID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid identity id"})
	}

	identity, found, lookupErr := handler.repos.Identities.FindByID(identityID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.IdentityAccess(identity, found, user.ID).Allowed() {
		return respondNotFound(c, "Identity")
	}

	payload, err := parseUpdatePayload(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := handler.repos.Identities.UpdateAllowed(identityID, user.ID, payload); err != nil {
		return respondInternalError(c)
	}

	updated, _, err := handler.repos.Identities.FindByIDWithStats(identityID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Identity updated successfully", updated)
}

// DeleteIdentity soft-deletes the identity only. Habits keep their
// identity_id even when it points at a deleted row.
func (handler *Handler) DeleteIdentity(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	identityID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid identity id"})
	}

	identity, found, lookupErr := handler.repos.Identities.FindByID(identityID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.IdentityAccess(identity, found, user.ID).Allowed() {
		return respondNotFound(c, "Identity")
	}

	deleted, err := handler.repos.Identities.SoftDelete(identityID)
	if err != nil {
		return respondInternalError(c)
	}
	if !deleted {
		return respondNotFound(c, "Identity")
	}
	return respondSuccess(c, fiber.StatusOK, "Identity deleted successfully", nil)
}
