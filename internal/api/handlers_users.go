package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) SearchUsers(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		term = c.Query("search")
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, err := handler.repos.Users.Search(term, limit)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Users retrieved successfully", users)
}

func (handler *Handler) GetUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid user id"})
	}

	user, found, lookupErr := handler.repos.Users.FindByID(userID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "User")
	}
	return respondSuccess(c, fiber.StatusOK, "User retrieved successfully", user)
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	sessionUser := mustCurrentUser(c)
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid user id"})
	}
	if userID != sessionUser.ID {
		return respondForbidden(c, "You can only update your own profile")
	}

	payload, err := parseUpdatePayload(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := handler.repos.Users.UpdateAllowed(userID, payload); err != nil {
		return respondInternalError(c)
	}

	user, _, err := handler.repos.Users.FindByID(userID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Profile updated successfully", user)
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	sessionUser := mustCurrentUser(c)
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid user id"})
	}
	if userID != sessionUser.ID {
		return respondForbidden(c, "You can only delete your own account")
	}

	deleted, err := handler.repos.Users.SoftDelete(userID)
	if err != nil {
		return respondInternalError(c)
	}
	if !deleted {
		return respondNotFound(c, "User")
	}
	return respondSuccess(c, fiber.StatusOK, "Account deleted successfully", nil)
}

func (handler *Handler) GetUserStats(c *fiber.Ctx) error {
	sessionUser := mustCurrentUser(c)
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid user id"})
	}
	if userID != sessionUser.ID {
		return respondForbidden(c, "Access denied")
	}

	stats, err := handler.repos.Users.Stats(userID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}

// parseUpdatePayload reads a partial-update body as a raw key set; the
// repositories apply their per-entity allow-lists over it.
func parseUpdatePayload(c *fiber.Ctx) (map[string]any, error) {
	payload := make(map[string]any)
	if len(c.Body()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
