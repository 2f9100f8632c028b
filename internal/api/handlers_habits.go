package api

import (
	"strings"
	"time"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/atomizehq/atomize/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListHabits(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	activeOnly := c.Query("active") == "true"

	habits, err := handler.repos.Habits.ListByUser(user.ID, activeOnly)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Habits retrieved successfully", habits)
}

// ListHabitsByUser serves other users' profiles: everything for the owner,
// public habits only for anyone else.
func (handler *Handler) ListHabitsByUser(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	targetUserID, err := parseIDParam(c, "userId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "userId", Message: "Invalid user id"})
	}

	habits, err := handler.repos.Habits.ListByUser(targetUserID, false)
	if err != nil {
		return respondInternalError(c)
	}
	if targetUserID != user.ID {
		visible := make([]models.Habit, 0, len(habits))
		for _, habit := range habits {
			if habit.IsPublic {
				visible = append(visible, habit)
			}
		}
		habits = visible
	}
	return respondSuccess(c, fiber.StatusOK, "Habits retrieved successfully", habits)
}

func (handler *Handler) ListHabitsByIdentity(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	identityID, err := parseIDParam(c, "identityId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "identityId", Message: "Invalid identity id"})
	}

	identity, found, lookupErr := handler.repos.Identities.FindByID(identityID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.IdentityAccess(identity, found, user.ID).Allowed() {
		return respondForbidden(c, "Access denied")
	}

	habits, err := handler.repos.Habits.ListByIdentity(identityID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Habits retrieved successfully", habits)
}

func (handler *Handler) GetHabit(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid habit id"})
	}

	habit, found, lookupErr := handler.repos.Habits.FindByIDWithStats(habitID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Habit")
	}
	if !services.HabitAccess(habit, found, user.ID, true).Allowed() {
		return respondForbidden(c, "Access denied")
	}
	return respondSuccess(c, fiber.StatusOK, "Habit retrieved successfully", habit)
}

type createHabitRequest struct {
	IdentityID      *uint    `json:"identity_id"`
	HabitName       string   `json:"habit_name"`
	Description     string   `json:"description"`
	FrequencyType   string   `json:"frequency_type"`
	FrequencyValue  int      `json:"frequency_value"`
	TargetCount     int      `json:"target_count"`
	Unit            string   `json:"unit"`
	ReminderEnabled bool     `json:"reminder_enabled"`
	ReminderTime    string   `json:"reminder_time"`
	ReminderDays    []string `json:"reminder_days"`
	DifficultyLevel string   `json:"difficulty_level"`
	Category        string   `json:"category"`
	Color           string   `json:"color"`
	Icon            string   `json:"icon"`
	IsPublic        bool     `json:"is_public"`
	StartDate       *string  `json:"start_date"`
}

func (handler *Handler) CreateHabit(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request createHabitRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(request.HabitName) == "" {
		return respondValidation(c, FieldError{Field: "habit_name", Message: "Habit name is required"})
	}
	if request.IdentityID == nil {
		return respondValidation(c, FieldError{Field: "identity_id", Message: "Identity ID is required"})
	}

	identity, found, err := handler.repos.Identities.FindByID(*request.IdentityID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.IdentityAccess(identity, found, user.ID).Allowed() {
		return respondError(c, fiber.StatusBadRequest, "Invalid identity")
	}

	if request.FrequencyType != "" && !models.ValidFrequencyType(request.FrequencyType) {
		return respondValidation(c, FieldError{Field: "frequency_type", Message: "Invalid frequency type"})
	}
	if request.DifficultyLevel != "" && !models.ValidDifficultyLevel(request.DifficultyLevel) {
		return respondValidation(c, FieldError{Field: "difficulty_level", Message: "Invalid difficulty level"})
	}

	habit := models.Habit{
		UserID:          user.ID,
		IdentityID:      request.IdentityID,
		HabitName:       strings.TrimSpace(request.HabitName),
		Description:     request.Description,
		FrequencyType:   defaultString(request.FrequencyType, models.FrequencyDaily),
		FrequencyValue:  defaultPositive(request.FrequencyValue, 1),
		TargetCount:     defaultPositive(request.TargetCount, 1),
		Unit:            request.Unit,
		ReminderEnabled: request.ReminderEnabled,
		ReminderTime:    request.ReminderTime,
		ReminderDays:    request.ReminderDays,
		DifficultyLevel: defaultString(request.DifficultyLevel, models.DifficultyMedium),
		Category:        request.Category,
		Color:           request.Color,
		Icon:            request.Icon,
		IsPublic:        request.IsPublic,
		IsActive:        true,
	}
	startDate := time.Now()
	if request.StartDate != nil {
		parsed, err := time.Parse(models.DateLayout, *request.StartDate)
		if err != nil {
			return respondValidation(c, FieldError{Field: "start_date", Message: "Invalid start date"})
		}
		startDate = parsed
	}
	habit.StartDate = &startDate

	if err := handler.repos.Habits.Create(&habit); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusCreated, "Habit created successfully", habit)
}

func (handler *Handler) UpdateHabit(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid habit id"})
	}

	habit, found, lookupErr := handler.repos.Habits.FindByID(habitID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondNotFound(c, "Habit")
	}

	payload, err := parseUpdatePayload(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := handler.repos.Habits.UpdateAllowed(habitID, payload); err != nil {
		return respondInternalError(c)
	}

	updated, _, err := handler.repos.Habits.FindByIDWithStats(habitID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Habit updated successfully", updated)
}

func (handler *Handler) DeleteHabit(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid habit id"})
	}

	habit, found, lookupErr := handler.repos.Habits.FindByID(habitID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondNotFound(c, "Habit")
	}

	deleted, err := handler.repos.Habits.SoftDelete(habitID)
	if err != nil {
		return respondInternalError(c)
	}
	if !deleted {
		return respondNotFound(c, "Habit")
	}
	return respondSuccess(c, fiber.StatusOK, "Habit deleted successfully", nil)
}

func defaultPositive(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
