package api

import (
	"strconv"
	"time"

	"github.com/atomizehq/atomize/internal/models"
	"github.com/atomizehq/atomize/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListCompletions(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate != "" && endDate != "" {
		if !models.ValidCompletionDate(startDate) || !models.ValidCompletionDate(endDate) {
			return respondValidation(c, FieldError{Field: "startDate", Message: "Invalid date range"})
		}
		completions, err := handler.repos.Completions.ListByUserDateRange(user.ID, startDate, endDate)
		if err != nil {
			return respondInternalError(c)
		}
		return respondSuccess(c, fiber.StatusOK, "Completions retrieved successfully", completions)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return respondValidation(c, FieldError{Field: "limit", Message: "Invalid limit"})
		}
		limit = parsed
	}
	completions, err := handler.repos.Completions.ListByUser(user.ID, limit)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completions retrieved successfully", completions)
}

func (handler *Handler) TodayCompletions(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	today := time.Now().Format(models.DateLayout)

	completions, err := handler.repos.Completions.ListByUserAndDate(user.ID, today)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completions retrieved successfully", completions)
}

type createCompletionRequest struct {
	HabitID         uint           `json:"habit_id"`
	CompletionDate  string         `json:"completion_date"`
	CompletionValue float64        `json:"completion_value"`
	Notes           string         `json:"notes"`
	Mood            string         `json:"mood"`
	EnergyLevel     *int           `json:"energy_level"`
	Location        string         `json:"location"`
	DurationMinutes *int           `json:"duration_minutes"`
	Metadata        map[string]any `json:"metadata"`
}

func (handler *Handler) CreateCompletion(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request createCompletionRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.HabitID == 0 {
		return respondValidation(c, FieldError{Field: "habit_id", Message: "Habit ID is required"})
	}

	habit, found, err := handler.repos.Habits.FindByID(request.HabitID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondError(c, fiber.StatusBadRequest, "Invalid habit")
	}

	date := request.CompletionDate
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	} else if !models.ValidCompletionDate(date) {
		return respondValidation(c, FieldError{Field: "completion_date", Message: "Invalid completion date"})
	}
	if request.Mood != "" && !models.ValidMood(request.Mood) {
		return respondValidation(c, FieldError{Field: "mood", Message: "Invalid mood"})
	}

	_, exists, err := handler.repos.Completions.FindByHabitAndDate(request.HabitID, date)
	if err != nil {
		return respondInternalError(c)
	}
	if exists {
		return respondError(c, fiber.StatusConflict, "Completion already exists for this date")
	}

	value := request.CompletionValue
	if value <= 0 {
		value = 1
	}
	completion := models.Completion{
		HabitID:         request.HabitID,
		UserID:          user.ID,
		CompletionDate:  date,
		CompletionValue: value,
		Notes:           request.Notes,
		Mood:            request.Mood,
		EnergyLevel:     request.EnergyLevel,
		Location:        request.Location,
		DurationMinutes: request.DurationMinutes,
		Metadata:        request.Metadata,
	}
	if err := handler.repos.Completions.Create(&completion); err != nil {
		return respondInternalError(c)
	}
	if err := handler.streaks.Recalculate(request.HabitID); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusCreated, "Completion created successfully", completion)
}

type toggleCompletionRequest struct {
	HabitID        uint   `json:"habit_id"`
	CompletionDate string `json:"completion_date"`
	Date           string `json:"date"`
}

// date returns the requested day, accepting either field name. The mobile
// client sends "date"; "completion_date" matches the create payload.
func (request toggleCompletionRequest) date() string {
	if request.CompletionDate != "" {
		return request.CompletionDate
	}
	return request.Date
}

// ToggleCompletion flips a habit's completion for a day: deletes the record
// when one exists, creates a minimal one otherwise.
func (handler *Handler) ToggleCompletion(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	var request toggleCompletionRequest
	if err := c.BodyParser(&request); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if request.HabitID == 0 {
		return respondValidation(c, FieldError{Field: "habit_id", Message: "Habit ID is required"})
	}

	habit, found, err := handler.repos.Habits.FindByID(request.HabitID)
	if err != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondError(c, fiber.StatusBadRequest, "Invalid habit")
	}

	date := request.date()
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	} else if !models.ValidCompletionDate(date) {
		return respondValidation(c, FieldError{Field: "completion_date", Message: "Invalid completion date"})
	}

	existing, exists, err := handler.repos.Completions.FindByHabitAndDate(request.HabitID, date)
	if err != nil {
		return respondInternalError(c)
	}

	if exists {
		if _, err := handler.repos.Completions.Delete(existing.ID); err != nil {
			return respondInternalError(c)
		}
		if err := handler.streaks.Recalculate(request.HabitID); err != nil {
			return respondInternalError(c)
		}
		return respondSuccess(c, fiber.StatusOK, "Completion removed", fiber.Map{"completed": false})
	}

	completion := models.Completion{
		HabitID:         request.HabitID,
		UserID:          user.ID,
		CompletionDate:  date,
		CompletionValue: 1,
	}
	if err := handler.repos.Completions.Create(&completion); err != nil {
		return respondInternalError(c)
	}
	if err := handler.streaks.Recalculate(request.HabitID); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completion recorded", fiber.Map{
		"completed":  true,
		"completion": completion,
	})
}

func (handler *Handler) GetCompletionStats(c *fiber.Ctx) error {
	user := mustCurrentUser(c)

	stats, err := handler.stats.BuildUserStats(user.ID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Stats retrieved successfully", stats)
}

func (handler *Handler) ListCompletionsByHabit(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	habitID, err := parseIDParam(c, "habitId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "habitId", Message: "Invalid habit id"})
	}

	habit, found, lookupErr := handler.repos.Habits.FindByID(habitID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondForbidden(c, "Access denied")
	}

	completions, err := handler.repos.Completions.ListByHabit(habitID, 0)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completions retrieved successfully", completions)
}

func (handler *Handler) GetHabitCompletionStats(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	habitID, err := parseIDParam(c, "habitId")
	if err != nil {
		return respondValidation(c, FieldError{Field: "habitId", Message: "Invalid habit id"})
	}

	habit, found, lookupErr := handler.repos.Habits.FindByID(habitID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.HabitAccess(habit, found, user.ID, false).Allowed() {
		return respondForbidden(c, "Access denied")
	}

	stats, err := handler.stats.BuildHabitStats(habitID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Stats retrieved successfully", stats)
}

func (handler *Handler) GetCompletion(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	completionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid completion id"})
	}

	completion, found, lookupErr := handler.repos.Completions.FindByID(completionID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !found {
		return respondNotFound(c, "Completion")
	}
	if !services.CompletionAccess(completion, found, user.ID).Allowed() {
		return respondForbidden(c, "Access denied")
	}
	return respondSuccess(c, fiber.StatusOK, "Completion retrieved successfully", completion)
}

func (handler *Handler) UpdateCompletion(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	completionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid completion id"})
	}

	completion, found, lookupErr := handler.repos.Completions.FindByID(completionID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.CompletionAccess(completion, found, user.ID).Allowed() {
		return respondNotFound(c, "Completion")
	}

	payload, err := parseUpdatePayload(c)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := handler.repos.Completions.UpdateAllowed(completionID, payload); err != nil {
		return respondInternalError(c)
	}

	updated, _, err := handler.repos.Completions.FindByID(completionID)
	if err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completion updated successfully", updated)
}

func (handler *Handler) DeleteCompletion(c *fiber.Ctx) error {
	user := mustCurrentUser(c)
	completionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondValidation(c, FieldError{Field: "id", Message: "Invalid completion id"})
	}

	completion, found, lookupErr := handler.repos.Completions.FindByID(completionID)
	if lookupErr != nil {
		return respondInternalError(c)
	}
	if !services.CompletionAccess(completion, found, user.ID).Allowed() {
		return respondNotFound(c, "Completion")
	}

	deleted, err := handler.repos.Completions.Delete(completionID)
	if err != nil {
		return respondInternalError(c)
	}
	if !deleted {
		return respondNotFound(c, "Completion")
	}
	if err := handler.streaks.Recalculate(completion.HabitID); err != nil {
		return respondInternalError(c)
	}
	return respondSuccess(c, fiber.StatusOK, "Completion deleted successfully", nil)
}
