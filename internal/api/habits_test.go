package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCreateHabitValidation(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerTestUser(t, app, "habit-validation@example.com")
	identityID := createTestIdentity(t, app, token, "Reader")

	missingName := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"identity_id": identityID,
	})
	doJSON(t, app, missingName, http.StatusBadRequest)

	missingIdentity := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"habit_name": "Read 10 pages",
	})
	doJSON(t, app, missingIdentity, http.StatusBadRequest)

	badFrequency := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"habit_name":     "Read 10 pages",
		"identity_id":    identityID,
		"frequency_type": "hourly",
	})
	doJSON(t, app, badFrequency, http.StatusBadRequest)
}

func TestCreateHabitRejectsForeignIdentity(t *testing.T) {
	app, _ := newTestApp(t)
	_, ownerToken := registerTestUser(t, app, "habit-owner@example.com")
	_, strangerToken := registerTestUser(t, app, "habit-stranger@example.com")

	identityID := createTestIdentity(t, app, ownerToken, "Runner")

	request := jsonRequest(t, http.MethodPost, "/api/habits/", strangerToken, fiber.Map{
		"habit_name":  "Steal a habit",
		"identity_id": identityID,
	})
	parsed := doJSON(t, app, request, http.StatusBadRequest)
	if parsed.Message != "Invalid identity" {
		t.Fatalf("foreign identity message = %q", parsed.Message)
	}
}

func TestCreateHabitAppliesDefaults(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerTestUser(t, app, "habit-defaults@example.com")
	identityID := createTestIdentity(t, app, token, "Writer")

	request := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"habit_name":  "Write a paragraph",
		"identity_id": identityID,
	})
	parsed := doJSON(t, app, request, http.StatusCreated)

	var habit struct {
		FrequencyType   string `json:"frequency_type"`
		FrequencyValue  int    `json:"frequency_value"`
		TargetCount     int    `json:"target_count"`
		DifficultyLevel string `json:"difficulty_level"`
		IsActive        bool   `json:"is_active"`
		StartDate       *string `json:"start_date"`
	}
	decodeData(t, parsed, &habit)
	if habit.FrequencyType != "daily" || habit.FrequencyValue != 1 || habit.TargetCount != 1 {
		t.Fatalf("habit defaults = %+v", habit)
	}
	if habit.DifficultyLevel != "medium" {
		t.Fatalf("difficulty = %q, want medium", habit.DifficultyLevel)
	}
	if !habit.IsActive {
		t.Fatal("new habit should be active")
	}
	if habit.StartDate == nil {
		t.Fatal("start date should default to today")
	}
}

func TestListHabitsByUserHidesPrivateHabits(t *testing.T) {
	app, _ := newTestApp(t)
	ownerID, ownerToken := registerTestUser(t, app, "profile-owner@example.com")
	_, viewerToken := registerTestUser(t, app, "profile-viewer@example.com")

	identityID := createTestIdentity(t, app, ownerToken, "Athlete")

	public := jsonRequest(t, http.MethodPost, "/api/habits/", ownerToken, fiber.Map{
		"habit_name":  "Public run",
		"identity_id": identityID,
		"is_public":   true,
	})
	doJSON(t, app, public, http.StatusCreated)

	private := jsonRequest(t, http.MethodPost, "/api/habits/", ownerToken, fiber.Map{
		"habit_name":  "Secret meditation",
		"identity_id": identityID,
	})
	doJSON(t, app, private, http.StatusCreated)

	target := fmt.Sprintf("/api/habits/user/%d", ownerID)

	asViewer := doJSON(t, app, jsonRequest(t, http.MethodGet, target, viewerToken, nil), http.StatusOK)
	var visible []struct {
		HabitName string `json:"habit_name"`
	}
	decodeData(t, asViewer, &visible)
	if len(visible) != 1 || visible[0].HabitName != "Public run" {
		t.Fatalf("viewer sees %+v, want only the public habit", visible)
	}

	asOwner := doJSON(t, app, jsonRequest(t, http.MethodGet, target, ownerToken, nil), http.StatusOK)
	var all []struct {
		HabitName string `json:"habit_name"`
	}
	decodeData(t, asOwner, &all)
	if len(all) != 2 {
		t.Fatalf("owner sees %d habits, want 2", len(all))
	}
}

func TestGetHabitHonorsVisibility(t *testing.T) {
	app, _ := newTestApp(t)
	_, ownerToken := registerTestUser(t, app, "visibility-owner@example.com")
	_, viewerToken := registerTestUser(t, app, "visibility-viewer@example.com")

	identityID := createTestIdentity(t, app, ownerToken, "Chef")

	privateID := createTestHabit(t, app, ownerToken, identityID, "Secret recipe practice")
	get := jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/habits/%d", privateID), viewerToken, nil)
	doJSON(t, app, get, http.StatusForbidden)

	publicRequest := jsonRequest(t, http.MethodPost, "/api/habits/", ownerToken, fiber.Map{
		"habit_name":  "Public cooking",
		"identity_id": identityID,
		"is_public":   true,
	})
	publicParsed := doJSON(t, app, publicRequest, http.StatusCreated)
	var publicHabit struct {
		ID uint `json:"id"`
	}
	decodeData(t, publicParsed, &publicHabit)

	getPublic := jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/habits/%d", publicHabit.ID), viewerToken, nil)
	doJSON(t, app, getPublic, http.StatusOK)
}

func TestUpdateHabitIgnoresProtectedFields(t *testing.T) {
	app, _ := newTestApp(t)
	userID, token := registerTestUser(t, app, "habit-update@example.com")
	identityID := createTestIdentity(t, app, token, "Musician")
	habitID := createTestHabit(t, app, token, identityID, "Practice scales")

	update := jsonRequest(t, http.MethodPut, fmt.Sprintf("/api/habits/%d", habitID), token, fiber.Map{
		"habit_name": "Practice arpeggios",
		"user_id":    9999,
		"id":         9999,
	})
	parsed := doJSON(t, app, update, http.StatusOK)

	var habit struct {
		ID        uint   `json:"id"`
		UserID    uint   `json:"user_id"`
		HabitName string `json:"habit_name"`
	}
	decodeData(t, parsed, &habit)
	if habit.HabitName != "Practice arpeggios" {
		t.Fatalf("habit name = %q", habit.HabitName)
	}
	if habit.ID != habitID || habit.UserID != userID {
		t.Fatalf("protected fields changed: id=%d user_id=%d", habit.ID, habit.UserID)
	}
}

func TestDeleteHabitHidesItFromLists(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerTestUser(t, app, "habit-delete@example.com")
	identityID := createTestIdentity(t, app, token, "Gardener")
	habitID := createTestHabit(t, app, token, identityID, "Water plants")

	del := jsonRequest(t, http.MethodDelete, fmt.Sprintf("/api/habits/%d", habitID), token, nil)
	doJSON(t, app, del, http.StatusOK)

	get := jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/habits/%d", habitID), token, nil)
	doJSON(t, app, get, http.StatusNotFound)

	list := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/habits/", token, nil), http.StatusOK)
	var habits []struct {
		ID uint `json:"id"`
	}
	decodeData(t, list, &habits)
	if len(habits) != 0 {
		t.Fatalf("deleted habit still listed: %+v", habits)
	}
}
