package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// TestFullUserJourney walks the happy path end to end: a new account builds
// an identity, attaches a habit, logs completions, reads stats, then forms
// a squad a second user joins.
func TestFullUserJourney(t *testing.T) {
	app, _ := newTestApp(t)

	register := jsonRequest(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":     "journey@example.com",
		"password":  "StrongPass1",
		"username":  "traveler",
		"full_name": "Journey Tester",
	})
	registered := doJSON(t, app, register, http.StatusCreated)
	var account struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeData(t, registered, &account)
	token := account.Token

	identity := jsonRequest(t, http.MethodPost, "/api/identities/", token, fiber.Map{
		"identity_name":    "Early Riser",
		"vision_statement": "I start every day with intention",
		"is_primary":       true,
	})
	identityParsed := doJSON(t, app, identity, http.StatusCreated)
	var createdIdentity struct {
		ID uint `json:"id"`
	}
	decodeData(t, identityParsed, &createdIdentity)

	habit := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"habit_name":  "Wake at 6am",
		"identity_id": createdIdentity.ID,
		"is_public":   true,
	})
	habitParsed := doJSON(t, app, habit, http.StatusCreated)
	var createdHabit struct {
		ID uint `json:"id"`
	}
	decodeData(t, habitParsed, &createdHabit)

	for days := 2; days >= 0; days-- {
		completion := jsonRequest(t, http.MethodPost, "/api/completions/", token, fiber.Map{
			"habit_id":        createdHabit.ID,
			"completion_date": daysAgo(days),
		})
		doJSON(t, app, completion, http.StatusCreated)
	}

	habitGet := doJSON(t, app, jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/habits/%d", createdHabit.ID), token, nil), http.StatusOK)
	var withStats struct {
		StreakCount      int    `json:"streak_count"`
		TotalCompletions int64  `json:"total_completions"`
		IdentityName     string `json:"identity_name"`
	}
	decodeData(t, habitGet, &withStats)
	if withStats.StreakCount != 3 {
		t.Fatalf("streak = %d, want 3", withStats.StreakCount)
	}
	if withStats.TotalCompletions != 3 {
		t.Fatalf("total completions = %d, want 3", withStats.TotalCompletions)
	}
	if withStats.IdentityName != "Early Riser" {
		t.Fatalf("identity name = %q", withStats.IdentityName)
	}

	stats := doJSON(t, app, jsonRequest(t, http.MethodGet, "/api/completions/stats", token, nil), http.StatusOK)
	var userStats struct {
		TotalCompletions int64   `json:"total_completions"`
		CompletionRate   float64 `json:"completion_rate"`
		Streak           int     `json:"streak"`
	}
	decodeData(t, stats, &userStats)
	if userStats.TotalCompletions != 3 || userStats.Streak != 3 {
		t.Fatalf("user stats = %+v", userStats)
	}
	if userStats.CompletionRate != 100 {
		t.Fatalf("completion rate = %v, want 100 for a perfect run", userStats.CompletionRate)
	}

	squadID := createTestSquad(t, app, token, "Sunrise Squad", fiber.Map{"squad_type": "public"})

	_, friendToken := registerTestUser(t, app, "friend@example.com")
	join := jsonRequest(t, http.MethodPost, squadPath(squadID, "/join"), friendToken, nil)
	doJSON(t, app, join, http.StatusCreated)

	members := doJSON(t, app, jsonRequest(t, http.MethodGet,
		squadPath(squadID, "/members"), friendToken, nil), http.StatusOK)
	var memberList []struct {
		Role string `json:"role"`
	}
	decodeData(t, members, &memberList)
	if len(memberList) != 2 {
		t.Fatalf("member list has %d entries, want 2", len(memberList))
	}

	squadStats := doJSON(t, app, jsonRequest(t, http.MethodGet,
		squadPath(squadID, "/stats"), friendToken, nil), http.StatusOK)
	var squadStatsData struct {
		CurrentMemberCount int   `json:"current_member_count"`
		ActiveMembers      int64 `json:"active_members"`
		TotalCompletions   int64 `json:"total_completions"`
	}
	decodeData(t, squadStats, &squadStatsData)
	if squadStatsData.CurrentMemberCount != 2 {
		t.Fatalf("squad stats = %+v", squadStatsData)
	}
	// Only the owner has logged completions so far.
	if squadStatsData.ActiveMembers != 1 {
		t.Fatalf("completing members = %d, want 1", squadStatsData.ActiveMembers)
	}
	if squadStatsData.TotalCompletions != 3 {
		t.Fatalf("squad completions = %d, want the owner's 3", squadStatsData.TotalCompletions)
	}
}
