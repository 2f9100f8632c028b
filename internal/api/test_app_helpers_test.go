package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomizehq/atomize/internal/db"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "atomize-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler := NewHandler(database, "test-secret-key", time.Hour)
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func jsonRequest(t *testing.T, method string, target string, token string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return request
}

type testEnvelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Errors    []FieldError    `json:"errors"`
	Timestamp string          `json:"timestamp"`
}

func doJSON(t *testing.T, app *fiber.App, request *http.Request, wantStatus int) testEnvelope {
	t.Helper()

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if response.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d (body: %s)",
			request.Method, request.URL.Path, response.StatusCode, wantStatus, raw)
	}

	var parsed testEnvelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, raw)
	}
	return parsed
}

func decodeData(t *testing.T, envelope testEnvelope, out any) {
	t.Helper()
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v (data: %s)", err, envelope.Data)
	}
}

// registerTestUser creates an account through the public endpoint and
// returns the new user's id and bearer token.
func registerTestUser(t *testing.T, app *fiber.App, email string) (uint, string) {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "StrongPass1",
	})
	parsed := doJSON(t, app, request, http.StatusCreated)

	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeData(t, parsed, &data)
	if data.Token == "" {
		t.Fatal("register returned empty token")
	}
	return data.User.ID, data.Token
}

func createTestIdentity(t *testing.T, app *fiber.App, token string, name string) uint {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/api/identities/", token, fiber.Map{
		"identity_name": name,
	})
	parsed := doJSON(t, app, request, http.StatusCreated)

	var identity struct {
		ID uint `json:"id"`
	}
	decodeData(t, parsed, &identity)
	return identity.ID
}

func createTestHabit(t *testing.T, app *fiber.App, token string, identityID uint, name string) uint {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/api/habits/", token, fiber.Map{
		"habit_name":  name,
		"identity_id": identityID,
	})
	parsed := doJSON(t, app, request, http.StatusCreated)

	var habit struct {
		ID uint `json:"id"`
	}
	decodeData(t, parsed, &habit)
	return habit.ID
}

func createTestSquad(t *testing.T, app *fiber.App, token string, name string, extra fiber.Map) uint {
	t.Helper()

	body := fiber.Map{"squad_name": name}
	for key, value := range extra {
		body[key] = value
	}
	request := jsonRequest(t, http.MethodPost, "/api/squads/", token, body)
	parsed := doJSON(t, app, request, http.StatusCreated)

	var squad struct {
		ID uint `json:"id"`
	}
	decodeData(t, parsed, &squad)
	return squad.ID
}

func daysAgo(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

func squadPath(squadID uint, suffix string) string {
	return fmt.Sprintf("/api/squads/%d%s", squadID, suffix)
}
