package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coderev/internal/config"
)

func testApp(db *gorm.DB) *fiber.App {
	config.Validate = validator.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", &config.Config{JWTSecret: "test-secret", TokenTTLDays: 7})
		c.Locals("db", db)
		return c.Next()
	})
	app.Post("/auth/signup", Signup)
	app.Post("/auth/login", Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestSignupValidation(t *testing.T) {
	app := testApp(nil)

	testCases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"malformed email", `{"name":"Grace","email":"not-an-email","password":"secret1","organizationName":"Acme","teamSize":"1-5"}`},
		{"short password", `{"name":"Grace","email":"grace@example.com","password":"abc","organizationName":"Acme","teamSize":"1-5"}`},
		{"bad team size", `{"name":"Grace","email":"grace@example.com","password":"secret1","organizationName":"Acme","teamSize":"11-19"}`},
		{"name too long", `{"name":"` + strings.Repeat("x", 51) + `","email":"grace@example.com","password":"secret1","organizationName":"Acme","teamSize":"1-5"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/auth/signup", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

// A name made purely of symbols passes the length validation but derives
// an empty slug; it must be rejected as a field error, not a 500.
func TestSignupSymbolOnlyOrganizationName(t *testing.T) {
	app := testApp(nil)

	for _, name := range []string{"!!!", "...", "***"} {
		t.Run(name, func(t *testing.T) {
			body := `{"name":"Grace","email":"grace@example.com","password":"secret1","organizationName":"` + name + `","teamSize":"1-5"}`
			status, decoded := postJSON(t, app, "/auth/signup", body)

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, decoded["success"])

			fields, ok := decoded["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, fields, "organizationName")
		})
	}
}

func TestLoginValidation(t *testing.T) {
	app := testApp(nil)

	status, body := postJSON(t, app, "/auth/login", `{"email":"not-an-email","password":"secret1"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = postJSON(t, app, "/auth/login", `{"email":"grace@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}
