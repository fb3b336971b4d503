package validation

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxQuestionLength: 40}))
	app.Post("/api/v1/query", func(c *fiber.Ctx) error {
		q, _ := c.Locals(LocalQuestion).(string)
		return c.SendString(q)
	})
	app.Post("/api/v1/query/:id/feedback", func(c *fiber.Ctx) error { return c.SendString("fb") })
	app.Get("/api/v1/templates", func(c *fiber.Ctx) error { return c.SendString("list") })
	return app
}

func post(t *testing.T, app *fiber.App, path, contentType, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestMiddleware_QuestionBody(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		body   string
		status int
		out    string
	}{
		{"sanitized", `{"question":"  top 5 stores in Cebu\u0000 "}`, 200, "top 5 stores in Cebu"},
		{"business words allowed", `{"question":"which stores create and select the most"}`, 200, "which stores create and select the most"},
		{"missing", `{"user_id":"u"}`, fiber.StatusBadRequest, ""},
		{"blank", `{"question":"   "}`, fiber.StatusBadRequest, ""},
		{"bad json", `{"question":`, fiber.StatusBadRequest, ""},
		{"too long", `{"question":"` + strings.Repeat("x", 41) + `"}`, fiber.StatusRequestEntityTooLarge, ""},
		{"statement", `{"question":"revenue'; DROP TABLE transactions"}`, fiber.StatusBadRequest, ""},
		{"comment", `{"question":"revenue -- all"}`, fiber.StatusBadRequest, ""},
		{"union", `{"question":"x UNION SELECT password"}`, fiber.StatusBadRequest, ""},
		{"xss", `{"question":"<script>alert(1)</script>"}`, fiber.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/api/v1/query", fiber.MIMEApplicationJSON, tt.body)
			assert.Equal(t, tt.status, status)
			if tt.status == 200 {
				assert.Equal(t, tt.out, body)
			}
		})
	}
}

func TestMiddleware_ContentType(t *testing.T) {
	app := newApp()

	status, _ := post(t, app, "/api/v1/query", "text/plain", "total revenue")
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)

	status, body := post(t, app, "/api/v1/query/abc/feedback", fiber.MIMEApplicationJSON, `{"helpful":true}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "fb", body)
}

func TestMiddleware_SkipsReads(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest("GET", "/api/v1/templates", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
