package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/inventory", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		path   string
		key    string
		status int
	}{
		{"Disabled", Config{}, "/inventory", "", fiber.StatusOK},
		{"ValidKey", Config{ApiKey: "secret"}, "/inventory", "secret", fiber.StatusOK},
		{"MissingKey", Config{ApiKey: "secret"}, "/inventory", "", fiber.StatusUnauthorized},
		{"WrongKey", Config{ApiKey: "secret"}, "/inventory", "nope", fiber.StatusUnauthorized},
		{"SkippedPath", Config{ApiKey: "secret", Skip: []string{"/health"}}, "/health", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.key != "" {
				req.Header.Set(HeaderName, tt.key)
			}
			resp, err := newApp(tt.cfg).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
