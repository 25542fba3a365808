package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThingMissing = errors.New("thing missing")

type sampleRequest struct {
	Query string `json:"query" validate:"required"`
	N     int    `json:"n" validate:"min=1,max=20"`
}

func decodeBody(t *testing.T, r io.Reader) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(ErrorMapping{Err: errThingMissing, Status: fiber.StatusNotFound, Message: "No encontrado"}))
	app.Get("/validation", func(c *fiber.Ctx) error {
		return ValidateRequest(sampleRequest{N: 0})
	})
	app.Get("/mapped", func(c *fiber.Ctx) error {
		return errors.Join(errors.New("lookup"), errThingMissing)
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "conflict")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/other", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/validation", 400},
		{"/mapped", 404},
		{"/fiber", 409},
		{"/panic", 500},
		{"/other", 500},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.status, body.Code)
			if tt.path == "/mapped" {
				assert.Equal(t, "No encontrado", body.Message)
			}
			if tt.path == "/validation" {
				assert.Contains(t, body.Errors, "Query")
				assert.Contains(t, body.Errors, "N")
			}
		})
	}
}

func TestValidateRequest_OK(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Query: "q", N: 3}))
}

func TestJwtMiddleware(t *testing.T) {
	secret := "s3cret"
	app := fiber.New()
	app.Use(NewJwtMiddleware(secret))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("subject").(string))
	})

	sign := func(key string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", 401},
		{"wrong key", "Bearer " + sign("other"), 401},
		{"valid", "Bearer " + sign(secret), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, fiber.StatusNotFound, decodeBody(t, resp.Body).Code)
}
