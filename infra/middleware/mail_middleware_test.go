package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/Karan2916/Intellimail-2/pkg/apperr"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(Recover())
	app.Use(RequestID())
	app.Use(RequestLogger())
	return app
}

func decode(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (int, string, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out ErrorResponse
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, resp.Header.Get("X-Request-ID"), out
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/app", func(c *fiber.Ctx) error { return apperr.MissingField("prompt") })
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return errors.Join(errors.New("context"), apperr.ExternalError("gmail", errors.New("x")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", 400, apperr.CodeMissingField},
		{"/wrapped", 502, apperr.CodeExternalError},
		{"/plain", 500, apperr.CodeInternalError},
		{"/panic", 500, apperr.CodeInternalError},
		{"/missing", 404, apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, requestID, body := decode(t, app, "GET", tt.path, nil)
			if status != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, status)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Error.Code)
			}
			if body.Message == "" || body.Message != body.Error.Message {
				t.Errorf("expected top-level message, got %+v", body)
			}
			if body.Success {
				t.Errorf("expected success=false")
			}
			if requestID == "" || body.RequestID != requestID {
				t.Errorf("expected request id %q in body, got %q", requestID, body.RequestID)
			}
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(204) })

	_, requestID, _ := decode(t, app, "GET", "/", map[string]string{"X-Request-ID": "req-42"})
	if requestID != "req-42" {
		t.Errorf("expected req-42, got %q", requestID)
	}
}

func TestBearerAuth(t *testing.T) {
	app := newApp()
	app.Get("/", BearerAuth(), func(c *fiber.Ctx) error {
		token, err := AccessToken(c)
		if err != nil {
			return err
		}
		return c.SendString(token)
	})

	tests := []struct {
		header     string
		wantStatus int
	}{
		{"Bearer abc", 200},
		{"bearer abc", 200},
		{"", 401},
		{"Bearer", 401},
		{"Token abc", 401},
		{"Bearer a b", 401},
	}
	for _, tt := range tests {
		status, _, _ := decode(t, app, "GET", "/", map[string]string{"Authorization": tt.header})
		if status != tt.wantStatus {
			t.Errorf("%q: expected %d, got %d", tt.header, tt.wantStatus, status)
		}
	}
}

func TestRateLimit(t *testing.T) {
	app := newApp()
	app.Get("/", RateLimit(1, time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(204) })

	status, _, _ := decode(t, app, "GET", "/", nil)
	if status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	status, _, body := decode(t, app, "GET", "/", nil)
	if status != 429 || body.Error.Code != apperr.CodeRateLimited {
		t.Errorf("expected 429 RATE_LIMITED, got %d %+v", status, body)
	}

	unlimited := newApp()
	unlimited.Get("/", RateLimit(0, time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(204) })
	for i := 0; i < 5; i++ {
		if status, _, _ := decode(t, unlimited, "GET", "/", nil); status != 204 {
			t.Fatalf("expected no limit, got %d", status)
		}
	}
}
