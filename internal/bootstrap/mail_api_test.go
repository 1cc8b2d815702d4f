package bootstrap

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/Karan2916/Intellimail-2/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Environment:      "development",
		Timezone:         "UTC",
		OpenAIAPIKey:     "sk-test",
		LLMModel:         "test-model",
		InboxPageSize:    20,
		InboxCacheTTLSec: 60,
		GmailTimeoutSec:  5,
		LLMTimeoutSec:    5,
		AIRateLimit:      30,
	}
}

func TestNewAppRoutes(t *testing.T) {
	cfg := testConfig()
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	defer cleanup()

	app := NewApp(cfg, deps)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{"GET", "/api/health", 200},
		{"GET", "/api/ready", 200},
		{"GET", "/api/metrics", 200},
		{"GET", "/api/inbox", 401},
		{"GET", "/api/me", 401},
		{"POST", "/api/messages/send", 401},
		{"POST", "/api/generate", 400},
		{"GET", "/api/auth/google/url", 500},
		{"GET", "/api/unknown", 404},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				raw, _ := io.ReadAll(resp.Body)
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, raw)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Errorf("missing X-Request-ID header")
			}
		})
	}
}

func TestHealthBody(t *testing.T) {
	cfg := testConfig()
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	defer cleanup()

	resp, err := NewApp(cfg, deps).Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["message"] != "Server is running" {
		t.Errorf("unexpected body %v", body)
	}
}
