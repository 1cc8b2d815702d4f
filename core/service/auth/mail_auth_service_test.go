package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nalgeon/be"
	"golang.org/x/oauth2"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"
	"github.com/Karan2916/Intellimail-2/pkg/cache"
)

type profileProvider struct {
	user  *domain.UserInfo
	err   error
	token string
}

func (p *profileProvider) ListMessageIDs(ctx context.Context, token string, max int) ([]string, error) {
	return nil, nil
}

func (p *profileProvider) GetMessage(ctx context.Context, token, id string) (*domain.RawMessage, error) {
	return nil, nil
}

func (p *profileProvider) SendMessage(ctx context.Context, token string, mail *domain.OutgoingMail) (*domain.SentMessage, error) {
	return nil, nil
}

func (p *profileProvider) GetUserInfo(ctx context.Context, token string) (*domain.UserInfo, error) {
	p.token = token
	return p.user, p.err
}

func signedIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return s
}

func newTokenServer(t *testing.T, idToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		body := map[string]any{
			"access_token":  "ya29.access",
			"refresh_token": "1//refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		}
		if idToken != "" {
			body["id_token"] = idToken
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(srv *httptest.Server, provider *profileProvider) (*Service, *cache.MemoryStore) {
	store := cache.NewMemoryStore(100)
	cfg := Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3001/api/auth/google/callback",
	}
	if srv != nil {
		cfg.Endpoint = &oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
		cfg.HTTPClient = srv.Client()
	}
	return NewService(cfg, store, provider), store
}

func stateFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	return u.Query().Get("state")
}

func TestAuthURL(t *testing.T) {
	svc, store := newTestService(nil, &profileProvider{})

	raw, err := svc.AuthURL(context.Background())
	be.Err(t, err, nil)

	u, err := url.Parse(raw)
	be.Err(t, err, nil)
	q := u.Query()
	be.Equal(t, q.Get("access_type"), "offline")
	be.Equal(t, q.Get("client_id"), "client-id")
	be.True(t, strings.Contains(q.Get("scope"), "gmail.readonly"))
	be.True(t, q.Get("state") != "")
	be.Equal(t, store.Len(), 1)
}

func TestAuthURLNotConfigured(t *testing.T) {
	svc := NewService(Config{}, cache.NewMemoryStore(10), &profileProvider{})

	_, err := svc.AuthURL(context.Background())
	be.True(t, apperr.HasCode(err, apperr.CodeConfigError))
}

func TestCallbackUsesIDTokenClaims(t *testing.T) {
	idToken := signedIDToken(t, jwt.MapClaims{
		"email":   "jane@example.com",
		"name":    "Jane Doe",
		"picture": "https://example.com/jane.png",
	})
	srv := newTokenServer(t, idToken)
	provider := &profileProvider{err: errors.New("should not be called")}
	svc, _ := newTestService(srv, provider)

	state := stateFromURL(t, must(svc.AuthURL(context.Background())))

	session, err := svc.Callback(context.Background(), "good-code", state)
	be.Err(t, err, nil)
	be.Equal(t, session.AccessToken, "ya29.access")
	be.Equal(t, session.RefreshToken, "1//refresh")
	be.Equal(t, session.User, domain.UserInfo{
		Email:   "jane@example.com",
		Name:    "Jane Doe",
		Picture: "https://example.com/jane.png",
	})
	be.Equal(t, provider.token, "")
}

func TestCallbackFallsBackToUserInfo(t *testing.T) {
	srv := newTokenServer(t, "")
	provider := &profileProvider{user: &domain.UserInfo{Email: "bob@example.com", Name: "Bob"}}
	svc, _ := newTestService(srv, provider)

	state := stateFromURL(t, must(svc.AuthURL(context.Background())))

	session, err := svc.Callback(context.Background(), "good-code", state)
	be.Err(t, err, nil)
	be.Equal(t, session.User.Email, "bob@example.com")
	be.Equal(t, provider.token, "ya29.access")
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	srv := newTokenServer(t, signedIDToken(t, jwt.MapClaims{"email": "a@b.c"}))
	svc, _ := newTestService(srv, &profileProvider{})

	state := stateFromURL(t, must(svc.AuthURL(context.Background())))

	_, err := svc.Callback(context.Background(), "good-code", state)
	be.Err(t, err, nil)

	_, err = svc.Callback(context.Background(), "good-code", state)
	be.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestCallbackErrors(t *testing.T) {
	srv := newTokenServer(t, "")

	tests := []struct {
		name     string
		code     string
		state    func(svc *Service) string
		wantCode string
	}{
		{
			name:     "missing code",
			code:     "",
			state:    func(*Service) string { return "x" },
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "missing state",
			code:     "good-code",
			state:    func(*Service) string { return "" },
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "unknown state",
			code:     "good-code",
			state:    func(*Service) string { return "forged" },
			wantCode: apperr.CodeForbidden,
		},
		{
			name: "exchange rejected",
			code: "bad-code",
			state: func(svc *Service) string {
				return stateFromURL(t, must(svc.AuthURL(context.Background())))
			},
			wantCode: apperr.CodeOAuthFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(srv, &profileProvider{})
			_, err := svc.Callback(context.Background(), tt.code, tt.state(svc))
			if !apperr.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestProfileFromIDToken(t *testing.T) {
	user, err := profileFromIDToken(signedIDToken(t, jwt.MapClaims{"email": "x@y.z", "name": 42}))
	be.Err(t, err, nil)
	be.Equal(t, user.Email, "x@y.z")
	be.Equal(t, user.Name, "")

	_, err = profileFromIDToken("not-a-jwt")
	be.True(t, err != nil)
}

func must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}
