package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/in"
	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"
	"github.com/Karan2916/Intellimail-2/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateTTL       = 10 * time.Minute
)

var GoogleScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint overrides google.Endpoint when set.
	Endpoint   *oauth2.Endpoint
	HTTPClient *http.Client
}

type Service struct {
	oauth      *oauth2.Config
	store      out.SessionStore
	provider   out.MailProvider
	httpClient *http.Client
}

func NewService(cfg Config, store out.SessionStore, provider out.MailProvider) *Service {
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	var oauthConfig *oauth2.Config
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     endpoint,
		}
	}

	return &Service{
		oauth:      oauthConfig,
		store:      store,
		provider:   provider,
		httpClient: cfg.HTTPClient,
	}
}

// AuthURL returns the Google consent URL. The generated state is valid for
// one callback within ten minutes.
func (s *Service) AuthURL(ctx context.Context) (string, error) {
	if s.oauth == nil {
		return "", apperr.ConfigError("google oauth not configured")
	}

	state := uuid.NewString()
	if err := s.store.Set(ctx, stateKeyPrefix+state, "1", stateTTL); err != nil {
		return "", apperr.InternalWithError(err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (s *Service) Callback(ctx context.Context, code, state string) (*domain.Session, error) {
	if s.oauth == nil {
		return nil, apperr.ConfigError("google oauth not configured")
	}
	if code == "" {
		return nil, apperr.MissingField("code")
	}
	if state == "" {
		return nil, apperr.MissingField("state")
	}

	_, ok, err := s.store.Take(ctx, stateKeyPrefix+state)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}
	if !ok {
		return nil, apperr.Forbidden("invalid or expired oauth state")
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.OAuthFailed("google", err)
	}

	session := &domain.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}

	if idToken, _ := token.Extra("id_token").(string); idToken != "" {
		user, err := profileFromIDToken(idToken)
		if err != nil {
			logger.WithError(err).Warn("[AuthService.Callback] unreadable id_token")
		} else {
			session.User = *user
		}
	}

	if session.User.Email == "" {
		user, err := s.provider.GetUserInfo(ctx, token.AccessToken)
		if err != nil {
			return nil, err
		}
		session.User = *user
	}

	logger.Info("[AuthService.Callback] signed in %s", session.User.Email)
	return session, nil
}

// profileFromIDToken reads profile claims without verifying the signature.
// The token was received directly from Google's token endpoint.
func profileFromIDToken(idToken string) (*domain.UserInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, err
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return &domain.UserInfo{
		Email:   str("email"),
		Name:    str("name"),
		Picture: str("picture"),
	}, nil
}

var _ in.AuthService = (*Service)(nil)
