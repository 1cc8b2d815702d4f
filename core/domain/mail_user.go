package domain

import (
	"time"
)

// UserInfo is the Google profile of the authenticated mailbox owner.
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session is handed to the client after a successful OAuth callback.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expiry       time.Time `json:"expiry"`
	User         UserInfo  `json:"user"`
}
