package domain

import "time"

// User is the identity returned by the auth provider.
type User struct {
	ID               string     `json:"id" validate:"required"`
	Email            string     `json:"email" validate:"omitempty,email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// Session is the provider's password-grant response as persisted per client.
type Session struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         User   `json:"user"`
}

// Profile is the application-side user row; IsAdmin only drives UI gating.
type Profile struct {
	ID       string `json:"id" validate:"required"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}
