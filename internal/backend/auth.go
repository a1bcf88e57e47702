package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// PasswordGrant signs in with email and password. It returns the parsed
// session together with the raw provider response.
func (c *Client) PasswordGrant(ctx context.Context, email, password string) (*domain.Session, json.RawMessage, error) {
	_, data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return nil, nil, toAuthError(err)
	}
	var session domain.Session
	if err := c.decode("token", data, &session); err != nil {
		return nil, nil, err
	}
	return &session, json.RawMessage(data), nil
}

// SignUpResult holds the created user and, when the project auto-confirms
// emails, an immediately usable session.
type SignUpResult struct {
	User       domain.User
	Session    *domain.Session
	RawSession json.RawMessage
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*SignUpResult, error) {
	_, data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password, Data: metadata},
	})
	if err != nil {
		return nil, toAuthError(err)
	}

	var probe struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(data, &probe)
	if probe.AccessToken != "" {
		var session domain.Session
		if err := c.decode("signup", data, &session); err != nil {
			return nil, err
		}
		return &SignUpResult{User: session.User, Session: &session, RawSession: json.RawMessage(data)}, nil
	}

	var user domain.User
	if err := c.decode("signup", data, &user); err != nil {
		return nil, err
	}
	return &SignUpResult{User: user}, nil
}

// Logout revokes the session server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, _, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  token,
	})
	if err != nil {
		return toAuthError(err)
	}
	return nil
}

// Recover asks the provider to send a password-recovery email.
func (c *Client) Recover(ctx context.Context, email string) error {
	_, _, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/recover",
		body:   map[string]string{"email": email},
	})
	if err != nil {
		return toAuthError(err)
	}
	return nil
}

// User returns the identity bound to token.
func (c *Client) User(ctx context.Context, token string) (*domain.User, error) {
	_, data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  token,
	})
	if err != nil {
		return nil, toAuthError(err)
	}
	var user domain.User
	if err := c.decode("user", data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
