package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
)

type authAPI interface {
	PasswordGrant(ctx context.Context, email, password string) (*domain.Session, json.RawMessage, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.SignUpResult, error)
	Logout(ctx context.Context, token string) error
	Recover(ctx context.Context, email string) error
	User(ctx context.Context, token string) (*domain.User, error)
	Select(ctx context.Context, token, table string, query url.Values, out any) error
}

// Service keeps one provider session per client, persisted under state.KeySession.
type Service struct {
	api    authAPI
	store  state.Repository
	logger *log.Logger
}

func New(api authAPI, store state.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{api: api, store: store, logger: logger}
}

// stored is the persisted shape: the provider response under currentSession.
type stored struct {
	CurrentSession json.RawMessage `json:"currentSession"`
}

// SignIn exchanges credentials for a session and persists it for clientID.
// Provider failures surface with the provider's own description.
func (s *Service) SignIn(ctx context.Context, clientID, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.Invalid("email", "required")
	}
	if password == "" {
		return nil, domain.Invalid("password", "required")
	}

	session, raw, err := s.api.PasswordGrant(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, clientID, raw); err != nil {
		return nil, err
	}
	return &session.User, nil
}

// SignUpOutcome tells the caller whether the account still awaits email confirmation.
type SignUpOutcome struct {
	User                domain.User `json:"user"`
	ConfirmationPending bool        `json:"confirmationPending"`
}

func (s *Service) SignUp(ctx context.Context, clientID, email, password, fullName string) (*SignUpOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.Invalid("email", "required")
	}
	if len(password) < 6 {
		return nil, domain.Invalid("password", "must be at least 6 characters")
	}

	var metadata map[string]any
	if name := strings.TrimSpace(fullName); name != "" {
		metadata = map[string]any{"full_name": name}
	}
	res, err := s.api.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}
	if res.Session != nil {
		if err := s.persist(ctx, clientID, res.RawSession); err != nil {
			return nil, err
		}
	}
	return &SignUpOutcome{
		User:                res.User,
		ConfirmationPending: res.Session == nil && res.User.EmailConfirmedAt == nil,
	}, nil
}

// SignOut notifies the provider on a best-effort basis and then always
// removes the local session.
func (s *Service) SignOut(ctx context.Context, clientID string) error {
	if token, ok := s.AccessToken(ctx, clientID); ok {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.Printf("sign out %s: provider logout failed: %v", clientID, err)
		}
	}
	if err := s.store.Delete(ctx, clientID, state.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Service) RecoverPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Invalid("email", "required")
	}
	return s.api.Recover(ctx, email)
}

// CurrentUser asks the provider who the stored token belongs to. A 401
// drops the stored session.
func (s *Service) CurrentUser(ctx context.Context, clientID string) (*domain.User, error) {
	token, ok := s.AccessToken(ctx, clientID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.api.User(ctx, token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			if clearErr := s.store.Delete(ctx, clientID, state.KeySession); clearErr != nil {
				s.logger.Printf("drop rejected session %s: %v", clientID, clearErr)
			}
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return user, nil
}

// Profile loads the profiles row of the signed-in user.
func (s *Service) Profile(ctx context.Context, clientID string) (*domain.Profile, error) {
	session, ok := s.Stored(ctx, clientID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	var rows []domain.Profile
	err := s.api.Select(ctx, session.AccessToken, "profiles", url.Values{
		"select": {"id,full_name,is_admin"},
		"id":     {backend.Eq(session.User.ID)},
		"limit":  {"1"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &rows[0], nil
}

// AccessToken returns the stored bearer token. Absent or unreadable
// sessions both report false; they are never an error.
func (s *Service) AccessToken(ctx context.Context, clientID string) (string, bool) {
	session, ok := s.Stored(ctx, clientID)
	if !ok {
		return "", false
	}
	return session.AccessToken, true
}

// Stored parses the persisted session without any network call.
func (s *Service) Stored(ctx context.Context, clientID string) (*domain.Session, bool) {
	data, err := s.store.Get(ctx, clientID, state.KeySession)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("read session %s: %v", clientID, err)
		}
		return nil, false
	}
	var envelope stored
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Printf("parse session %s: %v", clientID, err)
		return nil, false
	}
	if len(envelope.CurrentSession) == 0 {
		return nil, false
	}
	var session domain.Session
	if err := json.Unmarshal(envelope.CurrentSession, &session); err != nil {
		s.logger.Printf("parse session %s: %v", clientID, err)
		return nil, false
	}
	if session.AccessToken == "" {
		return nil, false
	}
	return &session, true
}

func (s *Service) persist(ctx context.Context, clientID string, raw json.RawMessage) error {
	data, err := json.Marshal(stored{CurrentSession: raw})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, clientID, state.KeySession, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
