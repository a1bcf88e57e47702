// Package admin wraps the back-office procedures. Every call forwards the
// caller's own bearer token; whether the caller may run it is decided by the
// backend, not here.
package admin

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/google/uuid"
)

type API interface {
	Select(ctx context.Context, token, table string, query url.Values, out any) error
	RPC(ctx context.Context, token, name string, params any, out any, opts ...backend.CallOption) (bool, error)
	CallResult(ctx context.Context, token, name string, params any, out any, opts ...backend.CallOption) error
}

type TokenSource interface {
	AccessToken(ctx context.Context, clientID string) (string, bool)
}

type Service struct {
	api    API
	tokens TokenSource
	logger *log.Logger
}

func New(api API, tokens TokenSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{api: api, tokens: tokens, logger: logger}
}

func (s *Service) token(ctx context.Context, clientID string) (string, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return "", domain.ErrNotAuthenticated
	}
	return token, nil
}

func (s *Service) ListUsers(ctx context.Context, clientID string) ([]domain.AdminUser, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	users := []domain.AdminUser{}
	if _, err := s.api.RPC(ctx, token, "get_all_users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListCourses returns every course, unpublished ones included.
func (s *Service) ListCourses(ctx context.Context, clientID string) ([]domain.Course, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	courses := []domain.Course{}
	if _, err := s.api.RPC(ctx, token, "get_all_courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

type userParams struct {
	UserID string `json:"p_user_id"`
}

type enrollmentParams struct {
	UserID   string `json:"p_user_id"`
	CourseID string `json:"p_course_id"`
}

func (s *Service) UserEnrollments(ctx context.Context, clientID, userID string) ([]domain.Enrollment, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.Invalid("user_id", "required")
	}
	return s.userEnrollments(ctx, token, userID)
}

func (s *Service) userEnrollments(ctx context.Context, token, userID string) ([]domain.Enrollment, error) {
	rows := []domain.Enrollment{}
	if _, err := s.api.RPC(ctx, token, "get_user_enrollments", userParams{UserID: userID}, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GrantEnrollment gives userID direct access to courseID and returns the
// user's enrollments as the backend reports them afterwards.
func (s *Service) GrantEnrollment(ctx context.Context, clientID, userID, courseID string) ([]domain.Enrollment, error) {
	return s.changeEnrollment(ctx, clientID, "grant_enrollment_direct", userID, courseID)
}

// RevokeEnrollment cancels userID's access to courseID and returns the
// refreshed enrollment list.
func (s *Service) RevokeEnrollment(ctx context.Context, clientID, userID, courseID string) ([]domain.Enrollment, error) {
	return s.changeEnrollment(ctx, clientID, "revoke_enrollment", userID, courseID)
}

func (s *Service) changeEnrollment(ctx context.Context, clientID, procedure, userID, courseID string) ([]domain.Enrollment, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domain.Invalid("user_id", "required")
	}
	if courseID == "" {
		return nil, domain.Invalid("course_id", "required")
	}
	if err := s.api.CallResult(ctx, token, procedure, enrollmentParams{UserID: userID, CourseID: courseID}, nil); err != nil {
		return nil, err
	}
	s.logger.Printf("admin %s user=%s course=%s", procedure, userID, courseID)
	return s.userEnrollments(ctx, token, userID)
}

// NewRechargeCode describes a code to mint. An empty Code is generated.
type NewRechargeCode struct {
	Code      string     `json:"code"`
	AmountVND int64      `json:"amount_vnd" binding:"required,gt=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type rechargeParams struct {
	Code      string     `json:"p_code"`
	AmountVND int64      `json:"p_amount"`
	ExpiresAt *time.Time `json:"p_expires_at,omitempty"`
}

func (s *Service) CreateRechargeCode(ctx context.Context, clientID string, in NewRechargeCode) (domain.RechargeCode, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return domain.RechargeCode{}, err
	}
	if in.AmountVND <= 0 {
		return domain.RechargeCode{}, domain.Invalid("amount_vnd", "must be positive")
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		code = GenerateCode()
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		return domain.RechargeCode{}, domain.Invalid("expires_at", "must be in the future")
	}

	params := rechargeParams{Code: code, AmountVND: in.AmountVND, ExpiresAt: in.ExpiresAt}
	if err := s.api.CallResult(ctx, token, "create_recharge_code", params, nil); err != nil {
		return domain.RechargeCode{}, err
	}
	s.logger.Printf("admin created recharge code %s (%d VND)", code, in.AmountVND)
	return domain.RechargeCode{Code: code, AmountVND: in.AmountVND, ExpiresAt: in.ExpiresAt}, nil
}

// GenerateCode returns a random 12 character upper-case code.
func GenerateCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func (s *Service) ListRechargeCodes(ctx context.Context, clientID string) ([]domain.RechargeCode, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	var rows []domain.RechargeCode
	err = s.api.Select(ctx, token, "recharge_codes", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.RechargeCode{}
	}
	return rows, nil
}

type adminFlagParams struct {
	UserID  string `json:"p_user_id"`
	IsAdmin bool   `json:"p_is_admin"`
}

func (s *Service) SetUserAdmin(ctx context.Context, clientID, userID string, isAdmin bool) error {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return err
	}
	if userID == "" {
		return domain.Invalid("user_id", "required")
	}
	if err := s.api.CallResult(ctx, token, "set_user_admin", adminFlagParams{UserID: userID, IsAdmin: isAdmin}, nil); err != nil {
		return err
	}
	s.logger.Printf("admin set is_admin=%t for user %s", isAdmin, userID)
	return nil
}

// DebugAdminStatus returns the backend's own view of the caller's admin
// rights, verbatim.
func (s *Service) DebugAdminStatus(ctx context.Context, clientID string) (json.RawMessage, error) {
	token, err := s.token(ctx, clientID)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	decoded, err := s.api.RPC(ctx, token, "debug_admin_status", nil, &raw)
	if err != nil {
		return nil, err
	}
	if !decoded {
		return json.RawMessage("null"), nil
	}
	return raw, nil
}
