package enrollment

import (
	"context"
	"net/url"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

const enrollmentColumns = "id,user_id,course_id,status,source,enrolled_at,course:courses(id,slug,title,price,thumbnail,level)"

type restAPI interface {
	Select(ctx context.Context, token, table string, query url.Values, out any) error
}

type tokenSource interface {
	AccessToken(ctx context.Context, clientID string) (string, bool)
}

type Service struct {
	api    restAPI
	tokens tokenSource
}

func New(api restAPI, tokens tokenSource) *Service {
	return &Service{api: api, tokens: tokens}
}

// Mine lists the caller's enrollments, newest first. Row-level security on
// the backend scopes the rows to the bearer.
func (s *Service) Mine(ctx context.Context, clientID string) ([]domain.Enrollment, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	var rows []domain.Enrollment
	err := s.api.Select(ctx, token, "enrollments", url.Values{
		"select": {enrollmentColumns},
		"order":  {"enrolled_at.desc"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Enrollment{}
	}
	return rows, nil
}

// HasAccess reports whether the caller holds an active or completed
// enrollment for courseID.
func (s *Service) HasAccess(ctx context.Context, clientID, courseID string) (bool, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return false, domain.ErrNotAuthenticated
	}
	if courseID == "" {
		return false, domain.Invalid("course_id", "required")
	}
	var rows []domain.Enrollment
	err := s.api.Select(ctx, token, "enrollments", url.Values{
		"select":    {"id,course_id,status"},
		"course_id": {backend.Eq(courseID)},
	}, &rows)
	if err != nil {
		return false, err
	}
	for _, e := range rows {
		if e.GrantsAccess() {
			return true, nil
		}
	}
	return false, nil
}
