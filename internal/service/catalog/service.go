package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

const courseColumns = "id,slug,title,description,price,thumbnail,level,is_published,created_at"

type restAPI interface {
	Select(ctx context.Context, token, table string, query url.Values, out any) error
}

type tokenSource interface {
	AccessToken(ctx context.Context, clientID string) (string, bool)
}

// Service reads the published course catalog. Anonymous callers use the
// project's public key.
type Service struct {
	api    restAPI
	tokens tokenSource
}

func New(api restAPI, tokens tokenSource) *Service {
	return &Service{api: api, tokens: tokens}
}

type Filter struct {
	Level  string
	Search string
	Limit  int
}

func (s *Service) List(ctx context.Context, clientID string, f Filter) ([]domain.Course, error) {
	q := url.Values{
		"select":       {courseColumns},
		"is_published": {"eq.true"},
		"order":        {"created_at.desc"},
	}
	if level := strings.TrimSpace(f.Level); level != "" {
		q.Set("level", backend.Eq(level))
	}
	if search := sanitizeSearch(f.Search); search != "" {
		q.Set("title", "ilike.*"+search+"*")
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var courses []domain.Course
	if err := s.selectCourses(ctx, clientID, q, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}

func (s *Service) GetBySlug(ctx context.Context, clientID, slug string) (*domain.Course, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.Invalid("slug", "required")
	}
	var rows []domain.Course
	err := s.selectCourses(ctx, clientID, url.Values{
		"select":       {courseColumns},
		"slug":         {backend.Eq(slug)},
		"is_published": {"eq.true"},
		"limit":        {"1"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &rows[0], nil
}

// selectCourses reads with the caller's session and retries with the public
// key when the backend rejects an expired token.
func (s *Service) selectCourses(ctx context.Context, clientID string, q url.Values, out *[]domain.Course) error {
	token := s.token(ctx, clientID)
	err := s.api.Select(ctx, token, "courses", q, out)
	if token != "" && backend.IsUnauthorized(err) {
		*out = nil
		return s.api.Select(ctx, "", "courses", q, out)
	}
	return err
}

func (s *Service) token(ctx context.Context, clientID string) string {
	if s.tokens == nil {
		return ""
	}
	tok, _ := s.tokens.AccessToken(ctx, clientID)
	return tok
}

// sanitizeSearch strips characters with a meaning in PostgREST filters.
func sanitizeSearch(q string) string {
	q = strings.TrimSpace(q)
	return strings.Map(func(r rune) rune {
		switch r {
		case '*', ',', '(', ')', '%':
			return -1
		}
		return r
	}, q)
}
