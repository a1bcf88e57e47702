package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/cart"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/catalog"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/order"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/session"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubSessionSvc struct {
	user       *domain.User
	profile    *domain.Profile
	err        error
	profileErr error
	lastClient string
}

func (s *stubSessionSvc) SignIn(_ context.Context, clientID, _, _ string) (*domain.User, error) {
	s.lastClient = clientID
	return s.user, s.err
}

func (s *stubSessionSvc) SignUp(_ context.Context, clientID, _, _, _ string) (*session.SignUpOutcome, error) {
	s.lastClient = clientID
	if s.err != nil {
		return nil, s.err
	}
	return &session.SignUpOutcome{User: *s.user, ConfirmationPending: true}, nil
}

func (s *stubSessionSvc) SignOut(_ context.Context, clientID string) error {
	s.lastClient = clientID
	return s.err
}

func (s *stubSessionSvc) RecoverPassword(context.Context, string) error {
	return s.err
}

func (s *stubSessionSvc) CurrentUser(_ context.Context, clientID string) (*domain.User, error) {
	s.lastClient = clientID
	return s.user, s.err
}

func (s *stubSessionSvc) Profile(context.Context, string) (*domain.Profile, error) {
	return s.profile, s.profileErr
}

type stubCatalogSvc struct {
	courses []domain.Course
	filter  catalog.Filter
	err     error
}

func (s *stubCatalogSvc) List(_ context.Context, _ string, f catalog.Filter) ([]domain.Course, error) {
	s.filter = f
	return s.courses, s.err
}

func (s *stubCatalogSvc) GetBySlug(_ context.Context, _ string, slug string) (*domain.Course, error) {
	for _, c := range s.courses {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubOrderSvc struct {
	checkout order.CheckoutResult
	payment  order.PaymentResult
	orders   []domain.Order
	orderID  string
	err      error
}

func (s *stubOrderSvc) Checkout(context.Context, string) (order.CheckoutResult, error) {
	return s.checkout, s.err
}

func (s *stubOrderSvc) CreateOrder(context.Context, string, []string, int64) (string, error) {
	return s.orderID, s.err
}

func (s *stubOrderSvc) MarkOrderPaid(context.Context, string, string) (bool, error) {
	return s.err == nil, s.err
}

func (s *stubOrderSvc) List(context.Context, string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderSvc) Get(_ context.Context, _ string, id string) (domain.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, s.err
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (s *stubOrderSvc) PayWithBalance(context.Context, string, string) (order.PaymentResult, error) {
	return s.payment, s.err
}

type stubBalanceSvc struct {
	snap       domain.WalletSnapshot
	err        error
	lastAmount int64
	lastCode   string
}

func (s *stubBalanceSvc) Snapshot(context.Context, string) (domain.WalletSnapshot, error) {
	return s.snap, s.err
}

func (s *stubBalanceSvc) RedeemCode(_ context.Context, _ string, code string) (domain.WalletSnapshot, error) {
	s.lastCode = code
	return s.snap, s.err
}

func (s *stubBalanceSvc) Pay(_ context.Context, _ string, amount int64, _ string) (domain.WalletSnapshot, error) {
	s.lastAmount = amount
	return s.snap, s.err
}

type stubEnrollmentSvc struct {
	rows   []domain.Enrollment
	access bool
	err    error
}

func (s *stubEnrollmentSvc) Mine(context.Context, string) ([]domain.Enrollment, error) {
	return s.rows, s.err
}

func (s *stubEnrollmentSvc) HasAccess(context.Context, string, string) (bool, error) {
	return s.access, s.err
}

type stubAdminSvc struct {
	users   []domain.AdminUser
	rows    []domain.Enrollment
	code    domain.RechargeCode
	created admin.NewRechargeCode
	granted [2]string
	admin   *bool
	err     error
}

func (s *stubAdminSvc) ListUsers(context.Context, string) ([]domain.AdminUser, error) {
	return s.users, s.err
}

func (s *stubAdminSvc) ListCourses(context.Context, string) ([]domain.Course, error) {
	return []domain.Course{}, s.err
}

func (s *stubAdminSvc) UserEnrollments(context.Context, string, string) ([]domain.Enrollment, error) {
	return s.rows, s.err
}

func (s *stubAdminSvc) GrantEnrollment(_ context.Context, _ string, userID, courseID string) ([]domain.Enrollment, error) {
	s.granted = [2]string{userID, courseID}
	return s.rows, s.err
}

func (s *stubAdminSvc) RevokeEnrollment(context.Context, string, string, string) ([]domain.Enrollment, error) {
	return s.rows, s.err
}

func (s *stubAdminSvc) CreateRechargeCode(_ context.Context, _ string, in admin.NewRechargeCode) (domain.RechargeCode, error) {
	s.created = in
	return s.code, s.err
}

func (s *stubAdminSvc) ListRechargeCodes(context.Context, string) ([]domain.RechargeCode, error) {
	return []domain.RechargeCode{s.code}, s.err
}

func (s *stubAdminSvc) SetUserAdmin(_ context.Context, _ string, _ string, isAdmin bool) error {
	s.admin = &isAdmin
	return s.err
}

func (s *stubAdminSvc) DebugAdminStatus(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"is_admin":false}`), s.err
}

// testDeps returns working stubs plus a real cart over in-memory state.
func testDeps() Deps {
	return Deps{
		SessionSvc:    &stubSessionSvc{user: &domain.User{ID: "u1", Email: "learner@example.com"}},
		CatalogSvc:    &stubCatalogSvc{},
		CartSvc:       cart.New(state.NewMemory(), nil),
		OrderSvc:      &stubOrderSvc{},
		BalanceSvc:    &stubBalanceSvc{},
		EnrollmentSvc: &stubEnrollmentSvc{},
		AdminSvc:      &stubAdminSvc{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), Options{AllowedOrigins: []string{"http://localhost:5173"}}, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

// do sends a request as client "c1" unless the caller sets its own header.
func do(router http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(clientHeader, "c1")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
