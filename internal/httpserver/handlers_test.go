package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/order"
)

func decodeBody(t *testing.T, body string, out any) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func TestSignIn_UsesClientIDAndSurfacesProviderMessage(t *testing.T) {
	sess := &stubSessionSvc{user: &domain.User{ID: "u1"}}
	deps := testDeps()
	deps.SessionSvc = sess
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/auth/signin", `{"email":"a@example.com","password":"x"}`)
	if rec.Code != http.StatusOK || sess.lastClient != "c1" {
		t.Fatalf("unexpected %d client=%q", rec.Code, sess.lastClient)
	}

	sess.err = &backend.AuthError{Status: http.StatusBadRequest, Description: "Invalid login credentials"}
	rec = do(router, http.MethodPost, "/api/auth/signin", `{"email":"a@example.com","password":"x"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid login credentials") {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodPost, "/api/auth/signin", `{"email":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bind failure, got %d", rec.Code)
	}
}

func TestSignUp_Created(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodPost, "/api/auth/signup", `{"email":"a@example.com","password":"secret1","fullName":"Lan"}`)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"confirmationPending":true`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestMe_NotAuthenticatedMessage(t *testing.T) {
	deps := testDeps()
	deps.SessionSvc = &stubSessionSvc{err: domain.ErrNotAuthenticated}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/api/auth/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	decodeBody(t, rec.Body.String(), &body)
	if body.Error != "Bạn cần đăng nhập để thực hiện thao tác này" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestMe_IncludesProfile(t *testing.T) {
	deps := testDeps()
	deps.SessionSvc = &stubSessionSvc{
		user:    &domain.User{ID: "u1"},
		profile: &domain.Profile{ID: "u1", IsAdmin: true},
	}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/api/auth/me", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"is_admin":true`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestCart_AddRemoveScenario(t *testing.T) {
	router := newTestRouter(t, testDeps())

	do(router, http.MethodPost, "/api/cart/items", `{"id":"A","title":"Hatha","price":100000}`)
	do(router, http.MethodPost, "/api/cart/items", `{"id":"B","title":"Vinyasa","price":50000}`)
	rec := do(router, http.MethodPost, "/api/cart/items", `{"id":"A","title":"Hatha","price":100000}`)

	var summary domain.CartSummary
	decodeBody(t, rec.Body.String(), &summary)
	if summary.TotalItems != 2 || summary.TotalPrice != 150000 {
		t.Fatalf("expected 2 items totalling 150000, got %+v", summary)
	}

	rec = do(router, http.MethodDelete, "/api/cart/items/A", "")
	decodeBody(t, rec.Body.String(), &summary)
	if summary.TotalItems != 1 || summary.TotalPrice != 50000 || summary.Items[0].ID != "B" {
		t.Fatalf("unexpected summary after remove %+v", summary)
	}

	rec = do(router, http.MethodGet, "/api/cart", "", clientHeader, "someone-else")
	decodeBody(t, rec.Body.String(), &summary)
	if summary.TotalItems != 0 {
		t.Fatalf("carts must be per client, got %+v", summary)
	}

	rec = do(router, http.MethodDelete, "/api/cart", "")
	decodeBody(t, rec.Body.String(), &summary)
	if rec.Code != http.StatusOK || summary.TotalItems != 0 || summary.Items == nil {
		t.Fatalf("unexpected clear %d %+v", rec.Code, summary)
	}
}

func TestCart_RejectsInvalidItem(t *testing.T) {
	router := newTestRouter(t, testDeps())
	for _, body := range []string{`{"title":"no id","price":1}`, `{"id":"A","price":-1}`, `{bad`} {
		if rec := do(router, http.MethodPost, "/api/cart/items", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCourses_ListParsesFilter(t *testing.T) {
	cat := &stubCatalogSvc{courses: []domain.Course{{ID: "c1", Slug: "hatha"}}}
	deps := testDeps()
	deps.CatalogSvc = cat
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/api/courses?level=beginner&q=yoga&limit=5", "")
	if rec.Code != http.StatusOK || cat.filter.Level != "beginner" || cat.filter.Search != "yoga" || cat.filter.Limit != 5 {
		t.Fatalf("unexpected %d filter=%+v", rec.Code, cat.filter)
	}
	if rec := do(router, http.MethodGet, "/api/courses?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/courses/hatha", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected course, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/courses/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckout_Statuses(t *testing.T) {
	cases := []struct {
		name string
		svc  *stubOrderSvc
		want int
	}{
		{"created", &stubOrderSvc{checkout: order.CheckoutResult{OrderID: "o1"}}, http.StatusCreated},
		{"reused", &stubOrderSvc{checkout: order.CheckoutResult{OrderID: "o1", Reused: true}}, http.StatusOK},
		{"empty cart", &stubOrderSvc{err: domain.ErrEmptyCart}, http.StatusBadRequest},
		{"signed out", &stubOrderSvc{err: domain.ErrNotAuthenticated}, http.StatusUnauthorized},
		{"provider 5xx", &stubOrderSvc{err: &backend.HTTPError{Status: 503, Body: "unavailable"}}, http.StatusBadGateway},
		{"bad shape", &stubOrderSvc{err: &backend.SchemaError{What: "create_order"}}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := testDeps()
			deps.OrderSvc = tc.svc
			rec := do(newTestRouter(t, deps), http.MethodPost, "/api/checkout", "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOrders_ProviderErrorPassthrough(t *testing.T) {
	deps := testDeps()
	deps.OrderSvc = &stubOrderSvc{err: &backend.HTTPError{Status: http.StatusForbidden, Body: `{"message":"denied"}`}}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/orders/o1/mark-paid", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body errorResponse
	decodeBody(t, rec.Body.String(), &body)
	if body.Error != `HTTP 403: {"message":"denied"}` {
		t.Fatalf("unexpected error text %q", body.Error)
	}
}

func TestOrders_CreateAndMarkPaid(t *testing.T) {
	deps := testDeps()
	deps.OrderSvc = &stubOrderSvc{orderID: "o9"}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/orders", `{"courseIds":["A","B"],"totalAmount":150000}`)
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"order_id":"o9"`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(router, http.MethodPost, "/api/orders", `{"courseIds":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty course list, got %d", rec.Code)
	}
	rec = do(router, http.MethodPost, "/api/orders/o9/mark-paid", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestBalance_PayRefusalIs422WithServerMessage(t *testing.T) {
	bal := &stubBalanceSvc{err: &backend.RPCError{Procedure: "pay_with_balance", Message: "Số dư không đủ"}}
	deps := testDeps()
	deps.BalanceSvc = bal
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/balance/pay", `{"amount":50000}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body errorResponse
	decodeBody(t, rec.Body.String(), &body)
	if body.Error != "Số dư không đủ" || bal.lastAmount != 50000 {
		t.Fatalf("unexpected error %q amount=%d", body.Error, bal.lastAmount)
	}
	if rec := do(router, http.MethodPost, "/api/balance/pay", `{"amount":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero amount, got %d", rec.Code)
	}
}

func TestBalance_RedeemAndRead(t *testing.T) {
	bal := &stubBalanceSvc{snap: domain.WalletSnapshot{Balance: domain.Balance{BalanceVND: 70000}, Transactions: []domain.Transaction{}}}
	deps := testDeps()
	deps.BalanceSvc = bal
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/balance/redeem", `{"code":"YOGA50"}`)
	if rec.Code != http.StatusOK || bal.lastCode != "YOGA50" || !strings.Contains(rec.Body.String(), `"balance_vnd":70000`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(router, http.MethodGet, "/api/balance", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEnrollments(t *testing.T) {
	deps := testDeps()
	deps.EnrollmentSvc = &stubEnrollmentSvc{
		rows:   []domain.Enrollment{{ID: "e1", CourseID: "c1", Status: domain.EnrollmentActive}},
		access: true,
	}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/api/enrollments", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
	rec = do(router, http.MethodGet, "/api/enrollments/c1/access", "")
	if !strings.Contains(rec.Body.String(), `"has_access":true`) {
		t.Fatalf("unexpected %s", rec.Body.String())
	}
}

func TestAdmin_Operations(t *testing.T) {
	adm := &stubAdminSvc{code: domain.RechargeCode{Code: "YOGA50", AmountVND: 50000}}
	deps := testDeps()
	deps.SessionSvc = &stubSessionSvc{profile: &domain.Profile{ID: "u1", IsAdmin: true}}
	deps.AdminSvc = adm
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/api/admin/users/u2/enrollments", `{"courseId":"c1"}`)
	if rec.Code != http.StatusOK || adm.granted != [2]string{"u2", "c1"} {
		t.Fatalf("unexpected grant %d %v", rec.Code, adm.granted)
	}

	rec = do(router, http.MethodPost, "/api/admin/recharge-codes", `{"code":"yoga50","amount_vnd":50000}`)
	if rec.Code != http.StatusCreated || adm.created.Code != "yoga50" || adm.created.AmountVND != 50000 {
		t.Fatalf("unexpected create %d %+v", rec.Code, adm.created)
	}
	if rec := do(router, http.MethodPost, "/api/admin/recharge-codes", `{"code":"x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without amount, got %d", rec.Code)
	}

	rec = do(router, http.MethodPut, "/api/admin/users/u2/admin", `{"isAdmin":false}`)
	if rec.Code != http.StatusNoContent || adm.admin == nil || *adm.admin {
		t.Fatalf("unexpected set admin %d %v", rec.Code, adm.admin)
	}
	if rec := do(router, http.MethodPut, "/api/admin/users/u2/admin", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without flag, got %d", rec.Code)
	}

	adm.err = &backend.RPCError{Procedure: "revoke_enrollment", Message: "Không tìm thấy ghi danh"}
	rec = do(router, http.MethodDelete, "/api/admin/users/u2/enrollments/c1", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStatusFor_UnknownIs500(t *testing.T) {
	if got := statusFor(errTest("boom")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
	if got := statusFor(domain.Invalid("x", "bad")); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
