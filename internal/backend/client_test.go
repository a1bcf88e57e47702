package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend/backendtest"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/gin-gonic/gin"
)

func newTestClient(t *testing.T) (*Client, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New(t)
	return New(Config{BaseURL: srv.URL, AnonKey: backendtest.AnonKey}, nil), srv
}

func TestPasswordGrant_Success(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/auth/v1/token", backendtest.JSON(http.StatusOK, gin.H{
		"access_token":  "tok",
		"refresh_token": "ref",
		"user":          gin.H{"id": "u1", "email": "a@example.com"},
	}))

	session, raw, err := client.PasswordGrant(context.Background(), "a@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AccessToken != "tok" || session.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if !strings.Contains(string(raw), `"refresh_token":"ref"`) {
		t.Fatalf("expected raw response to be kept, got %s", raw)
	}
	calls := srv.Calls()
	if calls[0].RawQuery != "grant_type=password" || calls[0].APIKey != backendtest.AnonKey {
		t.Fatalf("unexpected call %+v", calls[0])
	}
}

func TestPasswordGrant_SurfacesErrorDescription(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/auth/v1/token", backendtest.JSON(http.StatusBadRequest, gin.H{
		"error":             "invalid_grant",
		"error_description": "Invalid login credentials",
	}))

	_, _, err := client.PasswordGrant(context.Background(), "a@example.com", "bad")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if err.Error() != "Invalid login credentials" || authErr.Code != "invalid_grant" {
		t.Fatalf("unexpected auth error %+v", authErr)
	}
}

func TestPasswordGrant_RejectsResponseWithoutToken(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/auth/v1/token", backendtest.JSON(http.StatusOK, gin.H{
		"user": gin.H{"id": "u1"},
	}))

	_, _, err := client.PasswordGrant(context.Background(), "a@example.com", "secret")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestSignUp_WithoutSessionReturnsUser(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/auth/v1/signup", backendtest.JSON(http.StatusOK, gin.H{
		"id": "u2", "email": "new@example.com",
	}))

	res, err := client.SignUp(context.Background(), "new@example.com", "secret", map[string]any{"full_name": "New"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Session != nil || res.User.ID != "u2" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSelect_HTTPErrorFormat(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/rest/v1/orders", backendtest.Raw(http.StatusForbidden, `{"message":"permission denied"}`))

	var rows []domain.Order
	err := client.Select(context.Background(), "tok", "orders", url.Values{"select": {"*"}}, &rows)
	want := `HTTP 403: {"message":"permission denied"}`
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
	if got := srv.Calls()[0].Authorization; got != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", got)
	}
}

func TestSelect_UsesAnonKeyWithoutToken(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/rest/v1/courses", backendtest.JSON(http.StatusOK, []gin.H{{"id": "c1", "title": "Yoga"}}))

	var rows []domain.Course
	if err := client.Select(context.Background(), "", "courses", nil, &rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Yoga" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if got := srv.Calls()[0].Authorization; got != "Bearer "+backendtest.AnonKey {
		t.Fatalf("expected anon bearer, got %q", got)
	}
}

func TestSelect_RowMissingRequiredFieldIsRejected(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodGet, "/rest/v1/courses", backendtest.JSON(http.StatusOK, []gin.H{{"title": "no id"}}))

	var rows []domain.Course
	err := client.Select(context.Background(), "", "courses", nil, &rows)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestRPC_NoContentIsSuccess(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/rest/v1/rpc/mark_order_paid", backendtest.NoContent())

	var out map[string]any
	decoded, err := client.RPC(context.Background(), "tok", "mark_order_paid", map[string]string{"p_order_id": "o1"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded || out != nil {
		t.Fatalf("expected nothing decoded, got %v %v", decoded, out)
	}
}

func TestRPC_SendsEmptyObjectAndIdempotencyKey(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/rest/v1/rpc/debug_admin_status", backendtest.JSON(http.StatusOK, gin.H{"ok": true}))

	if _, err := client.RPC(context.Background(), "tok", "debug_admin_status", nil, nil, WithIdempotencyKey("k1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := srv.Calls()[0]
	if string(call.Body) != "{}" || call.IdempotencyKey != "k1" {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestCallResult_SuccessFalseUsesServerMessage(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/rest/v1/rpc/pay_with_balance", backendtest.JSON(http.StatusOK, gin.H{
		"success": false,
		"error":   "Số dư không đủ",
	}))

	err := client.CallResult(context.Background(), "tok", "pay_with_balance", map[string]int64{"p_amount": 1}, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %v", err)
	}
	if err.Error() != "Số dư không đủ" || rpcErr.Procedure != "pay_with_balance" {
		t.Fatalf("unexpected rpc error %+v", rpcErr)
	}
}

func TestCallResult_DecodesSuccessfulBody(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Handle(http.MethodPost, "/rest/v1/rpc/use_recharge_code", backendtest.JSON(http.StatusOK, gin.H{
		"success": true,
		"amount":  50000,
	}))

	var out struct {
		Amount int64 `json:"amount"`
	}
	if err := client.CallResult(context.Background(), "tok", "use_recharge_code", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Amount != 50000 {
		t.Fatalf("unexpected amount %d", out.Amount)
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(&HTTPError{Status: 401}) {
		t.Fatalf("expected 401 http error to be unauthorized")
	}
	if !IsUnauthorized(&AuthError{Status: 401}) {
		t.Fatalf("expected 401 auth error to be unauthorized")
	}
	if IsUnauthorized(&HTTPError{Status: 500}) || IsUnauthorized(errors.New("x")) {
		t.Fatalf("unexpected unauthorized match")
	}
}
