package httpserver

import (
	"errors"
	"net/http"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps service and provider errors onto HTTP statuses. Provider
// 4xx answers keep their status; anything else from upstream is a 502.
func statusFor(err error) int {
	var (
		vErr      *domain.ValidationError
		rpcErr    *backend.RPCError
		authErr   *backend.AuthError
		httpErr   *backend.HTTPError
		schemaErr *backend.SchemaError
	)
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart), errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &rpcErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &authErr):
		if authErr.Status >= 400 && authErr.Status < 500 {
			return authErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &httpErr):
		if httpErr.Status >= 400 && httpErr.Status < 500 {
			return httpErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		resp.Error = vErr.Message
		resp.Field = vErr.Field
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal error"
	}
	c.JSON(status, resp)
}

// writeBindError answers a request body that failed binding.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}
