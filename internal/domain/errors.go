package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated is returned before any remote call when no session token is stored.
	ErrNotAuthenticated = errors.New("Bạn cần đăng nhập để thực hiện thao tác này")
	// ErrEmptyCart rejects checkout of a cart without items.
	ErrEmptyCart = errors.New("Giỏ hàng của bạn đang trống")
	// ErrForbidden is returned by the admin gate for non-admin profiles.
	ErrForbidden = errors.New("Bạn không có quyền truy cập trang quản trị")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
