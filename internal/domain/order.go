package domain

import "time"

// OrderStatus is reported by the backend; transitions are decided server-side.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderFailed   OrderStatus = "failed"
	OrderExpired  OrderStatus = "expired"
	OrderCanceled OrderStatus = "canceled"
)

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	return s != OrderPending
}

type Order struct {
	ID          string      `json:"id" validate:"required"`
	UserID      string      `json:"user_id,omitempty"`
	Status      OrderStatus `json:"status" validate:"omitempty,oneof=pending paid failed expired canceled"`
	TotalAmount int64       `json:"total_amount"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	Items       []OrderItem `json:"items,omitempty" validate:"dive"`
}

type OrderItem struct {
	ID       string  `json:"id,omitempty"`
	CourseID string  `json:"course_id" validate:"required"`
	Price    int64   `json:"price"`
	Course   *Course `json:"course,omitempty"`
}
