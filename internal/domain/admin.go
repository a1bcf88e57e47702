package domain

import "time"

// AdminUser is a row of the get_all_users procedure.
type AdminUser struct {
	ID         string     `json:"id" validate:"required"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name,omitempty"`
	IsAdmin    bool       `json:"is_admin"`
	BalanceVND int64      `json:"balance_vnd"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// RechargeCode is a single-use, time-limited balance credit.
type RechargeCode struct {
	ID        string     `json:"id,omitempty"`
	Code      string     `json:"code" validate:"required"`
	AmountVND int64      `json:"amount_vnd"`
	IsUsed    bool       `json:"is_used"`
	UsedBy    *string    `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
