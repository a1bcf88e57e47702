package domain

import "time"

// Balance is the wallet of a user in VND. It is only ever changed server-side.
type Balance struct {
	UserID     string     `json:"user_id"`
	BalanceVND int64      `json:"balance_vnd"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type Transaction struct {
	ID          string     `json:"id" validate:"required"`
	UserID      string     `json:"user_id,omitempty"`
	Type        string     `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description,omitempty"`
	OrderID     *string    `json:"order_id,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// WalletSnapshot is what callers see after any balance read or mutation.
// Stale is set when a mutation succeeded but the re-fetch did not.
type WalletSnapshot struct {
	Balance      Balance       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
	Stale        bool          `json:"stale,omitempty"`
}
