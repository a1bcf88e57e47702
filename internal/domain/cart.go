package domain

// CartItem is a course selected for purchase. IDs are unique within a cart.
type CartItem struct {
	ID        string `json:"id" binding:"required"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Price     int64  `json:"price" binding:"min=0"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Level     string `json:"level,omitempty"`
}

// CartSummary is derived from the items on every read and never stored.
type CartSummary struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice int64      `json:"totalPrice"`
}

// Summarize computes the derived totals of items.
func Summarize(items []CartItem) CartSummary {
	if items == nil {
		items = []CartItem{}
	}
	var total int64
	for _, it := range items {
		total += it.Price
	}
	return CartSummary{Items: items, TotalItems: len(items), TotalPrice: total}
}
