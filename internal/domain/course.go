package domain

import "time"

type Course struct {
	ID          string     `json:"id" validate:"required"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Level       string     `json:"level,omitempty"`
	Published   bool       `json:"is_published"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// CartItem converts a course to the item stored in a cart.
func (c Course) CartItem() CartItem {
	return CartItem{
		ID:        c.ID,
		Slug:      c.Slug,
		Title:     c.Title,
		Price:     c.Price,
		Thumbnail: c.Thumbnail,
		Level:     c.Level,
	}
}
