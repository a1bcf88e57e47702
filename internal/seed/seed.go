package seed

import (
	"context"
	"fmt"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

type CartWriter interface {
	Add(ctx context.Context, clientID string, item domain.CartItem) (domain.CartSummary, error)
}

// DemoCourses are the items placed in a seeded cart.
var DemoCourses = []domain.CartItem{
	{
		ID:        "00000000-0000-0000-0000-0000000000a1",
		Slug:      "yoga-co-ban",
		Title:     "Yoga cơ bản cho người mới",
		Price:     299000,
		Thumbnail: "/images/courses/yoga-co-ban.jpg",
		Level:     "beginner",
	},
	{
		ID:        "00000000-0000-0000-0000-0000000000a2",
		Slug:      "vinyasa-flow",
		Title:     "Vinyasa Flow 30 ngày",
		Price:     499000,
		Thumbnail: "/images/courses/vinyasa-flow.jpg",
		Level:     "intermediate",
	},
}

// Apply fills clientID's cart with DemoCourses for manual testing. It is
// idempotent because adding an item already in the cart is a no-op.
func Apply(ctx context.Context, carts CartWriter, clientID string) (domain.CartSummary, error) {
	var summary domain.CartSummary
	for _, item := range DemoCourses {
		var err error
		summary, err = carts.Add(ctx, clientID, item)
		if err != nil {
			return domain.CartSummary{}, fmt.Errorf("add %s: %w", item.Slug, err)
		}
	}
	return summary, nil
}
