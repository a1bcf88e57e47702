package state

import (
	"context"
)

// Well-known keys, one per persisted client value.
const (
	KeySession         = "auth.session"
	KeyCart            = "cart"
	KeyPendingCheckout = "checkout.pending"
)

// KeyOrderDebited marks an order whose wallet debit went through but whose
// paid transition has not been confirmed yet.
func KeyOrderDebited(orderID string) string {
	return "checkout.paid:" + orderID
}

// Repository stores raw serialized values per client, the way a browser
// profile keeps local storage. Get returns domain.ErrNotFound for absent keys.
type Repository interface {
	Get(ctx context.Context, clientID, key string) ([]byte, error)
	Set(ctx context.Context, clientID, key string, value []byte) error
	Delete(ctx context.Context, clientID, key string) error
}

// Bucket binds a Repository to a single client.
type Bucket struct {
	repo     Repository
	clientID string
}

func NewBucket(repo Repository, clientID string) Bucket {
	return Bucket{repo: repo, clientID: clientID}
}

func (b Bucket) ClientID() string {
	return b.clientID
}

func (b Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	return b.repo.Get(ctx, b.clientID, key)
}

func (b Bucket) Set(ctx context.Context, key string, value []byte) error {
	return b.repo.Set(ctx, b.clientID, key, value)
}

// Clear removes key. Clearing an absent key is not an error.
func (b Bucket) Clear(ctx context.Context, key string) error {
	return b.repo.Delete(ctx, b.clientID, key)
}
