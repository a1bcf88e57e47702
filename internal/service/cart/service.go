package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
)

// Service manages the per-client course cart stored under state.KeyCart.
// State is hydrated from storage on every call and written back after
// every change.
type Service struct {
	store  state.Repository
	logger *log.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

func New(store state.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) Items(ctx context.Context, clientID string) ([]domain.CartItem, error) {
	return s.load(ctx, clientID)
}

func (s *Service) Summary(ctx context.Context, clientID string) (domain.CartSummary, error) {
	items, err := s.load(ctx, clientID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.Summarize(items), nil
}

// Add appends item unless an item with the same id is already present.
func (s *Service) Add(ctx context.Context, clientID string, item domain.CartItem) (domain.CartSummary, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return domain.CartSummary{}, domain.Invalid("id", "required")
	}
	if item.Price < 0 {
		return domain.CartSummary{}, domain.Invalid("price", "must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, clientID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	for _, existing := range items {
		if existing.ID == item.ID {
			return domain.Summarize(items), nil
		}
	}
	items = append(items, item)
	if err := s.save(ctx, clientID, items); err != nil {
		return domain.CartSummary{}, err
	}
	return domain.Summarize(items), nil
}

// Remove drops the item with id; unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, clientID, id string) (domain.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, clientID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	kept := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return domain.Summarize(items), nil
	}
	if err := s.save(ctx, clientID, kept); err != nil {
		return domain.CartSummary{}, err
	}
	return domain.Summarize(kept), nil
}

func (s *Service) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, clientID, []domain.CartItem{})
}

// load treats an absent or unreadable cart as empty.
func (s *Service) load(ctx context.Context, clientID string) ([]domain.CartItem, error) {
	data, err := s.store.Get(ctx, clientID, state.KeyCart)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.CartItem{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Printf("parse cart %s: %v", clientID, err)
		return []domain.CartItem{}, nil
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, clientID string, items []domain.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, clientID, state.KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
