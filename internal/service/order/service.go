package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// idempotencyNamespace seeds the create_order idempotency keys.
var idempotencyNamespace = uuid.MustParse("6f1c2d8e-4b7a-5c3e-9a10-2f64d7b3e815")

const orderColumns = "id,user_id,status,total_amount,created_at,paid_at,items:order_items(id,course_id,price,course:courses(id,slug,title,thumbnail,level))"

// API is the subset of the backend client used for orders.
type API interface {
	Select(ctx context.Context, token, table string, query url.Values, out any) error
	RPC(ctx context.Context, token, name string, params any, out any, opts ...backend.CallOption) (bool, error)
}

type TokenSource interface {
	AccessToken(ctx context.Context, clientID string) (string, bool)
}

type Cart interface {
	Items(ctx context.Context, clientID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, clientID string) error
}

type Wallet interface {
	Pay(ctx context.Context, clientID string, amount int64, orderID string) (domain.WalletSnapshot, error)
}

// Deps wires a Service. DedupWindow defaults to two minutes.
type Deps struct {
	API         API
	Tokens      TokenSource
	Cart        Cart
	Wallet      Wallet
	State       state.Repository
	DedupWindow time.Duration
	Logger      *log.Logger
}

// Service creates and settles orders. Order state is owned by the backend;
// the service only requests transitions and reports what comes back.
type Service struct {
	api    API
	tokens TokenSource
	cart   Cart
	wallet Wallet
	state  state.Repository
	window time.Duration
	logger *log.Logger
	now    func() time.Time
	flight singleflight.Group
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	window := d.DedupWindow
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &Service{
		api:    d.API,
		tokens: d.Tokens,
		cart:   d.Cart,
		wallet: d.Wallet,
		state:  d.State,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

type createParams struct {
	CourseIDs   []string `json:"p_course_ids"`
	TotalAmount int64    `json:"p_total_amount"`
}

// CreateOrder asks the backend to open a pending order for courseIDs and
// returns its id. Concurrent identical requests share one remote call.
func (s *Service) CreateOrder(ctx context.Context, clientID string, courseIDs []string, total int64) (string, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return "", domain.ErrNotAuthenticated
	}
	if len(courseIDs) == 0 {
		return "", domain.Invalid("course_ids", "at least one course is required")
	}
	if total < 0 {
		return "", domain.Invalid("total_amount", "must not be negative")
	}
	return s.createOrder(ctx, token, courseIDs, total)
}

func (s *Service) createOrder(ctx context.Context, token string, courseIDs []string, total int64) (string, error) {
	fp := fingerprint(courseIDs, total)
	v, err, _ := s.flight.Do("create:"+token+":"+fp, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		var raw json.RawMessage
		decoded, err := s.api.RPC(ctx, token, "create_order",
			createParams{CourseIDs: courseIDs, TotalAmount: total}, &raw,
			backend.WithIdempotencyKey(s.idempotencyKey(token, fp)))
		if err != nil {
			return "", err
		}
		if !decoded {
			return "", &backend.SchemaError{What: "create_order", Err: errors.New("empty response")}
		}
		id, err := parseOrderID(raw)
		if err != nil {
			return "", &backend.SchemaError{What: "create_order", Err: err}
		}
		s.logger.Printf("order %s created for %d course(s)", id, len(courseIDs))
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// idempotencyKey is stable for the same token and course set within one
// dedup window, so a re-submit carries the key of the first attempt.
func (s *Service) idempotencyKey(token, fp string) string {
	slot := s.now().UTC().Truncate(s.window).Unix()
	return uuid.NewSHA1(idempotencyNamespace, []byte(fmt.Sprintf("%s|%s|%d", token, fp, slot))).String()
}

// parseOrderID accepts the shapes create_order is known to return: a bare
// JSON string or an object carrying id or order_id.
func parseOrderID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
		return "", errors.New("empty order id")
	}
	var obj struct {
		ID      string `json:"id"`
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("unexpected result %s", raw)
	}
	switch {
	case obj.ID != "":
		return obj.ID, nil
	case obj.OrderID != "":
		return obj.OrderID, nil
	}
	return "", errors.New("result carries no order id")
}

// CheckoutResult describes the pending order a checkout produced.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Reused      bool   `json:"reused"`
}

type pendingCheckout struct {
	Fingerprint string    `json:"fingerprint"`
	OrderID     string    `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Checkout turns the caller's cart into a pending order. Submitting the same
// cart again within the dedup window returns the order already opened for it
// as long as the backend still reports it pending.
func (s *Service) Checkout(ctx context.Context, clientID string) (CheckoutResult, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return CheckoutResult{}, domain.ErrNotAuthenticated
	}
	items, err := s.cart.Items(ctx, clientID)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return CheckoutResult{}, domain.ErrEmptyCart
	}

	summary := domain.Summarize(items)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	fp := fingerprint(ids, summary.TotalPrice)
	bucket := state.NewBucket(s.state, clientID)

	v, err, _ := s.flight.Do("checkout:"+clientID+":"+fp, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if id, ok := s.reusable(ctx, bucket, token, fp); ok {
			return CheckoutResult{OrderID: id, TotalAmount: summary.TotalPrice, Reused: true}, nil
		}
		id, err := s.createOrder(ctx, token, ids, summary.TotalPrice)
		if err != nil {
			return CheckoutResult{}, err
		}
		s.remember(ctx, bucket, pendingCheckout{Fingerprint: fp, OrderID: id, CreatedAt: s.now().UTC()})
		return CheckoutResult{OrderID: id, TotalAmount: summary.TotalPrice}, nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	return v.(CheckoutResult), nil
}

func (s *Service) reusable(ctx context.Context, bucket state.Bucket, token, fp string) (string, bool) {
	raw, err := bucket.Get(ctx, state.KeyPendingCheckout)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("read pending checkout for %s: %v", bucket.ClientID(), err)
		}
		return "", false
	}
	var p pendingCheckout
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Printf("discarding corrupted pending checkout for %s: %v", bucket.ClientID(), err)
		return "", false
	}
	if p.Fingerprint != fp || p.OrderID == "" || s.now().Sub(p.CreatedAt) > s.window {
		return "", false
	}
	o, err := s.get(ctx, token, p.OrderID)
	if err != nil {
		s.logger.Printf("check pending order %s: %v", p.OrderID, err)
		return "", false
	}
	if o.Status != domain.OrderPending {
		return "", false
	}
	return p.OrderID, true
}

func (s *Service) remember(ctx context.Context, bucket state.Bucket, p pendingCheckout) {
	raw, err := json.Marshal(p)
	if err == nil {
		err = bucket.Set(ctx, state.KeyPendingCheckout, raw)
	}
	if err != nil {
		s.logger.Printf("store pending checkout for %s: %v", bucket.ClientID(), err)
	}
}

func (s *Service) forget(ctx context.Context, clientID, orderID string) {
	bucket := state.NewBucket(s.state, clientID)
	raw, err := bucket.Get(ctx, state.KeyPendingCheckout)
	if err != nil {
		return
	}
	var p pendingCheckout
	if json.Unmarshal(raw, &p) == nil && p.OrderID != orderID {
		return
	}
	if err := bucket.Clear(ctx, state.KeyPendingCheckout); err != nil {
		s.logger.Printf("clear pending checkout for %s: %v", clientID, err)
	}
}

// MarkOrderPaid requests the pending → paid transition. Both a decoded body
// and an empty 2xx answer count as success.
func (s *Service) MarkOrderPaid(ctx context.Context, clientID, orderID string) (bool, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return false, domain.ErrNotAuthenticated
	}
	if orderID == "" {
		return false, domain.Invalid("order_id", "required")
	}
	if err := s.markPaid(ctx, token, orderID); err != nil {
		return false, err
	}
	s.forget(ctx, clientID, orderID)
	return true, nil
}

func (s *Service) markPaid(ctx context.Context, token, orderID string) error {
	_, err := s.api.RPC(ctx, token, "mark_order_paid", map[string]string{"p_order_id": orderID}, nil)
	return err
}

// List returns the caller's orders with their items, newest first.
func (s *Service) List(ctx context.Context, clientID string) ([]domain.Order, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	var rows []domain.Order
	err := s.api.Select(ctx, token, "orders", url.Values{
		"select": {orderColumns},
		"order":  {"created_at.desc"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Order{}
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, clientID, orderID string) (domain.Order, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return domain.Order{}, domain.ErrNotAuthenticated
	}
	return s.get(ctx, token, orderID)
}

func (s *Service) get(ctx context.Context, token, orderID string) (domain.Order, error) {
	var rows []domain.Order
	err := s.api.Select(ctx, token, "orders", url.Values{
		"select": {orderColumns},
		"id":     {backend.Eq(orderID)},
		"limit":  {"1"},
	}, &rows)
	if err != nil {
		return domain.Order{}, err
	}
	if len(rows) == 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	return rows[0], nil
}

// PaymentResult is what settling an order from the wallet produced.
type PaymentResult struct {
	Order       domain.Order           `json:"order"`
	Wallet      *domain.WalletSnapshot `json:"wallet,omitempty"`
	AlreadyPaid bool                   `json:"already_paid"`
}

type debitRecord struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	DebitedAt time.Time `json:"debited_at"`
}

// PayWithBalance settles orderID from the caller's wallet, marks it paid and
// empties the cart. An order the backend already reports paid is returned
// without charging again. When a debit went through but the paid transition
// failed, a retry only repeats the transition.
func (s *Service) PayWithBalance(ctx context.Context, clientID, orderID string) (PaymentResult, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return PaymentResult{}, domain.ErrNotAuthenticated
	}
	if orderID == "" {
		return PaymentResult{}, domain.Invalid("order_id", "required")
	}

	bucket := state.NewBucket(s.state, clientID)
	v, err, _ := s.flight.Do("pay:"+token+":"+orderID, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		o, err := s.get(ctx, token, orderID)
		if err != nil {
			return PaymentResult{}, err
		}
		switch {
		case o.Status == domain.OrderPaid:
			s.clearDebit(ctx, bucket, o.ID)
			return PaymentResult{Order: o, AlreadyPaid: true}, nil
		case o.Status.Terminal():
			return PaymentResult{}, domain.Invalid("order_id", "order is "+string(o.Status))
		}

		var wallet *domain.WalletSnapshot
		if o.TotalAmount > 0 && !s.debited(ctx, bucket, o) {
			snap, err := s.wallet.Pay(ctx, clientID, o.TotalAmount, o.ID)
			if err != nil {
				return PaymentResult{}, err
			}
			wallet = &snap
			if err := s.recordDebit(ctx, bucket, debitRecord{OrderID: o.ID, Amount: o.TotalAmount, DebitedAt: s.now().UTC()}); err != nil {
				s.logger.Printf("record debit for order %s: %v", o.ID, err)
			}
		}
		if err := s.markPaid(ctx, token, o.ID); err != nil {
			return PaymentResult{}, fmt.Errorf("mark order %s paid: %w", o.ID, err)
		}
		s.clearDebit(ctx, bucket, o.ID)
		if err := s.cart.Clear(ctx, clientID); err != nil {
			s.logger.Printf("clear cart after paying %s: %v", o.ID, err)
		}
		s.forget(ctx, clientID, o.ID)

		if fresh, err := s.get(ctx, token, o.ID); err == nil {
			o = fresh
		} else {
			s.logger.Printf("reload order %s: %v", o.ID, err)
		}
		return PaymentResult{Order: o, Wallet: wallet}, nil
	})
	if err != nil {
		return PaymentResult{}, err
	}
	return v.(PaymentResult), nil
}

// debited reports whether the wallet was already charged for o by an
// earlier attempt whose paid transition did not go through.
func (s *Service) debited(ctx context.Context, bucket state.Bucket, o domain.Order) bool {
	raw, err := bucket.Get(ctx, state.KeyOrderDebited(o.ID))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("read debit record for order %s: %v", o.ID, err)
		}
		return false
	}
	var rec debitRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Printf("discarding corrupted debit record for order %s: %v", o.ID, err)
		return false
	}
	if rec.OrderID != o.ID || rec.Amount != o.TotalAmount {
		return false
	}
	s.logger.Printf("order %s already debited at %s, retrying paid transition only", o.ID, rec.DebitedAt.Format(time.RFC3339))
	return true
}

func (s *Service) recordDebit(ctx context.Context, bucket state.Bucket, rec debitRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return bucket.Set(ctx, state.KeyOrderDebited(rec.OrderID), raw)
}

func (s *Service) clearDebit(ctx context.Context, bucket state.Bucket, orderID string) {
	if err := bucket.Clear(ctx, state.KeyOrderDebited(orderID)); err != nil {
		s.logger.Printf("clear debit record for order %s: %v", orderID, err)
	}
}

// fingerprint identifies a set of courses at a given total regardless of
// the order they were added in.
func fingerprint(courseIDs []string, total int64) string {
	ids := append([]string(nil), courseIDs...)
	sort.Strings(ids)
	return fmt.Sprintf("%s|%d", strings.Join(ids, ","), total)
}
