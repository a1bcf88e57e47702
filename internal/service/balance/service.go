package balance

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

const transactionLimit = "50"

type walletAPI interface {
	Select(ctx context.Context, token, table string, query url.Values, out any) error
	CallResult(ctx context.Context, token, name string, params any, out any, opts ...backend.CallOption) error
}

type tokenSource interface {
	AccessToken(ctx context.Context, clientID string) (string, bool)
}

// Service reads and mutates the caller's wallet. The balance is never
// computed locally: every successful mutation is followed by a re-fetch.
type Service struct {
	api    walletAPI
	tokens tokenSource
	logger *log.Logger
	flight singleflight.Group
}

func New(api walletAPI, tokens tokenSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{api: api, tokens: tokens, logger: logger}
}

// Balance returns the caller's wallet row, zero when none exists yet.
func (s *Service) Balance(ctx context.Context, clientID string) (domain.Balance, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return domain.Balance{}, domain.ErrNotAuthenticated
	}
	return s.fetchBalance(ctx, token)
}

func (s *Service) Transactions(ctx context.Context, clientID string) ([]domain.Transaction, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return s.fetchTransactions(ctx, token)
}

func (s *Service) Snapshot(ctx context.Context, clientID string) (domain.WalletSnapshot, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return domain.WalletSnapshot{}, domain.ErrNotAuthenticated
	}
	bal, err := s.fetchBalance(ctx, token)
	if err != nil {
		return domain.WalletSnapshot{}, err
	}
	txs, err := s.fetchTransactions(ctx, token)
	if err != nil {
		return domain.WalletSnapshot{}, err
	}
	return domain.WalletSnapshot{Balance: bal, Transactions: txs}, nil
}

// RedeemCode credits the wallet with a recharge code. The code is sent as
// typed; matching is up to the backend.
func (s *Service) RedeemCode(ctx context.Context, clientID, code string) (domain.WalletSnapshot, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return domain.WalletSnapshot{}, domain.ErrNotAuthenticated
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.WalletSnapshot{}, domain.Invalid("code", "required")
	}

	v, err, _ := s.flight.Do("redeem:"+token+":"+code, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if err := s.api.CallResult(ctx, token, "use_recharge_code", map[string]string{"p_code": code}, nil); err != nil {
			return nil, err
		}
		return s.refetch(ctx, token), nil
	})
	if err != nil {
		return domain.WalletSnapshot{}, err
	}
	return v.(domain.WalletSnapshot), nil
}

type payParams struct {
	Amount  int64  `json:"p_amount"`
	OrderID string `json:"p_order_id,omitempty"`
}

// Pay debits amount from the wallet, optionally against an order. The
// server decides whether the balance suffices. Once started, the debit and
// its re-fetch are not aborted by the caller going away.
func (s *Service) Pay(ctx context.Context, clientID string, amount int64, orderID string) (domain.WalletSnapshot, error) {
	token, ok := s.tokens.AccessToken(ctx, clientID)
	if !ok {
		return domain.WalletSnapshot{}, domain.ErrNotAuthenticated
	}
	if amount <= 0 {
		return domain.WalletSnapshot{}, domain.Invalid("amount", "must be positive")
	}

	key := fmt.Sprintf("pay:%s:%s:%d", token, orderID, amount)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if err := s.api.CallResult(ctx, token, "pay_with_balance", payParams{Amount: amount, OrderID: orderID}, nil); err != nil {
			return nil, err
		}
		return s.refetch(ctx, token), nil
	})
	if err != nil {
		return domain.WalletSnapshot{}, err
	}
	return v.(domain.WalletSnapshot), nil
}

// refetch reloads the wallet after a successful mutation. Failures are
// reported through Stale rather than as an error, since the mutation
// itself already happened.
func (s *Service) refetch(ctx context.Context, token string) domain.WalletSnapshot {
	var snap domain.WalletSnapshot
	bal, err := s.fetchBalance(ctx, token)
	if err != nil {
		s.logger.Printf("refetch balance: %v", err)
		snap.Stale = true
	}
	snap.Balance = bal
	txs, err := s.fetchTransactions(ctx, token)
	if err != nil {
		s.logger.Printf("refetch transactions: %v", err)
		snap.Stale = true
		txs = []domain.Transaction{}
	}
	snap.Transactions = txs
	return snap
}

func (s *Service) fetchBalance(ctx context.Context, token string) (domain.Balance, error) {
	var rows []domain.Balance
	err := s.api.Select(ctx, token, "user_balances", url.Values{
		"select": {"user_id,balance_vnd,updated_at"},
		"limit":  {"1"},
	}, &rows)
	if err != nil {
		return domain.Balance{}, err
	}
	if len(rows) == 0 {
		return domain.Balance{}, nil
	}
	return rows[0], nil
}

func (s *Service) fetchTransactions(ctx context.Context, token string) ([]domain.Transaction, error) {
	var rows []domain.Transaction
	err := s.api.Select(ctx, token, "transaction_history", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
		"limit":  {transactionLimit},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Transaction{}
	}
	return rows, nil
}
