// Package memory provides in-memory token and system ledgers implementing
// the processor's host capabilities. They back the test harness and any
// host that simulates execution before submission.
package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAuthority  = errors.New("invalid transfer authority")
)

type tokenAccount struct {
	authority string
	balance   uint64
}

// TokenLedger is an in-memory payments.TokenLedger. Accounts are created
// explicitly with a transfer authority; Transfer enforces it the way the
// token program would.
type TokenLedger struct {
	mu       sync.Mutex
	accounts map[string]*tokenAccount
}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		accounts: make(map[string]*tokenAccount),
	}
}

// CreateAccount registers a token account with its transfer authority and
// an initial balance.
func (l *TokenLedger) CreateAccount(account, authority ed25519.PublicKey, balance uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := base58.Encode(account)
	if _, ok := l.accounts[key]; ok {
		return ErrAccountExists
	}

	l.accounts[key] = &tokenAccount{
		authority: base58.Encode(authority),
		balance:   balance,
	}
	return nil
}

func (l *TokenLedger) Transfer(_ context.Context, from, to, authority ed25519.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	source, ok := l.accounts[base58.Encode(from)]
	if !ok {
		return ErrAccountNotFound
	}
	destination, ok := l.accounts[base58.Encode(to)]
	if !ok {
		return ErrAccountNotFound
	}

	if source.authority != base58.Encode(authority) {
		return ErrInvalidAuthority
	}
	if source.balance < amount {
		return ErrInsufficientFunds
	}

	source.balance -= amount
	destination.balance += amount
	return nil
}

func (l *TokenLedger) Balance(_ context.Context, account ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.accounts[base58.Encode(account)]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return item.balance, nil
}

// SystemLedger is an in-memory payments.SystemLedger tracking native-unit
// balances and storage allocations.
type SystemLedger struct {
	mu        sync.Mutex
	balances  map[string]uint64
	allocated map[string]uint64
}

func NewSystemLedger() *SystemLedger {
	return &SystemLedger{
		balances:  make(map[string]uint64),
		allocated: make(map[string]uint64),
	}
}

// Fund credits an account with native units.
func (l *SystemLedger) Fund(account ed25519.PublicKey, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[base58.Encode(account)] += amount
}

func (l *SystemLedger) CreateAccount(_ context.Context, payer, newAccount ed25519.PublicKey, size uint64, owner ed25519.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[base58.Encode(payer)]; !ok {
		return ErrAccountNotFound
	}

	key := base58.Encode(newAccount)
	if _, ok := l.allocated[key]; ok {
		return ErrAccountExists
	}

	l.allocated[key] = size
	return nil
}

func (l *SystemLedger) Transfer(_ context.Context, from, to ed25519.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fromKey := base58.Encode(from)
	if l.balances[fromKey] < amount {
		return ErrInsufficientFunds
	}

	l.balances[fromKey] -= amount
	l.balances[base58.Encode(to)] += amount
	return nil
}

// Balance returns an account's native-unit balance.
func (l *SystemLedger) Balance(account ed25519.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[base58.Encode(account)]
}
