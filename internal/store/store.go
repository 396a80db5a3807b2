// Package store owns the persisted collections: users, accounts and the
// transaction ledger. Every mutating call rewrites the whole snapshot to the
// backing file; reads never touch disk. The zero-value collections are
// replaced by a single default Cash account on first open.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vbugueno/pixbank/internal/domain"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate id")
)

var (
	snapshotWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixbank_snapshot_writes_total",
		Help: "Snapshot files written to disk",
	})
	snapshotWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixbank_snapshot_write_failures_total",
		Help: "Snapshot writes that failed",
	})
)

// snapshot mirrors the persisted layout: one JSON array per logical key plus
// the investment feature flag.
type snapshot struct {
	Users               []domain.User        `json:"users"`
	Accounts            []domain.Account     `json:"accounts"`
	Transactions        []domain.Transaction `json:"transactions"`
	IsInvestmentEnabled bool                 `json:"isInvestmentEnabled"`
}

// Store is the single in-process owner of the canonical collections. All
// other components receive value copies and hand changes back through the
// mutation API.
type Store struct {
	mu    sync.Mutex
	path  string
	state snapshot
}

// Open loads the snapshot at path, or starts a fresh state holding only the
// default Cash account when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.state = defaultState()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return s, nil
}

func defaultState() snapshot {
	return snapshot{Accounts: []domain.Account{domain.DefaultCashAccount()}}
}

// persistLocked writes the whole snapshot atomically: temp file first, then
// rename over the real one, so a crash mid-write never corrupts the data.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		snapshotWriteFailures.Inc()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		snapshotWriteFailures.Inc()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		snapshotWriteFailures.Inc()
		return fmt.Errorf("replace snapshot: %w", err)
	}
	snapshotWrites.Inc()
	return nil
}

// --- transactions ---

// ListAllTransactions returns a copy of the ledger. Callers must not rely on
// order; the projector re-sorts when order matters.
func (s *Store) ListAllTransactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, len(s.state.Transactions))
	copy(out, s.state.Transactions)
	return out
}

// ListTransactionsByAccountIDs returns every transaction whose sender or
// receiver account is in ids.
func (s *Store) ListTransactionsByAccountIDs(ids []string) []domain.Transaction {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.state.Transactions {
		if want[t.SenderAccountID] || want[t.ReceiverAccountID] {
			out = append(out, t)
		}
	}
	return out
}

// AddTransaction appends to the ledger. The id must be new.
func (s *Store) AddTransaction(t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.state.Transactions {
		if cur.ID == t.ID {
			return fmt.Errorf("transaction %s: %w", t.ID, ErrDuplicateID)
		}
	}
	s.state.Transactions = append(s.state.Transactions, t)
	return s.persistLocked()
}

// UpdateTransaction replaces the record with the same id. Only the accrual
// engine rewrites records, and only Yield ones.
func (s *Store) UpdateTransaction(t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.state.Transactions {
		if cur.ID == t.ID {
			s.state.Transactions[i] = t
			return s.persistLocked()
		}
	}
	return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
}

// UpsertTransaction adds t if its id is absent, else replaces it in place.
func (s *Store) UpsertTransaction(t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.state.Transactions {
		if cur.ID == t.ID {
			s.state.Transactions[i] = t
			return s.persistLocked()
		}
	}
	s.state.Transactions = append(s.state.Transactions, t)
	return s.persistLocked()
}

// --- accounts ---

func (s *Store) ListAccounts() []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Account, len(s.state.Accounts))
	copy(out, s.state.Accounts)
	return out
}

// ListAccountsByType returns accounts of one kind, ordered by id so sweeps
// over them are deterministic.
func (s *Store) ListAccountsByType(t domain.AccountType) []domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, a := range s.state.Accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetAccountByID(id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
}

func (s *Store) GetAccountByUserIDAndType(userID string, t domain.AccountType) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Accounts {
		if a.UserID == userID && a.Type == t {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("account for user %s type %s: %w", userID, t, ErrNotFound)
}

// GetCashAccount returns the singleton Cash account.
func (s *Store) GetCashAccount() (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Accounts {
		if a.Type == domain.AccountCash {
			return a, nil
		}
	}
	return domain.Account{}, fmt.Errorf("cash account: %w", ErrNotFound)
}

func (s *Store) AddAccount(a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.state.Accounts {
		if cur.ID == a.ID {
			return fmt.Errorf("account %s: %w", a.ID, ErrDuplicateID)
		}
	}
	s.state.Accounts = append(s.state.Accounts, a)
	return s.persistLocked()
}

// UpdateAccount replaces the record with the same id. In practice only the
// Cash account is ever updated, to reset the currency in circulation.
func (s *Store) UpdateAccount(a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.state.Accounts {
		if cur.ID == a.ID {
			s.state.Accounts[i] = a
			return s.persistLocked()
		}
	}
	return fmt.Errorf("account %s: %w", a.ID, ErrNotFound)
}

// --- users ---

func (s *Store) ListUsers() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.state.Users))
	copy(out, s.state.Users)
	return out
}

func (s *Store) GetUserByID(id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// GetUserByPixKey resolves a transfer alias. Empty aliases never match.
func (s *Store) GetUserByPixKey(key string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != "" {
		for _, u := range s.state.Users {
			if u.PixKey == key {
				return u, nil
			}
		}
	}
	return domain.User{}, fmt.Errorf("pix key %q: %w", key, ErrNotFound)
}

func (s *Store) AddUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.state.Users {
		if cur.ID == u.ID {
			return fmt.Errorf("user %s: %w", u.ID, ErrDuplicateID)
		}
	}
	s.state.Users = append(s.state.Users, u)
	return s.persistLocked()
}

// --- settings ---

func (s *Store) IsInvestmentEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsInvestmentEnabled
}

func (s *Store) SetInvestmentEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsInvestmentEnabled = enabled
	return s.persistLocked()
}

// Reset clears users, transactions and all non-Cash accounts, restoring the
// single default Cash account.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = defaultState()
	return s.persistLocked()
}
