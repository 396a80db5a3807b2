// Package ledger holds the business core: the balance projector, the
// transaction factory with its preconditions, and the yield accrual engine.
// It never touches persistence directly beyond the store's mutation API and
// knows nothing about HTTP or presentation.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vbugueno/pixbank/internal/domain"
	"github.com/vbugueno/pixbank/internal/store"
)

// Service validates operations and constructs well-formed transaction
// records. Invalid operations are rejected before anything reaches the store,
// so factory-accepted operations can never drive a balance negative.
type Service struct {
	// mu makes each operation a single critical section: the balance
	// check and the ledger append happen atomically with respect to
	// other operations, so concurrent callers cannot both pass
	// validation against the same funds.
	mu     sync.Mutex
	store  *store.Store
	logger *zap.Logger

	// cashOverdraft lets deposits exceed the currency in circulation.
	// The Cash balance can go negative when it is on.
	cashOverdraft bool
}

func NewService(st *store.Store, logger *zap.Logger, cashOverdraft bool) *Service {
	return &Service{store: st, logger: logger, cashOverdraft: cashOverdraft}
}

// RegisterUser creates the user plus their checking and investment accounts,
// both with zero initial balance. A non-empty pixKey must be unused.
func (s *Service) RegisterUser(name, pixKey string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("register user: empty name")
	}
	if pixKey != "" {
		if _, err := s.store.GetUserByPixKey(pixKey); err == nil {
			return domain.User{}, fmt.Errorf("pix key %q already taken: %w", pixKey, store.ErrDuplicateID)
		}
	}
	u := domain.User{ID: uuid.NewString(), Name: name, PixKey: pixKey}
	if err := s.store.AddUser(u); err != nil {
		return domain.User{}, err
	}
	if err := s.store.AddAccount(domain.NewCheckingAccount(u.ID)); err != nil {
		return domain.User{}, err
	}
	if err := s.store.AddAccount(domain.NewInvestmentAccount(u.ID)); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("name", u.Name))
	return u, nil
}

// Deposit moves cash into the user's checking account. With overdraft off,
// the Cash account must cover the amount.
func (s *Service) Deposit(userID string, amount int64, comment string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, ErrInvalidAmount
	}
	checking, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	cash, err := s.store.GetCashAccount()
	if err != nil {
		return domain.Transaction{}, err
	}
	if !s.cashOverdraft {
		if bal := s.balanceOf(cash); bal < amount {
			return domain.Transaction{}, fmt.Errorf("cash holds %d cents: %w", bal, ErrInsufficientBalance)
		}
	}
	return s.append(domain.TxDeposit, cash.ID, checking.ID, amount, comment)
}

// Withdraw moves money from the user's checking account back to cash.
func (s *Service) Withdraw(userID string, amount int64, comment string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, ErrInvalidAmount
	}
	checking, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	cash, err := s.store.GetCashAccount()
	if err != nil {
		return domain.Transaction{}, err
	}
	if bal := s.balanceOf(checking); bal < amount {
		return domain.Transaction{}, fmt.Errorf("checking holds %d cents: %w", bal, ErrInsufficientBalance)
	}
	return s.append(domain.TxWithdraw, checking.ID, cash.ID, amount, comment)
}

// Pix transfers between two checking accounts. The recipient identifier is
// resolved as a pix-key alias first, then as a plain user id.
func (s *Service) Pix(senderUserID, recipient string, amount int64, comment string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, ErrInvalidAmount
	}
	sender, err := s.store.GetAccountByUserIDAndType(senderUserID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	receiverUser, err := s.store.GetUserByPixKey(recipient)
	if err != nil {
		receiverUser, err = s.store.GetUserByID(recipient)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("resolve recipient %q: %w", recipient, err)
		}
	}
	receiver, err := s.store.GetAccountByUserIDAndType(receiverUser.ID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	if receiver.ID == sender.ID {
		return domain.Transaction{}, ErrSelfTransfer
	}
	if bal := s.balanceOf(sender); bal < amount {
		return domain.Transaction{}, fmt.Errorf("checking holds %d cents: %w", bal, ErrInsufficientBalance)
	}
	return s.append(domain.TxPix, sender.ID, receiver.ID, amount, comment)
}

// Invest moves money from checking into the immediate-rescue investment
// account, where it starts accruing yield.
func (s *Service) Invest(userID string, amount int64) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, ErrInvalidAmount
	}
	checking, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	investment, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountInvestment)
	if err != nil {
		return domain.Transaction{}, err
	}
	if bal := s.balanceOf(checking); bal < amount {
		return domain.Transaction{}, fmt.Errorf("checking holds %d cents: %w", bal, ErrInsufficientBalance)
	}
	return s.append(domain.TxInvestment, checking.ID, investment.ID, amount, "")
}

// Rescue moves money from the investment account back to checking.
// Immediate rescue: the funds are available right away.
func (s *Service) Rescue(userID string, amount int64) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		return domain.Transaction{}, ErrInvalidAmount
	}
	checking, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountChecking)
	if err != nil {
		return domain.Transaction{}, err
	}
	investment, err := s.store.GetAccountByUserIDAndType(userID, domain.AccountInvestment)
	if err != nil {
		return domain.Transaction{}, err
	}
	if bal := s.balanceOf(investment); bal < amount {
		return domain.Transaction{}, fmt.Errorf("investment holds %d cents: %w", bal, ErrInsufficientBalance)
	}
	return s.append(domain.TxRescue, investment.ID, checking.ID, amount, "")
}

// SetCashBalance resets the total currency in circulation.
func (s *Service) SetCashBalance(initialBalance int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if initialBalance < 0 {
		return domain.Account{}, ErrInvalidAmount
	}
	cash, err := s.store.GetCashAccount()
	if err != nil {
		return domain.Account{}, err
	}
	cash.InitialBalance = initialBalance
	if err := s.store.UpdateAccount(cash); err != nil {
		return domain.Account{}, err
	}
	return cash, nil
}

// Balance answers the current balance for any account id.
func (s *Service) Balance(accountID string) (int64, error) {
	account, err := s.store.GetAccountByID(accountID)
	if err != nil {
		return 0, err
	}
	return s.balanceOf(account), nil
}

// BalanceAsOf answers the balance counting only transactions up to cutoff,
// given in the canonical CreatedAt form.
func (s *Service) BalanceAsOf(accountID, cutoff string) (int64, error) {
	account, err := s.store.GetAccountByID(accountID)
	if err != nil {
		return 0, err
	}
	txs := s.store.ListTransactionsByAccountIDs([]string{account.ID})
	return BalanceAsOf(account, txs, cutoff), nil
}

// Reset clears all app data, keeping only the default Cash account.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Warn("clearing all app data")
	return s.store.Reset()
}

func (s *Service) balanceOf(account domain.Account) int64 {
	txs := s.store.ListTransactionsByAccountIDs([]string{account.ID})
	return Balance(account, txs)
}

func (s *Service) append(kind domain.TransactionType, senderID, receiverID string, amount int64, comment string) (domain.Transaction, error) {
	t := domain.Transaction{
		ID:                uuid.NewString(),
		Type:              kind,
		SenderAccountID:   senderID,
		ReceiverAccountID: receiverID,
		Amount:            amount,
		CreatedAt:         domain.FormatTime(time.Now()),
		Comment:           comment,
	}
	if err := s.store.AddTransaction(t); err != nil {
		return domain.Transaction{}, err
	}
	s.logger.Info("transaction recorded",
		zap.String("tx_id", t.ID),
		zap.String("type", string(kind)),
		zap.String("sender", senderID),
		zap.String("receiver", receiverID),
		zap.Int64("amount", amount))
	return t, nil
}
