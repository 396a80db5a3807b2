package domain

import (
	"time"
)

// AccountType discriminates the three account kinds.
type AccountType string

const (
	AccountCash       AccountType = "Cash"
	AccountChecking   AccountType = "CheckingAccount"
	AccountInvestment AccountType = "ImmediateRescueInvestmentAccount"
)

// TransactionType discriminates ledger movements. Yield is the only type
// whose record may be rewritten after creation.
type TransactionType string

const (
	TxDeposit    TransactionType = "Deposit"
	TxWithdraw   TransactionType = "Withdraw"
	TxPix        TransactionType = "Pix"
	TxInvestment TransactionType = "Investment"
	TxRescue     TransactionType = "Rescue"
	TxYield      TransactionType = "Yield"
)

// User is created on registration and immutable thereafter.
// PixKey is the optional alias other users can address transfers to.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	PixKey string `json:"pixKey,omitempty"`
}

// Account holds no derived state: the balance is always projected from the
// ledger on top of InitialBalance. Only the Cash account carries a non-zero
// InitialBalance.
type Account struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	Type           AccountType `json:"type"`
	InitialBalance int64       `json:"initialBalance"`
}

// Transaction is one ledger movement. Amount is a non-negative count of
// currency subunits (cents). SenderAccountID is empty on Yield records:
// accrued interest is created, not moved.
type Transaction struct {
	ID                string          `json:"id"`
	Type              TransactionType `json:"type"`
	SenderAccountID   string          `json:"senderAccountId,omitempty"`
	ReceiverAccountID string          `json:"receiverAccountId"`
	Amount            int64           `json:"amount"`
	CreatedAt         string          `json:"createdAt"`
	Delay             int64           `json:"delay,omitempty"`
	Comment           string          `json:"comment,omitempty"`
}

const (
	// CashUserID owns the singleton Cash account.
	CashUserID = "cash"

	// DefaultCashBalance is the total currency in circulation when the
	// system starts from an empty data file, in cents.
	DefaultCashBalance int64 = 1_000_000
)

// AccountID derives the deterministic account id "{userId}-{type}".
func AccountID(userID string, t AccountType) string {
	return userID + "-" + string(t)
}

// DefaultCashAccount returns the Cash account a fresh system starts with.
func DefaultCashAccount() Account {
	return Account{
		ID:             AccountID(CashUserID, AccountCash),
		UserID:         CashUserID,
		Type:           AccountCash,
		InitialBalance: DefaultCashBalance,
	}
}

// NewCheckingAccount builds the zero-balance checking account for a user.
func NewCheckingAccount(userID string) Account {
	return Account{
		ID:     AccountID(userID, AccountChecking),
		UserID: userID,
		Type:   AccountChecking,
	}
}

// NewInvestmentAccount builds the zero-balance investment account for a user.
func NewInvestmentAccount(userID string) Account {
	return Account{
		ID:     AccountID(userID, AccountInvestment),
		UserID: userID,
		Type:   AccountInvestment,
	}
}

// TimeLayout is the canonical CreatedAt form: UTC with fixed-width
// nanoseconds, so lexicographic order on the stored strings equals
// chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in the canonical CreatedAt form.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a canonical CreatedAt string.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
