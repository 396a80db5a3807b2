package ledger

import (
	"github.com/vbugueno/pixbank/internal/domain"
)

// Balance projects an account's current balance: the initial balance plus
// every amount received minus every amount sent. Pure function of its inputs;
// transactions not referencing the account are ignored.
func Balance(account domain.Account, txs []domain.Transaction) int64 {
	balance := account.InitialBalance
	for _, t := range txs {
		if t.ReceiverAccountID == account.ID {
			balance += t.Amount
		} else if t.SenderAccountID == account.ID {
			balance -= t.Amount
		}
	}
	return balance
}

// BalanceAsOf projects the balance counting only transactions created at or
// before cutoff. Cutoff must be in the canonical CreatedAt form: the
// comparison is lexicographic, which is chronological for that form.
func BalanceAsOf(account domain.Account, txs []domain.Transaction, cutoff string) int64 {
	balance := account.InitialBalance
	for _, t := range txs {
		if t.CreatedAt > cutoff {
			continue
		}
		if t.ReceiverAccountID == account.ID {
			balance += t.Amount
		} else if t.SenderAccountID == account.ID {
			balance -= t.Amount
		}
	}
	return balance
}
