package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vbugueno/pixbank/internal/domain"
)

func tx(id string, kind domain.TransactionType, sender, receiver string, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:                id,
		Type:              kind,
		SenderAccountID:   sender,
		ReceiverAccountID: receiver,
		Amount:            amount,
		CreatedAt:         domain.FormatTime(at),
	}
}

func TestBalanceProjection(t *testing.T) {
	checking := domain.NewCheckingAccount("u1")
	cash := domain.DefaultCashAccount()
	now := time.Now()

	txs := []domain.Transaction{
		tx("t1", domain.TxDeposit, cash.ID, checking.ID, 1000, now),
		tx("t2", domain.TxWithdraw, checking.ID, cash.ID, 300, now.Add(time.Minute)),
		tx("t3", domain.TxPix, "u2-CheckingAccount", checking.ID, 50, now.Add(2*time.Minute)),
		// unrelated movement must not affect u1
		tx("t4", domain.TxPix, "u2-CheckingAccount", "u3-CheckingAccount", 999, now.Add(3*time.Minute)),
	}

	assert.Equal(t, int64(750), Balance(checking, txs))
	assert.Equal(t, domain.DefaultCashBalance-1000+300, Balance(cash, txs))
}

func TestBalanceIsDeterministic(t *testing.T) {
	checking := domain.NewCheckingAccount("u1")
	txs := []domain.Transaction{
		tx("t1", domain.TxDeposit, "cash-Cash", checking.ID, 1234, time.Now()),
	}
	first := Balance(checking, txs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Balance(checking, txs))
	}
}

func TestBalanceAsOfHonorsCutoff(t *testing.T) {
	checking := domain.NewCheckingAccount("u1")
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	txs := []domain.Transaction{
		tx("t1", domain.TxDeposit, "cash-Cash", checking.ID, 1000, base),
		tx("t2", domain.TxWithdraw, checking.ID, "cash-Cash", 400, base.Add(time.Hour)),
		tx("t3", domain.TxDeposit, "cash-Cash", checking.ID, 5, base.Add(2*time.Hour)),
	}

	assert.Equal(t, int64(0), BalanceAsOf(checking, txs, domain.FormatTime(base.Add(-time.Second))))
	// cutoff is inclusive
	assert.Equal(t, int64(1000), BalanceAsOf(checking, txs, domain.FormatTime(base)))
	assert.Equal(t, int64(600), BalanceAsOf(checking, txs, domain.FormatTime(base.Add(90*time.Minute))))
	assert.Equal(t, int64(605), BalanceAsOf(checking, txs, domain.FormatTime(base.Add(3*time.Hour))))
}

func TestCanonicalTimestampsSortLexicographically(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	instants := []time.Time{
		base,
		base.Add(50 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base.Add(510 * time.Millisecond),
		base.Add(time.Second),
	}
	for i := 1; i < len(instants); i++ {
		prev := domain.FormatTime(instants[i-1])
		cur := domain.FormatTime(instants[i])
		assert.Less(t, prev, cur)
	}
}
