package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbugueno/pixbank/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixbank.json")
	st, err := Open(path)
	require.NoError(t, err)
	return st, path
}

func sampleTx(id string) domain.Transaction {
	return domain.Transaction{
		ID:                id,
		Type:              domain.TxDeposit,
		SenderAccountID:   "cash-Cash",
		ReceiverAccountID: "u1-CheckingAccount",
		Amount:            1000,
		CreatedAt:         domain.FormatTime(time.Now()),
	}
}

func TestOpenStartsWithDefaultCashAccount(t *testing.T) {
	st, _ := newTestStore(t)

	cash, err := st.GetCashAccount()
	require.NoError(t, err)
	assert.Equal(t, "cash-Cash", cash.ID)
	assert.Equal(t, domain.DefaultCashBalance, cash.InitialBalance)
	assert.Len(t, st.ListAccounts(), 1)
	assert.Empty(t, st.ListUsers())
	assert.Empty(t, st.ListAllTransactions())
}

func TestAddTransactionRejectsDuplicateID(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.AddTransaction(sampleTx("t1")))
	err := st.AddTransaction(sampleTx("t1"))
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, st.ListAllTransactions(), 1)
}

func TestUpdateTransactionRequiresExistingID(t *testing.T) {
	st, _ := newTestStore(t)

	err := st.UpdateTransaction(sampleTx("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.AddTransaction(sampleTx("t1")))
	updated := sampleTx("t1")
	updated.Amount = 2500
	require.NoError(t, st.UpdateTransaction(updated))

	txs := st.ListAllTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, int64(2500), txs[0].Amount)
}

func TestUpsertTransactionAddsThenUpdates(t *testing.T) {
	st, _ := newTestStore(t)

	tx := sampleTx("y1")
	tx.Type = domain.TxYield
	tx.SenderAccountID = ""
	require.NoError(t, st.UpsertTransaction(tx))
	require.Len(t, st.ListAllTransactions(), 1)

	tx.Amount = 400
	require.NoError(t, st.UpsertTransaction(tx))
	txs := st.ListAllTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, int64(400), txs[0].Amount)
}

func TestListTransactionsByAccountIDsMatchesEitherSide(t *testing.T) {
	st, _ := newTestStore(t)

	sent := sampleTx("t1")
	sent.SenderAccountID = "u1-CheckingAccount"
	sent.ReceiverAccountID = "cash-Cash"
	received := sampleTx("t2")
	unrelated := sampleTx("t3")
	unrelated.SenderAccountID = "u2-CheckingAccount"
	unrelated.ReceiverAccountID = "u3-CheckingAccount"

	require.NoError(t, st.AddTransaction(sent))
	require.NoError(t, st.AddTransaction(received))
	require.NoError(t, st.AddTransaction(unrelated))

	got := st.ListTransactionsByAccountIDs([]string{"u1-CheckingAccount"})
	require.Len(t, got, 2)
	assert.Empty(t, st.ListTransactionsByAccountIDs([]string{"nobody"}))
}

func TestAccountLifecycle(t *testing.T) {
	st, _ := newTestStore(t)

	checking := domain.NewCheckingAccount("u1")
	require.NoError(t, st.AddAccount(checking))
	require.ErrorIs(t, st.AddAccount(checking), ErrDuplicateID)

	got, err := st.GetAccountByID(checking.ID)
	require.NoError(t, err)
	assert.Equal(t, checking, got)

	got, err = st.GetAccountByUserIDAndType("u1", domain.AccountChecking)
	require.NoError(t, err)
	assert.Equal(t, checking, got)

	_, err = st.GetAccountByUserIDAndType("u1", domain.AccountInvestment)
	require.ErrorIs(t, err, ErrNotFound)

	cash, err := st.GetCashAccount()
	require.NoError(t, err)
	cash.InitialBalance = 555
	require.NoError(t, st.UpdateAccount(cash))
	cash, err = st.GetCashAccount()
	require.NoError(t, err)
	assert.Equal(t, int64(555), cash.InitialBalance)
}

func TestListAccountsByTypeIsSortedByID(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.AddAccount(domain.NewInvestmentAccount("zeta")))
	require.NoError(t, st.AddAccount(domain.NewInvestmentAccount("alpha")))
	require.NoError(t, st.AddAccount(domain.NewCheckingAccount("alpha")))

	got := st.ListAccountsByType(domain.AccountInvestment)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha-ImmediateRescueInvestmentAccount", got[0].ID)
	assert.Equal(t, "zeta-ImmediateRescueInvestmentAccount", got[1].ID)
}

func TestUserLookupByIDAndPixKey(t *testing.T) {
	st, _ := newTestStore(t)

	u := domain.User{ID: "u1", Name: "Victor", PixKey: "1111"}
	require.NoError(t, st.AddUser(u))
	require.ErrorIs(t, st.AddUser(u), ErrDuplicateID)

	got, err := st.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = st.GetUserByPixKey("1111")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = st.GetUserByPixKey("")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetUserByID("nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	st, path := newTestStore(t)

	require.NoError(t, st.AddUser(domain.User{ID: "u1", Name: "Victor", PixKey: "1111"}))
	require.NoError(t, st.AddAccount(domain.NewCheckingAccount("u1")))
	require.NoError(t, st.AddAccount(domain.NewInvestmentAccount("u1")))
	require.NoError(t, st.AddTransaction(sampleTx("t1")))
	require.NoError(t, st.SetInvestmentEnabled(true))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, st.ListUsers(), reopened.ListUsers())
	assert.Equal(t, st.ListAccounts(), reopened.ListAccounts())
	assert.Equal(t, st.ListAllTransactions(), reopened.ListAllTransactions())
	assert.True(t, reopened.IsInvestmentEnabled())
}

func TestResetRestoresDefaultCashOnly(t *testing.T) {
	st, path := newTestStore(t)

	require.NoError(t, st.AddUser(domain.User{ID: "u1", Name: "Victor"}))
	require.NoError(t, st.AddAccount(domain.NewCheckingAccount("u1")))
	require.NoError(t, st.AddTransaction(sampleTx("t1")))
	require.NoError(t, st.SetInvestmentEnabled(true))

	require.NoError(t, st.Reset())

	assert.Empty(t, st.ListUsers())
	assert.Empty(t, st.ListAllTransactions())
	assert.False(t, st.IsInvestmentEnabled())
	accounts := st.ListAccounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.DefaultCashAccount(), accounts[0])

	// the reset state is what got persisted
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, reopened.ListUsers())
	require.Len(t, reopened.ListAccounts(), 1)
}
