package main

import (
	"go.uber.org/zap"

	"github.com/vbugueno/pixbank/internal/config"
	"github.com/vbugueno/pixbank/internal/ledger"
	"github.com/vbugueno/pixbank/internal/money"
	"github.com/vbugueno/pixbank/internal/store"
)

// Seeds the demo dataset: two users with pix keys and a short history of
// movements. Safe to re-run; it skips a data file that already has users.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	st, err := store.Open(cfg.DataFile)
	if err != nil {
		logger.Fatal("unable to open data file", zap.String("path", cfg.DataFile), zap.Error(err))
	}

	if users := st.ListUsers(); len(users) > 0 {
		logger.Info("data file already seeded, skipping", zap.Int("users", len(users)))
		return
	}

	service := ledger.NewService(st, logger, cfg.CashOverdraft)

	victor, err := service.RegisterUser("Victor Bugueno", "1111")
	if err != nil {
		logger.Fatal("seed user failed", zap.Error(err))
	}
	pedro, err := service.RegisterUser("Pedro Henrique", "2222")
	if err != nil {
		logger.Fatal("seed user failed", zap.Error(err))
	}

	if err := st.SetInvestmentEnabled(true); err != nil {
		logger.Fatal("enable investment failed", zap.Error(err))
	}

	seed := func(name string, err error) {
		if err != nil {
			logger.Fatal("seed movement failed", zap.String("movement", name), zap.Error(err))
		}
	}
	_, err = service.Deposit(victor.ID, 100_000, "")
	seed("deposit", err)
	_, err = service.Pix(victor.ID, "2222", 20_000, "churrasco")
	seed("pix", err)
	_, err = service.Invest(victor.ID, 80_000)
	seed("invest", err)
	_, err = service.Withdraw(pedro.ID, 15_000, "")
	seed("withdraw", err)

	for _, account := range st.ListAccounts() {
		balance, err := service.Balance(account.ID)
		if err != nil {
			logger.Fatal("balance check failed", zap.String("account_id", account.ID), zap.Error(err))
		}
		logger.Info("seeded account",
			zap.String("account_id", account.ID),
			zap.String("balance", money.FormatCents(balance)))
	}
}
