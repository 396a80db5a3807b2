package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vbugueno/pixbank/internal/domain"
	"github.com/vbugueno/pixbank/internal/store"
)

var (
	accrualSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixbank_accrual_sweeps_total",
		Help: "Completed yield accrual sweeps",
	})
	accrualSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixbank_accrual_account_skips_total",
		Help: "Accounts skipped during a sweep due to ledger errors",
	}, []string{"account_id"})
)

// accrualEpoch is the elapsed-time origin for an investment account that has
// never seen a non-yield movement. Unreachable in practice: a positive
// balance implies at least one inbound deposit-side movement.
const accrualEpoch = "1970-01-01T00:00:00.000000000Z"

// Engine periodically posts compound interest to every investment account
// with a positive balance, as a single rewritable Yield record per account.
//
// Interest covers the time elapsed since the last principal-changing
// movement, not since the last tick, so sweeping more often changes the
// granularity of the posted amount but never its final value.
type Engine struct {
	store  *store.Store
	logger *zap.Logger

	// hourlyRate is the simulation-only compound rate per hour
	// (0.5 means +50%/hour).
	hourlyRate float64
	interval   time.Duration
}

func NewEngine(st *store.Store, logger *zap.Logger, hourlyRate float64, interval time.Duration) *Engine {
	return &Engine{store: st, logger: logger, hourlyRate: hourlyRate, interval: interval}
}

// Run sweeps on a fixed tick until ctx is cancelled. Ticks never overlap: a
// sweep finishes, including its persistence writes, before the next tick is
// taken from the ticker.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	e.logger.Info("accrual engine started",
		zap.Duration("interval", e.interval),
		zap.Float64("hourly_rate", e.hourlyRate))
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("accrual engine stopped")
			return
		case <-ticker.C:
			e.Sweep(time.Now())
		}
	}
}

// Sweep accrues every investment account as of the single instant now.
// Per-account failures are logged and skipped; one bad account never aborts
// the rest of the sweep.
func (e *Engine) Sweep(now time.Time) {
	for _, account := range e.store.ListAccountsByType(domain.AccountInvestment) {
		if err := e.accrue(account, now); err != nil {
			accrualSkips.WithLabelValues(account.ID).Inc()
			e.logger.Warn("accrual skipped",
				zap.String("account_id", account.ID),
				zap.Error(err))
		}
	}
	accrualSweeps.Inc()
}

func (e *Engine) accrue(account domain.Account, now time.Time) error {
	txs := e.store.ListTransactionsByAccountIDs([]string{account.ID})

	// Zero balance means nothing to compound and no record to touch.
	balance := Balance(account, txs)
	if balance <= 0 {
		return nil
	}

	var movements []domain.Transaction
	lastNonYield := accrualEpoch
	for _, t := range txs {
		if t.ReceiverAccountID != account.ID {
			continue
		}
		movements = append(movements, t)
		if t.Type != domain.TxYield && t.CreatedAt > lastNonYield {
			lastNonYield = t.CreatedAt
		}
	}
	if len(movements) == 0 {
		return nil
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt < movements[j].CreatedAt
	})

	// The most recent movement is the accrual record when it is a Yield;
	// otherwise interest since the last movement has not been posted yet
	// and a fresh record is minted.
	rec := movements[len(movements)-1]
	if rec.Type != domain.TxYield {
		rec = domain.Transaction{
			ID:                uuid.NewString(),
			Type:              domain.TxYield,
			ReceiverAccountID: account.ID,
		}
	}
	rec.CreatedAt = domain.FormatTime(now)

	since, err := domain.ParseTime(lastNonYield)
	if err != nil {
		return fmt.Errorf("bad timestamp %q: %w", lastNonYield, ErrInconsistentLedger)
	}
	elapsedHours := now.Sub(since).Hours()
	if elapsedHours < 0 {
		elapsedHours = 0
	}

	// Back out the previously posted yield so it is not compounded on itself.
	principal := balance - rec.Amount
	growth := math.Pow(1+e.hourlyRate, elapsedHours) - 1
	if math.IsInf(growth, 0) || math.IsNaN(growth) {
		return fmt.Errorf("growth over %.1f elapsed hours is not representable: %w",
			elapsedHours, ErrInconsistentLedger)
	}
	rec.Amount = decimal.NewFromInt(principal).
		Mul(decimal.NewFromFloat(growth)).
		Floor().
		IntPart()
	if rec.Amount < 0 {
		rec.Amount = 0
	}
	return e.store.UpsertTransaction(rec)
}
