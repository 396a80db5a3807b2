package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vbugueno/pixbank/internal/domain"
	"github.com/vbugueno/pixbank/internal/ledger"
	"github.com/vbugueno/pixbank/internal/money"
	"github.com/vbugueno/pixbank/internal/store"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixbank_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pixbank_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	store   *store.Store
	service *ledger.Service
	logger  *zap.Logger
}

func NewHandler(st *store.Store, svc *ledger.Service, logger *zap.Logger) *Handler {
	return &Handler{store: st, service: svc, logger: logger}
}

// accountView decorates an account with its projected balance, the shape the
// UI consumes.
type accountView struct {
	domain.Account
	Balance int64  `json:"balance"`
	Display string `json:"display"`
}

type createUserRequest struct {
	Name   string `json:"name"`
	PixKey string `json:"pixKey,omitempty"`
}

type moneyRequest struct {
	UserID  string `json:"userId"`
	Amount  int64  `json:"amount"`
	Comment string `json:"comment,omitempty"`
}

type pixRequest struct {
	SenderUserID string `json:"senderUserId"`
	Recipient    string `json:"recipient"`
	Amount       int64  `json:"amount"`
	Comment      string `json:"comment,omitempty"`
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, "GET", "/health", http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "POST", "/users", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	user, err := h.service.RegisterUser(req.Name, req.PixKey)
	if err != nil {
		h.respondServiceError(w, "POST", "/users", err)
		return
	}
	h.respondJSON(w, "POST", "/users", http.StatusCreated, user)
}

func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, "GET", "/users", http.StatusOK, h.store.ListUsers())
}

func (h *Handler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts := h.store.ListAccounts()
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		balance, err := h.service.Balance(a.ID)
		if err != nil {
			h.respondServiceError(w, "GET", "/accounts", err)
			return
		}
		views = append(views, accountView{Account: a, Balance: balance, Display: money.FormatCents(balance)})
	}
	h.respondJSON(w, "GET", "/accounts", http.StatusOK, views)
}

// GetAccountHandler answers the current balance, or the balance as of the
// RFC3339 instant in the as_of query parameter.
func (h *Handler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("GET", "/accounts/{id}"))
	defer timer.ObserveDuration()

	id := mux.Vars(r)["id"]
	account, err := h.store.GetAccountByID(id)
	if err != nil {
		h.respondServiceError(w, "GET", "/accounts/{id}", err)
		return
	}

	var balance int64
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		cutoff, err := time.Parse(time.RFC3339, asOf)
		if err != nil {
			h.respondError(w, "GET", "/accounts/{id}", http.StatusBadRequest, "as_of must be RFC3339")
			return
		}
		balance, err = h.service.BalanceAsOf(id, domain.FormatTime(cutoff))
		if err != nil {
			h.respondServiceError(w, "GET", "/accounts/{id}", err)
			return
		}
	} else {
		balance, err = h.service.Balance(id)
		if err != nil {
			h.respondServiceError(w, "GET", "/accounts/{id}", err)
			return
		}
	}
	h.respondJSON(w, "GET", "/accounts/{id}", http.StatusOK,
		accountView{Account: account, Balance: balance, Display: money.FormatCents(balance)})
}

func (h *Handler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var txs []domain.Transaction
	if accountID := r.URL.Query().Get("account_id"); accountID != "" {
		txs = h.store.ListTransactionsByAccountIDs([]string{accountID})
	} else {
		txs = h.store.ListAllTransactions()
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	h.respondJSON(w, "GET", "/transactions", http.StatusOK, txs)
}

func (h *Handler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	h.moneyOperation(w, r, "/transactions/deposit", func(req moneyRequest) (domain.Transaction, error) {
		return h.service.Deposit(req.UserID, req.Amount, req.Comment)
	})
}

func (h *Handler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.moneyOperation(w, r, "/transactions/withdraw", func(req moneyRequest) (domain.Transaction, error) {
		return h.service.Withdraw(req.UserID, req.Amount, req.Comment)
	})
}

func (h *Handler) InvestHandler(w http.ResponseWriter, r *http.Request) {
	h.moneyOperation(w, r, "/transactions/invest", func(req moneyRequest) (domain.Transaction, error) {
		return h.service.Invest(req.UserID, req.Amount)
	})
}

func (h *Handler) RescueHandler(w http.ResponseWriter, r *http.Request) {
	h.moneyOperation(w, r, "/transactions/rescue", func(req moneyRequest) (domain.Transaction, error) {
		return h.service.Rescue(req.UserID, req.Amount)
	})
}

func (h *Handler) PixHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/transactions/pix"))
	defer timer.ObserveDuration()

	var req pixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "POST", "/transactions/pix", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	tx, err := h.service.Pix(req.SenderUserID, req.Recipient, req.Amount, req.Comment)
	if err != nil {
		h.respondServiceError(w, "POST", "/transactions/pix", err)
		return
	}
	h.respondJSON(w, "POST", "/transactions/pix", http.StatusCreated, tx)
}

func (h *Handler) SetCashHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitialBalance int64 `json:"initialBalance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "PUT", "/cash", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	cash, err := h.service.SetCashBalance(req.InitialBalance)
	if err != nil {
		h.respondServiceError(w, "PUT", "/cash", err)
		return
	}
	h.respondJSON(w, "PUT", "/cash", http.StatusOK, cash)
}

func (h *Handler) GetInvestmentSettingHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, "GET", "/settings/investment", http.StatusOK,
		map[string]bool{"enabled": h.store.IsInvestmentEnabled()})
}

func (h *Handler) SetInvestmentSettingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "PUT", "/settings/investment", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := h.store.SetInvestmentEnabled(req.Enabled); err != nil {
		h.respondServiceError(w, "PUT", "/settings/investment", err)
		return
	}
	h.respondJSON(w, "PUT", "/settings/investment", http.StatusOK,
		map[string]bool{"enabled": req.Enabled})
}

func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(); err != nil {
		h.respondServiceError(w, "POST", "/reset", err)
		return
	}
	h.respondJSON(w, "POST", "/reset", http.StatusOK, map[string]string{"status": "reset"})
}

// moneyOperation factors the shared decode/validate/respond shape of the
// single-user money endpoints.
func (h *Handler) moneyOperation(w http.ResponseWriter, r *http.Request, endpoint string, op func(moneyRequest) (domain.Transaction, error)) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var req moneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "POST", endpoint, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	tx, err := op(req)
	if err != nil {
		h.respondServiceError(w, "POST", endpoint, err)
		return
	}
	h.respondJSON(w, "POST", endpoint, http.StatusCreated, tx)
}

// respondServiceError maps the core error taxonomy onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, method, endpoint string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.respondError(w, method, endpoint, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		h.respondError(w, method, endpoint, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrSelfTransfer):
		h.respondError(w, method, endpoint, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		h.respondError(w, method, endpoint, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, method, endpoint string, code int, message string) {
	h.respondJSON(w, method, endpoint, code, map[string]string{"error": message})
}

func (h *Handler) respondJSON(w http.ResponseWriter, method, endpoint string, code int, payload interface{}) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
