package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every endpoint. The API carries no business logic; it is
// the outer surface the demo UI talks to.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods(http.MethodGet)

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/users", h.CreateUserHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/users", h.ListUsersHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/accounts", h.ListAccountsHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/accounts/{id}", h.GetAccountHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/transactions", h.ListTransactionsHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/transactions/deposit", h.DepositHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/transactions/withdraw", h.WithdrawHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/transactions/pix", h.PixHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/transactions/invest", h.InvestHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/transactions/rescue", h.RescueHandler).Methods(http.MethodPost)
	apiV1.HandleFunc("/cash", h.SetCashHandler).Methods(http.MethodPut)
	apiV1.HandleFunc("/settings/investment", h.GetInvestmentSettingHandler).Methods(http.MethodGet)
	apiV1.HandleFunc("/settings/investment", h.SetInvestmentSettingHandler).Methods(http.MethodPut)
	apiV1.HandleFunc("/reset", h.ResetHandler).Methods(http.MethodPost)

	return r
}
