package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/service"
	u "github.com/riteshkumar/scheduled-transfers/internal/utils"
)

type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

func NewAccountHandler(accountService service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{accountNumber}", h.GetAccount).Methods(http.MethodGet)
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list accounts")
		return
	}
	u.WriteJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["accountNumber"]

	account, err := h.accountService.GetAccount(r.Context(), accountNumber)
	if err != nil {
		h.handleServiceError(w, err, "get account")
		return
	}
	u.WriteJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusNotFound, "account not found", err.Error())
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	default:
		h.logger.Error("internal server error during "+operation, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
