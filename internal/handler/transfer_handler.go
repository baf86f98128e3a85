package handler

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
	"github.com/riteshkumar/scheduled-transfers/internal/service"
	u "github.com/riteshkumar/scheduled-transfers/internal/utils"
)

type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

func NewTransferHandler(transferService service.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// calculate-fee is registered ahead of /transfers/{id} so it is never parsed
// as an id.
func (h *TransferHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transfers", h.ListTransfers).Methods(http.MethodGet)
	router.HandleFunc("/transfers", h.ScheduleTransfer).Methods(http.MethodPost)
	router.HandleFunc("/transfers/calculate-fee", h.CalculateFee).Methods(http.MethodGet)
	router.HandleFunc("/transfers/account/{accountNumber}", h.ListTransfersByAccount).Methods(http.MethodGet)
	router.HandleFunc("/transfers/status/{status}", h.ListTransfersByStatus).Methods(http.MethodGet)
	router.HandleFunc("/transfers/{id}", h.GetTransfer).Methods(http.MethodGet)
	router.HandleFunc("/transfers/{id}/status", h.UpdateTransferStatus).Methods(http.MethodPut)
}

func (h *TransferHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.transferService.ListTransfers(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list transfers")
		return
	}
	u.WriteJSON(w, http.StatusOK, transfers)
}

func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransferID(mux.Vars(r)["id"])
	if err != nil {
		h.handleServiceError(w, err, "get transfer")
		return
	}

	transfer, err := h.transferService.GetTransfer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get transfer")
		return
	}
	u.WriteJSON(w, http.StatusOK, transfer)
}

func (h *TransferHandler) ListTransfersByAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := mux.Vars(r)["accountNumber"]

	transfers, err := h.transferService.ListTransfersByAccount(r.Context(), accountNumber)
	if err != nil {
		h.handleServiceError(w, err, "list transfers by account")
		return
	}
	u.WriteJSON(w, http.StatusOK, transfers)
}

func (h *TransferHandler) ListTransfersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatus(mux.Vars(r)["status"])
	if err != nil {
		h.handleServiceError(w, err, "list transfers by status")
		return
	}

	transfers, err := h.transferService.ListTransfersByStatus(r.Context(), status)
	if err != nil {
		h.handleServiceError(w, err, "list transfers by status")
		return
	}
	u.WriteJSON(w, http.StatusOK, transfers)
}

func (h *TransferHandler) ScheduleTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransferRequest
	if err := u.DecodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid schedule transfer request", "error", err.Error())
		u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	candidate, err := validateCreateTransferRequest(&req)
	if err != nil {
		h.logger.Warn("schedule transfer request failed validation", "error", err.Error())
		h.handleServiceError(w, err, "schedule transfer")
		return
	}

	transfer, err := h.transferService.ScheduleTransfer(r.Context(), candidate)
	if err != nil {
		h.handleServiceError(w, err, "schedule transfer")
		return
	}
	u.WriteJSON(w, http.StatusCreated, transfer)
}

func (h *TransferHandler) UpdateTransferStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransferID(mux.Vars(r)["id"])
	if err != nil {
		h.handleServiceError(w, err, "update transfer status")
		return
	}
	status, err := parseStatus(r.URL.Query().Get("status"))
	if err != nil {
		h.handleServiceError(w, err, "update transfer status")
		return
	}

	transfer, err := h.transferService.UpdateTransferStatus(r.Context(), id, status)
	if err != nil {
		h.handleServiceError(w, err, "update transfer status")
		return
	}
	u.WriteJSON(w, http.StatusOK, transfer)
}

func (h *TransferHandler) CalculateFee(w http.ResponseWriter, r *http.Request) {
	amount, date, err := parseFeeQuery(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, err, "calculate fee")
		return
	}

	fee, err := h.transferService.CalculateFee(amount, date)
	if err != nil {
		h.handleServiceError(w, err, "calculate fee")
		return
	}

	u.WriteJSON(w, http.StatusOK, models.FeeResponse{
		Amount: amount,
		Date:   date,
		Fee:    fee,
	})
}

func (h *TransferHandler) handleServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case stderrors.Is(err, errors.ErrNoApplicableFee):
		u.WriteError(w, http.StatusBadRequest, "fee unavailable", models.NoApplicableFeeMessage)
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusNotFound, "transfer not found", err.Error())
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	default:
		h.logger.Error("internal server error during "+action, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
