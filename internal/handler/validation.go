package handler

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

// validateCreateTransferRequest checks the request and builds the candidate
// transfer handed to the service.
func validateCreateTransferRequest(req *models.CreateTransferRequest) (*models.Transfer, error) {
	if req.OriginAccount == "" {
		return nil, errors.NewValidationError("originAccount", "origin account is required")
	}
	if !models.ValidAccountNumber(req.OriginAccount) {
		return nil, errors.NewValidationError("originAccount", "origin account must be exactly 10 digits")
	}
	if req.DestinationAccount == "" {
		return nil, errors.NewValidationError("destinationAccount", "destination account is required")
	}
	if !models.ValidAccountNumber(req.DestinationAccount) {
		return nil, errors.NewValidationError("destinationAccount", "destination account must be exactly 10 digits")
	}
	if req.Amount == nil {
		return nil, errors.NewValidationError("amount", "amount is required")
	}
	if !req.Amount.IsPositive() {
		return nil, errors.NewValidationError("amount", "amount must be positive")
	}
	if req.TransferDate.IsZero() {
		return nil, errors.NewValidationError("transferDate", "transfer date is required")
	}

	return &models.Transfer{
		OriginAccount:      req.OriginAccount,
		DestinationAccount: req.DestinationAccount,
		Amount:             *req.Amount,
		TransferDate:       req.TransferDate,
	}, nil
}

func parseFeeQuery(query url.Values) (decimal.Decimal, models.Date, error) {
	rawAmount := query.Get("amount")
	if rawAmount == "" {
		return decimal.Zero, models.Date{}, errors.NewValidationError("amount", "amount is required")
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return decimal.Zero, models.Date{}, errors.NewValidationError("amount", "amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, models.Date{}, errors.NewValidationError("amount", "amount must be positive")
	}

	rawDate := query.Get("date")
	if rawDate == "" {
		return decimal.Zero, models.Date{}, errors.NewValidationError("date", "date is required")
	}
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return decimal.Zero, models.Date{}, errors.NewValidationError("date", err.Error())
	}
	return amount, date, nil
}

func parseTransferID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}

func parseStatus(raw string) (models.TransferStatus, error) {
	if raw == "" {
		return "", errors.NewValidationError("status", "status is required")
	}
	status, ok := models.ParseTransferStatus(raw)
	if !ok {
		return "", errors.NewValidationError("status", "status must be one of PENDING, COMPLETED, CANCELLED")
	}
	return status, nil
}
