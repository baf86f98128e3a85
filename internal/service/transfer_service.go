package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/events"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
	"github.com/riteshkumar/scheduled-transfers/internal/repository"
)

type TransferService interface {
	ListTransfers(ctx context.Context) ([]*models.Transfer, error)
	GetTransfer(ctx context.Context, id int64) (*models.Transfer, error)
	ListTransfersByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error)
	ListTransfersByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error)
	ScheduleTransfer(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id int64, status models.TransferStatus) (*models.Transfer, error)
	CalculateFee(amount decimal.Decimal, date models.Date) (decimal.Decimal, error)
}

type TransferServiceImpl struct {
	transferRepo  repository.TransferRepository
	feeCalculator FeeCalculator
	publisher     events.Publisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewTransferService(transferRepo repository.TransferRepository, feeCalculator FeeCalculator, publisher events.Publisher, logger *slog.Logger) *TransferServiceImpl {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TransferServiceImpl{
		transferRepo:  transferRepo,
		feeCalculator: feeCalculator,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *TransferServiceImpl) ListTransfers(ctx context.Context) ([]*models.Transfer, error) {
	transfers, err := s.transferRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list transfers", "error", err.Error())
		return nil, errors.NewStoreError("list transfers", err)
	}
	return transfers, nil
}

func (s *TransferServiceImpl) GetTransfer(ctx context.Context, id int64) (*models.Transfer, error) {
	transfer, err := s.transferRepo.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("transfer not found", "transfer_id", id)
			return nil, err
		}
		s.logger.Error("failed to get transfer",
			"transfer_id", id,
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("get transfer", err)
	}
	return transfer, nil
}

// ListTransfersByAccount returns transfers where the account is either the
// origin or the destination.
func (s *TransferServiceImpl) ListTransfersByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error) {
	transfers, err := s.transferRepo.ListByAccount(ctx, accountNumber)
	if err != nil {
		s.logger.Error("failed to list transfers by account",
			"account_number", accountNumber,
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("list transfers by account", err)
	}
	return transfers, nil
}

func (s *TransferServiceImpl) ListTransfersByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	transfers, err := s.transferRepo.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("failed to list transfers by status",
			"status", status,
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("list transfers by status", err)
	}
	return transfers, nil
}

// ScheduleTransfer prices the candidate and stores it as PENDING. Any id, fee,
// scheduled date or status on the candidate is ignored. Nothing is stored
// when the transfer cannot be priced.
func (s *TransferServiceImpl) ScheduleTransfer(ctx context.Context, candidate *models.Transfer) (*models.Transfer, error) {
	if !candidate.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if candidate.TransferDate.IsZero() {
		return nil, errors.NewValidationError("transferDate", "is required")
	}

	fee, ok := s.feeCalculator.CalculateFee(candidate.Amount, candidate.TransferDate)
	if !ok {
		s.logger.Warn("no applicable fee for transfer",
			"origin_account", candidate.OriginAccount,
			"destination_account", candidate.DestinationAccount,
			"amount", candidate.Amount.String(),
			"transfer_date", candidate.TransferDate.String(),
		)
		return nil, errors.ErrNoApplicableFee
	}

	transfer := &models.Transfer{
		OriginAccount:      candidate.OriginAccount,
		DestinationAccount: candidate.DestinationAccount,
		Amount:             candidate.Amount,
		Fee:                fee,
		TransferDate:       candidate.TransferDate,
		ScheduledDate:      s.now().UTC(),
		Status:             models.TransferStatusPending,
	}

	saved, err := s.transferRepo.Save(ctx, transfer)
	if err != nil {
		s.logger.Error("failed to save transfer",
			"origin_account", transfer.OriginAccount,
			"destination_account", transfer.DestinationAccount,
			"amount", transfer.Amount.String(),
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("save transfer", err)
	}

	s.logger.Info("transfer scheduled",
		"transfer_id", saved.ID,
		"amount", saved.Amount.String(),
		"fee", saved.Fee.String(),
		"transfer_date", saved.TransferDate.String(),
	)
	s.publish(ctx, events.TypeTransferScheduled, saved)
	return saved, nil
}

// UpdateTransferStatus overwrites the status. Any status may follow any other.
func (s *TransferServiceImpl) UpdateTransferStatus(ctx context.Context, id int64, status models.TransferStatus) (*models.Transfer, error) {
	status, ok := models.ParseTransferStatus(string(status))
	if !ok {
		return nil, errors.ErrInvalidStatus
	}

	transfer, err := s.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := transfer.Status
	transfer.Status = status

	saved, err := s.transferRepo.Save(ctx, transfer)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update transfer status",
			"transfer_id", id,
			"status", status,
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("update transfer status", err)
	}

	s.logger.Info("transfer status updated",
		"transfer_id", id,
		"previous_status", previous,
		"status", status,
	)
	s.publish(ctx, events.TypeTransferStatusChanged, saved)
	return saved, nil
}

func (s *TransferServiceImpl) CalculateFee(amount decimal.Decimal, date models.Date) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}
	if date.IsZero() {
		return decimal.Zero, errors.NewValidationError("date", "is required")
	}

	fee, ok := s.feeCalculator.CalculateFee(amount, date)
	if !ok {
		return decimal.Zero, errors.ErrNoApplicableFee
	}
	return fee, nil
}

// publish failures are logged only; the write has already been committed.
func (s *TransferServiceImpl) publish(ctx context.Context, eventType string, transfer *models.Transfer) {
	event := events.NewTransferEvent(eventType, transfer, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish transfer event",
			"transfer_id", transfer.ID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
