package service

import (
	"context"
	"log/slog"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
	"github.com/riteshkumar/scheduled-transfers/internal/repository"
)

// AccountService exposes the seeded accounts read-only. Transfers never
// change an account balance.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (*models.Account, error)
}

type AccountServiceImpl struct {
	accountRepo repository.AccountRepository
	logger      *slog.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list accounts", "error", err.Error())
		return nil, errors.NewStoreError("list accounts", err)
	}
	return accounts, nil
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	if !models.ValidAccountNumber(accountNumber) {
		return nil, errors.NewValidationError("accountNumber", "must be exactly 10 digits")
	}

	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("account not found",
				"account_number", accountNumber,
			)
			return nil, err
		}
		s.logger.Error("failed to get account",
			"account_number", accountNumber,
			"error", err.Error(),
		)
		return nil, errors.NewStoreError("get account", err)
	}

	return account, nil
}
