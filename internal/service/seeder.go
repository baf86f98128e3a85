package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/riteshkumar/scheduled-transfers/internal/models"
	"github.com/riteshkumar/scheduled-transfers/internal/repository"
)

// SeedData is the sample data loaded at startup. Transfer dates are relative
// to the day the seeder runs.
type SeedData struct {
	Accounts  []SeedAccount  `yaml:"accounts"`
	Transfers []SeedTransfer `yaml:"transfers"`
}

type SeedAccount struct {
	AccountNumber string `yaml:"account_number"`
	AccountName   string `yaml:"account_name"`
	Balance       string `yaml:"balance"`
}

type SeedTransfer struct {
	OriginAccount      string `yaml:"origin_account"`
	DestinationAccount string `yaml:"destination_account"`
	Amount             string `yaml:"amount"`
	Fee                string `yaml:"fee"`
	TransferInDays     int    `yaml:"transfer_in_days"`
	ScheduledDaysAgo   int    `yaml:"scheduled_days_ago"`
	Status             string `yaml:"status"`
}

func DefaultSeedData() SeedData {
	return SeedData{
		Accounts: []SeedAccount{
			{AccountNumber: "1234567890", AccountName: "John Doe", Balance: "5000.00"},
			{AccountNumber: "0987654321", AccountName: "Jane Smith", Balance: "3000.00"},
			{AccountNumber: "2345678901", AccountName: "Bob Johnson", Balance: "2500.00"},
		},
		Transfers: []SeedTransfer{
			{
				OriginAccount:      "1234567890",
				DestinationAccount: "0987654321",
				Amount:             "1000.00",
				Fee:                "15.00",
				TransferInDays:     5,
				Status:             string(models.TransferStatusPending),
			},
			{
				OriginAccount:      "0987654321",
				DestinationAccount: "2345678901",
				Amount:             "500.00",
				Fee:                "10.00",
				TransferInDays:     2,
				ScheduledDaysAgo:   1,
				Status:             string(models.TransferStatusCompleted),
			},
		},
	}
}

func LoadSeedData(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeedData(raw)
}

func ParseSeedData(raw []byte) (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return data, nil
}

// Seeder writes sample data straight to the stores. Seeded transfers keep
// their literal fee and status instead of going through ScheduleTransfer.
type Seeder struct {
	accountRepo  repository.AccountRepository
	transferRepo repository.TransferRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewSeeder(accountRepo repository.AccountRepository, transferRepo repository.TransferRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Seed upserts the accounts and inserts the transfers only when the transfer
// store is empty, so restarting against a persistent store adds nothing.
func (s *Seeder) Seed(ctx context.Context, data SeedData) error {
	accounts, err := buildSeedAccounts(data.Accounts)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	transfers, err := buildSeedTransfers(data.Transfers, now)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.accountRepo.Save(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", account.AccountNumber, err)
		}
	}

	count, err := s.transferRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count transfers: %w", err)
	}
	if count > 0 {
		s.logger.Info("transfer store not empty, skipping transfer seed",
			"accounts", len(accounts),
			"existing_transfers", count,
		)
		return nil
	}

	for _, transfer := range transfers {
		if _, err := s.transferRepo.Save(ctx, transfer); err != nil {
			return fmt.Errorf("failed to seed transfer: %w", err)
		}
	}

	s.logger.Info("seed data loaded", "accounts", len(accounts), "transfers", len(transfers))
	return nil
}

func buildSeedAccounts(seeds []SeedAccount) ([]*models.Account, error) {
	accounts := make([]*models.Account, 0, len(seeds))
	for _, seed := range seeds {
		if !models.ValidAccountNumber(seed.AccountNumber) {
			return nil, fmt.Errorf("seed account %q: account number must be exactly 10 digits", seed.AccountNumber)
		}
		balance, err := decimal.NewFromString(seed.Balance)
		if err != nil {
			return nil, fmt.Errorf("seed account %s: invalid balance: %w", seed.AccountNumber, err)
		}
		accounts = append(accounts, &models.Account{
			AccountNumber: seed.AccountNumber,
			AccountName:   seed.AccountName,
			Balance:       balance,
		})
	}
	return accounts, nil
}

func buildSeedTransfers(seeds []SeedTransfer, now time.Time) ([]*models.Transfer, error) {
	today := models.NewDate(now)
	transfers := make([]*models.Transfer, 0, len(seeds))
	for i, seed := range seeds {
		if !models.ValidAccountNumber(seed.OriginAccount) || !models.ValidAccountNumber(seed.DestinationAccount) {
			return nil, fmt.Errorf("seed transfer %d: account numbers must be exactly 10 digits", i)
		}
		amount, err := decimal.NewFromString(seed.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, fmt.Errorf("seed transfer %d: amount must be a positive decimal", i)
		}
		fee, err := decimal.NewFromString(seed.Fee)
		if err != nil {
			return nil, fmt.Errorf("seed transfer %d: invalid fee: %w", i, err)
		}
		status, ok := models.ParseTransferStatus(seed.Status)
		if !ok {
			return nil, fmt.Errorf("seed transfer %d: unknown status %q", i, seed.Status)
		}
		transfers = append(transfers, &models.Transfer{
			OriginAccount:      seed.OriginAccount,
			DestinationAccount: seed.DestinationAccount,
			Amount:             amount,
			Fee:                fee,
			TransferDate:       today.AddDays(seed.TransferInDays),
			ScheduledDate:      now.AddDate(0, 0, -seed.ScheduledDaysAgo),
			Status:             status,
		})
	}
	return transfers, nil
}
