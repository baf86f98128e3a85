package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

// AccountRepository stores seeded accounts. Save inserts or replaces by
// account number.
type AccountRepository interface {
	Save(ctx context.Context, account *models.Account) error
	GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
}

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Save(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (account_number, account_name, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_number) DO UPDATE
		SET account_name = EXCLUDED.account_name, balance = EXCLUDED.balance`

	_, err := r.db.ExecContext(ctx, query, account.AccountNumber, account.AccountName, account.Balance.String())
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT account_number, account_name, balance FROM accounts WHERE account_number = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("account", accountNumber)
		}
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}
	return account, nil
}

func (r *PostgresAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT account_number, account_name, balance FROM accounts ORDER BY account_number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	return accounts, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var balanceStr string

	if err := row.Scan(&account.AccountNumber, &account.AccountName, &balanceStr); err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	account.Balance = balance
	return account, nil
}
