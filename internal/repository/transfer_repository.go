package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

// TransferRepository persists transfers. Save inserts a transfer whose ID is
// zero and assigns the generated ID; otherwise it overwrites the stored row.
type TransferRepository interface {
	Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error)
	GetByID(ctx context.Context, id int64) (*models.Transfer, error)
	List(ctx context.Context) ([]*models.Transfer, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error)
	ListByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error)
	Count(ctx context.Context) (int64, error)
}

type PostgresTransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *PostgresTransferRepository {
	return &PostgresTransferRepository{db: db}
}

const transferColumns = `id, origin_account, destination_account, amount, fee, transfer_date, scheduled_date, status`

func (r *PostgresTransferRepository) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	saved := transfer.Clone()
	if saved.ID == 0 {
		query := `INSERT INTO transfers (origin_account, destination_account, amount, fee, transfer_date, scheduled_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`

		err := r.db.QueryRowContext(ctx, query,
			saved.OriginAccount,
			saved.DestinationAccount,
			saved.Amount.String(),
			saved.Fee.String(),
			saved.TransferDate.Time,
			saved.ScheduledDate,
			string(saved.Status),
		).Scan(&saved.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create transfer: %w", err)
		}
		return saved, nil
	}

	query := `UPDATE transfers
		SET origin_account = $1, destination_account = $2, amount = $3, fee = $4,
			transfer_date = $5, scheduled_date = $6, status = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		saved.OriginAccount,
		saved.DestinationAccount,
		saved.Amount.String(),
		saved.Fee.String(),
		saved.TransferDate.Time,
		saved.ScheduledDate,
		string(saved.Status),
		saved.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected after updating transfer: %w", err)
	}
	if rowsAffected == 0 {
		return nil, errors.NewNotFoundError("transfer", saved.ID)
	}
	return saved, nil
}

func (r *PostgresTransferRepository) GetByID(ctx context.Context, id int64) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("transfer", id)
		}
		return nil, fmt.Errorf("failed to get transfer by ID: %w", err)
	}
	return transfer, nil
}

func (r *PostgresTransferRepository) List(ctx context.Context) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers ORDER BY id`
	return r.queryTransfers(ctx, "list transfers", query)
}

func (r *PostgresTransferRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE origin_account = $1 OR destination_account = $1
		ORDER BY id`
	return r.queryTransfers(ctx, "list transfers by account", query, accountNumber)
}

func (r *PostgresTransferRepository) ListByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE status = $1 ORDER BY id`
	return r.queryTransfers(ctx, "list transfers by status", query, string(status))
}

func (r *PostgresTransferRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

func (r *PostgresTransferRepository) queryTransfers(ctx context.Context, op, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	transfers := []*models.Transfer{}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transfers: %w", err)
	}
	return transfers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*models.Transfer, error) {
	transfer := &models.Transfer{}
	var amountStr, feeStr, status string

	err := row.Scan(
		&transfer.ID,
		&transfer.OriginAccount,
		&transfer.DestinationAccount,
		&amountStr,
		&feeStr,
		&transfer.TransferDate.Time,
		&transfer.ScheduledDate,
		&status,
	)
	if err != nil {
		return nil, err
	}

	if transfer.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	if transfer.Fee, err = decimal.NewFromString(feeStr); err != nil {
		return nil, fmt.Errorf("failed to parse fee: %w", err)
	}
	transfer.TransferDate = models.NewDate(transfer.TransferDate.Time)
	transfer.Status = models.TransferStatus(status)
	return transfer, nil
}
