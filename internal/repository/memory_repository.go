package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/riteshkumar/scheduled-transfers/internal/errors"
	"github.com/riteshkumar/scheduled-transfers/internal/models"
)

// MemoryTransferRepository keeps transfers in process memory. Callers always
// receive copies, so mutating a returned transfer does not change the store.
type MemoryTransferRepository struct {
	mu        sync.RWMutex
	nextID    int64
	transfers map[int64]*models.Transfer
}

func NewMemoryTransferRepository() *MemoryTransferRepository {
	return &MemoryTransferRepository{
		transfers: make(map[int64]*models.Transfer),
	}
}

func (r *MemoryTransferRepository) Save(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := transfer.Clone()
	if saved.ID == 0 {
		r.nextID++
		saved.ID = r.nextID
	} else if _, ok := r.transfers[saved.ID]; !ok {
		return nil, errors.NewNotFoundError("transfer", saved.ID)
	}

	r.transfers[saved.ID] = saved
	return saved.Clone(), nil
}

func (r *MemoryTransferRepository) GetByID(ctx context.Context, id int64) (*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transfer, ok := r.transfers[id]
	if !ok {
		return nil, errors.NewNotFoundError("transfer", id)
	}
	return transfer.Clone(), nil
}

func (r *MemoryTransferRepository) List(ctx context.Context) ([]*models.Transfer, error) {
	return r.filter(func(*models.Transfer) bool { return true }), nil
}

func (r *MemoryTransferRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool {
		return t.OriginAccount == accountNumber || t.DestinationAccount == accountNumber
	}), nil
}

func (r *MemoryTransferRepository) ListByStatus(ctx context.Context, status models.TransferStatus) ([]*models.Transfer, error) {
	return r.filter(func(t *models.Transfer) bool { return t.Status == status }), nil
}

func (r *MemoryTransferRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.transfers)), nil
}

func (r *MemoryTransferRepository) filter(keep func(*models.Transfer) bool) []*models.Transfer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transfers := []*models.Transfer{}
	for _, t := range r.transfers {
		if keep(t) {
			transfers = append(transfers, t.Clone())
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].ID < transfers[j].ID
	})
	return transfers
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[string]models.Account),
	}
}

func (r *MemoryAccountRepository) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.AccountNumber] = *account
	return nil
}

func (r *MemoryAccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountNumber]
	if !ok {
		return nil, errors.NewNotFoundError("account", accountNumber)
	}
	return &account, nil
}

func (r *MemoryAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		account := a
		accounts = append(accounts, &account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
	return accounts, nil
}
