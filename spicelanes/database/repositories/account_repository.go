package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/uptrace/bun"
)

type AccountRepository interface {
	// Get returns ErrNotFound when the address has no row.
	Get(ctx context.Context, address string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
}

type accountRepository struct {
	db bun.IDB
}

func NewAccountRepository(db bun.IDB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, address string) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().
		Model(account).
		Where("address = ?", address).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	if _, err := r.db.NewUpdate().Model(account).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}
