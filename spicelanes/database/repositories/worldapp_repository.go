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

type NullifierRepository interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Record(ctx context.Context, hash, action string) error
}

type nullifierRepository struct {
	db bun.IDB
}

func NewNullifierRepository(db bun.IDB) NullifierRepository {
	return &nullifierRepository{db: db}
}

func (r *nullifierRepository) Seen(ctx context.Context, hash string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Nullifier)(nil)).
		Where("hash = ?", hash).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check nullifier: %w", err)
	}
	return exists, nil
}

func (r *nullifierRepository) Record(ctx context.Context, hash, action string) error {
	n := &models.Nullifier{Hash: hash, Action: action, CreatedAt: time.Now()}
	if _, err := r.db.NewInsert().Model(n).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record nullifier: %w", err)
	}
	return nil
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	Get(ctx context.Context, reference string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type paymentRepository struct {
	db bun.IDB
}

func NewPaymentRepository(db bun.IDB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	if _, err := r.db.NewInsert().Model(payment).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, reference string) (*models.Payment, error) {
	payment := new(models.Payment)
	err := r.db.NewSelect().
		Model(payment).
		Where("reference = ?", reference).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now()
	if _, err := r.db.NewUpdate().Model(payment).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}
