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

type PoolRepository interface {
	Get(ctx context.Context, planetID int64, resource models.Resource) (*models.MarketPool, error)
	Update(ctx context.Context, pool *models.MarketPool) error
	// Seed inserts the genesis pools, skipping pairs that already exist.
	Seed(ctx context.Context, pools []*models.MarketPool) error
}

type poolRepository struct {
	db bun.IDB
}

func NewPoolRepository(db bun.IDB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) Get(ctx context.Context, planetID int64, resource models.Resource) (*models.MarketPool, error) {
	pool := new(models.MarketPool)
	err := r.db.NewSelect().
		Model(pool).
		Where("planet_id = ? AND resource = ?", planetID, resource).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get market pool: %w", err)
	}
	return pool, nil
}

func (r *poolRepository) Update(ctx context.Context, pool *models.MarketPool) error {
	pool.UpdatedAt = time.Now()
	if _, err := r.db.NewUpdate().Model(pool).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update market pool: %w", err)
	}
	return nil
}

func (r *poolRepository) Seed(ctx context.Context, pools []*models.MarketPool) error {
	now := time.Now()
	for _, p := range pools {
		p.UpdatedAt = now
	}
	_, err := r.db.NewInsert().
		Model(&pools).
		On("CONFLICT (planet_id, resource) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed market pools: %w", err)
	}
	return nil
}
