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

type ShipRepository interface {
	Get(ctx context.Context, id int64) (*models.Ship, error)
	// GetByOwner returns the owner's ships in mint order. This is the batched
	// read the presentation layer uses instead of per-ship round trips.
	GetByOwner(ctx context.Context, address string) ([]*models.Ship, error)
	List(ctx context.Context) ([]*models.Ship, error)
	Create(ctx context.Context, ship *models.Ship) error
	Update(ctx context.Context, ship *models.Ship) error
}

type shipRepository struct {
	db bun.IDB
}

func NewShipRepository(db bun.IDB) ShipRepository {
	return &shipRepository{db: db}
}

func (r *shipRepository) Get(ctx context.Context, id int64) (*models.Ship, error) {
	ship := new(models.Ship)
	err := r.db.NewSelect().
		Model(ship).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ship: %w", err)
	}
	return ship, nil
}

func (r *shipRepository) GetByOwner(ctx context.Context, address string) ([]*models.Ship, error) {
	var ships []*models.Ship
	err := r.db.NewSelect().
		Model(&ships).
		Where("owner_address = ?", address).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ships by owner: %w", err)
	}
	return ships, nil
}

func (r *shipRepository) List(ctx context.Context) ([]*models.Ship, error) {
	var ships []*models.Ship
	err := r.db.NewSelect().
		Model(&ships).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}
	return ships, nil
}

func (r *shipRepository) Create(ctx context.Context, ship *models.Ship) error {
	ship.CreatedAt = time.Now()
	ship.UpdatedAt = ship.CreatedAt
	if _, err := r.db.NewInsert().Model(ship).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create ship: %w", err)
	}
	return nil
}

func (r *shipRepository) Update(ctx context.Context, ship *models.Ship) error {
	ship.UpdatedAt = time.Now()
	if _, err := r.db.NewUpdate().Model(ship).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to update ship: %w", err)
	}
	return nil
}
