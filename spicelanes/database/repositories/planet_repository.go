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

type PlanetRepository interface {
	Get(ctx context.Context, id int64) (*models.Planet, error)
	GetAll(ctx context.Context) ([]*models.Planet, error)
	// Seed inserts the genesis planets, skipping rows that already exist.
	Seed(ctx context.Context, planets []*models.Planet) error
}

type planetRepository struct {
	db bun.IDB
}

func NewPlanetRepository(db bun.IDB) PlanetRepository {
	return &planetRepository{db: db}
}

func (r *planetRepository) Get(ctx context.Context, id int64) (*models.Planet, error) {
	planet := new(models.Planet)
	err := r.db.NewSelect().
		Model(planet).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get planet: %w", err)
	}
	return planet, nil
}

func (r *planetRepository) GetAll(ctx context.Context) ([]*models.Planet, error) {
	var planets []*models.Planet
	err := r.db.NewSelect().
		Model(&planets).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get planets: %w", err)
	}
	return planets, nil
}

func (r *planetRepository) Seed(ctx context.Context, planets []*models.Planet) error {
	now := time.Now()
	for _, p := range planets {
		p.CreatedAt = now
	}
	_, err := r.db.NewInsert().
		Model(&planets).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed planets: %w", err)
	}
	return nil
}
