package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/uptrace/bun"
)

type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	GetRecent(ctx context.Context, limit int) ([]*models.Trade, error)
	GetSince(ctx context.Context, since time.Time) ([]*models.Trade, error)
}

type tradeRepository struct {
	db bun.IDB
}

func NewTradeRepository(db bun.IDB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, trade *models.Trade) error {
	trade.CreatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(trade).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

func (r *tradeRepository) GetRecent(ctx context.Context, limit int) ([]*models.Trade, error) {
	var trades []*models.Trade
	err := r.db.NewSelect().
		Model(&trades).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent trades: %w", err)
	}
	return trades, nil
}

func (r *tradeRepository) GetSince(ctx context.Context, since time.Time) ([]*models.Trade, error) {
	var trades []*models.Trade
	err := r.db.NewSelect().
		Model(&trades).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades since %s: %w", since, err)
	}
	return trades, nil
}
