package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned by repository lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Store bundles the repositories behind a single transactional scope. Atomic
// runs fn against a store whose repositories share one serializable
// transaction; every engine state transition goes through it so transitions
// are all-or-nothing.
type Store interface {
	Accounts() AccountRepository
	Ships() ShipRepository
	Planets() PlanetRepository
	Pools() PoolRepository
	Trades() TradeRepository
	Nullifiers() NullifierRepository
	Payments() PaymentRepository

	Atomic(ctx context.Context, fn func(Store) error) error
}

type bunStore struct {
	db  *bun.DB
	idb bun.IDB
}

func NewStore(db *bun.DB) Store {
	return &bunStore{db: db, idb: db}
}

func (s *bunStore) Accounts() AccountRepository   { return &accountRepository{db: s.idb} }
func (s *bunStore) Ships() ShipRepository         { return &shipRepository{db: s.idb} }
func (s *bunStore) Planets() PlanetRepository     { return &planetRepository{db: s.idb} }
func (s *bunStore) Pools() PoolRepository         { return &poolRepository{db: s.idb} }
func (s *bunStore) Trades() TradeRepository       { return &tradeRepository{db: s.idb} }
func (s *bunStore) Nullifiers() NullifierRepository { return &nullifierRepository{db: s.idb} }
func (s *bunStore) Payments() PaymentRepository   { return &paymentRepository{db: s.idb} }

func (s *bunStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.idb.(bun.Tx); ok {
		// Already inside a transaction; nested scopes join it.
		return fn(s)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&bunStore{db: s.db, idb: tx})
	})
}
