// Package memstore is an in-process implementation of the repositories.Store
// contract, used by the "memory" DB driver and by the engine tests. All reads
// and writes copy the stored models so callers never alias internal state.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

type Store struct {
	mu sync.RWMutex
	// txMu serializes Atomic scopes; fine-grained mu protects the maps.
	txMu sync.Mutex

	accounts   map[string]*models.Account
	ships      map[int64]*models.Ship
	planets    map[int64]*models.Planet
	pools      map[poolKey]*models.MarketPool
	trades     []*models.Trade
	nullifiers map[string]*models.Nullifier
	payments   map[string]*models.Payment

	nextShipID int64
}

type poolKey struct {
	planetID int64
	resource models.Resource
}

func New() *Store {
	return &Store{
		accounts:   make(map[string]*models.Account),
		ships:      make(map[int64]*models.Ship),
		planets:    make(map[int64]*models.Planet),
		pools:      make(map[poolKey]*models.MarketPool),
		nullifiers: make(map[string]*models.Nullifier),
		payments:   make(map[string]*models.Payment),
		nextShipID: 1,
	}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) Accounts() repositories.AccountRepository     { return (*accountRepo)(s) }
func (s *Store) Ships() repositories.ShipRepository           { return (*shipRepo)(s) }
func (s *Store) Planets() repositories.PlanetRepository       { return (*planetRepo)(s) }
func (s *Store) Pools() repositories.PoolRepository           { return (*poolRepo)(s) }
func (s *Store) Trades() repositories.TradeRepository         { return (*tradeRepo)(s) }
func (s *Store) Nullifiers() repositories.NullifierRepository { return (*nullifierRepo)(s) }
func (s *Store) Payments() repositories.PaymentRepository     { return (*paymentRepo)(s) }

// Atomic serializes scopes with a store-wide lock. Map writes cannot fail, so
// a scope that validates before writing observes the same all-or-nothing
// behavior as a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(repositories.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	if a.Credits != nil {
		c.Credits = a.Credits.Clone()
	}
	return &c
}

func copyShip(sh *models.Ship) *models.Ship {
	c := *sh
	return &c
}

func copyPlanet(p *models.Planet) *models.Planet {
	c := *p
	return &c
}

func copyPool(p *models.MarketPool) *models.MarketPool {
	c := *p
	if p.CreditReserve != nil {
		c.CreditReserve = p.CreditReserve.Clone()
	}
	return &c
}

func copyTrade(t *models.Trade) *models.Trade {
	c := *t
	if t.AmountIn != nil {
		c.AmountIn = t.AmountIn.Clone()
	}
	if t.AmountOut != nil {
		c.AmountOut = t.AmountOut.Clone()
	}
	return &c
}

type accountRepo Store

func (r *accountRepo) Get(_ context.Context, address string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[address]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyAccount(a), nil
}

func (r *accountRepo) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.Address] = copyAccount(account)
	return nil
}

func (r *accountRepo) Update(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account.UpdatedAt = time.Now()
	r.accounts[account.Address] = copyAccount(account)
	return nil
}

type shipRepo Store

func (r *shipRepo) Get(_ context.Context, id int64) (*models.Ship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sh, ok := r.ships[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyShip(sh), nil
}

func (r *shipRepo) GetByOwner(_ context.Context, address string) ([]*models.Ship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Ship
	for id := int64(1); id < r.nextShipID; id++ {
		if sh, ok := r.ships[id]; ok && sh.OwnerAddress == address {
			out = append(out, copyShip(sh))
		}
	}
	return out, nil
}

func (r *shipRepo) List(_ context.Context) ([]*models.Ship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Ship
	for id := int64(1); id < r.nextShipID; id++ {
		if sh, ok := r.ships[id]; ok {
			out = append(out, copyShip(sh))
		}
	}
	return out, nil
}

func (r *shipRepo) Create(_ context.Context, ship *models.Ship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ship.ID = r.nextShipID
	r.nextShipID++
	ship.CreatedAt = time.Now()
	ship.UpdatedAt = ship.CreatedAt
	r.ships[ship.ID] = copyShip(ship)
	return nil
}

func (r *shipRepo) Update(_ context.Context, ship *models.Ship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ship.UpdatedAt = time.Now()
	r.ships[ship.ID] = copyShip(ship)
	return nil
}

type planetRepo Store

func (r *planetRepo) Get(_ context.Context, id int64) (*models.Planet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.planets[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPlanet(p), nil
}

func (r *planetRepo) GetAll(_ context.Context) ([]*models.Planet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Planet
	for id := int64(1); id <= int64(len(r.planets)); id++ {
		if p, ok := r.planets[id]; ok {
			out = append(out, copyPlanet(p))
		}
	}
	return out, nil
}

func (r *planetRepo) Seed(_ context.Context, planets []*models.Planet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, p := range planets {
		if _, exists := r.planets[p.ID]; exists {
			continue
		}
		p.CreatedAt = now
		r.planets[p.ID] = copyPlanet(p)
	}
	return nil
}

type poolRepo Store

func (r *poolRepo) Get(_ context.Context, planetID int64, resource models.Resource) (*models.MarketPool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[poolKey{planetID, resource}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPool(p), nil
}

func (r *poolRepo) Update(_ context.Context, pool *models.MarketPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pool.UpdatedAt = time.Now()
	r.pools[poolKey{pool.PlanetID, pool.Resource}] = copyPool(pool)
	return nil
}

func (r *poolRepo) Seed(_ context.Context, pools []*models.MarketPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, p := range pools {
		key := poolKey{p.PlanetID, p.Resource}
		if _, exists := r.pools[key]; exists {
			continue
		}
		p.UpdatedAt = now
		r.pools[key] = copyPool(p)
	}
	return nil
}

type tradeRepo Store

func (r *tradeRepo) Create(_ context.Context, trade *models.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trade.CreatedAt = time.Now()
	r.trades = append(r.trades, copyTrade(trade))
	return nil
}

func (r *tradeRepo) GetRecent(_ context.Context, limit int) ([]*models.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Trade
	for i := len(r.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyTrade(r.trades[i]))
	}
	return out, nil
}

func (r *tradeRepo) GetSince(_ context.Context, since time.Time) ([]*models.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.Trade
	for _, t := range r.trades {
		if !t.CreatedAt.Before(since) {
			out = append(out, copyTrade(t))
		}
	}
	return out, nil
}

type nullifierRepo Store

func (r *nullifierRepo) Seen(_ context.Context, hash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nullifiers[hash]
	return ok, nil
}

func (r *nullifierRepo) Record(_ context.Context, hash, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nullifiers[hash] = &models.Nullifier{Hash: hash, Action: action, CreatedAt: time.Now()}
	return nil
}

type paymentRepo Store

func (r *paymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	cp := *payment
	r.payments[payment.Reference] = &cp
	return nil
}

func (r *paymentRepo) Get(_ context.Context, reference string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[reference]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *paymentRepo) Update(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.UpdatedAt = time.Now()
	cp := *payment
	r.payments[payment.Reference] = &cp
	return nil
}
