package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

const (
	maxShipNameLen = 32

	startingCreditsWhole int64 = 1_500
	startingSpiceUnits   int64 = 2_000
)

// Engine is the authoritative game-state machine. Every state-changing call
// is a single atomic transition: a per-account lock makes transitions for one
// account linearizable, and the store scope makes each all-or-nothing.
// Operations on different accounts only contend on shared market pools.
type Engine struct {
	store repositories.Store
	locks lockKeeper

	// now is swapped out by tests to drive travel and cooldown clocks.
	now func() time.Time
}

func New(store repositories.Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
	}
}

// SeedUniverse installs the genesis planets and market pools, skipping rows
// that already exist. Safe to call on every startup.
func (e *Engine) SeedUniverse(ctx context.Context) error {
	return e.store.Atomic(ctx, func(s repositories.Store) error {
		if err := s.Planets().Seed(ctx, GenesisPlanets()); err != nil {
			return err
		}
		return s.Pools().Seed(ctx, GenesisPools())
	})
}

// Onboard registers a new player: starting credit and spice grants, a
// Scout-class ship with a full tank, docked at the home planet.
func (e *Engine) Onboard(ctx context.Context, address, shipName string) (*PlayerState, error) {
	if err := validShipName(shipName); err != nil {
		return nil, err
	}
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		_, err := s.Accounts().Get(ctx, address)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		account := &models.Account{
			Address:         address,
			Registered:      true,
			Credits:         modelBig(Credits(startingCreditsWhole)),
			Spice:           startingSpiceUnits,
			CurrentPlanetID: HomePlanetID,
		}
		if err := s.Accounts().Create(ctx, account); err != nil {
			return err
		}

		spec := SpecOf(ClassScout)
		ship := &models.Ship{
			OwnerAddress:  address,
			Name:          shipName,
			Class:         int(ClassScout),
			CargoCapacity: spec.CargoCapacity,
			SpiceCapacity: spec.SpiceCapacity,
			CurrentSpice:  spec.SpiceCapacity,
			Speed:         spec.Speed,
			Active:        true,
		}
		if err := s.Ships().Create(ctx, ship); err != nil {
			return err
		}

		account.ActiveShipID = ship.ID
		return s.Accounts().Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Player onboarded",
		slog.String("type", "game"),
		slog.String("account", address),
		slog.String("ship_name", shipName))

	return e.GetState(ctx, address)
}

// IsRegistered is a pure lookup.
func (e *Engine) IsRegistered(ctx context.Context, address string) (bool, error) {
	account, err := e.store.Accounts().Get(ctx, address)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.Registered, nil
}

// GetState assembles the aggregate read model. Unregistered addresses get a
// zero state with Registered=false rather than an error.
func (e *Engine) GetState(ctx context.Context, address string) (*PlayerState, error) {
	account, err := e.store.Accounts().Get(ctx, address)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &PlayerState{Address: address}, nil
		}
		return nil, err
	}

	ships, err := e.store.Ships().GetByOwner(ctx, address)
	if err != nil {
		return nil, err
	}

	now := e.now()
	state := &PlayerState{
		Address:             address,
		Registered:          account.Registered,
		Credits:             account.Credits,
		Metal:               account.Metal,
		SaphoJuice:          account.SaphoJuice,
		Water:               account.Water,
		Spice:               account.Spice,
		CurrentPlanetID:     account.CurrentPlanetID,
		DestinationPlanetID: account.DestinationPlanetID,
		TripStart:           account.TripStart,
		TripEnd:             account.TripEnd,
		ActiveShipID:        account.ActiveShipID,
		Ships:               ships,
		LastMined:           account.LastMined,
	}

	if account.Traveling() {
		state.Traveling = true
		if remaining := account.TripEnd.Sub(now); remaining > 0 {
			state.TravelRemaining = remaining
		}
	}

	next := account.LastMined.Add(MiningCooldown)
	if account.LastMined.IsZero() || !now.Before(next) {
		state.MiningReady = true
	} else {
		state.MiningRemaining = next.Sub(now)
	}

	for _, sh := range ships {
		if sh.ID == account.ActiveShipID {
			state.ActiveShip = sh
			break
		}
	}
	return state, nil
}

// BuyShip mints a new ship of the given class, debiting its price. The new
// ship starts with an empty tank and does not become active.
func (e *Engine) BuyShip(ctx context.Context, address, name string, class ShipClass) (*models.Ship, error) {
	if !class.Valid() {
		return nil, ErrInvalidClass
	}
	if err := validShipName(name); err != nil {
		return nil, err
	}
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	var ship *models.Ship
	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		if err := debitCredits(account, ShipPrice(class)); err != nil {
			return err
		}

		spec := SpecOf(class)
		ship = &models.Ship{
			OwnerAddress:  address,
			Name:          name,
			Class:         int(class),
			CargoCapacity: spec.CargoCapacity,
			SpiceCapacity: spec.SpiceCapacity,
			Speed:         spec.Speed,
		}
		if err := s.Ships().Create(ctx, ship); err != nil {
			return err
		}
		return s.Accounts().Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Ship purchased",
		slog.String("type", "game"),
		slog.String("account", address),
		slog.Int64("ship_id", ship.ID),
		slog.String("class", class.String()))
	return ship, nil
}

// SetActiveShip repoints the account's active ship. Free of charge.
func (e *Engine) SetActiveShip(ctx context.Context, address string, shipID int64) error {
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	return e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		ship, err := e.ownedShip(ctx, s, account, shipID)
		if err != nil {
			return err
		}
		if account.ActiveShipID == shipID {
			return nil
		}

		if account.ActiveShipID != 0 {
			if prev, err := s.Ships().Get(ctx, account.ActiveShipID); err == nil {
				prev.Active = false
				if err := s.Ships().Update(ctx, prev); err != nil {
					return err
				}
			}
		}

		ship.Active = true
		if err := s.Ships().Update(ctx, ship); err != nil {
			return err
		}
		account.ActiveShipID = shipID
		return s.Accounts().Update(ctx, account)
	})
}

// RefuelShip burns ledger Spice 1:1 into the ship's tank.
func (e *Engine) RefuelShip(ctx context.Context, address string, shipID, amount int64) (*models.Ship, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	var ship *models.Ship
	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		ship, err = e.ownedShip(ctx, s, account, shipID)
		if err != nil {
			return err
		}
		if account.Spice < amount {
			return ErrInsufficientSpice
		}
		if ship.CurrentSpice+amount > ship.SpiceCapacity {
			return ErrOverCapacity
		}

		if err := debitResource(account, models.ResourceSpice, amount); err != nil {
			return err
		}
		ship.CurrentSpice += amount

		if err := s.Ships().Update(ctx, ship); err != nil {
			return err
		}
		return s.Accounts().Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return ship, nil
}

// StartTravel begins a trip. Fuel is spent up front; there is no
// cancellation, only completion once the end time passes.
func (e *Engine) StartTravel(ctx context.Context, address string, toPlanetID int64) (*PlayerState, error) {
	if !ValidPlanet(toPlanetID) {
		return nil, ErrUnknownPlanet
	}
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		if account.Traveling() {
			return ErrAlreadyTraveling
		}
		if toPlanetID == account.CurrentPlanetID {
			return ErrSamePlanet
		}
		if account.ActiveShipID == 0 {
			return ErrNoActiveShip
		}
		ship, err := s.Ships().Get(ctx, account.ActiveShipID)
		if err != nil {
			return err
		}

		cost, ok := TravelCostBetween(account.CurrentPlanetID, toPlanetID)
		if !ok {
			return ErrUnknownPlanet
		}
		if ship.CurrentSpice < cost.SpiceCost {
			return ErrInsufficientFuel
		}

		now := e.now()
		ship.CurrentSpice -= cost.SpiceCost
		account.DestinationPlanetID = toPlanetID
		account.TripStart = now
		account.TripEnd = now.Add(cost.TimeCost)

		if err := s.Ships().Update(ctx, ship); err != nil {
			return err
		}
		return s.Accounts().Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Travel started",
		slog.String("type", "game"),
		slog.String("account", address),
		slog.Int64("to_planet", toPlanetID))
	return e.GetState(ctx, address)
}

// CompleteTravel finalizes a trip whose end time has passed. The duration is
// enforced by wall-clock comparison, not by any suspended computation;
// calling again after success fails with NotTraveling.
func (e *Engine) CompleteTravel(ctx context.Context, address string) (*PlayerState, error) {
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		if !account.Traveling() {
			return ErrNotTraveling
		}
		if e.now().Before(account.TripEnd) {
			return ErrStillEnRoute
		}

		account.CurrentPlanetID = account.DestinationPlanetID
		account.DestinationPlanetID = 0
		account.TripStart = time.Time{}
		account.TripEnd = time.Time{}
		return s.Accounts().Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return e.GetState(ctx, address)
}

// Mine extracts resources at the current planet. The fee is a flat access
// cost checked up front; yield beyond remaining cargo space is dropped, not
// reverted, so a full hold never strands the fee.
func (e *Engine) Mine(ctx context.Context, address string, feePaid *big.Int) (*MiningResult, error) {
	unlock := e.locks.acquire("account:" + address)
	defer unlock()

	var result *MiningResult
	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, address)
		if err != nil {
			return err
		}
		now := e.now()
		if !account.LastMined.IsZero() && now.Before(account.LastMined.Add(MiningCooldown)) {
			return ErrCooldownActive
		}
		if feePaid == nil || feePaid.Cmp(miningFeeCredits) < 0 {
			return ErrInsufficientFee
		}
		if account.ActiveShipID == 0 {
			return ErrNoActiveShip
		}
		ship, err := s.Ships().Get(ctx, account.ActiveShipID)
		if err != nil {
			return err
		}
		planet, err := s.Planets().Get(ctx, account.CurrentPlanetID)
		if err != nil {
			return err
		}

		raw := MiningYield(planet, ship)
		remaining := ship.CargoCapacity - account.CargoLoad()
		if remaining < 0 {
			remaining = 0
		}
		capped := CapYield(raw, remaining)

		var dropped [models.ResourceCount]int64
		for _, r := range models.AllResources() {
			dropped[r] = raw[r] - capped[r]
			if capped[r] > 0 {
				creditResource(account, r, capped[r])
			}
		}
		account.LastMined = now

		if err := s.Accounts().Update(ctx, account); err != nil {
			return err
		}
		result = &MiningResult{
			PlanetID:   planet.ID,
			Yield:      capped,
			Dropped:    dropped,
			NextMineAt: now.Add(MiningCooldown),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Mining completed",
		slog.String("type", "game"),
		slog.String("account", address),
		slog.Int64("planet", result.PlanetID))
	return result, nil
}

// Quote prices a swap against the pair's current pool state. Pure view.
func (e *Engine) Quote(ctx context.Context, planetID int64, resource models.Resource, resourceToCredits bool, amountIn *big.Int) (*big.Int, error) {
	if !ValidPlanet(planetID) {
		return nil, ErrUnknownPlanet
	}
	if !resource.Valid() {
		return nil, ErrInvalidResource
	}
	pool, err := e.store.Pools().Get(ctx, planetID, resource)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return PoolQuote(pool, resourceToCredits, amountIn)
}

// ExecuteTrade swaps against the pool using the same curve as Quote,
// re-evaluated inside the transaction against then-current reserves.
// minAmountOut is the caller's protection against concurrent pool movement.
func (e *Engine) ExecuteTrade(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	if !ValidPlanet(req.PlanetID) {
		return nil, ErrUnknownPlanet
	}
	if !req.Resource.Valid() {
		return nil, ErrInvalidResource
	}
	amountIn := bigOf(req.AmountIn)
	if amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.ResourceToCredits && !amountIn.IsInt64() {
		return nil, ErrInvalidAmount
	}
	minOut := bigOf(req.MinAmountOut)
	if req.MinAmountOut == nil {
		minOut = DefaultMinAmountOut(amountIn)
	}

	// Account first, pool second; every trade takes them in this order so
	// two trades on the same pair cannot deadlock.
	unlockAccount := e.locks.acquire("account:" + req.Account)
	defer unlockAccount()
	unlockPool := e.locks.acquire(fmt.Sprintf("pool:%d:%d", req.PlanetID, req.Resource))
	defer unlockPool()

	var result *TradeResult
	err := e.store.Atomic(ctx, func(s repositories.Store) error {
		account, err := e.registered(ctx, s, req.Account)
		if err != nil {
			return err
		}
		pool, err := s.Pools().Get(ctx, req.PlanetID, req.Resource)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPoolNotFound
			}
			return err
		}

		amountOut, err := PoolQuote(pool, req.ResourceToCredits, amountIn)
		if err != nil {
			return err
		}
		if amountOut.Cmp(minOut) < 0 {
			return ErrSlippageExceeded
		}

		if req.ResourceToCredits {
			if err := debitResource(account, req.Resource, amountIn.Int64()); err != nil {
				return err
			}
			creditCredits(account, amountOut)
		} else {
			if bigOf(account.Credits).Cmp(amountIn) < 0 {
				return ErrInsufficientBalance
			}
			account.Credits = modelBig(new(big.Int).Sub(bigOf(account.Credits), amountIn))
			creditResource(account, req.Resource, amountOut.Int64())
		}
		applySwap(pool, req.ResourceToCredits, amountIn, amountOut)

		trade := &models.Trade{
			ID:                int64(snowflake.New(e.now())),
			AccountAddress:    req.Account,
			PlanetID:          req.PlanetID,
			Resource:          req.Resource,
			ResourceToCredits: req.ResourceToCredits,
			AmountIn:          modelBig(amountIn),
			AmountOut:         modelBig(amountOut),
		}
		if err := s.Trades().Create(ctx, trade); err != nil {
			return err
		}
		if err := s.Pools().Update(ctx, pool); err != nil {
			return err
		}
		if err := s.Accounts().Update(ctx, account); err != nil {
			return err
		}
		result = &TradeResult{TradeID: trade.ID, AmountOut: modelBig(amountOut)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Trade executed",
		slog.String("type", "game"),
		slog.String("account", req.Account),
		slog.Int64("planet", req.PlanetID),
		slog.String("resource", req.Resource.String()),
		slog.Bool("resource_to_credits", req.ResourceToCredits))
	return result, nil
}

// Planets returns the fixed registry.
func (e *Engine) Planets(ctx context.Context) ([]*models.Planet, error) {
	return e.store.Planets().GetAll(ctx)
}

func (e *Engine) Planet(ctx context.Context, id int64) (*models.Planet, error) {
	if !ValidPlanet(id) {
		return nil, ErrUnknownPlanet
	}
	return e.store.Planets().Get(ctx, id)
}

// ShipsOf is the batched attribute read for an owner's whole fleet.
func (e *Engine) ShipsOf(ctx context.Context, address string) ([]*models.Ship, error) {
	return e.store.Ships().GetByOwner(ctx, address)
}

func (e *Engine) Ship(ctx context.Context, id int64) (*models.Ship, error) {
	ship, err := e.store.Ships().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShipNotFound
		}
		return nil, err
	}
	return ship, nil
}

func (e *Engine) registered(ctx context.Context, s repositories.Store, address string) (*models.Account, error) {
	account, err := s.Accounts().Get(ctx, address)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	if !account.Registered {
		return nil, ErrNotRegistered
	}
	return account, nil
}

func (e *Engine) ownedShip(ctx context.Context, s repositories.Store, account *models.Account, shipID int64) (*models.Ship, error) {
	ship, err := s.Ships().Get(ctx, shipID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// A ship that does not exist is, from the caller's view, simply
			// not in their set.
			return nil, ErrNotOwner
		}
		return nil, err
	}
	if ship.OwnerAddress != account.Address {
		return nil, ErrNotOwner
	}
	return ship, nil
}

func validShipName(name string) error {
	if len(name) == 0 || len(name) > maxShipNameLen {
		return ErrInvalidShipName
	}
	return nil
}
