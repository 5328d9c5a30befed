package game

import (
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

// PlayerState is the canonical aggregate read model the presentation layer
// polls. It is assembled in one store pass; nothing in it is authoritative
// beyond the moment it was read.
type PlayerState struct {
	Address    string `json:"address"`
	Registered bool   `json:"registered"`

	Credits    *models.BigInt `json:"credits"`
	Metal      int64          `json:"metal"`
	SaphoJuice int64          `json:"sapho_juice"`
	Water      int64          `json:"water"`
	Spice      int64          `json:"spice"`

	CurrentPlanetID     int64         `json:"current_planet_id"`
	DestinationPlanetID int64         `json:"destination_planet_id"`
	TripStart           time.Time     `json:"trip_start,omitempty"`
	TripEnd             time.Time     `json:"trip_end,omitempty"`
	Traveling           bool          `json:"traveling"`
	TravelRemaining     time.Duration `json:"travel_remaining_seconds"`

	ActiveShipID int64          `json:"active_ship_id"`
	ActiveShip   *models.Ship   `json:"active_ship,omitempty"`
	Ships        []*models.Ship `json:"ships"`

	LastMined       time.Time     `json:"last_mined,omitempty"`
	MiningReady     bool          `json:"mining_ready"`
	MiningRemaining time.Duration `json:"mining_remaining_seconds"`
}

// ResourceBalance mirrors the account accessor for the read model.
func (p *PlayerState) ResourceBalance(r models.Resource) int64 {
	switch r {
	case models.ResourceMetal:
		return p.Metal
	case models.ResourceSaphoJuice:
		return p.SaphoJuice
	case models.ResourceWater:
		return p.Water
	case models.ResourceSpice:
		return p.Spice
	}
	return 0
}

// CargoLoad is the total carried resource quantity.
func (p *PlayerState) CargoLoad() int64 {
	return p.Metal + p.SaphoJuice + p.Water + p.Spice
}

// MiningResult reports one successful mine operation.
type MiningResult struct {
	PlanetID   int64                             `json:"planet_id"`
	Yield      [models.ResourceCount]int64       `json:"yield"`
	Dropped    [models.ResourceCount]int64       `json:"dropped"`
	NextMineAt time.Time                         `json:"next_mine_at"`
}

// TradeRequest describes one market swap. AmountIn is resource units when
// ResourceToCredits is set, credit base units otherwise. A nil MinAmountOut
// applies the conventional 5% bound.
type TradeRequest struct {
	Account           string
	PlanetID          int64
	Resource          models.Resource
	ResourceToCredits bool
	AmountIn          *models.BigInt
	MinAmountOut      *models.BigInt
}

// TradeResult reports one executed swap.
type TradeResult struct {
	TradeID   int64          `json:"trade_id"`
	AmountOut *models.BigInt `json:"amount_out"`
}
