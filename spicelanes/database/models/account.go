package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Account is one player ledger row. The address is the identity key; travel
// state and the mining cooldown live inline because they are exclusively
// owned by the account and always read together.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	Address    string `bun:"address,pk"`
	Registered bool   `bun:"registered,notnull,default:false"`

	Credits *BigInt `bun:"credits,notnull,type:numeric(78,0)"`

	Metal      int64 `bun:"metal,notnull,default:0"`
	SaphoJuice int64 `bun:"sapho_juice,notnull,default:0"`
	Water      int64 `bun:"water,notnull,default:0"`
	Spice      int64 `bun:"spice,notnull,default:0"`

	ActiveShipID int64 `bun:"active_ship_id,notnull,default:0"`

	// Travel state. DestinationPlanetID == 0 means docked.
	CurrentPlanetID     int64     `bun:"current_planet_id,notnull,default:0"`
	DestinationPlanetID int64     `bun:"destination_planet_id,notnull,default:0"`
	TripStart           time.Time `bun:"trip_start,nullzero"`
	TripEnd             time.Time `bun:"trip_end,nullzero"`

	LastMined time.Time `bun:"last_mined,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (a *Account) ResourceBalance(r Resource) int64 {
	switch r {
	case ResourceMetal:
		return a.Metal
	case ResourceSaphoJuice:
		return a.SaphoJuice
	case ResourceWater:
		return a.Water
	case ResourceSpice:
		return a.Spice
	}
	return 0
}

func (a *Account) SetResourceBalance(r Resource, v int64) {
	switch r {
	case ResourceMetal:
		a.Metal = v
	case ResourceSaphoJuice:
		a.SaphoJuice = v
	case ResourceWater:
		a.Water = v
	case ResourceSpice:
		a.Spice = v
	}
}

// CargoLoad is the total carried resource quantity, bounded by the active
// ship's cargo capacity.
func (a *Account) CargoLoad() int64 {
	return a.Metal + a.SaphoJuice + a.Water + a.Spice
}

// Traveling reports whether a trip is in progress or awaiting completion.
func (a *Account) Traveling() bool {
	return a.DestinationPlanetID != 0
}
