package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ship is a player-owned vessel. Ships are minted on purchase or onboarding
// and never destroyed; ownership changes only through defined game paths.
type Ship struct {
	bun.BaseModel `bun:"table:ships,alias:sh"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	OwnerAddress string `bun:"owner_address,notnull" json:"owner_address"`
	Name         string `bun:"name,notnull" json:"name"`
	Class        int    `bun:"class,notnull" json:"class"`

	CargoCapacity int64 `bun:"cargo_capacity,notnull" json:"cargo_capacity"`
	SpiceCapacity int64 `bun:"spice_capacity,notnull" json:"spice_capacity"`
	CurrentSpice  int64 `bun:"current_spice,notnull,default:0" json:"current_spice"`
	Speed         int64 `bun:"speed,notnull" json:"speed"`

	Active bool `bun:"active,notnull,default:false" json:"active"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
