package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Planet is a fixed registry entry seeded at genesis. ID 0 is reserved as
// "unknown/unset"; real planets are 1..5. No mutation path exists after
// seeding.
type Planet struct {
	bun.BaseModel `bun:"table:planets,alias:p"`

	ID     int64  `bun:"id,pk" json:"id"`
	Name   string `bun:"name,notnull" json:"name"`
	X      int64  `bun:"x,notnull" json:"x"`
	Y      int64  `bun:"y,notnull" json:"y"`
	Z      int64  `bun:"z,notnull" json:"z"`
	Active bool   `bun:"active,notnull,default:true" json:"active"`

	// One concentration value per resource, indexed by Resource.
	ResourceConcentration [ResourceCount]int64 `bun:"resource_concentration,type:jsonb" json:"resource_concentration"`

	BaseMiningDifficulty int64 `bun:"base_mining_difficulty,notnull" json:"base_mining_difficulty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
