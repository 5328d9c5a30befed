package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MarketPool holds the reserves of one per-planet, per-resource liquidity
// pool. The credit reserve is 18-decimal fixed point, the resource reserve is
// plain integer units. Reserves are pool-internal state; callers only see
// derived quotes.
type MarketPool struct {
	bun.BaseModel `bun:"table:market_pools,alias:mp"`

	PlanetID int64    `bun:"planet_id,pk"`
	Resource Resource `bun:"resource,pk"`

	CreditReserve   *BigInt `bun:"credit_reserve,notnull,type:numeric(78,0)"`
	ResourceReserve int64   `bun:"resource_reserve,notnull"`

	// Swap fee in basis points, taken from the input side.
	FeeBps int64 `bun:"fee_bps,notnull"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
