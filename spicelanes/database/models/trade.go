package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trade records one executed market swap. AmountIn is resource units when
// ResourceToCredits is set, credit base units otherwise; AmountOut is the
// opposite side.
type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID                int64    `bun:"id,pk" json:"id"`
	AccountAddress    string   `bun:"account_address,notnull" json:"account_address"`
	PlanetID          int64    `bun:"planet_id,notnull" json:"planet_id"`
	Resource          Resource `bun:"resource,notnull" json:"resource"`
	ResourceToCredits bool     `bun:"resource_to_credits,notnull" json:"resource_to_credits"`

	AmountIn  *BigInt `bun:"amount_in,notnull,type:numeric(78,0)" json:"amount_in"`
	AmountOut *BigInt `bun:"amount_out,notnull,type:numeric(78,0)" json:"amount_out"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
