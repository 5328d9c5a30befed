package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Nullifier tracks used World ID nullifier hashes so a proof cannot be
// replayed for the same action.
type Nullifier struct {
	bun.BaseModel `bun:"table:nullifiers,alias:n"`

	Hash      string    `bun:"hash,pk"`
	Action    string    `bun:"action,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Payment records one super-app payment reference from issuance through
// verification.
type Payment struct {
	bun.BaseModel `bun:"table:payments,alias:pay"`

	Reference      string `bun:"reference,pk"`
	AccountAddress string `bun:"account_address,notnull"`
	TransactionID  string `bun:"transaction_id"`
	Amount         string `bun:"amount"`
	Token          string `bun:"token"`
	Status         string `bun:"status,notnull"`
	Verified       bool   `bun:"verified,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
