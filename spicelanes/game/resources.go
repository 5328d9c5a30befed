package game

import (
	"math/big"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

// Credits are 18-decimal fixed point; cargo resources are plain integer
// units. creditUnit is the scaling factor between whole credits and base
// units.
var creditUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Credits converts a whole-credit amount to base units.
func Credits(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), creditUnit)
}

// WholeCredits truncates base units to whole credits, for display only.
func WholeCredits(base *big.Int) int64 {
	return new(big.Int).Div(base, creditUnit).Int64()
}

func bigOf(b *models.BigInt) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return &b.Int
}

func modelBig(v *big.Int) *models.BigInt {
	out := new(models.BigInt)
	out.Set(v)
	return out
}

// debitCredits subtracts amount from the account's credit balance, failing
// atomically when the balance is short.
func debitCredits(account *models.Account, amount *big.Int) error {
	balance := bigOf(account.Credits)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientCredits
	}
	account.Credits = modelBig(new(big.Int).Sub(balance, amount))
	return nil
}

func creditCredits(account *models.Account, amount *big.Int) {
	balance := bigOf(account.Credits)
	account.Credits = modelBig(new(big.Int).Add(balance, amount))
}

// debitResource subtracts integer resource units, failing atomically when the
// balance is short. Balances never go negative.
func debitResource(account *models.Account, r models.Resource, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	balance := account.ResourceBalance(r)
	if balance < amount {
		return ErrInsufficientBalance
	}
	account.SetResourceBalance(r, balance-amount)
	return nil
}

func creditResource(account *models.Account, r models.Resource, amount int64) {
	account.SetResourceBalance(r, account.ResourceBalance(r)+amount)
}
