package game

import (
	"math/big"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

// Constant-product swap math. Quote and execution share these functions so a
// quote evaluated against unchanged reserves always matches the executed
// amount; divergence under concurrent trades is what minAmountOut guards
// against.

// swapOutput computes the output amount for a constant-product pool after
// deducting the input-side fee. Floor division on both steps keeps the
// invariant from ever decreasing in the pool's favor.
func swapOutput(reserveIn, reserveOut, amountIn *big.Int, feeBps int64) *big.Int {
	feeFactor := big.NewInt(10_000 - feeBps)
	inWithFee := new(big.Int).Mul(amountIn, feeFactor)
	inWithFee.Div(inWithFee, big.NewInt(10_000))

	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Add(reserveIn, inWithFee)
	return numerator.Div(numerator, denominator)
}

// PoolQuote prices amountIn against the pool's current reserves without side
// effects. For resource→credits amountIn is resource units and the result is
// credit base units; the other direction is the reverse.
func PoolQuote(pool *models.MarketPool, resourceToCredits bool, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	resourceReserve := big.NewInt(pool.ResourceReserve)
	creditReserve := bigOf(pool.CreditReserve)

	if resourceToCredits {
		return swapOutput(resourceReserve, creditReserve, amountIn, pool.FeeBps), nil
	}
	return swapOutput(creditReserve, resourceReserve, amountIn, pool.FeeBps), nil
}

// applySwap moves amountIn into and amountOut out of the pool reserves.
// Callers have already derived amountOut from the same reserves via
// PoolQuote, so the resource side is known to stay positive.
func applySwap(pool *models.MarketPool, resourceToCredits bool, amountIn, amountOut *big.Int) {
	creditReserve := bigOf(pool.CreditReserve)
	if resourceToCredits {
		pool.ResourceReserve += amountIn.Int64()
		pool.CreditReserve = modelBig(new(big.Int).Sub(creditReserve, amountOut))
	} else {
		pool.CreditReserve = modelBig(new(big.Int).Add(creditReserve, amountIn))
		pool.ResourceReserve -= amountOut.Int64()
	}
}

// DefaultSlippageBps is the caller-side convention applied when no explicit
// minimum is supplied: minAmountOut = amountIn * 95 / 100.
const DefaultSlippageBps int64 = 500

// DefaultMinAmountOut derives the conventional minimum from the input amount.
func DefaultMinAmountOut(amountIn *big.Int) *big.Int {
	min := new(big.Int).Mul(amountIn, big.NewInt(10_000-DefaultSlippageBps))
	return min.Div(min, big.NewInt(10_000))
}
