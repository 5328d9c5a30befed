package game

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

func testPool() *models.MarketPool {
	return &models.MarketPool{
		PlanetID:        1,
		Resource:        models.ResourceWater,
		CreditReserve:   modelBig(Credits(62_500)),
		ResourceReserve: 50_000,
		FeeBps:          30,
	}
}

func TestSwapOutput(t *testing.T) {
	t.Run("ProductNeverDecreases", func(t *testing.T) {
		reserveIn := big.NewInt(50_000)
		reserveOut := Credits(62_500)
		before := new(big.Int).Mul(reserveIn, reserveOut)

		for _, in := range []int64{1, 7, 100, 4_999, 49_999} {
			out := swapOutput(reserveIn, reserveOut, big.NewInt(in), 30)
			newIn := new(big.Int).Add(reserveIn, big.NewInt(in))
			newOut := new(big.Int).Sub(reserveOut, out)
			after := new(big.Int).Mul(newIn, newOut)
			assert.GreaterOrEqual(t, after.Cmp(before), 0, "amountIn=%d", in)
		}
	})

	t.Run("MonotoneInInput", func(t *testing.T) {
		reserveIn := big.NewInt(50_000)
		reserveOut := Credits(62_500)

		prev := big.NewInt(-1)
		for in := int64(1); in <= 10_000; in *= 10 {
			out := swapOutput(reserveIn, reserveOut, big.NewInt(in), 30)
			assert.Equal(t, 1, out.Cmp(prev), "amountIn=%d", in)
			prev = out
		}
	})

	t.Run("OutputBelowReserve", func(t *testing.T) {
		reserveIn := big.NewInt(10)
		reserveOut := big.NewInt(1_000)

		out := swapOutput(reserveIn, reserveOut, big.NewInt(1_000_000), 30)
		assert.Equal(t, -1, out.Cmp(reserveOut))
	})

	t.Run("FeeReducesOutput", func(t *testing.T) {
		reserveIn := big.NewInt(50_000)
		reserveOut := Credits(62_500)
		in := big.NewInt(1_000)

		withFee := swapOutput(reserveIn, reserveOut, in, 30)
		noFee := swapOutput(reserveIn, reserveOut, in, 0)
		assert.Equal(t, -1, withFee.Cmp(noFee))
	})
}

func TestPoolQuote(t *testing.T) {
	t.Run("RoundTripLosesValue", func(t *testing.T) {
		pool := testPool()

		credits, err := PoolQuote(pool, true, big.NewInt(1_000))
		require.NoError(t, err)
		back, err := PoolQuote(pool, false, credits)
		require.NoError(t, err)

		// Fee plus curve impact: you never get your input back.
		assert.Equal(t, -1, back.Cmp(big.NewInt(1_000)))
	})

	t.Run("RejectsNonPositive", func(t *testing.T) {
		pool := testPool()

		_, err := PoolQuote(pool, true, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = PoolQuote(pool, true, big.NewInt(0))
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = PoolQuote(pool, false, big.NewInt(-5))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestApplySwap(t *testing.T) {
	pool := testPool()
	out, err := PoolQuote(pool, true, big.NewInt(2_000))
	require.NoError(t, err)

	creditsBefore := bigOf(pool.CreditReserve)
	applySwap(pool, true, big.NewInt(2_000), out)

	assert.Equal(t, int64(52_000), pool.ResourceReserve)
	want := new(big.Int).Sub(creditsBefore, out)
	assert.Equal(t, want, bigOf(pool.CreditReserve))
}

func TestDefaultMinAmountOut(t *testing.T) {
	assert.Equal(t, big.NewInt(95), DefaultMinAmountOut(big.NewInt(100)))
	assert.Equal(t, 0, big.NewInt(0).Cmp(DefaultMinAmountOut(big.NewInt(1))))

	big18 := Credits(1)
	want := new(big.Int).Mul(big.NewInt(95), new(big.Int).Div(big18, big.NewInt(100)))
	assert.Equal(t, want, DefaultMinAmountOut(big18))
}
