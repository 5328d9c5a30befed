package game

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelanes/game-server/spicelanes/database/memstore"
	"github.com/spicelanes/game-server/spicelanes/database/models"
)

const testAddr = "0x1111111111111111111111111111111111111111"

// newTestEngine returns an engine over a seeded in-memory store with a
// controllable clock.
func newTestEngine(t *testing.T) (*Engine, *time.Time) {
	t.Helper()
	e := New(memstore.New())
	require.NoError(t, e.SeedUniverse(context.Background()))

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }
	return e, &clock
}

func onboarded(t *testing.T, e *Engine) *PlayerState {
	t.Helper()
	state, err := e.Onboard(context.Background(), testAddr, "Desert Wind")
	require.NoError(t, err)
	return state
}

func TestOnboard(t *testing.T) {
	ctx := context.Background()

	t.Run("GrantsStartingLedgerAndShip", func(t *testing.T) {
		e, _ := newTestEngine(t)
		state := onboarded(t, e)

		assert.True(t, state.Registered)
		assert.Equal(t, Credits(1_500), &state.Credits.Int)
		assert.Equal(t, int64(2_000), state.Spice)
		assert.Equal(t, int64(0), state.Metal)
		assert.Equal(t, HomePlanetID, state.CurrentPlanetID)
		assert.False(t, state.Traveling)

		require.NotNil(t, state.ActiveShip)
		assert.Equal(t, "Desert Wind", state.ActiveShip.Name)
		assert.Equal(t, int(ClassScout), state.ActiveShip.Class)
		assert.Equal(t, state.ActiveShip.SpiceCapacity, state.ActiveShip.CurrentSpice)
		assert.True(t, state.ActiveShip.Active)
	})

	t.Run("RejectsDoubleRegistration", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.Onboard(ctx, testAddr, "Second Wind")
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("RejectsBadName", func(t *testing.T) {
		e, _ := newTestEngine(t)
		_, err := e.Onboard(ctx, testAddr, "")
		assert.ErrorIs(t, err, ErrInvalidShipName)

		long := make([]byte, maxShipNameLen+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err = e.Onboard(ctx, testAddr, string(long))
		assert.ErrorIs(t, err, ErrInvalidShipName)
	})

	t.Run("UnregisteredStateIsZero", func(t *testing.T) {
		e, _ := newTestEngine(t)
		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.False(t, state.Registered)

		ok, err := e.IsRegistered(ctx, testAddr)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBuyShip(t *testing.T) {
	ctx := context.Background()

	t.Run("DebitsPriceAndStartsEmpty", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		ship, err := e.BuyShip(ctx, testAddr, "Hauler One", ClassScout)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ship.CurrentSpice)
		assert.False(t, ship.Active)

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, Credits(500), &state.Credits.Int)
		assert.NotEqual(t, ship.ID, state.ActiveShipID)
		assert.Len(t, state.Ships, 2)
	})

	t.Run("InsufficientCreditsLeavesStateUnchanged", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.BuyShip(ctx, testAddr, "Too Rich", ClassDreadnought)
		assert.ErrorIs(t, err, ErrInsufficientCredits)

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, Credits(1_500), &state.Credits.Int)
		assert.Len(t, state.Ships, 1)
	})

	t.Run("InvalidClass", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.BuyShip(ctx, testAddr, "Ghost", ShipClass(99))
		assert.ErrorIs(t, err, ErrInvalidClass)
	})
}

func TestSetActiveShip(t *testing.T) {
	ctx := context.Background()

	t.Run("SwapsActiveFlag", func(t *testing.T) {
		e, _ := newTestEngine(t)
		first := onboarded(t, e)

		bought, err := e.BuyShip(ctx, testAddr, "Backup", ClassScout)
		require.NoError(t, err)
		require.NoError(t, e.SetActiveShip(ctx, testAddr, bought.ID))

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, bought.ID, state.ActiveShipID)
		for _, sh := range state.Ships {
			if sh.ID == bought.ID {
				assert.True(t, sh.Active)
			}
			if sh.ID == first.ActiveShipID {
				assert.False(t, sh.Active)
			}
		}
	})

	t.Run("RejectsForeignOrMissingShip", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		other := "0x2222222222222222222222222222222222222222"
		_, err := e.Onboard(ctx, other, "Rival")
		require.NoError(t, err)
		otherState, err := e.GetState(ctx, other)
		require.NoError(t, err)

		assert.ErrorIs(t, e.SetActiveShip(ctx, testAddr, otherState.ActiveShipID), ErrNotOwner)
		assert.ErrorIs(t, e.SetActiveShip(ctx, testAddr, 9999), ErrNotOwner)
	})
}

func TestRefuelShip(t *testing.T) {
	ctx := context.Background()

	t.Run("BurnsLedgerSpiceOneToOne", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		bought, err := e.BuyShip(ctx, testAddr, "Tanker", ClassScout)
		require.NoError(t, err)

		ship, err := e.RefuelShip(ctx, testAddr, bought.ID, 700)
		require.NoError(t, err)
		assert.Equal(t, int64(700), ship.CurrentSpice)

		after, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, int64(1_300), after.Spice)
	})

	t.Run("RejectsOverCapacity", func(t *testing.T) {
		e, _ := newTestEngine(t)
		state := onboarded(t, e)

		// Onboarding ship is already full.
		_, err := e.RefuelShip(ctx, testAddr, state.ActiveShipID, 1)
		assert.ErrorIs(t, err, ErrOverCapacity)
	})

	t.Run("ExactFillSucceeds", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		bought, err := e.BuyShip(ctx, testAddr, "Brim", ClassScout)
		require.NoError(t, err)
		ship, err := e.RefuelShip(ctx, testAddr, bought.ID, SpecOf(ClassScout).SpiceCapacity)
		require.NoError(t, err)
		assert.Equal(t, ship.SpiceCapacity, ship.CurrentSpice)
	})

	t.Run("RejectsBadAmountAndShortLedger", func(t *testing.T) {
		e, _ := newTestEngine(t)
		state := onboarded(t, e)

		_, err := e.RefuelShip(ctx, testAddr, state.ActiveShipID, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = e.RefuelShip(ctx, testAddr, state.ActiveShipID, -5)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		bought, err := e.BuyShip(ctx, testAddr, "Thirsty", ClassScout)
		require.NoError(t, err)
		_, err = e.RefuelShip(ctx, testAddr, bought.ID, 2_001)
		assert.ErrorIs(t, err, ErrInsufficientSpice)
	})
}

func TestTravel(t *testing.T) {
	ctx := context.Background()

	t.Run("TwoPhaseTrip", func(t *testing.T) {
		e, clock := newTestEngine(t)
		onboarded(t, e)

		cost, ok := TravelCostBetween(HomePlanetID, 2)
		require.True(t, ok)

		state, err := e.StartTravel(ctx, testAddr, 2)
		require.NoError(t, err)
		assert.True(t, state.Traveling)
		assert.Equal(t, HomePlanetID, state.CurrentPlanetID)
		assert.Equal(t, int64(2), state.DestinationPlanetID)
		assert.Equal(t, cost.TimeCost, state.TravelRemaining)
		assert.Equal(t, SpecOf(ClassScout).SpiceCapacity-cost.SpiceCost, state.ActiveShip.CurrentSpice)

		// Too early.
		_, err = e.CompleteTravel(ctx, testAddr)
		assert.ErrorIs(t, err, ErrStillEnRoute)

		*clock = clock.Add(cost.TimeCost)
		state, err = e.CompleteTravel(ctx, testAddr)
		require.NoError(t, err)
		assert.False(t, state.Traveling)
		assert.Equal(t, int64(2), state.CurrentPlanetID)
		assert.Equal(t, int64(0), state.DestinationPlanetID)

		// Completion is not repeatable.
		_, err = e.CompleteTravel(ctx, testAddr)
		assert.ErrorIs(t, err, ErrNotTraveling)
	})

	t.Run("FailedStartLeavesStateUnchanged", func(t *testing.T) {
		e, _ := newTestEngine(t)
		state := onboarded(t, e)
		fuelBefore := state.ActiveShip.CurrentSpice

		_, err := e.StartTravel(ctx, testAddr, HomePlanetID)
		assert.ErrorIs(t, err, ErrSamePlanet)
		_, err = e.StartTravel(ctx, testAddr, 42)
		assert.ErrorIs(t, err, ErrUnknownPlanet)

		after, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.False(t, after.Traveling)
		assert.Equal(t, fuelBefore, after.ActiveShip.CurrentSpice)
	})

	t.Run("RejectsSecondTripWhileEnRoute", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.StartTravel(ctx, testAddr, 2)
		require.NoError(t, err)
		_, err = e.StartTravel(ctx, testAddr, 3)
		assert.ErrorIs(t, err, ErrAlreadyTraveling)
	})

	t.Run("InsufficientFuel", func(t *testing.T) {
		e, clock := newTestEngine(t)
		onboarded(t, e)

		// Drain the tank hopping back and forth until the long jump fails.
		for {
			_, err := e.StartTravel(ctx, testAddr, 5)
			if errors.Is(err, ErrInsufficientFuel) {
				return
			}
			require.NoError(t, err)
			*clock = clock.Add(24 * time.Hour)
			_, err = e.CompleteTravel(ctx, testAddr)
			require.NoError(t, err)
			_, err = e.StartTravel(ctx, testAddr, HomePlanetID)
			if errors.Is(err, ErrInsufficientFuel) {
				return
			}
			require.NoError(t, err)
			*clock = clock.Add(24 * time.Hour)
			_, err = e.CompleteTravel(ctx, testAddr)
			require.NoError(t, err)
		}
	})
}

func TestMine(t *testing.T) {
	ctx := context.Background()

	t.Run("YieldsPerConcentration", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		result, err := e.Mine(ctx, testAddr, MiningFee())
		require.NoError(t, err)
		assert.Equal(t, HomePlanetID, result.PlanetID)

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		for _, r := range models.AllResources() {
			if r == models.ResourceSpice {
				assert.Equal(t, startingSpiceUnits+result.Yield[r], state.Spice)
				continue
			}
			assert.Equal(t, result.Yield[r], state.ResourceBalance(r))
		}
		assert.False(t, state.MiningReady)
	})

	t.Run("CooldownEnforced", func(t *testing.T) {
		e, clock := newTestEngine(t)
		onboarded(t, e)

		_, err := e.Mine(ctx, testAddr, MiningFee())
		require.NoError(t, err)

		*clock = clock.Add(MiningCooldown - time.Second)
		_, err = e.Mine(ctx, testAddr, MiningFee())
		assert.ErrorIs(t, err, ErrCooldownActive)

		*clock = clock.Add(time.Second)
		_, err = e.Mine(ctx, testAddr, MiningFee())
		require.NoError(t, err)
	})

	t.Run("RejectsShortFee", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		low := new(big.Int).Sub(MiningFee(), big.NewInt(1))
		_, err := e.Mine(ctx, testAddr, low)
		assert.ErrorIs(t, err, ErrInsufficientFee)
		_, err = e.Mine(ctx, testAddr, nil)
		assert.ErrorIs(t, err, ErrInsufficientFee)
	})

	t.Run("CargoCapDropsExcess", func(t *testing.T) {
		e, clock := newTestEngine(t)
		onboarded(t, e)

		// Mine until the Scout's hold fills; total load never exceeds it.
		capacity := SpecOf(ClassScout).CargoCapacity
		for i := 0; i < 100; i++ {
			result, err := e.Mine(ctx, testAddr, MiningFee())
			require.NoError(t, err)
			state, err := e.GetState(ctx, testAddr)
			require.NoError(t, err)
			assert.LessOrEqual(t, state.CargoLoad(), capacity)
			*clock = clock.Add(MiningCooldown)

			var total int64
			for _, r := range models.AllResources() {
				total += result.Yield[r]
			}
			if total == 0 {
				var dropped int64
				for _, r := range models.AllResources() {
					dropped += result.Dropped[r]
				}
				assert.Positive(t, dropped)
				return
			}
		}
		t.Fatal("hold never filled")
	})
}

func TestTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("QuoteMatchesExecution", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		amountIn := big.NewInt(500)
		quoted, err := e.Quote(ctx, HomePlanetID, models.ResourceSpice, true, amountIn)
		require.NoError(t, err)
		assert.Positive(t, quoted.Sign())

		result, err := e.ExecuteTrade(ctx, TradeRequest{
			Account:           testAddr,
			PlanetID:          HomePlanetID,
			Resource:          models.ResourceSpice,
			ResourceToCredits: true,
			AmountIn:          modelBig(amountIn),
			MinAmountOut:      modelBig(quoted),
		})
		require.NoError(t, err)
		assert.Equal(t, quoted, &result.AmountOut.Int)
		assert.NotZero(t, result.TradeID)

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, startingSpiceUnits-500, state.Spice)
		want := new(big.Int).Add(Credits(1_500), quoted)
		assert.Equal(t, want, &state.Credits.Int)
	})

	t.Run("SlippageGuard", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		amountIn := big.NewInt(500)
		quoted, err := e.Quote(ctx, HomePlanetID, models.ResourceSpice, true, amountIn)
		require.NoError(t, err)

		tooHigh := new(big.Int).Add(quoted, big.NewInt(1))
		_, err = e.ExecuteTrade(ctx, TradeRequest{
			Account:           testAddr,
			PlanetID:          HomePlanetID,
			Resource:          models.ResourceSpice,
			ResourceToCredits: true,
			AmountIn:          modelBig(amountIn),
			MinAmountOut:      modelBig(tooHigh),
		})
		assert.ErrorIs(t, err, ErrSlippageExceeded)

		// Nothing moved.
		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, startingSpiceUnits, state.Spice)
	})

	t.Run("DefaultSlippageApplied", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		// Nil min: default tolerance (5% under input) applies, and a
		// healthy pool fills it.
		_, err := e.ExecuteTrade(ctx, TradeRequest{
			Account:           testAddr,
			PlanetID:          HomePlanetID,
			Resource:          models.ResourceSpice,
			ResourceToCredits: true,
			AmountIn:          models.NewBigInt(100),
		})
		// Spice at Caladan is scarce (concentration 5), so one unit of
		// spice is worth far more than one base credit unit.
		require.NoError(t, err)
	})

	t.Run("CreditsToResource", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		amountIn := Credits(100)
		quoted, err := e.Quote(ctx, HomePlanetID, models.ResourceWater, false, amountIn)
		require.NoError(t, err)
		require.Positive(t, quoted.Sign())

		result, err := e.ExecuteTrade(ctx, TradeRequest{
			Account:      testAddr,
			PlanetID:     HomePlanetID,
			Resource:     models.ResourceWater,
			AmountIn:     modelBig(amountIn),
			MinAmountOut: modelBig(quoted),
		})
		require.NoError(t, err)

		state, err := e.GetState(ctx, testAddr)
		require.NoError(t, err)
		assert.Equal(t, Credits(1_400), &state.Credits.Int)
		assert.Equal(t, result.AmountOut.Int64(), state.Water)
	})

	t.Run("InsufficientBalances", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.ExecuteTrade(ctx, TradeRequest{
			Account:           testAddr,
			PlanetID:          HomePlanetID,
			Resource:          models.ResourceMetal,
			ResourceToCredits: true,
			AmountIn:          models.NewBigInt(1),
			MinAmountOut:      models.NewBigInt(0),
		})
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		_, err = e.ExecuteTrade(ctx, TradeRequest{
			Account:      testAddr,
			PlanetID:     HomePlanetID,
			Resource:     models.ResourceWater,
			AmountIn:     modelBig(Credits(1_000_000)),
			MinAmountOut: models.NewBigInt(0),
		})
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("RejectsBadInputs", func(t *testing.T) {
		e, _ := newTestEngine(t)
		onboarded(t, e)

		_, err := e.ExecuteTrade(ctx, TradeRequest{
			Account:  testAddr,
			PlanetID: 42,
			Resource: models.ResourceWater,
			AmountIn: models.NewBigInt(1),
		})
		assert.ErrorIs(t, err, ErrUnknownPlanet)

		_, err = e.ExecuteTrade(ctx, TradeRequest{
			Account:  testAddr,
			PlanetID: HomePlanetID,
			Resource: models.Resource(9),
			AmountIn: models.NewBigInt(1),
		})
		assert.ErrorIs(t, err, ErrInvalidResource)

		_, err = e.ExecuteTrade(ctx, TradeRequest{
			Account:  testAddr,
			PlanetID: HomePlanetID,
			Resource: models.ResourceWater,
			AmountIn: models.NewBigInt(0),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

// Full first-session flow: register, fly to Arrakis, mine spice, sell it.
func TestFirstSessionScenario(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t)

	state, err := e.Onboard(ctx, testAddr, "Desert Wind")
	require.NoError(t, err)
	require.Equal(t, HomePlanetID, state.CurrentPlanetID)

	cost, ok := TravelCostBetween(HomePlanetID, 2)
	require.True(t, ok)
	state, err = e.StartTravel(ctx, testAddr, 2)
	require.NoError(t, err)
	require.True(t, state.Traveling)

	*clock = clock.Add(cost.TimeCost)
	state, err = e.CompleteTravel(ctx, testAddr)
	require.NoError(t, err)
	require.Equal(t, int64(2), state.CurrentPlanetID)

	result, err := e.Mine(ctx, testAddr, MiningFee())
	require.NoError(t, err)
	require.Positive(t, result.Yield[models.ResourceSpice])

	mined := result.Yield[models.ResourceSpice]
	quoted, err := e.Quote(ctx, 2, models.ResourceSpice, true, big.NewInt(mined))
	require.NoError(t, err)

	trade, err := e.ExecuteTrade(ctx, TradeRequest{
		Account:           testAddr,
		PlanetID:          2,
		Resource:          models.ResourceSpice,
		ResourceToCredits: true,
		AmountIn:          models.NewBigInt(mined),
		MinAmountOut:      modelBig(quoted),
	})
	require.NoError(t, err)

	final, err := e.GetState(ctx, testAddr)
	require.NoError(t, err)
	want := new(big.Int).Add(Credits(1_500), &trade.AmountOut.Int)
	assert.Equal(t, want, &final.Credits.Int)
	assert.Equal(t, startingSpiceUnits, final.Spice)
}
