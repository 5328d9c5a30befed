package game

import (
	"math/big"
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

// MiningCooldown is the minimum spacing between two mine operations per
// account.
const MiningCooldown = 60 * time.Second

// miningFeeCredits is the flat access fee, in credit base units of the fee
// token (0.01). It is a gas-like cost separate from game resources.
var miningFeeCredits = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)

// MiningFee returns the flat fee required to execute a mine operation.
func MiningFee() *big.Int {
	return new(big.Int).Set(miningFeeCredits)
}

// MiningYield computes the per-resource extraction for one mine operation:
// planet concentration scaled by the ship's mining power against the planet's
// base difficulty. The caller caps the total against remaining cargo space.
func MiningYield(planet *models.Planet, ship *models.Ship) [models.ResourceCount]int64 {
	var out [models.ResourceCount]int64
	power := SpecOf(ShipClass(ship.Class)).MiningPower
	for _, r := range models.AllResources() {
		out[r] = planet.ResourceConcentration[r] * power / planet.BaseMiningDifficulty
	}
	return out
}

// CapYield trims the raw yield to the remaining cargo space, dropping the
// excess rather than failing so a full hold never strands the fee. Resources
// are trimmed from the last token ID backwards.
func CapYield(yield [models.ResourceCount]int64, remaining int64) [models.ResourceCount]int64 {
	total := int64(0)
	for _, v := range yield {
		total += v
	}
	if total <= remaining {
		return yield
	}
	over := total - remaining
	for i := models.ResourceCount - 1; i >= 0 && over > 0; i-- {
		cut := yield[i]
		if cut > over {
			cut = over
		}
		yield[i] -= cut
		over -= cut
	}
	return yield
}
