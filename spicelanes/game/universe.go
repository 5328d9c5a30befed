package game

import (
	"math"
	"time"

	"github.com/spicelanes/game-server/spicelanes/database/models"
)

// HomePlanetID is where onboarded players dock first.
const HomePlanetID int64 = 1

const (
	planetCount = 5

	// Genesis liquidity per pool, in resource units.
	genesisResourceReserve int64 = 50_000
	// Swap fee taken from the input side.
	genesisFeeBps int64 = 30
)

type planetDef struct {
	id            int64
	name          string
	x, y, z       int64
	concentration [models.ResourceCount]int64
	difficulty    int64
}

// The fixed universe. Concentrations are indexed by resource token ID
// (Metal, Sapho Juice, Water, Spice); difficulty divides mining yield.
var planetDefs = [planetCount]planetDef{
	{1, "Caladan", 0, 0, 0, [4]int64{30, 20, 80, 5}, 10},
	{2, "Arrakis", 140, 30, 10, [4]int64{10, 5, 2, 90}, 14},
	{3, "Giedi Prime", 60, 120, 40, [4]int64{85, 10, 15, 10}, 12},
	{4, "Ix", 200, 90, 160, [4]int64{70, 40, 20, 15}, 16},
	{5, "Kaitain", 90, 200, 220, [4]int64{20, 70, 30, 20}, 18},
}

// TravelCost is the fuel and duration price of one ordered planet pair.
type TravelCost struct {
	SpiceCost int64
	TimeCost  time.Duration
}

// travelTable is computed once from the genesis coordinates and frozen;
// lookups afterwards are pure. The table is keyed by ordered pair so costs
// could be made asymmetric without touching callers.
var travelTable map[[2]int64]TravelCost

func init() {
	travelTable = make(map[[2]int64]TravelCost, planetCount*planetCount)
	for _, from := range planetDefs {
		for _, to := range planetDefs {
			if from.id == to.id {
				continue
			}
			d := distance(from, to)
			spice := d * 4 / 5
			if spice < 10 {
				spice = 10
			}
			secs := d * 6
			if secs < 60 {
				secs = 60
			}
			travelTable[[2]int64{from.id, to.id}] = TravelCost{
				SpiceCost: spice,
				TimeCost:  time.Duration(secs) * time.Second,
			}
		}
	}
}

func distance(a, b planetDef) int64 {
	dx := float64(b.x - a.x)
	dy := float64(b.y - a.y)
	dz := float64(b.z - a.z)
	return int64(math.Round(math.Sqrt(dx*dx + dy*dy + dz*dz)))
}

// TravelCostBetween is a pure lookup on the frozen table. The second return
// is false for unknown planets or a from==to pair.
func TravelCostBetween(from, to int64) (TravelCost, bool) {
	tc, ok := travelTable[[2]int64{from, to}]
	return tc, ok
}

// ValidPlanet reports whether id names a real planet. 0 is the reserved
// "unknown" value.
func ValidPlanet(id int64) bool {
	return id >= 1 && id <= planetCount
}

// GenesisPlanets builds the fixed planet registry rows.
func GenesisPlanets() []*models.Planet {
	out := make([]*models.Planet, 0, planetCount)
	for _, def := range planetDefs {
		out = append(out, &models.Planet{
			ID:                    def.id,
			Name:                  def.name,
			X:                     def.x,
			Y:                     def.y,
			Z:                     def.z,
			Active:                true,
			ResourceConcentration: def.concentration,
			BaseMiningDifficulty:  def.difficulty,
		})
	}
	return out
}

// GenesisPools seeds one pool per (planet, resource) pair. The credit side is
// priced off concentration so a resource is cheap where it is abundant.
func GenesisPools() []*models.MarketPool {
	out := make([]*models.MarketPool, 0, planetCount*models.ResourceCount)
	for _, def := range planetDefs {
		for _, r := range models.AllResources() {
			conc := def.concentration[r]
			if conc < 1 {
				conc = 1
			}
			creditReserve := Credits(genesisResourceReserve * 100 / conc)
			out = append(out, &models.MarketPool{
				PlanetID:        def.id,
				Resource:        r,
				CreditReserve:   modelBig(creditReserve),
				ResourceReserve: genesisResourceReserve,
				FeeBps:          genesisFeeBps,
			})
		}
	}
	return out
}
