package game

import "math/big"

// ShipClass is one of the four fixed hull classes. The numeric values match
// the class indices of the original ship contract.
type ShipClass int

const (
	ClassScout ShipClass = iota
	ClassFrigate
	ClassHarvester
	ClassDreadnought

	classCount = 4
)

func (c ShipClass) Valid() bool {
	return c >= 0 && c < classCount
}

func (c ShipClass) String() string {
	if !c.Valid() {
		return "Unknown"
	}
	return classSpecs[c].Name
}

// ClassSpec holds the class-derived attributes a ship is minted with. Price
// is in credit base units and increases monotonically with the class index.
type ClassSpec struct {
	Name          string
	CargoCapacity int64
	SpiceCapacity int64
	Speed         int64
	MiningPower   int64
	PriceCredits  int64
}

var classSpecs = [classCount]ClassSpec{
	{Name: "Scout", CargoCapacity: 2500, SpiceCapacity: 2000, Speed: 100, MiningPower: 10, PriceCredits: 1000},
	{Name: "Frigate", CargoCapacity: 3000, SpiceCapacity: 5000, Speed: 80, MiningPower: 20, PriceCredits: 5000},
	{Name: "Harvester", CargoCapacity: 8000, SpiceCapacity: 7500, Speed: 60, MiningPower: 40, PriceCredits: 15000},
	{Name: "Dreadnought", CargoCapacity: 20000, SpiceCapacity: 10000, Speed: 40, MiningPower: 60, PriceCredits: 50000},
}

// AllClasses lists the purchasable classes in price order.
func AllClasses() []ShipClass {
	return []ShipClass{ClassScout, ClassFrigate, ClassHarvester, ClassDreadnought}
}

// SpecOf panics on an invalid class; callers validate first.
func SpecOf(c ShipClass) ClassSpec {
	return classSpecs[c]
}

// ShipPrice returns the purchase price in credit base units.
func ShipPrice(c ShipClass) *big.Int {
	return Credits(classSpecs[c].PriceCredits)
}
