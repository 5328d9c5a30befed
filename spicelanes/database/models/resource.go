package models

// Resource identifies one of the four fungible cargo commodities. The numeric
// values match the token IDs of the original resource contract.
type Resource int

const (
	ResourceMetal Resource = iota
	ResourceSaphoJuice
	ResourceWater
	ResourceSpice

	ResourceCount = 4
)

var resourceNames = [ResourceCount]string{"Metal", "Sapho Juice", "Water", "Spice"}

func (r Resource) Valid() bool {
	return r >= 0 && r < ResourceCount
}

func (r Resource) String() string {
	if !r.Valid() {
		return "Unknown"
	}
	return resourceNames[r]
}

// AllResources lists the resources in token-ID order.
func AllResources() [ResourceCount]Resource {
	return [ResourceCount]Resource{ResourceMetal, ResourceSaphoJuice, ResourceWater, ResourceSpice}
}
