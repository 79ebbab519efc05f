package domain

// VehicleClass selects the service level for a ride.
type VehicleClass string

const (
	VehicleEconomy  VehicleClass = "economy"
	VehicleComfort  VehicleClass = "comfort"
	VehicleBusiness VehicleClass = "business"
)

// vehicleMultipliers is the static class catalog. It is not mutated at
// runtime.
var vehicleMultipliers = map[VehicleClass]float64{
	VehicleEconomy:  1.0,
	VehicleComfort:  1.5,
	VehicleBusiness: 2.0,
}

// vehicleClassOrder fixes the iteration order for quote listings.
var vehicleClassOrder = []VehicleClass{VehicleEconomy, VehicleComfort, VehicleBusiness}

// VehicleMultiplier returns the price multiplier for a class, and whether
// the class exists in the catalog.
func VehicleMultiplier(c VehicleClass) (float64, bool) {
	m, ok := vehicleMultipliers[c]
	return m, ok
}

// VehicleClasses returns the catalog classes in display order.
func VehicleClasses() []VehicleClass {
	classes := make([]VehicleClass, len(vehicleClassOrder))
	copy(classes, vehicleClassOrder)
	return classes
}
