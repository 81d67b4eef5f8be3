package enums

// FuelClass buckets a vehicle by drivetrain fuel.
type FuelClass string

const (
	FuelClassPetrol FuelClass = "PETROL"
	FuelClassDiesel FuelClass = "DIESEL"
	FuelClassEV     FuelClass = "EV"
)

// BodyClass buckets a vehicle by body style for pricing.
type BodyClass string

const (
	BodyClassCar         BodyClass = "CAR"
	BodyClassSUV         BodyClass = "SUV"
	BodyClassUte         BodyClass = "UTE"
	BodyClassVan         BodyClass = "VAN"
	BodyClassPerformance BodyClass = "PERFORMANCE"
	BodyClassCommercial  BodyClass = "COMMERCIAL"
)

// LoadClass splits light passenger work from heavy commercial work.
type LoadClass string

const (
	LoadClassLight LoadClass = "LIGHT"
	LoadClassHeavy LoadClass = "HEAVY"
)

// PowerBand buckets engine output in kW.
type PowerBand string

const (
	PowerBandLow  PowerBand = "LOW"
	PowerBandMid  PowerBand = "MID"
	PowerBandHigh PowerBand = "HIGH"
)

// VehicleBand is the pricing column a classified vehicle lands in.
type VehicleBand string

const (
	VehicleBandSmall       VehicleBand = "SMALL"
	VehicleBandMid         VehicleBand = "MID"
	VehicleBandLarge       VehicleBand = "LARGE"
	VehicleBandPerformance VehicleBand = "PERFORMANCE"
)
