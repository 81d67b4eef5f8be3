package pricing

import (
	"strings"

	"github.com/velocimech/velocimech-backend/pkg/enums"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// Classification thresholds. Power is kW, mass is kg.
const (
	powerMidThresholdKW  = 120
	powerHighThresholdKW = 200
	heavyGVMThresholdKG  = 3500
)

// Classify derives the pricing classification from identity fields. Rules are
// applied in order and later rules override earlier ones: a diesel ute ends up
// COMMERCIAL even though the body style alone would say UTE, and anything over
// 200kW is forced to PERFORMANCE regardless of body.
func Classify(identity types.VehicleIdentity) types.VehicleClass {
	class := types.VehicleClass{
		Fuel:  parseFuel(identity.FuelType),
		Body:  parseBody(identity.BodyStyle),
		Load:  enums.LoadClassLight,
		Power: enums.PowerBandLow,
	}

	if identity.PowerKW > powerMidThresholdKW {
		class.Power = enums.PowerBandMid
	}
	if identity.PowerKW > powerHighThresholdKW {
		class.Power = enums.PowerBandHigh
		class.Body = enums.BodyClassPerformance
	}

	dieselWorkhorse := class.Fuel == enums.FuelClassDiesel &&
		(class.Body == enums.BodyClassUte || class.Body == enums.BodyClassVan)
	if dieselWorkhorse {
		class.Load = enums.LoadClassHeavy
	}
	if identity.GrossVehicleMassKG > heavyGVMThresholdKG || dieselWorkhorse {
		class.Load = enums.LoadClassHeavy
		class.Body = enums.BodyClassCommercial
	}

	return class
}

// BandFor maps a classification onto the pricing column.
func BandFor(class types.VehicleClass) enums.VehicleBand {
	switch {
	case class.Body == enums.BodyClassPerformance:
		return enums.VehicleBandPerformance
	case class.Body == enums.BodyClassCommercial || class.Load == enums.LoadClassHeavy:
		return enums.VehicleBandLarge
	case class.Body == enums.BodyClassSUV || class.Power != enums.PowerBandLow:
		return enums.VehicleBandMid
	default:
		return enums.VehicleBandSmall
	}
}

func parseFuel(raw string) enums.FuelClass {
	switch normalized := strings.ToUpper(strings.TrimSpace(raw)); {
	case strings.Contains(normalized, "DIESEL"):
		return enums.FuelClassDiesel
	case strings.Contains(normalized, "ELECTRIC"), normalized == "EV", normalized == "BEV":
		return enums.FuelClassEV
	default:
		return enums.FuelClassPetrol
	}
}

func parseBody(raw string) enums.BodyClass {
	switch normalized := strings.ToUpper(strings.TrimSpace(raw)); {
	case strings.Contains(normalized, "UTE"), strings.Contains(normalized, "UTILITY"),
		strings.Contains(normalized, "PICKUP"), strings.Contains(normalized, "FLAT DECK"):
		return enums.BodyClassUte
	case strings.Contains(normalized, "VAN"), strings.Contains(normalized, "BUS"):
		return enums.BodyClassVan
	case strings.Contains(normalized, "SUV"), strings.Contains(normalized, "WAGON 4WD"),
		strings.Contains(normalized, "OFF-ROAD"):
		return enums.BodyClassSUV
	default:
		return enums.BodyClassCar
	}
}
