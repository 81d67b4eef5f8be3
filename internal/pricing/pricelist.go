package pricing

import (
	"fmt"

	"github.com/velocimech/velocimech-backend/pkg/enums"
)

// All amounts are integer cents, GST-inclusive.

var basePriceCents = map[enums.ServiceTier]map[enums.VehicleBand]int64{
	enums.ServiceTierOilFilter: {
		enums.VehicleBandSmall:       18900,
		enums.VehicleBandMid:         21900,
		enums.VehicleBandLarge:       26900,
		enums.VehicleBandPerformance: 28900,
	},
	enums.ServiceTierBasic: {
		enums.VehicleBandSmall:       27500,
		enums.VehicleBandMid:         31500,
		enums.VehicleBandLarge:       34500,
		enums.VehicleBandPerformance: 38500,
	},
	enums.ServiceTierComprehensive: {
		enums.VehicleBandSmall:       44900,
		enums.VehicleBandMid:         49900,
		enums.VehicleBandLarge:       54900,
		enums.VehicleBandPerformance: 59900,
	},
}

const (
	diagnosticsFeeCents int64 = 12900
	inspectionFeeCents  int64 = 18900

	extraOilPerLitreCents int64 = 1800
)

var includedOilLitres = map[enums.VehicleBand]int{
	enums.VehicleBandSmall:       4,
	enums.VehicleBandMid:         5,
	enums.VehicleBandLarge:       10,
	enums.VehicleBandPerformance: 6,
}

type addOnDef struct {
	Label      string
	PriceCents int64
	Disclaimer string
}

var addOnDefs = map[enums.AddOn]addOnDef{
	enums.AddOnPrioritySameDay: {
		Label:      "Priority same-day service",
		PriceCents: 3900,
		Disclaimer: "Same-day priority is subject to technician availability on the day.",
	},
	enums.AddOnOutsideCoreArea: {
		Label:      "Outside core service area",
		PriceCents: 2900,
		Disclaimer: "Covers additional travel outside the core Auckland service area.",
	},
	enums.AddOnAfterHours: {
		Label:      "After-hours appointment",
		PriceCents: 5900,
		Disclaimer: "After-hours appointments are confirmed by phone before dispatch.",
	},
	enums.AddOnEngineFlush: {
		Label:      "Engine flush",
		PriceCents: 4900,
		Disclaimer: "Engine flush is performed before the oil change using the new filter.",
	},
	enums.AddOnAirFragrance: {
		Label:      "Cabin air fragrance treatment",
		PriceCents: 2000,
		Disclaimer: "Fragrance treatment is applied after the cabin filter is inspected.",
	},
	enums.AddOnFuelAdditive: {
		Label:      "Fuel system additive",
		PriceCents: 2500,
		Disclaimer: "Additive selection depends on the fuel type confirmed on site.",
	},
}

var tierLabels = map[enums.ServiceTier]string{
	enums.ServiceTierOilFilter:     "Oil & filter service",
	enums.ServiceTierBasic:         "Basic service",
	enums.ServiceTierComprehensive: "Comprehensive service",
}

var serviceDurationMinutes = map[enums.ServiceTier]int{
	enums.ServiceTierOilFilter:     45,
	enums.ServiceTierBasic:         60,
	enums.ServiceTierComprehensive: 90,
}

const (
	diagnosticsDurationMinutes = 60
	inspectionDurationMinutes  = 90
)

// BasePrice returns the scheduled-service base price for a tier and band.
// EVs have no oil service, so oil-based tiers are rejected for them.
func BasePrice(tier enums.ServiceTier, fuel enums.FuelClass, band enums.VehicleBand) (int64, error) {
	if fuel == enums.FuelClassEV && tier != enums.ServiceTierComprehensive {
		return 0, fmt.Errorf("tier %s not available for electric vehicles", tier)
	}
	byBand, ok := basePriceCents[tier]
	if !ok {
		return 0, fmt.Errorf("unknown service tier %q", tier)
	}
	price, ok := byBand[band]
	if !ok {
		return 0, fmt.Errorf("unknown vehicle band %q", band)
	}
	return price, nil
}

// taxFromInclusive extracts the 15% GST portion of a GST-inclusive total,
// rounded half-up: round(total * 15 / 115) in integer arithmetic.
func taxFromInclusive(totalCents int64) int64 {
	return (totalCents*30 + 115) / 230
}
