package enums

import "fmt"

// AddOn is an optional extra a customer can attach to a quote.
type AddOn string

const (
	AddOnPrioritySameDay AddOn = "PRIORITY_SAME_DAY"
	AddOnOutsideCoreArea AddOn = "OUTSIDE_CORE_AREA"
	AddOnAfterHours      AddOn = "AFTER_HOURS"
	AddOnEngineFlush     AddOn = "ENGINE_FLUSH"
	AddOnAirFragrance    AddOn = "AIR_FRAGRANCE"
	AddOnFuelAdditive    AddOn = "FUEL_ADDITIVE"
)

var validAddOns = []AddOn{
	AddOnPrioritySameDay,
	AddOnOutsideCoreArea,
	AddOnAfterHours,
	AddOnEngineFlush,
	AddOnAirFragrance,
	AddOnFuelAdditive,
}

// String implements fmt.Stringer.
func (a AddOn) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AddOn.
func (a AddOn) IsValid() bool {
	for _, candidate := range validAddOns {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAddOn converts raw input into an AddOn.
func ParseAddOn(value string) (AddOn, error) {
	for _, candidate := range validAddOns {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid add-on %q", value)
}
