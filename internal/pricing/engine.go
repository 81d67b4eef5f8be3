package pricing

import (
	"fmt"

	"github.com/velocimech/velocimech-backend/pkg/enums"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

const gstDisclaimer = "All prices are in NZD and include 15% GST."

// QuoteInput is everything BuildSnapshot needs. Tier and add-ons only apply
// to the SERVICE intent.
type QuoteInput struct {
	Identity types.VehicleIdentity
	Intent   enums.ServiceIntent
	Tier     *enums.ServiceTier
	AddOns   []enums.AddOn
}

// BuildSnapshot prices a quote. It is a pure function: same input, same
// snapshot. The returned snapshot is the immutable record later copied onto a
// booking; payment reconciliation never reprices.
func BuildSnapshot(input QuoteInput) (types.PricingSnapshot, error) {
	class := Classify(input.Identity)
	band := BandFor(class)

	snapshot := types.PricingSnapshot{
		Currency:     enums.CurrencyNZD,
		Intent:       input.Intent,
		VehicleClass: class,
		Band:         band,
	}

	switch input.Intent {
	case enums.ServiceIntentService:
		if input.Tier == nil {
			return types.PricingSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "service tier is required for a scheduled service")
		}
		if err := buildServiceLines(&snapshot, *input.Tier, input.AddOns); err != nil {
			return types.PricingSnapshot{}, err
		}

	case enums.ServiceIntentDiagnostics, enums.ServiceIntentPPI:
		if input.Tier != nil {
			return types.PricingSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "service tier does not apply to this booking type")
		}
		if len(input.AddOns) > 0 {
			return types.PricingSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "add-ons do not apply to this booking type")
		}
		buildFixedFeeLine(&snapshot, input.Intent)

	default:
		return types.PricingSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown service intent %q", input.Intent))
	}

	var total int64
	for _, line := range snapshot.LineItems {
		total += line.AmountCents
	}
	snapshot.TotalCents = total
	snapshot.TaxCents = taxFromInclusive(total)
	snapshot.SubtotalCents = total - snapshot.TaxCents
	snapshot.Disclaimers = append(snapshot.Disclaimers, gstDisclaimer)

	return snapshot, nil
}

func buildServiceLines(snapshot *types.PricingSnapshot, tier enums.ServiceTier, addOns []enums.AddOn) error {
	base, err := BasePrice(tier, snapshot.VehicleClass.Fuel, snapshot.Band)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "service tier unavailable for this vehicle")
	}

	snapshot.Tier = &tier
	snapshot.EstimateOnly = true
	snapshot.DurationMinutes = serviceDurationMinutes[tier]
	snapshot.LineItems = append(snapshot.LineItems, types.LineItem{
		Key:         string(tier),
		Label:       tierLabels[tier],
		AmountCents: base,
	})

	seen := map[enums.AddOn]bool{}
	for _, addOn := range addOns {
		def, ok := addOnDefs[addOn]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown add-on %q", addOn))
		}
		if seen[addOn] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate add-on %q", addOn))
		}
		seen[addOn] = true
		snapshot.AddOns = append(snapshot.AddOns, addOn)
		snapshot.LineItems = append(snapshot.LineItems, types.LineItem{
			Key:         string(addOn),
			Label:       def.Label,
			AmountCents: def.PriceCents,
		})
		snapshot.Disclaimers = append(snapshot.Disclaimers, def.Disclaimer)
	}

	litres := includedOilLitres[snapshot.Band]
	snapshot.Disclaimers = append(snapshot.Disclaimers, fmt.Sprintf(
		"Price includes up to %dL of oil. Additional oil is billed on site at $%d.%02d per litre once actual consumption is confirmed.",
		litres, extraOilPerLitreCents/100, extraOilPerLitreCents%100))
	snapshot.Disclaimers = append(snapshot.Disclaimers,
		"Final invoice is confirmed on site after inspection.")
	return nil
}

func buildFixedFeeLine(snapshot *types.PricingSnapshot, intent enums.ServiceIntent) {
	switch intent {
	case enums.ServiceIntentDiagnostics:
		snapshot.DurationMinutes = diagnosticsDurationMinutes
		snapshot.LineItems = append(snapshot.LineItems, types.LineItem{
			Key:         string(intent),
			Label:       "Diagnostic call-out",
			AmountCents: diagnosticsFeeCents,
		})
	case enums.ServiceIntentPPI:
		snapshot.DurationMinutes = inspectionDurationMinutes
		snapshot.LineItems = append(snapshot.LineItems, types.LineItem{
			Key:         string(intent),
			Label:       "Pre-purchase inspection",
			AmountCents: inspectionFeeCents,
		})
	}
}
