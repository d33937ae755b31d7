package costing

import "time"

// Breakdown exposes the component figures behind a line item total. The bulk
// propagator and the finance documents need the per-component numbers, not
// just the final price.
type Breakdown struct {
	Area         float64
	Months       float64
	PrintingCost float64
	MountingCost float64
	DisplayCost  float64
	Total        float64
}

// Compute aggregates one line item's commercial terms into money figures for
// the given campaign window.
//
// Printing and mounting are one-time per-sqft charges, each grossed up by its
// own GST percentage. Display cost is the monthly rental times the fractional
// month count; a displayCost-scoped discount is taken before GST, and a
// positive DiscountedDisplayCost overrides the whole display component as a
// pre-discounted monthly rate. A totalPrice-scoped discount comes off the
// fully aggregated figure last.
func Compute(item LineItem, unit int, start, end time.Time) Breakdown {
	area := TotalArea(item, unit)
	months := TotalMonths(start, end)

	printing := AmountWithPercentage(area*item.PrintingCostPerSqft, item.PrintingGSTPercent)
	mounting := AmountWithPercentage(area*item.MountingCostPerSqft, item.MountingGSTPercent)

	display := item.DisplayCostPerMonth * months
	if item.DiscountOn == DiscountOnDisplayCost && item.DiscountPercent > 0 {
		display -= display * item.DiscountPercent / 100
	}
	var displayTotal float64
	if area > 0 {
		displayTotal = AmountWithPercentage(display, item.DisplayGSTPercent)
	}
	if item.DiscountedDisplayCost > 0 {
		displayTotal = item.DiscountedDisplayCost * months
	}

	total := displayTotal + printing + mounting +
		item.OneTimeInstallationCost +
		item.MonthlyAdditionalCost*months -
		item.OtherCharges
	if item.DiscountOn == DiscountOnTotalPrice && item.DiscountPercent > 0 {
		total -= total * item.DiscountPercent / 100
	}

	return Breakdown{
		Area:         area,
		Months:       months,
		PrintingCost: printing,
		MountingCost: mounting,
		DisplayCost:  displayTotal,
		Total:        Round2(total),
	}
}

// TotalCost returns the aggregate price for a line item, or 0 when the item
// is absent.
func TotalCost(item *LineItem, unit int, start, end time.Time) float64 {
	if item == nil {
		return 0
	}
	return Compute(*item, unit, start, end).Total
}
