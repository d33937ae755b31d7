package costing

import "github.com/google/uuid"

// Update carries the fields submitted from the cost editing form. Pointer
// fields merge onto the edited item only when present; the printing, mounting
// and discount fields are always part of the form and always merge.
type Update struct {
	DisplayCostPerMonth     *float64
	DisplayGSTPercent       *float64
	PrintingCostPerSqft     float64
	PrintingGSTPercent      float64
	MountingCostPerSqft     float64
	MountingGSTPercent      float64
	DiscountOn              DiscountOn
	DiscountPercent         float64
	DiscountedDisplayCost   *float64
	OneTimeInstallationCost *float64
	MonthlyAdditionalCost   *float64
	OtherCharges            *float64

	ApplyPrintingMountingToAll bool
	ApplyDiscountToAll         bool
}

// Propagate applies a cost-form submission to a draft's line item collection
// and returns a new collection; the input is never mutated.
//
// The item matching selectedID takes the form values wholesale together with
// the caller's precomputed totalPrice and totalArea — it is the one item the
// user edited directly, so its price is trusted as-is and marked
// PriceChanged. Every other item is touched only as far as the apply-to-all
// flags demand: printing/mounting rates, discount terms, both, or neither.
// Recomputed items get a fresh price from Compute over their own window and
// area. Items left alone still get both flags cleared so stale markers from
// a previous edit do not survive.
func Propagate(u Update, selectedID uuid.UUID, items []LineItem, totalPrice, totalArea float64) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ID == selectedID {
			out = append(out, applyEdited(it, u, totalPrice, totalArea))
			continue
		}
		switch {
		case u.ApplyPrintingMountingToAll && u.ApplyDiscountToAll:
			next := withDiscount(withRates(it, u), u)
			out = append(out, recompute(next, true, true))
		case u.ApplyPrintingMountingToAll:
			out = append(out, recompute(withRates(it, u), true, false))
		case u.ApplyDiscountToAll:
			out = append(out, recompute(withDiscount(it, u), false, true))
		default:
			it.ApplyPrintingMountingToAll = false
			it.ApplyDiscountToAll = false
			out = append(out, it)
		}
	}
	return out
}

// Apply merges a cost-form submission onto a single item without touching its
// derived fields. Services use it to recompute the edited item's breakdown
// before propagating.
func Apply(it LineItem, u Update) LineItem {
	it = withRates(it, u)
	it = withDiscount(it, u)
	if u.DisplayCostPerMonth != nil {
		it.DisplayCostPerMonth = *u.DisplayCostPerMonth
	}
	if u.DisplayGSTPercent != nil {
		it.DisplayGSTPercent = *u.DisplayGSTPercent
	}
	if u.DiscountedDisplayCost != nil {
		it.DiscountedDisplayCost = *u.DiscountedDisplayCost
	}
	if u.OneTimeInstallationCost != nil {
		it.OneTimeInstallationCost = *u.OneTimeInstallationCost
	}
	if u.MonthlyAdditionalCost != nil {
		it.MonthlyAdditionalCost = *u.MonthlyAdditionalCost
	}
	if u.OtherCharges != nil {
		it.OtherCharges = *u.OtherCharges
	}
	return it
}

func applyEdited(it LineItem, u Update, totalPrice, totalArea float64) LineItem {
	it = Apply(it, u)
	it.ApplyPrintingMountingToAll = u.ApplyPrintingMountingToAll
	it.ApplyDiscountToAll = u.ApplyDiscountToAll
	it.Price = totalPrice
	it.TotalArea = totalArea
	it.PriceChanged = true
	return it
}

func withRates(it LineItem, u Update) LineItem {
	it.PrintingCostPerSqft = u.PrintingCostPerSqft
	it.PrintingGSTPercent = u.PrintingGSTPercent
	it.MountingCostPerSqft = u.MountingCostPerSqft
	it.MountingGSTPercent = u.MountingGSTPercent
	return it
}

func withDiscount(it LineItem, u Update) LineItem {
	it.DiscountOn = u.DiscountOn
	it.DiscountPercent = u.DiscountPercent
	return it
}

func recompute(it LineItem, printingApplied, discountApplied bool) LineItem {
	b := Compute(it, it.Unit, it.StartDate, it.EndDate)
	it.Price = b.Total
	it.TotalArea = b.Area
	it.TotalPrintingCost = b.PrintingCost
	it.TotalMountingCost = b.MountingCost
	it.ApplyPrintingMountingToAll = printingApplied
	it.ApplyDiscountToAll = discountApplied
	it.PriceChanged = false
	return it
}
