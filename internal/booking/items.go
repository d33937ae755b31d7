package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
	"github.com/noah-isme/backend-ooh/internal/costing"
)

// ItemBuilder turns an item request into a priced line item by snapshotting
// the space's dimensions, facing and rates and running the costing engine.
// Proposals and bookings share it.
type ItemBuilder struct {
	Spaces            SpaceSource
	DefaultGSTPercent float64
}

// Build resolves the space, applies request overrides on top of the snapshot
// and prices the item for its campaign window.
func (ib ItemBuilder) Build(ctx context.Context, ir ItemRequest) (costing.LineItem, error) {
	start, err := parseDate(ir.StartDate)
	if err != nil {
		return costing.LineItem{}, common.Validation("invalid startDate, expected YYYY-MM-DD", nil)
	}
	end, err := parseDate(ir.EndDate)
	if err != nil {
		return costing.LineItem{}, common.Validation("invalid endDate, expected YYYY-MM-DD", nil)
	}
	if err := costing.ValidateRange(start, end); err != nil {
		return costing.LineItem{}, common.Validation("endDate precedes startDate", nil)
	}
	sp, err := ib.Spaces.Get(ctx, ir.SpaceID)
	if err != nil {
		return costing.LineItem{}, err
	}

	item := costing.LineItem{
		ID:                  uuid.New(),
		SpaceID:             sp.ID,
		Dimensions:          sp.Dimensions,
		Unit:                sp.Unit,
		LocationFacing:      sp.FacingName,
		StartDate:           start,
		EndDate:             end,
		DisplayCostPerMonth: sp.DisplayCostPerMonth,
		DisplayGSTPercent:   ib.DefaultGSTPercent,
		PrintingCostPerSqft: sp.PrintingCostPerSqft,
		MountingCostPerSqft: sp.MountingCostPerSqft,

		OneTimeInstallationCost: ir.OneTimeInstallationCost,
		MonthlyAdditionalCost:   ir.MonthlyAdditionalCost,
		OtherCharges:            ir.OtherCharges,
	}
	if ir.DisplayCostPerMonth != nil {
		item.DisplayCostPerMonth = *ir.DisplayCostPerMonth
	}
	if ir.DisplayGSTPercent != nil {
		item.DisplayGSTPercent = *ir.DisplayGSTPercent
	}
	if ir.PrintingCostPerSqft != nil {
		item.PrintingCostPerSqft = *ir.PrintingCostPerSqft
	}
	if ir.PrintingGSTPercent != nil {
		item.PrintingGSTPercent = *ir.PrintingGSTPercent
	}
	if ir.MountingCostPerSqft != nil {
		item.MountingCostPerSqft = *ir.MountingCostPerSqft
	}
	if ir.MountingGSTPercent != nil {
		item.MountingGSTPercent = *ir.MountingGSTPercent
	}

	breakdown := costing.Compute(item, item.Unit, start, end)
	item.Price = breakdown.Total
	item.TotalArea = breakdown.Area
	item.TotalPrintingCost = breakdown.PrintingCost
	item.TotalMountingCost = breakdown.MountingCost
	return item, nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
