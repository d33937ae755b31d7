package costing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func draftItems() (LineItem, LineItem) {
	edited := LineItem{
		ID:                  uuid.New(),
		Dimensions:          []Dimension{{Width: 5, Height: 5}},
		Unit:                1,
		StartDate:           campaignStart,
		EndDate:             campaignEnd,
		DisplayCostPerMonth: 1500,
	}
	other := LineItem{
		ID:                  uuid.New(),
		Dimensions:          []Dimension{{Width: 10, Height: 10}},
		Unit:                1,
		StartDate:           campaignStart,
		EndDate:             campaignEnd,
		DisplayCostPerMonth: 2000,
		PrintingCostPerSqft: 5,
	}
	return edited, other
}

func TestPropagateExclusivity(t *testing.T) {
	edited, other := draftItems()
	other.ApplyPrintingMountingToAll = true // stale marker from a previous edit
	other.ApplyDiscountToAll = true

	u := Update{PrintingCostPerSqft: 12}
	out := Propagate(u, edited.ID, []LineItem{edited, other}, 2500, 25)

	require.Len(t, out, 2)
	require.True(t, out[0].PriceChanged)
	require.Equal(t, 2500.0, out[0].Price)
	require.Equal(t, 25.0, out[0].TotalArea)
	require.Equal(t, 12.0, out[0].PrintingCostPerSqft)

	require.False(t, out[1].PriceChanged)
	require.False(t, out[1].ApplyPrintingMountingToAll)
	require.False(t, out[1].ApplyDiscountToAll)
	require.Equal(t, 5.0, out[1].PrintingCostPerSqft, "untouched item keeps its own rates")
	require.Equal(t, other.DisplayCostPerMonth, out[1].DisplayCostPerMonth)
}

func TestPropagateInputNotMutated(t *testing.T) {
	edited, other := draftItems()
	items := []LineItem{edited, other}
	_ = Propagate(Update{PrintingCostPerSqft: 9, ApplyPrintingMountingToAll: true}, edited.ID, items, 999, 25)
	require.Equal(t, 5.0, items[1].PrintingCostPerSqft)
	require.Zero(t, items[1].Price)
}

func TestPropagatePrintingMountingForAll(t *testing.T) {
	edited, other := draftItems()
	u := Update{
		PrintingCostPerSqft:        12,
		MountingCostPerSqft:        3,
		ApplyPrintingMountingToAll: true,
	}
	out := Propagate(u, edited.ID, []LineItem{edited, other}, 3000, 25)

	got := out[1]
	require.True(t, got.ApplyPrintingMountingToAll)
	require.False(t, got.ApplyDiscountToAll)
	// Recomputed against the item's own 100 sqft area, not the edited item's.
	require.Equal(t, 1200.0, got.TotalPrintingCost)
	require.Equal(t, 300.0, got.TotalMountingCost)
	// 2000 display + 1200 printing + 300 mounting over a one-month window.
	require.Equal(t, 3500.0, got.Price)
	require.Equal(t, 100.0, got.TotalArea)
}

func TestPropagateDiscountForAll(t *testing.T) {
	edited, other := draftItems()
	u := Update{
		PrintingCostPerSqft: 12,
		DiscountOn:          DiscountOnDisplayCost,
		DiscountPercent:     50,
		ApplyDiscountToAll:  true,
	}
	out := Propagate(u, edited.ID, []LineItem{edited, other}, 3000, 25)

	got := out[1]
	require.False(t, got.ApplyPrintingMountingToAll)
	require.True(t, got.ApplyDiscountToAll)
	require.Equal(t, 5.0, got.PrintingCostPerSqft, "printing rate must not leak into a discount-only propagation")
	// Display halves to 1000; the item's own printing stays 5/sqft over 100 sqft.
	require.Equal(t, 1500.0, got.Price)
}

func TestPropagateBothFlags(t *testing.T) {
	edited, other := draftItems()
	u := Update{
		PrintingCostPerSqft:        12,
		MountingCostPerSqft:        3,
		DiscountOn:                 DiscountOnTotalPrice,
		DiscountPercent:            10,
		ApplyPrintingMountingToAll: true,
		ApplyDiscountToAll:         true,
	}
	out := Propagate(u, edited.ID, []LineItem{edited, other}, 3000, 25)

	got := out[1]
	require.True(t, got.ApplyPrintingMountingToAll)
	require.True(t, got.ApplyDiscountToAll)
	// (2000 + 1200 + 300) less 10%.
	require.Equal(t, 3150.0, got.Price)
}
