package costing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	campaignStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	campaignEnd   = time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC) // exactly one 30-day month
)

func TestTotalCostNilItem(t *testing.T) {
	require.Zero(t, TotalCost(nil, 1, campaignStart, campaignEnd))
}

func TestComputeDiscountOnTotalPrice(t *testing.T) {
	item := LineItem{
		Dimensions:          []Dimension{{Width: 10, Height: 10}},
		DisplayCostPerMonth: 1000,
		DiscountOn:          DiscountOnTotalPrice,
		DiscountPercent:     10,
	}
	b := Compute(item, 1, campaignStart, campaignEnd)
	require.Equal(t, 100.0, b.Area)
	require.Equal(t, 1.0, b.Months)
	require.Equal(t, 900.0, b.Total)
}

func TestComputeDiscountOnDisplayCostBeforeGST(t *testing.T) {
	item := LineItem{
		Dimensions:          []Dimension{{Width: 10, Height: 10}},
		DisplayCostPerMonth: 1000,
		DisplayGSTPercent:   18,
		DiscountOn:          DiscountOnDisplayCost,
		DiscountPercent:     10,
	}
	b := Compute(item, 1, campaignStart, campaignEnd)
	// 1000 - 10% = 900, then 18% GST on the discounted figure.
	require.Equal(t, 1062.0, b.DisplayCost)
	require.Equal(t, 1062.0, b.Total)
}

func TestComputeDiscountedDisplayCostOverride(t *testing.T) {
	item := LineItem{
		Dimensions:            []Dimension{{Width: 10, Height: 10}},
		DisplayCostPerMonth:   1000,
		DisplayGSTPercent:     18,
		DiscountOn:            DiscountOnDisplayCost,
		DiscountPercent:       10,
		DiscountedDisplayCost: 800,
	}
	b := Compute(item, 1, campaignStart, campaignEnd)
	// The override bypasses both the per-month discount and the GST gross-up.
	require.Equal(t, 800.0, b.DisplayCost)
	require.Equal(t, 800.0, b.Total)
}

func TestComputeAllComponents(t *testing.T) {
	item := LineItem{
		Dimensions:              []Dimension{{Width: 10, Height: 10}},
		DisplayCostPerMonth:     2000,
		PrintingCostPerSqft:     10,
		PrintingGSTPercent:      18,
		MountingCostPerSqft:     5,
		OneTimeInstallationCost: 250,
		MonthlyAdditionalCost:   100,
		OtherCharges:            50,
	}
	b := Compute(item, 1, campaignStart, campaignEnd)
	require.Equal(t, 1180.0, b.PrintingCost)
	require.Equal(t, 500.0, b.MountingCost)
	require.Equal(t, 2000.0, b.DisplayCost)
	// 2000 + 1180 + 500 + 250 + 100 - 50
	require.Equal(t, 3980.0, b.Total)
}

func TestComputeZeroAreaSuppressesDisplayCost(t *testing.T) {
	item := LineItem{
		DisplayCostPerMonth:     5000,
		OneTimeInstallationCost: 300,
	}
	b := Compute(item, 1, campaignStart, campaignEnd)
	require.Zero(t, b.Area)
	require.Zero(t, b.DisplayCost)
	require.Equal(t, 300.0, b.Total)
}

func TestComputeZeroMonthsOnMissingWindow(t *testing.T) {
	item := LineItem{
		Dimensions:          []Dimension{{Width: 10, Height: 10}},
		DisplayCostPerMonth: 1000,
	}
	b := Compute(item, 1, time.Time{}, campaignEnd)
	require.Zero(t, b.Months)
	require.Zero(t, b.Total)
}
