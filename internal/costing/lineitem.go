package costing

import (
	"time"

	"github.com/google/uuid"
)

// DiscountOn selects which cost component a discount percentage applies to.
type DiscountOn string

const (
	// DiscountOnNone means no discount rule is active.
	DiscountOnNone DiscountOn = ""
	// DiscountOnDisplayCost discounts the monthly display rental before GST.
	DiscountOnDisplayCost DiscountOn = "displayCost"
	// DiscountOnTotalPrice discounts the fully aggregated item total.
	DiscountOnTotalPrice DiscountOn = "totalPrice"
)

// Dimension is one printable face measured in feet.
type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LineItem carries the commercial terms of one media space placement inside a
// booking or proposal draft. Derived fields (Price, TotalArea, the component
// totals and the two apply-to-all flags) are overwritten on every
// recomputation; everything else is caller input.
type LineItem struct {
	ID             uuid.UUID   `json:"id"`
	SpaceID        uuid.UUID   `json:"spaceId"`
	Dimensions     []Dimension `json:"dimensions"`
	Unit           int         `json:"unit"`
	Facing         string      `json:"facing,omitempty"`
	LocationFacing string      `json:"locationFacing,omitempty"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	DisplayCostPerMonth   float64    `json:"displayCostPerMonth"`
	DisplayGSTPercent     float64    `json:"displayCostGstPercentage"`
	PrintingCostPerSqft   float64    `json:"printingCostPerSqft"`
	PrintingGSTPercent    float64    `json:"printingGstPercentage"`
	MountingCostPerSqft   float64    `json:"mountingCostPerSqft"`
	MountingGSTPercent    float64    `json:"mountingGstPercentage"`
	DiscountOn            DiscountOn `json:"discountOn,omitempty"`
	DiscountPercent       float64    `json:"discount"`
	DiscountedDisplayCost float64    `json:"discountedDisplayCost,omitempty"`

	OneTimeInstallationCost float64 `json:"oneTimeInstallationCost"`
	MonthlyAdditionalCost   float64 `json:"monthlyAdditionalCost"`
	OtherCharges            float64 `json:"otherCharges"`

	ApplyPrintingMountingToAll bool `json:"applyPrintingMountingCostForAll"`
	ApplyDiscountToAll         bool `json:"applyDiscountForAll"`

	Price             float64 `json:"price"`
	TotalArea         float64 `json:"totalArea"`
	TotalPrintingCost float64 `json:"totalPrintingCost"`
	TotalMountingCost float64 `json:"totalMountingCost"`
	PriceChanged      bool    `json:"priceChanged"`
}

func (it LineItem) facingDescriptor() string {
	if _, ok := parseFacing(it.Facing); ok {
		return it.Facing
	}
	return it.LocationFacing
}
