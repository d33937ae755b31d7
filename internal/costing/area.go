package costing

// TotalArea computes the billable square footage of a line item: the sum of
// its face dimensions multiplied by the unit count and the facing multiplier.
// An item without dimensions has zero area; a non-positive unit counts as 1.
// The facing descriptor on the item wins over the one resolved from its
// location master data.
func TotalArea(item LineItem, unit int) float64 {
	if len(item.Dimensions) == 0 {
		return 0
	}
	if unit <= 0 {
		unit = 1
	}
	var base float64
	for _, d := range item.Dimensions {
		if d.Width <= 0 || d.Height <= 0 {
			continue
		}
		base += d.Width * d.Height
	}
	facing := ParseFacing(item.facingDescriptor())
	return base * float64(unit) * float64(facing.Multiplier())
}
