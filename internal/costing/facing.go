package costing

import "strings"

// Facing identifies how many ad-viewable faces a structure exposes.
type Facing int

const (
	// FacingSingle is the default when the descriptor is absent or unrecognised.
	FacingSingle Facing = iota + 1
	FacingDouble
	FacingTriple
	FacingFourSided
)

// Multiplier returns the area multiplier for the facing.
func (f Facing) Multiplier() int {
	switch f {
	case FacingDouble:
		return 2
	case FacingTriple:
		return 3
	case FacingFourSided:
		return 4
	default:
		return 1
	}
}

// String returns the canonical descriptor for the facing.
func (f Facing) String() string {
	switch f {
	case FacingDouble:
		return "double"
	case FacingTriple:
		return "triple"
	case FacingFourSided:
		return "four"
	default:
		return "single"
	}
}

// ParseFacing resolves a free-text facing descriptor to the closed enum.
// Matching is a case-insensitive substring check so master-data labels such
// as "Double Sided" or "Triple Facing" resolve without an exact vocabulary.
func ParseFacing(s string) Facing {
	f, _ := parseFacing(s)
	return f
}

func parseFacing(s string) (Facing, bool) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	switch {
	case lowered == "":
		return FacingSingle, false
	case strings.Contains(lowered, "single"):
		return FacingSingle, true
	case strings.Contains(lowered, "double"):
		return FacingDouble, true
	case strings.Contains(lowered, "triple"):
		return FacingTriple, true
	case strings.Contains(lowered, "four"):
		return FacingFourSided, true
	default:
		return FacingSingle, false
	}
}
