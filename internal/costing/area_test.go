package costing

import "testing"

func TestTotalAreaFacingMultiplier(t *testing.T) {
	item := LineItem{
		Facing:     "Double Sided",
		Dimensions: []Dimension{{Width: 10, Height: 5}},
	}
	if got := TotalArea(item, 1); got != 100 {
		t.Fatalf("expected 100 sqft, got %v", got)
	}
}

func TestTotalAreaScalesWithUnitAndDimensions(t *testing.T) {
	item := LineItem{Dimensions: []Dimension{{Width: 10, Height: 5}, {Width: 4, Height: 3}}}
	if got := TotalArea(item, 2); got != 124 {
		t.Fatalf("expected 124 sqft, got %v", got)
	}
	item.Dimensions[0].Width = 12
	if got := TotalArea(item, 2); got != 144 {
		t.Fatalf("wider face should increase area, got %v", got)
	}
}

func TestTotalAreaFallsBackToLocationFacing(t *testing.T) {
	item := LineItem{
		Facing:         "unknown descriptor",
		LocationFacing: "Triple Facing",
		Dimensions:     []Dimension{{Width: 10, Height: 10}},
	}
	if got := TotalArea(item, 1); got != 300 {
		t.Fatalf("expected 300 sqft via location facing, got %v", got)
	}
}

func TestTotalAreaEmptyDimensions(t *testing.T) {
	if got := TotalArea(LineItem{Unit: 3, Facing: "four sided"}, 3); got != 0 {
		t.Fatalf("expected 0 for missing dimensions, got %v", got)
	}
}

func TestTotalAreaDefaultsUnitToOne(t *testing.T) {
	item := LineItem{Dimensions: []Dimension{{Width: 6, Height: 4}}}
	if got := TotalArea(item, 0); got != 24 {
		t.Fatalf("expected unit fallback of 1, got %v", got)
	}
}

func TestParseFacing(t *testing.T) {
	cases := map[string]Facing{
		"Single Sided":  FacingSingle,
		"DOUBLE":        FacingDouble,
		"triple facing": FacingTriple,
		"Four Sided":    FacingFourSided,
		"gantry":        FacingSingle,
		"":              FacingSingle,
	}
	for input, want := range cases {
		if got := ParseFacing(input); got != want {
			t.Fatalf("ParseFacing(%q) = %v, want %v", input, got, want)
		}
	}
	if FacingFourSided.Multiplier() != 4 || FacingSingle.Multiplier() != 1 {
		t.Fatal("facing multipliers must stay in {1,2,3,4}")
	}
}
