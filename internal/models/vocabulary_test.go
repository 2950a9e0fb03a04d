package models

import "testing"

// TestNormalizeUnit verifies common unit spellings map to the canonical
// names, regardless of case or surrounding whitespace.
func TestNormalizeUnit(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"kg", "kg"},
		{"KG", "kg"},
		{" kilos ", "kg"},
		{"Kilograms", "kg"},
		{"lb", "lb"},
		{"LBS", "lb"},
		{"pounds", "lb"},
	}
	for _, tc := range cases {
		got, known := NormalizeUnit(tc.input)
		if !known {
			t.Errorf("NormalizeUnit(%q): expected known=true", tc.input)
		}
		if got != tc.want {
			t.Errorf("NormalizeUnit(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// TestNormalizeUnit_Unknown verifies unrecognized units are returned
// unchanged with known=false.
func TestNormalizeUnit_Unknown(t *testing.T) {
	got, known := NormalizeUnit("stone")
	if known {
		t.Error("expected known=false for stone")
	}
	if got != "stone" {
		t.Errorf("got %q, want original string", got)
	}
}

// TestNormalizeCategory verifies aliases resolve to the three categories.
func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"main_lift", CategoryMainLift},
		{"Main Lift", CategoryMainLift},
		{"aux", CategoryAuxiliary},
		{"Accessory", CategoryAccessory},
		{"assistance", CategoryAccessory},
	}
	for _, tc := range cases {
		got, known := NormalizeCategory(tc.input)
		if !known || got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, %v, want %q", tc.input, got, known, tc.want)
		}
	}

	if _, known := NormalizeCategory("cardio"); known {
		t.Error("expected cardio to be unknown")
	}
}

// TestNormalizeEquipment verifies aliases map to canonical names and unknown
// equipment is lowercased rather than rejected.
func TestNormalizeEquipment(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Barbell", EquipmentBarbell},
		{"Smith Machine", EquipmentSmithMachine},
		{"DB", EquipmentDumbbell},
		{"Kettlebell", "kettlebell"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEquipment(tc.input); got != tc.want {
			t.Errorf("NormalizeEquipment(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
