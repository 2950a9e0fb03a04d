package sessionlog

import (
	"strings"
	"testing"

	"github.com/claude/ironcycle/internal/progression"
)

const sampleLog = `
# week 1, day 1
Back Squat: 70 x 10, 70 x 10, 70 x 10, 70 x 10, 70 x 14+
Leg Curl: 40kg x 12; 40kg x 12; 40kg x 11

// bodyweight work
Push-up: bw x 20, BW x 15
Hip Thrust: 102,5 x 8, 102.5 lbs × 8
`

// TestParseCompleteLog verifies parsing a multi-exercise log end to end.
// This is the primary integration test for the parser.
func TestParseCompleteLog(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	squat := entries[0]
	if squat.Name != "Back Squat" {
		t.Errorf("name = %q, want Back Squat", squat.Name)
	}
	if squat.Line != 3 {
		t.Errorf("line = %d, want 3", squat.Line)
	}
	if len(squat.Sets) != 5 {
		t.Fatalf("squat sets = %d, want 5", len(squat.Sets))
	}
	last := squat.Sets[4]
	if last.SetNumber != 5 || last.ActualReps != 14 || !last.WasAmrap {
		t.Errorf("last squat set = %+v, want set 5, 14 reps, AMRAP", last)
	}
	if squat.Sets[0].WasAmrap {
		t.Error("first squat set should not be AMRAP")
	}
	if squat.Sets[0].Weight.Unit != "" {
		t.Errorf("unit = %q, want empty for unitless weight", squat.Sets[0].Weight.Unit)
	}

	curl := entries[1]
	if len(curl.Sets) != 3 {
		t.Fatalf("curl sets = %d, want 3", len(curl.Sets))
	}
	if curl.Sets[0].Weight != progression.Kg(40) {
		t.Errorf("curl weight = %+v, want 40 kg", curl.Sets[0].Weight)
	}
	if curl.Sets[2].ActualReps != 11 {
		t.Errorf("curl set 3 reps = %d, want 11", curl.Sets[2].ActualReps)
	}
}

// TestParseBodyweight verifies "bw" sets have zero weight regardless of case.
func TestParseBodyweight(t *testing.T) {
	entries, err := Parse(strings.NewReader("Push-up: bw x 20, BW x 15"))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range entries[0].Sets {
		if s.Weight.Value != 0 {
			t.Errorf("bodyweight set weight = %v, want 0", s.Weight.Value)
		}
	}
}

// TestParseDecimalComma verifies "102,5" and "102.5" both parse to 102.5, and
// pound spellings normalize to lb.
func TestParseDecimalComma(t *testing.T) {
	entries, err := Parse(strings.NewReader("Hip Thrust: 102,5 x 8, 102.5 lbs × 8"))
	if err != nil {
		t.Fatal(err)
	}
	sets := entries[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	if sets[0].Weight.Value != 102.5 || sets[1].Weight.Value != 102.5 {
		t.Errorf("weights = %v, %v, want 102.5", sets[0].Weight.Value, sets[1].Weight.Value)
	}
	if sets[1].Weight.Unit != progression.Pounds {
		t.Errorf("unit = %q, want lb", sets[1].Weight.Unit)
	}
}

// TestParseDecimalCommaDigits verifies one or two digits after a comma are
// read as a decimal fraction, while three digits are refused.
func TestParseDecimalCommaDigits(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"102,5", 102.5, true},
		{"61,25", 61.25, true},
		{"1,000", 0, false},
		{"12,500", 0, false},
		{"1.000", 1, true},
	}
	for _, tc := range cases {
		got, err := parseDecimal(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("parseDecimal(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("parseDecimal(%q) = %v, want error", tc.in, got)
		}
	}
}

// TestParseCompactSets verifies sets written without spaces parse.
func TestParseCompactSets(t *testing.T) {
	entries, err := Parse(strings.NewReader("Bench: 60kgx8; 60x8; 60x10+"))
	if err != nil {
		t.Fatal(err)
	}
	sets := entries[0].Sets
	if len(sets) != 3 || sets[0].Weight.Value != 60 || sets[0].Weight.Unit != progression.Kilograms {
		t.Errorf("sets = %+v", sets)
	}
	if !sets[2].WasAmrap {
		t.Error("last set should be AMRAP")
	}
}

// TestParseErrors verifies malformed lines are rejected with their line number.
func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"no colon", "Back Squat 100 x 5", "line 1"},
		{"bad set", "# header\nBack Squat: 100 for 5", "line 2, set 1"},
		{"unknown unit", "Back Squat: 100 stone x 5", "unknown unit"},
		{"no sets", "Back Squat: ;", "has no sets"},
		{"thousands separator", "Sled Push: 1,000 x 5", "ambiguous decimal comma"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

// TestParseEmpty verifies comments and blank lines alone produce no entries.
func TestParseEmpty(t *testing.T) {
	entries, err := Parse(strings.NewReader("\n# nothing today\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}
