package sessionlog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
)

var (
	// entryRe matches: Back Squat: 100 x 5, 100 x 5, 100 x 8+
	entryRe = regexp.MustCompile(`^([^:]+?)\s*:\s*(.+)$`)

	// setRe matches: 102,5kg x 8+ | 70 x 10 | bw x 12 | 45 lb × 6
	setRe = regexp.MustCompile(`(?i)^(bw|\d+(?:[.,]\d+)?)\s*([a-z]+)?\s*[x×]\s*(\d+)\s*(\+)?$`)

	// thousandsRe matches a comma used as a thousands separator: "1,000".
	thousandsRe = regexp.MustCompile(`^\d+,\d{3}$`)

	// setSepRe splits sets on ";" or on a comma followed by whitespace, so
	// decimal commas like "102,5" stay intact.
	setSepRe = regexp.MustCompile(`\s*;\s*|,\s+`)
)

// Entry is one exercise line of a session log. Sets without an explicit
// unit carry an empty Weight.Unit, filled in when the entry is matched to
// an exercise.
type Entry struct {
	Line int
	Name string
	Sets []progression.SetResult
}

// Parse reads a plain-text session log. Each non-blank line names an
// exercise followed by its sets:
//
//	# week 3, day 1
//	Back Squat: 100 x 5, 100 x 5, 100 x 5, 100 x 5, 100 x 9+
//	Leg Curl: 40kg x 12; 40kg x 12; 40kg x 11
//	Push-up: bw x 20, bw x 15, bw x 12
//
// A trailing "+" marks the AMRAP set. Lines starting with "#" or "//" are
// comments.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected \"exercise: sets\", got %q", lineNo, line)
		}

		entry := Entry{Line: lineNo, Name: strings.TrimSpace(m[1])}
		for i, raw := range setSepRe.Split(strings.TrimSpace(m[2]), -1) {
			if raw == "" {
				continue
			}
			set, err := parseSet(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d, set %d: %w", lineNo, i+1, err)
			}
			set.SetNumber = len(entry.Sets) + 1
			entry.Sets = append(entry.Sets, set)
		}
		if len(entry.Sets) == 0 {
			return nil, fmt.Errorf("line %d: %s has no sets", lineNo, entry.Name)
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// parseSet parses "weight[unit] x reps[+]".
func parseSet(s string) (progression.SetResult, error) {
	m := setRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return progression.SetResult{}, fmt.Errorf("cannot parse set %q", s)
	}

	var weight float64
	if !strings.EqualFold(m[1], "bw") {
		w, err := parseDecimal(m[1])
		if err != nil {
			return progression.SetResult{}, fmt.Errorf("weight in %q: %w", s, err)
		}
		weight = w
	}

	var unit progression.Unit
	if m[2] != "" {
		u, ok := models.NormalizeUnit(m[2])
		if !ok {
			return progression.SetResult{}, fmt.Errorf("unknown unit %q in %q", m[2], s)
		}
		unit = progression.Unit(u)
	}

	reps, err := strconv.Atoi(m[3])
	if err != nil {
		return progression.SetResult{}, fmt.Errorf("reps in %q: %w", s, err)
	}

	return progression.SetResult{
		Weight:     progression.Weight{Value: weight, Unit: unit},
		ActualReps: reps,
		WasAmrap:   m[4] == "+",
	}, nil
}

// parseDecimal accepts both "102.5" and "102,5". A comma followed by
// exactly three digits is ambiguous with a thousands separator and rejected.
func parseDecimal(s string) (float64, error) {
	if thousandsRe.MatchString(s) {
		return 0, fmt.Errorf("ambiguous decimal comma in %q, write %s or %s",
			s, strings.ReplaceAll(s, ",", ""), strings.ReplaceAll(s, ",", "."))
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
