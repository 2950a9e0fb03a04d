package progression

import "fmt"

// MinimalSets aims to complete TargetTotalReps in as few sets as possible,
// staying within [MinSets, MaxSets].
type MinimalSets struct {
	CurrentWeight   Weight `json:"current_weight"`
	CurrentSets     int    `json:"current_sets"`
	MinSets         int    `json:"min_sets"`
	MaxSets         int    `json:"max_sets"`
	TargetTotalReps int    `json:"target_total_reps"`
}

func (m *MinimalSets) Kind() Kind { return KindMinimalSets }

func (m *MinimalSets) isStrategy() {}

func (m *MinimalSets) Clone() Strategy {
	c := *m
	return &c
}

func (m *MinimalSets) Validate() error {
	if err := m.CurrentWeight.validate(); err != nil {
		return fmt.Errorf("current weight: %w", err)
	}
	if m.MinSets < 1 || m.MinSets > m.CurrentSets || m.CurrentSets > m.MaxSets {
		return fmt.Errorf("%w: sets must satisfy 1 <= min (%d) <= current (%d) <= max (%d)",
			ErrInvalidState, m.MinSets, m.CurrentSets, m.MaxSets)
	}
	if m.TargetTotalReps < 1 {
		return fmt.Errorf("%w: target total reps %d must be positive", ErrInvalidState, m.TargetTotalReps)
	}
	return nil
}

// RepsPerSet spreads the total over the current sets; the first
// TargetTotalReps % CurrentSets sets carry one extra rep.
func (m *MinimalSets) RepsPerSet() []int {
	n := max(m.CurrentSets, 1)
	base, extra := m.TargetTotalReps/n, m.TargetTotalReps%n
	reps := make([]int, n)
	for i := range reps {
		reps[i] = base
		if i < extra {
			reps[i]++
		}
	}
	return reps
}

func (m *MinimalSets) Plan(Session) []PlannedSet {
	reps := m.RepsPerSet()
	sets := make([]PlannedSet, len(reps))
	for i, r := range reps {
		sets[i] = PlannedSet{SetNumber: i + 1, Reps: r, Weight: m.CurrentWeight}
	}
	return sets
}

// Apply removes a set when the target was reached with sets to spare and
// adds one when the target was missed.
func (m *MinimalSets) Apply(_ Session, sets []SetResult) (Outcome, error) {
	if err := ValidateSets(sets, m.CurrentWeight.Unit); err != nil {
		return Outcome{}, err
	}
	total := totalReps(sets)
	used := len(sets)

	switch {
	case total < m.TargetTotalReps:
		m.CurrentSets = min(m.CurrentSets+1, m.MaxSets)
		return Outcome{
			Result: Failure,
			Change: fmt.Sprintf("Missed target (%d/%d reps): next session %s", total, m.TargetTotalReps, plural(m.CurrentSets, "set")),
		}, nil
	case used < m.CurrentSets:
		m.CurrentSets = max(m.CurrentSets-1, m.MinSets)
		return Outcome{
			Result: Success,
			Change: fmt.Sprintf("Hit %d reps in %s: next session %s", total, plural(used, "set"), plural(m.CurrentSets, "set")),
		}, nil
	default:
		return Outcome{
			Result: Maintained,
			Change: fmt.Sprintf("Hit target using all %s: maintained", plural(m.CurrentSets, "set")),
		}, nil
	}
}
