package progression

import "fmt"

const (
	unilateralSetCap = 3
	bilateralSetCap  = 5
)

// RepRange bounds the reps prescribed per set.
type RepRange struct {
	Min    int `json:"min" yaml:"min"`
	Target int `json:"target" yaml:"target"`
	Max    int `json:"max" yaml:"max"`
}

// RepsPerSet adds a set whenever every set reaches the top of the rep range.
// Once the set cap is reached the weight goes up instead.
type RepsPerSet struct {
	CurrentWeight Weight   `json:"current_weight"`
	CurrentSets   int      `json:"current_sets"`
	TargetSets    int      `json:"target_sets"`
	RepRange      RepRange `json:"rep_range"`
	IsUnilateral  bool     `json:"is_unilateral"`
}

func (r *RepsPerSet) Kind() Kind { return KindRepsPerSet }

func (r *RepsPerSet) isStrategy() {}

func (r *RepsPerSet) Clone() Strategy {
	c := *r
	return &c
}

// SetCap is 3 for unilateral exercises and 5 otherwise.
func (r *RepsPerSet) SetCap() int {
	if r.IsUnilateral {
		return unilateralSetCap
	}
	return bilateralSetCap
}

func (r *RepsPerSet) Validate() error {
	if err := r.CurrentWeight.validate(); err != nil {
		return fmt.Errorf("current weight: %w", err)
	}
	rr := r.RepRange
	if rr.Min < 1 || rr.Min > rr.Target || rr.Target > rr.Max {
		return fmt.Errorf("%w: rep range %d/%d/%d must satisfy 1 <= min <= target <= max", ErrInvalidState, rr.Min, rr.Target, rr.Max)
	}
	if r.CurrentSets < 1 || r.CurrentSets > r.SetCap() {
		return fmt.Errorf("%w: current sets %d not in 1..%d", ErrInvalidState, r.CurrentSets, r.SetCap())
	}
	if r.TargetSets < 1 || r.TargetSets > r.SetCap() {
		return fmt.Errorf("%w: target sets %d not in 1..%d", ErrInvalidState, r.TargetSets, r.SetCap())
	}
	return nil
}

// Plan prescribes CurrentSets sets at the target reps.
func (r *RepsPerSet) Plan(Session) []PlannedSet {
	sets := make([]PlannedSet, r.CurrentSets)
	for i := range sets {
		sets[i] = PlannedSet{SetNumber: i + 1, Reps: r.RepRange.Target, Weight: r.CurrentWeight}
	}
	return sets
}

// Apply adds a set (or weight at the cap) when every set hit RepRange.Max.
// Falling below RepRange.Min never removes sets.
func (r *RepsPerSet) Apply(s Session, sets []SetResult) (Outcome, error) {
	if err := ValidateSets(sets, r.CurrentWeight.Unit); err != nil {
		return Outcome{}, err
	}
	if len(sets) == 0 {
		return Outcome{Result: Maintained, Change: "No sets completed"}, nil
	}

	allAtMax := true
	for _, set := range sets {
		if set.ActualReps < r.RepRange.Min {
			return Outcome{Result: Failure, Change: "Below rep range: maintain weight, build consistency"}, nil
		}
		if set.ActualReps < r.RepRange.Max {
			allAtMax = false
		}
	}
	if !allAtMax {
		return Outcome{Result: Maintained, Change: fmt.Sprintf("Maintained %s", plural(r.CurrentSets, "set"))}, nil
	}

	if limit := r.SetCap(); r.CurrentSets >= limit {
		r.CurrentSets = limit
		r.CurrentWeight.Value = roundDecimals(r.CurrentWeight.Value+s.increment(), 4)
		return Outcome{
			Result: Success,
			Change: fmt.Sprintf("Increased weight to %s (at %d-set cap)", r.CurrentWeight, limit),
		}, nil
	}
	r.CurrentSets++
	return Outcome{Result: Success, Change: fmt.Sprintf("Added 1 set (now %s)", plural(r.CurrentSets, "set"))}, nil
}
