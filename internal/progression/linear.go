package progression

import "fmt"

// Linear drives load from a training max. The week's working weight is a
// percentage of the TM and the final AMRAP set adjusts the TM.
type Linear struct {
	TrainingMax Weight `json:"training_max"`
	UseAmrap    bool   `json:"use_amrap"`
	BaseSets    int    `json:"base_sets"`
}

func (l *Linear) Kind() Kind { return KindLinear }

func (l *Linear) isStrategy() {}

func (l *Linear) Clone() Strategy {
	c := *l
	return &c
}

func (l *Linear) Validate() error {
	if err := l.TrainingMax.validate(); err != nil {
		return fmt.Errorf("training max: %w", err)
	}
	if l.BaseSets < 1 {
		return fmt.Errorf("%w: base sets %d must be at least 1", ErrInvalidState, l.BaseSets)
	}
	return nil
}

// Plan prescribes week.Sets sets of week.TargetReps at the working weight.
func (l *Linear) Plan(s Session) []PlannedSet {
	weight := WorkingWeight(l.TrainingMax, s.Week.Intensity, s.increment())
	sets := make([]PlannedSet, s.Week.Sets)
	for i := range sets {
		sets[i] = PlannedSet{SetNumber: i + 1, Reps: s.Week.TargetReps, Weight: weight}
	}
	if l.UseAmrap && len(sets) > 0 {
		sets[len(sets)-1].Amrap = true
	}
	return sets
}

// Apply adjusts the training max from the AMRAP delta. Deload weeks follow
// the same table; only their intensity and volume are reduced.
func (l *Linear) Apply(s Session, sets []SetResult) (Outcome, error) {
	if err := ValidateSets(sets, l.TrainingMax.Unit); err != nil {
		return Outcome{}, err
	}

	delta := 0
	if l.UseAmrap && len(sets) > 0 {
		delta = amrapSet(sets).ActualReps - s.Week.TargetReps
	}

	adj := AmrapAdjustment(delta)
	if adj != 0 {
		l.TrainingMax.Value = RoundToIncrement(l.TrainingMax.Value*(1+adj), trainingMaxStep)
	}
	return Outcome{Result: resultForDelta(delta), Change: describeAdjustment(delta, adj)}, nil
}

// AmrapAdjustment maps reps over (or under) target on the AMRAP set to a
// fractional training-max change.
func AmrapAdjustment(delta int) float64 {
	switch {
	case delta >= 5:
		return 0.03
	case delta == 4:
		return 0.02
	case delta == 3:
		return 0.015
	case delta == 2:
		return 0.01
	case delta == 1:
		return 0.005
	case delta == 0:
		return 0
	case delta == -1:
		return -0.02
	default:
		return -0.05
	}
}

// amrapSet picks the last set flagged as AMRAP, falling back to the last completed set.
func amrapSet(sets []SetResult) SetResult {
	for i := len(sets) - 1; i >= 0; i-- {
		if sets[i].WasAmrap {
			return sets[i]
		}
	}
	last := sets[0]
	for _, s := range sets[1:] {
		if s.SetNumber >= last.SetNumber {
			last = s
		}
	}
	return last
}

func resultForDelta(delta int) Result {
	switch {
	case delta > 0:
		return Success
	case delta == 0:
		return Maintained
	default:
		return Failure
	}
}

func describeAdjustment(delta int, adj float64) string {
	switch {
	case adj > 0:
		return "TM increased " + formatPercent(adj)
	case adj == 0:
		return "TM maintained"
	case delta <= -2:
		return "TM decreased " + formatPercent(-adj) + " (deload)"
	default:
		return "TM decreased " + formatPercent(-adj)
	}
}
