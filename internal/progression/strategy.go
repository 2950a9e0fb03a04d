package progression

import "fmt"

// Kind tags a progression strategy.
type Kind string

const (
	KindLinear      Kind = "linear"
	KindRepsPerSet  Kind = "reps_per_set"
	KindMinimalSets Kind = "minimal_sets"
)

// Result classifies a session outcome.
type Result string

const (
	Success    Result = "success"
	Maintained Result = "maintained"
	Failure    Result = "failure"
)

// SetResult is one completed set as logged by the athlete.
type SetResult struct {
	SetNumber  int    `json:"set_number"`
	Weight     Weight `json:"weight"`
	ActualReps int    `json:"actual_reps"`
	WasAmrap   bool   `json:"was_amrap"`
}

// PlannedSet is one prescribed set.
type PlannedSet struct {
	SetNumber int    `json:"set_number"`
	Reps      int    `json:"reps"`
	Weight    Weight `json:"weight"`
	Amrap     bool   `json:"amrap"`
}

// Session carries what a strategy needs from the surrounding program.
type Session struct {
	Week      WeekParams
	Increment float64
}

func (s Session) increment() float64 {
	if s.Increment <= 0 {
		return DefaultIncrement
	}
	return s.Increment
}

// Outcome is the classification a strategy produces after applying a session.
type Outcome struct {
	Result Result
	Change string
}

// Strategy is the closed set of progression strategies: *Linear, *RepsPerSet and *MinimalSets.
type Strategy interface {
	Kind() Kind
	// Plan returns the prescribed sets for the session.
	Plan(s Session) []PlannedSet
	// Apply classifies the completed sets and updates the strategy's state.
	Apply(s Session, sets []SetResult) (Outcome, error)
	Validate() error
	Clone() Strategy

	isStrategy()
}

// ValidateSets checks completed set data. An empty unit is read as the exercise's unit;
// a different unit is rejected because the engine does not convert.
func ValidateSets(sets []SetResult, unit Unit) error {
	for i, s := range sets {
		if s.SetNumber < 1 {
			return fmt.Errorf("%w: set %d has number %d", ErrInvalidPerformance, i+1, s.SetNumber)
		}
		if s.ActualReps < 0 {
			return fmt.Errorf("%w: set %d has negative reps", ErrInvalidPerformance, s.SetNumber)
		}
		if s.Weight.Value < 0 {
			return fmt.Errorf("%w: set %d has negative weight", ErrInvalidPerformance, s.SetNumber)
		}
		if s.Weight.Unit != "" && s.Weight.Unit != unit {
			return fmt.Errorf("%w: set %d logged in %s, exercise uses %s", ErrInvalidPerformance, s.SetNumber, s.Weight.Unit, unit)
		}
	}
	return nil
}

func totalReps(sets []SetResult) int {
	n := 0
	for _, s := range sets {
		n += s.ActualReps
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
