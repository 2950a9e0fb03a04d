package workout

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/claude/ironcycle/internal/progression"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a workout program.
type Status string

const (
	NotStarted Status = "not_started"
	Active     Status = "active"
	Completed  Status = "completed"
)

// DefaultDaysPerWeek is the four-day program variant.
const DefaultDaysPerWeek = 4

// Workout is one athlete's run through the program. It is mutated only by
// CompleteDay and ProgressWeek.
type Workout struct {
	ID            uuid.UUID  `json:"id"`
	UserID        int        `json:"user_id"`
	Name          string     `json:"name"`
	Status        Status     `json:"status"`
	CurrentWeek   int        `json:"current_week"`
	CurrentDay    int        `json:"current_day"`
	CompletedDays []int      `json:"completed_days_in_current_week"`
	TotalWeeks    int        `json:"total_weeks"`
	DaysPerWeek   int        `json:"days_per_week"`
	Exercises     []Exercise `json:"exercises"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProgressionChange describes what happened to one exercise's progression.
type ProgressionChange struct {
	ExerciseID      uuid.UUID          `json:"exercise_id"`
	ExerciseName    string             `json:"exercise_name"`
	ProgressionType progression.Kind   `json:"progression_type"`
	Result          progression.Result `json:"result"`
	Change          string             `json:"change"`
}

// Performance is the completed sets logged for one exercise.
type Performance struct {
	ExerciseID uuid.UUID               `json:"exercise_id"`
	Sets       []progression.SetResult `json:"sets"`
}

// CompleteDayResult is returned by CompleteDay.
type CompleteDayResult struct {
	Day                int                 `json:"day"`
	ExercisesCompleted int                 `json:"exercises_completed"`
	ProgressionChanges []ProgressionChange `json:"progression_changes"`
	WeekProgressed     bool                `json:"week_progressed"`
	NewCurrentWeek     int                 `json:"new_current_week"`
	IsDeloadWeek       bool                `json:"is_deload_week"`
	ProgramComplete    bool                `json:"program_complete"`
}

// ProgressWeekResult is returned by ProgressWeek.
type ProgressWeekResult struct {
	PreviousWeek      int  `json:"previous_week"`
	NewWeek           int  `json:"new_week"`
	NewBlock          int  `json:"new_block"`
	IsDeloadWeek      bool `json:"is_deload_week"`
	IsProgramComplete bool `json:"is_program_complete"`
}

// ExercisePlan is the prescription for one exercise on one day.
type ExercisePlan struct {
	ExerciseID      uuid.UUID                `json:"exercise_id"`
	ExerciseName    string                   `json:"exercise_name"`
	Category        Category                 `json:"category"`
	ProgressionType progression.Kind         `json:"progression_type"`
	Sets            []progression.PlannedSet `json:"sets"`
}

// DayPlan is the prescription for a whole day of the current week.
type DayPlan struct {
	Week      progression.WeekParams `json:"week"`
	Day       int                    `json:"day"`
	Completed bool                   `json:"completed"`
	Exercises []ExercisePlan         `json:"exercises"`
}

// New returns a not-started workout positioned at week 1, day 1.
func New(userID int, name string, totalWeeks, daysPerWeek int, exercises []Exercise) *Workout {
	now := time.Now().UTC()
	return &Workout{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Status:        NotStarted,
		CurrentWeek:   1,
		CurrentDay:    1,
		CompletedDays: []int{},
		TotalWeeks:    totalWeeks,
		DaysPerWeek:   daysPerWeek,
		Exercises:     exercises,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks the aggregate's structural invariants.
func (w *Workout) Validate() error {
	if w.TotalWeeks < 1 || w.TotalWeeks > progression.MaxWeeks {
		return fmt.Errorf("%w: total weeks %d not in 1..%d", progression.ErrOutOfRange, w.TotalWeeks, progression.MaxWeeks)
	}
	if w.DaysPerWeek < 1 {
		return fmt.Errorf("%w: days per week %d must be positive", ErrInvalidDay, w.DaysPerWeek)
	}
	if w.CurrentWeek < 1 || w.CurrentWeek > w.TotalWeeks {
		return fmt.Errorf("%w: current week %d not in 1..%d", progression.ErrOutOfRange, w.CurrentWeek, w.TotalWeeks)
	}
	seen := make(map[uuid.UUID]bool, len(w.Exercises))
	for i := range w.Exercises {
		ex := &w.Exercises[i]
		if seen[ex.ID] {
			return fmt.Errorf("%w: duplicate exercise id %s", ErrInvalidExercise, ex.ID)
		}
		seen[ex.ID] = true
		if err := ex.Validate(w.DaysPerWeek); err != nil {
			return err
		}
	}
	return nil
}

// Exercise returns the exercise with the given id.
func (w *Workout) Exercise(id uuid.UUID) (*Exercise, error) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i], nil
		}
	}
	return nil, fmt.Errorf("%w: exercise %s", ErrNotFound, id)
}

// exercisesForDay returns indexes into Exercises for a day, ordered by OrderInDay.
func (w *Workout) exercisesForDay(day int) []int {
	var idx []int
	for i := range w.Exercises {
		if w.Exercises[i].AssignedDay == day {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return w.Exercises[idx[a]].OrderInDay < w.Exercises[idx[b]].OrderInDay
	})
	return idx
}

// IsDayCompleted reports whether day is done in the current week.
func (w *Workout) IsDayCompleted(day int) bool {
	return slices.Contains(w.CompletedDays, day)
}

// Clone returns a deep copy; strategies are cloned so applying a session to
// the copy leaves w untouched.
func (w *Workout) Clone() *Workout {
	c := *w
	c.CompletedDays = slices.Clone(w.CompletedDays)
	c.Exercises = make([]Exercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		c.Exercises[i] = ex.clone()
	}
	return &c
}

func (w *Workout) validateDay(day int) error {
	if day < 1 || day > w.DaysPerWeek {
		return fmt.Errorf("%w: day %d not in 1..%d", ErrInvalidDay, day, w.DaysPerWeek)
	}
	return nil
}

// CompleteDay applies the logged performances for day and, once every day of
// the week is done, advances the week. Exercises without completed sets are
// skipped. On error w is left unchanged.
func (w *Workout) CompleteDay(table *progression.Table, day int, performances []Performance, increment float64) (*CompleteDayResult, error) {
	if w.Status == Completed {
		return nil, fmt.Errorf("%w: program already completed", ErrNotActive)
	}
	if err := w.validateDay(day); err != nil {
		return nil, err
	}
	if w.IsDayCompleted(day) {
		return nil, fmt.Errorf("%w: day %d of week %d", ErrAlreadyCompleted, day, w.CurrentWeek)
	}
	params, err := table.Get(w.CurrentWeek)
	if err != nil {
		return nil, err
	}

	sets := make(map[uuid.UUID][]progression.SetResult, len(performances))
	for _, p := range performances {
		ex, err := w.Exercise(p.ExerciseID)
		if err != nil {
			return nil, err
		}
		if err := progression.ValidateSets(p.Sets, ex.Progression.Unit()); err != nil {
			return nil, fmt.Errorf("%s: %w", ex.Name, err)
		}
		sets[p.ExerciseID] = append(sets[p.ExerciseID], p.Sets...)
	}

	next := w.Clone()
	session := progression.Session{Week: params, Increment: increment}
	result := &CompleteDayResult{Day: day, ProgressionChanges: []ProgressionChange{}, NewCurrentWeek: next.CurrentWeek}

	for _, i := range next.exercisesForDay(day) {
		ex := &next.Exercises[i]
		done := sets[ex.ID]
		if len(done) == 0 {
			continue
		}
		out, err := ex.Progression.Apply(session, done)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", ex.Name, err)
		}
		result.ExercisesCompleted++
		result.ProgressionChanges = append(result.ProgressionChanges, ProgressionChange{
			ExerciseID:      ex.ID,
			ExerciseName:    ex.Name,
			ProgressionType: ex.Progression.Kind(),
			Result:          out.Result,
			Change:          out.Change,
		})
	}

	if next.Status == NotStarted {
		next.Status = Active
	}
	next.CompletedDays = append(next.CompletedDays, day)
	slices.Sort(next.CompletedDays)
	next.CurrentDay = next.nextOpenDay()

	if len(next.CompletedDays) == next.DaysPerWeek {
		pw, err := next.ProgressWeek(table)
		if err != nil {
			return nil, err
		}
		result.WeekProgressed = true
		result.NewCurrentWeek = pw.NewWeek
		result.IsDeloadWeek = pw.IsDeloadWeek
		result.ProgramComplete = pw.IsProgramComplete
	} else {
		result.IsDeloadWeek = params.IsDeload
	}

	next.UpdatedAt = time.Now().UTC()
	*w = *next
	return result, nil
}

// ProgressWeek moves to the next week, clearing the completed-day set. Past
// the final week the workout is marked completed instead of advancing.
func (w *Workout) ProgressWeek(table *progression.Table) (*ProgressWeekResult, error) {
	current, err := table.Get(w.CurrentWeek)
	if err != nil {
		return nil, err
	}
	if w.Status == Completed {
		return &ProgressWeekResult{
			PreviousWeek:      w.CurrentWeek,
			NewWeek:           w.CurrentWeek,
			NewBlock:          current.Block,
			IsDeloadWeek:      current.IsDeload,
			IsProgramComplete: true,
		}, nil
	}

	result := &ProgressWeekResult{PreviousWeek: w.CurrentWeek}
	newWeek := w.CurrentWeek + 1
	if newWeek > w.TotalWeeks || newWeek > table.TotalWeeks() {
		w.Status = Completed
		result.NewWeek = w.CurrentWeek
		result.NewBlock = current.Block
		result.IsDeloadWeek = current.IsDeload
		result.IsProgramComplete = true
	} else {
		params, err := table.Get(newWeek)
		if err != nil {
			return nil, err
		}
		w.CurrentWeek = newWeek
		if w.Status == NotStarted {
			w.Status = Active
		}
		result.NewWeek = newWeek
		result.NewBlock = params.Block
		result.IsDeloadWeek = params.IsDeload
	}

	w.CompletedDays = []int{}
	w.CurrentDay = 1
	w.UpdatedAt = time.Now().UTC()
	return result, nil
}

// PlanDay returns the prescription for day in the current week.
func (w *Workout) PlanDay(table *progression.Table, day int, increment float64) (*DayPlan, error) {
	if err := w.validateDay(day); err != nil {
		return nil, err
	}
	params, err := table.Get(w.CurrentWeek)
	if err != nil {
		return nil, err
	}
	session := progression.Session{Week: params, Increment: increment}
	plan := &DayPlan{Week: params, Day: day, Completed: w.IsDayCompleted(day), Exercises: []ExercisePlan{}}
	for _, i := range w.exercisesForDay(day) {
		ex := &w.Exercises[i]
		plan.Exercises = append(plan.Exercises, ExercisePlan{
			ExerciseID:      ex.ID,
			ExerciseName:    ex.Name,
			Category:        ex.Category,
			ProgressionType: ex.Progression.Kind(),
			Sets:            ex.Progression.Plan(session),
		})
	}
	return plan, nil
}

// nextOpenDay is the lowest day not yet completed this week, or 1 when all are done.
func (w *Workout) nextOpenDay() int {
	for d := 1; d <= w.DaysPerWeek; d++ {
		if !w.IsDayCompleted(d) {
			return d
		}
	}
	return 1
}
