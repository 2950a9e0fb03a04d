package tracker

import (
	"fmt"
	"strings"

	"github.com/claude/ironcycle/internal/models"
	"github.com/claude/ironcycle/internal/progression"
	"github.com/claude/ironcycle/internal/workout"
	"github.com/google/uuid"
)

// WorkoutSpec describes a new workout. It is read from program YAML files by
// the CLI and from JSON request bodies by the HTTP API.
type WorkoutSpec struct {
	Name      string         `json:"name" yaml:"name"`
	Unit      string         `json:"unit" yaml:"unit"`
	Exercises []ExerciseSpec `json:"exercises" yaml:"exercises"`
}

// ExerciseSpec describes one exercise. Exactly one of Linear, RepsPerSet and
// MinimalSets must be set.
type ExerciseSpec struct {
	Name        string           `json:"name" yaml:"name"`
	Category    string           `json:"category" yaml:"category"`
	Equipment   string           `json:"equipment" yaml:"equipment"`
	Day         int              `json:"day" yaml:"day"`
	Order       int              `json:"order" yaml:"order"`
	Linear      *LinearSpec      `json:"linear,omitempty" yaml:"linear,omitempty"`
	RepsPerSet  *RepsPerSetSpec  `json:"reps_per_set,omitempty" yaml:"reps_per_set,omitempty"`
	MinimalSets *MinimalSetsSpec `json:"minimal_sets,omitempty" yaml:"minimal_sets,omitempty"`
}

type LinearSpec struct {
	TrainingMax float64 `json:"training_max" yaml:"training_max"`
	UseAmrap    bool    `json:"use_amrap" yaml:"use_amrap"`
	BaseSets    int     `json:"base_sets" yaml:"base_sets"`
}

type RepsPerSetSpec struct {
	Weight     float64              `json:"weight" yaml:"weight"`
	Sets       int                  `json:"sets" yaml:"sets"`
	TargetSets int                  `json:"target_sets" yaml:"target_sets"`
	RepRange   progression.RepRange `json:"rep_range" yaml:"rep_range"`
	Unilateral bool                 `json:"unilateral" yaml:"unilateral"`
}

type MinimalSetsSpec struct {
	Weight          float64 `json:"weight" yaml:"weight"`
	Sets            int     `json:"sets" yaml:"sets"`
	MinSets         int     `json:"min_sets" yaml:"min_sets"`
	MaxSets         int     `json:"max_sets" yaml:"max_sets"`
	TargetTotalReps int     `json:"target_total_reps" yaml:"target_total_reps"`
}

// build turns the spec into validated exercises.
func (s WorkoutSpec) build(daysPerWeek int) ([]workout.Exercise, error) {
	unit := progression.Kilograms
	if s.Unit != "" {
		u, ok := models.NormalizeUnit(s.Unit)
		if !ok {
			return nil, fmt.Errorf("%w: unknown unit %q", workout.ErrInvalidExercise, s.Unit)
		}
		unit = progression.Unit(u)
	}
	if len(s.Exercises) == 0 {
		return nil, fmt.Errorf("%w: workout has no exercises", workout.ErrInvalidExercise)
	}

	exercises := make([]workout.Exercise, 0, len(s.Exercises))
	for i, es := range s.Exercises {
		state, err := es.state(unit)
		if err != nil {
			return nil, err
		}
		category, ok := models.NormalizeCategory(es.Category)
		if !ok {
			return nil, fmt.Errorf("%w: %s has unknown category %q", workout.ErrInvalidExercise, es.Name, es.Category)
		}
		order := es.Order
		if order == 0 {
			order = i + 1
		}
		ex := workout.Exercise{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(es.Name),
			Category:    workout.Category(category),
			Equipment:   models.NormalizeEquipment(es.Equipment),
			AssignedDay: es.Day,
			OrderInDay:  order,
			Progression: state,
		}
		if err := ex.Validate(daysPerWeek); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func (es ExerciseSpec) state(unit progression.Unit) (progression.State, error) {
	set := 0
	var s progression.Strategy
	if es.Linear != nil {
		set++
		baseSets := es.Linear.BaseSets
		if baseSets == 0 {
			baseSets = 5
		}
		s = &progression.Linear{
			TrainingMax: progression.Weight{Value: es.Linear.TrainingMax, Unit: unit},
			UseAmrap:    es.Linear.UseAmrap,
			BaseSets:    baseSets,
		}
	}
	if es.RepsPerSet != nil {
		set++
		target := es.RepsPerSet.TargetSets
		if target == 0 {
			target = es.RepsPerSet.Sets
		}
		s = &progression.RepsPerSet{
			CurrentWeight: progression.Weight{Value: es.RepsPerSet.Weight, Unit: unit},
			CurrentSets:   es.RepsPerSet.Sets,
			TargetSets:    target,
			RepRange:      es.RepsPerSet.RepRange,
			IsUnilateral:  es.RepsPerSet.Unilateral,
		}
	}
	if es.MinimalSets != nil {
		set++
		s = &progression.MinimalSets{
			CurrentWeight:   progression.Weight{Value: es.MinimalSets.Weight, Unit: unit},
			CurrentSets:     es.MinimalSets.Sets,
			MinSets:         es.MinimalSets.MinSets,
			MaxSets:         es.MinimalSets.MaxSets,
			TargetTotalReps: es.MinimalSets.TargetTotalReps,
		}
	}
	if set != 1 {
		return progression.State{}, fmt.Errorf("%w: %s must define exactly one progression, got %d", workout.ErrInvalidExercise, es.Name, set)
	}
	return progression.NewState(s), nil
}
