package workout

import (
	"fmt"
	"strings"

	"github.com/claude/ironcycle/internal/progression"
	"github.com/google/uuid"
)

// Category groups exercises by role in a training day.
type Category string

const (
	MainLift  Category = "main_lift"
	Auxiliary Category = "auxiliary"
	Accessory Category = "accessory"
)

// Equipment values that support AMRAP-driven linear progression.
const (
	EquipmentBarbell      = "barbell"
	EquipmentSmithMachine = "smith_machine"
)

// Exercise binds an identity and a day slot to one progression strategy.
type Exercise struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Category    Category          `json:"category"`
	Equipment   string            `json:"equipment,omitempty"`
	AssignedDay int               `json:"assigned_day"`
	OrderInDay  int               `json:"order_in_day"`
	Progression progression.State `json:"progression"`
}

// AllowsStrategy reports whether a category may use the given progression type.
func (c Category) AllowsStrategy(k progression.Kind) bool {
	switch c {
	case MainLift, Auxiliary:
		return k == progression.KindLinear || k == progression.KindRepsPerSet
	case Accessory:
		return k == progression.KindRepsPerSet || k == progression.KindMinimalSets
	default:
		return false
	}
}

// SupportsAmrap reports whether the equipment can be safely taken to an AMRAP set.
func SupportsAmrap(equipment string) bool {
	switch strings.ToLower(equipment) {
	case EquipmentBarbell, EquipmentSmithMachine:
		return true
	default:
		return false
	}
}

// Validate checks the exercise against the program's day range and the
// category/strategy/equipment rules.
func (e *Exercise) Validate(daysPerWeek int) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	}
	if e.AssignedDay < 1 || e.AssignedDay > daysPerWeek {
		return fmt.Errorf("%w: %s assigned to day %d, program has %d days", ErrInvalidExercise, e.Name, e.AssignedDay, daysPerWeek)
	}
	if err := e.Progression.Validate(); err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}
	kind := e.Progression.Kind()
	if !e.Category.AllowsStrategy(kind) {
		return fmt.Errorf("%w: %s (%s) cannot use %s progression", ErrInvalidExercise, e.Name, e.Category, kind)
	}
	if l, ok := e.Progression.Strategy.(*progression.Linear); ok && l.UseAmrap && !SupportsAmrap(e.Equipment) {
		return fmt.Errorf("%w: %s uses AMRAP but equipment %q does not support it", ErrInvalidExercise, e.Name, e.Equipment)
	}
	return nil
}

func (e Exercise) clone() Exercise {
	e.Progression = e.Progression.Clone()
	return e
}
