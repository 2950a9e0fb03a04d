package progression

import (
	"fmt"
	"math"
	"strconv"
)

// Unit is the unit a weight is recorded in. The engine never converts between units.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lb"
)

// DefaultIncrement is the smallest plate jump assumed when none is configured.
const DefaultIncrement = 2.5

// trainingMaxStep is the resolution training maxes are stored at.
const trainingMaxStep = 0.5

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == Kilograms || u == Pounds
}

// Weight is a load with its unit.
type Weight struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// Kg is shorthand for a kilogram weight.
func Kg(v float64) Weight { return Weight{Value: v, Unit: Kilograms} }

// Lb is shorthand for a pound weight.
func Lb(v float64) Weight { return Weight{Value: v, Unit: Pounds} }

func (w Weight) String() string {
	return strconv.FormatFloat(w.Value, 'f', -1, 64) + " " + string(w.Unit)
}

func (w Weight) validate() error {
	if !w.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidState, w.Unit)
	}
	if w.Value < 0 || math.IsNaN(w.Value) || math.IsInf(w.Value, 0) {
		return fmt.Errorf("%w: weight %v must be a non-negative number", ErrInvalidState, w.Value)
	}
	return nil
}

// RoundToIncrement rounds v to the nearest multiple of inc, half-up on exact midpoints.
// A non-positive increment returns v unchanged.
func RoundToIncrement(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	// 1e-9 absorbs float error so that e.g. 101.25 -> 102.5 for inc 2.5.
	steps := math.Floor(v/inc + 0.5 + 1e-9)
	return roundDecimals(steps*inc, 4)
}

// WorkingWeight is trainingMax × intensity rounded to the equipment increment.
func WorkingWeight(trainingMax Weight, intensity, inc float64) Weight {
	return Weight{Value: RoundToIncrement(trainingMax.Value*intensity, inc), Unit: trainingMax.Unit}
}

func roundDecimals(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func formatPercent(fraction float64) string {
	return strconv.FormatFloat(roundDecimals(fraction*100, 2), 'f', -1, 64) + "%"
}
