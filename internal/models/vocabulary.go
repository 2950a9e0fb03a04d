package models

import "strings"

// Canonical names stored in the database.
const (
	UnitKilograms = "kg"
	UnitPounds    = "lb"

	CategoryMainLift  = "main_lift"
	CategoryAuxiliary = "auxiliary"
	CategoryAccessory = "accessory"

	EquipmentBarbell      = "barbell"
	EquipmentSmithMachine = "smith_machine"
	EquipmentDumbbell     = "dumbbell"
	EquipmentCable        = "cable"
	EquipmentMachine      = "machine"
	EquipmentBodyweight   = "bodyweight"
)

// unitMap maps lowercased unit spellings found in program files and
// session logs to their canonical form.
var unitMap = map[string]string{
	"kg":        UnitKilograms,
	"kgs":       UnitKilograms,
	"kilo":      UnitKilograms,
	"kilos":     UnitKilograms,
	"kilogram":  UnitKilograms,
	"kilograms": UnitKilograms,

	"lb":     UnitPounds,
	"lbs":    UnitPounds,
	"pound":  UnitPounds,
	"pounds": UnitPounds,
}

var categoryMap = map[string]string{
	"main_lift": CategoryMainLift,
	"main lift": CategoryMainLift,
	"main":      CategoryMainLift,
	"primary":   CategoryMainLift,

	"auxiliary": CategoryAuxiliary,
	"aux":       CategoryAuxiliary,
	"secondary": CategoryAuxiliary,

	"accessory":   CategoryAccessory,
	"accessories": CategoryAccessory,
	"assistance":  CategoryAccessory,
}

var equipmentMap = map[string]string{
	"barbell":       EquipmentBarbell,
	"bb":            EquipmentBarbell,
	"smith_machine": EquipmentSmithMachine,
	"smith machine": EquipmentSmithMachine,
	"smith":         EquipmentSmithMachine,
	"dumbbell":      EquipmentDumbbell,
	"dumbbells":     EquipmentDumbbell,
	"db":            EquipmentDumbbell,
	"cable":         EquipmentCable,
	"machine":       EquipmentMachine,
	"bodyweight":    EquipmentBodyweight,
	"bw":            EquipmentBodyweight,
}

func normalize(m map[string]string, raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := m[lower]; ok {
		return canonical, true
	}
	return raw, false
}

// NormalizeUnit maps a unit spelling to "kg" or "lb". Returns the canonical
// name and true if recognized, or the original string and false if unknown.
func NormalizeUnit(raw string) (string, bool) {
	return normalize(unitMap, raw)
}

// NormalizeCategory maps a category spelling to its canonical name.
func NormalizeCategory(raw string) (string, bool) {
	return normalize(categoryMap, raw)
}

// NormalizeEquipment returns the canonical equipment name. Unknown equipment
// is kept as written, lowercased, since it only matters for AMRAP eligibility.
func NormalizeEquipment(raw string) string {
	if canonical, ok := normalize(equipmentMap, raw); ok {
		return canonical
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
