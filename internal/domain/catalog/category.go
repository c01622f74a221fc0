package catalog

import "fmt"

// Category classifies a material
type Category string

const (
	CategoryWood        Category = "wood"
	CategoryMetal       Category = "metal"
	CategoryHardware    Category = "hardware"
	CategoryFasteners   Category = "fasteners"
	CategoryAdhesives   Category = "adhesives"
	CategoryFinishes    Category = "finishes"
	CategoryFabric      Category = "fabric"
	CategoryGlass       Category = "glass"
	CategoryTools       Category = "tools"
	CategoryConsumables Category = "consumables"
	CategoryOther       Category = "other"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategoryWood,
		CategoryMetal,
		CategoryHardware,
		CategoryFasteners,
		CategoryAdhesives,
		CategoryFinishes,
		CategoryFabric,
		CategoryGlass,
		CategoryTools,
		CategoryConsumables,
		CategoryOther,
	}
}

func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is one of the closed set
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}

// Unit is the unit of measure stock of a material is counted in
type Unit string

const (
	UnitPiece       Unit = "piece"
	UnitMeter       Unit = "meter"
	UnitSquareMeter Unit = "m2"
	UnitCubicMeter  Unit = "m3"
	UnitKilogram    Unit = "kg"
	UnitLiter       Unit = "liter"
	UnitPack        Unit = "pack"
	UnitKit         Unit = "kit"
	UnitRoll        Unit = "roll"
	UnitSheet       Unit = "sheet"
)

// AllUnits returns all valid units of measure
func AllUnits() []Unit {
	return []Unit{
		UnitPiece,
		UnitMeter,
		UnitSquareMeter,
		UnitCubicMeter,
		UnitKilogram,
		UnitLiter,
		UnitPack,
		UnitKit,
		UnitRoll,
		UnitSheet,
	}
}

func (u Unit) String() string {
	return string(u)
}

// IsValid checks if the unit is one of the closed set
func (u Unit) IsValid() bool {
	for _, known := range AllUnits() {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit parses a string into a Unit. "m²" and "m³" are accepted as aliases.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "m²":
		return UnitSquareMeter, nil
	case "m³":
		return UnitCubicMeter, nil
	}
	u := Unit(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid unit: %s", s)
	}
	return u, nil
}
