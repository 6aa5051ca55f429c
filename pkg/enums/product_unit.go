package enums

import "fmt"

// ProductUnit is the unit a product is priced and ordered in.
type ProductUnit string

const (
	ProductUnitKilogram ProductUnit = "kg"
	ProductUnitGram     ProductUnit = "gram"
	ProductUnitPiece    ProductUnit = "piece"
	ProductUnitLiter    ProductUnit = "liter"
	ProductUnitBox      ProductUnit = "box"
	ProductUnitPackage  ProductUnit = "package"
)

var validProductUnits = []ProductUnit{
	ProductUnitKilogram,
	ProductUnitGram,
	ProductUnitPiece,
	ProductUnitLiter,
	ProductUnitBox,
	ProductUnitPackage,
}

// String implements fmt.Stringer.
func (p ProductUnit) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductUnit.
func (p ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
