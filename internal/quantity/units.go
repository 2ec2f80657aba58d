package quantity

import (
	"gonum.org/v1/gonum/unit"
)

// unitDef describes one recognized unit string: the factor converting a
// value in that unit to SI base units, and its physical dimensions.
type unitDef struct {
	factor float64
	dims   unit.Dimensions
}

// Dimension maps for the physical quantities the engine works with.
// Per-mole units carry MoleDim -1 so that J/mol and J cannot be mixed.
var (
	DimDimensionless = unit.Dimensions{}
	DimTemperature   = unit.Dimensions{unit.TemperatureDim: 1}
	DimMass          = unit.Dimensions{unit.MassDim: 1}
	DimMolarMass     = unit.Dimensions{unit.MassDim: 1, unit.MoleDim: -1}
	DimLength        = unit.Dimensions{unit.LengthDim: 1}
	DimInverseLength = unit.Dimensions{unit.LengthDim: -1}
	DimInertia       = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2}
	DimMolarEnergy   = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2, unit.MoleDim: -1}
	DimMolarEntropy  = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2, unit.MoleDim: -1, unit.TemperatureDim: -1}
)

const (
	amuToKg     = 1.66053906660e-27
	angstromToM = 1.0e-10
	calToJ      = 4.184
)

// registry is the set of unit strings the engine accepts. Values convert
// to SI on multiplication by factor.
var registry = map[string]unitDef{
	"": {1, DimDimensionless},

	"K": {1, DimTemperature},

	"kg":     {1, DimMass},
	"g":      {1e-3, DimMass},
	"amu":    {amuToKg, DimMass},
	"g/mol":  {1e-3, DimMolarMass},
	"kg/mol": {1, DimMolarMass},

	"m":        {1, DimLength},
	"cm":       {1e-2, DimLength},
	"angstrom": {angstromToM, DimLength},

	"m^-1":  {1, DimInverseLength},
	"cm^-1": {100, DimInverseLength},

	"kg*m^2":         {1, DimInertia},
	"amu*angstrom^2": {amuToKg * angstromToM * angstromToM, DimInertia},

	"J/mol":    {1, DimMolarEnergy},
	"kJ/mol":   {1e3, DimMolarEnergy},
	"cal/mol":  {calToJ, DimMolarEnergy},
	"kcal/mol": {calToJ * 1e3, DimMolarEnergy},

	"J/(mol*K)":   {1, DimMolarEntropy},
	"kJ/(mol*K)":  {1e3, DimMolarEntropy},
	"cal/(mol*K)": {calToJ, DimMolarEntropy},
}

// lookup resolves a unit string, returning a UnitMismatchError for strings
// outside the registry.
func lookup(units string) (unitDef, error) {
	def, ok := registry[units]
	if !ok {
		return unitDef{}, &UnitMismatchError{Units: units, Reason: "unknown unit"}
	}
	return def, nil
}

// KnownUnit reports whether the given unit string is in the registry.
func KnownUnit(units string) bool {
	_, ok := registry[units]
	return ok
}
