// Package quantity provides unit-tagged physical values. Every value the
// engine passes around carries its unit string; conversions and arithmetic
// check dimensions through gonum's unit package and fail fast on mismatch
// instead of coercing.
package quantity

import (
	"fmt"

	"gonum.org/v1/gonum/unit"
	"gopkg.in/yaml.v3"
)

// Quantity is a scalar physical value tagged with a unit.
type Quantity struct {
	Value float64
	Units string
}

// New builds a Quantity, rejecting unit strings outside the registry.
func New(value float64, units string) (Quantity, error) {
	if _, err := lookup(units); err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Units: units}, nil
}

// MustNew is New for compile-time-known units; it panics on a bad unit
// string and is intended for literals in code, not parsed input.
func MustNew(value float64, units string) Quantity {
	q, err := New(value, units)
	if err != nil {
		panic(err)
	}
	return q
}

// SI returns the value converted to SI base units.
func (q Quantity) SI() (float64, error) {
	def, err := lookup(q.Units)
	if err != nil {
		return 0, err
	}
	return q.Value * def.factor, nil
}

// Dimensions returns the physical dimensions of the quantity's unit.
func (q Quantity) Dimensions() (unit.Dimensions, error) {
	def, err := lookup(q.Units)
	if err != nil {
		return nil, err
	}
	return def.dims, nil
}

// Unit returns the quantity as a gonum *unit.Unit in SI, for derived
// arithmetic (products, ratios) where the result's dimensions are computed
// rather than declared.
func (q Quantity) Unit() (*unit.Unit, error) {
	def, err := lookup(q.Units)
	if err != nil {
		return nil, err
	}
	return unit.New(q.Value*def.factor, def.dims), nil
}

// CheckDimensions verifies the quantity's unit has the expected physical
// dimensions, e.g. when validating a parsed record field.
func (q Quantity) CheckDimensions(want unit.Dimensions) error {
	def, err := lookup(q.Units)
	if err != nil {
		return err
	}
	if !unit.DimensionsMatch(unit.New(1, def.dims), unit.New(1, want)) {
		return &UnitMismatchError{
			Units:  q.Units,
			Reason: fmt.Sprintf("have dimensions %v, want %v", def.dims, want),
		}
	}
	return nil
}

// ConvertTo rescales the quantity into another unit of the same dimensions.
func (q Quantity) ConvertTo(units string) (Quantity, error) {
	from, err := lookup(q.Units)
	if err != nil {
		return Quantity{}, err
	}
	to, err := lookup(units)
	if err != nil {
		return Quantity{}, err
	}
	if !unit.DimensionsMatch(unit.New(1, from.dims), unit.New(1, to.dims)) {
		return Quantity{}, &UnitMismatchError{
			Units:  units,
			Reason: fmt.Sprintf("cannot convert %q to %q", q.Units, units),
		}
	}
	return Quantity{Value: q.Value * from.factor / to.factor, Units: units}, nil
}

// Add returns q + o expressed in q's units. The operands must be
// dimensionally compatible.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	conv, err := o.ConvertTo(q.Units)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value + conv.Value, Units: q.Units}, nil
}

// Sub returns q - o expressed in q's units.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	conv, err := o.ConvertTo(q.Units)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value - conv.Value, Units: q.Units}, nil
}

func (q Quantity) String() string {
	if q.Units == "" {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Units)
}

// quantityYAML is the serialized {value, units} shape from the record
// contract.
type quantityYAML struct {
	Value float64 `yaml:"value"`
	Units string  `yaml:"units"`
}

// MarshalYAML renders the {value, units} map shape.
func (q Quantity) MarshalYAML() (any, error) {
	return quantityYAML{Value: q.Value, Units: q.Units}, nil
}

// UnmarshalYAML accepts either the {value, units} map or, for
// dimensionless fields, a bare scalar.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		q.Value, q.Units = v, ""
		return nil
	}
	var raw quantityYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if _, err := lookup(raw.Units); err != nil {
		return err
	}
	q.Value, q.Units = raw.Value, raw.Units
	return nil
}

// Array is an ordered sequence of values sharing one unit, e.g. a
// frequency list or a mass array.
type Array struct {
	Values []float64
	Units  string
}

// NewArray builds an Array, rejecting unknown unit strings.
func NewArray(values []float64, units string) (Array, error) {
	if _, err := lookup(units); err != nil {
		return Array{}, err
	}
	return Array{Values: values, Units: units}, nil
}

// MustNewArray is NewArray for compile-time-known units.
func MustNewArray(values []float64, units string) Array {
	a, err := NewArray(values, units)
	if err != nil {
		panic(err)
	}
	return a
}

// SI returns all values converted to SI base units.
func (a Array) SI() ([]float64, error) {
	def, err := lookup(a.Units)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		out[i] = v * def.factor
	}
	return out, nil
}

// CheckDimensions verifies the array's unit has the expected dimensions.
func (a Array) CheckDimensions(want unit.Dimensions) error {
	return Quantity{Units: a.Units}.CheckDimensions(want)
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Values) }

type arrayYAML struct {
	Value []float64 `yaml:"value"`
	Units string    `yaml:"units"`
}

// MarshalYAML renders the {value: [...], units} map shape.
func (a Array) MarshalYAML() (any, error) {
	return arrayYAML{Value: a.Values, Units: a.Units}, nil
}

// UnmarshalYAML parses the {value: [...], units} map shape.
func (a *Array) UnmarshalYAML(node *yaml.Node) error {
	var raw arrayYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if _, err := lookup(raw.Units); err != nil {
		return err
	}
	if len(raw.Value) == 0 {
		// An empty sequence decodes to nil so a marshalled zero-value
		// array round-trips to equality.
		raw.Value = nil
	}
	a.Values, a.Units = raw.Value, raw.Units
	return nil
}
