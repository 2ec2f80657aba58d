package model

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// SingleExponentialDown parameterizes collisional energy transfer as
// <dE_down>(T) = alpha0 * (T/T0)^n. The parameters come from collision
// theory or literature correlation; the model is attached once per species
// and never refit.
type SingleExponentialDown struct {
	Alpha0 quantity.Quantity `yaml:"alpha0"`
	T0     quantity.Quantity `yaml:"t0"`
	N      float64           `yaml:"n"`
}

// Validate checks parameter dimensions and positivity.
func (m *SingleExponentialDown) Validate() error {
	if err := m.Alpha0.CheckDimensions(quantity.DimMolarEnergy); err != nil {
		return eris.Wrap(err, "model: energy transfer alpha0")
	}
	if m.Alpha0.Value <= 0 {
		return eris.Errorf("model: energy transfer alpha0 must be positive, got %g", m.Alpha0.Value)
	}
	if err := m.T0.CheckDimensions(quantity.DimTemperature); err != nil {
		return eris.Wrap(err, "model: energy transfer t0")
	}
	if m.T0.Value <= 0 {
		return eris.Errorf("model: energy transfer t0 must be positive, got %g", m.T0.Value)
	}
	return nil
}

// AverageDownwardEnergy evaluates <dE_down> at temperature T (kelvin),
// returned in alpha0's units.
func (m *SingleExponentialDown) AverageDownwardEnergy(T float64) (quantity.Quantity, error) {
	if err := m.Validate(); err != nil {
		return quantity.Quantity{}, err
	}
	t0K, err := m.T0.ConvertTo("K")
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.Quantity{
		Value: m.Alpha0.Value * math.Pow(T/t0K.Value, m.N),
		Units: m.Alpha0.Units,
	}, nil
}
