package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// oxygenConformer builds a minimal valid linear molecule.
func oxygenConformer() *Conformer {
	return &Conformer{
		E0: quantity.MustNew(0, "kJ/mol"),
		Modes: []Mode{
			&IdealGasTranslation{Mass: quantity.MustNew(31.99, "amu")},
			&LinearRotor{Inertia: quantity.MustNew(11.71, "amu*angstrom^2"), SymmetryNumber: 2},
			&HarmonicOscillator{Frequencies: quantity.MustNewArray([]float64{1580.2}, "cm^-1")},
		},
		Coordinates: Coordinates{
			Values: [][3]float64{{0, 0, 0}, {0, 0, 1.21}},
			Units:  "angstrom",
		},
		Mass:             quantity.MustNewArray([]float64{15.995, 15.995}, "amu"),
		Number:           []int{8, 8},
		SpinMultiplicity: 3,
		OpticalIsomers:   1,
	}
}

func TestConformer_Validate(t *testing.T) {
	require.NoError(t, oxygenConformer().Validate())
}

func TestConformer_Validate_ArrayLengthMismatch(t *testing.T) {
	c := oxygenConformer()
	c.Number = []int{8}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arrays disagree")
}

func TestConformer_Validate_BadDegeneracies(t *testing.T) {
	c := oxygenConformer()
	c.SpinMultiplicity = 0
	assert.Error(t, c.Validate())

	c = oxygenConformer()
	c.OpticalIsomers = -1
	assert.Error(t, c.Validate())
}

func TestConformer_Validate_NoModes(t *testing.T) {
	c := oxygenConformer()
	c.Modes = nil
	assert.Error(t, c.Validate())
}

func TestConformer_Validate_WrongE0Units(t *testing.T) {
	c := oxygenConformer()
	c.E0 = quantity.MustNew(0, "K")
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, quantity.IsUnitMismatch(err))
}

func TestMode_Validate_NonPositiveParameters(t *testing.T) {
	var mpe *InvalidModeParameterError

	m := &IdealGasTranslation{Mass: quantity.MustNew(-5, "amu")}
	err := m.Validate()
	require.Error(t, err)
	assert.True(t, errors.As(err, &mpe))

	r := &LinearRotor{Inertia: quantity.MustNew(10, "amu*angstrom^2"), SymmetryNumber: 0}
	err = r.Validate()
	require.Error(t, err)
	assert.True(t, errors.As(err, &mpe))
	assert.Equal(t, "symmetry", mpe.Param)

	h := &HarmonicOscillator{Frequencies: quantity.MustNewArray([]float64{500, -1}, "cm^-1")}
	assert.Error(t, h.Validate())
}

func TestNonlinearRotor_Validate_NeedsThreeMoments(t *testing.T) {
	m := &NonlinearRotor{
		Inertias:       quantity.MustNewArray([]float64{5.3, 15.2}, "amu*angstrom^2"),
		SymmetryNumber: 1,
	}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 principal moments")
}

func TestFourierPotential_Validate(t *testing.T) {
	p := FourierPotential{
		Cosine: quantity.MustNewArray([]float64{-5.0, 0.1, 1.2}, "kJ/mol"),
		Sine:   quantity.MustNewArray([]float64{0.02}, "kJ/mol"),
	}
	require.NoError(t, p.Validate())

	p.Sine = quantity.MustNewArray([]float64{1, 2, 3, 4}, "kJ/mol")
	assert.Error(t, p.Validate())

	p = FourierPotential{Cosine: quantity.MustNewArray(nil, "kJ/mol")}
	assert.Error(t, p.Validate())
}

func TestConformer_YAMLRoundTrip(t *testing.T) {
	in := oxygenConformer()
	in.Modes = append(in.Modes, &HinderedRotor{
		Potential: FourierPotential{
			Cosine: quantity.MustNewArray([]float64{-6.1, 0.3}, "kJ/mol"),
		},
		Inertia:        quantity.MustNew(2.9, "amu*angstrom^2"),
		SymmetryNumber: 3,
		Quantum:        true,
	})

	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Conformer
	require.NoError(t, yaml.Unmarshal(data, &out))

	require.Len(t, out.Modes, 4)
	assert.Equal(t, in.E0, out.E0)
	assert.Equal(t, in.Mass, out.Mass)
	assert.Equal(t, in.Number, out.Number)
	assert.Equal(t, in.Coordinates, out.Coordinates)
	for i := range in.Modes {
		assert.Equal(t, in.Modes[i], out.Modes[i], "mode %d", i)
	}

	// A second render must be byte-identical.
	again, err := yaml.Marshal(&out)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestConformer_UnknownModeType(t *testing.T) {
	src := `
e0: {value: 0, units: kJ/mol}
modes:
  - type: anharmonic_oscillator
    frequencies: {value: [100], units: cm^-1}
spin_multiplicity: 1
optical_isomers: 1
`
	var c Conformer
	err := yaml.Unmarshal([]byte(src), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode type")
}
