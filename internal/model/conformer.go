// Package model holds the data types of the thermodynamic-property engine:
// conformers and their degree-of-freedom modes, the collisional energy
// transfer model, and the serialized species record contract.
package model

import (
	"fmt"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// Mode is one degree of freedom of a conformer. It is a closed tagged
// variant: the concrete types below are the only implementations, and the
// partition-function evaluator switches over them rather than dispatching
// through the interface.
type Mode interface {
	// Name returns the record-format type tag for the mode.
	Name() string
	// Validate checks the mode's physical parameters.
	Validate() error
}

// Mode type tags used in the serialized record.
const (
	ModeIdealGasTranslation = "ideal_gas_translation"
	ModeLinearRotor         = "linear_rotor"
	ModeNonlinearRotor      = "nonlinear_rotor"
	ModeHarmonicOscillator  = "harmonic_oscillator"
	ModeHinderedRotor       = "hindered_rotor"
)

// IdealGasTranslation is the translational mode of an ideal-gas molecule.
type IdealGasTranslation struct {
	Mass quantity.Quantity `yaml:"mass"`
}

func (m *IdealGasTranslation) Name() string { return ModeIdealGasTranslation }

func (m *IdealGasTranslation) Validate() error {
	if err := m.Mass.CheckDimensions(quantity.DimMass); err != nil {
		return err
	}
	if m.Mass.Value <= 0 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "mass", Value: m.Mass.Value}
	}
	return nil
}

// LinearRotor is a linear rigid rotor with a single principal moment of
// inertia and an external symmetry number.
type LinearRotor struct {
	Inertia        quantity.Quantity `yaml:"inertia"`
	SymmetryNumber int               `yaml:"symmetry"`
}

func (m *LinearRotor) Name() string { return ModeLinearRotor }

func (m *LinearRotor) Validate() error {
	if err := m.Inertia.CheckDimensions(quantity.DimInertia); err != nil {
		return err
	}
	if m.Inertia.Value <= 0 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "inertia", Value: m.Inertia.Value}
	}
	if m.SymmetryNumber < 1 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "symmetry", Value: float64(m.SymmetryNumber)}
	}
	return nil
}

// NonlinearRotor is a nonlinear rigid rotor with three principal moments
// of inertia and an external symmetry number.
type NonlinearRotor struct {
	Inertias       quantity.Array `yaml:"inertia"`
	SymmetryNumber int            `yaml:"symmetry"`
}

func (m *NonlinearRotor) Name() string { return ModeNonlinearRotor }

func (m *NonlinearRotor) Validate() error {
	if err := m.Inertias.CheckDimensions(quantity.DimInertia); err != nil {
		return err
	}
	if m.Inertias.Len() != 3 {
		return eris.Errorf("model: nonlinear rotor needs 3 principal moments, got %d", m.Inertias.Len())
	}
	for _, v := range m.Inertias.Values {
		if v <= 0 {
			return &InvalidModeParameterError{Mode: m.Name(), Param: "inertia", Value: v}
		}
	}
	if m.SymmetryNumber < 1 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "symmetry", Value: float64(m.SymmetryNumber)}
	}
	return nil
}

// HarmonicOscillator carries one or more vibrational frequencies, each an
// independent quantum harmonic mode. Frequencies are stored unscaled; the
// species-level scale factor is applied at evaluation time.
type HarmonicOscillator struct {
	Frequencies quantity.Array `yaml:"frequencies"`
}

func (m *HarmonicOscillator) Name() string { return ModeHarmonicOscillator }

func (m *HarmonicOscillator) Validate() error {
	if err := m.Frequencies.CheckDimensions(quantity.DimInverseLength); err != nil {
		return err
	}
	if m.Frequencies.Len() == 0 {
		return eris.New("model: harmonic oscillator has no frequencies")
	}
	for _, v := range m.Frequencies.Values {
		if v <= 0 {
			return &InvalidModeParameterError{Mode: m.Name(), Param: "frequency", Value: v}
		}
	}
	return nil
}

// FourierPotential is a truncated Fourier series
// V(phi) = sum_k A_k cos(k phi) + B_k sin(k phi), in molar energy units.
// Cosine and Sine share the same unit; Sine may be shorter (missing terms
// are zero).
type FourierPotential struct {
	Cosine quantity.Array `yaml:"cosine"`
	Sine   quantity.Array `yaml:"sine"`
}

// Validate checks the potential's units and shape.
func (p *FourierPotential) Validate() error {
	if err := p.Cosine.CheckDimensions(quantity.DimMolarEnergy); err != nil {
		return err
	}
	if p.Cosine.Len() == 0 {
		return eris.New("model: fourier potential has no cosine terms")
	}
	if p.Sine.Len() > 0 {
		if err := p.Sine.CheckDimensions(quantity.DimMolarEnergy); err != nil {
			return err
		}
		if p.Sine.Len() > p.Cosine.Len() {
			return eris.Errorf("model: fourier potential has %d sine terms but only %d cosine terms",
				p.Sine.Len(), p.Cosine.Len())
		}
	}
	return nil
}

// HinderedRotor is an internal (torsional) rotation over a non-trivial
// potential. Quantum selects the eigenvalue-sum treatment; when false the
// semiclassical Pitzer-Gwinn blend is used. The flag is honored exactly,
// never substituted.
type HinderedRotor struct {
	Potential      FourierPotential  `yaml:"potential"`
	Inertia        quantity.Quantity `yaml:"inertia"`
	SymmetryNumber int               `yaml:"symmetry"`
	Quantum        bool              `yaml:"quantum"`
}

func (m *HinderedRotor) Name() string { return ModeHinderedRotor }

func (m *HinderedRotor) Validate() error {
	if err := m.Inertia.CheckDimensions(quantity.DimInertia); err != nil {
		return err
	}
	if m.Inertia.Value <= 0 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "inertia", Value: m.Inertia.Value}
	}
	if m.SymmetryNumber < 1 {
		return &InvalidModeParameterError{Mode: m.Name(), Param: "symmetry", Value: float64(m.SymmetryNumber)}
	}
	return m.Potential.Validate()
}

// Coordinates is the molecular geometry: one 3-vector per atom, ordered
// consistently with the conformer's mass and atomic-number arrays.
type Coordinates struct {
	Values [][3]float64
	Units  string
}

type coordinatesYAML struct {
	Value [][3]float64 `yaml:"value"`
	Units string       `yaml:"units"`
}

// MarshalYAML renders the {value: [[x,y,z],...], units} shape.
func (c Coordinates) MarshalYAML() (any, error) {
	return coordinatesYAML{Value: c.Values, Units: c.Units}, nil
}

// UnmarshalYAML parses the {value: [[x,y,z],...], units} shape.
func (c *Coordinates) UnmarshalYAML(node *yaml.Node) error {
	var raw coordinatesYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if !quantity.KnownUnit(raw.Units) {
		return &quantity.UnitMismatchError{Units: raw.Units, Reason: "unknown unit"}
	}
	c.Values, c.Units = raw.Value, raw.Units
	return nil
}

// Validate checks the geometry's units.
func (c Coordinates) Validate() error {
	return quantity.Quantity{Units: c.Units}.CheckDimensions(quantity.DimLength)
}

// Conformer is one spatial/vibrational configuration of a species: its
// geometry and mass distribution, the ordered set of degree-of-freedom
// modes, the zero-point-corrected electronic energy E0, and the electronic
// degeneracy counts.
type Conformer struct {
	E0               quantity.Quantity
	Modes            []Mode
	Coordinates      Coordinates
	Mass             quantity.Array
	Number           []int
	SpinMultiplicity int
	OpticalIsomers   int
}

// Validate checks structural consistency: equal-length atom arrays,
// positive degeneracies, dimensionally correct units, and valid modes.
func (c *Conformer) Validate() error {
	if err := c.E0.CheckDimensions(quantity.DimMolarEnergy); err != nil {
		return eris.Wrap(err, "model: conformer e0")
	}
	n := len(c.Coordinates.Values)
	if c.Mass.Len() != n || len(c.Number) != n {
		return eris.Errorf("model: conformer arrays disagree: %d coordinates, %d masses, %d atomic numbers",
			n, c.Mass.Len(), len(c.Number))
	}
	if n > 0 {
		if err := c.Coordinates.Validate(); err != nil {
			return eris.Wrap(err, "model: conformer coordinates")
		}
		if err := c.Mass.CheckDimensions(quantity.DimMass); err != nil {
			return eris.Wrap(err, "model: conformer mass")
		}
	}
	if c.SpinMultiplicity < 1 {
		return eris.Errorf("model: spin multiplicity must be >= 1, got %d", c.SpinMultiplicity)
	}
	if c.OpticalIsomers < 1 {
		return eris.Errorf("model: optical isomer count must be >= 1, got %d", c.OpticalIsomers)
	}
	if len(c.Modes) == 0 {
		return eris.New("model: conformer has no modes")
	}
	for i, m := range c.Modes {
		if err := m.Validate(); err != nil {
			return eris.Wrapf(err, "model: mode %d (%s)", i, m.Name())
		}
	}
	return nil
}

// AtomCount returns the number of atoms in the geometry.
func (c *Conformer) AtomCount() int { return len(c.Coordinates.Values) }

// conformerYAML mirrors Conformer with modes held as raw nodes so the
// type-tagged variants can be decoded individually.
type conformerYAML struct {
	E0               quantity.Quantity `yaml:"e0"`
	Modes            []yaml.Node       `yaml:"modes"`
	Coordinates      Coordinates       `yaml:"coordinates"`
	Mass             quantity.Array    `yaml:"mass"`
	Number           []int             `yaml:"number"`
	SpinMultiplicity int               `yaml:"spin_multiplicity"`
	OpticalIsomers   int               `yaml:"optical_isomers"`
}

// UnmarshalYAML decodes a conformer, dispatching each mode on its type tag.
func (c *Conformer) UnmarshalYAML(node *yaml.Node) error {
	var raw conformerYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	modes := make([]Mode, 0, len(raw.Modes))
	for i := range raw.Modes {
		m, err := unmarshalMode(&raw.Modes[i])
		if err != nil {
			return eris.Wrapf(err, "model: mode %d", i)
		}
		modes = append(modes, m)
	}
	c.E0 = raw.E0
	c.Modes = modes
	c.Coordinates = raw.Coordinates
	c.Mass = raw.Mass
	c.Number = raw.Number
	c.SpinMultiplicity = raw.SpinMultiplicity
	c.OpticalIsomers = raw.OpticalIsomers
	return nil
}

// MarshalYAML encodes a conformer, tagging each mode with its type.
func (c Conformer) MarshalYAML() (any, error) {
	modes := make([]yaml.Node, len(c.Modes))
	for i, m := range c.Modes {
		n, err := marshalMode(m)
		if err != nil {
			return nil, err
		}
		modes[i] = *n
	}
	return conformerYAML{
		E0:               c.E0,
		Modes:            modes,
		Coordinates:      c.Coordinates,
		Mass:             c.Mass,
		Number:           c.Number,
		SpinMultiplicity: c.SpinMultiplicity,
		OpticalIsomers:   c.OpticalIsomers,
	}, nil
}

func unmarshalMode(node *yaml.Node) (Mode, error) {
	var tag struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&tag); err != nil {
		return nil, err
	}
	var m Mode
	switch tag.Type {
	case ModeIdealGasTranslation:
		m = &IdealGasTranslation{}
	case ModeLinearRotor:
		m = &LinearRotor{}
	case ModeNonlinearRotor:
		m = &NonlinearRotor{}
	case ModeHarmonicOscillator:
		m = &HarmonicOscillator{}
	case ModeHinderedRotor:
		m = &HinderedRotor{}
	default:
		return nil, eris.Errorf("model: unknown mode type %q", tag.Type)
	}
	if err := node.Decode(m); err != nil {
		return nil, err
	}
	return m, nil
}

func marshalMode(m Mode) (*yaml.Node, error) {
	var body yaml.Node
	if err := body.Encode(m); err != nil {
		return nil, err
	}
	var key, val yaml.Node
	if err := key.Encode("type"); err != nil {
		return nil, err
	}
	if err := val.Encode(m.Name()); err != nil {
		return nil, err
	}
	body.Content = append([]*yaml.Node{&key, &val}, body.Content...)
	return &body, nil
}

// InvalidModeParameterError reports malformed spectroscopic input: a
// non-positive frequency, inertia, mass, or symmetry number.
type InvalidModeParameterError struct {
	Mode  string
	Param string
	Value float64
}

func (e *InvalidModeParameterError) Error() string {
	return fmt.Sprintf("invalid %s parameter %s = %g (must be positive)", e.Mode, e.Param, e.Value)
}
