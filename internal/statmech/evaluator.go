// Package statmech evaluates partition functions and their temperature
// derivatives for the degree-of-freedom modes of a conformer. Each mode's
// evaluation is a pure function of its own parameters; mode contributions
// combine multiplicatively (additively in ln Q) under the
// rigid-rotor/harmonic-oscillator/separable-internal-rotor approximation.
package statmech

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// Result holds ln Q and its first two temperature derivatives for one
// mode or for a whole conformer.
type Result struct {
	LnQ   float64
	DLnQ  float64 // d(ln Q)/dT, 1/K
	D2LnQ float64 // d^2(ln Q)/dT^2, 1/K^2
}

// add accumulates another contribution (ln of a product).
func (r *Result) add(o Result) {
	r.LnQ += o.LnQ
	r.DLnQ += o.DLnQ
	r.D2LnQ += o.D2LnQ
}

// Evaluator computes partition functions for the modes of a conformer.
// It carries the species-level frequency scale factor and caches the
// per-mode precomputations (torsional eigenvalues, barrier heights) that
// do not depend on temperature. An Evaluator is not safe for concurrent
// use; each species evaluation builds its own.
type Evaluator struct {
	scale    float64
	levels   map[*model.HinderedRotor][]float64
	barriers map[*model.HinderedRotor]*semiclassicalRotor
}

// NewEvaluator builds an evaluator applying the given frequency scale
// factor to all harmonic-oscillator frequencies.
func NewEvaluator(scale float64) *Evaluator {
	if scale <= 0 {
		scale = 1
	}
	return &Evaluator{
		scale:    scale,
		levels:   make(map[*model.HinderedRotor][]float64),
		barriers: make(map[*model.HinderedRotor]*semiclassicalRotor),
	}
}

// Mode evaluates one mode at temperature T (kelvin).
func (e *Evaluator) Mode(m model.Mode, T float64) (Result, error) {
	if T <= 0 {
		return Result{}, eris.Errorf("statmech: temperature must be positive, got %g K", T)
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	switch mode := m.(type) {
	case *model.IdealGasTranslation:
		return e.translation(mode, T)
	case *model.LinearRotor:
		return e.linearRotor(mode, T)
	case *model.NonlinearRotor:
		return e.nonlinearRotor(mode, T)
	case *model.HarmonicOscillator:
		return e.harmonicOscillator(mode, T)
	case *model.HinderedRotor:
		return e.hinderedRotor(mode, T)
	default:
		return Result{}, &UnsupportedModeError{Mode: m.Name()}
	}
}

// Conformer evaluates and combines all modes of the conformer at T,
// including the temperature-independent electronic degeneracy
// (spin multiplicity times optical isomer count).
func (e *Evaluator) Conformer(c *model.Conformer, T float64) (Result, error) {
	var total Result
	for i, m := range c.Modes {
		r, err := e.Mode(m, T)
		if err != nil {
			return Result{}, eris.Wrapf(err, "statmech: mode %d (%s)", i, m.Name())
		}
		total.add(r)
	}
	g := float64(c.SpinMultiplicity * c.OpticalIsomers)
	if g > 1 {
		total.LnQ += math.Log(g)
	}
	return total, nil
}

// translation: Q = (2*pi*m*kB*T/h^2)^(3/2) * kB*T/P0. The kB*T/P0 molar
// volume makes the summed heat-capacity identity yield Cp directly
// (5R/2 translational: 3R/2 kinetic plus the R pressure-volume term).
func (e *Evaluator) translation(m *model.IdealGasTranslation, T float64) (Result, error) {
	massKg, err := m.Mass.SI()
	if err != nil {
		return Result{}, err
	}
	lnQ := 1.5*math.Log(2*math.Pi*massKg*Boltzmann*T/(Planck*Planck)) +
		math.Log(Boltzmann*T/refPressure)
	return Result{
		LnQ:   lnQ,
		DLnQ:  2.5 / T,
		D2LnQ: -2.5 / (T * T),
	}, nil
}

// linearRotor: classical Q = T / (sigma * theta), theta = hbar^2/(2*I*kB).
func (e *Evaluator) linearRotor(m *model.LinearRotor, T float64) (Result, error) {
	inertia, err := m.Inertia.SI()
	if err != nil {
		return Result{}, err
	}
	theta := HBar * HBar / (2 * inertia * Boltzmann)
	return Result{
		LnQ:   math.Log(T / (theta * float64(m.SymmetryNumber))),
		DLnQ:  1 / T,
		D2LnQ: -1 / (T * T),
	}, nil
}

// nonlinearRotor: classical Q = (sqrt(pi)/sigma) * sqrt(T^3/(tA*tB*tC)).
func (e *Evaluator) nonlinearRotor(m *model.NonlinearRotor, T float64) (Result, error) {
	inertias, err := m.Inertias.SI()
	if err != nil {
		return Result{}, err
	}
	thetaProduct := 1.0
	for _, inertia := range inertias {
		thetaProduct *= HBar * HBar / (2 * inertia * Boltzmann)
	}
	lnQ := 0.5*math.Log(math.Pi) - math.Log(float64(m.SymmetryNumber)) +
		0.5*(3*math.Log(T)-math.Log(thetaProduct))
	return Result{
		LnQ:   lnQ,
		DLnQ:  1.5 / T,
		D2LnQ: -1.5 / (T * T),
	}, nil
}

// harmonicOscillator: per frequency, Q = 1/(1 - exp(-theta/T)) with the
// zero-point energy carried in E0, not in Q. Frequencies are scaled by the
// species frequency scale factor before evaluation.
func (e *Evaluator) harmonicOscillator(m *model.HarmonicOscillator, T float64) (Result, error) {
	waveNumbers, err := m.Frequencies.SI() // m^-1
	if err != nil {
		return Result{}, err
	}
	var r Result
	for _, nu := range waveNumbers {
		theta := Planck * LightSpeed * nu * e.scale / Boltzmann // K
		u := theta / T
		em := math.Exp(-u)
		r.LnQ -= math.Log(1 - em)
		// d(lnQ)/dT = theta/(T^2 (e^u - 1)); second derivative follows.
		// e^u/(e^u-1)^2 is computed as 1/((e^u-1)(1-e^-u)) to stay finite
		// at large u.
		denom := math.Expm1(u)
		r.DLnQ += theta / (T * T * denom)
		r.D2LnQ += -2*theta/(T*T*T*denom) +
			theta*theta/(T*T*T*T*denom*(-math.Expm1(-u)))
	}
	return r, nil
}
