// Package thermo integrates per-mode partition function contributions
// into heat capacity, enthalpy, and entropy as continuous functions of
// temperature.
package thermo

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/kinetics-tools/thermofit/internal/model"
	"github.com/kinetics-tools/thermofit/internal/quantity"
	"github.com/kinetics-tools/thermofit/internal/statmech"
)

// Point is the thermodynamic state at one temperature, SI molar units.
type Point struct {
	T  float64 // K
	Cp float64 // J/(mol*K)
	H  float64 // J/mol
	S  float64 // J/(mol*K)
}

// Evaluator computes Cp, H, and S for one conformer from the combined
// ln Q and its derivatives:
//
//	Cp = R*(T^2*d2lnQ/dT2 + 2T*dlnQ/dT)
//	H  = E0 + R*T^2*dlnQ/dT
//	S  = R*(lnQ + T*dlnQ/dT)
type Evaluator struct {
	conformer *model.Conformer
	pf        *statmech.Evaluator
	e0        float64 // J/mol
}

// NewEvaluator validates the conformer and prepares a partition-function
// evaluator with the given frequency scale factor.
func NewEvaluator(c *model.Conformer, frequencyScale float64) (*Evaluator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	e0, err := c.E0.ConvertTo("J/mol")
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		conformer: c,
		pf:        statmech.NewEvaluator(frequencyScale),
		e0:        e0.Value,
	}, nil
}

// At evaluates the thermodynamic functions at T (kelvin). A negative
// computed heat capacity is surfaced as a NonPhysicalResultError for
// diagnosis, never clamped.
func (e *Evaluator) At(T float64) (Point, error) {
	r, err := e.pf.Conformer(e.conformer, T)
	if err != nil {
		return Point{}, err
	}
	const R = statmech.GasConstant
	p := Point{
		T:  T,
		Cp: R * (T*T*r.D2LnQ + 2*T*r.DLnQ),
		H:  e.e0 + R*T*T*r.DLnQ,
		S:  R * (r.LnQ + T*r.DLnQ),
	}
	if p.Cp < 0 {
		return p, &NonPhysicalResultError{T: T, Quantity: "Cp", Value: p.Cp}
	}
	return p, nil
}

// Grid evaluates the thermodynamic functions over an arbitrary
// temperature grid.
func (e *Evaluator) Grid(temperatures []float64) ([]Point, error) {
	out := make([]Point, len(temperatures))
	for i, t := range temperatures {
		p, err := e.At(t)
		if err != nil {
			return nil, eris.Wrapf(err, "thermo: grid point %g K", t)
		}
		out[i] = p
	}
	return out, nil
}

// Cp0 returns the T -> 0 heat-capacity limit in J/(mol*K): the classical
// translational and rotational contributions, with every quantized mode
// frozen out.
func Cp0(c *model.Conformer) quantity.Quantity {
	const R = statmech.GasConstant
	var cp float64
	for _, m := range c.Modes {
		switch m.(type) {
		case *model.IdealGasTranslation:
			cp += 2.5 * R
		case *model.LinearRotor:
			cp += R
		case *model.NonlinearRotor:
			cp += 1.5 * R
		}
	}
	return quantity.MustNew(cp, "J/(mol*K)")
}

// CpInf returns the T -> infinity heat-capacity limit in J/(mol*K): Cp0
// plus R per vibrational mode and R/2 per internal rotor (which becomes a
// free classical rotor at high temperature).
func CpInf(c *model.Conformer) quantity.Quantity {
	const R = statmech.GasConstant
	cp := Cp0(c).Value
	for _, m := range c.Modes {
		switch mode := m.(type) {
		case *model.HarmonicOscillator:
			cp += R * float64(mode.Frequencies.Len())
		case *model.HinderedRotor:
			cp += R / 2
		}
	}
	return quantity.MustNew(cp, "J/(mol*K)")
}

// NonPhysicalResultError reports a derived thermodynamic value violating
// a physical bound, e.g. a negative heat capacity.
type NonPhysicalResultError struct {
	T        float64
	Quantity string
	Value    float64
}

func (e *NonPhysicalResultError) Error() string {
	return fmt.Sprintf("non-physical result: %s = %g at %g K", e.Quantity, e.Value, e.T)
}

// IsNonPhysicalResult reports whether the error chain contains a
// NonPhysicalResultError.
func IsNonPhysicalResult(err error) bool {
	var ne *NonPhysicalResultError
	return errors.As(err, &ne)
}
