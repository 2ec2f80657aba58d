// Package nasa implements the two-range 7-coefficient NASA polynomial
// representation of Cp, H, and S, the least-squares fitter that produces it
// from sampled thermodynamic functions, and the fixed-column CHEMKIN
// rendering used for interchange with kinetics solvers.
package nasa

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// gasConstant is the molar gas constant R in J/(mol*K).
const gasConstant = 8.314462618

// Polynomial holds seven NASA coefficients a1..a7 valid over [Tmin, Tmax]:
//
//	Cp/R = a1 + a2*T + a3*T^2 + a4*T^3 + a5*T^4
//	H/RT = a1 + a2/2*T + a3/3*T^2 + a4/4*T^3 + a5/5*T^4 + a6/T
//	S/R  = a1*ln(T) + a2*T + a3/2*T^2 + a4/3*T^3 + a5/4*T^4 + a7
type Polynomial struct {
	Coeffs []float64         `yaml:"coefficients"`
	Tmin   quantity.Quantity `yaml:"tmin"`
	Tmax   quantity.Quantity `yaml:"tmax"`
}

// Validate checks the coefficient count and temperature range.
func (p *Polynomial) Validate() error {
	if len(p.Coeffs) != 7 {
		return eris.Errorf("nasa: polynomial has %d coefficients, want 7", len(p.Coeffs))
	}
	if err := p.Tmin.CheckDimensions(quantity.DimTemperature); err != nil {
		return eris.Wrap(err, "nasa: tmin")
	}
	if err := p.Tmax.CheckDimensions(quantity.DimTemperature); err != nil {
		return eris.Wrap(err, "nasa: tmax")
	}
	if p.Tmin.Value >= p.Tmax.Value {
		return eris.Errorf("nasa: tmin %g >= tmax %g", p.Tmin.Value, p.Tmax.Value)
	}
	return nil
}

// CpR evaluates Cp/R at T (kelvin).
func (p *Polynomial) CpR(T float64) float64 {
	a := p.Coeffs
	return a[0] + T*(a[1]+T*(a[2]+T*(a[3]+T*a[4])))
}

// HRT evaluates H/RT at T (kelvin).
func (p *Polynomial) HRT(T float64) float64 {
	a := p.Coeffs
	return a[0] + T*(a[1]/2+T*(a[2]/3+T*(a[3]/4+T*a[4]/5))) + a[5]/T
}

// SR evaluates S/R at T (kelvin).
func (p *Polynomial) SR(T float64) float64 {
	a := p.Coeffs
	return a[0]*math.Log(T) + T*(a[1]+T*(a[2]/2+T*(a[3]/3+T*a[4]/4))) + a[6]
}

// Cp returns the heat capacity in J/(mol*K) at T.
func (p *Polynomial) Cp(T float64) float64 { return gasConstant * p.CpR(T) }

// H returns the enthalpy in J/mol at T.
func (p *Polynomial) H(T float64) float64 { return gasConstant * T * p.HRT(T) }

// S returns the entropy in J/(mol*K) at T.
func (p *Polynomial) S(T float64) float64 { return gasConstant * p.SR(T) }

// polynomials groups the two ranges in the serialized record.
type polynomials struct {
	Low  Polynomial `yaml:"low"`
	High Polynomial `yaml:"high"`
}

// NASA is the fitted two-range model: disjoint contiguous low and high
// polynomials meeting at Tmid, plus the species reference energy E0 and
// the heat-capacity limits of the underlying conformer.
type NASA struct {
	Low   Polynomial
	High  Polynomial
	E0    quantity.Quantity
	Cp0   quantity.Quantity
	CpInf quantity.Quantity
}

type nasaYAML struct {
	Model       string            `yaml:"model"`
	E0          quantity.Quantity `yaml:"e0"`
	Cp0         quantity.Quantity `yaml:"cp0"`
	CpInf       quantity.Quantity `yaml:"cpinf"`
	Polynomials polynomials       `yaml:"polynomials"`
}

// MarshalYAML renders the record-format thermo block.
func (n NASA) MarshalYAML() (any, error) {
	return nasaYAML{
		Model:       "nasa",
		E0:          n.E0,
		Cp0:         n.Cp0,
		CpInf:       n.CpInf,
		Polynomials: polynomials{Low: n.Low, High: n.High},
	}, nil
}

// UnmarshalYAML parses the record-format thermo block.
func (n *NASA) UnmarshalYAML(unmarshal func(any) error) error {
	var raw nasaYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.Model != "nasa" {
		return eris.Errorf("nasa: unsupported thermo model %q", raw.Model)
	}
	n.Low = raw.Polynomials.Low
	n.High = raw.Polynomials.High
	n.E0 = raw.E0
	n.Cp0 = raw.Cp0
	n.CpInf = raw.CpInf
	return nil
}

// Tmin returns the lower validity bound in kelvin.
func (n *NASA) Tmin() float64 { return n.Low.Tmin.Value }

// Tmid returns the breakpoint temperature in kelvin.
func (n *NASA) Tmid() float64 { return n.Low.Tmax.Value }

// Tmax returns the upper validity bound in kelvin.
func (n *NASA) Tmax() float64 { return n.High.Tmax.Value }

// Validate checks both ranges and their contiguity.
func (n *NASA) Validate() error {
	if err := n.Low.Validate(); err != nil {
		return err
	}
	if err := n.High.Validate(); err != nil {
		return err
	}
	if n.Low.Tmax.Value != n.High.Tmin.Value {
		return eris.Errorf("nasa: ranges not contiguous: low ends at %g K, high starts at %g K",
			n.Low.Tmax.Value, n.High.Tmin.Value)
	}
	if err := n.E0.CheckDimensions(quantity.DimMolarEnergy); err != nil {
		return eris.Wrap(err, "nasa: e0")
	}
	return nil
}

// rangeFor selects the polynomial covering T. The breakpoint itself
// belongs to the low range.
func (n *NASA) rangeFor(T float64) (*Polynomial, error) {
	switch {
	case T < n.Tmin() || T > n.Tmax():
		return nil, eris.Errorf("nasa: T = %g K outside validity range [%g, %g]", T, n.Tmin(), n.Tmax())
	case T <= n.Tmid():
		return &n.Low, nil
	default:
		return &n.High, nil
	}
}

// Cp returns the heat capacity in J/(mol*K) at T.
func (n *NASA) Cp(T float64) (float64, error) {
	p, err := n.rangeFor(T)
	if err != nil {
		return 0, err
	}
	return p.Cp(T), nil
}

// H returns the enthalpy in J/mol at T.
func (n *NASA) H(T float64) (float64, error) {
	p, err := n.rangeFor(T)
	if err != nil {
		return 0, err
	}
	return p.H(T), nil
}

// S returns the entropy in J/(mol*K) at T.
func (n *NASA) S(T float64) (float64, error) {
	p, err := n.rangeFor(T)
	if err != nil {
		return 0, err
	}
	return p.S(T), nil
}
