package nasa

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// tRef is the reference temperature for the standard enthalpy and entropy.
const tRef = 298.15

// SampleFunc evaluates the continuous thermodynamic functions at T
// (kelvin), returning Cp in J/(mol*K), H in J/mol, and S in J/(mol*K).
type SampleFunc func(T float64) (cp, h, s float64, err error)

// FitOptions configures the two-range fit.
type FitOptions struct {
	Tmin, Tmax float64 // validity range, kelvin

	Tmid       float64 // breakpoint when SearchTmid is false
	SearchTmid bool    // search an interior candidate grid instead
	Candidates int     // breakpoint candidates when searching (default 9)

	Points        int     // Cp samples per range (default 50)
	Tolerance     float64 // max acceptable RMS Cp/R residual (default 0.05)
	MaxIterations int     // budget on candidate evaluations (default 25)
}

func (o *FitOptions) withDefaults() FitOptions {
	c := *o
	if c.Points <= 0 {
		c.Points = 50
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 0.05
	}
	if c.Candidates <= 0 {
		c.Candidates = 9
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 25
	}
	if c.Tmid == 0 && !c.SearchTmid {
		c.Tmid = 1000
	}
	return c
}

// candidate holds one evaluated breakpoint.
type candidate struct {
	tmid     float64
	residual float64
	model    *NASA
}

// Fit produces a two-range NASA model from the sampled thermodynamic
// functions. The seven coefficients of each range are determined by a
// least-squares fit of a1..a5 to sampled Cp, with a6/a7 of the low range
// pinned so that H(298.15 K) and S(298.15 K) reproduce the sampled
// standard values and a6/a7 of the high range chosen for H and S
// continuity at the breakpoint. The fit is deterministic: the same samples
// and options always yield the same coefficients.
func Fit(sample SampleFunc, opts FitOptions) (*NASA, error) {
	o := opts.withDefaults()
	if o.Tmin <= 0 || o.Tmin >= o.Tmax {
		return nil, eris.Errorf("nasa: invalid fit range [%g, %g]", o.Tmin, o.Tmax)
	}
	// The sample function is the continuous thermodynamic model, so the
	// standard state is evaluable even when 298.15 K lies outside the
	// polynomial validity range (e.g. the conventional 300 K Tlow).
	_, h298, s298, err := sample(tRef)
	if err != nil {
		return nil, eris.Wrap(err, "nasa: sample standard state")
	}

	tmids, err := breakpoints(o)
	if err != nil {
		return nil, err
	}

	var evaluated []candidate
	for i, tmid := range tmids {
		if i >= o.MaxIterations {
			// Budget exhausted with candidates still untried.
			if best := bestCandidate(evaluated, o); best != nil && best.residual <= o.Tolerance {
				break
			}
			return nil, &FitDidNotConvergeError{Iterations: o.MaxIterations}
		}
		m, residual, err := fitAt(sample, tmid, h298, s298, o)
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, candidate{tmid: tmid, residual: residual, model: m})
	}

	best := bestCandidate(evaluated, o)
	if best == nil {
		return nil, eris.New("nasa: no breakpoint candidates evaluated")
	}
	if best.residual > o.Tolerance {
		return best.model, &PoorFitQualityError{Residual: best.residual, Tolerance: o.Tolerance}
	}
	return best.model, nil
}

// breakpoints returns the breakpoint candidates, rejecting any fixed Tmid
// on or outside the range boundary.
func breakpoints(o FitOptions) ([]float64, error) {
	if !o.SearchTmid {
		if o.Tmid <= o.Tmin || o.Tmid >= o.Tmax {
			return nil, eris.Errorf("nasa: breakpoint %g K must lie strictly inside [%g, %g]", o.Tmid, o.Tmin, o.Tmax)
		}
		return []float64{o.Tmid}, nil
	}
	// Interior grid: exclude both endpoints.
	out := make([]float64, o.Candidates)
	step := (o.Tmax - o.Tmin) / float64(o.Candidates+1)
	for i := range out {
		out[i] = o.Tmin + step*float64(i+1)
	}
	return out, nil
}

// bestCandidate applies the selection rule: among candidates within the
// tolerance, the one closest to the range midpoint (stability over
// marginal accuracy gain); otherwise the smallest residual.
func bestCandidate(evaluated []candidate, o FitOptions) *candidate {
	if len(evaluated) == 0 {
		return nil
	}
	mid := (o.Tmin + o.Tmax) / 2
	var best *candidate
	for i := range evaluated {
		c := &evaluated[i]
		if c.residual > o.Tolerance {
			continue
		}
		if best == nil || math.Abs(c.tmid-mid) < math.Abs(best.tmid-mid) {
			best = c
		}
	}
	if best != nil {
		return best
	}
	for i := range evaluated {
		c := &evaluated[i]
		if best == nil || c.residual < best.residual {
			best = c
		}
	}
	return best
}

// fitAt fits both ranges for a single breakpoint and reports the joint
// RMS Cp/R residual, which also accounts for any Cp discontinuity at the
// breakpoint since the breakpoint sample appears in both ranges.
func fitAt(sample SampleFunc, tmid, h298, s298 float64, o FitOptions) (*NASA, float64, error) {
	lowT := linspace(o.Tmin, tmid, o.Points)
	highT := linspace(tmid, o.Tmax, o.Points)

	lowCp, err := sampleCpR(sample, lowT)
	if err != nil {
		return nil, 0, err
	}
	highCp, err := sampleCpR(sample, highT)
	if err != nil {
		return nil, 0, err
	}

	lowA, lowRSS, err := solveCp(lowT, lowCp)
	if err != nil {
		return nil, 0, err
	}
	highA, highRSS, err := solveCp(highT, highCp)
	if err != nil {
		return nil, 0, err
	}

	low := Polynomial{
		Coeffs: append(lowA, 0, 0),
		Tmin:   quantity.MustNew(o.Tmin, "K"),
		Tmax:   quantity.MustNew(tmid, "K"),
	}
	high := Polynomial{
		Coeffs: append(highA, 0, 0),
		Tmin:   quantity.MustNew(tmid, "K"),
		Tmax:   quantity.MustNew(o.Tmax, "K"),
	}

	// Integration constants: pin the low range to the standard state, then
	// carry H and S continuously across the breakpoint.
	low.Coeffs[5] = h298/gasConstant - tRef*polyH(low.Coeffs, tRef)
	low.Coeffs[6] = s298/gasConstant - polyS(low.Coeffs, tRef)
	high.Coeffs[5] = low.H(tmid)/gasConstant - tmid*polyH(high.Coeffs, tmid)
	high.Coeffs[6] = low.S(tmid)/gasConstant - polyS(high.Coeffs, tmid)

	n := float64(len(lowT) + len(highT))
	residual := math.Sqrt((lowRSS + highRSS) / n)

	jump := math.Abs(low.CpR(tmid) - high.CpR(tmid))
	if jump > residual {
		residual = jump
	}

	return &NASA{Low: low, High: high}, residual, nil
}

// polyH evaluates the a1..a5 part of H/RT.
func polyH(a []float64, T float64) float64 {
	return a[0] + T*(a[1]/2+T*(a[2]/3+T*(a[3]/4+T*a[4]/5)))
}

// polyS evaluates the a1..a5 part of S/R.
func polyS(a []float64, T float64) float64 {
	return a[0]*math.Log(T) + T*(a[1]+T*(a[2]/2+T*(a[3]/3+T*a[4]/4)))
}

func sampleCpR(sample SampleFunc, ts []float64) ([]float64, error) {
	out := make([]float64, len(ts))
	for i, t := range ts {
		cp, _, _, err := sample(t)
		if err != nil {
			return nil, eris.Wrapf(err, "nasa: sample at %g K", t)
		}
		out[i] = cp / gasConstant
	}
	return out, nil
}

// tScale normalizes the Vandermonde columns: over a kelvin range the raw
// powers 1..T^4 span ~16 orders of magnitude and the system is numerically
// singular, so the fit runs in tau = T/tScale and the coefficients are
// rescaled back afterwards.
const tScale = 1000.0

// solveCp least-squares fits Cp/R = a1 + a2*T + ... + a5*T^4 over the
// sampled points, returning the coefficients and the residual sum of
// squares.
func solveCp(ts, cpR []float64) ([]float64, float64, error) {
	n := len(ts)
	a := mat.NewDense(n, 5, nil)
	b := mat.NewVecDense(n, nil)
	for i, t := range ts {
		tau := t / tScale
		a.Set(i, 0, 1)
		a.Set(i, 1, tau)
		a.Set(i, 2, tau*tau)
		a.Set(i, 3, tau*tau*tau)
		a.Set(i, 4, tau*tau*tau*tau)
		b.SetVec(i, cpR[i])
	}
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil, 0, eris.Wrap(err, "nasa: least squares")
	}
	coeffs := make([]float64, 5)
	scale := 1.0
	for i := range coeffs {
		coeffs[i] = x.AtVec(i) / scale
		scale *= tScale
	}
	var rss float64
	for i, t := range ts {
		p := Polynomial{Coeffs: append(append([]float64{}, coeffs...), 0, 0)}
		r := p.CpR(t) - cpR[i]
		rss += r * r
	}
	return coeffs, rss, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
