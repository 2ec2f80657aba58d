package statmech

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// torsionalBasisSize is the free-rotor basis half-width M for the quantum
// treatment: basis functions exp(i*m*phi), m = -M..M.
const torsionalBasisSize = 100

// potentialGridPoints samples the Fourier potential when extracting the
// barrier height and well-bottom curvature for the semiclassical blend.
const potentialGridPoints = 1024

// hinderedRotor dispatches on the explicit quantum/semiclassical flag.
// The two treatments are a genuine algorithmic branch (eigenvalue solve
// versus closed-form blend); neither substitutes for the other.
func (e *Evaluator) hinderedRotor(m *model.HinderedRotor, T float64) (Result, error) {
	if m.Quantum {
		return e.quantumHinderedRotor(m, T)
	}
	return e.semiclassicalHinderedRotor(m, T)
}

// quantumHinderedRotor sums Boltzmann factors over the eigenvalues of the
// 1-D torsional Hamiltonian, referenced to the torsional ground state
// (the zero-point energy lives in E0). Derivatives follow from the exact
// identities d(lnQ)/dT = <E>/kB*T^2 and
// d2(lnQ)/dT2 = Var(E)/kB^2*T^4 - 2<E>/kB*T^3.
func (e *Evaluator) quantumHinderedRotor(m *model.HinderedRotor, T float64) (Result, error) {
	energies, ok := e.levels[m]
	if !ok {
		var err error
		energies, err = torsionalLevels(m)
		if err != nil {
			return Result{}, err
		}
		e.levels[m] = energies
	}

	beta := 1 / (Boltzmann * T)
	var q, sumE, sumE2 float64
	for _, energy := range energies {
		w := math.Exp(-energy * beta)
		q += w
		sumE += energy * w
		sumE2 += energy * energy * w
	}
	if q <= 0 {
		return Result{}, eris.New("statmech: torsional partition function vanished")
	}
	meanE := sumE / q
	varE := sumE2/q - meanE*meanE

	// The embedding in torsionalLevels doubles every level; the factor 2
	// cancels in the <E> and Var(E) averages and is divided out here.
	sigma := float64(m.SymmetryNumber)
	return Result{
		LnQ:   math.Log(q / (2 * sigma)),
		DLnQ:  meanE / (Boltzmann * T * T),
		D2LnQ: varE/(Boltzmann*Boltzmann*T*T*T*T) - 2*meanE/(Boltzmann*T*T*T),
	}, nil
}

// torsionalLevels diagonalizes the torsional Hamiltonian in the free-rotor
// basis. The Hermitian matrix H = R + iC (R symmetric from the kinetic
// term and cosine couplings, C antisymmetric from the sine couplings) is
// embedded as the real symmetric 2N x 2N matrix [[R, -C], [C, R]], whose
// spectrum is that of H with every level doubled. The doubled levels are
// kept; the duplication cancels in every Boltzmann average and is divided
// out of ln Q.
func torsionalLevels(m *model.HinderedRotor) ([]float64, error) {
	inertia, err := m.Inertia.SI()
	if err != nil {
		return nil, err
	}
	cosine, err := m.Potential.Cosine.SI() // J/mol
	if err != nil {
		return nil, err
	}
	var sine []float64
	if m.Potential.Sine.Len() > 0 {
		sine, err = m.Potential.Sine.SI()
		if err != nil {
			return nil, err
		}
	}

	const mMax = torsionalBasisSize
	n := 2*mMax + 1

	r := mat.NewDense(n, n, nil)
	c := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		mi := float64(i - mMax)
		r.Set(i, i, HBar*HBar*mi*mi/(2*inertia))
	}
	couple := func(k int, a, b float64) {
		// <m|cos k phi|m'> = (d_{m,m'+k} + d_{m,m'-k})/2
		// <m|sin k phi|m'> = -i(d_{m,m'+k} - d_{m,m'-k})/2
		ak := a / Avogadro // J per molecule
		bk := b / Avogadro
		for i := 0; i+k < n; i++ {
			j := i + k
			r.Set(i, j, r.At(i, j)+ak/2)
			r.Set(j, i, r.At(j, i)+ak/2)
			c.Set(j, i, c.At(j, i)-bk/2)
			c.Set(i, j, c.At(i, j)+bk/2)
		}
	}
	for k := range cosine {
		var b float64
		if k < len(sine) {
			b = sine[k]
		}
		couple(k+1, cosine[k], b)
	}

	embed := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			embed.SetSym(i, j, r.At(i, j))
			embed.SetSym(n+i, n+j, r.At(i, j))
		}
		for j := 0; j < n; j++ {
			// X[i][n+j] = -C[i][j]; the mirrored X[n+j][i] = C[j][i]
			// follows from C's antisymmetry.
			embed.SetSym(i, n+j, -c.At(i, j))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(embed, false) {
		return nil, eris.New("statmech: torsional eigenvalue factorization failed")
	}
	values := eig.Values(nil)

	ground := values[0]
	for _, v := range values {
		if v < ground {
			ground = v
		}
	}
	energies := make([]float64, len(values))
	for i, v := range values {
		energies[i] = v - ground
	}
	return energies, nil
}

// semiclassicalRotor holds the temperature-independent parameters of the
// Pitzer-Gwinn blend, extracted once from the Fourier potential.
type semiclassicalRotor struct {
	inertia float64 // kg*m^2
	sigma   float64
	barrier float64 // J per molecule, max - min of the potential
	nuEff   float64 // 1/s, harmonic frequency at the well bottom
}

// semiclassicalHinderedRotor evaluates the Pitzer-Gwinn partition
// function: the quantum harmonic oscillator at the well-bottom frequency,
// corrected by the ratio of the classical hindered-rotor integral
// (free rotor damped by exp(-V0/2kBT)*I0(V0/2kBT) and the symmetry
// number) to the classical oscillator. Temperature derivatives come from
// central finite differences of ln Q.
func (e *Evaluator) semiclassicalHinderedRotor(m *model.HinderedRotor, T float64) (Result, error) {
	sc, ok := e.barriers[m]
	if !ok {
		var err error
		sc, err = newSemiclassicalRotor(m)
		if err != nil {
			return Result{}, err
		}
		e.barriers[m] = sc
	}

	lnQ := sc.lnQ(T)
	h := 1e-3 * T
	lnQp := sc.lnQ(T + h)
	lnQm := sc.lnQ(T - h)
	return Result{
		LnQ:   lnQ,
		DLnQ:  (lnQp - lnQm) / (2 * h),
		D2LnQ: (lnQp - 2*lnQ + lnQm) / (h * h),
	}, nil
}

func newSemiclassicalRotor(m *model.HinderedRotor) (*semiclassicalRotor, error) {
	inertia, err := m.Inertia.SI()
	if err != nil {
		return nil, err
	}
	cosine, err := m.Potential.Cosine.SI()
	if err != nil {
		return nil, err
	}
	var sine []float64
	if m.Potential.Sine.Len() > 0 {
		sine, err = m.Potential.Sine.SI()
		if err != nil {
			return nil, err
		}
	}

	potential := func(phi float64) float64 {
		var v float64
		for k, a := range cosine {
			v += a * math.Cos(float64(k+1)*phi)
			if k < len(sine) {
				v += sine[k] * math.Sin(float64(k+1)*phi)
			}
		}
		return v
	}
	curvature := func(phi float64) float64 {
		var v float64
		for k, a := range cosine {
			kk := float64((k + 1) * (k + 1))
			v -= kk * a * math.Cos(float64(k+1)*phi)
			if k < len(sine) {
				v -= kk * sine[k] * math.Sin(float64(k+1)*phi)
			}
		}
		return v
	}

	vMin, vMax := math.Inf(1), math.Inf(-1)
	phiMin := 0.0
	for i := 0; i < potentialGridPoints; i++ {
		phi := 2 * math.Pi * float64(i) / potentialGridPoints
		v := potential(phi)
		if v < vMin {
			vMin, phiMin = v, phi
		}
		if v > vMax {
			vMax = v
		}
	}

	sc := &semiclassicalRotor{
		inertia: inertia,
		sigma:   float64(m.SymmetryNumber),
		barrier: (vMax - vMin) / Avogadro,
	}
	if k2 := curvature(phiMin) / Avogadro; k2 > 0 {
		sc.nuEff = math.Sqrt(k2/inertia) / (2 * math.Pi)
	}
	return sc, nil
}

// lnQ evaluates the Pitzer-Gwinn ln of the partition function at T. A
// vanishing barrier or non-positive well curvature degenerates to the
// classical free rotor.
func (sc *semiclassicalRotor) lnQ(T float64) float64 {
	lnQFree := 0.5*math.Log(8*math.Pi*math.Pi*math.Pi*sc.inertia*Boltzmann*T) -
		math.Log(sc.sigma*Planck)
	if sc.barrier <= 0 || sc.nuEff <= 0 {
		return lnQFree
	}
	z := sc.barrier / (2 * Boltzmann * T)
	u := Planck * sc.nuEff / (Boltzmann * T)
	lnQHOQuantum := -math.Log(-math.Expm1(-u))
	lnQHOClassical := -math.Log(u)
	return lnQHOQuantum + lnQFree - lnQHOClassical + math.Log(besselI0Scaled(z))
}

// besselI0Scaled returns exp(-x)*I0(x) for x >= 0, using the Abramowitz &
// Stegun 9.8.1/9.8.2 polynomial approximations (|error| < 2e-7). The
// scaled form stays finite for large barriers.
func besselI0Scaled(x float64) float64 {
	if x < 3.75 {
		t := x / 3.75
		t *= t
		i0 := 1 + t*(3.5156229+t*(3.0899424+t*(1.2067492+t*(0.2659732+t*(0.0360768+t*0.0045813)))))
		return i0 * math.Exp(-x)
	}
	t := 3.75 / x
	return (0.39894228 + t*(0.01328592+t*(0.00225319+t*(-0.00157565+t*(0.00916281+
		t*(-0.02057706+t*(0.02635537+t*(-0.01647633+t*0.00392377)))))))) / math.Sqrt(x)
}
