package nasa

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testH298 = -50000.0 // J/mol
	testS298 = 200.0    // J/(mol*K)
)

// quadraticSample is exactly representable by the fitted form, so the
// residual is numerical noise.
func quadraticSample(T float64) (cp, h, s float64, err error) {
	cpR := 3.5 + 1e-3*T - 2e-7*T*T
	return gasConstant * cpR, testH298, testS298, nil
}

// kinkedSample has a Cp cusp no quartic can follow.
func kinkedSample(T float64) (cp, h, s float64, err error) {
	cpR := 3.5 + 2.5*math.Abs(T-1500)/1500
	return gasConstant * cpR, testH298, testS298, nil
}

func TestFit_ReproducesSampledCp(t *testing.T) {
	n, err := Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 1000})
	require.NoError(t, err)
	require.NoError(t, n.Validate())

	for _, T := range []float64{300, 450, 1000, 1700, 3000} {
		want, _, _, _ := quadraticSample(T)
		got, err := n.Cp(T)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-6, "Cp at %g K", T)
	}
}

func TestFit_PinsStandardState(t *testing.T) {
	n, err := Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 1000})
	require.NoError(t, err)

	// 298.15 K sits below the 300 K Tlow; the low polynomial is pinned
	// there regardless.
	assert.InDelta(t, testH298, n.Low.H(298.15), 1e-6)
	assert.InDelta(t, testS298, n.Low.S(298.15), 1e-9)
}

func TestFit_WideRangeWellConditioned(t *testing.T) {
	// Over [10, 3000] the raw-kelvin quartic columns span sixteen orders
	// of magnitude; the normalized design matrix must still solve.
	n, err := Fit(quadraticSample, FitOptions{Tmin: 10, Tmax: 3000, SearchTmid: true})
	require.NoError(t, err)
	require.NoError(t, n.Validate())

	for _, T := range []float64{10, 150, 1000, 2800} {
		want, _, _, _ := quadraticSample(T)
		got, err := n.Cp(T)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-6, "Cp at %g K", T)
	}
}

func TestFit_ContinuousAtBreakpoint(t *testing.T) {
	n, err := Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 1000})
	require.NoError(t, err)

	tmid := n.Tmid()
	assert.InDelta(t, n.Low.Cp(tmid), n.High.Cp(tmid), 1e-6)
	assert.InDelta(t, n.Low.H(tmid), n.High.H(tmid), 1e-6)
	assert.InDelta(t, n.Low.S(tmid), n.High.S(tmid), 1e-9)
}

func TestFit_Deterministic(t *testing.T) {
	opts := FitOptions{Tmin: 300, Tmax: 3000, SearchTmid: true}
	a, err := Fit(quadraticSample, opts)
	require.NoError(t, err)
	b, err := Fit(quadraticSample, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Low.Coeffs, b.Low.Coeffs)
	assert.Equal(t, a.High.Coeffs, b.High.Coeffs)
	assert.Equal(t, a.Tmid(), b.Tmid())
}

func TestFit_RejectsBoundaryBreakpoint(t *testing.T) {
	_, err := Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 300})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly inside")

	_, err = Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 3000})
	assert.Error(t, err)

	_, err = Fit(quadraticSample, FitOptions{Tmin: 300, Tmax: 3000, Tmid: 5000})
	assert.Error(t, err)
}

func TestFit_RangeAboveReference(t *testing.T) {
	// The conventional CHEMKIN Tlow of 300 K (or higher) excludes
	// 298.15 K from the validity range; the fit must still succeed and
	// pin the standard state through the continuous sample function.
	n, err := Fit(quadraticSample, FitOptions{Tmin: 400, Tmax: 3000, Tmid: 1000})
	require.NoError(t, err)
	assert.InDelta(t, testH298, n.Low.H(298.15), 1e-6)
	assert.InDelta(t, testS298, n.Low.S(298.15), 1e-9)
}

func TestFit_PoorQualityReturnsModelAndError(t *testing.T) {
	n, err := Fit(kinkedSample, FitOptions{
		Tmin: 300, Tmax: 3000, SearchTmid: true, Tolerance: 1e-12,
	})
	require.Error(t, err)
	assert.True(t, IsPoorFitQuality(err))
	require.NotNil(t, n, "best-effort model must still be returned")
	require.NoError(t, n.Validate())
}

func TestFit_IterationBudget(t *testing.T) {
	_, err := Fit(kinkedSample, FitOptions{
		Tmin: 300, Tmax: 3000, SearchTmid: true,
		Tolerance: 1e-12, Candidates: 9, MaxIterations: 3,
	})
	require.Error(t, err)
	assert.True(t, IsFitDidNotConverge(err))
	assert.False(t, IsPoorFitQuality(err))
}

func TestFit_SearchPrefersCentralBreakpoint(t *testing.T) {
	// All candidates fit the quadratic equally well; the tie-break must
	// pick the one nearest the range midpoint.
	n, err := Fit(quadraticSample, FitOptions{
		Tmin: 300, Tmax: 3000, SearchTmid: true, Candidates: 9,
	})
	require.NoError(t, err)

	mid := (300.0 + 3000.0) / 2
	step := (3000.0 - 300.0) / 10
	wantTmid := 300 + step*math.Round((mid-300)/step)
	assert.InDelta(t, wantTmid, n.Tmid(), 1e-9)
}

func TestBreakpoints_InteriorGrid(t *testing.T) {
	tmids, err := breakpoints(FitOptions{Tmin: 300, Tmax: 3000, SearchTmid: true, Candidates: 9})
	require.NoError(t, err)
	require.Len(t, tmids, 9)
	assert.Greater(t, tmids[0], 300.0)
	assert.Less(t, tmids[8], 3000.0)
}
