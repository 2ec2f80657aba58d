// Package pipeline orchestrates the per-species flow: conformer
// validation, partition-function and thermodynamic evaluation over a
// temperature grid, the NASA fit, and assembly of the finished species
// record. Each species evaluation is stateless and independent, so
// batches run embarrassingly parallel.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kinetics-tools/thermofit/internal/model"
	"github.com/kinetics-tools/thermofit/internal/nasa"
	"github.com/kinetics-tools/thermofit/internal/thermo"
)

// Options configures one pipeline instance.
type Options struct {
	Tmin, Tmax float64 // temperature grid bounds, kelvin
	GridPoints int     // diagnostic grid density (default 60)

	// FrequencyScaleFactor applies to input records that omit their own
	// frequency_scale_factor (default 1.0).
	FrequencyScaleFactor float64

	Tmid          float64 // NASA breakpoint when SearchTmid is false (default 1000 K)
	SearchTmid    bool
	Candidates    int
	FitPoints     int
	FitTolerance  float64
	MaxIterations int

	// AllowPoorFit keeps a fit whose residual exceeds the tolerance
	// instead of failing the species; the residual is still logged.
	AllowPoorFit bool
}

func (o *Options) withDefaults() Options {
	c := *o
	if c.Tmin <= 0 {
		c.Tmin = 10
	}
	if c.Tmax <= c.Tmin {
		c.Tmax = 3000
	}
	if c.GridPoints <= 1 {
		c.GridPoints = 60
	}
	if c.FrequencyScaleFactor <= 0 {
		c.FrequencyScaleFactor = 1.0
	}
	return c
}

// Pipeline fits species records. It is stateless with respect to each
// species and safe for concurrent use.
type Pipeline struct {
	opts Options
}

// New creates a pipeline with the given options.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts.withDefaults()}
}

// Run fits one species: the input record carries identity, conformer, and
// energy-transfer data; the returned record additionally carries the
// fitted NASA model, the regenerated thermo_data table, and the CHEMKIN
// rendering.
func (p *Pipeline) Run(ctx context.Context, rec *model.SpeciesRecord) (*model.SpeciesRecord, error) {
	log := zap.L().With(zap.String("species", rec.Label))

	if rec.FrequencyScaleFactor == 0 {
		cp := *rec
		cp.FrequencyScaleFactor = p.opts.FrequencyScaleFactor
		rec = &cp
	}

	if err := rec.ValidateInput(); err != nil {
		return nil, err
	}
	if err := checkHinderedRotorGate(rec); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev, err := thermo.NewEvaluator(rec.Conformer, rec.FrequencyScaleFactor)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: species %q", rec.Label)
	}

	// Diagnostic sweep of the whole validity range; a negative Cp
	// anywhere on the grid fails the species before fitting.
	grid := temperatureGrid(p.opts.Tmin, p.opts.Tmax, p.opts.GridPoints)
	if _, err := ev.Grid(grid); err != nil {
		return nil, eris.Wrapf(err, "pipeline: species %q", rec.Label)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sample := func(T float64) (cp, h, s float64, err error) {
		pt, err := ev.At(T)
		if err != nil {
			return 0, 0, 0, err
		}
		return pt.Cp, pt.H, pt.S, nil
	}

	fit, err := nasa.Fit(sample, nasa.FitOptions{
		Tmin:          p.opts.Tmin,
		Tmax:          p.opts.Tmax,
		Tmid:          p.opts.Tmid,
		SearchTmid:    p.opts.SearchTmid,
		Candidates:    p.opts.Candidates,
		Points:        p.opts.FitPoints,
		Tolerance:     p.opts.FitTolerance,
		MaxIterations: p.opts.MaxIterations,
	})
	if err != nil {
		if !(nasa.IsPoorFitQuality(err) && p.opts.AllowPoorFit && fit != nil) {
			return nil, eris.Wrapf(err, "pipeline: species %q", rec.Label)
		}
		log.Warn("pipeline: accepting fit above tolerance", zap.Error(err))
	}

	fit.E0 = rec.Conformer.E0
	fit.Cp0 = thermo.Cp0(rec.Conformer)
	fit.CpInf = thermo.CpInf(rec.Conformer)

	out := *rec
	out.Thermo = fit
	out.ThermoData, err = model.NewThermoData(fit)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: species %q thermo_data", rec.Label)
	}
	if out.Formula != "" {
		chemkin, err := fit.Chemkin(out.Label, out.Formula)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: species %q chemkin", rec.Label)
		}
		out.ChemkinThermoString = chemkin
	}

	log.Info("pipeline: species fitted",
		zap.Float64("tmid", fit.Tmid()),
		zap.Float64("h298_kj_mol", out.ThermoData.H298.Value),
		zap.Float64("s298", out.ThermoData.S298.Value),
	)
	return &out, nil
}

// checkHinderedRotorGate enforces the use_hindered_rotors flag: when the
// flag is off, torsions are already folded into the harmonic frequencies
// and explicit hindered-rotor modes would double count them.
func checkHinderedRotorGate(rec *model.SpeciesRecord) error {
	if rec.UseHinderedRotors {
		return nil
	}
	for _, m := range rec.Conformer.Modes {
		if _, ok := m.(*model.HinderedRotor); ok {
			return eris.Errorf(
				"pipeline: species %q declares use_hindered_rotors: false but carries a hindered rotor mode",
				rec.Label)
		}
	}
	return nil
}

func temperatureGrid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
