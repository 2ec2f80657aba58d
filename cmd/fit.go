package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kinetics-tools/thermofit/internal/model"
	"github.com/kinetics-tools/thermofit/internal/pipeline"
)

var (
	fitOutDir       string
	fitNoStore      bool
	fitTmid         float64
	fitNoSearchTmid bool
	fitAllowPoor    bool
	fitConcurrency  int
)

var fitCmd = &cobra.Command{
	Use:   "fit <input.yml|input-dir> [more inputs...]",
	Short: "Fit NASA polynomials for one or more species",
	Long:  "Reads species input YAML files (conformer, E0, energy transfer model), evaluates statistical-mechanics thermodynamics, fits two-range NASA polynomials, and writes completed records.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputs, err := loadInputs(args)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return eris.New("fit: no input species found")
		}

		tmid := fitTmid
		if tmid == 0 {
			tmid = cfg.Fit.Tmid
		}

		p := pipeline.New(pipeline.Options{
			Tmin:                 cfg.Thermo.Tmin,
			Tmax:                 cfg.Thermo.Tmax,
			GridPoints:           cfg.Thermo.GridPoints,
			FrequencyScaleFactor: cfg.Thermo.FrequencyScaleFactor,
			Tmid:                 tmid,
			SearchTmid:           cfg.Fit.SearchTmid && !fitNoSearchTmid,
			Candidates:           cfg.Fit.Candidates,
			FitPoints:            cfg.Fit.Points,
			FitTolerance:         cfg.Fit.Tolerance,
			MaxIterations:        cfg.Fit.MaxIterations,
			AllowPoorFit:         fitAllowPoor || cfg.Fit.AllowPoorFit,
		})

		concurrency := fitConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentSpecies
		}

		result, err := p.RunBatch(ctx, inputs, concurrency)
		if err != nil {
			return err
		}

		if fitOutDir != "" {
			if err := writeRecords(fitOutDir, result.Records); err != nil {
				return err
			}
		}

		if !fitNoStore {
			if err := persistBatch(ctx, inputs, result); err != nil {
				return err
			}
		}

		for _, se := range result.Errors {
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", se.Label, se.Err)
		}
		fmt.Printf("Fitted %d species, %d failed.\n", result.Succeeded(), result.Failed())

		if result.Succeeded() == 0 {
			return eris.New("fit: all species failed")
		}
		return nil
	},
}

func init() {
	fitCmd.Flags().StringVarP(&fitOutDir, "out", "o", "", "directory for fitted record YAML files")
	fitCmd.Flags().BoolVar(&fitNoStore, "no-store", false, "skip persisting records to the database")
	fitCmd.Flags().Float64Var(&fitTmid, "tmid", 0, "fixed NASA breakpoint in K (default from config)")
	fitCmd.Flags().BoolVar(&fitNoSearchTmid, "no-search-tmid", false, "disable the breakpoint search")
	fitCmd.Flags().BoolVar(&fitAllowPoor, "allow-poor-fit", false, "keep fits whose residual exceeds the tolerance")
	fitCmd.Flags().IntVar(&fitConcurrency, "concurrency", 0, "max species fitted in parallel (default from config)")
	rootCmd.AddCommand(fitCmd)
}

// loadInputs expands the argument list (files or directories) into parsed
// species records. Directories contribute their *.yml and *.yaml entries,
// sorted by name.
func loadInputs(args []string) ([]*model.SpeciesRecord, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "fit: stat %s", arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "fit: read dir %s", arg)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext == ".yml" || ext == ".yaml" {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(paths)

	inputs := make([]*model.SpeciesRecord, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fit: read %s", path)
		}
		rec, err := model.ParseRecord(data)
		if err != nil {
			return nil, eris.Wrapf(err, "fit: parse %s", path)
		}
		inputs = append(inputs, rec)
	}
	return inputs, nil
}

func writeRecords(dir string, records []*model.SpeciesRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "fit: create output dir %s", dir)
	}
	for _, rec := range records {
		data, err := model.RenderRecord(rec)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, recordFileName(rec.Label))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "fit: write %s", path)
		}
	}
	return nil
}

// recordFileName maps a species label to a filesystem-safe YAML name.
func recordFileName(label string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, label)
	return safe + ".yml"
}

func persistBatch(ctx context.Context, inputs []*model.SpeciesRecord, result *pipeline.BatchResult) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, len(inputs))
	if err != nil {
		return err
	}

	status := model.RunStatusComplete
	for _, rec := range result.Records {
		if err := st.SaveRecord(ctx, run.ID, rec); err != nil {
			zap.L().Error("fit: save record failed",
				zap.String("species", rec.Label),
				zap.Error(err),
			)
			status = model.RunStatusCompleteWithErrors
		}
	}
	if result.Failed() > 0 {
		status = model.RunStatusCompleteWithErrors
	}
	if result.Succeeded() == 0 {
		status = model.RunStatusFailed
	}

	return st.FinishRun(ctx, run.ID, result.Succeeded(), result.Failed(), status)
}
