// Package export writes fitted thermochemistry to spreadsheet and
// CHEMKIN text formats.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// WriteXLSX writes one workbook with a summary sheet and a per-species
// Cp/H/S table sheet sampled at the given temperatures.
func WriteXLSX(path string, records []*model.SpeciesRecord, temperatures []float64) error {
	f := xlsx.NewFile()

	if err := writeSummarySheet(f, records); err != nil {
		return err
	}

	for _, rec := range records {
		if err := writeSpeciesSheet(f, rec, temperatures); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func writeSummarySheet(f *xlsx.File, records []*model.SpeciesRecord) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Label", "Formula", "MW (g/mol)", "H298 (kJ/mol)", "S298 (J/mol/K)", "Tmin (K)", "Tmid (K)", "Tmax (K)"} {
		header.AddCell().SetString(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.Label)
		row.AddCell().SetString(rec.Formula)
		row.AddCell().SetFloatWithFormat(rec.MolecularWeight.Value, "0.0000")
		if rec.ThermoData != nil {
			row.AddCell().SetFloatWithFormat(rec.ThermoData.H298.Value, "0.000")
			row.AddCell().SetFloatWithFormat(rec.ThermoData.S298.Value, "0.000")
		} else {
			row.AddCell().SetString("")
			row.AddCell().SetString("")
		}
		if rec.Thermo != nil {
			row.AddCell().SetFloatWithFormat(rec.Thermo.Tmin(), "0.0")
			row.AddCell().SetFloatWithFormat(rec.Thermo.Tmid(), "0.0")
			row.AddCell().SetFloatWithFormat(rec.Thermo.Tmax(), "0.0")
		}
	}

	return nil
}

func writeSpeciesSheet(f *xlsx.File, rec *model.SpeciesRecord, temperatures []float64) error {
	if rec.Thermo == nil {
		return nil
	}

	sheet, err := f.AddSheet(sheetName(rec.Label))
	if err != nil {
		return eris.Wrapf(err, "export: add sheet for %q", rec.Label)
	}

	header := sheet.AddRow()
	for _, h := range []string{"T (K)", "Cp (J/mol/K)", "H (kJ/mol)", "S (J/mol/K)"} {
		header.AddCell().SetString(h)
	}

	for _, T := range temperatures {
		// Records are fitted over their own ranges; skip sample points a
		// narrower fit cannot evaluate.
		if T < rec.Thermo.Tmin() || T > rec.Thermo.Tmax() {
			continue
		}
		cp, err := rec.Thermo.Cp(T)
		if err != nil {
			return err
		}
		h, err := rec.Thermo.H(T)
		if err != nil {
			return err
		}
		s, err := rec.Thermo.S(T)
		if err != nil {
			return err
		}

		row := sheet.AddRow()
		row.AddCell().SetFloatWithFormat(T, "0.0")
		row.AddCell().SetFloatWithFormat(cp, "0.000")
		row.AddCell().SetFloatWithFormat(h/1000, "0.000")
		row.AddCell().SetFloatWithFormat(s, "0.000")
	}

	return nil
}

// sheetName trims a species label to the 31-character Excel sheet name
// limit and strips characters Excel rejects.
func sheetName(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	return string(out)
}
