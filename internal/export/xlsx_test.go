package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/kinetics-tools/thermofit/internal/model"
	"github.com/kinetics-tools/thermofit/internal/nasa"
	"github.com/kinetics-tools/thermofit/internal/quantity"
)

func fittedRecord(label string) *model.SpeciesRecord {
	return &model.SpeciesRecord{
		Label:           label,
		Formula:         "O2",
		MolecularWeight: quantity.MustNew(31.998, "g/mol"),
		Thermo: &nasa.NASA{
			Low: nasa.Polynomial{
				Coeffs: []float64{3.5, 0, 0, 0, 0, -1043.2, 4.1},
				Tmin:   quantity.MustNew(200, "K"),
				Tmax:   quantity.MustNew(1000, "K"),
			},
			High: nasa.Polynomial{
				Coeffs: []float64{3.5, 0, 0, 0, 0, -1043.2, 4.1},
				Tmin:   quantity.MustNew(1000, "K"),
				Tmax:   quantity.MustNew(3000, "K"),
			},
			E0: quantity.MustNew(0, "kJ/mol"),
		},
		ThermoData: &model.ThermoData{
			H298: quantity.MustNew(8.68, "kJ/mol"),
			S298: quantity.MustNew(205.15, "J/(mol*K)"),
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermo.xlsx")
	records := []*model.SpeciesRecord{fittedRecord("O2"), fittedRecord("O2-singlet")}

	err := WriteXLSX(path, records, []float64{300, 500, 1000})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3) // summary + one per species

	summary := f.Sheets[0]
	assert.Equal(t, "Summary", summary.Name)
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "O2", summary.Rows[1].Cells[0].String())

	species := f.Sheets[1]
	assert.Equal(t, "O2", species.Name)
	// Header plus one row per requested temperature.
	require.Len(t, species.Rows, 4)
	assert.Equal(t, "T (K)", species.Rows[0].Cells[0].String())
}

func TestWriteXLSX_ClampsToFittedRange(t *testing.T) {
	// A record fitted over a narrower range skips the sample points it
	// cannot evaluate instead of aborting the export.
	path := filepath.Join(t.TempDir(), "thermo.xlsx")
	err := WriteXLSX(path, []*model.SpeciesRecord{fittedRecord("O2")}, []float64{100, 300, 1000, 3500})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	species := f.Sheets[1]
	// Header plus the two in-range temperatures.
	require.Len(t, species.Rows, 3)
	t1, err := species.Rows[1].Cells[0].Float()
	require.NoError(t, err)
	assert.InDelta(t, 300.0, t1, 1e-9)
	t2, err := species.Rows[2].Cells[0].Float()
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, t2, 1e-9)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "O2", sheetName("O2"))
	assert.Equal(t, "C2H4_2_", sheetName("C2H4[2]"))
	long := "a-species-label-well-over-the-sheet-limit"
	assert.Len(t, sheetName(long), 31)
}

func TestWriteChemkin(t *testing.T) {
	rec := fittedRecord("O2")
	var err error
	rec.ChemkinThermoString, err = rec.Thermo.Chemkin("O2", "O2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "thermo.dat")
	require.NoError(t, WriteChemkin(path, []*model.SpeciesRecord{rec}))
}

func TestWriteChemkin_NoRenderedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermo.dat")
	err := WriteChemkin(path, []*model.SpeciesRecord{fittedRecord("O2")})
	assert.Error(t, err)
}
