package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinetics-tools/thermofit/internal/nasa"
	"github.com/kinetics-tools/thermofit/internal/quantity"
)

func inputRecord() *SpeciesRecord {
	return &SpeciesRecord{
		Label:                "O2",
		SMILES:               "[O][O]",
		Formula:              "O2",
		MolecularWeight:      quantity.MustNew(31.998, "g/mol"),
		FrequencyScaleFactor: 0.99,
		Conformer:            oxygenConformer(),
		EnergyTransferModel: &SingleExponentialDown{
			Alpha0: quantity.MustNew(3.58, "kJ/mol"),
			T0:     quantity.MustNew(300, "K"),
			N:      0.85,
		},
	}
}

func TestSpeciesRecord_ValidateInput(t *testing.T) {
	require.NoError(t, inputRecord().ValidateInput())
}

func TestSpeciesRecord_ValidateInput_MissingLabel(t *testing.T) {
	r := inputRecord()
	r.Label = ""
	assert.Error(t, r.ValidateInput())
}

func TestSpeciesRecord_ValidateInput_MissingConformer(t *testing.T) {
	r := inputRecord()
	r.Conformer = nil
	err := r.ValidateInput()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing conformer")
}

func TestSpeciesRecord_ValidateInput_ScaleFactorRange(t *testing.T) {
	r := inputRecord()
	r.FrequencyScaleFactor = 0
	assert.Error(t, r.ValidateInput())

	r.FrequencyScaleFactor = 2.5
	assert.Error(t, r.ValidateInput())
}

func TestSpeciesRecord_ValidateInput_BadMolecularWeight(t *testing.T) {
	r := inputRecord()
	r.MolecularWeight = quantity.MustNew(31.998, "amu") // mass, not molar mass
	err := r.ValidateInput()
	require.Error(t, err)
	assert.True(t, quantity.IsUnitMismatch(err))
}

func TestRecord_RoundTripIsByteStable(t *testing.T) {
	in := inputRecord()

	first, err := RenderRecord(in)
	require.NoError(t, err)

	parsed, err := ParseRecord(first)
	require.NoError(t, err)
	require.NoError(t, parsed.ValidateInput())

	second, err := RenderRecord(parsed)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestParseRecord_Malformed(t *testing.T) {
	_, err := ParseRecord([]byte("label: [unclosed"))
	assert.Error(t, err)
}

func TestNewThermoData_StandardStateBelowRange(t *testing.T) {
	// A model starting at 400 K still reports H298/S298 from the low
	// polynomial, whose integration constants are pinned at 298.15 K.
	n := &nasa.NASA{
		Low: nasa.Polynomial{
			Coeffs: []float64{3.5, 0, 0, 0, 0, -1000, 4},
			Tmin:   quantity.MustNew(400, "K"),
			Tmax:   quantity.MustNew(800, "K"),
		},
		High: nasa.Polynomial{
			Coeffs: []float64{3.5, 0, 0, 0, 0, -1000, 4},
			Tmin:   quantity.MustNew(800, "K"),
			Tmax:   quantity.MustNew(1200, "K"),
		},
	}
	td, err := NewThermoData(n)
	require.NoError(t, err)
	assert.InDelta(t, n.Low.H(298.15)/1000, td.H298.Value, 1e-12)
	assert.InDelta(t, n.Low.S(298.15), td.S298.Value, 1e-12)
}

func TestNewThermoData_StandardPoints(t *testing.T) {
	n := &nasa.NASA{
		Low: nasa.Polynomial{
			Coeffs: []float64{3.5, 0, 0, 0, 0, -1000, 4},
			Tmin:   quantity.MustNew(200, "K"),
			Tmax:   quantity.MustNew(1000, "K"),
		},
		High: nasa.Polynomial{
			Coeffs: []float64{3.5, 0, 0, 0, 0, -1000, 4},
			Tmin:   quantity.MustNew(1000, "K"),
			Tmax:   quantity.MustNew(3000, "K"),
		},
	}
	td, err := NewThermoData(n)
	require.NoError(t, err)

	assert.Equal(t, []float64{300, 400, 500, 600, 800, 1000, 1500}, td.Tdata.Values)
	require.Equal(t, 7, td.Cpdata.Len())
	for _, cp := range td.Cpdata.Values {
		assert.InDelta(t, 3.5*8.314462618, cp, 1e-9)
	}
	assert.Equal(t, "kJ/mol", td.H298.Units)
	assert.Equal(t, "J/(mol*K)", td.S298.Units)
}
