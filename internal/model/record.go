package model

import (
	"math"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kinetics-tools/thermofit/internal/nasa"
	"github.com/kinetics-tools/thermofit/internal/quantity"
)

// standardTemperatures are the sample points of the human-auditable
// thermo_data table, in kelvin.
var standardTemperatures = []float64{300, 400, 500, 600, 800, 1000, 1500}

// ThermoData is the sampled Cp/H298/S298 table carried in the record for
// human auditing. It is a rendering of the fitted model at standard
// points, not an independent source of truth: it is regenerated from the
// thermo block on every fit and never read back.
type ThermoData struct {
	Tdata  quantity.Array    `yaml:"tdata"`
	Cpdata quantity.Array    `yaml:"cpdata"`
	H298   quantity.Quantity `yaml:"h298"`
	S298   quantity.Quantity `yaml:"s298"`
}

// NewThermoData samples the fitted model at the standard temperatures.
func NewThermoData(n *nasa.NASA) (*ThermoData, error) {
	cps := make([]float64, 0, len(standardTemperatures))
	ts := make([]float64, 0, len(standardTemperatures))
	for _, t := range standardTemperatures {
		if t < n.Tmin() || t > n.Tmax() {
			continue
		}
		cp, err := n.Cp(t)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
		cps = append(cps, cp)
	}
	// The low range's integration constants are pinned at 298.15 K by the
	// fitter, so evaluating it there is exact even when the validity range
	// starts above (the conventional 300 K Tlow).
	h298 := n.Low.H(298.15)
	s298 := n.Low.S(298.15)
	return &ThermoData{
		Tdata:  quantity.MustNewArray(ts, "K"),
		Cpdata: quantity.MustNewArray(cps, "J/(mol*K)"),
		H298:   quantity.MustNew(h298/1000, "kJ/mol"),
		S298:   quantity.MustNew(s298, "J/(mol*K)"),
	}, nil
}

// SpeciesRecord is the aggregate output of the engine for one species:
// identity, the primary optimized conformer, the fitted NASA model, the
// collisional energy transfer model, and provenance renderings. It is
// constructed once per completed calculation and immutable after fitting.
type SpeciesRecord struct {
	Label                string                 `yaml:"label"`
	SMILES               string                 `yaml:"smiles,omitempty"`
	InChI                string                 `yaml:"inchi,omitempty"`
	Formula              string                 `yaml:"formula,omitempty"`
	MolecularWeight      quantity.Quantity      `yaml:"molecular_weight"`
	FrequencyScaleFactor float64                `yaml:"frequency_scale_factor"`
	UseHinderedRotors    bool                   `yaml:"use_hindered_rotors"`
	Conformer            *Conformer             `yaml:"conformer"`
	EnergyTransferModel  *SingleExponentialDown `yaml:"energy_transfer_model,omitempty"`
	Thermo               *nasa.NASA             `yaml:"thermo,omitempty"`
	ThermoData           *ThermoData            `yaml:"thermo_data,omitempty"`
	ChemkinThermoString  string                 `yaml:"chemkin_thermo_string,omitempty"`
	AdjacencyList        string                 `yaml:"adjacency_list,omitempty"`
	XYZ                  string                 `yaml:"xyz,omitempty"`
}

// ValidateInput checks the fields a record must carry before fitting.
// A failure here is fatal for this species' processing (but only this
// species').
func (r *SpeciesRecord) ValidateInput() error {
	if r.Label == "" {
		return eris.New("model: record is missing label")
	}
	if r.Conformer == nil {
		return eris.Errorf("model: record %q is missing conformer", r.Label)
	}
	if err := r.Conformer.Validate(); err != nil {
		return eris.Wrapf(err, "model: record %q", r.Label)
	}
	if err := r.MolecularWeight.CheckDimensions(quantity.DimMolarMass); err != nil {
		return eris.Wrapf(err, "model: record %q molecular weight", r.Label)
	}
	if r.MolecularWeight.Value <= 0 {
		return eris.Errorf("model: record %q molecular weight must be positive", r.Label)
	}
	if r.FrequencyScaleFactor <= 0 || r.FrequencyScaleFactor > 2 {
		return eris.Errorf("model: record %q frequency scale factor %g out of range (0, 2]",
			r.Label, r.FrequencyScaleFactor)
	}
	if math.IsNaN(r.FrequencyScaleFactor) {
		return eris.Errorf("model: record %q frequency scale factor is NaN", r.Label)
	}
	if r.EnergyTransferModel != nil {
		if err := r.EnergyTransferModel.Validate(); err != nil {
			return eris.Wrapf(err, "model: record %q", r.Label)
		}
	}
	return nil
}

// Validate checks a fitted record, including the thermo block.
func (r *SpeciesRecord) Validate() error {
	if err := r.ValidateInput(); err != nil {
		return err
	}
	if r.Thermo == nil {
		return eris.Errorf("model: record %q has no fitted thermo", r.Label)
	}
	return r.Thermo.Validate()
}

// ParseRecord decodes a species record from YAML. Unit strings are
// checked against each field's expected dimension as part of decoding and
// validation; no silent rescaling occurs.
func ParseRecord(data []byte) (*SpeciesRecord, error) {
	var r SpeciesRecord
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "model: parse record")
	}
	return &r, nil
}

// RenderRecord encodes a species record to YAML.
func RenderRecord(r *SpeciesRecord) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, eris.Wrapf(err, "model: render record %q", r.Label)
	}
	return data, nil
}
