package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// WriteChemkin writes a CHEMKIN thermo library file containing every
// record that carries a rendered thermo string. Records without one are
// skipped.
func WriteChemkin(path string, records []*model.SpeciesRecord) error {
	var b strings.Builder
	b.WriteString("THERMO ALL\n")
	b.WriteString(fmt.Sprintf("%10.3f%10.3f%10.3f\n", 300.0, 1000.0, 5000.0))

	n := 0
	for _, rec := range records {
		if rec.ChemkinThermoString == "" {
			continue
		}
		b.WriteString(rec.ChemkinThermoString)
		if !strings.HasSuffix(rec.ChemkinThermoString, "\n") {
			b.WriteString("\n")
		}
		n++
	}
	b.WriteString("END\n")

	if n == 0 {
		return eris.New("export: no records carry a chemkin thermo string")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrap(err, "export: write chemkin file")
	}
	return nil
}
