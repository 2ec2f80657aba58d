package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kinetics-tools/thermofit/internal/export"
	"github.com/kinetics-tools/thermofit/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored species thermochemistry",
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx <output.xlsx>",
	Short: "Write an XLSX workbook of Cp/H/S tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadStoredRecords(cmd)
		if err != nil {
			return err
		}

		temps := []float64{300, 400, 500, 600, 800, 1000, 1500, 2000}
		if err := export.WriteXLSX(args[0], records, temps); err != nil {
			return err
		}
		zap.L().Info("export: workbook written",
			zap.String("path", args[0]),
			zap.Int("species", len(records)),
		)
		return nil
	},
}

var exportChemkinCmd = &cobra.Command{
	Use:   "chemkin <output.dat>",
	Short: "Write a CHEMKIN thermo library file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadStoredRecords(cmd)
		if err != nil {
			return err
		}

		if err := export.WriteChemkin(args[0], records); err != nil {
			return err
		}
		zap.L().Info("export: chemkin library written",
			zap.String("path", args[0]),
			zap.Int("species", len(records)),
		)
		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportXLSXCmd)
	exportCmd.AddCommand(exportChemkinCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadStoredRecords pulls every stored species' latest full record.
func loadStoredRecords(cmd *cobra.Command) ([]*model.SpeciesRecord, error) {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	summaries, err := st.ListRecords(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "export: list records")
	}
	if len(summaries) == 0 {
		return nil, eris.New("export: no stored species records")
	}

	records := make([]*model.SpeciesRecord, 0, len(summaries))
	for _, s := range summaries {
		rec, err := st.GetRecord(ctx, s.Label)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}
