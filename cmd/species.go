package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kinetics-tools/thermofit/internal/model"
	"github.com/kinetics-tools/thermofit/internal/store"
)

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "Inspect stored species records",
}

var speciesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored species",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		recs, err := st.ListRecords(ctx)
		if err != nil {
			return eris.Wrap(err, "species list")
		}

		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No species found.")
			return nil
		}

		formatSpeciesList(os.Stdout, recs)
		return nil
	},
}

var speciesShowCmd = &cobra.Command{
	Use:   "show <label>",
	Short: "Print the stored YAML record for a species",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec, err := st.GetRecord(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "species show")
		}
		if rec == nil {
			return eris.Errorf("species %q not found", args[0])
		}

		data, err := model.RenderRecord(rec)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	speciesCmd.AddCommand(speciesListCmd)
	speciesCmd.AddCommand(speciesShowCmd)
	rootCmd.AddCommand(speciesCmd)
}

// formatSpeciesList writes a tabular listing of stored species to w.
func formatSpeciesList(out io.Writer, recs []store.RecordSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LABEL\tFORMULA\tH298 (kJ/mol)\tS298 (J/mol/K)\tCREATED")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%s\n",
			r.Label, r.Formula, r.H298, r.S298,
			r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
