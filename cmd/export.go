package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/carreg/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database as YAML or an Excel workbook",
		Long: `Export every vehicle record for reading or sharing. The export is not
read back by carreg; the database file stays the source of truth.

Examples:
  carreg export                          # YAML to stdout
  carreg export --out cars.yaml
  carreg export --format xlsx --out cars.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.FormatXLSX && out == "" {
				return fmt.Errorf("--out is required for xlsx export")
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			reg, err := loadRegistry(cmd.Context(), st, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if out == "" {
				return export.YAML(cmd.OutOrStdout(), reg.List())
			}
			if err := export.WriteFile(f, out, reg.List()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d car(s) to %s\n", reg.Len(), out)
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&format, "format", "f", export.FormatYAML, "export format: yaml or xlsx")
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout, yaml only)")
	return exportCmd
}
