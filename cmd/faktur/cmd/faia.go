package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakturlu/faktur-accounting/internal/export"
)

var faiaCmd = &cobra.Command{
	Use:   "faia <file>",
	Short: "Generate a FAIA audit file",
	Long: `Generate the SAF-T Luxembourg (FAIA 2.01) file of a period.
Equivalent to "export --format faia".

Examples:
  faktur faia invoices.json --from 2026-01-01 --to 2026-12-31 -o faia_2026.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportDocument(cmd, args[0], []export.Format{export.FormatFAIA})
	},
}

func init() {
	rootCmd.AddCommand(faiaCmd)
	addExportFlags(faiaCmd)
}
