package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakturlu/faktur-accounting/internal/config"
	"github.com/fakturlu/faktur-accounting/internal/logging"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	envFile      string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "faktur",
	Short: "Luxembourg invoicing accounting core",
	Long: `faktur turns finalized invoices into accounting and e-invoicing artefacts.

Supports:
  - VAT scenario resolution (domestic, intra-community, export, franchise)
  - Double-entry journal lines from invoices and credit notes
  - Exports: Sage BOB 50, Sage 100, generic CSV, FAIA (SAF-T Luxembourg)
  - Peppol BIS Billing 3.0 UBL generation and delivery

Input documents are JSON files holding a seller, accounting settings and
invoices ("-" reads stdin).

Examples:
  # Resolve the VAT treatment of a sale to a German company
  faktur vat scenario --country DE --type b2b --vat-number DE123456789

  # Export January to Sage BOB
  faktur export invoices.json --format sage_bob --from 2026-01-01 --to 2026-01-31

  # Send an invoice over Peppol
  faktur peppol send invoice.json`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this .env file (default: .env when present)")
}

// initConfig loads FAKTUR_* settings and builds the logger
func initConfig(cmd *cobra.Command, args []string) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	loaded, err := config.Load(files...)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logging.New(logging.Config{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
