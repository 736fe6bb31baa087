package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fakturlu/faktur-accounting/internal/accounting"
	"github.com/fakturlu/faktur-accounting/internal/model"
)

var entriesCmd = &cobra.Command{
	Use:   "entries <file>",
	Short: "Build journal lines from invoices",
	Long: `Build the double-entry lines of every invoice in the input document.

Each invoice yields a client line, one VAT line per rate and a sales line;
credit notes swap debit and credit.

Examples:
  faktur entries invoices.json
  faktur entries invoices.json --output-format table`,
	Args: cobra.ExactArgs(1),
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	entries, err := accounting.BuildEntries(doc.AllInvoices(), doc.AccountingSettings())
	if err != nil {
		return err
	}
	printVerbose("Built %d lines\n", len(entries))

	switch outputFormat {
	case "json":
		return outputJSON(os.Stdout, entries)
	case "table":
		return outputEntriesTable(entries)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputEntriesTable(entries []model.AccountingEntry) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tJOURNAL\tACCOUNT\tTHIRD PARTY\tPIECE\tLABEL\tDEBIT\tCREDIT")
	fmt.Fprintln(tw, "----\t-------\t-------\t-----------\t-----\t-----\t-----\t------")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format("2006-01-02"),
			e.JournalCode,
			e.GeneralAccount,
			e.ThirdPartyCode,
			e.PieceReference,
			e.Label,
			e.Debit.StringFixed(2),
			e.Credit.StringFixed(2),
		)
	}

	debit, credit := accounting.Totals(entries)
	fmt.Fprintf(tw, "\t\t\t\t\tTOTAL\t%s\t%s\n", debit.StringFixed(2), credit.StringFixed(2))
	return tw.Flush()
}
