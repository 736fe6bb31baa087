package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fakturlu/faktur-accounting/internal/jobs"
	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/peppol"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

var (
	peppolNumber string
	peppolOutput string
	peppolRecord bool
	peppolAsync  bool
)

var peppolCmd = &cobra.Command{
	Use:   "peppol",
	Short: "Generate and deliver Peppol BIS Billing 3.0 invoices",
}

var peppolUBLCmd = &cobra.Command{
	Use:   "ubl <file>",
	Short: "Render an invoice as UBL",
	Long: `Render one invoice of the input document as a UBL Invoice, or a
CreditNote for credit notes.

Examples:
  faktur peppol ubl invoice.json -o 2026-0001.xml
  faktur peppol ubl invoices.json --number 2026-0002`,
	Args: cobra.ExactArgs(1),
	RunE: runPeppolUBL,
}

var peppolSendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send invoices through the configured access point",
	Long: `Send invoices through the access point selected by FAKTUR_PEPPOL_PROVIDER.
Transient failures are retried up to FAKTUR_PEPPOL_MAX_ATTEMPTS times.

Examples:
  faktur peppol send invoice.json
  faktur peppol send invoices.json --number 2026-0002 --record
  faktur peppol send invoices.json --async`,
	Args: cobra.ExactArgs(1),
	RunE: runPeppolSend,
}

var peppolStatusCmd = &cobra.Command{
	Use:   "status <document-id>",
	Short: "Query the delivery status of a sent document",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeppolStatus,
}

func init() {
	rootCmd.AddCommand(peppolCmd)
	peppolCmd.AddCommand(peppolUBLCmd, peppolSendCmd, peppolStatusCmd)

	peppolUBLCmd.Flags().StringVar(&peppolNumber, "number", "", "Invoice number (required when the document holds several)")
	peppolUBLCmd.Flags().StringVarP(&peppolOutput, "output", "o", "", "Output file (default: stdout)")

	peppolSendCmd.Flags().StringVar(&peppolNumber, "number", "", "Send only this invoice")
	peppolSendCmd.Flags().BoolVar(&peppolRecord, "record", false, "Record transmissions in the database")
	peppolSendCmd.Flags().BoolVar(&peppolAsync, "async", false, "Queue transmissions for the background worker")
}

func runPeppolUBL(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	if err := requireDocumentSeller(doc); err != nil {
		return err
	}
	inv, err := doc.FindInvoice(peppolNumber)
	if err != nil {
		return err
	}

	scenario := vat.NewResolver().ForInvoice(doc.Seller, inv.Client)
	printVerbose("Invoice %s: scenario %s\n", inv.Number, scenario.Key())

	data, err := peppol.GenerateUBL(doc.Seller, inv, scenario)
	if err != nil {
		return err
	}

	w, err := openOutput(peppolOutput)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write UBL: %w", err)
	}
	return w.Close()
}

func sendTargets(doc *Document) ([]model.InvoiceSnapshot, error) {
	if peppolNumber != "" {
		inv, err := doc.FindInvoice(peppolNumber)
		if err != nil {
			return nil, err
		}
		return []model.InvoiceSnapshot{*inv}, nil
	}
	invoices := doc.AllInvoices()
	if len(invoices) == 0 {
		return nil, errors.New("input document holds no invoices")
	}
	return invoices, nil
}

// sendOutcome is one row of the send report
type sendOutcome struct {
	InvoiceNumber string          `json:"invoice_number"`
	Receipt       *peppol.Receipt `json:"receipt,omitempty"`
	TaskID        string          `json:"task_id,omitempty"`
	Error         string          `json:"error,omitempty"`
	Permanent     bool            `json:"permanent,omitempty"`
}

func runPeppolSend(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	if err := requireDocumentSeller(doc); err != nil {
		return err
	}
	invoices, err := sendTargets(doc)
	if err != nil {
		return err
	}

	var outcomes []sendOutcome
	if peppolAsync {
		outcomes, err = enqueueTransmissions(cmd, doc.Seller, invoices)
		if err != nil {
			return err
		}
	} else {
		a, err := newApp(cmd.Context(), peppolRecord)
		if err != nil {
			return err
		}
		defer a.Close()

		for i := range invoices {
			inv := &invoices[i]
			printVerbose("Sending %s via %s\n", inv.Number, a.transmitter.AccessPoint().ProviderName())
			outcomes = append(outcomes, transmit(cmd, a.transmitter, doc.Seller, inv))
		}
	}

	if err := printOutcomes(outcomes); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Error != "" {
			return fmt.Errorf("%d of %d invoices were not sent", countFailed(outcomes), len(outcomes))
		}
	}
	return nil
}

func transmit(cmd *cobra.Command, t *peppol.Transmitter, seller *model.Seller, inv *model.InvoiceSnapshot) sendOutcome {
	out := sendOutcome{InvoiceNumber: inv.Number}
	receipt, err := t.Transmit(cmd.Context(), seller, inv)
	if err != nil {
		out.Error = err.Error()
		var trErr *model.TransmissionError
		if errors.As(err, &trErr) {
			out.Error = trErr.Message
			out.Permanent = trErr.Permanent
		}
		return out
	}
	out.Receipt = receipt
	return out
}

func enqueueTransmissions(cmd *cobra.Command, seller *model.Seller, invoices []model.InvoiceSnapshot) ([]sendOutcome, error) {
	client := newQueueClient()
	defer client.Close()

	outcomes := make([]sendOutcome, 0, len(invoices))
	for _, inv := range invoices {
		info, err := client.EnqueueTransmit(cmd.Context(), jobs.TransmitPayload{Seller: *seller, Invoice: inv})
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue %s: %w", inv.Number, err)
		}
		outcomes = append(outcomes, sendOutcome{InvoiceNumber: inv.Number, TaskID: info.ID})
	}
	return outcomes, nil
}

func countFailed(outcomes []sendOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Error != "" {
			n++
		}
	}
	return n
}

func printOutcomes(outcomes []sendOutcome) error {
	if outputFormat != "table" {
		return outputJSON(os.Stdout, outcomes)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "INVOICE\tRESULT\tDETAIL\n")
	for _, o := range outcomes {
		switch {
		case o.TaskID != "":
			fmt.Fprintf(w, "%s\tqueued\t%s\n", o.InvoiceNumber, o.TaskID)
		case o.Receipt != nil:
			fmt.Fprintf(w, "%s\tsent\t%s (%d attempts)\n", o.InvoiceNumber, o.Receipt.DocumentID, o.Receipt.Attempts)
		case o.Permanent:
			fmt.Fprintf(w, "%s\trejected\t%s\n", o.InvoiceNumber, o.Error)
		default:
			fmt.Fprintf(w, "%s\tfailed\t%s\n", o.InvoiceNumber, o.Error)
		}
	}
	return w.Flush()
}

func runPeppolStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.transmitter.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	provider := a.transmitter.AccessPoint().ProviderName()
	if outputFormat == "table" {
		fmt.Printf("%s\t%s\t%s\n", args[0], provider, status)
		return nil
	}
	return outputJSON(os.Stdout, map[string]string{
		"document_id": args[0],
		"provider":    provider,
		"status":      status,
	})
}
