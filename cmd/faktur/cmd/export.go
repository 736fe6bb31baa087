package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakturlu/faktur-accounting/internal/export"
	"github.com/fakturlu/faktur-accounting/internal/jobs"
)

var (
	exportFormats []string
	exportFrom    string
	exportTo      string
	exportOutput  string
	exportRecord  bool
	exportAsync   bool
	exportTenant  int64
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export invoices to an accounting format",
	Long: `Export the finalized invoices of a period.

Formats:
  - sage_bob     Sage BOB 50 fixed-width ISO-8859-1 records
  - sage100      Sage 100 semicolon separated journal
  - generic_csv  one row per invoice, UTF-8 with BOM
  - faia         SAF-T Luxembourg (FAIA 2.01) XML

Several --format flags produce a ZIP archive.

Examples:
  faktur export invoices.json --format sage_bob --from 2026-01-01 --to 2026-01-31
  faktur export invoices.json --format sage100 --format faia --from 2026-01-01 --to 2026-03-31 -o q1.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
	exportCmd.Flags().StringSliceVar(&exportFormats, "format", []string{string(export.FormatSageBOB)}, "Export format(s)")
}

func addExportFlags(c *cobra.Command) {
	c.Flags().StringVar(&exportFrom, "from", "", "First day of the period (YYYY-MM-DD)")
	c.Flags().StringVar(&exportTo, "to", "", "Last day of the period (YYYY-MM-DD)")
	c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file or directory (default: generated name in FAKTUR_EXPORT_DIR)")
	c.Flags().BoolVar(&exportRecord, "record", false, "Record the export job in the database")
	c.Flags().Int64Var(&exportTenant, "tenant", 0, "Tenant ID stored with the job")
	c.Flags().BoolVar(&exportAsync, "async", false, "Queue the export for the background worker")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
}

func runExport(cmd *cobra.Command, args []string) error {
	formats := make([]export.Format, 0, len(exportFormats))
	for _, name := range exportFormats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}
	return exportDocument(cmd, args[0], formats)
}

func exportDocument(cmd *cobra.Command, path string, formats []export.Format) error {
	from, err := parseDate("from", exportFrom)
	if err != nil {
		return err
	}
	to, err := parseDate("to", exportTo)
	if err != nil {
		return err
	}

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	if exportAsync {
		return enqueueExport(cmd, doc, formats, from, to)
	}

	a, err := newApp(cmd.Context(), exportRecord)
	if err != nil {
		return err
	}
	defer a.Close()

	req := export.Request{
		TenantID: exportTenant,
		Seller:   doc.Seller,
		Settings: doc.AccountingSettings(),
		Invoices: doc.AllInvoices(),
		From:     from,
		To:       to,
	}

	var (
		file   *export.File
		target string
	)
	switch {
	case exportOutput == "" || isDir(exportOutput):
		dir := exportOutput
		if dir == "" {
			dir = cfg.ExportDir
		}
		file, target, err = a.exports.Save(cmd.Context(), req, formats, dir)
	case len(formats) == 1:
		req.Format = formats[0]
		if file, err = a.exports.Generate(cmd.Context(), req); err == nil {
			target, err = writeExport(file, exportOutput)
		}
	default:
		if file, err = a.exports.GenerateArchive(cmd.Context(), req, formats); err == nil {
			target, err = writeExport(file, exportOutput)
		}
	}
	if err != nil {
		return err
	}
	printVerbose("Exported %d invoices (%d lines)\n", file.Invoices, file.Entries)
	fmt.Println(target)
	return nil
}

func enqueueExport(cmd *cobra.Command, doc *Document, formats []export.Format, from, to time.Time) error {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	client := newQueueClient()
	defer client.Close()

	info, err := client.EnqueueExport(cmd.Context(), jobs.ExportPayload{
		TenantID: exportTenant,
		Formats:  names,
		Seller:   doc.Seller,
		Settings: doc.AccountingSettings(),
		Invoices: doc.AllInvoices(),
		From:     from,
		To:       to,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue export: %w", err)
	}
	return printQueued(info)
}

// writeExport writes to an explicit file path
func writeExport(file *export.File, target string) (string, error) {
	if err := ensureDir(filepath.Dir(target)); err != nil {
		return "", err
	}
	w, err := openOutput(target)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(file.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return target, w.Close()
}
