package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fakturlu/faktur-accounting/internal/model"
	"github.com/fakturlu/faktur-accounting/internal/vat"
)

var (
	vatRegime    string
	vatCountry   string
	vatType      string
	vatNumber    string
	checkCountry string
)

var vatCmd = &cobra.Command{
	Use:   "vat",
	Short: "VAT scenario and number helpers",
}

var vatScenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Resolve the VAT treatment of a sale",
	Long: `Resolve the VAT scenario, rate and legal mention of a sale.

Examples:
  faktur vat scenario --country DE --type b2b --vat-number DE123456789
  faktur vat scenario --regime franchise
  faktur vat scenario --country US --output-format table`,
	Args: cobra.NoArgs,
	RunE: runVATScenario,
}

var vatCheckCmd = &cobra.Command{
	Use:   "check <vat-number>",
	Short: "Check the format of a VAT number",
	Args:  cobra.ExactArgs(1),
	RunE:  runVATCheck,
}

func init() {
	rootCmd.AddCommand(vatCmd)
	vatCmd.AddCommand(vatScenarioCmd, vatCheckCmd)

	vatScenarioCmd.Flags().StringVar(&vatRegime, "regime", string(model.VATRegimeAssujetti), "Seller VAT regime (assujetti, franchise)")
	vatScenarioCmd.Flags().StringVar(&vatCountry, "country", "LU", "Client country (ISO 3166 alpha-2)")
	vatScenarioCmd.Flags().StringVar(&vatType, "type", string(model.ClientTypeB2B), "Client type (b2b, b2c)")
	vatScenarioCmd.Flags().StringVar(&vatNumber, "vat-number", "", "Client VAT number")

	vatCheckCmd.Flags().StringVar(&checkCountry, "country", "", "Expected country prefix")
}

func runVATScenario(cmd *cobra.Command, args []string) error {
	scenario := vat.DetermineScenario(model.VATRegime(vatRegime), vatCountry, model.ClientType(vatType), vatNumber)
	printVerbose("Resolved %s for regime=%s country=%s type=%s\n", scenario.Key(), vatRegime, vatCountry, vatType)

	if outputFormat == "table" {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SCENARIO\tRATE\tCATEGORY\tMENTION")
		fmt.Fprintf(tw, "%s\t%s%%\t%s\t%s\n", scenario.Key(), scenario.Rate(), scenario.UBLCategory(), scenario.Mention().Text())
		return tw.Flush()
	}
	return outputJSON(os.Stdout, scenario)
}

func runVATCheck(cmd *cobra.Command, args []string) error {
	normalized := vat.NormalizeVATNumber(args[0])
	valid := vat.ValidateVATNumber(normalized, checkCountry)
	if err := outputJSON(os.Stdout, map[string]any{"vat_number": normalized, "valid": valid}); err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("invalid VAT number %s", normalized)
	}
	return nil
}
