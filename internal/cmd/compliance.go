package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
)

var complianceScope string

// complianceCmd represents the compliance command
var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Compute an institution-level compliance score",
	Long: `Compute a single compliance score across the loaded standards.

The score weights coverage (how many standards have at least one
evidence mapping) at 0.6 and average evidence trust over the mapped
standards at 0.4. A report with no evidence at all scores 0.0 with an
explanatory note rather than failing.

Examples:
  a3e compliance                    # Across every loaded accreditor
  a3e compliance --accreditor HLC   # One accreditor only
  a3e compliance --format json`,
	RunE: runCompliance,
}

func init() {
	rootCmd.AddCommand(complianceCmd)
	complianceCmd.Flags().StringVar(&complianceScope, "accreditor", "", "Score one accreditor instead of all loaded corpora")
}

func runCompliance(cmd *cobra.Command, args []string) error {
	format, err := parseOutputFormat()
	if err != nil {
		return err
	}

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()
	defer eng.Close()

	report, err := eng.ComputeCompliance(strings.ToUpper(complianceScope))
	if err != nil {
		return fmt.Errorf("computing compliance: %w", err)
	}
	return output.Render(cmd.OutOrStdout(), format, report)
}
