package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
)

var trustDocument string

// trustCmd represents the trust command
var trustCmd = &cobra.Command{
	Use:   "trust <standard-id>",
	Short: "Score evidence trust for a standard",
	Long: `Score how trustworthy the evidence behind a standard is.

Trust blends five components, each in [0,1]: excerpt quality, source
reliability, mapping confidence, freshness of the upload, and document
completeness. Every component carries a plain-language explanation so
the number can be defended in front of a review panel.

Without --document the per-mapping scores are averaged into one value
for the standard. With --document the full component breakdown of that
single mapping is shown.

Examples:
  a3e trust HLC_3.C
  a3e trust HLC_3.C --document fy25-report
  a3e trust HLC_3.C --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runTrust,
}

func init() {
	rootCmd.AddCommand(trustCmd)
	trustCmd.Flags().StringVar(&trustDocument, "document", "", "Score one mapping instead of the standard aggregate")
}

func runTrust(cmd *cobra.Command, args []string) error {
	standardID := args[0]

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

	if trustDocument != "" {
		score, err := eng.ScoreTrust(trustDocument, standardID)
		if err != nil {
			return fmt.Errorf("scoring trust: %w", err)
		}
		return output.Render(cmd.OutOrStdout(), format, score)
	}

	agg, err := eng.StandardTrust(standardID)
	if err != nil {
		return fmt.Errorf("scoring trust: %w", err)
	}
	return output.Render(cmd.OutOrStdout(), format, agg)
}
