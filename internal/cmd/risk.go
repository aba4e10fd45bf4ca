package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/risk"
)

var riskScope string

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk [standard-id]",
	Short: "Predict gap risk for standards",
	Long: `Predict the risk that a standard fails review for lack of evidence.

Risk combines four signals: coverage gap (no evidence at all), evidence
quality (inverse of trust), mapping density against the configured
target, and recency of the newest evidence. The weighted risk lands in
one of five buckets from minimal to critical.

With a standard id, one standard is scored. Without one, every loaded
standard is scored in parallel and a bucket summary is appended; use
--accreditor to restrict the sweep.

Examples:
  a3e risk HLC_3.C                 # One standard
  a3e risk                         # Every loaded standard, with summary
  a3e risk --accreditor SACSCOC    # One accreditor's standards
  a3e risk --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRisk,
}

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.Flags().StringVar(&riskScope, "accreditor", "", "Restrict the bulk sweep to one accreditor")
}

type riskReport struct {
	Scores  []*risk.Score `json:"scores" yaml:"scores"`
	Skipped []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary risk.Summary  `json:"summary" yaml:"summary"`
}

func runRisk(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		score, err := eng.ScoreRisk(args[0])
		if err != nil {
			return fmt.Errorf("scoring risk: %w", err)
		}
		return output.Render(cmd.OutOrStdout(), format, score)
	}

	snap, err := eng.Snapshot()
	if err != nil {
		return err
	}
	var ids []string
	scope := strings.ToUpper(riskScope)
	if scope != "" {
		if !snap.HasAccreditor(scope) {
			return fmt.Errorf("accreditor %q is not loaded", scope)
		}
		for _, std := range snap.StandardsFor(scope) {
			ids = append(ids, std.ID)
		}
	} else {
		for _, std := range snap.AllStandards() {
			ids = append(ids, std.ID)
		}
	}

	scores, skipped, err := eng.ScoreRiskBulk(cmd.Context(), ids)
	if err != nil {
		return fmt.Errorf("scoring risk: %w", err)
	}
	report := riskReport{
		Scores:  scores,
		Skipped: skipped,
		Summary: eng.AggregateRisk(scores),
	}
	return output.Render(cmd.OutOrStdout(), format, report)
}
