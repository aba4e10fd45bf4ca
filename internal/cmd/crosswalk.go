package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
)

var (
	crosswalkThreshold float64
	crosswalkTopK      int
)

// crosswalkCmd represents the crosswalk command
var crosswalkCmd = &cobra.Command{
	Use:   "crosswalk <source> <target>",
	Short: "Find equivalent standards across accreditors",
	Long: `Crosswalk the source accreditor's standards against the target's.

Every source standard is compared to every target standard by keyword
overlap of titles and descriptions. Matches at or above the similarity
threshold are kept, best first, truncated to the top K per source
standard, with the overlapping keywords listed so the pairing can be
inspected.

Both accreditors must be loaded, and they must differ. A run that
exceeds the configured time budget returns the sources compared so far,
flagged as timed out.

Examples:
  a3e crosswalk HLC SACSCOC
  a3e crosswalk HLC SACSCOC --threshold 0.5
  a3e crosswalk HLC SACSCOC --top-k 3 --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runCrosswalk,
}

func init() {
	rootCmd.AddCommand(crosswalkCmd)
	crosswalkCmd.Flags().Float64Var(&crosswalkThreshold, "threshold", -1, "Minimum similarity to keep a match (default: configured)")
	crosswalkCmd.Flags().IntVar(&crosswalkTopK, "top-k", 0, "Keep at most K matches per source standard (default: configured)")
}

func runCrosswalk(cmd *cobra.Command, args []string) error {
	// codes are stored uppercase; accept any casing from the user
	source, target := strings.ToUpper(args[0]), strings.ToUpper(args[1])

	format, err := parseOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	threshold := crosswalkThreshold
	if threshold < 0 {
		threshold = cfg.Crosswalk.Threshold
	}
	topK := crosswalkTopK
	if topK <= 0 {
		topK = cfg.Crosswalk.TopK
	}

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()
	defer eng.Close()

	res, err := eng.Crosswalk(cmd.Context(), source, target, threshold, topK)
	if err != nil {
		return fmt.Errorf("crosswalk: %w", err)
	}
	if res.TimedOut {
		fmt.Fprintln(os.Stderr, "warning: time budget exceeded; result is partial")
	}
	return output.Render(cmd.OutOrStdout(), format, res)
}
