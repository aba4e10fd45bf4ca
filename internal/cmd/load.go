package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load [directory]",
	Short: "Load accreditation standard corpora",
	Long: `Load every accreditor definition file from a directory into the graph.

Each *.yaml file declares one accreditor: its code, version, provenance
metadata, and a list of standards with nested clauses and indicators.
Standard ids are namespaced as {ACCREDITOR}_{id} so they stay unique
across accreditors.

Failure policy:
  A file that fails to parse, or a standard missing its id or title, is
  skipped and reported; the remaining files still load. Compare the
  declared standard_count with loaded_node_count in 'a3e metadata' to
  detect silent data loss.

Examples:
  a3e load                  # Load from the configured corpus dir
  a3e load ./standards      # Load from an explicit directory
  a3e load --format json    # JSON load report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := resolveCorpusDir(dir)
	if err != nil {
		return err
	}

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()
	defer eng.Close()

	snap, report, err := eng.LoadCorpus(dir)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	if report.HasIssues() {
		for _, f := range report.Files {
			if f.ParseError != "" {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", f.Path, f.ParseError)
			}
			for _, sk := range f.Skipped {
				fmt.Fprintf(os.Stderr, "warning: %s: standard %q skipped: %s\n", f.Path, sk.ID, sk.Reason)
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d standards across %d accreditor(s) from %s\n",
		snap.TotalStandards(), len(snap.Accreditors()), dir)
	if verbose {
		for _, meta := range snap.Metadata() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d/%d standards (version %s)\n",
				meta.Accreditor, meta.LoadedNodeCount, meta.StandardCount, meta.Version)
		}
	}
	return nil
}
