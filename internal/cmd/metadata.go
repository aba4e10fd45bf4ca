package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Show corpus provenance metadata",
	Long: `Show the provenance of every loaded corpus.

Each accreditor reports its version, effective date, source URL,
license terms, and the declared versus actually loaded standard counts.
A mismatch between standard_count and loaded_node_count means standards
were rejected during load.

When no corpus is loaded in this process, the metadata persisted by the
last load is shown instead.

Examples:
  a3e metadata
  a3e metadata --format json`,
	RunE: runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
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

	metas, err := eng.CorpusMetadata()
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), format, metas)
}
