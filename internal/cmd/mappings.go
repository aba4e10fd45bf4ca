package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

var (
	mappingsStandard string
	mappingsDocument string
)

// mappingsCmd represents the mappings command
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List stored evidence mappings",
	Long: `List persisted evidence mappings by standard or by document.

Exactly one of --standard or --document must be given. Results are the
stored records, including excerpts and timestamps, in whichever output
format is selected.

Examples:
  a3e mappings --standard HLC_3.C
  a3e mappings --document fy25-report --format json`,
	RunE: runMappings,
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.Flags().StringVar(&mappingsStandard, "standard", "", "List mappings for a standard id")
	mappingsCmd.Flags().StringVar(&mappingsDocument, "document", "", "List mappings for a document id")
}

func runMappings(cmd *cobra.Command, args []string) error {
	if (mappingsStandard == "") == (mappingsDocument == "") {
		return fmt.Errorf("exactly one of --standard or --document is required")
	}

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

	var mappings []*store.EvidenceMapping
	if mappingsStandard != "" {
		mappings, err = eng.MappingsForStandard(mappingsStandard)
	} else {
		mappings, err = eng.MappingsForDocument(mappingsDocument)
	}
	if err != nil {
		return err
	}
	return output.Render(cmd.OutOrStdout(), format, mappings)
}
