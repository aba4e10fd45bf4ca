package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/output"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

var (
	mapScope string
	mapID    string
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map <file>",
	Short: "Map an evidence document to standards",
	Long: `Map the text of an evidence document against the loaded standards.

The file is read as plain text. Pages are detected from "--- Page N ---"
style markers; a document without markers is treated as one page. Each
matched standard gets a confidence score in [0,1], a confidence band,
and up to a handful of supporting excerpts with page references.

Mappings are persisted as they are produced, so 'a3e trust', 'a3e risk'
and 'a3e compliance' see them immediately. Re-mapping the same document
overwrites its earlier mappings per standard.

Examples:
  a3e map report.txt                     # Map against every loaded accreditor
  a3e map report.txt --accreditor HLC    # Restrict candidates to HLC
  a3e map report.txt --id fy25-report    # Explicit document id
  a3e map report.txt --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringVar(&mapScope, "accreditor", "", "Restrict mapping to one accreditor")
	mapCmd.Flags().StringVar(&mapID, "id", "", "Document id (default: file name without extension)")
}

// mappingView is the user-facing shape of one persisted mapping.
type mappingView struct {
	StandardID string          `json:"standard_id" yaml:"standard_id"`
	Accreditor string          `json:"accreditor" yaml:"accreditor"`
	Confidence float64         `json:"confidence_score" yaml:"confidence_score"`
	Band       string          `json:"confidence_band" yaml:"confidence_band"`
	Method     string          `json:"mapping_method" yaml:"mapping_method"`
	Excerpts   []store.Excerpt `json:"excerpts,omitempty" yaml:"excerpts,omitempty"`
}

type mapReport struct {
	DocumentID string        `json:"document_id" yaml:"document_id"`
	PageCount  int           `json:"page_count" yaml:"page_count"`
	Mappings   []mappingView `json:"mappings" yaml:"mappings"`
}

func runMap(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading evidence file: %w", err)
	}

	id := mapID
	if id == "" {
		base := filepath.Base(path)
		id = strings.TrimSuffix(base, filepath.Ext(base))
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

	doc := &store.EvidenceDocument{
		ID:       id,
		Filename: filepath.Base(path),
		Text:     string(text),
	}
	mappings, err := eng.MapEvidence(cmd.Context(), doc, strings.ToUpper(mapScope))
	if err != nil {
		return err
	}

	report := mapReport{DocumentID: doc.ID, PageCount: doc.PageCount}
	for _, m := range mappings {
		report.Mappings = append(report.Mappings, mappingView{
			StandardID: m.StandardID,
			Accreditor: m.Accreditor,
			Confidence: m.Confidence,
			Band:       store.ConfidenceBand(m.Confidence),
			Method:     m.Method,
			Excerpts:   m.Excerpts,
		})
	}
	return output.Render(cmd.OutOrStdout(), format, report)
}
