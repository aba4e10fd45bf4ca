package cmd

import (
	"fmt"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a3e in the current directory",
	Long: `Initialize a3e by creating the .a3e directory with a default config file.

The .a3e directory holds:
  config.yaml    Configuration (mapper, trust, risk, crosswalk, embedding)
  evidence.db    Persisted evidence mappings and corpus metadata

Next steps after init:
  1. Put per-accreditor definition files under the configured corpus dir
  2. Run 'a3e load' to build the standards graph
  3. Run 'a3e map <file>' to map evidence documents

Examples:
  a3e init            # Initialize in current directory`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.SaveDefault(".")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized a3e: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Next: put corpus definition files in place and run 'a3e load'\n")
	return nil
}
