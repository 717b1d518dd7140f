package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check review log files for schema errors",
	Long: `Parse and validate one or more review log files. The encoding is
detected from the file extension. Validation rejects unknown
categories, missing required fields, malformed line ranges, duplicate
ids, and unsupported schema versions.

Exit codes:
  0 — all files valid
  1 — at least one file failed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolP("quiet", "q", false, "suppress per-file OK lines")
}

func runValidate(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")

	failed := 0
	for _, path := range args {
		_, format, err := codec.Load(path)
		if err != nil {
			fmt.Printf("FAIL: %s: %v\n", path, err)
			failed++
			continue
		}
		if !quiet {
			fmt.Printf("OK: %s (%s)\n", path, format)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}
