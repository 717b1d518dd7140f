package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/merge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <a> <b>",
	Short: "Merge two divergent copies of a review log",
	Long: `Merge two review logs into one. Activities are united by id: entries
unique to either side are kept, identical duplicates collapse, and
replies under shared activities are united recursively. Two different
activities with the same id are a conflict.

The merge is order-independent: merging a into b and b into a produce
the same log. Without -o the result is written to stdout in the first
file's encoding.

Examples:
  revlog merge mine.yaml theirs.yaml -o merged.yaml
  revlog merge mine.yaml theirs.json`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "write the merged log to this file")
}

func runMerge(cmd *cobra.Command, args []string) error {
	a, formatA, err := codec.Load(args[0])
	if err != nil {
		return err
	}
	b, _, err := codec.Load(args[1])
	if err != nil {
		return err
	}

	merged, err := merge.Reviews(a, b)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		data, err := codec.Encode(merged, formatA)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := codec.Save(out, merged, codec.DetectFormat(out)); err != nil {
		return err
	}
	fmt.Printf("Merged %d activities into %s\n", len(merged.Flatten()), out)
	return nil
}
