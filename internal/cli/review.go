package cli

import (
	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Open an interactive review browser",
	Long: `Open an interactive TUI for browsing a review log: the activity
stream on the left, details and discussion on the right. The browser
is read-only; use "comment", "resolve", and "retract" to append.

Examples:
  revlog review review.yaml
  revlog review .reviews/pr-412.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	review, _, err := codec.Load(args[0])
	if err != nil {
		return err
	}
	return tui.Run(review)
}
