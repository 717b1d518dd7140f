package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/config"
	"github.com/sprite-ai/revlog/internal/model"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <activity-id>...",
	Short: "Mark activities as resolved",
	Long: `Append a resolved activity as a reply to each named activity. The
targets themselves are never modified; resolution is derived from the
replies.

Examples:
  revlog resolve review.yaml d9ol2k3v
  revlog resolve review.yaml d9ol2k3v -m "fixed in 4c1a2ee"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringP("message", "m", "", "optional resolution note")
}

func runResolve(cmd *cobra.Command, args []string) error {
	path, targets := args[0], args[1:]
	review, format, err := codec.Load(path)
	if err != nil {
		return err
	}

	message, _ := cmd.Flags().GetString("message")
	author := config.Get().ModelAuthor()
	now := time.Now().UTC()

	for _, target := range targets {
		a := model.Activity{
			ID:       model.NewID(),
			Category: model.CategoryResolved,
			Author:   author,
			Content:  message,
			Created:  &now,
		}
		if err := appendActivity(review, target, a); err != nil {
			return err
		}
	}

	if err := codec.Save(path, review, format); err != nil {
		return err
	}
	fmt.Printf("Resolved %s\n", strings.Join(targets, ", "))
	return nil
}
