package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/derive"
	"github.com/sprite-ai/revlog/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a styled review report (non-interactive)",
	Long: `Render the review log as a terminal report: subject, derived status,
and the visible activity stream with replies and resolutions. Pass
--all to include superseded and retracted activities.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("all", false, "include hidden (superseded/retracted) activities")
}

func runShow(cmd *cobra.Command, args []string) error {
	review, _, err := codec.Load(args[0])
	if err != nil {
		return err
	}

	showAll, _ := cmd.Flags().GetBool("all")
	state := derive.Run(review)
	fmt.Print(render.Review(review, state, showAll))
	return nil
}
