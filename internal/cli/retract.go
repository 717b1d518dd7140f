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

var retractCmd = &cobra.Command{
	Use:   "retract <file> <activity-id>...",
	Short: "Retract activities from the derived view",
	Long: `Append a retract activity addressing the named ids. Retracted
activities stay in the log for history but disappear from the derived
view, reports, and the TUI's default filter.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRetract,
}

func init() {
	retractCmd.Flags().StringP("message", "m", "", "optional reason")
}

func runRetract(cmd *cobra.Command, args []string) error {
	path, targets := args[0], args[1:]
	review, format, err := codec.Load(path)
	if err != nil {
		return err
	}

	present := make(map[string]bool)
	for _, f := range review.Flatten() {
		present[f.Activity.ID] = true
	}
	for _, id := range targets {
		if !present[id] {
			return fmt.Errorf("no activity with id %q", id)
		}
	}

	message, _ := cmd.Flags().GetString("message")
	now := time.Now().UTC()
	review.Append(model.Activity{
		ID:        model.NewID(),
		Category:  model.CategoryRetract,
		Author:    config.Get().ModelAuthor(),
		Content:   message,
		Created:   &now,
		Addresses: targets,
	})

	if err := codec.Save(path, review, format); err != nil {
		return err
	}
	fmt.Printf("Retracted %s\n", strings.Join(targets, ", "))
	return nil
}
