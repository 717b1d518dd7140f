package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/derive"
)

var statusCmd = &cobra.Command{
	Use:   "status <file>",
	Short: "Print the derived state of a review log",
	Long: `Derive the current state of a review log from its event stream:
lifecycle status, reviewer set, resolved threads, and which activities
are still visible after supersession and retraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("format", "f", "text", "output format: text or json")
}

func runStatus(cmd *cobra.Command, args []string) error {
	review, _, err := codec.Load(args[0])
	if err != nil {
		return err
	}

	state := derive.Run(review)

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		out := struct {
			Status    string   `json:"status"`
			Reviewers []string `json:"reviewers"`
			Resolved  []string `json:"resolved"`
			Visible   []string `json:"visible"`
			Warnings  []string `json:"warnings,omitempty"`
		}{
			Status:    string(state.Status),
			Reviewers: state.Reviewers,
			Resolved:  state.ResolvedIDs,
			Visible:   state.VisibleIDs,
			Warnings:  state.Warnings,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("status: %s\n", state.Status)
	if len(state.Reviewers) > 0 {
		fmt.Printf("reviewers: %s\n", strings.Join(state.Reviewers, ", "))
	}
	fmt.Printf("visible: %d activities\n", len(state.VisibleIDs))
	if len(state.ResolvedIDs) > 0 {
		fmt.Printf("resolved: %s\n", strings.Join(state.ResolvedIDs, ", "))
	}
	for _, w := range state.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}
