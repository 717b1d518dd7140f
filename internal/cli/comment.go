package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/config"
	"github.com/sprite-ai/revlog/internal/model"
)

var commentCmd = &cobra.Command{
	Use:   "comment <file>",
	Short: "Append a comment activity to a review log",
	Long: `Append a new activity to the log, authored by the identity from the
revlog config (or $USER). The file is rewritten in its own encoding;
existing activities are never modified.

Examples:
  revlog comment review.yaml -m "token never expires" -c issue --file auth.go --lines 40-45
  revlog comment review.yaml -m "fixed in rev 2" --reply d9ol2k3v
  revlog comment review.yaml -m "use a constant" -c suggestion --severity info`,
	Args: cobra.ExactArgs(1),
	RunE: runComment,
}

func init() {
	commentCmd.Flags().StringP("message", "m", "", "comment text (required)")
	commentCmd.Flags().StringP("category", "c", "note", "activity category")
	commentCmd.Flags().String("file", "", "file the comment applies to")
	commentCmd.Flags().StringSlice("lines", nil, "line range, e.g. 10 or 10-15 (repeatable)")
	commentCmd.Flags().String("reply", "", "id of the activity to reply to")
	commentCmd.Flags().String("severity", "", "severity: info, warning, error, or critical")
	commentCmd.Flags().StringSlice("mention", nil, "reviewer to mention (repeatable)")
	commentCmd.Flags().StringSlice("supersedes", nil, "id of an activity this replaces (repeatable)")
	commentCmd.MarkFlagRequired("message")
}

func runComment(cmd *cobra.Command, args []string) error {
	path := args[0]
	review, format, err := codec.Load(path)
	if err != nil {
		return err
	}

	message, _ := cmd.Flags().GetString("message")
	category, _ := cmd.Flags().GetString("category")
	severity, _ := cmd.Flags().GetString("severity")
	mentions, _ := cmd.Flags().GetStringSlice("mention")
	supersedes, _ := cmd.Flags().GetStringSlice("supersedes")

	now := time.Now().UTC()
	a := model.Activity{
		ID:         model.NewID(),
		Category:   model.Category(category),
		Author:     config.Get().ModelAuthor(),
		Content:    message,
		Created:    &now,
		Severity:   model.Severity(severity),
		Mentions:   mentions,
		Supersedes: supersedes,
	}

	file, _ := cmd.Flags().GetString("file")
	lineSpecs, _ := cmd.Flags().GetStringSlice("lines")
	if file != "" || len(lineSpecs) > 0 {
		loc := &model.Location{File: file}
		for _, spec := range lineSpecs {
			lr, err := parseLineRange(spec)
			if err != nil {
				return err
			}
			loc.Lines = append(loc.Lines, lr)
		}
		a.Location = loc
	}

	if err := model.ValidateActivity(&a); err != nil {
		return err
	}

	parent, _ := cmd.Flags().GetString("reply")
	if err := appendActivity(review, parent, a); err != nil {
		return err
	}

	if err := codec.Save(path, review, format); err != nil {
		return err
	}
	fmt.Printf("Appended %s %s\n", a.Category, a.ID)
	return nil
}

// appendActivity appends a at the top level, or as a reply when parent
// names an existing activity.
func appendActivity(review *model.Review, parent string, a model.Activity) error {
	if parent == "" {
		review.Append(a)
		return nil
	}
	for _, f := range review.Flatten() {
		if f.Activity.ID == parent {
			f.Activity.Replies = append(f.Activity.Replies, a)
			return nil
		}
	}
	return fmt.Errorf("no activity with id %q", parent)
}

func parseLineRange(spec string) (model.LineRange, error) {
	start, end, found := strings.Cut(spec, "-")
	if !found {
		end = start
	}
	s, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return model.LineRange{}, fmt.Errorf("invalid line range %q", spec)
	}
	e, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return model.LineRange{}, fmt.Errorf("invalid line range %q", spec)
	}
	return model.LineRange{Start: s, End: e}, nil
}
