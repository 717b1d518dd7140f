package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revlog/internal/codec"
	"github.com/sprite-ai/revlog/internal/lint"
	"github.com/sprite-ai/revlog/internal/model"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run lint passes and output a report (non-interactive)",
	Long: `Run all lint passes over a review log and report the findings.
Useful for CI and pre-commit hooks.

Passes:
  references — dangling supersedes/addresses targets
  cycles     — supersession cycles
  locations  — comment locations outside the agent context diff

Exit codes:
  0 — clean, or informational findings only
  1 — warnings found
  2 — errors found`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "output format: text or json")
	checkCmd.Flags().StringSlice("skip", nil, "lint passes to skip")
}

func runCheck(cmd *cobra.Command, args []string) error {
	review, _, err := codec.Load(args[0])
	if err != nil {
		return err
	}

	skip, _ := cmd.Flags().GetStringSlice("skip")
	results := lint.Run(review, skip)

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		if err := checkJSON(results); err != nil {
			return err
		}
	} else {
		checkText(results)
	}

	// Set exit code
	switch results.MaxSeverity() {
	case model.SeverityError, model.SeverityCritical:
		os.Exit(2)
	case model.SeverityWarning:
		os.Exit(1)
	}
	return nil
}

func checkText(results *lint.Results) {
	fmt.Printf("Lint: %s\n", results.Summary())
	for _, f := range results.Findings {
		fmt.Printf("  %s\n", f)
	}
}

func checkJSON(results *lint.Results) error {
	type jsonFinding struct {
		Pass       string `json:"pass"`
		ActivityID string `json:"activity_id,omitempty"`
		File       string `json:"file,omitempty"`
		Message    string `json:"message"`
		Severity   string `json:"severity"`
	}

	out := struct {
		Summary     string        `json:"summary"`
		MaxSeverity string        `json:"max_severity"`
		Total       int           `json:"total"`
		Findings    []jsonFinding `json:"findings"`
	}{
		Summary:     results.Summary(),
		MaxSeverity: string(results.MaxSeverity()),
		Total:       len(results.Findings),
	}

	for _, f := range results.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			Pass:       f.Pass,
			ActivityID: f.ActivityID,
			File:       f.File,
			Message:    f.Message,
			Severity:   string(f.Severity),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
