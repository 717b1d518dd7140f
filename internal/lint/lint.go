// Package lint implements consistency passes over a review log.
//
// Unlike validation, these checks are advisory: they flag things a
// reviewer probably wants to know about (stale locations, dangling
// references, supersession cycles) without rejecting the log.
package lint

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/revlog/internal/derive"
	"github.com/sprite-ai/revlog/internal/model"
	"github.com/sprite-ai/revlog/internal/vocab"
)

// Finding is a single result from a lint pass.
type Finding struct {
	Pass       string // which pass produced this
	ActivityID string
	File       string // location file, if relevant
	Message    string
	Severity   model.Severity
}

func (f Finding) String() string {
	loc := f.ActivityID
	if f.File != "" {
		loc = fmt.Sprintf("%s (%s)", f.ActivityID, f.File)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Pass, loc, f.Message)
}

// Results holds all findings from running lint passes.
type Results struct {
	Findings []Finding
}

// ByActivity returns findings grouped by activity id.
func (r *Results) ByActivity() map[string][]Finding {
	m := make(map[string][]Finding)
	for _, f := range r.Findings {
		m[f.ActivityID] = append(m[f.ActivityID], f)
	}
	return m
}

var severityRank = map[model.Severity]int{
	model.SeverityInfo:     0,
	model.SeverityWarning:  1,
	model.SeverityError:    2,
	model.SeverityCritical: 3,
}

// MaxSeverity returns the highest severity among all findings.
func (r *Results) MaxSeverity() model.Severity {
	max := model.SeverityInfo
	for _, f := range r.Findings {
		if severityRank[f.Severity] > severityRank[max] {
			max = f.Severity
		}
	}
	return max
}

// Summary returns a one-line summary of findings.
func (r *Results) Summary() string {
	if len(r.Findings) == 0 {
		return "No issues found"
	}

	counts := make(map[model.Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}

	var parts []string
	for _, s := range []model.Severity{model.SeverityCritical, model.SeverityError, model.SeverityWarning, model.SeverityInfo} {
		if c := counts[s]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, s))
		}
	}
	return strings.Join(parts, ", ")
}

// Pass is a function that checks one aspect of a review.
type Pass func(r *model.Review) []Finding

// PassNames maps pass names (for --skip) to their implementations.
var PassNames = map[string]Pass{
	"references": ReferencePass,
	"cycles":     CyclePass,
	"locations":  LocationPass,
	"context":    ContextPass,
}

// Run executes all passes (or all but the skipped ones) in a stable
// order and returns the aggregated results.
func Run(r *model.Review, skip []string) *Results {
	skipSet := make(map[string]bool)
	for _, s := range skip {
		skipSet[s] = true
	}

	results := &Results{}
	for _, name := range []string{"references", "cycles", "locations", "context"} {
		if skipSet[name] {
			continue
		}
		results.Findings = append(results.Findings, PassNames[name](r)...)
	}
	return results
}

// ReferencePass flags supersedes/addresses entries that point at ids
// absent from the log. Partial logs are legal, so these are
// informational only.
func ReferencePass(r *model.Review) []Finding {
	flat := r.Flatten()
	present := make(map[string]bool, len(flat))
	for _, f := range flat {
		present[f.Activity.ID] = true
	}

	var findings []Finding
	for _, f := range flat {
		a := f.Activity
		for _, t := range a.Supersedes {
			if !present[t] {
				findings = append(findings, Finding{
					Pass:       "references",
					ActivityID: a.ID,
					Message:    fmt.Sprintf("supersedes unknown id %q (log may be partial)", t),
					Severity:   model.SeverityInfo,
				})
			}
		}
		for _, t := range a.Addresses {
			if !present[t] {
				findings = append(findings, Finding{
					Pass:       "references",
					ActivityID: a.ID,
					Message:    fmt.Sprintf("addresses unknown id %q (log may be partial)", t),
					Severity:   model.SeverityInfo,
				})
			}
		}
	}
	return findings
}

// ContextPass checks the optional "@context" vocabulary pointer. An
// unrecognized pointer still round-trips; tooling just won't know the
// term mapping.
func ContextPass(r *model.Review) []Finding {
	if r.Context == "" || r.Context == vocab.DefaultContext {
		return nil
	}
	return []Finding{{
		Pass:     "context",
		Message:  fmt.Sprintf("unrecognized @context %q (expected %q)", r.Context, vocab.DefaultContext),
		Severity: model.SeverityInfo,
	}}
}

// CyclePass surfaces supersession cycles found during derivation.
func CyclePass(r *model.Review) []Finding {
	var findings []Finding
	for _, w := range derive.Run(r).Warnings {
		findings = append(findings, Finding{
			Pass:     "cycles",
			Message:  w,
			Severity: model.SeverityError,
		})
	}
	return findings
}
