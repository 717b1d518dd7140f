package lint

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/revlog/internal/model"
)

// LocationPass checks visible activity locations against the diff in
// the review's agent context: files the diff never touches, and line
// ranges that fall outside every hunk. Skipped when there is no diff.
func LocationPass(r *model.Review) []Finding {
	if r.AgentContext == nil || strings.TrimSpace(r.AgentContext.Diff) == "" {
		return nil
	}

	index, err := indexDiff(r.AgentContext.Diff)
	if err != nil {
		return []Finding{{
			Pass:     "locations",
			Message:  fmt.Sprintf("agent context diff does not parse: %v", err),
			Severity: model.SeverityWarning,
		}}
	}

	var findings []Finding
	for _, f := range r.Flatten() {
		a := f.Activity
		if a.Location == nil || a.Location.File == "" {
			continue
		}
		spans, ok := index[a.Location.File]
		if !ok {
			findings = append(findings, Finding{
				Pass:       "locations",
				ActivityID: a.ID,
				File:       a.Location.File,
				Message:    "file is not part of the reviewed diff",
				Severity:   model.SeverityWarning,
			})
			continue
		}
		for _, lr := range a.Location.Lines {
			if !spans.covers(lr, a.Location.Deleted) {
				findings = append(findings, Finding{
					Pass:       "locations",
					ActivityID: a.ID,
					File:       a.Location.File,
					Message:    fmt.Sprintf("lines [%d, %d] fall outside every hunk", lr.Start, lr.End),
					Severity:   model.SeverityWarning,
				})
			}
		}
	}
	return findings
}

// fileSpans records the line spans each hunk covers, on both sides of
// the diff. Comments flagged "deleted" target old-side lines.
type fileSpans struct {
	newSide []span
	oldSide []span
}

type span struct {
	start, end int
}

func (fs fileSpans) covers(lr model.LineRange, deleted bool) bool {
	side := fs.newSide
	if deleted {
		side = fs.oldSide
	}
	for _, s := range side {
		if lr.Start >= s.start && lr.End <= s.end {
			return true
		}
	}
	return false
}

func indexDiff(raw string) (map[string]fileSpans, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	index := make(map[string]fileSpans, len(files))
	for _, f := range files {
		name := f.NewName
		if name == "" {
			name = f.OldName
		}
		fs := index[name]
		for _, frag := range f.TextFragments {
			if frag.NewLines > 0 {
				fs.newSide = append(fs.newSide, span{
					start: int(frag.NewPosition),
					end:   int(frag.NewPosition) + int(frag.NewLines) - 1,
				})
			}
			if frag.OldLines > 0 {
				fs.oldSide = append(fs.oldSide, span{
					start: int(frag.OldPosition),
					end:   int(frag.OldPosition) + int(frag.OldLines) - 1,
				})
			}
		}
		index[name] = fs
	}
	return index, nil
}
