package model

import "fmt"

// ValidationError reports a structurally well-formed but semantically
// invalid field. ActivityID and Index locate the offending activity in
// the flattened log; Index is -1 for review-level errors.
type ValidationError struct {
	ActivityID string
	Index      int
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.ActivityID != "" {
		return fmt.Sprintf("activity %s: %s: %s", e.ActivityID, e.Field, e.Reason)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("activity #%d: %s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateActivity checks one activity in isolation. It never consults
// other activities: cross-activity conditions (dangling references,
// supersession cycles) are the derivation engine's concern.
func ValidateActivity(a *Activity) error {
	if a.ID == "" {
		return &ValidationError{Index: -1, Field: "id", Reason: "required"}
	}
	if !a.Category.Valid() {
		return &ValidationError{ActivityID: a.ID, Index: -1, Field: "category",
			Reason: fmt.Sprintf("unknown category %q", a.Category)}
	}
	if a.Author != nil && a.Author.Name == "" {
		return &ValidationError{ActivityID: a.ID, Index: -1, Field: "author.name", Reason: "required"}
	}
	if a.Severity != "" && !a.Severity.Valid() {
		return &ValidationError{ActivityID: a.ID, Index: -1, Field: "severity",
			Reason: fmt.Sprintf("unknown severity %q", a.Severity)}
	}
	if a.Location != nil {
		for _, lr := range a.Location.Lines {
			if lr.Start < 1 || lr.End < 1 {
				return &ValidationError{ActivityID: a.ID, Index: -1, Field: "location.lines",
					Reason: fmt.Sprintf("line bounds are 1-indexed, got [%d, %d]", lr.Start, lr.End)}
			}
			if lr.Start > lr.End {
				return &ValidationError{ActivityID: a.ID, Index: -1, Field: "location.lines",
					Reason: fmt.Sprintf("range start %d after end %d", lr.Start, lr.End)}
			}
		}
	}
	return nil
}

// ValidateReview checks the whole log: review-level fields, every
// activity including nested replies, and id uniqueness across the
// entire id-space. The first error wins.
func ValidateReview(r *Review) error {
	if r.Version == "" {
		return &ValidationError{Index: -1, Field: "version", Reason: "required"}
	}
	if r.Subject != nil && !subjectTypes[r.Subject.Type] {
		return &ValidationError{Index: -1, Field: "subject.type",
			Reason: fmt.Sprintf("unknown subject type %q", r.Subject.Type)}
	}

	seen := make(map[string]bool)
	for _, f := range r.Flatten() {
		if err := ValidateActivity(f.Activity); err != nil {
			if verr, ok := err.(*ValidationError); ok {
				verr.Index = f.Index
			}
			return err
		}
		if seen[f.Activity.ID] {
			return &ValidationError{ActivityID: f.Activity.ID, Index: f.Index,
				Field: "id", Reason: "duplicate id"}
		}
		seen[f.Activity.ID] = true
	}
	return nil
}
