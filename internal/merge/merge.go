// Package merge reconciles two independently-edited copies of a review
// log into one.
//
// Merge is a pure union keyed by activity id: commutative and
// associative as sets, idempotent, with the empty log as identity. It
// never discards history — superseded and retracted activities survive
// a merge; only derivation hides them.
package merge

import (
	"fmt"

	"github.com/sprite-ai/revlog/internal/model"
)

// ConflictError means the same id appeared in both inputs with
// different immutable content. That is a caller bug (ids must be
// generated fresh per activity) and fails the whole merge: no partial
// result is returned.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict: activity %s has different content in each input", e.ID)
}

// Reviews merges b into a copy of a. Non-activity fields come from a,
// filled from b where a leaves them empty; the activity logs merge per
// Activities.
func Reviews(a, b *model.Review) (*model.Review, error) {
	merged, err := Activities(a.Activities, b.Activities)
	if err != nil {
		return nil, err
	}

	out := &model.Review{
		Version:      a.Version,
		Context:      a.Context,
		Subject:      a.Subject,
		AgentContext: a.AgentContext,
		Metadata:     a.Metadata,
		Activities:   merged,
	}
	if out.Version == "" {
		out.Version = b.Version
	}
	if out.Context == "" {
		out.Context = b.Context
	}
	if out.Subject == nil {
		out.Subject = b.Subject
	}
	if out.AgentContext == nil {
		out.AgentContext = b.AgentContext
	}
	if out.Metadata == nil {
		out.Metadata = b.Metadata
	}
	return out, nil
}

// Activities unions two activity sequences by id. Order is stable and
// deterministic: a's entries in a's order, then b-only entries in b's
// relative order, so repeat merges of the same inputs are
// byte-identical after encoding. Two copies of the same activity merge
// when their payloads match; their reply lists union recursively, since
// replies are separate log entries that happen to travel nested.
func Activities(a, b []model.Activity) ([]model.Activity, error) {
	byID := make(map[string]*model.Activity, len(b))
	for i := range b {
		byID[b[i].ID] = &b[i]
	}

	out := make([]model.Activity, 0, len(a)+len(b))
	inA := make(map[string]bool, len(a))
	for i := range a {
		left := a[i]
		inA[left.ID] = true
		right, ok := byID[left.ID]
		if !ok {
			out = append(out, left)
			continue
		}
		merged, err := mergeOne(&left, right)
		if err != nil {
			return nil, err
		}
		out = append(out, *merged)
	}

	for i := range b {
		if !inA[b[i].ID] {
			out = append(out, b[i])
		}
	}
	return out, nil
}

func mergeOne(a, b *model.Activity) (*model.Activity, error) {
	if !model.PayloadEqual(a, b) {
		return nil, &ConflictError{ID: a.ID}
	}
	replies, err := Activities(a.Replies, b.Replies)
	if err != nil {
		return nil, err
	}
	merged := *a
	merged.Replies = replies
	return &merged, nil
}
