// Package derive computes review state from the raw activity log.
//
// Everything here is a pure function of the log: nothing is persisted,
// and two independent implementations reading the same bytes must
// arrive at identical state.
package derive

import (
	"fmt"
	"sort"

	"github.com/sprite-ai/revlog/internal/model"
)

// Status is the derived lifecycle state of a review.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
	StatusMerged Status = "merged"
)

// State is the derived view of a review log.
type State struct {
	Status      Status
	Reviewers   []string // sorted union of mentions on visible assigned activities
	ResolvedIDs []string // sorted
	VisibleIDs  []string // flattened append order
	Warnings    []string // non-fatal validity findings, e.g. supersession cycles
}

// Resolved reports whether the given id is resolved.
func (s *State) Resolved(id string) bool {
	for _, r := range s.ResolvedIDs {
		if r == id {
			return true
		}
	}
	return false
}

// Visible reports whether the given id is visible.
func (s *State) Visible(id string) bool {
	for _, v := range s.VisibleIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Run derives the state of r. The input is never mutated. Derivation
// always produces an answer from structurally valid input; cycles in
// the supersession graph are reported as warnings, not failures.
func Run(r *model.Review) *State {
	flat := r.Flatten()

	present := make(map[string]*model.Activity, len(flat))
	for _, f := range flat {
		present[f.Activity.ID] = f.Activity
	}

	superseded, warnings := supersededSet(flat, present)
	retracted, droppedRetracts := retractionSet(flat, present, superseded)

	state := &State{Status: StatusActive, Warnings: warnings}

	hidden := func(id string) bool {
		return superseded[id] || retracted[id] || droppedRetracts[id]
	}

	for _, f := range flat {
		if !hidden(f.Activity.ID) {
			state.VisibleIDs = append(state.VisibleIDs, f.Activity.ID)
		}
	}

	state.Status = status(flat, hidden)
	state.Reviewers = reviewers(flat, hidden)
	state.ResolvedIDs = resolved(flat, hidden)
	return state
}

// supersededSet marks every id reachable as a supersedes-target. Ids in
// a cycle (transitively superseding themselves) stay visible; each
// cycle surfaces one warning.
func supersededSet(flat []model.Flat, present map[string]*model.Activity) (map[string]bool, []string) {
	// Edges point from the superseding activity to its targets.
	edges := make(map[string][]string)
	targeted := make(map[string]bool)
	for _, f := range flat {
		for _, t := range f.Activity.Supersedes {
			if present[t] == nil {
				continue // dangling, ignored
			}
			edges[f.Activity.ID] = append(edges[f.Activity.ID], t)
			targeted[t] = true
		}
	}

	cyclic := cycleMembers(edges)
	var warnings []string
	if len(cyclic) > 0 {
		ids := make([]string, 0, len(cyclic))
		for id := range cyclic {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		warnings = append(warnings, fmt.Sprintf("supersession cycle involving %v", ids))
	}

	superseded := make(map[string]bool)
	for id := range targeted {
		if !cyclic[id] {
			superseded[id] = true
		}
	}
	return superseded, warnings
}

// cycleMembers returns the ids that can reach themselves through
// supersedes edges.
func cycleMembers(edges map[string][]string) map[string]bool {
	const (
		visiting = 1
		done     = 2
	)
	mark := make(map[string]int)
	inCycle := make(map[string]bool)

	var visit func(id string, stack []string)
	visit = func(id string, stack []string) {
		switch mark[id] {
		case visiting:
			// Everything from the previous occurrence of id on the
			// stack is part of a cycle.
			for i := len(stack) - 1; i >= 0; i-- {
				inCycle[stack[i]] = true
				if stack[i] == id {
					break
				}
			}
			return
		case done:
			return
		}
		mark[id] = visiting
		for _, t := range edges[id] {
			visit(t, append(stack, id))
		}
		mark[id] = done
	}

	ids := make([]string, 0, len(edges))
	for id := range edges {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic traversal order
	for _, id := range ids {
		visit(id, nil)
	}
	return inCycle
}

// retractionSet collects the ids withdrawn by retract activities, plus
// the retract activities that had no remaining effect: every present
// target was already hidden by supersession or by a different
// retraction. A retract whose targets are all absent stays visible —
// dangling references neither remove nor implicate anything.
func retractionSet(flat []model.Flat, present map[string]*model.Activity, superseded map[string]bool) (retracted, dropped map[string]bool) {
	retracted = make(map[string]bool)
	dropped = make(map[string]bool)

	retractedBy := make(map[string][]string) // target id -> retracting activity ids
	for _, f := range flat {
		if f.Activity.Category != model.CategoryRetract {
			continue
		}
		for _, t := range f.Activity.Addresses {
			if present[t] == nil {
				continue
			}
			retracted[t] = true
			retractedBy[t] = append(retractedBy[t], f.Activity.ID)
		}
	}

	for _, f := range flat {
		a := f.Activity
		if a.Category != model.CategoryRetract {
			continue
		}
		effective := false
		targets := 0
		for _, t := range a.Addresses {
			if present[t] == nil {
				continue
			}
			targets++
			if !superseded[t] && !retractedByOther(retractedBy[t], a.ID) {
				effective = true
			}
		}
		if targets > 0 && !effective {
			dropped[a.ID] = true
		}
	}
	return retracted, dropped
}

func retractedByOther(by []string, self string) bool {
	for _, id := range by {
		if id != self {
			return true
		}
	}
	return false
}

// status picks the chronologically latest visible status activity,
// ordered by created timestamp, falling back to append order when a
// timestamp is absent or ties. A single forward scan implements this: a
// later entry wins unless its timestamp is strictly earlier than the
// current winner's.
func status(flat []model.Flat, hidden func(string) bool) Status {
	var winner *model.Activity
	for _, f := range flat {
		a := f.Activity
		if !a.Category.IsStatus() || hidden(a.ID) {
			continue
		}
		if winner != nil && a.Created != nil && winner.Created != nil &&
			a.Created.Before(*winner.Created) {
			continue
		}
		winner = a
	}
	if winner == nil {
		return StatusActive
	}
	switch winner.Category {
	case model.CategoryClosed:
		return StatusClosed
	case model.CategoryMerged:
		return StatusMerged
	default: // reopened
		return StatusActive
	}
}

func reviewers(flat []model.Flat, hidden func(string) bool) []string {
	set := make(map[string]bool)
	for _, f := range flat {
		a := f.Activity
		if a.Category != model.CategoryAssigned || hidden(a.ID) {
			continue
		}
		for _, m := range a.Mentions {
			set[m] = true
		}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// resolved marks an id resolved when a visible resolved activity
// addresses it, or when a visible resolved reply is nested under it.
func resolved(flat []model.Flat, hidden func(string) bool) []string {
	set := make(map[string]bool)
	for _, f := range flat {
		a := f.Activity
		if a.Category != model.CategoryResolved || hidden(a.ID) {
			continue
		}
		for _, t := range a.Addresses {
			set[t] = true
		}
		if f.Parent != nil {
			set[f.Parent.ID] = true
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
