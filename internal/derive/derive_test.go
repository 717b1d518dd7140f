package derive

import (
	"reflect"
	"testing"
	"time"

	"github.com/sprite-ai/revlog/internal/model"
)

func ts(sec int) *time.Time {
	t := time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC)
	return &t
}

func review(activities ...model.Activity) *model.Review {
	r := model.New()
	r.Append(activities...)
	return r
}

func TestResolvedByAddress(t *testing.T) {
	r := review(
		model.Activity{ID: "C1", Category: model.CategoryIssue, Content: "off-by-one"},
		model.Activity{ID: "C1b", Category: model.CategoryResolved, Addresses: []string{"C1"}},
	)

	s := Run(r)
	if !reflect.DeepEqual(s.ResolvedIDs, []string{"C1"}) {
		t.Errorf("expected resolved [C1], got %v", s.ResolvedIDs)
	}
	if !s.Visible("C1") || !s.Visible("C1b") {
		t.Errorf("both activities should stay visible, got %v", s.VisibleIDs)
	}
	if s.Status != StatusActive {
		t.Errorf("expected active, got %s", s.Status)
	}
}

func TestResolvedByNestedReply(t *testing.T) {
	r := review(
		model.Activity{ID: "C1", Category: model.CategoryIssue, Replies: []model.Activity{
			{ID: "C1r", Category: model.CategoryResolved},
		}},
	)

	s := Run(r)
	if !s.Resolved("C1") {
		t.Errorf("a resolved reply should resolve its parent, got %v", s.ResolvedIDs)
	}
}

func TestSupersededHidden(t *testing.T) {
	r := review(
		model.Activity{ID: "X", Category: model.CategoryNote, Content: "v1"},
		model.Activity{ID: "Y", Category: model.CategoryNote, Content: "v2", Supersedes: []string{"X"}},
	)

	s := Run(r)
	if s.Visible("X") {
		t.Error("superseded activity should be hidden")
	}
	if !s.Visible("Y") {
		t.Error("superseding activity should be visible")
	}
}

func TestSupersessionChain(t *testing.T) {
	r := review(
		model.Activity{ID: "A", Category: model.CategoryNote},
		model.Activity{ID: "B", Category: model.CategoryNote, Supersedes: []string{"A"}},
		model.Activity{ID: "C", Category: model.CategoryNote, Supersedes: []string{"B"}},
	)

	s := Run(r)
	if !reflect.DeepEqual(s.VisibleIDs, []string{"C"}) {
		t.Errorf("only the newest generation should be visible, got %v", s.VisibleIDs)
	}
}

func TestSupersessionCycleWarnsAndShowsAll(t *testing.T) {
	r := review(
		model.Activity{ID: "A", Category: model.CategoryNote, Supersedes: []string{"B"}},
		model.Activity{ID: "B", Category: model.CategoryNote, Supersedes: []string{"A"}},
	)

	s := Run(r)
	if len(s.Warnings) == 0 {
		t.Error("expected a cycle warning")
	}
	if !s.Visible("A") || !s.Visible("B") {
		t.Errorf("cyclic activities should all stay visible, got %v", s.VisibleIDs)
	}
}

func TestRetractedHidden(t *testing.T) {
	r := review(
		model.Activity{ID: "Z", Category: model.CategoryNote},
		model.Activity{ID: "R", Category: model.CategoryRetract, Addresses: []string{"Z"}},
	)

	s := Run(r)
	if s.Visible("Z") {
		t.Error("retracted activity should be hidden")
	}
	if !s.Visible("R") {
		t.Error("the retraction itself should be visible")
	}
}

func TestRetractOfSupersededIsNoOp(t *testing.T) {
	r := review(
		model.Activity{ID: "Z", Category: model.CategoryNote},
		model.Activity{ID: "Z2", Category: model.CategoryNote, Supersedes: []string{"Z"}},
		model.Activity{ID: "R", Category: model.CategoryRetract, Addresses: []string{"Z"}},
	)

	s := Run(r)
	if s.Visible("Z") {
		t.Error("Z should be hidden")
	}
	if s.Visible("R") {
		t.Error("a retract with no remaining effect should be hidden")
	}
	if !s.Visible("Z2") {
		t.Error("Z2 should be visible")
	}
}

func TestDanglingReferencesIgnored(t *testing.T) {
	r := review(
		model.Activity{ID: "A", Category: model.CategoryNote, Supersedes: []string{"ghost-1"}},
		model.Activity{ID: "R", Category: model.CategoryRetract, Addresses: []string{"ghost-2"}},
	)

	s := Run(r)
	if !s.Visible("A") || !s.Visible("R") {
		t.Errorf("dangling references neither remove nor implicate, got %v", s.VisibleIDs)
	}
	if len(s.Warnings) != 0 {
		t.Errorf("dangling references are not warnings, got %v", s.Warnings)
	}
}

func TestStatusLatestTimestampWins(t *testing.T) {
	r := review(
		model.Activity{ID: "s1", Category: model.CategoryClosed, Created: ts(1)},
		model.Activity{ID: "s2", Category: model.CategoryReopened, Created: ts(2)},
		model.Activity{ID: "s3", Category: model.CategoryMerged, Created: ts(3)},
	)

	if s := Run(r); s.Status != StatusMerged {
		t.Errorf("expected merged, got %s", s.Status)
	}
}

func TestStatusAppendOrderFallback(t *testing.T) {
	r := review(
		model.Activity{ID: "s1", Category: model.CategoryClosed, Created: ts(1)},
		model.Activity{ID: "s2", Category: model.CategoryReopened, Created: ts(2)},
		model.Activity{ID: "s3", Category: model.CategoryMerged}, // no timestamp, appended last
	)

	if s := Run(r); s.Status != StatusMerged {
		t.Errorf("expected merged via append-order fallback, got %s", s.Status)
	}
}

func TestStatusTieBreaksByAppendOrder(t *testing.T) {
	r := review(
		model.Activity{ID: "s1", Category: model.CategoryMerged, Created: ts(5)},
		model.Activity{ID: "s2", Category: model.CategoryClosed, Created: ts(5)},
	)

	if s := Run(r); s.Status != StatusClosed {
		t.Errorf("identical timestamps fall back to append order, got %s", s.Status)
	}
}

func TestStatusIgnoresHiddenActivities(t *testing.T) {
	r := review(
		model.Activity{ID: "s1", Category: model.CategoryClosed, Created: ts(2)},
		model.Activity{ID: "R", Category: model.CategoryRetract, Addresses: []string{"s1"}},
	)

	if s := Run(r); s.Status != StatusActive {
		t.Errorf("a retracted status change must not count, got %s", s.Status)
	}
}

func TestStatusDefaultActive(t *testing.T) {
	r := review(model.Activity{ID: "n", Category: model.CategoryNote})
	if s := Run(r); s.Status != StatusActive {
		t.Errorf("expected active, got %s", s.Status)
	}
}

func TestReviewersFromVisibleAssignments(t *testing.T) {
	r := review(
		model.Activity{ID: "a1", Category: model.CategoryAssigned, Mentions: []string{"bo", "ada"}},
		model.Activity{ID: "a2", Category: model.CategoryAssigned, Mentions: []string{"ada", "cy"}},
		model.Activity{ID: "a3", Category: model.CategoryAssigned, Mentions: []string{"zed"}},
		model.Activity{ID: "R", Category: model.CategoryRetract, Addresses: []string{"a3"}},
		model.Activity{ID: "m", Category: model.CategoryMention, Mentions: []string{"not-a-reviewer"}},
	)

	s := Run(r)
	want := []string{"ada", "bo", "cy"}
	if !reflect.DeepEqual(s.Reviewers, want) {
		t.Errorf("expected %v, got %v", want, s.Reviewers)
	}
}

func TestRunIsDeterministicAndPure(t *testing.T) {
	r := review(
		model.Activity{ID: "a", Category: model.CategoryIssue, Supersedes: []string{"zz", "b"}},
		model.Activity{ID: "b", Category: model.CategoryNote},
		model.Activity{ID: "c", Category: model.CategoryAssigned, Mentions: []string{"y", "x", "w"}},
		model.Activity{ID: "d", Category: model.CategoryResolved, Addresses: []string{"a", "c"}},
	)
	before := len(r.Activities)

	first := Run(r)
	for i := 0; i < 50; i++ {
		if next := Run(r); !reflect.DeepEqual(first, next) {
			t.Fatalf("derivation not deterministic: %+v vs %+v", first, next)
		}
	}
	if len(r.Activities) != before {
		t.Error("derivation must not mutate the input")
	}
}
