// Package model defines the canonical in-memory form of a review log.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/xid"
	"gopkg.in/yaml.v3"
)

// Version is the schema version written to new reviews.
const Version = "0.1"

// Category discriminates what kind of entry an activity is. The set is
// closed: unrecognized values are rejected at decode time.
type Category string

const (
	// Commentary
	CategoryNote       Category = "note"
	CategorySuggestion Category = "suggestion"
	CategoryIssue      Category = "issue"
	CategoryPraise     Category = "praise"
	CategoryQuestion   Category = "question"
	CategoryTask       Category = "task"
	CategorySecurity   Category = "security"

	// Review marks
	CategoryReviewed Category = "reviewed"
	CategoryIgnored  Category = "ignored"

	// Resolution and retraction
	CategoryResolved Category = "resolved"
	CategoryRetract  Category = "retract"

	// Attention
	CategoryMention  Category = "mention"
	CategoryAssigned Category = "assigned"

	// Status changes
	CategoryClosed   Category = "closed"
	CategoryMerged   Category = "merged"
	CategoryReopened Category = "reopened"

	// Verdicts
	CategoryApproved         Category = "approved"
	CategoryChangesRequested Category = "changes_requested"
	CategoryCommented        Category = "commented"
	CategoryPending          Category = "pending"
)

var categories = map[Category]bool{
	CategoryNote: true, CategorySuggestion: true, CategoryIssue: true,
	CategoryPraise: true, CategoryQuestion: true, CategoryTask: true,
	CategorySecurity: true, CategoryReviewed: true, CategoryIgnored: true,
	CategoryResolved: true, CategoryRetract: true, CategoryMention: true,
	CategoryAssigned: true, CategoryClosed: true, CategoryMerged: true,
	CategoryReopened: true, CategoryApproved: true,
	CategoryChangesRequested: true, CategoryCommented: true,
	CategoryPending: true,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return categories[c] }

// IsCommentary reports whether c is one of the comment categories.
func (c Category) IsCommentary() bool {
	switch c {
	case CategoryNote, CategorySuggestion, CategoryIssue, CategoryPraise,
		CategoryQuestion, CategoryTask, CategorySecurity:
		return true
	}
	return false
}

// IsStatus reports whether c changes the review status.
func (c Category) IsStatus() bool {
	switch c {
	case CategoryClosed, CategoryMerged, CategoryReopened:
		return true
	}
	return false
}

// IsVerdict reports whether c is a review verdict.
func (c Category) IsVerdict() bool {
	switch c {
	case CategoryApproved, CategoryChangesRequested, CategoryCommented, CategoryPending:
		return true
	}
	return false
}

// Severity grades a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Author identifies who wrote an activity — a human or an agent.
type Author struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"` // "agent" for non-humans
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Selector references a semantic code element rather than a line span.
type Selector struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

// LineRange is a 1-indexed inclusive span of lines. It serializes as an
// ordered pair [start, end] in the tree-structured encodings.
type LineRange struct {
	Start int
	End   int
}

func (lr LineRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{lr.Start, lr.End})
}

func (lr *LineRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line range must be a [start, end] pair, got %d elements", len(pair))
	}
	lr.Start, lr.End = pair[0], pair[1]
	return nil
}

func (lr LineRange) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(lr.Start)},
			{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(lr.End)},
		},
	}, nil
}

func (lr *LineRange) UnmarshalYAML(node *yaml.Node) error {
	var pair []int
	if err := node.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line range must be a [start, end] pair, got %d elements", len(pair))
	}
	lr.Start, lr.End = pair[0], pair[1]
	return nil
}

// Location says where in the code an activity applies.
type Location struct {
	File      string      `json:"file,omitempty" yaml:"file,omitempty"`
	Lines     []LineRange `json:"lines,omitempty" yaml:"lines,omitempty"`
	Selector  *Selector   `json:"selector,omitempty" yaml:"selector,omitempty"`
	Deleted   bool        `json:"deleted,omitempty" yaml:"deleted,omitempty"` // targets a removed line
	Column    int         `json:"column,omitempty" yaml:"column,omitempty"`
	ColumnEnd int         `json:"column_end,omitempty" yaml:"column_end,omitempty"`
}

// Activity is one immutable entry in the review log. Entries are only
// ever appended: a logical edit appends a new activity superseding the
// old id, a logical delete appends a retract activity addressing it.
type Activity struct {
	ID         string     `json:"id,omitempty" yaml:"id,omitempty"`
	Category   Category   `json:"category" yaml:"category"`
	Author     *Author    `json:"author,omitempty" yaml:"author,omitempty"`
	Content    string     `json:"content,omitempty" yaml:"content,omitempty"`
	Location   *Location  `json:"location,omitempty" yaml:"location,omitempty"`
	Context    string     `json:"context,omitempty" yaml:"context,omitempty"`
	Replies    []Activity `json:"replies,omitempty" yaml:"replies,omitempty"`
	Created    *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Mentions   []string   `json:"mentions,omitempty" yaml:"mentions,omitempty"`
	Supersedes []string   `json:"supersedes,omitempty" yaml:"supersedes,omitempty"`
	Addresses  []string   `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	Severity   Severity   `json:"severity,omitempty" yaml:"severity,omitempty"`
	Conditions []string   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Subject describes what is under review. The core stores and
// round-trips it opaquely; branch/tag/ref are advisory and never feed
// derivation or merge.
type Subject struct {
	Type        string     `json:"type" yaml:"type"`
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Commit      string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	Tree        string     `json:"tree,omitempty" yaml:"tree,omitempty"`
	Blob        string     `json:"blob,omitempty" yaml:"blob,omitempty"`
	Checksum    string     `json:"checksum,omitempty" yaml:"checksum,omitempty"` // "algorithm:hex"
	Branch      string     `json:"branch,omitempty" yaml:"branch,omitempty"`
	Tag         string     `json:"tag,omitempty" yaml:"tag,omitempty"`
	Ref         string     `json:"ref,omitempty" yaml:"ref,omitempty"`
	Provider    string     `json:"provider,omitempty" yaml:"provider,omitempty"`
	ProviderRef string     `json:"provider_ref,omitempty" yaml:"provider_ref,omitempty"`
	Repo        string     `json:"repo,omitempty" yaml:"repo,omitempty"`
	Base        string     `json:"base,omitempty" yaml:"base,omitempty"`
	Head        string     `json:"head,omitempty" yaml:"head,omitempty"`
	BaseCommit  string     `json:"base_commit,omitempty" yaml:"base_commit,omitempty"`
	HeadCommit  string     `json:"head_commit,omitempty" yaml:"head_commit,omitempty"`
	Path        string     `json:"path,omitempty" yaml:"path,omitempty"`
	Scope       []string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

var subjectTypes = map[string]bool{
	"patch": true, "commit": true, "file": true,
	"directory": true, "audit": true, "snapshot": true,
}

// AgentContext is configuration for AI agents working the review. The
// core never interprets it.
type AgentContext struct {
	Instructions string         `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Diff         string         `json:"diff,omitempty" yaml:"diff,omitempty"`
	Settings     map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Review is the root object: one append-only log of review activity.
type Review struct {
	Version      string         `json:"version" yaml:"version"`
	Context      string         `json:"@context,omitempty" yaml:"-"` // vocabulary pointer, JSON form only
	Subject      *Subject       `json:"subject,omitempty" yaml:"subject,omitempty"`
	Activities   []Activity     `json:"activities,omitempty" yaml:"activities,omitempty"`
	AgentContext *AgentContext  `json:"agent_context,omitempty" yaml:"agent_context,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New returns an empty review at the current schema version.
func New() *Review {
	return &Review{Version: Version}
}

// Append adds activities to the end of the log.
func (r *Review) Append(activities ...Activity) {
	r.Activities = append(r.Activities, activities...)
}

// NewID generates a fresh activity id. Ids are sortable by creation
// time and need no coordination between writers.
func NewID() string {
	return xid.New().String()
}

// Flat pairs an activity with its parent in the reply tree. Replies
// share the top-level id-space, so most algorithms work on the
// flattened log.
type Flat struct {
	Activity *Activity
	Parent   *Activity // nil for top-level activities
	Index    int       // append-order position in the flattened walk
}

// Flatten walks the log depth-first, parents before their replies,
// preserving append order.
func (r *Review) Flatten() []Flat {
	var out []Flat
	var walk func(a *Activity, parent *Activity)
	walk = func(a *Activity, parent *Activity) {
		out = append(out, Flat{Activity: a, Parent: parent, Index: len(out)})
		for i := range a.Replies {
			walk(&a.Replies[i], a)
		}
	}
	for i := range r.Activities {
		walk(&r.Activities[i], nil)
	}
	return out
}
