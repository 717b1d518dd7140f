package codec

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sprite-ai/revlog/internal/model"
)

// The element-structured form. XML has no native repeated-element or
// tuple construct, so the wrapper conventions below are part of the
// format contract, not an implementation detail:
//
//	<activities><activity>…</activity></activities>
//	<replies><activity>…</activity></replies>
//	<lines><range><start>N</start><end>N</end></range></lines>
//	<supersedes><id>…</id></supersedes>
//	<addresses><id>…</id></addresses>
//	<mentions><mention>…</mention></mentions>
//	<conditions><condition>…</condition></conditions>
//	<scope><pattern>…</pattern></scope>

type xmlReview struct {
	XMLName      xml.Name         `xml:"review"`
	Version      string           `xml:"version,omitempty"`
	Subject      *xmlSubject      `xml:"subject"`
	Activities   []xmlActivity    `xml:"activities>activity"`
	AgentContext *xmlAgentContext `xml:"agent_context"`
	Metadata     xmlMap           `xml:"metadata"`
}

type xmlSubject struct {
	Type        string   `xml:"type,omitempty"`
	Name        string   `xml:"name,omitempty"`
	URL         string   `xml:"url,omitempty"`
	Commit      string   `xml:"commit,omitempty"`
	Tree        string   `xml:"tree,omitempty"`
	Blob        string   `xml:"blob,omitempty"`
	Checksum    string   `xml:"checksum,omitempty"`
	Branch      string   `xml:"branch,omitempty"`
	Tag         string   `xml:"tag,omitempty"`
	Ref         string   `xml:"ref,omitempty"`
	Provider    string   `xml:"provider,omitempty"`
	ProviderRef string   `xml:"provider_ref,omitempty"`
	Repo        string   `xml:"repo,omitempty"`
	Base        string   `xml:"base,omitempty"`
	Head        string   `xml:"head,omitempty"`
	BaseCommit  string   `xml:"base_commit,omitempty"`
	HeadCommit  string   `xml:"head_commit,omitempty"`
	Path        string   `xml:"path,omitempty"`
	Scope       []string `xml:"scope>pattern"`
	Timestamp   string   `xml:"timestamp,omitempty"`
}

type xmlAgentContext struct {
	Instructions string `xml:"instructions,omitempty"`
	Diff         string `xml:"diff,omitempty"`
	Settings     xmlMap `xml:"settings"`
}

type xmlAuthor struct {
	Name    string `xml:"name,omitempty"`
	Email   string `xml:"email,omitempty"`
	Type    string `xml:"type,omitempty"`
	Model   string `xml:"model,omitempty"`
	Version string `xml:"version,omitempty"`
}

type xmlSelector struct {
	Type string `xml:"type,omitempty"`
	Path string `xml:"path,omitempty"`
}

type xmlRange struct {
	Start int `xml:"start"`
	End   int `xml:"end"`
}

type xmlLocation struct {
	File      string       `xml:"file,omitempty"`
	Lines     []xmlRange   `xml:"lines>range"`
	Selector  *xmlSelector `xml:"selector"`
	Deleted   bool         `xml:"deleted,omitempty"`
	Column    int          `xml:"column,omitempty"`
	ColumnEnd int          `xml:"column_end,omitempty"`
}

type xmlActivity struct {
	ID         string        `xml:"id,omitempty"`
	Category   string        `xml:"category,omitempty"`
	Author     *xmlAuthor    `xml:"author"`
	Content    string        `xml:"content,omitempty"`
	Location   *xmlLocation  `xml:"location"`
	Context    string        `xml:"context,omitempty"`
	Replies    []xmlActivity `xml:"replies>activity"`
	Created    string        `xml:"created,omitempty"`
	Mentions   []string      `xml:"mentions>mention"`
	Supersedes []string      `xml:"supersedes>id"`
	Addresses  []string      `xml:"addresses>id"`
	Severity   string        `xml:"severity,omitempty"`
	Conditions []string      `xml:"conditions>condition"`
}

func decodeXML(data []byte) (*model.Review, error) {
	var x xmlReview
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, &ParseError{Format: FormatXML, Err: err}
	}
	return fromXMLReview(&x)
}

func encodeXML(r *model.Review) ([]byte, error) {
	data, err := xml.MarshalIndent(toXMLReview(r), "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(data)+1)
	out = append(out, xml.Header...)
	out = append(out, data...)
	return append(out, '\n'), nil
}

// --- model -> wire ---

func toXMLReview(r *model.Review) *xmlReview {
	x := &xmlReview{
		Version:  r.Version,
		Metadata: xmlMap{Values: r.Metadata},
	}
	if r.Subject != nil {
		x.Subject = toXMLSubject(r.Subject)
	}
	if r.AgentContext != nil {
		x.AgentContext = &xmlAgentContext{
			Instructions: r.AgentContext.Instructions,
			Diff:         r.AgentContext.Diff,
			Settings:     xmlMap{Values: r.AgentContext.Settings},
		}
	}
	for i := range r.Activities {
		x.Activities = append(x.Activities, toXMLActivity(&r.Activities[i]))
	}
	return x
}

func toXMLSubject(s *model.Subject) *xmlSubject {
	x := &xmlSubject{
		Type: s.Type, Name: s.Name, URL: s.URL,
		Commit: s.Commit, Tree: s.Tree, Blob: s.Blob, Checksum: s.Checksum,
		Branch: s.Branch, Tag: s.Tag, Ref: s.Ref,
		Provider: s.Provider, ProviderRef: s.ProviderRef, Repo: s.Repo,
		Base: s.Base, Head: s.Head,
		BaseCommit: s.BaseCommit, HeadCommit: s.HeadCommit,
		Path: s.Path, Scope: s.Scope,
	}
	if s.Timestamp != nil {
		x.Timestamp = s.Timestamp.Format(time.RFC3339Nano)
	}
	return x
}

func toXMLActivity(a *model.Activity) xmlActivity {
	x := xmlActivity{
		ID:         a.ID,
		Category:   string(a.Category),
		Content:    a.Content,
		Context:    a.Context,
		Mentions:   a.Mentions,
		Supersedes: a.Supersedes,
		Addresses:  a.Addresses,
		Severity:   string(a.Severity),
		Conditions: a.Conditions,
	}
	if a.Author != nil {
		x.Author = &xmlAuthor{
			Name: a.Author.Name, Email: a.Author.Email,
			Type: a.Author.Type, Model: a.Author.Model, Version: a.Author.Version,
		}
	}
	if a.Location != nil {
		loc := &xmlLocation{
			File:      a.Location.File,
			Deleted:   a.Location.Deleted,
			Column:    a.Location.Column,
			ColumnEnd: a.Location.ColumnEnd,
		}
		for _, lr := range a.Location.Lines {
			loc.Lines = append(loc.Lines, xmlRange{Start: lr.Start, End: lr.End})
		}
		if a.Location.Selector != nil {
			loc.Selector = &xmlSelector{Type: a.Location.Selector.Type, Path: a.Location.Selector.Path}
		}
		x.Location = loc
	}
	if a.Created != nil {
		x.Created = a.Created.Format(time.RFC3339Nano)
	}
	for i := range a.Replies {
		x.Replies = append(x.Replies, toXMLActivity(&a.Replies[i]))
	}
	return x
}

// --- wire -> model ---

func fromXMLReview(x *xmlReview) (*model.Review, error) {
	r := &model.Review{
		Version:  x.Version,
		Metadata: x.Metadata.Values,
	}
	if x.Subject != nil {
		s, err := fromXMLSubject(x.Subject)
		if err != nil {
			return nil, err
		}
		r.Subject = s
	}
	if x.AgentContext != nil {
		r.AgentContext = &model.AgentContext{
			Instructions: x.AgentContext.Instructions,
			Diff:         x.AgentContext.Diff,
			Settings:     x.AgentContext.Settings.Values,
		}
	}
	for i := range x.Activities {
		a, err := fromXMLActivity(&x.Activities[i])
		if err != nil {
			return nil, err
		}
		r.Activities = append(r.Activities, *a)
	}
	return r, nil
}

func fromXMLSubject(x *xmlSubject) (*model.Subject, error) {
	s := &model.Subject{
		Type: x.Type, Name: x.Name, URL: x.URL,
		Commit: x.Commit, Tree: x.Tree, Blob: x.Blob, Checksum: x.Checksum,
		Branch: x.Branch, Tag: x.Tag, Ref: x.Ref,
		Provider: x.Provider, ProviderRef: x.ProviderRef, Repo: x.Repo,
		Base: x.Base, Head: x.Head,
		BaseCommit: x.BaseCommit, HeadCommit: x.HeadCommit,
		Path: x.Path, Scope: x.Scope,
	}
	if x.Timestamp != "" {
		ts, err := parseTimestamp(x.Timestamp)
		if err != nil {
			return nil, &model.ValidationError{Index: -1, Field: "subject.timestamp", Reason: err.Error()}
		}
		s.Timestamp = ts
	}
	return s, nil
}

func fromXMLActivity(x *xmlActivity) (*model.Activity, error) {
	a := &model.Activity{
		ID:         x.ID,
		Category:   model.Category(x.Category),
		Content:    x.Content,
		Context:    x.Context,
		Mentions:   x.Mentions,
		Supersedes: x.Supersedes,
		Addresses:  x.Addresses,
		Severity:   model.Severity(x.Severity),
		Conditions: x.Conditions,
	}
	if x.Author != nil {
		a.Author = &model.Author{
			Name: x.Author.Name, Email: x.Author.Email,
			Type: x.Author.Type, Model: x.Author.Model, Version: x.Author.Version,
		}
	}
	if x.Location != nil {
		loc := &model.Location{
			File:      x.Location.File,
			Deleted:   x.Location.Deleted,
			Column:    x.Location.Column,
			ColumnEnd: x.Location.ColumnEnd,
		}
		for _, lr := range x.Location.Lines {
			loc.Lines = append(loc.Lines, model.LineRange{Start: lr.Start, End: lr.End})
		}
		if x.Location.Selector != nil {
			loc.Selector = &model.Selector{Type: x.Location.Selector.Type, Path: x.Location.Selector.Path}
		}
		a.Location = loc
	}
	if x.Created != "" {
		ts, err := parseTimestamp(x.Created)
		if err != nil {
			return nil, &model.ValidationError{ActivityID: x.ID, Index: -1, Field: "created", Reason: err.Error()}
		}
		a.Created = ts
	}
	for i := range x.Replies {
		reply, err := fromXMLActivity(&x.Replies[i])
		if err != nil {
			return nil, err
		}
		a.Replies = append(a.Replies, *reply)
	}
	return a, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("malformed timestamp %q", s)
	}
	return &t, nil
}

// xmlMap encodes an open string-to-anything mapping as nested elements:
// maps become child elements, lists become repeated <item> children,
// scalars become text. Scalar text is coerced back to bool or number on
// decode so a value survives a trip through the markup form.
type xmlMap struct {
	Values map[string]any
}

func (m xmlMap) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(m.Values) == 0 {
		return nil
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAnyMap(e, m.Values); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func encodeAnyMap(e *xml.Encoder, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := encodeAny(e, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeAny(e *xml.Encoder, name string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return e.EncodeElement(val.Format(time.RFC3339Nano), start)
	case map[string]any:
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		if err := encodeAnyMap(e, val); err != nil {
			return err
		}
		return e.EncodeToken(start.End())
	case []any:
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		for _, item := range val {
			if err := encodeAny(e, "item", item); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())
	default:
		return e.EncodeElement(fmt.Sprintf("%v", val), start)
	}
}

func (m *xmlMap) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := decodeAny(d)
	if err != nil {
		return err
	}
	if mv, ok := v.(map[string]any); ok {
		m.Values = mv
	}
	return nil
}

// decodeAny consumes tokens up to the matching end element. An element
// with children decodes to a map, or to a list when every child is an
// <item>; a text-only element decodes to a coerced scalar.
func decodeAny(d *xml.Decoder) (any, error) {
	children := make(map[string]any)
	var order []string
	var items []any
	allItems := true
	var text strings.Builder

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeAny(d)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			if name != "item" {
				allItems = false
			}
			items = append(items, child)
			if _, seen := children[name]; !seen {
				order = append(order, name)
			}
			children[name] = child
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(items) > 0 {
				if allItems {
					return items, nil
				}
				out := make(map[string]any, len(order))
				for _, name := range order {
					out[name] = children[name]
				}
				return out, nil
			}
			return coerceScalar(strings.TrimSpace(text.String())), nil
		}
	}
}

func coerceScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
