package codec

import (
	"strings"
	"testing"

	"github.com/sprite-ai/revlog/internal/model"
)

// The wrapper elements are a format contract: a decoder from one tool
// must accept documents produced by another. This document is written
// by hand, not by our encoder.
const handwrittenXML = `<?xml version="1.0" encoding="UTF-8"?>
<review>
  <version>0.1</version>
  <subject>
    <type>audit</type>
    <name>Q2 security audit</name>
    <scope>
      <pattern>internal/**</pattern>
      <pattern>cmd/**</pattern>
    </scope>
  </subject>
  <activities>
    <activity>
      <id>sec-1</id>
      <category>security</category>
      <author>
        <name>Ada</name>
      </author>
      <content>Token logged in plaintext.</content>
      <location>
        <file>internal/api/api.go</file>
        <lines>
          <range><start>12</start><end>14</end></range>
          <range><start>30</start><end>30</end></range>
        </lines>
        <deleted>true</deleted>
      </location>
      <created>2026-04-02T10:30:00Z</created>
      <severity>critical</severity>
      <replies>
        <activity>
          <id>sec-1-r1</id>
          <category>resolved</category>
          <addresses>
            <id>sec-1</id>
          </addresses>
        </activity>
      </replies>
    </activity>
    <activity>
      <id>asg-1</id>
      <category>assigned</category>
      <mentions>
        <mention>@ada</mention>
        <mention>@bo</mention>
      </mentions>
    </activity>
    <activity>
      <id>v-1</id>
      <category>approved</category>
      <conditions>
        <condition>rotate the token</condition>
      </conditions>
      <supersedes>
        <id>v-0</id>
      </supersedes>
    </activity>
  </activities>
  <metadata>
    <attempt>2</attempt>
    <labels>
      <item>security</item>
    </labels>
  </metadata>
</review>
`

func TestDecodeHandwrittenXML(t *testing.T) {
	r, err := Decode([]byte(handwrittenXML), FormatXML)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if r.Subject == nil || r.Subject.Type != "audit" {
		t.Fatalf("expected audit subject, got %+v", r.Subject)
	}
	if len(r.Subject.Scope) != 2 || r.Subject.Scope[0] != "internal/**" {
		t.Errorf("scope patterns not decoded: %v", r.Subject.Scope)
	}

	if len(r.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(r.Activities))
	}

	sec := r.Activities[0]
	if sec.Category != model.CategorySecurity || sec.Severity != model.SeverityCritical {
		t.Errorf("security activity fields wrong: %+v", sec)
	}
	if sec.Author == nil || sec.Author.Name != "Ada" {
		t.Errorf("author not decoded: %+v", sec.Author)
	}
	if sec.Location == nil || len(sec.Location.Lines) != 2 {
		t.Fatalf("line ranges not decoded: %+v", sec.Location)
	}
	if sec.Location.Lines[0] != (model.LineRange{Start: 12, End: 14}) {
		t.Errorf("first range wrong: %+v", sec.Location.Lines[0])
	}
	if !sec.Location.Deleted {
		t.Error("deleted flag not decoded")
	}
	if sec.Created == nil || sec.Created.Hour() != 10 {
		t.Errorf("created not decoded: %v", sec.Created)
	}
	if len(sec.Replies) != 1 || sec.Replies[0].Addresses[0] != "sec-1" {
		t.Errorf("nested reply not decoded: %+v", sec.Replies)
	}

	if got := r.Activities[1].Mentions; len(got) != 2 || got[1] != "@bo" {
		t.Errorf("mentions not decoded: %v", got)
	}
	if got := r.Activities[2].Conditions; len(got) != 1 || got[0] != "rotate the token" {
		t.Errorf("conditions not decoded: %v", got)
	}
	if got := r.Activities[2].Supersedes; len(got) != 1 || got[0] != "v-0" {
		t.Errorf("supersedes not decoded: %v", got)
	}

	if r.Metadata["attempt"] != int64(2) {
		t.Errorf("metadata scalar not coerced: %#v", r.Metadata["attempt"])
	}
	labels, ok := r.Metadata["labels"].([]any)
	if !ok || len(labels) != 1 || labels[0] != "security" {
		t.Errorf("metadata list not decoded: %#v", r.Metadata["labels"])
	}
}

func TestEncodeUsesWrapperElements(t *testing.T) {
	r, err := Decode([]byte(handwrittenXML), FormatXML)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(r, FormatXML)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"<activities>", "<activity>", "<replies>",
		"<lines>", "<range>", "<start>12</start>", "<end>14</end>",
		"<supersedes>", "<addresses>", "<id>sec-1</id>",
		"<mentions>", "<mention>@ada</mention>",
		"<conditions>", "<condition>rotate the token</condition>",
		"<scope>", "<pattern>internal/**</pattern>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded XML missing %s", want)
		}
	}
}

func TestXMLMalformedTimestamp(t *testing.T) {
	doc := `<review><version>0.1</version><activities><activity>
<id>a1</id><category>note</category><created>yesterday</created>
</activity></activities></review>`

	_, err := Decode([]byte(doc), FormatXML)
	verr, ok := err.(*model.ValidationError)
	if !ok {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}
	if verr.Field != "created" || verr.ActivityID != "a1" {
		t.Errorf("expected created error on a1, got %v", verr)
	}
}
