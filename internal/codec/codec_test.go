package codec

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sprite-ai/revlog/internal/model"
)

// fixture builds a review exercising every corner of the schema.
func fixture() *model.Review {
	created := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	later := created.Add(45 * time.Minute)
	pinned := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)

	return &model.Review{
		Version: "0.1",
		Subject: &model.Subject{
			Type:        "patch",
			Name:        "Add rate limiting",
			URL:         "https://example.com/pr/42",
			Commit:      "6f3a9c1",
			Checksum:    "sha256:ab12cd34",
			Branch:      "feature/rate-limit",
			Provider:    "github",
			ProviderRef: "42",
			Repo:        "sprite-ai/gateway",
			Base:        "main",
			Head:        "feature/rate-limit",
			Timestamp:   &pinned,
		},
		Activities: []model.Activity{
			{
				ID:       "a1",
				Category: model.CategoryIssue,
				Author:   &model.Author{Name: "Ada", Email: "ada@example.com"},
				Content:  "This leaks the limiter map on reload.\nSee the init path.",
				Location: &model.Location{
					File:   "internal/limit/limit.go",
					Lines:  []model.LineRange{{Start: 41, End: 58}, {Start: 71, End: 71}},
					Column: 8,
				},
				Created:  &created,
				Severity: model.SeverityError,
				Replies: []model.Activity{
					{
						ID:       "a1r1",
						Category: model.CategoryNote,
						Author:   &model.Author{Name: "botley", Type: "agent", Model: "gpt-5"},
						Content:  "Reproduced with 10k reloads.",
					},
					{ID: "a1r2", Category: model.CategoryResolved, Addresses: []string{"a1"}},
				},
			},
			{
				ID:         "a2",
				Category:   model.CategorySuggestion,
				Content:    "use sync.Map here",
				Supersedes: []string{"a0"}, // dangling on purpose; logs may be partial
			},
			{
				ID:       "a3",
				Category: model.CategoryAssigned,
				Mentions: []string{"@ada", "@grace"},
				Created:  &later,
			},
			{
				ID:         "a4",
				Category:   model.CategoryApproved,
				Author:     &model.Author{Name: "Grace"},
				Conditions: []string{"fix the leak first", "squash commits"},
			},
			{
				ID:       "a5",
				Category: model.CategoryRetract,
				Addresses: []string{
					"a2",
				},
			},
		},
		AgentContext: &model.AgentContext{
			Instructions: "Focus on concurrency.",
			Settings:     map[string]any{"max_passes": int64(3), "strict": true},
		},
		Metadata: map[string]any{
			"tool":   "revlog",
			"run":    int64(12),
			"ratio":  2.5,
			"labels": []any{"perf", "concurrency"},
			"ci":     map[string]any{"pipeline": "main", "attempt": int64(2)},
		},
	}
}

func TestRoundTripAllFormats(t *testing.T) {
	r := fixture()
	for _, f := range []Format{FormatYAML, FormatJSON, FormatXML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Encode(r, f)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			back, err := Decode(data, f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !model.Equal(r, back) {
				t.Errorf("round-trip through %s lost information", f)
			}
		})
	}
}

func TestCrossEncodingEquivalence(t *testing.T) {
	r := fixture()
	formats := []Format{FormatYAML, FormatJSON, FormatXML}

	decoded := make(map[Format]*model.Review)
	for _, f := range formats {
		data, err := Encode(r, f)
		if err != nil {
			t.Fatalf("encode %s: %v", f, err)
		}
		back, err := Decode(data, f)
		if err != nil {
			t.Fatalf("decode %s: %v", f, err)
		}
		decoded[f] = back
	}

	for i, f1 := range formats {
		for _, f2 := range formats[i+1:] {
			if !model.Equal(decoded[f1], decoded[f2]) {
				t.Errorf("%s and %s decode to different canonical values", f1, f2)
			}
		}
	}
}

func TestActivityOrderPreserved(t *testing.T) {
	r := fixture()
	for _, f := range []Format{FormatYAML, FormatJSON, FormatXML} {
		data, err := Encode(r, f)
		if err != nil {
			t.Fatalf("encode %s: %v", f, err)
		}
		back, err := Decode(data, f)
		if err != nil {
			t.Fatalf("decode %s: %v", f, err)
		}
		for i := range r.Activities {
			if back.Activities[i].ID != r.Activities[i].ID {
				t.Errorf("%s: activity %d is %s, want %s", f, i, back.Activities[i].ID, r.Activities[i].ID)
			}
		}
	}
}

func TestJSONContextFieldRoundTrips(t *testing.T) {
	r := model.New()
	r.Context = "https://opencodereview.org/context/v1"
	r.Append(model.Activity{ID: "a1", Category: model.CategoryNote})

	data, err := Encode(r, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"@context"`) {
		t.Error("JSON form should carry the @context pointer")
	}

	back, err := Decode(data, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if back.Context != r.Context {
		t.Errorf("@context not preserved: %q", back.Context)
	}

	// The human-editable form does not carry it.
	ydata, err := Encode(r, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(ydata), "@context") {
		t.Error("YAML form must not carry the @context pointer")
	}
}

func TestUnknownCategoryIsValidationError(t *testing.T) {
	yaml := "version: \"0.1\"\nactivities:\n  - id: a1\n    category: deleted\n"
	_, err := Decode([]byte(yaml), FormatYAML)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}
	if verr.Field != "category" {
		t.Errorf("expected category error, got %v", verr)
	}
}

func TestMalformedBytesIsParseError(t *testing.T) {
	cases := map[Format]string{
		FormatYAML: "version: [unclosed",
		FormatJSON: `{"version": "0.1",`,
		FormatXML:  "<review><version>0.1</version>",
	}
	for f, input := range cases {
		_, err := Decode([]byte(input), f)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%s: expected *ParseError, got %v", f, err)
			continue
		}
		if perr.Format != f {
			t.Errorf("%s: ParseError names format %s", f, perr.Format)
		}
	}
}

func TestUnsupportedVersionRejected(t *testing.T) {
	yaml := "version: \"9.0\"\n"
	_, err := Decode([]byte(yaml), FormatYAML)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}
	if verr.Field != "version" {
		t.Errorf("expected version error, got %v", verr)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"review.yaml":     FormatYAML,
		"review.yml":      FormatYAML,
		"review.json":     FormatJSON,
		"review.xml":      FormatXML,
		"review.codereview": FormatYAML, // default
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	r := fixture()

	for _, name := range []string{"r.yaml", "r.json", "r.xml"} {
		path := filepath.Join(dir, name)
		f := DetectFormat(path)
		if err := Save(path, r, f); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		back, gotF, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if gotF != f {
			t.Errorf("%s: expected format %s, got %s", name, f, gotF)
		}
		if !model.Equal(r, back) {
			t.Errorf("%s: load/save round-trip lost information", name)
		}
	}

	if _, _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error loading a missing file")
	}
	_ = os.Remove(filepath.Join(dir, "r.yaml"))
}
