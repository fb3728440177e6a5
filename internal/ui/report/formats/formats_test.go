package formats

import (
	"encoding/json"
	"strings"
	"testing"

	"laerad/internal/engine/result"

	"gopkg.in/yaml.v3"
)

func sampleResult() *result.Result {
	a := result.New("/project/app/models/user.rb")
	a.AddVariableViolation("tmp", 3, 2)
	a.AddMethodViolation("helper", 10, 1)
	b := result.New("lib/util.rb")
	b.AddVariableViolation("x", 1, 1)
	return result.Merge(a, b)
}

func TestGenerateSARIF_EmptyResults(t *testing.T) {
	data, err := GenerateSARIF("", "1.0.0", nil)
	if err != nil {
		t.Fatalf("GenerateSARIF returned error: %v", err)
	}
	var report sarifReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if report.Schema != sarifSchema {
		t.Errorf("$schema = %q, want %q", report.Schema, sarifSchema)
	}
	if report.Version != sarifVersion {
		t.Errorf("version = %q, want %q", report.Version, sarifVersion)
	}
	if len(report.Runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(report.Runs))
	}
	if len(report.Runs[0].Results) != 0 {
		t.Errorf("expected 0 results, got %d", len(report.Runs[0].Results))
	}
	if len(report.Runs[0].Tool.Driver.Rules) != 2 {
		t.Errorf("expected both rules in the catalogue, got %d", len(report.Runs[0].Tool.Driver.Rules))
	}
	if !strings.Contains(string(data), `"results": []`) {
		t.Errorf("results must serialize as an empty array:\n%s", data)
	}
}

func TestGenerateSARIF_Violations(t *testing.T) {
	data, err := GenerateSARIF("/project", "1.0.0", sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report sarifReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got := report.Runs[0].Tool.Driver.Version; got != "1.0.0" {
		t.Errorf("driver version = %q", got)
	}

	results := report.Runs[0].Results
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []struct {
		rule string
		uri  string
		line int
		text string
	}{
		{ruleIDVariable, "app/models/user.rb", 3, "tmp is a single-use variable (2 uses)"},
		{ruleIDVariable, "lib/util.rb", 1, "x is a single-use variable (1 uses)"},
		{ruleIDMethod, "app/models/user.rb", 10, "helper is a single-use method (1 uses)"},
	}
	for i, w := range want {
		r := results[i]
		if r.RuleID != w.rule {
			t.Errorf("result %d ruleId = %q, want %q", i, r.RuleID, w.rule)
		}
		if r.Level != "warning" {
			t.Errorf("result %d level = %q, want warning", i, r.Level)
		}
		if r.Message.Text != w.text {
			t.Errorf("result %d message = %q, want %q", i, r.Message.Text, w.text)
		}
		if len(r.Locations) != 1 {
			t.Fatalf("result %d has %d locations", i, len(r.Locations))
		}
		loc := r.Locations[0].PhysicalLocation
		if loc.ArtifactLocation.URI != w.uri {
			t.Errorf("result %d uri = %q, want %q", i, loc.ArtifactLocation.URI, w.uri)
		}
		if loc.ArtifactLocation.URIBaseID != "%SRCROOT%" {
			t.Errorf("result %d uriBaseId = %q", i, loc.ArtifactLocation.URIBaseID)
		}
		if loc.Region == nil || loc.Region.StartLine != w.line {
			t.Errorf("result %d region = %+v, want line %d", i, loc.Region, w.line)
		}
	}
}

func TestRelativeURI(t *testing.T) {
	tests := []struct {
		root, path, want string
	}{
		{"/project", "/project/a/b.rb", "a/b.rb"},
		{"", "/project/a/b.rb", "/project/a/b.rb"},
		{"/project", "lib/c.rb", "lib/c.rb"},
	}
	for _, tt := range tests {
		if got := RelativeURI(tt.root, tt.path); got != tt.want {
			t.Errorf("RelativeURI(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON("/project", sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Variables) != 2 || len(doc.Methods) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Variables[0] != (result.Violation{Name: "tmp", Line: 3, Count: 2, File: "app/models/user.rb"}) {
		t.Errorf("unexpected first variable %+v", doc.Variables[0])
	}

	empty, err := JSON("", result.Merge())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(empty), `"variables": []`) || !strings.Contains(string(empty), `"methods": []`) {
		t.Errorf("empty collections must be arrays:\n%s", empty)
	}
}

func TestYAML(t *testing.T) {
	data, err := YAML("/project", sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(doc.Variables) != 2 || doc.Methods[0].Name != "helper" || doc.Methods[0].File != "app/models/user.rb" {
		t.Fatalf("unexpected document %+v", doc)
	}
}
