package formats

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"laerad/internal/engine/result"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDVariable = "LAERAD001"
	ruleIDMethod   = "LAERAD002"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from a merged result. File
// URIs are made relative to projectRoot so reports are safe to share.
func GenerateSARIF(projectRoot, toolVersion string, res *result.Result) ([]byte, error) {
	results := make([]sarifResult, 0, res.Count())
	if res != nil {
		for _, v := range res.Variables {
			results = append(results, violationResult(projectRoot, ruleIDVariable, "variable", v))
		}
		for _, v := range res.Methods {
			results = append(results, violationResult(projectRoot, ruleIDMethod, "method", v))
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "laerad",
						Version: toolVersion,
						Rules:   buildSARIFRules(),
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

func violationResult(projectRoot, ruleID, kind string, v result.Violation) sarifResult {
	res := sarifResult{
		RuleID:  ruleID,
		Level:   "warning",
		Message: sarifMessage{Text: fmt.Sprintf("%s is a single-use %s (%d uses)", v.Name, kind, v.Count)},
	}
	if v.File != "" {
		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{
					URI:       RelativeURI(projectRoot, v.File),
					URIBaseID: "%SRCROOT%",
				},
			},
		}
		if v.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: v.Line}
		}
		res.Locations = []sarifLocation{loc}
	}
	return res
}

// buildSARIFRules always lists both rules so consumers can show the rule
// catalogue for clean runs too.
func buildSARIFRules() []sarifRule {
	return []sarifRule{
		{
			ID:               ruleIDVariable,
			Name:             "SingleUseVariable",
			ShortDescription: sarifMessage{Text: "A local variable is assigned but used at most once."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		},
		{
			ID:               ruleIDMethod,
			Name:             "SingleUseMethod",
			ShortDescription: sarifMessage{Text: "A method is defined but called at most once."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		},
	}
}

// RelativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func RelativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
