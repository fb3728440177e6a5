package formats

import (
	"encoding/json"

	"laerad/internal/engine/result"

	"gopkg.in/yaml.v3"
)

// document is the serialized shape of a result. Both collections are always
// present so consumers never see null.
type document struct {
	Variables []result.Violation `json:"variables" yaml:"variables"`
	Methods   []result.Violation `json:"methods" yaml:"methods"`
}

func newDocument(projectRoot string, res *result.Result) document {
	doc := document{
		Variables: []result.Violation{},
		Methods:   []result.Violation{},
	}
	if res == nil {
		return doc
	}
	for _, v := range res.Variables {
		v.File = RelativeURI(projectRoot, v.File)
		doc.Variables = append(doc.Variables, v)
	}
	for _, v := range res.Methods {
		v.File = RelativeURI(projectRoot, v.File)
		doc.Methods = append(doc.Methods, v)
	}
	return doc
}

// JSON renders res as an indented {variables, methods} object.
func JSON(projectRoot string, res *result.Result) ([]byte, error) {
	return json.MarshalIndent(newDocument(projectRoot, res), "", "  ")
}

// YAML renders res with the same shape as JSON.
func YAML(projectRoot string, res *result.Result) ([]byte, error) {
	return yaml.Marshal(newDocument(projectRoot, res))
}
