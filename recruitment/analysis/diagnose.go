package analysis

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema describes the analysis payload loosely. Violations are
// diagnostics only; Decode still reads whatever it can.
const payloadSchema = `{
  "type": "object",
  "allOf": [{"$ref": "#/definitions/results"}],
  "properties": {
    "analysis_results": {"$ref": "#/definitions/results"},
    "extracted_text": {"type": ["string", "null"]},
    "status": {"type": "string"},
    "message": {"type": "string"}
  },
  "definitions": {
    "score": {"type": ["number", "string", "null"]},
    "strings": {"type": "array", "items": {"type": "string"}},
    "results": {
      "type": "object",
      "properties": {
        "overall_score": {"$ref": "#/definitions/score"},
        "analysis_details": {
          "type": ["object", "null"],
          "properties": {
            "content_score": {"$ref": "#/definitions/score"},
            "format_score": {"$ref": "#/definitions/score"},
            "completeness_score": {"$ref": "#/definitions/score"}
          }
        },
        "word_count": {"type": ["number", "null"]},
        "skills_found": {
          "type": "array",
          "items": {
            "anyOf": [
              {"type": "string"},
              {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
            ]
          }
        },
        "skill_matches": {
          "type": "array",
          "items": {"type": "object", "required": ["skill_name"]}
        },
        "recommendations": {"$ref": "#/definitions/strings"},
        "improvement_suggestions": {"$ref": "#/definitions/strings"},
        "structure_analysis": {
          "type": "object",
          "additionalProperties": {"type": "boolean"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(payloadSchema))
	})
	return schema, schemaErr
}

// Diagnose validates raw against the payload schema and returns the
// violations, nil when the payload conforms.
func Diagnose(raw []byte) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema: %v", err)}
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return []string{fmt.Sprintf("payload is not valid JSON: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, e.String())
	}
	return out
}
