// Package validation checks submission payloads against a JSON schema
// before they reach the scoring engine.
package validation

import (
	"strings"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

const submissionSchema = `{
  "type": "object",
  "required": ["company", "contact", "answers"],
  "properties": {
    "company": {
      "type": "string",
      "minLength": 1
    },
    "contact": {
      "type": "object",
      "required": ["email", "consent"],
      "properties": {
        "name": { "type": "string" },
        "email": { "type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$" },
        "role": { "type": "string" },
        "phone": { "type": "string" },
        "consent": { "const": true }
      }
    },
    "branding": {
      "type": "object",
      "properties": {
        "brand_name": { "type": "string" },
        "tsd_cobrand": { "type": "string" },
        "primary_logo_b64": { "type": "string" },
        "partner_logo_b64": { "type": "string" }
      }
    },
    "answers": {
      "type": "object",
      "patternProperties": {
        "^[A-Z][0-9]+$": { "type": "integer" }
      },
      "additionalProperties": false
    }
  }
}`

var compiledSchema = mustCompile(submissionSchema)

func mustCompile(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic("submission schema does not compile: " + err.Error())
	}
	return s
}

// ValidateSubmission validates the raw request body. The returned error
// carries every schema violation in its details.
func ValidateSubmission(payload []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return apperrors.NewSubmissionValidationError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		msgs = append(msgs, re.String())
	}
	return apperrors.NewSubmissionValidationError(strings.Join(msgs, "; "))
}
