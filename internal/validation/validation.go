// Package validation checks user supplied documents against embedded JSON schemas.
package validation

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidDocument = errors.New("invalid document")

//go:embed schemas/*.json
var schemaFS embed.FS

type Schema string

const (
	SchemaJob      Schema = "job"
	SchemaFeedback Schema = "feedback"
)

// Validate checks a decoded JSON document (maps, slices and scalars) against
// the named schema.
func Validate(schema Schema, doc any) error {
	return validate(schema, gojsonschema.NewGoLoader(doc))
}

// ValidateJSON is Validate for raw JSON bytes.
func ValidateJSON(schema Schema, data []byte) error {
	return validate(schema, gojsonschema.NewBytesLoader(data))
}

func validate(schema Schema, doc gojsonschema.JSONLoader) error {
	raw, err := schemaFS.ReadFile("schemas/" + string(schema) + ".schema.json")
	if err != nil {
		return fmt.Errorf("load %s schema: %w", schema, err)
	}

	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(raw), doc)
	if err != nil {
		// Malformed documents surface here rather than as result errors.
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, schema, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, schema, strings.Join(msgs, "; "))
}
