// Package schemas provides JSON Schema generation and validation for analysis results.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/geo-visibility/internal/types"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors building or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Details joins the field errors into a single line for API responses.
func (ve *ValidationError) Details() string {
	parts := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		parts[i] = err.Field + ": " + err.Message
	}
	return strings.Join(parts, "; ")
}

const analysisSchemaPath = "(AnalysisResult)"

var (
	analysisOnce   sync.Once
	analysisSchema string
	analysisErr    error
)

// Reflect builds a self-contained JSON Schema for v's type. Nested types are
// inlined and unknown properties are rejected.
func Reflect(v any) (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	// The validator only understands drafts up to 7, and the reflected
	// structure is compatible with it once the draft marker is gone.
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to decode schema: %w", err)
	}
	delete(doc, "$schema")
	delete(doc, "$id")

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(out), nil
}

// AnalysisSchema returns the JSON Schema of types.AnalysisResult.
func AnalysisSchema() (string, error) {
	analysisOnce.Do(func() {
		analysisSchema, analysisErr = Reflect(&types.AnalysisResult{})
	})
	return analysisSchema, analysisErr
}

// ValidateAnalysis checks an assembled result against the AnalysisResult schema.
func ValidateAnalysis(result *types.AnalysisResult) error {
	if result == nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "result is nil"}}}
	}

	schema, err := AnalysisSchema()
	if err != nil {
		return &SchemaLoadError{Path: analysisSchemaPath, Message: "failed to reflect schema", Cause: err}
	}

	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	err = validate(analysisSchemaPath, gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(doc))
	extra := competitorErrors(result.Competitors)
	if len(extra) == 0 {
		return err
	}

	var validationErr *ValidationError
	switch {
	case err == nil:
		return &ValidationError{Errors: extra}
	case errors.As(err, &validationErr):
		validationErr.Errors = append(validationErr.Errors, extra...)
		return validationErr
	default:
		return err
	}
}

// competitorErrors checks the ranking rules the schema cannot express:
// ranks run 1..N in list order and exactly one entry is the analyzed brand.
func competitorErrors(list []types.Competitor) []FieldError {
	var errs []FieldError
	current := 0
	for i, c := range list {
		if c.Rank != i+1 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("competitors.%d.rank", i),
				Message: fmt.Sprintf("rank must be %d, got %d", i+1, c.Rank),
			})
		}
		if c.IsCurrentBrand {
			current++
		}
	}
	if len(list) > 0 && current != 1 {
		errs = append(errs, FieldError{
			Field:   "competitors",
			Message: fmt.Sprintf("exactly one entry must be the current brand, got %d", current),
		})
	}
	return errs
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", gojsonschema.NewStringLoader(schemaContent), gojsonschema.NewStringLoader(jsonContent))
}

func validate(path string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    path,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
