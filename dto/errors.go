package dto

import (
	"fmt"
	"strings"
)

// ExtractionError means the PDF could not be parsed at all. Fatal for the
// current request; no partial NormalizedDocument is returned.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("pdf extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FieldError is one offending field path from structural validation.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaValidationError carries the complete set of structural violations
// found in a candidate record, never just the first.
type SchemaValidationError struct {
	Fields []FieldError
}

func (e *SchemaValidationError) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		paths = append(paths, f.Path)
	}
	return fmt.Sprintf("invoice schema validation failed: %s", strings.Join(paths, ", "))
}

// TaxInvariantViolation means the record is structurally valid but its GST
// math is inconsistent. Reported separately from SchemaValidationError so
// callers can distinguish "malformed" from "numbers don't add up".
type TaxInvariantViolation struct {
	Issues []string
}

func (e *TaxInvariantViolation) Error() string {
	return fmt.Sprintf("tax invariant violation: %s", strings.Join(e.Issues, "; "))
}

// GenerationBackendError means the generation backend returned non-JSON or
// otherwise unparsable output. Retryable by the caller; never retried here.
type GenerationBackendError struct {
	Err error
	Raw string
}

func (e *GenerationBackendError) Error() string {
	return fmt.Sprintf("generation backend error: %v", e.Err)
}

func (e *GenerationBackendError) Unwrap() error { return e.Err }
