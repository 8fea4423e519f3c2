package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// responseSchema validates raw response bodies for one endpoint.
type responseSchema struct {
	resource string
	schema   *jsonschema.Schema
}

// Schemas are reflected from the Go response types so the validator and the
// decoder cannot drift apart.
var (
	labelsSchema      = mustReflectSchema("labels", []string{})
	labelValuesSchema = mustReflectSchema("label-values", []string{})
	renderSchema      = mustReflectSchema("render", renderResponse{})
)

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

func mustReflectSchema(resource string, v any) *responseSchema {
	s, err := reflectSchema(resource, v)
	if err != nil {
		panic(fmt.Sprintf("compiling %s schema: %v", resource, err))
	}
	return s
}

// reflectSchema builds a JSON Schema from the Go type of v and compiles it.
func reflectSchema(resource string, v any) (*responseSchema, error) {
	r := &invopop.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	reflected := r.Reflect(v)

	schemaJSON, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	loc := resource + ".json"
	if err := compiler.AddResource(loc, schemaValue); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &responseSchema{resource: resource, schema: compiled}, nil
}

// validate checks data against the schema.
func (s *responseSchema) validate(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{
			Resource: s.resource,
			Problems: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}

	if err := s.schema.Validate(value); err != nil {
		return &ValidationError{
			Resource: s.resource,
			Problems: extractValidationErrors(err),
		}
	}
	return nil
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	errorsByPath := make(map[string][]string)
	collectErrors(validationErr, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for path := range errorsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	if len(result) == 0 {
		return []string{err.Error()}
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
