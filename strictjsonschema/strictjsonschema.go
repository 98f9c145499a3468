// Package strictjsonschema validates an already-decoded request body
// against a compiled JSON Schema document, for operations that need
// stricter validation than go-playground/validator's struct-tag rules
// express (cross-field conditionals, schema composition, format
// assertions) — typically a schema generated ahead of time from the
// OpenAPI Components.Schemas this framework already produces.
package strictjsonschema

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator wraps a compiled jsonschema.Schema for reuse across requests;
// compilation is expensive enough that it should happen once at startup.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile parses and compiles the JSON Schema document in raw, resolving
// any "$ref" entries against the sibling documents in refs (keyed by the
// $id or URL they're registered under).
func Compile(url string, raw []byte, refs map[string][]byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("strictjsonschema: invalid schema document: %w", err)
	}
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("strictjsonschema: adding schema resource: %w", err)
	}

	for refURL, refRaw := range refs {
		var refDoc any
		if err := json.Unmarshal(refRaw, &refDoc); err != nil {
			return nil, fmt.Errorf("strictjsonschema: invalid ref schema %q: %w", refURL, err)
		}
		if err := compiler.AddResource(refURL, refDoc); err != nil {
			return nil, fmt.Errorf("strictjsonschema: adding ref resource %q: %w", refURL, err)
		}
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("strictjsonschema: compiling schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal
// into an any/map[string]any) against the compiled schema, returning a
// descriptive error on the first violation jsonschema reports.
func (v *Validator) Validate(instance any) error {
	if err := v.schema.Validate(instance); err != nil {
		return fmt.Errorf("strictjsonschema: %w", err)
	}
	return nil
}

// ValidateJSON decodes raw as JSON and validates the result, the
// common entry point when the request body hasn't been unmarshaled yet.
func (v *Validator) ValidateJSON(raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("strictjsonschema: invalid JSON body: %w", err)
	}
	return v.Validate(instance)
}
