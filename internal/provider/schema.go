package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MustCompileSchema compiles an embedded JSON schema. It panics on a broken
// schema, which can only be a programming error.
func MustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("provider: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("provider: compile schema %s: %v", name, err))
	}
	return schema
}

// DecodeValidated checks body against schema before decoding it into out,
// so a malformed payload never reaches the caller half-parsed.
func DecodeValidated(name string, schema *jsonschema.Schema, body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Errorf(name, "invalid json: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return Errorf(name, "schema validation failed: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return Errorf(name, "decode response: %w", err)
	}
	return nil
}
