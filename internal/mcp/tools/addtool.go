package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking its output type with
// CheckOutputSchema.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when a tool's output type T cannot round-trip
// through the schema the SDK infers for it:
//
//   - the JSON of T's zero value must validate. A nil slice without
//     omitempty/omitzero marshals as null where the schema expects an array.
//   - T must not contain json.RawMessage, which marshals as arbitrary JSON but
//     is inferred as an array of bytes.
//
// The untyped any output is not checked. Schema inference failures are left
// for the SDK to report.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if msg := rawMessageProblem(rt); msg != "" {
		panic(fmt.Sprintf("AddTool %q: %s", toolName, msg))
	}
	if msg := zeroValueProblem(rt); msg != "" {
		panic(fmt.Sprintf("AddTool %q: %s", toolName, msg))
	}
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

func rawMessageProblem(rt reflect.Type) string {
	var paths []string
	walkTypes(rt, nil, make(map[reflect.Type]bool), func(path []string, t reflect.Type) bool {
		if t != rawMessageType {
			return true
		}
		paths = append(paths, strings.Join(path, "."))
		return false
	})
	if len(paths) == 0 {
		return ""
	}
	return fmt.Sprintf("output type %s contains json.RawMessage at %s\n"+
		"  the schema describes it as an array of integers but it marshals as raw JSON\n"+
		"  Fix: change the field type to any (or []any) and decode the raw JSON into it",
		rt, strings.Join(paths, ", "))
}

func zeroValueProblem(rt reflect.Type) string {
	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return ""
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return ""
	}

	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return ""
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	if err := resolved.Validate(&v); err != nil {
		return fmt.Sprintf("zero value of output type %s fails schema validation: %v\n"+
			"  JSON: %s\n"+
			"  Fix: add `omitempty` to nil-defaulting slice fields, or initialize them to empty slices",
			rt, err, data)
	}
	return ""
}

// walkTypes calls visit for t and, while visit returns true, for every type
// reachable through exported struct fields, elements and map values. path
// names the field leading to each type. Recursive types are visited once per
// path.
func walkTypes(t reflect.Type, path []string, seen map[reflect.Type]bool, visit func(path []string, t reflect.Type) bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !visit(path, t) || seen[t] {
		return
	}
	seen[t] = true
	defer delete(seen, t)

	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.IsExported() {
				walkTypes(f.Type, append(path[:len(path):len(path)], f.Name), seen, visit)
			}
		}
	case reflect.Slice, reflect.Array:
		walkTypes(t.Elem(), append(path[:len(path):len(path)], "[]"), seen, visit)
	case reflect.Map:
		walkTypes(t.Elem(), append(path[:len(path):len(path)], "[value]"), seen, visit)
	}
}
