package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// Structured output targets describe their constraints with a `schema` tag:
//
//	Sentiment float64 `json:"sentiment" schema:"required,min=-1,max=1"`
//	Risk *string `json:"risk" schema:"nullable,enum=Low|Medium|High"`
const schemaTag = "schema"

var schemaCache sync.Map // reflect.Type -> *openapi3.SchemaRef

// SchemaFor returns the JSON schema of the type target points to.
func SchemaFor(target any) (*openapi3.SchemaRef, error) {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return nil, errors.New("schema target is nil")
	}

	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*openapi3.SchemaRef), nil
	}

	ref, err := openapi3gen.NewSchemaRefForValue(
		reflect.New(t).Interface(),
		openapi3.Schemas{},
		openapi3gen.SchemaCustomizer(applySchemaTag),
	)
	if err != nil {
		return nil, fmt.Errorf("generate schema for %s: %w", t, err)
	}

	actual, _ := schemaCache.LoadOrStore(t, ref)
	return actual.(*openapi3.SchemaRef), nil
}

// SchemaJSON renders the schema for embedding into a prompt.
func SchemaJSON(ref *openapi3.SchemaRef) (string, error) {
	b, err := json.Marshal(ref.Value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type tagOptions struct {
	required bool
	nullable bool
	enum     []string
	min, max *float64
}

func parseSchemaTag(tag string) (tagOptions, error) {
	var opts tagOptions
	for _, part := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "":
		case "required":
			opts.required = true
		case "nullable":
			opts.nullable = true
		case "enum":
			opts.enum = strings.Split(value, "|")
		case "min", "max":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return opts, fmt.Errorf("invalid %s bound %q: %w", key, value, err)
			}
			if key == "min" {
				opts.min = &f
			} else {
				opts.max = &f
			}
		default:
			return opts, fmt.Errorf("unknown schema option %q", key)
		}
	}
	return opts, nil
}

func applySchemaTag(_ string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct {
		required, err := requiredFields(t)
		if err != nil {
			return err
		}
		schema.Required = required
	}

	opts, err := parseSchemaTag(tag.Get(schemaTag))
	if err != nil {
		return err
	}
	if opts.nullable {
		schema.Nullable = true
	}
	if len(opts.enum) > 0 && t.Kind() == reflect.String {
		schema.Enum = make([]any, len(opts.enum))
		for i, v := range opts.enum {
			schema.Enum[i] = v
		}
	}
	if isNumeric(t.Kind()) {
		if opts.min != nil {
			schema.Min = opts.min
		}
		if opts.max != nil {
			schema.Max = opts.max
		}
	}
	return nil
}

func requiredFields(t reflect.Type) ([]string, error) {
	var required []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts, err := parseSchemaTag(f.Tag.Get(schemaTag))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		if !opts.required {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		required = append(required, name)
	}
	return required, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
