package openapi

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// Schemas derives JSON schemas from Go types and collects named struct types
// as components. Field metadata comes from struct tags:
//
//	json:"name,omitempty"  property name; "-" skips the field
//	doc:"..."              property description
//	example:"..."          example, converted to the field's kind
//	required:"true"        listed in the object's required set
type Schemas struct {
	components map[string]*Schema
	overrides  map[reflect.Type]Schema
	names      map[reflect.Type]string
}

// NewSchemas returns an empty registry.
func NewSchemas() *Schemas {
	return &Schemas{
		components: make(map[string]*Schema),
		overrides:  make(map[reflect.Type]Schema),
		names:      make(map[reflect.Type]string),
	}
}

// Override fixes the inline schema of t, e.g. for validated string types.
func (s *Schemas) Override(t reflect.Type, schema Schema) {
	s.overrides[t] = schema
}

// Of returns the schema of v's type. Named structs become component references.
func (s *Schemas) Of(v any) *Schema {
	return s.of(reflect.TypeOf(v))
}

// Named registers v's struct type under name and returns its reference.
func (s *Schemas) Named(name string, v any) *Schema {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.names[t] = name
	return s.of(t)
}

// Components returns the collected component schemas.
func (s *Schemas) Components() map[string]*Schema {
	return s.components
}

func (s *Schemas) of(t reflect.Type) *Schema {
	if t == nil {
		return &Schema{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if o, ok := s.overrides[t]; ok {
		cp := o
		return &cp
	}
	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &Schema{Type: "integer"}
	case reflect.Int64, reflect.Uint64:
		return &Schema{Type: "integer", Format: "int64"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: s.of(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: s.of(t.Elem())}
	case reflect.Struct:
		return s.component(t)
	default:
		return &Schema{}
	}
}

func (s *Schemas) component(t reflect.Type) *Schema {
	name := s.names[t]
	if name == "" {
		name = t.Name()
	}
	if name == "" {
		return s.object(t)
	}
	if _, ok := s.components[name]; !ok {
		// Reserve the name first so self-referencing types terminate.
		s.components[name] = &Schema{}
		*s.components[name] = *s.object(t)
		s.components[name].Title = name
	}
	return Ref(name)
}

func (s *Schemas) object(t reflect.Type) *Schema {
	obj := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		prop := s.of(f.Type)
		doc, example := f.Tag.Get("doc"), f.Tag.Get("example")
		switch {
		case prop.Ref != "" && doc != "":
			// Keywords next to $ref are ignored by OpenAPI 3.0 tools.
			prop = &Schema{Description: doc, AllOf: []*Schema{prop}}
		case prop.Ref == "":
			prop.Description = doc
			if example != "" {
				prop.Example = exampleValue(f.Type, example)
			}
		}
		obj.Properties[name] = prop
		if f.Tag.Get("required") == "true" {
			obj.Required = append(obj.Required, name)
		}
	}
	slices.Sort(obj.Required)
	return obj
}

// exampleValue converts raw to the JSON kind of t so that numeric examples
// are rendered as numbers.
func exampleValue(t reflect.Type, raw string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
