// Package filter resolves bracket-subscripted query filters such as
// ?added[gt]=2022-09-15T15:53:00Z&added[lte]=2022-12-01T00:00:00Z into a
// map of operator to typed value.
//
// A Spec is declared once at startup and is read-only afterwards, so a single
// Spec is safe to share across concurrent requests.
package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/okian/firmograph/internal/domain/validation"
)

// Root is the key under which the bare field value is stored.
const Root = ""

// ErrTypeOperator is reported for bracket keys outside the declared operator set.
const ErrTypeOperator = "value_error.operator"

// Common operator sets.
var (
	ComparisonOps = []string{"gt", "gte", "lt", "lte"}
	LocationOps   = []string{"continent", "country", "state", "city"}
)

// Parsed maps operator names (Root for the bare field) to values. Only keys
// supplied by the caller are present; an empty map means no filter.
type Parsed[T any] map[string]T

// Has reports whether op was supplied.
func (p Parsed[T]) Has(op string) bool {
	_, ok := p[op]
	return ok
}

// Option tunes the documentation of a Spec.
type Option func(*Doc)

// WithDescription documents the root field.
func WithDescription(desc string) Option {
	return func(d *Doc) { d.Description = desc }
}

// WithExample sets the documented example value.
func WithExample(example string) Option {
	return func(d *Doc) { d.Example = example }
}

// Doc is the documentation view of a Spec.
type Doc struct {
	Field       string
	Type        string
	Format      string
	Description string
	Example     string
	Operators   []string
}

// Keys returns the root key followed by every bracket key, in declaration order.
func (d Doc) Keys() []string {
	keys := make([]string, 0, len(d.Operators)+1)
	keys = append(keys, d.Field)
	for _, op := range d.Operators {
		keys = append(keys, Key(d.Field, op))
	}
	return keys
}

// Key formats the query key for field and op.
func Key(field, op string) string {
	if op == Root {
		return field
	}
	return field + "[" + op + "]"
}

// Spec is the static declaration of a bracket filter.
type Spec[T any] struct {
	doc   Doc
	value Value[T]
}

// New declares a filter on field whose values are coerced by value and whose
// bracket keys are limited to ops.
func New[T any](field string, value Value[T], ops []string, opts ...Option) *Spec[T] {
	if field == "" {
		panic("filter: empty field name")
	}
	if value.Parse == nil {
		panic("filter: value parser is nil")
	}
	s := &Spec[T]{
		doc: Doc{
			Field:     field,
			Type:      value.Type,
			Format:    value.Format,
			Operators: slices.Clone(ops),
		},
		value: value,
	}
	for _, opt := range opts {
		opt(&s.doc)
	}
	return s
}

// DateTime declares a date-time filter.
func DateTime(field string, ops []string, opts ...Option) *Spec[time.Time] {
	return New(field, DateTimeValue, ops, opts...)
}

// Int declares an integer filter.
func Int(field string, ops []string, opts ...Option) *Spec[int] {
	return New(field, IntValue, ops, opts...)
}

// String declares a string filter.
func String(field string, ops []string, opts ...Option) *Spec[string] {
	return New(field, StringValue, ops, opts...)
}

// Field returns the declared field name.
func (s *Spec[T]) Field() string { return s.doc.Field }

// Doc returns the documentation view of the filter.
func (s *Spec[T]) Doc() Doc {
	d := s.doc
	d.Operators = slices.Clone(s.doc.Operators)
	return d
}

func (s *Spec[T]) allows(op string) bool {
	return slices.Contains(s.doc.Operators, op)
}

// match classifies a query key. ok is false for keys that belong to other
// parameters. bracketed is true for every key starting with "field[".
func (s *Spec[T]) match(key string) (op string, bracketed, ok bool) {
	field := s.doc.Field
	if key == field {
		return Root, false, true
	}
	if !strings.HasPrefix(key, field+"[") {
		return "", false, false
	}
	inner, closed := strings.CutSuffix(key[len(field)+1:], "]")
	if !closed {
		return key[len(field):], true, true
	}
	return inner, true, true
}

// Resolve builds the Parsed filter for q. Every invalid key is reported in a
// single *validation.Error; no partial result is returned on failure.
// A repeated key resolves to its last value.
func (s *Spec[T]) Resolve(q url.Values) (Parsed[T], error) {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	out := make(Parsed[T])
	var errs []validation.FieldError
	for _, key := range keys {
		op, bracketed, ok := s.match(key)
		if !ok {
			continue
		}
		values := q[key]
		if len(values) == 0 {
			continue
		}
		if bracketed && (op == Root || !s.allows(op)) {
			errs = append(errs, validation.Query(key,
				fmt.Sprintf("unsupported operator %q, expected one of: %s", op, strings.Join(s.doc.Operators, ", ")),
				ErrTypeOperator))
			continue
		}
		v, err := s.value.Parse(values[len(values)-1])
		if err != nil {
			errs = append(errs, validation.Query(key, err.Error(), s.value.ErrType))
			continue
		}
		out[op] = v
	}
	if len(errs) > 0 {
		return nil, validation.New(errs...)
	}
	return out, nil
}
