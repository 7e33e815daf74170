// Package validation defines the uniform request-validation error shape
// shared by every request parameter, bracket filters included.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is matched by errors.Is for every *Error.
var ErrInvalidRequest = errors.New("invalid request")

// Location roots.
const (
	InQuery = "query"
	InPath  = "path"
)

// FieldError describes one failing parameter.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Key returns the parameter name the error points at.
func (e FieldError) Key() string {
	if len(e.Loc) == 0 {
		return ""
	}
	return e.Loc[len(e.Loc)-1]
}

// Param returns the parameter name without any bracket subscript, so
// added[gt] and added[junk] both report as added.
func (e FieldError) Param() string {
	key := e.Key()
	if i := strings.IndexByte(key, '['); i >= 0 {
		return key[:i]
	}
	return key
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", strings.Join(e.Loc, "."), e.Msg)
}

// Query builds a FieldError located in the query string.
func Query(key, msg, typ string) FieldError {
	return FieldError{Loc: []string{InQuery, key}, Msg: msg, Type: typ}
}

// Path builds a FieldError located in the URL path.
func Path(name, msg, typ string) FieldError {
	return FieldError{Loc: []string{InPath, name}, Msg: msg, Type: typ}
}

// Error aggregates all field errors found while resolving one request.
type Error struct {
	Fields []FieldError
}

// New returns an *Error for fields, or nil when fields is empty.
func New(fields ...FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return ErrInvalidRequest }

// Collector gathers errors from several parameter resolvers so a request
// reports every invalid parameter at once.
type Collector struct {
	fields []FieldError
}

// Add records err. Nil is ignored; a *Error contributes its fields; any other
// error is kept as an untyped request error.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	var verr *Error
	if errors.As(err, &verr) {
		c.fields = append(c.fields, verr.Fields...)
		return
	}
	c.fields = append(c.fields, FieldError{Loc: []string{"request"}, Msg: err.Error(), Type: "value_error"})
}

// Len reports how many field errors were collected.
func (c *Collector) Len() int { return len(c.fields) }

// Err returns the aggregated error, or nil when nothing failed.
func (c *Collector) Err() error {
	return New(c.fields...)
}
