package openapi

import (
	"net/http"
	"strconv"
	"strings"
)

// Option configures a Builder.
type Option func(*Builder)

// WithServer advertises a base URL.
func WithServer(url, description string) Option {
	return func(b *Builder) {
		b.doc.Servers = append(b.doc.Servers, Server{URL: url, Description: description})
	}
}

// WithTag documents an operation tag.
func WithTag(name, description string) Option {
	return func(b *Builder) {
		b.doc.Tags = append(b.doc.Tags, Tag{Name: name, Description: description})
	}
}

// WithOAuth2 declares an authorization-code security scheme under name.
func WithOAuth2(name, authorizationURL, tokenURL, description string) Option {
	return func(b *Builder) {
		b.doc.Components.SecuritySchemes[name] = SecurityScheme{
			Type:        "oauth2",
			Description: description,
			Flows: &OAuthFlows{AuthorizationCode: &OAuthFlow{
				AuthorizationURL: authorizationURL,
				TokenURL:         tokenURL,
				Scopes:           map[string]string{},
			}},
		}
	}
}

// Builder assembles a Document operation by operation.
type Builder struct {
	doc     *Document
	schemas *Schemas
}

// NewBuilder starts a document described by info.
func NewBuilder(info Info, opts ...Option) *Builder {
	b := &Builder{
		doc: &Document{
			OpenAPI: Version,
			Info:    info,
			Paths:   make(map[string]*PathItem),
			Components: Components{
				SecuritySchemes: make(map[string]SecurityScheme),
			},
		},
		schemas: NewSchemas(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Schemas exposes the schema registry used for request and response bodies.
func (b *Builder) Schemas() *Schemas { return b.schemas }

// Add documents op for method on path. A later call for the same method and
// path replaces the earlier one.
func (b *Builder) Add(method, path string, op Operation) {
	item, ok := b.doc.Paths[path]
	if !ok {
		item = &PathItem{}
		b.doc.Paths[path] = item
	}
	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = &op
	case http.MethodPost:
		item.Post = &op
	case http.MethodPut:
		item.Put = &op
	case http.MethodDelete:
		item.Delete = &op
	}
}

// Document returns the assembled document.
func (b *Builder) Document() *Document {
	b.doc.Components.Schemas = b.schemas.Components()
	if len(b.doc.Components.SecuritySchemes) == 0 {
		b.doc.Components.SecuritySchemes = nil
	}
	return b.doc
}

// ErrorResponse documents status with the given body schema. The description
// is the standard status text.
func ErrorResponse(status int, body *Schema) map[string]Response {
	return map[string]Response{
		strconv.Itoa(status): {Description: http.StatusText(status), Content: JSONContent(body)},
	}
}
