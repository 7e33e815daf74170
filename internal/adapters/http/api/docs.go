package api

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/adapters/http/openapi"
	"github.com/okian/firmograph/internal/domain/filter"
	"github.com/okian/firmograph/internal/domain/model"
)

// Document builds the API reference of the companies routes. Every
// operation carries the shared declarations (401 from the bearer-token
// dependency, 422 from parameter validation) merged with its own; the
// route's own declaration wins for a status declared in both.
func (s *Server) Document(info openapi.Info, opts ...openapi.Option) *openapi.Document {
	var signIn string
	if s.flow.ClientID != "" {
		signIn = "Sign in with client ID `" + s.flow.ClientID + "`."
	}
	opts = append(opts,
		openapi.WithTag(Tag, "Company profiles, peers and company feeds"),
		openapi.WithOAuth2(auth.SchemeName, s.flow.AuthorizationURL, s.flow.TokenURL, signIn))
	b := openapi.NewBuilder(info, opts...)

	schemas := b.Schemas()
	schemas.Override(reflect.TypeFor[model.ObjectID](), *objectIDSchema())
	types := make([]any, len(model.NewsArticleTypes))
	for i, t := range model.NewsArticleTypes {
		types[i] = string(t)
	}
	schemas.Override(reflect.TypeFor[model.NewsArticleType](), openapi.Schema{Type: "string", Enum: types})

	exception := schemas.Named("HTTPException", model.HTTPException{})
	invalid := schemas.Named("HTTPValidationError", validationErrorResponse{})
	shared := openapi.MergeResponses(
		declare(http.StatusUnauthorized, "Not authenticated", exception),
		declare(http.StatusUnprocessableEntity, "Validation Error", invalid),
	)
	security := []openapi.SecurityRequirement{{auth.SchemeName: {}}}

	for _, rt := range s.routes {
		own := make([]map[string]openapi.Response, 0, len(rt.Errors))
		for status, desc := range rt.Errors {
			body := exception
			if status == http.StatusUnprocessableEntity {
				body = invalid
			}
			own = append(own, declare(status, desc, body))
		}
		ok := map[string]openapi.Response{
			strconv.Itoa(http.StatusOK): {
				Description: "Successful Response",
				Content:     openapi.JSONContent(schemas.Of(rt.Response)),
			},
		}
		layers := append([]map[string]openapi.Response{shared}, own...)
		layers = append(layers, ok)

		b.Add(rt.Method, CompaniesPrefix+rt.Path, openapi.Operation{
			Tags:        []string{Tag},
			Summary:     rt.Summary,
			Description: rt.Description,
			OperationID: rt.Name,
			Parameters:  rt.Params,
			Responses:   openapi.MergeResponses(layers...),
			Security:    security,
		})
	}
	return b.Document()
}

func declare(status int, desc string, body *openapi.Schema) map[string]openapi.Response {
	resp := openapi.ErrorResponse(status, body)
	if desc != "" {
		code := strconv.Itoa(status)
		r := resp[code]
		r.Description = desc
		resp[code] = r
	}
	return resp
}

func objectIDSchema() *openapi.Schema {
	n := 24
	return &openapi.Schema{
		Type:      "string",
		MinLength: &n,
		MaxLength: &n,
		Pattern:   "^[0-9a-fA-F]{24}$",
		Example:   model.ObjectIDExample,
	}
}

// filterParam documents a bracket filter once under its root name; the
// accepted bracket keys are listed in the description.
func filterParam(d filter.Doc) openapi.Parameter {
	var desc strings.Builder
	desc.WriteString(d.Description)
	if len(d.Operators) > 0 {
		if desc.Len() > 0 {
			desc.WriteString(". ")
		}
		desc.WriteString("Accepted keys: ")
		desc.WriteString(strings.Join(d.Keys(), ", "))
	}
	p := openapi.Parameter{
		Name:        d.Field,
		In:          openapi.InQuery,
		Description: desc.String(),
		Schema:      &openapi.Schema{Type: d.Type, Format: d.Format},
	}
	if d.Example != "" {
		p.Example = d.Example
	}
	return p
}
