package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrRender = errors.New("openapi render failed")
)

// Document routes.
const (
	PathYAML = "/openapi.yaml"
	PathJSON = "/openapi.json"
	PathDocs = "/"
)

// RedocScript is the ReDoc bundle loaded by the documentation page, pinned so
// the page renders the same way on every deploy.
const RedocScript = "https://cdn.jsdelivr.net/npm/redoc@2.1.5/bundles/redoc.standalone.js"

// docsSpecURL is relative to the docs page, so the page keeps working when a
// proxy serves the API under a root path.
const docsSpecURL = "openapi.yaml"

// Register renders doc once and attaches the document and ReDoc routes to r:
//
//	GET /              -> ReDoc HTML
//	GET /openapi.yaml  -> document as YAML
//	GET /openapi.json  -> document as JSON
func Register(_ context.Context, r *mux.Router, doc *Document) error {
	if r == nil {
		panic("router is nil")
	}

	rawJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: json: %w", ErrRender, err)
	}
	rawYAML, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: yaml: %w", ErrRender, err)
	}
	var page strings.Builder
	if err := indexTemplate.Execute(&page, indexData{Title: doc.Info.Title, Spec: docsSpecURL, Script: RedocScript}); err != nil {
		return fmt.Errorf("%w: html: %w", ErrRender, err)
	}
	html := []byte(page.String())

	r.HandleFunc(PathDocs, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(html)
	}).Methods(http.MethodGet).Name("docs")

	r.HandleFunc(PathYAML, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(rawYAML)
	}).Methods(http.MethodGet).Name("openapi_yaml")

	r.HandleFunc(PathJSON, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(rawJSON)
	}).Methods(http.MethodGet).Name("openapi_json")

	return nil
}

type indexData struct {
	Title  string
	Spec   string
	Script string
}

var indexTemplate = template.Must(template.New("redoc").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Title}} - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="{{.Script}}"></script>
    <script>Redoc.init({{.Spec}}, { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`))
