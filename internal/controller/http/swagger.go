package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>
        body { margin: 0; background: #fafafa; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                docExpansion: "list"
            });
        };
    </script>
</body>
</html>`

// SwaggerHandler serves the Swagger UI and the OpenAPI document
type SwaggerHandler struct {
	page []byte
	spec []byte
	etag string
}

// NewSwaggerHandler creates a new Swagger handler for a JSON OpenAPI document.
// The UI page is rendered once.
func NewSwaggerHandler(title string, spec []byte) *SwaggerHandler {
	tmpl := template.Must(template.New("swagger").Parse(swaggerUITemplate))

	var page bytes.Buffer
	if err := tmpl.Execute(&page, struct {
		Title   string
		SpecURL string
	}{
		Title:   title,
		SpecURL: openAPIPath,
	}); err != nil {
		panic(fmt.Sprintf("rendering swagger page: %v", err))
	}

	sum := sha256.Sum256(spec)
	return &SwaggerHandler{
		page: page.Bytes(),
		spec: spec,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

const openAPIPath = "/openapi.json"

// RegisterRoutes registers Swagger routes
func (h *SwaggerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/docs", h.UI())
	r.Get(openAPIPath, h.Spec())
}

// UI serves the Swagger UI HTML page
func (h *SwaggerHandler) UI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(h.page)
	}
}

// Spec serves the OpenAPI document, answering 304 when the client copy is current
func (h *SwaggerHandler) Spec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", h.etag)
		if r.Header.Get("If-None-Match") == h.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(h.spec)
	}
}
