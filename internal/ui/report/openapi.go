package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"routelens/internal/core/ports"
)

type OpenAPIOptions struct {
	Title   string
	Version string
}

type OpenAPIGenerator struct{}

func NewOpenAPIGenerator() *OpenAPIGenerator {
	return &OpenAPIGenerator{}
}

// Generate builds an OpenAPI 3 document listing every resolved route.
// Routes sharing a method and path collapse to the first occurrence.
func (g *OpenAPIGenerator) Generate(result ports.WorkspaceResult, opts OpenAPIOptions) ([]byte, error) {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   nonEmpty(opts.Title, "Route Inventory"),
			Version: nonEmpty(opts.Version, "0.0.0"),
		},
		Paths: openapi3.NewPaths(),
	}

	type routeKey struct {
		method string
		path   string
	}
	seen := make(map[routeKey]bool)

	for _, file := range result.Files {
		for _, ann := range file.Annotations {
			method := strings.ToUpper(strings.TrimSpace(ann.Route.Method))
			path := templatePath(ann.Route.FullPath)
			if method == "" || path == "" {
				continue
			}
			// SetOperation panics on methods outside the HTTP verb set.
			if !openapiMethods[method] {
				continue
			}
			key := routeKey{method: method, path: path}
			if seen[key] {
				continue
			}
			seen[key] = true

			item := spec.Paths.Value(path)
			if item == nil {
				item = &openapi3.PathItem{}
				spec.Paths.Set(path, item)
			}
			op := openapi3.NewOperation()
			op.Summary = ann.Route.Summary
			op.Responses = openapi3.NewResponses()
			item.SetOperation(method, op)
		}
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return append(data, '\n'), nil
}

var openapiMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
	"TRACE":   true,
	"CONNECT": true,
}

// templatePath rewrites Express-style path params to OpenAPI templates,
// e.g. /posts/:id -> /posts/{id}.
func templatePath(path string) string {
	if !strings.Contains(path, ":") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") || len(segment) < 2 {
			continue
		}
		name := strings.TrimSuffix(segment[1:], "?")
		segments[i] = "{" + name + "}"
	}
	return strings.Join(segments, "/")
}
