// # internal/engine/resolver/routes.go
package resolver

import (
	"strings"

	"routelens/internal/engine/contracts"
	"routelens/internal/engine/evaluator"
	"routelens/internal/engine/parser"
)

// RouteInfo is the terminal output for one resolved decorator reference.
type RouteInfo struct {
	Method   string
	Path     string
	FullPath string
	Summary  string
}

// routeDefinition is a route before prefix composition.
type routeDefinition struct {
	method  string
	path    string
	summary string
}

// baseStrategy is one way of locating the decorator's target value inside an
// export table. Strategies run in order; the first traversal hit wins.
type baseStrategy func(table *contracts.ExportTable, path []string) (*evaluator.Value, bool)

var baseStrategies = []baseStrategy{
	headExportBase,
	defaultExportBase,
	contractExportBase,
	anyExportBase,
}

// RouteResolver locates a decorator's route inside a contract export table
// and composes the absolute path from the router prefix.
type RouteResolver struct{}

func NewRouteResolver() *RouteResolver {
	return &RouteResolver{}
}

// Resolve finds the route that propertyPath points at within table. The
// import binding carries the scoping hint: a named import restricts the
// search to its own export, anything else runs the fallback strategy chain.
// A miss anywhere returns false, never an error.
func (r *RouteResolver) Resolve(table *contracts.ExportTable, propertyPath []string, binding parser.ImportBinding) (RouteInfo, bool) {
	if table == nil || len(propertyPath) == 0 {
		return RouteInfo{}, false
	}

	base, ok := locateBase(table, propertyPath, binding)
	if !ok {
		return RouteInfo{}, false
	}

	def, ok := extractRoute(base)
	if !ok {
		return RouteInfo{}, false
	}

	method := strings.ToUpper(def.method)
	if method == "" {
		method = "GET"
	}

	return RouteInfo{
		Method:   method,
		Path:     def.path,
		FullPath: composePath(findPathPrefix(table), def.path),
		Summary:  def.summary,
	}, true
}

func locateBase(table *contracts.ExportTable, path []string, binding parser.ImportBinding) (*evaluator.Value, bool) {
	// 0. A named import scopes the search to its own export, no fallback.
	if binding.ExportedName != "" {
		root, ok := table.Get(binding.ExportedName)
		if !ok {
			return nil, false
		}
		return traverse(root, path)
	}

	for _, strategy := range baseStrategies {
		if value, ok := strategy(table, path); ok {
			return value, true
		}
	}
	return nil, false
}

// headExportBase treats the path head as an export name and traverses the
// rest of the path inside it. Covers namespace imports, where the first
// property segment names the export.
func headExportBase(table *contracts.ExportTable, path []string) (*evaluator.Value, bool) {
	root, ok := table.Get(path[0])
	if !ok {
		return nil, false
	}
	return traverse(root, path[1:])
}

// defaultExportBase traverses the full path within the default export.
func defaultExportBase(table *contracts.ExportTable, path []string) (*evaluator.Value, bool) {
	root, ok := table.Get("default")
	if !ok {
		return nil, false
	}
	return traverse(root, path)
}

// contractExportBase traverses within an export literally named "contract".
func contractExportBase(table *contracts.ExportTable, path []string) (*evaluator.Value, bool) {
	root, ok := table.Get("contract")
	if !ok {
		return nil, false
	}
	return traverse(root, path)
}

// anyExportBase tries every export in declaration order until one admits the
// full path.
func anyExportBase(table *contracts.ExportTable, path []string) (*evaluator.Value, bool) {
	for _, name := range table.Names() {
		root, _ := table.Get(name)
		if value, ok := traverse(root, path); ok {
			return value, true
		}
	}
	return nil, false
}

// traverse applies the one-level lookup once per path segment.
func traverse(value *evaluator.Value, path []string) (*evaluator.Value, bool) {
	current := value
	for _, segment := range path {
		next, ok := lookupSegment(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// lookupSegment finds key within value: a direct child first, then one level
// into plain child objects. Router containers keep their routes as direct
// children, so the first branch covers them; the second catches contracts
// that group routes under an extra object layer.
func lookupSegment(value *evaluator.Value, key string) (*evaluator.Value, bool) {
	if !value.IsObject() {
		return nil, false
	}

	// 1. Direct child.
	if child, ok := value.Get(key); ok {
		return child, true
	}

	// 2. Grandchild through an untagged child object, first match in
	// declaration order.
	for _, name := range value.Keys() {
		child, _ := value.Get(name)
		if !child.IsObject() || child.Tagged() {
			continue
		}
		if grandchild, ok := child.Get(key); ok {
			return grandchild, true
		}
	}

	return nil, false
}

// extractRoute pulls a route definition out of a located value. Direct
// method/path fields win over the builder-call tag, and a nested route
// wrapper is unwrapped recursively.
func extractRoute(value *evaluator.Value) (routeDefinition, bool) {
	if !value.IsObject() {
		return routeDefinition{}, false
	}

	method, hasMethod := value.StringField("method")
	path, hasPath := value.StringField("path")
	summary, _ := value.StringField("summary")

	// 1. Direct fields.
	if hasMethod || hasPath {
		return routeDefinition{method: method, path: path, summary: summary}, true
	}

	// 2. Builder-call tag.
	if value.IsMethodCall {
		return routeDefinition{method: value.Method, path: value.Path, summary: summary}, true
	}

	// 3. Nested route wrapper.
	if nested, ok := value.Get("route"); ok {
		return extractRoute(nested)
	}

	return routeDefinition{}, false
}

// findPathPrefix scans the table for a router carrying a path prefix: each
// export in declaration order, then one level into its object children. The
// first hit wins, on the assumption of one router per contract file.
func findPathPrefix(table *contracts.ExportTable) string {
	for _, name := range table.Names() {
		value, _ := table.Get(name)
		if prefix, ok := routerPrefix(value); ok {
			return prefix
		}
		if !value.IsObject() {
			continue
		}
		for _, key := range value.Keys() {
			child, _ := value.Get(key)
			if prefix, ok := routerPrefix(child); ok {
				return prefix
			}
		}
	}
	return ""
}

func routerPrefix(value *evaluator.Value) (string, bool) {
	if value == nil || !value.IsRouter || value.RouterOptions == nil {
		return "", false
	}
	return value.RouterOptions.StringField("pathPrefix")
}

// composePath joins the router prefix and the route's own path. A root route
// is absorbed by its prefix, and a trailing prefix slash is stripped exactly
// once so "/posts/" + "/comments" stays "/posts/comments".
func composePath(prefix, routePath string) string {
	if prefix == "" {
		if routePath == "" {
			return "/"
		}
		return routePath
	}
	if routePath == "" || routePath == "/" {
		return prefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	return strings.TrimSuffix(prefix, "/") + routePath
}
