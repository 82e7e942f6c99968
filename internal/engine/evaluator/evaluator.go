// # internal/engine/evaluator/evaluator.go
package evaluator

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// callHandler reduces one recognized builder-call shape.
type callHandler func(e *Evaluator, calleeName string, args []*sitter.Node) *Value

type callShape struct {
	match   func(name string) bool
	handler callHandler
}

// callShapes is the recognized-call whitelist, tried in order. Adding a DSL
// shape is a registration here, not a new conditional.
var callShapes = []callShape{
	{match: func(name string) bool { return name == "router" }, handler: evalRouterCall},
	{match: isHTTPVerb, handler: evalMethodCall},
}

var httpVerbs = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"delete":  true,
	"patch":   true,
	"head":    true,
	"options": true,
}

func isHTTPVerb(name string) bool {
	return httpVerbs[strings.ToLower(name)]
}

type Evaluator struct {
	source []byte
}

func New(source []byte) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate reduces an expression node to a structural value without executing
// anything. Shapes outside the route DSL subset reduce to Null.
func (e *Evaluator) Evaluate(node *sitter.Node) *Value {
	if node == nil {
		return Null()
	}
	switch node.Kind() {
	case "object":
		return e.evalObject(node)
	case "string":
		return &Value{Kind: KindString, Str: trimQuoted(e.text(node))}
	case "number":
		num, err := strconv.ParseFloat(strings.TrimSpace(e.text(node)), 64)
		if err != nil {
			return Null()
		}
		return &Value{Kind: KindNumber, Num: num}
	case "true":
		return &Value{Kind: KindBool, Bool: true}
	case "false":
		return &Value{Kind: KindBool, Bool: false}
	case "call_expression":
		return e.evalCall(node)
	case "as_expression", "satisfies_expression", "parenthesized_expression":
		return e.Evaluate(node.NamedChild(0))
	}
	return Null()
}

func (e *Evaluator) evalObject(node *sitter.Node) *Value {
	out := NewObject()
	for i := uint(0); i < node.NamedChildCount(); i++ {
		prop := node.NamedChild(i)
		if prop == nil {
			continue
		}
		switch prop.Kind() {
		case "pair":
			key, ok := e.propertyKey(prop.ChildByFieldName("key"))
			if !ok {
				continue
			}
			out.Set(key, e.Evaluate(prop.ChildByFieldName("value")))
		case "method_definition":
			// Behavior, not data. Marked so route extraction never mistakes
			// it for a route shape.
			key, ok := e.propertyKey(prop.ChildByFieldName("name"))
			if !ok {
				continue
			}
			method := NewObject()
			method.IsFunction = true
			out.Set(key, method)
		case "shorthand_property_identifier":
			out.Set(e.text(prop), Null())
		}
	}
	return out
}

// propertyKey accepts identifier and string-literal keys; computed and other
// key forms are dropped.
func (e *Evaluator) propertyKey(node *sitter.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "property_identifier":
		return e.text(node), true
	case "string":
		return trimQuoted(e.text(node)), true
	}
	return "", false
}

func (e *Evaluator) evalCall(node *sitter.Node) *Value {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "member_expression" {
		return Null()
	}
	prop := callee.ChildByFieldName("property")
	if prop == nil {
		return Null()
	}
	name := e.text(prop)
	args := namedChildren(node.ChildByFieldName("arguments"))
	for _, shape := range callShapes {
		if shape.match(name) {
			return shape.handler(e, name, args)
		}
	}
	return Null()
}

// evalRouterCall reduces `x.router(routes, options?)`: the routes object is
// merged into a fresh router-tagged value, the options evaluate alongside it.
func evalRouterCall(e *Evaluator, _ string, args []*sitter.Node) *Value {
	out := NewObject()
	out.IsRouter = true
	if len(args) > 0 {
		if routes := e.Evaluate(args[0]); routes.IsObject() {
			for _, key := range routes.Keys() {
				child, _ := routes.Get(key)
				out.Set(key, child)
			}
		}
	}
	if len(args) > 1 {
		out.RouterOptions = e.Evaluate(args[1])
	}
	return out
}

// evalMethodCall reduces `x.<verb>(path?, config?)`: the verb becomes the
// method tag, a literal first argument becomes the path, and config fields
// merge into the result.
func evalMethodCall(e *Evaluator, name string, args []*sitter.Node) *Value {
	out := NewObject()
	out.IsMethodCall = true
	out.Method = strings.ToUpper(name)
	if len(args) > 0 && args[0] != nil && args[0].Kind() == "string" {
		out.Path = trimQuoted(e.text(args[0]))
	}
	if len(args) > 1 {
		if cfg := e.Evaluate(args[1]); cfg.IsObject() {
			for _, key := range cfg.Keys() {
				child, _ := cfg.Get(key)
				out.Set(key, child)
			}
		}
	}
	return out
}

func (e *Evaluator) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(e.source[node.StartByte():node.EndByte()])
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := node.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}
