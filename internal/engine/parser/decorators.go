// # internal/engine/parser/decorators.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

func (e *Extractor) extractDecorator(ctx *ExtractionContext, node *sitter.Node) bool {
	call := firstNamedChild(node)
	if call == nil || call.Kind() != "call_expression" {
		return true
	}
	if e.calleeName(ctx, call.ChildByFieldName("function")) != e.decoratorName {
		return true
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return true
	}

	base, path := propertyChain(ctx, args.NamedChild(0))
	if base == "" {
		return true
	}

	ctx.File.Decorators = append(ctx.File.Decorators, DecoratorReference{
		BaseIdentifier: base,
		PropertyPath:   path,
		Location:       ctx.Location(node),
		StartByte:      node.StartByte(),
		EndByte:        node.EndByte(),
	})
	return true
}

// calleeName resolves the decorator callee to a simple name: either a plain
// identifier or the last segment of a property-access chain.
func (e *Extractor) calleeName(ctx *ExtractionContext, callee *sitter.Node) string {
	if callee == nil {
		return ""
	}
	switch callee.Kind() {
	case "identifier":
		return ctx.Text(callee)
	case "member_expression":
		if prop := callee.ChildByFieldName("property"); prop != nil {
			return ctx.Text(prop)
		}
	}
	return ""
}

// propertyChain walks a property-access chain leftward, collecting access
// names until the base identifier is reached. A non-identifier base yields "".
func propertyChain(ctx *ExtractionContext, node *sitter.Node) (string, []string) {
	path := make([]string, 0, 4)
	for node != nil {
		switch node.Kind() {
		case "identifier":
			return ctx.Text(node), path
		case "member_expression":
			prop := node.ChildByFieldName("property")
			if prop == nil {
				return "", nil
			}
			path = append([]string{ctx.Text(prop)}, path...)
			node = node.ChildByFieldName("object")
		default:
			return "", nil
		}
	}
	return "", nil
}
