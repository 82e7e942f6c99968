// # internal/engine/parser/extractor_common.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

// stringLiteralText returns the unquoted text of a plain string literal node.
func stringLiteralText(ctx *ExtractionContext, node *sitter.Node) (string, bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	return trimQuoted(ctx.Text(node)), true
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}
