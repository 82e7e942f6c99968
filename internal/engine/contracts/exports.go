// # internal/engine/contracts/exports.go
package contracts

import (
	"fmt"
	"time"

	"routelens/internal/core/errors"
	"routelens/internal/engine/evaluator"
	"routelens/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExportTable maps exported names (plus the synthetic "default") to their
// structural values, in source declaration order.
type ExportTable struct {
	Path    string
	BuiltAt time.Time

	names  []string
	values map[string]*evaluator.Value
}

func NewExportTable(path string) *ExportTable {
	return &ExportTable{
		Path:    path,
		BuiltAt: time.Now(),
		values:  make(map[string]*evaluator.Value),
	}
}

// Set stores a value under name, preserving first-insertion order across
// overwrites.
func (t *ExportTable) Set(name string, value *evaluator.Value) {
	if _, exists := t.values[name]; !exists {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

func (t *ExportTable) Get(name string) (*evaluator.Value, bool) {
	value, ok := t.values[name]
	return value, ok
}

// Names returns the export names in declaration order.
func (t *ExportTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *ExportTable) Len() int {
	return len(t.names)
}

// Builder constructs export tables from contract file sources.
type Builder struct {
	loader *parser.GrammarLoader
}

func NewBuilder(loader *parser.GrammarLoader) *Builder {
	return &Builder{loader: loader}
}

// Build parses content and evaluates every top-level initializer into an
// export table.
func (b *Builder) Build(path string, content []byte) (*ExportTable, error) {
	lang := b.loader.LanguageForPath(path)
	grammar := b.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported contract file: %s", path))
	}

	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(grammar)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseFailure, "parse failed")
	}
	defer tree.Close()

	tb := &tableBuilder{
		source: content,
		table:  NewExportTable(path),
		eval:   evaluator.New(content),
	}

	root := tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		switch node.Kind() {
		case "lexical_declaration", "variable_declaration":
			tb.collectDeclaration(node, false)
		case "export_statement":
			tb.collectExport(node)
		}
	}
	return tb.table, nil
}

type tableBuilder struct {
	source []byte
	table  *ExportTable
	eval   *evaluator.Evaluator
}

func (tb *tableBuilder) collectDeclaration(node *sitter.Node, exported bool) {
	declarators := 0
	stored := make([]string, 0, 1)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		declarators++

		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		value := tb.eval.Evaluate(valueNode)
		if value.IsNull() {
			continue
		}

		name := tb.text(nameNode)
		tb.table.Set(name, value)
		stored = append(stored, name)
	}

	if exported && declarators == 1 && len(stored) == 1 {
		tb.aliasDefault(stored[0])
	}
}

func (tb *tableBuilder) collectExport(node *sitter.Node) {
	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "lexical_declaration", "variable_declaration":
			tb.collectDeclaration(decl, true)
		}
		return
	}

	// `export default expr` carries the expression in the value field.
	if value := node.ChildByFieldName("value"); value != nil {
		tb.setDefault(value)
		return
	}

	// `export = expr` has no field; the expression follows the "=" token.
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "=" {
			continue
		}
		for j := i + 1; j < count; j++ {
			next := node.Child(j)
			if next != nil && next.IsNamed() {
				tb.setDefault(next)
				return
			}
		}
		return
	}
}

// aliasDefault points "default" at an exported declaration's value. The first
// exported declaration wins; explicit default exports override via setDefault.
func (tb *tableBuilder) aliasDefault(name string) {
	if _, exists := tb.table.Get("default"); exists {
		return
	}
	if value, ok := tb.table.Get(name); ok {
		tb.table.Set("default", value)
	}
}

func (tb *tableBuilder) setDefault(node *sitter.Node) {
	value := tb.eval.Evaluate(node)
	if value.IsNull() {
		return
	}
	tb.table.Set("default", value)
}

func (tb *tableBuilder) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(tb.source[node.StartByte():node.EndByte()])
}
