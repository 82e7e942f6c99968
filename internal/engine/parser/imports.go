// # internal/engine/parser/imports.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

func (e *Extractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	modulePath, ok := stringLiteralText(ctx, node.ChildByFieldName("source"))
	if !ok || modulePath == "" {
		return true
	}

	loc := ctx.Location(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "import_clause" {
			continue
		}
		e.bindImportClause(ctx, child, modulePath, loc)
	}
	return true
}

func (e *Extractor) bindImportClause(ctx *ExtractionContext, clause *sitter.Node, modulePath string, loc Location) {
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			// Default import: `import c from './x'`
			ctx.File.Imports[ctx.Text(child)] = ImportBinding{
				ModulePath: modulePath,
				IsDefault:  true,
				Location:   loc,
			}
		case "namespace_import":
			// `import * as ns from './x'`
			for j := uint(0); j < child.ChildCount(); j++ {
				inner := child.Child(j)
				if inner != nil && inner.Kind() == "identifier" {
					ctx.File.Imports[ctx.Text(inner)] = ImportBinding{
						ModulePath: modulePath,
						Location:   loc,
					}
				}
			}
		case "named_imports":
			e.bindNamedImports(ctx, child, modulePath, loc)
		}
	}
}

func (e *Extractor) bindNamedImports(ctx *ExtractionContext, node *sitter.Node, modulePath string, loc Location) {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		exported := trimQuoted(ctx.Text(nameNode))
		local := exported
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = ctx.Text(alias)
		}
		if local == "" {
			continue
		}
		ctx.File.Imports[local] = ImportBinding{
			ModulePath:   modulePath,
			ExportedName: exported,
			Location:     loc,
		}
	}
}
