// # internal/engine/parser/extractor.go
package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const DefaultDecoratorName = "TsRestHandler"

// Extractor builds a SourceFile from a parsed tree: the file's import table
// plus every handler-decorator call site, in source order.
type Extractor struct {
	decoratorName string
}

func NewExtractor(decoratorName string) *Extractor {
	if decoratorName == "" {
		decoratorName = DefaultDecoratorName
	}
	return &Extractor{decoratorName: decoratorName}
}

func (e *Extractor) Extract(root *sitter.Node, source []byte, filePath, language string) (*SourceFile, error) {
	file := &SourceFile{
		Path:     filePath,
		Language: language,
		Imports:  make(map[string]ImportBinding),
		ParsedAt: time.Now(),
	}
	if root == nil {
		return file, nil
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": e.extractImport,
		"decorator":        e.extractDecorator,
	})
	engine.Walk(ctx, root)
	return file, nil
}
