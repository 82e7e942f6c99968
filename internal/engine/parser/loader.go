// # internal/engine/parser/loader.go
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type LanguageSpec struct {
	Extensions []string
}

// languageRegistry maps language IDs to the file extensions they cover.
var languageRegistry = map[string]LanguageSpec{
	"javascript": {Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}},
	"tsx":        {Extensions: []string{".tsx"}},
	"typescript": {Extensions: []string{".ts", ".mts", ".cts"}},
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() *GrammarLoader {
	return &GrammarLoader{
		languages: map[string]*sitter.Language{
			"javascript": sitter.NewLanguage(tree_sitter_javascript.Language()),
			"tsx":        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			"typescript": sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		},
		registry: languageRegistry,
	}
}

func (gl *GrammarLoader) Language(langID string) *sitter.Language {
	return gl.languages[langID]
}

// LanguageForPath returns the language ID covering the path's extension, or "".
func (gl *GrammarLoader) LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for langID, spec := range gl.registry {
		for _, candidate := range spec.Extensions {
			if candidate == ext {
				return langID
			}
		}
	}
	return ""
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	clone := make(map[string]LanguageSpec, len(gl.registry))
	for langID, spec := range gl.registry {
		extensions := make([]string, len(spec.Extensions))
		copy(extensions, spec.Extensions)
		clone[langID] = LanguageSpec{Extensions: extensions}
	}
	return clone
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
