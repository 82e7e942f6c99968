// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"routelens/internal/core/errors"
	"routelens/internal/shared/observability"
	"routelens/internal/shared/util"
)

type Parser struct {
	loader     *GrammarLoader
	extractor  *Extractor
	extensions map[string]string
	pools      map[string]*ParserPool
}

func NewParser(loader *GrammarLoader, decoratorName string) *Parser {
	p := &Parser{
		loader:     loader,
		extractor:  NewExtractor(decoratorName),
		extensions: make(map[string]string),
		pools:      make(map[string]*ParserPool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

func (p *Parser) ParseFile(path string, content []byte) (*SourceFile, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language")
	}

	pool, ok := p.pools[lang]
	if !ok {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	parser := pool.Get()
	defer pool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseFailure, "parse failed")
	}
	defer tree.Close()

	file, err := p.extractor.Extract(tree.RootNode(), content, path, lang)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailure, "extraction failed")
	}
	return file, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}
