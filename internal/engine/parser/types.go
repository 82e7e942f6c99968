// # internal/engine/parser/types.go
package parser

import (
	"time"
)

type SourceFile struct {
	Path       string
	Language   string
	Imports    map[string]ImportBinding // Locally bound name -> binding
	Decorators []DecoratorReference     // In source order
	ParsedAt   time.Time
}

type ImportBinding struct {
	ModulePath   string // Raw specifier, unresolved
	ExportedName string // Original member name; empty for default and namespace imports
	IsDefault    bool
	Location     Location
}

// DecoratorReference is one handler-decorator call site: the argument's base
// identifier plus the property-access chain that follows it.
type DecoratorReference struct {
	BaseIdentifier string
	PropertyPath   []string
	Location       Location
	StartByte      uint
	EndByte        uint
}

type Location struct {
	File   string
	Line   int
	Column int
}
