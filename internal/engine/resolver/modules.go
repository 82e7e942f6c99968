// # internal/engine/resolver/modules.go
package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// moduleExtensions is the probe order for relative specifiers. Order matters:
// the first existing candidate wins, not the best match.
var moduleExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// ResolveModulePath maps a relative module specifier to a file on disk.
// Non-relative specifiers (bare packages, tsconfig path aliases) are not
// handled and return false.
func ResolveModulePath(specifier, importingFile string) (string, bool) {
	if specifier == "" || !strings.HasPrefix(specifier, ".") {
		return "", false
	}

	base := filepath.Join(filepath.Dir(importingFile), specifier)

	// 1. Direct file with each extension.
	for _, ext := range moduleExtensions {
		candidate := base + ext
		if fileExists(candidate) {
			return candidate, true
		}
	}

	// 2. Specifier as a directory containing an index file.
	for _, ext := range moduleExtensions {
		candidate := filepath.Join(base, "index"+ext)
		if fileExists(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
