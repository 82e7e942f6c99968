// # internal/ui/report/tsv.go
package report

import (
	"fmt"
	"strings"

	"routelens/internal/core/ports"
)

type TSVGenerator struct {
	result ports.WorkspaceResult
}

func NewTSVGenerator(result ports.WorkspaceResult) *TSVGenerator {
	return &TSVGenerator{result: result}
}

// Generate renders one row per resolved route, in scan order.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("file\tline\tmethod\tfull_path\tsummary\n")

	for _, file := range t.result.Files {
		for _, ann := range file.Annotations {
			buf.WriteString(fmt.Sprintf("%s\t%d\t%s\t%s\t%s\n",
				file.File,
				ann.Line,
				ann.Route.Method,
				ann.Route.FullPath,
				sanitizeCell(ann.Route.Summary),
			))
		}
	}

	return buf.String(), nil
}

func (t *TSVGenerator) GenerateUnresolved() (string, error) {
	var buf strings.Builder

	buf.WriteString("type\tfile\tline\tcolumn\tbase\tproperty_path\treason\n")
	for _, file := range t.result.Files {
		for _, dec := range file.Unresolved {
			buf.WriteString(fmt.Sprintf("unresolved_decorator\t%s\t%d\t%d\t%s\t%s\t%s\n",
				dec.File,
				dec.Line,
				dec.Column,
				dec.Base,
				strings.Join(dec.PropertyPath, "."),
				dec.Reason,
			))
		}
	}

	return buf.String(), nil
}

// sanitizeCell keeps free-form contract text to a single cell.
func sanitizeCell(value string) string {
	value = strings.ReplaceAll(value, "\t", " ")
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
