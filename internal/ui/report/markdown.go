package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"routelens/internal/core/ports"
	"routelens/internal/data/history"
)

type MarkdownReportData struct {
	Result ports.WorkspaceResult

	// Trends is optional; the section is skipped when nil.
	Trends *history.TrendReport
}

type MarkdownReportOptions struct {
	ProjectName         string
	ProjectRoot         string
	Version             string
	GeneratedAt         time.Time
	Verbosity           string
	TableOfContents     bool
	CollapsibleSections bool
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	verbosity := normalizeReportVerbosity(opts.Verbosity)
	hasTrends := data.Trends != nil && len(data.Trends.Points) > 0

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Route Annotation Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Route Report\n\n")
	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		b.WriteString("- [Executive Summary](#executive-summary)\n")
		b.WriteString("- [Routes](#routes)\n")
		b.WriteString("- [Unresolved Decorators](#unresolved-decorators)\n")
		if hasTrends {
			b.WriteString("- [Route Trends](#route-trends)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", data.Result.Scanned))
	b.WriteString(fmt.Sprintf("| Handler Decorators | %d |\n", data.Result.Decorators))
	b.WriteString(fmt.Sprintf("| Resolved Routes | %d |\n", data.Result.Routes))
	b.WriteString(fmt.Sprintf("| Unresolved Decorators | %d |\n", data.Result.Unresolved))
	b.WriteString(fmt.Sprintf("| Scan Duration | %s |\n\n", data.Result.Duration.Round(time.Millisecond)))

	m.writeRoutes(&b, data.Result.Files, opts.ProjectRoot, opts.CollapsibleSections, verbosity)
	m.writeUnresolved(&b, data.Result.Files, opts.ProjectRoot, opts.CollapsibleSections)
	if hasTrends {
		m.writeTrends(&b, data.Trends, opts.CollapsibleSections)
	}

	return b.String(), nil
}

// GenerateSection renders only the route and unresolved tables, without the
// front matter, for embedding between markers in an existing document.
func (m *MarkdownGenerator) GenerateSection(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	verbosity := normalizeReportVerbosity(opts.Verbosity)

	var b strings.Builder
	m.writeRoutes(&b, data.Result.Files, opts.ProjectRoot, opts.CollapsibleSections, verbosity)
	m.writeUnresolved(&b, data.Result.Files, opts.ProjectRoot, opts.CollapsibleSections)
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func (m *MarkdownGenerator) writeRoutes(b *strings.Builder, files []ports.FileAnnotations, projectRoot string, collapsible bool, verbosity string) {
	b.WriteString("## Routes\n")
	total := 0
	for _, file := range files {
		total += len(file.Annotations)
	}
	if total == 0 {
		b.WriteString("No routes detected.\n\n")
		return
	}
	for _, file := range files {
		if len(file.Annotations) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("### `%s`\n", relPath(projectRoot, file.File)))
		rendered := make([]string, 0, len(file.Annotations))
		for _, ann := range file.Annotations {
			if verbosity == "summary" {
				rendered = append(rendered, fmt.Sprintf("| `%s` | `%s` |\n", ann.Route.Method, ann.Route.FullPath))
				continue
			}
			rendered = append(rendered, fmt.Sprintf(
				"| %d | `%s` | `%s` | %s |\n",
				ann.Line,
				ann.Route.Method,
				ann.Route.FullPath,
				ann.Route.Summary,
			))
		}
		if verbosity == "summary" {
			m.writeTableWithCollapse(
				b,
				"Route details",
				collapsible,
				len(rendered) > 10,
				[]string{"| Method | Path |\n", "| --- | --- |\n"},
				rendered,
			)
			continue
		}
		m.writeTableWithCollapse(
			b,
			"Route details",
			collapsible,
			len(rendered) > 10,
			[]string{"| Line | Method | Path | Summary |\n", "| --- | --- | --- | --- |\n"},
			rendered,
		)
	}
}

func (m *MarkdownGenerator) writeUnresolved(b *strings.Builder, files []ports.FileAnnotations, projectRoot string, collapsible bool) {
	b.WriteString("## Unresolved Decorators\n")
	rendered := make([]string, 0)
	for _, file := range files {
		for _, dec := range file.Unresolved {
			reference := dec.Base
			if len(dec.PropertyPath) > 0 {
				reference = reference + "." + strings.Join(dec.PropertyPath, ".")
			}
			rendered = append(rendered, fmt.Sprintf(
				"| `%s` | %s | `%s:%d:%d` |\n",
				reference,
				dec.Reason,
				relPath(projectRoot, dec.File),
				dec.Line,
				dec.Column,
			))
		}
	}
	if len(rendered) == 0 {
		b.WriteString("No unresolved decorators detected.\n\n")
		return
	}
	m.writeTableWithCollapse(
		b,
		"Unresolved decorator details",
		collapsible,
		len(rendered) > 15,
		[]string{"| Decorator | Reason | Location |\n", "| --- | --- | --- |\n"},
		rendered,
	)
}

func (m *MarkdownGenerator) writeTrends(b *strings.Builder, trends *history.TrendReport, collapsible bool) {
	b.WriteString("## Route Trends\n")
	if trends == nil || len(trends.Points) == 0 {
		b.WriteString("No trend data recorded.\n\n")
		return
	}
	rendered := make([]string, 0, len(trends.Points))
	for _, point := range trends.Points {
		rendered = append(rendered, fmt.Sprintf(
			"| %s | %d | %d | %d | %+d | %.2f |\n",
			point.Timestamp.UTC().Format(time.RFC3339),
			point.FilesScanned,
			point.RouteCount,
			point.UnresolvedCount,
			point.DeltaRoutes,
			point.RouteGrowthPct,
		))
	}
	m.writeTableWithCollapse(
		b,
		"Trend details",
		collapsible,
		len(rendered) > 10,
		[]string{"| Timestamp | Files | Routes | Unresolved | Delta Routes | Growth % |\n", "| --- | --- | --- | --- | --- | --- |\n"},
		rendered,
	)
}

func (m *MarkdownGenerator) writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}

func relPath(root, path string) string {
	root = strings.TrimSpace(root)
	path = strings.TrimSpace(path)
	if root == "" || path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func normalizeReportVerbosity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "summary":
		return "summary"
	case "detailed":
		return "detailed"
	default:
		return "standard"
	}
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
