package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"routelens/internal/annotate"
	"routelens/internal/core/ports"
	"routelens/internal/data/history"
	"routelens/internal/engine/resolver"
)

func sampleResult() ports.WorkspaceResult {
	return ports.WorkspaceResult{
		Files: []ports.FileAnnotations{
			{
				File:     "/repo/src/posts.controller.ts",
				Language: "typescript",
				Annotations: []annotate.Annotation{
					{
						Line:   12,
						Column: 3,
						Text:   "▸ POST /api/posts — Create a post",
						Route:  resolver.RouteInfo{Method: "POST", Path: "/posts", FullPath: "/api/posts", Summary: "Create a post"},
					},
					{
						Line:   18,
						Column: 3,
						Route:  resolver.RouteInfo{Method: "GET", Path: "/posts/:id", FullPath: "/api/posts/:id", Summary: "Get one\npost"},
					},
				},
			},
			{
				File:     "/repo/src/users.controller.ts",
				Language: "typescript",
				Annotations: []annotate.Annotation{
					{
						Line:   9,
						Column: 3,
						Route:  resolver.RouteInfo{Method: "GET", Path: "/users", FullPath: "/users", Summary: "List users"},
					},
				},
				Unresolved: []ports.UnresolvedDecorator{
					{
						File:         "/repo/src/users.controller.ts",
						Line:         21,
						Column:       3,
						Base:         "usersContract",
						PropertyPath: []string{"deleteUser"},
						Reason:       "STRUCTURAL_MISMATCH",
					},
				},
			},
		},
		Scanned:    2,
		Decorators: 4,
		Routes:     3,
		Unresolved: 1,
		Duration:   125 * time.Millisecond,
	}
}

func TestTSVGenerator_Generate(t *testing.T) {
	gen := NewTSVGenerator(sampleResult())
	out, err := gen.Generate()
	if err != nil {
		t.Fatalf("generate tsv: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "file\tline\tmethod\tfull_path\tsummary" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "/repo/src/posts.controller.ts\t12\tPOST\t/api/posts\tCreate a post" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Get one post") {
		t.Fatalf("expected newline in summary to be flattened, got %q", lines[2])
	}
}

func TestTSVGenerator_GenerateUnresolved(t *testing.T) {
	gen := NewTSVGenerator(sampleResult())
	out, err := gen.GenerateUnresolved()
	if err != nil {
		t.Fatalf("generate unresolved tsv: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	want := "unresolved_decorator\t/repo/src/users.controller.ts\t21\t3\tusersContract\tdeleteUser\tSTRUCTURAL_MISMATCH"
	if lines[1] != want {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestMarkdownGenerator_Generate(t *testing.T) {
	gen := NewMarkdownGenerator()
	out, err := gen.Generate(
		MarkdownReportData{Result: sampleResult()},
		MarkdownReportOptions{
			ProjectName:     "blog-api",
			ProjectRoot:     "/repo",
			Version:         "1.2.3",
			GeneratedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			TableOfContents: true,
		},
	)
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}

	for _, want := range []string{
		"project: blog-api",
		"generated_at: 2025-06-01T12:00:00Z",
		"version: 1.2.3",
		"# Route Report",
		"- [Routes](#routes)",
		"| Files Scanned | 2 |",
		"| Resolved Routes | 3 |",
		"### `src/posts.controller.ts`",
		"| 12 | `POST` | `/api/posts` | Create a post |",
		"## Unresolved Decorators",
		"`usersContract.deleteUser`",
		"STRUCTURAL_MISMATCH",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "- [Route Trends](#route-trends)") {
		t.Fatal("expected trend TOC entry to be omitted without trend data")
	}
	if strings.Contains(out, "## Route Trends") {
		t.Fatal("expected trend section to be omitted without trend data")
	}
}

func TestMarkdownGenerator_EmptyResult(t *testing.T) {
	gen := NewMarkdownGenerator()
	out, err := gen.Generate(MarkdownReportData{}, MarkdownReportOptions{})
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.Contains(out, "No routes detected.") {
		t.Fatal("expected empty routes section")
	}
	if !strings.Contains(out, "No unresolved decorators detected.") {
		t.Fatal("expected empty unresolved section")
	}
}

func TestMarkdownGenerator_TrendsSection(t *testing.T) {
	trends := &history.TrendReport{
		Points: []history.TrendPoint{
			{
				Timestamp:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				FilesScanned:   4,
				RouteCount:     12,
				DeltaRoutes:    2,
				RouteGrowthPct: 20,
			},
		},
	}
	gen := NewMarkdownGenerator()
	out, err := gen.Generate(
		MarkdownReportData{Result: sampleResult(), Trends: trends},
		MarkdownReportOptions{TableOfContents: true},
	)
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.Contains(out, "- [Route Trends](#route-trends)") {
		t.Fatal("expected trend TOC entry")
	}
	if !strings.Contains(out, "## Route Trends") {
		t.Fatal("expected trend section")
	}
	if !strings.Contains(out, "| 2025-06-01T00:00:00Z | 4 | 12 | 0 | +2 | 20.00 |") {
		t.Fatalf("unexpected trend row\n%s", out)
	}
}

func TestMarkdownGenerator_GenerateSection(t *testing.T) {
	gen := NewMarkdownGenerator()
	out, err := gen.GenerateSection(
		MarkdownReportData{Result: sampleResult()},
		MarkdownReportOptions{ProjectRoot: "/repo"},
	)
	if err != nil {
		t.Fatalf("generate section: %v", err)
	}
	if !strings.HasPrefix(out, "## Routes\n") {
		t.Fatalf("expected section to start at the routes table\n%s", out)
	}
	if strings.Contains(out, "# Route Report") {
		t.Fatal("expected section to omit the report title")
	}
	if !strings.Contains(out, "## Unresolved Decorators") {
		t.Fatalf("expected unresolved table\n%s", out)
	}
}

func TestMarkdownGenerator_SummaryVerbosity(t *testing.T) {
	gen := NewMarkdownGenerator()
	out, err := gen.Generate(
		MarkdownReportData{Result: sampleResult()},
		MarkdownReportOptions{Verbosity: "summary"},
	)
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.Contains(out, "| Method | Path |") {
		t.Fatal("expected summary route header")
	}
	if strings.Contains(out, "| Line | Method | Path | Summary |") {
		t.Fatal("expected detailed route header to be omitted")
	}
}

func TestMarkdownGenerator_CollapsesLongTables(t *testing.T) {
	result := sampleResult()
	long := make([]ports.UnresolvedDecorator, 0, 16)
	for i := 0; i < 16; i++ {
		long = append(long, ports.UnresolvedDecorator{
			File:   "/repo/src/users.controller.ts",
			Line:   30 + i,
			Column: 3,
			Base:   "usersContract",
			Reason: "IMPORT_NOT_RESOLVED",
		})
	}
	result.Files[1].Unresolved = long

	gen := NewMarkdownGenerator()
	out, err := gen.Generate(
		MarkdownReportData{Result: result},
		MarkdownReportOptions{CollapsibleSections: true},
	)
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.Contains(out, "<summary>Unresolved decorator details</summary>") {
		t.Fatal("expected long unresolved table to collapse")
	}
}

func TestOpenAPIGenerator_Generate(t *testing.T) {
	result := sampleResult()
	result.Files = append(result.Files, ports.FileAnnotations{
		File: "/repo/src/dup.controller.ts",
		Annotations: []annotate.Annotation{
			// Same method and path as the posts controller; first wins.
			{Line: 5, Route: resolver.RouteInfo{Method: "POST", FullPath: "/api/posts", Summary: "Duplicate"}},
			{Line: 7, Route: resolver.RouteInfo{Method: "FETCH", FullPath: "/api/strange"}},
		},
	})

	gen := NewOpenAPIGenerator()
	data, err := gen.Generate(result, OpenAPIOptions{Title: "Blog API", Version: "2.0.0"})
	if err != nil {
		t.Fatalf("generate openapi: %v", err)
	}

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]struct {
			Summary string `json:"summary"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal openapi document: %v", err)
	}

	if doc.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected openapi version %q", doc.OpenAPI)
	}
	if doc.Info.Title != "Blog API" || doc.Info.Version != "2.0.0" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}
	if got := doc.Paths["/api/posts"]["post"].Summary; got != "Create a post" {
		t.Fatalf("expected first-seen summary to win, got %q", got)
	}
	if _, ok := doc.Paths["/api/posts/{id}"]["get"]; !ok {
		t.Fatal("expected path parameter to be templated")
	}
	if _, ok := doc.Paths["/api/strange"]; ok {
		t.Fatal("expected unknown method to be skipped")
	}
}

func TestTemplatePath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"/users", "/users"},
		{"/posts/:id", "/posts/{id}"},
		{"/a/:b?/c", "/a/{b}/c"},
		{"/posts/:id/tags/:tag", "/posts/{id}/tags/{tag}"},
	}
	for _, tc := range cases {
		if got := templatePath(tc.input); got != tc.want {
			t.Fatalf("templatePath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestRenderTrendTSV(t *testing.T) {
	report := history.TrendReport{
		Points: []history.TrendPoint{
			{
				Timestamp:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				FilesScanned:    4,
				DecoratorCount:  9,
				RouteCount:      8,
				UnresolvedCount: 1,
				DeltaRoutes:     3,
				RouteGrowthPct:  60,
				AvgRoutes:       6.5,
				WindowHours:     24,
			},
		},
	}
	data, err := RenderTrendTSV(report)
	if err != nil {
		t.Fatalf("render trend tsv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp\tfiles_scanned") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2025-06-01T00:00:00Z\t4\t9\t8\t1\t0\t0\t3\t0\t60.00\t6.50\t0.00\t24.00" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestRenderTrendJSON(t *testing.T) {
	report := history.TrendReport{ProjectKey: "blog", Window: "24h0m0s"}
	data, err := RenderTrendJSON(report)
	if err != nil {
		t.Fatalf("render trend json: %v", err)
	}
	var decoded history.TrendReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal trend json: %v", err)
	}
	if decoded.ProjectKey != "blog" {
		t.Fatalf("unexpected project key %q", decoded.ProjectKey)
	}
}

func TestInjectSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	original := "# Docs\n\n<!-- routelens:routes:start -->\nstale table\n<!-- routelens:routes:end -->\n\ntrailing text\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := InjectSection(path, "routes", "| GET | /users |"); err != nil {
		t.Fatalf("inject section: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	got := string(content)
	if strings.Contains(got, "stale table") {
		t.Fatal("expected stale block to be replaced")
	}
	if !strings.Contains(got, "<!-- routelens:routes:start -->\n| GET | /users |\n<!-- routelens:routes:end -->") {
		t.Fatalf("unexpected injected content\n%s", got)
	}
	if !strings.HasPrefix(got, "# Docs\n") || !strings.Contains(got, "trailing text") {
		t.Fatal("expected surrounding document to be preserved")
	}
}

func TestReplaceBetweenMarkers_Errors(t *testing.T) {
	if _, err := ReplaceBetweenMarkers("no markers here", "routes", "x"); err == nil {
		t.Fatal("expected error for missing markers")
	}
	if _, err := ReplaceBetweenMarkers("<!-- routelens:routes:start -->", "", "x"); err == nil {
		t.Fatal("expected error for empty marker")
	}
	doubled := "<!-- routelens:routes:start --><!-- routelens:routes:start --><!-- routelens:routes:end -->"
	if _, err := ReplaceBetweenMarkers(doubled, "routes", "x"); err == nil {
		t.Fatal("expected error for duplicated start marker")
	}
}

func TestHasMarkers(t *testing.T) {
	content := "<!-- routelens:routes:start -->\n<!-- routelens:routes:end -->"
	if !HasMarkers(content, "routes") {
		t.Fatal("expected markers to be detected")
	}
	if HasMarkers(content, "trends") {
		t.Fatal("expected mismatched marker name to be rejected")
	}
	if HasMarkers("plain text", "routes") {
		t.Fatal("expected plain content to be rejected")
	}
}
