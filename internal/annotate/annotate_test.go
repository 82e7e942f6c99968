package annotate

import (
	"testing"

	"routelens/internal/engine/parser"
	"routelens/internal/engine/resolver"
)

var sampleRoute = resolver.RouteInfo{
	Method:   "POST",
	Path:     "/",
	FullPath: "/posts",
	Summary:  "Create a new post",
}

func TestRender(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		info resolver.RouteInfo
		want string
	}{
		{
			name: "all parts",
			opts: DefaultOptions(),
			info: sampleRoute,
			want: "▸ POST /posts — Create a new post",
		},
		{
			name: "method hidden",
			opts: Options{Enabled: true, ShowPath: true, ShowSummary: true, Prefix: DefaultPrefix},
			info: sampleRoute,
			want: "▸ /posts — Create a new post",
		},
		{
			name: "summary hidden",
			opts: Options{Enabled: true, ShowMethod: true, ShowPath: true, Prefix: DefaultPrefix},
			info: sampleRoute,
			want: "▸ POST /posts",
		},
		{
			name: "summary only has no separator",
			opts: Options{Enabled: true, ShowSummary: true, Prefix: DefaultPrefix},
			info: sampleRoute,
			want: "▸ Create a new post",
		},
		{
			name: "no summary in route",
			opts: DefaultOptions(),
			info: resolver.RouteInfo{Method: "GET", FullPath: "/health"},
			want: "▸ GET /health",
		},
		{
			name: "custom prefix",
			opts: Options{Enabled: true, ShowMethod: true, ShowPath: true, Prefix: ">> "},
			info: sampleRoute,
			want: ">> POST /posts",
		},
		{
			name: "disabled",
			opts: Options{ShowMethod: true, ShowPath: true, Prefix: DefaultPrefix},
			info: sampleRoute,
			want: "",
		},
		{
			name: "everything hidden",
			opts: Options{Enabled: true, Prefix: DefaultPrefix},
			info: sampleRoute,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewRenderer(tc.opts).Render(tc.info)
			if got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	loc := parser.Location{File: "src/posts.controller.ts", Line: 12, Column: 3}

	ann, ok := r.Annotate(sampleRoute, loc)
	if !ok {
		t.Fatal("expected an annotation")
	}
	if ann.Line != 12 || ann.Column != 3 {
		t.Errorf("position = %d:%d, want 12:3", ann.Line, ann.Column)
	}
	if ann.Text != "▸ POST /posts — Create a new post" {
		t.Errorf("Text = %q", ann.Text)
	}
	if ann.Route.Method != "POST" {
		t.Errorf("Route.Method = %q, want POST", ann.Route.Method)
	}
}

func TestAnnotate_Disabled(t *testing.T) {
	r := NewRenderer(Options{})
	if _, ok := r.Annotate(sampleRoute, parser.Location{Line: 1, Column: 1}); ok {
		t.Error("disabled renderer must not produce annotations")
	}
}
