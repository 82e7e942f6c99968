// Package annotate turns resolved routes into the inline display strings
// attached at decorator call sites.
package annotate

import (
	"strings"

	"routelens/internal/engine/parser"
	"routelens/internal/engine/resolver"
)

const DefaultPrefix = "▸ "

// Options controls which route parts the rendered annotation shows.
type Options struct {
	Enabled     bool
	ShowMethod  bool
	ShowPath    bool
	ShowSummary bool
	Prefix      string
}

func DefaultOptions() Options {
	return Options{
		Enabled:     true,
		ShowMethod:  true,
		ShowPath:    true,
		ShowSummary: true,
		Prefix:      DefaultPrefix,
	}
}

// Annotation is one rendered route at a source position.
type Annotation struct {
	Line   int                `json:"line"`
	Column int                `json:"column"`
	Text   string             `json:"text"`
	Route  resolver.RouteInfo `json:"route"`
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render assembles the annotation text for a route. Hidden or absent parts
// are skipped; an empty string means nothing to display.
func (r *Renderer) Render(info resolver.RouteInfo) string {
	if !r.opts.Enabled {
		return ""
	}

	parts := make([]string, 0, 4)
	if r.opts.ShowMethod && info.Method != "" {
		parts = append(parts, info.Method)
	}
	if r.opts.ShowPath && info.FullPath != "" {
		parts = append(parts, info.FullPath)
	}
	if r.opts.ShowSummary && info.Summary != "" {
		// The separator only makes sense after a method or path.
		if len(parts) > 0 {
			parts = append(parts, "—")
		}
		parts = append(parts, info.Summary)
	}
	if len(parts) == 0 {
		return ""
	}

	return r.opts.Prefix + strings.Join(parts, " ")
}

// Annotate renders a route at its decorator's position. Returns false when
// rendering is disabled or produces nothing.
func (r *Renderer) Annotate(info resolver.RouteInfo, loc parser.Location) (Annotation, bool) {
	text := r.Render(info)
	if text == "" {
		return Annotation{}, false
	}
	return Annotation{
		Line:   loc.Line,
		Column: loc.Column,
		Text:   text,
		Route:  info,
	}, true
}
