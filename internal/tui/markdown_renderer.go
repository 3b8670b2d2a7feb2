package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWrap keeps narrow detail panes readable.
const minMarkdownWrap = 24

// markdownRenderer renders card notes for the detail pane. The glamour renderer
// is rebuilt only when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown into ANSI-styled terminal text wrapped at width.
// Rendering failures fall back to the raw source.
func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	wrap := max(width, minMarkdownWrap)
	if r.renderer == nil || r.width != wrap {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return source
		}
		r.renderer = renderer
		r.width = wrap
	}
	out, err := r.renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.Trim(out, "\n")
}
