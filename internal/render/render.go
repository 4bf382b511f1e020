// Package render turns transcript turns into terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"kb-chat/internal/models"
	"kb-chat/pkg/sources"
)

const NoSourcesNotice = "No sources returned."

type Options struct {
	// Markdown renders assistant answers with glamour.
	Markdown bool
	WordWrap int
	// Theme is dark, light, or auto (glamour picks from the terminal).
	Theme string
	// ResolveURL turns backend-relative links into absolute ones. Optional.
	ResolveURL func(string) string
}

type Renderer struct {
	opts   Options
	styles Styles
	md     *glamour.TermRenderer
}

func New(opts Options) (*Renderer, error) {
	if opts.WordWrap <= 0 {
		opts.WordWrap = 80
	}
	if opts.ResolveURL == nil {
		opts.ResolveURL = func(s string) string { return s }
	}

	r := &Renderer{opts: opts, styles: StylesFor(opts.Theme)}
	if opts.Markdown {
		md, err := newMarkdown(opts.Theme, opts.WordWrap)
		if err != nil {
			return nil, fmt.Errorf("create markdown renderer: %w", err)
		}
		r.md = md
	}
	return r, nil
}

func newMarkdown(theme string, wrap int) (*glamour.TermRenderer, error) {
	style := glamour.WithAutoStyle()
	if theme == "dark" || theme == "light" {
		style = glamour.WithStylePath(theme)
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
}

// Transcript renders turns separated by blank lines.
func (r *Renderer) Transcript(turns []models.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, r.Turn(t))
	}
	return strings.Join(parts, "\n\n")
}

func (r *Renderer) Turn(t models.Turn) string {
	var b strings.Builder
	b.WriteString(r.label(t))
	b.WriteString(" ")
	b.WriteString(r.body(t))

	if t.Role != models.RoleAssistant || t.IsError {
		return b.String()
	}

	if t.FileURL != "" {
		b.WriteString("\n")
		b.WriteString(r.styles.Muted.Render("File:") + " " + r.styles.Link.Render(r.opts.ResolveURL(t.FileURL)))
	}

	b.WriteString("\n")
	if t.NoSources || len(t.Sources) == 0 {
		b.WriteString(r.styles.Muted.Render(NoSourcesNotice))
	} else {
		b.WriteString(r.Sources(t.Sources))
	}
	return b.String()
}

func (r *Renderer) label(t models.Turn) string {
	switch {
	case t.Role == models.RoleUser:
		return r.styles.User.Render("You:")
	case t.Role == models.RoleSystem:
		return r.styles.System.Render("System:")
	default:
		return r.styles.Assistant.Render("Assistant:")
	}
}

func (r *Renderer) body(t models.Turn) string {
	if t.IsError {
		return r.styles.Error.Render(t.Text)
	}
	if t.Role == models.RoleAssistant && r.md != nil {
		out, err := r.md.Render(t.Text)
		if err == nil {
			return "\n" + strings.TrimSpace(out)
		}
	}
	return t.Text
}

// Sources lists each unique source, with view and download links for KB
// articles.
func (r *Renderer) Sources(list []sources.Annotated) string {
	var b strings.Builder
	b.WriteString(r.styles.Heading.Render("Sources:"))
	for _, s := range list {
		name := s.DisplayName
		if name == "" {
			name = "(unnamed source)"
		}
		b.WriteString("\n  • ")
		b.WriteString(r.styles.Source.Render(name))
		if !s.HasKB() {
			continue
		}
		b.WriteString("\n      view:     ")
		b.WriteString(r.styles.Link.Render(s.ViewURL))
		b.WriteString("\n      download: ")
		b.WriteString(r.styles.Link.Render(r.opts.ResolveURL(s.DownloadURL)))
	}
	return b.String()
}
