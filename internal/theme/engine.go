// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package theme composes storefront pages from reusable sections. The
// engine owns a registry mapping section type strings to renderers,
// converts theme settings into scoped style tokens, and mediates the four
// custom-code injection channels through the sanitizer and the script
// sandbox. Rendering is pure with respect to its inputs, so one engine
// can serve any number of concurrent page views without locking beyond
// the registry's read lock.
package theme

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"storefront/internal/liquid"
	"storefront/internal/models"
	"storefront/internal/sanitize"
	"storefront/internal/script"
)

// PageData is the read-only storefront data a render receives from the
// commerce backend. The engine never mutates it.
type PageData struct {
	Products    []models.Product
	Collections []models.Collection
	Cart        *models.Cart
	Customer    *models.Customer
}

// RenderedPage is the assembled output of one page render, split into the
// slots a host document needs.
type RenderedPage struct {
	Head   string // sanitized head markup (strict policy)
	Styles string // settings tokens plus scoped, sanitized custom CSS
	Body   string // themed container with all sections and body markup
}

// Document assembles the full HTML document around the rendered slots.
func (p RenderedPage) Document() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString(p.Head)
	b.WriteString("\n<style>\n")
	b.WriteString(p.Styles)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(p.Body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Context carries everything a section renderer may read: the section
// itself, the theme settings, the page data, and the current block depth.
type Context struct {
	Section  models.ThemeSection
	Settings models.ThemeSettings
	Data     PageData

	engine *Engine
	depth  int
}

// RenderBlocks renders the given blocks at the next nesting level.
// Section renderers call it for their block lists.
func (rc Context) RenderBlocks(blocks []models.ThemeBlock) string {
	return rc.engine.renderBlocks(blocks, rc.Settings, rc.Data, rc.depth+1)
}

// SectionRenderer renders one section type. Implementations must be pure
// with respect to the Context and safe for concurrent use.
type SectionRenderer interface {
	Render(rc Context) (string, error)
}

// Engine maps section types to renderers and composes pages. Each engine
// instance owns its registry — there is no process-wide section map, so
// multi-tenant servers can run differently configured engines side by side.
type Engine struct {
	mu       sync.RWMutex
	registry map[string]SectionRenderer
	scripts  *script.Host
}

// New creates an engine with the built-in section set registered and the
// given script host serving the customJavascript channel. A nil host
// disables script execution entirely.
func New(scripts *script.Host) *Engine {
	e := &Engine{
		registry: make(map[string]SectionRenderer),
		scripts:  scripts,
	}
	registerBuiltins(e)
	return e
}

// Register adds or replaces the renderer for a section type.
func (e *Engine) Register(sectionType string, r SectionRenderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry[sectionType] = r
}

// Types returns the registered section types, for the customizer's
// add-section palette.
func (e *Engine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	types := make([]string, 0, len(e.registry))
	for t := range e.registry {
		types = append(types, t)
	}
	return types
}

func (e *Engine) renderer(sectionType string) (SectionRenderer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.registry[sectionType]
	return r, ok
}

// RenderPage renders an ordered section list with the given settings and
// data. The four custom-code fields each flow through exactly one
// mediated path: CSS through the style sanitizer, head and body markup
// through the markup sanitizer with their respective policies, and
// JavaScript through the sandbox — never concatenated into the page.
func (e *Engine) RenderPage(sections []models.ThemeSection, settings models.ThemeSettings, data PageData) RenderedPage {
	var body strings.Builder
	body.WriteString(`<div class="theme-container">`)
	body.WriteByte('\n')

	for _, section := range sections {
		if section.Disabled {
			continue
		}
		body.WriteString(e.renderSection(section, settings, data))
		body.WriteByte('\n')
	}

	if settings.CustomBodyMarkup != "" {
		body.WriteString(`<div class="custom-body">`)
		body.WriteString(sanitize.Markup(settings.CustomBodyMarkup, sanitize.BodyPolicy()))
		body.WriteString("</div>\n")
	}
	body.WriteString("</div>")

	styles := StyleTokens(settings)
	if settings.CustomCSS != "" {
		styles += "\n" + sanitize.Style(settings.CustomCSS)
	}

	var head string
	if settings.CustomHeadMarkup != "" {
		head = sanitize.Markup(settings.CustomHeadMarkup, sanitize.HeadPolicy())
	}

	// Launch and forget: tenant script never blocks or fails the render.
	if settings.CustomJavascript != "" && e.scripts != nil {
		e.scripts.ExecuteAsync(settings.CustomJavascript)
	}

	return RenderedPage{Head: head, Styles: styles, Body: body.String()}
}

// RenderTemplate resolves a page-type template (home, product, collection,
// cart) to its ordered section list and renders it. Template settings
// overrides are merged over the document settings for this render only.
func (e *Engine) RenderTemplate(doc models.ThemeDocument, name string, data PageData) (RenderedPage, error) {
	tmpl, ok := doc.Templates[name]
	if !ok {
		return RenderedPage{}, fmt.Errorf("no template named %q", name)
	}

	byID := make(map[string]models.ThemeSection, len(doc.Sections))
	for _, s := range doc.Sections {
		byID[s.ID] = s
	}

	sections := make([]models.ThemeSection, 0, len(tmpl.Sections))
	for _, id := range tmpl.Sections {
		s, ok := byID[id]
		if !ok {
			slog.Warn("template references unknown section", "template", name, "section_id", id)
			sections = append(sections, models.ThemeSection{
				ID:   id,
				Type: "missing:" + id,
			})
			continue
		}
		sections = append(sections, s)
	}

	settings := doc.Settings
	if len(tmpl.Settings) > 0 {
		settings = overrideSettings(settings, tmpl.Settings)
	}

	return e.RenderPage(sections, settings, data), nil
}

// renderSection renders one section wrapped in its standard container.
// Unknown types and renderer failures degrade to a visible diagnostic
// block so a broken section never silently vanishes or takes down the
// rest of the page.
func (e *Engine) renderSection(section models.ThemeSection, settings models.ThemeSettings, data PageData) string {
	r, ok := e.renderer(section.Type)
	if !ok {
		slog.Warn("unknown section type", "type", section.Type, "section_id", section.ID)
		return errorBlock("Unknown section type: " + section.Type)
	}

	rc := Context{
		Section:  section,
		Settings: settings,
		Data:     data,
		engine:   e,
	}
	content, err := r.Render(rc)
	if err != nil {
		slog.Warn("section render failed", "type", section.Type, "section_id", section.ID, "error", err)
		return errorBlock("Section failed: " + section.Type)
	}

	id := liquid.Escape(section.ID)
	typ := liquid.Escape(section.Type)
	return fmt.Sprintf(
		`<div id="section-%s" class="section section-%s" data-section-id="%s" data-section-type="%s">%s</div>`,
		id, typ, id, typ, content,
	)
}

// renderBlocks renders nested blocks with an explicit depth counter.
// Structures deeper than MaxBlockDepth are truncated: stored documents
// are untrusted and must not drive unbounded recursion.
func (e *Engine) renderBlocks(blocks []models.ThemeBlock, settings models.ThemeSettings, data PageData, depth int) string {
	if len(blocks) == 0 {
		return ""
	}
	if depth > models.MaxBlockDepth {
		slog.Warn("block nesting exceeds maximum, truncating", "depth", depth)
		return ""
	}

	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(`<div class="block block-`)
		b.WriteString(liquid.Escape(block.Type))
		b.WriteString(`">`)
		b.WriteString(renderBlockContent(block))
		b.WriteString(e.renderBlocks(block.Blocks, settings, data, depth+1))
		b.WriteString("</div>")
	}
	return b.String()
}

// renderBlockContent emits a block's own content from its settings.
// Blocks carry free text, so everything interpolated here is escaped.
func renderBlockContent(block models.ThemeBlock) string {
	var b strings.Builder
	if heading := settingString(block.Settings, "heading", ""); heading != "" {
		b.WriteString("<h3>")
		b.WriteString(liquid.Escape(heading))
		b.WriteString("</h3>")
	}
	if text := settingString(block.Settings, "text", ""); text != "" {
		b.WriteString("<p>")
		b.WriteString(liquid.Escape(text))
		b.WriteString("</p>")
	}
	return b.String()
}

func errorBlock(message string) string {
	return `<div class="section-error">` + liquid.Escape(message) + `</div>`
}

// overrideSettings merges a template's settings overrides over the base
// settings record via their JSON field names.
func overrideSettings(base models.ThemeSettings, overrides map[string]any) models.ThemeSettings {
	raw, err := json.Marshal(base)
	if err != nil {
		return base
	}
	var merged map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base
	}
	for k, v := range overrides {
		merged[k] = v
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return base
	}
	out := base
	if err := json.Unmarshal(raw, &out); err != nil {
		return base
	}
	return out
}
