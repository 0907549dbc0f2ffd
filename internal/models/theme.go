// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxBlockDepth is the deepest allowed block nesting inside a section.
// The customizer enforces it when blocks are added; the renderer truncates
// anything deeper, since stored documents are untrusted.
const MaxBlockDepth = 8

// ThemeBlock is a nested, repeatable sub-unit of a section (for example
// one slide of a carousel). Blocks can nest up to MaxBlockDepth levels.
type ThemeBlock struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings"`
	Blocks   []ThemeBlock   `json:"blocks,omitempty"`
}

// ThemeSection is a named, independently rendered, reorderable unit of a
// storefront page. Section order in the document is visit order.
type ThemeSection struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings"`
	Blocks   []ThemeBlock   `json:"blocks,omitempty"`
	Disabled bool           `json:"disabled,omitempty"`
}

// ThemeTemplate maps a page type (home, product, collection, cart) to an
// ordered list of section IDs. A section may appear in any number of templates.
type ThemeTemplate struct {
	Name     string         `json:"name"`
	Sections []string       `json:"sections"`
	Settings map[string]any `json:"settings,omitempty"`
}

// ThemeDocument is the complete editable payload of a theme: the flat
// settings record, the ordered section list, and the page-type templates.
// It is stored as a single JSONB column, once for the draft and once for
// the published copy.
type ThemeDocument struct {
	Settings  ThemeSettings            `json:"settings"`
	Sections  []ThemeSection           `json:"sections"`
	Templates map[string]ThemeTemplate `json:"templates,omitempty"`
}

// StoreTheme is the aggregate root for one store's theme. Draft holds the
// working copy mutated by the customizer; Published holds the copy anonymous
// visitors see. Publish promotes Draft to Published atomically.
type StoreTheme struct {
	ID          uuid.UUID      `json:"id"`
	StoreID     uuid.UUID      `json:"store_id"`
	Name        string         `json:"name"`
	Draft       ThemeDocument  `json:"draft"`
	Published   *ThemeDocument `json:"published,omitempty"`
	IsPublished bool           `json:"is_published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// Clone returns a deep copy of the block, including nested blocks.
func (b ThemeBlock) Clone() ThemeBlock {
	out := b
	out.Settings = cloneValueMap(b.Settings)
	out.Blocks = CloneBlocks(b.Blocks)
	return out
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []ThemeBlock) []ThemeBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ThemeBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Clone returns a deep copy of the section, including blocks and settings.
func (s ThemeSection) Clone() ThemeSection {
	out := s
	out.Settings = cloneValueMap(s.Settings)
	out.Blocks = CloneBlocks(s.Blocks)
	return out
}

// CloneSections deep-copies a section list.
func CloneSections(sections []ThemeSection) []ThemeSection {
	if sections == nil {
		return nil
	}
	out := make([]ThemeSection, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the template.
func (t ThemeTemplate) Clone() ThemeTemplate {
	out := t
	if t.Sections != nil {
		out.Sections = append([]string(nil), t.Sections...)
	}
	out.Settings = cloneValueMap(t.Settings)
	return out
}

// Clone returns a deep copy of the whole document. Used by the customizer
// for history snapshots, so undo state can never alias live state.
func (d ThemeDocument) Clone() ThemeDocument {
	out := ThemeDocument{
		Settings: d.Settings,
		Sections: CloneSections(d.Sections),
	}
	if d.Templates != nil {
		out.Templates = make(map[string]ThemeTemplate, len(d.Templates))
		for name, t := range d.Templates {
			out.Templates[name] = t.Clone()
		}
	}
	return out
}

// cloneValueMap deep-copies a settings map, descending into nested maps
// and slices. Scalar values are copied as-is.
func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneValueMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
