// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package customizer implements the merchant-facing theme editing session:
// a draft document with linear undo history, validation warnings, and the
// save/publish lifecycle. Previews run through the same rendering path the
// storefront serves to visitors, so what the merchant sees is what ships.
package customizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/models"
	"storefront/internal/sanitize"
	"storefront/internal/script"
	"storefront/internal/theme"
)

// State is the editing session lifecycle position. Every committed change
// moves the session to Dirty; Save and Publish move it forward again.
type State string

const (
	StateClean     State = "clean"
	StateDirty     State = "dirty"
	StateSaved     State = "saved"
	StatePublished State = "published"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrBlockNotFound   = errors.New("block not found")
)

// Persister is the slice of the theme store the editor needs. SaveDraft
// must never touch the published copy; Publish must promote the draft
// atomically or leave the live theme exactly as it was.
type Persister interface {
	SaveDraft(ctx context.Context, themeID uuid.UUID, doc models.ThemeDocument) error
	Publish(ctx context.Context, themeID uuid.UUID, doc models.ThemeDocument) error
}

// Editor is one merchant's editing session over a theme draft. It holds a
// linear history of deep snapshots and a cursor; undo and redo only move
// the cursor, and any committed change discards the forward history.
// An Editor is not safe for concurrent use; each session owns one.
type Editor struct {
	themeID uuid.UUID
	engine  *theme.Engine
	scripts *script.Host
	persist Persister

	history []models.ThemeDocument
	cursor  int
	state   State
}

// New opens an editing session on a deep copy of the given draft. The
// caller's document is never mutated through the editor.
func New(themeID uuid.UUID, draft models.ThemeDocument, engine *theme.Engine, scripts *script.Host, persist Persister) *Editor {
	return &Editor{
		themeID: themeID,
		engine:  engine,
		scripts: scripts,
		persist: persist,
		history: []models.ThemeDocument{draft.Clone()},
		state:   StateClean,
	}
}

// Document returns a deep copy of the current draft state.
func (e *Editor) Document() models.ThemeDocument {
	return e.history[e.cursor].Clone()
}

// State returns the session lifecycle state.
func (e *Editor) State() State { return e.state }

func (e *Editor) CanUndo() bool { return e.cursor > 0 }
func (e *Editor) CanRedo() bool { return e.cursor < len(e.history)-1 }

// Undo steps the cursor back one snapshot. Returns false at the start of
// history.
func (e *Editor) Undo() bool {
	if !e.CanUndo() {
		return false
	}
	e.cursor--
	e.state = StateDirty
	return true
}

// Redo steps the cursor forward one snapshot. Returns false when no
// forward history exists.
func (e *Editor) Redo() bool {
	if !e.CanRedo() {
		return false
	}
	e.cursor++
	e.state = StateDirty
	return true
}

// commit records a new snapshot after a successful mutation. Forward
// history past the cursor is discarded, which keeps history linear.
func (e *Editor) commit(doc models.ThemeDocument) {
	e.history = append(e.history[:e.cursor+1], doc)
	e.cursor++
	e.state = StateDirty
}

// current returns a deep copy for a mutation to work on.
func (e *Editor) current() models.ThemeDocument {
	return e.history[e.cursor].Clone()
}

// AddSection inserts a new section of the given type at index (clamped to
// the section list), seeded with the type's preset settings, and returns
// its generated ID. Unknown types are rejected up front rather than
// rendering as error blocks later.
func (e *Editor) AddSection(sectionType string, index int) (string, error) {
	section, err := e.engine.NewSection(sectionType)
	if err != nil {
		return "", err
	}

	doc := e.current()
	if index < 0 {
		index = 0
	}
	if index > len(doc.Sections) {
		index = len(doc.Sections)
	}
	doc.Sections = append(doc.Sections[:index], append([]models.ThemeSection{section}, doc.Sections[index:]...)...)
	e.commit(doc)
	return section.ID, nil
}

// RemoveSection deletes the section and drops its ID from every template
// that references it.
func (e *Editor) RemoveSection(id string) error {
	doc := e.current()
	idx := sectionIndex(doc.Sections, id)
	if idx < 0 {
		return fmt.Errorf("remove section %q: %w", id, ErrSectionNotFound)
	}
	doc.Sections = append(doc.Sections[:idx], doc.Sections[idx+1:]...)
	for name, tmpl := range doc.Templates {
		kept := tmpl.Sections[:0]
		for _, sid := range tmpl.Sections {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		tmpl.Sections = kept
		doc.Templates[name] = tmpl
	}
	e.commit(doc)
	return nil
}

// MoveSection moves the section to the given index, clamped to the list.
func (e *Editor) MoveSection(id string, index int) error {
	doc := e.current()
	from := sectionIndex(doc.Sections, id)
	if from < 0 {
		return fmt.Errorf("move section %q: %w", id, ErrSectionNotFound)
	}
	section := doc.Sections[from]
	doc.Sections = append(doc.Sections[:from], doc.Sections[from+1:]...)
	if index < 0 {
		index = 0
	}
	if index > len(doc.Sections) {
		index = len(doc.Sections)
	}
	doc.Sections = append(doc.Sections[:index], append([]models.ThemeSection{section}, doc.Sections[index:]...)...)
	e.commit(doc)
	return nil
}

// ToggleSection flips the section's disabled flag. Disabled sections stay
// in the document and keep their settings; they just stop rendering.
func (e *Editor) ToggleSection(id string) error {
	doc := e.current()
	idx := sectionIndex(doc.Sections, id)
	if idx < 0 {
		return fmt.Errorf("toggle section %q: %w", id, ErrSectionNotFound)
	}
	doc.Sections[idx].Disabled = !doc.Sections[idx].Disabled
	e.commit(doc)
	return nil
}

// UpdateSettings merges the patch into the theme-wide settings record by
// JSON field name. Unknown keys are ignored by the unmarshal.
func (e *Editor) UpdateSettings(patch map[string]any) error {
	doc := e.current()
	merged, err := mergeSettings(doc.Settings, patch)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	doc.Settings = merged
	e.commit(doc)
	return nil
}

// UpdateSectionSettings merges the patch into one section's settings map.
func (e *Editor) UpdateSectionSettings(id string, patch map[string]any) error {
	doc := e.current()
	idx := sectionIndex(doc.Sections, id)
	if idx < 0 {
		return fmt.Errorf("update section %q: %w", id, ErrSectionNotFound)
	}
	if doc.Sections[idx].Settings == nil {
		doc.Sections[idx].Settings = map[string]any{}
	}
	for k, v := range patch {
		doc.Sections[idx].Settings[k] = v
	}
	e.commit(doc)
	return nil
}

// AddBlock inserts a block into a section, under parentBlockID when given
// or at the section's top level when parentBlockID is empty. The insertion
// is rejected if any part of the resulting tree would nest deeper than
// models.MaxBlockDepth.
func (e *Editor) AddBlock(sectionID, parentBlockID string, block models.ThemeBlock) error {
	doc := e.current()
	idx := sectionIndex(doc.Sections, sectionID)
	if idx < 0 {
		return fmt.Errorf("add block to section %q: %w", sectionID, ErrSectionNotFound)
	}
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.Settings == nil {
		block.Settings = map[string]any{}
	}

	section := &doc.Sections[idx]
	if parentBlockID == "" {
		if 1+blockDepth(block.Blocks) > models.MaxBlockDepth {
			return fmt.Errorf("block nesting exceeds maximum depth %d", models.MaxBlockDepth)
		}
		section.Blocks = append(section.Blocks, block.Clone())
	} else {
		parent, depth := findBlock(section.Blocks, parentBlockID, 1)
		if parent == nil {
			return fmt.Errorf("add block under %q: %w", parentBlockID, ErrBlockNotFound)
		}
		if depth+1+blockDepth(block.Blocks) > models.MaxBlockDepth {
			return fmt.Errorf("block nesting exceeds maximum depth %d", models.MaxBlockDepth)
		}
		parent.Blocks = append(parent.Blocks, block.Clone())
	}
	e.commit(doc)
	return nil
}

// RemoveBlock deletes a block (and its nested blocks) from a section.
func (e *Editor) RemoveBlock(sectionID, blockID string) error {
	doc := e.current()
	idx := sectionIndex(doc.Sections, sectionID)
	if idx < 0 {
		return fmt.Errorf("remove block from section %q: %w", sectionID, ErrSectionNotFound)
	}
	blocks, removed := removeBlock(doc.Sections[idx].Blocks, blockID)
	if !removed {
		return fmt.Errorf("remove block %q: %w", blockID, ErrBlockNotFound)
	}
	doc.Sections[idx].Blocks = blocks
	e.commit(doc)
	return nil
}

// Validate checks the draft's custom-code channels against the same rules
// the renderer enforces. Content the sanitizers would strip produces a
// warning (the merchant should know before visitors do); custom JavaScript
// that does not compile is a hard error.
func (e *Editor) Validate() ([]string, error) {
	doc := e.history[e.cursor]
	var warnings []string

	if doc.Settings.CustomCSS != "" && sanitize.UnsafeStyle(doc.Settings.CustomCSS) {
		warnings = append(warnings, "custom CSS contains content that will be removed at render time")
	}
	if doc.Settings.CustomHeadMarkup != "" && sanitize.UnsafeMarkup(doc.Settings.CustomHeadMarkup, sanitize.HeadPolicy()) {
		warnings = append(warnings, "custom head markup contains tags or attributes that will be removed at render time")
	}
	if doc.Settings.CustomBodyMarkup != "" && sanitize.UnsafeMarkup(doc.Settings.CustomBodyMarkup, sanitize.BodyPolicy()) {
		warnings = append(warnings, "custom body markup contains tags or attributes that will be removed at render time")
	}

	if doc.Settings.CustomJavascript != "" && e.scripts != nil {
		if err := e.scripts.Check(doc.Settings.CustomJavascript); err != nil {
			return warnings, fmt.Errorf("custom javascript does not compile: %w", err)
		}
	}
	return warnings, nil
}

// Save persists the current draft without touching the published copy.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.persist.SaveDraft(ctx, e.themeID, e.history[e.cursor]); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	e.state = StateSaved
	return nil
}

// Publish promotes the current draft to the live theme. On failure the
// published copy is untouched and the session state does not advance.
func (e *Editor) Publish(ctx context.Context) error {
	if err := e.persist.Publish(ctx, e.themeID, e.history[e.cursor]); err != nil {
		return fmt.Errorf("publish theme: %w", err)
	}
	e.state = StatePublished
	return nil
}

// Preview renders the current draft through the storefront render path.
func (e *Editor) Preview(data theme.PageData) theme.RenderedPage {
	doc := e.history[e.cursor]
	return e.engine.RenderPage(doc.Sections, doc.Settings, data)
}

// PreviewTemplate renders one page-type template of the current draft.
func (e *Editor) PreviewTemplate(name string, data theme.PageData) (theme.RenderedPage, error) {
	return e.engine.RenderTemplate(e.history[e.cursor], name, data)
}

func sectionIndex(sections []models.ThemeSection, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// blockDepth returns the deepest nesting level below the given blocks,
// zero for an empty list.
func blockDepth(blocks []models.ThemeBlock) int {
	max := 0
	for _, b := range blocks {
		if d := 1 + blockDepth(b.Blocks); d > max {
			max = d
		}
	}
	return max
}

// findBlock locates a block by ID and reports the depth it sits at,
// counting the section's top-level blocks as depth 1.
func findBlock(blocks []models.ThemeBlock, id string, depth int) (*models.ThemeBlock, int) {
	for i := range blocks {
		if blocks[i].ID == id {
			return &blocks[i], depth
		}
		if found, d := findBlock(blocks[i].Blocks, id, depth+1); found != nil {
			return found, d
		}
	}
	return nil, 0
}

func removeBlock(blocks []models.ThemeBlock, id string) ([]models.ThemeBlock, bool) {
	for i := range blocks {
		if blocks[i].ID == id {
			return append(blocks[:i], blocks[i+1:]...), true
		}
		if nested, ok := removeBlock(blocks[i].Blocks, id); ok {
			blocks[i].Blocks = nested
			return blocks, true
		}
	}
	return blocks, false
}

// mergeSettings overlays a JSON-keyed patch onto the settings record.
func mergeSettings(base models.ThemeSettings, patch map[string]any) (models.ThemeSettings, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return base, err
	}
	var merged map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, err
	}
	for k, v := range patch {
		merged[k] = v
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return base, err
	}
	out := base
	if err := json.Unmarshal(raw, &out); err != nil {
		return base, err
	}
	return out, nil
}
