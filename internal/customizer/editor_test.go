// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package customizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/models"
	"storefront/internal/script"
	"storefront/internal/theme"
)

type fakePersister struct {
	saved     []models.ThemeDocument
	published []models.ThemeDocument
	saveErr   error
	pubErr    error
}

func (f *fakePersister) SaveDraft(_ context.Context, _ uuid.UUID, doc models.ThemeDocument) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, doc.Clone())
	return nil
}

func (f *fakePersister) Publish(_ context.Context, _ uuid.UUID, doc models.ThemeDocument) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, doc.Clone())
	return nil
}

func testDoc() models.ThemeDocument {
	return models.ThemeDocument{
		Settings: models.DefaultSettings(),
		Sections: []models.ThemeSection{
			{ID: "a", Type: "header", Settings: map[string]any{}},
			{ID: "b", Type: "hero", Settings: map[string]any{"heading": "Hi"}},
			{ID: "c", Type: "footer", Settings: map[string]any{}},
		},
		Templates: map[string]models.ThemeTemplate{
			"home": {Name: "home", Sections: []string{"a", "b", "c"}},
		},
	}
}

func testEditor(t *testing.T, persist Persister) *Editor {
	t.Helper()
	if persist == nil {
		persist = &fakePersister{}
	}
	host := script.New(script.Options{Prefix: "test"})
	return New(uuid.New(), testDoc(), theme.New(host), host, persist)
}

func sectionIDs(doc models.ThemeDocument) []string {
	ids := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestNewEditorIsolatesCaller(t *testing.T) {
	doc := testDoc()
	e := New(uuid.New(), doc, theme.New(nil), nil, &fakePersister{})

	if err := e.RemoveSection("b"); err != nil {
		t.Fatalf("RemoveSection: %v", err)
	}
	if len(doc.Sections) != 3 {
		t.Error("editor mutated the caller's document")
	}
	if len(e.Document().Sections) != 2 {
		t.Error("removal not reflected in editor document")
	}
}

func TestMoveSection(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.MoveSection("c", 0); err != nil {
		t.Fatalf("MoveSection: %v", err)
	}
	got := sectionIDs(e.Document())
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	if err := e.MoveSection("nope", 0); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestAddSectionValidatesType(t *testing.T) {
	e := testEditor(t, nil)

	id, err := e.AddSection("newsletter", 1)
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	doc := e.Document()
	if doc.Sections[1].ID != id || doc.Sections[1].Type != "newsletter" {
		t.Errorf("section not inserted at index 1: %v", sectionIDs(doc))
	}
	if doc.Sections[1].Settings["heading"] != "Subscribe to our newsletter" {
		t.Errorf("preset settings not seeded: %v", doc.Sections[1].Settings)
	}

	if _, err := e.AddSection("no-such-type", 0); err == nil {
		t.Error("expected error for unregistered section type")
	}
}

func TestRemoveSectionDropsTemplateReferences(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.RemoveSection("b"); err != nil {
		t.Fatalf("RemoveSection: %v", err)
	}
	home := e.Document().Templates["home"]
	for _, id := range home.Sections {
		if id == "b" {
			t.Error("template still references removed section")
		}
	}
}

func TestToggleSection(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.ToggleSection("b"); err != nil {
		t.Fatalf("ToggleSection: %v", err)
	}
	if !e.Document().Sections[1].Disabled {
		t.Error("section not disabled")
	}
	if err := e.ToggleSection("b"); err != nil {
		t.Fatalf("ToggleSection: %v", err)
	}
	if e.Document().Sections[1].Disabled {
		t.Error("section not re-enabled")
	}
}

func TestUpdateSettings(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.UpdateSettings(map[string]any{"page_width": 900, "colors_accent_1": "#123456"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	s := e.Document().Settings
	if s.PageWidth != 900 {
		t.Errorf("PageWidth = %d, want 900", s.PageWidth)
	}
	if s.ColorsAccent1 != "#123456" {
		t.Errorf("ColorsAccent1 = %q", s.ColorsAccent1)
	}
	// Untouched fields keep their values.
	if s.FontBody == "" {
		t.Error("merge wiped an untouched field")
	}
}

func TestUpdateSectionSettings(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.UpdateSectionSettings("b", map[string]any{"heading": "New"}); err != nil {
		t.Fatalf("UpdateSectionSettings: %v", err)
	}
	if got := e.Document().Sections[1].Settings["heading"]; got != "New" {
		t.Errorf("heading = %v", got)
	}
}

func TestAddBlockDepthLimit(t *testing.T) {
	e := testEditor(t, nil)

	if err := e.AddBlock("b", "", models.ThemeBlock{Type: "column"}); err != nil {
		t.Fatalf("AddBlock top level: %v", err)
	}
	parentID := e.Document().Sections[1].Blocks[0].ID

	// Nest until the limit, then expect rejection.
	for depth := 2; depth <= models.MaxBlockDepth; depth++ {
		if err := e.AddBlock("b", parentID, models.ThemeBlock{Type: "column"}); err != nil {
			t.Fatalf("AddBlock at depth %d: %v", depth, err)
		}
		blocks := e.Document().Sections[1].Blocks
		cur := blocks[0]
		for len(cur.Blocks) > 0 {
			cur = cur.Blocks[0]
		}
		parentID = cur.ID
	}

	if err := e.AddBlock("b", parentID, models.ThemeBlock{Type: "column"}); err == nil {
		t.Errorf("expected depth rejection past %d levels", models.MaxBlockDepth)
	}
}

func TestRemoveBlockNested(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.AddBlock("b", "", models.ThemeBlock{ID: "outer", Type: "column"}); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if err := e.AddBlock("b", "outer", models.ThemeBlock{ID: "inner", Type: "text"}); err != nil {
		t.Fatalf("AddBlock nested: %v", err)
	}
	if err := e.RemoveBlock("b", "inner"); err != nil {
		t.Fatalf("RemoveBlock: %v", err)
	}
	if blocks := e.Document().Sections[1].Blocks; len(blocks[0].Blocks) != 0 {
		t.Error("nested block not removed")
	}
	if err := e.RemoveBlock("b", "ghost"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestUndoRedoLinear(t *testing.T) {
	e := testEditor(t, nil)
	if e.CanUndo() {
		t.Error("fresh editor should have nothing to undo")
	}

	if err := e.MoveSection("c", 0); err != nil {
		t.Fatalf("MoveSection: %v", err)
	}
	if err := e.ToggleSection("b"); err != nil {
		t.Fatalf("ToggleSection: %v", err)
	}

	if !e.Undo() {
		t.Fatal("Undo returned false")
	}
	if e.Document().Sections[2].Disabled {
		t.Error("undo did not revert the toggle")
	}
	if !e.Undo() {
		t.Fatal("second Undo returned false")
	}
	if got := sectionIDs(e.Document()); got[0] != "a" {
		t.Errorf("undo did not revert the move: %v", got)
	}
	if e.Undo() {
		t.Error("Undo past start of history should fail")
	}

	if !e.Redo() || !e.Redo() {
		t.Fatal("Redo through history failed")
	}
	if !e.Document().Sections[2].Disabled {
		t.Error("redo did not reapply the toggle")
	}
	if e.Redo() {
		t.Error("Redo past end of history should fail")
	}
}

func TestEditAfterUndoDiscardsRedo(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.ToggleSection("a"); err != nil {
		t.Fatalf("ToggleSection: %v", err)
	}
	if err := e.ToggleSection("b"); err != nil {
		t.Fatalf("ToggleSection: %v", err)
	}
	e.Undo()

	if err := e.MoveSection("c", 0); err != nil {
		t.Fatalf("MoveSection: %v", err)
	}
	if e.CanRedo() {
		t.Error("forward history should be discarded after a new edit")
	}
	if e.Document().Sections[2].Disabled {
		t.Error("discarded snapshot leaked back into the document")
	}
}

func TestStateTransitions(t *testing.T) {
	persist := &fakePersister{}
	e := testEditor(t, persist)
	ctx := context.Background()

	if e.State() != StateClean {
		t.Fatalf("initial state = %v", e.State())
	}
	if err := e.ToggleSection("a"); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateDirty {
		t.Errorf("state after edit = %v, want dirty", e.State())
	}
	if err := e.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if e.State() != StateSaved {
		t.Errorf("state after save = %v, want saved", e.State())
	}
	if err := e.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if e.State() != StatePublished {
		t.Errorf("state after publish = %v, want published", e.State())
	}
	if len(persist.saved) != 1 || len(persist.published) != 1 {
		t.Errorf("persister calls: saved=%d published=%d", len(persist.saved), len(persist.published))
	}
}

func TestPublishFailureLeavesState(t *testing.T) {
	persist := &fakePersister{pubErr: errors.New("connection lost")}
	e := testEditor(t, persist)
	if err := e.ToggleSection("a"); err != nil {
		t.Fatal(err)
	}

	err := e.Publish(context.Background())
	if err == nil {
		t.Fatal("expected publish error")
	}
	if e.State() != StateDirty {
		t.Errorf("state advanced despite failed publish: %v", e.State())
	}
	if len(persist.published) != 0 {
		t.Error("failed publish recorded a document")
	}
}

func TestValidateWarnsAndRejects(t *testing.T) {
	e := testEditor(t, nil)

	warnings, err := e.Validate()
	if err != nil || len(warnings) != 0 {
		t.Fatalf("clean draft: warnings=%v err=%v", warnings, err)
	}

	if err := e.UpdateSettings(map[string]any{
		"custom_css":       "@import url(evil.css);\nbody { color: red }",
		"custom_head_html": `<script>x()</script>`,
	}); err != nil {
		t.Fatal(err)
	}
	warnings, err = e.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}

	if err := e.UpdateSettings(map[string]any{"custom_javascript": "function ("}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Validate(); err == nil {
		t.Error("expected compile error for broken javascript")
	}
}

func TestPreviewMatchesRenderPath(t *testing.T) {
	e := testEditor(t, nil)
	if err := e.UpdateSectionSettings("b", map[string]any{"heading": "Preview me"}); err != nil {
		t.Fatal(err)
	}

	page := e.Preview(theme.PageData{})
	if !strings.Contains(page.Body, "Preview me") {
		t.Errorf("preview missing edited content: %q", page.Body)
	}

	tpl, err := e.PreviewTemplate("home", theme.PageData{})
	if err != nil {
		t.Fatalf("PreviewTemplate: %v", err)
	}
	if !strings.Contains(tpl.Body, "Preview me") {
		t.Errorf("template preview missing content: %q", tpl.Body)
	}
	if _, err := e.PreviewTemplate("nope", theme.PageData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}
