// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/models"
)

func testThemeDoc(heading string) models.ThemeDocument {
	return models.ThemeDocument{
		Settings: models.DefaultSettings(),
		Sections: []models.ThemeSection{
			{ID: "hero-1", Type: "hero", Settings: map[string]any{"heading": heading}},
		},
		Templates: map[string]models.ThemeTemplate{
			"home": {Name: "home", Sections: []string{"hero-1"}},
		},
	}
}

func TestThemeStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewThemeStore(db)
	ctx := context.Background()

	storeID := uuid.New()
	t.Cleanup(func() { cleanThemes(t, db, storeID) })

	created, err := s.Create(ctx, storeID, "Dawn", testThemeDoc("Welcome"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.IsPublished {
		t.Error("new theme should start unpublished")
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("FindByID returned nil for existing theme")
	}
	if found.Name != "Dawn" {
		t.Errorf("name: got %q, want %q", found.Name, "Dawn")
	}
	if len(found.Draft.Sections) != 1 || found.Draft.Sections[0].Type != "hero" {
		t.Errorf("draft round trip lost sections: %+v", found.Draft.Sections)
	}
	if found.Published != nil {
		t.Error("unpublished theme should carry no published document")
	}

	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("FindByID missing: %v", err)
	}
	if missing != nil {
		t.Error("FindByID should return nil for unknown ID")
	}
}

func TestThemeStoreSaveDraftLeavesPublished(t *testing.T) {
	db := testDB(t)
	s := NewThemeStore(db)
	ctx := context.Background()

	storeID := uuid.New()
	t.Cleanup(func() { cleanThemes(t, db, storeID) })

	created, err := s.Create(ctx, storeID, "Dawn", testThemeDoc("Live"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Publish(ctx, created.ID, testThemeDoc("Live")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := s.SaveDraft(ctx, created.ID, testThemeDoc("Work in progress")); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got := found.Draft.Sections[0].Settings["heading"]; got != "Work in progress" {
		t.Errorf("draft heading: got %v", got)
	}
	if found.Published == nil {
		t.Fatal("published document lost after draft save")
	}
	if got := found.Published.Sections[0].Settings["heading"]; got != "Live" {
		t.Errorf("published heading changed by draft save: got %v", got)
	}
}

func TestThemeStorePublishPromotes(t *testing.T) {
	db := testDB(t)
	s := NewThemeStore(db)
	ctx := context.Background()

	storeID := uuid.New()
	t.Cleanup(func() { cleanThemes(t, db, storeID) })

	first, err := s.Create(ctx, storeID, "First", testThemeDoc("One"))
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := s.Create(ctx, storeID, "Second", testThemeDoc("Two"))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if err := s.Publish(ctx, first.ID, testThemeDoc("One")); err != nil {
		t.Fatalf("Publish first: %v", err)
	}
	if err := s.Publish(ctx, second.ID, testThemeDoc("Two")); err != nil {
		t.Fatalf("Publish second: %v", err)
	}

	// Only the second theme is live now.
	live, err := s.FindPublishedByStore(ctx, storeID)
	if err != nil {
		t.Fatalf("FindPublishedByStore: %v", err)
	}
	if live == nil || live.ID != second.ID {
		t.Fatalf("published theme: got %+v, want %s", live, second.ID)
	}
	if live.PublishedAt == nil {
		t.Error("published theme missing published_at")
	}

	former, err := s.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindByID first: %v", err)
	}
	if former.IsPublished {
		t.Error("previous theme still flagged published")
	}
}

func TestThemeStoreUnpublishAndDelete(t *testing.T) {
	db := testDB(t)
	s := NewThemeStore(db)
	ctx := context.Background()

	storeID := uuid.New()
	t.Cleanup(func() { cleanThemes(t, db, storeID) })

	created, err := s.Create(ctx, storeID, "Dawn", testThemeDoc("Hi"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Publish(ctx, created.ID, testThemeDoc("Hi")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if err := s.Unpublish(ctx, created.ID); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	live, err := s.FindPublishedByStore(ctx, storeID)
	if err != nil {
		t.Fatalf("FindPublishedByStore: %v", err)
	}
	if live != nil {
		t.Error("store still has a published theme after unpublish")
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found != nil {
		t.Error("theme still present after delete")
	}

	if err := s.Delete(ctx, created.ID); err == nil {
		t.Error("deleting a missing theme should error")
	}
}

func TestThemeStoreListByStore(t *testing.T) {
	db := testDB(t)
	s := NewThemeStore(db)
	ctx := context.Background()

	storeID := uuid.New()
	t.Cleanup(func() { cleanThemes(t, db, storeID) })

	for _, name := range []string{"A", "B"} {
		if _, err := s.Create(ctx, storeID, name, testThemeDoc(name)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	themes, err := s.ListByStore(ctx, storeID)
	if err != nil {
		t.Fatalf("ListByStore: %v", err)
	}
	if len(themes) != 2 {
		t.Fatalf("len = %d, want 2", len(themes))
	}
}
