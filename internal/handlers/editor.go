// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers wires the theme engine, customizer, and theme store to
// the HTTP surface: visitor page rendering and the editor API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/cache"
	"storefront/internal/customizer"
	"storefront/internal/models"
	"storefront/internal/script"
	"storefront/internal/theme"
)

// maxDocumentBytes bounds an editor request body. Theme documents are
// JSON; anything larger than this is not a theme.
const maxDocumentBytes = 2 << 20

// ThemeFinder is the read side of theme persistence the handlers need.
type ThemeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.StoreTheme, error)
	FindPublishedByStore(ctx context.Context, storeID uuid.UUID) (*models.StoreTheme, error)
}

// ThemeRepository adds the write operations the editor needs. It is the
// customizer's Persister plus lookup; *store.ThemeStore satisfies it.
type ThemeRepository interface {
	ThemeFinder
	SaveDraft(ctx context.Context, id uuid.UUID, doc models.ThemeDocument) error
	Publish(ctx context.Context, id uuid.UUID, doc models.ThemeDocument) error
}

// Editor groups the theme editor API handlers: draft preview, draft save,
// and publish. Every request carries the full draft document, so the
// server holds no editing session state between requests.
type Editor struct {
	engine    *theme.Engine
	scripts   *script.Host
	themes    ThemeRepository
	data      DataProvider
	pageCache *cache.PageCache
}

// NewEditor creates a new Editor handler group.
func NewEditor(eng *theme.Engine, scripts *script.Host, themes ThemeRepository, data DataProvider, pageCache *cache.PageCache) *Editor {
	if data == nil {
		data = StaticData{}
	}
	return &Editor{
		engine:    eng,
		scripts:   scripts,
		themes:    themes,
		data:      data,
		pageCache: pageCache,
	}
}

// editorResponse is the JSON shape of save and publish results.
type editorResponse struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Preview renders a submitted draft document through the same path the
// storefront uses and returns the full HTML. Nothing is persisted.
// POST /editor/{themeID}/preview?template=home
func (e *Editor) Preview(w http.ResponseWriter, r *http.Request) {
	themeID, doc, ok := e.readDocument(w, r)
	if !ok {
		return
	}

	stored, err := e.themes.FindByID(r.Context(), themeID)
	if err != nil {
		slog.Error("find theme failed", "error", err, "theme_id", themeID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if stored == nil {
		http.NotFound(w, r)
		return
	}

	data, err := e.data.PageData(r.Context(), stored.StoreID)
	if err != nil {
		slog.Error("page data lookup failed", "error", err, "store_id", stored.StoreID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	session := customizer.New(themeID, doc, e.engine, e.scripts, e.themes)
	var page theme.RenderedPage
	if name := r.URL.Query().Get("template"); name != "" {
		page, err = session.PreviewTemplate(name, data)
		if err != nil {
			http.Error(w, "unknown template", http.StatusNotFound)
			return
		}
	} else {
		page = session.Preview(data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page.Document()))
}

// Save validates and persists a draft document. Validation warnings are
// returned but do not block the save; a script compile failure does.
// POST /editor/{themeID}/save
func (e *Editor) Save(w http.ResponseWriter, r *http.Request) {
	themeID, doc, ok := e.readDocument(w, r)
	if !ok {
		return
	}
	if !e.themeExists(w, r, themeID) {
		return
	}

	session := customizer.New(themeID, doc, e.engine, e.scripts, e.themes)
	warnings, err := session.Validate()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, editorResponse{
			Status: "invalid", Warnings: warnings, Error: err.Error(),
		})
		return
	}

	if err := session.Save(r.Context()); err != nil {
		slog.Error("save draft failed", "error", err, "theme_id", themeID)
		writeJSON(w, http.StatusInternalServerError, editorResponse{
			Status: "error", Error: "could not save draft",
		})
		return
	}
	writeJSON(w, http.StatusOK, editorResponse{Status: "saved", Warnings: warnings})
}

// Publish validates a draft and promotes it to the live theme. On success
// every cached page of the store is invalidated.
// POST /editor/{themeID}/publish
func (e *Editor) Publish(w http.ResponseWriter, r *http.Request) {
	themeID, doc, ok := e.readDocument(w, r)
	if !ok {
		return
	}

	stored, err := e.themes.FindByID(r.Context(), themeID)
	if err != nil {
		slog.Error("find theme failed", "error", err, "theme_id", themeID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if stored == nil {
		http.NotFound(w, r)
		return
	}

	session := customizer.New(themeID, doc, e.engine, e.scripts, e.themes)
	warnings, err := session.Validate()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, editorResponse{
			Status: "invalid", Warnings: warnings, Error: err.Error(),
		})
		return
	}

	if err := session.Publish(r.Context()); err != nil {
		slog.Error("publish failed", "error", err, "theme_id", themeID)
		writeJSON(w, http.StatusInternalServerError, editorResponse{
			Status: "error", Error: "could not publish theme",
		})
		return
	}

	if e.pageCache != nil {
		e.pageCache.InvalidateStore(r.Context(), stored.StoreID)
	}
	slog.Info("theme published", "theme_id", themeID, "store_id", stored.StoreID)
	writeJSON(w, http.StatusOK, editorResponse{Status: "published", Warnings: warnings})
}

// SectionTypes lists the registered section types for the editor's
// add-section palette.
func (e *Editor) SectionTypes(w http.ResponseWriter, r *http.Request) {
	types := e.engine.Types()
	sort.Strings(types)
	writeJSON(w, http.StatusOK, map[string][]string{"section_types": types})
}

// readDocument parses the theme ID from the URL and decodes the posted
// draft document, enforcing the size and shape limits.
func (e *Editor) readDocument(w http.ResponseWriter, r *http.Request) (uuid.UUID, models.ThemeDocument, bool) {
	var doc models.ThemeDocument

	themeID, err := uuid.Parse(chi.URLParam(r, "themeID"))
	if err != nil {
		http.Error(w, "invalid theme ID", http.StatusBadRequest)
		return uuid.Nil, doc, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid theme document", http.StatusBadRequest)
		return uuid.Nil, doc, false
	}

	if msg := validateDocument(&doc); msg != "" {
		writeJSON(w, http.StatusUnprocessableEntity, editorResponse{Status: "invalid", Error: msg})
		return uuid.Nil, doc, false
	}
	return themeID, doc, true
}

func (e *Editor) themeExists(w http.ResponseWriter, r *http.Request, themeID uuid.UUID) bool {
	stored, err := e.themes.FindByID(r.Context(), themeID)
	if err != nil {
		slog.Error("find theme failed", "error", err, "theme_id", themeID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	if stored == nil {
		http.NotFound(w, r)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
