// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/cache"
	"storefront/internal/slug"
	"storefront/internal/theme"
)

// DataProvider supplies the storefront data (products, collections, cart,
// customer) a page render needs. The commerce backend implements it; tests
// and development use StaticData.
type DataProvider interface {
	PageData(ctx context.Context, storeID uuid.UUID) (theme.PageData, error)
}

// StaticData is a DataProvider that always returns the same data. Useful
// for development and tests.
type StaticData struct {
	Data theme.PageData
}

func (s StaticData) PageData(context.Context, uuid.UUID) (theme.PageData, error) {
	return s.Data, nil
}

// Public groups handlers for visitor-facing page rendering. It checks the
// L2 Valkey page cache before invoking the theme engine, and stores
// rendered results on miss.
type Public struct {
	engine    *theme.Engine
	themes    ThemeFinder
	data      DataProvider
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil when
// Valkey is not configured; every request then renders fresh.
func NewPublic(eng *theme.Engine, themes ThemeFinder, data DataProvider, pageCache *cache.PageCache) *Public {
	if data == nil {
		data = StaticData{}
	}
	return &Public{
		engine:    eng,
		themes:    themes,
		data:      data,
		pageCache: pageCache,
	}
}

// Page renders one page template of a store's published theme.
// GET /store/{storeID}/page/{template}
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		http.Error(w, "invalid store ID", http.StatusBadRequest)
		return
	}
	// Template names are slugs; anything else cannot match a stored template.
	template := slug.Generate(chi.URLParam(r, "template"))
	if template == "" {
		http.NotFound(w, r)
		return
	}

	// Check L2 cache first.
	cacheKey := cache.PageKey(storeID, template)
	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	stored, err := p.themes.FindPublishedByStore(ctx, storeID)
	if err != nil {
		slog.Error("find published theme failed", "error", err, "store_id", storeID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if stored == nil || stored.Published == nil {
		http.NotFound(w, r)
		return
	}

	data, err := p.data.PageData(ctx, storeID)
	if err != nil {
		slog.Error("page data lookup failed", "error", err, "store_id", storeID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page, err := p.engine.RenderTemplate(*stored.Published, template, data)
	if err != nil {
		// Unknown template name for this theme.
		http.NotFound(w, r)
		return
	}
	rendered := []byte(page.Document())

	if p.pageCache != nil {
		p.pageCache.Set(ctx, cacheKey, rendered)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(rendered)
}
