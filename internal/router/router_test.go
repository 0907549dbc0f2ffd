// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/script"
	"storefront/internal/theme"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerMethods(t *testing.T) {
	// Health endpoint only accepts GET.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
}

// testRouter builds the full router with in-memory dependencies.
func testRouter() http.Handler {
	host := script.New(script.Options{Prefix: "router-test"})
	engine := theme.New(host)
	public := handlers.NewPublic(engine, emptyThemes{}, nil, nil)
	editor := handlers.NewEditor(engine, host, emptyThemes{}, nil, nil)
	return New(public, editor, nil)
}

// emptyThemes is a ThemeRepository with no themes.
type emptyThemes struct{}

func (emptyThemes) FindByID(context.Context, uuid.UUID) (*models.StoreTheme, error) {
	return nil, nil
}
func (emptyThemes) FindPublishedByStore(context.Context, uuid.UUID) (*models.StoreTheme, error) {
	return nil, nil
}
func (emptyThemes) SaveDraft(context.Context, uuid.UUID, models.ThemeDocument) error { return nil }
func (emptyThemes) Publish(context.Context, uuid.UUID, models.ThemeDocument) error   { return nil }

func TestRoutesWired(t *testing.T) {
	r := testRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/editor/section-types", http.StatusOK},
		{"GET", "/store/" + uuid.NewString() + "/page/home", http.StatusNotFound},
		{"POST", "/editor/" + uuid.NewString() + "/preview", http.StatusNotFound},
		{"GET", "/nowhere", http.StatusNotFound},
		// Editor routes reject GET.
		{"GET", "/editor/" + uuid.NewString() + "/save", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options: got %q", got)
	}
}
