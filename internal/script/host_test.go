// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package script

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingHandler captures slog records so tests can assert on the
// console shim and error tagging.
type recordingHandler struct {
	mu      sync.Mutex
	entries []string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, r.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) contains(substr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

type recordingCart struct {
	mu    sync.Mutex
	added []map[string]any
}

func (c *recordingCart) Get() map[string]any {
	return map[string]any{"items": []any{}, "total": 19.0}
}

func (c *recordingCart) Add(item map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, item)
}

func TestExecuteBlocksNetworkPrimitives(t *testing.T) {
	// Network-call spy: a real listener that must stay silent.
	var calls atomic.Int64
	spy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer spy.Close()

	h := New(Options{Logger: slog.New(&recordingHandler{})})

	for _, code := range []string{
		"fetch('" + spy.URL + "')",
		"new XMLHttpRequest()",
		"new WebSocket('ws://example.com')",
		"new EventSource('" + spy.URL + "')",
		"setTimeout(function(){}, 10)",
		"setInterval(function(){}, 10)",
	} {
		err := h.Execute(context.Background(), code)
		if err == nil {
			t.Errorf("expected blocked error for %q", code)
			continue
		}
		if !strings.Contains(err.Error(), "not available") {
			t.Errorf("unexpected error for %q: %v", code, err)
		}
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("network spy recorded %d calls, want 0", n)
	}
}

func TestExecuteCatchesTenantThrow(t *testing.T) {
	rec := &recordingHandler{}
	h := New(Options{Logger: slog.New(rec)})

	err := h.Execute(context.Background(), "throw new Error('boom')")
	if err == nil {
		t.Fatal("expected error from throwing script")
	}
	if !rec.contains("[Custom Script Error]") {
		t.Error("throw was not logged with the [Custom Script Error] tag")
	}
}

func TestExecuteSyntaxError(t *testing.T) {
	h := New(Options{Logger: slog.New(&recordingHandler{})})
	if err := h.Execute(context.Background(), "this is not (javascript"); err == nil {
		t.Fatal("expected error for invalid syntax")
	}
}

func TestExecuteTimeout(t *testing.T) {
	h := New(Options{Timeout: 50 * time.Millisecond, Logger: slog.New(&recordingHandler{})})

	start := time.Now()
	err := h.Execute(context.Background(), "while (true) {}")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected interrupt error from spinning script")
	}
	if elapsed > 2*time.Second {
		t.Errorf("interrupt took too long: %v", elapsed)
	}
}

func TestConsoleRoutedToHostLogger(t *testing.T) {
	rec := &recordingHandler{}
	h := New(Options{Logger: slog.New(rec)})

	if err := h.Execute(context.Background(), "console.log('hello', 42)"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !rec.contains("[Custom JS] hello 42") {
		t.Errorf("console output not routed, got %v", rec.entries)
	}
}

func TestStorageKeysAreNamespaced(t *testing.T) {
	mem := NewMemoryStorage()
	h := New(Options{
		Prefix:  "store-abc",
		Storage: mem,
		Logger:  slog.New(&recordingHandler{}),
	})

	code := `
		storefront.storage.set('color', 'red');
		storefront.storage.set('../escape', 'nope');
		storefront.storage.set(':sneaky', 'nope');
	`
	if err := h.Execute(context.Background(), code); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	keys := mem.Keys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v", keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "store-abc:") {
			t.Errorf("key %q escaped the namespace", k)
		}
	}
}

func TestStorageRoundTrip(t *testing.T) {
	mem := NewMemoryStorage()
	rec := &recordingHandler{}
	h := New(Options{Prefix: "s1", Storage: mem, Logger: slog.New(rec)})

	code := `
		storefront.storage.set('greeting', 'hi');
		console.log('read:', storefront.storage.get('greeting'));
	`
	if err := h.Execute(context.Background(), code); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !rec.contains("read: hi") {
		t.Errorf("storage round trip failed, logs: %v", rec.entries)
	}
}

func TestCartAndCurrencyAPI(t *testing.T) {
	cart := &recordingCart{}
	mem := NewMemoryStorage()
	h := New(Options{
		Prefix:  "s1",
		Cart:    cart,
		Storage: mem,
		Logger:  slog.New(&recordingHandler{}),
	})

	code := `
		var c = storefront.cart.get();
		storefront.cart.add({ product_id: 'p1', quantity: 2 });
		storefront.storage.set('formatted', storefront.currency.format(c.total));
	`
	if err := h.Execute(context.Background(), code); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(cart.added) != 1 {
		t.Fatalf("expected 1 cart add, got %d", len(cart.added))
	}
	if cart.added[0]["product_id"] != "p1" {
		t.Errorf("cart add payload wrong: %v", cart.added[0])
	}
	if val, _ := mem.Get(context.Background(), "s1:formatted"); val != "$19.00" {
		t.Errorf("currency.format: got %q, want %q", val, "$19.00")
	}
}

func TestCustomerLoginStateDefault(t *testing.T) {
	rec := &recordingHandler{}
	h := New(Options{Logger: slog.New(rec)})

	if err := h.Execute(context.Background(), "console.log('in:', storefront.customer.isLoggedIn())"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !rec.contains("in: false") {
		t.Errorf("expected logged-out default, logs: %v", rec.entries)
	}
}

func TestCheckReportsSyntaxErrors(t *testing.T) {
	h := New(Options{})
	if err := h.Check("var ok = 1;"); err != nil {
		t.Errorf("valid script rejected: %v", err)
	}
	if err := h.Check("function ("); err == nil {
		t.Error("invalid script accepted")
	}
}

func TestExecuteAsyncFireAndForget(t *testing.T) {
	mem := NewMemoryStorage()
	h := New(Options{Prefix: "s1", Storage: mem, Logger: slog.New(&recordingHandler{})})

	h.ExecuteAsync("storefront.storage.set('done', 'yes')")

	deadline := time.After(2 * time.Second)
	for {
		if val, ok := mem.Get(context.Background(), "s1:done"); ok && val == "yes" {
			return
		}
		select {
		case <-deadline:
			t.Fatal("async execution never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
