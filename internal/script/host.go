// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package script executes tenant-supplied JavaScript inside an isolated
// goja interpreter. A fresh runtime is built per invocation and holds
// exactly the bindings this package injects: a console shim routed to the
// host logger, a narrow storefront API, and a namespaced key-value store.
// Network and timer primitives are actively shadowed with throwing stubs —
// their absence is enforced, not assumed. Tenant scripts can neither
// enumerate nor mutate anything outside this surface, and a script that
// throws or spins is cut off without touching the surrounding render.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"storefront/internal/liquid"
)

// DefaultTimeout is the hard wall-clock ceiling for one script execution.
// Tenant code must never be able to block a page render.
const DefaultTimeout = 250 * time.Millisecond

// blockedGlobals are shadowed with throwing stubs in every runtime.
// Timers are included because polling timers are an exfiltration channel.
var blockedGlobals = []string{
	"fetch",
	"XMLHttpRequest",
	"WebSocket",
	"EventSource",
	"setTimeout",
	"setInterval",
	"importScripts",
}

// blockedProgram declares the stubs as script functions so that both call
// and constructor invocation throw. A Go-native stub would fail `new X()`
// with goja's own "not a constructor" error instead of naming the
// blocked primitive.
var blockedProgram = goja.MustCompile("blocked_globals", blockedSource(), false)

func blockedSource() string {
	var b strings.Builder
	for _, name := range blockedGlobals {
		fmt.Fprintf(&b, "function %s() { throw new TypeError(%q); }\n",
			name, name+" is not available in custom scripts")
	}
	return b.String()
}

// CartAPI is the cart surface exposed to tenant scripts: read the current
// cart and record add-to-cart intents. Implementations must tolerate
// arbitrary item maps.
type CartAPI interface {
	Get() map[string]any
	Add(item map[string]any)
}

// CustomerAPI exposes login state only — never identity data.
type CustomerAPI interface {
	IsLoggedIn() bool
}

// Options configures a Host. Zero values fall back to safe defaults:
// DefaultTimeout, a no-op cart and customer, in-memory storage, and the
// process-wide slog logger.
type Options struct {
	Timeout  time.Duration
	Prefix   string // per-store storage namespace, e.g. the store ID
	Cart     CartAPI
	Customer CustomerAPI
	Storage  Storage
	Logger   *slog.Logger
}

// Host runs tenant scripts. Safe for concurrent use: each execution gets
// its own runtime and shares no mutable state with any other.
type Host struct {
	timeout  time.Duration
	prefix   string
	cart     CartAPI
	customer CustomerAPI
	storage  Storage
	logger   *slog.Logger
}

// New creates a script host.
func New(opts Options) *Host {
	h := &Host{
		timeout:  opts.Timeout,
		prefix:   opts.Prefix,
		cart:     opts.Cart,
		customer: opts.Customer,
		storage:  opts.Storage,
		logger:   opts.Logger,
	}
	if h.timeout <= 0 {
		h.timeout = DefaultTimeout
	}
	if h.cart == nil {
		h.cart = noopCart{}
	}
	if h.customer == nil {
		h.customer = noopCustomer{}
	}
	if h.storage == nil {
		h.storage = NewMemoryStorage()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Check compiles the script without running it. The customizer uses it so
// authors learn about syntax errors at edit time instead of silent
// failures after publish.
func (h *Host) Check(code string) error {
	if _, err := goja.Compile("custom_script", code, false); err != nil {
		return fmt.Errorf("custom script does not compile: %w", err)
	}
	return nil
}

// Execute runs tenant code in a fresh, restricted runtime. Any throw,
// panic, or timeout is caught at this boundary, logged with the
// [Custom Script Error] tag, and returned — never propagated.
func (h *Host) Execute(ctx context.Context, code string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("custom script panic: %v", rec)
			h.logger.Error("[Custom Script Error]", "error", err)
		}
	}()

	rt := goja.New()
	h.bind(ctx, rt)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		rt.Interrupt("custom script exceeded the execution time limit")
	})
	defer stop()

	if _, runErr := rt.RunString(code); runErr != nil {
		h.logger.Warn("[Custom Script Error]", "error", runErr)
		return runErr
	}
	return nil
}

// ExecuteAsync launches the script fire-and-forget, the way page renders
// consume it: the surrounding render never waits for tenant code, and a
// broken script only produces a log line.
func (h *Host) ExecuteAsync(code string) {
	go func() {
		// Errors are already logged at the Execute boundary.
		_ = h.Execute(context.Background(), code)
	}()
}

// bind installs the full allowlisted surface into the runtime. Nothing
// else is reachable from tenant code.
func (h *Host) bind(ctx context.Context, rt *goja.Runtime) {
	rt.Set("console", h.consoleShim(rt))
	rt.Set("storefront", h.storefrontAPI(ctx, rt))

	// Never fails: the program is a fixed set of function declarations.
	_, _ = rt.RunProgram(blockedProgram)
}

// consoleShim routes console output to the host logger with a tag, so it
// can be intercepted and rate-limited instead of hitting process stdout.
func (h *Host) consoleShim(rt *goja.Runtime) *goja.Object {
	console := rt.NewObject()
	console.Set("log", h.logFn(slog.LevelInfo))
	console.Set("warn", h.logFn(slog.LevelWarn))
	console.Set("error", h.logFn(slog.LevelError))
	return console
}

func (h *Host) logFn(level slog.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		h.logger.Log(context.Background(), level, "[Custom JS] "+strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func (h *Host) storefrontAPI(ctx context.Context, rt *goja.Runtime) *goja.Object {
	sf := rt.NewObject()

	cart := rt.NewObject()
	cart.Set("get", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(h.cart.Get())
	})
	cart.Set("add", func(call goja.FunctionCall) goja.Value {
		item, _ := call.Argument(0).Export().(map[string]any)
		if item == nil {
			item = map[string]any{}
		}
		h.cart.Add(item)
		return goja.Undefined()
	})
	sf.Set("cart", cart)

	customer := rt.NewObject()
	customer.Set("isLoggedIn", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(h.customer.IsLoggedIn())
	})
	sf.Set("customer", customer)

	currency := rt.NewObject()
	currency.Set("format", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(liquid.Money(call.Argument(0).ToFloat()))
	})
	sf.Set("currency", currency)

	storage := rt.NewObject()
	storage.Set("get", func(call goja.FunctionCall) goja.Value {
		val, ok := h.storage.Get(ctx, h.storageKey(call.Argument(0).String()))
		if !ok {
			return goja.Null()
		}
		return rt.ToValue(val)
	})
	storage.Set("set", func(call goja.FunctionCall) goja.Value {
		key := h.storageKey(call.Argument(0).String())
		if err := h.storage.Set(ctx, key, call.Argument(1).String()); err != nil {
			h.logger.Warn("[Custom JS] storage write failed", "error", err)
		}
		return goja.Undefined()
	})
	sf.Set("storage", storage)

	return sf
}

// storageKey forces every tenant key under the host's namespace. The
// prefix is prepended unconditionally, so no key spelling can escape it.
func (h *Host) storageKey(key string) string {
	return h.prefix + ":" + key
}

type noopCart struct{}

func (noopCart) Get() map[string]any { return map[string]any{"items": []any{}} }
func (noopCart) Add(map[string]any)  {}

type noopCustomer struct{}

func (noopCustomer) IsLoggedIn() bool { return false }
