// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package liquid implements a deliberately small, non-Turing-complete
// templating language for storefront sections: variable interpolation,
// a closed filter set, truthiness conditionals, and collection loops.
// Rendering is pure string substitution over a read-only context — it
// never executes host code, and unresolved variables fall open to the
// literal token so a typo shows up on the page instead of breaking it.
package liquid

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// maxDepth bounds recursive re-rendering of nested loop and conditional
// bodies. Deeper structure is left as literal text.
const maxDepth = 8

var (
	varRe      = regexp.MustCompile(`\{\{\s*(\w+(?:\.\w+)*)\s*\}\}`)
	filterRe   = regexp.MustCompile(`\{\{\s*(\w+(?:\.\w+)*)\s*\|\s*(\w+)\s*\}\}`)
	ifOpenRe   = regexp.MustCompile(`\{%\s*if\s+(\w+(?:\.\w+)*)\s*%\}`)
	ifCloseRe  = regexp.MustCompile(`\{%\s*endif\s*%\}`)
	forOpenRe  = regexp.MustCompile(`\{%\s*for\s+(\w+)\s+in\s+(\w+(?:\.\w+)*)\s*%\}`)
	forCloseRe = regexp.MustCompile(`\{%\s*endfor\s*%\}`)
)

// Render evaluates a template against the context. Processing runs as
// independent passes in a fixed order: interpolation, filters,
// conditionals, loops. The plain interpolation pattern cannot match a
// filter expression, so the ordering is observable-safe. Block tags are
// paired by a balanced scan, and a dotted condition that does not resolve
// yet stays literal, so a conditional inside a loop body survives this
// pass and is evaluated against the loop variable when the body is
// re-rendered per item.
func Render(template string, ctx map[string]any) string {
	return render(template, ctx, 0)
}

func render(template string, ctx map[string]any, depth int) string {
	if depth > maxDepth {
		return template
	}

	out := varRe.ReplaceAllStringFunc(template, func(match string) string {
		path := varRe.FindStringSubmatch(match)[1]
		val, ok := lookup(ctx, path)
		if !ok {
			return match
		}
		return stringify(val)
	})

	out = filterRe.ReplaceAllStringFunc(out, func(match string) string {
		m := filterRe.FindStringSubmatch(match)
		val, ok := lookup(ctx, m[1])
		if !ok {
			return match
		}
		return applyFilter(val, m[2])
	})

	out = renderConditionals(out, ctx, depth)
	out = renderLoops(out, ctx, depth)
	return out
}

// renderConditionals evaluates {% if %} blocks. A bound condition renders
// or drops its body by truthiness. A dotted path whose root name is not
// bound at this level (typically a loop variable) keeps the whole
// construct literal for the loop's per-item re-render; any other
// unresolved condition is simply false.
func renderConditionals(s string, ctx map[string]any, depth int) string {
	var b strings.Builder
	for {
		loc := ifOpenRe.FindStringSubmatchIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		body, rest, ok := balancedBody(s[loc[1]:], ifOpenRe, ifCloseRe)
		if !ok {
			// Unmatched open tag stays literal.
			b.WriteString(s[:loc[1]])
			s = s[loc[1]:]
			continue
		}
		b.WriteString(s[:loc[0]])
		path := s[loc[2]:loc[3]]
		construct := s[loc[0] : len(s)-len(rest)]
		val, bound := lookup(ctx, path)
		switch {
		case bound && truthy(val):
			b.WriteString(render(body, ctx, depth+1))
		case bound:
			// falsy: drop the body
		case deferDotted(ctx, path):
			b.WriteString(construct)
		}
		s = rest
	}
}

// deferDotted reports whether an unresolved condition should survive this
// pass: dotted paths rooted at a name absent from the context are left for
// a later re-render with that name bound. A dotted path whose root is
// bound but whose leaf is missing is genuinely false.
func deferDotted(ctx map[string]any, path string) bool {
	root, _, found := strings.Cut(path, ".")
	if !found {
		return false
	}
	_, ok := ctx[root]
	return !ok
}

// renderLoops evaluates {% for %} blocks, re-rendering the body once per
// item with the loop variable bound in a child context. Nested loops sit
// inside the body and are handled by that re-render.
func renderLoops(s string, ctx map[string]any, depth int) string {
	var b strings.Builder
	for {
		loc := forOpenRe.FindStringSubmatchIndex(s)
		if loc == nil {
			b.WriteString(s)
			return b.String()
		}
		body, rest, ok := balancedBody(s[loc[1]:], forOpenRe, forCloseRe)
		if !ok {
			b.WriteString(s[:loc[1]])
			s = s[loc[1]:]
			continue
		}
		b.WriteString(s[:loc[0]])
		itemName := s[loc[2]:loc[3]]
		collectionPath := s[loc[4]:loc[5]]
		s = rest

		collection, bound := lookup(ctx, collectionPath)
		if !bound {
			continue
		}
		rv := reflect.ValueOf(collection)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			continue
		}
		for i := 0; i < rv.Len(); i++ {
			child := make(map[string]any, len(ctx)+1)
			for k, v := range ctx {
				child[k] = v
			}
			child[itemName] = rv.Index(i).Interface()
			b.WriteString(render(body, child, depth+1))
		}
	}
}

// balancedBody takes the text following an open tag and locates the close
// tag that balances it, skipping over nested open/close pairs. It returns
// the enclosed body and the text after the close tag.
func balancedBody(s string, openRe, closeRe *regexp.Regexp) (body, rest string, ok bool) {
	nesting := 1
	offset := 0
	for {
		openLoc := openRe.FindStringIndex(s[offset:])
		closeLoc := closeRe.FindStringIndex(s[offset:])
		if closeLoc == nil {
			return "", "", false
		}
		if openLoc != nil && openLoc[0] < closeLoc[0] {
			nesting++
			offset += openLoc[1]
			continue
		}
		nesting--
		if nesting == 0 {
			return s[:offset+closeLoc[0]], s[offset+closeLoc[1]:], true
		}
		offset += closeLoc[1]
	}
}

// lookup resolves a dotted path against the context. Intermediate values
// must be maps keyed by string; anything else terminates the walk. An
// explicit nil value counts as unresolved, so it falls open to the
// literal token like a missing key.
func lookup(ctx map[string]any, path string) (any, bool) {
	var current any = ctx
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// truthy mirrors the loose truthiness the language documents: nil, false,
// empty string, numeric zero, and empty collections are false.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// applyFilter applies one of the closed filter set. Unknown filter names
// degrade to plain stringification.
func applyFilter(v any, filter string) string {
	switch filter {
	case "upcase":
		return strings.ToUpper(stringify(v))
	case "downcase":
		return strings.ToLower(stringify(v))
	case "capitalize":
		s := stringify(v)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	case "money":
		return Money(toFloat(v))
	case "date":
		return formatDate(v)
	case "escape":
		return Escape(stringify(v))
	default:
		return stringify(v)
	}
}

// Money formats an amount the way the storefront displays prices.
// Shared with the sandbox currency API so both paths agree.
func Money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// Escape HTML-entity-encodes the five characters that change meaning in a
// markup context. The interpreter does not auto-escape: call sites place
// interpolated content in markup only through this filter, which keeps
// every unescaped interpolation an explicit, auditable decision.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}

func formatDate(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.Format("January 2, 2006")
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format("January 2, 2006")
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t.Format("January 2, 2006")
		}
		return val
	default:
		return stringify(v)
	}
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		var f float64
		fmt.Sscanf(val, "%f", &f)
		return f
	default:
		return 0
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
