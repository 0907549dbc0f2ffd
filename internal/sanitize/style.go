// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"regexp"
	"strings"
)

// ScopePrefix is the selector every tenant rule is confined to. Custom CSS
// must not be able to restyle platform chrome outside the themed region.
const ScopePrefix = ".theme-container"

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	scriptTagRe   = regexp.MustCompile(`(?i)</?script[^>]*>`)
	importRe      = regexp.MustCompile(`(?i)@import[^;{]*;?`)
	jsSchemeRe    = regexp.MustCompile(`(?i)javascript:`)
	eventAttrRe   = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Style scrubs a tenant CSS string and scopes every top-level selector
// under ScopePrefix. It strips <script> fragments, @import directives
// (arbitrary remote loading), javascript: pseudo-URLs, and inline event
// handler fragments. Every "<" is removed outright: the character has no
// meaning in CSS, and the output is embedded inside a <style> element, so
// a surviving "</style" would break out of it and turn the rest of the
// value into markup. Pure and total; worst case returns "".
func Style(css string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	// The whole pipeline runs to a fixed point: one pass's removal can
	// splice together a match for an earlier pass ("@im<port" turns into
	// "@import" once the "<" is gone).
	for {
		next := stripAll(scriptBlockRe, css)
		next = stripAll(scriptTagRe, next)
		next = strings.ReplaceAll(next, "<", "")
		next = stripAll(importRe, next)
		next = stripAll(jsSchemeRe, next)
		next = stripAll(eventAttrRe, next)
		if next == css {
			break
		}
		css = next
	}

	lines := strings.Split(css, "\n")
	for i, line := range lines {
		lines[i] = scopeLine(line)
	}
	return strings.Join(lines, "\n")
}

// stripAll removes matches until a fixed point, so a removal can never
// splice a new match together ("java" + "javascript:" + "script:" style).
func stripAll(re *regexp.Regexp, s string) string {
	for {
		out := re.ReplaceAllString(s, "")
		if out == s {
			return out
		}
		s = out
	}
}

// UnsafeStyle reports whether Style would strip anything from the given
// CSS. The customizer uses it to warn the merchant before saving instead
// of silently dropping their input at render time.
func UnsafeStyle(css string) bool {
	return scriptBlockRe.MatchString(css) ||
		scriptTagRe.MatchString(css) ||
		importRe.MatchString(css) ||
		jsSchemeRe.MatchString(css) ||
		eventAttrRe.MatchString(css) ||
		strings.Contains(css, "<")
}

// scopeLine prefixes a selector line with ScopePrefix unless it is already
// scoped or is not a selector at all (at-rules, closing braces, comments,
// keyframe stops). Rules nested inside @media blocks are scoped the same
// way when their selector line comes around.
func scopeLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "/*") {
		return line
	}
	if !strings.Contains(line, "{") {
		return line
	}
	selector := strings.TrimSpace(strings.SplitN(line, "{", 2)[0])
	if selector == "" ||
		strings.HasPrefix(selector, "@") ||
		strings.HasPrefix(selector, "}") ||
		strings.HasPrefix(selector, ScopePrefix) ||
		isKeyframeStop(selector) {
		return line
	}
	return ScopePrefix + " " + line
}

// isKeyframeStop reports whether the selector is a keyframe position
// ("from", "to", "50%") rather than an element selector.
func isKeyframeStop(selector string) bool {
	if selector == "from" || selector == "to" {
		return true
	}
	return strings.HasSuffix(selector, "%")
}
