// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// forbiddenTags are removed together with their content no matter what the
// policy allows. Their mere presence is an execution or exfiltration vector.
var forbiddenTags = map[string]bool{
	"script": true,
	"iframe": true,
	"object": true,
	"embed":  true,
	"form":   true,
}

// voidTags never carry content, so encountering one inside a forbidden
// region must not change the skip depth.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// urlAttrs are attribute names whose values are URL schemes and therefore
// need scheme screening.
var urlAttrs = map[string]bool{
	"href":   true,
	"src":    true,
	"action": true,
}

// Markup rewrites untrusted HTML through the given allowlist policy.
// Forbidden tags disappear with their content; disallowed-but-harmless tags
// are dropped while their text content is kept; event-handler attributes and
// javascript:/data:text/html URLs never survive. Comments and doctypes are
// discarded. The result of sanitizing twice equals sanitizing once.
func Markup(raw string, policy Policy) (out string) {
	// A malformed document must degrade to nothing, not a panic.
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder

	// skipDepth counts open forbidden elements; while positive, every
	// token is discarded.
	skipDepth := 0
	skipTag := ""

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer fault; either way we emit what
			// was cleanly scanned so far.
			return b.String()
		}
		tok := z.Token()

		if skipDepth > 0 {
			switch tt {
			case html.StartTagToken:
				if tok.Data == skipTag && !voidTags[tok.Data] {
					skipDepth++
				}
			case html.EndTagToken:
				if tok.Data == skipTag {
					skipDepth--
				}
			}
			continue
		}

		switch tt {
		case html.TextToken:
			b.WriteString(html.EscapeString(tok.Data))

		case html.StartTagToken, html.SelfClosingTagToken:
			name := tok.Data
			if forbiddenTags[name] {
				if tt == html.StartTagToken && !voidTags[name] {
					skipDepth = 1
					skipTag = name
				}
				continue
			}
			if !policy.AllowedTags[name] {
				// Tag stripped, children kept.
				continue
			}
			writeTag(&b, tok, policy)

		case html.EndTagToken:
			name := tok.Data
			if forbiddenTags[name] || !policy.AllowedTags[name] {
				continue
			}
			b.WriteString("</")
			b.WriteString(name)
			b.WriteByte('>')
		}
		// Comments and doctypes fall through and are dropped.
	}
}

// UnsafeMarkup reports whether Markup would remove a tag or attribute from
// the given fragment under the policy. Text reshaping (entity escaping,
// attribute quoting) does not count; only real removals do.
func UnsafeMarkup(raw string, policy Policy) (unsafe bool) {
	defer func() {
		if recover() != nil {
			unsafe = true
		}
	}()

	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return false
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if forbiddenTags[tok.Data] || !policy.AllowedTags[tok.Data] {
			return true
		}
		for _, attr := range tok.Attr {
			key := strings.ToLower(attr.Key)
			if strings.HasPrefix(key, "on") || !policy.AllowedAttrs[key] {
				return true
			}
			if urlAttrs[key] && !safeURL(attr.Val) {
				return true
			}
		}
	}
}

// writeTag emits an allowed tag with its attributes filtered through the
// policy. Event handlers and unsafe URL schemes are removed here.
func writeTag(b *strings.Builder, tok html.Token, policy Policy) {
	b.WriteByte('<')
	b.WriteString(tok.Data)
	for _, attr := range tok.Attr {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if !policy.AllowedAttrs[key] {
			continue
		}
		if urlAttrs[key] && !safeURL(attr.Val) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

// URL returns the value unchanged when its scheme is safe to place in an
// href or src attribute, and "" otherwise. Section renderers use it for
// link settings that never pass through Markup.
func URL(val string) string {
	if safeURL(val) {
		return val
	}
	return ""
}

// safeURL rejects javascript:, vbscript:, and data:text/html URLs. The
// value is normalized first so scheme obfuscation with whitespace or
// control characters ("jav\tascript:") does not slip through.
func safeURL(val string) bool {
	var norm strings.Builder
	for _, r := range strings.ToLower(val) {
		if r <= 0x20 || r == 0x7f {
			continue
		}
		norm.WriteRune(r)
	}
	u := norm.String()
	switch {
	case strings.HasPrefix(u, "javascript:"):
		return false
	case strings.HasPrefix(u, "vbscript:"):
		return false
	case strings.HasPrefix(u, "data:text/html"):
		return false
	}
	return true
}
