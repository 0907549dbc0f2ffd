// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize scrubs tenant-supplied CSS and HTML of script-execution
// vectors. All functions are pure and total: malformed input degrades to an
// empty string, never a panic. Sanitization runs at render time on every
// read — stored content is treated as untrusted even if it was sanitized
// when saved, because policies may tighten between releases.
package sanitize

// Policy is a per-call-site allowlist of tags and attributes. Anything not
// listed is stripped. Tags in the forbidden set (script, iframe, object,
// embed, form) are always removed together with their content, regardless
// of the policy.
type Policy struct {
	AllowedTags  map[string]bool
	AllowedAttrs map[string]bool
}

// HeadPolicy is the strict allowlist for head-injection call sites.
// Only inert metadata tags survive.
func HeadPolicy() Policy {
	return Policy{
		AllowedTags: map[string]bool{
			"meta":  true,
			"link":  true,
			"title": true,
		},
		AllowedAttrs: map[string]bool{
			"rel":      true,
			"href":     true,
			"name":     true,
			"content":  true,
			"property": true,
			"charset":  true,
			"media":    true,
			"sizes":    true,
			"type":     true,
		},
	}
}

// BodyPolicy is the allowlist for body-injection call sites. Structural and
// inline-formatting tags are allowed; nothing executable is.
func BodyPolicy() Policy {
	return Policy{
		AllowedTags: map[string]bool{
			"div": true, "span": true, "p": true,
			"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
			"a": true, "img": true,
			"ul": true, "ol": true, "li": true,
			"strong": true, "em": true, "b": true, "i": true,
			"br": true, "hr": true,
			"blockquote": true, "pre": true, "code": true,
			"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
		},
		AllowedAttrs: map[string]bool{
			"class":  true,
			"id":     true,
			"href":   true,
			"src":    true,
			"alt":    true,
			"title":  true,
			"rel":    true,
			"target": true,
			"width":  true,
			"height": true,
		},
	}
}
