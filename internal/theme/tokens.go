// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/models"
)

// tokenValueRe is the character set a color or font setting may use: color
// tokens, font stacks, nothing structural. Braces, semicolons, and angle
// brackets would let a value terminate its declaration or the enclosing
// <style> element.
var tokenValueRe = regexp.MustCompile(`^[A-Za-z0-9 #%(),.'"_-]+$`)

// ValidTokenValue reports whether a settings string is safe to emit as a
// CSS custom property value. The editor API rejects documents that fail
// it; StyleTokens drops such values from stored documents regardless.
func ValidTokenValue(v string) bool {
	return tokenValueRe.MatchString(v)
}

// StyleTokens converts the flat settings record into CSS custom properties
// scoped to the theme container. This is the only channel through which
// the constrained settings fields affect output. Numeric fields are typed;
// the color and font strings must pass ValidTokenValue, because stored
// documents are untrusted and the token block is embedded in a <style>
// element.
func StyleTokens(s models.ThemeSettings) string {
	var b strings.Builder
	b.WriteString(".theme-container {\n")

	writeToken(&b, "--color-button", s.ColorsSolidButtonLabels)
	writeToken(&b, "--color-accent-1", s.ColorsAccent1)
	writeToken(&b, "--color-accent-2", s.ColorsAccent2)
	writeToken(&b, "--color-text", s.ColorsText)
	writeToken(&b, "--color-outline-button", s.ColorsOutlineButtonLabels)
	writeToken(&b, "--color-background-1", s.ColorsBackground1)
	writeToken(&b, "--color-background-2", s.ColorsBackground2)

	writeToken(&b, "--font-heading", s.FontHeading)
	writeToken(&b, "--font-body", s.FontBody)

	writePixelToken(&b, "--page-width", s.PageWidth)
	writePixelToken(&b, "--spacing-sections", s.SpacingSections)
	writePixelToken(&b, "--buttons-radius", s.ButtonsRadius)
	writePixelToken(&b, "--buttons-border", s.ButtonsBorderThickness)
	writePixelToken(&b, "--card-corner-radius", s.CardCornerRadius)
	writePixelToken(&b, "--card-border", s.CardBorderThickness)

	b.WriteString("}")
	return b.String()
}

func writeToken(b *strings.Builder, name, value string) {
	if value == "" || !ValidTokenValue(value) {
		return
	}
	fmt.Fprintf(b, "  %s: %s;\n", name, value)
}

func writePixelToken(b *strings.Builder, name string, value int) {
	fmt.Fprintf(b, "  %s: %dpx;\n", name, value)
}
