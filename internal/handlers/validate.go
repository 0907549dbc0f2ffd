package handlers

import (
	"fmt"
	"unicode/utf8"

	"storefront/internal/models"
	"storefront/internal/theme"
)

// Validation limits for theme document fields.
const (
	maxSections       = 200
	maxTemplates      = 50
	maxCustomCSSLen   = 100_000
	maxCustomJSLen    = 100_000
	maxCustomHTMLLen  = 100_000
	maxSectionTypeLen = 100
)

// validateDocument checks structural limits on a submitted theme document
// and returns the first problem found, or "".
func validateDocument(doc *models.ThemeDocument) string {
	if len(doc.Sections) > maxSections {
		return fmt.Sprintf("Too many sections (max %d).", maxSections)
	}
	if len(doc.Templates) > maxTemplates {
		return fmt.Sprintf("Too many templates (max %d).", maxTemplates)
	}

	seen := make(map[string]bool, len(doc.Sections))
	for _, s := range doc.Sections {
		if s.ID == "" {
			return "Every section needs an ID."
		}
		if seen[s.ID] {
			return fmt.Sprintf("Duplicate section ID %q.", s.ID)
		}
		seen[s.ID] = true
		if s.Type == "" || utf8.RuneCountInString(s.Type) > maxSectionTypeLen {
			return fmt.Sprintf("Section %q has an invalid type.", s.ID)
		}
		if depth := blockTreeDepth(s.Blocks); depth > models.MaxBlockDepth {
			return fmt.Sprintf("Section %q nests blocks deeper than %d levels.", s.ID, models.MaxBlockDepth)
		}
	}

	settings := doc.Settings
	// Color and font settings become CSS custom property values verbatim,
	// so they are held to the token character set, not treated as free text.
	for field, value := range map[string]string{
		"font_heading":                 settings.FontHeading,
		"font_body":                    settings.FontBody,
		"colors_solid_button_labels":   settings.ColorsSolidButtonLabels,
		"colors_accent_1":              settings.ColorsAccent1,
		"colors_accent_2":              settings.ColorsAccent2,
		"colors_text":                  settings.ColorsText,
		"colors_outline_button_labels": settings.ColorsOutlineButtonLabels,
		"colors_background_1":          settings.ColorsBackground1,
		"colors_background_2":          settings.ColorsBackground2,
	} {
		if value != "" && !theme.ValidTokenValue(value) {
			return fmt.Sprintf("Setting %q has an invalid value.", field)
		}
	}
	if utf8.RuneCountInString(settings.CustomCSS) > maxCustomCSSLen {
		return fmt.Sprintf("Custom CSS is too long (max %d characters).", maxCustomCSSLen)
	}
	if utf8.RuneCountInString(settings.CustomJavascript) > maxCustomJSLen {
		return fmt.Sprintf("Custom JavaScript is too long (max %d characters).", maxCustomJSLen)
	}
	if utf8.RuneCountInString(settings.CustomHeadMarkup) > maxCustomHTMLLen {
		return fmt.Sprintf("Custom head HTML is too long (max %d characters).", maxCustomHTMLLen)
	}
	if utf8.RuneCountInString(settings.CustomBodyMarkup) > maxCustomHTMLLen {
		return fmt.Sprintf("Custom body HTML is too long (max %d characters).", maxCustomHTMLLen)
	}
	return ""
}

func blockTreeDepth(blocks []models.ThemeBlock) int {
	max := 0
	for _, b := range blocks {
		if d := 1 + blockTreeDepth(b.Blocks); d > max {
			max = d
		}
	}
	return max
}
