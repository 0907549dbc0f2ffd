// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package theme

import (
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// sectionPresets seeds the starting settings for each built-in section
// type. Types registered without a preset start with empty settings.
var sectionPresets = map[string]map[string]any{
	"header": {
		"logo_text": "Store",
	},
	"hero": {
		"heading":      "Welcome to our store",
		"subheading":   "",
		"button_label": "Shop now",
		"button_link":  "/collections/all",
	},
	"featured-products": {
		"heading": "Featured products",
	},
	"collection-list": {
		"heading": "Collections",
	},
	"image-with-text": {
		"heading": "Image with text",
		"text":    "Pair an image with text to tell a story.",
	},
	"rich-text": {
		"content": "## Talk about your brand",
	},
	"multicolumn": {
		"heading": "Multicolumn",
	},
	"newsletter": {
		"heading":      "Subscribe to our newsletter",
		"button_label": "Subscribe",
	},
	"footer": {
		"text": "",
	},
	"custom-liquid": {
		"liquid": "",
	},
}

// NewSection builds a fresh section of the given type with a generated ID
// and the type's preset settings. The type must be registered.
func (e *Engine) NewSection(sectionType string) (models.ThemeSection, error) {
	if _, ok := e.renderer(sectionType); !ok {
		return models.ThemeSection{}, fmt.Errorf("unknown section type %q", sectionType)
	}
	settings := map[string]any{}
	for k, v := range sectionPresets[sectionType] {
		settings[k] = v
	}
	return models.ThemeSection{
		ID:       uuid.NewString(),
		Type:     sectionType,
		Settings: settings,
	}, nil
}
