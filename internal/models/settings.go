// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// CardStyle controls how product, collection, and blog cards render.
type CardStyle string

const (
	CardStyleStandard CardStyle = "standard"
	CardStyleCard     CardStyle = "card"
	CardStyleText     CardStyle = "text"
)

// CartType controls how the cart opens when an item is added.
type CartType string

const (
	CartTypeDrawer CartType = "drawer"
	CartTypePage   CartType = "page"
	CartTypePopup  CartType = "popup"
)

// ThemeSettings is the flat record of global theming knobs. Every field is a
// constrained enum, number, or color token except the four custom code
// fields at the bottom, which are the only channel through which free text
// becomes rendered output and therefore the only fields that pass through
// the sanitizer and script sandbox.
type ThemeSettings struct {
	// Typography
	FontHeading string `json:"font_heading"`
	FontBody    string `json:"font_body"`

	// Colors
	ColorsSolidButtonLabels   string `json:"colors_solid_button_labels"`
	ColorsAccent1             string `json:"colors_accent_1"`
	ColorsAccent2             string `json:"colors_accent_2"`
	ColorsText                string `json:"colors_text"`
	ColorsOutlineButtonLabels string `json:"colors_outline_button_labels"`
	ColorsBackground1         string `json:"colors_background_1"`
	ColorsBackground2         string `json:"colors_background_2"`

	// Layout
	PageWidth       int `json:"page_width"`
	SpacingSections int `json:"spacing_sections"`

	// Buttons
	ButtonsRadius          int `json:"buttons_radius"`
	ButtonsBorderThickness int `json:"buttons_border_thickness"`
	ButtonsShadowOpacity   int `json:"buttons_shadow_opacity"`

	// Cards
	CardStyle           CardStyle `json:"card_style"`
	CardCornerRadius    int       `json:"card_corner_radius"`
	CardShadowOpacity   int       `json:"card_shadow_opacity"`
	CardBorderThickness int       `json:"card_border_thickness"`
	CollectionCardStyle CardStyle `json:"collection_card_style"`
	BlogCardStyle       CardStyle `json:"blog_card_style"`

	// Behavior
	PredictiveSearchEnabled bool     `json:"predictive_search_enabled"`
	CartType                CartType `json:"cart_type"`

	// Social links
	SocialTwitterLink   string `json:"social_twitter_link,omitempty"`
	SocialFacebookLink  string `json:"social_facebook_link,omitempty"`
	SocialInstagramLink string `json:"social_instagram_link,omitempty"`
	SocialYoutubeLink   string `json:"social_youtube_link,omitempty"`
	SocialTiktokLink    string `json:"social_tiktok_link,omitempty"`

	// Branding
	Favicon string `json:"favicon,omitempty"`

	// Custom code injection. Untrusted free text: CSS is scoped and
	// sanitized, markup passes through the markup sanitizer, and
	// JavaScript runs only inside the script sandbox.
	CustomCSS        string `json:"custom_css,omitempty"`
	CustomJavascript string `json:"custom_javascript,omitempty"`
	CustomHeadMarkup string `json:"custom_head_html,omitempty"`
	CustomBodyMarkup string `json:"custom_body_html,omitempty"`
}

// DefaultSettings returns the stock settings a newly provisioned theme
// starts from.
func DefaultSettings() ThemeSettings {
	return ThemeSettings{
		FontHeading: "sans-serif",
		FontBody:    "sans-serif",

		ColorsSolidButtonLabels:   "#ffffff",
		ColorsAccent1:             "#121212",
		ColorsAccent2:             "#334fb4",
		ColorsText:                "#121212",
		ColorsOutlineButtonLabels: "#121212",
		ColorsBackground1:         "#ffffff",
		ColorsBackground2:         "#f3f3f3",

		PageWidth:       1200,
		SpacingSections: 24,

		ButtonsRadius:          4,
		ButtonsBorderThickness: 1,
		ButtonsShadowOpacity:   0,

		CardStyle:           CardStyleStandard,
		CardCornerRadius:    8,
		CardShadowOpacity:   10,
		CardBorderThickness: 0,
		CollectionCardStyle: CardStyleStandard,
		BlogCardStyle:       CardStyleStandard,

		PredictiveSearchEnabled: true,
		CartType:                CartTypeDrawer,
	}
}
