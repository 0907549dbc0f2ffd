// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// sections.go defines the built-in section renderers. Most are a liquid
// template plus a data mapping; everything interpolated into markup goes
// through the escape filter, and link settings go through sanitize.URL.
package theme

import (
	"log/slog"

	"storefront/internal/liquid"
	"storefront/internal/markdown"
	"storefront/internal/models"
	"storefront/internal/sanitize"
)

// liquidSection renders a section from a fixed liquid template and a
// per-type data mapping.
type liquidSection struct {
	template string
	data     func(rc Context) map[string]any
}

func (ls liquidSection) Render(rc Context) (string, error) {
	return liquid.Render(ls.template, ls.data(rc)), nil
}

const headerTemplate = `<header class="site-header">` +
	`<span class="logo">{{ logo_text | escape }}</span>` +
	`{% if predictive_search %}<div class="predictive-search"><input type="search" placeholder="Search"></div>{% endif %}` +
	`{% if cart_drawer %}<a class="cart-toggle" href="#cart-drawer">Cart</a>{% endif %}` +
	`</header>`

const heroTemplate = `<div class="hero">` +
	`<h1>{{ heading | escape }}</h1>` +
	`{% if subheading %}<p class="subheading">{{ subheading | escape }}</p>{% endif %}` +
	`{% if button_label %}<a class="button" href="{{ button_link | escape }}">{{ button_label | escape }}</a>{% endif %}` +
	`</div>`

const featuredProductsTemplate = `<div class="featured-products">` +
	`<h2>{{ heading | escape }}</h2>` +
	`<ul class="product-grid card-{{ card_style }}">` +
	`{% for product in products %}` +
	`<li class="product-card">` +
	`<a href="{{ product.url | escape }}">` +
	`{% if product.image %}<img src="{{ product.image | escape }}" alt="{{ product.title | escape }}">{% endif %}` +
	`<span class="title">{{ product.title | escape }}</span>` +
	`<span class="price">{{ product.price | money }}</span>` +
	`</a>` +
	`</li>` +
	`{% endfor %}` +
	`</ul></div>`

const collectionListTemplate = `<div class="collection-list">` +
	`<h2>{{ heading | escape }}</h2>` +
	`<ul class="collection-grid card-{{ card_style }}">` +
	`{% for collection in collections %}` +
	`<li class="collection-card"><a href="{{ collection.url | escape }}">{{ collection.title | escape }}</a></li>` +
	`{% endfor %}` +
	`</ul></div>`

const imageWithTextTemplate = `<div class="image-with-text">` +
	`{% if image %}<img src="{{ image | escape }}" alt="{{ image_alt | escape }}">{% endif %}` +
	`<div class="content"><h2>{{ heading | escape }}</h2><p>{{ text | escape }}</p></div>` +
	`</div>`

const newsletterTemplate = `<div class="newsletter">` +
	`<h2>{{ heading | escape }}</h2>` +
	`{% if subtext %}<p>{{ subtext | escape }}</p>{% endif %}` +
	`<div class="newsletter-signup"><input type="email" placeholder="Email address"><button class="button">{{ button_label | escape }}</button></div>` +
	`</div>`

const footerTemplate = `<footer class="site-footer">` +
	`{% if text %}<p>{{ text | escape }}</p>{% endif %}` +
	`<ul class="social">` +
	`{% for link in social_links %}<li><a href="{{ link.url | escape }}" rel="noopener">{{ link.label | escape }}</a></li>{% endfor %}` +
	`</ul>` +
	`</footer>`

// registerBuiltins installs the stock section set. Registration is eager;
// registry lookup stays O(1) either way, and a server has no reason to
// defer loading a few template strings.
func registerBuiltins(e *Engine) {
	e.Register("header", liquidSection{headerTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"logo_text":         settingString(rc.Section.Settings, "logo_text", "Store"),
			"predictive_search": rc.Settings.PredictiveSearchEnabled,
			"cart_drawer":       rc.Settings.CartType == models.CartTypeDrawer,
		}
	}})

	e.Register("hero", liquidSection{heroTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"heading":      settingString(rc.Section.Settings, "heading", "Welcome"),
			"subheading":   settingString(rc.Section.Settings, "subheading", ""),
			"button_label": settingString(rc.Section.Settings, "button_label", ""),
			"button_link":  sanitize.URL(settingString(rc.Section.Settings, "button_link", "")),
		}
	}})

	e.Register("featured-products", liquidSection{featuredProductsTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"heading":    settingString(rc.Section.Settings, "heading", "Featured products"),
			"card_style": string(rc.Settings.CardStyle),
			"products":   productMaps(rc.Data.Products),
		}
	}})

	e.Register("collection-list", liquidSection{collectionListTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"heading":     settingString(rc.Section.Settings, "heading", "Collections"),
			"card_style":  string(rc.Settings.CollectionCardStyle),
			"collections": collectionMaps(rc.Data.Collections),
		}
	}})

	e.Register("image-with-text", liquidSection{imageWithTextTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"image":     sanitize.URL(settingString(rc.Section.Settings, "image", "")),
			"image_alt": settingString(rc.Section.Settings, "image_alt", ""),
			"heading":   settingString(rc.Section.Settings, "heading", ""),
			"text":      settingString(rc.Section.Settings, "text", ""),
		}
	}})

	e.Register("newsletter", liquidSection{newsletterTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"heading":      settingString(rc.Section.Settings, "heading", "Subscribe to our newsletter"),
			"subtext":      settingString(rc.Section.Settings, "subtext", ""),
			"button_label": settingString(rc.Section.Settings, "button_label", "Subscribe"),
		}
	}})

	e.Register("footer", liquidSection{footerTemplate, func(rc Context) map[string]any {
		return map[string]any{
			"text":         settingString(rc.Section.Settings, "text", ""),
			"social_links": socialLinks(rc.Settings),
		}
	}})

	e.Register("rich-text", richTextSection{})
	e.Register("multicolumn", multicolumnSection{})
	e.Register("custom-liquid", customLiquidSection{})
}

// richTextSection converts the section's Markdown content to HTML and
// passes the result through the body-policy sanitizer. Raw HTML embedded
// in the Markdown is tolerated by the converter precisely because the
// sanitizer runs after it.
type richTextSection struct{}

func (richTextSection) Render(rc Context) (string, error) {
	content := settingString(rc.Section.Settings, "content", "")
	if content == "" {
		return "", nil
	}
	htmlOut, err := markdown.ToHTML(content)
	if err != nil {
		slog.Warn("rich-text markdown conversion failed", "section_id", rc.Section.ID, "error", err)
		htmlOut = content
	}
	return `<div class="rich-text">` + sanitize.Markup(htmlOut, sanitize.BodyPolicy()) + `</div>`, nil
}

// multicolumnSection renders its blocks as columns. Block nesting is the
// engine's concern; the renderer just asks for the next level.
type multicolumnSection struct{}

func (multicolumnSection) Render(rc Context) (string, error) {
	heading := settingString(rc.Section.Settings, "heading", "")
	out := `<div class="multicolumn">`
	if heading != "" {
		out += "<h2>" + liquid.Escape(heading) + "</h2>"
	}
	out += `<div class="columns">` + rc.RenderBlocks(rc.Section.Blocks) + `</div></div>`
	return out, nil
}

// customLiquidSection renders tenant-authored liquid against the page
// data context, then sanitizes the produced markup with the body policy.
// Double mediation: the interpreter cannot execute code, and the markup
// it emits cannot carry any.
type customLiquidSection struct{}

func (customLiquidSection) Render(rc Context) (string, error) {
	tpl := settingString(rc.Section.Settings, "liquid", "")
	if tpl == "" {
		return "", nil
	}
	rendered := liquid.Render(tpl, dataContext(rc))
	return `<div class="custom-liquid">` + sanitize.Markup(rendered, sanitize.BodyPolicy()) + `</div>`, nil
}

// settingString reads a string setting with a fallback.
func settingString(settings map[string]any, key, fallback string) string {
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// dataContext converts the typed page data into the map shape the liquid
// interpreter resolves paths against.
func dataContext(rc Context) map[string]any {
	ctx := map[string]any{
		"products":    productMaps(rc.Data.Products),
		"collections": collectionMaps(rc.Data.Collections),
	}
	if rc.Data.Cart != nil {
		items := make([]any, len(rc.Data.Cart.Items))
		for i, item := range rc.Data.Cart.Items {
			items[i] = map[string]any{
				"title":    item.Title,
				"quantity": item.Quantity,
				"price":    item.Price,
			}
		}
		ctx["cart"] = map[string]any{
			"items":      items,
			"item_count": len(items),
			"subtotal":   rc.Data.Cart.Subtotal,
			"total":      rc.Data.Cart.Total,
			"currency":   rc.Data.Cart.Currency,
		}
	}
	if rc.Data.Customer != nil {
		ctx["customer"] = map[string]any{
			"first_name": rc.Data.Customer.FirstName,
			"logged_in":  true,
		}
	}
	return ctx
}

func productMaps(products []models.Product) []any {
	out := make([]any, 0, len(products))
	for _, p := range products {
		m := map[string]any{
			"id":     p.ID,
			"title":  p.Title,
			"handle": p.Handle,
			"url":    "/products/" + p.Handle,
			"price":  p.Price,
			"vendor": p.Vendor,
		}
		if len(p.Images) > 0 {
			m["image"] = sanitize.URL(p.Images[0].URL)
		}
		out = append(out, m)
	}
	return out
}

func collectionMaps(collections []models.Collection) []any {
	out := make([]any, 0, len(collections))
	for _, c := range collections {
		out = append(out, map[string]any{
			"id":     c.ID,
			"title":  c.Title,
			"handle": c.Handle,
			"url":    "/collections/" + c.Handle,
		})
	}
	return out
}

// socialLinks collects the configured social URLs into labeled entries.
// Unsafe schemes are dropped before they reach the template.
func socialLinks(s models.ThemeSettings) []any {
	candidates := []struct {
		label string
		url   string
	}{
		{"Twitter", s.SocialTwitterLink},
		{"Facebook", s.SocialFacebookLink},
		{"Instagram", s.SocialInstagramLink},
		{"YouTube", s.SocialYoutubeLink},
		{"TikTok", s.SocialTiktokLink},
	}
	var out []any
	for _, c := range candidates {
		if u := sanitize.URL(c.url); u != "" {
			out = append(out, map[string]any{"label": c.label, "url": u})
		}
	}
	return out
}
