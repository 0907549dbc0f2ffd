// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ProductStatus represents the publishing state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a storefront catalog item. The theme engine only reads
// products; catalog management lives in the commerce backend.
type Product struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Handle         string         `json:"handle"`
	Price          float64        `json:"price"`
	CompareAtPrice *float64       `json:"compare_at_price,omitempty"`
	Currency       string         `json:"currency"`
	Images         []ProductImage `json:"images,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Vendor         string         `json:"vendor,omitempty"`
	Status         ProductStatus  `json:"status"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
}

// ProductImage is one image attached to a product, in display order.
type ProductImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	AltText  string `json:"alt_text,omitempty"`
	Position int    `json:"position"`
}

// Collection groups products for listing pages.
type Collection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Handle      string   `json:"handle"`
	ImageURL    string   `json:"image_url,omitempty"`
	ProductIDs  []string `json:"products,omitempty"`
}

// CartItem is one line in a visitor's cart.
type CartItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	VariantID    string  `json:"variant_id,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Title        string  `json:"title"`
	VariantTitle string  `json:"variant_title,omitempty"`
	ImageURL     string  `json:"image,omitempty"`
}

// Cart is a visitor's current cart. Read-only to the theme engine; the
// sandboxed cart.add API records intents for the commerce backend.
type Cart struct {
	ID       string     `json:"id"`
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Shipping float64    `json:"shipping"`
	Total    float64    `json:"total"`
	Currency string     `json:"currency"`
}

// Customer is the authenticated shopper viewing the page, if any.
type Customer struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
