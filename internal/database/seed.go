package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// Seed populates the database with initial development data: one demo
// store with a published starter theme, so a fresh checkout renders a
// storefront immediately. No-op when any theme already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM store_themes").Scan(&count); err != nil {
		return fmt.Errorf("seed check themes: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	doc := starterTheme()
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("seed marshal theme: %w", err)
	}

	themeID := uuid.New()
	storeID := uuid.New()
	_, err = db.Exec(`
		INSERT INTO store_themes (id, store_id, name, draft, published, is_published, published_at)
		VALUES ($1, $2, $3, $4, $4, TRUE, NOW())
	`, themeID, storeID, "Starter", docJSON)
	if err != nil {
		return fmt.Errorf("seed insert theme: %w", err)
	}

	slog.Info("database seeded with demo store theme",
		"store_id", storeID,
		"theme_id", themeID,
	)
	return nil
}

// starterTheme is the document every new installation begins with: a
// header, hero, featured products, newsletter, and footer on the home
// template.
func starterTheme() models.ThemeDocument {
	return models.ThemeDocument{
		Settings: models.DefaultSettings(),
		Sections: []models.ThemeSection{
			{ID: "header", Type: "header", Settings: map[string]any{"logo_text": "Demo Store"}},
			{ID: "hero", Type: "hero", Settings: map[string]any{
				"heading":      "Welcome to your new store",
				"subheading":   "Customize this theme in the editor.",
				"button_label": "Shop all",
				"button_link":  "/collections/all",
			}},
			{ID: "featured", Type: "featured-products", Settings: map[string]any{"heading": "Featured products"}},
			{ID: "newsletter", Type: "newsletter", Settings: map[string]any{}},
			{ID: "footer", Type: "footer", Settings: map[string]any{"text": "Powered by your storefront."}},
		},
		Templates: map[string]models.ThemeTemplate{
			"home": {Name: "home", Sections: []string{"header", "hero", "featured", "newsletter", "footer"}},
			"cart": {Name: "cart", Sections: []string{"header", "footer"}},
		},
	}
}
