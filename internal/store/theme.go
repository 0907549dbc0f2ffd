// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// ThemeStore handles all theme persistence. The draft and published
// documents are stored as separate JSONB columns on one row, so reading a
// theme for rendering or editing is a single-row lookup.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore with the given database connection.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// Create inserts a new theme for a store. The draft document is stored as
// given; the theme starts unpublished.
func (s *ThemeStore) Create(ctx context.Context, storeID uuid.UUID, name string, draft models.ThemeDocument) (*models.StoreTheme, error) {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}

	theme := &models.StoreTheme{
		ID:      uuid.New(),
		StoreID: storeID,
		Name:    name,
		Draft:   draft,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO store_themes (id, store_id, name, draft)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, theme.ID, storeID, name, draftJSON).Scan(&theme.CreatedAt, &theme.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create theme: %w", err)
	}
	return theme, nil
}

// FindByID retrieves a theme by its UUID. Returns nil if not found.
func (s *ThemeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.StoreTheme, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, name, draft, published, is_published,
		       created_at, updated_at, published_at
		FROM store_themes WHERE id = $1
	`, id)
	theme, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme by id: %w", err)
	}
	return theme, nil
}

// FindPublishedByStore retrieves a store's published theme, used for
// public page rendering. Returns nil if the store has no published theme.
func (s *ThemeStore) FindPublishedByStore(ctx context.Context, storeID uuid.UUID) (*models.StoreTheme, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, name, draft, published, is_published,
		       created_at, updated_at, published_at
		FROM store_themes
		WHERE store_id = $1 AND is_published
	`, storeID)
	theme, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published theme: %w", err)
	}
	return theme, nil
}

// ListByStore returns all of a store's themes, newest first.
func (s *ThemeStore) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.StoreTheme, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, name, draft, published, is_published,
		       created_at, updated_at, published_at
		FROM store_themes
		WHERE store_id = $1
		ORDER BY created_at DESC
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.StoreTheme
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *theme)
	}
	return themes, rows.Err()
}

// SaveDraft replaces a theme's draft document. The published column is not
// touched, so visitors keep seeing the live theme while editing continues.
func (s *ThemeStore) SaveDraft(ctx context.Context, id uuid.UUID, draft models.ThemeDocument) error {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE store_themes
		SET draft = $1, updated_at = NOW()
		WHERE id = $2
	`, draftJSON, id)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("save draft: theme %s not found", id)
	}
	return nil
}

// Publish stores the given document as both draft and published copy and
// flags the theme live, unpublishing any other theme of the same store.
// The whole promotion runs in one transaction: either the new document is
// live afterwards or the previously published theme is untouched.
func (s *ThemeStore) Publish(ctx context.Context, id uuid.UUID, doc models.ThemeDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback()

	var storeID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT store_id FROM store_themes WHERE id = $1`, id).Scan(&storeID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("publish: theme %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("publish lookup: %w", err)
	}

	// One live theme per store.
	if _, err := tx.ExecContext(ctx, `
		UPDATE store_themes SET is_published = FALSE
		WHERE store_id = $1 AND is_published AND id <> $2
	`, storeID, id); err != nil {
		return fmt.Errorf("unpublish previous theme: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE store_themes
		SET draft = $1, published = $1, is_published = TRUE,
		    published_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, docJSON, id); err != nil {
		return fmt.Errorf("publish theme: %w", err)
	}

	return tx.Commit()
}

// Unpublish takes a theme offline without touching its documents.
func (s *ThemeStore) Unpublish(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE store_themes
		SET is_published = FALSE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("unpublish theme: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("unpublish: theme %s not found", id)
	}
	return nil
}

// Delete removes a theme permanently.
func (s *ThemeStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM store_themes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete: theme %s not found", id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTheme(row scanner) (*models.StoreTheme, error) {
	var (
		theme         models.StoreTheme
		draftJSON     []byte
		publishedJSON []byte
		publishedAt   sql.NullTime
	)
	if err := row.Scan(
		&theme.ID, &theme.StoreID, &theme.Name,
		&draftJSON, &publishedJSON, &theme.IsPublished,
		&theme.CreatedAt, &theme.UpdatedAt, &publishedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(draftJSON, &theme.Draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	if len(publishedJSON) > 0 {
		var published models.ThemeDocument
		if err := json.Unmarshal(publishedJSON, &published); err != nil {
			return nil, fmt.Errorf("unmarshal published: %w", err)
		}
		theme.Published = &published
	}
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		theme.PublishedAt = &t
	}
	return &theme, nil
}
