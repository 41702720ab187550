// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"giftora/internal/models"
)

// CategoryStore manages categories and subcategories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories ordered by name, with the number of active
// templates of either kind linked to each by id.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.created_at,
		       (SELECT COUNT(*) FROM react_templates r WHERE r.category_id = c.id AND r.is_active)
		     + (SELECT COUNT(*) FROM html_templates h WHERE h.category_id = c.id AND h.is_active)
		       AS template_count
		FROM categories c
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.TemplateCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListSubcategories returns all subcategories ordered by category and name.
func (s *CategoryStore) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, created_at
		FROM subcategories
		ORDER BY category_id, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.Subcategory
	for rows.Next() {
		var sc models.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}
