// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"giftora/internal/models"
)

// HTMLTemplateStore reads and writes raw HTML templates and their
// workflow status.
type HTMLTemplateStore struct {
	db *sql.DB
}

// NewHTMLTemplateStore creates a new HTMLTemplateStore.
func NewHTMLTemplateStore(db *sql.DB) *HTMLTemplateStore {
	return &HTMLTemplateStore{db: db}
}

const htmlColumns = `id, name, category, category_id, subcategory_id, price, is_free,
	html_code, css_code, js_code, status, is_active, translations, created_at, updated_at`

func scanHTML(row scanner) (*models.HTMLTemplate, error) {
	var (
		t            models.HTMLTemplate
		translations []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &t.CategoryID, &t.SubcategoryID, &t.Price, &t.IsFree,
		&t.HTMLCode, &t.CSSCode, &t.JSCode, &t.Status, &t.IsActive, &translations,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Translations = translations
	return &t, nil
}

func (s *HTMLTemplateStore) query(ctx context.Context, q string, args ...any) ([]*models.HTMLTemplate, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.HTMLTemplate
	for rows.Next() {
		t, err := scanHTML(rows)
		if err != nil {
			return nil, fmt.Errorf("scan html template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// List returns the rows matching f, newest first. Visibility is decided
// by is_active alone.
func (s *HTMLTemplateStore) List(ctx context.Context, f models.TemplateFilter) ([]*models.HTMLTemplate, error) {
	items, err := s.query(ctx,
		`SELECT `+htmlColumns+` FROM html_templates`+filterClause+` ORDER BY created_at DESC`,
		filterArgs(f)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list html templates: %w", err)
	}
	return items, nil
}

// ListByStatus returns every template in the given workflow status,
// oldest first, for the review queue.
func (s *HTMLTemplateStore) ListByStatus(ctx context.Context, status models.TemplateStatus) ([]*models.HTMLTemplate, error) {
	items, err := s.query(ctx,
		`SELECT `+htmlColumns+` FROM html_templates WHERE status = $1 ORDER BY updated_at`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("list html templates by status: %w", err)
	}
	return items, nil
}

// FindByID retrieves a template by id. Returns nil if not found.
func (s *HTMLTemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+htmlColumns+` FROM html_templates WHERE id = $1`, id)
	t, err := scanHTML(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find html template by id: %w", err)
	}
	return t, nil
}

// Create inserts a template. Status and is_active are taken from t; a
// zero ID is generated.
func (s *HTMLTemplateStore) Create(ctx context.Context, t *models.HTMLTemplate) (*models.HTMLTemplate, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO html_templates
			(id, name, category, category_id, subcategory_id, price, is_free,
			 html_code, css_code, js_code, status, is_active, translations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+htmlColumns,
		id, t.Name, t.Category, t.CategoryID, t.SubcategoryID, t.Price, t.IsFree,
		t.HTMLCode, t.CSSCode, t.JSCode, t.Status, t.IsActive, nullJSON(t.Translations),
	)
	created, err := scanHTML(row)
	if err != nil {
		return nil, fmt.Errorf("create html template: %w", err)
	}
	return created, nil
}

// Update overwrites the content and metadata of a template together with
// its status and visibility. Returns nil if the template does not exist.
// Concurrent edits are last-write-wins.
func (s *HTMLTemplateStore) Update(ctx context.Context, t *models.HTMLTemplate) (*models.HTMLTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE html_templates SET
			name = $1, category = $2, category_id = $3, subcategory_id = $4,
			price = $5, is_free = $6, html_code = $7, css_code = $8, js_code = $9,
			translations = $10, status = $11, is_active = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING `+htmlColumns,
		t.Name, t.Category, t.CategoryID, t.SubcategoryID,
		t.Price, t.IsFree, t.HTMLCode, t.CSSCode, t.JSCode,
		nullJSON(t.Translations), t.Status, t.IsActive, t.ID,
	)
	updated, err := scanHTML(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update html template: %w", err)
	}
	return updated, nil
}

// UpdateStatus moves a template from one status to another and writes
// the matching is_active flag. It reports false when the row was not in
// the expected status, so a concurrent transition cannot be applied twice.
func (s *HTMLTemplateStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TemplateStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE html_templates SET status = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, to, to.Visible(), id, from)
	if err != nil {
		return false, fmt.Errorf("update html template status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update html template status: %w", err)
	}
	return n == 1, nil
}
