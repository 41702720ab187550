// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"giftora/internal/models"
)

// filterClause is the WHERE clause shared by both template tables. It
// mirrors models.TemplateFilter.Matches: $1 includes inactive rows, $2 is
// the raw category value and $3/$4 the resolved category and subcategory
// ids.
const filterClause = `
	WHERE ($1 OR is_active)
	  AND ($2 = '' OR category = $2
	       OR category_id = ANY($3::text[])
	       OR subcategory_id = ANY($4::text[]))`

func filterArgs(f models.TemplateFilter) []any {
	return []any{f.IncludeInactive, f.Category, pq.Array(nonNil(f.CategoryIDs)), pq.Array(nonNil(f.SubcategoryIDs))}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// nullJSON maps an empty raw message to SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

type scanner interface{ Scan(...any) error }

// ReactTemplateStore reads and writes component templates.
type ReactTemplateStore struct {
	db *sql.DB
}

// NewReactTemplateStore creates a new ReactTemplateStore.
func NewReactTemplateStore(db *sql.DB) *ReactTemplateStore {
	return &ReactTemplateStore{db: db}
}

const reactColumns = `id, name, category, category_id, subcategory_id, price, is_free,
	is_pro, is_dynamic, discount, video_url, component_code, config_schema,
	initial_config, is_active, created_at, updated_at`

func scanReact(row scanner) (*models.ReactTemplate, error) {
	var (
		t               models.ReactTemplate
		schema, initial []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &t.CategoryID, &t.SubcategoryID, &t.Price, &t.IsFree,
		&t.IsPro, &t.IsDynamic, &t.Discount, &t.VideoURL, &t.ComponentCode, &schema,
		&initial, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ConfigSchema = schema
	t.InitialConfig = initial
	return &t, nil
}

// List returns the rows matching f, newest first.
func (s *ReactTemplateStore) List(ctx context.Context, f models.TemplateFilter) ([]*models.ReactTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reactColumns+` FROM react_templates`+filterClause+` ORDER BY created_at DESC`,
		filterArgs(f)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list react templates: %w", err)
	}
	defer rows.Close()

	var items []*models.ReactTemplate
	for rows.Next() {
		t, err := scanReact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan react template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// FindByID retrieves a template by id. Returns nil if not found.
func (s *ReactTemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ReactTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reactColumns+` FROM react_templates WHERE id = $1`, id)
	t, err := scanReact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find react template by id: %w", err)
	}
	return t, nil
}

// Create inserts a component template. A zero ID is generated by the
// database.
func (s *ReactTemplateStore) Create(ctx context.Context, t *models.ReactTemplate) (*models.ReactTemplate, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO react_templates
			(id, name, category, category_id, subcategory_id, price, is_free, is_pro,
			 is_dynamic, discount, video_url, component_code, config_schema,
			 initial_config, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+reactColumns,
		id, t.Name, t.Category, t.CategoryID, t.SubcategoryID, t.Price, t.IsFree, t.IsPro,
		t.IsDynamic, t.Discount, t.VideoURL, t.ComponentCode, nullJSON(t.ConfigSchema),
		nullJSON(t.InitialConfig), t.IsActive,
	)
	created, err := scanReact(row)
	if err != nil {
		return nil, fmt.Errorf("create react template: %w", err)
	}
	return created, nil
}
