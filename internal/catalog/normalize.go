// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"

	"giftora/internal/editable"
	"giftora/internal/models"
)

// NormalizeError means a record could not be mapped to the common shape.
// Only an unknown or nil variant produces it.
type NormalizeError struct {
	Record models.TemplateRecord
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize template: unsupported record %T", e.Record)
}

// Normalize maps either template variant to models.NormalizedTemplate.
func Normalize(rec models.TemplateRecord) (models.NormalizedTemplate, error) {
	switch r := rec.(type) {
	case *models.ReactTemplate:
		if r == nil {
			break
		}
		return normalizeReact(r), nil
	case *models.HTMLTemplate:
		if r == nil {
			break
		}
		return normalizeHTML(r), nil
	}
	return models.NormalizedTemplate{}, &NormalizeError{Record: rec}
}

func normalizeReact(r *models.ReactTemplate) models.NormalizedTemplate {
	return models.NormalizedTemplate{
		ID:             r.ID,
		Name:           r.Name,
		Category:       r.Category,
		CategoryID:     r.CategoryID,
		SubcategoryID:  r.SubcategoryID,
		Price:          r.Price,
		IsFree:         r.IsFree,
		IsPro:          r.IsPro,
		ComponentCode:  r.ComponentCode,
		ConfigSchema:   r.ConfigSchema,
		InitialConfig:  r.InitialConfig,
		IsDynamic:      r.IsDynamic,
		Discount:       r.Discount,
		VideoURL:       r.VideoURL,
		Type:           models.TemplateKindReact,
		IsHTMLTemplate: false,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// normalizeHTML synthesizes componentCode from the stylesheet and the
// annotated markup. HTML templates carry no config or pricing extras, so
// those fields take fixed values.
func normalizeHTML(r *models.HTMLTemplate) models.NormalizedTemplate {
	return models.NormalizedTemplate{
		ID:             r.ID,
		Name:           r.Name,
		Category:       r.Category,
		CategoryID:     r.CategoryID,
		SubcategoryID:  r.SubcategoryID,
		Price:          r.Price,
		IsFree:         r.IsFree,
		IsPro:          !r.IsFree,
		ComponentCode:  ComponentCode(r),
		ConfigSchema:   nil,
		InitialConfig:  nil,
		IsDynamic:      true,
		Discount:       0,
		VideoURL:       nil,
		Type:           models.TemplateKindHTML,
		IsHTMLTemplate: true,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ComponentCode returns "<style>css</style>\n" followed by the annotated
// HTML. A transform warning leaves the HTML as stored.
func ComponentCode(r *models.HTMLTemplate) string {
	doc, _ := editable.Transform(r.HTMLCode, editable.Options{
		Language: editable.MarkupLanguage(r.HTMLCode),
		Scope:    r.ID.String(),
	})
	return "<style>" + r.CSSCode + "</style>\n" + doc.Source
}
