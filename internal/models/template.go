// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TemplateKind tells which store a template came from.
type TemplateKind string

const (
	TemplateKindReact TemplateKind = "react"
	TemplateKindHTML  TemplateKind = "html"
)

// TemplateRecord is a stored template of either kind. The interface is
// sealed: only *ReactTemplate and *HTMLTemplate implement it.
type TemplateRecord interface {
	Kind() TemplateKind
	RecordID() uuid.UUID
	templateRecord()
}

// ReactTemplate is a template authored as component code and compiled by
// the component runtime.
type ReactTemplate struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CategoryID    *string         `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId"`
	Price         float64         `json:"price"`
	IsFree        bool            `json:"isFree"`
	IsPro         bool            `json:"isPro"`
	IsDynamic     bool            `json:"isDynamic"`
	Discount      float64         `json:"discount"`
	VideoURL      *string         `json:"videoUrl"`
	ComponentCode string          `json:"componentCode"`
	ConfigSchema  json.RawMessage `json:"configSchema"`
	InitialConfig json.RawMessage `json:"initialConfig"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (t *ReactTemplate) Kind() TemplateKind  { return TemplateKindReact }
func (t *ReactTemplate) RecordID() uuid.UUID { return t.ID }
func (t *ReactTemplate) templateRecord()     {}

// HTMLTemplate is a template authored as separate HTML, CSS and JS.
type HTMLTemplate struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CategoryID    *string         `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId"`
	Price         float64         `json:"price"`
	IsFree        bool            `json:"isFree"`
	HTMLCode      string          `json:"htmlCode"`
	CSSCode       string          `json:"cssCode"`
	JSCode        string          `json:"jsCode"`
	Status        TemplateStatus  `json:"status"`
	IsActive      bool            `json:"isActive"`
	Translations  json.RawMessage `json:"translations"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (t *HTMLTemplate) Kind() TemplateKind  { return TemplateKindHTML }
func (t *HTMLTemplate) RecordID() uuid.UUID { return t.ID }
func (t *HTMLTemplate) templateRecord()     {}

// NormalizedTemplate is the single shape every read path returns,
// whichever store the template came from.
type NormalizedTemplate struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	CategoryID     *string         `json:"categoryId"`
	SubcategoryID  *string         `json:"subcategoryId"`
	Price          float64         `json:"price"`
	IsFree         bool            `json:"isFree"`
	IsPro          bool            `json:"isPro"`
	ComponentCode  string          `json:"componentCode"`
	ConfigSchema   json.RawMessage `json:"configSchema"`
	InitialConfig  json.RawMessage `json:"initialConfig"`
	IsDynamic      bool            `json:"isDynamic"`
	Discount       float64         `json:"discount"`
	VideoURL       *string         `json:"videoUrl"`
	Type           TemplateKind    `json:"type"`
	IsHTMLTemplate bool            `json:"isHtmlTemplate"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Enrichment, filled from review aggregates.
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviewsCount"`
}
