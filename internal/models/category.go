// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups templates by occasion (birthday, anniversary, ...).
// IDs are text so ids from older imports keep matching.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`

	// Virtual field populated by store methods.
	TemplateCount int `json:"templateCount"`
}

// Subcategory narrows a category (e.g. "For Mom" under "Birthday").
type Subcategory struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}
