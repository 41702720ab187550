package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type seedCategory struct {
	id, name string
	subs     [][2]string
}

var defaultCategories = []seedCategory{
	{id: "birthday", name: "Birthday", subs: [][2]string{
		{"birthday-mom", "For Mom"}, {"birthday-dad", "For Dad"}, {"birthday-friend", "For Friend"},
	}},
	{id: "anniversary", name: "Anniversary", subs: [][2]string{
		{"anniversary-wedding", "Wedding Anniversary"}, {"anniversary-dating", "Dating Anniversary"},
	}},
	{id: "wedding", name: "Wedding"},
	{id: "love", name: "Love"},
	{id: "congratulations", name: "Congratulations"},
}

const sampleHTML = `<section class="card">
  <h1>Happy Birthday!</h1>
  <p>Wishing you a wonderful year ahead.</p>
  <img src="https://images.example.com/cake.jpg" alt="Cake">
</section>`

const sampleCSS = `.card{font-family:sans-serif;text-align:center;padding:2rem}`

// Seed inserts the default category tree and, on an empty database, one
// approved sample HTML template. Safe to run repeatedly.
func Seed(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range defaultCategories {
		if _, err := tx.Exec(`
			INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, c.id, c.name); err != nil {
			return fmt.Errorf("seed category %s: %w", c.id, err)
		}
		for _, sc := range c.subs {
			if _, err := tx.Exec(`
				INSERT INTO subcategories (id, category_id, name) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING
			`, sc[0], c.id, sc[1]); err != nil {
				return fmt.Errorf("seed subcategory %s: %w", sc[0], err)
			}
		}
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM html_templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}
	if count == 0 {
		if _, err := tx.Exec(`
			INSERT INTO html_templates
				(name, category, category_id, is_free, html_code, css_code, status, is_active)
			VALUES ($1, $2, $3, TRUE, $4, $5, 'approved', TRUE)
		`, "Classic Birthday Card", "birthday", "birthday", sampleHTML, sampleCSS); err != nil {
			return fmt.Errorf("seed sample template: %w", err)
		}
		slog.Info("seeded sample html template")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	slog.Info("database seeded", "categories", len(defaultCategories))
	return nil
}
