package studio

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Validation limits for creator input.
const (
	maxNameLen     = 200
	maxCategoryLen = 100
	maxHTMLLen     = 500_000
	maxCSSLen      = 200_000
	maxJSLen       = 200_000
	maxCodeLen     = 500_000
	maxDiscount    = 100
)

// ValidationError reports invalid creator input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	if msg == "" {
		return nil
	}
	return &ValidationError{Message: msg}
}

// validateCommon checks the fields shared by both template kinds and
// returns the first problem found.
func validateCommon(name, category string, price float64) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Template name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "Category is too long (max 100 characters)."
	}
	if price < 0 {
		return "Price cannot be negative."
	}
	return ""
}

// validateHTML checks an HTML template submission.
func validateHTML(in HTMLInput) string {
	if msg := validateCommon(in.Name, in.Category, in.Price); msg != "" {
		return msg
	}
	if strings.TrimSpace(in.HTML) == "" {
		return "Template HTML is required."
	}
	if utf8.RuneCountInString(in.HTML) > maxHTMLLen {
		return "Template HTML is too long (max 500,000 characters)."
	}
	if utf8.RuneCountInString(in.CSS) > maxCSSLen {
		return "Template CSS is too long (max 200,000 characters)."
	}
	if utf8.RuneCountInString(in.JS) > maxJSLen {
		return "Template JS is too long (max 200,000 characters)."
	}
	if len(in.Translations) > 0 && !json.Valid(in.Translations) {
		return "Translations must be valid JSON."
	}
	return ""
}

// validateReact checks a component template upload.
func validateReact(in ReactInput) string {
	if msg := validateCommon(in.Name, in.Category, in.Price); msg != "" {
		return msg
	}
	if strings.TrimSpace(in.ComponentCode) == "" {
		return "Component code is required."
	}
	if utf8.RuneCountInString(in.ComponentCode) > maxCodeLen {
		return "Component code is too long (max 500,000 characters)."
	}
	if in.Discount < 0 || in.Discount > maxDiscount {
		return "Discount must be between 0 and 100."
	}
	if len(in.ConfigSchema) > 0 && !json.Valid(in.ConfigSchema) {
		return "Config schema must be valid JSON."
	}
	if len(in.InitialConfig) > 0 && !json.Valid(in.InitialConfig) {
		return "Initial config must be valid JSON."
	}
	return ""
}
