package models

import (
	"math"

	"github.com/google/uuid"
)

// RatingStats aggregates the reviews of one template.
type RatingStats struct {
	TemplateID   uuid.UUID `json:"templateId"`
	AvgRating    float64   `json:"avgRating"`
	ReviewsCount int       `json:"reviewsCount"`
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
