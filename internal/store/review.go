package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"giftora/internal/models"
)

// ReviewStore aggregates review ratings.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore creates a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Aggregates returns rating statistics for the given templates in one
// query. Templates without reviews are absent from the map.
func (s *ReviewStore) Aggregates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RatingStats, error) {
	out := make(map[uuid.UUID]models.RatingStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT template_id, AVG(rating)::float8, COUNT(*)
		FROM reviews
		WHERE template_id = ANY($1::uuid[])
		GROUP BY template_id
	`, pq.Array(strs))
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st models.RatingStats
		if err := rows.Scan(&st.TemplateID, &st.AvgRating, &st.ReviewsCount); err != nil {
			return nil, fmt.Errorf("scan review aggregate: %w", err)
		}
		out[st.TemplateID] = st
	}
	return out, rows.Err()
}
