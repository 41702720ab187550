package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// OrderPaid is the order status counted as a purchase.
const OrderPaid = "paid"

// OrderStore reads purchase history. Order creation belongs to the
// payment integration.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// PurchaseCounts returns the number of paid orders per template. The map
// is empty when there is no purchase history at all.
func (s *OrderStore) PurchaseCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_id, COUNT(*)
		FROM orders
		WHERE status = $1
		GROUP BY template_id
	`, OrderPaid)
	if err != nil {
		return nil, fmt.Errorf("count purchases: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan purchase count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
