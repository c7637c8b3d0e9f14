package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.PriceSampleRepository = (*PriceSampleRepo)(nil)

// PriceSampleRepo lecture seule des prix appliqués sur les commandes livrées de la marketplace.
type PriceSampleRepo struct {
	pool *pgxpool.Pool
}

// NewPriceSampleRepository construit l'adaptateur.
func NewPriceSampleRepository(pool *pgxpool.Pool) *PriceSampleRepo {
	return &PriceSampleRepo{pool: pool}
}

// ListSamples un échantillon par ligne de commande livrée dans [from, to).
func (r *PriceSampleRepo) ListSamples(ctx context.Context, productID string, from, to time.Time) ([]entity.PriceSample, error) {
	const query = `
	SELECT o.delivered_at, oi.unit_price
	  FROM order_items oi
	  JOIN orders o ON o.id = oi.order_id
	 WHERE oi.product_id = $1
	   AND o.status = 'delivered'
	   AND o.delivered_at >= $2 AND o.delivered_at < $3
	 ORDER BY o.delivered_at`

	rows, err := r.pool.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("priceSamples.ListSamples: %w", err)
	}
	defer rows.Close()

	var out []entity.PriceSample
	for rows.Next() {
		var s entity.PriceSample
		if err := rows.Scan(&s.Timestamp, &s.Price); err != nil {
			return nil, fmt.Errorf("priceSamples.ListSamples scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountOrders commandes livrées distinctes contenant le produit.
func (r *PriceSampleRepo) CountOrders(ctx context.Context, productID, zoneID string, from, to time.Time) (int, error) {
	const query = `
	SELECT COUNT(DISTINCT o.id)
	  FROM order_items oi
	  JOIN orders o ON o.id = oi.order_id
	 WHERE oi.product_id = $1
	   AND ($2 = '' OR o.zone_id::text = $2)
	   AND o.status = 'delivered'
	   AND o.delivered_at >= $3 AND o.delivered_at < $4`

	var n int
	if err := r.pool.QueryRow(ctx, query, productID, zoneID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("priceSamples.CountOrders: %w", err)
	}
	return n, nil
}
