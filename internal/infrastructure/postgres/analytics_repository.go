package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo requêtes en lecture seule du tableau de bord des prix.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construit l'adaptateur.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

func (r *AnalyticsRepo) CountActiveProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "CountActiveProducts", `SELECT COUNT(*) FROM products WHERE is_active`)
}

func (r *AnalyticsRepo) CountProductsWithoutReference(ctx context.Context) (int, error) {
	return r.count(ctx, "CountProductsWithoutReference", `
		SELECT COUNT(*) FROM products
		 WHERE is_active
		   AND reference_unit_price = 0 AND reference_crate_price = 0 AND reference_consign_price = 0`)
}

func (r *AnalyticsRepo) CountActiveGrids(ctx context.Context) (int, error) {
	return r.count(ctx, "CountActiveGrids", `SELECT COUNT(*) FROM supplier_price_grids WHERE is_active`)
}

func (r *AnalyticsRepo) CountOversoldGrids(ctx context.Context) (int, error) {
	return r.count(ctx, "CountOversoldGrids", `
		SELECT COUNT(*) FROM supplier_price_grids WHERE is_active AND sold_quantity > initial_stock`)
}

func (r *AnalyticsRepo) count(ctx context.Context, name, query string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.%s: %w", name, err)
	}
	return n, nil
}

// TopVariances instantanés courants triés par |écart moyen| décroissant.
func (r *AnalyticsRepo) TopVariances(ctx context.Context, limit int) ([]repository.VarianceHighlight, error) {
	const query = `
	SELECT
	    pa.product_id,
	    p.name,
	    COALESCE(pa.zone_id::text, '')   AS zone_id,
	    COALESCE(z.name, '')             AS zone_name,
	    pa.price_kind,
	    pa.reference_price_avg,
	    pa.supplier_price_avg,
	    pa.avg_variance_percentage,
	    pa.total_suppliers
	FROM price_analytics pa
	JOIN products    p ON p.id = pa.product_id
	LEFT JOIN zones  z ON z.id = pa.zone_id
	WHERE pa.is_current
	  AND p.is_active
	ORDER BY ABS(pa.avg_variance_percentage) DESC, p.name
	LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopVariances: %w", err)
	}
	defer rows.Close()

	var results []repository.VarianceHighlight
	for rows.Next() {
		var row repository.VarianceHighlight
		if err := rows.Scan(
			&row.ProductID,
			&row.ProductName,
			&row.ZoneID,
			&row.ZoneName,
			&row.PriceKind,
			&row.ReferencePrice,
			&row.SupplierPriceAvg,
			&row.AvgVariancePercentage,
			&row.TotalSuppliers,
		); err != nil {
			return nil, fmt.Errorf("analytics.TopVariances scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
