package postgres

import (
	"context"
	"fmt"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.PriceAnalyticsRepository = (*PriceAnalyticsRepo)(nil)

// PriceAnalyticsRepo instantanés d'analyse de prix. Une seule ligne is_current par
// (produit, zone, type), garantie par l'index partiel uq_price_analytics_current.
type PriceAnalyticsRepo struct {
	q Querier
}

// NewPriceAnalyticsRepository construit l'adaptateur.
func NewPriceAnalyticsRepository(q Querier) *PriceAnalyticsRepo {
	return &PriceAnalyticsRepo{q: q}
}

func (r *PriceAnalyticsRepo) MarkNotCurrent(ctx context.Context, productID, zoneID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE price_analytics SET is_current = false
		 WHERE product_id = $1 AND COALESCE(zone_id::text, '') = $2 AND is_current`,
		productID, zoneID,
	)
	if err != nil {
		return fmt.Errorf("mark price analytics not current: %w", err)
	}
	return nil
}

func (r *PriceAnalyticsRepo) Insert(ctx context.Context, s *entity.PriceAnalytics) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO price_analytics (id, product_id, zone_id, price_kind, period, period_start, period_end,
			reference_price_avg, supplier_price_min, supplier_price_max, supplier_price_avg, supplier_price_median,
			avg_variance_percentage, max_variance_percentage, total_orders, total_suppliers, is_current, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		s.ID, s.ProductID, nullIfEmpty(s.ZoneID), string(s.PriceKind), s.Period, s.PeriodStart, s.PeriodEnd,
		s.ReferencePriceAvg, s.SupplierPriceMin, s.SupplierPriceMax, s.SupplierPriceAvg, s.SupplierPriceMedian,
		s.AvgVariancePercentage, s.MaxVariancePercentage, s.TotalOrders, s.TotalSuppliers, s.IsCurrent, s.ComputedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: instantané courant déjà présent", domain.ErrConflict)
		}
		return fmt.Errorf("insert price analytics: %w", err)
	}
	return nil
}

func (r *PriceAnalyticsRepo) GetCurrent(ctx context.Context, productID, zoneID string) ([]*entity.PriceAnalytics, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, zone_id::text, price_kind, period, period_start, period_end,
		       reference_price_avg, supplier_price_min, supplier_price_max, supplier_price_avg, supplier_price_median,
		       avg_variance_percentage, max_variance_percentage, total_orders, total_suppliers, is_current, computed_at
		  FROM price_analytics
		 WHERE product_id = $1 AND COALESCE(zone_id::text, '') = $2 AND is_current
		 ORDER BY price_kind`, productID, zoneID)
	if err != nil {
		return nil, fmt.Errorf("get current price analytics: %w", err)
	}
	defer rows.Close()

	var list []*entity.PriceAnalytics
	for rows.Next() {
		var s entity.PriceAnalytics
		var zone *string
		var kind string
		if err := rows.Scan(&s.ID, &s.ProductID, &zone, &kind, &s.Period, &s.PeriodStart, &s.PeriodEnd,
			&s.ReferencePriceAvg, &s.SupplierPriceMin, &s.SupplierPriceMax, &s.SupplierPriceAvg, &s.SupplierPriceMedian,
			&s.AvgVariancePercentage, &s.MaxVariancePercentage, &s.TotalOrders, &s.TotalSuppliers, &s.IsCurrent, &s.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan price analytics: %w", err)
		}
		s.ZoneID = emptyIfNull(zone)
		s.PriceKind = entity.PriceKind(kind)
		list = append(list, &s)
	}
	return list, rows.Err()
}
