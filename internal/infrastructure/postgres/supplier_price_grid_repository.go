package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.SupplierPriceGridRepository = (*SupplierPriceGridRepo)(nil)

const gridColumns = `id, supplier_id, supplier_name, product_id, zone_id::text, unit_price, crate_price, consign_price,
	initial_stock, sold_quantity, is_active, minimum_order_quantity, discount_percentage,
	effective_from, effective_to, created_at, updated_at`

// SupplierPriceGridRepo grilles fournisseurs (pool ou tx). zone_id NULL = toutes zones.
type SupplierPriceGridRepo struct {
	q Querier
}

// NewSupplierPriceGridRepository construit l'adaptateur.
func NewSupplierPriceGridRepository(q Querier) *SupplierPriceGridRepo {
	return &SupplierPriceGridRepo{q: q}
}

func (r *SupplierPriceGridRepo) Create(ctx context.Context, g *entity.SupplierPriceGrid) error {
	query := `INSERT INTO supplier_price_grids (id, supplier_id, supplier_name, product_id, zone_id, unit_price,
		crate_price, consign_price, initial_stock, sold_quantity, is_active, minimum_order_quantity,
		discount_percentage, effective_from, effective_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.SupplierID, g.SupplierName, g.ProductID, nullIfEmpty(g.ZoneID), g.UnitPrice,
		g.CratePrice, g.ConsignPrice, g.InitialStock, g.SoldQuantity, g.IsActive, g.MinimumOrderQuantity,
		g.DiscountPercentage, g.EffectiveFrom, g.EffectiveTo, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier price grid: %w", err)
	}
	return nil
}

// Update écrit les champs modifiables (prix, stock, compteur, statut, validité).
func (r *SupplierPriceGridRepo) Update(ctx context.Context, g *entity.SupplierPriceGrid) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE supplier_price_grids
		   SET supplier_name = $2, unit_price = $3, crate_price = $4, consign_price = $5,
		       initial_stock = $6, sold_quantity = $7, is_active = $8, minimum_order_quantity = $9,
		       discount_percentage = $10, effective_from = $11, effective_to = $12, updated_at = $13
		 WHERE id = $1`,
		g.ID, g.SupplierName, g.UnitPrice, g.CratePrice, g.ConsignPrice,
		g.InitialStock, g.SoldQuantity, g.IsActive, g.MinimumOrderQuantity,
		g.DiscountPercentage, g.EffectiveFrom, g.EffectiveTo, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supplier price grid: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierPriceGridRepo) GetByID(ctx context.Context, id string) (*entity.SupplierPriceGrid, error) {
	return r.getOne(ctx, `SELECT `+gridColumns+` FROM supplier_price_grids WHERE id = $1`, id)
}

func (r *SupplierPriceGridRepo) GetForUpdate(ctx context.Context, id string) (*entity.SupplierPriceGrid, error) {
	return r.getOne(ctx, `SELECT `+gridColumns+` FROM supplier_price_grids WHERE id = $1 FOR UPDATE`, id)
}

func (r *SupplierPriceGridRepo) getOne(ctx context.Context, query, id string) (*entity.SupplierPriceGrid, error) {
	g, err := scanGrid(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier price grid: %w", err)
	}
	return g, nil
}

func (r *SupplierPriceGridRepo) DeactivateOthers(ctx context.Context, supplierID, productID, zoneID, keepID string, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE supplier_price_grids
		   SET is_active = false, updated_at = $5
		 WHERE supplier_id = $1 AND product_id = $2
		   AND COALESCE(zone_id::text, '') = $3
		   AND id <> $4 AND is_active`,
		supplierID, productID, zoneID, keepID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate supplier price grids: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *SupplierPriceGridRepo) ListBySupplier(ctx context.Context, supplierID string, activeOnly bool) ([]*entity.SupplierPriceGrid, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+gridColumns+` FROM supplier_price_grids
		 WHERE supplier_id = $1 AND (NOT $2 OR is_active)
		 ORDER BY product_id, zone_id NULLS FIRST, created_at DESC`, supplierID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list supplier price grids: %w", err)
	}
	return collectGrids(rows)
}

// ListActiveForProduct grilles actives en vigueur à at. zoneID vide = toutes les zones.
func (r *SupplierPriceGridRepo) ListActiveForProduct(ctx context.Context, productID, zoneID string, at time.Time) ([]*entity.SupplierPriceGrid, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+gridColumns+` FROM supplier_price_grids
		 WHERE product_id = $1 AND is_active
		   AND ($2 = '' OR zone_id::text = $2)
		   AND effective_from <= $3 AND (effective_to IS NULL OR effective_to > $3)
		 ORDER BY unit_price`, productID, zoneID, at)
	if err != nil {
		return nil, fmt.Errorf("list active grids for product: %w", err)
	}
	return collectGrids(rows)
}

func scanGrid(row pgx.Row) (*entity.SupplierPriceGrid, error) {
	var g entity.SupplierPriceGrid
	var zoneID *string
	err := row.Scan(&g.ID, &g.SupplierID, &g.SupplierName, &g.ProductID, &zoneID, &g.UnitPrice, &g.CratePrice,
		&g.ConsignPrice, &g.InitialStock, &g.SoldQuantity, &g.IsActive, &g.MinimumOrderQuantity,
		&g.DiscountPercentage, &g.EffectiveFrom, &g.EffectiveTo, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.ZoneID = emptyIfNull(zoneID)
	return &g, nil
}

func collectGrids(rows pgx.Rows) ([]*entity.SupplierPriceGrid, error) {
	defer rows.Close()
	var list []*entity.SupplierPriceGrid
	for rows.Next() {
		g, err := scanGrid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier price grid: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}
