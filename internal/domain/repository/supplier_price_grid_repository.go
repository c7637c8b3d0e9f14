package repository

import (
	"context"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// SupplierPriceGridRepository port de persistance des grilles tarifaires fournisseurs.
// Une seule grille active par (fournisseur, produit, zone).
type SupplierPriceGridRepository interface {
	Create(ctx context.Context, grid *entity.SupplierPriceGrid) error
	Update(ctx context.Context, grid *entity.SupplierPriceGrid) error
	GetByID(ctx context.Context, id string) (*entity.SupplierPriceGrid, error)
	// GetForUpdate verrouille la ligne (SELECT FOR UPDATE); à appeler dans une transaction.
	GetForUpdate(ctx context.Context, id string) (*entity.SupplierPriceGrid, error)
	// DeactivateOthers désactive les grilles actives du triplet sauf keepID; renvoie le nombre de lignes.
	DeactivateOthers(ctx context.Context, supplierID, productID, zoneID, keepID string, at time.Time) (int64, error)
	ListBySupplier(ctx context.Context, supplierID string, activeOnly bool) ([]*entity.SupplierPriceGrid, error)
	// ListActiveForProduct grilles actives et en vigueur à la date donnée. zoneID vide = toutes zones.
	ListActiveForProduct(ctx context.Context, productID, zoneID string, at time.Time) ([]*entity.SupplierPriceGrid, error)
}
