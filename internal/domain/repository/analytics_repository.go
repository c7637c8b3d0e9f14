package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// VarianceHighlight instantané courant à fort écart moyen, pour le tableau de bord.
type VarianceHighlight struct {
	ProductID             string
	ProductName           string
	ZoneID                string
	ZoneName              string
	PriceKind             string
	ReferencePrice        int64
	SupplierPriceAvg      int64
	AvgVariancePercentage decimal.Decimal
	TotalSuppliers        int
}

// AnalyticsRepository requêtes de lecture du tableau de bord d'administration.
// Les implémentations sont en lecture seule.
type AnalyticsRepository interface {
	CountActiveProducts(ctx context.Context) (int, error)
	// CountProductsWithoutReference produits actifs sans aucun prix de référence positif.
	CountProductsWithoutReference(ctx context.Context) (int, error)
	CountActiveGrids(ctx context.Context) (int, error)
	// CountOversoldGrids grilles actives dont sold_quantity > initial_stock.
	CountOversoldGrids(ctx context.Context) (int, error)
	// TopVariances instantanés courants triés par |écart moyen| décroissant.
	TopVariances(ctx context.Context, limit int) ([]VarianceHighlight, error)
}
