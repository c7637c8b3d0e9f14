package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierPriceGrid grille de prix et de stock d'un fournisseur pour un produit dans une zone.
// Invariant: au plus une grille IsActive par (SupplierID, ProductID, ZoneID).
// SoldQuantity ne décroît jamais, sauf remise à zéro explicite.
type SupplierPriceGrid struct {
	ID                   string
	SupplierID           string
	SupplierName         string
	ProductID            string
	ZoneID               string // vide = toutes zones
	UnitPrice            int64
	CratePrice           int64
	ConsignPrice         int64
	InitialStock         int64
	SoldQuantity         int64
	IsActive             bool
	MinimumOrderQuantity int64
	DiscountPercentage   decimal.Decimal
	EffectiveFrom        time.Time
	EffectiveTo          *time.Time // nil = sans fin
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// StockFinal = InitialStock - SoldQuantity; négatif signale une survente (pas une erreur).
func (g *SupplierPriceGrid) StockFinal() int64 {
	return g.InitialStock - g.SoldQuantity
}

// IsOversold indique une survente.
func (g *SupplierPriceGrid) IsOversold() bool {
	return g.StockFinal() < 0
}

// Price renvoie le prix fournisseur du type demandé.
func (g *SupplierPriceGrid) Price(kind PriceKind) int64 {
	switch kind {
	case PriceKindCrate:
		return g.CratePrice
	case PriceKindConsign:
		return g.ConsignPrice
	default:
		return g.UnitPrice
	}
}

// IsEffectiveAt indique si la fenêtre de validité couvre t.
func (g *SupplierPriceGrid) IsEffectiveAt(t time.Time) bool {
	if t.Before(g.EffectiveFrom) {
		return false
	}
	return g.EffectiveTo == nil || t.Before(*g.EffectiveTo)
}
