package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpsertGridRequest entrée de création/remplacement d'une grille fournisseur.
// La nouvelle grille devient la seule active pour (fournisseur, produit, zone).
type UpsertGridRequest struct {
	ProductID            string          `json:"product_id" validate:"required"`
	ZoneID               string          `json:"zone_id"`
	SupplierName         string          `json:"supplier_name" validate:"max=200"`
	UnitPrice            int64           `json:"unit_price" validate:"required,gt=0"`
	CratePrice           int64           `json:"crate_price" validate:"min=0"`
	ConsignPrice         int64           `json:"consign_price" validate:"min=0"`
	InitialStock         int64           `json:"initial_stock" validate:"min=0"`
	MinimumOrderQuantity int64           `json:"minimum_order_quantity" validate:"omitempty,min=1"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	EffectiveFrom        *time.Time      `json:"effective_from"`
	EffectiveTo          *time.Time      `json:"effective_to"`
}

// RecordSaleRequest vente imputée sur une grille.
type RecordSaleRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// ResetSoldRequest remise à zéro explicite du compteur de ventes.
type ResetSoldRequest struct {
	InitialStock int64 `json:"initial_stock" validate:"min=0"`
}

// GridResponse sortie d'une grille.
type GridResponse struct {
	ID                   string          `json:"id"`
	SupplierID           string          `json:"supplier_id"`
	SupplierName         string          `json:"supplier_name"`
	ProductID            string          `json:"product_id"`
	ZoneID               string          `json:"zone_id,omitempty"`
	UnitPrice            int64           `json:"unit_price"`
	CratePrice           int64           `json:"crate_price"`
	ConsignPrice         int64           `json:"consign_price"`
	InitialStock         int64           `json:"initial_stock"`
	SoldQuantity         int64           `json:"sold_quantity"`
	StockFinal           int64           `json:"stock_final"`
	Oversold             bool            `json:"oversold"`
	IsActive             bool            `json:"is_active"`
	MinimumOrderQuantity int64           `json:"minimum_order_quantity"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	EffectiveFrom        time.Time       `json:"effective_from"`
	EffectiveTo          *time.Time      `json:"effective_to,omitempty"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// GridSheetRow ligne lue ou écrite dans le classeur XLSX des grilles.
type GridSheetRow struct {
	Row                  int // numéro de ligne dans la feuille (1 = en-tête)
	ProductID            string
	ProductName          string
	ZoneID               string
	UnitPrice            int64
	CratePrice           int64
	ConsignPrice         int64
	InitialStock         int64
	MinimumOrderQuantity int64
	DiscountPercentage   decimal.Decimal
}

// ImportRowError erreur d'une ligne du classeur; les autres lignes sont importées.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResultDTO bilan d'un import XLSX.
type ImportResultDTO struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}
