package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Écarts ────────────────────────────────────────────────────────────────────

// VarianceRequest paramètres de GET /api/pricing/products/:id/variance.
type VarianceRequest struct {
	ZoneID string `query:"zone_id"`
	Kind   string `query:"kind" validate:"omitempty,oneof=unit crate consign"`
}

// SupplierVarianceDTO écart d'un fournisseur.
type SupplierVarianceDTO struct {
	SupplierID         string          `json:"supplier_id"`
	SupplierName       string          `json:"supplier_name"`
	Price              int64           `json:"price"`
	Variance           int64           `json:"variance"`            // prix - référence
	VariancePercentage decimal.Decimal `json:"variance_percentage"` // 2 décimales
	Band               string          `json:"band"`                // low | normal | high
}

// ProductVarianceDTO réponse de l'écart fournisseurs d'un produit.
// Sans prix de référence: ReferencePrice nil, Status "N/A", aucun agrégat.
type ProductVarianceDTO struct {
	ProductID             string                `json:"product_id"`
	ProductName           string                `json:"product_name"`
	ZoneID                string                `json:"zone_id,omitempty"`
	Kind                  string                `json:"kind"`
	Status                string                `json:"status"` // ok | N/A
	ReferencePrice        *int64                `json:"reference_price"`
	Suppliers             []SupplierVarianceDTO `json:"suppliers"`
	AvgVariance           *decimal.Decimal      `json:"avg_variance,omitempty"`
	AvgVariancePercentage *decimal.Decimal      `json:"avg_variance_percentage,omitempty"`
	MaxVariancePercentage *decimal.Decimal      `json:"max_variance_percentage,omitempty"`
	MinPrice              *int64                `json:"min_price,omitempty"`
	MaxPrice              *int64                `json:"max_price,omitempty"`
	AvgPrice              *int64                `json:"avg_price,omitempty"`
	MedianPrice           *int64                `json:"median_price,omitempty"`
	Band                  string                `json:"band,omitempty"` // bande de l'écart moyen
}

// ── Tendances ─────────────────────────────────────────────────────────────────

// TrendRequest paramètres de GET /api/pricing/products/:id/trend.
type TrendRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; par défaut il y a 30 jours
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; par défaut aujourd'hui
}

// TrendPointDTO agrégat d'un jour.
type TrendPointDTO struct {
	Date        string `json:"date"` // YYYY-MM-DD dans le fuseau configuré
	AvgPrice    int64  `json:"avg_price"`
	MinPrice    int64  `json:"min_price"`
	MaxPrice    int64  `json:"max_price"`
	SampleCount int    `json:"sample_count"`
}

// ProductTrendDTO réponse de la tendance de prix.
type ProductTrendDTO struct {
	ProductID string          `json:"product_id"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Timezone  string          `json:"timezone"`
	Points    []TrendPointDTO `json:"points"`
}

// ── Instantanés ───────────────────────────────────────────────────────────────

// PriceAnalyticsDTO instantané d'analyse courant.
type PriceAnalyticsDTO struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	ZoneID                string          `json:"zone_id,omitempty"`
	Kind                  string          `json:"kind"`
	Period                string          `json:"period"`
	PeriodStart           time.Time       `json:"period_start"`
	PeriodEnd             time.Time       `json:"period_end"`
	ReferencePriceAvg     int64           `json:"reference_price_avg"`
	SupplierPriceMin      int64           `json:"supplier_price_min"`
	SupplierPriceMax      int64           `json:"supplier_price_max"`
	SupplierPriceAvg      int64           `json:"supplier_price_avg"`
	SupplierPriceMedian   int64           `json:"supplier_price_median"`
	AvgVariancePercentage decimal.Decimal `json:"avg_variance_percentage"`
	MaxVariancePercentage decimal.Decimal `json:"max_variance_percentage"`
	TotalOrders           int             `json:"total_orders"`
	TotalSuppliers        int             `json:"total_suppliers"`
	ComputedAt            time.Time       `json:"computed_at"`
}

// RecomputeRequest corps optionnel de POST .../analytics/recompute.
type RecomputeRequest struct {
	ZoneID string `json:"zone_id"`
	Period string `json:"period" validate:"omitempty,oneof=daily weekly monthly"`
}

// RecomputeResultDTO résultat d'un recalcul.
type RecomputeResultDTO struct {
	Snapshots []PriceAnalyticsDTO `json:"snapshots"`
	Skipped   []string            `json:"skipped"` // types de prix sans référence
}

// RecomputeAllResultDTO bilan d'un recalcul global (worker).
type RecomputeAllResultDTO struct {
	Products int      `json:"products"`
	Written  int      `json:"written"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed"`
}

// ── Rapport de marché ─────────────────────────────────────────────────────────

// MarketReportRequest paramètres de GET /api/pricing/market-report.
type MarketReportRequest struct {
	ZoneID string `query:"zone_id"`
	Kind   string `query:"kind" validate:"omitempty,oneof=unit crate consign"`
}

// MarketLineDTO ligne du rapport de marché.
type MarketLineDTO struct {
	ProductID             string           `json:"product_id"`
	ProductName           string           `json:"product_name"`
	Category              string           `json:"category"`
	Status                string           `json:"status"` // ok | N/A
	ReferencePrice        *int64           `json:"reference_price"`
	MinPrice              *int64           `json:"min_price,omitempty"`
	MaxPrice              *int64           `json:"max_price,omitempty"`
	AvgPrice              *int64           `json:"avg_price,omitempty"`
	AvgVariancePercentage *decimal.Decimal `json:"avg_variance_percentage,omitempty"`
	Band                  string           `json:"band,omitempty"`
	SupplierCount         int              `json:"supplier_count"`
}

// MarketReportDTO rapport de marché d'une zone.
type MarketReportDTO struct {
	ZoneID        string          `json:"zone_id,omitempty"`
	Kind          string          `json:"kind"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Lines         []MarketLineDTO `json:"lines"`
	BandTotals    map[string]int  `json:"band_totals"` // low, normal, high, N/A
	TotalProducts int             `json:"total_products"`
}
