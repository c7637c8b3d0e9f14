package dto

import "github.com/shopspring/decimal"

// PricingDashboardDTO réponse de GET /api/dashboard/pricing.
type PricingDashboardDTO struct {
	ActiveProducts           int `json:"active_products"`
	ProductsWithoutReference int `json:"products_without_reference"`
	ActiveGrids              int `json:"active_grids"`
	OversoldGrids            int `json:"oversold_grids"`

	// 5 instantanés courants aux écarts moyens les plus forts (en valeur absolue)
	TopVariances []VarianceHighlightDTO `json:"top_variances"`
}

// VarianceHighlightDTO instantané à fort écart.
type VarianceHighlightDTO struct {
	ProductID             string          `json:"product_id"`
	ProductName           string          `json:"product_name"`
	ZoneID                string          `json:"zone_id,omitempty"`
	ZoneName              string          `json:"zone_name,omitempty"`
	Kind                  string          `json:"kind"`
	ReferencePrice        int64           `json:"reference_price"`
	SupplierPriceAvg      int64           `json:"supplier_price_avg"`
	AvgVariancePercentage decimal.Decimal `json:"avg_variance_percentage"`
	Band                  string          `json:"band"`
	TotalSuppliers        int             `json:"total_suppliers"`
}
