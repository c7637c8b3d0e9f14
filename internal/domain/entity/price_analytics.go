package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Périodes d'analyse.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// PriceAnalytics instantané calculé pour (ProductID, ZoneID, période).
// Un seul instantané IsCurrent par (ProductID, ZoneID, PriceKind).
type PriceAnalytics struct {
	ID                    string
	ProductID             string
	ZoneID                string
	PriceKind             PriceKind
	Period                string
	PeriodStart           time.Time
	PeriodEnd             time.Time
	ReferencePriceAvg     int64
	SupplierPriceMin      int64
	SupplierPriceMax      int64
	SupplierPriceAvg      int64
	SupplierPriceMedian   int64
	AvgVariancePercentage decimal.Decimal
	MaxVariancePercentage decimal.Decimal
	TotalOrders           int
	TotalSuppliers        int
	IsCurrent             bool
	ComputedAt            time.Time
}

// PriceSample prix appliqué dans une transaction (commande livrée), pour les tendances.
type PriceSample struct {
	Timestamp time.Time
	Price     int64
}
