package pricing

import (
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// SnapshotInput données nécessaires pour un instantané d'analyse.
type SnapshotInput struct {
	ProductID      string
	ZoneID         string
	Kind           entity.PriceKind
	Period         string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ReferencePrice int64
	Quotes         []SupplierQuote
	TotalOrders    int
}

// BuildSnapshot calcule un instantané PriceAnalytics (IsCurrent = true) à partir du rapport
// d'écart. Propage ErrMissingReferencePrice: pas d'instantané sans référence.
func BuildSnapshot(in SnapshotInput, now time.Time) (*entity.PriceAnalytics, error) {
	report, err := ComputeVariance(in.ReferencePrice, in.Quotes)
	if err != nil {
		return nil, err
	}
	suppliers := make(map[string]struct{}, len(in.Quotes))
	for _, q := range in.Quotes {
		suppliers[q.SupplierID] = struct{}{}
	}
	return &entity.PriceAnalytics{
		ProductID:             in.ProductID,
		ZoneID:                in.ZoneID,
		PriceKind:             in.Kind,
		Period:                in.Period,
		PeriodStart:           in.PeriodStart,
		PeriodEnd:             in.PeriodEnd,
		ReferencePriceAvg:     in.ReferencePrice,
		SupplierPriceMin:      report.MinPrice,
		SupplierPriceMax:      report.MaxPrice,
		SupplierPriceAvg:      report.AvgPrice,
		SupplierPriceMedian:   report.MedianPrice,
		AvgVariancePercentage: report.AvgVariancePercentage,
		MaxVariancePercentage: report.MaxVariancePercentage,
		TotalOrders:           in.TotalOrders,
		TotalSuppliers:        len(suppliers),
		IsCurrent:             true,
		ComputedAt:            now,
	}, nil
}

// PeriodBounds renvoie [début, fin[ de la période contenant now.
// weekly commence le lundi; période inconnue = monthly.
func PeriodBounds(period string, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch period {
	case entity.PeriodDaily:
		return day, day.AddDate(0, 0, 1)
	case entity.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // lundi = 0
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}
