// Package pricing contient les calculs purs sur les prix: écarts fournisseurs par rapport
// au prix de référence, tendances journalières et statistiques d'instantanés.
// Aucune fonction de ce paquet ne fait d'E/S ni ne journalise.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

// SupplierQuote prix proposé par un fournisseur.
type SupplierQuote struct {
	SupplierID   string
	SupplierName string
	Price        int64
}

// VarianceLine écart d'un fournisseur par rapport à la référence.
type VarianceLine struct {
	SupplierID         string
	SupplierName       string
	Price              int64
	Variance           int64           // Price - Reference
	VariancePercentage decimal.Decimal // Variance / Reference * 100
}

// VarianceReport résultat de ComputeVariance.
type VarianceReport struct {
	ReferencePrice        int64
	Lines                 []VarianceLine
	AvgVariance           decimal.Decimal
	AvgVariancePercentage decimal.Decimal
	MaxVariancePercentage decimal.Decimal
	MinPrice              int64
	MaxPrice              int64
	AvgPrice              int64
	MedianPrice           int64
}

// ComputeVariance compare les prix fournisseurs au prix de référence.
// Référence nulle ou absente: ErrMissingReferencePrice, rien n'est agrégé.
// Liste vide: rapport sans lignes, AvgVariance = 0 et MinPrice = MaxPrice = référence.
func ComputeVariance(referencePrice int64, quotes []SupplierQuote) (*VarianceReport, error) {
	if referencePrice <= 0 {
		return nil, domain.ErrMissingReferencePrice
	}

	report := &VarianceReport{
		ReferencePrice:        referencePrice,
		Lines:                 make([]VarianceLine, 0, len(quotes)),
		AvgVariance:           decimal.Zero,
		AvgVariancePercentage: decimal.Zero,
		MaxVariancePercentage: decimal.Zero,
		MinPrice:              referencePrice,
		MaxPrice:              referencePrice,
		AvgPrice:              referencePrice,
		MedianPrice:           referencePrice,
	}
	if len(quotes) == 0 {
		return report, nil
	}

	prices := make([]int64, 0, len(quotes))
	var sumVariance, sumPrice int64
	sumPct := decimal.Zero
	for i, q := range quotes {
		if q.Price <= 0 {
			return nil, fmt.Errorf("%w: prix fournisseur %q non positif", domain.ErrInvalidInput, q.SupplierID)
		}
		pct, err := money.VariancePercentage(q.Price, referencePrice)
		if err != nil {
			return nil, domain.ErrMissingReferencePrice
		}
		v := money.Variance(q.Price, referencePrice)
		report.Lines = append(report.Lines, VarianceLine{
			SupplierID:         q.SupplierID,
			SupplierName:       q.SupplierName,
			Price:              q.Price,
			Variance:           v,
			VariancePercentage: pct,
		})

		if i == 0 || q.Price < report.MinPrice {
			report.MinPrice = q.Price
		}
		if i == 0 || q.Price > report.MaxPrice {
			report.MaxPrice = q.Price
		}
		if i == 0 || pct.GreaterThan(report.MaxVariancePercentage) {
			report.MaxVariancePercentage = pct
		}
		sumVariance += v
		sumPrice += q.Price
		sumPct = sumPct.Add(pct)
		prices = append(prices, q.Price)
	}

	n := decimal.NewFromInt(int64(len(quotes)))
	report.AvgVariance = decimal.NewFromInt(sumVariance).Div(n).Round(2)
	report.AvgVariancePercentage = sumPct.Div(n).Round(2)
	report.AvgPrice, _ = money.RoundHalfUpDiv(sumPrice, int64(len(quotes)))
	report.MedianPrice = Median(prices)
	return report, nil
}

// Median médiane arrondie demi vers le haut (moyenne des deux valeurs centrales si pair).
// Ne modifie pas le slice reçu. 0 pour un slice vide.
func Median(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	m, _ := money.RoundHalfUpDiv(sorted[mid-1]+sorted[mid], 2)
	return m
}
