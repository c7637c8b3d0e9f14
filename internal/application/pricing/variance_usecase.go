package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// Statuts d'une ligne de prix. N/A: produit sans prix de référence, affiché mais jamais agrégé.
const (
	StatusOK = "ok"
	StatusNA = "N/A"
)

// VarianceUseCase écart des prix fournisseurs par rapport à la référence.
type VarianceUseCase struct {
	products repository.ProductRepository
	grids    repository.SupplierPriceGridRepository
	bands    domainpricing.Bands
	now      func() time.Time
}

// NewVarianceUseCase construit le cas d'usage.
func NewVarianceUseCase(products repository.ProductRepository, grids repository.SupplierPriceGridRepository, bands domainpricing.Bands) *VarianceUseCase {
	return &VarianceUseCase{products: products, grids: grids, bands: bands, now: time.Now}
}

// GetProductVariance compare les offres actives d'une zone (toutes zones si vide) au prix de
// référence du type demandé. Sans référence: statut N/A, aucune statistique.
func (uc *VarianceUseCase) GetProductVariance(ctx context.Context, productID, zoneID, rawKind string) (*dto.ProductVarianceDTO, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	product, err := loadProduct(ctx, uc.products, productID)
	if err != nil {
		return nil, err
	}
	quotes, err := fetchSupplierQuotes(ctx, uc.grids, productID, zoneID, kind, uc.now())
	if err != nil {
		return nil, err
	}

	out := &dto.ProductVarianceDTO{
		ProductID:   product.ID,
		ProductName: product.Name,
		ZoneID:      zoneID,
		Kind:        string(kind),
		Suppliers:   make([]dto.SupplierVarianceDTO, 0, len(quotes)),
	}

	report, err := domainpricing.ComputeVariance(product.ReferencePrice(kind), quotes)
	if errors.Is(err, domain.ErrMissingReferencePrice) {
		out.Status = StatusNA
		for _, q := range quotes {
			out.Suppliers = append(out.Suppliers, dto.SupplierVarianceDTO{
				SupplierID:   q.SupplierID,
				SupplierName: q.SupplierName,
				Price:        q.Price,
				Band:         StatusNA,
			})
		}
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	out.Status = StatusOK
	out.ReferencePrice = int64Ptr(report.ReferencePrice)
	for _, l := range report.Lines {
		out.Suppliers = append(out.Suppliers, dto.SupplierVarianceDTO{
			SupplierID:         l.SupplierID,
			SupplierName:       l.SupplierName,
			Price:              l.Price,
			Variance:           l.Variance,
			VariancePercentage: l.VariancePercentage,
			Band:               string(uc.bands.Classify(l.VariancePercentage)),
		})
	}
	out.AvgVariance = &report.AvgVariance
	out.AvgVariancePercentage = &report.AvgVariancePercentage
	out.MaxVariancePercentage = &report.MaxVariancePercentage
	out.MinPrice = int64Ptr(report.MinPrice)
	out.MaxPrice = int64Ptr(report.MaxPrice)
	out.AvgPrice = int64Ptr(report.AvgPrice)
	out.MedianPrice = int64Ptr(report.MedianPrice)
	out.Band = string(uc.bands.Classify(report.AvgVariancePercentage))
	return out, nil
}
