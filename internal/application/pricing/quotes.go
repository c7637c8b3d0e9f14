package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// fetchSupplierQuotes prix actifs et en vigueur des fournisseurs pour un type de prix.
// Une grille sans prix pour ce type (0) n'est pas une offre.
func fetchSupplierQuotes(ctx context.Context, grids repository.SupplierPriceGridRepository, productID, zoneID string, kind entity.PriceKind, at time.Time) ([]domainpricing.SupplierQuote, error) {
	list, err := grids.ListActiveForProduct(ctx, productID, zoneID, at)
	if err != nil {
		return nil, fmt.Errorf("pricing: lire les grilles: %w", err)
	}
	quotes := make([]domainpricing.SupplierQuote, 0, len(list))
	for _, g := range list {
		if !g.IsEffectiveAt(at) {
			continue
		}
		price := g.Price(kind)
		if price <= 0 {
			continue
		}
		quotes = append(quotes, domainpricing.SupplierQuote{
			SupplierID:   g.SupplierID,
			SupplierName: g.SupplierName,
			Price:        price,
		})
	}
	return quotes, nil
}

func parseKind(raw string) (entity.PriceKind, error) {
	if raw == "" {
		return entity.PriceKindUnit, nil
	}
	k := entity.PriceKind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("%w: type de prix %q", domain.ErrInvalidInput, raw)
	}
	return k, nil
}

func loadProduct(ctx context.Context, products repository.ProductRepository, productID string) (*entity.Product, error) {
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("pricing: lire le produit: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func int64Ptr(v int64) *int64 { return &v }
