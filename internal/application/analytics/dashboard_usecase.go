// Package analytics contient le tableau de bord d'administration des prix.
package analytics

import (
	"context"
	"fmt"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

const dashboardTopVariances = 5 // nombre d'écarts affichés dans le widget

// DashboardUseCase synthèse du catalogue et des grilles pour l'administrateur.
//
// Source: AnalyticsRepository (lecture seule). Les écarts viennent des instantanés courants,
// pas d'un recalcul à la volée.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	bands         domainpricing.Bands
}

// NewDashboardUseCase construit le cas d'usage.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, bands domainpricing.Bands) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, bands: bands}
}

// GetPricingSummary construit le PricingDashboardDTO.
//
// Trois lectures en parallèle:
//  1. compteurs du catalogue (produits actifs, sans référence)
//  2. compteurs des grilles (actives, en survente)
//  3. TopVariances(5)
func (uc *DashboardUseCase) GetPricingSummary(ctx context.Context) (*dto.PricingDashboardDTO, error) {
	type countsResult struct {
		a, b int
		err  error
	}
	type topResult struct {
		rows []repository.VarianceHighlight
		err  error
	}

	catalogCh := make(chan countsResult, 1)
	gridsCh := make(chan countsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		active, err := uc.analyticsRepo.CountActiveProducts(ctx)
		if err != nil {
			catalogCh <- countsResult{err: err}
			return
		}
		noRef, err := uc.analyticsRepo.CountProductsWithoutReference(ctx)
		catalogCh <- countsResult{active, noRef, err}
	}()
	go func() {
		active, err := uc.analyticsRepo.CountActiveGrids(ctx)
		if err != nil {
			gridsCh <- countsResult{err: err}
			return
		}
		oversold, err := uc.analyticsRepo.CountOversoldGrids(ctx)
		gridsCh <- countsResult{active, oversold, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.TopVariances(ctx, dashboardTopVariances)
		topCh <- topResult{rows, err}
	}()

	catalog := <-catalogCh
	grids := <-gridsCh
	top := <-topCh

	if catalog.err != nil {
		return nil, fmt.Errorf("dashboard: catalogue: %w", catalog.err)
	}
	if grids.err != nil {
		return nil, fmt.Errorf("dashboard: grilles: %w", grids.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: écarts: %w", top.err)
	}

	highlights := make([]dto.VarianceHighlightDTO, 0, len(top.rows))
	for _, r := range top.rows {
		highlights = append(highlights, dto.VarianceHighlightDTO{
			ProductID:             r.ProductID,
			ProductName:           r.ProductName,
			ZoneID:                r.ZoneID,
			ZoneName:              r.ZoneName,
			Kind:                  r.PriceKind,
			ReferencePrice:        r.ReferencePrice,
			SupplierPriceAvg:      r.SupplierPriceAvg,
			AvgVariancePercentage: r.AvgVariancePercentage,
			Band:                  string(uc.bands.Classify(r.AvgVariancePercentage)),
			TotalSuppliers:        r.TotalSuppliers,
		})
	}

	return &dto.PricingDashboardDTO{
		ActiveProducts:           catalog.a,
		ProductsWithoutReference: catalog.b,
		ActiveGrids:              grids.a,
		OversoldGrids:            grids.b,
		TopVariances:             highlights,
	}, nil
}
