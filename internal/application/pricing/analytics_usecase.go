package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

var priceKinds = []entity.PriceKind{entity.PriceKindUnit, entity.PriceKindCrate, entity.PriceKindConsign}

// Parallélisme du rapport de marché et du recalcul global.
const (
	marketReportWorkers = 8
	recomputeWorkers    = 4
)

// AnalyticsUseCase instantanés d'analyse de prix et rapport de marché.
type AnalyticsUseCase struct {
	products  repository.ProductRepository
	zones     repository.ZoneRepository
	grids     repository.SupplierPriceGridRepository
	samples   repository.PriceSampleRepository
	analytics repository.PriceAnalyticsRepository
	runner    AnalyticsTxRunner
	locker    ports.Locker
	bands     domainpricing.Bands
	period    string
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

// AnalyticsConfig paramètres du calcul.
type AnalyticsConfig struct {
	Bands    domainpricing.Bands
	Period   string // daily, weekly, monthly
	Location *time.Location
	// Locker sérialise les recalculs d'un même (produit, zone) entre le recalcul
	// périodique et l'invalidation. nil: aucun verrou.
	Locker ports.Locker
}

// NewAnalyticsUseCase construit le cas d'usage.
func NewAnalyticsUseCase(
	products repository.ProductRepository,
	zones repository.ZoneRepository,
	grids repository.SupplierPriceGridRepository,
	samples repository.PriceSampleRepository,
	analytics repository.PriceAnalyticsRepository,
	runner AnalyticsTxRunner,
	cfg AnalyticsConfig,
	log *logger.Logger,
) *AnalyticsUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Period == "" {
		cfg.Period = entity.PeriodMonthly
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyticsUseCase{
		products:  products,
		zones:     zones,
		grids:     grids,
		samples:   samples,
		analytics: analytics,
		runner:    runner,
		locker:    cfg.Locker,
		bands:     cfg.Bands,
		period:    cfg.Period,
		loc:       cfg.Location,
		log:       log,
		now:       time.Now,
	}
}

// SetClock remplace l'horloge (tests).
func (uc *AnalyticsUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func validPeriod(p string) bool {
	return p == entity.PeriodDaily || p == entity.PeriodWeekly || p == entity.PeriodMonthly
}

// Recompute calcule les instantanés de (produit, zone) pour chaque type de prix ayant une
// référence, puis remplace les instantanés courants dans une seule transaction.
// Un type sans référence est ignoré et signalé dans Skipped.
// Deux recalculs du même couple ne se chevauchent pas: le second attend le verrou
// puis remplace les instantanés du premier.
func (uc *AnalyticsUseCase) Recompute(ctx context.Context, productID, zoneID, period string) (*dto.RecomputeResultDTO, error) {
	if period == "" {
		period = uc.period
	}
	if !validPeriod(period) {
		return nil, fmt.Errorf("%w: période %q", domain.ErrInvalidInput, period)
	}
	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, "analytics:"+productID+":"+zoneID)
		if err != nil {
			return nil, fmt.Errorf("pricing: verrou %s/%s: %w", productID, zoneID, err)
		}
		defer release()
	}
	product, err := loadProduct(ctx, uc.products, productID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	start, end := domainpricing.PeriodBounds(period, now.In(uc.loc))
	orders, err := uc.samples.CountOrders(ctx, productID, zoneID, start, end)
	if err != nil {
		return nil, fmt.Errorf("pricing: compter les commandes: %w", err)
	}

	result := &dto.RecomputeResultDTO{Snapshots: make([]dto.PriceAnalyticsDTO, 0, len(priceKinds)), Skipped: make([]string, 0)}
	snapshots := make([]*entity.PriceAnalytics, 0, len(priceKinds))
	for _, kind := range priceKinds {
		quotes, err := fetchSupplierQuotes(ctx, uc.grids, productID, zoneID, kind, now)
		if err != nil {
			return nil, err
		}
		snap, err := domainpricing.BuildSnapshot(domainpricing.SnapshotInput{
			ProductID:      productID,
			ZoneID:         zoneID,
			Kind:           kind,
			Period:         period,
			PeriodStart:    start,
			PeriodEnd:      end,
			ReferencePrice: product.ReferencePrice(kind),
			Quotes:         quotes,
			TotalOrders:    orders,
		}, now)
		if errors.Is(err, domain.ErrMissingReferencePrice) {
			result.Skipped = append(result.Skipped, string(kind))
			continue
		}
		if err != nil {
			return nil, err
		}
		snap.ID = uuid.New().String()
		snapshots = append(snapshots, snap)
	}
	if len(snapshots) == 0 {
		return result, nil
	}

	err = uc.runner.RunAnalytics(ctx, func(analytics repository.PriceAnalyticsRepository) error {
		if err := analytics.MarkNotCurrent(ctx, productID, zoneID); err != nil {
			return err
		}
		for _, s := range snapshots {
			if err := analytics.Insert(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pricing: enregistrer les instantanés: %w", err)
	}
	for _, s := range snapshots {
		result.Snapshots = append(result.Snapshots, toAnalyticsDTO(s))
	}
	return result, nil
}

// RecomputeProduct recalcule un produit pour toutes les zones actives et pour la vue globale.
func (uc *AnalyticsUseCase) RecomputeProduct(ctx context.Context, productID string) error {
	zoneIDs, err := uc.zoneIDs(ctx)
	if err != nil {
		return err
	}
	for _, z := range zoneIDs {
		if _, err := uc.Recompute(ctx, productID, z, ""); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeAll recalcule tous les produits actifs × zones. Une erreur sur un couple
// n'interrompt pas les autres; elle est journalisée et listée dans Failed.
func (uc *AnalyticsUseCase) RecomputeAll(ctx context.Context) (*dto.RecomputeAllResultDTO, error) {
	products, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricing: lister les produits: %w", err)
	}
	zoneIDs, err := uc.zoneIDs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		out = &dto.RecomputeAllResultDTO{Products: len(products), Failed: make([]string, 0)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeWorkers)
	for _, p := range products {
		for _, z := range zoneIDs {
			productID, zoneID := p.ID, z
			g.Go(func() error {
				res, err := uc.Recompute(gctx, productID, zoneID, "")
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					uc.log.Error().Err(err).Str("product_id", productID).Str("zone_id", zoneID).Msg("recalcul de l'instantané")
					out.Failed = append(out.Failed, productID+"/"+zoneID)
					return nil
				}
				out.Written += len(res.Snapshots)
				out.Skipped += len(res.Skipped)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// zoneIDs zones actives plus "" (toutes zones).
func (uc *AnalyticsUseCase) zoneIDs(ctx context.Context) ([]string, error) {
	zones, err := uc.zones.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("pricing: lister les zones: %w", err)
	}
	ids := make([]string, 0, len(zones)+1)
	ids = append(ids, "")
	for _, z := range zones {
		ids = append(ids, z.ID)
	}
	return ids, nil
}

// GetCurrent instantanés courants de (produit, zone).
func (uc *AnalyticsUseCase) GetCurrent(ctx context.Context, productID, zoneID string) ([]dto.PriceAnalyticsDTO, error) {
	if _, err := loadProduct(ctx, uc.products, productID); err != nil {
		return nil, err
	}
	list, err := uc.analytics.GetCurrent(ctx, productID, zoneID)
	if err != nil {
		return nil, fmt.Errorf("pricing: lire les instantanés: %w", err)
	}
	out := make([]dto.PriceAnalyticsDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAnalyticsDTO(a))
	}
	return out, nil
}

// MarketReport compare, pour chaque produit actif, les offres de la zone à la référence.
// Calcul en parallèle par produit; les produits sans référence sont listés en N/A.
func (uc *AnalyticsUseCase) MarketReport(ctx context.Context, zoneID, rawKind string) (*dto.MarketReportDTO, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	products, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricing: lister les produits: %w", err)
	}

	now := uc.now()
	lines := make([]dto.MarketLineDTO, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(marketReportWorkers)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			quotes, err := fetchSupplierQuotes(gctx, uc.grids, p.ID, zoneID, kind, now)
			if err != nil {
				return err
			}
			line := dto.MarketLineDTO{
				ProductID:     p.ID,
				ProductName:   p.Name,
				Category:      p.Category,
				SupplierCount: len(quotes),
			}
			report, err := domainpricing.ComputeVariance(p.ReferencePrice(kind), quotes)
			switch {
			case errors.Is(err, domain.ErrMissingReferencePrice):
				line.Status = StatusNA
			case err != nil:
				return err
			default:
				line.Status = StatusOK
				line.ReferencePrice = int64Ptr(report.ReferencePrice)
				if len(quotes) > 0 {
					line.MinPrice = int64Ptr(report.MinPrice)
					line.MaxPrice = int64Ptr(report.MaxPrice)
					line.AvgPrice = int64Ptr(report.AvgPrice)
					pct := report.AvgVariancePercentage
					line.AvgVariancePercentage = &pct
					line.Band = string(uc.bands.Classify(pct))
				}
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := map[string]int{
		string(domainpricing.BandLow):    0,
		string(domainpricing.BandNormal): 0,
		string(domainpricing.BandHigh):   0,
		StatusNA:                         0,
	}
	for _, l := range lines {
		switch {
		case l.Status == StatusNA:
			totals[StatusNA]++
		case l.Band != "":
			totals[l.Band]++
		}
	}
	return &dto.MarketReportDTO{
		ZoneID:        zoneID,
		Kind:          string(kind),
		GeneratedAt:   now,
		Lines:         lines,
		BandTotals:    totals,
		TotalProducts: len(lines),
	}, nil
}

func toAnalyticsDTO(a *entity.PriceAnalytics) dto.PriceAnalyticsDTO {
	return dto.PriceAnalyticsDTO{
		ID:                    a.ID,
		ProductID:             a.ProductID,
		ZoneID:                a.ZoneID,
		Kind:                  string(a.PriceKind),
		Period:                a.Period,
		PeriodStart:           a.PeriodStart,
		PeriodEnd:             a.PeriodEnd,
		ReferencePriceAvg:     a.ReferencePriceAvg,
		SupplierPriceMin:      a.SupplierPriceMin,
		SupplierPriceMax:      a.SupplierPriceMax,
		SupplierPriceAvg:      a.SupplierPriceAvg,
		SupplierPriceMedian:   a.SupplierPriceMedian,
		AvgVariancePercentage: a.AvgVariancePercentage,
		MaxVariancePercentage: a.MaxVariancePercentage,
		TotalOrders:           a.TotalOrders,
		TotalSuppliers:        a.TotalSuppliers,
		ComputedAt:            a.ComputedAt,
	}
}
