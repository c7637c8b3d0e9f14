package pricing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	domainpricing "github.com/ravito-ci/ravito-api/internal/domain/pricing"
	"github.com/ravito-ci/ravito-api/internal/infrastructure/lock"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type pricingFixture struct {
	products  *memProducts
	grids     *memGrids
	samples   *memSamples
	analytics *memAnalytics
	runner    *memAnalyticsRunner
	uc        *pricing.AnalyticsUseCase
}

func grid(supplier, product, zone string, unit, crate int64) *entity.SupplierPriceGrid {
	return &entity.SupplierPriceGrid{
		ID:            supplier + "-" + product + "-" + zone,
		SupplierID:    supplier,
		SupplierName:  "Fournisseur " + supplier,
		ProductID:     product,
		ZoneID:        zone,
		UnitPrice:     unit,
		CratePrice:    crate,
		IsActive:      true,
		EffectiveFrom: fixedNow.AddDate(0, -1, 0),
	}
}

func newPricingFixture() *pricingFixture {
	return newPricingFixtureWithLocker(nil)
}

func newPricingFixtureWithLocker(locker ports.Locker) *pricingFixture {
	products := &memProducts{items: map[string]*entity.Product{
		"flag":     {ID: "flag", Name: "Flag 65cl", Category: "biere", ReferenceUnitPrice: 650, ReferenceCratePrice: 7800, IsActive: true},
		"castel":   {ID: "castel", Name: "Castel 65cl", Category: "biere", ReferenceUnitPrice: 600, IsActive: true},
		"eau":      {ID: "eau", Name: "Awa 1.5L", Category: "eau", ReferenceUnitPrice: 400, IsActive: true},
		"sans-ref": {ID: "sans-ref", Name: "Nouveau jus", Category: "jus", IsActive: true},
	}}
	grids := &memGrids{items: []*entity.SupplierPriceGrid{
		grid("s1", "flag", "cocody", 600, 7200),
		grid("s2", "flag", "cocody", 700, 0),
		grid("s3", "flag", "yopougon", 650, 7800),
		grid("s1", "castel", "cocody", 660, 0),
		grid("s1", "eau", "cocody", 380, 0),
		grid("s2", "sans-ref", "cocody", 500, 0),
	}}
	samples := &memSamples{samples: map[string][]entity.PriceSample{}, orders: 12}
	analytics := &memAnalytics{}
	runner := &memAnalyticsRunner{repo: analytics}
	uc := pricing.NewAnalyticsUseCase(
		products,
		&memZones{items: []*entity.Zone{{ID: "cocody", Name: "Cocody", IsActive: true}, {ID: "yopougon", Name: "Yopougon", IsActive: true}}},
		grids, samples, analytics, runner,
		pricing.AnalyticsConfig{Bands: domainpricing.DefaultBands(), Period: entity.PeriodMonthly, Locker: locker},
		logger.Nop(),
	)
	uc.SetClock(func() time.Time { return fixedNow })
	return &pricingFixture{products: products, grids: grids, samples: samples, analytics: analytics, runner: runner, uc: uc}
}

// ──────────────────────────────────────────────────────────────────────────────
// Écarts
// ──────────────────────────────────────────────────────────────────────────────

func TestGetProductVariance(t *testing.T) {
	f := newPricingFixture()
	uc := pricing.NewVarianceUseCase(f.products, f.grids, domainpricing.DefaultBands())

	out, err := uc.GetProductVariance(context.Background(), "flag", "cocody", "")
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusOK, out.Status)
	require.NotNil(t, out.ReferencePrice)
	assert.Equal(t, int64(650), *out.ReferencePrice)
	require.Len(t, out.Suppliers, 2)
	assert.Equal(t, "low", out.Suppliers[0].Band)  // -7.69 %
	assert.Equal(t, "high", out.Suppliers[1].Band) // +7.69 %
	require.NotNil(t, out.AvgVariance)
	assert.True(t, out.AvgVariance.IsZero())
	assert.Equal(t, "normal", out.Band)
	assert.Equal(t, int64(650), *out.MedianPrice)
}

func TestGetProductVariance_TypeCasierIgnoreLesGrillesSansPrix(t *testing.T) {
	f := newPricingFixture()
	uc := pricing.NewVarianceUseCase(f.products, f.grids, domainpricing.DefaultBands())

	out, err := uc.GetProductVariance(context.Background(), "flag", "", "crate")
	require.NoError(t, err)
	require.Len(t, out.Suppliers, 2, "s2 ne propose pas de casier")
	assert.Equal(t, int64(7200), *out.MinPrice)
	assert.Equal(t, int64(7800), *out.MaxPrice)
}

func TestGetProductVariance_SansReference(t *testing.T) {
	f := newPricingFixture()
	uc := pricing.NewVarianceUseCase(f.products, f.grids, domainpricing.DefaultBands())

	out, err := uc.GetProductVariance(context.Background(), "sans-ref", "cocody", "unit")
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusNA, out.Status)
	assert.Nil(t, out.ReferencePrice)
	assert.Nil(t, out.AvgVariance)
	require.Len(t, out.Suppliers, 1)
	assert.Equal(t, int64(500), out.Suppliers[0].Price)
}

func TestGetProductVariance_Erreurs(t *testing.T) {
	f := newPricingFixture()
	uc := pricing.NewVarianceUseCase(f.products, f.grids, domainpricing.DefaultBands())

	_, err := uc.GetProductVariance(context.Background(), "inconnu", "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetProductVariance(context.Background(), "flag", "", "palette")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tendances
// ──────────────────────────────────────────────────────────────────────────────

func TestGetProductTrend(t *testing.T) {
	f := newPricingFixture()
	f.samples.samples["flag"] = []entity.PriceSample{
		{Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), Price: 100},
		{Timestamp: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), Price: 200},
		{Timestamp: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), Price: 300},
		{Timestamp: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), Price: 999}, // hors fenêtre
	}
	uc := pricing.NewTrendUseCase(f.products, f.samples, time.UTC)

	out, err := uc.GetProductTrend(context.Background(), "flag", "2026-03-01", "2026-03-15")
	require.NoError(t, err)
	require.Len(t, out.Points, 2)
	assert.Equal(t, "2026-03-10", out.Points[0].Date)
	assert.Equal(t, int64(150), out.Points[0].AvgPrice)
	assert.Equal(t, 2, out.Points[0].SampleCount)
	assert.Equal(t, "2026-03-11", out.Points[1].Date)
	assert.Equal(t, int64(300), out.Points[1].AvgPrice)
	assert.Equal(t, "2026-03-15", out.EndDate)
}

func TestGetProductTrend_FenetreInvalide(t *testing.T) {
	f := newPricingFixture()
	uc := pricing.NewTrendUseCase(f.products, f.samples, time.UTC)
	ctx := context.Background()

	_, err := uc.GetProductTrend(ctx, "flag", "15/03/2026", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetProductTrend(ctx, "flag", "2026-03-15", "2026-03-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetProductTrend(ctx, "flag", "2024-01-01", "2026-03-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Instantanés
// ──────────────────────────────────────────────────────────────────────────────

func TestRecompute_RemplaceLInstantaneCourant(t *testing.T) {
	f := newPricingFixture()
	ctx := context.Background()

	res, err := f.uc.Recompute(ctx, "flag", "cocody", "")
	require.NoError(t, err)
	require.Len(t, res.Snapshots, 2, "unit et crate; consign sans référence")
	assert.Equal(t, []string{"consign"}, res.Skipped)

	unit := res.Snapshots[0]
	assert.Equal(t, "unit", unit.Kind)
	assert.Equal(t, 2, unit.TotalSuppliers)
	assert.Equal(t, 12, unit.TotalOrders)
	assert.Equal(t, int64(600), unit.SupplierPriceMin)
	assert.True(t, unit.MaxVariancePercentage.Equal(decimal.RequireFromString("7.69")))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), unit.PeriodStart)

	_, err = f.uc.Recompute(ctx, "flag", "cocody", "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.analytics.countCurrent("flag", "cocody", entity.PriceKindUnit))
	assert.Equal(t, 1, f.analytics.countCurrent("flag", "cocody", entity.PriceKindCrate))
	assert.Len(t, f.analytics.items, 4, "les anciens instantanés sont conservés")

	current, err := f.uc.GetCurrent(ctx, "flag", "cocody")
	require.NoError(t, err)
	assert.Len(t, current, 2)
}

func TestRecompute_SansReferenceAucuneEcriture(t *testing.T) {
	f := newPricingFixture()
	res, err := f.uc.Recompute(context.Background(), "sans-ref", "cocody", "")
	require.NoError(t, err)
	assert.Empty(t, res.Snapshots)
	assert.Len(t, res.Skipped, 3)
	assert.Equal(t, 0, f.runner.count())

	_, err = f.uc.Recompute(context.Background(), "flag", "", "annuel")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecompute_ConcurrentsSurLeMemeCoupleSontSerialises(t *testing.T) {
	locker := lock.NewKeyedMutex(0)
	f := newPricingFixtureWithLocker(locker)
	f.runner.hold = 5 * time.Millisecond

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Recompute(context.Background(), "flag", "cocody", "")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, n, f.runner.count())
	assert.Equal(t, 1, f.runner.maxConcurrent())
	assert.Equal(t, 1, f.analytics.countCurrent("flag", "cocody", entity.PriceKindUnit))
	assert.Equal(t, 1, f.analytics.countCurrent("flag", "cocody", entity.PriceKindCrate))
	assert.Equal(t, 0, locker.Len(), "verrous libérés")
}

func TestRecompute_VerrouIndisponible(t *testing.T) {
	locker := lock.NewKeyedMutex(10 * time.Millisecond)
	release, err := locker.Acquire(context.Background(), "analytics:flag:cocody")
	require.NoError(t, err)
	defer release()

	f := newPricingFixtureWithLocker(locker)
	_, err = f.uc.Recompute(context.Background(), "flag", "cocody", "")
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
	assert.Equal(t, 0, f.runner.count())

	_, err = f.uc.Recompute(context.Background(), "flag", "yopougon", "")
	assert.NoError(t, err, "un autre couple n'est pas bloqué")
}

func TestRecomputeAll(t *testing.T) {
	f := newPricingFixture()
	out, err := f.uc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, out.Products)
	assert.Empty(t, out.Failed)
	// 3 zones (globale, cocody, yopougon) × produits avec référence
	assert.Equal(t, 3*(2+1+1), out.Written)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rapport de marché
// ──────────────────────────────────────────────────────────────────────────────

func TestMarketReport(t *testing.T) {
	f := newPricingFixture()
	out, err := f.uc.MarketReport(context.Background(), "cocody", "unit")
	require.NoError(t, err)
	require.Len(t, out.Lines, 4)

	byID := map[string]int{}
	for i, l := range out.Lines {
		byID[l.ProductID] = i
	}
	castel := out.Lines[byID["castel"]]
	assert.Equal(t, "high", castel.Band) // +10 %
	eau := out.Lines[byID["eau"]]
	assert.Equal(t, "normal", eau.Band) // -5 %
	na := out.Lines[byID["sans-ref"]]
	assert.Equal(t, pricing.StatusNA, na.Status)
	assert.Nil(t, na.ReferencePrice)
	assert.Equal(t, 1, na.SupplierCount)

	assert.Equal(t, 1, out.BandTotals["high"])
	assert.Equal(t, 2, out.BandTotals["normal"])
	assert.Equal(t, 1, out.BandTotals[pricing.StatusNA])
	assert.Equal(t, 0, out.BandTotals["low"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Invalidation
// ──────────────────────────────────────────────────────────────────────────────

func TestInvalidator(t *testing.T) {
	f := newPricingFixture()
	inv := pricing.NewInvalidator(f.uc, logger.Nop())
	ctx := context.Background()

	require.NoError(t, inv.Handle(ctx, ports.ChangeEvent{Table: ports.TableReferencePrices, RecordID: "castel"}))
	assert.Equal(t, 1, f.analytics.countCurrent("castel", "cocody", entity.PriceKindUnit))
	assert.Equal(t, 1, f.analytics.countCurrent("castel", "", entity.PriceKindUnit))

	require.NoError(t, inv.Handle(ctx, ports.ChangeEvent{Table: ports.TableSupplierPriceGrid, ProductID: "eau", ZoneID: "cocody"}))
	assert.Equal(t, 1, f.analytics.countCurrent("eau", "cocody", entity.PriceKindUnit))
	assert.Equal(t, 0, f.analytics.countCurrent("eau", "yopougon", entity.PriceKindUnit))

	runs := f.runner.count()
	require.NoError(t, inv.Handle(ctx, ports.ChangeEvent{Table: ports.TableCreditCustomers, RecordID: "c1"}))
	require.NoError(t, inv.Handle(ctx, ports.ChangeEvent{Table: ports.TableProducts, RecordID: "supprime"}))
	assert.Equal(t, runs, f.runner.count())
}
