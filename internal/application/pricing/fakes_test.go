package pricing_test

import (
	"context"
	"sync"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

type memProducts struct {
	items map[string]*entity.Product
}

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	r.items[p.ID] = p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) List(ctx context.Context, _ repository.ProductFilter) ([]*entity.Product, error) {
	return r.ListActive(ctx)
}

func (r *memProducts) ListActive(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range []string{"flag", "castel", "eau", "sans-ref"} {
		if p, ok := r.items[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) UpdateReferencePrices(_ context.Context, p *entity.Product) error {
	r.items[p.ID] = p
	return nil
}

func (r *memProducts) Deactivate(_ context.Context, id string, _ time.Time) error {
	r.items[id].IsActive = false
	return nil
}

type memZones struct {
	items []*entity.Zone
}

func (r *memZones) Create(_ context.Context, z *entity.Zone) error {
	r.items = append(r.items, z)
	return nil
}

func (r *memZones) GetByID(_ context.Context, id string) (*entity.Zone, error) {
	for _, z := range r.items {
		if z.ID == id {
			return z, nil
		}
	}
	return nil, nil
}

func (r *memZones) List(_ context.Context, _ bool) ([]*entity.Zone, error) {
	return r.items, nil
}

// memGrids lecture seule suffisante pour les calculs de prix.
type memGrids struct {
	repository.SupplierPriceGridRepository
	items []*entity.SupplierPriceGrid
}

func (r *memGrids) ListActiveForProduct(_ context.Context, productID, zoneID string, _ time.Time) ([]*entity.SupplierPriceGrid, error) {
	var out []*entity.SupplierPriceGrid
	for _, g := range r.items {
		if g.ProductID != productID || !g.IsActive {
			continue
		}
		if zoneID != "" && g.ZoneID != zoneID {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

type memSamples struct {
	samples map[string][]entity.PriceSample
	orders  int
}

func (r *memSamples) ListSamples(_ context.Context, productID string, from, to time.Time) ([]entity.PriceSample, error) {
	var out []entity.PriceSample
	for _, s := range r.samples[productID] {
		if !s.Timestamp.Before(from) && s.Timestamp.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSamples) CountOrders(context.Context, string, string, time.Time, time.Time) (int, error) {
	return r.orders, nil
}

type memAnalytics struct {
	mu    sync.Mutex
	items []*entity.PriceAnalytics
}

func (r *memAnalytics) MarkNotCurrent(_ context.Context, productID, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ProductID == productID && a.ZoneID == zoneID {
			a.IsCurrent = false
		}
	}
	return nil
}

// Insert refuse un second instantané courant pour (produit, zone, type), comme l'index
// unique uq_price_analytics_current.
func (r *memAnalytics) Insert(_ context.Context, a *entity.PriceAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if a.IsCurrent && x.IsCurrent && x.ProductID == a.ProductID && x.ZoneID == a.ZoneID && x.PriceKind == a.PriceKind {
			return domain.ErrConflict
		}
	}
	cp := *a
	r.items = append(r.items, &cp)
	return nil
}

func (r *memAnalytics) GetCurrent(_ context.Context, productID, zoneID string) ([]*entity.PriceAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.PriceAnalytics
	for _, a := range r.items {
		if a.ProductID == productID && a.ZoneID == zoneID && a.IsCurrent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnalytics) countCurrent(productID, zoneID string, kind entity.PriceKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.items {
		if a.ProductID == productID && a.ZoneID == zoneID && a.PriceKind == kind && a.IsCurrent {
			n++
		}
	}
	return n
}

// memAnalyticsRunner compte les transactions et le nombre maximal de transactions
// simultanées. hold allonge chaque transaction pour rendre les chevauchements visibles.
type memAnalyticsRunner struct {
	mu       sync.Mutex
	repo     *memAnalytics
	runs     int
	inflight int
	peak     int
	hold     time.Duration
}

func (r *memAnalyticsRunner) RunAnalytics(_ context.Context, fn func(repository.PriceAnalyticsRepository) error) error {
	r.mu.Lock()
	r.runs++
	r.inflight++
	if r.inflight > r.peak {
		r.peak = r.inflight
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inflight--
		r.mu.Unlock()
	}()

	time.Sleep(r.hold)
	return fn(r.repo)
}

func (r *memAnalyticsRunner) maxConcurrent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

func (r *memAnalyticsRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}
