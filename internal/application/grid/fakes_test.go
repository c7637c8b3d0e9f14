package grid_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

type memProducts struct {
	repository.ProductRepository
	items map[string]*entity.Product
}

func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) ListActive(_ context.Context) ([]*entity.Product, error) {
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Product
	for _, id := range ids {
		if r.items[id].IsActive {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

// memGrids magasin en mémoire; RunGrid travaille sur une copie validée seulement en cas de succès.
type memGrids struct {
	mu    sync.Mutex
	items map[string]*entity.SupplierPriceGrid
}

func newMemGrids() *memGrids {
	return &memGrids{items: map[string]*entity.SupplierPriceGrid{}}
}

func (r *memGrids) Create(_ context.Context, g *entity.SupplierPriceGrid) error {
	cp := *g
	r.items[g.ID] = &cp
	return nil
}

func (r *memGrids) Update(_ context.Context, g *entity.SupplierPriceGrid) error {
	if _, ok := r.items[g.ID]; !ok {
		return errors.New("grille absente")
	}
	cp := *g
	r.items[g.ID] = &cp
	return nil
}

func (r *memGrids) GetByID(_ context.Context, id string) (*entity.SupplierPriceGrid, error) {
	g, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *memGrids) GetForUpdate(ctx context.Context, id string) (*entity.SupplierPriceGrid, error) {
	return r.GetByID(ctx, id)
}

func (r *memGrids) DeactivateOthers(_ context.Context, supplierID, productID, zoneID, keepID string, at time.Time) (int64, error) {
	var n int64
	for _, g := range r.items {
		if g.SupplierID == supplierID && g.ProductID == productID && g.ZoneID == zoneID && g.ID != keepID && g.IsActive {
			g.IsActive = false
			g.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *memGrids) ListBySupplier(_ context.Context, supplierID string, activeOnly bool) ([]*entity.SupplierPriceGrid, error) {
	var out []*entity.SupplierPriceGrid
	for _, g := range r.items {
		if g.SupplierID == supplierID && (!activeOnly || g.IsActive) {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memGrids) ListActiveForProduct(_ context.Context, productID, zoneID string, at time.Time) ([]*entity.SupplierPriceGrid, error) {
	var out []*entity.SupplierPriceGrid
	for _, g := range r.items {
		if g.ProductID == productID && g.ZoneID == zoneID && g.IsActive && g.IsEffectiveAt(at) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memGrids) active(supplierID, productID, zoneID string) []*entity.SupplierPriceGrid {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SupplierPriceGrid
	for _, g := range r.items {
		if g.SupplierID == supplierID && g.ProductID == productID && g.ZoneID == zoneID && g.IsActive {
			out = append(out, g)
		}
	}
	return out
}

type memGridRunner struct {
	store *memGrids
}

func (r *memGridRunner) RunGrid(_ context.Context, fn func(repository.SupplierPriceGridRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := &memGrids{items: make(map[string]*entity.SupplierPriceGrid, len(r.store.items))}
	for id, g := range r.store.items {
		cp := *g
		tx.items[id] = &cp
	}
	if err := fn(tx); err != nil {
		return err
	}
	r.store.items = tx.items
	return nil
}

// fakeCodec renvoie des lignes préparées et garde les lignes exportées.
type fakeCodec struct {
	exported []dto.GridSheetRow
	rows     []dto.GridSheetRow
	rowErrs  []dto.ImportRowError
	err      error
}

func (c *fakeCodec) Encode(rows []dto.GridSheetRow) ([]byte, error) {
	c.exported = rows
	return []byte("xlsx"), nil
}

func (c *fakeCodec) Decode(_ io.Reader) ([]dto.GridSheetRow, []dto.ImportRowError, error) {
	return c.rows, c.rowErrs, c.err
}
