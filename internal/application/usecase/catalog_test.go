package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/application/usecase"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

type memProducts struct {
	items  map[string]*entity.Product
	filter repository.ProductFilter
}

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.items[p.ID] = &cp
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

func (r *memProducts) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.filter = f
	var out []*entity.Product
	for _, p := range r.items {
		if (f.Category == "" || p.Category == f.Category) && (!f.ActiveOnly || p.IsActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) ListActive(ctx context.Context) ([]*entity.Product, error) {
	return r.List(ctx, repository.ProductFilter{ActiveOnly: true})
}

func (r *memProducts) UpdateReferencePrices(_ context.Context, p *entity.Product) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProducts) Deactivate(_ context.Context, id string, at time.Time) error {
	r.items[id].IsActive = false
	r.items[id].UpdatedAt = at
	return nil
}

type recordingPublisher struct {
	events []ports.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.ChangeEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type memOrgs struct {
	modules map[string][]string
}

func (r *memOrgs) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	return &entity.Organization{ID: id}, nil
}

func (r *memOrgs) HasActiveModule(_ context.Context, orgID, module string) (bool, error) {
	for _, m := range r.modules[orgID] {
		if m == module {
			return true, nil
		}
	}
	return false, nil
}

func int64p(v int64) *int64 { return &v }

// =============================================================================
// Produits
// =============================================================================

func TestProduct_CreateAndUpdateReferencePrices(t *testing.T) {
	repo := &memProducts{items: map[string]*entity.Product{}}
	pub := &recordingPublisher{}
	uc := usecase.NewProductUseCase(repo, pub, logger.Nop())
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateProductRequest{Name: "  Flag 65cl ", Category: "biere", CrateSize: 12, ReferenceUnitPrice: 650})
	require.NoError(t, err)
	assert.Equal(t, "Flag 65cl", created.Name)
	assert.True(t, created.IsActive)

	updated, err := uc.UpdateReferencePrices(ctx, created.ID, dto.UpdateReferencePricesRequest{ReferenceCratePrice: int64p(7800)})
	require.NoError(t, err)
	assert.Equal(t, int64(650), updated.ReferenceUnitPrice)
	assert.Equal(t, int64(7800), updated.ReferenceCratePrice)

	_, err = uc.UpdateReferencePrices(ctx, created.ID, dto.UpdateReferencePricesRequest{ReferenceUnitPrice: int64p(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateReferencePrices(ctx, "inconnu", dto.UpdateReferencePricesRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, ports.TableProducts, pub.events[0].Table)
	assert.Equal(t, ports.TableReferencePrices, pub.events[1].Table)
	assert.Equal(t, created.ID, pub.events[1].ProductID)
}

func TestProduct_ListAndDeactivate(t *testing.T) {
	repo := &memProducts{items: map[string]*entity.Product{
		"flag": {ID: "flag", Category: "biere", IsActive: true},
		"awa":  {ID: "awa", Category: "eau", IsActive: true},
	}}
	uc := usecase.NewProductUseCase(repo, nil, nil)
	ctx := context.Background()

	list, err := uc.List(ctx, dto.ProductListRequest{Category: "biere"}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 20, repo.filter.Limit)
	assert.True(t, repo.filter.ActiveOnly)

	require.NoError(t, uc.Deactivate(ctx, "flag"))
	list, err = uc.List(ctx, dto.ProductListRequest{Category: "biere"}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	assert.ErrorIs(t, uc.Deactivate(ctx, "inconnu"), domain.ErrNotFound)
	_, err = uc.GetByID(ctx, "inconnu")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// =============================================================================
// Modules
// =============================================================================

func TestModuleService(t *testing.T) {
	s := usecase.NewModuleService(&memOrgs{modules: map[string][]string{"org1": {entity.ModuleCreditBook}}})
	ctx := context.Background()

	ok, err := s.HasActiveModule(ctx, "org1", entity.ModuleCreditBook)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasActiveModule(ctx, "org1", entity.ModulePricing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.HasActiveModule(ctx, "", entity.ModuleCreditBook)
	assert.Error(t, err)
}
