package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

// ProductUseCase cas d'usage du catalogue. Les prix de référence sont modifiés par
// l'administrateur; chaque modification déclenche le recalcul des analyses.
type ProductUseCase struct {
	repo      repository.ProductRepository
	publisher ports.ChangePublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewProductUseCase construit le cas d'usage.
func NewProductUseCase(repo repository.ProductRepository, publisher ports.ChangePublisher, log *logger.Logger) *ProductUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, publisher: publisher, log: log, now: time.Now}
}

// SetClock remplace l'horloge (tests).
func (uc *ProductUseCase) SetClock(now func() time.Time) { uc.now = now }

// Create ajoute un produit actif au catalogue.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nom obligatoire", domain.ErrInvalidInput)
	}
	if in.ReferenceUnitPrice < 0 || in.ReferenceCratePrice < 0 || in.ReferenceConsignPrice < 0 || in.CrateSize < 0 {
		return nil, fmt.Errorf("%w: prix de référence >= 0", domain.ErrInvalidInput)
	}
	now := uc.now()
	p := &entity.Product{
		ID:                    uuid.New().String(),
		Name:                  name,
		Brand:                 strings.TrimSpace(in.Brand),
		Category:              in.Category,
		CrateSize:             in.CrateSize,
		ReferenceUnitPrice:    in.ReferenceUnitPrice,
		ReferenceCratePrice:   in.ReferenceCratePrice,
		ReferenceConsignPrice: in.ReferenceConsignPrice,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.publish(ctx, ports.TableProducts, "insert", p.ID)
	return toProductResponse(p), nil
}

// GetByID renvoie ErrNotFound si le produit n'existe pas.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// List produits actifs, filtrés par catégorie, paginés.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Category:   in.Category,
		ActiveOnly: true,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateReferencePrices met à jour les prix de référence fournis (les autres restent inchangés).
// 0 efface un prix de référence: le type concerné passe en N/A.
func (uc *ProductUseCase) UpdateReferencePrices(ctx context.Context, id string, in dto.UpdateReferencePricesRequest) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	for _, v := range []*int64{in.ReferenceUnitPrice, in.ReferenceCratePrice, in.ReferenceConsignPrice} {
		if v != nil && *v < 0 {
			return nil, fmt.Errorf("%w: prix de référence >= 0", domain.ErrInvalidInput)
		}
	}
	if in.ReferenceUnitPrice != nil {
		p.ReferenceUnitPrice = *in.ReferenceUnitPrice
	}
	if in.ReferenceCratePrice != nil {
		p.ReferenceCratePrice = *in.ReferenceCratePrice
	}
	if in.ReferenceConsignPrice != nil {
		p.ReferenceConsignPrice = *in.ReferenceConsignPrice
	}
	p.UpdatedAt = uc.now()
	if err := uc.repo.UpdateReferencePrices(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", p.ID).
		Int64("unit", p.ReferenceUnitPrice).
		Int64("crate", p.ReferenceCratePrice).
		Int64("consign", p.ReferenceConsignPrice).
		Msg("prix de référence mis à jour")
	uc.publish(ctx, ports.TableReferencePrices, "update", p.ID)
	return toProductResponse(p), nil
}

// Deactivate retire le produit du catalogue actif (jamais supprimé: l'historique y fait référence).
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Deactivate(ctx, id, uc.now()); err != nil {
		return err
	}
	uc.publish(ctx, ports.TableProducts, "update", id)
	return nil
}

func (uc *ProductUseCase) publish(ctx context.Context, table, op, productID string) {
	ev := ports.ChangeEvent{Table: table, Operation: op, RecordID: productID, ProductID: productID, At: uc.now().UTC()}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Msg("publication du changement impossible")
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		Brand:                 p.Brand,
		Category:              p.Category,
		CrateSize:             p.CrateSize,
		ReferenceUnitPrice:    p.ReferenceUnitPrice,
		ReferenceCratePrice:   p.ReferenceCratePrice,
		ReferenceConsignPrice: p.ReferenceConsignPrice,
		IsActive:              p.IsActive,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}
