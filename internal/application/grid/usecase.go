// Package grid gère les grilles tarifaires des fournisseurs: prix par type, stock initial,
// compteur de ventes et import/export XLSX.
package grid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/logger"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// UseCase cas d'usage des grilles fournisseurs.
type UseCase struct {
	grids     repository.SupplierPriceGridRepository
	products  repository.ProductRepository
	runner    GridTxRunner
	codec     GridSheetCodec
	publisher ports.ChangePublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construit le cas d'usage. codec et publisher peuvent être nil.
func NewUseCase(
	grids repository.SupplierPriceGridRepository,
	products repository.ProductRepository,
	runner GridTxRunner,
	codec GridSheetCodec,
	publisher ports.ChangePublisher,
	log *logger.Logger,
) *UseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		grids:     grids,
		products:  products,
		runner:    runner,
		codec:     codec,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// SetClock remplace l'horloge (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Upsert enregistre une nouvelle grille active pour (fournisseur, produit, zone) et
// désactive la précédente dans la même transaction.
func (uc *UseCase) Upsert(ctx context.Context, supplierID string, in dto.UpsertGridRequest) (*dto.GridResponse, error) {
	now := uc.now()
	g, err := uc.buildGrid(supplierID, in, now)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("grid: lire le produit: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: produit %s inactif", domain.ErrInvalidInput, product.ID)
	}

	err = uc.runner.RunGrid(ctx, func(grids repository.SupplierPriceGridRepository) error {
		if _, err := grids.DeactivateOthers(ctx, supplierID, g.ProductID, g.ZoneID, g.ID, now); err != nil {
			return err
		}
		return grids.Create(ctx, g)
	})
	if err != nil {
		return nil, fmt.Errorf("grid: enregistrer: %w", err)
	}

	uc.publish(ctx, "insert", g)
	out := toGridResponse(g)
	return &out, nil
}

func (uc *UseCase) buildGrid(supplierID string, in dto.UpsertGridRequest, now time.Time) (*entity.SupplierPriceGrid, error) {
	if supplierID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice <= 0 || in.CratePrice < 0 || in.ConsignPrice < 0 || in.InitialStock < 0 {
		return nil, fmt.Errorf("%w: prix unitaire > 0, autres prix et stock >= 0", domain.ErrInvalidInput)
	}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: remise entre 0 et 100", domain.ErrInvalidInput)
	}
	moq := in.MinimumOrderQuantity
	if moq == 0 {
		moq = 1
	}
	if moq < 1 {
		return nil, fmt.Errorf("%w: quantité minimale >= 1", domain.ErrInvalidInput)
	}
	from := now
	if in.EffectiveFrom != nil && !in.EffectiveFrom.IsZero() {
		from = *in.EffectiveFrom
	}
	if in.EffectiveTo != nil && !in.EffectiveTo.After(from) {
		return nil, fmt.Errorf("%w: effective_to doit suivre effective_from", domain.ErrInvalidInput)
	}
	return &entity.SupplierPriceGrid{
		ID:                   uuid.New().String(),
		SupplierID:           supplierID,
		SupplierName:         in.SupplierName,
		ProductID:            in.ProductID,
		ZoneID:               in.ZoneID,
		UnitPrice:            in.UnitPrice,
		CratePrice:           in.CratePrice,
		ConsignPrice:         in.ConsignPrice,
		InitialStock:         in.InitialStock,
		IsActive:             true,
		MinimumOrderQuantity: moq,
		DiscountPercentage:   in.DiscountPercentage.Round(2),
		EffectiveFrom:        from,
		EffectiveTo:          in.EffectiveTo,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// RecordSale ajoute qty au compteur de ventes. La survente est permise et signalée
// (stock final négatif), jamais bloquée.
func (uc *UseCase) RecordSale(ctx context.Context, supplierID, gridID string, qty int64) (*dto.GridResponse, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantité vendue > 0", domain.ErrInvalidInput)
	}
	g, err := uc.locked(ctx, supplierID, gridID, func(g *entity.SupplierPriceGrid) error {
		if !g.IsActive {
			return fmt.Errorf("%w: grille inactive", domain.ErrConflict)
		}
		sold, err := money.Add(g.SoldQuantity, qty)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		g.SoldQuantity = sold
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g.IsOversold() {
		uc.log.Warn().Str("grid_id", g.ID).Int64("stock_final", g.StockFinal()).Msg("survente sur une grille fournisseur")
	}
	out := toGridResponse(g)
	return &out, nil
}

// ResetSold remet le compteur de ventes à zéro avec un nouveau stock initial.
func (uc *UseCase) ResetSold(ctx context.Context, supplierID, gridID string, initialStock int64) (*dto.GridResponse, error) {
	if initialStock < 0 {
		return nil, fmt.Errorf("%w: stock initial >= 0", domain.ErrInvalidInput)
	}
	g, err := uc.locked(ctx, supplierID, gridID, func(g *entity.SupplierPriceGrid) error {
		g.SoldQuantity = 0
		g.InitialStock = initialStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("grid_id", g.ID).Int64("initial_stock", initialStock).Msg("compteur de ventes remis à zéro")
	out := toGridResponse(g)
	return &out, nil
}

// Deactivate retire une grille des offres actives.
func (uc *UseCase) Deactivate(ctx context.Context, supplierID, gridID string) error {
	g, err := uc.locked(ctx, supplierID, gridID, func(g *entity.SupplierPriceGrid) error {
		g.IsActive = false
		return nil
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, "update", g)
	return nil
}

// locked relit la grille FOR UPDATE, vérifie le fournisseur, applique fn et écrit.
func (uc *UseCase) locked(ctx context.Context, supplierID, gridID string, fn func(*entity.SupplierPriceGrid) error) (*entity.SupplierPriceGrid, error) {
	var out *entity.SupplierPriceGrid
	err := uc.runner.RunGrid(ctx, func(grids repository.SupplierPriceGridRepository) error {
		g, err := grids.GetForUpdate(ctx, gridID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if g.SupplierID != supplierID {
			return domain.ErrForbidden
		}
		if err := fn(g); err != nil {
			return err
		}
		g.UpdatedAt = uc.now()
		if err := grids.Update(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySupplier grilles d'un fournisseur.
func (uc *UseCase) ListBySupplier(ctx context.Context, supplierID string, activeOnly bool) ([]dto.GridResponse, error) {
	list, err := uc.grids.ListBySupplier(ctx, supplierID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("grid: lister: %w", err)
	}
	out := make([]dto.GridResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toGridResponse(g))
	}
	return out, nil
}

// ExportTemplate classeur pré-rempli: une ligne par produit actif, avec les prix
// actuels du fournisseur quand il a déjà une grille globale active.
func (uc *UseCase) ExportTemplate(ctx context.Context, supplierID string) ([]byte, error) {
	if uc.codec == nil {
		return nil, errors.New("grid: codec XLSX non configuré")
	}
	products, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("grid: lister les produits: %w", err)
	}
	current, err := uc.grids.ListBySupplier(ctx, supplierID, true)
	if err != nil {
		return nil, fmt.Errorf("grid: lister les grilles: %w", err)
	}
	byProduct := make(map[string]*entity.SupplierPriceGrid, len(current))
	for _, g := range current {
		if g.ZoneID == "" {
			byProduct[g.ProductID] = g
		}
	}

	rows := make([]dto.GridSheetRow, 0, len(products))
	for _, p := range products {
		row := dto.GridSheetRow{ProductID: p.ID, ProductName: p.Name, MinimumOrderQuantity: 1, DiscountPercentage: decimal.Zero}
		if g, ok := byProduct[p.ID]; ok {
			row.UnitPrice = g.UnitPrice
			row.CratePrice = g.CratePrice
			row.ConsignPrice = g.ConsignPrice
			row.InitialStock = g.StockFinal()
			row.MinimumOrderQuantity = g.MinimumOrderQuantity
			row.DiscountPercentage = g.DiscountPercentage
		}
		rows = append(rows, row)
	}
	return uc.codec.Encode(rows)
}

// Import lit le classeur et enregistre chaque ligne valide; les lignes en erreur sont
// listées sans interrompre les autres. Lignes sans prix unitaire: ignorées.
func (uc *UseCase) Import(ctx context.Context, supplierID, supplierName string, r io.Reader) (*dto.ImportResultDTO, error) {
	if uc.codec == nil {
		return nil, errors.New("grid: codec XLSX non configuré")
	}
	rows, rowErrs, err := uc.codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: classeur illisible: %v", domain.ErrInvalidInput, err)
	}
	out := &dto.ImportResultDTO{Errors: append(make([]dto.ImportRowError, 0, len(rowErrs)), rowErrs...)}
	for _, row := range rows {
		if row.UnitPrice == 0 {
			continue
		}
		_, err := uc.Upsert(ctx, supplierID, dto.UpsertGridRequest{
			ProductID:            row.ProductID,
			ZoneID:               row.ZoneID,
			SupplierName:         supplierName,
			UnitPrice:            row.UnitPrice,
			CratePrice:           row.CratePrice,
			ConsignPrice:         row.ConsignPrice,
			InitialStock:         row.InitialStock,
			MinimumOrderQuantity: row.MinimumOrderQuantity,
			DiscountPercentage:   row.DiscountPercentage,
		})
		if err != nil {
			out.Errors = append(out.Errors, dto.ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		out.Imported++
	}
	uc.log.Info().Str("supplier_id", supplierID).Int("imported", out.Imported).Int("errors", len(out.Errors)).Msg("import de grilles")
	return out, nil
}

func (uc *UseCase) publish(ctx context.Context, op string, g *entity.SupplierPriceGrid) {
	ev := ports.ChangeEvent{
		Table:     ports.TableSupplierPriceGrid,
		Operation: op,
		RecordID:  g.ID,
		ProductID: g.ProductID,
		ZoneID:    g.ZoneID,
		At:        uc.now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("grid_id", g.ID).Msg("publication du changement impossible")
	}
}

func toGridResponse(g *entity.SupplierPriceGrid) dto.GridResponse {
	return dto.GridResponse{
		ID:                   g.ID,
		SupplierID:           g.SupplierID,
		SupplierName:         g.SupplierName,
		ProductID:            g.ProductID,
		ZoneID:               g.ZoneID,
		UnitPrice:            g.UnitPrice,
		CratePrice:           g.CratePrice,
		ConsignPrice:         g.ConsignPrice,
		InitialStock:         g.InitialStock,
		SoldQuantity:         g.SoldQuantity,
		StockFinal:           g.StockFinal(),
		Oversold:             g.IsOversold(),
		IsActive:             g.IsActive,
		MinimumOrderQuantity: g.MinimumOrderQuantity,
		DiscountPercentage:   g.DiscountPercentage,
		EffectiveFrom:        g.EffectiveFrom,
		EffectiveTo:          g.EffectiveTo,
		UpdatedAt:            g.UpdatedAt,
	}
}
