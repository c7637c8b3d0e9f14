package pricing

import (
	"context"
	"errors"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

// Invalidator réagit aux notifications de changement: invalider puis relire.
// Le contenu de l'événement ne sert qu'à savoir quoi recalculer.
type Invalidator struct {
	analytics *AnalyticsUseCase
	log       *logger.Logger
}

// NewInvalidator construit le consommateur de notifications.
func NewInvalidator(analytics *AnalyticsUseCase, log *logger.Logger) *Invalidator {
	if log == nil {
		log = logger.Nop()
	}
	return &Invalidator{analytics: analytics, log: log}
}

// Handle recalcule les instantanés du produit touché. Tables non suivies et produits
// disparus entre-temps: ignorés.
func (i *Invalidator) Handle(ctx context.Context, ev ports.ChangeEvent) error {
	err := i.handle(ctx, ev)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (i *Invalidator) handle(ctx context.Context, ev ports.ChangeEvent) error {
	switch ev.Table {
	case ports.TableProducts, ports.TableReferencePrices:
		productID := ev.ProductID
		if productID == "" {
			productID = ev.RecordID
		}
		if productID == "" {
			return nil
		}
		i.log.Debug().Str("table", ev.Table).Str("product_id", productID).Msg("invalidation des instantanés")
		return i.analytics.RecomputeProduct(ctx, productID)

	case ports.TableSupplierPriceGrid:
		if ev.ProductID == "" {
			return nil
		}
		i.log.Debug().Str("table", ev.Table).Str("product_id", ev.ProductID).Str("zone_id", ev.ZoneID).Msg("invalidation des instantanés")
		if _, err := i.analytics.Recompute(ctx, ev.ProductID, "", ""); err != nil {
			return err
		}
		if ev.ZoneID != "" {
			_, err := i.analytics.Recompute(ctx, ev.ProductID, ev.ZoneID, "")
			return err
		}
		return nil
	}
	return nil
}
