package repository

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// PriceAnalyticsRepository port de persistance des instantanés d'analyse de prix.
type PriceAnalyticsRepository interface {
	// MarkNotCurrent passe à is_current=false les instantanés courants de (produit, zone).
	MarkNotCurrent(ctx context.Context, productID, zoneID string) error
	Insert(ctx context.Context, snapshot *entity.PriceAnalytics) error
	// GetCurrent renvoie les instantanés courants de (produit, zone), un par type de prix.
	GetCurrent(ctx context.Context, productID, zoneID string) ([]*entity.PriceAnalytics, error)
}
