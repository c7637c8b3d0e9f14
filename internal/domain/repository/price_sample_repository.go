package repository

import (
	"context"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// PriceSampleRepository lecture des prix effectivement appliqués sur les commandes livrées.
// Les commandes appartiennent à la marketplace; ce port est en lecture seule.
type PriceSampleRepository interface {
	ListSamples(ctx context.Context, productID string, from, to time.Time) ([]entity.PriceSample, error)
	// CountOrders nombre de commandes livrées contenant le produit dans la zone. zoneID vide = toutes zones.
	CountOrders(ctx context.Context, productID, zoneID string, from, to time.Time) (int, error)
}
