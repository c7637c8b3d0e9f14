package repository

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// ZoneRepository port de persistance des zones de livraison.
type ZoneRepository interface {
	Create(ctx context.Context, zone *entity.Zone) error
	GetByID(ctx context.Context, id string) (*entity.Zone, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Zone, error)
}
