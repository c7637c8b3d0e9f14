package repository

import (
	"context"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// ProductFilter critères de listage du catalogue.
type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository port de persistance du catalogue (prix de référence inclus).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListActive renvoie tous les produits actifs (recalcul des analyses, rapport de marché).
	ListActive(ctx context.Context) ([]*entity.Product, error)
	UpdateReferencePrices(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, id string, at time.Time) error
}
