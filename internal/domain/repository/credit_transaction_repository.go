package repository

import (
	"context"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// CreditTransactionRepository journal des transactions du carnet: ajout seul.
type CreditTransactionRepository interface {
	// Create insère la transaction et ses lignes.
	Create(ctx context.Context, tx *entity.CreditTransaction) error
	// ListByCustomer du plus récent au plus ancien, lignes incluses.
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.CreditTransaction, error)
	// History ordre chronologique; bornes nil = sans borne. Sert au rejeu et aux relevés.
	History(ctx context.Context, customerID string, from, to *time.Time) ([]entity.CreditTransaction, error)
}
