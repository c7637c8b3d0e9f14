package repository

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// CreditCustomerFilter critères de listage du carnet.
type CreditCustomerFilter struct {
	Status string // vide = tous
	Search string // nom ou téléphone (ILIKE)
	Limit  int
	Offset int
}

// CreditCustomerRepository port de persistance des clients du carnet de crédit.
// Les clients supprimés (is_active = false) sont exclus des listes mais restent lisibles par ID.
type CreditCustomerRepository interface {
	Create(ctx context.Context, customer *entity.CreditCustomer) error
	GetByID(ctx context.Context, id string) (*entity.CreditCustomer, error)
	// GetForUpdate verrouille la ligne (SELECT FOR UPDATE); à appeler dans une transaction.
	GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error)
	GetByPhone(ctx context.Context, organizationID, phone string) (*entity.CreditCustomer, error)
	// Update écrit tous les champs modifiables (contact, soldes, statut, plafond, suppression).
	Update(ctx context.Context, customer *entity.CreditCustomer) error
	List(ctx context.Context, organizationID string, filter CreditCustomerFilter) ([]*entity.CreditCustomer, int, error)
	// ListAll renvoie tous les clients non supprimés de l'organisation (alertes, synthèse).
	ListAll(ctx context.Context, organizationID string) ([]entity.CreditCustomer, error)
}
