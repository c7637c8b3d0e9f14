package repository

import (
	"context"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// OrganizationRepository port de lecture des organisations et de leurs modules.
// Les organisations sont créées par le fournisseur d'authentification.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	// HasActiveModule indique si le module est actif et non expiré pour l'organisation.
	HasActiveModule(ctx context.Context, organizationID, moduleName string) (bool, error)
}
