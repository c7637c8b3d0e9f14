package usecase

import (
	"context"
	"fmt"

	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// ModuleService vérifie quels modules une organisation a activés (carnet de crédit, prix).
// C'est le seul point de l'application qui connaît la logique d'activation.
type ModuleService struct {
	orgRepo repository.OrganizationRepository
}

// NewModuleService construit le service.
func NewModuleService(orgRepo repository.OrganizationRepository) *ModuleService {
	return &ModuleService{orgRepo: orgRepo}
}

// HasActiveModule indique si l'organisation a le module actif et non échu.
// false sans erreur si le module n'est pas souscrit; erreur seulement sur panne d'infrastructure.
func (s *ModuleService) HasActiveModule(ctx context.Context, orgID, moduleName string) (bool, error) {
	if orgID == "" || moduleName == "" {
		return false, fmt.Errorf("module: orgID et moduleName sont obligatoires")
	}
	return s.orgRepo.HasActiveModule(ctx, orgID, moduleName)
}
