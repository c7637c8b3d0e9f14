package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.OrganizationRepository = (*OrganizationRepo)(nil)

// OrganizationRepo organisations clientes et leurs modules.
type OrganizationRepo struct {
	q Querier
}

// NewOrganizationRepository construit l'adaptateur.
func NewOrganizationRepository(q Querier) *OrganizationRepo {
	return &OrganizationRepo{q: q}
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	var o entity.Organization
	var phone, city *string
	err := r.q.QueryRow(ctx, `
		SELECT id, name, phone, city, status, created_at, updated_at
		  FROM organizations WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &phone, &city, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	o.Phone, o.City = emptyIfNull(phone), emptyIfNull(city)
	return &o, nil
}

// HasActiveModule module actif et non échu; réponse directe via l'index (organization_id, module_name).
func (r *OrganizationRepo) HasActiveModule(ctx context.Context, organizationID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM organization_modules
			 WHERE organization_id = $1
			   AND module_name     = $2
			   AND is_active       = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, organizationID, moduleName).Scan(&active); err != nil {
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}
