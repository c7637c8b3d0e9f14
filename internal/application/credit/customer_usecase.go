package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/phone"
)

// CreateCustomer ajoute un client au carnet de l'organisation, statut actif et solde nul.
// Téléphone normalisé en E.164; un même numéro ne peut figurer qu'une fois par organisation.
func (uc *UseCase) CreateCustomer(ctx context.Context, organizationID string, in dto.CreateCreditCustomerRequest) (*dto.CreditCustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CreditLimit < 0 {
		return nil, domain.ErrInvalidInput
	}
	normalized, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	if normalized != "" {
		existing, err := uc.customers.GetByPhone(ctx, organizationID, normalized)
		if err != nil {
			return nil, fmt.Errorf("credit: vérifier le téléphone: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: téléphone %s déjà enregistré", domain.ErrDuplicate, normalized)
		}
	}

	now := uc.now()
	c := &entity.CreditCustomer{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           name,
		Phone:          normalized,
		Address:        strings.TrimSpace(in.Address),
		CreditLimit:    in.CreditLimit,
		Status:         entity.CreditStatusActive,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.log.Info().Str("organization_id", organizationID).Str("customer_id", c.ID).Msg("client du carnet créé")
	out := uc.toCustomerResponse(c)
	return &out, nil
}

// UpdateCustomer modifie les coordonnées (nom, téléphone, adresse). Soldes, plafond et
// statut ne passent que par les opérations dédiées.
func (uc *UseCase) UpdateCustomer(ctx context.Context, organizationID, customerID string, in dto.UpdateCreditCustomerRequest) (*dto.CreditCustomerResponse, error) {
	var normalized *string
	if in.Phone != nil {
		p, err := normalizePhone(*in.Phone)
		if err != nil {
			return nil, err
		}
		if p != "" {
			existing, err := uc.customers.GetByPhone(ctx, organizationID, p)
			if err != nil {
				return nil, fmt.Errorf("credit: vérifier le téléphone: %w", err)
			}
			if existing != nil && existing.ID != customerID {
				return nil, fmt.Errorf("%w: téléphone %s déjà enregistré", domain.ErrDuplicate, p)
			}
		}
		normalized = &p
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}

	updated, _, err := uc.mutate(ctx, organizationID, customerID, func(c entity.CreditCustomer) (entity.CreditCustomer, *entity.CreditTransaction, error) {
		if in.Name != nil {
			c.Name = strings.TrimSpace(*in.Name)
		}
		if normalized != nil {
			c.Phone = *normalized
		}
		if in.Address != nil {
			c.Address = strings.TrimSpace(*in.Address)
		}
		c.UpdatedAt = uc.now()
		return c, nil, nil
	})
	if err != nil {
		return nil, err
	}
	out := uc.toCustomerResponse(updated)
	return &out, nil
}

// DeleteCustomer suppression logique: le client disparaît des listes, l'historique reste.
func (uc *UseCase) DeleteCustomer(ctx context.Context, organizationID, customerID string) error {
	_, _, err := uc.mutate(ctx, organizationID, customerID, func(c entity.CreditCustomer) (entity.CreditCustomer, *entity.CreditTransaction, error) {
		return domaincredit.SoftDelete(c, uc.now()), nil, nil
	})
	if err == nil {
		uc.log.Info().Str("organization_id", organizationID).Str("customer_id", customerID).Msg("client du carnet supprimé")
	}
	return err
}

// GetCustomer détail d'un client avec son niveau d'alerte courant.
func (uc *UseCase) GetCustomer(ctx context.Context, organizationID, customerID string) (*dto.CreditCustomerResponse, error) {
	c, err := uc.load(ctx, organizationID, customerID)
	if err != nil {
		return nil, err
	}
	out := uc.toCustomerResponse(c)
	return &out, nil
}

// ListCustomers liste paginée, filtrable par statut et par nom/téléphone.
func (uc *UseCase) ListCustomers(ctx context.Context, organizationID string, in dto.CreditCustomerListRequest, page dto.PageRequest) (*dto.CreditCustomerListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.customers.List(ctx, organizationID, repository.CreditCustomerFilter{
		Status: in.Status,
		Search: strings.TrimSpace(in.Search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("credit: lister les clients: %w", err)
	}
	items := make([]dto.CreditCustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, uc.toCustomerResponse(c))
	}
	return &dto.CreditCustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func normalizePhone(raw string) (string, error) {
	p, err := phone.Normalize(raw, phone.DefaultRegion)
	if errors.Is(err, phone.ErrInvalidPhone) {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return p, err
}
