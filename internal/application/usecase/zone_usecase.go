package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

// ZoneUseCase zones de livraison.
type ZoneUseCase struct {
	repo repository.ZoneRepository
}

// NewZoneUseCase construit le cas d'usage.
func NewZoneUseCase(repo repository.ZoneRepository) *ZoneUseCase {
	return &ZoneUseCase{repo: repo}
}

// Create ajoute une zone active.
func (uc *ZoneUseCase) Create(ctx context.Context, in dto.CreateZoneRequest) (*dto.ZoneResponse, error) {
	name, city := strings.TrimSpace(in.Name), strings.TrimSpace(in.City)
	if name == "" || city == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	z := &entity.Zone{
		ID:        uuid.New().String(),
		Name:      name,
		City:      city,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, z); err != nil {
		return nil, err
	}
	return toZoneResponse(z), nil
}

// List zones (actives seulement si activeOnly).
func (uc *ZoneUseCase) List(ctx context.Context, activeOnly bool) ([]dto.ZoneResponse, error) {
	list, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ZoneResponse, 0, len(list))
	for _, z := range list {
		out = append(out, *toZoneResponse(z))
	}
	return out, nil
}

func toZoneResponse(z *entity.Zone) *dto.ZoneResponse {
	return &dto.ZoneResponse{ID: z.ID, Name: z.Name, City: z.City, IsActive: z.IsActive}
}
