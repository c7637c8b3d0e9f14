package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.ZoneRepository = (*ZoneRepo)(nil)

// ZoneRepo zones de livraison.
type ZoneRepo struct {
	q Querier
}

// NewZoneRepository construit l'adaptateur.
func NewZoneRepository(q Querier) *ZoneRepo {
	return &ZoneRepo{q: q}
}

func (r *ZoneRepo) Create(ctx context.Context, z *entity.Zone) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO zones (id, name, city, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		z.ID, z.Name, z.City, z.IsActive, z.CreatedAt, z.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*entity.Zone, error) {
	var z entity.Zone
	err := r.q.QueryRow(ctx, `SELECT id, name, city, is_active, created_at, updated_at FROM zones WHERE id = $1`, id).
		Scan(&z.ID, &z.Name, &z.City, &z.IsActive, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return &z, nil
}

func (r *ZoneRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Zone, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, city, is_active, created_at, updated_at
		  FROM zones WHERE (NOT $1 OR is_active) ORDER BY city, name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Zone
	for rows.Next() {
		var z entity.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.City, &z.IsActive, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		list = append(list, &z)
	}
	return list, rows.Err()
}
