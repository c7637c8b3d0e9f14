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

var _ repository.CreditCustomerRepository = (*CreditCustomerRepo)(nil)

const creditCustomerColumns = `id, organization_id, name, phone, address, credit_limit, current_balance,
	total_credited, total_paid, status, last_payment_date, freeze_reason, is_active, created_at, updated_at`

// CreditCustomerRepo clients du carnet de crédit (pool ou tx).
type CreditCustomerRepo struct {
	q Querier
}

// NewCreditCustomerRepository construit l'adaptateur. Passer le pool ou une tx (Querier).
func NewCreditCustomerRepository(q Querier) *CreditCustomerRepo {
	return &CreditCustomerRepo{q: q}
}

func (r *CreditCustomerRepo) Create(ctx context.Context, c *entity.CreditCustomer) error {
	query := `INSERT INTO credit_customers (` + creditCustomerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.OrganizationID, c.Name, nullIfEmpty(c.Phone), c.Address, c.CreditLimit, c.CurrentBalance,
		c.TotalCredited, c.TotalPaid, c.Status, c.LastPaymentDate, c.FreezeReason, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit customer: %w", err)
	}
	return nil
}

// GetByID lit aussi les clients supprimés (historique).
func (r *CreditCustomerRepo) GetByID(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.getOne(ctx, `SELECT `+creditCustomerColumns+` FROM credit_customers WHERE id = $1`, id)
}

// GetForUpdate verrou de ligne jusqu'à la fin de la transaction courante.
func (r *CreditCustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.getOne(ctx, `SELECT `+creditCustomerColumns+` FROM credit_customers WHERE id = $1 FOR UPDATE`, id)
}

// GetByPhone client non supprimé de l'organisation portant ce numéro.
func (r *CreditCustomerRepo) GetByPhone(ctx context.Context, organizationID, phone string) (*entity.CreditCustomer, error) {
	return r.getOne(ctx, `SELECT `+creditCustomerColumns+` FROM credit_customers
		WHERE organization_id = $1 AND phone = $2 AND is_active`, organizationID, phone)
}

func (r *CreditCustomerRepo) getOne(ctx context.Context, query string, args ...any) (*entity.CreditCustomer, error) {
	c, err := scanCreditCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit customer: %w", err)
	}
	return c, nil
}

// Update écrit l'état complet; la contrainte CHECK de la table revérifie l'invariant des soldes.
func (r *CreditCustomerRepo) Update(ctx context.Context, c *entity.CreditCustomer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE credit_customers
		   SET name = $2, phone = $3, address = $4, credit_limit = $5, current_balance = $6,
		       total_credited = $7, total_paid = $8, status = $9, last_payment_date = $10,
		       freeze_reason = $11, is_active = $12, updated_at = $13
		 WHERE id = $1`,
		c.ID, c.Name, nullIfEmpty(c.Phone), c.Address, c.CreditLimit, c.CurrentBalance,
		c.TotalCredited, c.TotalPaid, c.Status, c.LastPaymentDate,
		c.FreezeReason, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update credit customer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List page de clients non supprimés et total hors pagination.
func (r *CreditCustomerRepo) List(ctx context.Context, organizationID string, f repository.CreditCustomerFilter) ([]*entity.CreditCustomer, int, error) {
	query := `SELECT ` + creditCustomerColumns + `, COUNT(*) OVER() AS total
		FROM credit_customers
		WHERE organization_id = $1 AND is_active
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR phone ILIKE '%' || $3 || '%')
		ORDER BY current_balance DESC, name
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, organizationID, f.Status, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list credit customers: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.CreditCustomer
		total int
	)
	for rows.Next() {
		var c entity.CreditCustomer
		var phone *string
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &phone, &c.Address, &c.CreditLimit, &c.CurrentBalance,
			&c.TotalCredited, &c.TotalPaid, &c.Status, &c.LastPaymentDate, &c.FreezeReason, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan credit customer: %w", err)
		}
		c.Phone = emptyIfNull(phone)
		list = append(list, &c)
	}
	return list, total, rows.Err()
}

func (r *CreditCustomerRepo) ListAll(ctx context.Context, organizationID string) ([]entity.CreditCustomer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+creditCustomerColumns+` FROM credit_customers
		WHERE organization_id = $1 AND is_active ORDER BY name`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list all credit customers: %w", err)
	}
	defer rows.Close()

	var list []entity.CreditCustomer
	for rows.Next() {
		c, err := scanCreditCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit customer: %w", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func scanCreditCustomer(row pgx.Row) (*entity.CreditCustomer, error) {
	var c entity.CreditCustomer
	var phone *string
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &phone, &c.Address, &c.CreditLimit, &c.CurrentBalance,
		&c.TotalCredited, &c.TotalPaid, &c.Status, &c.LastPaymentDate, &c.FreezeReason, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = emptyIfNull(phone)
	return &c, nil
}
