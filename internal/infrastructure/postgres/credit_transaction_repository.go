package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var _ repository.CreditTransactionRepository = (*CreditTransactionRepo)(nil)

// CreditTransactionRepo journal du carnet: INSERT et SELECT uniquement.
type CreditTransactionRepo struct {
	q Querier
}

// NewCreditTransactionRepository construit l'adaptateur. Passer le pool ou une tx (Querier).
func NewCreditTransactionRepository(q Querier) *CreditTransactionRepo {
	return &CreditTransactionRepo{q: q}
}

// Create insère l'en-tête puis les lignes; à appeler dans la transaction qui met à jour le client.
func (r *CreditTransactionRepo) Create(ctx context.Context, t *entity.CreditTransaction) error {
	var createdBy *string
	if t.CreatedBy != "" {
		createdBy = &t.CreatedBy
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO credit_transactions (id, customer_id, organization_id, transaction_type, amount,
			payment_method, notes, transaction_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.CustomerID, t.OrganizationID, t.TransactionType, t.Amount,
		nullIfEmpty(t.PaymentMethod), t.Notes, t.TransactionDate, createdBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit transaction: %w", err)
	}

	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransactionID = t.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO credit_transaction_items (id, transaction_id, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.TransactionID, nullIfEmpty(it.ProductID), it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert credit transaction item: %w", err)
		}
	}
	return nil
}

// ListByCustomer du plus récent au plus ancien.
func (r *CreditTransactionRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.CreditTransaction, error) {
	list, err := r.query(ctx, `
		SELECT id, customer_id, organization_id, transaction_type, amount, payment_method, notes,
		       transaction_date, created_by::text, created_at
		  FROM credit_transactions
		 WHERE customer_id = $1
		 ORDER BY transaction_date DESC, created_at DESC
		 LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	out := make([]*entity.CreditTransaction, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out, nil
}

// History ordre chronologique (date de transaction puis d'écriture) entre from et to inclus.
func (r *CreditTransactionRepo) History(ctx context.Context, customerID string, from, to *time.Time) ([]entity.CreditTransaction, error) {
	list, err := r.query(ctx, `
		SELECT id, customer_id, organization_id, transaction_type, amount, payment_method, notes,
		       transaction_date, created_by::text, created_at
		  FROM credit_transactions
		 WHERE customer_id = $1
		   AND ($2::timestamptz IS NULL OR transaction_date >= $2)
		   AND ($3::timestamptz IS NULL OR transaction_date <= $3)
		 ORDER BY transaction_date, created_at`, customerID, from, to)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CreditTransactionRepo) query(ctx context.Context, sql string, args ...any) ([]entity.CreditTransaction, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit transactions: %w", err)
	}
	defer rows.Close()

	var list []entity.CreditTransaction
	for rows.Next() {
		var t entity.CreditTransaction
		var method, createdBy *string
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.OrganizationID, &t.TransactionType, &t.Amount, &method,
			&t.Notes, &t.TransactionDate, &createdBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit transaction: %w", err)
		}
		t.PaymentMethod = emptyIfNull(method)
		t.CreatedBy = emptyIfNull(createdBy)
		list = append(list, t)
	}
	return list, rows.Err()
}

// attachItems charge les lignes des consommations en une requête.
func (r *CreditTransactionRepo) attachItems(ctx context.Context, list []entity.CreditTransaction) error {
	ids := make([]string, 0, len(list))
	index := make(map[string]int, len(list))
	for i, t := range list {
		if t.TransactionType == entity.CreditTxConsumption {
			ids = append(ids, t.ID)
			index[t.ID] = i
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, product_id::text, product_name, quantity, unit_price, subtotal
		  FROM credit_transaction_items
		 WHERE transaction_id = ANY($1::uuid[])
		 ORDER BY transaction_id, product_name`, ids)
	if err != nil {
		return fmt.Errorf("list credit transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.CreditTransactionItem
		var productID *string
		if err := rows.Scan(&it.ID, &it.TransactionID, &productID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan credit transaction item: %w", err)
		}
		it.ProductID = emptyIfNull(productID)
		i := index[it.TransactionID]
		list[i].Items = append(list[i].Items, it)
	}
	return rows.Err()
}
