package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravito-ci/ravito-api/internal/application/credit"
	"github.com/ravito-ci/ravito-api/internal/application/grid"
	"github.com/ravito-ci/ravito-api/internal/application/pricing"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
)

var (
	_ credit.CreditTxRunner     = (*TxRunner)(nil)
	_ pricing.AnalyticsTxRunner = (*TxRunner)(nil)
	_ grid.GridTxRunner         = (*TxRunner)(nil)
)

// TxRunner exécute des callbacks dans une transaction PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construit le runner avec le pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run ouvre la transaction, exécute fn puis Commit; Rollback sur erreur.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCredit transaction du carnet: client (FOR UPDATE) et journal dans la même unité.
func (r *TxRunner) RunCredit(ctx context.Context, fn func(
	customers repository.CreditCustomerRepository,
	transactions repository.CreditTransactionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCreditCustomerRepository(tx), NewCreditTransactionRepository(tx))
	})
}

// RunAnalytics remplacement atomique des instantanés courants.
func (r *TxRunner) RunAnalytics(ctx context.Context, fn func(analytics repository.PriceAnalyticsRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewPriceAnalyticsRepository(tx))
	})
}

// RunGrid transaction des grilles fournisseurs.
func (r *TxRunner) RunGrid(ctx context.Context, fn func(grids repository.SupplierPriceGridRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewSupplierPriceGridRepository(tx))
	})
}
