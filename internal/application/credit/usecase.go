// Package credit orchestre le carnet de crédit: clients, consommations, paiements,
// transitions d'état, alertes et relevés. Toute opération qui modifie un solde ou un
// statut passe par mutate: verrou par client, puis transaction avec SELECT FOR UPDATE.
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/internal/domain/repository"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

// UseCase cas d'usage du carnet de crédit.
type UseCase struct {
	customers    repository.CreditCustomerRepository
	transactions repository.CreditTransactionRepository
	orgs         repository.OrganizationRepository
	runner       CreditTxRunner
	locker       ports.Locker
	publisher    ports.ChangePublisher
	pdf          StatementPDFGenerator
	policy       domaincredit.AlertPolicy
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construit le cas d'usage. publisher et pdf peuvent être nil.
func NewUseCase(
	customers repository.CreditCustomerRepository,
	transactions repository.CreditTransactionRepository,
	orgs repository.OrganizationRepository,
	runner CreditTxRunner,
	locker ports.Locker,
	publisher ports.ChangePublisher,
	pdf StatementPDFGenerator,
	policy domaincredit.AlertPolicy,
	log *logger.Logger,
) *UseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		customers:    customers,
		transactions: transactions,
		orgs:         orgs,
		runner:       runner,
		locker:       locker,
		publisher:    publisher,
		pdf:          pdf,
		policy:       policy,
		log:          log,
		now:          time.Now,
	}
}

// SetClock remplace l'horloge (tests).
func (uc *UseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func lockKey(customerID string) string {
	return "credit:customer:" + customerID
}

// mutation transforme le client verrouillé; tx non nil est ajoutée au journal.
type mutation func(c entity.CreditCustomer) (next entity.CreditCustomer, tx *entity.CreditTransaction, err error)

// mutate sérialise une modification du client: verrou par client, transaction,
// relecture FOR UPDATE, application pure, ajout au journal, écriture du client.
func (uc *UseCase) mutate(ctx context.Context, organizationID, customerID string, fn mutation) (*entity.CreditCustomer, *entity.CreditTransaction, error) {
	release, err := uc.locker.Acquire(ctx, lockKey(customerID))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var (
		updated entity.CreditCustomer
		written *entity.CreditTransaction
	)
	err = uc.runner.RunCredit(ctx, func(customers repository.CreditCustomerRepository, transactions repository.CreditTransactionRepository) error {
		current, err := customers.GetForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("credit: lire le client: %w", err)
		}
		if err := checkOwnership(current, organizationID); err != nil {
			return err
		}

		next, tx, err := fn(*current)
		if err != nil {
			return err
		}
		if err := domaincredit.CheckInvariant(next); err != nil {
			return err
		}
		if tx != nil {
			if err := transactions.Create(ctx, tx); err != nil {
				return fmt.Errorf("credit: enregistrer la transaction: %w", err)
			}
		}
		if err := customers.Update(ctx, &next); err != nil {
			return fmt.Errorf("credit: mettre à jour le client: %w", err)
		}
		updated, written = next, tx
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	uc.notify(ctx, customerID)
	return &updated, written, nil
}

func (uc *UseCase) notify(ctx context.Context, customerID string) {
	ev := ports.ChangeEvent{
		Table:     ports.TableCreditCustomers,
		Operation: "update",
		RecordID:  customerID,
		At:        uc.now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("customer_id", customerID).Msg("publication du changement impossible")
	}
}

// checkOwnership client absent ou supprimé -> ErrNotFound; autre organisation -> ErrForbidden.
func checkOwnership(c *entity.CreditCustomer, organizationID string) error {
	if c == nil || !c.IsActive {
		return domain.ErrNotFound
	}
	if c.OrganizationID != organizationID {
		return domain.ErrForbidden
	}
	return nil
}

// load lecture sans verrou avec contrôle d'appartenance.
func (uc *UseCase) load(ctx context.Context, organizationID, customerID string) (*entity.CreditCustomer, error) {
	c, err := uc.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("credit: lire le client: %w", err)
	}
	if err := checkOwnership(c, organizationID); err != nil {
		return nil, err
	}
	return c, nil
}
