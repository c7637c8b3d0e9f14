package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// RecordConsumption enregistre une consommation à crédit. Refusée si le client n'est pas
// actif ou si le nouveau solde dépasse le plafond.
func (uc *UseCase) RecordConsumption(ctx context.Context, organizationID, userID, customerID string, in dto.RecordConsumptionRequest) (*dto.CreditOperationResponse, error) {
	tx := uc.newTransaction(organizationID, userID, customerID, entity.CreditTxConsumption, in.Amount, in.Notes, in.TransactionDate)
	for _, it := range in.Items {
		tx.Items = append(tx.Items, entity.CreditTransactionItem{
			ID:            uuid.New().String(),
			TransactionID: tx.ID,
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.Subtotal,
		})
	}
	return uc.record(ctx, organizationID, customerID, tx)
}

// RecordPayment enregistre un remboursement, accepté quel que soit le statut du client.
// Un paiement supérieur au solde dû est refusé.
func (uc *UseCase) RecordPayment(ctx context.Context, organizationID, userID, customerID string, in dto.RecordPaymentRequest) (*dto.CreditOperationResponse, error) {
	tx := uc.newTransaction(organizationID, userID, customerID, entity.CreditTxPayment, in.Amount, in.Notes, in.TransactionDate)
	tx.PaymentMethod = in.PaymentMethod
	return uc.record(ctx, organizationID, customerID, tx)
}

func (uc *UseCase) newTransaction(organizationID, userID, customerID, kind string, amount int64, notes string, date *time.Time) entity.CreditTransaction {
	now := uc.now()
	when := now
	if date != nil && !date.IsZero() {
		when = *date
	}
	return entity.CreditTransaction{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		OrganizationID:  organizationID,
		TransactionType: kind,
		Amount:          amount,
		Notes:           notes,
		TransactionDate: when,
		CreatedBy:       userID,
		CreatedAt:       now,
	}
}

func (uc *UseCase) record(ctx context.Context, organizationID, customerID string, tx entity.CreditTransaction) (*dto.CreditOperationResponse, error) {
	if tx.Amount <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTransactionAmount, tx.Amount)
	}
	if tx.TransactionDate.After(uc.now().Add(5 * time.Minute)) {
		return nil, fmt.Errorf("%w: date de transaction dans le futur", domain.ErrInvalidInput)
	}

	updated, written, err := uc.mutate(ctx, organizationID, customerID, func(c entity.CreditCustomer) (entity.CreditCustomer, *entity.CreditTransaction, error) {
		next, err := domaincredit.ApplyTransaction(c, tx)
		if err != nil {
			return c, nil, err
		}
		next.UpdatedAt = uc.now()
		return next, &tx, nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("organization_id", organizationID).
		Str("customer_id", customerID).
		Str("type", tx.TransactionType).
		Int64("amount", tx.Amount).
		Int64("balance", updated.CurrentBalance).
		Msg("transaction du carnet enregistrée")

	return &dto.CreditOperationResponse{
		Transaction: toTransactionResponse(written),
		Customer:    uc.toCustomerResponse(updated),
	}, nil
}

// Freeze gèle un client actif (freeze_full, reduce_limit) ou le désactive (disable).
func (uc *UseCase) Freeze(ctx context.Context, organizationID, customerID string, in dto.FreezeRequest) (*dto.CreditCustomerResponse, error) {
	policy := domaincredit.FreezePolicy(in.Policy)
	return uc.transition(ctx, organizationID, customerID, "gel", func(c entity.CreditCustomer) (entity.CreditCustomer, error) {
		return domaincredit.Freeze(c, policy, in.NewLimit, in.Reason, uc.now())
	})
}

// Unfreeze dégèle un client gelé, avec un nouveau plafond optionnel (0 = sans plafond).
func (uc *UseCase) Unfreeze(ctx context.Context, organizationID, customerID string, in dto.UnfreezeRequest) (*dto.CreditCustomerResponse, error) {
	return uc.transition(ctx, organizationID, customerID, "dégel", func(c entity.CreditCustomer) (entity.CreditCustomer, error) {
		return domaincredit.Unfreeze(c, in.NewLimit, uc.now())
	})
}

// Disable désactive un client actif ou gelé.
func (uc *UseCase) Disable(ctx context.Context, organizationID, customerID string, in dto.DisableRequest) (*dto.CreditCustomerResponse, error) {
	return uc.transition(ctx, organizationID, customerID, "désactivation", func(c entity.CreditCustomer) (entity.CreditCustomer, error) {
		return domaincredit.Disable(c, in.Reason, uc.now())
	})
}

// Reactivate réactivation administrative d'un client désactivé.
func (uc *UseCase) Reactivate(ctx context.Context, organizationID, customerID string, in dto.UnfreezeRequest) (*dto.CreditCustomerResponse, error) {
	return uc.transition(ctx, organizationID, customerID, "réactivation", func(c entity.CreditCustomer) (entity.CreditCustomer, error) {
		return domaincredit.Reactivate(c, in.NewLimit, uc.now())
	})
}

func (uc *UseCase) transition(ctx context.Context, organizationID, customerID, label string, fn func(entity.CreditCustomer) (entity.CreditCustomer, error)) (*dto.CreditCustomerResponse, error) {
	updated, _, err := uc.mutate(ctx, organizationID, customerID, func(c entity.CreditCustomer) (entity.CreditCustomer, *entity.CreditTransaction, error) {
		next, err := fn(c)
		return next, nil, err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("organization_id", organizationID).
		Str("customer_id", customerID).
		Str("status", updated.Status).
		Int64("credit_limit", updated.CreditLimit).
		Msgf("%s du client", label)
	out := uc.toCustomerResponse(updated)
	return &out, nil
}

// ListTransactions historique du client, du plus récent au plus ancien.
func (uc *UseCase) ListTransactions(ctx context.Context, organizationID, customerID string, page dto.PageRequest) ([]dto.CreditTransactionResponse, error) {
	if _, err := uc.load(ctx, organizationID, customerID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.transactions.ListByCustomer(ctx, customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("credit: lister les transactions: %w", err)
	}
	out := make([]dto.CreditTransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	return out, nil
}
