package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/dto"
	"github.com/ravito-ci/ravito-api/internal/domain"
	domaincredit "github.com/ravito-ci/ravito-api/internal/domain/credit"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

// ListAlerts clients en retard de paiement: critiques d'abord, puis par ancienneté.
// Les alertes sont dérivées à la lecture, jamais stockées.
func (uc *UseCase) ListAlerts(ctx context.Context, organizationID string) ([]dto.CreditAlertDTO, error) {
	customers, err := uc.customers.ListAll(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("credit: lister les clients: %w", err)
	}
	alerts := uc.policy.ClassifyAll(customers, uc.now())
	out := make([]dto.CreditAlertDTO, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.CreditAlertDTO{
			ID:               a.ID,
			Name:             a.Name,
			Phone:            a.Phone,
			CurrentBalance:   a.CurrentBalance,
			DaysSincePayment: a.DaysSincePayment,
			AlertLevel:       a.AlertLevel,
			Status:           a.Status,
		})
	}
	return out, nil
}

// Summary synthèse du carnet: clients par statut, encours, alertes.
func (uc *UseCase) Summary(ctx context.Context, organizationID string) (*dto.CreditSummaryDTO, error) {
	customers, err := uc.customers.ListAll(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("credit: lister les clients: %w", err)
	}
	now := uc.now()
	out := &dto.CreditSummaryDTO{
		TotalCustomers: len(customers),
		ByStatus: map[string]int{
			entity.CreditStatusActive:   0,
			entity.CreditStatusFrozen:   0,
			entity.CreditStatusDisabled: 0,
		},
	}
	for _, c := range customers {
		out.ByStatus[c.Status]++
		out.TotalOutstanding += c.CurrentBalance
		out.TotalCredited += c.TotalCredited
		out.TotalPaid += c.TotalPaid
		if a := uc.policy.Classify(c, now); a != nil {
			out.OverdueAmount += a.CurrentBalance
			if a.AlertLevel == entity.AlertLevelCritical {
				out.CriticalAlerts++
			} else {
				out.WarningAlerts++
			}
		}
	}
	return out, nil
}

// Reconcile rejoue l'historique complet et compare aux soldes stockés. Aucune correction
// automatique: un écart est journalisé et signalé.
func (uc *UseCase) Reconcile(ctx context.Context, organizationID, customerID string) (*dto.ReconcileResultDTO, error) {
	c, err := uc.load(ctx, organizationID, customerID)
	if err != nil {
		return nil, err
	}
	history, err := uc.transactions.History(ctx, customerID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("credit: lire l'historique: %w", err)
	}
	replayed, err := domaincredit.Replay(*c, history)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconcileResultDTO{
		CustomerID:       customerID,
		Transactions:     len(history),
		StoredBalance:    c.CurrentBalance,
		ReplayedBalance:  replayed.CurrentBalance,
		StoredCredited:   c.TotalCredited,
		ReplayedCredited: replayed.TotalCredited,
		StoredPaid:       c.TotalPaid,
		ReplayedPaid:     replayed.TotalPaid,
	}
	out.Consistent = out.StoredBalance == out.ReplayedBalance &&
		out.StoredCredited == out.ReplayedCredited &&
		out.StoredPaid == out.ReplayedPaid
	if !out.Consistent {
		uc.log.Error().
			Str("organization_id", organizationID).
			Str("customer_id", customerID).
			Int64("stored_balance", out.StoredBalance).
			Int64("replayed_balance", out.ReplayedBalance).
			Msg("écart entre solde stocké et historique")
	}
	return out, nil
}

// Statement génère le relevé de compte PDF sur [from, to] (bornes incluses, jours entiers).
func (uc *UseCase) Statement(ctx context.Context, organizationID, customerID string, from, to time.Time) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("credit: générateur PDF non configuré")
	}
	if to.Before(from) {
		return nil, "", fmt.Errorf("%w: période inversée", domain.ErrInvalidInput)
	}
	c, err := uc.load(ctx, organizationID, customerID)
	if err != nil {
		return nil, "", err
	}
	history, err := uc.transactions.History(ctx, customerID, nil, &to)
	if err != nil {
		return nil, "", fmt.Errorf("credit: lire l'historique: %w", err)
	}

	orgName := ""
	if org, err := uc.orgs.GetByID(ctx, organizationID); err == nil && org != nil {
		orgName = org.Name
	}

	data := BuildStatement(c, history, from, to)
	data.OrganizationName = orgName
	data.GeneratedAt = uc.now()

	pdf, err := uc.pdf.GenerateStatement(data)
	if err != nil {
		return nil, "", fmt.Errorf("credit: générer le relevé: %w", err)
	}
	filename := fmt.Sprintf("releve_%s_%s.pdf", c.ID[:min(8, len(c.ID))], to.Format("20060102"))
	return pdf, filename, nil
}

// BuildStatement calcule le solde d'ouverture (transactions avant from) puis les lignes
// de la période avec solde courant. history doit être chronologique et borné à to.
func BuildStatement(c *entity.CreditCustomer, history []entity.CreditTransaction, from, to time.Time) *dto.CreditStatementData {
	data := &dto.CreditStatementData{
		CustomerName:    c.Name,
		CustomerPhone:   c.Phone,
		CustomerAddress: c.Address,
		From:            from,
		To:              to,
		CreditLimit:     c.CreditLimit,
		Status:          c.Status,
		Lines:           make([]dto.StatementLine, 0),
	}
	balance := int64(0)
	for _, t := range history {
		if t.TransactionDate.After(to) {
			break
		}
		delta := t.Amount
		if t.TransactionType == entity.CreditTxPayment {
			delta = -t.Amount
		}
		if t.TransactionDate.Before(from) {
			balance += delta
			continue
		}
		if len(data.Lines) == 0 {
			data.OpeningBalance = balance
		}
		balance += delta
		line := dto.StatementLine{Date: t.TransactionDate, Balance: balance}
		if t.TransactionType == entity.CreditTxPayment {
			line.Credit = t.Amount
			line.PaymentMode = t.PaymentMethod
			line.Label = "Paiement " + money.Format(t.Amount)
			data.TotalCredit += t.Amount
		} else {
			line.Debit = t.Amount
			line.Label = consumptionLabel(t)
			data.TotalDebit += t.Amount
		}
		data.Lines = append(data.Lines, line)
	}
	if len(data.Lines) == 0 {
		data.OpeningBalance = balance
	}
	data.ClosingBalance = balance
	return data
}

func consumptionLabel(t entity.CreditTransaction) string {
	switch {
	case len(t.Items) == 1:
		return fmt.Sprintf("%s x%d", t.Items[0].ProductName, t.Items[0].Quantity)
	case len(t.Items) > 1:
		return fmt.Sprintf("Consommation (%d articles)", len(t.Items))
	case t.Notes != "":
		return t.Notes
	default:
		return "Consommation"
	}
}
