// Package credit implémente le carnet de crédit: application des transactions sur le solde,
// transitions d'état (gel, dégel, désactivation) et classification des alertes d'impayés.
// Les fonctions sont pures: elles reçoivent une valeur et renvoient une nouvelle valeur ou
// une erreur sentinelle de domain, sans E/S. La sérialisation par client est à la charge
// de l'appelant.
package credit

import (
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
	"github.com/ravito-ci/ravito-api/pkg/money"
)

// ApplyTransaction applique une consommation ou un paiement et renvoie le client mis à jour.
// En cas d'erreur le client reçu n'est pas modifié.
func ApplyTransaction(c entity.CreditCustomer, tx entity.CreditTransaction) (entity.CreditCustomer, error) {
	if tx.Amount <= 0 {
		return c, fmt.Errorf("%w: %d", domain.ErrInvalidTransactionAmount, tx.Amount)
	}
	switch tx.TransactionType {
	case entity.CreditTxConsumption:
		return applyConsumption(c, tx)
	case entity.CreditTxPayment:
		return applyPayment(c, tx)
	default:
		return c, fmt.Errorf("%w: type de transaction %q", domain.ErrInvalidInput, tx.TransactionType)
	}
}

func applyConsumption(c entity.CreditCustomer, tx entity.CreditTransaction) (entity.CreditCustomer, error) {
	if tx.PaymentMethod != "" {
		return c, fmt.Errorf("%w: mode de paiement sur une consommation", domain.ErrInvalidInput)
	}
	if err := ValidateItems(tx.Amount, tx.Items); err != nil {
		return c, err
	}
	if c.Status != entity.CreditStatusActive || !c.IsActive {
		return c, fmt.Errorf("%w: client %s", domain.ErrCreditLimitExceeded, statusLabel(c))
	}
	newBalance, err := money.Add(c.CurrentBalance, tx.Amount)
	if err != nil {
		return c, fmt.Errorf("%w: %v", domain.ErrInvalidTransactionAmount, err)
	}
	if c.CreditLimit > 0 && newBalance > c.CreditLimit {
		return c, fmt.Errorf("%w: solde %d + %d > plafond %d",
			domain.ErrCreditLimitExceeded, c.CurrentBalance, tx.Amount, c.CreditLimit)
	}

	c.TotalCredited += tx.Amount
	c.CurrentBalance = newBalance
	c.UpdatedAt = tx.TransactionDate
	return c, nil
}

func applyPayment(c entity.CreditCustomer, tx entity.CreditTransaction) (entity.CreditCustomer, error) {
	if !entity.ValidPaymentMethod(tx.PaymentMethod) {
		return c, fmt.Errorf("%w: mode de paiement %q", domain.ErrInvalidInput, tx.PaymentMethod)
	}
	if len(tx.Items) > 0 {
		return c, fmt.Errorf("%w: un paiement ne porte pas de lignes", domain.ErrInconsistentLineItems)
	}
	if tx.Amount > c.CurrentBalance {
		return c, fmt.Errorf("%w: paiement %d > solde %d",
			domain.ErrOverpaymentRejected, tx.Amount, c.CurrentBalance)
	}

	c.TotalPaid += tx.Amount
	c.CurrentBalance -= tx.Amount
	c.LastPaymentDate = latestPayment(c.LastPaymentDate, tx.TransactionDate)
	c.UpdatedAt = tx.TransactionDate
	return c, nil
}

// latestPayment ne fait jamais reculer la date du dernier paiement: un paiement
// antidaté n'efface pas un règlement plus récent.
func latestPayment(last *time.Time, paidAt time.Time) *time.Time {
	if last != nil && !paidAt.After(*last) {
		return last
	}
	return &paidAt
}

// ValidateItems vérifie les lignes d'une consommation: quantité > 0, prix >= 0,
// sous-total = quantité × prix unitaire et somme des sous-totaux = montant.
// Une consommation sans lignes (montant global) est acceptée.
func ValidateItems(amount int64, items []entity.CreditTransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	var sum int64
	for i, it := range items {
		if it.Quantity <= 0 || it.UnitPrice < 0 {
			return fmt.Errorf("%w: ligne %d quantité %d prix %d",
				domain.ErrInconsistentLineItems, i+1, it.Quantity, it.UnitPrice)
		}
		expected, err := money.Mul(it.Quantity, it.UnitPrice)
		if err != nil || expected != it.Subtotal {
			return fmt.Errorf("%w: ligne %d sous-total %d attendu %d",
				domain.ErrInconsistentLineItems, i+1, it.Subtotal, expected)
		}
		if sum, err = money.Add(sum, it.Subtotal); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInconsistentLineItems, err)
		}
	}
	if sum != amount {
		return fmt.Errorf("%w: somme des lignes %d, montant %d", domain.ErrInconsistentLineItems, sum, amount)
	}
	return nil
}

// CheckInvariant vérifie CurrentBalance == TotalCredited - TotalPaid.
func CheckInvariant(c entity.CreditCustomer) error {
	if c.CurrentBalance != c.TotalCredited-c.TotalPaid {
		return fmt.Errorf("%w: solde %d != crédité %d - payé %d",
			domain.ErrConflict, c.CurrentBalance, c.TotalCredited, c.TotalPaid)
	}
	return nil
}

// Replay rejoue un historique ordonné à partir d'un solde nul.
// Le statut et le plafond du client de base sont ignorés: l'historique a été accepté
// dans les conditions de son époque, seules les sommes sont recalculées.
func Replay(base entity.CreditCustomer, txs []entity.CreditTransaction) (entity.CreditCustomer, error) {
	c := base
	c.CurrentBalance, c.TotalCredited, c.TotalPaid = 0, 0, 0
	c.LastPaymentDate = nil
	for _, tx := range txs {
		switch tx.TransactionType {
		case entity.CreditTxConsumption:
			c.TotalCredited += tx.Amount
			c.CurrentBalance += tx.Amount
		case entity.CreditTxPayment:
			c.TotalPaid += tx.Amount
			c.CurrentBalance -= tx.Amount
			c.LastPaymentDate = latestPayment(c.LastPaymentDate, tx.TransactionDate)
		default:
			return base, fmt.Errorf("%w: transaction %s de type %q", domain.ErrInvalidInput, tx.ID, tx.TransactionType)
		}
	}
	return c, nil
}

func statusLabel(c entity.CreditCustomer) string {
	if !c.IsActive {
		return "supprimé"
	}
	switch c.Status {
	case entity.CreditStatusFrozen:
		return "gelé"
	case entity.CreditStatusDisabled:
		return "désactivé"
	}
	return c.Status
}
