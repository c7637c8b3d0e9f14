package credit

import (
	"fmt"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// FreezePolicy variante de gel demandée.
type FreezePolicy string

const (
	// FreezeFull plafond = solde actuel (bloque toute nouvelle consommation).
	FreezeFull FreezePolicy = "freeze_full"
	// FreezeReduceLimit plafond = valeur fournie.
	FreezeReduceLimit FreezePolicy = "reduce_limit"
	// FreezeDisable traité comme une désactivation.
	FreezeDisable FreezePolicy = "disable"
)

// Freeze fait passer un client actif à l'état gelé selon la politique demandée.
func Freeze(c entity.CreditCustomer, policy FreezePolicy, limit int64, reason string, now time.Time) (entity.CreditCustomer, error) {
	if policy == FreezeDisable {
		return Disable(c, reason, now)
	}
	if err := requireStatus(c, entity.CreditStatusActive); err != nil {
		return c, err
	}
	switch policy {
	case FreezeFull:
		c.CreditLimit = c.CurrentBalance
	case FreezeReduceLimit:
		if limit <= 0 {
			return c, fmt.Errorf("%w: nouveau plafond %d", domain.ErrInvalidInput, limit)
		}
		c.CreditLimit = limit
	default:
		return c, fmt.Errorf("%w: politique de gel %q", domain.ErrInvalidInput, policy)
	}
	c.Status = entity.CreditStatusFrozen
	c.FreezeReason = reason
	c.UpdatedAt = now
	return c, nil
}

// Unfreeze ramène un client gelé à l'état actif. newLimit nil conserve le plafond,
// 0 le rend illimité.
func Unfreeze(c entity.CreditCustomer, newLimit *int64, now time.Time) (entity.CreditCustomer, error) {
	if err := requireStatus(c, entity.CreditStatusFrozen); err != nil {
		return c, err
	}
	if newLimit != nil {
		if *newLimit < 0 {
			return c, fmt.Errorf("%w: plafond %d", domain.ErrInvalidInput, *newLimit)
		}
		c.CreditLimit = *newLimit
	}
	c.Status = entity.CreditStatusActive
	c.FreezeReason = ""
	c.UpdatedAt = now
	return c, nil
}

// Disable désactive un client actif ou gelé. L'état est terminal hors Reactivate.
func Disable(c entity.CreditCustomer, reason string, now time.Time) (entity.CreditCustomer, error) {
	if err := requireStatus(c, entity.CreditStatusActive, entity.CreditStatusFrozen); err != nil {
		return c, err
	}
	c.Status = entity.CreditStatusDisabled
	c.FreezeReason = reason
	c.UpdatedAt = now
	return c, nil
}

// Reactivate mise à jour administrative: désactivé -> actif.
func Reactivate(c entity.CreditCustomer, newLimit *int64, now time.Time) (entity.CreditCustomer, error) {
	if err := requireStatus(c, entity.CreditStatusDisabled); err != nil {
		return c, err
	}
	if newLimit != nil {
		if *newLimit < 0 {
			return c, fmt.Errorf("%w: plafond %d", domain.ErrInvalidInput, *newLimit)
		}
		c.CreditLimit = *newLimit
	}
	c.Status = entity.CreditStatusActive
	c.FreezeReason = ""
	c.UpdatedAt = now
	return c, nil
}

// SoftDelete suppression logique depuis n'importe quel état; l'historique est conservé.
func SoftDelete(c entity.CreditCustomer, now time.Time) entity.CreditCustomer {
	c.IsActive = false
	c.UpdatedAt = now
	return c
}

func requireStatus(c entity.CreditCustomer, allowed ...string) error {
	if !c.IsActive {
		return fmt.Errorf("%w: client supprimé", domain.ErrInvalidStateTransition)
	}
	for _, s := range allowed {
		if c.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: depuis l'état %s", domain.ErrInvalidStateTransition, c.Status)
}
