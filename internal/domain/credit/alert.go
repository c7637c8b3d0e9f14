package credit

import (
	"math"
	"sort"
	"time"

	"github.com/ravito-ci/ravito-api/internal/domain/entity"
)

// AlertPolicy seuils stricts en jours depuis le dernier paiement.
// warning si jours > WarningAfterDays, critical si jours > CriticalAfterDays.
type AlertPolicy struct {
	WarningAfterDays  int
	CriticalAfterDays int
}

// DefaultAlertPolicy warning à partir du 15e jour, critical au-delà de 30 jours (CGU/CGV).
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{WarningAfterDays: 14, CriticalAfterDays: 30}
}

// DaysSincePayment = ceil((now - (LastPaymentDate ?? CreatedAt)) en jours), jamais négatif.
func DaysSincePayment(c entity.CreditCustomer, now time.Time) int {
	ref := c.CreatedAt
	if c.LastPaymentDate != nil {
		ref = *c.LastPaymentDate
	}
	elapsed := now.Sub(ref)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

// Classify renvoie l'alerte du client ou nil. Sans solde dû, jamais d'alerte.
func (p AlertPolicy) Classify(c entity.CreditCustomer, now time.Time) *entity.CreditAlert {
	if c.CurrentBalance <= 0 || !c.IsActive {
		return nil
	}
	days := DaysSincePayment(c, now)
	var level string
	switch {
	case days > p.CriticalAfterDays:
		level = entity.AlertLevelCritical
	case days > p.WarningAfterDays:
		level = entity.AlertLevelWarning
	default:
		return nil
	}
	return &entity.CreditAlert{
		ID:               c.ID,
		Name:             c.Name,
		Phone:            c.Phone,
		CurrentBalance:   c.CurrentBalance,
		DaysSincePayment: days,
		AlertLevel:       level,
		Status:           c.Status,
	}
}

// ClassifyAll classe une liste de clients: critiques d'abord, puis par ancienneté décroissante.
func (p AlertPolicy) ClassifyAll(customers []entity.CreditCustomer, now time.Time) []entity.CreditAlert {
	alerts := make([]entity.CreditAlert, 0)
	for _, c := range customers {
		if a := p.Classify(c, now); a != nil {
			alerts = append(alerts, *a)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.AlertLevel != b.AlertLevel {
			return a.AlertLevel == entity.AlertLevelCritical
		}
		if a.DaysSincePayment != b.DaysSincePayment {
			return a.DaysSincePayment > b.DaysSincePayment
		}
		return a.CurrentBalance > b.CurrentBalance
	})
	return alerts
}
