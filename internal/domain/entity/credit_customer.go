package entity

import "time"

// Statuts d'un client du carnet de crédit.
const (
	CreditStatusActive   = "active"
	CreditStatusFrozen   = "frozen"
	CreditStatusDisabled = "disabled"
)

// CreditCustomer client d'une organisation qui consomme à crédit.
// Invariant: CurrentBalance == TotalCredited - TotalPaid après chaque transaction.
// CreditLimit == 0 signifie sans plafond.
type CreditCustomer struct {
	ID              string
	OrganizationID  string
	Name            string
	Phone           string
	Address         string
	CreditLimit     int64
	CurrentBalance  int64
	TotalCredited   int64
	TotalPaid       int64
	Status          string
	LastPaymentDate *time.Time
	FreezeReason    string
	IsActive        bool // false = supprimé (logiquement), historique conservé
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasUnlimitedCredit indique l'absence de plafond.
func (c *CreditCustomer) HasUnlimitedCredit() bool {
	return c.CreditLimit == 0
}

// AvailableCredit crédit restant avant plafond; -1 si illimité.
func (c *CreditCustomer) AvailableCredit() int64 {
	if c.HasUnlimitedCredit() {
		return -1
	}
	if c.CurrentBalance >= c.CreditLimit {
		return 0
	}
	return c.CreditLimit - c.CurrentBalance
}
