package entity

import "time"

// Organization représente un client de la plateforme (dépôt, maquis, cave) qui tient
// un carnet de crédit pour ses propres acheteurs.
type Organization struct {
	ID        string
	Name      string
	Phone     string
	City      string
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Modules activables par organisation (doivent correspondre au CHECK de organization_modules).
const (
	ModuleCreditBook = "credit_book"
	ModulePricing    = "pricing"
)

// OrganizationModule activation d'un module pour une organisation.
type OrganizationModule struct {
	ID             string
	OrganizationID string
	ModuleName     string
	IsActive       bool
	ActivatedAt    time.Time
	ExpiresAt      *time.Time // nil = sans échéance
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
