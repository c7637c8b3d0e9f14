package entity

import "time"

// Zone zone de livraison; les grilles fournisseurs et les analyses de prix sont par zone.
type Zone struct {
	ID        string
	Name      string
	City      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
