package entity

import "time"

// PriceKind type de prix d'un produit boisson.
type PriceKind string

const (
	PriceKindUnit    PriceKind = "unit"    // bouteille / canette
	PriceKindCrate   PriceKind = "crate"   // casier
	PriceKindConsign PriceKind = "consign" // consigne du casier
)

// Valid indique si le type de prix est connu.
func (k PriceKind) Valid() bool {
	switch k {
	case PriceKindUnit, PriceKindCrate, PriceKindConsign:
		return true
	}
	return false
}

// Product produit du catalogue avec ses prix de référence (FCFA, entiers >= 0).
// Les prix de référence sont des attributs modifiables par l'administrateur; 0 = non renseigné.
type Product struct {
	ID                    string
	Name                  string
	Brand                 string
	Category              string // biere, soda, eau, vin, spiritueux, jus
	CrateSize             int    // unités par casier
	ReferenceUnitPrice    int64
	ReferenceCratePrice   int64
	ReferenceConsignPrice int64
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ReferencePrice renvoie le prix de référence du type demandé.
func (p *Product) ReferencePrice(kind PriceKind) int64 {
	switch kind {
	case PriceKindCrate:
		return p.ReferenceCratePrice
	case PriceKindConsign:
		return p.ReferenceConsignPrice
	default:
		return p.ReferenceUnitPrice
	}
}
