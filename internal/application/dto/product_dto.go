package dto

import "time"

// CreateProductRequest entrée de création d'un produit du catalogue.
type CreateProductRequest struct {
	Name                  string `json:"name" validate:"required,min=1,max=200"`
	Brand                 string `json:"brand" validate:"max=100"`
	Category              string `json:"category" validate:"required,oneof=biere soda eau vin spiritueux jus autre"`
	CrateSize             int    `json:"crate_size" validate:"min=0,max=100"`
	ReferenceUnitPrice    int64  `json:"reference_unit_price" validate:"min=0"`
	ReferenceCratePrice   int64  `json:"reference_crate_price" validate:"min=0"`
	ReferenceConsignPrice int64  `json:"reference_consign_price" validate:"min=0"`
}

// UpdateReferencePricesRequest mise à jour partielle des prix de référence (FCFA).
type UpdateReferencePricesRequest struct {
	ReferenceUnitPrice    *int64 `json:"reference_unit_price" validate:"omitempty,min=0"`
	ReferenceCratePrice   *int64 `json:"reference_crate_price" validate:"omitempty,min=0"`
	ReferenceConsignPrice *int64 `json:"reference_consign_price" validate:"omitempty,min=0"`
}

// ProductListRequest filtres de GET /api/products.
type ProductListRequest struct {
	Category string `query:"category"`
}

// ProductResponse sortie d'un produit.
type ProductResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Brand                 string    `json:"brand"`
	Category              string    `json:"category"`
	CrateSize             int       `json:"crate_size"`
	ReferenceUnitPrice    int64     `json:"reference_unit_price"`
	ReferenceCratePrice   int64     `json:"reference_crate_price"`
	ReferenceConsignPrice int64     `json:"reference_consign_price"`
	IsActive              bool      `json:"is_active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ProductListResponse liste paginée de produits.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateZoneRequest entrée de création d'une zone de livraison.
type CreateZoneRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	City string `json:"city" validate:"required,min=1,max=100"`
}

// ZoneResponse sortie d'une zone.
type ZoneResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	IsActive bool   `json:"is_active"`
}
