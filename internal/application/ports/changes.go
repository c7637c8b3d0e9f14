package ports

import (
	"context"
	"time"
)

// Tables suivies par les notifications de changement.
const (
	TableProducts          = "products"
	TableReferencePrices   = "reference_prices"
	TableSupplierPriceGrid = "supplier_price_grids"
	TableCreditCustomers   = "credit_customers"
)

// ChangeEvent notification "cette donnée a changé": le consommateur invalide et relit,
// il n'applique jamais le contenu de l'événement.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Operation string    `json:"operation"` // insert, update, delete
	RecordID  string    `json:"record_id"`
	ProductID string    `json:"product_id,omitempty"`
	ZoneID    string    `json:"zone_id,omitempty"`
	At        time.Time `json:"at"`
}

// ChangePublisher diffuse les événements de changement aux autres instances.
type ChangePublisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// NopPublisher publication désactivée (Redis non configuré, tests).
type NopPublisher struct{}

// Publish ne fait rien.
func (NopPublisher) Publish(context.Context, ChangeEvent) error { return nil }
