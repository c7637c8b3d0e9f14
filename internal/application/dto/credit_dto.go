package dto

import "time"

// ── Clients ───────────────────────────────────────────────────────────────────

// CreateCreditCustomerRequest entrée de création d'un client du carnet.
type CreateCreditCustomerRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Phone       string `json:"phone" validate:"max=30"`
	Address     string `json:"address" validate:"max=500"`
	CreditLimit int64  `json:"credit_limit" validate:"min=0"` // 0 = sans plafond
}

// UpdateCreditCustomerRequest modification des coordonnées uniquement.
type UpdateCreditCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// CreditCustomerListRequest filtres de GET /api/credit/customers.
type CreditCustomerListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=active frozen disabled"`
	Search string `query:"search"`
}

// CreditCustomerResponse sortie d'un client.
type CreditCustomerResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	CreditLimit      int64      `json:"credit_limit"`
	AvailableCredit  *int64     `json:"available_credit"` // nil = sans plafond
	CurrentBalance   int64      `json:"current_balance"`
	TotalCredited    int64      `json:"total_credited"`
	TotalPaid        int64      `json:"total_paid"`
	Status           string     `json:"status"`
	FreezeReason     string     `json:"freeze_reason,omitempty"`
	LastPaymentDate  *time.Time `json:"last_payment_date"`
	DaysSincePayment int        `json:"days_since_payment"`
	AlertLevel       string     `json:"alert_level,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreditCustomerListResponse liste paginée.
type CreditCustomerListResponse struct {
	Items []CreditCustomerResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// ── Transactions ──────────────────────────────────────────────────────────────

// CreditItemRequest ligne d'une consommation.
type CreditItemRequest struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name" validate:"required,max=200"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64  `json:"unit_price" validate:"min=0"`
	Subtotal    int64  `json:"subtotal" validate:"min=0"`
}

// RecordConsumptionRequest consommation à crédit. Amount est en FCFA.
type RecordConsumptionRequest struct {
	Amount          int64               `json:"amount"`
	Notes           string              `json:"notes" validate:"max=500"`
	TransactionDate *time.Time          `json:"transaction_date"`
	Items           []CreditItemRequest `json:"items" validate:"omitempty,dive"`
}

// RecordPaymentRequest remboursement.
type RecordPaymentRequest struct {
	Amount          int64      `json:"amount"`
	PaymentMethod   string     `json:"payment_method" validate:"required,oneof=cash mobile_money transfer"`
	Notes           string     `json:"notes" validate:"max=500"`
	TransactionDate *time.Time `json:"transaction_date"`
}

// CreditItemResponse ligne d'une consommation.
type CreditItemResponse struct {
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Subtotal    int64  `json:"subtotal"`
}

// CreditTransactionResponse écriture du carnet.
type CreditTransactionResponse struct {
	ID              string               `json:"id"`
	CustomerID      string               `json:"customer_id"`
	TransactionType string               `json:"transaction_type"`
	Amount          int64                `json:"amount"`
	PaymentMethod   string               `json:"payment_method,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	TransactionDate time.Time            `json:"transaction_date"`
	Items           []CreditItemResponse `json:"items,omitempty"`
	CreatedBy       string               `json:"created_by"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CreditOperationResponse transaction enregistrée et état du client qui en résulte.
type CreditOperationResponse struct {
	Transaction CreditTransactionResponse `json:"transaction"`
	Customer    CreditCustomerResponse    `json:"customer"`
}

// ── Transitions d'état ────────────────────────────────────────────────────────

// FreezeRequest gel d'un client actif.
type FreezeRequest struct {
	Policy   string `json:"policy" validate:"required,oneof=freeze_full reduce_limit disable"`
	NewLimit int64  `json:"new_limit" validate:"min=0"` // reduce_limit uniquement
	Reason   string `json:"reason" validate:"max=500"`
}

// UnfreezeRequest dégel (ou réactivation) avec nouveau plafond optionnel.
type UnfreezeRequest struct {
	NewLimit *int64 `json:"new_limit" validate:"omitempty,min=0"`
}

// DisableRequest désactivation.
type DisableRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ── Alertes, synthèse, rapprochement, relevé ──────────────────────────────────

// CreditAlertDTO client en retard de paiement.
type CreditAlertDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	CurrentBalance   int64  `json:"current_balance"`
	DaysSincePayment int    `json:"days_since_payment"`
	AlertLevel       string `json:"alert_level"`
	Status           string `json:"status"`
}

// CreditSummaryDTO synthèse du carnet d'une organisation.
type CreditSummaryDTO struct {
	TotalCustomers   int            `json:"total_customers"`
	ByStatus         map[string]int `json:"by_status"`
	TotalOutstanding int64          `json:"total_outstanding"`
	TotalCredited    int64          `json:"total_credited"`
	TotalPaid        int64          `json:"total_paid"`
	WarningAlerts    int            `json:"warning_alerts"`
	CriticalAlerts   int            `json:"critical_alerts"`
	OverdueAmount    int64          `json:"overdue_amount"` // solde des clients en alerte
}

// ReconcileResultDTO écart entre soldes stockés et soldes rejoués.
type ReconcileResultDTO struct {
	CustomerID       string `json:"customer_id"`
	Transactions     int    `json:"transactions"`
	StoredBalance    int64  `json:"stored_balance"`
	ReplayedBalance  int64  `json:"replayed_balance"`
	StoredCredited   int64  `json:"stored_credited"`
	ReplayedCredited int64  `json:"replayed_credited"`
	StoredPaid       int64  `json:"stored_paid"`
	ReplayedPaid     int64  `json:"replayed_paid"`
	Consistent       bool   `json:"consistent"`
}

// StatementRequest paramètres du relevé PDF.
type StatementRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; par défaut début du mois
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; par défaut aujourd'hui
}

// StatementLine ligne du relevé avec solde courant.
type StatementLine struct {
	Date        time.Time
	Label       string
	Debit       int64 // consommation
	Credit      int64 // paiement
	Balance     int64
	PaymentMode string
}

// CreditStatementData données nécessaires au rendu PDF du relevé de compte.
type CreditStatementData struct {
	OrganizationName string
	CustomerName     string
	CustomerPhone    string
	CustomerAddress  string
	From             time.Time
	To               time.Time
	OpeningBalance   int64
	ClosingBalance   int64
	TotalDebit       int64
	TotalCredit      int64
	CreditLimit      int64
	Status           string
	Lines            []StatementLine
	GeneratedAt      time.Time
}
