package entity

import "time"

// Types de transaction du carnet.
const (
	CreditTxConsumption = "consumption"
	CreditTxPayment     = "payment"
)

// Modes de paiement acceptés.
const (
	PaymentMethodCash        = "cash"
	PaymentMethodMobileMoney = "mobile_money"
	PaymentMethodTransfer    = "transfer"
)

// ValidPaymentMethod indique si le mode de paiement est connu.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodTransfer:
		return true
	}
	return false
}

// CreditTransaction écriture du carnet: ajoutée, jamais modifiée ni supprimée.
type CreditTransaction struct {
	ID              string
	CustomerID      string
	OrganizationID  string
	TransactionType string
	Amount          int64
	PaymentMethod   string // paiement uniquement
	Notes           string
	TransactionDate time.Time
	Items           []CreditTransactionItem // consommation uniquement
	CreatedBy       string
	CreatedAt       time.Time
}

// CreditTransactionItem ligne d'une consommation.
type CreditTransactionItem struct {
	ID            string
	TransactionID string
	ProductID     string
	ProductName   string
	Quantity      int64
	UnitPrice     int64
	Subtotal      int64
}
