package entity

// Niveaux d'alerte d'impayé.
const (
	AlertLevelWarning  = "warning"
	AlertLevelCritical = "critical"
)

// CreditAlert alerte dérivée à la lecture, jamais persistée.
type CreditAlert struct {
	ID               string // = CustomerID
	Name             string
	Phone            string
	CurrentBalance   int64
	DaysSincePayment int
	AlertLevel       string
	Status           string
}
