// Package money regroupe l'arithmétique sur les montants en francs CFA (FCFA).
// Le FCFA n'a pas de subdivision: tous les montants sont des entiers (int64).
// Les pourcentages sont des decimal.Decimal arrondis à 2 décimales.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrNonPositiveReference le prix de référence est nul ou négatif: aucun écart calculable.
	ErrNonPositiveReference = errors.New("money: prix de référence nul ou négatif")
	// ErrOverflow le produit dépasse la capacité d'un int64.
	ErrOverflow = errors.New("money: dépassement de capacité")
	// ErrDivisionByZero moyenne sur un ensemble vide.
	ErrDivisionByZero = errors.New("money: division par zéro")
)

var (
	hundred = decimal.NewFromInt(100)
	printer = message.NewPrinter(language.French)
	spaces  = strings.NewReplacer("\u00a0", " ", "\u202f", " ")
)

// Variance écart absolu en FCFA entre un prix et la référence.
func Variance(price, reference int64) int64 {
	return price - reference
}

// VariancePercentage = (price - reference) / reference * 100, arrondi à 2 décimales.
func VariancePercentage(price, reference int64) (decimal.Decimal, error) {
	if reference <= 0 {
		return decimal.Zero, ErrNonPositiveReference
	}
	v := decimal.NewFromInt(price - reference)
	return v.Div(decimal.NewFromInt(reference)).Mul(hundred).Round(2), nil
}

// Percentage exprime part/total en pourcentage (2 décimales); 0 si total nul.
func Percentage(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(total)).Mul(hundred).Round(2)
}

// RoundHalfUpDiv renvoie sum/n arrondi au FCFA le plus proche, demi vers le haut.
// floor(sum/n + 1/2) = floor((2*sum + n) / (2*n)) pour sum >= 0.
func RoundHalfUpDiv(sum, n int64) (int64, error) {
	if n <= 0 {
		return 0, ErrDivisionByZero
	}
	if sum < 0 {
		// symétrique: -round(|sum|/n) demi vers le haut en valeur absolue
		q, err := RoundHalfUpDiv(-sum, n)
		return -q, err
	}
	return (2*sum + n) / (2 * n), nil
}

// Mul multiplie une quantité par un prix unitaire en détectant le dépassement.
func Mul(qty, unit int64) (int64, error) {
	if qty == 0 || unit == 0 {
		return 0, nil
	}
	r := qty * unit
	if r/qty != unit || r/unit != qty {
		return 0, ErrOverflow
	}
	return r, nil
}

// Add additionne deux montants en détectant le dépassement.
func Add(a, b int64) (int64, error) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, ErrOverflow
	}
	return r, nil
}

// Format rend un montant lisible: 12500 -> "12 500 FCFA".
func Format(amount int64) string {
	return spaces.Replace(printer.Sprintf("%d", amount)) + " FCFA"
}
